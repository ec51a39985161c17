// Package theme implements theme callbacks: SCSS assembly from presets and
// settings, preset management and publishing of settings images.
package theme

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"coursetheme/config"
	"coursetheme/store"
)

//go:embed scss
var scssFS embed.FS

// Built-in presets.
const (
	PresetDefault = "default.scss"
	PresetPlain   = "plain.scss"
)

// Setting names.
const (
	SettingPreset     = "preset"
	SettingBrandColor = "brandcolor"
	SettingSCSSPre    = "scsspre"
	SettingSCSS       = "scss"
)

// Storage is everything theme needs from the host database.
type Storage interface {
	Config(ctx context.Context, plugin, name string) (string, bool, error)
	ConfigAll(ctx context.Context, plugin string) (map[string]string, error)
	SetConfig(ctx context.Context, plugin, name, value string) error
	UnsetConfig(ctx context.Context, plugin, name string) error
	AddFile(ctx context.Context, f *store.File) (int64, error)
	FileByHash(ctx context.Context, hash string) (*store.File, error)
	Files(ctx context.Context, contextID int64, component, area string, itemID int64) ([]store.File, error)
	DeleteFile(ctx context.Context, hash string) error
}

type Theme struct {
	cfg     *config.Config
	db      Storage
	scanner *Scanner
	log     *zap.Logger
}

func New(cfg *config.Config, db Storage, log *zap.Logger) *Theme {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("theme")
	return &Theme{cfg: cfg, db: db, scanner: NewScanner(log), log: log}
}

func builtin(name string) string {
	data, err := scssFS.ReadFile("scss/" + name)
	if err != nil {
		// embedded files are known at build time
		panic(err)
	}
	return string(data)
}

// MainSCSS returns preset selected in theme settings surrounded by theme own
// pre and post SCSS. Unknown or missing preset falls back to default one.
func (t *Theme) MainSCSS(ctx context.Context) (string, error) {
	name, _, err := t.db.Config(ctx, t.cfg.Theme.Component, SettingPreset)
	if err != nil {
		return "", err
	}

	var preset string
	switch name {
	case PresetDefault, PresetPlain:
		preset = builtin("preset/" + name)
	case "":
		preset = builtin("preset/" + PresetDefault)
	default:
		f, err := t.db.FileByHash(ctx, t.presetHash(name))
		switch {
		case errors.Is(err, store.ErrNotFound):
			t.log.Warn("Preset not found, using default", zap.String("preset", name))
			preset = builtin("preset/" + PresetDefault)
		case err != nil:
			return "", err
		default:
			preset = string(f.Content)
		}
	}
	return builtin("pre.scss") + "\n" + preset + "\n" + builtin("post.scss"), nil
}

// PreSCSS returns SCSS prepended to main one: variables from settings
// followed by raw pre SCSS setting.
func (t *Theme) PreSCSS(ctx context.Context) (string, error) {
	settings, err := t.db.ConfigAll(ctx, t.cfg.Theme.Component)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if v := settings[SettingBrandColor]; len(v) > 0 {
		fmt.Fprintf(&b, "$primary: %s;\n", v)
	}
	b.WriteString(settings[SettingSCSSPre])
	return b.String(), nil
}

// ExtraSCSS returns raw SCSS setting appended after main SCSS.
func (t *Theme) ExtraSCSS(ctx context.Context) (string, error) {
	v, _, err := t.db.Config(ctx, t.cfg.Theme.Component, SettingSCSS)
	return v, err
}

// SCSS returns complete theme source in compilation order.
func (t *Theme) SCSS(ctx context.Context) (string, error) {
	var parts [3]string
	var err error
	if parts[0], err = t.PreSCSS(ctx); err != nil {
		return "", fmt.Errorf("unable to get pre SCSS: %w", err)
	}
	if parts[1], err = t.MainSCSS(ctx); err != nil {
		return "", fmt.Errorf("unable to get main SCSS: %w", err)
	}
	if parts[2], err = t.ExtraSCSS(ctx); err != nil {
		return "", fmt.Errorf("unable to get extra SCSS: %w", err)
	}
	return strings.Join(parts[:], "\n"), nil
}
