package theme

import (
	"archive/zip"
	"context"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/gosimple/slug"
	"github.com/maruel/natural"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"coursetheme/archive"
	"coursetheme/store"
)

// largest preset accepted from archive
const maxPresetSize = 1 << 20

func (t *Theme) presetHash(name string) string {
	return store.PathNameHash(t.cfg.Theme.SystemContext, t.cfg.Theme.Component, t.cfg.Theme.PresetArea, 0, "/", name)
}

// Presets lists preset names: built-in ones first, then uploaded ones in
// natural order.
func (t *Theme) Presets(ctx context.Context) ([]string, error) {
	files, err := t.db.Files(ctx, t.cfg.Theme.SystemContext, t.cfg.Theme.Component, t.cfg.Theme.PresetArea, 0)
	if err != nil {
		return nil, err
	}
	uploaded := make([]string, 0, len(files))
	for _, f := range files {
		uploaded = append(uploaded, f.FileName)
	}
	slices.SortFunc(uploaded, func(a, b string) int {
		switch {
		case natural.Less(a, b):
			return -1
		case natural.Less(b, a):
			return 1
		}
		return 0
	})
	return append([]string{PresetDefault, PresetPlain}, uploaded...), nil
}

// PresetFileName turns arbitrary name into preset file name.
func PresetFileName(name string) string {
	base := path.Base(strings.ReplaceAll(name, `\`, "/"))
	base = strings.TrimSuffix(base, path.Ext(base))
	s := slug.Make(base)
	if len(s) == 0 {
		return ""
	}
	return s + ".scss"
}

// AddPreset validates preset source and stores it in theme preset area,
// returns stored file name.
func (t *Theme) AddPreset(ctx context.Context, name string, data []byte) (string, error) {
	fileName := PresetFileName(name)
	if len(fileName) == 0 {
		return "", fmt.Errorf("bad preset name %q", name)
	}
	if fileName == PresetDefault || fileName == PresetPlain {
		return "", fmt.Errorf("preset %q would replace built-in one", name)
	}

	sheet, err := t.scanner.Scan(data, fileName)
	if err != nil {
		return "", fmt.Errorf("preset %q is not valid SCSS: %w", name, err)
	}

	_, err = t.db.AddFile(ctx, &store.File{
		ContextID: t.cfg.Theme.SystemContext,
		Component: t.cfg.Theme.Component,
		FileArea:  t.cfg.Theme.PresetArea,
		FilePath:  "/",
		FileName:  fileName,
		MimeType:  "text/x-scss",
		Content:   data,
	})
	if err != nil {
		return "", err
	}
	t.log.Info("Preset stored", zap.String("name", fileName), zap.Int("variables", len(sheet.Variables)))
	return fileName, nil
}

// ImportPresets stores every .scss and .css file found in zip archive.
// Invalid presets do not stop import, their errors are returned together
// with names of stored presets.
func (t *Theme) ImportPresets(ctx context.Context, zipPath string) ([]string, error) {
	var (
		names []string
		errs  error
	)
	err := archive.Walk(zipPath, archive.Ext(".scss", ".css"), func(_ string, f *zip.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := archive.ReadFile(f, maxPresetSize)
		if err != nil {
			errs = multierr.Append(errs, err)
			return nil
		}
		name, err := t.AddPreset(ctx, f.Name, data)
		if err != nil {
			errs = multierr.Append(errs, err)
			return nil
		}
		names = append(names, name)
		return nil
	})
	if err != nil {
		return names, fmt.Errorf("unable to import presets from '%s': %w", zipPath, err)
	}
	return names, errs
}

// SelectPreset makes preset active.
func (t *Theme) SelectPreset(ctx context.Context, name string) error {
	presets, err := t.Presets(ctx)
	if err != nil {
		return err
	}
	if !slices.Contains(presets, name) {
		return fmt.Errorf("preset %q: %w", name, store.ErrNotFound)
	}
	if err := t.db.SetConfig(ctx, t.cfg.Theme.Component, SettingPreset, name); err != nil {
		return err
	}
	return t.ResetCaches(ctx)
}
