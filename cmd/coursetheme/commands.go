package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	yaml "gopkg.in/yaml.v3"

	"coursetheme/common"
	"coursetheme/config"
	"coursetheme/course"
	"coursetheme/render"
	"coursetheme/server"
	"coursetheme/state"
	"coursetheme/store"
	"coursetheme/theme"
)

// writeOutput writes data to named file or STDOUT when name is empty.
func writeOutput(env *state.LocalEnv, fname, what string, data []byte) error {
	out := os.Stdout
	if len(fname) > 0 {
		f, err := os.Create(fname)
		if err != nil {
			return fmt.Errorf("unable to create destination file '%s': %w", fname, err)
		}
		defer f.Close()
		out = f
	} else {
		fname = "STDOUT"
	}
	env.Log.Info("Writing "+what, zap.String("file", fname), zap.Int("bytes", len(data)))
	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("unable to write %s: %w", what, err)
	}
	return nil
}

func openStore(ctx context.Context) (*state.LocalEnv, error) {
	env := state.EnvFromContext(ctx)
	if err := env.OpenStore(ctx); err != nil {
		return nil, err
	}
	return env, nil
}

func initDatabase(ctx context.Context, cmd *cli.Command) error {
	env, err := openStore(ctx)
	if err != nil {
		return err
	}
	component := env.Cfg.Theme.Component

	if cmd.Bool("sample") {
		if err := env.Store.Seed(ctx, bytes.NewReader(store.SampleData()), component, "."); err != nil {
			return err
		}
	}
	if fname := cmd.Args().First(); len(fname) > 0 {
		f, err := os.Open(fname)
		if err != nil {
			return fmt.Errorf("unable to open catalog: %w", err)
		}
		defer f.Close()
		if err := env.Store.Seed(ctx, f, component, filepath.Dir(fname)); err != nil {
			return err
		}
	}
	env.Log.Info("Database ready", zap.String("path", env.Cfg.Database.Path))
	return env.Theme.ResetCaches(ctx)
}

// listingOptions builds display options from configuration and command
// flags.
func listingOptions(cfg *config.Config, cmd *cli.Command, urls *render.URLs) (course.DisplayOptions, error) {
	opts := course.DisplayOptions{
		ShowMode:         cfg.Listing.ShowMode,
		PaginationURL:    urls.Category(cmd.Int64("category")),
		AllowShowAll:     cfg.Listing.AllowShowAll,
		SubcategoryDepth: cfg.Listing.SubcategoryDepth,
	}
	if v := cmd.String("mode"); len(v) > 0 {
		mode, err := common.ParseShowMode(v)
		if err != nil {
			return opts, err
		}
		opts.ShowMode = mode
	}
	return opts, nil
}

func newRenderer(env *state.LocalEnv, cmd *cli.Command) (*render.CourseRenderer, *render.URLs, error) {
	urls, err := render.NewURLs(env.Cfg.Theme.WWWRoot, env.Cfg.Theme.SiteID)
	if err != nil {
		return nil, nil, err
	}
	r, err := env.NewRenderer(render.NewPage(), cmd.String("lang"))
	if err != nil {
		return nil, nil, err
	}
	return r, urls, nil
}

func renderTree(ctx context.Context, cmd *cli.Command) error {
	env, err := openStore(ctx)
	if err != nil {
		return err
	}
	r, urls, err := newRenderer(env, cmd)
	if err != nil {
		return err
	}
	opts, err := listingOptions(env.Cfg, cmd, urls)
	if err != nil {
		return err
	}

	cat, err := env.Store.Category(ctx, cmd.Int64("category"), opts.SubcategoryDepth, env.Cfg.Listing.CoursesPerPage)
	if err != nil {
		return err
	}
	env.Rpt.StoreData(fmt.Sprintf("category-%d.txt", cat.ID), []byte(cat.Dump()))

	out, err := r.CategoryTree(ctx, opts, cat)
	if err != nil {
		return err
	}
	env.Log.Debug("Page requirements", zap.Strings("modules", r.Page().Modules()), zap.Int("strings", len(r.Page().Strings())))
	return writeOutput(env, cmd.Args().First(), "category tree", []byte(out))
}

func renderCourses(ctx context.Context, cmd *cli.Command) error {
	env, err := openStore(ctx)
	if err != nil {
		return err
	}
	r, urls, err := newRenderer(env, cmd)
	if err != nil {
		return err
	}
	opts, err := listingOptions(env.Cfg, cmd, urls)
	if err != nil {
		return err
	}

	switch perPage := cmd.Int("perpage"); {
	case perPage < 0:
		opts.Limit = 0
	case perPage == 0:
		opts.Limit = env.Cfg.Listing.CoursesPerPage
	default:
		opts.Limit = perPage
	}
	if page := cmd.Int("page"); page > 0 && opts.Limit > 0 {
		opts.Offset = page * opts.Limit
	}

	courses, total, err := env.Store.Courses(ctx, cmd.Int64("category"), opts.Offset, opts.Limit)
	if err != nil {
		return err
	}
	out, err := r.CourseListing(ctx, opts, courses, total)
	if err != nil {
		return err
	}
	return writeOutput(env, cmd.Args().First(), "course listing", []byte(out))
}

func outputSCSS(ctx context.Context, cmd *cli.Command) error {
	env, err := openStore(ctx)
	if err != nil {
		return err
	}
	scss, err := env.Theme.SCSS(ctx)
	if err != nil {
		return err
	}
	if !cmd.Bool("variables") {
		return writeOutput(env, cmd.Args().First(), "SCSS", []byte(scss))
	}

	vars, err := theme.Variables([]byte(scss))
	if err != nil {
		return err
	}
	var b strings.Builder
	for _, v := range vars {
		def := ""
		if v.Default {
			def = " !default"
		}
		fmt.Fprintf(&b, "$%s: %s%s\n", v.Name, v.Value, def)
	}
	return writeOutput(env, cmd.Args().First(), "SCSS variables", []byte(b.String()))
}

func listPresets(ctx context.Context, cmd *cli.Command) error {
	env, err := openStore(ctx)
	if err != nil {
		return err
	}
	presets, err := env.Theme.Presets(ctx)
	if err != nil {
		return err
	}
	current, ok, err := env.Store.Config(ctx, env.Cfg.Theme.Component, theme.SettingPreset)
	if err != nil {
		return err
	}
	if !ok {
		current = theme.PresetDefault
	}

	var b strings.Builder
	for _, name := range presets {
		mark := " "
		if name == current {
			mark = "*"
		}
		fmt.Fprintf(&b, "%s %s\n", mark, name)
	}
	_, err = io.WriteString(os.Stdout, b.String())
	return err
}

func addPreset(ctx context.Context, cmd *cli.Command) error {
	fname := cmd.Args().First()
	if len(fname) == 0 {
		return errors.New("preset file is required")
	}
	env, err := openStore(ctx)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(fname)
	if err != nil {
		return fmt.Errorf("unable to read preset: %w", err)
	}
	name := cmd.String("name")
	if len(name) == 0 {
		name = filepath.Base(fname)
	}
	stored, err := env.Theme.AddPreset(ctx, name, data)
	if err != nil {
		return err
	}
	env.Log.Info("Preset added", zap.String("name", stored))
	if cmd.Bool("select") {
		return env.Theme.SelectPreset(ctx, stored)
	}
	return nil
}

func importPresets(ctx context.Context, cmd *cli.Command) error {
	fname := cmd.Args().First()
	if len(fname) == 0 {
		return errors.New("archive is required")
	}
	env, err := openStore(ctx)
	if err != nil {
		return err
	}
	names, err := env.Theme.ImportPresets(ctx, fname)
	env.Log.Info("Presets imported", zap.Strings("names", names))
	return err
}

func selectPreset(ctx context.Context, cmd *cli.Command) error {
	name := cmd.Args().First()
	if len(name) == 0 {
		return errors.New("preset name is required")
	}
	env, err := openStore(ctx)
	if err != nil {
		return err
	}
	if err := env.Theme.SelectPreset(ctx, name); err != nil {
		return err
	}
	env.Log.Info("Preset selected", zap.String("name", name))
	return nil
}

func uploadImage(ctx context.Context, cmd *cli.Command) error {
	element := cmd.Args().Get(0)
	if len(element) == 0 {
		return errors.New("setting name is required")
	}
	env, err := openStore(ctx)
	if err != nil {
		return err
	}
	switch {
	case cmd.Bool("clear"):
		return env.Theme.ClearSettingsImage(ctx, element)
	case cmd.Bool("refresh"):
		return env.Theme.UpdateSettingsImage(ctx, element)
	}

	fname := cmd.Args().Get(1)
	if len(fname) == 0 {
		return errors.New("image file is required")
	}
	data, err := os.ReadFile(fname)
	if err != nil {
		return fmt.Errorf("unable to read image: %w", err)
	}
	return env.Theme.UploadSettingsImage(ctx, element, filepath.Base(fname), data)
}

func pluginInfo(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	info := theme.Plugin(env.Cfg.Theme.Component)

	data, err := yaml.Marshal(info)
	if err != nil {
		return fmt.Errorf("unable to marshal plugin info: %w", err)
	}
	if _, err := os.Stdout.Write(data); err != nil {
		return err
	}

	host := cmd.Int64("host")
	if host == 0 {
		return nil
	}
	installed := make(map[string]int64)
	for _, s := range cmd.StringSlice("installed") {
		name, ver, ok := strings.Cut(s, "=")
		if !ok {
			return fmt.Errorf("malformed plugin version '%s'", s)
		}
		v, err := strconv.ParseInt(ver, 10, 64)
		if err != nil {
			return fmt.Errorf("malformed plugin version '%s': %w", s, err)
		}
		installed[name] = v
	}
	if err := info.Satisfies(host, installed); err != nil {
		return err
	}
	env.Log.Info("Host satisfies plugin requirements", zap.Int64("host", host))
	return nil
}

func serve(ctx context.Context, _ *cli.Command) error {
	env, err := openStore(ctx)
	if err != nil {
		return err
	}
	srv, err := server.New(env)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}

func outputConfiguration(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	if cmd.Args().Len() > 1 {
		env.Log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	var (
		data []byte
		err  error
		what string
	)
	if cmd.Bool("default") {
		what = "default configuration"
		data, err = config.Prepare()
	} else {
		what = "actual configuration"
		data, err = config.Dump(env.Cfg)
	}
	if err != nil {
		return fmt.Errorf("unable to get configuration: %w", err)
	}
	return writeOutput(env, cmd.Args().First(), what, data)
}
