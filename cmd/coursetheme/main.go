package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"coursetheme/common"
	"coursetheme/config"
	"coursetheme/misc"
	"coursetheme/state"
)

// beforeCommand loads configuration and sets up logging once command line
// is parsed.
func beforeCommand(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	var err error

	if cmd.NArg() == 0 {
		return ctx, nil
	}

	env := state.EnvFromContext(ctx)

	configFile := cmd.String("config")
	if env.Cfg, err = config.LoadConfiguration(configFile); err != nil {
		return ctx, fmt.Errorf("unable to prepare configuration: %w", err)
	}
	if cmd.Bool("debug") {
		if env.Rpt, err = env.Cfg.Reporting.Prepare(); err != nil {
			return ctx, fmt.Errorf("unable to prepare debug reporter: %w", err)
		}
		if len(configFile) > 0 {
			// secrets are masked by Dump
			if data, err := config.Dump(env.Cfg); err == nil {
				env.Rpt.StoreData(fmt.Sprintf("config/%s", filepath.Base(configFile)), data)
			}
		}
	}
	if env.Log, err = env.Cfg.Logging.Prepare(env.Rpt); err != nil {
		return ctx, fmt.Errorf("unable to prepare logs: %w", err)
	}
	env.RedirectStdLog()

	env.Log.Debug("Program started",
		zap.Strings("args", os.Args),
		zap.String("ver", misc.GetVersion()),
		zap.String("runtime", runtime.Version()),
		zap.String("hash", misc.GetGitHash()))

	if env.Rpt != nil {
		env.Log.Info("Creating debug report", zap.String("location", env.Rpt.Name()))
	}
	if len(configFile) == 0 {
		env.Log.Info("Using defaults (no configuration file)")
	}
	return ctx, nil
}

func afterCommand(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)

	if er := env.CloseStore(); er != nil {
		err = multierr.Append(err, er)
	}
	if env.Log != nil {
		env.Log.Debug("Program ended", zap.Duration("elapsed", env.Uptime()), zap.Strings("parsed args", cmd.Args().Slice()))
	}

	env.RestoreStdLog()

	// from here on errors go to stderr directly
	if env.Rpt != nil {
		if er := env.Rpt.Close(); er != nil {
			err = multierr.Append(err, fmt.Errorf("unable to close debug report: %w", er))
		}
	}
	if env.Cfg != nil && len(env.Cfg.Logging.FileLogger.Destination) > 0 {
		debug.SetCrashOutput(nil, debug.CrashOptions{})
		fname := filepath.Join(filepath.Dir(env.Cfg.Logging.FileLogger.Destination), misc.GetAppName()+"-panic.log")
		if fi, er := os.Stat(fname); er == nil && fi.Size() == 0 {
			if er := os.Remove(fname); er != nil {
				err = multierr.Append(err, fmt.Errorf("unable to remove empty panic log file '%s': %w", fname, er))
			}
		}
	}
	return
}

// Commands return plain errors, cli.Exit is never used. Set when error was
// already logged so it is not printed twice.
var errWasHandled bool

// Called before afterCommand, while log is still open.
func exitErrHandler(ctx context.Context, _ *cli.Command, err error) {
	env := state.EnvFromContext(ctx)
	if env.Log != nil {
		env.Log.Error("Program ended with error", zap.Error(err))
		errWasHandled = true
	}
}

func usageErrorHandler(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return err
}

func subcommandNotFoundHandler(ctx context.Context, _ *cli.Command, name string) {
	if log := state.EnvFromContext(ctx).Log; log != nil {
		log.Warn("Unknown command, nothing to do", zap.String("command", name))
	}
}

func main() {
	ctx, stop := signal.NotifyContext(state.ContextWithEnv(context.Background()), os.Interrupt, syscall.SIGTERM)

	modes := "(" + strings.Join(common.ShowModeNames(), ", ") + ")"
	listingFlags := func() []cli.Flag {
		return []cli.Flag{
			&cli.Int64Flag{Name: "category", Aliases: []string{"id"}, Usage: "category `ID`, 0 - top level"},
			&cli.StringFlag{Name: "mode", Usage: "override configured show `MODE` " + modes},
			&cli.StringFlag{Name: "lang", Usage: "interface `LANGUAGE`, configured one when empty"},
		}
	}

	app := &cli.Command{
		Name:            misc.GetAppName(),
		Usage:           "course listing renderer and settings tool for ikbfu2021 theme",
		Version:         misc.GetVersion() + " (" + runtime.Version() + ") : " + misc.GetGitHash(),
		HideHelpCommand: true,
		Before:          beforeCommand,
		After:           afterCommand,
		OnUsageError:    usageErrorHandler,
		ExitErrHandler:  exitErrHandler,
		CommandNotFound: subcommandNotFoundHandler,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, DefaultText: "", Usage: "load configuration from `FILE` (YAML)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "changes program behavior to help troubleshooting, produces report archive"},
		},
		Commands: []*cli.Command{
			{
				Name:         "initdb",
				Usage:        "Creates host database and optionally loads course catalog into it",
				OnUsageError: usageErrorHandler,
				Action:       initDatabase,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "sample", Usage: "load built-in demo catalog"},
				},
				ArgsUsage: "[CATALOG]",
				CustomHelpTemplate: fmt.Sprintf(`%s
CATALOG:
    YAML file describing categories, courses and theme settings to load,
    image paths in it are relative to the file location
`, cli.CommandHelpTemplate),
			},
			{
				Name:         "render",
				Usage:        "Renders course listing markup (HTML) from host database",
				OnUsageError: usageErrorHandler,
				Commands: []*cli.Command{
					{
						Name:         "tree",
						Usage:        "Renders category tree",
						OnUsageError: usageErrorHandler,
						Action:       renderTree,
						Flags:        listingFlags(),
						ArgsUsage:    "[DESTINATION]",
					},
					{
						Name:         "courses",
						Usage:        "Renders single page of category course listing",
						OnUsageError: usageErrorHandler,
						Action:       renderCourses,
						Flags: append(listingFlags(),
							&cli.IntFlag{Name: "page", Usage: "zero based page `NUMBER`"},
							&cli.IntFlag{Name: "perpage", Usage: "page `SIZE`, 0 - configured, -1 - all courses"},
						),
						ArgsUsage: "[DESTINATION]",
					},
				},
			},
			{
				Name:         "scss",
				Usage:        "Outputs complete theme SCSS in compilation order",
				OnUsageError: usageErrorHandler,
				Action:       outputSCSS,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "variables", Usage: "list top level SCSS variables instead of source"},
				},
				ArgsUsage: "[DESTINATION]",
			},
			{
				Name:         "preset",
				Usage:        "Manages theme presets",
				OnUsageError: usageErrorHandler,
				Commands: []*cli.Command{
					{
						Name:         "list",
						Usage:        "Lists available presets, selected one is marked",
						OnUsageError: usageErrorHandler,
						Action:       listPresets,
					},
					{
						Name:         "add",
						Usage:        "Uploads preset file",
						OnUsageError: usageErrorHandler,
						Action:       addPreset,
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "name", Usage: "preset `NAME`, file name when empty"},
							&cli.BoolFlag{Name: "select", Usage: "select preset after upload"},
						},
						ArgsUsage: "FILE",
					},
					{
						Name:         "import",
						Usage:        "Uploads all presets from zip archive",
						OnUsageError: usageErrorHandler,
						Action:       importPresets,
						ArgsUsage:    "ARCHIVE",
					},
					{
						Name:         "select",
						Usage:        "Makes preset active",
						OnUsageError: usageErrorHandler,
						Action:       selectPreset,
						ArgsUsage:    "NAME",
					},
				},
			},
			{
				Name:         "image",
				Usage:        "Uploads image for theme setting and publishes it",
				OnUsageError: usageErrorHandler,
				Action:       uploadImage,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "refresh", Usage: "republish already uploaded image, FILE is not needed"},
					&cli.BoolFlag{Name: "clear", Usage: "remove image of the setting, FILE is not needed"},
				},
				ArgsUsage: "SETTING [FILE]",
				CustomHelpTemplate: fmt.Sprintf(`%s
SETTING:
    setting name or admin form element name (s_theme_ikbfu2021_logo)
`, cli.CommandHelpTemplate),
			},
			{
				Name:         "plugin",
				Usage:        "Shows theme plugin information and checks host requirements",
				OnUsageError: usageErrorHandler,
				Action:       pluginInfo,
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "host", Usage: "host `VERSION` to check against requirements"},
					&cli.StringSliceFlag{Name: "installed", Usage: "installed `PLUGIN=VERSION`, may be repeated"},
				},
			},
			{
				Name:         "serve",
				Usage:        "Serves rendered listings over HTTP",
				OnUsageError: usageErrorHandler,
				Action:       serve,
			},
			{
				Name:  "dumpconfig",
				Usage: "Dumps either default or actual configuration (YAML)",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "default", Usage: "output default embedded configuration"},
				},
				OnUsageError: usageErrorHandler,
				Action:       outputConfiguration,
				ArgsUsage:    "[DESTINATION]",
				CustomHelpTemplate: fmt.Sprintf(`%s
DESTINATION:
    file name to write configuration to, if absent - STDOUT

Actual configuration is embedded defaults overlaid with values from
configuration file. Use --default to see defaults only.
`, cli.CommandHelpTemplate),
			},
		},
	}

	var err error
	// os.Exit below skips deferred calls, keep it last
	defer func() {
		stop()
		if err != nil {
			if !errWasHandled {
				fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", err)
			}
			os.Exit(1)
		}
	}()
	err = app.Run(ctx, os.Args)
}
