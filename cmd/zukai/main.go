package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/fang"
	"github.com/google/uuid"
	"github.com/hylla/zukai/internal/adapters/storage/sqlite"
	"github.com/hylla/zukai/internal/app"
	"github.com/hylla/zukai/internal/config"
	"github.com/hylla/zukai/internal/domain"
	"github.com/hylla/zukai/internal/platform"
	"github.com/hylla/zukai/internal/render"
	"github.com/hylla/zukai/internal/report"
	"github.com/hylla/zukai/internal/tui"
	"github.com/spf13/cobra"
)

// version stores a package-level helper value.
var version = "dev"

// program represents program data used by this package.
type program interface {
	Run() (tea.Model, error)
}

// programFactory stores a package-level helper value.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

// clipboardWriter copies exported JSON for `export --clipboard`.
var clipboardWriter = clipboard.WriteAll

// newID and clock feed the diagram services.
var (
	newID = uuid.NewString
	clock = time.Now
)

// main handles main.
func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// run builds the command tree and executes args against it.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	root := newRootCommand(newRootOptions(stdout, stderr))
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return fang.Execute(ctx, root, fang.WithVersion(version))
}

// rootOptions holds persistent flags shared by every command.
type rootOptions struct {
	configPath  string
	dbPath      string
	appName     string
	devMode     bool
	startOnRing bool
	stdout      io.Writer
	stderr      io.Writer
}

// newRootOptions seeds flag defaults from the environment.
func newRootOptions(stdout, stderr io.Writer) *rootOptions {
	opts := &rootOptions{
		appName: platform.DefaultAppName,
		devMode: version == "dev",
		stdout:  stdout,
		stderr:  stderr,
	}
	if envDev, ok := parseBoolEnv("ZUKAI_DEV_MODE"); ok {
		opts.devMode = envDev
	}
	if envApp := strings.TrimSpace(os.Getenv("ZUKAI_APP_NAME")); envApp != "" {
		opts.appName = envApp
	}
	return opts
}

// newRootCommand builds the zukai command tree. Without a subcommand the TUI starts.
func newRootCommand(opts *rootOptions) *cobra.Command {
	root := &cobra.Command{
		Use:           "zukai",
		Short:         "Draw logic models and purpose models from the terminal",
		Long:          "zukai edits two diagrams: a six-stage logic model with arrows between adjacent stages, and a circular purpose model of stakeholders around a purpose.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), opts)
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to config TOML")
	flags.StringVar(&opts.dbPath, "db", "", "path to sqlite database")
	flags.StringVar(&opts.appName, "app", opts.appName, "application name for config/data path resolution")
	flags.BoolVar(&opts.devMode, "dev", opts.devMode, "use dev mode paths (<app>-dev)")
	root.Flags().BoolVar(&opts.startOnRing, "purpose", false, "open the purpose model tab first")

	root.AddCommand(
		newPathsCommand(opts),
		newConfigCommand(opts),
		newServeCommand(opts),
		newHistoryCommand(opts),
		newLogicCommand(opts),
		newPurposeCommand(opts),
	)
	return root
}

// runtimeEnv holds everything a command needs once config and storage are open.
type runtimeEnv struct {
	paths      platform.Paths
	configPath string
	cfg        config.Config
	logger     *runtimeLogger
	repo       *sqlite.Repository
	logic      *app.LogicService
	purpose    *app.PurposeService
}

// resolvePaths resolves platform paths plus config and db overrides.
func (o *rootOptions) resolvePaths() (platform.Paths, string, string, bool, error) {
	paths, err := platform.DefaultPathsWithOptions(platform.Options{AppName: o.appName, DevMode: o.devMode})
	if err != nil {
		return platform.Paths{}, "", "", false, err
	}
	configPath := strings.TrimSpace(o.configPath)
	if configPath == "" {
		if envPath := strings.TrimSpace(os.Getenv("ZUKAI_CONFIG")); envPath != "" {
			configPath = envPath
		} else {
			configPath = paths.ConfigPath
		}
	}
	dbPath := strings.TrimSpace(o.dbPath)
	dbOverridden := dbPath != ""
	if !dbOverridden {
		if envPath := strings.TrimSpace(os.Getenv("ZUKAI_DB_PATH")); envPath != "" {
			dbPath = envPath
			dbOverridden = true
		} else {
			dbPath = paths.DBPath
		}
	}
	return paths, configPath, dbPath, dbOverridden, nil
}

// loadConfig reads the config file over defaults and applies the db override.
func (o *rootOptions) loadConfig() (config.Config, platform.Paths, string, error) {
	paths, configPath, dbPath, dbOverridden, err := o.resolvePaths()
	if err != nil {
		return config.Config{}, platform.Paths{}, "", err
	}
	cfg, err := config.Load(configPath, config.Default(dbPath))
	if err != nil {
		return config.Config{}, platform.Paths{}, "", fmt.Errorf("load config %q: %w", configPath, err)
	}
	if dbOverridden {
		cfg.Database.Path = dbPath
	}
	return cfg, paths, configPath, nil
}

// open loads config, starts logging, opens sqlite and restores both diagrams.
// quietConsole mutes console logs, which the TUI needs while it draws.
func (o *rootOptions) open(ctx context.Context, quietConsole bool) (*runtimeEnv, error) {
	cfg, paths, configPath, err := o.loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := newRuntimeLogger(o.stderr, o.appName, o.devMode, cfg.Logging, time.Now)
	if err != nil {
		return nil, fmt.Errorf("configure runtime logger: %w", err)
	}
	logger.SetConsoleEnabled(!quietConsole)
	logger.Debug("runtime paths resolved", "config_path", configPath, "data_dir", paths.DataDir, "db_path", cfg.Database.Path)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Info("dev file logging enabled", "path", devPath)
	}

	repo, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Error("sqlite open failed", "db_path", cfg.Database.Path, "err", err)
		_ = logger.Close()
		return nil, fmt.Errorf("open sqlite repository: %w", err)
	}
	logger.Debug("sqlite repository ready", "db_path", cfg.Database.Path)

	renderer := render.New()
	notifier := app.RenderNotifierFunc(func(kind domain.DiagramKind) {
		logger.Debug("diagram redraw requested", "diagram", kind)
	})
	logic := app.NewLogicService(repo, newID, clock, app.ServiceConfig{
		Logger:   logger,
		Notifier: notifier,
		Renderer: renderer,
		Viewport: app.Viewport{Width: cfg.Layout.LogicWidth},
		Export: app.ExportConfig{
			Settle:      cfg.Export.LogicSettle.Duration,
			ColumnWidth: cfg.Export.LogicColumnWidth,
			Padding:     cfg.Export.LogicPadding,
		},
	})
	purpose := app.NewPurposeService(repo, newID, clock, app.ServiceConfig{
		Logger:   logger,
		Notifier: notifier,
		Renderer: renderer,
		Viewport: app.Viewport{Width: cfg.Layout.PurposeWidth, Height: cfg.Layout.PurposeHeight},
		Export: app.ExportConfig{
			Settle: cfg.Export.PurposeSettle.Duration,
			Width:  cfg.Export.PurposeWidth,
			Height: cfg.Export.PurposeHeight,
		},
	})
	logic.Load(ctx)
	purpose.Load(ctx)

	return &runtimeEnv{
		paths:      paths,
		configPath: configPath,
		cfg:        cfg,
		logger:     logger,
		repo:       repo,
		logic:      logic,
		purpose:    purpose,
	}, nil
}

// Close releases the repository and log file.
func (e *runtimeEnv) Close() {
	if e == nil {
		return
	}
	if err := e.repo.Close(); err != nil {
		e.logger.Warn("sqlite close failed", "db_path", e.cfg.Database.Path, "err", err)
	}
	_ = e.logger.Close()
}

// withEnv adapts a command body that needs an open runtime into cobra's RunE.
func (o *rootOptions) withEnv(fn func(cmd *cobra.Command, args []string, env *runtimeEnv) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		env, err := o.open(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer env.Close()
		if err := fn(cmd, args, env); err != nil {
			env.logger.Debug("command failed", "command", cmd.CommandPath(), "err", err)
			return err
		}
		return nil
	}
}

// runTUI starts the interactive board.
func runTUI(ctx context.Context, opts *rootOptions) error {
	env, err := opts.open(ctx, true)
	if err != nil {
		return err
	}
	defer env.Close()

	m := tui.NewModel(
		env.logic,
		env.purpose,
		tui.WithConfirmDelete(env.cfg.TUI.ConfirmDelete),
		tui.WithShowHelp(env.cfg.TUI.ShowHelp),
		tui.WithExportDir(env.paths.ExportDir),
		tui.WithImageFormat(domain.ImageFormat(env.cfg.Export.DefaultFormat)),
		tui.WithClipboard(clipboardWriter),
		tui.WithStartTab(opts.startOnRing),
	)
	env.logger.Info("starting tui program loop")
	if _, err := programFactory(m).Run(); err != nil {
		env.logger.Error("tui program terminated with error", "err", err)
		return fmt.Errorf("run tui program: %w", err)
	}
	env.logger.Info("tui program finished")
	return nil
}

// newPathsCommand prints resolved config and data locations.
func newPathsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print resolved config, database and export paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			paths, configPath, dbPath, _, err := opts.resolvePaths()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "app: %s\n", opts.appName)
			_, _ = fmt.Fprintf(out, "dev_mode: %t\n", opts.devMode)
			_, _ = fmt.Fprintf(out, "config: %s\n", configPath)
			_, _ = fmt.Fprintf(out, "data_dir: %s\n", paths.DataDir)
			_, _ = fmt.Fprintf(out, "db: %s\n", dbPath)
			_, _ = fmt.Fprintf(out, "export_dir: %s\n", paths.ExportDir)
			_, _ = fmt.Fprintf(out, "log_dir: %s\n", paths.LogDir)
			return nil
		},
	}
}

// markdownOptions selects how summaries are printed.
type markdownOptions struct {
	style string
	raw   bool
	width int
}

// bind registers the summary flags on cmd.
func (m *markdownOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&m.style, "style", "dark", "glamour style (dark, light, notty, ascii, ...)")
	cmd.Flags().BoolVar(&m.raw, "raw", false, "print markdown without terminal styling")
	cmd.Flags().IntVar(&m.width, "width", 100, "wrap width")
}

// print writes md to w, styled unless raw is set.
func (m markdownOptions) print(w io.Writer, md string) error {
	if !m.raw {
		md = report.NewRenderer(m.style).Render(md, m.width)
	}
	if !strings.HasSuffix(md, "\n") {
		md += "\n"
	}
	_, err := io.WriteString(w, md)
	return err
}

// parseBoolEnv parses input into a normalized form.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
