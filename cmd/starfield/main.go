package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lixenwraith/starfield/config"
	"github.com/lixenwraith/starfield/core"
	"github.com/lixenwraith/starfield/terminal"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

// options holds flag values; only flags the user changed override the config
type options struct {
	configPath     string
	fps            int
	seed           uint64
	colorMode      string
	title          string
	tagline        string
	debug          bool
	watch          bool
	resizeDebounce time.Duration
}

func newRootCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "starfield",
		Short: "Drifting starfield backdrop for the terminal",
		Long: `starfield fills the terminal with softly falling stars drawn in braille
sub-cell resolution, optionally behind a centered title and tagline.

Settings come from defaults, then --config YAML, then STARFIELD_* environment
variables, then flags. Press q, Esc or Ctrl-C to quit.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "YAML config file")
	f.IntVar(&opts.fps, "fps", 0, "Refresh rate in frames per second")
	f.Uint64Var(&opts.seed, "seed", 0, "Random seed (0 uses system entropy)")
	f.StringVar(&opts.colorMode, "color", "", "Color mode: auto, truecolor, 256")
	f.StringVar(&opts.title, "title", "", "Banner title drawn over the stars")
	f.StringVar(&opts.tagline, "tagline", "", "Banner tagline drawn under the title")
	f.BoolVar(&opts.debug, "debug", false, "Write debug logs to "+logDir+"/"+logFileName)
	f.BoolVarP(&opts.watch, "watch", "w", false, "Reload --config when it changes")
	f.DurationVar(&opts.resizeDebounce, "resize-debounce", 0, "Coalesce terminal resizes within this window")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "starfield", version)
		},
	})

	return cmd
}

// applyFlags overlays flags the user set explicitly
func applyFlags(cmd *cobra.Command, opts *options, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("fps") {
		cfg.FPS = opts.fps
	}
	if f.Changed("seed") {
		cfg.Seed = opts.seed
	}
	if f.Changed("color") {
		cfg.ColorMode = opts.colorMode
	}
	if f.Changed("title") {
		cfg.Banner.Title = opts.title
	}
	if f.Changed("tagline") {
		cfg.Banner.Tagline = opts.tagline
	}
	if f.Changed("resize-debounce") {
		cfg.ResizeDebounce = opts.resizeDebounce
	}
}

// loadConfig merges file and environment, overlays flags, then validates the result
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	applyFlags(cmd, opts, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(cmd *cobra.Command, opts *options) error {
	log, closeLog, err := setupLogging(opts.debug)
	if err != nil {
		return err
	}
	defer closeLog()

	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	if opts.watch && opts.configPath == "" {
		return fmt.Errorf("--watch requires --config")
	}

	mode, _ := terminal.ParseColorMode(cfg.ColorMode)
	screen, err := terminal.Open(mode)
	if err != nil {
		return err
	}
	core.SetCrashCleanup(screen.Fini)
	defer core.SetCrashCleanup(nil)

	// Panic Recovery: ensure terminal is reset even if the main goroutine crashes
	defer func() {
		if r := recover(); r != nil {
			screen.Fini()
			fmt.Fprintf(os.Stderr, "\n\x1b[31mSTARFIELD CRASHED: %v\x1b[0m\n", r)
			fmt.Fprintf(os.Stderr, "Stack Trace:\n%s\n", debug.Stack())
			os.Exit(1)
		}
	}()

	a, err := newApp(cfg, screen, log)
	if err != nil {
		screen.Fini()
		return err
	}

	var watcher *config.Watcher
	if opts.watch {
		watcher, err = config.NewWatcher(opts.configPath, a.reload, log)
		if err != nil {
			screen.Fini()
			return err
		}
		watcher.SetOverlay(func(c *config.Config) { applyFlags(cmd, opts, c) })
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return a.run(ctx, watcher)
}

func main() {
	if err := newRootCmd(&options{}).ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
