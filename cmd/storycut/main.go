package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/nguyentantai21042004/storycut/internal/config"
	"github.com/nguyentantai21042004/storycut/internal/logger"
	"github.com/nguyentantai21042004/storycut/internal/models"
	"github.com/nguyentantai21042004/storycut/internal/pipeline"
	"github.com/nguyentantai21042004/storycut/internal/watcher"
)

const usage = `Usage:
  storycut run   [-config file] [-no-captions] [-no-broll] [-force] [-tui] <folder>
  storycut watch [-config file] [-no-captions] [-no-broll]
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "run":
		err = runCommand(os.Args[2:])
	case "watch":
		err = watchCommand(os.Args[2:])
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}

	if err != nil {
		if !errors.Is(err, errClipsFailed) {
			fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		}
		os.Exit(1)
	}
}

var errClipsFailed = errors.New("one or more clips failed")

type commonFlags struct {
	configPath string
	noCaptions bool
	noBroll    bool
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "config.yaml", "path to the YAML config file")
	fs.BoolVar(&c.noCaptions, "no-captions", false, "skip burned-in captions")
	fs.BoolVar(&c.noBroll, "no-broll", false, "skip B-roll overlays")
}

func (c *commonFlags) options() pipeline.Options {
	opts := pipeline.DefaultOptions()
	opts.Captions = !c.noCaptions
	opts.Broll = !c.noBroll
	return opts
}

func runCommand(args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	var common commonFlags
	common.register(fs)
	force := fs.Bool("force", false, "re-render clips that already have an output")
	tui := fs.Bool("tui", false, "show an interactive progress view")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("run expects exactly one folder, got %d", fs.NArg())
	}
	folder := fs.Arg(0)

	cfg, err := loadConfig(common.configPath)
	if err != nil {
		return err
	}

	// The TUI owns the terminal, so logs are dropped while it runs.
	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if *tui {
		log = logger.NewNop()
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, closeDeps, err := buildDeps(ctx, cfg, folder, log)
	if err != nil {
		return err
	}
	defer closeDeps()

	opts := common.options()
	opts.Force = *force
	p := pipeline.New(cfg, deps, log)

	var rep models.RunReport
	if *tui {
		rep, err = runWithTUI(stop, func(obs pipeline.Observer) (models.RunReport, error) {
			return p.Run(ctx, folder, opts, obs)
		})
	} else {
		rep, err = p.Run(ctx, folder, opts, newLineObserver(os.Stdout))
	}
	if err != nil {
		return err
	}
	if rep.Summary.Failed > 0 {
		return errClipsFailed
	}
	return nil
}

func watchCommand(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	var common commonFlags
	common.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(common.configPath)
	if err != nil {
		return err
	}
	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(cfg.Paths.Input, 0755); err != nil {
		return fmt.Errorf("create input directory: %w", err)
	}

	folder := cfg.Paths.Input
	deps, closeDeps, err := buildDeps(ctx, cfg, folder, log)
	if err != nil {
		return err
	}
	defer closeDeps()

	// One session for the whole watch so concurrent clips share B-roll usage.
	p := pipeline.New(cfg, deps, log).Session()
	opts := common.options()
	obs := newLineObserver(os.Stdout)

	handler := func(ctx context.Context, path string) error {
		rep, err := p.RunClips(ctx, filepath.Dir(path), []string{path}, opts, obs)
		if err != nil {
			return err
		}
		if rep.Summary.Failed > 0 {
			return fmt.Errorf("%s: %s", rep.Results[0].Clip, rep.Results[0].Reason)
		}
		return nil
	}

	// Clips are fanned out by the watcher, one pipeline run per clip.
	w, err := watcher.New(cfg.Watch, folder, handler, log, cfg.Performance.MaxConcurrent)
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Stop()

	log.Info(ctx, "========================================")
	log.Info(ctx, "storycut watch is ready")
	log.Info(ctx, "System: %s/%s, %d cores", runtime.GOOS, runtime.GOARCH, runtime.NumCPU())
	log.Info(ctx, "Monitoring: %s (sweep %s)", folder, cfg.Watch.SweepCron)
	log.Info(ctx, "Curator: %s, encoder: %s, concurrency: %d", cfg.Curator.Provider, cfg.FFmpeg.Encoder, cfg.Performance.MaxConcurrent)
	log.Info(ctx, "Press Ctrl+C to stop")
	log.Info(ctx, "========================================")

	if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("watcher: %w", err)
	}
	log.Info(context.Background(), "storycut watch stopped")
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
