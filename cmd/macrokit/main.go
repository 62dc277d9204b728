// Package main is the entry point for macrokit, a desktop macro recorder.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/macrokit/internal/app"
	"github.com/dshills/macrokit/internal/config"
	"github.com/dshills/macrokit/internal/logging"
	"github.com/dshills/macrokit/internal/screen"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// displayProvider is replaced in tests.
var displayProvider screen.Provider = screen.ScreenshotProvider{}

// errUsage marks command-line mistakes; they exit with status 2.
var errUsage = errors.New("usage error")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// env carries what every command needs.
type env struct {
	ctx    context.Context
	cfg    config.Config
	logger *logging.Logger
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

type command struct {
	name    string
	summary string
	run     func(e *env, args []string) error
}

var commands = []command{
	{"record", "record input until Enter, a signal or -duration and save it", runRecord},
	{"play", "play a saved macro", runPlay},
	{"console", "open the interactive console", runConsole},
	{"displays", "print the monitor layout", runDisplays},
	{"profiles", "manage settings profiles", runProfiles},
	{"version", "print version information", runVersion},
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("macrokit", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to configuration file (default "+config.DefaultPath()+")")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	fs.Usage = func() { usage(fs, stderr) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() == 0 {
		usage(fs, stderr)
		return 2
	}

	name := fs.Arg(0)
	var cmd *command
	for i := range commands {
		if commands[i].name == name {
			cmd = &commands[i]
		}
	}
	if cmd == nil {
		fmt.Fprintf(stderr, "Error: unknown command %q\n\n", name)
		usage(fs, stderr)
		return 2
	}

	cfg, err := config.Load(config.Options{Path: *configPath})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 2
		}
	}

	e := &env{
		ctx:    ctx,
		cfg:    cfg,
		logger: newLogger(cfg, stderr),
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
	}
	if err := cmd.run(e, fs.Args()[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if errors.Is(err, errUsage) {
			return 2
		}
		return 1
	}
	return 0
}

func usage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintf(w, "macrokit - record and replay mouse and keyboard input\n\n")
	fmt.Fprintf(w, "Usage: macrokit [options] <command> [arguments]\n\n")
	fmt.Fprintf(w, "Commands:\n")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-10s %s\n", c.name, c.summary)
	}
	fmt.Fprintf(w, "\nOptions:\n")
	fs.PrintDefaults()
	fmt.Fprintf(w, "\nExamples:\n")
	fmt.Fprintf(w, "  macrokit record -o farm          Record until Enter, save as farm\n")
	fmt.Fprintf(w, "  macrokit play -loops 5 farm      Play the farm macro five times\n")
	fmt.Fprintf(w, "  macrokit profiles use work       Load the work profile on startup\n")
}

func newLogger(cfg config.Config, w io.Writer) *logging.Logger {
	return logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.Logging.Level),
		Output: w,
		Prefix: "macrokit",
		Color:  logging.ParseColorMode(cfg.Logging.Color),
	})
}

// newApp builds and starts an application from the environment.
func (e *env) newApp(watchProfiles bool) (*app.Application, error) {
	a, err := app.New(app.Options{
		Config:        e.cfg,
		Logger:        e.logger,
		Displays:      displayProvider,
		WatchProfiles: watchProfiles,
	})
	if err != nil {
		return nil, err
	}
	if err := a.Start(e.ctx); err != nil {
		a.Shutdown()
		return nil, err
	}
	return a, nil
}

func newFlagSet(e *env, name, args string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	fs.Usage = func() {
		fmt.Fprintf(e.stderr, "Usage: macrokit %s %s\n", name, args)
		fs.PrintDefaults()
	}
	return fs
}

func runVersion(e *env, args []string) error {
	fmt.Fprintf(e.stdout, "macrokit %s\n", version)
	fmt.Fprintf(e.stdout, "Commit: %s\n", commit)
	fmt.Fprintf(e.stdout, "Built: %s\n", date)
	return nil
}
