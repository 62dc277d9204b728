package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dshills/macrokit/internal/app"
	"github.com/dshills/macrokit/internal/console"
	"github.com/dshills/macrokit/internal/device"
	"github.com/dshills/macrokit/internal/input/macro"
	"github.com/dshills/macrokit/internal/logging"
	"github.com/dshills/macrokit/internal/screen"
)

func runRecord(e *env, args []string) error {
	fs := newFlagSet(e, "record", "[-o name|path] [-duration d]")
	out := fs.String("o", "", "Macro name in the library, or a file path (default: timestamped name)")
	duration := fs.Duration("duration", 0, "Stop after this long (default: wait for Enter)")
	profile := fs.String("profile", "", "Settings profile to use")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *out == "" {
		*out = "macro-" + time.Now().Format("20060102-150405")
	}

	a, err := e.newApp(false)
	if err != nil {
		return err
	}
	defer a.Shutdown()
	if *profile != "" {
		if err := a.SwitchProfile(*profile); err != nil {
			return err
		}
	}

	if err := a.StartRecording(); err != nil {
		return err
	}
	if *duration > 0 {
		fmt.Fprintf(e.stderr, "Recording for %s...\n", *duration)
	} else {
		fmt.Fprintf(e.stderr, "Recording... press Enter to stop.\n")
	}
	waitForStop(e, *duration)

	events, err := a.StopRecording()
	if err != nil {
		return err
	}
	path, err := saveRecording(a, *out, events)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "Recorded %d events (%s) -> %s\n",
		len(events), app.FormatDuration(events.Duration()), path)
	return nil
}

// waitForStop blocks until d elapses, or until Enter is read when d is
// zero. An interrupt ends the wait either way.
func waitForStop(e *env, d time.Duration) {
	if d > 0 {
		ctx, cancel := context.WithTimeout(e.ctx, d)
		defer cancel()
		<-ctx.Done()
		return
	}

	enter := make(chan struct{})
	go func() {
		bufio.NewReader(e.stdin).ReadString('\n')
		close(enter)
	}()
	select {
	case <-enter:
	case <-e.ctx.Done():
	}
}

// saveRecording saves to a path when out looks like one and to the
// library otherwise.
func saveRecording(a *app.Application, out string, events macro.Events) (string, error) {
	if !strings.ContainsAny(out, `/\`) {
		return a.SaveMacro(out)
	}
	if len(events) == 0 {
		return "", macro.ErrEmptyLog
	}
	if err := macro.NewFile(events, a.RecordedBounds()).Save(out); err != nil {
		return "", err
	}
	return out, nil
}

func runPlay(e *env, args []string) error {
	fs := newFlagSet(e, "play", "[-loops n] [-continuous] [-dry-run] <macro>")
	loops := fs.Int("loops", 1, "Number of passes; 0 follows the profile's continuous_playback option")
	continuous := fs.Bool("continuous", false, "Loop until interrupted")
	dryRun := fs.Bool("dry-run", false, "Log actions instead of injecting input")
	profile := fs.String("profile", "", "Settings profile to use")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("%w: play needs exactly one macro", errUsage)
	}
	if *loops < 0 {
		return fmt.Errorf("%w: -loops must not be negative", errUsage)
	}
	if *dryRun {
		e.cfg.Device.Backend = device.BackendDryRun
	}

	a, err := e.newApp(false)
	if err != nil {
		return err
	}
	defer a.Shutdown()
	if *profile != "" {
		if err := a.SwitchProfile(*profile); err != nil {
			return err
		}
	}

	f, err := a.LoadMacro(fs.Arg(0))
	if err != nil {
		return err
	}
	if *continuous {
		a.SetLoopLimit(-1)
	} else {
		a.SetLoopLimit(*loops)
	}

	if err := a.StartPlayback(); err != nil {
		return err
	}
	fmt.Fprintf(e.stderr, "Playing %d events (%s per pass)...\n",
		len(f.Events), app.FormatDuration(f.Duration()))

	go func() {
		<-e.ctx.Done()
		a.StopPlayback()
	}()
	res, err := a.WaitPlayback(context.Background())
	if err != nil {
		return err
	}
	if res.Err != nil && !errors.Is(res.Err, context.Canceled) {
		return res.Err
	}
	fmt.Fprintf(e.stdout, "Played %d loops\n", res.Loops)
	return nil
}

func runConsole(e *env, args []string) error {
	fs := newFlagSet(e, "console", "[-o name] [-log-file path]")
	saveName := fs.String("o", "", "Macro name used by the save key")
	logFile := fs.String("log-file", "", "Write logs to this file (the console hides stderr)")
	profile := fs.String("profile", "", "Settings profile to use")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *logFile != "" {
		if err := os.MkdirAll(filepath.Dir(*logFile), 0o755); err != nil {
			return err
		}
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		e.logger.SetOutput(f)
	} else {
		e.logger = logging.Nop()
	}

	a, err := e.newApp(true)
	if err != nil {
		return err
	}
	defer a.Shutdown()
	if *profile != "" {
		if err := a.SwitchProfile(*profile); err != nil {
			e.logger.Warn("%v", err)
		}
	}

	c, err := console.New(a, e.cfg.Hotkeys.Record, e.cfg.Hotkeys.Playback,
		console.WithSaveName(*saveName),
		console.WithLogger(e.logger),
	)
	if err != nil {
		return err
	}
	return c.Run(e.ctx)
}

func runDisplays(e *env, args []string) error {
	rects, err := displayProvider.Displays()
	if err != nil {
		return err
	}
	union, err := screen.BoundsOf(rects)
	if err != nil {
		return err
	}
	for i, r := range rects {
		b, _ := screen.BoundsOf([]image.Rectangle{r})
		fmt.Fprintf(e.stdout, "Display %d: %s\n", i, b)
	}
	fmt.Fprintf(e.stdout, "Virtual desktop: %s\n", union)
	return nil
}
