package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tapd/internal/action"
	"tapd/internal/config"
	"tapd/internal/evdev"
	"tapd/internal/gesture"
	"tapd/internal/logging"
	"tapd/internal/replay"
	"tapd/internal/touch"
	"tapd/internal/trace"
)

// grabRetries is how often an exclusive grab is attempted before
// giving up (the device may be briefly busy at boot).
const grabRetries = 10

func cmdRun(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "/etc/tapd/tapd.toml", "configuration file")
	device := fs.String("device", "", "event device path or index (overrides config)")
	grab := fs.Bool("grab", false, "grab the device exclusively (overrides config)")
	dryRun := fs.Bool("dry-run", false, "do not actually inject events")
	noSleep := fs.Bool("no-sleep", false, "do not sleep during replay (tests)")
	pidfilePath := fs.String("pidfile", "", "pidfile, also kills old instance if existed")
	daemonize := fs.Bool("daemonize", false, "detach from the terminal")
	logLevel := fs.String("log-level", "", "log level (overrides config)")
	fs.Parse(args)

	loader := config.NewLoader(*configPath)
	cfg, err := loader.Load()
	if err != nil {
		fatal("load config: %v", err)
	}
	if *device != "" {
		cfg.Device.Path = *device
	}
	if *grab {
		cfg.Device.Grab = true
	}
	if *dryRun {
		cfg.Replay.DryRun = true
	}
	if *noSleep {
		cfg.Replay.NoSleep = true
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}

	log, err := logging.New(cfg.Logging)
	if err != nil {
		fatal("logging: %v", err)
	}

	killOldInstance(*pidfilePath, log)

	if *daemonize {
		if reExecDaemon() {
			return
		}
	}

	if err := writePidfile(*pidfilePath); err != nil {
		fatal("pidfile: %v", err)
	}

	dev, err := evdev.Open(evdev.ResolvePath(cfg.Device.Path))
	if err != nil {
		fatal("%v", err)
	}
	defer dev.Close()

	if cfg.Device.Grab {
		if err := grabWithRetry(dev, log); err != nil {
			fatal("%v", err)
		}
		defer dev.Ungrab()
	}

	cat, err := cfg.Catalog(log)
	if err != nil {
		fatal("actions: %v", err)
	}

	loop := &runLoop{
		log:        log,
		dev:        dev,
		tracker:    touch.NewTracker(log),
		recognizer: gesture.NewRecognizer(log, cfg.Thresholds(), cfg.GestureDetectors()),
		catalog:    cat,
		engine: replay.NewEngine(dev, replay.Options{
			DryRun:  cfg.Replay.DryRun,
			NoSleep: cfg.Replay.NoSleep,
			Log:     log,
		}),
		noSleep: cfg.Replay.NoSleep,
	}

	// Hot reload swaps recognition state only; the device and the
	// replay engine stay as they are.
	loader.OnChange(func(c *config.Config) {
		newCat, err := c.Catalog(log)
		if err != nil {
			log.Warn("config reloaded but actions are broken, keeping old catalog",
				slog.Any("error", err))
			newCat = nil
		}
		loop.reconfigure(c.Thresholds(), c.GestureDetectors(), newCat)
		log.Info("configuration reloaded")
	})
	if err := loader.Watch(); err != nil {
		log.Warn("config watch unavailable", slog.Any("error", err))
	}
	defer loader.Close()
	go func() {
		for err := range loader.Errors() {
			log.Warn("config reload", slog.Any("error", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	log.Info("tapd running",
		slog.String("device", dev.Path()),
		slog.Bool("grab", cfg.Device.Grab),
		slog.Bool("dry_run", cfg.Replay.DryRun))

	if err := loop.run(stop); err != nil {
		fatal("%v", err)
	}
}

// runLoop owns all recognition state. It runs on a single goroutine;
// reconfigure hands new state over through a channel so the loop never
// races with the config watcher.
type runLoop struct {
	log        *slog.Logger
	dev        *evdev.Device
	tracker    *touch.Tracker
	recognizer *gesture.Recognizer
	catalog    *action.Catalog
	engine     *replay.Engine
	noSleep    bool

	queue []trace.Source
	swap  chan loopState
}

type loopState struct {
	recognizer *gesture.Recognizer
	catalog    *action.Catalog
}

func (l *runLoop) reconfigure(th gesture.Thresholds, dets []gesture.Detector, cat *action.Catalog) {
	st := loopState{recognizer: gesture.NewRecognizer(l.log, th, dets), catalog: cat}
	select {
	case l.swap <- st:
	default:
	}
}

var errLoopDone = errors.New("loop done")

func (l *runLoop) run(stop <-chan os.Signal) error {
	l.swap = make(chan loopState, 1)

	for {
		select {
		case <-stop:
			l.log.Info("signal received, stopping")
			return l.drain()
		case st := <-l.swap:
			l.recognizer = st.recognizer
			if st.catalog != nil {
				l.catalog = st.catalog
			}
		default:
		}

		err := l.step()
		if err == errLoopDone {
			return l.drain()
		}
		if err != nil {
			return err
		}
	}
}

// step performs one wait/read/dispatch cycle: wait on the device with a
// bounded timeout so run() gets back to its select and stays responsive
// to signals and config swaps, poll faster when an action is queued and
// use quiet gaps to inject.
func (l *runLoop) step() error {
	timeout := time.Second
	if len(l.queue) > 0 || l.noSleep {
		timeout = 50 * time.Millisecond
	}

	ready, err := l.dev.Wait(timeout)
	if err != nil {
		return err
	}

	if ready {
		ev, err := l.dev.ReadEvent()
		if err != nil {
			return err
		}
		l.feed(ev)
		return nil
	}

	if len(l.queue) > 0 {
		src := l.queue[0]
		l.queue = l.queue[1:]
		if err := l.engine.Replay(src); err != nil {
			l.log.Error("replay failed", slog.Any("error", err))
		}
		return nil
	}

	if l.noSleep {
		return errLoopDone
	}
	return nil
}

func (l *runLoop) feed(ev evdev.Event) {
	b := l.tracker.Update(ev)
	if b == nil {
		return
	}
	for _, f := range b.Released {
		name, ok := l.recognizer.OnRelease(f)
		if !ok {
			continue
		}
		a, found := l.catalog.Get(name)
		if !found {
			l.log.Warn("gesture matched an unknown action", slog.String("action", name))
			continue
		}
		l.log.Info("gesture recognized", slog.String("action", name))
		l.queue = append(l.queue, a.Source())
	}
	b.CommitUpdated()
}

// drain replays whatever is still queued before exiting.
func (l *runLoop) drain() error {
	for len(l.queue) > 0 {
		src := l.queue[0]
		l.queue = l.queue[1:]
		if err := l.engine.Replay(src); err != nil {
			l.log.Error("replay failed", slog.Any("error", err))
		}
	}
	return nil
}

func grabWithRetry(dev *evdev.Device, log *slog.Logger) error {
	var err error
	for i := 0; i < grabRetries; i++ {
		if err = dev.Grab(); err == nil {
			return nil
		}
		// Device busy? An old instance may still hold the grab.
		log.Debug("grab failed, retrying", slog.Any("error", err))
		time.Sleep(200 * time.Millisecond)
	}
	return fmt.Errorf("could not grab: %w", err)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
