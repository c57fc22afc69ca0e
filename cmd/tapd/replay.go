package main

import (
	"flag"
	"os"

	"tapd/internal/config"
	"tapd/internal/evdev"
	"tapd/internal/logging"
	"tapd/internal/replay"
	"tapd/internal/trace"
)

func cmdReplay(args []string) {
	fs := flag.NewFlagSet("replay", flag.ExitOnError)
	configPath := fs.String("config", "/etc/tapd/tapd.toml", "configuration file")
	device := fs.String("device", "", "event device path or index (overrides config)")
	actionName := fs.String("action", "", "replay a named action instead of stdin")
	dryRun := fs.Bool("dry-run", false, "do not actually inject events")
	noSleep := fs.Bool("no-sleep", false, "do not sleep during replay (tests)")
	logLevel := fs.String("log-level", "info", "log level")
	fs.Parse(args)

	cfg, err := config.NewLoader(*configPath).Load()
	if err != nil {
		fatal("load config: %v", err)
	}
	if *device != "" {
		cfg.Device.Path = *device
	}

	log, err := logging.New(logging.Config{Level: *logLevel})
	if err != nil {
		fatal("logging: %v", err)
	}

	var src trace.Source
	if *actionName != "" {
		cat, err := cfg.Catalog(log)
		if err != nil {
			fatal("actions: %v", err)
		}
		a, ok := cat.Get(*actionName)
		if !ok {
			fatal("unknown action %q", *actionName)
		}
		src = a.Source()
	} else {
		src = trace.NewDecoder(os.Stdin)
	}

	dev, err := evdev.Open(evdev.ResolvePath(cfg.Device.Path))
	if err != nil {
		fatal("%v", err)
	}
	defer dev.Close()

	engine := replay.NewEngine(dev, replay.Options{
		DryRun:  *dryRun || cfg.Replay.DryRun,
		NoSleep: *noSleep || cfg.Replay.NoSleep,
		Log:     log,
	})
	if err := engine.Replay(src); err != nil {
		fatal("replay: %v", err)
	}
}
