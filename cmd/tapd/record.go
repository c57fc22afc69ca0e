package main

import (
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tapd/internal/evdev"
	"tapd/internal/logging"
	"tapd/internal/touch"
	"tapd/internal/trace"
)

func cmdRecord(args []string) {
	fs := flag.NewFlagSet("record", flag.ExitOnError)
	device := fs.String("device", "0", "event device path or index")
	grab := fs.Bool("grab", true, "grab the device so recorded taps do not reach the UI")
	logLevel := fs.String("log-level", "info", "log level")
	fs.Parse(args)

	log, err := logging.New(logging.Config{Level: *logLevel})
	if err != nil {
		fatal("logging: %v", err)
	}

	dev, err := evdev.Open(evdev.ResolvePath(*device))
	if err != nil {
		fatal("%v", err)
	}
	defer dev.Close()

	if *grab {
		if err := grabWithRetry(dev, log); err != nil {
			fatal("%v", err)
		}
		defer dev.Ungrab()
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	tracker := touch.NewTracker(log)
	recorder := trace.NewRecorder(trace.NewEncoder(os.Stdout))

	log.Info("recording", slog.String("device", dev.Path()))

	for {
		select {
		case <-stop:
			return
		default:
		}

		// A finite timeout keeps the stop channel responsive.
		ready, err := dev.Wait(time.Second)
		if err != nil {
			fatal("%v", err)
		}
		if !ready {
			continue
		}
		ev, err := dev.ReadEvent()
		if err != nil {
			fatal("%v", err)
		}
		b := tracker.Update(ev)
		if b == nil {
			continue
		}
		if _, err := recorder.Observe(b); err != nil {
			fatal("write trace: %v", err)
		}
	}
}
