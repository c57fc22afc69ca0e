package main

import (
	"flag"
	"fmt"
	"sort"

	"tapd/internal/config"
	"tapd/internal/logging"
)

func cmdActions(args []string) {
	fs := flag.NewFlagSet("actions", flag.ExitOnError)
	configPath := fs.String("config", "/etc/tapd/tapd.toml", "configuration file")
	fs.Parse(args)

	cfg, err := config.NewLoader(*configPath).Load()
	if err != nil {
		fatal("load config: %v", err)
	}
	log, err := logging.New(cfg.Logging)
	if err != nil {
		fatal("logging: %v", err)
	}
	cat, err := cfg.Catalog(log)
	if err != nil {
		fatal("actions: %v", err)
	}

	bound := zonesByAction(cfg.Bindings)

	for _, name := range cat.Names() {
		a, _ := cat.Get(name)
		kind := "trace"
		size := len(a.Trace)
		if len(a.Paths) > 0 {
			kind = "paths"
			size = len(a.Paths)
		}
		line := fmt.Sprintf("%-12s %s(%d)", name, kind, size)
		if zones := bound[name]; len(zones) > 0 {
			line += fmt.Sprintf("  [%s]", zones[0])
			for _, z := range zones[1:] {
				line += fmt.Sprintf(" [%s]", z)
			}
		}
		fmt.Println(line)
	}
}

// zonesByAction inverts the zone->action bindings. Zone lists are
// sorted so the listing is stable across runs.
func zonesByAction(bindings map[string]string) map[string][]string {
	bound := map[string][]string{}
	for zone, name := range bindings {
		bound[name] = append(bound[name], zone)
	}
	for _, zones := range bound {
		sort.Strings(zones)
	}
	return bound
}
