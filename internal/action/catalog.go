// Package action maps gesture names to injectable touch sequences.
//
// An action is either a literal pre-recorded trace or a set of
// parametric finger paths rendered at replay time. The catalog ships
// with the built-in page-turn swipes and can be extended from a
// library directory or the configuration file.
package action

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"tapd/internal/gesture"
	"tapd/internal/replay"
	"tapd/internal/trace"
)

// PathSpec is the serialized form of a stroke in path-spec files and
// the configuration. Times are integral milliseconds.
type PathSpec struct {
	Start      replay.Point `json:"start" toml:"start" yaml:"start"`
	End        replay.Point `json:"end" toml:"end" yaml:"end"`
	DurationMs int          `json:"duration_ms" toml:"duration_ms" yaml:"duration_ms"`
	IntervalMs int          `json:"interval_ms,omitempty" toml:"interval_ms" yaml:"interval_ms"`
	DelayMs    int          `json:"delay_ms,omitempty" toml:"delay_ms" yaml:"delay_ms"`
	Pressure   int32        `json:"pressure,omitempty" toml:"pressure" yaml:"pressure"`
	ID         int32        `json:"id,omitempty" toml:"id" yaml:"id"`
}

// Path converts the spec to its runtime form.
func (s PathSpec) Path() replay.Path {
	return replay.Path{
		Start:    s.Start,
		End:      s.End,
		Duration: time.Duration(s.DurationMs) * time.Millisecond,
		Interval: time.Duration(s.IntervalMs) * time.Millisecond,
		Delay:    time.Duration(s.DelayMs) * time.Millisecond,
		Pressure: s.Pressure,
		ID:       s.ID,
	}
}

// Paths converts a spec list, rejecting strokes without a duration.
func Paths(specs []PathSpec) ([]replay.Path, error) {
	paths := make([]replay.Path, 0, len(specs))
	for i, s := range specs {
		if s.DurationMs <= 0 {
			return nil, fmt.Errorf("path %d has no duration", i)
		}
		paths = append(paths, s.Path())
	}
	return paths, nil
}

// Action is one named injectable touch sequence. Exactly one of Trace
// and Paths is set.
type Action struct {
	Name  string
	Trace []trace.Record
	Paths []replay.Path
}

// Source returns a fresh replayable stream for the action.
func (a Action) Source() trace.Source {
	if len(a.Paths) > 0 {
		return replay.Generate(a.Paths)
	}
	return trace.NewSliceSource(a.Trace)
}

// Builtin action names.
const (
	Prev   = "prev"
	Next   = "next"
	Home   = "home"
	Recent = "recent"
)

// builtins are straight-line renditions of the recorded page-turn
// strokes: endpoints and rough duration are kept, the wobble is not.
func builtins() []Action {
	return []Action{
		{Name: Prev, Paths: []replay.Path{{
			Start:    replay.Point{X: 797, Y: 758},
			End:      replay.Point{X: 310, Y: 806},
			Duration: 290 * time.Millisecond,
			Pressure: 70,
		}}},
		{Name: Next, Paths: []replay.Path{{
			Start:    replay.Point{X: 415, Y: 784},
			End:      replay.Point{X: 978, Y: 795},
			Duration: 460 * time.Millisecond,
			Pressure: 64,
		}}},
		{Name: Home, Paths: []replay.Path{{
			Start:    replay.Point{X: 555, Y: 1826},
			End:      replay.Point{X: 507, Y: 1346},
			Duration: 410 * time.Millisecond,
			Pressure: 72,
		}}},
		// Two-finger upward swipe opening the recent-apps view.
		{Name: Recent, Paths: []replay.Path{
			{
				Start:    replay.Point{X: 508, Y: 1731},
				End:      replay.Point{X: 483, Y: 1361},
				Duration: 330 * time.Millisecond,
				Pressure: 55,
			},
			{
				Start:    replay.Point{X: 715, Y: 1747},
				End:      replay.Point{X: 675, Y: 1355},
				Duration: 330 * time.Millisecond,
				Pressure: 50,
			},
		}},
	}
}

// Bindings maps a screen zone to the action it triggers.
type Bindings map[gesture.Zone]string

// DefaultBindings reproduces the stock page-turn layout.
func DefaultBindings() Bindings {
	return Bindings{
		gesture.ZoneLeft:  Prev,
		gesture.ZoneRight: Next,
		gesture.ZoneTop:   Home,
	}
}

// Catalog is the named action table.
type Catalog struct {
	log     *slog.Logger
	actions map[string]Action
}

// NewCatalog returns a catalog pre-populated with the built-in swipes.
func NewCatalog(log *slog.Logger) *Catalog {
	if log == nil {
		log = slog.Default()
	}
	c := &Catalog{log: log, actions: make(map[string]Action)}
	for _, a := range builtins() {
		c.actions[a.Name] = a
	}
	return c
}

// Add registers an action, replacing any previous entry of that name.
func (c *Catalog) Add(a Action) error {
	if a.Name == "" {
		return fmt.Errorf("action has no name")
	}
	if len(a.Trace) == 0 && len(a.Paths) == 0 {
		return fmt.Errorf("action %q is empty", a.Name)
	}
	if len(a.Trace) > 0 && len(a.Paths) > 0 {
		return fmt.Errorf("action %q has both a trace and paths", a.Name)
	}
	c.actions[a.Name] = a
	return nil
}

// Get looks an action up by name.
func (c *Catalog) Get(name string) (Action, bool) {
	a, ok := c.actions[name]
	return a, ok
}

// Names lists the registered actions in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.actions))
	for n := range c.actions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// LoadDir merges a gesture library directory into the catalog. A
// "name.trace" file is an NDJSON recording, a "name.json" file a JSON
// array of path specs; the stem becomes the action name. Malformed
// files are skipped with a warning so one bad entry cannot take the
// daemon down.
func (c *Catalog) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading action library: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		ext := filepath.Ext(e.Name())
		name := strings.TrimSuffix(e.Name(), ext)

		var a Action
		switch ext {
		case ".trace":
			a, err = loadTraceFile(name, path)
		case ".json":
			a, err = loadPathFile(name, path)
		default:
			continue
		}
		if err == nil {
			err = c.Add(a)
		}
		if err != nil {
			c.log.Warn("skipping action library entry",
				slog.String("file", path), slog.Any("error", err))
			continue
		}
		c.log.Debug("loaded action", slog.String("name", name),
			slog.String("file", path))
	}
	return nil
}

func loadTraceFile(name, path string) (Action, error) {
	f, err := os.Open(path)
	if err != nil {
		return Action{}, err
	}
	defer f.Close()

	if err := trace.ValidateStream(f); err != nil {
		return Action{}, err
	}
	if _, err := f.Seek(0, 0); err != nil {
		return Action{}, err
	}
	recs, err := trace.ReadAll(trace.NewDecoder(f))
	if err != nil {
		return Action{}, err
	}
	return Action{Name: name, Trace: recs}, nil
}

func loadPathFile(name, path string) (Action, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Action{}, err
	}
	var specs []PathSpec
	if err := json.Unmarshal(data, &specs); err != nil {
		return Action{}, fmt.Errorf("parsing path spec: %w", err)
	}
	paths, err := Paths(specs)
	if err != nil {
		return Action{}, err
	}
	return Action{Name: name, Paths: paths}, nil
}
