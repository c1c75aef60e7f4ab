// Package session codes a recorded interpreter run as JSON: the program
// source, the ordered Input replies supplied by a host, the breakpoint
// set in effect, and the resulting event stream. It exists so a course's
// example programs can ship as golden transcripts and be replayed without
// a live host attached.
package session

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/algolang/algolang/interp"
)

// Transcript is the on-disk shape of one recorded run.
type Transcript struct {
	Source      string         `json:"source"`
	Breakpoints []int          `json:"breakpoints,omitempty"`
	Replies     []string       `json:"replies,omitempty"`
	Events      []RecordedEvent `json:"events"`
}

// RecordedEvent mirrors interp.Event in a JSON-stable shape: a snapshot
// map of interp.Value doesn't round-trip through its own Kind enum in a
// human-readable way, so values are flattened to their formatted text.
type RecordedEvent struct {
	Kind     string            `json:"kind"`
	Line     int               `json:"line,omitempty"`
	Break    bool              `json:"break,omitempty"`
	Snapshot map[string]string `json:"snapshot,omitempty"`
	Text     string            `json:"text,omitempty"`
	Name     string            `json:"name,omitempty"`
	Expected string            `json:"expected,omitempty"`
	Message  string            `json:"message,omitempty"`
}

// Record converts an interp.Event into its JSON-stable form.
func Record(ev interp.Event) RecordedEvent {
	r := RecordedEvent{
		Kind:     ev.Kind.String(),
		Line:     ev.Line,
		Break:    ev.Break,
		Text:     ev.Text,
		Name:     ev.Name,
		Expected: ev.Expected,
		Message:  ev.Message,
	}
	if ev.Snapshot != nil {
		r.Snapshot = make(map[string]string, len(ev.Snapshot))
		for k, v := range ev.Snapshot {
			r.Snapshot[k] = v.Format()
		}
	}
	return r
}

// Load reads a transcript file from path.
func Load(path string) (*Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	var t Transcript
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode transcript: %w", err)
	}
	return &t, nil
}

// Save writes t to path as indented JSON.
func Save(path string, t *Transcript) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("encode transcript: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	return nil
}

// Diff reports the first index at which got diverges from want, or -1 if
// they match (after trimming to the shorter length, which is itself a
// divergence unless both are exhausted).
func Diff(want, got []RecordedEvent) int {
	n := len(want)
	if len(got) < n {
		n = len(got)
	}
	for i := 0; i < n; i++ {
		if !equalEvent(want[i], got[i]) {
			return i
		}
	}
	if len(want) != len(got) {
		return n
	}
	return -1
}

func equalEvent(a, b RecordedEvent) bool {
	if a.Kind != b.Kind || a.Line != b.Line || a.Break != b.Break ||
		a.Text != b.Text || a.Name != b.Name || a.Expected != b.Expected || a.Message != b.Message {
		return false
	}
	if len(a.Snapshot) != len(b.Snapshot) {
		return false
	}
	for k, v := range a.Snapshot {
		if b.Snapshot[k] != v {
			return false
		}
	}
	return true
}
