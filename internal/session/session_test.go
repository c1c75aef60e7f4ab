package session_test

import (
	"path/filepath"
	"testing"

	"github.com/algolang/algolang"
	"github.com/algolang/algolang/interp"
	"github.com/algolang/algolang/internal/session"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	src := "Algorithm H\nBegin Write(\"hi\") End"
	prog, err := algolang.Compile(src)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	h := algolang.Interpret(prog)
	var recorded []session.RecordedEvent
	for {
		ev := h.Advance("")
		recorded = append(recorded, session.Record(ev))
		if ev.Kind == interp.EventDone || ev.Kind == interp.EventError {
			break
		}
	}

	tr := &session.Transcript{Source: src, Events: recorded}
	path := filepath.Join(t.TempDir(), "transcript.json")
	if err := session.Save(path, tr); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := session.Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Source != src {
		t.Fatalf("source mismatch: %q", loaded.Source)
	}
	if d := session.Diff(tr.Events, loaded.Events); d != -1 {
		t.Fatalf("unexpected diff at index %d", d)
	}
}

func TestDiffDetectsDivergence(t *testing.T) {
	want := []session.RecordedEvent{{Kind: "Step", Line: 2}, {Kind: "Output", Text: "hi"}}
	got := []session.RecordedEvent{{Kind: "Step", Line: 2}, {Kind: "Output", Text: "bye"}}
	if d := session.Diff(want, got); d != 1 {
		t.Fatalf("expected divergence at index 1, got %d", d)
	}
}

func TestDiffDetectsLengthMismatch(t *testing.T) {
	want := []session.RecordedEvent{{Kind: "Step", Line: 2}}
	got := []session.RecordedEvent{{Kind: "Step", Line: 2}, {Kind: "Done"}}
	if d := session.Diff(want, got); d != 1 {
		t.Fatalf("expected divergence at index 1, got %d", d)
	}
}
