// Command sessionreplay replays a recorded transcript's source and input
// replies through a fresh interpreter and diffs the resulting event
// stream against the recorded one, acting as a regression harness for
// course-provided example programs.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/algolang/algolang"
	"github.com/algolang/algolang/interp"
	"github.com/algolang/algolang/internal/session"
)

func main() {
	in := flag.String("in", "", "path to a recorded transcript JSON file")
	record := flag.Bool("record", false, "overwrite -in with a freshly recorded transcript instead of diffing")
	flag.Parse()

	if *in == "" {
		fmt.Fprintln(os.Stderr, "usage: sessionreplay -in <transcript.json> [-record]")
		os.Exit(2)
	}

	tr, err := session.Load(*in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load: %v\n", err)
		os.Exit(1)
	}

	got, err := replay(tr.Source, tr.Breakpoints, tr.Replies)
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		os.Exit(1)
	}

	if *record {
		tr.Events = got
		if err := session.Save(*in, tr); err != nil {
			fmt.Fprintf(os.Stderr, "save: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("recorded %d events to %s\n", len(got), *in)
		return
	}

	if d := session.Diff(tr.Events, got); d != -1 {
		fmt.Fprintf(os.Stderr, "diverged at event %d: want=%+v got=%+v\n", d, at(tr.Events, d), at(got, d))
		os.Exit(1)
	}
	fmt.Printf("ok: %d events matched\n", len(got))
}

func replay(source string, breakpoints []int, replies []string) ([]session.RecordedEvent, error) {
	prog, err := algolang.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	h := algolang.Interpret(prog)
	h.SetBreakpoints(breakpoints)

	var recorded []session.RecordedEvent
	reply := ""
	replyIdx := 0
	for {
		ev := h.Advance(reply)
		recorded = append(recorded, session.Record(ev))
		if ev.Kind == interp.EventDone || ev.Kind == interp.EventError {
			return recorded, nil
		}
		reply = ""
		if ev.Kind == interp.EventInput && replyIdx < len(replies) {
			reply = replies[replyIdx]
			replyIdx++
		}
	}
}

func at(events []session.RecordedEvent, idx int) any {
	if idx < 0 || idx >= len(events) {
		return "<missing>"
	}
	return events[idx]
}
