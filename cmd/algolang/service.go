package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/algolang/algolang"
	"github.com/algolang/algolang/interp"
)

// driveHandle bridges the blocking Handle.Advance call into a channel of
// events the bubbletea event loop can select on, running on its own
// goroutine so the UI update loop never blocks waiting on interpreter
// progress.
func driveHandle(h *interp.Handle, events chan<- interp.Event, replies <-chan string) {
	defer close(events)
	reply := ""
	for {
		ev := h.Advance(reply)
		events <- ev
		if ev.Kind == interp.EventDone || ev.Kind == interp.EventError {
			return
		}
		reply = ""
		if ev.Kind == interp.EventInput {
			reply = <-replies
		}
	}
}

func loadSource(path string) (string, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("read source: %w", err)
	}
	text := string(data)
	return text, strings.Split(text, "\n"), nil
}

func compileAndRun(cfg appConfig) (*interp.Handle, []string, error) {
	text, lines, err := loadSource(cfg.source)
	if err != nil {
		return nil, nil, err
	}
	prog, err := algolang.Compile(text)
	if err != nil {
		return nil, nil, fmt.Errorf("compile: %w", err)
	}
	return algolang.Interpret(prog), lines, nil
}
