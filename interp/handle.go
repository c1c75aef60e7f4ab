// Package interp implements the AlgoLang tree-walking interpreter as a
// resumable producer of execution events. The call stack of AST-walking
// frames lives on a dedicated goroutine; Handle.Advance and the goroutine
// hand control back and forth over a pair of unbuffered channels, which
// gives the same backpressure a generator/coroutine would: the goroutine
// cannot race ahead of the host, and the host cannot race ahead of a
// pending Input reply. This is the same channel-bridging shape a
// bubbletea host driver uses to turn a blocking run loop into a stream
// of UI messages, just moved from the host layer into the core.
package interp

import (
	"fmt"
	"sync"

	"github.com/algolang/algolang/ast"
)

// Handle is a resumable interpreter instance: its own call stack and a
// read-only view of the program's function table.
type Handle struct {
	events  chan Event
	replies chan string

	mu           sync.Mutex
	pendingInput bool
	done         bool

	bpMu        sync.Mutex
	breakpoints map[int]bool
}

// New constructs a fresh, ready interpreter for program and starts its
// execution goroutine. The goroutine blocks on the first emitted event
// until Advance is called.
func New(program *ast.Program) *Handle {
	h := &Handle{
		events:      make(chan Event),
		replies:     make(chan string),
		breakpoints: map[int]bool{},
	}
	go h.run(program)
	return h
}

// SetBreakpoints registers the set of source lines the host wants flagged
// on the resulting Step events. The breakpoint set has its own lock, so
// it may be called while another goroutine is inside Advance; the new set
// applies to Step events returned after it.
func (h *Handle) SetBreakpoints(lines []int) {
	h.bpMu.Lock()
	defer h.bpMu.Unlock()
	h.breakpoints = make(map[int]bool, len(lines))
	for _, l := range lines {
		h.breakpoints[l] = true
	}
}

func (h *Handle) isBreakpoint(line int) bool {
	h.bpMu.Lock()
	defer h.bpMu.Unlock()
	return h.breakpoints[line]
}

func (h *Handle) run(program *ast.Program) {
	defer func() {
		if r := recover(); r != nil {
			h.events <- Event{Kind: EventError, Message: fmt.Sprintf("System Error: %v", r)}
		}
		close(h.events)
	}()

	i := &interp{handle: h, program: program, suspendable: true}
	i.pushGlobal(program.Vars)
	_, err := i.execBlock(program.Body)
	if err != nil {
		h.events <- Event{Kind: EventError, Message: err.Error()}
	}
}

// Advance runs the AST walk until the next event is ready, then suspends.
// reply is used only when the previously returned event was Input; it is
// ignored otherwise.
func (h *Handle) Advance(reply string) Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.done {
		return Event{Kind: EventDone}
	}
	if h.pendingInput {
		h.pendingInput = false
		h.replies <- reply
	}
	ev, ok := <-h.events
	if !ok {
		h.done = true
		return Event{Kind: EventDone}
	}
	switch ev.Kind {
	case EventInput:
		h.pendingInput = true
	case EventError:
		h.done = true
	}
	ev.Break = ev.Kind == EventStep && h.isBreakpoint(ev.Line)
	return ev
}

// AdvanceBudget advances up to n times, stopping early at any non-Step
// event or at a breakpoint line, and reports how many steps were actually
// taken. This lets a host bound a run between UI yields without the
// interpreter needing to know anything about frame rates; it is sugar
// over repeated Advance calls.
func (h *Handle) AdvanceBudget(n int, reply string) (Event, int) {
	var ev Event
	taken := 0
	for taken < n {
		r := ""
		if taken == 0 {
			r = reply
		}
		ev = h.Advance(r)
		taken++
		if ev.Kind != EventStep || ev.Break {
			break
		}
	}
	return ev, taken
}

func (h *Handle) emitStep(line int, snap map[string]Value) {
	h.events <- Event{Kind: EventStep, Line: line, Snapshot: snap}
}

func (h *Handle) emitOutput(text string) {
	h.events <- Event{Kind: EventOutput, Text: text}
}

func (h *Handle) requestInput(name, expected string) string {
	h.events <- Event{Kind: EventInput, Name: name, Expected: expected}
	return <-h.replies
}
