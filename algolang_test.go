package algolang_test

import (
	"testing"

	"github.com/algolang/algolang"
	"github.com/algolang/algolang/interp"
)

func runAll(t *testing.T, source string, replies ...string) []interp.Event {
	t.Helper()
	prog, err := algolang.Compile(source)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	h := algolang.Interpret(prog)
	var events []interp.Event
	reply := ""
	replyIdx := 0
	for {
		ev := h.Advance(reply)
		events = append(events, ev)
		if ev.Kind == interp.EventDone || ev.Kind == interp.EventError {
			return events
		}
		reply = ""
		if ev.Kind == interp.EventInput && replyIdx < len(replies) {
			reply = replies[replyIdx]
			replyIdx++
		}
	}
}

func outputs(events []interp.Event) []string {
	var out []string
	for _, e := range events {
		if e.Kind == interp.EventOutput {
			out = append(out, e.Text)
		}
	}
	return out
}

func TestHelloWorld(t *testing.T) {
	events := runAll(t, "Algorithm H\nBegin Write(\"Hello, World!\") End")
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d: %+v", len(events), events)
	}
	if events[0].Kind != interp.EventStep || events[0].Line != 2 {
		t.Fatalf("expected Step(2, ...), got %+v", events[0])
	}
	if events[1].Kind != interp.EventOutput || events[1].Text != "Hello, World!" {
		t.Fatalf("expected Output(\"Hello, World!\"), got %+v", events[1])
	}
	if events[2].Kind != interp.EventDone {
		t.Fatalf("expected Done, got %+v", events[2])
	}
}

func TestAverageOfFiveGrades(t *testing.T) {
	src := `
Algorithm Average_Note
Var
	n1, n2, n3, n4, n5, avg : Real
Begin
	Read(n1)
	Read(n2)
	Read(n3)
	Read(n4)
	Read(n5)
	avg := (n1 + n2 + n3 + n4 + n5) / 5
	Write("The average is:", avg)
End
`
	events := runAll(t, src, "15", "12", "18", "10", "10")
	out := outputs(events)
	if len(out) != 1 {
		t.Fatalf("expected 1 output, got %v", out)
	}
	if got, want := out[0], "The average is: 13"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	var inputCount, lastStepBeforeOutput int
	for idx, e := range events {
		if e.Kind == interp.EventInput {
			inputCount++
		}
		if e.Kind == interp.EventOutput {
			lastStepBeforeOutput = idx - 1
		}
	}
	if inputCount != 5 {
		t.Fatalf("expected 5 Input events, got %d", inputCount)
	}
	if events[lastStepBeforeOutput].Kind != interp.EventStep {
		t.Fatalf("expected the event right before Output to be a Step")
	}
}

func TestMatrixIndexing(t *testing.T) {
	src := `
Algorithm Grid3x3
Var
	Grid : array [3][3] of Integer
	r, c : Integer
Begin
	For r := 0 To 2 Do
		For c := 0 To 2 Do
			Grid[r][c] := r * 3 + c + 1
			Write(Grid[r][c])
		EndFor
	EndFor
End
`
	events := runAll(t, src)
	out := outputs(events)
	want := []string{"1", "2", "3", "4", "5", "6", "7", "8", "9"}
	if len(out) != len(want) {
		t.Fatalf("expected %d outputs, got %d: %v", len(want), len(out), out)
	}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("output %d: got %q, want %q", i, out[i], want[i])
		}
	}
}

func TestFunctionCallFromExpressionIsSynchronous(t *testing.T) {
	src := `
Algorithm Sum
Var result : Integer
Function Add(a : Integer, b : Integer) : Integer
Begin
	Write("inside add")
	Return a + b
EndFunction
Begin
	result <- Add(10, 20)
	Write(result)
End
`
	events := runAll(t, src)
	out := outputs(events)
	if len(out) != 1 {
		t.Fatalf("expected exactly 1 output (the I/O inside Add must be skipped), got %v", out)
	}
	if out[0] != "30" {
		t.Fatalf("got %q, want %q", out[0], "30")
	}
	var stepLines []int
	for _, e := range events {
		if e.Kind == interp.EventStep {
			stepLines = append(stepLines, e.Line)
		}
	}
	for _, l := range stepLines {
		if l == 6 || l == 7 {
			t.Fatalf("unexpected Step event from inside Add at line %d", l)
		}
	}
}

func TestArrayOutOfBounds(t *testing.T) {
	src := `
Algorithm Bounds
Var v : array [3] of Integer
Begin
	v[3] <- 1
End
`
	events := runAll(t, src)
	last := events[len(events)-1]
	if last.Kind != interp.EventError || last.Message != "Index 3 out of bounds." {
		t.Fatalf("expected out-of-bounds error, got %+v", last)
	}
}

func TestUnterminatedStringIsLexError(t *testing.T) {
	_, err := algolang.Compile("Algorithm H\nBegin\nWrite(\"hi\nEnd")
	if err == nil {
		t.Fatalf("expected a lexical error")
	}
}

func TestEmptyBlocksExecuteWithoutError(t *testing.T) {
	events := runAll(t, "Algorithm H\nBegin\nIf True Then\nEndIf\nEnd")
	last := events[len(events)-1]
	if last.Kind != interp.EventDone {
		t.Fatalf("expected Done, got %+v", last)
	}
}

func TestForWithStartGreaterThanEndRunsZeroTimes(t *testing.T) {
	src := `
Algorithm H
Var i, count : Integer
Begin
	count := 0
	For i := 5 To 1 Do
		count := count + 1
	EndFor
	Write(count)
End
`
	events := runAll(t, src)
	out := outputs(events)
	if len(out) != 1 || out[0] != "0" {
		t.Fatalf("expected the body to run zero times, got %v", out)
	}
}

func TestUndeclaredVariableIsRuntimeError(t *testing.T) {
	events := runAll(t, "Algorithm H\nBegin\nWrite(missing)\nEnd")
	last := events[len(events)-1]
	if last.Kind != interp.EventError || last.Message != "Variable 'missing' not declared." {
		t.Fatalf("expected undeclared-variable error, got %+v", last)
	}
}

func TestSnapshotImmutableAcrossMutation(t *testing.T) {
	src := `
Algorithm H
Var x : Integer
Begin
	x := 1
	x := 2
End
`
	events := runAll(t, src)
	var firstSnapshot map[string]interp.Value
	for _, e := range events {
		if e.Kind == interp.EventStep {
			firstSnapshot = e.Snapshot
			break
		}
	}
	if firstSnapshot == nil {
		t.Fatalf("expected at least one Step event")
	}
	if v, ok := firstSnapshot["x"]; !ok || v.Num != 0 {
		t.Fatalf("expected x to still be 0 in the first snapshot, got %+v", firstSnapshot["x"])
	}
}
