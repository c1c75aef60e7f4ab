package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/algolang/algolang/interp"
)

var (
	currentLineStyle = lipgloss.NewStyle().Background(lipgloss.Color("24")).Foreground(lipgloss.Color("230"))
	breakpointStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	inputStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("24")).Padding(0, 1)
	statusStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
)

type model struct {
	cfg     appConfig
	source  []string
	handle  *interp.Handle
	events  <-chan interp.Event
	replies chan<- string

	viewport viewport.Model
	input    textinput.Model

	ready      bool
	width      int
	height     int
	status     string
	running    bool
	pending    *pendingInput
	curLine    int
	breakpoint map[int]bool
	snapshot   map[string]interp.Value
	output     []string
}

func newModel(cfg appConfig) model {
	vp := viewport.New(80, 20)
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 4096
	return model{
		cfg:        cfg,
		viewport:   vp,
		input:      ti,
		status:     "starting",
		breakpoint: map[int]bool{},
	}
}

func (m model) Init() tea.Cmd {
	return startRun(m.cfg)
}

func startRun(cfg appConfig) tea.Cmd {
	return func() tea.Msg {
		h, lines, err := compileAndRun(cfg)
		if err != nil {
			return runFailedMsg{err: err}
		}
		events := make(chan interp.Event)
		replies := make(chan string)
		go driveHandle(h, events, replies)
		return runStartedMsg{events: events, replies: replies, handle: h, lines: lines}
	}
}

func waitForEvent(events <-chan interp.Event) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return runEventMsg{ev: ev}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		footer := 3
		if m.pending != nil {
			footer++
		}
		vh := msg.Height - footer
		if vh < 1 {
			vh = 1
		}
		m.viewport.Width = msg.Width
		m.viewport.Height = vh
		m.ready = true
		m.rebuildContent()
		return m, nil

	case runFailedMsg:
		m.status = "failed"
		m.running = false
		m.output = append(m.output, errorStyle.Render(msg.err.Error()))
		return m, nil

	case runStartedMsg:
		m.handle = msg.handle
		m.events = msg.events
		m.replies = msg.replies
		m.source = msg.lines
		m.running = true
		m.status = "running"
		return m, waitForEvent(m.events)

	case runEventMsg:
		return m.handleEvent(msg.ev)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}
		if m.pending != nil {
			if msg.String() == "enter" {
				val := m.input.Value()
				m.input.SetValue("")
				m.input.Blur()
				m.pending = nil
				if m.replies != nil {
					m.replies <- val
				}
				m.status = "running"
				return m, waitForEvent(m.events)
			}
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
		switch msg.String() {
		case "b":
			if m.curLine > 0 {
				m.toggleBreakpoint(m.curLine)
			}
			return m, nil
		case "g", "home":
			m.viewport.GotoTop()
			return m, nil
		case "G", "end":
			m.viewport.GotoBottom()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m model) handleEvent(ev interp.Event) (tea.Model, tea.Cmd) {
	switch ev.Kind {
	case interp.EventStep:
		m.curLine = ev.Line
		m.snapshot = ev.Snapshot
		m.rebuildContent()
		return m, waitForEvent(m.events)

	case interp.EventOutput:
		m.output = append(m.output, ev.Text)
		m.rebuildContent()
		return m, waitForEvent(m.events)

	case interp.EventInput:
		m.pending = &pendingInput{name: ev.Name, expected: ev.Expected}
		m.status = fmt.Sprintf("waiting for %s (%s)", ev.Name, ev.Expected)
		m.input.SetValue("")
		m.input.Focus()
		return m, nil

	case interp.EventError:
		m.running = false
		m.status = "error"
		m.output = append(m.output, errorStyle.Render(ev.Message))
		m.rebuildContent()
		return m, nil

	case interp.EventDone:
		m.running = false
		m.status = "done"
		return m, nil
	}
	return m, waitForEvent(m.events)
}

func (m *model) toggleBreakpoint(line int) {
	if m.breakpoint[line] {
		delete(m.breakpoint, line)
	} else {
		m.breakpoint[line] = true
	}
	lines := make([]int, 0, len(m.breakpoint))
	for l := range m.breakpoint {
		lines = append(lines, l)
	}
	if m.handle != nil {
		m.handle.SetBreakpoints(lines)
	}
	m.rebuildContent()
}

func (m *model) rebuildContent() {
	var b strings.Builder
	for i, line := range m.source {
		n := i + 1
		gutter := "  "
		if m.breakpoint[n] {
			gutter = breakpointStyle.Render("● ")
		}
		rendered := strconv.Itoa(n) + " " + gutter + line
		if n == m.curLine {
			rendered = currentLineStyle.Render(rendered)
		}
		b.WriteString(rendered)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	for _, o := range m.output {
		b.WriteString(o)
		b.WriteString("\n")
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

func (m model) View() string {
	if !m.ready {
		return "initializing...\n"
	}
	var parts []string
	parts = append(parts, m.viewport.View())
	if m.pending != nil {
		parts = append(parts, inputStyle.Render(m.input.View()))
	}
	parts = append(parts, statusStyle.Render(fmt.Sprintf("[%s] b=breakpoint  g/G=top/bottom  q=quit", m.status)))
	if m.snapshot != nil {
		parts = append(parts, statusStyle.Render(m.formatSnapshot()))
	}
	return strings.Join(parts, "\n")
}

func (m model) formatSnapshot() string {
	var names []string
	for name := range m.snapshot {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+"="+m.snapshot[name].Format())
	}
	return strings.Join(parts, "  ")
}
