package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	source := flag.String("source", "", "path to an AlgoLang source file")
	steps := flag.Int("steps", 500, "step budget per UI yield (parsed but not applied: the TUI receives every event)")
	flag.Parse()

	resolved := *source
	if resolved == "" {
		fmt.Fprintln(os.Stderr, "usage: algolang -source <file.algo> [-steps N]")
		os.Exit(2)
	}

	cfg := appConfig{
		source: resolved,
		steps:  *steps,
	}

	p := tea.NewProgram(newModel(cfg), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "tui: %v\n", err)
		os.Exit(1)
	}
}
