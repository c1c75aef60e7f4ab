package main

import "github.com/algolang/algolang/interp"

type appConfig struct {
	source string
	steps  int
}

type runStartedMsg struct {
	events  <-chan interp.Event
	replies chan<- string
	handle  *interp.Handle
	lines   []string
}

type runEventMsg struct {
	ev interp.Event
}

type runFailedMsg struct {
	err error
}

type pendingInput struct {
	name     string
	expected string
}
