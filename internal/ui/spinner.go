package ui

import (
	"fmt"
	"time"
)

var spinnerFrames = []rune("⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏")

// Spinner animates a loading indicator on stdout for non-TUI commands.
type Spinner struct {
	msg  string
	stop chan struct{}
	done chan struct{}
}

// NewSpinner creates a spinner with the given message.
func NewSpinner(msg string) *Spinner {
	return &Spinner{
		msg:  msg,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Start begins the animation in a goroutine. Stop must be called to
// release it and clear the line.
func (s *Spinner) Start() {
	go func() {
		defer close(s.done)
		tick := time.NewTicker(80 * time.Millisecond)
		defer tick.Stop()
		for i := 0; ; i++ {
			select {
			case <-s.stop:
				fmt.Printf("\r%-60s\r", "")
				return
			case <-tick.C:
				frame := StyleEvent.Render(string(spinnerFrames[i%len(spinnerFrames)]))
				fmt.Printf("\r%s  %s", frame, s.msg)
			}
		}
	}()
}

// Stop halts the spinner and waits for the line to clear.
func (s *Spinner) Stop() {
	close(s.stop)
	<-s.done
}

// StopWithMsg halts the spinner and prints msg in its place.
func (s *Spinner) StopWithMsg(msg string) {
	s.Stop()
	fmt.Println(msg)
}
