package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
)

const spinnerInterval = 100 * time.Millisecond

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// progress shows a spinner with the elapsed time while a step runs and
// clears it when the step returns. Output that is not a terminal gets a
// single description line instead.
type progress struct {
	out         io.Writer
	interactive bool
	interval    time.Duration
}

func newProgress(out io.Writer) *progress {
	interactive := false
	if f, ok := out.(*os.File); ok {
		interactive = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &progress{out: out, interactive: interactive, interval: spinnerInterval}
}

func (p *progress) run(description string, step func() error) error {
	if !p.interactive {
		fmt.Fprintf(p.out, "%s...\n", description)
		return step()
	}

	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		start := time.Now()
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for frame := 0; ; frame++ {
			fmt.Fprintf(p.out, "\r%s %s %s", spinnerFrames[frame%len(spinnerFrames)], description,
				time.Since(start).Truncate(time.Second))
			select {
			case <-done:
				fmt.Fprint(p.out, "\r\033[K")
				return
			case <-ticker.C:
			}
		}
	}()

	err := step()
	close(done)
	<-stopped
	return err
}
