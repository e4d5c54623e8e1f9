package main

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer lets the spinner goroutine and the test share one writer.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestProgress_NotTerminal(t *testing.T) {
	var out bytes.Buffer
	p := newProgress(&out)

	ran := false
	err := p.run("Scraping reviews", func() error {
		ran = true
		return nil
	})
	if err != nil || !ran {
		t.Fatalf("run() error = %v, ran = %v", err, ran)
	}
	if got := out.String(); got != "Scraping reviews...\n" {
		t.Errorf("output = %q", got)
	}
}

func TestProgress_SpinnerClearsLine(t *testing.T) {
	out := &syncBuffer{}
	p := &progress{out: out, interactive: true, interval: time.Millisecond}

	stepErr := errors.New("boom")
	err := p.run("Analyzing", func() error {
		time.Sleep(20 * time.Millisecond)
		return stepErr
	})
	if !errors.Is(err, stepErr) {
		t.Fatalf("run() error = %v, want %v", err, stepErr)
	}

	got := out.String()
	if !strings.Contains(got, spinnerFrames[0]+" Analyzing") {
		t.Errorf("output %q has no spinner frame", got)
	}
	if !strings.HasSuffix(got, "\r\033[K") {
		t.Errorf("output %q does not end by clearing the line", got)
	}
}
