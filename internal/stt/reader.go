package stt

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"
)

// LineReader is a recognizer that treats each line of an io.Reader as a
// complete recognition result. It backs the terminal talk mode, where typed
// input stands in for speech.
//
// A single scanner goroutine owns the reader for the LineReader's lifetime;
// Start and Stop only swap the delivery callbacks, so capture restarts never
// lose buffered input. Lines arriving while stopped are discarded, matching
// a muted microphone.
type LineReader struct {
	reader    io.Reader
	onPartial func(string)
	onEnd     func()
	mu        sync.Mutex
	scanning  bool
	exhausted bool
}

// NewLineReader creates a line-based recognizer over r, typically os.Stdin.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{reader: r}
}

// Start begins delivering lines. Each non-empty line arrives through
// onPartial; onEnd fires when the reader is exhausted while delivery is
// active.
func (l *LineReader) Start(ctx context.Context, onPartial func(string), onEnd func()) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.exhausted {
		// The source is gone; report end on the new callbacks immediately.
		go onEnd()
		return nil
	}

	l.onPartial = onPartial
	l.onEnd = onEnd

	if !l.scanning {
		l.scanning = true
		go l.scan(ctx)
	}

	return nil
}

// Stop mutes delivery without disturbing the underlying reader.
func (l *LineReader) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onPartial = nil
	l.onEnd = nil
}

func (l *LineReader) scan(ctx context.Context) {
	scanner := bufio.NewScanner(l.reader)
	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		l.mu.Lock()
		deliver := l.onPartial
		l.mu.Unlock()
		if deliver != nil {
			deliver(line)
		}
	}

	l.mu.Lock()
	l.exhausted = true
	l.scanning = false
	end := l.onEnd
	l.onPartial = nil
	l.onEnd = nil
	l.mu.Unlock()

	if end != nil {
		end()
	}
}
