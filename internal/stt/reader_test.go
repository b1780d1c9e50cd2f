package stt

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineReaderDeliversLines(t *testing.T) {
	input := "I spent $5 on coffee\n\n  how much did I spend  \n"
	reader := NewLineReader(strings.NewReader(input))

	var (
		mu    sync.Mutex
		lines []string
	)
	ended := make(chan struct{})

	err := reader.Start(context.Background(), func(text string) {
		mu.Lock()
		lines = append(lines, text)
		mu.Unlock()
	}, func() {
		close(ended)
	})
	require.NoError(t, err)

	select {
	case <-ended:
	case <-time.After(time.Second):
		t.Fatal("reader never signaled end")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"I spent $5 on coffee", "how much did I spend"}, lines)
}

func TestLineReaderStopMutesDelivery(t *testing.T) {
	pr, pw := newBlockingPipe()
	reader := NewLineReader(pr)

	delivered := make(chan string, 4)
	require.NoError(t, reader.Start(context.Background(), func(text string) {
		delivered <- text
	}, func() {}))

	pw.writeLine("first")
	select {
	case got := <-delivered:
		assert.Equal(t, "first", got)
	case <-time.After(time.Second):
		t.Fatal("line never delivered")
	}

	reader.Stop()
	pw.writeLine("muted")
	select {
	case got := <-delivered:
		t.Fatalf("line delivered while stopped: %q", got)
	case <-time.After(50 * time.Millisecond):
	}

	// Restart resumes delivery on the same underlying stream.
	require.NoError(t, reader.Start(context.Background(), func(text string) {
		delivered <- text
	}, func() {}))
	pw.writeLine("resumed")
	select {
	case got := <-delivered:
		assert.Equal(t, "resumed", got)
	case <-time.After(time.Second):
		t.Fatal("line never delivered after restart")
	}
}

func TestLineReaderExhaustedStartEndsImmediately(t *testing.T) {
	reader := NewLineReader(strings.NewReader("only line\n"))

	firstEnd := make(chan struct{})
	require.NoError(t, reader.Start(context.Background(), func(string) {}, func() {
		close(firstEnd)
	}))
	select {
	case <-firstEnd:
	case <-time.After(time.Second):
		t.Fatal("reader never exhausted")
	}

	secondEnd := make(chan struct{})
	require.NoError(t, reader.Start(context.Background(), func(string) {}, func() {
		close(secondEnd)
	}))
	select {
	case <-secondEnd:
	case <-time.After(time.Second):
		t.Fatal("restart on exhausted reader never signaled end")
	}
}

// blockingPipe feeds the scanner one line at a time without closing.
type blockingPipe struct {
	ch chan string
}

func newBlockingPipe() (*blockingPipe, *blockingPipe) {
	p := &blockingPipe{ch: make(chan string, 16)}
	return p, p
}

func (p *blockingPipe) Read(b []byte) (int, error) {
	line := <-p.ch
	n := copy(b, line)
	return n, nil
}

func (p *blockingPipe) writeLine(line string) {
	p.ch <- line + "\n"
}
