package voice

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRecognizer records Start/Stop calls and lets tests drive the
// recognition callbacks directly.
type fakeRecognizer struct {
	mu        sync.Mutex
	onPartial func(string)
	onEnd     func()
	startErr  error
	starts    int
	stops     int
}

func (f *fakeRecognizer) Start(_ context.Context, onPartial func(string), onEnd func()) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts++
	if f.startErr != nil {
		return f.startErr
	}
	f.onPartial = onPartial
	f.onEnd = onEnd
	return nil
}

func (f *fakeRecognizer) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
}

func (f *fakeRecognizer) partial(text string) {
	f.mu.Lock()
	cb := f.onPartial
	f.mu.Unlock()
	if cb != nil {
		cb(text)
	}
}

func (f *fakeRecognizer) end() {
	f.mu.Lock()
	cb := f.onEnd
	f.mu.Unlock()
	if cb != nil {
		cb()
	}
}

func (f *fakeRecognizer) startCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.starts
}

func (f *fakeRecognizer) stopCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stops
}

// utteranceSink collects finalized utterances.
type utteranceSink struct {
	mu   sync.Mutex
	got  []string
	seen chan string
}

func newUtteranceSink() *utteranceSink {
	return &utteranceSink{seen: make(chan string, 16)}
}

func (s *utteranceSink) collect(u Utterance) {
	s.mu.Lock()
	s.got = append(s.got, u.Text)
	s.mu.Unlock()
	s.seen <- u.Text
}

func (s *utteranceSink) texts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.got...)
}

func TestCaptureFinalizesAfterSilence(t *testing.T) {
	rec := &fakeRecognizer{}
	sink := newUtteranceSink()
	capture := NewCapture(rec, 20*time.Millisecond, sink.collect)

	require.NoError(t, capture.Start(context.Background()))
	rec.partial("I spent")
	rec.partial("I spent $50 on coffee")

	select {
	case text := <-sink.seen:
		assert.Equal(t, "I spent $50 on coffee", text)
	case <-time.After(time.Second):
		t.Fatal("utterance never finalized")
	}
	assert.Len(t, sink.texts(), 1)
}

func TestCaptureNewPartialExtendsSilenceWindow(t *testing.T) {
	rec := &fakeRecognizer{}
	sink := newUtteranceSink()
	capture := NewCapture(rec, 100*time.Millisecond, sink.collect)

	require.NoError(t, capture.Start(context.Background()))
	rec.partial("delete")
	time.Sleep(50 * time.Millisecond)
	rec.partial("delete my last expense")

	// The first partial alone must not finalize: the second one reset the
	// window before it elapsed.
	select {
	case text := <-sink.seen:
		assert.Equal(t, "delete my last expense", text)
	case <-time.After(time.Second):
		t.Fatal("utterance never finalized")
	}
	assert.Equal(t, []string{"delete my last expense"}, sink.texts())
}

func TestCaptureDedupesLastSentText(t *testing.T) {
	rec := &fakeRecognizer{}
	sink := newUtteranceSink()
	capture := NewCapture(rec, 15*time.Millisecond, sink.collect)

	require.NoError(t, capture.Start(context.Background()))
	rec.partial("hello")
	<-sink.seen

	// Same text again within the same listening stint is suppressed.
	rec.partial("hello")
	select {
	case text := <-sink.seen:
		t.Fatalf("duplicate utterance emitted: %q", text)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestCaptureStopCancelsPendingUtterance(t *testing.T) {
	rec := &fakeRecognizer{}
	sink := newUtteranceSink()
	capture := NewCapture(rec, 30*time.Millisecond, sink.collect)

	require.NoError(t, capture.Start(context.Background()))
	rec.partial("half a thought")
	capture.Stop()

	select {
	case text := <-sink.seen:
		t.Fatalf("stopped capture emitted %q", text)
	case <-time.After(100 * time.Millisecond):
	}
	assert.False(t, capture.Listening())
	assert.Equal(t, 1, rec.stopCount())

	// Stop again is a no-op.
	capture.Stop()
	assert.Equal(t, 1, rec.stopCount())
}

func TestCaptureEndFlushesPendingText(t *testing.T) {
	rec := &fakeRecognizer{}
	sink := newUtteranceSink()
	capture := NewCapture(rec, time.Minute, sink.collect)

	require.NoError(t, capture.Start(context.Background()))
	rec.partial("how much did I spend")
	rec.end()

	select {
	case text := <-sink.seen:
		assert.Equal(t, "how much did I spend", text)
	case <-time.After(time.Second):
		t.Fatal("end did not flush pending text")
	}
	assert.False(t, capture.Listening())

	// A second end must not double-emit.
	rec.end()
	select {
	case text := <-sink.seen:
		t.Fatalf("double emit after end: %q", text)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCaptureRestartResetsTranscript(t *testing.T) {
	rec := &fakeRecognizer{}
	sink := newUtteranceSink()
	capture := NewCapture(rec, 15*time.Millisecond, sink.collect)
	ctx := context.Background()

	require.NoError(t, capture.Start(ctx))
	rec.partial("first")
	<-sink.seen

	capture.Stop()
	require.NoError(t, capture.Start(ctx))

	// The same text finalizes again after a restart; dedup state does not
	// survive Stop.
	rec.partial("first")
	select {
	case text := <-sink.seen:
		assert.Equal(t, "first", text)
	case <-time.After(time.Second):
		t.Fatal("utterance never finalized after restart")
	}
	assert.Equal(t, 2, rec.startCount())
}

func TestCaptureStartErrors(t *testing.T) {
	t.Run("unsupported passes through", func(t *testing.T) {
		rec := &fakeRecognizer{startErr: ErrUnsupported}
		capture := NewCapture(rec, 0, func(Utterance) {})

		err := capture.Start(context.Background())
		require.ErrorIs(t, err, ErrUnsupported)
		assert.False(t, capture.Listening())
	})

	t.Run("transient failure is wrapped", func(t *testing.T) {
		rec := &fakeRecognizer{startErr: errors.New("socket refused")}
		capture := NewCapture(rec, 0, func(Utterance) {})

		err := capture.Start(context.Background())
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrUnsupported)
		assert.Contains(t, err.Error(), "failed to start recognition")
	})

	t.Run("start while listening is a no-op", func(t *testing.T) {
		rec := &fakeRecognizer{}
		capture := NewCapture(rec, 0, func(Utterance) {})
		ctx := context.Background()

		require.NoError(t, capture.Start(ctx))
		require.NoError(t, capture.Start(ctx))
		assert.Equal(t, 1, rec.startCount())
	})
}
