package worker

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"billcycle/internal/core"
	"billcycle/internal/log"
)

type fakeNotifier struct {
	mu    sync.Mutex
	calls []core.Date
	err   error
	done  chan struct{}
	want  int
}

func (f *fakeNotifier) Notify(_ context.Context, today core.Date) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, today)
	if len(f.calls) == f.want {
		close(f.done)
	}
	return 1, f.err
}

func newTestLogger(buf *bytes.Buffer) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Output = buf
	return log.New(cfg)
}

func TestStatementWorker_RunsAtStartAndOnTick(t *testing.T) {
	n := &fakeNotifier{done: make(chan struct{}), want: 3}
	var buf bytes.Buffer
	w := NewStatementWorker(n, 10*time.Millisecond, newTestLogger(&buf))
	w.now = func() time.Time { return time.Date(2024, time.September, 21, 8, 0, 0, 0, time.UTC) }

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	select {
	case <-n.done:
	case <-time.After(2 * time.Second):
		t.Fatal("notifier was not called three times")
	}
	cancel()

	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.calls[0].Equal(core.NewDate(2024, 9, 21)) {
		t.Errorf("first check date = %v, want 2024-09-21 from the injected clock", n.calls[0])
	}
}

func TestStatementWorker_LogsFailures(t *testing.T) {
	n := &fakeNotifier{done: make(chan struct{}), want: 1, err: errors.New("broker down")}
	var buf bytes.Buffer
	w := NewStatementWorker(n, time.Hour, newTestLogger(&buf))

	w.check(context.Background(), time.Date(2024, time.September, 21, 8, 0, 0, 0, time.UTC))

	out := buf.String()
	if !strings.Contains(out, "Statement check failed") || !strings.Contains(out, "broker down") {
		t.Errorf("log output = %q, want failure with cause", out)
	}
}
