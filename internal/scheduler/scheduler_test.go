package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campaign_builder/internal/domain"
)

type countingSyncer struct {
	mu       sync.Mutex
	calls    int
	deadline []bool
	ran      chan struct{}
	err      error
}

func newCountingSyncer() *countingSyncer {
	return &countingSyncer{ran: make(chan struct{}, 16)}
}

func (c *countingSyncer) Sync(ctx context.Context) ([]domain.SyncStats, error) {
	_, ok := ctx.Deadline()
	c.mu.Lock()
	c.calls++
	c.deadline = append(c.deadline, ok)
	c.mu.Unlock()
	c.ran <- struct{}{}
	return []domain.SyncStats{{SourceID: "n8n-tags", Phase: domain.PhaseReady}}, c.err
}

func (c *countingSyncer) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func waitRun(t *testing.T, c *countingSyncer) {
	t.Helper()
	select {
	case <-c.ran:
	case <-time.After(2 * time.Second):
		t.Fatal("sync did not run")
	}
}

func TestScheduler_RunsImmediatelyAndOnTick(t *testing.T) {
	syncer := newCountingSyncer()
	s := NewScheduler(syncer, 20*time.Millisecond, time.Second, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	waitRun(t, syncer)
	waitRun(t, syncer)
	cancel()

	require.ErrorIs(t, <-done, context.Canceled)
	assert.GreaterOrEqual(t, syncer.count(), 2)
	assert.True(t, syncer.deadline[0], "each run gets a deadline")
}

func TestScheduler_Trigger(t *testing.T) {
	syncer := newCountingSyncer()
	s := NewScheduler(syncer, time.Hour, 0, discardLogger())
	assert.Equal(t, DefaultRunTimeout, s.runTimeout)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	waitRun(t, syncer)
	s.Trigger()
	waitRun(t, syncer)
	cancel()

	<-done
	assert.Equal(t, 2, syncer.count())
}

func TestScheduler_TriggerRequestsMerge(t *testing.T) {
	s := NewScheduler(newCountingSyncer(), time.Hour, time.Second, discardLogger())

	s.Trigger()
	s.Trigger()
	s.Trigger()

	assert.Len(t, s.trigger, 1)
}

func TestScheduler_SyncErrorKeepsRunning(t *testing.T) {
	syncer := newCountingSyncer()
	syncer.err = errors.New("store n8n-tags: connection refused")
	s := NewScheduler(syncer, 10*time.Millisecond, time.Second, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	waitRun(t, syncer)
	waitRun(t, syncer)
	cancel()

	require.ErrorIs(t, <-done, context.Canceled)
}
