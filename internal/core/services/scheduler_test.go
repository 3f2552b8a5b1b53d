package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/regsync/internal/core/domain"
)

type countingImporter struct {
	runs atomic.Int32
	ran  chan struct{}
}

func (c *countingImporter) Run(context.Context, string) (*domain.TaskAuditRecord, error) {
	return nil, nil
}

func (c *countingImporter) RunAll(context.Context) ([]domain.TaskAuditRecord, error) {
	c.runs.Add(1)
	select {
	case c.ran <- struct{}{}:
	default:
	}
	return nil, nil
}

func TestSchedulerRunsImmediatelyAndStops(t *testing.T) {
	importer := &countingImporter{ran: make(chan struct{}, 1)}
	scheduler := NewScheduler(time.Hour, importer)

	done := make(chan error, 1)
	go func() { done <- scheduler.Start(context.Background()) }()

	select {
	case <-importer.ran:
	case <-time.After(5 * time.Second):
		t.Fatal("first import never ran")
	}

	require.NoError(t, scheduler.Stop())

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Start never returned after Stop")
	}

	assert.Equal(t, int32(1), importer.runs.Load(), "only the immediate run fired")
}

func TestSchedulerStopsOnContextCancel(t *testing.T) {
	importer := &countingImporter{ran: make(chan struct{}, 1)}
	scheduler := NewScheduler(time.Hour, importer)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- scheduler.Start(ctx) }()

	<-importer.ran
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Start never returned after cancel")
	}
}

func TestSchedulerDefaultInterval(t *testing.T) {
	scheduler := NewScheduler(0, &countingImporter{ran: make(chan struct{}, 1)})
	assert.Equal(t, DefaultInterval, scheduler.Interval())
}
