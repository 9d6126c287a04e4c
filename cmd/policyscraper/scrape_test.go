package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"policyscraper/internal/api/v1/handler"
)

func TestBatchContextExpiresAfterDeadline(t *testing.T) {
	ctx, cancel := batchContext(context.Background(), 20*time.Millisecond)
	defer cancel()

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("batch context did not expire")
	}
	if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", ctx.Err())
	}
}

func TestBatchContextDefaultsDeadline(t *testing.T) {
	start := time.Now()
	ctx, cancel := batchContext(context.Background(), 0)
	defer cancel()

	deadline, ok := ctx.Deadline()
	if !ok {
		t.Fatal("expected a deadline")
	}
	if got := deadline.Sub(start); got < handler.DefaultBatchDeadline-time.Second || got > handler.DefaultBatchDeadline+time.Second {
		t.Errorf("deadline in %v, want about %v", got, handler.DefaultBatchDeadline)
	}
}

func TestBatchContextFollowsParentCancel(t *testing.T) {
	parent, stop := context.WithCancel(context.Background())
	ctx, cancel := batchContext(parent, time.Hour)
	defer cancel()

	stop()
	<-ctx.Done()
	if !errors.Is(ctx.Err(), context.Canceled) {
		t.Errorf("err = %v, want canceled", ctx.Err())
	}
}
