package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRun_RepeatsAfterErrorsAndPanics(t *testing.T) {
	var calls atomic.Int32
	job := func(context.Context) error {
		switch calls.Add(1) {
		case 1:
			return errors.New("boom")
		case 2:
			panic("worse")
		}
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := New(job, 5*time.Millisecond, nil)

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return calls.Load() >= 4 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestRunNow_SkipsWhileRunning(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var calls atomic.Int32
	s := New(func(context.Context) error {
		calls.Add(1)
		close(started)
		<-release
		return nil
	}, time.Hour, nil)

	ran := make(chan bool, 1)
	go func() { ran <- s.RunNow(context.Background()) }()
	<-started

	require.False(t, s.RunNow(context.Background()))
	close(release)
	require.True(t, <-ran)
	require.Equal(t, int32(1), calls.Load())
}

func TestNew_DefaultInterval(t *testing.T) {
	s := New(func(context.Context) error { return nil }, 0, nil)
	require.Equal(t, time.Hour, s.interval)
}
