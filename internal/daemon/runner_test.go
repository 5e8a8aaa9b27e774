package daemon

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronoq/chronoq/pkg/logger"
	"github.com/chronoq/chronoq/pkg/timercli"
)

func newTestRunner() *Runner {
	return NewRunner(logger.NewNopLogger(), &Config{
		Addr:            "127.0.0.1:0",
		ShutdownTimeout: 5 * time.Second,
		Version:         "test",
	})
}

// runAndWait starts the runner and blocks until it is serving.
func runAndWait(t *testing.T, r *Runner) chan error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- r.Run(context.Background()) }()

	deadline := time.Now().Add(2 * time.Second)
	for r.Addr() == "" {
		if time.Now().After(deadline) {
			t.Fatal("runner did not start in time")
		}
		time.Sleep(10 * time.Millisecond)
	}
	return done
}

func TestRunnerStartAndShutdown(t *testing.T) {
	r := newTestRunner()
	done := runAndWait(t, r)

	assert.True(t, r.Running())
	require.NoError(t, r.Shutdown())
	require.NoError(t, <-done)
	assert.False(t, r.Running())
}

func TestRunnerShutdownNotRunning(t *testing.T) {
	r := newTestRunner()
	assert.ErrorIs(t, r.Shutdown(), ErrNotRunning)
}

func TestRunnerDoubleRun(t *testing.T) {
	r := newTestRunner()
	done := runAndWait(t, r)
	defer func() {
		_ = r.Shutdown()
		<-done
	}()

	assert.ErrorIs(t, r.Run(context.Background()), ErrAlreadyRunning)
}

func TestRunnerRemoteShutdown(t *testing.T) {
	r := newTestRunner()
	done := runAndWait(t, r)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := timercli.Dial(ctx, r.Addr(), "")
	require.NoError(t, err)
	require.NoError(t, c.Shutdown(ctx))
	c.Close()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not exit after system.shutdown")
	}
}

func TestRunnerContextCancel(t *testing.T) {
	r := NewRunner(logger.NewNopLogger(), &Config{Addr: "127.0.0.1:0"})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for r.Addr() == "" {
		if time.Now().After(deadline) {
			t.Fatal("runner did not start in time")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not exit on context cancel")
	}
}
