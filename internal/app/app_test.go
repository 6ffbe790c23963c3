package app_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinywideclouds/go-booking-push-service/internal/app"
)

type fakeService struct {
	mu       sync.Mutex
	startErr error
	stop     chan struct{}
	shutdown bool
}

func newFakeService(startErr error) *fakeService {
	return &fakeService{startErr: startErr, stop: make(chan struct{})}
}

func (f *fakeService) Start(ctx context.Context) error {
	if f.startErr != nil {
		return f.startErr
	}
	<-f.stop
	return http.ErrServerClosed
}

func (f *fakeService) Shutdown(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.shutdown {
		f.shutdown = true
		close(f.stop)
	}
	return nil
}

func (f *fakeService) wasShutdown() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.shutdown
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRun_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	svc := newFakeService(nil)

	done := make(chan error, 1)
	go func() { done <- app.Run(ctx, newTestLogger(), svc) }()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
	assert.True(t, svc.wasShutdown())
}

func TestRun_StartFailure(t *testing.T) {
	boom := errors.New("listen failed")
	svc := newFakeService(boom)

	err := app.Run(context.Background(), newTestLogger(), svc)

	require.ErrorIs(t, err, boom)
	assert.True(t, svc.wasShutdown())
}
