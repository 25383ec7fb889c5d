package api

import (
	"context"
	"testing"
	"time"

	"github.com/goran-ethernal/subindex/internal/common"
	"github.com/goran-ethernal/subindex/internal/logger"
	"github.com/goran-ethernal/subindex/pkg/config"
	"github.com/stretchr/testify/require"
)

func testAPIConfig(enabled bool) *config.APIConfig {
	return &config.APIConfig{
		Enabled:       enabled,
		ListenAddress: "localhost:0",
		ReadTimeout:   common.Duration{Duration: 5 * time.Second},
		WriteTimeout:  common.Duration{Duration: 10 * time.Second},
		IdleTimeout:   common.Duration{Duration: 60 * time.Second},
	}
}

func TestNewServer(t *testing.T) {
	t.Parallel()

	cfg := testAPIConfig(true)
	cfg.ListenAddress = "localhost:8080"

	server := NewServer(cfg, &fakeReader{}, &fakeStatus{}, "testnet", logger.NewNopLogger())

	require.NotNil(t, server)
	require.NotNil(t, server.handler)
	require.NotNil(t, server.server)
	require.Equal(t, "localhost:8080", server.server.Addr)
	require.Equal(t, 5*time.Second, server.server.ReadTimeout)
	require.Equal(t, 10*time.Second, server.server.WriteTimeout)
	require.Equal(t, 60*time.Second, server.server.IdleTimeout)
}

func TestServer_Start_Disabled(t *testing.T) {
	t.Parallel()

	server := NewServer(testAPIConfig(false), &fakeReader{}, &fakeStatus{}, "testnet", logger.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start should return immediately when disabled
	done := make(chan error, 1)
	go func() {
		done <- server.Start(ctx)
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(1 * time.Second):
		t.Fatal("Start() did not return when server is disabled")
	}
}

func TestServer_Start_GracefulShutdown(t *testing.T) {
	t.Parallel()

	server := NewServer(testAPIConfig(true), &fakeReader{}, &fakeStatus{}, "testnet", logger.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- server.Start(ctx)
	}()

	// Give server time to start
	time.Sleep(100 * time.Millisecond)

	// Trigger graceful shutdown
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(15 * time.Second): // shutdownCtxTimeout + buffer
		t.Fatal("Server did not shutdown gracefully within timeout")
	}
}
