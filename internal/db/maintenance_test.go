package db

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/goran-ethernal/subindex/internal/common"
	"github.com/goran-ethernal/subindex/internal/logger"
	"github.com/goran-ethernal/subindex/pkg/config"
	"github.com/stretchr/testify/require"
)

func newTestMaintenanceDB(t *testing.T) (string, *MaintenanceCoordinator) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "index.sqlite")
	db, err := NewSQLiteDB(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec("CREATE TABLE t (id INTEGER PRIMARY KEY, v TEXT)")
	require.NoError(t, err)

	cfg := &config.MaintenanceConfig{
		Enabled:           true,
		CheckInterval:     common.NewDuration(time.Hour),
		WALCheckpointMode: "TRUNCATE",
		VacuumOnStartup:   false,
	}

	m := NewMaintenanceCoordinator(dbPath, db, cfg, logger.NewNopLogger())
	coordinator, ok := m.(*MaintenanceCoordinator)
	require.True(t, ok)

	return dbPath, coordinator
}

func TestNewMaintenanceCoordinator_NilConfig(t *testing.T) {
	t.Parallel()

	m := NewMaintenanceCoordinator("unused.sqlite", nil, nil, logger.NewNopLogger())
	require.IsType(t, &NoOpMaintenance{}, m)

	require.NoError(t, m.Start(context.Background()))
	require.NoError(t, m.RunMaintenance(context.Background()))
	unlock := m.AcquireOperationLock()
	unlock()
	require.NoError(t, m.Stop())
}

func TestMaintenanceCoordinator_RunMaintenance(t *testing.T) {
	t.Parallel()

	_, m := newTestMaintenanceDB(t)

	for i := 0; i < 50; i++ {
		_, err := m.db.Exec("INSERT INTO t (v) VALUES ('filler')")
		require.NoError(t, err)
	}
	_, err := m.db.Exec("DELETE FROM t")
	require.NoError(t, err)

	require.NoError(t, m.RunMaintenance(context.Background()))
}

func TestMaintenanceCoordinator_CancelledContext(t *testing.T) {
	t.Parallel()

	_, m := newTestMaintenanceDB(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, m.RunMaintenance(ctx), context.Canceled)
}

func TestMaintenanceCoordinator_OperationLockBlocksMaintenance(t *testing.T) {
	t.Parallel()

	_, m := newTestMaintenanceDB(t)

	unlock := m.AcquireOperationLock()

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		require.NoError(t, m.RunMaintenance(context.Background()))
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("maintenance ran while operation lock was held")
	case <-time.After(100 * time.Millisecond):
	}

	unlock()
	wg.Wait()

	select {
	case <-done:
	default:
		t.Fatal("maintenance did not run after lock release")
	}
}

func TestMaintenanceCoordinator_StartStop(t *testing.T) {
	t.Parallel()

	_, m := newTestMaintenanceDB(t)

	require.NoError(t, m.Start(context.Background()))
	require.NoError(t, m.Stop())

	// Stop is idempotent on a never-started coordinator.
	_, m2 := newTestMaintenanceDB(t)
	require.NoError(t, m2.Stop())
}
