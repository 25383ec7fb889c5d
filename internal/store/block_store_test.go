package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/subindex/internal/logger"
	"github.com/goran-ethernal/subindex/internal/migrations"
	"github.com/goran-ethernal/subindex/internal/types"
	"github.com/goran-ethernal/subindex/pkg/config"
	"github.com/stretchr/testify/require"

	dbpkg "github.com/goran-ethernal/subindex/internal/db"
)

func newTestStore(t *testing.T) *BlockStore {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "index.sqlite")
	require.NoError(t, migrations.RunMigrations(dbPath))

	// Open the database exactly the way the process does, so the store
	// runs against the default connection options here.
	cfg := config.DatabaseConfig{Path: dbPath}
	cfg.ApplyDefaults()

	database, err := dbpkg.NewSQLiteDBFromConfig(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	return NewBlockStore(database, nil, logger.NewNopLogger())
}

func testBlock(number uint64, extrinsics int) *types.Block {
	block := &types.Block{
		Number: number,
		Hash:   common.BigToHash(common.Big1),
	}

	for i := 0; i < extrinsics; i++ {
		block.Extrinsics = append(block.Extrinsics, types.Extrinsic{
			Index:  uint32(i),
			Hash:   common.BytesToHash([]byte{byte(number), byte(i)}),
			Action: "Balances/transfer",
			Params: fmt.Sprintf("0x%02x", i),
			Events: []types.Event{
				{Pallet: "Balances", Variant: "Transfer", Data: "0x01"},
				{Pallet: "System", Variant: "ExtrinsicSuccess", Data: "0x"},
			},
		})
	}

	return block
}

func TestBlockStore_UpsertAndGet(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	block := testBlock(42, 3)
	require.NoError(t, s.Upsert(ctx, block))

	got, err := s.GetByNumber(ctx, 42)
	require.NoError(t, err)
	require.Equal(t, block.Number, got.Number)
	require.Equal(t, block.Hash, got.Hash)
	require.Len(t, got.Extrinsics, 3)
	require.Equal(t, block.Extrinsics, got.Extrinsics)
	require.Equal(t, 6, got.EventCount())
}

func TestBlockStore_GetByNumber_NotFound(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	_, err := s.GetByNumber(context.Background(), 7)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestBlockStore_GetHead(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetHead(ctx)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Upsert(ctx, testBlock(10, 1)))
	require.NoError(t, s.Upsert(ctx, testBlock(12, 1)))
	require.NoError(t, s.Upsert(ctx, testBlock(11, 1)))

	head, err := s.GetHead(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(12), head.Number)
}

func TestBlockStore_UpsertIdempotent(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, testBlock(5, 4)))
	require.NoError(t, s.Upsert(ctx, testBlock(5, 4)))

	got, err := s.GetByNumber(ctx, 5)
	require.NoError(t, err)
	require.Len(t, got.Extrinsics, 4)

	// Re-storing with different content replaces, never duplicates.
	require.NoError(t, s.Upsert(ctx, testBlock(5, 2)))

	got, err = s.GetByNumber(ctx, 5)
	require.NoError(t, err)
	require.Len(t, got.Extrinsics, 2)
}

func TestBlockStore_ConcurrentReadsSeeWholeBlocks(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	const rounds = 50

	// Alternate between two shapes so a torn read would surface as an
	// extrinsic or event count matching neither committed version.
	done := make(chan error, 1)
	go func() {
		for i := 0; i < rounds; i++ {
			extrinsics := 8
			if i%2 == 1 {
				extrinsics = 3
			}
			if err := s.Upsert(ctx, testBlock(7, extrinsics)); err != nil {
				done <- err
				return
			}
		}
		done <- nil
	}()

	checkWhole := func(got *types.Block) {
		t.Helper()
		require.Contains(t, []int{3, 8}, len(got.Extrinsics))
		require.Equal(t, 2*len(got.Extrinsics), got.EventCount())
	}

	for {
		got, err := s.GetByNumber(ctx, 7)
		if !errors.Is(err, ErrNotFound) {
			require.NoError(t, err)
			checkWhole(got)
		}

		select {
		case err := <-done:
			require.NoError(t, err)

			got, err := s.GetByNumber(ctx, 7)
			require.NoError(t, err)
			checkWhole(got)
			return
		default:
		}
	}
}

func TestBlockStore_GetRange(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	for _, n := range []uint64{1, 2, 3, 5, 6} {
		require.NoError(t, s.Upsert(ctx, testBlock(n, 1)))
	}

	blocks, err := s.GetRange(ctx, 2, 6, 10)
	require.NoError(t, err)
	require.Len(t, blocks, 4)
	require.Equal(t, uint64(6), blocks[0].Number)
	require.Equal(t, uint64(2), blocks[3].Number)

	blocks, err = s.GetRange(ctx, 1, 6, 2)
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	require.Equal(t, uint64(6), blocks[0].Number)
	require.Equal(t, uint64(5), blocks[1].Number)

	blocks, err = s.GetRange(ctx, 100, 200, 10)
	require.NoError(t, err)
	require.Empty(t, blocks)
}

func TestBlockStore_HighestContiguousNumber(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetStartBoundary(ctx, 10))

	// Empty store: nothing contiguous yet.
	_, ok, err := s.HighestContiguousNumber(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	// Start boundary block missing: still nothing contiguous.
	require.NoError(t, s.Upsert(ctx, testBlock(12, 0)))
	_, ok, err = s.HighestContiguousNumber(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	// Contiguous run 10..12, then a gap before 14.
	require.NoError(t, s.Upsert(ctx, testBlock(10, 0)))
	require.NoError(t, s.Upsert(ctx, testBlock(11, 0)))
	require.NoError(t, s.Upsert(ctx, testBlock(14, 0)))

	highest, ok, err := s.HighestContiguousNumber(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(12), highest)

	// Filling the gap extends the run to the end.
	require.NoError(t, s.Upsert(ctx, testBlock(13, 0)))

	highest, ok, err = s.HighestContiguousNumber(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(14), highest)
}

func TestBlockStore_StartBoundaryWrittenOnce(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	_, ok, err := s.GetStartBoundary(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.SetStartBoundary(ctx, 100))
	require.NoError(t, s.SetStartBoundary(ctx, 999))

	boundary, ok, err := s.GetStartBoundary(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(100), boundary)
}
