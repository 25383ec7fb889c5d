package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/goran-ethernal/subindex/internal/db"
	"github.com/goran-ethernal/subindex/internal/logger"
	"github.com/goran-ethernal/subindex/internal/types"
	"github.com/russross/meddler"
)

// ErrNotFound is returned when a requested block is not in the store.
var ErrNotFound = errors.New("block not found")

// startBlockKey is the index_state row recording the configured ingestion
// start boundary. Contiguity is only meaningful from this number onward.
const startBlockKey = "start_block"

// BlockStore persists decoded finalized blocks in SQLite. Writes go through
// a single transaction per block so readers never observe a half-written
// block. Reads and writes take the maintenance operation lock so VACUUM
// gets exclusive access when it runs.
type BlockStore struct {
	db    *sql.DB
	maint db.Maintenance
	log   *logger.Logger
}

// NewBlockStore creates a new SQLite-backed BlockStore.
func NewBlockStore(database *sql.DB, maint db.Maintenance, log *logger.Logger) *BlockStore {
	if maint == nil {
		maint = &db.NoOpMaintenance{}
	}

	return &BlockStore{
		db:    database,
		maint: maint,
		log:   log.WithComponent("block-store"),
	}
}

// Upsert stores a decoded block, replacing any previous row for the same
// number. Re-storing an identical block is a harmless no-op from the
// reader's point of view. The whole block commits atomically.
func (s *BlockStore) Upsert(ctx context.Context, block *types.Block) error {
	unlock := s.maint.AcquireOperationLock()
	defer unlock()

	start := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			s.log.Errorf("failed to rollback transaction: %v", err)
		}
	}()

	// Replace semantics: clear any previous version of this block first.
	// Child rows go with it via ON DELETE CASCADE.
	if _, err := tx.ExecContext(ctx, "DELETE FROM blocks WHERE number = ?", block.Number); err != nil {
		return fmt.Errorf("failed to clear previous block %d: %w", block.Number, err)
	}

	const insertBlockQuery = `
		INSERT INTO blocks (number, hash, extrinsics_count, events_count)
		VALUES (?, ?, ?, ?)
	`

	_, err = tx.ExecContext(ctx, insertBlockQuery,
		block.Number, block.Hash.Hex(), len(block.Extrinsics), block.EventCount())
	if err != nil {
		return fmt.Errorf("failed to insert block %d: %w", block.Number, err)
	}

	const insertExtrinsicQuery = `
		INSERT INTO extrinsics (block_number, idx, hash, action, params)
		VALUES (?, ?, ?, ?, ?)
	`
	const insertEventQuery = `
		INSERT INTO events (block_number, extrinsic_idx, ordinal, pallet, variant, data)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	for i := range block.Extrinsics {
		ext := &block.Extrinsics[i]

		_, err = tx.ExecContext(ctx, insertExtrinsicQuery,
			block.Number, ext.Index, ext.Hash.Hex(), ext.Action, ext.Params)
		if err != nil {
			return fmt.Errorf("failed to insert extrinsic %d of block %d: %w", ext.Index, block.Number, err)
		}

		for ordinal, ev := range ext.Events {
			_, err = tx.ExecContext(ctx, insertEventQuery,
				block.Number, ext.Index, ordinal, ev.Pallet, ev.Variant, ev.Data)
			if err != nil {
				return fmt.Errorf("failed to insert event %d of extrinsic %d in block %d: %w",
					ordinal, ext.Index, block.Number, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit block %d: %w", block.Number, err)
	}

	UpsertDurationLog(time.Since(start))
	BlocksUpsertedInc()

	s.log.Debugf("Stored block %d with %d extrinsics, %d events",
		block.Number, len(block.Extrinsics), block.EventCount())

	return nil
}

// GetHead returns the block with the highest stored number.
// Returns ErrNotFound when the store is empty.
func (s *BlockStore) GetHead(ctx context.Context) (*types.Block, error) {
	unlock := s.maint.AcquireOperationLock()
	defer unlock()

	return s.queryBlock(ctx, "SELECT * FROM blocks ORDER BY number DESC LIMIT 1")
}

// GetByNumber returns the stored block with the given number.
// Returns ErrNotFound when the block has not been indexed.
func (s *BlockStore) GetByNumber(ctx context.Context, number uint64) (*types.Block, error) {
	unlock := s.maint.AcquireOperationLock()
	defer unlock()

	return s.queryBlock(ctx, "SELECT * FROM blocks WHERE number = ?", number)
}

// blockReadRetries bounds how often a read restarts when a concurrent
// replace commits between the block row query and its child row queries.
const blockReadRetries = 5

// queryBlock loads the single block selected by query together with its
// extrinsics and events. The queries run in separate snapshots, so a
// replace that lands in between shows up as a count mismatch and the
// read restarts on the new committed version.
func (s *BlockStore) queryBlock(ctx context.Context, query string, args ...any) (*types.Block, error) {
	for attempt := 0; attempt < blockReadRetries; attempt++ {
		var row dbBlock
		err := meddler.QueryRow(s.db, &row, query, args...)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("failed to query block: %w", err)
		}

		block, consistent, err := s.assembleBlock(ctx, &row)
		if err != nil {
			return nil, err
		}
		if consistent {
			return block, nil
		}
	}

	return nil, fmt.Errorf("failed to read a stable version of the block in %d attempts", blockReadRetries)
}

// GetRange returns stored blocks with from <= number <= to, newest first,
// capped at limit rows. Missing numbers inside the range are simply absent
// from the result.
func (s *BlockStore) GetRange(ctx context.Context, from, to uint64, limit int) ([]*types.Block, error) {
	unlock := s.maint.AcquireOperationLock()
	defer unlock()

	const rangeQuery = `
		SELECT * FROM blocks
		WHERE number >= ? AND number <= ?
		ORDER BY number DESC
		LIMIT ?
	`

	var rows []*dbBlock
	if err := meddler.QueryAll(s.db, &rows, rangeQuery, from, to, limit); err != nil {
		return nil, fmt.Errorf("failed to query blocks %d-%d: %w", from, to, err)
	}

	blocks := make([]*types.Block, 0, len(rows))
	for _, row := range rows {
		block, consistent, err := s.assembleBlock(ctx, row)
		if err != nil {
			return nil, err
		}
		if !consistent {
			// Replaced while assembling; load the committed version.
			block, err = s.queryBlock(ctx, "SELECT * FROM blocks WHERE number = ?", row.Number)
			if err != nil {
				return nil, err
			}
		}
		blocks = append(blocks, block)
	}

	return blocks, nil
}

// HighestContiguousNumber returns the largest number N such that every
// block from the start boundary up to N is present. The second return is
// false when nothing contiguous has been stored yet (empty store, or the
// start boundary block itself is missing).
func (s *BlockStore) HighestContiguousNumber(ctx context.Context) (uint64, bool, error) {
	unlock := s.maint.AcquireOperationLock()
	defer unlock()

	startBlock, hasStart, err := s.getStartBoundary(ctx)
	if err != nil {
		return 0, false, err
	}
	if !hasStart {
		startBlock = 0
	}

	var exists bool
	err = s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM blocks WHERE number = ?)", startBlock).Scan(&exists)
	if err != nil {
		return 0, false, fmt.Errorf("failed to check start block %d: %w", startBlock, err)
	}
	if !exists {
		return 0, false, nil
	}

	// First number at/after the start whose successor is missing. That is
	// the end of the contiguous run.
	const gapQuery = `
		SELECT MIN(b1.number)
		FROM blocks b1
		LEFT JOIN blocks b2 ON b2.number = b1.number + 1
		WHERE b1.number >= ? AND b2.number IS NULL
	`

	var highest uint64
	if err := s.db.QueryRowContext(ctx, gapQuery, startBlock).Scan(&highest); err != nil {
		return 0, false, fmt.Errorf("failed to query contiguous run: %w", err)
	}

	return highest, true, nil
}

// SetStartBoundary records the ingestion start boundary. It is written once
// on first run; later runs with a different configured start keep the
// original boundary so contiguity stays well-defined.
func (s *BlockStore) SetStartBoundary(ctx context.Context, number uint64) error {
	unlock := s.maint.AcquireOperationLock()
	defer unlock()

	const insertQuery = `
		INSERT INTO index_state (key, value)
		VALUES (?, ?)
		ON CONFLICT(key) DO NOTHING
	`

	if _, err := s.db.ExecContext(ctx, insertQuery, startBlockKey, strconv.FormatUint(number, 10)); err != nil {
		return fmt.Errorf("failed to record start boundary: %w", err)
	}

	return nil
}

// GetStartBoundary returns the recorded ingestion start boundary.
// The second return is false when no boundary has been recorded yet.
func (s *BlockStore) GetStartBoundary(ctx context.Context) (uint64, bool, error) {
	unlock := s.maint.AcquireOperationLock()
	defer unlock()

	return s.getStartBoundary(ctx)
}

func (s *BlockStore) getStartBoundary(ctx context.Context) (uint64, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM index_state WHERE key = ?", startBlockKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to query start boundary: %w", err)
	}

	number, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt start boundary %q: %w", value, err)
	}

	return number, true, nil
}

// assembleBlock loads the extrinsics and events belonging to a block row.
// The second return is false when the loaded rows do not match the counts
// stored on the block row, meaning a replace committed mid-read.
func (s *BlockStore) assembleBlock(ctx context.Context, row *dbBlock) (*types.Block, bool, error) {
	const extrinsicsQuery = `
		SELECT * FROM extrinsics
		WHERE block_number = ?
		ORDER BY idx ASC
	`

	var dbExtrinsics []*dbExtrinsic
	if err := meddler.QueryAll(s.db, &dbExtrinsics, extrinsicsQuery, row.Number); err != nil {
		return nil, false, fmt.Errorf("failed to query extrinsics of block %d: %w", row.Number, err)
	}

	const eventsQuery = `
		SELECT * FROM events
		WHERE block_number = ?
		ORDER BY extrinsic_idx ASC, ordinal ASC
	`

	var dbEvents []*dbEvent
	if err := meddler.QueryAll(s.db, &dbEvents, eventsQuery, row.Number); err != nil {
		return nil, false, fmt.Errorf("failed to query events of block %d: %w", row.Number, err)
	}

	if len(dbExtrinsics) != row.ExtrinsicsCount || len(dbEvents) != row.EventsCount {
		return nil, false, nil
	}

	eventsByExtrinsic := make(map[uint32][]types.Event, len(dbExtrinsics))
	for _, ev := range dbEvents {
		eventsByExtrinsic[ev.ExtrinsicIdx] = append(eventsByExtrinsic[ev.ExtrinsicIdx], types.Event{
			Pallet:  ev.Pallet,
			Variant: ev.Variant,
			Data:    ev.Data,
		})
	}

	block := &types.Block{
		Number:     row.Number,
		Hash:       row.Hash,
		Extrinsics: make([]types.Extrinsic, 0, len(dbExtrinsics)),
	}

	for _, ext := range dbExtrinsics {
		block.Extrinsics = append(block.Extrinsics, types.Extrinsic{
			Index:  ext.Idx,
			Hash:   ext.Hash,
			Action: ext.Action,
			Params: ext.Params,
			Events: eventsByExtrinsic[ext.Idx],
		})
	}

	return block, true, nil
}
