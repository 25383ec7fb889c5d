// Package ingest drives the indexing pipeline: it follows finalized head
// announcements, closes any gap between the store and the announced head
// by fetching the missing range in order, and persists each decoded block.
package ingest

import (
	"context"
	"fmt"
	"sync"

	"github.com/goran-ethernal/subindex/internal/decoder"
	"github.com/goran-ethernal/subindex/internal/logger"
	"github.com/goran-ethernal/subindex/internal/source"
	"github.com/goran-ethernal/subindex/internal/types"
	"golang.org/x/sync/errgroup"
)

// State describes what the ingester is currently doing.
type State string

const (
	// StateIdle means the ingester has not started processing yet.
	StateIdle State = "idle"
	// StateCatchingUp means the ingester is filling a multi-block gap.
	StateCatchingUp State = "catching_up"
	// StateIngesting means the ingester is keeping pace with finality.
	StateIngesting State = "ingesting"
	// StateFaulted means ingestion stopped on an unrecoverable error.
	StateFaulted State = "faulted"
)

// headerBuffer absorbs announcement bursts while a catch-up is running.
const headerBuffer = 16

// BlockStore is the persistence surface the ingester writes to.
type BlockStore interface {
	Upsert(ctx context.Context, block *types.Block) error
	HighestContiguousNumber(ctx context.Context) (uint64, bool, error)
	SetStartBoundary(ctx context.Context, number uint64) error
	GetStartBoundary(ctx context.Context) (uint64, bool, error)
}

// Ingester consumes finalized head announcements and keeps the store
// gap-free from the start boundary up to the latest announced head.
// Blocks are written strictly in ascending order, so a contiguous prefix
// stays contiguous no matter where ingestion is interrupted.
type Ingester struct {
	source     source.Source
	decoder    *decoder.Decoder
	store      BlockStore
	log        *logger.Logger
	startBlock uint64

	mu      sync.RWMutex
	state   State
	lastErr error
}

// New creates an Ingester starting at startBlock.
func New(src source.Source, dec *decoder.Decoder, store BlockStore, startBlock uint64, log *logger.Logger) *Ingester {
	return &Ingester{
		source:     src,
		decoder:    dec,
		store:      store,
		log:        log.WithComponent("ingester"),
		startBlock: startBlock,
		state:      StateIdle,
	}
}

// State returns the current ingestion state.
func (i *Ingester) State() State {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.state
}

// LastError returns the error that faulted the ingester, if any.
func (i *Ingester) LastError() error {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.lastErr
}

// Run starts the announcement stream and the processing loop. It blocks
// until ctx is cancelled or ingestion faults.
func (i *Ingester) Run(ctx context.Context) error {
	startBlock, err := i.resolveStartBoundary(ctx)
	if err != nil {
		i.fault(err)
		return err
	}
	i.startBlock = startBlock

	headers := make(chan types.FinalizedHeader, headerBuffer)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return i.source.FinalizedHeaders(gctx, headers)
	})

	g.Go(func() error {
		return i.processLoop(gctx, headers)
	})

	err = g.Wait()
	if err != nil && ctx.Err() == nil {
		i.fault(err)
	}
	return err
}

// resolveStartBoundary records the configured start block on first run
// and keeps the originally recorded boundary on later runs, so the
// contiguity guarantee stays anchored to one number for the lifetime of
// the database file.
func (i *Ingester) resolveStartBoundary(ctx context.Context) (uint64, error) {
	if err := i.store.SetStartBoundary(ctx, i.startBlock); err != nil {
		return 0, fmt.Errorf("record start boundary: %w", err)
	}

	recorded, ok, err := i.store.GetStartBoundary(ctx)
	if err != nil {
		return 0, fmt.Errorf("read start boundary: %w", err)
	}
	if !ok {
		return i.startBlock, nil
	}

	if recorded != i.startBlock {
		i.log.Warnf("Configured start block %d differs from the recorded boundary %d; keeping %d",
			i.startBlock, recorded, recorded)
	}

	return recorded, nil
}

func (i *Ingester) processLoop(ctx context.Context, headers <-chan types.FinalizedHeader) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case header := <-headers:
			if err := i.ingestTo(ctx, header.Number); err != nil {
				return err
			}
		}
	}
}

// ingestTo closes the gap between the stored contiguous prefix and the
// announced head, fetching and persisting each missing block in order.
func (i *Ingester) ingestTo(ctx context.Context, target uint64) error {
	highest, ok, err := i.store.HighestContiguousNumber(ctx)
	if err != nil {
		return fmt.Errorf("determine contiguous prefix: %w", err)
	}

	next := i.startBlock
	if ok {
		if highest >= target {
			// Already have this head; re-announcements and duplicates
			// are a no-op.
			i.setState(StateIngesting)
			i.log.Debugf("Announced head %d already stored (have up to %d)", target, highest)
			return nil
		}
		next = highest + 1
	}

	if target > next {
		i.setState(StateCatchingUp)
		i.log.Infof("Catching up: blocks %d-%d", next, target)
	} else {
		i.setState(StateIngesting)
	}

	for n := next; n <= target; n++ {
		if err := i.ingestBlock(ctx, n); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("ingest block %d: %w", n, err)
		}
	}

	i.setState(StateIngesting)
	return nil
}

func (i *Ingester) ingestBlock(ctx context.Context, number uint64) error {
	raw, err := i.source.BlockByNumber(ctx, number)
	if err != nil {
		return err
	}

	block, notes := i.decoder.Decode(raw.Header, raw.Extrinsics, raw.Events)

	for _, anomaly := range notes.Anomalies {
		AnomaliesInc()
		i.log.Warnf("Block %d: %s", number, anomaly)
	}
	if notes.DroppedBlockEvents > 0 {
		i.log.Debugf("Block %d: dropped %d block-level events", number, notes.DroppedBlockEvents)
	}

	if err := i.store.Upsert(ctx, block); err != nil {
		return err
	}

	BlocksIngestedInc()
	IngestedHeadSet(number)

	i.log.Infof("Indexed block %d: %d extrinsics, %d events",
		number, len(block.Extrinsics), block.EventCount())

	return nil
}

func (i *Ingester) setState(state State) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.state != state {
		i.log.Infof("Ingestion state: %s -> %s", i.state, state)
		i.state = state
		StateSet(string(state))
	}
}

func (i *Ingester) fault(err error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.state = StateFaulted
	i.lastErr = err
	StateSet(string(StateFaulted))
	i.log.Errorf("Ingestion faulted: %v", err)
}
