// Package source connects to the sync collaborator: the light-client
// gateway that verifies finality proofs and serves finalized block data
// and runtime metadata. Everything received here is already
// finality-verified; this package only transports it.
package source

import (
	"context"

	"github.com/goran-ethernal/subindex/internal/codec"
	"github.com/goran-ethernal/subindex/internal/types"
)

// RawBlock is one finalized block's undecoded content.
type RawBlock struct {
	Header     types.FinalizedHeader  `json:"header"`
	Extrinsics []types.RawExtrinsic   `json:"extrinsics"`
	Events     []types.RawEventRecord `json:"events"`
}

// Source supplies finalized block notifications and block content.
type Source interface {
	// FinalizedHeaders streams finalized head announcements into out.
	// It blocks until ctx is cancelled, reconnecting internally on
	// stream failures. Announcements lost while disconnected are not
	// replayed; the consumer closes gaps itself.
	FinalizedHeaders(ctx context.Context, out chan<- types.FinalizedHeader) error

	// BlockByNumber fetches the raw content of one finalized block.
	BlockByNumber(ctx context.Context, number uint64) (*RawBlock, error)

	// Metadata fetches the current runtime name-table snapshot.
	Metadata(ctx context.Context) (*codec.Metadata, error)
}
