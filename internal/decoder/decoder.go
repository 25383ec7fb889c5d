package decoder

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/goran-ethernal/subindex/internal/codec"
	"github.com/goran-ethernal/subindex/internal/filter"
	"github.com/goran-ethernal/subindex/internal/types"
)

// Notes collects non-fatal observations made while decoding one block.
// Anomalies never abort the block; the ingester logs them at warning level.
type Notes struct {
	// Anomalies lists codec failures that forced a best-effort rendering.
	Anomalies []string

	// DroppedBlockEvents counts Finalization/Initialization phase events,
	// which have no extrinsic to attach to and are not persisted.
	DroppedBlockEvents int
}

// Decoder turns one finalized block's raw data into a normalized Block
// aggregate, applying the exclusion filter. It holds no mutable state
// and is safe for concurrent use.
type Decoder struct {
	codec  codec.Codec
	filter *filter.ExclusionFilter
}

// New creates a Decoder using the given codec and exclusion filter.
func New(c codec.Codec, f *filter.ExclusionFilter) *Decoder {
	return &Decoder{
		codec:  c,
		filter: f,
	}
}

// Decode builds the Block aggregate for one finalized block.
//
// Extrinsics keep their body position as Index; excluded extrinsics are
// absent from the output along with all their events. Events attach to
// the extrinsic their phase names, in emission order.
func (d *Decoder) Decode(header types.FinalizedHeader, extrinsics []types.RawExtrinsic, events []types.RawEventRecord) (*types.Block, Notes) {
	var notes Notes

	block := &types.Block{
		Number:     header.Number,
		Hash:       header.Hash,
		Extrinsics: make([]types.Extrinsic, 0, len(extrinsics)),
	}

	for i, raw := range extrinsics {
		index := uint32(i) //nolint:gosec

		action, params, anomaly := d.decodeCall(raw)
		if anomaly != "" {
			notes.Anomalies = append(notes.Anomalies, anomaly)
		}

		if d.filter.ExcludesExtrinsic(action) {
			// The extrinsic and all its events go as a unit; the events
			// are never individually evaluated.
			continue
		}

		block.Extrinsics = append(block.Extrinsics, types.Extrinsic{
			Index:  index,
			Hash:   raw.Hash,
			Action: action,
			Params: params,
			Events: d.decodeEvents(index, events),
		})
	}

	for _, rec := range events {
		if rec.Phase.IsBlockLevel() {
			notes.DroppedBlockEvents++
		}
	}

	return block, notes
}

// decodeCall resolves the action and parameter rendering for one raw
// extrinsic. Unknown pallet/call indices degrade to an index-based
// action so the block can still be persisted.
func (d *Decoder) decodeCall(raw types.RawExtrinsic) (action, params, anomaly string) {
	pallet, call, err := d.codec.ResolveCall(raw.PalletIndex, raw.CallIndex)
	if err != nil {
		var unknownErr *codec.UnknownCallError
		if errors.As(err, &unknownErr) {
			action = fmt.Sprintf("%d/%d", unknownErr.PalletIndex, unknownErr.CallIndex)
		} else {
			action = fmt.Sprintf("%d/%d", raw.PalletIndex, raw.CallIndex)
		}

		// Raw hex is the best available rendering without metadata.
		if len(raw.Args) > 0 {
			params = hexutil.Encode(raw.Args)
		}

		return action, params, fmt.Sprintf("extrinsic %s unresolved: %v", raw.Hash.Hex(), err)
	}

	return types.Action(pallet, call), d.codec.RenderCallArgs(pallet, call, raw.Args), ""
}

// decodeEvents gathers and renders the filtered events whose phase ties
// them to the extrinsic at the given index, preserving emission order.
func (d *Decoder) decodeEvents(index uint32, events []types.RawEventRecord) []types.Event {
	decoded := make([]types.Event, 0)

	for _, rec := range events {
		if !rec.Phase.AppliesTo(index) {
			continue
		}
		if d.filter.ExcludesEvent(rec.Pallet, rec.Variant) {
			continue
		}

		decoded = append(decoded, types.Event{
			Pallet:  rec.Pallet,
			Variant: rec.Variant,
			Data:    d.codec.RenderEventData(rec.Pallet, rec.Variant, rec.Data),
		})
	}

	return decoded
}
