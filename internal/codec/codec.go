// Package codec resolves raw pallet/call indices and opaque payloads to
// human-readable renderings, using the runtime metadata supplied by the
// sync collaborator. Byte-level SCALE decoding stays on the collaborator
// side; this package only maps indices to names and renders payloads.
package codec

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Codec maps raw decode results to names and renderings.
type Codec interface {
	// ResolveCall resolves a pallet/call index pair to names.
	// Returns an UnknownCallError when the metadata has no entry, so
	// callers can fall back to an index-based rendering.
	ResolveCall(palletIndex, callIndex uint8) (pallet, call string, err error)

	// RenderCallArgs renders a call's argument payload for display.
	RenderCallArgs(pallet, call string, args []byte) string

	// RenderEventData renders an event's data payload for display.
	RenderEventData(pallet, variant string, data []byte) string
}

// UnknownCallError reports a pallet/call index pair absent from the
// runtime metadata, typically after a runtime upgrade the metadata
// snapshot predates.
type UnknownCallError struct {
	PalletIndex uint8
	CallIndex   uint8
}

func (e *UnknownCallError) Error() string {
	return fmt.Sprintf("unknown pallet/call index %d/%d", e.PalletIndex, e.CallIndex)
}

// PalletMetadata describes one pallet's name tables.
type PalletMetadata struct {
	Index uint8    `json:"index"`
	Name  string   `json:"name"`
	Calls []string `json:"calls"`
}

// Metadata is the runtime name-table snapshot delivered by the sync
// collaborator.
type Metadata struct {
	SpecVersion uint32           `json:"spec_version"`
	Pallets     []PalletMetadata `json:"pallets"`
}

// MetadataCodec implements Codec from a Metadata snapshot.
type MetadataCodec struct {
	pallets map[uint8]PalletMetadata
}

// NewMetadataCodec builds a MetadataCodec from a metadata snapshot.
func NewMetadataCodec(meta *Metadata) *MetadataCodec {
	pallets := make(map[uint8]PalletMetadata, len(meta.Pallets))
	for _, p := range meta.Pallets {
		pallets[p.Index] = p
	}

	return &MetadataCodec{pallets: pallets}
}

// ResolveCall implements Codec.
func (c *MetadataCodec) ResolveCall(palletIndex, callIndex uint8) (string, string, error) {
	pallet, ok := c.pallets[palletIndex]
	if !ok || int(callIndex) >= len(pallet.Calls) {
		return "", "", &UnknownCallError{PalletIndex: palletIndex, CallIndex: callIndex}
	}

	return pallet.Name, pallet.Calls[callIndex], nil
}

// RenderCallArgs implements Codec. Arguments render as 0x-hex; typed
// field rendering would require full SCALE type information, which the
// collaborator does not ship.
func (c *MetadataCodec) RenderCallArgs(_, _ string, args []byte) string {
	if len(args) == 0 {
		return ""
	}
	return hexutil.Encode(args)
}

// RenderEventData implements Codec.
func (c *MetadataCodec) RenderEventData(_, _ string, data []byte) string {
	if len(data) == 0 {
		return ""
	}
	return hexutil.Encode(data)
}
