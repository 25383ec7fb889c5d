package types

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// FinalizedHeader identifies one finalized block. Immutable once produced
// by the sync collaborator.
type FinalizedHeader struct {
	Number     uint64      `json:"number"`
	Hash       common.Hash `json:"hash"`
	ParentHash common.Hash `json:"parent_hash"`
}

// RawExtrinsic is one undecoded extrinsic body as delivered by the sync
// collaborator. Pallet and call are identified by their runtime indices;
// the codec resolves them to names.
type RawExtrinsic struct {
	Hash        common.Hash   `json:"hash"`
	PalletIndex uint8         `json:"pallet_index"`
	CallIndex   uint8         `json:"call_index"`
	Args        hexutil.Bytes `json:"args"`
}

// RawEventRecord is one entry of a block's event log. The phase tag is
// the source of truth for linking events to extrinsics.
type RawEventRecord struct {
	Pallet  string        `json:"pallet"`
	Variant string        `json:"variant"`
	Data    hexutil.Bytes `json:"data"`
	Phase   Phase         `json:"phase"`
}

// Event is a decoded event attached to an extrinsic.
type Event struct {
	Pallet  string `json:"pallet"`
	Variant string `json:"variant"`
	Data    string `json:"data"`
}

// Extrinsic is a decoded extrinsic together with the events it emitted.
// Index is the position in the block body; excluded extrinsics leave
// gaps in the index sequence.
type Extrinsic struct {
	Index  uint32      `json:"index"`
	Hash   common.Hash `json:"hash"`
	Action string      `json:"action"`
	Params string      `json:"params"`
	Events []Event     `json:"events"`
}

// Block is the normalized aggregate persisted per finalized block number.
// Number is the primary identity; hash is informational.
type Block struct {
	Number     uint64      `json:"number"`
	Hash       common.Hash `json:"hash"`
	Extrinsics []Extrinsic `json:"extrinsics"`
}

// EventCount returns the total number of events across all extrinsics.
func (b *Block) EventCount() int {
	count := 0
	for i := range b.Extrinsics {
		count += len(b.Extrinsics[i].Events)
	}
	return count
}

// Action renders a pallet/call pair in the canonical "Pallet/Call" form
// used by extrinsic exclusion filters.
func Action(pallet, call string) string {
	return fmt.Sprintf("%s/%s", pallet, call)
}
