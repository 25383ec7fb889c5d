package store

import "github.com/ethereum/go-ethereum/common"

// dbBlock represents one finalized block row
type dbBlock struct {
	Number          uint64      `meddler:"number,pk"`
	Hash            common.Hash `meddler:"hash,hash"`
	ExtrinsicsCount int         `meddler:"extrinsics_count"`
	EventsCount     int         `meddler:"events_count"`
}

// dbExtrinsic represents one decoded extrinsic row
type dbExtrinsic struct {
	BlockNumber uint64      `meddler:"block_number"`
	Idx         uint32      `meddler:"idx"`
	Hash        common.Hash `meddler:"hash,hash"`
	Action      string      `meddler:"action"`
	Params      string      `meddler:"params"`
}

// dbEvent represents one event row, ordered by ordinal within its extrinsic
type dbEvent struct {
	BlockNumber  uint64 `meddler:"block_number"`
	ExtrinsicIdx uint32 `meddler:"extrinsic_idx"`
	Ordinal      int    `meddler:"ordinal"`
	Pallet       string `meddler:"pallet"`
	Variant      string `meddler:"variant"`
	Data         string `meddler:"data"`
}
