package api

import (
	"time"

	"github.com/goran-ethernal/subindex/internal/types"
)

// BlockResponse is the JSON rendering of one indexed block.
type BlockResponse struct {
	Number          uint64              `json:"number"`
	Hash            string              `json:"hash"`
	ExtrinsicsCount int                 `json:"extrinsics_count"`
	EventsCount     int                 `json:"events_count"`
	Extrinsics      []ExtrinsicResponse `json:"extrinsics"`
}

// ExtrinsicResponse is the JSON rendering of one extrinsic with its events.
type ExtrinsicResponse struct {
	Index  uint32          `json:"index"`
	Hash   string          `json:"hash"`
	Action string          `json:"action"`
	Params string          `json:"params"`
	Events []EventResponse `json:"events"`
}

// EventResponse is the JSON rendering of one event.
type EventResponse struct {
	Pallet  string `json:"pallet"`
	Variant string `json:"variant"`
	Data    string `json:"data"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}

// HealthResponse represents a health check response.
type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Chain       string    `json:"chain"`
	IngestState string    `json:"ingest_state"`
	LatestBlock *uint64   `json:"latest_block,omitempty"`
}

// blockToResponse converts a stored block to its JSON rendering.
func blockToResponse(block *types.Block) BlockResponse {
	resp := BlockResponse{
		Number:          block.Number,
		Hash:            block.Hash.Hex(),
		ExtrinsicsCount: len(block.Extrinsics),
		EventsCount:     block.EventCount(),
		Extrinsics:      make([]ExtrinsicResponse, 0, len(block.Extrinsics)),
	}

	for i := range block.Extrinsics {
		ext := &block.Extrinsics[i]

		events := make([]EventResponse, 0, len(ext.Events))
		for _, ev := range ext.Events {
			events = append(events, EventResponse{
				Pallet:  ev.Pallet,
				Variant: ev.Variant,
				Data:    ev.Data,
			})
		}

		resp.Extrinsics = append(resp.Extrinsics, ExtrinsicResponse{
			Index:  ext.Index,
			Hash:   ext.Hash.Hex(),
			Action: ext.Action,
			Params: ext.Params,
			Events: events,
		})
	}

	return resp
}
