package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/goran-ethernal/subindex/internal/common"
	"github.com/goran-ethernal/subindex/internal/ingest"
	"github.com/goran-ethernal/subindex/internal/logger"
	"github.com/goran-ethernal/subindex/internal/store"
	"github.com/goran-ethernal/subindex/internal/types"
)

const (
	defaultRangeLimit = 100
	maxRangeLimit     = 1000
)

// BlockReader is the read-only storage surface the API serves from.
type BlockReader interface {
	GetHead(ctx context.Context) (*types.Block, error)
	GetByNumber(ctx context.Context, number uint64) (*types.Block, error)
	GetRange(ctx context.Context, from, to uint64, limit int) ([]*types.Block, error)
}

// IngestStatus reports the current ingestion state for health checks.
type IngestStatus interface {
	State() ingest.State
}

// Handler handles HTTP requests for the API.
type Handler struct {
	store  BlockReader
	status IngestStatus
	chain  string
	log    *logger.Logger
}

// NewHandler creates a new API handler.
func NewHandler(blockStore BlockReader, status IngestStatus, chain string, log *logger.Logger) *Handler {
	return &Handler{
		store:  blockStore,
		status: status,
		chain:  chain,
		log:    log,
	}
}

// Health returns the service health and ingestion status.
// @Summary Health check
// @Description Get the service status, ingestion state and the latest indexed block
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse "Service status"
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Chain:     h.chain,
	}

	if h.status != nil {
		resp.IngestState = string(h.status.State())
		if resp.IngestState == string(ingest.StateFaulted) {
			resp.Status = "degraded"
		}
	}

	head, err := h.store.GetHead(r.Context())
	if err == nil {
		resp.LatestBlock = &head.Number
	} else if !errors.Is(err, store.ErrNotFound) {
		h.log.Errorf("Health check failed to read head: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to read storage")
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// GetHead returns the latest indexed block.
// @Summary Get the latest indexed block
// @Description Get the block with the highest indexed number
// @Tags Blocks
// @Produce json
// @Success 200 {object} BlockResponse "Latest block"
// @Failure 404 {object} ErrorResponse "No blocks indexed yet"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /blocks/head [get]
func (h *Handler) GetHead(w http.ResponseWriter, r *http.Request) {
	head, err := h.store.GetHead(r.Context())
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "no blocks indexed yet")
		return
	}
	if err != nil {
		h.log.Errorf("Failed to read head block: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to read storage")
		return
	}

	respondJSON(w, http.StatusOK, blockToResponse(head))
}

// GetBlock returns one indexed block by number.
// @Summary Get a block by number
// @Description Get one indexed block by its number (decimal or 0x-hex)
// @Tags Blocks
// @Produce json
// @Param number path string true "Block number (decimal or 0x-hex)"
// @Success 200 {object} BlockResponse "Requested block"
// @Failure 400 {object} ErrorResponse "Invalid block number"
// @Failure 404 {object} ErrorResponse "Block not indexed"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /block/{number} [get]
func (h *Handler) GetBlock(w http.ResponseWriter, r *http.Request) {
	number, err := common.ParseBlockNumber(r.PathValue("number"))
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid block number: %v", err))
		return
	}

	block, err := h.store.GetByNumber(r.Context(), number)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, fmt.Sprintf("block %d not indexed", number))
		return
	}
	if err != nil {
		h.log.Errorf("Failed to read block %d: %v", number, err)
		respondError(w, http.StatusInternalServerError, "failed to read storage")
		return
	}

	respondJSON(w, http.StatusOK, blockToResponse(block))
}

// GetBlocks returns indexed blocks in a number range, newest first.
// @Summary List blocks in a range
// @Description Get indexed blocks with from <= number <= to, newest first
// @Tags Blocks
// @Produce json
// @Param from query integer false "Lowest block number" default(0)
// @Param to query integer false "Highest block number (defaults to the indexed head)"
// @Param limit query integer false "Maximum number of blocks to return" default(100)
// @Success 200 {array} BlockResponse "Blocks in the range"
// @Failure 400 {object} ErrorResponse "Invalid parameters"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /blocks [get]
func (h *Handler) GetBlocks(w http.ResponseWriter, r *http.Request) {
	from, to, limit, err := parseRangeParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	// An absent "to" means up to the indexed head.
	if to == nil {
		head, err := h.store.GetHead(r.Context())
		if errors.Is(err, store.ErrNotFound) {
			respondJSON(w, http.StatusOK, []BlockResponse{})
			return
		}
		if err != nil {
			h.log.Errorf("Failed to read head block: %v", err)
			respondError(w, http.StatusInternalServerError, "failed to read storage")
			return
		}
		to = &head.Number
	}

	if from > *to {
		respondError(w, http.StatusBadRequest, "from cannot be greater than to")
		return
	}

	blocks, err := h.store.GetRange(r.Context(), from, *to, limit)
	if err != nil {
		h.log.Errorf("Failed to read blocks %d-%d: %v", from, *to, err)
		respondError(w, http.StatusInternalServerError, "failed to read storage")
		return
	}

	resp := make([]BlockResponse, 0, len(blocks))
	for _, block := range blocks {
		resp = append(resp, blockToResponse(block))
	}

	respondJSON(w, http.StatusOK, resp)
}

// parseRangeParams parses the from/to/limit query parameters. A nil "to"
// means the parameter was absent.
func parseRangeParams(r *http.Request) (from uint64, to *uint64, limit int, err error) {
	limit = defaultRangeLimit

	if fromStr := r.URL.Query().Get("from"); fromStr != "" {
		from, err = strconv.ParseUint(fromStr, 10, 64)
		if err != nil {
			return 0, nil, 0, fmt.Errorf("invalid from")
		}
	}

	if toStr := r.URL.Query().Get("to"); toStr != "" {
		parsed, err := strconv.ParseUint(toStr, 10, 64)
		if err != nil {
			return 0, nil, 0, fmt.Errorf("invalid to")
		}
		to = &parsed
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			return 0, nil, 0, fmt.Errorf("invalid limit")
		}
		if limit > maxRangeLimit {
			limit = maxRangeLimit
		}
	}

	return from, to, limit, nil
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")

	// Encode JSON first to catch any errors before writing status
	encoded, err := json.Marshal(data)
	if err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)

	if _, err := w.Write(encoded); err != nil {
		// Headers already sent, nothing left to do
		return
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	response := ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	}
	respondJSON(w, status, response)
}
