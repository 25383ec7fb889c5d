package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/subindex/internal/ingest"
	"github.com/goran-ethernal/subindex/internal/logger"
	"github.com/goran-ethernal/subindex/internal/store"
	"github.com/goran-ethernal/subindex/internal/types"
	"github.com/stretchr/testify/require"
)

// fakeReader serves blocks from a map.
type fakeReader struct {
	blocks map[uint64]*types.Block
}

func (f *fakeReader) GetHead(ctx context.Context) (*types.Block, error) {
	var head *types.Block
	for _, b := range f.blocks {
		if head == nil || b.Number > head.Number {
			head = b
		}
	}
	if head == nil {
		return nil, store.ErrNotFound
	}
	return head, nil
}

func (f *fakeReader) GetByNumber(ctx context.Context, number uint64) (*types.Block, error) {
	if b, ok := f.blocks[number]; ok {
		return b, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeReader) GetRange(ctx context.Context, from, to uint64, limit int) ([]*types.Block, error) {
	var out []*types.Block
	for n := to; n >= from && len(out) < limit; n-- {
		if b, ok := f.blocks[n]; ok {
			out = append(out, b)
		}
		if n == 0 {
			break
		}
	}
	return out, nil
}

type fakeStatus struct {
	state ingest.State
}

func (f *fakeStatus) State() ingest.State { return f.state }

func newTestHandler(blocks ...*types.Block) *Handler {
	reader := &fakeReader{blocks: make(map[uint64]*types.Block)}
	for _, b := range blocks {
		reader.blocks[b.Number] = b
	}
	return NewHandler(reader, &fakeStatus{state: ingest.StateIngesting}, "testnet", logger.NewNopLogger())
}

func apiBlock(number uint64) *types.Block {
	return &types.Block{
		Number: number,
		Hash:   common.BytesToHash([]byte{byte(number)}),
		Extrinsics: []types.Extrinsic{
			{
				Index:  0,
				Hash:   common.BytesToHash([]byte{0xee, byte(number)}),
				Action: "Balances/transfer",
				Params: "0x01",
				Events: []types.Event{
					{Pallet: "Balances", Variant: "Transfer", Data: "0x02"},
				},
			},
		},
	}
}

func TestHandler_GetHead(t *testing.T) {
	t.Parallel()

	h := newTestHandler(apiBlock(5), apiBlock(9))

	req := httptest.NewRequest(http.MethodGet, "/blocks/head", nil)
	rec := httptest.NewRecorder()
	h.GetHead(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp BlockResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, uint64(9), resp.Number)
	require.Equal(t, 1, resp.ExtrinsicsCount)
	require.Equal(t, 1, resp.EventsCount)
}

func TestHandler_GetHead_EmptyStore(t *testing.T) {
	t.Parallel()

	h := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/blocks/head", nil)
	rec := httptest.NewRecorder()
	h.GetHead(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, http.StatusNotFound, resp.Code)
	require.Equal(t, "no blocks indexed yet", resp.Message)
}

func TestHandler_GetBlock(t *testing.T) {
	t.Parallel()

	h := newTestHandler(apiBlock(42))

	tests := []struct {
		name       string
		number     string
		wantStatus int
	}{
		{"decimal", "42", http.StatusOK},
		{"hex", "0x2a", http.StatusOK},
		{"not indexed", "7", http.StatusNotFound},
		{"garbage", "abc", http.StatusBadRequest},
		{"negative", "-1", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/block/"+tt.number, nil)
			req.SetPathValue("number", tt.number)
			rec := httptest.NewRecorder()
			h.GetBlock(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantStatus == http.StatusOK {
				var resp BlockResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				require.Equal(t, uint64(42), resp.Number)
				require.Equal(t, "Balances/transfer", resp.Extrinsics[0].Action)
			}
		})
	}
}

func TestHandler_GetBlocks(t *testing.T) {
	t.Parallel()

	h := newTestHandler(apiBlock(1), apiBlock(2), apiBlock(3), apiBlock(5))

	req := httptest.NewRequest(http.MethodGet, "/blocks?from=2&to=5", nil)
	rec := httptest.NewRecorder()
	h.GetBlocks(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp []BlockResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 3)
	require.Equal(t, uint64(5), resp[0].Number)
	require.Equal(t, uint64(2), resp[2].Number)
}

func TestHandler_GetBlocks_DefaultsToHead(t *testing.T) {
	t.Parallel()

	h := newTestHandler(apiBlock(1), apiBlock(2))

	req := httptest.NewRequest(http.MethodGet, "/blocks", nil)
	rec := httptest.NewRecorder()
	h.GetBlocks(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp []BlockResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	require.Equal(t, uint64(2), resp[0].Number)
}

func TestHandler_GetBlocks_EmptyStore(t *testing.T) {
	t.Parallel()

	h := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/blocks", nil)
	rec := httptest.NewRecorder()
	h.GetBlocks(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, "[]", rec.Body.String())
}

func TestHandler_GetBlocks_InvalidParams(t *testing.T) {
	t.Parallel()

	h := newTestHandler(apiBlock(1))

	tests := []string{
		"/blocks?from=abc",
		"/blocks?to=abc",
		"/blocks?limit=0",
		"/blocks?limit=abc",
		"/blocks?from=5&to=2",
	}

	for _, target := range tests {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		h.GetBlocks(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code, "target %s", target)
	}
}

func TestHandler_Health(t *testing.T) {
	t.Parallel()

	h := newTestHandler(apiBlock(7))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.Health(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "ok", resp.Status)
	require.Equal(t, "testnet", resp.Chain)
	require.Equal(t, string(ingest.StateIngesting), resp.IngestState)
	require.NotNil(t, resp.LatestBlock)
	require.Equal(t, uint64(7), *resp.LatestBlock)
}

func TestHandler_Health_Faulted(t *testing.T) {
	t.Parallel()

	reader := &fakeReader{blocks: map[uint64]*types.Block{}}
	h := NewHandler(reader, &fakeStatus{state: ingest.StateFaulted}, "testnet", logger.NewNopLogger())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.Health(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "degraded", resp.Status)
	require.Nil(t, resp.LatestBlock)
}
