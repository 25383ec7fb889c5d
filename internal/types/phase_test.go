package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhase_JSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		phase Phase
		wire  string
	}{
		{
			name:  "apply extrinsic",
			phase: ApplyExtrinsic(2),
			wire:  `{"apply_extrinsic":2}`,
		},
		{
			name:  "apply extrinsic zero",
			phase: ApplyExtrinsic(0),
			wire:  `{"apply_extrinsic":0}`,
		},
		{
			name:  "finalization",
			phase: Finalization(),
			wire:  `"finalization"`,
		},
		{
			name:  "initialization",
			phase: Initialization(),
			wire:  `"initialization"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			data, err := json.Marshal(tt.phase)
			require.NoError(t, err)
			assert.JSONEq(t, tt.wire, string(data))

			var parsed Phase
			require.NoError(t, json.Unmarshal([]byte(tt.wire), &parsed))
			assert.Equal(t, tt.phase, parsed)
		})
	}
}

func TestPhase_UnmarshalInvalid(t *testing.T) {
	t.Parallel()

	for _, wire := range []string{`"genesis"`, `{}`, `42`} {
		var p Phase
		require.Error(t, json.Unmarshal([]byte(wire), &p), "wire: %s", wire)
	}
}

func TestPhase_AppliesTo(t *testing.T) {
	t.Parallel()

	assert.True(t, ApplyExtrinsic(2).AppliesTo(2))
	assert.False(t, ApplyExtrinsic(2).AppliesTo(3))
	assert.False(t, Finalization().AppliesTo(0))
	assert.False(t, Initialization().AppliesTo(0))
}

func TestPhase_IsBlockLevel(t *testing.T) {
	t.Parallel()

	assert.False(t, ApplyExtrinsic(0).IsBlockLevel())
	assert.True(t, Finalization().IsBlockLevel())
	assert.True(t, Initialization().IsBlockLevel())
}

func TestBlock_EventCount(t *testing.T) {
	t.Parallel()

	block := Block{
		Number: 7,
		Extrinsics: []Extrinsic{
			{Index: 0, Events: []Event{{Pallet: "Balances", Variant: "Transfer"}}},
			{Index: 2, Events: []Event{
				{Pallet: "System", Variant: "ExtrinsicSuccess"},
				{Pallet: "Treasury", Variant: "Deposit"},
			}},
		},
	}

	assert.Equal(t, 3, block.EventCount())
	assert.Equal(t, 0, (&Block{}).EventCount())
}

func TestAction(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Balances/transfer", Action("Balances", "transfer"))
}
