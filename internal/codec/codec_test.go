package codec

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMetadata() *Metadata {
	return &Metadata{
		SpecVersion: 1002000,
		Pallets: []PalletMetadata{
			{Index: 0, Name: "System", Calls: []string{"remark", "set_code"}},
			{Index: 3, Name: "Timestamp", Calls: []string{"set"}},
			{Index: 5, Name: "Balances", Calls: []string{"transfer", "transfer_keep_alive"}},
		},
	}
}

func TestResolveCall(t *testing.T) {
	t.Parallel()

	c := NewMetadataCodec(testMetadata())

	tests := []struct {
		name        string
		palletIndex uint8
		callIndex   uint8
		wantPallet  string
		wantCall    string
		wantErr     bool
	}{
		{
			name:        "known call",
			palletIndex: 5,
			callIndex:   0,
			wantPallet:  "Balances",
			wantCall:    "transfer",
		},
		{
			name:        "second call of pallet",
			palletIndex: 0,
			callIndex:   1,
			wantPallet:  "System",
			wantCall:    "set_code",
		},
		{
			name:        "unknown pallet index",
			palletIndex: 99,
			callIndex:   0,
			wantErr:     true,
		},
		{
			name:        "call index out of range",
			palletIndex: 3,
			callIndex:   7,
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			pallet, call, err := c.ResolveCall(tt.palletIndex, tt.callIndex)
			if tt.wantErr {
				var unknownErr *UnknownCallError
				require.ErrorAs(t, err, &unknownErr)
				assert.Equal(t, tt.palletIndex, unknownErr.PalletIndex)
				assert.Equal(t, tt.callIndex, unknownErr.CallIndex)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantPallet, pallet)
			assert.Equal(t, tt.wantCall, call)
		})
	}
}

func TestUnknownCallError_Message(t *testing.T) {
	t.Parallel()

	err := error(&UnknownCallError{PalletIndex: 4, CallIndex: 7})
	assert.EqualError(t, err, "unknown pallet/call index 4/7")

	var target *UnknownCallError
	assert.True(t, errors.As(err, &target))
}

func TestRenderings(t *testing.T) {
	t.Parallel()

	c := NewMetadataCodec(testMetadata())

	assert.Equal(t, "0x0102ff", c.RenderCallArgs("Balances", "transfer", []byte{0x01, 0x02, 0xff}))
	assert.Equal(t, "", c.RenderCallArgs("Balances", "transfer", nil))
	assert.Equal(t, "0xdead", c.RenderEventData("System", "Remarked", []byte{0xde, 0xad}))
	assert.Equal(t, "", c.RenderEventData("System", "Remarked", []byte{}))
}
