package tx

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenforge/deployer/internal/rpc"
)

func TestAssembleMergesSimulation(t *testing.T) {
	txn := New("GSRC", 42, 100_000, 300, Operation{
		Type:       OpTypeUploadCode,
		UploadCode: &UploadCodeOp{WasmBase64: "AAEC"},
	})

	require.Nil(t, txn.Resources)

	txn.Assemble(rpc.SimulateResponse{
		MinResourceFee: 55_000,
		Footprint:      json.RawMessage(`{"readOnly":["a"]}`),
		Auth:           []string{"auth-entry"},
	})

	require.NotNil(t, txn.Resources)
	assert.Equal(t, uint64(155_000), txn.Resources.Fee)
	assert.JSONEq(t, `{"readOnly":["a"]}`, string(txn.Resources.Footprint))
	assert.Equal(t, []string{"auth-entry"}, txn.Resources.Auth)
}

func TestEncodeBase64IsCanonical(t *testing.T) {
	build := func() *Transaction {
		return New("GSRC", 7, 100_000, 300, Operation{
			Type: OpTypeInvoke,
			Invoke: &InvokeOp{
				ContractID: "CID",
				Function:   "initialize",
				Args:       []Arg{{Type: "address", Value: "GADM"}},
			},
		})
	}

	first, err := build().EncodeBase64()
	require.NoError(t, err)
	second, err := build().EncodeBase64()
	require.NoError(t, err)
	assert.Equal(t, first, second)

	raw, err := base64.StdEncoding.DecodeString(first)
	require.NoError(t, err)

	var decoded Transaction
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, uint64(7), decoded.Sequence)
	assert.Equal(t, "initialize", decoded.Operations[0].Invoke.Function)
}

func TestHashChangesWithContent(t *testing.T) {
	a := New("GSRC", 1, 100_000, 300, Operation{Type: OpTypeUploadCode, UploadCode: &UploadCodeOp{WasmBase64: "AA=="}})
	b := New("GSRC", 2, 100_000, 300, Operation{Type: OpTypeUploadCode, UploadCode: &UploadCodeOp{WasmBase64: "AA=="}})

	ha, err := a.Hash()
	require.NoError(t, err)
	hb, err := b.Hash()
	require.NoError(t, err)

	assert.Len(t, ha, 64)
	assert.NotEqual(t, ha, hb)
}

func TestDecodeWasmHash(t *testing.T) {
	hash := make([]byte, 32)
	for i := range hash {
		hash[i] = byte(i)
	}
	raw, _ := json.Marshal(returnValue{Type: "wasm_hash", Value: "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"})

	got, err := DecodeWasmHash(raw)
	require.NoError(t, err)
	assert.Equal(t, hash, got)
}

func TestDecodeWasmHash_ShapeMismatch(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"not json", "not-json"},
		{"wrong type tag", `{"type":"contract_address","value":"CID"}`},
		{"not hex", `{"type":"wasm_hash","value":"zzzz"}`},
		{"wrong length", `{"type":"wasm_hash","value":"0001"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeWasmHash(json.RawMessage(tc.raw))
			assert.Error(t, err)
		})
	}
}

func TestDecodeContractAddress(t *testing.T) {
	got, err := DecodeContractAddress(json.RawMessage(`{"type":"contract_address","value":"CDEPLOYED"}`))
	require.NoError(t, err)
	assert.Equal(t, "CDEPLOYED", got)

	_, err = DecodeContractAddress(json.RawMessage(`{"type":"contract_address","value":""}`))
	assert.Error(t, err)

	_, err = DecodeContractAddress(json.RawMessage(`{"type":"wasm_hash","value":"CDEPLOYED"}`))
	assert.Error(t, err)
}
