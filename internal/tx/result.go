package tx

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Typed return values reported by getTransaction for successful operations.
// Decoding is strict: an unexpected tag or a malformed payload is an error,
// never a zero value.

type returnValue struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

const (
	returnTypeWasmHash        = "wasm_hash"
	returnTypeContractAddress = "contract_address"
)

// DecodeWasmHash extracts the 32-byte content hash of uploaded code from an
// upload_code return value.
func DecodeWasmHash(raw json.RawMessage) ([]byte, error) {
	rv, err := decode(raw, returnTypeWasmHash)
	if err != nil {
		return nil, err
	}

	hash, err := hex.DecodeString(rv.Value)
	if err != nil {
		return nil, fmt.Errorf("wasm hash is not valid hex: %w", err)
	}
	if len(hash) != 32 {
		return nil, fmt.Errorf("wasm hash has %d bytes, want 32", len(hash))
	}

	return hash, nil
}

// DecodeContractAddress extracts the new contract's address from a
// create_contract return value.
func DecodeContractAddress(raw json.RawMessage) (string, error) {
	rv, err := decode(raw, returnTypeContractAddress)
	if err != nil {
		return "", err
	}
	if rv.Value == "" {
		return "", fmt.Errorf("contract address return value is empty")
	}
	return rv.Value, nil
}

func decode(raw json.RawMessage, wantType string) (returnValue, error) {
	if len(raw) == 0 {
		return returnValue{}, fmt.Errorf("transaction carried no return value")
	}

	var rv returnValue
	if err := json.Unmarshal(raw, &rv); err != nil {
		return returnValue{}, fmt.Errorf("malformed return value: %w", err)
	}
	if rv.Type != wantType {
		return returnValue{}, fmt.Errorf("return value has type %q, want %q", rv.Type, wantType)
	}

	return rv, nil
}
