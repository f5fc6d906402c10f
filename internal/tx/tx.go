// Package tx builds, assembles and encodes transaction envelopes.
//
// The canonical wire form is base64(JSON) of the envelope struct; field order
// is fixed by the struct definitions, so two builds of the same transaction
// encode identically and hash identically.
package tx

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/tokenforge/deployer/internal/rpc"
)

type OpType string

const (
	OpTypeUploadCode     OpType = "upload_code"
	OpTypeCreateContract OpType = "create_contract"
	OpTypeInvoke         OpType = "invoke"
)

type (
	// UploadCodeOp installs compiled contract code on chain.
	UploadCodeOp struct {
		WasmBase64 string `json:"wasm"`
	}

	// CreateContractOp instantiates a contract from installed code. Salt
	// makes the derived contract address unique per deployment.
	CreateContractOp struct {
		WasmHashHex string `json:"wasmHash"`
		Deployer    string `json:"deployer"`
		SaltHex     string `json:"salt"`
	}

	// Arg is one typed argument of a contract invocation.
	Arg struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	}

	// InvokeOp calls an exported function of a deployed contract.
	InvokeOp struct {
		ContractID string `json:"contractId"`
		Function   string `json:"function"`
		Args       []Arg  `json:"args,omitempty"`
	}

	Operation struct {
		Type           OpType            `json:"type"`
		UploadCode     *UploadCodeOp     `json:"uploadCode,omitempty"`
		CreateContract *CreateContractOp `json:"createContract,omitempty"`
		Invoke         *InvokeOp         `json:"invoke,omitempty"`
	}

	// Resources is the simulation output merged into the envelope before
	// signing: the resource fee bump, the read/write footprint and the
	// authorization entries the simulator computed.
	Resources struct {
		Fee       uint64          `json:"fee"`
		Footprint json.RawMessage `json:"footprint,omitempty"`
		Auth      []string        `json:"auth,omitempty"`
	}

	// Transaction is an unsigned envelope. Sequence must be the source
	// account's next sequence number at submission time.
	Transaction struct {
		Source         string      `json:"source"`
		Sequence       uint64      `json:"sequence"`
		BaseFee        uint64      `json:"baseFee"`
		TimeoutSeconds uint64      `json:"timeoutSeconds"`
		Operations     []Operation `json:"operations"`
		Resources      *Resources  `json:"resources,omitempty"`
	}
)

// New builds an unsigned single-operation transaction at the given sequence.
func New(source string, sequence, baseFee, timeoutSeconds uint64, op Operation) *Transaction {
	return &Transaction{
		Source:         source,
		Sequence:       sequence,
		BaseFee:        baseFee,
		TimeoutSeconds: timeoutSeconds,
		Operations:     []Operation{op},
	}
}

// Assemble merges a simulation's resource estimate into the envelope,
// finalizing it for signing. The total fee is the base fee plus the
// simulator's minimum resource fee.
func (t *Transaction) Assemble(sim rpc.SimulateResponse) {
	t.Resources = &Resources{
		Fee:       t.BaseFee + sim.MinResourceFee,
		Footprint: sim.Footprint,
		Auth:      sim.Auth,
	}
}

// EncodeBase64 returns the canonical wire form passed to the signer and the
// RPC endpoint.
func (t *Transaction) EncodeBase64() (string, error) {
	raw, err := json.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("failed to encode transaction: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// Hash returns the hex content hash of the canonical encoding.
func (t *Transaction) Hash() (string, error) {
	raw, err := json.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("failed to encode transaction: %w", err)
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}
