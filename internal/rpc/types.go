package rpc

import "encoding/json"

// TxStatus is the terminal-or-not state reported for a submitted transaction.
type TxStatus string

const (
	TxStatusPending  TxStatus = "PENDING"
	TxStatusSuccess  TxStatus = "SUCCESS"
	TxStatusFailed   TxStatus = "FAILED"
	TxStatusNotFound TxStatus = "NOT_FOUND"
)

type (
	// Account is the on-chain state consulted before building a transaction.
	Account struct {
		Address  string `json:"address"`
		Sequence uint64 `json:"sequence"`
	}

	// SimulateResponse carries the resource estimate for a dry-run, or the
	// simulator's error when the transaction would not apply.
	SimulateResponse struct {
		Error          string          `json:"error,omitempty"`
		MinResourceFee uint64          `json:"minResourceFee"`
		Footprint      json.RawMessage `json:"footprint,omitempty"`
		Auth           []string        `json:"auth,omitempty"`
		LatestLedger   uint64          `json:"latestLedger"`
	}

	// SendResponse acknowledges a submission. Status other than PENDING, or a
	// missing hash, means the transaction was not accepted into the queue.
	SendResponse struct {
		Status string `json:"status"`
		Hash   string `json:"hash"`
		Error  string `json:"error,omitempty"`
	}

	// TransactionResponse reports the polled status of a submitted
	// transaction, with the typed return value once it has succeeded.
	TransactionResponse struct {
		Status      TxStatus        `json:"status"`
		ReturnValue json.RawMessage `json:"returnValue,omitempty"`
	}
)
