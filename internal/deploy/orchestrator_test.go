package deploy

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenforge/deployer/internal/retry"
	"github.com/tokenforge/deployer/internal/rpc"
	"github.com/tokenforge/deployer/internal/tx"
)

const testWasmHashHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

// fakeChain replays a deterministic chain: sequences increment, submissions
// are assigned hashes in order, and return values match the submitted
// operation type.
type fakeChain struct {
	mu sync.Mutex

	sequence     uint64
	accountCalls int
	sendCount    int

	simulate func(op tx.Operation) (rpc.SimulateResponse, error)
	txStatus func(hash string) rpc.TxStatus

	submitted []tx.Operation
	byHash    map[string]tx.Operation
}

func newFakeChain() *fakeChain {
	return &fakeChain{byHash: make(map[string]tx.Operation)}
}

func (f *fakeChain) GetAccount(ctx context.Context, address string) (rpc.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accountCalls++
	f.sequence++
	return rpc.Account{Address: address, Sequence: f.sequence}, nil
}

func decodeEnvelope(t string) (tx.Transaction, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(t, "signed:"))
	if err != nil {
		return tx.Transaction{}, err
	}
	var txn tx.Transaction
	if err := json.Unmarshal(raw, &txn); err != nil {
		return tx.Transaction{}, err
	}
	return txn, nil
}

func (f *fakeChain) SimulateTransaction(ctx context.Context, envelope string) (rpc.SimulateResponse, error) {
	txn, err := decodeEnvelope(envelope)
	if err != nil {
		return rpc.SimulateResponse{}, err
	}
	if f.simulate != nil {
		return f.simulate(txn.Operations[0])
	}
	return rpc.SimulateResponse{MinResourceFee: 500}, nil
}

func (f *fakeChain) SendTransaction(ctx context.Context, signedEnvelope string) (rpc.SendResponse, error) {
	txn, err := decodeEnvelope(signedEnvelope)
	if err != nil {
		return rpc.SendResponse{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendCount++
	hash := fmt.Sprintf("tx-%d", f.sendCount)
	op := txn.Operations[0]
	f.submitted = append(f.submitted, op)
	f.byHash[hash] = op

	return rpc.SendResponse{Status: "PENDING", Hash: hash}, nil
}

func (f *fakeChain) GetTransaction(ctx context.Context, hash string) (rpc.TransactionResponse, error) {
	if f.txStatus != nil {
		if status := f.txStatus(hash); status != rpc.TxStatusSuccess {
			return rpc.TransactionResponse{Status: status}, nil
		}
	}

	f.mu.Lock()
	op, ok := f.byHash[hash]
	f.mu.Unlock()
	if !ok {
		return rpc.TransactionResponse{Status: rpc.TxStatusNotFound}, nil
	}

	resp := rpc.TransactionResponse{Status: rpc.TxStatusSuccess}
	switch op.Type {
	case tx.OpTypeUploadCode:
		resp.ReturnValue = json.RawMessage(`{"type":"wasm_hash","value":"` + testWasmHashHex + `"}`)
	case tx.OpTypeCreateContract:
		resp.ReturnValue = json.RawMessage(`{"type":"contract_address","value":"CDEPLOYED"}`)
	}
	return resp, nil
}

func (f *fakeChain) invokedFunctions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var fns []string
	for _, op := range f.submitted {
		if op.Type == tx.OpTypeInvoke {
			fns = append(fns, op.Invoke.Function)
		}
	}
	return fns
}

type fakeSigner struct {
	err         error
	passphrases []string
}

func (s *fakeSigner) SignTransaction(ctx context.Context, envelope, passphrase string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.passphrases = append(s.passphrases, passphrase)
	return "signed:" + envelope, nil
}

type fakeArtifacts struct {
	fetches int
	err     error
}

func (a *fakeArtifacts) GetOrFetch(ctx context.Context) ([]byte, error) {
	a.fetches++
	if a.err != nil {
		return nil, a.err
	}
	return []byte{0x00, 0x61, 0x73, 0x6d}, nil
}

func newTestOrchestrator(chain ChainClient, signer Signer, artifacts ArtifactSource) *Orchestrator {
	o := NewOrchestrator(chain, signer, artifacts)
	o.confirmPolicy = retry.Policy{Interval: time.Millisecond, MaxAttempts: 5}
	o.offlineDelay = time.Millisecond
	return o
}

func testRequest(supply string) Request {
	return Request{
		UserID:        "user-1",
		Address:       "GUSER",
		Network:       "testnet",
		ContractName:  "MyToken",
		TokenName:     "My Token",
		TokenSymbol:   "MTK",
		InitialSupply: supply,
	}
}

func TestExecute_FullPipelineWithMint(t *testing.T) {
	chain := newFakeChain()
	signer := &fakeSigner{}
	o := newTestOrchestrator(chain, signer, &fakeArtifacts{})

	res, err := o.Execute(context.Background(), testRequest("1000000"))
	require.NoError(t, err)

	assert.Equal(t, "CDEPLOYED", res.ContractID)
	assert.False(t, res.Simulated)

	// upload, create, initialize, mint
	require.Len(t, chain.submitted, 4)
	assert.Equal(t, []string{"initialize", "mint"}, chain.invokedFunctions())

	// Mint is the last confirmed transaction, so its hash is the primary one.
	assert.Equal(t, "tx-4", res.TxHash)
	assert.Contains(t, res.ExplorerURL, res.TxHash)

	mint := chain.submitted[3].Invoke
	require.Len(t, mint.Args, 2)
	assert.Equal(t, "GUSER", mint.Args[0].Value)
	assert.Equal(t, "10000000000000", mint.Args[1].Value) // 1000000 * 10^7

	// Every signature was requested under the testnet passphrase.
	require.Len(t, signer.passphrases, 4)
	for _, p := range signer.passphrases {
		assert.Contains(t, p, "Test")
	}
}

func TestExecute_ZeroSupplySkipsMint(t *testing.T) {
	chain := newFakeChain()
	o := newTestOrchestrator(chain, &fakeSigner{}, &fakeArtifacts{})

	res, err := o.Execute(context.Background(), testRequest("0"))
	require.NoError(t, err)

	require.Len(t, chain.submitted, 3)
	assert.Equal(t, []string{"initialize"}, chain.invokedFunctions())

	// The instantiation transaction is the primary one when mint is skipped.
	assert.Equal(t, "tx-2", res.TxHash)
	assert.Equal(t, "CDEPLOYED", res.ContractID)
}

func TestExecute_InvalidSupplyBeforeAnyNetworkCall(t *testing.T) {
	chain := newFakeChain()
	artifacts := &fakeArtifacts{}
	o := newTestOrchestrator(chain, &fakeSigner{}, artifacts)

	_, err := o.Execute(context.Background(), testRequest("1.00000001"))
	assert.ErrorIs(t, err, ErrInvalidSupply)
	assert.Zero(t, chain.accountCalls)
	assert.Zero(t, artifacts.fetches)
}

func TestExecute_SimulationErrorAbortsPipeline(t *testing.T) {
	chain := newFakeChain()
	chain.simulate = func(op tx.Operation) (rpc.SimulateResponse, error) {
		if op.Type == tx.OpTypeUploadCode {
			return rpc.SimulateResponse{Error: "host function trapped"}, nil
		}
		return rpc.SimulateResponse{MinResourceFee: 500}, nil
	}
	o := newTestOrchestrator(chain, &fakeSigner{}, &fakeArtifacts{})

	_, err := o.Execute(context.Background(), testRequest("10"))
	assert.ErrorIs(t, err, ErrSimulationRejected)
	assert.ErrorContains(t, err, "host function trapped")

	// Nothing was submitted; later stages never ran.
	assert.Zero(t, chain.sendCount)
}

func TestExecute_ConfirmationTimeout(t *testing.T) {
	chain := newFakeChain()
	chain.txStatus = func(hash string) rpc.TxStatus { return rpc.TxStatusPending }
	o := newTestOrchestrator(chain, &fakeSigner{}, &fakeArtifacts{})

	_, err := o.Execute(context.Background(), testRequest("10"))
	assert.ErrorIs(t, err, ErrConfirmationTimeout)
}

func TestExecute_TransactionFailed(t *testing.T) {
	chain := newFakeChain()
	chain.txStatus = func(hash string) rpc.TxStatus { return rpc.TxStatusFailed }
	o := newTestOrchestrator(chain, &fakeSigner{}, &fakeArtifacts{})

	_, err := o.Execute(context.Background(), testRequest("10"))
	assert.ErrorIs(t, err, ErrTransactionFailed)
}

func TestExecute_SigningDeniedAborts(t *testing.T) {
	chain := newFakeChain()
	denied := errors.New("user declined in wallet")
	o := newTestOrchestrator(chain, &fakeSigner{err: denied}, &fakeArtifacts{})

	_, err := o.Execute(context.Background(), testRequest("10"))
	assert.ErrorIs(t, err, denied)
	assert.Zero(t, chain.sendCount)
}

func TestExecute_ArtifactFetchFailure(t *testing.T) {
	chain := newFakeChain()
	o := newTestOrchestrator(chain, &fakeSigner{}, &fakeArtifacts{err: errors.New("host unreachable")})

	_, err := o.Execute(context.Background(), testRequest("10"))
	assert.ErrorIs(t, err, ErrArtifactFetch)
	assert.Zero(t, chain.accountCalls)
}

func TestExecute_RejectsConcurrentRunForSameAccount(t *testing.T) {
	chain := newFakeChain()
	release := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once
	chain.simulate = func(op tx.Operation) (rpc.SimulateResponse, error) {
		once.Do(func() { close(started) })
		<-release
		return rpc.SimulateResponse{MinResourceFee: 500}, nil
	}

	o := newTestOrchestrator(chain, &fakeSigner{}, &fakeArtifacts{})

	done := make(chan error, 1)
	go func() {
		_, err := o.Execute(context.Background(), testRequest("10"))
		done <- err
	}()

	<-started
	_, err := o.Execute(context.Background(), testRequest("10"))
	assert.ErrorIs(t, err, ErrDeploymentInProgress)

	close(release)
	require.NoError(t, <-done)
}

func TestExecute_OfflineFallback(t *testing.T) {
	o := newTestOrchestrator(nil, nil, nil)

	res, err := o.Execute(context.Background(), testRequest("10"))
	require.NoError(t, err)

	assert.True(t, res.Simulated)
	assert.NotEmpty(t, res.ContractID)
	assert.NotEmpty(t, res.TxHash)
	assert.Empty(t, res.ExplorerURL)
}
