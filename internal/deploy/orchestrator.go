// Package deploy turns a deployment request into an on-chain token contract
// through a fixed pipeline: upload code, instantiate, initialize, mint. Each
// stage is simulated, signed by the external wallet, submitted and confirmed
// before the next stage is built, because every transaction consumes the
// account's next sequence number.
package deploy

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/tokenforge/deployer/internal/logger"
	"github.com/tokenforge/deployer/internal/network"
	"github.com/tokenforge/deployer/internal/retry"
	"github.com/tokenforge/deployer/internal/rpc"
	"github.com/tokenforge/deployer/internal/tx"
)

const (
	baseFee        = 100_000
	timeoutSeconds = 300

	confirmInterval = time.Second
	confirmAttempts = 60
)

type (
	// ChainClient is the RPC capability set the pipeline consumes.
	ChainClient interface {
		GetAccount(ctx context.Context, address string) (rpc.Account, error)
		SimulateTransaction(ctx context.Context, envelope string) (rpc.SimulateResponse, error)
		SendTransaction(ctx context.Context, signedEnvelope string) (rpc.SendResponse, error)
		GetTransaction(ctx context.Context, hash string) (rpc.TransactionResponse, error)
	}

	// Signer requests a signature from the external wallet.
	Signer interface {
		SignTransaction(ctx context.Context, envelope, passphrase string) (string, error)
	}

	// ArtifactSource hands out the compiled contract bytecode.
	ArtifactSource interface {
		GetOrFetch(ctx context.Context) ([]byte, error)
	}

	// Orchestrator runs deployment pipelines. A nil client selects the
	// offline placeholder path used when no node is reachable.
	Orchestrator struct {
		client    ChainClient
		signer    Signer
		artifacts ArtifactSource
		guard     *inflightGuard
		logger    *slog.Logger

		confirmPolicy retry.Policy
		offlineDelay  time.Duration
	}
)

func NewOrchestrator(client ChainClient, signer Signer, artifacts ArtifactSource) *Orchestrator {
	return &Orchestrator{
		client:    client,
		signer:    signer,
		artifacts: artifacts,
		guard:     newInflightGuard(),
		logger:    logger.Named("deploy_orchestrator"),
		confirmPolicy: retry.Policy{
			Interval:    confirmInterval,
			MaxAttempts: confirmAttempts,
		},
		offlineDelay: 1500 * time.Millisecond,
	}
}

// Execute runs the full pipeline for one request. A second call for the same
// account while one is in flight is rejected, not queued.
func (o *Orchestrator) Execute(ctx context.Context, req Request) (Result, error) {
	if !o.guard.acquire(req.Address) {
		return Result{}, ErrDeploymentInProgress
	}
	defer o.guard.release(req.Address)

	// Input validation happens before any network call.
	scaled, err := ParseSupply(req.InitialSupply)
	if err != nil {
		return Result{}, err
	}

	if o.client == nil {
		return o.executeOffline(ctx, req)
	}

	cfg, err := network.Lookup(req.Network)
	if err != nil {
		return Result{}, err
	}

	log := o.logger.With("account", req.Address).With("network", cfg.Key)
	log.Info("starting deployment pipeline")

	wasm, err := o.artifacts.GetOrFetch(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrArtifactFetch, err)
	}

	var stages []StageResult

	log.Info("uploading contract code")
	uploadResp, uploadHash, err := o.runStage(ctx, cfg, req.Address, tx.Operation{
		Type:       tx.OpTypeUploadCode,
		UploadCode: &tx.UploadCodeOp{WasmBase64: encodeWasm(wasm)},
	})
	if err != nil {
		return Result{}, fmt.Errorf("upload code: %w", err)
	}
	stages = append(stages, StageResult{Name: "upload_code", TxHash: uploadHash})

	wasmHash, err := tx.DecodeWasmHash(uploadResp.ReturnValue)
	if err != nil {
		return Result{}, fmt.Errorf("upload code: %w: %v", ErrDecodingMismatch, err)
	}
	log.With("wasm_hash", hex.EncodeToString(wasmHash)).Info("contract code uploaded")

	salt := make([]byte, 32)
	if _, err := rand.Read(salt); err != nil {
		return Result{}, fmt.Errorf("failed to derive salt: %w", err)
	}

	log.Info("instantiating contract")
	createResp, createHash, err := o.runStage(ctx, cfg, req.Address, tx.Operation{
		Type: tx.OpTypeCreateContract,
		CreateContract: &tx.CreateContractOp{
			WasmHashHex: hex.EncodeToString(wasmHash),
			Deployer:    req.Address,
			SaltHex:     hex.EncodeToString(salt),
		},
	})
	if err != nil {
		return Result{}, fmt.Errorf("create contract: %w", err)
	}
	stages = append(stages, StageResult{Name: "create_contract", TxHash: createHash})

	contractID, err := tx.DecodeContractAddress(createResp.ReturnValue)
	if err != nil {
		return Result{}, fmt.Errorf("create contract: %w: %v", ErrDecodingMismatch, err)
	}
	log.With("contract_id", contractID).Info("contract instantiated")

	log.Info("initializing contract")
	_, initHash, err := o.runStage(ctx, cfg, req.Address, tx.Operation{
		Type: tx.OpTypeInvoke,
		Invoke: &tx.InvokeOp{
			ContractID: contractID,
			Function:   "initialize",
			Args: []tx.Arg{
				{Type: "address", Value: req.Address},
				{Type: "u32", Value: strconv.Itoa(DecimalPrecision)},
				{Type: "string", Value: req.TokenName},
				{Type: "string", Value: req.TokenSymbol},
			},
		},
	})
	if err != nil {
		return Result{}, fmt.Errorf("initialize: %w", err)
	}
	stages = append(stages, StageResult{Name: "initialize", TxHash: initHash})

	primaryHash := createHash

	if scaled.Sign() > 0 {
		log.With("amount", scaled.String()).Info("minting initial supply")
		_, mintHash, err := o.runStage(ctx, cfg, req.Address, tx.Operation{
			Type: tx.OpTypeInvoke,
			Invoke: &tx.InvokeOp{
				ContractID: contractID,
				Function:   "mint",
				Args: []tx.Arg{
					{Type: "address", Value: req.Address},
					{Type: "i128", Value: scaled.String()},
				},
			},
		})
		if err != nil {
			return Result{}, fmt.Errorf("mint: %w", err)
		}
		stages = append(stages, StageResult{Name: "mint", TxHash: mintHash})
		primaryHash = mintHash
	} else {
		log.Info("initial supply is zero, skipping mint")
	}

	log.With("tx_hash", primaryHash).Info("deployment pipeline completed")

	return Result{
		ContractID:  contractID,
		TxHash:      primaryHash,
		ExplorerURL: cfg.ExplorerTxURL(primaryHash),
		Simulated:   false,
		Stages:      stages,
	}, nil
}

// runStage executes the shared simulate/assemble/sign/submit/confirm
// sub-protocol for a single-operation transaction.
func (o *Orchestrator) runStage(ctx context.Context, cfg *network.Config, source string, op tx.Operation) (rpc.TransactionResponse, string, error) {
	account, err := o.client.GetAccount(ctx, source)
	if err != nil {
		return rpc.TransactionResponse{}, "", fmt.Errorf("failed to fetch account state: %w", err)
	}

	txn := tx.New(source, account.Sequence+1, baseFee, timeoutSeconds, op)

	envelope, err := txn.EncodeBase64()
	if err != nil {
		return rpc.TransactionResponse{}, "", err
	}

	sim, err := o.client.SimulateTransaction(ctx, envelope)
	if err != nil {
		return rpc.TransactionResponse{}, "", fmt.Errorf("%w: %v", ErrSimulationRejected, err)
	}
	if sim.Error != "" {
		return rpc.TransactionResponse{}, "", fmt.Errorf("%w: %s", ErrSimulationRejected, sim.Error)
	}

	txn.Assemble(sim)

	finalized, err := txn.EncodeBase64()
	if err != nil {
		return rpc.TransactionResponse{}, "", err
	}

	signed, err := o.signer.SignTransaction(ctx, finalized, cfg.Passphrase)
	if err != nil {
		return rpc.TransactionResponse{}, "", err
	}

	send, err := o.client.SendTransaction(ctx, signed)
	if err != nil {
		return rpc.TransactionResponse{}, "", fmt.Errorf("%w: %v", ErrSubmissionRejected, err)
	}
	if send.Status == "ERROR" || send.Hash == "" {
		return rpc.TransactionResponse{}, "", fmt.Errorf("%w: %s", ErrSubmissionRejected, send.Error)
	}

	resp, err := o.confirm(ctx, send.Hash)
	if err != nil {
		return rpc.TransactionResponse{}, "", err
	}

	return resp, send.Hash, nil
}

// confirm polls for a terminal status. Timeout is reported distinctly from
// an on-chain failure: a timed-out transaction may still land.
func (o *Orchestrator) confirm(ctx context.Context, hash string) (rpc.TransactionResponse, error) {
	var final rpc.TransactionResponse

	err := o.confirmPolicy.Do(ctx, func(ctx context.Context) (bool, error) {
		resp, err := o.client.GetTransaction(ctx, hash)
		if err != nil {
			// Transient RPC trouble; keep polling until the budget runs out.
			return false, nil
		}

		switch resp.Status {
		case rpc.TxStatusSuccess:
			final = resp
			return true, nil
		case rpc.TxStatusFailed:
			return true, fmt.Errorf("%w: %s", ErrTransactionFailed, hash)
		default:
			return false, nil
		}
	})
	if err != nil {
		if errors.Is(err, retry.ErrExhausted) {
			return rpc.TransactionResponse{}, fmt.Errorf("%w: %s", ErrConfirmationTimeout, hash)
		}
		return rpc.TransactionResponse{}, err
	}

	return final, nil
}

// executeOffline fabricates a placeholder result after a short delay. Used
// when no node is configured, so the builder UI stays demonstrable.
func (o *Orchestrator) executeOffline(ctx context.Context, req Request) (Result, error) {
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case <-time.After(o.offlineDelay):
	}

	id := uuid.NewString()
	o.logger.With("account", req.Address).Info("returning simulated deployment result")

	return Result{
		ContractID: "SIM-" + id,
		TxHash:     uuid.NewString(),
		Simulated:  true,
	}, nil
}

func encodeWasm(wasm []byte) string {
	return base64.StdEncoding.EncodeToString(wasm)
}
