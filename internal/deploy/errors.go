package deploy

import "errors"

// Sentinel errors for pipeline failures. A stage failure wraps one of these
// and aborts the remaining stages; partial on-chain effects are not rolled
// back.
var (
	// ErrInvalidSupply indicates a malformed initial-supply string. It is
	// raised before any network call is made.
	ErrInvalidSupply = errors.New("deploy: invalid supply amount")

	// ErrArtifactFetch indicates the compiled contract could not be downloaded.
	ErrArtifactFetch = errors.New("deploy: artifact fetch failed")

	// ErrSimulationRejected indicates the simulator refused the transaction.
	ErrSimulationRejected = errors.New("deploy: simulation rejected")

	// ErrSubmissionRejected indicates the node refused the signed transaction.
	ErrSubmissionRejected = errors.New("deploy: submission rejected")

	// ErrConfirmationTimeout indicates no terminal status was observed within
	// the polling window. The transaction may still land later.
	ErrConfirmationTimeout = errors.New("deploy: confirmation timed out")

	// ErrTransactionFailed indicates the chain reported a terminal failure.
	ErrTransactionFailed = errors.New("deploy: transaction failed")

	// ErrDecodingMismatch indicates an on-chain return value was not of the
	// expected shape.
	ErrDecodingMismatch = errors.New("deploy: unexpected return value shape")

	// ErrDeploymentInProgress indicates another deployment is already running
	// for the same account. Sequence numbers make interleaving unsafe.
	ErrDeploymentInProgress = errors.New("deploy: deployment already in progress for this account")
)
