package wallet

import "errors"

// Sentinel errors for session operations. Probe and Refresh never return
// these; they degrade to a disconnected session instead.
var (
	// ErrExtensionUnavailable indicates the signing agent was never discovered.
	ErrExtensionUnavailable = errors.New("wallet: extension is not available")

	// ErrAuthorizationDenied indicates the user or agent refused access.
	ErrAuthorizationDenied = errors.New("wallet: authorization denied")

	// ErrNoAccount indicates access was granted but no account came back.
	ErrNoAccount = errors.New("wallet: no account returned after authorization")

	// ErrSigningDenied indicates the agent refused to sign a transaction.
	ErrSigningDenied = errors.New("wallet: signing denied")
)
