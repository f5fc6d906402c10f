// Package wallet tracks the connectivity session against the external
// signing agent ("extension wallet"): whether it is reachable, whether the
// user granted access, and which account and network are active.
package wallet

import "context"

type (
	// NetworkHint scopes an access request to one network.
	NetworkHint struct {
		Passphrase string
		RPCURL     string
	}

	// NetworkDetails is the network the extension reports as active.
	NetworkDetails struct {
		Network    string
		Passphrase string
	}
)

// Extension is the required capability set of the signing agent. Every call
// crosses a foreign boundary and may fail or misbehave; callers treat errors
// as "not available" rather than fatal.
type Extension interface {
	Connected(ctx context.Context) (bool, error)
	Allowed(ctx context.Context) (bool, error)
	RequestAccess(ctx context.Context, hint NetworkHint) (string, error)
	Address(ctx context.Context) (string, error)
	Network(ctx context.Context) (NetworkDetails, error)
	SignTransaction(ctx context.Context, envelope, passphrase string) (string, error)
}

// AccessRevoker is an optional capability: extensions that support revoking
// a previously granted authorization implement it.
type AccessRevoker interface {
	RevokeAccess(ctx context.Context) error
}

// NetworkWatcher is an optional capability: a push subscription for network
// changes made inside the extension itself. The returned stop function
// releases the subscription.
type NetworkWatcher interface {
	WatchNetwork(handler func(NetworkDetails)) (stop func(), err error)
}

// Discoverer locates the extension. Injection timing is unreliable, so
// discovery is retried; an error simply means "not there yet".
type Discoverer interface {
	Discover(ctx context.Context) (Extension, error)
}
