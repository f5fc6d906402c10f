package wallet

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tokenforge/deployer/internal/logger"
	"github.com/tokenforge/deployer/internal/network"
	"github.com/tokenforge/deployer/internal/retry"
)

// Session is a snapshot of the wallet connection state. Address is empty
// while disconnected; Network and ChainID always come from the same registry
// entry.
type Session struct {
	Address            string
	Network            string
	ChainID            int
	ExtensionInstalled bool
	Connecting         bool
	LastError          string
}

// Manager owns the session and serializes every mutation. The extension
// injects itself at an unpredictable time, so presence is discovered by
// bounded polling rather than a one-shot check.
type Manager struct {
	discoverer  Discoverer
	probePolicy retry.Policy
	logger      *slog.Logger

	mu        sync.Mutex
	ext       Extension
	session   Session
	stopWatch func()
}

func NewManager(discoverer Discoverer, defaultNetwork *network.Config) *Manager {
	return &Manager{
		discoverer: discoverer,
		probePolicy: retry.Policy{
			Interval:    500 * time.Millisecond,
			MaxAttempts: 40,
		},
		logger: logger.Named("wallet_session"),
		session: Session{
			Network: defaultNetwork.Key,
			ChainID: defaultNetwork.ChainID,
		},
	}
}

// Session returns a copy of the current session state.
func (m *Manager) Session() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

// Probe polls for the extension until it appears or the attempt budget runs
// out. Exhaustion marks the extension as not installed; that outcome is
// terminal for the session's lifetime and is not an error.
func (m *Manager) Probe(ctx context.Context) {
	err := m.probePolicy.Do(ctx, func(ctx context.Context) (bool, error) {
		ext, err := m.discoverer.Discover(ctx)
		if err != nil || ext == nil {
			return false, nil
		}

		m.mu.Lock()
		m.ext = ext
		m.session.ExtensionInstalled = true
		m.mu.Unlock()

		m.attachNetworkWatch(ext)
		return true, nil
	})
	if err != nil {
		m.mu.Lock()
		m.session.ExtensionInstalled = false
		m.mu.Unlock()
		m.logger.Info("extension did not appear within the probing window")
		return
	}

	m.logger.Info("extension discovered")
	m.Refresh(ctx)
}

// Refresh re-derives the session from the extension: connected, allowed,
// account, network, in that order. The first negative check or failure
// short-circuits to a disconnected session. Nothing propagates.
func (m *Manager) Refresh(ctx context.Context) {
	m.mu.Lock()
	ext := m.ext
	m.mu.Unlock()

	if ext == nil {
		m.setDisconnected()
		return
	}

	connected, err := guardBool(ctx, ext.Connected)
	if err != nil || !connected {
		m.setDisconnected()
		return
	}

	allowed, err := guardBool(ctx, ext.Allowed)
	if err != nil || !allowed {
		m.setDisconnected()
		return
	}

	address, err := guardString(ctx, ext.Address)
	if err != nil || address == "" {
		m.setDisconnected()
		return
	}

	details, err := guardNetwork(ctx, ext.Network)
	if err != nil {
		m.setDisconnected()
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.session.Address = address
	m.applyNetworkLocked(details)
}

// Connect requests authorization scoped to the target network and records
// the granted account.
func (m *Manager) Connect(ctx context.Context, cfg *network.Config) error {
	m.mu.Lock()
	ext := m.ext
	if ext == nil {
		m.mu.Unlock()
		return ErrExtensionUnavailable
	}
	m.session.Connecting = true
	m.session.LastError = ""
	m.mu.Unlock()

	address, err := ext.RequestAccess(ctx, NetworkHint{
		Passphrase: cfg.Passphrase,
		RPCURL:     cfg.RPCURL,
	})

	m.mu.Lock()
	defer m.mu.Unlock()
	m.session.Connecting = false

	if err != nil {
		m.session.LastError = err.Error()
		return fmt.Errorf("%w: %v", ErrAuthorizationDenied, err)
	}
	if address == "" {
		m.session.LastError = ErrNoAccount.Error()
		return ErrNoAccount
	}

	m.session.Address = address
	m.session.Network = cfg.Key
	m.session.ChainID = cfg.ChainID
	m.session.ExtensionInstalled = true

	return nil
}

// Disconnect clears the local session unconditionally. The extension-side
// revoke is best-effort: its failure is logged, never surfaced, because the
// user asked to be disconnected and locally they are.
func (m *Manager) Disconnect(ctx context.Context) {
	m.mu.Lock()
	ext := m.ext
	m.session.Address = ""
	m.session.ChainID = 0
	m.session.LastError = ""
	m.mu.Unlock()

	if revoker, ok := ext.(AccessRevoker); ok {
		if err := guardedRevoke(ctx, revoker); err != nil {
			m.logger.With("err", err.Error()).Warn("extension-side revoke failed")
		}
	}
}

// SwitchNetwork re-requests authorization on the target network. On failure
// the prior session state is left untouched and false is returned.
func (m *Manager) SwitchNetwork(ctx context.Context, cfg *network.Config) bool {
	m.mu.Lock()
	ext := m.ext
	m.mu.Unlock()

	if ext == nil {
		return false
	}

	address, err := ext.RequestAccess(ctx, NetworkHint{
		Passphrase: cfg.Passphrase,
		RPCURL:     cfg.RPCURL,
	})
	if err != nil || address == "" {
		m.logger.With("network", cfg.Key).Info("network switch rejected")
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.session.Address = address
	m.session.Network = cfg.Key
	m.session.ChainID = cfg.ChainID

	return true
}

// SignTransaction asks the extension to sign the canonical envelope under
// the given network passphrase.
func (m *Manager) SignTransaction(ctx context.Context, envelope, passphrase string) (string, error) {
	m.mu.Lock()
	ext := m.ext
	m.mu.Unlock()

	if ext == nil {
		return "", ErrExtensionUnavailable
	}

	signed, err := ext.SignTransaction(ctx, envelope, passphrase)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSigningDenied, err)
	}

	return signed, nil
}

// Close releases the network-change subscription.
func (m *Manager) Close() {
	m.mu.Lock()
	stop := m.stopWatch
	m.stopWatch = nil
	m.mu.Unlock()

	if stop != nil {
		stop()
	}
}

func (m *Manager) attachNetworkWatch(ext Extension) {
	watcher, ok := ext.(NetworkWatcher)
	if !ok {
		// Feature unavailable; the session just won't track out-of-band switches.
		return
	}

	stop, err := watcher.WatchNetwork(func(details NetworkDetails) {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.applyNetworkLocked(details)
	})
	if err != nil {
		m.logger.With("err", err.Error()).Debug("network watch unavailable")
		return
	}

	m.mu.Lock()
	m.stopWatch = stop
	m.mu.Unlock()
}

func (m *Manager) applyNetworkLocked(details NetworkDetails) {
	cfg, ok := network.ByPassphrase(details.Passphrase)
	if !ok {
		var err error
		cfg, err = network.Lookup(details.Network)
		if err != nil {
			return
		}
	}

	m.session.Network = cfg.Key
	m.session.ChainID = cfg.ChainID
}

func (m *Manager) setDisconnected() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session.Address = ""
	m.session.ChainID = 0
}

// The guard helpers keep a misbehaving extension from taking the session
// down with it: panics across the boundary surface as plain errors.

func guardBool(ctx context.Context, fn func(context.Context) (bool, error)) (result bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("extension call panicked: %v", r)
		}
	}()
	return fn(ctx)
}

func guardString(ctx context.Context, fn func(context.Context) (string, error)) (result string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("extension call panicked: %v", r)
		}
	}()
	return fn(ctx)
}

func guardNetwork(ctx context.Context, fn func(context.Context) (NetworkDetails, error)) (result NetworkDetails, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("extension call panicked: %v", r)
		}
	}()
	return fn(ctx)
}

func guardedRevoke(ctx context.Context, revoker AccessRevoker) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("revoke panicked: %v", r)
		}
	}()
	return revoker.RevokeAccess(ctx)
}
