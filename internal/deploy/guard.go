package deploy

import "sync"

// inflightGuard rejects a second concurrent deployment for the same account.
// Each stage consumes the account's next sequence number, so two interleaved
// pipelines would invalidate each other.
type inflightGuard struct {
	mu       sync.Mutex
	accounts map[string]struct{}
}

func newInflightGuard() *inflightGuard {
	return &inflightGuard{accounts: make(map[string]struct{})}
}

func (g *inflightGuard) acquire(address string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.accounts[address]; busy {
		return false
	}
	g.accounts[address] = struct{}{}
	return true
}

func (g *inflightGuard) release(address string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.accounts, address)
}
