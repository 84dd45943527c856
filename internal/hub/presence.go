package hub

import (
	"sort"
	"sync"
)

// presenceRegistry tracks every live connection and which identity, if any,
// each one has announced. An identity may hold several connections at once
// (two open tabs); it counts as online while at least one remains, and every
// connection it holds receives pushes. The registry is owned by the Hub and
// never reached through package state.
type presenceRegistry struct {
	mu     sync.RWMutex
	conns  map[*Client]struct{}
	online map[string]map[*Client]struct{}
}

func newPresenceRegistry() *presenceRegistry {
	return &presenceRegistry{
		conns:  make(map[*Client]struct{}),
		online: make(map[string]map[*Client]struct{}),
	}
}

// Add tracks a freshly upgraded connection that has not announced an
// identity yet.
func (p *presenceRegistry) Add(c *Client) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.conns[c] = struct{}{}
}

// Register binds an identity to a connection once its user_online arrives.
func (p *presenceRegistry) Register(identity string, c *Client) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, live := p.conns[c]; !live {
		// lost the race with a disconnect; do not resurrect the identity
		return
	}

	c.setIdentity(identity)

	set, ok := p.online[identity]
	if !ok {
		set = make(map[*Client]struct{})
		p.online[identity] = set
	}
	set[c] = struct{}{}
}

// Remove drops a connection entirely. Reports whether the connection was
// still tracked (false on a duplicate close signal) and, when its identity
// lost the last connection, which identity went offline.
func (p *presenceRegistry) Remove(c *Client) (wentOffline string, removed bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.conns[c]; !ok {
		return "", false
	}
	delete(p.conns, c)

	identity := c.Identity()
	if identity == "" {
		return "", true
	}

	if set, ok := p.online[identity]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(p.online, identity)
			return identity, true
		}
	}
	return "", true
}

// Snapshot returns the full online-identity list, sorted for stable output.
// Broadcast as a whole on every change; the client reconciles against the
// snapshot instead of applying deltas.
func (p *presenceRegistry) Snapshot() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	identities := make([]string, 0, len(p.online))
	for identity := range p.online {
		identities = append(identities, identity)
	}
	sort.Strings(identities)
	return identities
}

// ClientsFor returns the live connections for an identity, empty when offline.
func (p *presenceRegistry) ClientsFor(identity string) []*Client {
	p.mu.RLock()
	defer p.mu.RUnlock()

	set, ok := p.online[identity]
	if !ok {
		return nil
	}
	clients := make([]*Client, 0, len(set))
	for c := range set {
		clients = append(clients, c)
	}
	return clients
}

// All returns every tracked connection, identified or not.
func (p *presenceRegistry) All() []*Client {
	p.mu.RLock()
	defer p.mu.RUnlock()

	clients := make([]*Client, 0, len(p.conns))
	for c := range p.conns {
		clients = append(clients, c)
	}
	return clients
}

// IsOnline reports whether an identity holds at least one live connection.
func (p *presenceRegistry) IsOnline(identity string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.online[identity]
	return ok
}

func (p *presenceRegistry) counts() (connections, identities int) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.conns), len(p.online)
}
