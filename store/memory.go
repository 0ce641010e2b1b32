package store

import "sync"

// SessionCache is the session manager's cache tier. Entries live until
// explicitly removed; there is no TTL-based eviction. Implementations must
// be safe for concurrent use, and every read-modify-write touching both the
// token index and the customer index must be atomic so a reader never
// observes a half-updated pair.
type SessionCache interface {
	// Lookup returns the cached session for token, if present.
	Lookup(token string) (UserSession, bool, error)

	// Store caches a session under token and indexes it by customer.
	Store(token string, s UserSession) error

	// Replace evicts every cached token belonging to customerID, then
	// stores the new token as the customer's sole cache entry. Used on
	// session creation.
	Replace(customerID int64, token string, s UserSession) error

	// Remove drops token from both indexes. Unknown tokens are a no-op.
	Remove(token string) error

	// RemoveCustomer drops every cached token belonging to customerID.
	RemoveCustomer(customerID int64) error

	// Close releases any resources held by the cache.
	Close() error
}

// MemoryCache implements SessionCache with two in-process maps guarded by a
// single mutex: token to session, and customer to token set. The lock is
// held only for map operations, never across I/O.
type MemoryCache struct {
	mu       sync.Mutex
	sessions map[string]UserSession
	byCust   map[int64]map[string]struct{}
}

// NewMemoryCache creates an empty in-process session cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		sessions: make(map[string]UserSession),
		byCust:   make(map[int64]map[string]struct{}),
	}
}

// Lookup returns the cached session for token, if present.
func (c *MemoryCache) Lookup(token string) (UserSession, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.sessions[token]
	return s, ok, nil
}

// Store caches a session under token and indexes it by customer.
func (c *MemoryCache) Store(token string, s UserSession) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store(token, s)
	return nil
}

// Replace evicts every cached token for the customer, then stores the new
// one. Both maps are updated under one lock hold.
func (c *MemoryCache) Replace(customerID int64, token string, s UserSession) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for old := range c.byCust[customerID] {
		delete(c.sessions, old)
	}
	delete(c.byCust, customerID)

	c.store(token, s)
	return nil
}

// Remove drops token from both maps.
func (c *MemoryCache) Remove(token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.sessions[token]
	if !ok {
		return nil
	}
	delete(c.sessions, token)

	if tokens, ok := c.byCust[s.CustomerID]; ok {
		delete(tokens, token)
		if len(tokens) == 0 {
			delete(c.byCust, s.CustomerID)
		}
	}
	return nil
}

// RemoveCustomer drops every cached token for the customer.
func (c *MemoryCache) RemoveCustomer(customerID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for token := range c.byCust[customerID] {
		delete(c.sessions, token)
	}
	delete(c.byCust, customerID)
	return nil
}

// Close is a no-op for the memory cache.
func (c *MemoryCache) Close() error { return nil }

// store must be called with the lock held.
func (c *MemoryCache) store(token string, s UserSession) {
	c.sessions[token] = s
	if c.byCust[s.CustomerID] == nil {
		c.byCust[s.CustomerID] = make(map[string]struct{})
	}
	c.byCust[s.CustomerID][token] = struct{}{}
}

// Len reports the number of cached tokens. Intended for tests.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessions)
}

// CustomerTokens returns the cached tokens for a customer. Intended for tests.
func (c *MemoryCache) CustomerTokens(customerID int64) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var tokens []string
	for t := range c.byCust[customerID] {
		tokens = append(tokens, t)
	}
	return tokens
}
