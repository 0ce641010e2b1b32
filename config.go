package chargeauth

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/gridwatt/chargeauth/store"
)

// Config contains configuration options for the session manager.
type Config struct {
	// Store is the durable backend. Required.
	Store store.Store

	// Cache is the session cache tier.
	// Default: an in-process store.MemoryCache.
	Cache store.SessionCache

	// SessionLifetime is how far in the future new sessions expire.
	// Sessions are invalidated explicitly (logout, quota eviction, account
	// deletion), so the default is deliberately distant: 10 years.
	SessionLifetime time.Duration

	// Quotas caps concurrent non-deleted sessions per customer, by role.
	// A creation beyond the quota soft-deletes the oldest sessions in the
	// same transaction. Roles absent from the map get defaultQuotas;
	// a non-positive value means unlimited.
	Quotas map[Role]int

	// Logger receives structured logs. Default: zerolog.Nop().
	Logger *zerolog.Logger
}

// DefaultSessionLifetime is the default absolute session lifetime.
const DefaultSessionLifetime = 10 * 365 * 24 * time.Hour

// By default one live session per account: a fresh login supersedes the
// previous one. Remote stations keep a higher ceiling since one charge point
// may hold several concurrent connections.
var defaultQuotas = map[Role]int{
	RoleUser:            1,
	RoleRemoteStation:   5,
	RoleStationOperator: 1,
	RoleAdmin:           1,
}

// DefaultConfig returns a Config with sensible defaults. Store must still be
// supplied.
func DefaultConfig() Config {
	return Config{
		SessionLifetime: DefaultSessionLifetime,
		Quotas:          defaultQuotas,
	}
}

// applyDefaults fills in default values for zero-value fields.
func (c *Config) applyDefaults() {
	if c.Cache == nil {
		c.Cache = store.NewMemoryCache()
	}
	if c.SessionLifetime <= 0 {
		c.SessionLifetime = DefaultSessionLifetime
	}
	if c.Quotas == nil {
		c.Quotas = defaultQuotas
	}
	if c.Logger == nil {
		nop := zerolog.Nop()
		c.Logger = &nop
	}
}

// quota returns the session ceiling for a role, falling back to the default
// table when the configured map omits it.
func (c *Config) quota(r Role) int {
	if q, ok := c.Quotas[r]; ok {
		return q
	}
	return defaultQuotas[r]
}
