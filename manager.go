package chargeauth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/gridwatt/chargeauth/store"
)

// Manager is the authentication and authorization core: it owns the session
// cache, consults the durable store on cold tokens, and enforces per-role
// session quotas and expiry.
//
// Construct one Manager at the composition root and inject it; it carries no
// global state. Cache failures never fail a request: they are logged and
// treated as a miss or no-op.
type Manager struct {
	config Config
	store  store.Store
	cache  store.SessionCache
	log    zerolog.Logger
}

// New creates a Manager with the given configuration. Config.Store is
// required; other fields fall back to defaults.
func New(cfg Config) (*Manager, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("chargeauth: Config.Store is required")
	}
	cfg.applyDefaults()

	return &Manager{
		config: cfg,
		store:  cfg.Store,
		cache:  cfg.Cache,
		log:    *cfg.Logger,
	}, nil
}

// Close releases the store and cache. Should be called at shutdown.
func (m *Manager) Close() error {
	var errs []error
	if err := m.store.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := m.cache.Close(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("chargeauth: errors during close: %v", errs)
	}
	return nil
}

// CreateSession issues a new session for an authenticated customer and
// returns the opaque token with its absolute expiry. Quota enforcement is
// transactional with the insert: the store soft-deletes the customer's
// oldest sessions beyond the role quota in the same round-trip. The cache is
// updated only after the store round-trip succeeds, with every other cached
// token for this customer evicted so the new token is the customer's sole
// entry.
//
// Store failures surface as authorization failures: a caller that cannot get
// a session is not logged in.
func (m *Manager) CreateSession(ctx context.Context, customerID int64, role Role, device DeviceInfo) (string, time.Time, error) {
	token := NewSessionToken()
	expiresAt := time.Now().Add(m.config.SessionLifetime).UTC()

	rec := &store.Session{
		Token:          token,
		CustomerID:     customerID,
		AccessRights:   role.String(),
		ExpirationDate: expiresAt,
	}

	if _, err := m.store.CreateSession(ctx, rec, m.config.quota(role)); err != nil {
		m.log.Error().Err(err).Int64("customer_id", customerID).Msg("session creation failed")
		return "", time.Time{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	cached := store.UserSession{
		CustomerID:     customerID,
		AccessRights:   role.String(),
		ExpirationDate: expiresAt,
	}
	if err := m.cache.Replace(customerID, token, cached); err != nil {
		m.log.Warn().Err(err).Msg("session cache replace failed")
	}

	evt := m.log.Info().Int64("customer_id", customerID).Str("role", role.String())
	if device != (DeviceInfo{}) {
		evt = evt.Str("ip", device.IP).Str("browser", device.Browser).
			Str("os", device.OS).Str("device_type", device.DeviceType)
	}
	evt.Msg("session created")

	return token, expiresAt, nil
}

// LoginPassword authenticates by login and password and issues a session.
// Unknown logins and wrong passwords both return ErrInvalidCredentials.
func (m *Manager) LoginPassword(ctx context.Context, login, password string, device DeviceInfo) (string, time.Time, error) {
	ca, err := m.store.GetCustomerByLogin(ctx, login)
	if errors.Is(err, store.ErrNotFound) {
		return "", time.Time{}, ErrInvalidCredentials
	}
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %v", ErrDatabase, err)
	}
	if ca.PasswordHash != HashPassword(password) {
		return "", time.Time{}, ErrInvalidCredentials
	}

	return m.CreateSession(ctx, ca.ID, ParseRole(ca.AccessRights), device)
}

// LoginRFID authenticates by possession of a registered RFID tag and issues
// a session for the owning customer.
func (m *Manager) LoginRFID(ctx context.Context, tag string, device DeviceInfo) (string, time.Time, error) {
	ca, err := m.store.GetCustomerByRFID(ctx, tag)
	if errors.Is(err, store.ErrNotFound) {
		return "", time.Time{}, ErrInvalidCredentials
	}
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return m.CreateSession(ctx, ca.ID, ParseRole(ca.AccessRights), device)
}

// RegisterCustomer validates and creates a new customer account, then logs
// it in. Self-registered accounts always start with the User role. A login
// already in use returns ErrLoginTaken.
func (m *Manager) RegisterCustomer(ctx context.Context, c *Customer, password string, device DeviceInfo) (int64, string, time.Time, error) {
	if err := ValidateNewCustomer(c); err != nil {
		return 0, "", time.Time{}, err
	}
	if password == "" {
		return 0, "", time.Time{}, invalidField("Password", "must not be empty")
	}

	hash := HashPassword(password)
	role := RoleUser.String()
	c.PasswordHash = &hash
	c.AccessRights = &role

	id, err := m.store.Create(ctx, c)
	if errors.Is(err, store.ErrUniqueViolation) {
		return 0, "", time.Time{}, ErrLoginTaken
	}
	if err != nil {
		return 0, "", time.Time{}, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	token, expiresAt, err := m.CreateSession(ctx, id, RoleUser, device)
	if err != nil {
		return 0, "", time.Time{}, err
	}
	return id, token, expiresAt, nil
}

// ResolveSession answers "who is this token". A cache hit costs no store
// round-trip; a miss (e.g. after a restart) performs a single read and
// repopulates the cache. With allowGuest true an unknown or empty token
// resolves to the anonymous session instead of failing.
//
// When allowGuest is false, a session that has expired or belongs to no
// customer is treated as invalid: it is invalidated in the store in the
// background and the call fails with ErrSessionExpired.
func (m *Manager) ResolveSession(ctx context.Context, token string, allowGuest bool) (UserSession, error) {
	if token == "" {
		if allowGuest {
			return UserSession{}, nil
		}
		return UserSession{}, ErrUnauthorized
	}

	cached, ok, err := m.cache.Lookup(token)
	if err != nil {
		m.log.Warn().Err(err).Msg("session cache lookup failed")
		ok = false
	}
	if ok {
		return m.checkResolved(parseUserSession(cached), token, allowGuest)
	}

	rec, err := m.store.GetSessionByToken(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		if allowGuest {
			return UserSession{}, nil
		}
		return UserSession{}, ErrUnauthorized
	}
	if err != nil {
		return UserSession{}, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	cached = store.UserSession{
		CustomerID:     rec.CustomerID,
		AccessRights:   rec.AccessRights,
		ExpirationDate: rec.ExpirationDate,
	}
	if err := m.cache.Store(token, cached); err != nil {
		m.log.Warn().Err(err).Msg("session cache store failed")
	}

	return m.checkResolved(parseUserSession(cached), token, allowGuest)
}

// checkResolved applies the validity rules to a resolved session.
func (m *Manager) checkResolved(s UserSession, token string, allowGuest bool) (UserSession, error) {
	if allowGuest {
		return s, nil
	}
	if s.Anonymous() || s.Expired() {
		go m.invalidateToken(context.Background(), token)
		return UserSession{}, ErrSessionExpired
	}
	return s, nil
}

// Logout soft-deletes the durable session and evicts the token from the
// cache. It never surfaces an error: failing to clean up a session must not
// block the user-visible action, and logging out twice is a no-op.
func (m *Manager) Logout(ctx context.Context, token string) {
	if token == "" {
		return
	}
	m.invalidateToken(ctx, token)
	m.log.Info().Msg("session logged out")
}

// InvalidateCustomer removes every session for a customer, durable and
// cached. Used after account deletion or purge; like Logout, best-effort.
func (m *Manager) InvalidateCustomer(ctx context.Context, customerID int64) {
	if err := m.store.DeleteAllSessionsForCustomer(ctx, customerID); err != nil {
		m.log.Warn().Err(err).Int64("customer_id", customerID).Msg("session invalidation failed")
	}
	if err := m.cache.RemoveCustomer(customerID); err != nil {
		m.log.Warn().Err(err).Int64("customer_id", customerID).Msg("session cache purge failed")
	}
}

// invalidateToken is the shared best-effort teardown of one token.
func (m *Manager) invalidateToken(ctx context.Context, token string) {
	if err := m.store.DeleteSessionByToken(ctx, token); err != nil {
		m.log.Warn().Err(err).Msg("session delete failed")
	}
	if err := m.cache.Remove(token); err != nil {
		m.log.Warn().Err(err).Msg("session cache remove failed")
	}
}
