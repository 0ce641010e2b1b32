package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLStore {
	t.Helper()
	s, err := NewSQLite(t.TempDir()+"/test.db", Options{
		MaxAttempts: 2,
		RetryDelay:  time.Millisecond,
	})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seedCustomer(t *testing.T, s *SQLStore, login, hash, rights string) int64 {
	t.Helper()
	res, err := s.DB().Exec(
		"INSERT INTO customers (login, password_hash, access_rights) VALUES (?, ?, ?)",
		login, hash, rights)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

func testSession(customerID int64, token string) *Session {
	return &Session{
		Token:          token,
		CustomerID:     customerID,
		AccessRights:   "User",
		ExpirationDate: time.Now().Add(time.Hour).UTC(),
	}
}

func countLiveSessions(t *testing.T, s *SQLStore, customerID int64) int {
	t.Helper()
	var n int
	err := s.DB().QueryRow(
		"SELECT COUNT(*) FROM sessions WHERE customer_id = ? AND deleted = 0", customerID).Scan(&n)
	require.NoError(t, err)
	return n
}

func TestCreateAndGetSession(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sess := testSession(7, "tok-roundtrip")
	id, err := s.CreateSession(ctx, sess, 0)
	require.NoError(t, err)
	require.NotZero(t, id)

	got, err := s.GetSessionByToken(ctx, "tok-roundtrip")
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, int64(7), got.CustomerID)
	assert.Equal(t, "User", got.AccessRights)
	assert.False(t, got.Deleted)
	assert.WithinDuration(t, sess.ExpirationDate, got.ExpirationDate, time.Second)
}

func TestGetSessionByTokenNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetSessionByToken(context.Background(), "never-issued")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionQuotaKeepsNewest(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	const quota = 2

	for i := 0; i < 5; i++ {
		_, err := s.CreateSession(ctx, testSession(42, fmt.Sprintf("tok-%d", i)), quota)
		require.NoError(t, err)
	}

	assert.Equal(t, quota, countLiveSessions(t, s, 42))

	// The survivors are the newest two.
	_, err := s.GetSessionByToken(ctx, "tok-4")
	assert.NoError(t, err)
	_, err = s.GetSessionByToken(ctx, "tok-3")
	assert.NoError(t, err)
	_, err = s.GetSessionByToken(ctx, "tok-2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionQuotaOfOne(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateSession(ctx, testSession(1, "first"), 1)
	require.NoError(t, err)
	_, err = s.CreateSession(ctx, testSession(1, "second"), 1)
	require.NoError(t, err)

	assert.Equal(t, 1, countLiveSessions(t, s, 1))
	_, err = s.GetSessionByToken(ctx, "first")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetSessionByToken(ctx, "second")
	assert.NoError(t, err)
}

func TestSessionQuotaUnlimited(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := s.CreateSession(ctx, testSession(9, fmt.Sprintf("u-%d", i)), 0)
		require.NoError(t, err)
	}
	assert.Equal(t, 4, countLiveSessions(t, s, 9))
}

func TestDeleteSessionByTokenIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateSession(ctx, testSession(3, "bye"), 0)
	require.NoError(t, err)

	require.NoError(t, s.DeleteSessionByToken(ctx, "bye"))
	require.NoError(t, s.DeleteSessionByToken(ctx, "bye"))
	require.NoError(t, s.DeleteSessionByToken(ctx, "never-existed"))

	_, err = s.GetSessionByToken(ctx, "bye")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteAllSessionsForCustomer(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := s.CreateSession(ctx, testSession(5, fmt.Sprintf("c5-%d", i)), 0)
		require.NoError(t, err)
	}
	_, err := s.CreateSession(ctx, testSession(6, "c6-keep"), 0)
	require.NoError(t, err)

	require.NoError(t, s.DeleteAllSessionsForCustomer(ctx, 5))

	assert.Equal(t, 0, countLiveSessions(t, s, 5))
	assert.Equal(t, 1, countLiveSessions(t, s, 6))
}

func TestGetCustomerByLogin(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id := seedCustomer(t, s, "alice", "deadbeef", "Admin")

	ca, err := s.GetCustomerByLogin(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, id, ca.ID)
	assert.Equal(t, "deadbeef", ca.PasswordHash)
	assert.Equal(t, "Admin", ca.AccessRights)

	_, err = s.GetCustomerByLogin(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetCustomerByLoginSkipsDeleted(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id := seedCustomer(t, s, "ghost", "hash", "User")
	_, err := s.DB().Exec("UPDATE customers SET deleted = 1 WHERE id = ?", id)
	require.NoError(t, err)

	_, err = s.GetCustomerByLogin(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetCustomerByRFID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id := seedCustomer(t, s, "bob", "cafe", "User")
	_, err := s.DB().Exec("INSERT INTO rfids (customer_id, tag) VALUES (?, ?)", id, "ABCD1234")
	require.NoError(t, err)

	ca, err := s.GetCustomerByRFID(ctx, "ABCD1234")
	require.NoError(t, err)
	assert.Equal(t, id, ca.ID)
	assert.Equal(t, "bob", ca.Login)

	_, err = s.GetCustomerByRFID(ctx, "UNKNOWN0")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetCustomerByRFIDSkipsDeletedTag(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id := seedCustomer(t, s, "carol", "beef", "User")
	_, err := s.DB().Exec("INSERT INTO rfids (customer_id, tag, deleted) VALUES (?, ?, 1)", id, "DEAD0000")
	require.NoError(t, err)

	_, err = s.GetCustomerByRFID(ctx, "DEAD0000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateUniqueViolation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedCustomer(t, s, "taken", "h1", "User")

	login := "taken"
	hash := "h2"
	_, err := s.Create(ctx, &schemaRecord{
		schema: MustSchema("customers",
			Field{Name: "ID", Column: "id", ID: true, Key: true},
			Field{Name: "Login", Column: "login"},
			Field{Name: "PasswordHash", Column: "password_hash"},
		),
		values: []any{int64(0), &login, &hash},
	})
	assert.ErrorIs(t, err, ErrUniqueViolation)
}

func TestStoreGenericLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	name := "Night rate"
	price := 0.12
	tariff := &schemaRecord{
		schema: MustSchema("tariffs",
			Field{Name: "ID", Column: "id", ID: true, Key: true},
			Field{Name: "Name", Column: "name", MaxLen: 64},
			Field{Name: "PricePerKWh", Column: "price_per_kwh"},
			Field{Name: "Deleted", Column: "deleted", SoftDelete: true},
		),
		values: []any{int64(0), &name, &price, false},
	}

	id, err := s.Create(ctx, tariff)
	require.NoError(t, err)
	require.NotZero(t, id)

	newPrice := 0.15
	tariff.values = []any{id, (*string)(nil), &newPrice, false}
	require.NoError(t, s.Update(ctx, tariff))

	var gotName string
	var gotPrice float64
	require.NoError(t, s.DB().QueryRow(
		"SELECT name, price_per_kwh FROM tariffs WHERE id = ?", id).Scan(&gotName, &gotPrice))
	assert.Equal(t, "Night rate", gotName, "unsupplied field left unchanged")
	assert.Equal(t, 0.15, gotPrice)

	require.NoError(t, s.Delete(ctx, tariff))
	var deleted bool
	require.NoError(t, s.DB().QueryRow(
		"SELECT deleted FROM tariffs WHERE id = ?", id).Scan(&deleted))
	assert.True(t, deleted)

	require.NoError(t, s.Purge(ctx, tariff))
	var n int
	require.NoError(t, s.DB().QueryRow(
		"SELECT COUNT(*) FROM tariffs WHERE id = ?", id).Scan(&n))
	assert.Zero(t, n)
}
