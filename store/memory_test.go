package store

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cachedSession(customerID int64) UserSession {
	return UserSession{
		CustomerID:     customerID,
		AccessRights:   "User",
		ExpirationDate: time.Now().Add(time.Hour).UTC(),
	}
}

func TestMemoryCacheLookupMiss(t *testing.T) {
	c := NewMemoryCache()

	_, ok, err := c.Lookup("unknown")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCacheStoreAndLookup(t *testing.T) {
	c := NewMemoryCache()
	s := cachedSession(1)

	require.NoError(t, c.Store("t1", s))

	got, ok, err := c.Lookup("t1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, s, got)
	assert.ElementsMatch(t, []string{"t1"}, c.CustomerTokens(1))
}

func TestMemoryCacheReplaceEvictsOtherTokens(t *testing.T) {
	c := NewMemoryCache()

	require.NoError(t, c.Store("t1", cachedSession(1)))
	require.NoError(t, c.Store("t2", cachedSession(1)))
	require.NoError(t, c.Store("other", cachedSession(2)))

	require.NoError(t, c.Replace(1, "t3", cachedSession(1)))

	_, ok, _ := c.Lookup("t1")
	assert.False(t, ok)
	_, ok, _ = c.Lookup("t2")
	assert.False(t, ok)
	_, ok, _ = c.Lookup("t3")
	assert.True(t, ok)
	assert.ElementsMatch(t, []string{"t3"}, c.CustomerTokens(1))

	// Another customer's entry is untouched.
	_, ok, _ = c.Lookup("other")
	assert.True(t, ok)
}

func TestMemoryCacheRemove(t *testing.T) {
	c := NewMemoryCache()

	require.NoError(t, c.Store("t1", cachedSession(1)))
	require.NoError(t, c.Store("t2", cachedSession(1)))

	require.NoError(t, c.Remove("t1"))
	require.NoError(t, c.Remove("t1"))
	require.NoError(t, c.Remove("never-stored"))

	_, ok, _ := c.Lookup("t1")
	assert.False(t, ok)
	assert.ElementsMatch(t, []string{"t2"}, c.CustomerTokens(1))
}

func TestMemoryCacheRemoveCustomer(t *testing.T) {
	c := NewMemoryCache()

	require.NoError(t, c.Store("t1", cachedSession(1)))
	require.NoError(t, c.Store("t2", cachedSession(1)))
	require.NoError(t, c.Store("other", cachedSession(2)))

	require.NoError(t, c.RemoveCustomer(1))

	assert.Empty(t, c.CustomerTokens(1))
	assert.Equal(t, 1, c.Len())
	_, ok, _ := c.Lookup("other")
	assert.True(t, ok)
}

func TestMemoryCacheConcurrentAccess(t *testing.T) {
	c := NewMemoryCache()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			token := "tok-" + string(rune('a'+id))
			for j := 0; j < 100; j++ {
				c.Store(token, cachedSession(id))
				c.Lookup(token)
				c.Replace(id, token, cachedSession(id))
				c.Remove(token)
			}
		}(int64(i))
	}
	wg.Wait()

	assert.Zero(t, c.Len())
}
