package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newLocal(t *testing.T) *TwoLevelCache {
	t.Helper()
	c, err := New("")
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestLocalCacheHitAndMiss(t *testing.T) {
	ctx := context.Background()
	c := newLocal(t)

	var got payload
	assert.False(t, c.Get(ctx, "search:abc", &got))

	c.Set(ctx, "search:abc", payload{Name: "Lisbon", Count: 2}, time.Minute)
	require.True(t, c.Get(ctx, "search:abc", &got))
	assert.Equal(t, payload{Name: "Lisbon", Count: 2}, got)
}

func TestLocalCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := newLocal(t)

	c.Set(ctx, "k", payload{Name: "x"}, time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	var got payload
	assert.False(t, c.Get(ctx, "k", &got))
}

func TestDeletePrefix(t *testing.T) {
	ctx := context.Background()
	c := newLocal(t)

	c.Set(ctx, "search:one", payload{Name: "1"}, time.Minute)
	c.Set(ctx, "search:two", payload{Name: "2"}, time.Minute)
	c.Set(ctx, "categories:all", payload{Name: "c"}, time.Minute)

	c.DeletePrefix(ctx, "search:")

	var got payload
	assert.False(t, c.Get(ctx, "search:one", &got))
	assert.False(t, c.Get(ctx, "search:two", &got))
	assert.True(t, c.Get(ctx, "categories:all", &got))
}

func TestKeyIsOrderIndependent(t *testing.T) {
	a := Key("properties:", map[string]string{"city": "Porto", "page": "2"})
	b := Key("properties:", map[string]string{"page": "2", "city": "Porto"})
	c := Key("properties:", map[string]string{"page": "3", "city": "Porto"})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Contains(t, a, "properties:")
}

func TestNewRejectsBadRedisURL(t *testing.T) {
	_, err := New("not a url")
	assert.Error(t, err)
}
