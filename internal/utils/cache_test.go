package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySeenStore(t *testing.T) {
	s := NewMemorySeenStore()

	assert.True(t, s.Add("abc"))
	assert.False(t, s.Add("abc"))
	assert.True(t, s.Contains("abc"))
	assert.False(t, s.Contains("xyz"))
	assert.Equal(t, 1, s.Len())
}

func TestResponseCacheExpiry(t *testing.T) {
	c, err := NewResponseCache[string](2, 20*time.Millisecond)
	require.NoError(t, err)

	c.Set("a", "1")
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "1", v)

	time.Sleep(40 * time.Millisecond)
	_, ok = c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestResponseCacheEviction(t *testing.T) {
	c, err := NewResponseCache[int](2, 0)
	require.NoError(t, err)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	_, ok := c.Get("a")
	assert.False(t, ok)
	v, ok := c.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestResponseCacheInvalidSize(t *testing.T) {
	_, err := NewResponseCache[string](0, 0)
	assert.Error(t, err)
}
