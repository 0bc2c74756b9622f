package relay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_RetrieveIsOneShot(t *testing.T) {
	t.Parallel()
	s := NewStore(DefaultTTL)

	id := s.Store("cf-abc123")

	got, ok := s.Retrieve(id)
	require.True(t, ok)
	assert.Equal(t, "cf-abc123", got)

	_, ok = s.Retrieve(id)
	assert.False(t, ok)
}

func TestStore_PeekDoesNotConsume(t *testing.T) {
	t.Parallel()
	s := NewStore(DefaultTTL)

	id := s.Store("tok")
	assert.True(t, s.Peek(id))
	assert.True(t, s.Peek(id))

	got, ok := s.Retrieve(id)
	require.True(t, ok)
	assert.Equal(t, "tok", got)
	assert.False(t, s.Peek(id))
}

func TestStore_UnknownID(t *testing.T) {
	t.Parallel()
	s := NewStore(DefaultTTL)

	_, ok := s.Retrieve("no-such-id")
	assert.False(t, ok)
	assert.False(t, s.Peek("no-such-id"))
}

func TestStore_Expiry(t *testing.T) {
	t.Parallel()
	s := NewStore(5 * time.Minute)
	current := time.Now()
	s.now = func() time.Time { return current }

	id := s.Store("old")
	current = current.Add(5 * time.Minute)

	assert.False(t, s.Peek(id))
	_, ok := s.Retrieve(id)
	assert.False(t, ok)
}

func TestStore_LazySweepOnStore(t *testing.T) {
	t.Parallel()
	s := NewStore(5 * time.Minute)
	current := time.Now()
	s.now = func() time.Time { return current }

	s.Store("first")
	s.Store("second")
	require.Equal(t, 2, s.Len())

	// Nothing is swept until the next write.
	current = current.Add(10 * time.Minute)
	require.Equal(t, 2, s.Len())

	s.Store("third")
	assert.Equal(t, 1, s.Len())
}

func TestStore_DistinctIDs(t *testing.T) {
	t.Parallel()
	s := NewStore(DefaultTTL)

	a := s.Store("one")
	b := s.Store("two")
	require.NotEqual(t, a, b)

	got, ok := s.Retrieve(b)
	require.True(t, ok)
	assert.Equal(t, "two", got)
}
