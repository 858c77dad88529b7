package sessiontest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Expiry(t *testing.T) {
	clock := NewClock(time.Unix(1_700_000_000, 0))
	s := NewMemoryStore(clock)
	ctx := context.Background()

	require.NoError(t, s.SetWithExpiry(ctx, "k", "v", time.Minute))
	clock.Advance(59 * time.Second)

	v, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	clock.Advance(time.Second)
	_, ok, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore_SetsAndScan(t *testing.T) {
	clock := NewClock(time.Unix(1_700_000_000, 0))
	s := NewMemoryStore(clock)
	ctx := context.Background()

	require.NoError(t, s.AddToSet(ctx, "user:alice:sessions", "b", time.Hour))
	require.NoError(t, s.AddToSet(ctx, "user:alice:sessions", "a", time.Hour))
	members, err := s.SetMembers(ctx, "user:alice:sessions")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, members)

	for i := 0; i < 25; i++ {
		s.Put("session:"+string(rune('a'+i)), "id", time.Hour)
	}

	pages, total := 0, 0
	require.NoError(t, s.ScanKeys(ctx, "session:*", func(keys []string) error {
		pages++
		total += len(keys)
		return nil
	}))
	assert.Equal(t, 3, pages)
	assert.Equal(t, 25, total)

	n := 0
	require.NoError(t, s.ScanKeys(ctx, "user:*:sessions", func(keys []string) error {
		n += len(keys)
		return nil
	}))
	assert.Equal(t, 1, n)
}

func TestMemoryStore_FailFunc(t *testing.T) {
	s := NewMemoryStore(NewClock(time.Now()))
	boom := errors.New("boom")
	s.SetFailFunc(func(op, key string) error {
		if op == "Get" {
			return boom
		}
		return nil
	})

	_, _, err := s.Get(context.Background(), "k")
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, s.SetWithExpiry(context.Background(), "k", "v", time.Minute))
	assert.Equal(t, 1, s.Calls("Get"))
}
