package internal

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brokenStore fails every operation
type brokenStore struct{}

func (brokenStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("disk on fire")
}
func (brokenStore) Set(context.Context, string, string) error { return errors.New("disk on fire") }
func (brokenStore) Clear(context.Context, string) error       { return errors.New("disk on fire") }

func fixedClock(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

func TestGetOrCreateMintsAndPersists(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryStore()
	store := NewSessionStore(kv)
	store.now = fixedClock(1700000000000)

	id := store.GetOrCreate(ctx)
	assert.Equal(t, "session_1700000000000", id)

	persisted, ok, err := kv.Get(ctx, SessionIDKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, id, persisted)
}

func TestGetOrCreateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore(NewMemoryStore())

	first := store.GetOrCreate(ctx)
	second := store.GetOrCreate(ctx)
	assert.Equal(t, first, second)
}

func TestGetOrCreateRestoresPersisted(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryStore()
	require.NoError(t, kv.Set(ctx, SessionIDKey, "session_123"))

	assert.Equal(t, "session_123", NewSessionStore(kv).GetOrCreate(ctx))
}

func TestGetOrCreateSurvivesStoreFailure(t *testing.T) {
	store := NewSessionStore(brokenStore{})
	id := store.GetOrCreate(context.Background())
	assert.True(t, strings.HasPrefix(id, "session_"))
}

func TestSwitchToIsInMemory(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryStore()
	require.NoError(t, kv.Set(ctx, SessionIDKey, "session_1"))
	store := NewSessionStore(kv)

	store.SwitchTo("session_2")
	active, ok := store.Active()
	assert.True(t, ok)
	assert.Equal(t, "session_2", active)

	store.SwitchTo(NoSession)
	_, ok = store.Active()
	assert.False(t, ok)

	persisted, _, _ := kv.Get(ctx, SessionIDKey)
	assert.Equal(t, "session_1", persisted)
}

func TestSwitchToAdvancesGeneration(t *testing.T) {
	store := NewSessionStore(NewMemoryStore())

	g1 := store.SwitchTo("a")
	g2 := store.SwitchTo("a")
	assert.Greater(t, g2, g1)
	assert.Equal(t, g2, store.Generation())

	store.WithActive(func(id string, gen uint64) {
		assert.Equal(t, "a", id)
		assert.Equal(t, g2, gen)
	})
}

func TestWithActiveBlocksSwitch(t *testing.T) {
	store := NewSessionStore(NewMemoryStore())
	store.SwitchTo("a")

	switched := make(chan struct{})
	store.WithActive(func(id string, gen uint64) {
		go func() {
			store.SwitchTo("b")
			close(switched)
		}()
		select {
		case <-switched:
			t.Error("SwitchTo completed while WithActive was running")
		case <-time.After(50 * time.Millisecond):
		}
		assert.Equal(t, "a", id)
	})

	<-switched
	active, _ := store.Active()
	assert.Equal(t, "b", active)
}

func TestWithCurrent(t *testing.T) {
	store := NewSessionStore(NewMemoryStore())
	gen := store.SwitchTo("a")

	ran := false
	assert.True(t, store.WithCurrent(gen, func() { ran = true }))
	assert.True(t, ran)

	store.SwitchTo("b")
	ran = false
	assert.False(t, store.WithCurrent(gen, func() { ran = true }))
	assert.False(t, ran)
}

func TestNewSession(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryStore()
	store := NewSessionStore(kv)
	store.now = fixedClock(1700000000000)

	first := store.GetOrCreate(ctx)
	id, gen := store.NewSession(ctx)

	assert.NotEqual(t, first, id)
	assert.Equal(t, gen, store.Generation())
	active, _ := store.Active()
	assert.Equal(t, id, active)
	persisted, _, _ := kv.Get(ctx, SessionIDKey)
	assert.Equal(t, id, persisted)
}

func TestMintIsStrictlyIncreasing(t *testing.T) {
	store := NewSessionStore(NewMemoryStore())
	store.now = fixedClock(1000)

	var last int64
	for i := 0; i < 5; i++ {
		id := store.mint()
		ms, err := strconv.ParseInt(strings.TrimPrefix(id, "session_"), 10, 64)
		require.NoError(t, err)
		assert.Greater(t, ms, last)
		last = ms
	}
	assert.Equal(t, int64(1004), last)

	// a clock that moves forward is used as is
	store.now = fixedClock(5000)
	assert.Equal(t, "session_5000", store.mint())
}
