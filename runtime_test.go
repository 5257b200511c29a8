package lwp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNew tests runtime construction on the default scheduler
// Main test items:
// 1. The caller becomes thread 1
// 2. Spawned threads run once the caller yields
// 3. MaxThreads from the config reaches the scheduler
func TestNew(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxThreads = 2
	cfg.Logger = nil
	cfg.LogLevel = "error"

	rt, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, MainID, rt.Self())

	ran := false
	id, err := rt.Spawn(func(any) { ran = true }, nil, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, ID(2), id)

	_, err = rt.Spawn(func(any) {}, nil, nil, 0)
	assert.ErrorIs(t, err, ErrResourceExhausted)

	require.NoError(t, rt.Yield())
	assert.True(t, ran)
	assert.Equal(t, 1, rt.Stats().Live)
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NameMax = 0
	_, err := New(cfg)
	assert.Error(t, err)
}

// TestGlobalRuntime tests the package-level helpers
func TestGlobalRuntime(t *testing.T) {
	t.Cleanup(ShutdownGlobalRuntime)
	assert.Panics(t, func() { GetGlobalRuntime() })

	rt, err := InitGlobalRuntime(nil)
	require.NoError(t, err)
	again, err := InitGlobalRuntime(nil)
	require.NoError(t, err)
	assert.Same(t, rt, again)
	assert.Equal(t, MainID, Self())

	var parked error
	waiter, err := rt.Spawn(func(any) {
		parked = Park(time.Time{}, NoID)
	}, nil, nil, 0)
	require.NoError(t, err)

	require.NoError(t, Yield())
	require.NoError(t, Unpark(waiter))
	require.NoError(t, Yield())

	assert.NoError(t, parked)
	assert.Nil(t, rt.Lookup(waiter))
	assert.ErrorIs(t, Unpark(waiter), ErrNotFound)
}
