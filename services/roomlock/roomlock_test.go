package roomlock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLockerTimesOut(t *testing.T) {
	locker := NewLocal(20 * time.Millisecond)
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, 1)
	require.NoError(t, err)

	_, err = locker.Lock(ctx, 1)
	assert.ErrorIs(t, err, ErrTimeout)

	// Another room is independent.
	unlockOther, err := locker.Lock(ctx, 2)
	require.NoError(t, err)
	unlockOther()

	unlock()
	unlock() // releasing twice is harmless

	unlock, err = locker.Lock(ctx, 1)
	require.NoError(t, err)
	unlock()
}

func TestLocalLockerHonorsContext(t *testing.T) {
	locker := NewLocal(time.Minute)
	unlock, err := locker.Lock(context.Background(), 3)
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = locker.Lock(ctx, 3)
	assert.ErrorIs(t, err, context.Canceled)
}
