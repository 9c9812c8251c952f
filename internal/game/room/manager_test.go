package room

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j2y-cmd/touch-race/internal/apperrors"
	"github.com/j2y-cmd/touch-race/internal/config"
	"github.com/j2y-cmd/touch-race/internal/game/race"
	"github.com/j2y-cmd/touch-race/internal/store"
)

func newTestManager(t *testing.T) (*Manager, *store.Store, *clockwork.FakeClock) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	s := store.New(client)
	clock := clockwork.NewFakeClock()
	return NewManager(s, config.Default().Game, clock), s, clock
}

func TestJoinRoom_FirstJoinerBecomesHost(t *testing.T) {
	t.Parallel()

	m, _, clock := newTestManager(t)
	ctx := context.Background()

	rec, err := m.JoinRoom(ctx, 1, "pA", "小明", "🐰")
	require.NoError(t, err)
	assert.Equal(t, race.StatusWaiting, rec.Status)
	assert.True(t, rec.Players["pA"].IsHost)
	assert.Equal(t, 0, rec.Players["pA"].Score)

	clock.Advance(time.Second)

	rec, err = m.JoinRoom(ctx, 1, "pB", "小红", "🐢")
	require.NoError(t, err)
	assert.Len(t, rec.Players, 2)
	assert.False(t, rec.Players["pB"].IsHost)
	assert.Equal(t, "pA", rec.HostID())
}

func TestJoinRoom_SeventhRejected(t *testing.T) {
	t.Parallel()

	m, s, clock := newTestManager(t)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		_, err := m.JoinRoom(ctx, 1, fmt.Sprintf("p%d", i), fmt.Sprintf("玩家%d", i), "🐰")
		require.NoError(t, err)
		clock.Advance(time.Second)
	}

	_, err := m.JoinRoom(ctx, 1, "p7", "挤不进", "🐸")
	assert.ErrorIs(t, err, apperrors.ErrRoomFull)

	snap, err := s.Snapshot(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, snap.Players, 6)
}

func TestJoinRoom_RejectedAfterStart(t *testing.T) {
	t.Parallel()

	m, _, _ := newTestManager(t)
	ctx := context.Background()

	_, err := m.JoinRoom(ctx, 1, "pA", "小明", "🐰")
	require.NoError(t, err)
	require.NoError(t, m.StartRace(ctx, 1, "pA"))

	_, err = m.JoinRoom(ctx, 1, "pB", "迟到", "🐢")
	assert.ErrorIs(t, err, apperrors.ErrRaceStarted)
}

func TestJoinRoom_InvalidInput(t *testing.T) {
	t.Parallel()

	m, _, _ := newTestManager(t)
	ctx := context.Background()

	_, err := m.JoinRoom(ctx, 99, "pA", "小明", "🐰")
	assert.ErrorIs(t, err, apperrors.ErrRoomNotFound)

	_, err = m.JoinRoom(ctx, 1, "pA", "   ", "🐰")
	assert.ErrorIs(t, err, apperrors.ErrInvalidProfile)

	_, err = m.JoinRoom(ctx, 1, "pA", "小明", "🚀")
	assert.ErrorIs(t, err, apperrors.ErrInvalidProfile)
}

func TestLeaveRoom_HostPromotion(t *testing.T) {
	t.Parallel()

	m, s, clock := newTestManager(t)
	ctx := context.Background()

	_, err := m.JoinRoom(ctx, 1, "pA", "小明", "🐰")
	require.NoError(t, err)
	clock.Advance(time.Second)
	_, err = m.JoinRoom(ctx, 1, "pB", "小红", "🐢")
	require.NoError(t, err)
	clock.Advance(time.Second)
	_, err = m.JoinRoom(ctx, 1, "pC", "小刚", "🐸")
	require.NoError(t, err)

	// 房主离开，最早加入的 pB 继任
	require.NoError(t, m.LeaveRoom(ctx, 1, "pA"))

	snap, err := s.Snapshot(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "pB", snap.HostID())
}

func TestLeaveRoom_LastPlayerDissolves(t *testing.T) {
	t.Parallel()

	m, s, _ := newTestManager(t)
	ctx := context.Background()

	_, err := m.JoinRoom(ctx, 1, "pA", "小明", "🐰")
	require.NoError(t, err)

	require.NoError(t, m.LeaveRoom(ctx, 1, "pA"))

	snap, err := s.Snapshot(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestStartRace_NonHostRejected(t *testing.T) {
	t.Parallel()

	m, s, clock := newTestManager(t)
	ctx := context.Background()

	_, err := m.JoinRoom(ctx, 1, "pA", "小明", "🐰")
	require.NoError(t, err)
	clock.Advance(time.Second)
	_, err = m.JoinRoom(ctx, 1, "pB", "小红", "🐢")
	require.NoError(t, err)

	err = m.StartRace(ctx, 1, "pB")
	assert.ErrorIs(t, err, apperrors.ErrNotHost)

	snap, err := s.Snapshot(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, race.StatusWaiting, snap.Status)
}

func TestStartRace_FlipsStatus(t *testing.T) {
	t.Parallel()

	m, s, _ := newTestManager(t)
	ctx := context.Background()

	_, err := m.JoinRoom(ctx, 1, "pA", "小明", "🐰")
	require.NoError(t, err)

	require.NoError(t, m.StartRace(ctx, 1, "pA"))

	snap, err := s.Snapshot(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, race.StatusCountdown, snap.Status)

	// 重复开始被拒绝
	err = m.StartRace(ctx, 1, "pA")
	assert.ErrorIs(t, err, apperrors.ErrRaceStarted)
}
