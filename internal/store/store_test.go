package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j2y-cmd/touch-race/internal/apperrors"
	"github.com/j2y-cmd/touch-race/internal/game/race"
)

const testMaxPlayers = 6

func newTestStore(t *testing.T) *Store {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })

	return New(client)
}

func join(t *testing.T, s *Store, room int, id string) (*race.RoomRecord, bool, error) {
	t.Helper()
	return s.Transact(context.Background(), room,
		race.NewJoiner(id, "玩家"+id, "🐰", testMaxPlayers, time.Now()))
}

func TestTransact_CreateAndSnapshot(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	rec, committed, err := join(t, s, 1, "p1")
	require.NoError(t, err)
	assert.True(t, committed)
	assert.True(t, rec.Players["p1"].IsHost)

	snap, err := s.Snapshot(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, race.StatusWaiting, snap.Status)
	require.Contains(t, snap.Players, "p1")
	assert.Equal(t, "玩家p1", snap.Players["p1"].Name)
	assert.Equal(t, 0, snap.Players["p1"].Score)
	assert.Empty(t, snap.Winners)
}

func TestSnapshot_AbsentRoom(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	snap, err := s.Snapshot(context.Background(), 3)
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestTransact_AbortLeavesRecordUnchanged(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < testMaxPlayers; i++ {
		_, committed, err := join(t, s, 1, fmt.Sprintf("p%d", i))
		require.NoError(t, err)
		require.True(t, committed)
	}

	// 第 7 个加入者被拒绝，记录保持不变
	_, committed, err := join(t, s, 1, "p7")
	assert.ErrorIs(t, err, apperrors.ErrRoomFull)
	assert.False(t, committed)

	snap, err := s.Snapshot(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, snap.Players, testMaxPlayers)
	assert.NotContains(t, snap.Players, "p7")
}

func TestTransact_ConcurrentJoins(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	const joiners = 10
	var wg sync.WaitGroup
	for i := 0; i < joiners; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, _, _ = join(t, s, 2, fmt.Sprintf("p%d", n))
		}(i)
	}
	wg.Wait()

	snap, err := s.Snapshot(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, snap)

	// 容量不超过上限，且恰好一人是房主
	assert.LessOrEqual(t, len(snap.Players), testMaxPlayers)
	hosts := 0
	for _, p := range snap.Players {
		if p.IsHost {
			hosts++
		}
	}
	assert.Equal(t, 1, hosts)
}

func TestWriteScore(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	_, _, err := join(t, s, 1, "p1")
	require.NoError(t, err)

	require.NoError(t, s.WriteScore(ctx, 1, "p1", 7))
	require.NoError(t, s.WriteScore(ctx, 1, "p1", 8))

	snap, err := s.Snapshot(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 8, snap.Players["p1"].Score)
}

func TestWriteScore_SurvivesMembershipTransaction(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	_, _, err := join(t, s, 1, "p1")
	require.NoError(t, err)
	require.NoError(t, s.WriteScore(ctx, 1, "p1", 42))

	// 新玩家加入的事务不应覆盖已有分数
	_, _, err = join(t, s, 1, "p2")
	require.NoError(t, err)

	snap, err := s.Snapshot(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 42, snap.Players["p1"].Score)
	assert.Equal(t, 0, snap.Players["p2"].Score)
}

func TestRecordFinish_OrderAndIdempotence(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	_, _, err := join(t, s, 1, "p1")
	require.NoError(t, err)
	_, _, err = join(t, s, 1, "p2")
	require.NoError(t, err)

	winners, err := s.RecordFinish(ctx, 1, race.WinnerRecord{ID: "p2", Name: "玩家p2", Char: "🐢"})
	require.NoError(t, err)
	require.Len(t, winners, 1)

	winners, err = s.RecordFinish(ctx, 1, race.WinnerRecord{ID: "p1", Name: "玩家p1", Char: "🐰"})
	require.NoError(t, err)
	require.Len(t, winners, 2)
	assert.Equal(t, "p2", winners[0].ID)
	assert.Equal(t, "p1", winners[1].ID)

	// 重复冲线不产生第二条记录
	winners, err = s.RecordFinish(ctx, 1, race.WinnerRecord{ID: "p2", Name: "玩家p2", Char: "🐢"})
	require.NoError(t, err)
	assert.Len(t, winners, 2)
}

func TestRecordFinish_ConcurrentDistinctFinishers(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < testMaxPlayers; i++ {
		_, _, err := join(t, s, 1, fmt.Sprintf("p%d", i))
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	for i := 0; i < testMaxPlayers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("p%d", n)
			_, err := s.RecordFinish(ctx, 1, race.WinnerRecord{ID: id, Name: "玩家" + id, Char: "🐰"})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	snap, err := s.Snapshot(ctx, 1)
	require.NoError(t, err)
	require.Len(t, snap.Winners, testMaxPlayers)

	seen := map[string]bool{}
	for _, w := range snap.Winners {
		assert.False(t, seen[w.ID], "winner %s recorded twice", w.ID)
		seen[w.ID] = true
	}
}

func TestTransact_LeaverDissolvesRoom(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	_, _, err := join(t, s, 1, "p1")
	require.NoError(t, err)

	rec, committed, err := s.Transact(ctx, 1, race.NewLeaver("p1"))
	require.NoError(t, err)
	assert.True(t, committed)
	assert.Nil(t, rec)

	snap, err := s.Snapshot(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestRemoveRoom(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	_, _, err := join(t, s, 1, "p1")
	require.NoError(t, err)

	require.NoError(t, s.RemoveRoom(ctx, 1))

	snap, err := s.Snapshot(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestSubscribe(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	events := make(chan int, 16)
	sub := s.Subscribe(ctx, []int{1, 2}, func(room int) {
		events <- room
	})
	defer sub.Close()

	// 订阅后立即各触发一次
	assert.Equal(t, 1, <-events)
	assert.Equal(t, 2, <-events)

	// 变更后再次触发
	_, _, err := join(t, s, 1, "p1")
	require.NoError(t, err)

	select {
	case room := <-events:
		assert.Equal(t, 1, room)
	case <-time.After(2 * time.Second):
		t.Fatal("no change notification received")
	}
}
