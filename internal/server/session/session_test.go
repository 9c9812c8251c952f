package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j2y-cmd/touch-race/internal/game/race"
	"github.com/j2y-cmd/touch-race/internal/protocol"
	"github.com/j2y-cmd/touch-race/internal/testutil"
)

type fakeStore struct {
	mu      sync.Mutex
	scores  map[string]int
	winners []race.WinnerRecord
}

func newFakeStore() *fakeStore {
	return &fakeStore{scores: make(map[string]int)}
}

func (f *fakeStore) WriteScore(_ context.Context, _ int, playerID string, score int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scores[playerID] = score
	return nil
}

func (f *fakeStore) RecordFinish(_ context.Context, _ int, w race.WinnerRecord) ([]race.WinnerRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.winners {
		if existing.ID == w.ID {
			return append([]race.WinnerRecord(nil), f.winners...), nil
		}
	}
	f.winners = append(f.winners, w)
	return append([]race.WinnerRecord(nil), f.winners...), nil
}

func (f *fakeStore) scoreOf(playerID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.scores[playerID]
}

type fakeMembership struct {
	mu     sync.Mutex
	leaves []int
}

func (f *fakeMembership) LeaveRoom(_ context.Context, room int, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.leaves = append(f.leaves, room)
	return nil
}

const testWinScore = 5

func newTestSession(t *testing.T) (*PlayerSession, *testutil.SimpleClient, *fakeStore, *fakeMembership, *clockwork.FakeClock) {
	t.Helper()
	client := testutil.NewSimpleClient("p1", "小明", "🐰")
	fs := newFakeStore()
	fm := &fakeMembership{}
	clock := clockwork.NewFakeClock()
	ps := New(client, fs, fm, clock, 3*time.Second, testWinScore)
	return ps, client, fs, fm, clock
}

func recordWith(status race.Status, ids ...string) *race.RoomRecord {
	rec := &race.RoomRecord{Status: status, Players: make(map[string]*race.PlayerRecord)}
	for i, id := range ids {
		rec.Players[id] = &race.PlayerRecord{Name: id, Char: "🐢", JoinedAt: int64(i)}
	}
	return rec
}

func TestSession_CountdownToPlaying(t *testing.T) {
	t.Parallel()
	ps, client, _, _, clock := newTestSession(t)

	ps.BindRoom(1)
	ps.OnRoomChange(1, recordWith(race.StatusCountdown, "p1", "p2"))

	assert.Equal(t, StateCountdown, ps.State())
	countdowns := client.MessagesOfType(protocol.MsgCountdown)
	require.Len(t, countdowns, 1)
	payload, err := protocol.ParsePayload[protocol.CountdownPayload](countdowns[0])
	require.NoError(t, err)
	assert.Equal(t, 3, payload.Seconds)

	clock.Advance(3 * time.Second)
	require.Eventually(t, func() bool {
		return ps.State() == StatePlaying
	}, time.Second, 10*time.Millisecond)
	assert.Len(t, client.MessagesOfType(protocol.MsgRaceGo), 1)
}

func TestSession_CountdownFiresOnce(t *testing.T) {
	t.Parallel()
	ps, client, _, _, _ := newTestSession(t)

	ps.BindRoom(1)
	rec := recordWith(race.StatusCountdown, "p1")
	ps.OnRoomChange(1, rec)
	ps.OnRoomChange(1, rec)

	assert.Len(t, client.MessagesOfType(protocol.MsgCountdown), 1)
	assert.Len(t, client.MessagesOfType(protocol.MsgRoomState), 2)
}

func TestSession_TapIgnoredBeforePlaying(t *testing.T) {
	t.Parallel()
	ps, _, fs, _, _ := newTestSession(t)

	ps.BindRoom(1)
	ps.Tap(context.Background())
	assert.Equal(t, 0, ps.Score())

	ps.OnRoomChange(1, recordWith(race.StatusCountdown, "p1"))
	ps.Tap(context.Background())
	assert.Equal(t, 0, ps.Score())
	assert.Equal(t, 0, fs.scoreOf("p1"))
}

func TestSession_TapToWin(t *testing.T) {
	t.Parallel()
	ps, client, fs, _, clock := newTestSession(t)

	ps.BindRoom(2)
	ps.OnRoomChange(2, recordWith(race.StatusCountdown, "p1"))
	clock.Advance(3 * time.Second)
	require.Eventually(t, func() bool {
		return ps.State() == StatePlaying
	}, time.Second, 10*time.Millisecond)

	for i := 0; i < testWinScore; i++ {
		ps.Tap(context.Background())
	}

	assert.Equal(t, StateEnded, ps.State())
	assert.Equal(t, testWinScore, ps.Score())

	finishes := client.MessagesOfType(protocol.MsgFinishRecorded)
	require.Len(t, finishes, 1)
	payload, err := protocol.ParsePayload[protocol.FinishRecordedPayload](finishes[0])
	require.NoError(t, err)
	assert.Equal(t, 1, payload.Rank)
	require.Len(t, payload.Winners, 1)
	assert.Equal(t, "p1", payload.Winners[0].ID)

	// 冲线后的点击不再计分
	ps.Tap(context.Background())
	assert.Equal(t, testWinScore, ps.Score())
	assert.Len(t, client.MessagesOfType(protocol.MsgFinishRecorded), 1)

	require.Eventually(t, func() bool {
		return fs.scoreOf("p1") == testWinScore
	}, time.Second, 10*time.Millisecond)
}

func TestSession_RankBehindEarlierFinisher(t *testing.T) {
	t.Parallel()
	ps, client, fs, _, clock := newTestSession(t)
	fs.winners = []race.WinnerRecord{{ID: "p9", Name: "小红", Char: "🐢"}}

	ps.BindRoom(1)
	ps.OnRoomChange(1, recordWith(race.StatusCountdown, "p1", "p9"))
	clock.Advance(3 * time.Second)
	require.Eventually(t, func() bool {
		return ps.State() == StatePlaying
	}, time.Second, 10*time.Millisecond)

	for i := 0; i < testWinScore; i++ {
		ps.Tap(context.Background())
	}

	finishes := client.MessagesOfType(protocol.MsgFinishRecorded)
	require.Len(t, finishes, 1)
	payload, err := protocol.ParsePayload[protocol.FinishRecordedPayload](finishes[0])
	require.NoError(t, err)
	assert.Equal(t, 2, payload.Rank)
}

func TestSession_RoomClosed(t *testing.T) {
	t.Parallel()
	ps, client, _, _, _ := newTestSession(t)

	ps.BindRoom(3)
	ps.OnRoomChange(3, nil)

	assert.Equal(t, 0, ps.Room())
	assert.Equal(t, StateIdle, ps.State())
	ended := client.MessagesOfType(protocol.MsgSessionEnded)
	require.Len(t, ended, 1)
	payload, err := protocol.ParsePayload[protocol.SessionEndedPayload](ended[0])
	require.NoError(t, err)
	assert.Equal(t, protocol.SessionEndRoomClosed, payload.Reason)
}

func TestSession_Evicted(t *testing.T) {
	t.Parallel()
	ps, client, _, _, _ := newTestSession(t)

	ps.BindRoom(1)
	ps.OnRoomChange(1, recordWith(race.StatusWaiting, "p2", "p3"))

	assert.Equal(t, 0, ps.Room())
	ended := client.MessagesOfType(protocol.MsgSessionEnded)
	require.Len(t, ended, 1)
	payload, err := protocol.ParsePayload[protocol.SessionEndedPayload](ended[0])
	require.NoError(t, err)
	assert.Equal(t, protocol.SessionEndEvicted, payload.Reason)
}

func TestSession_IgnoresOtherRooms(t *testing.T) {
	t.Parallel()
	ps, client, _, _, _ := newTestSession(t)

	ps.BindRoom(1)
	ps.OnRoomChange(2, nil)
	ps.OnRoomChange(2, recordWith(race.StatusCountdown, "p1"))

	assert.Equal(t, 1, ps.Room())
	assert.Equal(t, StateIdle, ps.State())
	assert.Empty(t, client.Messages())
}

func TestSession_HandleDisconnect(t *testing.T) {
	t.Parallel()
	ps, _, _, fm, _ := newTestSession(t)

	ps.BindRoom(4)
	ps.HandleDisconnect(context.Background())

	assert.Equal(t, 0, ps.Room())
	assert.Equal(t, []int{4}, fm.leaves)

	// 不在房间时无需清理
	ps.HandleDisconnect(context.Background())
	assert.Len(t, fm.leaves, 1)
}
