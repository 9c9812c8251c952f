// Package session maintains per-connection race state: which room the
// player sits in, the local countdown/playing progression, and the
// player's tap score. Shared room state lives in the store; this layer
// only tracks what each connection sees.
package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/j2y-cmd/touch-race/internal/game/race"
	"github.com/j2y-cmd/touch-race/internal/game/room"
	"github.com/j2y-cmd/touch-race/internal/protocol"
	"github.com/j2y-cmd/touch-race/internal/types"
)

// State 会话的本地比赛阶段
type State int

const (
	StateIdle      State = iota // 不在房间 / 等待开赛
	StateCountdown              // 收到开赛信号，倒计时中
	StatePlaying                // 倒计时结束，可以点击
	StateEnded                  // 本人已冲线
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCountdown:
		return "countdown"
	case StatePlaying:
		return "playing"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// ProgressStore 会话需要的存储操作
type ProgressStore interface {
	WriteScore(ctx context.Context, room int, playerID string, score int) error
	RecordFinish(ctx context.Context, room int, winner race.WinnerRecord) ([]race.WinnerRecord, error)
}

// Membership 会话断线清理时需要的成员操作
type Membership interface {
	LeaveRoom(ctx context.Context, room int, playerID string) error
}

// PlayerSession 绑定在单个连接上的比赛会话
type PlayerSession struct {
	client     types.ClientInterface
	store      ProgressStore
	membership Membership
	clock      clockwork.Clock
	countdown  time.Duration
	winScore   int

	mu       sync.Mutex
	room     int // 0 表示不在房间
	state    State
	score    int
	finished bool
	timer    clockwork.Timer
}

func New(client types.ClientInterface, s ProgressStore, m Membership, clock clockwork.Clock, countdown time.Duration, winScore int) *PlayerSession {
	return &PlayerSession{
		client:     client,
		store:      s,
		membership: m,
		clock:      clock,
		countdown:  countdown,
		winScore:   winScore,
	}
}

// Room 返回当前所在房间号，0 表示不在房间
func (ps *PlayerSession) Room() int {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.room
}

func (ps *PlayerSession) State() State {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.state
}

func (ps *PlayerSession) Score() int {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.score
}

// BindRoom 在加入事务提交成功后绑定会话到房间
func (ps *PlayerSession) BindRoom(roomNum int) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.resetLocked()
	ps.room = roomNum
}

// Reset 清空全部本地会话状态
func (ps *PlayerSession) Reset() {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.resetLocked()
}

func (ps *PlayerSession) resetLocked() {
	if ps.timer != nil {
		ps.timer.Stop()
		ps.timer = nil
	}
	ps.room = 0
	ps.state = StateIdle
	ps.score = 0
	ps.finished = false
}

// OnRoomChange 消费一条房间快照通知。
// rec 为 nil 表示房间已被解散。
func (ps *PlayerSession) OnRoomChange(roomNum int, rec *race.RoomRecord) {
	ps.mu.Lock()
	if ps.room == 0 || roomNum != ps.room {
		ps.mu.Unlock()
		return
	}

	// 房间消失：会话终止
	if rec == nil {
		ps.resetLocked()
		ps.mu.Unlock()
		ps.client.SendMessage(protocol.MustNewMessage(protocol.MsgSessionEnded,
			protocol.SessionEndedPayload{Reason: protocol.SessionEndRoomClosed}))
		return
	}

	// 自己不在成员表里：被移除
	if _, ok := rec.Players[ps.client.GetID()]; !ok {
		ps.resetLocked()
		ps.mu.Unlock()
		ps.client.SendMessage(protocol.MustNewMessage(protocol.MsgSessionEnded,
			protocol.SessionEndedPayload{Reason: protocol.SessionEndEvicted}))
		return
	}

	// 共享状态翻到 countdown 只触发一次本地倒计时
	var started bool
	if ps.state == StateIdle && rec.Status == race.StatusCountdown {
		ps.state = StateCountdown
		started = true
		ps.timer = ps.clock.AfterFunc(ps.countdown, ps.onCountdownDone)
	}
	ps.mu.Unlock()

	ps.client.SendMessage(protocol.MustNewMessage(protocol.MsgRoomState, room.StateMsg(roomNum, rec)))
	if started {
		ps.client.SendMessage(protocol.MustNewMessage(protocol.MsgCountdown,
			protocol.CountdownPayload{Seconds: int(ps.countdown / time.Second)}))
	}
}

func (ps *PlayerSession) onCountdownDone() {
	ps.mu.Lock()
	if ps.state != StateCountdown {
		ps.mu.Unlock()
		return
	}
	ps.state = StatePlaying
	ps.mu.Unlock()
	ps.client.SendMessage(protocol.MustNewMessage(protocol.MsgRaceGo, nil))
}

// Tap 处理一次点击。仅在 playing 阶段且未冲线时计分，
// 其余情况静默忽略。
func (ps *PlayerSession) Tap(ctx context.Context) {
	ps.mu.Lock()
	if ps.state != StatePlaying || ps.finished {
		ps.mu.Unlock()
		return
	}
	ps.score++
	score := ps.score
	roomNum := ps.room
	crossed := score >= ps.winScore
	if crossed {
		// 冲线后本地立即封盘，后续点击不再计分
		ps.finished = true
		ps.state = StateEnded
	}
	ps.mu.Unlock()

	// 分数写入尽力而为：单条丢失会被下一次点击覆盖
	go func() {
		_ = ps.store.WriteScore(context.Background(), roomNum, ps.client.GetID(), score)
	}()

	if crossed {
		ps.finishRace(ctx, roomNum)
	}
}

// finishRace 以事务方式把自己追加进获胜者名单并回报名次
func (ps *PlayerSession) finishRace(ctx context.Context, roomNum int) {
	winner := race.WinnerRecord{
		ID:   ps.client.GetID(),
		Name: ps.client.GetName(),
		Char: ps.client.GetChar(),
	}
	winners, err := ps.store.RecordFinish(ctx, roomNum, winner)
	if err != nil {
		log.Printf("⚠️ 记录冲线失败 [房间%d] %s: %v", roomNum, winner.ID, err)
		ps.client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeStoreFailure))
		return
	}

	rank := 0
	infos := make([]protocol.WinnerInfo, 0, len(winners))
	for i, w := range winners {
		if w.ID == winner.ID {
			rank = i + 1
		}
		infos = append(infos, protocol.WinnerInfo{ID: w.ID, Name: w.Name, Char: w.Char})
	}
	log.Printf("🏁 玩家冲线 [房间%d] %s 第%d名", roomNum, winner.Name, rank)
	ps.client.SendMessage(protocol.MustNewMessage(protocol.MsgFinishRecorded,
		protocol.FinishRecordedPayload{Rank: rank, Winners: infos}))
}

// HandleDisconnect 连接断开时的兜底清理：
// 若玩家仍在房间内则把其成员记录移除
func (ps *PlayerSession) HandleDisconnect(ctx context.Context) {
	ps.mu.Lock()
	roomNum := ps.room
	ps.resetLocked()
	ps.mu.Unlock()

	if roomNum == 0 {
		return
	}
	if err := ps.membership.LeaveRoom(ctx, roomNum, ps.client.GetID()); err != nil {
		log.Printf("⚠️ 断线清理失败 [房间%d] %s: %v", roomNum, ps.client.GetID(), err)
	}
}
