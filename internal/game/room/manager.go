package room

import (
	"context"
	"log"
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/j2y-cmd/touch-race/internal/apperrors"
	"github.com/j2y-cmd/touch-race/internal/config"
	"github.com/j2y-cmd/touch-race/internal/game/race"
	"github.com/j2y-cmd/touch-race/internal/identity"
	"github.com/j2y-cmd/touch-race/internal/store"
)

// Manager 房间成员管理器
// 所有成员变更（加入/离开/开赛/房主继任）都通过共享存储的事务完成，
// 并发加入由存储串行化
type Manager struct {
	store *store.Store
	cfg   config.GameConfig
	clock clockwork.Clock
}

// NewManager 创建房间成员管理器
func NewManager(s *store.Store, cfg config.GameConfig, clock clockwork.Clock) *Manager {
	return &Manager{
		store: s,
		cfg:   cfg,
		clock: clock,
	}
}

// ValidRoom 检查房间号是否在固定范围内
func (m *Manager) ValidRoom(room int) bool {
	return room >= 1 && room <= m.cfg.RoomCount
}

// RoomCount 返回固定房间数
func (m *Manager) RoomCount() int { return m.cfg.RoomCount }

// MaxPlayers 返回每房间人数上限
func (m *Manager) MaxPlayers() int { return m.cfg.MaxPlayers }

// JoinRoom 通过单个事务加入房间
// 房间不存在或为空时创建并成为房主；满员或已开赛时拒绝，调用方不重试
func (m *Manager) JoinRoom(ctx context.Context, room int, playerID, name, char string) (*race.RoomRecord, error) {
	if !m.ValidRoom(room) {
		return nil, apperrors.ErrRoomNotFound
	}
	if strings.TrimSpace(name) == "" || !identity.ValidChar(char) {
		return nil, apperrors.ErrInvalidProfile
	}

	rec, _, err := m.store.Transact(ctx, room,
		race.NewJoiner(playerID, name, char, m.cfg.MaxPlayers, m.clock.Now()))
	if err != nil {
		return nil, err
	}

	log.Printf("👤 玩家 %s 加入房间 %d (%d/%d)", name, room, len(rec.Players), m.cfg.MaxPlayers)
	return rec, nil
}

// LeaveRoom 离开房间
// 最后一人离开时解散房间；房主离开时由最早加入的玩家继任
func (m *Manager) LeaveRoom(ctx context.Context, room int, playerID string) error {
	if !m.ValidRoom(room) {
		return apperrors.ErrRoomNotFound
	}

	rec, _, err := m.store.Transact(ctx, room, race.NewLeaver(playerID))
	if err != nil {
		return err
	}

	if rec == nil {
		log.Printf("🏠 房间 %d 已解散", room)
	} else {
		log.Printf("👋 玩家 %s 离开房间 %d", playerID, room)
	}
	return nil
}

// StartRace 房主把房间从 waiting 切到 countdown
func (m *Manager) StartRace(ctx context.Context, room int, playerID string) error {
	if !m.ValidRoom(room) {
		return apperrors.ErrRoomNotFound
	}

	_, _, err := m.store.Transact(ctx, room, race.NewStarter(playerID))
	if err != nil {
		return err
	}

	log.Printf("🏁 房间 %d 开始比赛", room)
	return nil
}
