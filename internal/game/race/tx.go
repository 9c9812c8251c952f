package race

import (
	"time"

	"github.com/j2y-cmd/touch-race/internal/apperrors"
)

// TxFunc 房间事务函数：拿到当前记录，返回新记录
// current == nil 表示房间不存在；返回 nil 表示删除房间；
// 返回错误表示放弃事务，记录保持不变
type TxFunc func(current *RoomRecord) (*RoomRecord, error)

// NewJoiner 返回加入房间的事务函数
//
// 决策表：
//   - 房间不存在          → 创建房间，自己成为房主
//   - 房间存在但没有玩家  → 幽灵房间，重建，自己成为房主
//   - status != waiting   → 拒绝（比赛已开始）
//   - 人数已满            → 拒绝（房间已满）
//   - 其他                → 以普通玩家身份加入
func NewJoiner(id, name, char string, maxPlayers int, joinedAt time.Time) TxFunc {
	return func(current *RoomRecord) (*RoomRecord, error) {
		if current == nil || len(current.Players) == 0 {
			return &RoomRecord{
				Status: StatusWaiting,
				Players: map[string]*PlayerRecord{
					id: {
						Name:     name,
						Char:     char,
						IsHost:   true, // 第一个进来的是房主
						JoinedAt: joinedAt.UnixMilli(),
					},
				},
				Winners: []WinnerRecord{},
			}, nil
		}

		if current.Status != StatusWaiting {
			return nil, apperrors.ErrRaceStarted
		}

		if len(current.Players) >= maxPlayers {
			return nil, apperrors.ErrRoomFull
		}

		current.Players[id] = &PlayerRecord{
			Name:     name,
			Char:     char,
			IsHost:   false,
			JoinedAt: joinedAt.UnixMilli(),
		}
		return current, nil
	}
}

// NewLeaver 返回离开房间的事务函数
// 最后一人离开时删除房间；房主离开时由最早加入的玩家继任
func NewLeaver(id string) TxFunc {
	return func(current *RoomRecord) (*RoomRecord, error) {
		if current == nil {
			return nil, apperrors.ErrRoomNotFound
		}

		player, ok := current.Players[id]
		if !ok {
			return nil, apperrors.ErrNotInRoom
		}

		wasHost := player.IsHost
		delete(current.Players, id)

		if len(current.Players) == 0 {
			return nil, nil // 房间空了，解散
		}

		if wasHost {
			promoteHost(current)
		}
		return current, nil
	}
}

// promoteHost 最早加入的玩家继任房主
func promoteHost(rec *RoomRecord) {
	for _, p := range rec.Players {
		p.IsHost = false
	}
	ids := rec.OrderedIDs()
	rec.Players[ids[0]].IsHost = true
}

// NewStarter 返回开始比赛的事务函数，仅房主可用
func NewStarter(id string) TxFunc {
	return func(current *RoomRecord) (*RoomRecord, error) {
		if current == nil {
			return nil, apperrors.ErrRoomNotFound
		}

		player, ok := current.Players[id]
		if !ok {
			return nil, apperrors.ErrNotInRoom
		}
		if !player.IsHost {
			return nil, apperrors.ErrNotHost
		}
		if current.Status != StatusWaiting {
			return nil, apperrors.ErrRaceStarted
		}

		current.Status = StatusCountdown
		return current, nil
	}
}

// NewFinisher 返回记录冲线的事务函数
// 同一玩家重复冲线不会产生第二条记录（幂等），
// 追加顺序 == 事务提交顺序 == 名次
func NewFinisher(winner WinnerRecord) TxFunc {
	return func(current *RoomRecord) (*RoomRecord, error) {
		if current == nil {
			return nil, apperrors.ErrRoomNotFound
		}

		if current.HasWinner(winner.ID) {
			return current, nil
		}

		current.Winners = append(current.Winners, winner)
		return current, nil
	}
}
