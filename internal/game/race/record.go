package race

import "sort"

// Status 房间共享状态
// 开跑后共享状态停留在 countdown，各端的 playing/ended 只存在于本地会话，
// 新玩家因 status != waiting 而无法加入
type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusCountdown Status = "countdown"
)

// PlayerRecord 房间中的玩家记录
type PlayerRecord struct {
	Name     string `json:"name"`
	Char     string `json:"char"`
	Score    int    `json:"score"`
	IsHost   bool   `json:"is_host"`
	JoinedAt int64  `json:"joined_at"` // Unix 毫秒，房主继任按此排序
}

// WinnerRecord 冲线记录，列表顺序即名次
type WinnerRecord struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Char string `json:"char"`
}

// RoomRecord 房间记录，是共享存储中的完整快照
// nil 表示房间不存在
type RoomRecord struct {
	Status  Status
	Players map[string]*PlayerRecord
	Winners []WinnerRecord
}

// OrderedIDs 返回按加入时间排序的玩家 ID（时间相同按 ID 排序）
func (r *RoomRecord) OrderedIDs() []string {
	ids := make([]string, 0, len(r.Players))
	for id := range r.Players {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := r.Players[ids[i]], r.Players[ids[j]]
		if a.JoinedAt != b.JoinedAt {
			return a.JoinedAt < b.JoinedAt
		}
		return ids[i] < ids[j]
	})
	return ids
}

// HostID 返回当前房主 ID，没有房主时返回空串
func (r *RoomRecord) HostID() string {
	for id, p := range r.Players {
		if p.IsHost {
			return id
		}
	}
	return ""
}

// HasWinner 检查某玩家是否已在冲线列表中
func (r *RoomRecord) HasWinner(id string) bool {
	for _, w := range r.Winners {
		if w.ID == id {
			return true
		}
	}
	return false
}
