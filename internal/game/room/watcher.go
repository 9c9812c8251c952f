package room

import (
	"context"
	"log"
	"sync"

	"github.com/j2y-cmd/touch-race/internal/game/race"
	"github.com/j2y-cmd/touch-race/internal/protocol"
	"github.com/j2y-cmd/touch-race/internal/store"
)

// ChangeFunc 房间变更回调，rec 为 nil 表示房间已消失
type ChangeFunc func(room int, rec *race.RoomRecord)

// Watcher 订阅全部固定房间的变更，维护一份只读快照缓存
// 回调按通知到达顺序依次执行，不会并发
type Watcher struct {
	store      *store.Store
	roomCount  int
	maxPlayers int
	onChange   ChangeFunc

	mu        sync.RWMutex
	snapshots map[int]*race.RoomRecord

	sub *store.Subscription
}

// NewWatcher 创建房间观察器
func NewWatcher(s *store.Store, roomCount, maxPlayers int, onChange ChangeFunc) *Watcher {
	return &Watcher{
		store:      s,
		roomCount:  roomCount,
		maxPlayers: maxPlayers,
		onChange:   onChange,
		snapshots:  make(map[int]*race.RoomRecord, roomCount),
	}
}

// Start 开始订阅，先对每个房间推一次当前值
func (w *Watcher) Start(ctx context.Context) {
	rooms := make([]int, w.roomCount)
	for i := range rooms {
		rooms[i] = i + 1
	}

	w.sub = w.store.Subscribe(ctx, rooms, func(room int) {
		rec, err := w.store.Snapshot(ctx, room)
		if err != nil {
			log.Printf("⚠️ 读取房间 %d 快照失败: %v", room, err)
			return
		}

		w.mu.Lock()
		w.snapshots[room] = rec
		w.mu.Unlock()

		if w.onChange != nil {
			w.onChange(room, rec)
		}
	})
}

// Stop 停止订阅
func (w *Watcher) Stop() {
	if w.sub != nil {
		_ = w.sub.Close()
	}
}

// Snapshot 返回缓存中的房间快照
func (w *Watcher) Snapshot(room int) *race.RoomRecord {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.snapshots[room]
}

// RoomList 生成大厅的房间列表
func (w *Watcher) RoomList() []protocol.RoomListItem {
	w.mu.RLock()
	defer w.mu.RUnlock()

	items := make([]protocol.RoomListItem, 0, w.roomCount)
	for room := 1; room <= w.roomCount; room++ {
		items = append(items, ListItem(room, w.snapshots[room], w.maxPlayers))
	}
	return items
}
