package store

import (
	"context"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Subscription 房间变更订阅
type Subscription struct {
	pubsub *redis.PubSub
}

// Subscribe 订阅一组房间的变更通知
// 先对每个房间立即触发一次回调（当前值），之后每次变更再触发。
// 回调在单个协程里依次执行，同一时刻只处理一条通知
func (s *Store) Subscribe(ctx context.Context, rooms []int, onChange func(room int)) *Subscription {
	channels := make([]string, len(rooms))
	for i, room := range rooms {
		channels[i] = EventChannel(room)
	}

	pubsub := s.rdb.Subscribe(ctx, channels...)

	go func() {
		for _, room := range rooms {
			onChange(room)
		}
		for msg := range pubsub.Channel() {
			room, err := strconv.Atoi(strings.TrimPrefix(msg.Channel, eventChannelPrefix))
			if err != nil {
				continue
			}
			onChange(room)
		}
	}()

	return &Subscription{pubsub: pubsub}
}

// Close 取消订阅
func (sub *Subscription) Close() error {
	return sub.pubsub.Close()
}
