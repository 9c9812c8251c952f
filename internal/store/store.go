package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/j2y-cmd/touch-race/internal/game/race"
)

const (
	// Redis key 前缀
	roomKeyPrefix      = "race:room:"
	eventChannelPrefix = "race:events:"

	// 房间数据过期时间
	roomExpiration = 2 * time.Hour

	// WATCH 冲突重试上限
	maxTxRetries = 16
)

// ErrTxConflict 事务冲突重试次数耗尽
var ErrTxConflict = errors.New("房间事务冲突，重试次数耗尽")

// Store 共享状态存储
// 房间记录拆成四个 key：status 字符串、players 哈希（成员字段，仅事务写入）、
// scores 哈希（分数字段，归属玩家自己，最后写入者胜出）、winners 列表（名次）
type Store struct {
	rdb *redis.Client
}

// New 创建存储
func New(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func statusKey(room int) string  { return roomKeyPrefix + strconv.Itoa(room) + ":status" }
func playersKey(room int) string { return roomKeyPrefix + strconv.Itoa(room) + ":players" }
func scoresKey(room int) string  { return roomKeyPrefix + strconv.Itoa(room) + ":scores" }
func winnersKey(room int) string { return roomKeyPrefix + strconv.Itoa(room) + ":winners" }

// EventChannel 返回房间变更通知的频道名
func EventChannel(room int) string {
	return eventChannelPrefix + strconv.Itoa(room)
}

// Transact 对房间执行原子读-改-写事务
// fn 的错误表示放弃事务（committed=false，记录保持不变）；
// WATCH 冲突自动重试，同一房间的事务由存储串行化
func (s *Store) Transact(ctx context.Context, room int, fn race.TxFunc) (*race.RoomRecord, bool, error) {
	keys := []string{statusKey(room), playersKey(room), winnersKey(room)}

	for i := 0; i < maxTxRetries; i++ {
		var (
			result *race.RoomRecord
			fnErr  error
		)

		txf := func(tx *redis.Tx) error {
			current, err := readRecord(ctx, tx, room)
			if err != nil {
				return err
			}

			// fn 可能原地修改 current，先留一份旧成员集合用于分数键的增删
			prevIDs := make(map[string]struct{})
			if current != nil {
				for id := range current.Players {
					prevIDs[id] = struct{}{}
				}
			}

			next, err := fn(current)
			if err != nil {
				fnErr = err
				result = current
				return nil
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				return writeRecord(ctx, pipe, room, prevIDs, next)
			})
			result = next
			return err
		}

		err := s.rdb.Watch(ctx, txf, keys...)
		switch {
		case errors.Is(err, redis.TxFailedErr):
			continue // 并发修改，重试
		case err != nil:
			return nil, false, err
		case fnErr != nil:
			return result, false, fnErr
		default:
			s.notify(ctx, room)
			return result, true, nil
		}
	}

	return nil, false, ErrTxConflict
}

// Snapshot 读取房间当前记录，nil 表示房间不存在
func (s *Store) Snapshot(ctx context.Context, room int) (*race.RoomRecord, error) {
	return readRecord(ctx, s.rdb, room)
}

// WriteScore 写入玩家分数（尽力而为）
// 不做读-改-写：分数单调递增，丢失的写入会被下一次点击覆盖
func (s *Store) WriteScore(ctx context.Context, room int, playerID string, score int) error {
	if err := s.rdb.HSet(ctx, scoresKey(room), playerID, score).Err(); err != nil {
		return err
	}
	s.notify(ctx, room)
	return nil
}

// RecordFinish 通过事务把冲线记录追加到名次列表
// 同一玩家重复调用只保留第一条（幂等），返回追加后的完整名次
func (s *Store) RecordFinish(ctx context.Context, room int, winner race.WinnerRecord) ([]race.WinnerRecord, error) {
	rec, _, err := s.Transact(ctx, room, race.NewFinisher(winner))
	if err != nil {
		return nil, err
	}
	return rec.Winners, nil
}

// RemoveRoom 删除房间的全部数据
func (s *Store) RemoveRoom(ctx context.Context, room int) error {
	err := s.rdb.Del(ctx, statusKey(room), playersKey(room), scoresKey(room), winnersKey(room)).Err()
	if err != nil {
		return err
	}
	s.notify(ctx, room)
	return nil
}

// Ping 检查存储连通性
func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// notify 发布变更通知，订阅方收到后自行重读快照
func (s *Store) notify(ctx context.Context, room int) {
	if err := s.rdb.Publish(ctx, EventChannel(room), "changed").Err(); err != nil {
		log.Printf("⚠️ 房间 %d 变更通知发送失败: %v", room, err)
	}
}

// readRecord 读取完整房间记录，把分数哈希合并进玩家记录
func readRecord(ctx context.Context, c redis.Cmdable, room int) (*race.RoomRecord, error) {
	status, err := c.Get(ctx, statusKey(room)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}

	players, err := c.HGetAll(ctx, playersKey(room)).Result()
	if err != nil {
		return nil, err
	}

	// 房间不存在：status 缺失且没有任何玩家
	if status == "" && len(players) == 0 {
		return nil, nil
	}

	scores, err := c.HGetAll(ctx, scoresKey(room)).Result()
	if err != nil {
		return nil, err
	}

	rawWinners, err := c.LRange(ctx, winnersKey(room), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	rec := &race.RoomRecord{
		Status:  race.Status(status),
		Players: make(map[string]*race.PlayerRecord, len(players)),
		Winners: make([]race.WinnerRecord, 0, len(rawWinners)),
	}

	for id, raw := range players {
		var p race.PlayerRecord
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return nil, fmt.Errorf("反序列化玩家记录失败: %w", err)
		}
		if v, ok := scores[id]; ok {
			if n, err := strconv.Atoi(v); err == nil {
				p.Score = n
			}
		}
		rec.Players[id] = &p
	}

	for _, raw := range rawWinners {
		var w race.WinnerRecord
		if err := json.Unmarshal([]byte(raw), &w); err != nil {
			return nil, fmt.Errorf("反序列化冲线记录失败: %w", err)
		}
		rec.Winners = append(rec.Winners, w)
	}

	return rec, nil
}

// writeRecord 把事务结果写回存储
// 成员和名次全量重写；分数哈希只做增删，避免覆盖并发的计分写入
func writeRecord(ctx context.Context, pipe redis.Pipeliner, room int, prevIDs map[string]struct{}, next *race.RoomRecord) error {
	if next == nil {
		pipe.Del(ctx, statusKey(room), playersKey(room), scoresKey(room), winnersKey(room))
		return nil
	}

	pipe.Set(ctx, statusKey(room), string(next.Status), roomExpiration)

	pipe.Del(ctx, playersKey(room))
	fields := make(map[string]any, len(next.Players))
	for id, p := range next.Players {
		data, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("序列化玩家记录失败: %w", err)
		}
		fields[id] = data
	}
	if len(fields) > 0 {
		pipe.HSet(ctx, playersKey(room), fields)
	}

	// 房间新建或重建时清掉遗留分数
	if len(prevIDs) == 0 {
		pipe.Del(ctx, scoresKey(room))
	}
	for id := range next.Players {
		if _, ok := prevIDs[id]; !ok {
			pipe.HSet(ctx, scoresKey(room), id, 0)
		}
	}
	for id := range prevIDs {
		if _, ok := next.Players[id]; !ok {
			pipe.HDel(ctx, scoresKey(room), id)
		}
	}

	pipe.Del(ctx, winnersKey(room))
	for _, w := range next.Winners {
		data, err := json.Marshal(w)
		if err != nil {
			return fmt.Errorf("序列化冲线记录失败: %w", err)
		}
		pipe.RPush(ctx, winnersKey(room), data)
	}

	pipe.Expire(ctx, playersKey(room), roomExpiration)
	pipe.Expire(ctx, scoresKey(room), roomExpiration)
	pipe.Expire(ctx, winnersKey(room), roomExpiration)

	return nil
}
