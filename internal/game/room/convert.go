package room

import (
	"strings"

	"github.com/j2y-cmd/touch-race/internal/game/race"
	"github.com/j2y-cmd/touch-race/internal/protocol"
)

// StateMsg 把房间记录转换为对客户端的状态快照
func StateMsg(room int, rec *race.RoomRecord) protocol.RoomStateMsg {
	msg := protocol.RoomStateMsg{
		Room:    room,
		Players: []protocol.PlayerInfo{},
		Winners: []protocol.WinnerInfo{},
	}
	if rec == nil {
		return msg
	}

	msg.Status = string(rec.Status)
	for _, id := range rec.OrderedIDs() {
		p := rec.Players[id]
		msg.Players = append(msg.Players, protocol.PlayerInfo{
			ID:     id,
			Name:   p.Name,
			Char:   p.Char,
			Score:  p.Score,
			IsHost: p.IsHost,
		})
	}
	for _, w := range rec.Winners {
		msg.Winners = append(msg.Winners, protocol.WinnerInfo{
			ID:   w.ID,
			Name: w.Name,
			Char: w.Char,
		})
	}
	return msg
}

// ListItem 把房间记录转换为大厅列表条目
func ListItem(room int, rec *race.RoomRecord, maxPlayers int) protocol.RoomListItem {
	item := protocol.RoomListItem{
		Room:       room,
		MaxPlayers: maxPlayers,
		Status:     string(race.StatusWaiting),
		Preview:    "等待中...",
	}
	if rec == nil {
		return item
	}

	item.PlayerCount = len(rec.Players)
	item.Status = string(rec.Status)

	if len(rec.Players) > 0 {
		parts := make([]string, 0, len(rec.Players))
		for _, id := range rec.OrderedIDs() {
			p := rec.Players[id]
			parts = append(parts, p.Char+" "+p.Name)
		}
		item.Preview = strings.Join(parts, ", ")
	}
	return item
}
