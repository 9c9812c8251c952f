// Package handler dispatches client messages to room and race operations.
package handler

import (
	"log"

	"github.com/j2y-cmd/touch-race/internal/game/room"
	"github.com/j2y-cmd/touch-race/internal/protocol"
	"github.com/j2y-cmd/touch-race/internal/server/session"
	"github.com/j2y-cmd/touch-race/internal/types"
)

// Lobby 提供大厅房间列表
type Lobby interface {
	RoomList() []protocol.RoomListItem
}

// SessionRegistry 按客户端 ID 查找比赛会话
type SessionRegistry interface {
	SessionOf(id string) *session.PlayerSession
}

// Deps 处理器依赖
type Deps struct {
	Server   types.ServerInterface
	Rooms    *room.Manager
	Lobby    Lobby
	Sessions SessionRegistry
}

// Handler 消息处理器
type Handler struct {
	server   types.ServerInterface
	rooms    *room.Manager
	lobby    Lobby
	sessions SessionRegistry
	handlers map[protocol.MessageType]handlerFunc
}

// handlerFunc 统一的处理器函数签名
type handlerFunc func(client types.ClientInterface, msg *protocol.Message)

// NewHandler 创建处理器
func NewHandler(deps Deps) *Handler {
	h := &Handler{
		server:   deps.Server,
		rooms:    deps.Rooms,
		lobby:    deps.Lobby,
		sessions: deps.Sessions,
	}
	h.initHandlers()
	return h
}

// initHandlers 初始化消息处理器映射
func (h *Handler) initHandlers() {
	h.handlers = map[protocol.MessageType]handlerFunc{
		// 连接操作
		protocol.MsgPing:       h.handlePing,
		protocol.MsgSetProfile: h.handleSetProfile,

		// 房间操作
		protocol.MsgJoinRoom:  h.handleJoinRoom,
		protocol.MsgLeaveRoom: func(c types.ClientInterface, _ *protocol.Message) { h.handleLeaveRoom(c) },
		protocol.MsgStartRace: func(c types.ClientInterface, _ *protocol.Message) { h.handleStartRace(c) },

		// 比赛操作
		protocol.MsgTap: func(c types.ClientInterface, _ *protocol.Message) { h.handleTap(c) },

		// 信息查询
		protocol.MsgGetRoomList:    func(c types.ClientInterface, _ *protocol.Message) { h.handleGetRoomList(c) },
		protocol.MsgGetOnlineCount: func(c types.ClientInterface, _ *protocol.Message) { h.handleGetOnlineCount(c) },
	}
}

// Handle 处理消息
func (h *Handler) Handle(client types.ClientInterface, msg *protocol.Message) {
	if handler, ok := h.handlers[msg.Type]; ok {
		handler(client, msg)
		return
	}

	log.Printf("⚠️  未知消息类型: '%s' (来自玩家: %s, ID: %s)", msg.Type, client.GetName(), client.GetID())
	client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
}
