package handler

import (
	"context"
	"errors"
	"time"

	"github.com/j2y-cmd/touch-race/internal/apperrors"
	"github.com/j2y-cmd/touch-race/internal/game/room"
	"github.com/j2y-cmd/touch-race/internal/protocol"
	"github.com/j2y-cmd/touch-race/internal/types"
)

// 事务可能因冲突重试，留充裕的超时
const opTimeout = 5 * time.Second

func opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), opTimeout)
}

// sendOpError 把领域错误转成错误消息
func sendOpError(client types.ClientInterface, err error) {
	var gameErr *apperrors.GameError
	if errors.As(err, &gameErr) {
		client.SendMessage(protocol.NewErrorMessage(gameErr.Code))
		return
	}
	client.SendMessage(protocol.NewErrorMessageWithText(protocol.ErrCodeStoreFailure, err.Error()))
}

// handleJoinRoom 处理加入房间
func (h *Handler) handleJoinRoom(client types.ClientInterface, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.JoinRoomPayload](msg)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	sess := h.sessions.SessionOf(client.GetID())
	if sess == nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeUnknown))
		return
	}

	ctx, cancel := opContext()
	defer cancel()

	// 如果已在房间中，先离开
	if prev := sess.Room(); prev != 0 {
		if err := h.rooms.LeaveRoom(ctx, prev, client.GetID()); err != nil {
			sendOpError(client, err)
			return
		}
		sess.Reset()
	}

	rec, err := h.rooms.JoinRoom(ctx, payload.Room, client.GetID(), client.GetName(), client.GetChar())
	if err != nil {
		sendOpError(client, err)
		return
	}

	sess.BindRoom(payload.Room)

	state := room.StateMsg(payload.Room, rec)
	var self protocol.PlayerInfo
	for _, p := range state.Players {
		if p.ID == client.GetID() {
			self = p
			break
		}
	}
	client.SendMessage(protocol.MustNewMessage(protocol.MsgRoomJoined, protocol.RoomJoinedPayload{
		Room:   payload.Room,
		Player: self,
		State:  state,
	}))
}

// handleLeaveRoom 处理离开房间
func (h *Handler) handleLeaveRoom(client types.ClientInterface) {
	sess := h.sessions.SessionOf(client.GetID())
	if sess == nil {
		return
	}

	roomNum := sess.Room()
	if roomNum == 0 {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeNotInRoom))
		return
	}

	ctx, cancel := opContext()
	defer cancel()
	if err := h.rooms.LeaveRoom(ctx, roomNum, client.GetID()); err != nil {
		// 记录已不存在时本地状态照样清掉
		if !errors.Is(err, apperrors.ErrRoomNotFound) && !errors.Is(err, apperrors.ErrNotInRoom) {
			sendOpError(client, err)
			return
		}
	}

	sess.Reset()
	client.SendMessage(protocol.MustNewMessage(protocol.MsgRoomLeft, protocol.RoomLeftPayload{Room: roomNum}))
}

// handleStartRace 处理房主开始比赛
func (h *Handler) handleStartRace(client types.ClientInterface) {
	sess := h.sessions.SessionOf(client.GetID())
	if sess == nil || sess.Room() == 0 {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeNotInRoom))
		return
	}

	ctx, cancel := opContext()
	defer cancel()
	if err := h.rooms.StartRace(ctx, sess.Room(), client.GetID()); err != nil {
		sendOpError(client, err)
	}
	// 状态翻转通过订阅分发给全房间，这里不单独回包
}

// handleGetRoomList 处理获取房间列表
func (h *Handler) handleGetRoomList(client types.ClientInterface) {
	client.SendMessage(protocol.MustNewMessage(protocol.MsgRoomList, protocol.RoomListPayload{
		Rooms: h.lobby.RoomList(),
	}))
}
