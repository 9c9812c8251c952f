package handler

import (
	"strings"
	"time"

	"github.com/j2y-cmd/touch-race/internal/identity"
	"github.com/j2y-cmd/touch-race/internal/protocol"
	"github.com/j2y-cmd/touch-race/internal/types"
)

// handlePing 处理心跳消息
func (h *Handler) handlePing(client types.ClientInterface, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.PingPayload](msg)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	client.SendMessage(protocol.MustNewMessage(protocol.MsgPong, protocol.PongPayload{
		ClientTimestamp: payload.Timestamp,
		ServerTimestamp: time.Now().UnixMilli(),
	}))
}

// handleSetProfile 处理设置昵称和形象
// 只影响之后的加入操作，已写入房间的成员记录不变
func (h *Handler) handleSetProfile(client types.ClientInterface, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.SetProfilePayload](msg)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	name := strings.TrimSpace(payload.Name)
	if name == "" || !identity.ValidChar(payload.Char) {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidProfile))
		return
	}

	client.SetProfile(name, payload.Char)
}

// handleGetOnlineCount 处理获取在线人数
func (h *Handler) handleGetOnlineCount(client types.ClientInterface) {
	client.SendMessage(protocol.MustNewMessage(protocol.MsgOnlineCount, protocol.OnlineCountPayload{
		Count: h.server.OnlineCount(),
	}))
}
