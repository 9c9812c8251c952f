package types

import (
	"github.com/j2y-cmd/touch-race/internal/protocol"
)

// ServerInterface 定义服务器接口（用于打破循环依赖）
type ServerInterface interface {
	BroadcastToLobby(msg *protocol.Message)
	OnlineCount() int
}

// ClientInterface 定义客户端接口
type ClientInterface interface {
	GetID() string
	GetName() string
	GetChar() string
	SetProfile(name, char string)
	SendMessage(msg *protocol.Message)
	Close()
}
