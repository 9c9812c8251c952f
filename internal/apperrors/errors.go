package apperrors

import (
	"github.com/j2y-cmd/touch-race/internal/protocol"
)

// GameError 游戏错误（房间事务和会话共享）
type GameError struct {
	Code    int
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

// 预定义错误
var (
	ErrRoomNotFound   = &GameError{Code: protocol.ErrCodeRoomNotFound, Message: "房间不存在"}
	ErrRoomFull       = &GameError{Code: protocol.ErrCodeRoomFull, Message: "房间已满"}
	ErrNotInRoom      = &GameError{Code: protocol.ErrCodeNotInRoom, Message: "您不在房间中"}
	ErrRaceStarted    = &GameError{Code: protocol.ErrCodeRaceStarted, Message: "比赛已开始"}
	ErrNotHost        = &GameError{Code: protocol.ErrCodeNotHost, Message: "只有房主可以开始比赛"}
	ErrInvalidProfile = &GameError{Code: protocol.ErrCodeInvalidProfile, Message: "昵称或形象不合法"}
)
