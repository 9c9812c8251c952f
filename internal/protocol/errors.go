package protocol

// 错误码
const (
	ErrCodeUnknown        = 1000
	ErrCodeInvalidMsg     = 1001
	ErrCodeStoreFailure   = 1002 // 共享存储读写失败
	ErrCodeRoomNotFound   = 2001
	ErrCodeRoomFull       = 2002
	ErrCodeNotInRoom      = 2003
	ErrCodeRaceStarted    = 2004 // 比赛已开始，无法加入
	ErrCodeNotHost        = 2005 // 只有房主能开始比赛
	ErrCodeInvalidProfile = 2006 // 昵称或形象不合法
)

// ErrorMessages 错误码对应的消息
var ErrorMessages = map[int]string{
	ErrCodeUnknown:        "未知错误",
	ErrCodeInvalidMsg:     "无效的消息格式",
	ErrCodeStoreFailure:   "服务暂时不可用",
	ErrCodeRoomNotFound:   "房间不存在",
	ErrCodeRoomFull:       "房间已满",
	ErrCodeNotInRoom:      "您不在房间中",
	ErrCodeRaceStarted:    "比赛已开始",
	ErrCodeNotHost:        "只有房主可以开始比赛",
	ErrCodeInvalidProfile: "昵称或形象不合法",
}
