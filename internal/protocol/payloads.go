package protocol

// --- 公共数据结构 ---

// PlayerInfo 玩家信息
type PlayerInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Char   string `json:"char"`
	Score  int    `json:"score"`
	IsHost bool   `json:"is_host"`
}

// WinnerInfo 冲线玩家信息（顺序即名次）
type WinnerInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Char string `json:"char"`
}

// RoomListItem 大厅房间列表条目
type RoomListItem struct {
	Room        int    `json:"room"`
	PlayerCount int    `json:"player_count"`
	MaxPlayers  int    `json:"max_players"`
	Status      string `json:"status"`
	Preview     string `json:"preview"` // 形如 "🐰 小明, 🐢 小红"
}

// --- 客户端请求 Payloads ---

// PingPayload 心跳请求
type PingPayload struct {
	Timestamp int64 `json:"timestamp"` // 客户端时间戳（毫秒）
}

// SetProfilePayload 设置昵称和形象
type SetProfilePayload struct {
	Name string `json:"name"`
	Char string `json:"char"`
}

// JoinRoomPayload 加入房间请求
type JoinRoomPayload struct {
	Room int `json:"room"`
}

// --- 服务端响应 Payloads ---

// ConnectedPayload 连接成功响应
type ConnectedPayload struct {
	PlayerID   string   `json:"player_id"`
	PlayerName string   `json:"player_name"`
	PlayerChar string   `json:"player_char"`
	Chars      []string `json:"chars"`     // 可选形象列表
	RoomCount  int      `json:"rooms"`     // 固定房间数
	WinScore   int      `json:"win_score"` // 冲线所需点击数
}

// PongPayload 心跳响应
type PongPayload struct {
	ClientTimestamp int64 `json:"client_timestamp"`
	ServerTimestamp int64 `json:"server_timestamp"`
}

// RoomJoinedPayload 加入房间成功响应
type RoomJoinedPayload struct {
	Room   int          `json:"room"`
	Player PlayerInfo   `json:"player"`
	State  RoomStateMsg `json:"state"`
}

// RoomLeftPayload 离开房间成功响应
type RoomLeftPayload struct {
	Room int `json:"room"`
}

// RoomListPayload 大厅房间列表
type RoomListPayload struct {
	Rooms []RoomListItem `json:"rooms"`
}

// OnlineCountPayload 在线人数响应
type OnlineCountPayload struct {
	Count int `json:"count"`
}

// RoomStateMsg 房间状态快照
type RoomStateMsg struct {
	Room    int          `json:"room"`
	Status  string       `json:"status"`
	Players []PlayerInfo `json:"players"` // 按加入顺序
	Winners []WinnerInfo `json:"winners"` // 按冲线顺序
}

// CountdownPayload 开始倒计时通知
type CountdownPayload struct {
	Seconds int `json:"seconds"`
}

// FinishRecordedPayload 冲线记录成功通知
type FinishRecordedPayload struct {
	Rank    int          `json:"rank"` // 1 起始
	Winners []WinnerInfo `json:"winners"`
}

// 会话终止原因
const (
	SessionEndRoomClosed = "room_closed" // 房间被解散
	SessionEndEvicted    = "evicted"     // 成员记录被移除
)

// SessionEndedPayload 会话终止通知
type SessionEndedPayload struct {
	Reason string `json:"reason"` // room_closed / evicted
}

// ErrorPayload 错误消息
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
