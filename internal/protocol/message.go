package protocol

import (
	"encoding/json"
	"fmt"
)

// Message 基础消息结构
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Encode 把消息编码成发往线路的 JSON 字节
func (m *Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// Decode 从线路字节还原消息信封，负载保持原始 JSON 不解析
func Decode(data []byte) (*Message, error) {
	msg := &Message{}
	if err := json.Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("解码消息信封失败: %w", err)
	}
	return msg, nil
}

// MessageType 消息类型
type MessageType string

// 客户端 → 服务端 消息类型
const (
	// 连接操作
	MsgPing       MessageType = "ping"        // 心跳 ping
	MsgSetProfile MessageType = "set_profile" // 设置昵称和形象

	// 房间操作
	MsgJoinRoom    MessageType = "join_room"     // 加入房间
	MsgLeaveRoom   MessageType = "leave_room"    // 离开房间
	MsgStartRace   MessageType = "start_race"    // 房主开始比赛
	MsgGetRoomList MessageType = "get_room_list" // 获取房间列表

	// 信息查询
	MsgGetOnlineCount MessageType = "get_online_count" // 获取在线人数

	// 比赛操作
	MsgTap MessageType = "tap" // 点击一次
)

// 服务端 → 客户端 消息类型
const (
	// 连接相关
	MsgConnected MessageType = "connected" // 连接成功
	MsgPong      MessageType = "pong"      // 心跳 pong

	// 房间相关
	MsgRoomJoined MessageType = "room_joined" // 加入房间成功
	MsgRoomLeft   MessageType = "room_left"   // 离开房间成功
	MsgRoomList   MessageType = "room_list"   // 房间列表（大厅实时更新）
	MsgRoomState  MessageType = "room_state"  // 房间状态快照

	// 信息查询
	MsgOnlineCount MessageType = "online_count" // 在线人数

	// 比赛流程
	MsgCountdown      MessageType = "countdown"       // 开始倒计时
	MsgRaceGo         MessageType = "race_go"         // 倒计时结束，开跑
	MsgFinishRecorded MessageType = "finish_recorded" // 自己冲线，名次已记录
	MsgSessionEnded   MessageType = "session_ended"   // 会话终止（房间消失/被移除）

	// 错误
	MsgError MessageType = "error" // 错误消息
)
