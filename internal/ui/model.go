// Package ui implements the terminal interface for the tap race.
package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j2y-cmd/touch-race/internal/client"
	"github.com/j2y-cmd/touch-race/internal/identity"
	"github.com/j2y-cmd/touch-race/internal/protocol"
	"github.com/j2y-cmd/touch-race/internal/sound"
	"github.com/j2y-cmd/touch-race/internal/transport"
)

// 界面阶段
type Phase int

const (
	PhaseConnecting Phase = iota
	PhaseLobby
	PhaseEditName
	PhaseWaiting
	PhaseCountdown
	PhaseRacing
	PhaseResults
)

// ServerMessage 服务器消息（用于 tea.Msg）
type ServerMessage struct {
	Msg *protocol.Message
}

// ConnectedMsg 连接成功消息
type ConnectedMsg struct{}

// ConnectionErrorMsg 连接错误消息
type ConnectionErrorMsg struct {
	Err error
}

// CountdownTickMsg 本地倒计时读秒
type CountdownTickMsg struct{}

// ClearErrorMsg 清除错误消息
type ClearErrorMsg struct{}

// AppModel 整个客户端的 model
type AppModel struct {
	conn  *transport.Client
	state *client.RaceState
	phase Phase
	error string

	// 本地倒计时剩余秒数
	countdownLeft int

	// 本地档案，连接成功后上报
	profile identity.Profile

	// Audio
	soundManager *sound.SoundManager

	// UI 组件
	input  textinput.Model
	width  int
	height int
}

// NewAppModel 创建客户端 model
func NewAppModel(serverURL string) *AppModel {
	ti := textinput.New()
	ti.Placeholder = "输入昵称..."
	ti.CharLimit = 12
	ti.Width = 20

	return &AppModel{
		conn:         transport.NewClient(serverURL),
		state:        client.NewRaceState(),
		phase:        PhaseConnecting,
		profile:      identity.LoadProfile(),
		soundManager: sound.NewSoundManager(),
		input:        ti,
	}
}

func (m *AppModel) Init() tea.Cmd {
	go func() {
		_ = m.soundManager.Init()
	}()

	return tea.Batch(
		m.connectToServer(),
		textinput.Blink,
	)
}

// connectToServer 连接服务器
func (m *AppModel) connectToServer() tea.Cmd {
	return func() tea.Msg {
		if err := m.conn.Connect(); err != nil {
			return ConnectionErrorMsg{Err: err}
		}
		return ConnectedMsg{}
	}
}

// listenForMessages 监听服务器消息
func (m *AppModel) listenForMessages() tea.Cmd {
	return func() tea.Msg {
		msg, err := m.conn.Receive()
		if err != nil {
			return ConnectionErrorMsg{Err: err}
		}
		return ServerMessage{Msg: msg}
	}
}

// countdownTick 每秒递减一次本地倒计时
func countdownTick() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return CountdownTickMsg{}
	})
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ConnectedMsg:
		m.phase = PhaseLobby
		m.conn.StartHeartbeat()
		cmds = append(cmds, m.listenForMessages())

	case ConnectionErrorMsg:
		m.error = fmt.Sprintf("连接已断开: %v\n\n按 ESC 退出", msg.Err)
		m.phase = PhaseConnecting

	case ServerMessage:
		cmds = append(cmds, m.handleServerMessage(msg.Msg)...)
		cmds = append(cmds, m.listenForMessages())

	case CountdownTickMsg:
		if m.phase == PhaseCountdown && m.countdownLeft > 0 {
			m.countdownLeft--
			if m.countdownLeft > 0 {
				m.soundManager.Play(sound.CueTick)
				cmds = append(cmds, countdownTick())
			}
		}

	case ClearErrorMsg:
		m.error = ""
	}

	if m.phase == PhaseEditName {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// handleServerMessage 处理一条服务器推送
func (m *AppModel) handleServerMessage(msg *protocol.Message) []tea.Cmd {
	var cmds []tea.Cmd

	switch msg.Type {
	case protocol.MsgConnected:
		if payload, err := protocol.ParsePayload[protocol.ConnectedPayload](msg); err == nil {
			m.state.ApplyConnected(payload)
			// 上报本地档案并拉取大厅
			_ = m.conn.SetProfile(m.profile.Name, m.profile.Char)
			m.state.MyName = m.profile.Name
			m.state.MyChar = m.profile.Char
			_ = m.conn.GetRoomList()
			_ = m.conn.GetOnlineCount()
		}

	case protocol.MsgRoomJoined:
		if payload, err := protocol.ParsePayload[protocol.RoomJoinedPayload](msg); err == nil {
			m.state.ApplyJoined(payload)
			m.phase = PhaseWaiting
		}

	case protocol.MsgRoomLeft:
		m.state.LeaveRoom()
		m.phase = PhaseLobby
		_ = m.conn.GetRoomList()

	case protocol.MsgRoomList:
		if payload, err := protocol.ParsePayload[protocol.RoomListPayload](msg); err == nil {
			m.state.Rooms = payload.Rooms
		}

	case protocol.MsgRoomState:
		if payload, err := protocol.ParsePayload[protocol.RoomStateMsg](msg); err == nil {
			m.state.ApplyRoomState(payload)
		}

	case protocol.MsgCountdown:
		if payload, err := protocol.ParsePayload[protocol.CountdownPayload](msg); err == nil {
			m.state.StartCountdown()
			m.phase = PhaseCountdown
			m.countdownLeft = payload.Seconds
			m.soundManager.Play(sound.CueTick)
			cmds = append(cmds, countdownTick())
		}

	case protocol.MsgRaceGo:
		m.state.StartRacing()
		m.phase = PhaseRacing
		m.countdownLeft = 0
		m.soundManager.Play(sound.CueGo)

	case protocol.MsgFinishRecorded:
		if payload, err := protocol.ParsePayload[protocol.FinishRecordedPayload](msg); err == nil {
			m.state.ApplyFinish(payload)
			m.phase = PhaseResults
			m.soundManager.Play(sound.CueFinish)
		}

	case protocol.MsgSessionEnded:
		if payload, err := protocol.ParsePayload[protocol.SessionEndedPayload](msg); err == nil {
			m.state.LeaveRoom()
			m.phase = PhaseLobby
			if payload.Reason == protocol.SessionEndRoomClosed {
				m.error = "房间已解散"
			} else {
				m.error = "你已被移出房间"
			}
			cmds = append(cmds, clearErrorAfter(3*time.Second))
			_ = m.conn.GetRoomList()
		}

	case protocol.MsgOnlineCount:
		if payload, err := protocol.ParsePayload[protocol.OnlineCountPayload](msg); err == nil {
			m.state.OnlineCount = payload.Count
		}

	case protocol.MsgError:
		if payload, err := protocol.ParsePayload[protocol.ErrorPayload](msg); err == nil {
			m.error = payload.Message
			cmds = append(cmds, clearErrorAfter(3*time.Second))
		}
	}

	return cmds
}

func clearErrorAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return ClearErrorMsg{}
	})
}
