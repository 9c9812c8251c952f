package ui

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j2y-cmd/touch-race/internal/identity"
	"github.com/j2y-cmd/touch-race/internal/sound"
)

// handleKey 按界面阶段分发按键
func (m *AppModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// 全局退出
	if key == "ctrl+c" {
		m.conn.Close()
		return m, tea.Quit
	}

	switch m.phase {
	case PhaseConnecting:
		if key == "esc" || key == "q" {
			m.conn.Close()
			return m, tea.Quit
		}

	case PhaseLobby:
		return m.handleLobbyKey(key)

	case PhaseEditName:
		return m.handleEditNameKey(msg)

	case PhaseWaiting:
		return m.handleWaitingKey(key)

	case PhaseCountdown:
		// 倒计时阶段点击无效，只能退出房间
		if key == "esc" {
			_ = m.conn.LeaveRoom()
		}

	case PhaseRacing:
		if key == " " || key == "enter" {
			// 名次由服务器回报，本地只停表
			m.state.Tap()
			m.soundManager.Play(sound.CueTap)
			_ = m.conn.Tap()
			return m, nil
		}
		if key == "esc" {
			_ = m.conn.LeaveRoom()
		}

	case PhaseResults:
		if key == "esc" || key == "enter" {
			_ = m.conn.LeaveRoom()
		}
	}

	return m, nil
}

func (m *AppModel) handleLobbyKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q", "esc":
		m.conn.Close()
		return m, tea.Quit

	case "n":
		m.input.SetValue(m.state.MyName)
		m.input.Focus()
		m.phase = PhaseEditName
		return m, nil

	case "c":
		m.cycleChar()
		return m, nil

	case "r":
		_ = m.conn.GetRoomList()
		_ = m.conn.GetOnlineCount()
		return m, nil
	}

	// 数字键加入对应房间
	if room, err := strconv.Atoi(key); err == nil {
		if room >= 1 && room <= m.state.RoomCount {
			_ = m.conn.JoinRoom(room)
		}
	}
	return m, nil
}

func (m *AppModel) handleEditNameKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		name := strings.TrimSpace(m.input.Value())
		if name != "" {
			m.profile.Name = name
			m.state.MyName = name
			_ = m.conn.SetProfile(name, m.state.MyChar)
			_ = identity.SaveProfile(m.profile)
		}
		m.input.Blur()
		m.phase = PhaseLobby
		return m, nil

	case "esc":
		m.input.Blur()
		m.phase = PhaseLobby
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *AppModel) handleWaitingKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "s":
		if m.state.IsHost() {
			_ = m.conn.StartRace()
		}
	case "esc":
		_ = m.conn.LeaveRoom()
	}
	return m, nil
}

// cycleChar 切换到形象列表中的下一个
func (m *AppModel) cycleChar() {
	chars := m.state.Chars
	if len(chars) == 0 {
		chars = identity.Chars
	}
	next := chars[0]
	for i, c := range chars {
		if c == m.state.MyChar {
			next = chars[(i+1)%len(chars)]
			break
		}
	}
	m.state.MyChar = next
	m.profile.Char = next
	_ = m.conn.SetProfile(m.state.MyName, next)
	_ = identity.SaveProfile(m.profile)
}
