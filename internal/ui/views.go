package ui

import (
	"fmt"
	"strings"

	"github.com/j2y-cmd/touch-race/internal/game/race"
)

func (m *AppModel) View() string {
	var view string
	switch m.phase {
	case PhaseConnecting:
		view = m.viewConnecting()
	case PhaseLobby, PhaseEditName:
		view = m.viewLobby()
	case PhaseWaiting:
		view = m.viewWaiting()
	case PhaseCountdown, PhaseRacing:
		view = m.viewRace()
	case PhaseResults:
		view = m.viewResults()
	}

	if m.error != "" {
		view += "\n" + errorStyle.Render("⚠️ "+m.error)
	}
	return docStyle.Render(view)
}

func (m *AppModel) viewConnecting() string {
	if m.error != "" {
		return titleStyle("🐾 点点赛跑") + "\n\n" + errorStyle.Render(m.error)
	}
	return titleStyle("🐾 点点赛跑") + "\n\n正在连接服务器..."
}

func (m *AppModel) viewLobby() string {
	var b strings.Builder
	b.WriteString(titleStyle("🐾 点点赛跑 · 大厅"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("%s %s", m.state.MyChar, selectedStyle.Render(m.state.MyName)))
	if m.state.OnlineCount > 0 {
		b.WriteString(hintStyle.Render(fmt.Sprintf("   在线 %d 人", m.state.OnlineCount)))
	}
	b.WriteString("\n\n")

	if m.phase == PhaseEditName {
		b.WriteString("新昵称: " + m.input.View() + "\n")
		b.WriteString(hintStyle.Render("Enter 确认 · ESC 取消"))
		return b.String()
	}

	if len(m.state.Rooms) == 0 {
		b.WriteString(hintStyle.Render("正在获取房间列表..."))
	}
	for _, item := range m.state.Rooms {
		line := fmt.Sprintf("[%d] 房间%d  %d/%d", item.Room, item.Room, item.PlayerCount, item.MaxPlayers)
		if item.Status == string(race.StatusCountdown) {
			line += "  🏁 比赛中"
		}
		b.WriteString(boxStyle.Render(line+"\n"+hintStyle.Render(item.Preview)) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(hintStyle.Render("1-4 加入房间 · n 改昵称 · c 换形象 · r 刷新 · q 退出"))
	return b.String()
}

func (m *AppModel) viewWaiting() string {
	var b strings.Builder
	b.WriteString(titleStyle(fmt.Sprintf("🏠 房间%d · 等待开赛", m.state.Room)))
	b.WriteString("\n\n")

	for _, p := range m.state.Players {
		line := fmt.Sprintf("%s %s", p.Char, p.Name)
		if p.ID == m.state.MyID {
			line += " (你)"
		}
		if p.IsHost {
			line = hostStyle.Render(line + " " + HostIcon)
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n")
	if m.state.IsHost() {
		b.WriteString(hintStyle.Render("s 开始比赛 · ESC 离开房间"))
	} else {
		b.WriteString(hintStyle.Render("等待房主开始比赛... · ESC 离开房间"))
	}
	return b.String()
}

func (m *AppModel) viewRace() string {
	var b strings.Builder
	b.WriteString(titleStyle(fmt.Sprintf("🏁 房间%d · 冲向终点！", m.state.Room)))
	b.WriteString("\n\n")

	if m.phase == PhaseCountdown {
		b.WriteString(countdownStyle.Render(fmt.Sprintf("  %d  ", m.countdownLeft)))
		b.WriteString("\n\n")
	}

	b.WriteString(RenderTrack(m.state.Players, m.state.MyID, m.state.WinScore, defaultLaneWidth))

	if len(m.state.Winners) > 0 {
		b.WriteString("\n")
		for i, w := range m.state.Winners {
			b.WriteString(winnerStyle.Render(fmt.Sprintf("%s 第%d名 %s %s", race.RankBadge(i+1), i+1, w.Char, w.Name)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	if m.phase == PhaseRacing {
		b.WriteString(hintStyle.Render("空格/Enter 连点冲刺 · ESC 弃赛"))
	} else {
		b.WriteString(hintStyle.Render("准备..."))
	}
	return b.String()
}

func (m *AppModel) viewResults() string {
	var b strings.Builder
	b.WriteString(titleStyle("🎉 冲线！"))
	b.WriteString("\n\n")
	b.WriteString(winnerStyle.Render(fmt.Sprintf("%s 你是第%d名！", race.RankBadge(m.state.MyRank), m.state.MyRank)))
	b.WriteString("\n\n")

	for i, w := range m.state.Winners {
		line := fmt.Sprintf("%s 第%d名 %s %s", race.RankBadge(i+1), i+1, w.Char, w.Name)
		if w.ID == m.state.MyID {
			line += " (你)"
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n")
	b.WriteString(hintStyle.Render("ESC/Enter 返回大厅"))
	return b.String()
}
