package ui

import (
	"fmt"
	"strings"

	"github.com/j2y-cmd/touch-race/internal/protocol"
)

// defaultLaneWidth 赛道格数（不含终点旗）
const defaultLaneWidth = 30

// RenderLane 渲染一条赛道：形象按进度前移，终点是小旗
func RenderLane(char string, score, winScore, width int) string {
	if width < 1 {
		width = 1
	}
	pos := 0
	if winScore > 0 {
		pos = score * width / winScore
	}
	if pos > width {
		pos = width
	}

	var b strings.Builder
	for i := 0; i <= width; i++ {
		switch {
		case i == pos:
			b.WriteString(char)
		case i == width:
			b.WriteString(FinishFlag)
		default:
			b.WriteString(TrackDot)
		}
	}
	return b.String()
}

// RenderTrack 渲染整场比赛的赛道，每位玩家一行
func RenderTrack(players []protocol.PlayerInfo, myID string, winScore, width int) string {
	var b strings.Builder
	for _, p := range players {
		lane := RenderLane(p.Char, p.Score, winScore, width)
		label := fmt.Sprintf(" %d/%d %s", p.Score, winScore, p.Name)
		if p.ID == myID {
			label += " (你)"
		}
		if p.IsHost {
			label += " " + HostIcon
		}
		b.WriteString(lane)
		b.WriteString(label)
		b.WriteString("\n")
	}
	return b.String()
}
