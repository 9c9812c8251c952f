package handler

import (
	"github.com/j2y-cmd/touch-race/internal/types"
)

// handleTap 处理一次点击
// 计分与冲线判定全在会话内完成，非比赛阶段的点击被静默丢弃
func (h *Handler) handleTap(client types.ClientInterface) {
	sess := h.sessions.SessionOf(client.GetID())
	if sess == nil {
		return
	}

	ctx, cancel := opContext()
	defer cancel()
	sess.Tap(ctx)
}
