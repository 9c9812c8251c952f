package server

import (
	"log"
	"net"
	"net/http"
	"strings"

	"github.com/j2y-cmd/touch-race/internal/identity"
	"github.com/j2y-cmd/touch-race/internal/protocol"
	"github.com/j2y-cmd/touch-race/internal/server/session"
)

// handleWebSocket 处理 WebSocket 连接
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket 升级失败: %v", err)
		return
	}

	client := NewClient(s, conn)
	client.IP = clientIP(r)

	sess := session.New(client, s.store, s.rooms, s.clock,
		s.config.Game.CountdownDuration(), s.config.Game.WinScore)
	s.registerClient(client, sess)

	client.SendMessage(protocol.MustNewMessage(protocol.MsgConnected, protocol.ConnectedPayload{
		PlayerID:   client.ID,
		PlayerName: client.GetName(),
		PlayerChar: client.GetChar(),
		Chars:      identity.Chars,
		RoomCount:  s.config.Game.RoomCount,
		WinScore:   s.config.Game.WinScore,
	}))

	log.Printf("✅ 玩家 %s (%s) 已连接, IP: %s", client.GetName(), client.ID, client.IP)

	go client.ReadPump()
	go client.WritePump()
}

// handleHealth 健康检查接口
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// clientIP 获取真实客户端 IP，优先取代理头
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i >= 0 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
	}
	if rip := r.Header.Get("X-Real-IP"); rip != "" {
		return rip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// registerClient 注册客户端及其会话
func (s *Server) registerClient(client *Client, sess *session.PlayerSession) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	s.clients[client.ID] = client
	s.sessions[client.ID] = sess
}

// unregisterClient 注销客户端
func (s *Server) unregisterClient(client *Client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	if _, ok := s.clients[client.ID]; ok {
		delete(s.clients, client.ID)
		delete(s.sessions, client.ID)
		log.Printf("❌ 玩家 %s (%s) 已断开, IP: %s", client.GetName(), client.ID, client.IP)
	}
}

// SessionOf 返回客户端的比赛会话，不存在时为 nil
func (s *Server) SessionOf(id string) *session.PlayerSession {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return s.sessions[id]
}

// BroadcastToLobby 把消息发给所有不在房间内的客户端
func (s *Server) BroadcastToLobby(msg *protocol.Message) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	for id, c := range s.clients {
		if sess := s.sessions[id]; sess != nil && sess.Room() != 0 {
			continue
		}
		c.SendMessage(msg)
	}
}

// OnlineCount 当前连接数
func (s *Server) OnlineCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}
