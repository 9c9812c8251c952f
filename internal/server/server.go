package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"

	"github.com/j2y-cmd/touch-race/internal/config"
	"github.com/j2y-cmd/touch-race/internal/game/race"
	"github.com/j2y-cmd/touch-race/internal/game/room"
	"github.com/j2y-cmd/touch-race/internal/protocol"
	"github.com/j2y-cmd/touch-race/internal/server/handler"
	"github.com/j2y-cmd/touch-race/internal/server/session"
	"github.com/j2y-cmd/touch-race/internal/store"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许所有来源，生产环境需要限制
	},
	// 点击消息只有几十字节，压缩是负优化
	EnableCompression: false,
}

// Server WebSocket 服务器
type Server struct {
	config  *config.Config
	redis   *redis.Client
	store   *store.Store
	rooms   *room.Manager
	watcher *room.Watcher
	handler *handler.Handler
	clock   clockwork.Clock

	clients   map[string]*Client
	sessions  map[string]*session.PlayerSession
	clientsMu sync.RWMutex

	cancel context.CancelFunc
}

// NewServer 创建服务器实例
func NewServer(cfg *config.Config) (*Server, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// 测试 Redis 连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis 连接失败: %w", err)
	}

	s := &Server{
		config:   cfg,
		redis:    rdb,
		store:    store.New(rdb),
		clock:    clockwork.NewRealClock(),
		clients:  make(map[string]*Client),
		sessions: make(map[string]*session.PlayerSession),
	}

	s.rooms = room.NewManager(s.store, cfg.Game, s.clock)
	s.watcher = room.NewWatcher(s.store, cfg.Game.RoomCount, cfg.Game.MaxPlayers, s.dispatchRoomChange)

	s.handler = handler.NewHandler(handler.Deps{
		Server:   s,
		Rooms:    s.rooms,
		Lobby:    s.watcher,
		Sessions: s,
	})

	return s, nil
}

// Start 启动服务器
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.watcher.Start(ctx)

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	http.HandleFunc("/ws", s.handleWebSocket)
	http.HandleFunc("/health", s.handleHealth)

	log.Printf("🚀 服务器启动在 ws://%s/ws (房间数: %d, CPU核心数: %d)",
		addr, s.config.Game.RoomCount, runtime.NumCPU())
	server := &http.Server{
		Addr:              addr,
		Handler:           nil,
		ReadHeaderTimeout: 10 * time.Second, // 防止 Slowloris 攻击
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return server.ListenAndServe()
}

// Shutdown 停止后台组件并断开全部连接
func (s *Server) Shutdown() {
	if s.cancel != nil {
		s.cancel()
	}
	s.watcher.Stop()

	s.clientsMu.Lock()
	for _, c := range s.clients {
		c.Close()
	}
	s.clientsMu.Unlock()

	_ = s.redis.Close()
}

// dispatchRoomChange 把房间快照分发给相关会话，并刷新大厅列表
func (s *Server) dispatchRoomChange(roomNum int, rec *race.RoomRecord) {
	s.clientsMu.RLock()
	sessions := make([]*session.PlayerSession, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.clientsMu.RUnlock()

	for _, sess := range sessions {
		sess.OnRoomChange(roomNum, rec)
	}

	s.BroadcastToLobby(protocol.MustNewMessage(protocol.MsgRoomList,
		protocol.RoomListPayload{Rooms: s.watcher.RoomList()}))
}
