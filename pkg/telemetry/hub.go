package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	pingInterval  = 30 * time.Second
	readDeadline  = 60 * time.Second
	writeDeadline = 10 * time.Second
	sendBuffer    = 256

	// DefaultPublishInterval 快照广播的最小间隔
	DefaultPublishInterval = 100 * time.Millisecond
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 调试面板可能从任意来源打开
	},
}

// Hub 遥测广播中心
//
// tick 线程调用 Publish/PublishTransition，从不阻塞：
// 客户端发送缓冲满时直接丢弃该客户端的这条消息。
type Hub struct {
	sessionID string
	startedAt time.Time
	interval  time.Duration

	clients   map[*client]bool
	clientsMu sync.RWMutex

	latestMu sync.RWMutex
	latest   Snapshot
	lastSent time.Time

	server *http.Server
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	hub  *Hub
	once sync.Once
}

// NewHub 创建广播中心
//
// 参数：
//   - interval: 快照广播的最小间隔（<=0 时使用默认值）
func NewHub(interval time.Duration) *Hub {
	if interval <= 0 {
		interval = DefaultPublishInterval
	}
	h := &Hub{
		sessionID: uuid.NewString(),
		startedAt: time.Now(),
		interval:  interval,
		clients:   make(map[*client]bool),
	}
	log.Printf("[Telemetry] Session %s", h.sessionID)
	return h
}

// SessionID 本次进程运行的标识
func (h *Hub) SessionID() string { return h.sessionID }

// Handler 返回配置好所有路由的 http.Handler
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.handleWebSocket)
	mux.HandleFunc("GET /stats", h.handleStats)
	mux.HandleFunc("GET /snapshot", h.handleSnapshot)
	return mux
}

// Start 在 addr 上开始监听
func (h *Hub) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("telemetry listen %s: %w", addr, err)
	}
	h.server = &http.Server{Handler: h.Handler(), ReadHeaderTimeout: writeDeadline}
	go func() {
		if err := h.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[Telemetry] Error: %v", err)
		}
	}()
	log.Printf("[Telemetry] Listening on %s", ln.Addr())
	return nil
}

// Close 关闭 HTTP 服务和所有客户端连接
func (h *Hub) Close() error {
	var err error
	if h.server != nil {
		err = h.server.Close()
	}

	h.clientsMu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clientsMu.Unlock()
	for _, c := range clients {
		h.removeClient(c)
	}
	return err
}

// Publish 记录最新快照，并按最小间隔广播
func (h *Hub) Publish(s Snapshot) {
	s.SessionID = h.sessionID
	s = s.sanitize()

	h.latestMu.Lock()
	h.latest = s
	due := h.lastSent.IsZero() || s.Time.Sub(h.lastSent) >= h.interval || s.Time.Before(h.lastSent)
	if due {
		h.lastSent = s.Time
	}
	h.latestMu.Unlock()

	if due {
		h.broadcast(Message{Type: TypeSnapshot, Payload: s})
	}
}

// PublishTransition 立即广播一次状态切换
func (h *Hub) PublishTransition(t Transition) {
	t.SessionID = h.sessionID
	log.Printf("[Telemetry] Transition %s -> %s (round %s)", t.From, t.To, t.RoundID)
	h.broadcast(Message{Type: TypeTransition, Payload: t})
}

// Latest 返回最新快照
func (h *Hub) Latest() Snapshot {
	h.latestMu.RLock()
	defer h.latestMu.RUnlock()
	return h.latest
}

// ClientCount 当前连接的客户端数量
func (h *Hub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

func (h *Hub) handleStats(w http.ResponseWriter, r *http.Request) {
	s := h.Latest()
	writeJSON(w, http.StatusOK, Stats{
		SessionID:  h.sessionID,
		StartedAt:  h.startedAt,
		State:      s.State,
		RoundID:    s.RoundID,
		TotalSaves: s.TotalSaves,
		TotalKills: s.TotalKills,
		Clients:    h.ClientCount(),
	})
}

func (h *Hub) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	s := h.Latest()
	if s.State == "" {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no snapshot yet"})
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// handleWebSocket 升级连接并立即发送最新快照
func (h *Hub) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Telemetry] Websocket upgrade error: %v", err)
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, sendBuffer),
		hub:  h,
	}

	h.clientsMu.Lock()
	h.clients[c] = true
	h.clientsMu.Unlock()

	if s := h.Latest(); s.State != "" {
		if data, err := json.Marshal(Message{Type: TypeSnapshot, Payload: s}); err == nil {
			c.send <- data
		}
	}

	go c.writePump()
	go c.readPump()
}

// broadcast 向所有客户端发送消息
func (h *Hub) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[Telemetry] Warning: Failed to encode %s: %v", msg.Type, err)
		return
	}

	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// 客户端缓冲已满，跳过
		}
	}
}

// removeClient 移除客户端并关闭它的发送队列
func (h *Hub) removeClient(c *client) {
	h.clientsMu.Lock()
	delete(h.clients, c)
	h.clientsMu.Unlock()

	c.once.Do(func() {
		close(c.send)
	})
}

// readPump 只处理 pong 和关闭，客户端发来的消息被忽略
func (c *client) readPump() {
	defer func() {
		c.hub.removeClient(c)
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(readDeadline))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[Telemetry] Websocket read error: %v", err)
			}
			return
		}
	}
}

// writePump 把发送队列写入连接，并定时发送 ping
func (c *client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
