package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/wfunc/pet-game/internal/config"
	"github.com/wfunc/pet-game/internal/game/pet"
	"github.com/wfunc/pet-game/internal/logger"
)

// Message WebSocket消息
type Message struct {
	Type      string          `json:"type"` // 消息类型
	Owner     string          `json:"owner,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// 消息类型
const (
	MessageTypeConnected = "connected"
	MessageTypePing      = "ping"
	MessageTypePong      = "pong"
	MessageTypeError     = "error"

	MessageTypePetInteracted = "pet_interacted"
)

// Hub WebSocket连接管理中心，按主人身份分发宠物事件
type Hub struct {
	cfg      config.WebSocketConfig
	upgrader websocket.Upgrader

	// 客户端连接池，clients 与 ownerClients 共用 mu
	mu           sync.RWMutex
	clients      map[string]*Client
	ownerClients map[string]map[string]*Client

	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	logger *zap.Logger
}

// NewHub 创建Hub
func NewHub(cfg config.WebSocketConfig, logger *zap.Logger) *Hub {
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	if cfg.PongTimeout <= 0 {
		cfg.PongTimeout = 60 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.Path == "" {
		cfg.Path = "/ws"
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = 8192
	}
	return &Hub{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:    cfg.ReadBufferSize,
			WriteBufferSize:   cfg.WriteBufferSize,
			EnableCompression: cfg.EnableCompression,
			CheckOrigin:       func(r *http.Request) bool { return true },
		},
		clients:      make(map[string]*Client),
		ownerClients: make(map[string]map[string]*Client),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		done:         make(chan struct{}),
		logger:       logger,
	}
}

// Path WebSocket挂载路径
func (h *Hub) Path() string {
	return h.cfg.Path
}

// Run 运行Hub，ctx 取消后断开所有客户端
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer ticker.Stop()
	defer close(h.done)

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case <-ticker.C:
			h.broadcast(&Message{Type: MessageTypePing, Timestamp: time.Now().Unix()})

		case <-ctx.Done():
			h.closeAll()
			return
		}
	}
}

// ServeWS 升级HTTP连接并登记为 owner 的客户端
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, owner string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket升级失败", zap.Error(err))
		return err
	}

	client := NewClient(h, conn, owner)
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return ErrHubClosed
	}

	go client.WritePump()
	go client.ReadPump()
	return nil
}

// Publish 实现 events.Sink，把事件推送给主人的在线连接
func (h *Hub) Publish(_ context.Context, e pet.Event) {
	// 主人不在线时直接丢弃
	if !h.IsOnline(e.Owner) {
		return
	}
	data, err := json.Marshal(e)
	if err != nil {
		h.logger.Error("序列化事件失败", zap.Error(err))
		return
	}
	msg := &Message{
		Type:      MessageTypePetInteracted,
		Owner:     e.Owner,
		Data:      data,
		Timestamp: e.Timestamp,
	}
	err = h.SendToOwner(e.Owner, msg)
	switch {
	case err == nil:
		logger.LogWebSocketMessage("send", msg.Type, e)
	case err != ErrOwnerNotConnected:
		h.logger.Warn("事件推送失败",
			zap.String("owner", e.Owner),
			zap.String("pet_id", e.PetID),
			zap.Error(err))
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	h.clients[client.ID] = client
	if h.ownerClients[client.Owner] == nil {
		h.ownerClients[client.Owner] = make(map[string]*Client)
	}
	h.ownerClients[client.Owner][client.ID] = client
	h.mu.Unlock()

	h.logger.Info("WebSocket客户端连接",
		zap.String("client_id", client.ID),
		zap.String("owner", client.Owner))

	h.SendToClient(client.ID, &Message{
		Type:      MessageTypeConnected,
		Owner:     client.Owner,
		Timestamp: time.Now().Unix(),
		Data:      json.RawMessage(`{"message":"连接成功"}`),
	})
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client.ID]; ok {
		delete(h.clients, client.ID)
		if owned := h.ownerClients[client.Owner]; owned != nil {
			delete(owned, client.ID)
			if len(owned) == 0 {
				delete(h.ownerClients, client.Owner)
			}
		}
		close(client.Send)
	}
	h.mu.Unlock()

	h.logger.Info("WebSocket客户端断开",
		zap.String("client_id", client.ID),
		zap.String("owner", client.Owner))
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	for id, client := range h.clients {
		close(client.Send)
		delete(h.clients, id)
	}
	h.ownerClients = make(map[string]map[string]*Client)
	h.mu.Unlock()
}

// broadcast 发送给所有客户端，缓冲区满的客户端跳过
func (h *Hub) broadcast(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("序列化消息失败", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("客户端发送缓冲区满", zap.String("client_id", client.ID))
		}
	}
}

// SendToClient 发送消息给指定客户端
func (h *Hub) SendToClient(clientID string, message *Message) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	client, ok := h.clients[clientID]
	if !ok {
		return ErrClientNotFound
	}

	select {
	case client.Send <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// SendToOwner 发送消息给主人的所有客户端
func (h *Hub) SendToOwner(owner string, message *Message) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	owned := h.ownerClients[owner]
	if len(owned) == 0 {
		return ErrOwnerNotConnected
	}

	for _, client := range owned {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("主人客户端发送缓冲区满",
				zap.String("client_id", client.ID),
				zap.String("owner", owner))
		}
	}
	return nil
}

// OnlineCount 在线连接数
func (h *Hub) OnlineCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// IsOnline 主人是否有在线连接
func (h *Hub) IsOnline(owner string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.ownerClients[owner]) > 0
}
