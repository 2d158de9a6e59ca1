package websocket

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/wfunc/pet-game/internal/logger"
)

// 错误定义
var (
	ErrClientNotFound    = errors.New("客户端未找到")
	ErrOwnerNotConnected = errors.New("主人未连接")
	ErrSendBufferFull    = errors.New("发送缓冲区已满")
	ErrHubClosed         = errors.New("Hub已关闭")
)

// Client WebSocket客户端
type Client struct {
	ID    string          // 客户端ID
	Owner string          // 主人身份
	Hub   *Hub            // Hub引用
	Conn  *websocket.Conn // WebSocket连接
	Send  chan []byte     // 发送通道
}

// NewClient 创建新客户端
func NewClient(hub *Hub, conn *websocket.Conn, owner string) *Client {
	return &Client{
		ID:    uuid.New().String(),
		Owner: owner,
		Hub:   hub,
		Conn:  conn,
		Send:  make(chan []byte, 256),
	}
}

// ReadPump 读取消息
func (c *Client) ReadPump() {
	defer func() {
		select {
		case c.Hub.unregister <- c:
		case <-c.Hub.done:
		}
		c.Conn.Close()
	}()

	pongWait := c.Hub.cfg.PongTimeout
	c.Conn.SetReadLimit(c.Hub.cfg.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Error("WebSocket读取错误",
					zap.String("client_id", c.ID),
					zap.Error(err))
			}
			break
		}
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		c.handleMessage(message)
	}
}

// WritePump 写入消息
func (c *Client) WritePump() {
	writeWait := c.Hub.cfg.WriteTimeout
	ticker := time.NewTicker(c.Hub.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub关闭了通道
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage 客户端只会发送心跳，其他消息回复错误
func (c *Client) handleMessage(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		c.Hub.logger.Debug("解析WebSocket消息失败",
			zap.String("client_id", c.ID),
			zap.Error(err))
		c.sendError("消息格式错误")
		return
	}

	logger.LogWebSocketMessage("receive", msg.Type, msg.Data)

	switch msg.Type {
	case MessageTypePing:
		c.Hub.SendToClient(c.ID, &Message{Type: MessageTypePong, Timestamp: time.Now().Unix()})
	case MessageTypePong:
	default:
		c.sendError("不支持的消息类型: " + msg.Type)
	}
}

// sendError 发送错误消息
func (c *Client) sendError(message string) {
	data, _ := json.Marshal(map[string]string{"error": message})
	c.Hub.SendToClient(c.ID, &Message{
		Type:      MessageTypeError,
		Timestamp: time.Now().Unix(),
		Data:      data,
	})
}
