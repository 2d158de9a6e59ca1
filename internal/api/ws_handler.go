package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wfunc/pet-game/internal/middleware"
	"github.com/wfunc/pet-game/internal/websocket"
)

// WSHandler WebSocket处理器
type WSHandler struct {
	hub    *websocket.Hub
	logger *zap.Logger
}

// NewWSHandler 创建WebSocket处理器
func NewWSHandler(hub *websocket.Hub, logger *zap.Logger) *WSHandler {
	return &WSHandler{hub: hub, logger: logger}
}

// Serve 升级连接，之后推送调用者所有宠物的互动事件
// GET /ws?token=...
func (h *WSHandler) Serve(c *gin.Context) {
	owner, exists := caller(c)
	if !exists {
		return
	}

	// 升级失败时 upgrader 已经写出响应
	if err := h.hub.ServeWS(c.Writer, c.Request, owner); err != nil {
		h.logger.Debug("WebSocket连接未建立",
			zap.String("owner", owner),
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.Error(err),
		)
	}
}
