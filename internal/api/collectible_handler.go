package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wfunc/pet-game/internal/repository"
	"github.com/wfunc/pet-game/internal/service"
)

// CollectibleHandler 收藏品处理器
type CollectibleHandler struct {
	collectibles service.CollectibleService
}

// NewCollectibleHandler 创建收藏品处理器
func NewCollectibleHandler(collectibles service.CollectibleService) *CollectibleHandler {
	return &CollectibleHandler{collectibles: collectibles}
}

// MintSkinRequest 铸造皮肤请求
type MintSkinRequest struct {
	Seed      string `json:"seed" binding:"required,max=128"`
	VariantID string `json:"variant_id" binding:"required,max=128"`
	Tier      string `json:"tier" binding:"max=32"`
}

// MintBackgroundRequest 铸造背景请求
type MintBackgroundRequest struct {
	Seed string `json:"seed" binding:"required,max=128"`
	BgID string `json:"bg_id" binding:"required,max=128"`
	Tier string `json:"tier" binding:"max=32"`
}

// MintSkin 铸造皮肤
// POST /api/v1/collectibles/skins
func (h *CollectibleHandler) MintSkin(c *gin.Context) {
	owner, exists := caller(c)
	if !exists {
		return
	}

	var req MintSkinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	item, err := h.collectibles.MintSkin(c.Request.Context(), owner, req.Seed, req.VariantID, req.Tier)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, item)
}

// MintBackground 铸造背景
// POST /api/v1/collectibles/backgrounds
func (h *CollectibleHandler) MintBackground(c *gin.Context) {
	owner, exists := caller(c)
	if !exists {
		return
	}

	var req MintBackgroundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	item, err := h.collectibles.MintBackground(c.Request.Context(), owner, req.Seed, req.BgID, req.Tier)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, item)
}

// List 我的收藏品
// GET /api/v1/collectibles?kind=skin|background
func (h *CollectibleHandler) List(c *gin.Context) {
	owner, exists := caller(c)
	if !exists {
		return
	}

	page, size := pageParams(c)
	list, total, err := h.collectibles.List(c.Request.Context(), owner, c.Query("kind"), page, size)
	if err != nil {
		fail(c, err)
		return
	}
	p := repository.NewPagination(page, size)
	ok(c, ListResponse{Items: list, Total: total, Page: p.Page, PageSize: p.PageSize})
}
