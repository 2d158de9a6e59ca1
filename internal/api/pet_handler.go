package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/wfunc/pet-game/internal/errors"
	"github.com/wfunc/pet-game/internal/game/pet"
	"github.com/wfunc/pet-game/internal/repository"
	"github.com/wfunc/pet-game/internal/service"
)

// PetHandler 宠物处理器
type PetHandler struct {
	pets   service.PetService
	logger *zap.Logger
}

// NewPetHandler 创建宠物处理器
func NewPetHandler(pets service.PetService, logger *zap.Logger) *PetHandler {
	return &PetHandler{pets: pets, logger: logger}
}

// CreatePetRequest 创建宠物请求
type CreatePetRequest struct {
	PetID string `json:"pet_id" binding:"required,max=128"`
}

// InteractRequest 按名称互动
type InteractRequest struct {
	Action string `json:"action" binding:"required"`
}

// CreatePet 创建宠物
// POST /api/v1/pets
func (h *PetHandler) CreatePet(c *gin.Context) {
	owner, exists := caller(c)
	if !exists {
		return
	}

	var req CreatePetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	view, err := h.pets.InitializePet(c.Request.Context(), owner, req.PetID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, view)
}

// ListPets 我的宠物
// GET /api/v1/pets
func (h *PetHandler) ListPets(c *gin.Context) {
	owner, exists := caller(c)
	if !exists {
		return
	}

	page, size := pageParams(c)
	views, total, err := h.pets.ListPets(c.Request.Context(), owner, page, size)
	if err != nil {
		fail(c, err)
		return
	}
	p := repository.NewPagination(page, size)
	ok(c, ListResponse{Items: views, Total: total, Page: p.Page, PageSize: p.PageSize})
}

// GetPet 宠物当前状态（衰减到现在，不落库）
// GET /api/v1/pets/:id
func (h *PetHandler) GetPet(c *gin.Context) {
	view, err := h.pets.GetPet(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, view)
}

// Interact 返回固定互动类型的处理函数
// POST /api/v1/pets/:id/{feed,train,clean,fight}
func (h *PetHandler) Interact(kind pet.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.interact(c, kind)
	}
}

// InteractByName 按名称互动
// POST /api/v1/pets/:id/interact
func (h *PetHandler) InteractByName(c *gin.Context) {
	var req InteractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	kind, err := pet.ParseKind(req.Action)
	if err != nil {
		fail(c, apperrors.Wrap(err, apperrors.ErrUnsupportedInteraction, req.Action))
		return
	}
	h.interact(c, kind)
}

func (h *PetHandler) interact(c *gin.Context, kind pet.Kind) {
	owner, exists := caller(c)
	if !exists {
		return
	}

	result, err := h.pets.Interact(c.Request.Context(), owner, c.Param("id"), kind)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, result)
}

// ListEvents 互动历史
// GET /api/v1/pets/:id/events
func (h *PetHandler) ListEvents(c *gin.Context) {
	page, size := pageParams(c)
	list, total, err := h.pets.ListEvents(c.Request.Context(), c.Param("id"), page, size)
	if err != nil {
		fail(c, err)
		return
	}
	p := repository.NewPagination(page, size)
	ok(c, ListResponse{Items: list, Total: total, Page: p.Page, PageSize: p.PageSize})
}

// ListLedger 宠物的代币流水
// GET /api/v1/pets/:id/transactions
func (h *PetHandler) ListLedger(c *gin.Context) {
	owner, exists := caller(c)
	if !exists {
		return
	}

	list, err := h.pets.ListLedger(c.Request.Context(), owner, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, ListResponse{Items: list, Total: int64(len(list)), Page: 1, PageSize: len(list)})
}
