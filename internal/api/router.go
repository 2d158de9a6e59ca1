package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wfunc/pet-game/internal/database"
	apperrors "github.com/wfunc/pet-game/internal/errors"
	"github.com/wfunc/pet-game/internal/game/pet"
	"github.com/wfunc/pet-game/internal/middleware"
	"github.com/wfunc/pet-game/internal/service"
	"github.com/wfunc/pet-game/internal/utils"
	"github.com/wfunc/pet-game/internal/websocket"
)

// Router API路由器
type Router struct {
	engine   *gin.Engine
	db       *gorm.DB
	services *service.Services
	hub      *websocket.Hub
	auth     *middleware.AuthMiddleware
	log      *zap.Logger

	petHandler         *PetHandler
	walletHandler      *WalletHandler
	collectibleHandler *CollectibleHandler
	adminHandler       *AdminHandler
}

// NewRouter 创建路由器，hub 为空时不注册 WebSocket 路由
func NewRouter(db *gorm.DB, services *service.Services, hub *websocket.Hub, jwt *utils.JWTManager, log *zap.Logger) *Router {
	engine := gin.New()

	// 全局中间件
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Recovery())
	engine.Use(middleware.Logger())

	router := &Router{
		engine:             engine,
		db:                 db,
		services:           services,
		hub:                hub,
		auth:               middleware.NewAuthMiddleware(jwt),
		log:                log,
		petHandler:         NewPetHandler(services.Pet, log.Named("pet")),
		walletHandler:      NewWalletHandler(services.Wallet),
		collectibleHandler: NewCollectibleHandler(services.Collectible),
		adminHandler:       NewAdminHandler(services.Wallet, services.Pet),
	}

	router.setupRoutes()
	return router
}

// setupRoutes 设置路由
func (r *Router) setupRoutes() {
	// 健康检查
	r.engine.GET("/health", r.healthCheck)

	v1 := r.engine.Group("/api/v1")
	v1.Use(r.auth.RequireAuth())
	{
		pets := v1.Group("/pets")
		{
			pets.POST("", r.petHandler.CreatePet)
			pets.GET("", r.petHandler.ListPets)
			pets.GET("/:id", r.petHandler.GetPet)
			pets.GET("/:id/events", r.petHandler.ListEvents)
			pets.GET("/:id/transactions", r.petHandler.ListLedger)
			pets.POST("/:id/interact", r.petHandler.InteractByName)
			pets.POST("/:id/feed", r.petHandler.Interact(pet.KindFeed))
			pets.POST("/:id/train", r.petHandler.Interact(pet.KindTrain))
			pets.POST("/:id/clean", r.petHandler.Interact(pet.KindClean))
			pets.POST("/:id/fight", r.petHandler.Interact(pet.KindFight))
		}

		wallet := v1.Group("/wallet")
		{
			wallet.GET("/balance", r.walletHandler.GetBalance)
			wallet.GET("/transactions", r.walletHandler.GetTransactions)
			wallet.GET("/transactions/:order_no", r.walletHandler.GetTransaction)
		}

		collectibles := v1.Group("/collectibles")
		{
			collectibles.GET("", r.collectibleHandler.List)
			collectibles.POST("/skins", r.collectibleHandler.MintSkin)
			collectibles.POST("/backgrounds", r.collectibleHandler.MintBackground)
		}

		// 管理员路由
		admin := v1.Group("/admin")
		admin.Use(r.auth.RequireRole(utils.RoleAdmin))
		{
			admin.POST("/grant", r.adminHandler.Grant)
			admin.GET("/params", r.adminHandler.GetParams)
		}
	}

	// WebSocket路由
	if r.hub != nil {
		ws := NewWSHandler(r.hub, r.log.Named("ws"))
		r.engine.GET(r.hub.Path(), r.auth.RequireAuth(), ws.Serve)
	}

	// 404处理
	r.engine.NoRoute(func(c *gin.Context) {
		middleware.AbortWithError(c, apperrors.New(apperrors.ErrNotFound, "接口不存在"))
	})
}

// healthCheck 健康检查
func (r *Router) healthCheck(c *gin.Context) {
	if err := database.Ping(c.Request.Context(), r.db); err != nil {
		r.log.Error("健康检查失败", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"message": "数据库连接失败",
		})
		return
	}

	body := gin.H{
		"status":  "healthy",
		"message": "服务运行正常",
	}
	if r.hub != nil {
		body["online"] = r.hub.OnlineCount()
	}
	c.JSON(http.StatusOK, body)
}

// Handler 返回 http.Handler
func (r *Router) Handler() http.Handler {
	return r.engine
}

// GetEngine 获取Gin引擎（用于测试）
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
