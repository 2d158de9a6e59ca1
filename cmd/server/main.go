package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wfunc/pet-game/internal/api"
	"github.com/wfunc/pet-game/internal/config"
	"github.com/wfunc/pet-game/internal/database"
	apperrors "github.com/wfunc/pet-game/internal/errors"
	"github.com/wfunc/pet-game/internal/events"
	"github.com/wfunc/pet-game/internal/logger"
	"github.com/wfunc/pet-game/internal/service"
	"github.com/wfunc/pet-game/internal/utils"
	"github.com/wfunc/pet-game/internal/websocket"
)

// 版本信息
var (
	Version   = "1.0.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Server 服务器实例
type Server struct {
	cfg    *config.Config
	logger *zap.Logger

	db       *gorm.DB
	services *service.Services
	hub      *websocket.Hub
	http     *http.Server

	// 关闭控制
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

func main() {
	var (
		configPath  = flag.String("config", "", "配置文件路径")
		showVersion = flag.Bool("version", false, "显示版本信息")
	)
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	// 加载配置
	if err := config.Init(*configPath); err != nil {
		fmt.Printf("加载配置失败: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Get()

	// 初始化日志系统
	if err := logger.Init(&cfg.Log); err != nil {
		fmt.Printf("初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Cleanup()

	server := NewServer(cfg)
	if err := server.Start(); err != nil {
		logger.Fatal("服务器启动失败", zap.Error(err))
	}

	server.WaitForShutdown()

	if err := server.Shutdown(); err != nil {
		logger.Error("服务器关闭失败", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("服务器已安全关闭")
}

// NewServer 创建服务器实例
func NewServer(cfg *config.Config) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		cfg:    cfg,
		logger: logger.GetLogger(),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start 启动服务器
func (s *Server) Start() error {
	s.logger.Info("正在启动宠物游戏服务器...",
		zap.String("version", Version),
		zap.String("mode", s.cfg.Server.Mode),
	)

	if err := s.initComponents(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrUnknown, "初始化组件失败")
	}
	if err := s.startServices(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrUnknown, "启动服务失败")
	}

	// 监听配置变化
	config.Watch(func(newCfg *config.Config) {
		s.logger.Info("配置已更新，正在重新加载...")
		s.reloadConfig(newCfg)
	})

	logger.Infof("服务器启动成功，监听 %s，WebSocket路径 %s", s.http.Addr, s.hub.Path())
	return nil
}

// initComponents 初始化组件
func (s *Server) initComponents() error {
	if err := s.initDatabase(); err != nil {
		return err
	}

	params, err := s.cfg.Game.Pet.ToParams()
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrConfigValidate, "宠物规则配置无效")
	}

	s.hub = websocket.NewHub(s.cfg.WebSocket, logger.WithModule("websocket"))

	// 事件先写日志，再推送给在线的主人
	sink := events.Multi{
		events.NewLogSink(logger.WithModule("events")),
		s.hub,
	}

	s.services, err = service.NewServices(s.db, params, clock.New(), sink, logger.WithModule("service"))
	if err != nil {
		return err
	}

	jwt := utils.NewJWTManager(
		s.cfg.Security.JWT.Secret,
		s.cfg.Security.JWT.Issuer,
		time.Duration(s.cfg.Security.JWT.ExpireHours)*time.Hour,
		clock.New(),
	)

	if s.cfg.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(s.db, s.services, s.hub, jwt, logger.WithModule("api"))

	s.http = &http.Server{
		Addr:         net.JoinHostPort(s.cfg.Server.Host, strconv.Itoa(s.cfg.Server.Port)),
		Handler:      router.Handler(),
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	s.logger.Info("所有组件初始化完成")
	return nil
}

// initDatabase 初始化数据库
func (s *Server) initDatabase() error {
	if err := database.Init(&s.cfg.Database); err != nil {
		return apperrors.Wrap(err, apperrors.ErrDatabaseConnect, "初始化数据库连接失败")
	}
	s.db = database.DB

	if s.cfg.Database.AutoMigrate {
		s.logger.Info("执行数据库自动迁移...")
		if err := database.AutoMigrate(s.db, logger.WithModule("database")); err != nil {
			return apperrors.Wrap(err, apperrors.ErrDatabaseConnect, "数据库迁移失败")
		}
	}
	return nil
}

// startServices 启动服务
func (s *Server) startServices() error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.hub.Run(s.ctx)
		s.logger.Info("WebSocket Hub已停止")
	}()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("HTTP服务异常退出: %v", err)
		}
	}()
	return nil
}

// WaitForShutdown 等待关闭信号
func (s *Server) WaitForShutdown() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	sig := <-sigCh
	s.logger.Info("收到退出信号", zap.String("signal", sig.String()))
}

// Shutdown 优雅关闭服务器
func (s *Server) Shutdown() error {
	s.logger.Info("正在优雅关闭服务器...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	// 先停止接收新请求，再断开WebSocket
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("HTTP服务关闭失败", zap.Error(err))
	}
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("所有服务已正常关闭")
	case <-shutdownCtx.Done():
		s.logger.Warn("关闭超时，强制退出")
		return apperrors.New(apperrors.ErrTimeout, "关闭超时")
	}

	if err := database.Close(s.db); err != nil {
		s.logger.Error("关闭数据库失败", zap.Error(err))
	}
	return nil
}

// reloadConfig 应用热更新的配置
// 只有日志级别和宠物规则参数支持热更新，其余配置需要重启
func (s *Server) reloadConfig(newCfg *config.Config) {
	logger.SetLevel(newCfg.Log.Level)

	params, err := newCfg.Game.Pet.ToParams()
	if err != nil {
		logger.Warn("宠物规则配置无效，保留旧参数", zap.Error(err))
		return
	}
	if err := s.services.Pet.UpdateParams(params); err != nil {
		s.logger.Error("更新宠物规则失败", zap.Error(err))
		return
	}

	s.cfg = newCfg
	s.logger.Info("配置重新加载完成", zap.Stringer("log_level", logger.Level()))
}

// printVersion 打印版本信息
func printVersion() {
	fmt.Printf("宠物游戏服务器\n")
	fmt.Printf("版本: %s\n", Version)
	fmt.Printf("构建时间: %s\n", BuildTime)
	fmt.Printf("Git提交: %s\n", GitCommit)
	fmt.Printf("Go版本: %s\n", runtime.Version())
	fmt.Printf("操作系统: %s/%s\n", runtime.GOOS, runtime.GOARCH)
}
