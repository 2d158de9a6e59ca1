package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wfunc/pet-game/internal/logger"
	"github.com/wfunc/pet-game/internal/models"
)

// indexes 额外索引，AutoMigrate 之后创建
var indexes = []string{
	"CREATE INDEX IF NOT EXISTS idx_pet_events_pet_time ON pet_events(pet_id, occurred_at)",
	"CREATE INDEX IF NOT EXISTS idx_transactions_owner_created ON transactions(owner, created_at)",
}

// tableName 解析模型对应的表名，失败时退回类型名
func tableName(db *gorm.DB, model interface{}) string {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(model); err != nil || stmt.Schema == nil {
		return fmt.Sprintf("%T", model)
	}
	return stmt.Schema.Table
}

// AutoMigrate 自动迁移数据库表结构
func AutoMigrate(db *gorm.DB, log *zap.Logger) error {
	if db == nil {
		return fmt.Errorf("数据库未初始化")
	}

	// 多进程共用一个SQLite文件时串行迁移
	if dbPath := sqliteFilePath(db); dbPath != "" {
		lockFile, err := acquireMigrationLock(dbPath, log)
		if err != nil {
			log.Error("无法获取迁移锁", zap.Error(err))
			return fmt.Errorf("获取迁移锁失败: %w", err)
		}
		defer releaseMigrationLock(lockFile, log)
	}

	log.Info("开始数据库迁移...")

	for _, model := range models.All() {
		start := time.Now()
		err := db.AutoMigrate(model)
		logger.LogDatabaseOperation("migrate", tableName(db, model), time.Since(start), err)
		if err != nil {
			return err
		}
	}

	for _, idx := range indexes {
		if err := db.Exec(idx).Error; err != nil {
			log.Warn("创建索引失败", zap.String("index", idx), zap.Error(err))
		}
	}

	log.Info("数据库迁移完成")
	return nil
}
