package repository

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wfunc/pet-game/internal/models"
)

// SetupTestDB 创建内存数据库并迁移全部模型
func SetupTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic(err)
	}

	// 内存库每个连接是独立的库
	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(models.All()...); err != nil {
		panic(err)
	}
	return db
}

// CleanupTestDB 关闭测试数据库
func CleanupTestDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

// newTestDB 为单个测试创建数据库，测试结束自动关闭
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := SetupTestDB()
	t.Cleanup(func() { CleanupTestDB(db) })
	return db
}

// CreateTestPet 构造测试宠物
func CreateTestPet(petID, owner string, now int64) *models.Pet {
	return &models.Pet{
		PetID:          petID,
		Owner:          owner,
		Hunger:         0,
		Strength:       50,
		Happiness:      100,
		Energy:         100,
		LastObservedAt: now,
	}
}
