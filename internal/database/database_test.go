package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wfunc/pet-game/internal/config"
	"github.com/wfunc/pet-game/internal/logger"
	"github.com/wfunc/pet-game/internal/models"
)

func TestOpenAndMigrateSQLiteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pet.db")
	cfg := &config.DatabaseConfig{Driver: "sqlite", DSN: path, LogLevel: "silent"}

	db, err := Open(cfg, zap.NewNop())
	require.NoError(t, err)
	defer Close(db)

	assert.Equal(t, path, sqliteFilePath(db))
	require.NoError(t, AutoMigrate(db, zap.NewNop()))

	for _, m := range models.All() {
		assert.True(t, db.Migrator().HasTable(m), "%T", m)
	}
	assert.True(t, db.Migrator().HasIndex(&models.Collectible{}, "idx_collectible_key"))

	// 锁文件已释放
	assert.NoFileExists(t, path+".migration.lock")

	// 重复迁移无副作用
	require.NoError(t, AutoMigrate(db, zap.NewNop()))
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open(&config.DatabaseConfig{Driver: "oracle"}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "不支持的数据库驱动")
}

func TestMemoryDatabaseHasNoLockPath(t *testing.T) {
	db, err := Open(&config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:", LogLevel: "silent"}, zap.NewNop())
	require.NoError(t, err)
	defer Close(db)

	assert.Empty(t, sqliteFilePath(db))

	core, logs := observer.New(zapcore.DebugLevel)
	t.Cleanup(logger.ReplaceGlobal(zap.New(core)))
	require.NoError(t, AutoMigrate(db, zap.NewNop()))

	ops := logs.FilterMessage("database_operation").All()
	require.Len(t, ops, len(models.All()))
	tables := make([]interface{}, 0, len(ops))
	for _, op := range ops {
		assert.Equal(t, "migrate", op.ContextMap()["operation"])
		tables = append(tables, op.ContextMap()["table"])
	}
	assert.Contains(t, tables, "pets")
	assert.Contains(t, tables, "transactions")
}

func TestOpenCreatesSQLiteDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data", "pet.db")
	db, err := Open(&config.DatabaseConfig{Driver: "sqlite", DSN: path, LogLevel: "silent"}, zap.NewNop())
	require.NoError(t, err)
	defer Close(db)

	assert.DirExists(t, filepath.Dir(path))
	assert.NoError(t, ensureSQLiteDir(":memory:"))
	assert.NoError(t, ensureSQLiteDir("file::memory:?cache=shared"))
}
