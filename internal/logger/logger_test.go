package logger

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wfunc/pet-game/internal/config"
)

func TestBuildWritesFiles(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.LogConfig{
		Level:  "debug",
		Format: "json",
		Output: "file",
		File: config.LogFileConfig{
			Path:       dir,
			Filename:   "pet-game.log",
			MaxSize:    1,
			MaxAge:     1,
			MaxBackups: 1,
		},
		Modules: map[string]string{"ledger": "warn"},
	}

	lvl := zap.NewAtomicLevel()
	l, modules, err := Build(cfg, lvl)
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, lvl.Level())
	require.Contains(t, modules, "ledger")
	assert.False(t, modules["ledger"].Core().Enabled(zapcore.InfoLevel))

	l.Info("宠物互动", zap.String("pet_id", "p1"))
	l.Error("结算失败", zap.String("pet_id", "p1"))
	_ = l.Sync()

	main, err := os.ReadFile(filepath.Join(dir, "pet-game.log"))
	require.NoError(t, err)
	assert.Contains(t, string(main), `"pet_id":"p1"`)
	assert.Contains(t, string(main), "宠物互动")

	errLog, err := os.ReadFile(filepath.Join(dir, "error.log"))
	require.NoError(t, err)
	assert.Contains(t, string(errLog), "结算失败")
	assert.NotContains(t, string(errLog), "宠物互动")
}

func TestAtomicLevel(t *testing.T) {
	lvl := zap.NewAtomicLevel()
	l, _, err := Build(&config.LogConfig{Level: "info", Format: "console", Output: "stdout"}, lvl)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))

	lvl.SetLevel(zapcore.DebugLevel)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
}

func TestGlobalHelpers(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	restore := ReplaceGlobal(zap.New(core))
	defer restore()

	Infof("监听 %s", ":8080")
	Errorf("关闭失败: %v", "timeout")
	LogRequest("POST", "/api/v1/pets/p1/feed", 402, time.Millisecond, "127.0.0.1", zap.String("owner", "alice"))
	LogPanic("boom", []byte("stack"))
	LogDatabaseOperation("migrate", "pets", time.Millisecond, nil)
	LogDatabaseOperation("migrate", "wallets", time.Millisecond, errors.New("locked"))

	entries := logs.All()
	require.Len(t, entries, 6)
	assert.Equal(t, "监听 :8080", entries[0].Message)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)

	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, "http", entries[2].LoggerName)
	assert.Equal(t, "alice", entries[2].ContextMap()["owner"])
	assert.Equal(t, int64(402), entries[2].ContextMap()["status"])

	assert.Equal(t, "panic recovered", entries[3].Message)
	assert.Equal(t, zapcore.DebugLevel, entries[4].Level)
	assert.Equal(t, "database_operation_failed", entries[5].Message)
}
