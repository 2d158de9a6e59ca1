package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wfunc/pet-game/internal/utils"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "petctl", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, path := range [][]string{{"migrate"}, {"token"}, {"grant"}, {"balance"}, {"pet", "init"}, {"pet", "show"}} {
		t.Run(strings.Join(path, " "), func(t *testing.T) {
			sub, _, err := cmd.Find(path)
			require.NoError(t, err)
			assert.Equal(t, path[len(path)-1], sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "c", configFlag.Shorthand)
}

// writeConfig 写一份指向临时数据库的配置文件
func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf(`
database:
  driver: sqlite
  dsn: %s
  log_level: silent
security:
  jwt:
    secret: cli-secret
    issuer: pet-game
`, filepath.Join(dir, "pet.db"))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, clk clock.Clock, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand(clk)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestInvalidFormat(t *testing.T) {
	_, err := run(t, clock.New(), "migrate", "--format", "xml")
	assert.Error(t, err)
}

func TestWorkflow(t *testing.T) {
	cfg := writeConfig(t)
	mock := clock.NewMock()
	mock.Set(time.Unix(1_700_000_000, 0))

	out, err := run(t, mock, "-c", cfg, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "迁移完成")

	out, err = run(t, mock, "-c", cfg, "grant", "alice", "12.5")
	require.NoError(t, err)
	assert.Contains(t, out, "余额 12.5")

	_, err = run(t, mock, "-c", cfg, "grant", "alice", "500000", "--raw")
	require.NoError(t, err)

	out, err = run(t, mock, "-c", cfg, "--format", "json", "balance", "alice")
	require.NoError(t, err)
	var wallet struct {
		Owner   string `json:"owner"`
		Balance int64  `json:"balance"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &wallet))
	assert.Equal(t, int64(13_000_000), wallet.Balance)

	_, err = run(t, mock, "-c", cfg, "grant", "alice", "0")
	assert.Error(t, err)

	out, err = run(t, mock, "-c", cfg, "pet", "init", "alice", "mint-1")
	require.NoError(t, err)
	assert.Contains(t, out, "mint-1")

	_, err = run(t, mock, "-c", cfg, "pet", "init", "alice", "mint-1")
	assert.Error(t, err)

	mock.Add(2 * time.Hour)
	out, err = run(t, mock, "-c", cfg, "--format", "json", "pet", "show", "mint-1")
	require.NoError(t, err)
	var view struct {
		Intervals int `json:"intervals"`
		State     struct {
			Hunger int `json:"hunger"`
		} `json:"state"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, 2, view.Intervals)
	assert.Equal(t, 10, view.State.Hunger)
}

func TestTokenCommand(t *testing.T) {
	cfg := writeConfig(t)
	mock := clock.NewMock()
	mock.Set(time.Unix(1_700_000_000, 0))

	out, err := run(t, mock, "-c", cfg, "token", "root", "--role", utils.RoleAdmin)
	require.NoError(t, err)

	manager := utils.NewJWTManager("cli-secret", "pet-game", time.Hour, mock)
	claims, err := manager.ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "root", claims.Owner())
	assert.Equal(t, utils.RoleAdmin, claims.Role)
}
