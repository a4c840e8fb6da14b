package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rocketscienceinc/trio-backend/internal/apperror"
	"github.com/rocketscienceinc/trio-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	t.Run("Reads every section", func(t *testing.T) {
		// Given: a full config file
		path := writeConfig(t, `
log-level: debug
http-port: "8080"
redis:
  host: redis
  port: "6380"
game:
  board-size: 5
  robot-delay: 250ms
  manual-robot-delay: 100ms
  player-o: robot
  player-x: human
results:
  limit: 20
`)

		// When: loading it
		conf, err := Load(path)

		// Then: every value is taken from the file
		require.NoError(t, err)
		assert.Equal(t, "debug", conf.LogLevel)
		assert.Equal(t, "8080", conf.HTTPPort)
		assert.Equal(t, "redis:6380", conf.Redis.GetRedisAddr())
		assert.Equal(t, 5, conf.Game.BoardSize)
		assert.Equal(t, 250*time.Millisecond, conf.Game.RobotDelay)
		assert.Equal(t, 100*time.Millisecond, conf.Game.ManualRobotDelay)
		assert.Equal(t, int64(20), conf.Results.Limit)

		control, err := conf.Game.PlayerControl()
		require.NoError(t, err)
		assert.Equal(t, entity.PlayerControl{O: entity.Robot}, control)
	})

	t.Run("Fills in defaults", func(t *testing.T) {
		path := writeConfig(t, "log-level: info\n")

		conf, err := Load(path)

		require.NoError(t, err)
		assert.Equal(t, "9090", conf.HTTPPort)
		assert.Equal(t, "localhost:6379", conf.Redis.GetRedisAddr())
		assert.Equal(t, 7, conf.Game.BoardSize)
		assert.Equal(t, 800*time.Millisecond, conf.Game.RobotDelay)
		assert.Equal(t, 300*time.Millisecond, conf.Game.ManualRobotDelay)
		assert.Equal(t, int64(100), conf.Results.Limit)
	})

	t.Run("Environment overrides the file", func(t *testing.T) {
		t.Setenv("GAME_BOARD_SIZE", "9")
		path := writeConfig(t, "game:\n  board-size: 4\n")

		conf, err := Load(path)

		require.NoError(t, err)
		assert.Equal(t, 9, conf.Game.BoardSize)
	})

	t.Run("Rejects a board that is too small", func(t *testing.T) {
		path := writeConfig(t, "game:\n  board-size: 2\n")

		_, err := Load(path)

		assert.ErrorIs(t, err, apperror.ErrInvalidConfiguration)
	})

	t.Run("Rejects an unknown controller", func(t *testing.T) {
		path := writeConfig(t, "game:\n  player-x: alien\n")

		_, err := Load(path)

		assert.ErrorIs(t, err, apperror.ErrInvalidConfiguration)
		assert.ErrorIs(t, err, entity.ErrUnknownController)
	})

	t.Run("Missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))

		assert.Error(t, err)
	})
}
