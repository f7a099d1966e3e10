package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_Defaults(t *testing.T) {
	cfg, err := Init("/non/existent/path/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Board.Height)
	assert.Equal(t, 25, cfg.Board.Width)
	assert.False(t, cfg.Network.Enabled)
	assert.True(t, cfg.Network.RelayAdjacencyRebroadcast)
	assert.Equal(t, 5, cfg.Turn.MaxMovesPerTurn)
	assert.Equal(t, 1, cfg.Turn.MaxAttacksPerTurn)
	assert.True(t, cfg.Turn.RetreatingUnitsCanSupport)
}

func TestInit_FileOverridesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.yaml")
	content := `
board:
  height: 30
  width: 30
network:
  enabled: true
turn:
  max_moves_per_turn: 3
`
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0644))

	cfg, err := Init(configFile)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Board.Height)
	assert.Equal(t, 30, cfg.Board.Width)
	assert.True(t, cfg.Network.Enabled)
	assert.Equal(t, 3, cfg.Turn.MaxMovesPerTurn)
	// Untouched defaults survive the partial override.
	assert.True(t, cfg.Network.RelayAdjacencyRebroadcast)
}

func TestInit_EnvironmentOverridesDefaults(t *testing.T) {
	t.Setenv("KRIEGSPIEL_BOARD_HEIGHT", "40")

	cfg, err := Init("")
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.Board.Height)
}

func TestInit_RejectsInvalidBoardDimensions(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("board:\n  height: 0\n  width: 25\n"), 0644))

	_, err := Init(configFile)
	assert.Error(t, err)
}

func TestNewWatcher_RequiresPath(t *testing.T) {
	_, _, err := NewWatcher("")
	assert.Error(t, err)
}

func TestNewWatcher_LoadsInitialConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("turn:\n  max_moves_per_turn: 7\n"), 0644))

	w, cfg, err := NewWatcher(configFile)
	require.NoError(t, err)
	require.NotNil(t, w)
	assert.Equal(t, 7, cfg.Turn.MaxMovesPerTurn)
}
