package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"supplyscore/internal/configuration"
	"supplyscore/internal/order"
	"supplyscore/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepareLogger(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	tests := []struct {
		level   string
		enabled slog.Level
		hidden  slog.Level
	}{
		{"debug", slog.LevelDebug, slog.LevelDebug - 1},
		{"WARNING", slog.LevelWarn, slog.LevelInfo},
		{"error", slog.LevelError, slog.LevelWarn},
		{"unknown", slog.LevelInfo, slog.LevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			prepareLogger(tt.level)
			assert.True(t, slog.Default().Enabled(context.Background(), tt.enabled))
			assert.False(t, slog.Default().Enabled(context.Background(), tt.hidden))
		})
	}
}

func TestNewStore(t *testing.T) {
	ctx := context.Background()

	s, err := newStore(ctx, configuration.StoreConfig{Type: configuration.StoreTypeFile, Path: filepath.Join(t.TempDir(), "m.json")})
	require.NoError(t, err)
	assert.IsType(t, &store.FileStore{}, s)

	s, err = newStore(ctx, configuration.StoreConfig{Type: configuration.StoreTypeMemory})
	require.NoError(t, err)
	assert.IsType(t, &store.MemoryStore{}, s)

	s, err = newStore(ctx, configuration.StoreConfig{
		Type:  configuration.StoreTypeSQLite,
		DSN:   filepath.Join(t.TempDir(), "scores.db"),
		Table: "model_artifacts",
	})
	require.NoError(t, err)
	assert.IsType(t, &store.SQLStore{}, s)
	require.NoError(t, s.(*store.SQLStore).Close())

	s, err = newStore(ctx, configuration.StoreConfig{Type: "redis"})
	assert.Error(t, err)
	assert.Nil(t, s)
}

func TestNewApplication(t *testing.T) {
	config := &configuration.AppConfig{
		Provider: configuration.ProviderConfig{URL: "http://localhost:3000/api/data-for-model"},
		Store:    configuration.StoreConfig{Type: configuration.StoreTypeMemory},
		Audit:    configuration.AuditConfig{File: filepath.Join(t.TempDir(), "audit.jsonl"), Size: 1, Amount: 1},
		History:  configuration.HistoryConfig{Length: 3},
	}

	app, err := newApplication(context.Background(), config)
	require.NoError(t, err)
	assert.NotNil(t, app.service)
	assert.Len(t, app.closers, 1)
	assert.NoError(t, app.Close())
}

func TestGenerateCommand(t *testing.T) {
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"generate", "--suppliers", "3", "--count", "12", "--seed", "7"})

	require.NoError(t, cmd.Execute())

	records, err := order.Decode(out.Bytes())
	require.NoError(t, err)
	assert.Len(t, records, 12)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &raw))
	assert.NotContains(t, raw[0], "is_late")
}

func TestGenerateCommand_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.json")
	cmd := newRootCommand()
	cmd.SetArgs([]string{"generate", "--suppliers", "2", "--count", "4", "-o", path})

	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	records, err := order.Decode(data)
	require.NoError(t, err)
	assert.Len(t, records, 4)
}

func TestGenerateCommand_InvalidFlags(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetArgs([]string{"generate", "--suppliers", "5", "--count", "2"})

	assert.Error(t, cmd.Execute())
}
