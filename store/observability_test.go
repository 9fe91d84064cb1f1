package store_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/arllen133/userforms/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, session := setupTestDB(t, store.WithLogger(logger), store.WithQueryLogging(true))
	require.NoError(t, store.NewRepository[gadget](session).Create(context.Background(), &gadget{Label: "logged"}))

	assert.Contains(t, buf.String(), "query executed")
	assert.Contains(t, buf.String(), "INSERT INTO gadgets")
}

func TestSlowQueryWarning(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	_, session := setupTestDB(t, store.WithLogger(logger), store.WithSlowQueryThreshold(time.Nanosecond))
	_, _ = store.NewRepository[gadget](session).Query().Find(context.Background())

	assert.Contains(t, buf.String(), "slow query")
	assert.NotContains(t, buf.String(), "SELECT", "statement text is only logged with query logging on")
}

func TestFailedQueryLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	_, session := setupTestDB(t, store.WithLogger(logger))
	_, err := session.Exec(context.Background(), "SELECT * FROM missing_table")
	require.Error(t, err)

	assert.Contains(t, buf.String(), "query failed")
}

func TestDefaultTracerAndMeter(t *testing.T) {
	_, session := setupTestDB(t, store.WithDefaultTracer(), store.WithDefaultMeter())
	repo := store.NewRepository[gadget](session)
	ctx := context.Background()

	g := &gadget{Label: "traced"}
	require.NoError(t, repo.Create(ctx, g))
	found, err := repo.FindOne(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "traced", found.Label)
}
