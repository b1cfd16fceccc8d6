package infrastructure

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunIDContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRunID(ctx))

	ctx = WithRunID(ctx, "abc")
	assert.Equal(t, "abc", GetRunID(ctx))

	// an existing run ID is kept
	assert.Equal(t, "abc", GetRunID(EnsureRunID(ctx)))
}

func TestEnsureRunID_Generates(t *testing.T) {
	ctx := EnsureRunID(context.Background())

	runID := GetRunID(ctx)
	require.NotEmpty(t, runID)
	_, err := uuid.Parse(runID)
	assert.NoError(t, err)
}

func TestGenerateRunID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateRunID()
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	assert.Same(t, logger, WithError(logger, nil))

	WithError(logger, errors.New("disk full")).Info("write failed")
	assert.Contains(t, buf.String(), `"error":"disk full"`)
}
