package logging

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerWithPath(t *testing.T) {
	t.Parallel()

	t.Run("defaults to info on bad level", func(t *testing.T) {
		t.Parallel()
		l := NewLogger(Config{Level: "loud"})
		assert.Equal(t, zerolog.InfoLevel, l.GetLevel())
	})

	t.Run("file output", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "logs", "stockdesk.log")
		result := NewLoggerWithPath(Config{Level: "debug", Output: OutputFile, File: path})
		defer func() { require.NoError(t, result.Close()) }()

		assert.True(t, result.UsingFile)
		assert.False(t, result.FallbackUsed)
		assert.Equal(t, path, result.FilePath)
		assert.Equal(t, zerolog.DebugLevel, result.Logger.GetLevel())
	})

	t.Run("file output without path falls back", func(t *testing.T) {
		t.Parallel()
		result := NewLoggerWithPath(Config{Output: OutputFile})
		assert.False(t, result.UsingFile)
		assert.True(t, result.FallbackUsed)
		assert.NotEmpty(t, result.FallbackReason)
		assert.NoError(t, result.Close())
	})
}

func TestFromContext(t *testing.T) {
	t.Parallel()

	t.Run("no logger is disabled", func(t *testing.T) {
		t.Parallel()
		l := FromContext(context.Background())
		assert.Equal(t, zerolog.Disabled, l.GetLevel())
	})

	t.Run("trace id is attached", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		base := zerolog.New(&buf)
		ctx := base.WithContext(context.Background())
		ctx = ContextWithTraceID(ctx, "trace-1")

		FromContext(ctx).Info().Msg("hello")
		assert.Contains(t, buf.String(), `"trace_id":"trace-1"`)
	})
}

func TestTraceIDs(t *testing.T) {
	t.Parallel()

	assert.Empty(t, TraceIDFromContext(context.Background()))

	generated := GetOrGenerateTraceID(context.Background())
	assert.Len(t, generated, 26)

	ctx := ContextWithTraceID(context.Background(), "fixed")
	assert.Equal(t, "fixed", GetOrGenerateTraceID(ctx))
	assert.NotEqual(t, NewID(), NewID())
}

func TestComponentLogger(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	l := ComponentLogger(zerolog.New(&buf), "cart")
	l.Info().Msg("x")
	assert.Contains(t, buf.String(), `"component":"cart"`)
}
