package logger_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/AtilaMoura/NIA/internal/config"
	"github.com/AtilaMoura/NIA/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	tests := []struct {
		name     string
		logLevel string
	}{
		{"debug level", "debug"},
		{"info level", "info"},
		{"warn level", "warn"},
		{"error level", "error"},
		{"invalid level falls back to info", "verbose"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			log, err := logger.Setup(config.ServerConfig{Port: 8080, LogLevel: tc.logLevel})
			require.NoError(t, err)
			require.NotNil(t, log)
		})
	}
}

func TestContextPropagation(t *testing.T) {
	t.Parallel()

	scoped := slog.New(slog.NewTextHandler(os.Stderr, nil)).With("request_id", "abc-123")

	t.Run("round-trips through the context", func(t *testing.T) {
		t.Parallel()

		ctx := logger.WithLogger(context.Background(), scoped)
		assert.Same(t, scoped, logger.FromContext(ctx))
		assert.Same(t, scoped, logger.FromContextOrDefault(ctx, nil))
	})

	t.Run("falls back to the default logger", func(t *testing.T) {
		t.Parallel()

		assert.NotNil(t, logger.FromContext(context.Background()))
	})

	t.Run("falls back to the provided default", func(t *testing.T) {
		t.Parallel()

		def := slog.New(slog.NewTextHandler(os.Stderr, nil))
		assert.Same(t, def, logger.FromContextOrDefault(context.Background(), def))
	})
}
