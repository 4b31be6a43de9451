// Package logging_test provides unit tests for the Logger interface, its
// zap-backed implementation, the NopLogger, and the global default management.
package logging_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/turtacn/PatentFusion/internal/infrastructure/monitoring/logging"
)

// newObservedLogger builds a Logger that writes to an in-memory observer so
// tests can assert on emitted entries without touching stdout/stderr.
func newObservedLogger(t *testing.T, level zapcore.Level) (logging.Logger, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(level)
	return logging.NewLoggerFromCore(core), logs
}

// ─────────────────────────────────────────────────────────────────────────────
// Level routing
// ─────────────────────────────────────────────────────────────────────────────

func TestLogger_LevelRouting(t *testing.T) {
	t.Parallel()

	logger, logs := newObservedLogger(t, zapcore.DebugLevel)

	logger.Debug("d")
	logger.Info("i")
	logger.Warn("w")
	logger.Error("e")

	entries := logs.All()
	require.Len(t, entries, 4)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
}

func TestLogger_LevelFiltering(t *testing.T) {
	t.Parallel()

	logger, logs := newObservedLogger(t, zapcore.WarnLevel)

	logger.Debug("suppressed")
	logger.Info("suppressed")
	logger.Warn("kept")

	require.Len(t, logs.All(), 1)
	assert.Equal(t, "kept", logs.All()[0].Message)
}

// ─────────────────────────────────────────────────────────────────────────────
// Field conversion
// ─────────────────────────────────────────────────────────────────────────────

func TestLogger_TypedFields(t *testing.T) {
	t.Parallel()

	logger, logs := newObservedLogger(t, zapcore.InfoLevel)

	logger.Info("fusing batch",
		logging.String("batch", "0_3_1234"),
		logging.Int("patents", 42),
		logging.Int64("bytes", 1<<30),
		logging.Float64("memory_gb", 1.5),
		logging.Bool("merged", true),
		logging.Duration("elapsed", 2*time.Second),
	)

	require.Len(t, logs.All(), 1)
	ctx := logs.All()[0].ContextMap()
	assert.Equal(t, "0_3_1234", ctx["batch"])
	assert.Equal(t, int64(42), ctx["patents"])
	assert.Equal(t, int64(1<<30), ctx["bytes"])
	assert.Equal(t, 1.5, ctx["memory_gb"])
	assert.Equal(t, true, ctx["merged"])
	assert.Equal(t, 2*time.Second, ctx["elapsed"])
}

func TestErr_NilAndNonNil(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "error", logging.Err(nil).Key)
	assert.Equal(t, "<nil>", logging.Err(nil).Value)

	e := errors.New("boom")
	assert.Equal(t, "boom", logging.Err(e).Value)
}

// ─────────────────────────────────────────────────────────────────────────────
// With / Named
// ─────────────────────────────────────────────────────────────────────────────

func TestLogger_WithAddsPersistentFields(t *testing.T) {
	t.Parallel()

	logger, logs := newObservedLogger(t, zapcore.InfoLevel)

	child := logger.With(logging.Int("worker", 7))
	child.Info("first")
	child.Info("second")
	logger.Info("parent untouched")

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, int64(7), entries[0].ContextMap()["worker"])
	assert.Equal(t, int64(7), entries[1].ContextMap()["worker"])
	assert.NotContains(t, entries[2].ContextMap(), "worker")
}

func TestLogger_Named(t *testing.T) {
	t.Parallel()

	logger, logs := newObservedLogger(t, zapcore.InfoLevel)

	logger.Named("fusion").Named("merge").Info("x")

	require.Len(t, logs.All(), 1)
	assert.Equal(t, "fusion.merge", logs.All()[0].LoggerName)
}

// ─────────────────────────────────────────────────────────────────────────────
// Factory
// ─────────────────────────────────────────────────────────────────────────────

func TestNewLogger_DefaultsApplied(t *testing.T) {
	t.Parallel()

	logger, err := logging.NewLogger(logging.LogConfig{})
	require.NoError(t, err)
	require.NotNil(t, logger)
}

func TestNewLogger_InvalidOutputPath(t *testing.T) {
	t.Parallel()

	_, err := logging.NewLogger(logging.LogConfig{
		OutputPaths: []string{"/nonexistent-dir-xyz/patentfusion.log"},
	})
	assert.Error(t, err)
}

// ─────────────────────────────────────────────────────────────────────────────
// Nop logger and global default
// ─────────────────────────────────────────────────────────────────────────────

func TestNopLogger_AllMethodsAreSafe(t *testing.T) {
	t.Parallel()

	nop := logging.NewNopLogger()
	nop.Debug("x")
	nop.Info("x")
	nop.Warn("x")
	nop.Error("x")
	assert.NotNil(t, nop.With(logging.String("k", "v")))
	assert.NotNil(t, nop.Named("n"))
}

func TestSetDefault_And_Default(t *testing.T) {
	logger, logs := newObservedLogger(t, zapcore.InfoLevel)

	prev := logging.Default()
	defer logging.SetDefault(prev)

	logging.SetDefault(logger)
	logging.Default().Info("via default")

	require.Len(t, logs.All(), 1)
	assert.Equal(t, "via default", logs.All()[0].Message)
}

func TestSetDefault_IgnoresNil(t *testing.T) {
	prev := logging.Default()
	logging.SetDefault(nil)
	assert.Equal(t, prev, logging.Default())
}
