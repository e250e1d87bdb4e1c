package logging

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew_Development(t *testing.T) {
	t.Parallel()

	logger, err := New(true)
	require.NoError(t, err)
	require.NotNil(t, logger)
	logger.Debug("visible in development")
}

func TestNew_Production(t *testing.T) {
	t.Parallel()

	logger, err := New(false)
	require.NoError(t, err)
	require.NotNil(t, logger)
	require.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNewConfig(t *testing.T) {
	t.Parallel()

	dev := newConfig(true)
	require.Equal(t, "ts", dev.EncoderConfig.TimeKey)
	require.Equal(t, zap.DebugLevel, dev.Level.Level())

	prod := newConfig(false)
	require.Equal(t, "ts", prod.EncoderConfig.TimeKey)
	require.Equal(t, zap.InfoLevel, prod.Level.Level())
	require.Nil(t, prod.Sampling)
}
