package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseFormat(t *testing.T) {
	t.Parallel()

	f, err := ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("logfmt")
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	t.Parallel()

	for _, opts := range []Options{{}, {Format: FormatJSON}, {Debug: true, Format: FormatConsole}} {
		l, err := New(opts)
		require.NoError(t, err)
		assert.Equal(t, opts.Debug, l.Core().Enabled(zap.DebugLevel))
	}
}

func TestNewLogr_Verbosity(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.DebugLevel)
	log := NewLogr(zap.New(core))

	log.Info("stage started", "stage", "Build")
	log.V(1).Info("running command")
	log.V(2).Info("dropped")

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "stage started", logs.All()[0].Message)
	assert.Equal(t, "Build", logs.All()[0].ContextMap()["stage"])
}
