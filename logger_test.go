package pgcast_test

import (
	"testing"

	"github.com/pgcast/pgcast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogLevelFromString(t *testing.T) {
	for _, level := range []pgcast.LogLevel{
		pgcast.LogLevelTrace,
		pgcast.LogLevelDebug,
		pgcast.LogLevelInfo,
		pgcast.LogLevelWarn,
		pgcast.LogLevelError,
		pgcast.LogLevelNone,
	} {
		got, err := pgcast.LogLevelFromString(level.String())
		require.NoError(t, err)
		assert.Equal(t, level, got)
	}

	_, err := pgcast.LogLevelFromString("loud")
	require.Error(t, err)
}
