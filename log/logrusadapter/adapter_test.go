package logrusadapter_test

import (
	"context"
	"testing"

	"github.com/pgcast/pgcast"
	"github.com/pgcast/pgcast/log/logrusadapter"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	l, hook := test.NewNullLogger()
	l.SetLevel(logrus.DebugLevel)
	logger := logrusadapter.NewLogger(l)

	logger.Log(context.Background(), pgcast.LogLevelError, "decode failed", map[string]any{"oid": uint32(600)})
	logger.Log(context.Background(), pgcast.LogLevelDebug, "debug", nil)

	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, logrus.ErrorLevel, entries[0].Level)
	assert.Equal(t, "decode failed", entries[0].Message)
	assert.Equal(t, uint32(600), entries[0].Data["oid"])
	assert.Equal(t, logrus.DebugLevel, entries[1].Level)
}
