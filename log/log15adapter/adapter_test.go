package log15adapter_test

import (
	"context"
	"testing"

	"github.com/pgcast/pgcast"
	"github.com/pgcast/pgcast/log/log15adapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	log15 "gopkg.in/inconshreveable/log15.v2"
)

func TestLogger(t *testing.T) {
	var records []*log15.Record
	l := log15.New()
	l.SetHandler(log15.FuncHandler(func(r *log15.Record) error {
		records = append(records, r)
		return nil
	}))

	logger := log15adapter.NewLogger(l)
	logger.Log(context.Background(), pgcast.LogLevelWarn, "recovered", map[string]any{"type": "cidr"})

	require.Len(t, records, 1)
	assert.Equal(t, log15.LvlWarn, records[0].Lvl)
	assert.Equal(t, "recovered", records[0].Msg)
	assert.Equal(t, []any{"type", "cidr"}, records[0].Ctx)
}
