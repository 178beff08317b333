package pgcast_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/cockroachdb/apd"
	"github.com/pgcast/pgcast"
	"github.com/pgcast/pgcast/log/testingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type logEntry struct {
	level pgcast.LogLevel
	msg   string
	data  map[string]any
}

func captureLogger(entries *[]logEntry) pgcast.Logger {
	return pgcast.LoggerFunc(func(ctx context.Context, level pgcast.LogLevel, msg string, data map[string]any) {
		*entries = append(*entries, logEntry{level: level, msg: msg, data: data})
	})
}

func TestMapDecodeTextScalars(t *testing.T) {
	m := pgcast.NewMap()
	ctx := context.Background()

	tests := []struct {
		oid  uint32
		src  string
		want any
	}{
		{pgcast.BoolOID, "t", true},
		{pgcast.Int2OID, "-12", int16(-12)},
		{pgcast.Int4OID, "42", int32(42)},
		{pgcast.Int8OID, "9000000000", int64(9000000000)},
		{pgcast.Float4OID, "1.5", float32(1.5)},
		{pgcast.Float8OID, "-Infinity", math.Inf(-1)},
		{pgcast.TextOID, "hello", "hello"},
		{pgcast.JSONBOID, `{"a":1}`, map[string]any{"a": 1.0}},
		{pgcast.PointOID, "(1,2)", pgcast.Point{P: pgcast.Vec2{1, 2}, Valid: true}},
		{pgcast.TimestamptzOID, "infinity", pgcast.Timestamp{InfinityModifier: pgcast.Infinity, Valid: true}},
	}

	for _, tt := range tests {
		got, err := m.DecodeText(ctx, tt.oid, []byte(tt.src))
		require.NoErrorf(t, err, "%d %s", tt.oid, tt.src)
		assert.Equalf(t, tt.want, got, "%d %s", tt.oid, tt.src)
	}
}

func TestMapDecodeTextNumeric(t *testing.T) {
	got, err := pgcast.NewMap().DecodeText(context.Background(), pgcast.NumericOID, []byte("1.50"))
	require.NoError(t, err)
	d, ok := got.(*apd.Decimal)
	require.True(t, ok)
	assert.Equal(t, "1.50", d.Text('f'))
}

func TestMapDecodeTextBCDate(t *testing.T) {
	got, err := pgcast.NewMap().DecodeText(context.Background(), pgcast.DateOID, []byte("0044-03-15 BC"))
	require.NoError(t, err)
	ts := got.(pgcast.Timestamp)
	assert.Equal(t, -44, ts.Time.Year())
	assert.Equal(t, time.March, ts.Time.Month())
}

func TestMapDecodeTextArrays(t *testing.T) {
	m := pgcast.NewMap()
	ctx := context.Background()

	got, err := m.DecodeText(ctx, pgcast.Int4ArrayOID, []byte("{1,2,NULL}"))
	require.NoError(t, err)
	assert.Equal(t, []any{int32(1), int32(2), nil}, got)

	got, err = m.DecodeText(ctx, pgcast.TextArrayOID, []byte(`{"a\\b","NULL",NULL}`))
	require.NoError(t, err)
	assert.Equal(t, []any{`a\b`, "NULL", nil}, got)

	got, err = m.DecodeText(ctx, pgcast.PointArrayOID, []byte(`{"(1,2)","(3,4)"}`))
	require.NoError(t, err)
	assert.Equal(t, []any{
		pgcast.Point{P: pgcast.Vec2{1, 2}, Valid: true},
		pgcast.Point{P: pgcast.Vec2{3, 4}, Valid: true},
	}, got)

	got, err = m.DecodeText(ctx, pgcast.VarbitArrayOID, []byte(`{101,0x3}`))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "101", got.([]any)[0].(pgcast.Varbit).String())
	assert.Equal(t, "11", got.([]any)[1].(pgcast.Varbit).String())
}

func TestMapDecodeTextNull(t *testing.T) {
	got, err := pgcast.NewMap().DecodeText(context.Background(), pgcast.Int4OID, nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMapDecodeTextUnknownOID(t *testing.T) {
	_, err := pgcast.NewMap().DecodeText(context.Background(), 424242, []byte("x"))
	require.Error(t, err)
}

func TestMapDecodeTextLogsFailure(t *testing.T) {
	var entries []logEntry
	m := pgcast.NewMap()
	m.Logger = captureLogger(&entries)

	_, err := m.DecodeText(context.Background(), pgcast.Int4OID, []byte("forty-two"))
	var pe *pgcast.ParseError
	require.ErrorAs(t, err, &pe)

	require.Len(t, entries, 1)
	assert.Equal(t, pgcast.LogLevelError, entries[0].level)
	assert.Equal(t, "decode failed", entries[0].msg)
	assert.Equal(t, uint32(pgcast.Int4OID), entries[0].data["oid"])
	assert.Equal(t, "forty-two", entries[0].data["text"])
}

func TestMapInvalidInetIsNull(t *testing.T) {
	var entries []logEntry
	m := pgcast.NewMap()
	m.Logger = captureLogger(&entries)
	ctx := context.Background()

	got, err := m.DecodeText(ctx, pgcast.InetArrayOID, []byte("{10.1.2.3/8,garbage}"))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "10.0.0.0/8", got.([]any)[0].(pgcast.Inet).String())
	assert.Nil(t, got.([]any)[1])
	assert.Empty(t, entries, "debug messages are below the default level")

	m.LogLevel = pgcast.LogLevelDebug
	got, err = m.DecodeText(ctx, pgcast.InetOID, []byte("garbage"))
	require.NoError(t, err)
	assert.Nil(t, got)
	require.Len(t, entries, 1)
	assert.Equal(t, pgcast.LogLevelDebug, entries[0].level)
	assert.Equal(t, "inet", entries[0].data["type"])
}

func TestMapRegisterHstore(t *testing.T) {
	const hstoreOID, hstoreArrayOID = 16400, 16405

	m := pgcast.NewMap()
	m.Logger = testingadapter.NewLogger(t)
	m.LogLevel = pgcast.LogLevelTrace
	m.RegisterType(&pgcast.Type{Name: "hstore", OID: hstoreOID, Typer: pgcast.HstoreTyper})
	m.RegisterType(&pgcast.Type{Name: "_hstore", OID: hstoreArrayOID, ElementOID: hstoreOID})

	h := pgcast.Hstore{{Key: "a", Value: stringPtr(`b"c`)}, {Key: "n", Value: nil}}
	text := `{` + string(pgcast.AppendHstore(nil, h, true)) + `,NULL}`

	got, err := m.DecodeText(context.Background(), hstoreArrayOID, []byte(text))
	require.NoError(t, err)
	assert.Equal(t, []any{h, nil}, got)

	typ, ok := m.TypeForName("_hstore")
	require.True(t, ok)
	assert.EqualValues(t, hstoreOID, typ.ElementOID)
}

func TestMapTypeLookup(t *testing.T) {
	m := pgcast.NewMap()

	typ, ok := m.TypeForOID(pgcast.Int4ArrayOID)
	require.True(t, ok)
	assert.Equal(t, "_int4", typ.Name)
	assert.EqualValues(t, pgcast.Int4OID, typ.ElementOID)

	typ, ok = m.TypeForName("cidr")
	require.True(t, ok)
	assert.EqualValues(t, pgcast.CIDROID, typ.OID)

	_, ok = m.TypeForName("nope")
	assert.False(t, ok)
}

func TestMapTypeWithoutTyper(t *testing.T) {
	m := pgcast.NewMap()
	m.RegisterType(&pgcast.Type{Name: "opaque", OID: 99999})

	_, err := m.Typer(context.Background(), 99999)
	require.Error(t, err)
}
