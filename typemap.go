package pgcast

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cockroachdb/apd"
)

// Type associates a PostgreSQL type with the function that converts its text
// to a Go value. Array types set ElementOID instead of Typer.
type Type struct {
	Name       string
	OID        uint32
	Typer      ElementTyper
	ElementOID uint32
}

// Map is the OID to type registry used to type array elements and single
// values. A Map must not be modified once it is shared between goroutines.
type Map struct {
	oidToType  map[uint32]*Type
	nameToType map[string]*Type

	// Logger receives decode failures and recovered invalid addresses. May be
	// nil.
	Logger Logger

	// LogLevel is the most verbose level passed to Logger. Zero means
	// LogLevelInfo.
	LogLevel LogLevel

	// Escaping is used when decoding arrays. Text from the server uses
	// StandardEscaping, which is the default for NewMap.
	Escaping ArrayEscaping
}

// NewMap returns a Map with the built-in types registered. Extension types
// such as hstore have no fixed OID and must be registered by the caller, e.g.
// with HstoreTyper.
func NewMap() *Map {
	m := &Map{
		oidToType:  make(map[uint32]*Type),
		nameToType: make(map[string]*Type),
		Escaping:   StandardEscaping,
	}

	m.RegisterType(&Type{Name: "bool", OID: BoolOID, Typer: boolTyper})
	m.RegisterType(&Type{Name: "int2", OID: Int2OID, Typer: intTyper(16)})
	m.RegisterType(&Type{Name: "int4", OID: Int4OID, Typer: intTyper(32)})
	m.RegisterType(&Type{Name: "int8", OID: Int8OID, Typer: intTyper(64)})
	m.RegisterType(&Type{Name: "float4", OID: Float4OID, Typer: floatTyper(32)})
	m.RegisterType(&Type{Name: "float8", OID: Float8OID, Typer: floatTyper(64)})
	m.RegisterType(&Type{Name: "numeric", OID: NumericOID, Typer: NumericTyper})
	m.RegisterType(&Type{Name: "text", OID: TextOID, Typer: TextTyper})
	m.RegisterType(&Type{Name: "varchar", OID: VarcharOID, Typer: TextTyper})
	m.RegisterType(&Type{Name: "json", OID: JSONOID, Typer: jsonTyper})
	m.RegisterType(&Type{Name: "jsonb", OID: JSONBOID, Typer: jsonTyper})
	m.RegisterType(&Type{Name: "point", OID: PointOID, Typer: pointTyper})
	m.RegisterType(&Type{Name: "inet", OID: InetOID, Typer: inetTyper})
	m.RegisterType(&Type{Name: "cidr", OID: CIDROID, Typer: inetTyper})
	m.RegisterType(&Type{Name: "bit", OID: BitOID, Typer: varbitTyper})
	m.RegisterType(&Type{Name: "varbit", OID: VarbitOID, Typer: varbitTyper})
	m.RegisterType(&Type{Name: "date", OID: DateOID, Typer: timestampTyper})
	m.RegisterType(&Type{Name: "timestamp", OID: TimestampOID, Typer: timestampTyper})
	m.RegisterType(&Type{Name: "timestamptz", OID: TimestamptzOID, Typer: timestampTyper})

	for _, at := range []struct {
		name       string
		oid        uint32
		elementOID uint32
	}{
		{"_bool", BoolArrayOID, BoolOID},
		{"_int2", Int2ArrayOID, Int2OID},
		{"_int4", Int4ArrayOID, Int4OID},
		{"_int8", Int8ArrayOID, Int8OID},
		{"_float4", Float4ArrayOID, Float4OID},
		{"_float8", Float8ArrayOID, Float8OID},
		{"_numeric", NumericArrayOID, NumericOID},
		{"_text", TextArrayOID, TextOID},
		{"_varchar", VarcharArrayOID, VarcharOID},
		{"_json", JSONArrayOID, JSONOID},
		{"_jsonb", JSONBArrayOID, JSONBOID},
		{"_point", PointArrayOID, PointOID},
		{"_inet", InetArrayOID, InetOID},
		{"_cidr", CIDRArrayOID, CIDROID},
		{"_varbit", VarbitArrayOID, VarbitOID},
		{"_date", DateArrayOID, DateOID},
		{"_timestamp", TimestampArrayOID, TimestampOID},
		{"_timestamptz", TimestamptzArrayOID, TimestamptzOID},
	} {
		m.RegisterType(&Type{Name: at.name, OID: at.oid, ElementOID: at.elementOID})
	}

	return m
}

// RegisterType registers t, replacing any type with the same OID or name.
func (m *Map) RegisterType(t *Type) {
	m.oidToType[t.OID] = t
	m.nameToType[t.Name] = t
}

func (m *Map) TypeForOID(oid uint32) (*Type, bool) {
	t, ok := m.oidToType[oid]
	return t, ok
}

func (m *Map) TypeForName(name string) (*Type, bool) {
	t, ok := m.nameToType[name]
	return t, ok
}

// Typer returns the element typer for oid. Invalid network addresses decoded
// through it are logged and returned as nil.
func (m *Map) Typer(ctx context.Context, oid uint32) (ElementTyper, error) {
	t, ok := m.oidToType[oid]
	if !ok {
		return nil, fmt.Errorf("unknown oid %d", oid)
	}

	if t.Typer == nil {
		if t.ElementOID == 0 {
			return nil, fmt.Errorf("type %s has no typer", t.Name)
		}
		return func(s string) (any, error) {
			return m.DecodeArray(ctx, t.ElementOID, s)
		}, nil
	}

	return func(s string) (any, error) {
		v, err := t.Typer(s)
		if err != nil {
			return nil, err
		}
		if inet, ok := v.(Inet); ok && !inet.Valid {
			m.log(ctx, LogLevelDebug, "invalid network address decoded as NULL", map[string]any{"type": t.Name, "text": logText(s)})
			return nil, nil
		}
		return v, nil
	}, nil
}

// DecodeText converts the text form of a value of type oid. Array types are
// decoded into []any. A nil src is SQL NULL and yields nil.
func (m *Map) DecodeText(ctx context.Context, oid uint32, src []byte) (any, error) {
	if src == nil {
		return nil, nil
	}

	typer, err := m.Typer(ctx, oid)
	if err != nil {
		return nil, err
	}

	v, err := typer(string(src))
	if err != nil {
		m.log(ctx, LogLevelError, "decode failed", map[string]any{"oid": oid, "text": logText(string(src)), "err": err})
		return nil, err
	}
	return v, nil
}

// DecodeArray decodes array text whose elements have type elementOID.
func (m *Map) DecodeArray(ctx context.Context, elementOID uint32, s string) ([]any, error) {
	typer, err := m.Typer(ctx, elementOID)
	if err != nil {
		return nil, err
	}

	return ArrayCodec{Escaping: m.Escaping}.Decode(Raw[[]any](s), typer)
}

func (m *Map) shouldLog(level LogLevel) bool {
	if m.Logger == nil {
		return false
	}
	threshold := m.LogLevel
	if threshold == 0 {
		threshold = LogLevelInfo
	}
	return threshold >= level
}

func (m *Map) log(ctx context.Context, level LogLevel, msg string, data map[string]any) {
	if m.shouldLog(level) {
		m.Logger.Log(ctx, level, msg, data)
	}
}

// TextTyper returns the text unchanged.
func TextTyper(s string) (any, error) {
	return s, nil
}

// NumericTyper decodes numeric text into an *apd.Decimal.
func NumericTyper(s string) (any, error) {
	d, _, err := apd.NewFromString(s)
	if err != nil {
		return nil, newParseError("numeric", s, err)
	}
	return d, nil
}

// HstoreTyper decodes hstore text. Register it for the hstore OID of the
// connected database.
func HstoreTyper(s string) (any, error) {
	return ParseHstore(s)
}

func boolTyper(s string) (any, error) {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil, newParseError("bool", s, err)
	}
	return b, nil
}

func intTyper(bitSize int) ElementTyper {
	name := "int" + strconv.Itoa(bitSize/8)
	return func(s string) (any, error) {
		n, err := strconv.ParseInt(s, 10, bitSize)
		if err != nil {
			return nil, newParseError(name, s, err)
		}
		switch bitSize {
		case 16:
			return int16(n), nil
		case 32:
			return int32(n), nil
		default:
			return n, nil
		}
	}
}

func floatTyper(bitSize int) ElementTyper {
	name := "float" + strconv.Itoa(bitSize/8)
	return func(s string) (any, error) {
		f, err := strconv.ParseFloat(s, bitSize)
		if err != nil {
			return nil, newParseError(name, s, err)
		}
		if bitSize == 32 {
			return float32(f), nil
		}
		return f, nil
	}
}

func jsonTyper(s string) (any, error) {
	return JSONCodec{}.Decode(Raw[any](s))
}

func pointTyper(s string) (any, error) {
	return PointCodec{}.Decode(Raw[Point](s))
}

func inetTyper(s string) (any, error) {
	return ParseInet(s), nil
}

func varbitTyper(s string) (any, error) {
	return VarbitCodec{}.Decode(Raw[Varbit](s))
}

func timestampTyper(s string) (any, error) {
	return TimestampCodec{}.Decode(Raw[Timestamp](s))
}
