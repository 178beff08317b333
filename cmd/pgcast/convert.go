package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/apd"
	"github.com/gofrs/uuid"
	"github.com/pgcast/pgcast"
	pgcastuuid "github.com/pgcast/pgcast/ext/gofrs-uuid"
	numeric "github.com/pgcast/pgcast/ext/shopspring-numeric"
	"github.com/shopspring/decimal"
)

// rangeElements maps the supported range types to their bound type.
var rangeElements = map[string]string{
	"int4range": "int4",
	"int8range": "int8",
	"numrange":  "numeric",
	"tsrange":   "timestamp",
	"tstzrange": "timestamptz",
	"daterange": "date",
}

type converter struct {
	m        *pgcast.Map
	escaping pgcast.ArrayEscaping
	decimal  bool
}

func newConverter(cfg config, logger pgcast.Logger) *converter {
	m := pgcast.NewMap()
	m.Logger = logger
	m.LogLevel = cfg.logLevel()
	m.Escaping = cfg.escaping()

	m.RegisterType(&pgcast.Type{Name: "hstore", OID: cfg.HstoreOID, Typer: pgcast.HstoreTyper})
	m.RegisterType(&pgcast.Type{Name: "_hstore", OID: cfg.HstoreArrayOID, ElementOID: cfg.HstoreOID})
	pgcastuuid.Register(m)

	if cfg.Numeric == "decimal" {
		numeric.Register(m)
	}

	if cfg.UseNumber {
		typer := func(s string) (any, error) {
			return pgcast.JSONCodec{UseNumber: true}.Decode(pgcast.Raw[any](s))
		}
		m.RegisterType(&pgcast.Type{Name: "json", OID: pgcast.JSONOID, Typer: typer})
		m.RegisterType(&pgcast.Type{Name: "jsonb", OID: pgcast.JSONBOID, Typer: typer})
	}

	return &converter{
		m:        m,
		escaping: cfg.escaping(),
		decimal:  cfg.Numeric == "decimal",
	}
}

// typeName accepts both "int4[]" and "_int4" for array types.
func typeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if strings.HasSuffix(name, "[]") {
		return "_" + strings.TrimSuffix(name, "[]")
	}
	return name
}

// decode converts wire text of the named type into a value that every output
// format can represent.
func (c *converter) decode(ctx context.Context, name, text string) (any, error) {
	name = typeName(name)
	if _, ok := rangeElements[name]; ok {
		return nil, fmt.Errorf("%s can only be encoded", name)
	}

	t, ok := c.m.TypeForName(name)
	if !ok {
		return nil, fmt.Errorf("unsupported type %q", name)
	}

	v, err := c.m.DecodeText(ctx, t.OID, []byte(text))
	if err != nil {
		return nil, err
	}
	return display(v), nil
}

func display(v any) any {
	switch v := v.(type) {
	case nil:
		return nil
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = display(elem)
		}
		return out
	case float32:
		return displayFloat(float64(v))
	case float64:
		return displayFloat(v)
	case pgcast.Point:
		if !v.Valid {
			return nil
		}
		return map[string]any{"x": displayFloat(v.P.X), "y": displayFloat(v.P.Y)}
	case pgcast.Timestamp:
		if !v.Valid {
			return nil
		}
		if v.InfinityModifier != pgcast.None {
			return v.InfinityModifier.String()
		}
		return v.Time.Format(time.RFC3339Nano)
	case pgcast.Varbit:
		if !v.Valid {
			return nil
		}
		return v.String()
	case pgcast.Inet:
		if s, ok := pgcast.FormatInet(v); ok {
			return s
		}
		return nil
	case pgcast.Hstore:
		out := make(map[string]any, len(v))
		for _, p := range v {
			if p.Value == nil {
				out[p.Key] = nil
			} else {
				out[p.Key] = *p.Value
			}
		}
		return out
	case *apd.Decimal:
		return v.Text('f')
	case decimal.Decimal:
		return v.String()
	case uuid.UUID:
		return v.String()
	}
	return v
}

// Non-finite floats have no JSON form and are written as PostgreSQL spells
// them.
func displayFloat(f float64) any {
	switch {
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case math.IsNaN(f):
		return "NaN"
	}
	return f
}

// encode converts a JSON description of a value into wire text of the named
// type.
func (c *converter) encode(name, jsonText string) (string, error) {
	dec := json.NewDecoder(strings.NewReader(jsonText))
	dec.UseNumber()

	var src any
	if err := dec.Decode(&src); err != nil {
		return "", fmt.Errorf("parse value: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("parse value: unexpected data after top-level value")
	}

	name = typeName(name)

	if elemName, ok := rangeElements[name]; ok {
		return c.encodeRange(elemName, src)
	}

	if strings.HasPrefix(name, "_") {
		seq, ok := src.([]any)
		if !ok {
			return "", fmt.Errorf("%s value must be a JSON array", name)
		}
		elems, err := c.elements(name[1:], seq)
		if err != nil {
			return "", err
		}
		buf, err := pgcast.ArrayCodec{Escaping: c.escaping}.AppendArray(nil, elems, elementFormatter)
		if err != nil {
			return "", err
		}
		return string(buf), nil
	}

	if src == nil {
		return "", fmt.Errorf("null has no text form")
	}

	v, err := c.value(name, src)
	if err != nil {
		return "", err
	}
	s, _, err := elementFormatter(v)
	return s, err
}

func (c *converter) encodeRange(elemName string, src any) (string, error) {
	obj, ok := src.(map[string]any)
	if !ok {
		return "", fmt.Errorf(`range value must be an object with "lower", "upper" and "exclude_upper"`)
	}

	var bounds [2]any
	for i, key := range []string{"lower", "upper"} {
		if obj[key] == nil {
			continue
		}
		v, err := c.value(elemName, obj[key])
		if err != nil {
			return "", err
		}
		bounds[i] = v
	}

	excludeUpper, _ := obj["exclude_upper"].(bool)
	return pgcast.FormatRange(pgcast.NewRange(bounds[0], bounds[1], excludeUpper), boundFormatter)
}

func (c *converter) elements(elemName string, seq []any) ([]any, error) {
	out := make([]any, len(seq))
	for i, src := range seq {
		switch src := src.(type) {
		case nil:
		case []any:
			nested, err := c.elements(elemName, src)
			if err != nil {
				return nil, err
			}
			out[i] = nested
		default:
			v, err := c.value(elemName, src)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
	}
	return out, nil
}

// value converts one decoded JSON value to the Go type used for name.
func (c *converter) value(name string, src any) (any, error) {
	switch name {
	case "bool":
		if b, ok := src.(bool); ok {
			return b, nil
		}
	case "int2", "int4", "int8":
		if n, ok := src.(json.Number); ok {
			bitSize, _ := strconv.Atoi(name[3:])
			i, err := strconv.ParseInt(n.String(), 10, bitSize*8)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			return i, nil
		}
	case "float4", "float8":
		switch src := src.(type) {
		case json.Number:
			return src.Float64()
		case string:
			return strconv.ParseFloat(src, 64)
		}
	case "numeric":
		s, ok := numberText(src)
		if !ok {
			break
		}
		if c.decimal {
			return numeric.Typer(s)
		}
		return pgcast.NumericTyper(s)
	case "text", "varchar":
		if s, ok := src.(string); ok {
			return s, nil
		}
	case "json", "jsonb":
		// Strings would pass through AppendText as JSON text.
		if s, ok := src.(string); ok {
			buf, err := json.Marshal(s)
			return string(buf), err
		}
		buf, err := pgcast.JSONCodec{}.AppendText(nil, src)
		if err != nil {
			return nil, err
		}
		return string(buf), nil
	case "point":
		switch src := src.(type) {
		case string:
			return pgcast.PointCodec{}.Decode(pgcast.Raw[pgcast.Point](src))
		case map[string]any:
			x, xok := src["x"].(json.Number)
			y, yok := src["y"].(json.Number)
			if !xok || !yok {
				break
			}
			xf, err := x.Float64()
			if err != nil {
				return nil, err
			}
			yf, err := y.Float64()
			if err != nil {
				return nil, err
			}
			return pgcast.Point{P: pgcast.Vec2{X: xf, Y: yf}, Valid: true}, nil
		}
	case "timestamp", "timestamptz", "date":
		if s, ok := src.(string); ok {
			return pgcast.TimestampCodec{}.Decode(pgcast.Raw[pgcast.Timestamp](s))
		}
	case "varbit", "bit":
		if s, ok := src.(string); ok {
			return pgcast.VarbitCodec{}.Decode(pgcast.Raw[pgcast.Varbit](s))
		}
	case "inet", "cidr":
		if s, ok := src.(string); ok {
			inet := pgcast.ParseInet(s)
			if !inet.Valid {
				return nil, fmt.Errorf("invalid network address %q", s)
			}
			return inet, nil
		}
	case "hstore":
		if obj, ok := src.(map[string]any); ok {
			return hstoreFromJSON(obj)
		}
	case "uuid":
		if s, ok := src.(string); ok {
			return pgcastuuid.Typer(s)
		}
	default:
		return nil, fmt.Errorf("unsupported type %q", name)
	}

	return nil, fmt.Errorf("cannot use %v (%T) as %s", src, src, name)
}

func numberText(src any) (string, bool) {
	switch src := src.(type) {
	case json.Number:
		return src.String(), true
	case string:
		return src, true
	}
	return "", false
}

func hstoreFromJSON(obj map[string]any) (pgcast.Hstore, error) {
	m := make(map[string]*string, len(obj))
	for k, v := range obj {
		switch v := v.(type) {
		case nil:
			m[k] = nil
		case string:
			m[k] = &v
		default:
			return nil, fmt.Errorf("hstore value for %q must be a string or null", k)
		}
	}
	return pgcast.HstoreFromMap(m), nil
}

func elementFormatter(v any) (string, pgcast.ElementFormat, error) {
	switch v.(type) {
	case uuid.UUID, uuid.NullUUID:
		return pgcastuuid.ElementFormatter(v)
	}
	return numeric.ElementFormatter(v)
}

func boundFormatter(v any) (string, error) {
	s, format, err := elementFormatter(v)
	if err != nil {
		return "", err
	}
	if format == pgcast.AsNull {
		return "", fmt.Errorf("range bound cannot be NULL")
	}
	return s, nil
}
