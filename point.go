package pgcast

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jackc/pgio"
)

type Vec2 struct {
	X float64
	Y float64
}

type Point struct {
	P     Vec2
	Valid bool
}

// FormatPoint returns p in the PostgreSQL point text format.
func FormatPoint(p Vec2) string {
	return string(appendPoint(nil, p))
}

func appendPoint(buf []byte, p Vec2) []byte {
	buf = append(buf, '(')
	buf = appendFloat(buf, p.X)
	buf = append(buf, ',')
	buf = appendFloat(buf, p.Y)
	return append(buf, ')')
}

// appendFloat writes the shortest text that parses back to f.
func appendFloat(buf []byte, f float64) []byte {
	switch {
	case math.IsInf(f, 1):
		return append(buf, "Infinity"...)
	case math.IsInf(f, -1):
		return append(buf, "-Infinity"...)
	case math.IsNaN(f):
		return append(buf, "NaN"...)
	}
	return strconv.AppendFloat(buf, f, 'g', -1, 64)
}

// ParsePointComponents parses the coordinates of point text. The surrounding
// parentheses are removed only when both are present. The number of
// components is not checked.
func ParsePointComponents(s string) ([]float64, error) {
	inner := s
	if len(inner) >= 2 && inner[0] == '(' && inner[len(inner)-1] == ')' {
		inner = inner[1 : len(inner)-1]
	}

	parts := strings.Split(inner, ",")
	coords := make([]float64, 0, len(parts))
	for _, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, newParseError("point", s, err)
		}
		coords = append(coords, f)
	}

	return coords, nil
}

type PointCodec struct{}

// AppendText appends the text form of p to buf. An invalid p appends nothing
// and returns nil.
func (PointCodec) AppendText(buf []byte, p Point) []byte {
	if !p.Valid {
		return nil
	}
	return appendPoint(buf, p.P)
}

// Decode parses raw point text. Decoded input is returned unchanged.
func (PointCodec) Decode(in Input[Point]) (Point, error) {
	switch in.Kind() {
	case InputNull:
		return Point{}, nil
	case InputTyped:
		p, _ := in.Value()
		return p, nil
	}

	s, _ := in.Text()
	coords, err := ParsePointComponents(s)
	if err != nil {
		return Point{}, err
	}
	if len(coords) != 2 {
		return Point{}, newParseError("point", s, fmt.Errorf("expected 2 coordinates, got %d", len(coords)))
	}

	return Point{P: Vec2{coords[0], coords[1]}, Valid: true}, nil
}

// AppendBinary appends the binary wire form of p: two big endian float8.
func (PointCodec) AppendBinary(buf []byte, p Point) []byte {
	if !p.Valid {
		return nil
	}
	buf = pgio.AppendUint64(buf, math.Float64bits(p.P.X))
	buf = pgio.AppendUint64(buf, math.Float64bits(p.P.Y))
	return buf
}

func (PointCodec) DecodeBinary(src []byte) (Point, error) {
	if src == nil {
		return Point{}, nil
	}

	if len(src) != 16 {
		return Point{}, fmt.Errorf("invalid length for point: %v", len(src))
	}

	x := binary.BigEndian.Uint64(src)
	y := binary.BigEndian.Uint64(src[8:])

	return Point{
		P:     Vec2{math.Float64frombits(x), math.Float64frombits(y)},
		Valid: true,
	}, nil
}

func (p Point) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(FormatPoint(p.P))
}

func (p *Point) UnmarshalJSON(b []byte) error {
	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	if s == nil {
		*p = Point{}
		return nil
	}

	decoded, err := PointCodec{}.Decode(Raw[Point](*s))
	if err != nil {
		return err
	}
	*p = decoded
	return nil
}
