package pgcast

import (
	"fmt"
	"math"
	"reflect"
	"strings"
)

// Range is a range whose lower bound is always inclusive. A bound that is nil
// or infinite in the matching direction is unbounded.
type Range[T any] struct {
	Lower        T
	Upper        T
	ExcludeUpper bool
	Valid        bool
}

func NewRange[T any](lower, upper T, excludeUpper bool) Range[T] {
	return Range[T]{Lower: lower, Upper: upper, ExcludeUpper: excludeUpper, Valid: true}
}

// Infiniter is implemented by bound types that can be infinite.
type Infiniter interface {
	Infinite() InfinityModifier
}

// BoundFormatter renders a finite range bound as text.
type BoundFormatter func(v any) (string, error)

// DefaultBoundFormatter uses the same conversions as DefaultElementFormatter.
func DefaultBoundFormatter(v any) (string, error) {
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Ptr && !rv.IsNil() {
		if _, ok := v.(fmt.Stringer); !ok {
			v = rv.Elem().Interface()
		}
	}
	s, _, err := DefaultElementFormatter(v)
	return s, err
}

// AppendRange appends r as "[lower,upper)" or "[lower,upper]". Unbounded
// bounds are written as empty text. An invalid r appends nothing and returns
// nil. If f is nil DefaultBoundFormatter is used.
func AppendRange[T any](buf []byte, r Range[T], f BoundFormatter) ([]byte, error) {
	if !r.Valid {
		return nil, nil
	}
	if f == nil {
		f = DefaultBoundFormatter
	}

	buf = append(buf, '[')

	if !isUnboundedBound(r.Lower, NegativeInfinity) {
		s, err := f(r.Lower)
		if err != nil {
			return nil, &EncodeError{Type: "range", Value: r.Lower, Err: err}
		}
		buf = appendRangeBound(buf, s)
	}

	buf = append(buf, ',')

	if !isUnboundedBound(r.Upper, Infinity) {
		s, err := f(r.Upper)
		if err != nil {
			return nil, &EncodeError{Type: "range", Value: r.Upper, Err: err}
		}
		buf = appendRangeBound(buf, s)
	}

	if r.ExcludeUpper {
		return append(buf, ')'), nil
	}
	return append(buf, ']'), nil
}

// FormatRange is AppendRange returning a string.
func FormatRange[T any](r Range[T], f BoundFormatter) (string, error) {
	buf, err := AppendRange(nil, r, f)
	return string(buf), err
}

func isUnboundedBound(v any, direction InfinityModifier) bool {
	switch v := v.(type) {
	case nil:
		return true
	case float64:
		return math.IsInf(v, int(direction))
	case float32:
		return math.IsInf(float64(v), int(direction))
	case Infiniter:
		return v.Infinite() == direction
	}

	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Ptr && rv.IsNil()
}

// Bound text containing range delimiters must be quoted to parse back.
func appendRangeBound(buf []byte, s string) []byte {
	if !strings.ContainsAny(s, `,()[]"\`) {
		return append(buf, s...)
	}
	return append(buf, `"`+standardEscapeReplacer.Replace(s)+`"`...)
}

// UntypedTextRange is range text split into raw bounds.
type UntypedTextRange struct {
	Lower     string
	Upper     string
	LowerType BoundType
	UpperType BoundType
}

// ParseUntypedTextRange splits range text such as "[1,5)" into its bounds.
// An empty bound is Unbounded and "empty" yields Empty bound types.
func ParseUntypedTextRange(src string) (*UntypedTextRange, error) {
	s := strings.TrimSpace(src)
	if strings.EqualFold(s, "empty") {
		return &UntypedTextRange{LowerType: Empty, UpperType: Empty}, nil
	}

	p := &rangeParser{str: s}
	utr := &UntypedTextRange{}

	switch p.next() {
	case '[':
		utr.LowerType = Inclusive
	case '(':
		utr.LowerType = Exclusive
	default:
		return nil, p.errorf(src, "expected '[' or '('")
	}

	var quoted bool
	var err error
	utr.Lower, quoted, err = p.bound()
	if err != nil {
		return nil, p.errorf(src, err.Error())
	}
	if utr.Lower == "" && !quoted {
		utr.LowerType = Unbounded
	}

	if p.next() != ',' {
		return nil, p.errorf(src, "expected ','")
	}

	utr.Upper, quoted, err = p.bound()
	if err != nil {
		return nil, p.errorf(src, err.Error())
	}

	switch p.next() {
	case ']':
		utr.UpperType = Inclusive
	case ')':
		utr.UpperType = Exclusive
	default:
		return nil, p.errorf(src, "expected ']' or ')'")
	}
	if utr.Upper == "" && !quoted {
		utr.UpperType = Unbounded
	}

	if p.pos != len(p.str) {
		return nil, p.errorf(src, "unexpected trailing data")
	}

	return utr, nil
}

type rangeParser struct {
	str string
	pos int
}

func (p *rangeParser) next() byte {
	if p.pos >= len(p.str) {
		return 0
	}
	c := p.str[p.pos]
	p.pos++
	return c
}

func (p *rangeParser) errorf(src, msg string) error {
	return newParseError("range", src, fmt.Errorf("%w: %s at position %d", ErrMalformedRange, msg, p.pos))
}

func (p *rangeParser) bound() (string, bool, error) {
	var sb strings.Builder
	quoted := false

	for p.pos < len(p.str) {
		c := p.str[p.pos]
		switch c {
		case ',', ')', ']':
			return sb.String(), quoted, nil
		case '"':
			quoted = true
			p.pos++
			for {
				if p.pos >= len(p.str) {
					return "", false, fmt.Errorf("unterminated quoted bound")
				}
				c = p.str[p.pos]
				if c == '"' {
					// A doubled quote inside quotes is a literal quote.
					if p.pos+1 < len(p.str) && p.str[p.pos+1] == '"' {
						sb.WriteByte('"')
						p.pos += 2
						continue
					}
					break
				}
				if c == '\\' {
					p.pos++
					if p.pos >= len(p.str) {
						return "", false, fmt.Errorf("unterminated escape")
					}
					c = p.str[p.pos]
				}
				sb.WriteByte(c)
				p.pos++
			}
		case '\\':
			p.pos++
			if p.pos >= len(p.str) {
				return "", false, fmt.Errorf("unterminated escape")
			}
			sb.WriteByte(p.str[p.pos])
		default:
			sb.WriteByte(c)
		}
		p.pos++
	}

	return "", false, fmt.Errorf("unexpected end of input")
}
