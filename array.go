package pgcast

import (
	"fmt"
	"math/big"
	"net"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/apd"
)

// ElementFormat tells AppendArray how to write a formatted element.
type ElementFormat int8

const (
	AsQuotedText ElementFormat = iota
	AsNull
	AsNumberLiteral
)

func (f ElementFormat) String() string {
	switch f {
	case AsQuotedText:
		return "quoted text"
	case AsNull:
		return "null"
	case AsNumberLiteral:
		return "number literal"
	default:
		return "invalid"
	}
}

// ElementFormatter converts a non-sequence array element to text and decides
// how that text is written.
type ElementFormatter func(v any) (string, ElementFormat, error)

// ElementTyper converts the raw text of a non-null array element to a value.
type ElementTyper func(s string) (any, error)

// ArrayEscaping selects how backslashes inside quoted elements are escaped.
type ArrayEscaping int8

const (
	// DoubleEscaping writes each backslash as four backslashes so that it
	// survives one more escaping layer on top of the array syntax.
	DoubleEscaping ArrayEscaping = iota

	// StandardEscaping writes each backslash as two backslashes, matching
	// the server's own array output.
	StandardEscaping
)

var (
	doubleEscapeReplacer   = strings.NewReplacer(`\`, `\\\\`, `"`, `\"`)
	standardEscapeReplacer = strings.NewReplacer(`\`, `\\`, `"`, `\"`)
)

// QuoteArrayElement quotes src for use as an array element with
// DoubleEscaping.
func QuoteArrayElement(src string) string {
	return `"` + doubleEscapeReplacer.Replace(src) + `"`
}

// ArrayCodec formats and decodes array text. The zero value uses
// DoubleEscaping. Callers decoding text read from the server, or producing
// text sent to it directly, should set Escaping to StandardEscaping.
type ArrayCodec struct {
	Escaping ArrayEscaping

	// Tokenize splits array text into raw elements. If nil
	// ParseUntypedTextArray is used.
	Tokenize func(src string) (*UntypedTextArray, error)
}

func (c ArrayCodec) quote(src string) string {
	if c.Escaping == StandardEscaping {
		return `"` + standardEscapeReplacer.Replace(src) + `"`
	}
	return QuoteArrayElement(src)
}

// AppendArray appends the text form of seq, which must be a slice or array.
// Nested slices become nested arrays. A nil slice appends nothing and returns
// nil. If f is nil DefaultElementFormatter is used.
func (c ArrayCodec) AppendArray(buf []byte, seq any, f ElementFormatter) ([]byte, error) {
	if seq == nil {
		return nil, nil
	}

	rv := reflect.ValueOf(seq)
	if rv.Kind() == reflect.Slice && rv.IsNil() {
		return nil, nil
	}
	if !isArraySequence(rv) {
		return nil, &EncodeError{Type: "array", Value: seq, Err: fmt.Errorf("%T is not a slice or array", seq)}
	}

	if f == nil {
		f = DefaultElementFormatter
	}
	if buf == nil {
		buf = []byte{}
	}
	return c.appendSequence(buf, rv, f)
}

func (c ArrayCodec) appendSequence(buf []byte, rv reflect.Value, f ElementFormatter) ([]byte, error) {
	buf = append(buf, '{')

	for i := 0; i < rv.Len(); i++ {
		if i > 0 {
			buf = append(buf, ',')
		}

		elem := rv.Index(i)
		for elem.Kind() == reflect.Interface && !elem.IsNil() {
			elem = elem.Elem()
		}

		if !elem.IsValid() || (isNilable(elem) && elem.IsNil()) {
			buf = append(buf, "NULL"...)
			continue
		}

		if isArraySequence(elem) {
			var err error
			buf, err = c.appendSequence(buf, elem, f)
			if err != nil {
				return nil, err
			}
			continue
		}

		v := elem.Interface()
		if s, ok := v.(string); ok && s == "NULL" {
			buf = append(buf, `"NULL"`...)
			continue
		}

		text, format, err := f(v)
		if err != nil {
			return nil, &EncodeError{Type: "array", Value: v, Err: err}
		}

		switch format {
		case AsNull:
			buf = append(buf, "NULL"...)
		case AsNumberLiteral:
			buf = append(buf, text...)
		case AsQuotedText:
			buf = append(buf, c.quote(text)...)
		default:
			return nil, &EncodeError{Type: "array", Value: v, Err: fmt.Errorf("unknown element format %d", format)}
		}
	}

	return append(buf, '}'), nil
}

func isNilable(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	}
	return false
}

// isArraySequence reports whether rv should be written as a nested array.
// Byte slices, net.IP and Hstore are elements, not sequences.
func isArraySequence(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
	default:
		return false
	}

	switch rv.Type() {
	case reflect.TypeOf(net.IP(nil)), reflect.TypeOf(Hstore(nil)):
		return false
	}
	return rv.Type().Elem().Kind() != reflect.Uint8
}

// DefaultElementFormatter formats the Go types this package knows about.
// Numbers are written unquoted, everything else is quoted text.
func DefaultElementFormatter(v any) (string, ElementFormat, error) {
	switch v := v.(type) {
	case nil:
		return "", AsNull, nil
	case string:
		return v, AsQuotedText, nil
	case []byte:
		return string(v), AsQuotedText, nil
	case bool:
		if v {
			return "t", AsQuotedText, nil
		}
		return "f", AsQuotedText, nil
	case int:
		return strconv.FormatInt(int64(v), 10), AsNumberLiteral, nil
	case int8:
		return strconv.FormatInt(int64(v), 10), AsNumberLiteral, nil
	case int16:
		return strconv.FormatInt(int64(v), 10), AsNumberLiteral, nil
	case int32:
		return strconv.FormatInt(int64(v), 10), AsNumberLiteral, nil
	case int64:
		return strconv.FormatInt(v, 10), AsNumberLiteral, nil
	case uint:
		return strconv.FormatUint(uint64(v), 10), AsNumberLiteral, nil
	case uint8:
		return strconv.FormatUint(uint64(v), 10), AsNumberLiteral, nil
	case uint16:
		return strconv.FormatUint(uint64(v), 10), AsNumberLiteral, nil
	case uint32:
		return strconv.FormatUint(uint64(v), 10), AsNumberLiteral, nil
	case uint64:
		return strconv.FormatUint(v, 10), AsNumberLiteral, nil
	case float32:
		return string(appendFloat(nil, float64(v))), AsNumberLiteral, nil
	case float64:
		return string(appendFloat(nil, v)), AsNumberLiteral, nil
	case *big.Int:
		return v.String(), AsNumberLiteral, nil
	case apd.Decimal:
		return v.Text('f'), AsNumberLiteral, nil
	case *apd.Decimal:
		return v.Text('f'), AsNumberLiteral, nil
	case time.Time:
		return string(TimestampCodec{}.AppendText(nil, Timestamp{Time: v, Valid: true})), AsQuotedText, nil
	case Timestamp:
		if !v.Valid {
			return "", AsNull, nil
		}
		return string(TimestampCodec{}.AppendText(nil, v)), AsQuotedText, nil
	case Point:
		if !v.Valid {
			return "", AsNull, nil
		}
		return FormatPoint(v.P), AsQuotedText, nil
	case Vec2:
		return FormatPoint(v), AsQuotedText, nil
	case Inet:
		s, ok := FormatInet(v)
		if !ok {
			return "", AsNull, nil
		}
		return s, AsQuotedText, nil
	case Varbit:
		if !v.Valid {
			return "", AsNull, nil
		}
		return v.String(), AsQuotedText, nil
	case Hstore:
		return string(AppendHstore(nil, v, false)), AsQuotedText, nil
	case fmt.Stringer:
		return v.String(), AsQuotedText, nil
	}

	return "", AsQuotedText, fmt.Errorf("cannot format %T as array element", v)
}

// Decode converts array text into nested []any. Null elements become nil and
// all other leaves are converted with typer. If typer is nil leaves are
// returned as strings.
func (c ArrayCodec) Decode(in Input[[]any], typer ElementTyper) ([]any, error) {
	switch in.Kind() {
	case InputNull:
		return nil, nil
	case InputTyped:
		v, _ := in.Value()
		return v, nil
	}

	s, _ := in.Text()
	tokenize := c.Tokenize
	if tokenize == nil {
		tokenize = ParseUntypedTextArray
	}

	uta, err := tokenize(s)
	if err != nil {
		return nil, err
	}

	if typer == nil {
		typer = func(s string) (any, error) { return s, nil }
	}
	return c.typeElements(uta.Elements, typer)
}

func (c ArrayCodec) typeElements(nodes []ArrayNode, typer ElementTyper) ([]any, error) {
	result := make([]any, len(nodes))

	for i, node := range nodes {
		switch {
		case node.IsArray:
			nested, err := c.typeElements(node.Elements, typer)
			if err != nil {
				return nil, err
			}
			result[i] = nested
		case node.Null:
			result[i] = nil
		default:
			text := node.Text
			if node.Quoted && c.Escaping == DoubleEscaping {
				text = unescapeLayer(text)
			}
			v, err := typer(text)
			if err != nil {
				return nil, err
			}
			result[i] = v
		}
	}

	return result, nil
}

// unescapeLayer removes the extra escaping layer added by DoubleEscaping.
func unescapeLayer(s string) string {
	if strings.IndexByte(s, '\\') < 0 {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}
