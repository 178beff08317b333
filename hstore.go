package pgcast

import (
	"fmt"
	"sort"
	"strings"
)

type HstorePair struct {
	Key   string
	Value *string // nil is SQL NULL
}

// Hstore is an ordered hstore value. Keys are unique.
type Hstore []HstorePair

// HstoreFromMap builds an Hstore from m with keys in sorted order.
func HstoreFromMap(m map[string]*string) Hstore {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := make(Hstore, 0, len(keys))
	for _, k := range keys {
		h = append(h, HstorePair{Key: k, Value: m[k]})
	}
	return h
}

// Set assigns value to key. An existing key keeps its position.
func (h *Hstore) Set(key string, value *string) {
	for i := range *h {
		if (*h)[i].Key == key {
			(*h)[i].Value = value
			return
		}
	}
	*h = append(*h, HstorePair{Key: key, Value: value})
}

// Get returns the value for key and whether key is present.
func (h Hstore) Get(key string) (value *string, ok bool) {
	for _, p := range h {
		if p.Key == key {
			return p.Value, true
		}
	}
	return nil, false
}

func (h Hstore) Len() int { return len(h) }

func (h Hstore) Keys() []string {
	keys := make([]string, len(h))
	for i, p := range h {
		keys[i] = p.Key
	}
	return keys
}

// Map returns h as an unordered map.
func (h Hstore) Map() map[string]*string {
	m := make(map[string]*string, len(h))
	for _, p := range h {
		m[p.Key] = p.Value
	}
	return m
}

var quoteHstoreReplacer = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func quoteHstoreElement(src string) string {
	return `"` + quoteHstoreReplacer.Replace(src) + `"`
}

func appendHstoreValue(buf []byte, v *string) []byte {
	if v == nil {
		return append(buf, "NULL"...)
	}
	return append(buf, quoteHstoreElement(*v)...)
}

// AppendHstore appends the text form of h. When nested is true the result is
// an element of an hstore array and the whole pair list is quoted again as a
// single token. A nil h appends nothing and returns nil.
func AppendHstore(buf []byte, h Hstore, nested bool) []byte {
	if h == nil {
		return nil
	}

	var pairs []byte
	for i, p := range h {
		if i > 0 {
			pairs = append(pairs, ',')
		}
		pairs = append(pairs, quoteHstoreElement(p.Key)...)
		pairs = append(pairs, "=>"...)
		pairs = appendHstoreValue(pairs, p.Value)
	}

	if nested {
		return append(buf, quoteHstoreElement(string(pairs))...)
	}
	if buf == nil {
		buf = []byte{}
	}
	return append(buf, pairs...)
}

type HstoreCodec struct{}

func (HstoreCodec) AppendText(buf []byte, h Hstore) []byte {
	return AppendHstore(buf, h, false)
}

func (HstoreCodec) Decode(in Input[Hstore]) (Hstore, error) {
	switch in.Kind() {
	case InputNull:
		return nil, nil
	case InputTyped:
		h, _ := in.Value()
		return h, nil
	}

	s, _ := in.Text()
	return ParseHstore(s)
}

// ParseHstore parses hstore text. Later duplicate keys overwrite earlier ones.
// Anything that is not a well formed list of pairs is an error.
func ParseHstore(s string) (Hstore, error) {
	p := &hstoreParser{str: s}
	h := Hstore{}

	p.skipSpace()
	if p.atEnd() {
		return h, nil
	}

	for {
		key, _, err := p.token()
		if err != nil {
			return nil, newParseError("hstore", s, err)
		}

		p.skipSpace()
		if !strings.HasPrefix(p.str[p.pos:], "=>") {
			return nil, newParseError("hstore", s, p.errorf("expected '=>'"))
		}
		p.pos += 2
		p.skipSpace()

		value, quoted, err := p.token()
		if err != nil {
			return nil, newParseError("hstore", s, err)
		}

		if !quoted && strings.EqualFold(value, "NULL") {
			h.Set(key, nil)
		} else {
			h.Set(key, &value)
		}

		p.skipSpace()
		if p.atEnd() {
			return h, nil
		}
		if p.str[p.pos] != ',' {
			return nil, newParseError("hstore", s, p.errorf("expected ','"))
		}
		p.pos++
		p.skipSpace()
	}
}

type hstoreParser struct {
	str string
	pos int
}

func (p *hstoreParser) atEnd() bool {
	return p.pos >= len(p.str)
}

func (p *hstoreParser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s at position %d", ErrMalformedHstore, fmt.Sprintf(format, args...), p.pos)
}

func (p *hstoreParser) skipSpace() {
	for !p.atEnd() && isHstoreSpace(p.str[p.pos]) {
		p.pos++
	}
}

// token reads a quoted or bare token and returns its unescaped text.
func (p *hstoreParser) token() (string, bool, error) {
	if p.atEnd() {
		return "", false, p.errorf("unexpected end of input")
	}
	if p.str[p.pos] == '"' {
		s, err := p.quoted()
		return s, true, err
	}
	s, err := p.bare()
	return s, false, err
}

func (p *hstoreParser) quoted() (string, error) {
	var sb strings.Builder
	p.pos++ // opening quote

	for !p.atEnd() {
		c := p.str[p.pos]
		switch c {
		case '"':
			p.pos++
			return sb.String(), nil
		case '\\':
			p.pos++
			if p.atEnd() {
				return "", p.errorf("unterminated escape")
			}
			sb.WriteByte(p.str[p.pos])
		default:
			sb.WriteByte(c)
		}
		p.pos++
	}

	return "", p.errorf("unterminated quoted string")
}

// bare reads an unquoted token. It ends at whitespace, ',', end of input, or
// an '=' that starts "=>" or precedes ','.
func (p *hstoreParser) bare() (string, error) {
	var sb strings.Builder
	start := p.pos

loop:
	for !p.atEnd() {
		c := p.str[p.pos]
		switch {
		case isHstoreSpace(c), c == ',':
			break loop
		case c == '=':
			if p.pos+1 >= len(p.str) || p.str[p.pos+1] == '>' || p.str[p.pos+1] == ',' {
				break loop
			}
			sb.WriteByte(c)
		case c == '\\':
			p.pos++
			if p.atEnd() {
				return "", p.errorf("unterminated escape")
			}
			sb.WriteByte(p.str[p.pos])
		default:
			sb.WriteByte(c)
		}
		p.pos++
	}

	if p.pos == start {
		return "", p.errorf("expected key or value")
	}
	return sb.String(), nil
}

func isHstoreSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}
