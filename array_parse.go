package pgcast

import (
	"fmt"
	"strconv"
	"strings"
)

// Information on the text format of PostgreSQL arrays can be found in
// src/backend/utils/adt/arrayfuncs.c, in particular array_in and array_out.

type ArrayDimension struct {
	Length     int32
	LowerBound int32
}

// ArrayNode is one element of a tokenized array. A node is either a nested
// array (IsArray) or a leaf holding raw text.
type ArrayNode struct {
	IsArray  bool
	Elements []ArrayNode

	Text   string // unescaped leaf text
	Quoted bool   // leaf was written in double quotes
	Null   bool   // leaf was an unquoted NULL
}

// UntypedTextArray is the raw structure of array text before element typing.
type UntypedTextArray struct {
	Elements   []ArrayNode
	Dimensions []ArrayDimension
}

// ParseUntypedTextArray tokenizes array text into nested raw elements. An
// optional explicit dimension decoration such as "[0:1]=" is accepted.
func ParseUntypedTextArray(src string) (*UntypedTextArray, error) {
	p := &arrayParser{str: src}
	p.skipSpace()

	explicitDimensions, err := p.dimensions()
	if err != nil {
		return nil, err
	}

	root, err := p.array()
	if err != nil {
		return nil, err
	}

	p.skipSpace()
	if !p.atEnd() {
		return nil, p.errorf("unexpected trailing data: %s", p.str[p.pos:])
	}

	uta := &UntypedTextArray{Elements: root.Elements}
	if len(explicitDimensions) > 0 {
		uta.Dimensions = explicitDimensions
	} else {
		uta.Dimensions = implicitDimensions(root)
	}

	return uta, nil
}

func implicitDimensions(root ArrayNode) []ArrayDimension {
	dims := []ArrayDimension{}
	node := root
	for node.IsArray && len(node.Elements) > 0 {
		dims = append(dims, ArrayDimension{Length: int32(len(node.Elements)), LowerBound: 1})
		node = node.Elements[0]
	}
	return dims
}

type arrayParser struct {
	str string
	pos int
}

func (p *arrayParser) atEnd() bool {
	return p.pos >= len(p.str)
}

func (p *arrayParser) errorf(format string, args ...any) error {
	return newParseError("array", p.str, fmt.Errorf("%w: %s at position %d", ErrMalformedArray, fmt.Sprintf(format, args...), p.pos))
}

func (p *arrayParser) skipSpace() {
	for !p.atEnd() && isHstoreSpace(p.str[p.pos]) {
		p.pos++
	}
}

func (p *arrayParser) dimensions() ([]ArrayDimension, error) {
	var dims []ArrayDimension

	for !p.atEnd() && p.str[p.pos] == '[' {
		p.pos++
		lower, err := p.integer()
		if err != nil {
			return nil, err
		}
		if p.atEnd() || p.str[p.pos] != ':' {
			return nil, p.errorf("expected ':'")
		}
		p.pos++
		upper, err := p.integer()
		if err != nil {
			return nil, err
		}
		if p.atEnd() || p.str[p.pos] != ']' {
			return nil, p.errorf("expected ']'")
		}
		p.pos++

		dims = append(dims, ArrayDimension{LowerBound: lower, Length: upper - lower + 1})
	}

	if len(dims) > 0 {
		if p.atEnd() || p.str[p.pos] != '=' {
			return nil, p.errorf("expected '='")
		}
		p.pos++
		p.skipSpace()
	}

	return dims, nil
}

func (p *arrayParser) integer() (int32, error) {
	start := p.pos
	if !p.atEnd() && (p.str[p.pos] == '-' || p.str[p.pos] == '+') {
		p.pos++
	}
	for !p.atEnd() && '0' <= p.str[p.pos] && p.str[p.pos] <= '9' {
		p.pos++
	}

	n, err := strconv.ParseInt(p.str[start:p.pos], 10, 32)
	if err != nil {
		return 0, p.errorf("invalid dimension: %v", err)
	}
	return int32(n), nil
}

func (p *arrayParser) array() (ArrayNode, error) {
	if p.atEnd() || p.str[p.pos] != '{' {
		return ArrayNode{}, p.errorf("expected '{'")
	}
	p.pos++

	node := ArrayNode{IsArray: true, Elements: []ArrayNode{}}

	p.skipSpace()
	if !p.atEnd() && p.str[p.pos] == '}' {
		p.pos++
		return node, nil
	}

	for {
		p.skipSpace()
		if p.atEnd() {
			return ArrayNode{}, p.errorf("unexpected end of input")
		}

		var elem ArrayNode
		var err error
		switch p.str[p.pos] {
		case '{':
			elem, err = p.array()
		case '"':
			elem, err = p.quoted()
		default:
			elem, err = p.unquoted()
		}
		if err != nil {
			return ArrayNode{}, err
		}
		node.Elements = append(node.Elements, elem)

		p.skipSpace()
		if p.atEnd() {
			return ArrayNode{}, p.errorf("unexpected end of input")
		}
		switch p.str[p.pos] {
		case ',':
			p.pos++
		case '}':
			p.pos++
			return node, nil
		default:
			return ArrayNode{}, p.errorf("expected ',' or '}'")
		}
	}
}

func (p *arrayParser) quoted() (ArrayNode, error) {
	var sb strings.Builder
	p.pos++ // opening quote

	for !p.atEnd() {
		c := p.str[p.pos]
		switch c {
		case '"':
			p.pos++
			return ArrayNode{Text: sb.String(), Quoted: true}, nil
		case '\\':
			p.pos++
			if p.atEnd() {
				return ArrayNode{}, p.errorf("unterminated escape")
			}
			sb.WriteByte(p.str[p.pos])
		default:
			sb.WriteByte(c)
		}
		p.pos++
	}

	return ArrayNode{}, p.errorf("unterminated quoted element")
}

func (p *arrayParser) unquoted() (ArrayNode, error) {
	var sb strings.Builder
	escaped := false
	start := p.pos
	// keep is the builder length that trailing whitespace trimming must not cut into.
	keep := 0

loop:
	for !p.atEnd() {
		c := p.str[p.pos]
		switch c {
		case ',', '}':
			break loop
		case '{', '"':
			return ArrayNode{}, p.errorf("unexpected %q in unquoted element", c)
		case '\\':
			p.pos++
			if p.atEnd() {
				return ArrayNode{}, p.errorf("unterminated escape")
			}
			sb.WriteByte(p.str[p.pos])
			escaped = true
			keep = sb.Len()
		default:
			sb.WriteByte(c)
			if !isHstoreSpace(c) {
				keep = sb.Len()
			}
		}
		p.pos++
	}

	if p.pos == start {
		return ArrayNode{}, p.errorf("empty element")
	}

	text := sb.String()[:keep]
	if !escaped && strings.EqualFold(text, "NULL") {
		return ArrayNode{Null: true}, nil
	}
	return ArrayNode{Text: text}, nil
}
