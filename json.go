package pgcast

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"
)

// JSONCodec handles json and jsonb text. Only maps and sequences are
// marshalled; strings and byte slices are assumed to already hold JSON text.
type JSONCodec struct {
	// UseNumber decodes numbers as json.Number instead of float64.
	UseNumber bool
}

func (JSONCodec) AppendText(buf []byte, v any) ([]byte, error) {
	switch v := v.(type) {
	case nil:
		return nil, nil
	case string:
		return append(buf, v...), nil
	case json.RawMessage:
		if v == nil {
			return nil, nil
		}
		return append(buf, v...), nil
	case []byte:
		if v == nil {
			return nil, nil
		}
		return append(buf, v...), nil
	}

	switch f := v.(type) {
	case float64:
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return nil, &EncodeError{Type: "json", Value: v, Err: fmt.Errorf("unsupported value %v", f)}
		}
	case float32:
		if math.IsInf(float64(f), 0) || math.IsNaN(float64(f)) {
			return nil, &EncodeError{Type: "json", Value: v, Err: fmt.Errorf("unsupported value %v", f)}
		}
	}

	if !isJSONComposite(v) {
		return fmt.Append(buf, v), nil
	}

	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return nil, &EncodeError{Type: "json", Value: v, Err: err}
	}
	return append(buf, jsonBytes...), nil
}

func isJSONComposite(v any) bool {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		return true
	}
	return false
}

func (c JSONCodec) Decode(in Input[any]) (any, error) {
	switch in.Kind() {
	case InputNull:
		return nil, nil
	case InputTyped:
		v, _ := in.Value()
		return v, nil
	}

	s, _ := in.Text()
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	if c.UseNumber {
		dec.UseNumber()
	}

	var dst any
	if err := dec.Decode(&dst); err != nil {
		return nil, newParseError("json", s, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, newParseError("json", s, fmt.Errorf("unexpected data after top-level value"))
	}
	return dst, nil
}
