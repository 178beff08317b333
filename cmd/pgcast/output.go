package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// writeOutput writes v to w in format. Text formats end with a newline.
func writeOutput(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "msgpack":
		b, err := msgpack.Marshal(v)
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	case "cbor":
		em, err := cborEncOptions().EncMode()
		if err != nil {
			return err
		}
		b, err := em.Marshal(v)
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// Core deterministic encoding with times as RFC 3339 text.
func cborEncOptions() cbor.EncOptions {
	eo := cbor.CoreDetEncOptions()
	eo.Time = cbor.TimeRFC3339Nano
	return eo
}
