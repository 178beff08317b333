// Command pgcast converts between PostgreSQL text representations and
// structured values.
//
//	pgcast [flags] decode <type> <text>
//	pgcast [flags] encode <type> <json>
//
// decode prints the value in the configured output format. encode reads a
// JSON description of the value and prints its PostgreSQL text form. Array
// types are written as "int4[]" or "_int4". Range types can only be encoded
// from an object such as {"lower": 1, "upper": null, "exclude_upper": true}.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/pgcast/pgcast"
	"github.com/pgcast/pgcast/log/zerologadapter"
	"github.com/rs/zerolog"
)

const usage = `usage: pgcast [flags] decode <type> <text>
       pgcast [flags] encode <type> <json>

`

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("pgcast", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to a YAML config file")
	format := fs.String("format", "", "decode output format: json, yaml, msgpack or cbor")
	logLevel := fs.String("log-level", "", "trace, debug, info, warn, error or none")
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "pgcast: %v\n", err)
		return 1
	}
	if *format != "" {
		cfg.Format = *format
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if err := cfg.validate(); err != nil {
		fmt.Fprintf(stderr, "pgcast: %v\n", err)
		return 1
	}

	if fs.NArg() != 3 {
		fs.Usage()
		return 2
	}
	command, typ, input := fs.Arg(0), fs.Arg(1), fs.Arg(2)

	logger := zerologadapter.NewLogger(zerolog.New(stderr).With().Timestamp().Logger())
	c := newConverter(cfg, logger)

	switch command {
	case "decode":
		v, err := c.decode(ctx, typ, input)
		if err != nil {
			fmt.Fprintf(stderr, "pgcast: %v\n", err)
			return 1
		}
		if err := writeOutput(stdout, cfg.Format, v); err != nil {
			fmt.Fprintf(stderr, "pgcast: write %s: %v\n", cfg.Format, err)
			return 1
		}
	case "encode":
		s, err := c.encode(typ, input)
		if err != nil {
			if cfg.logLevel() >= pgcast.LogLevelDebug {
				logger.Log(ctx, pgcast.LogLevelDebug, "encode failed", map[string]any{"type": typ, "input": input})
			}
			fmt.Fprintf(stderr, "pgcast: %v\n", err)
			return 1
		}
		fmt.Fprintln(stdout, s)
	default:
		fs.Usage()
		return 2
	}

	return 0
}
