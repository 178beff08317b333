package pgcast

import (
	"fmt"
	"strings"
	"time"
)

const pgTimestampFormat = "2006-01-02 15:04:05.999999999-07:00"

// Layouts tried in order by DefaultTimeParser.
var timeLayouts = [...]string{
	"2006-01-02 15:04:05.999999999-07:00:00",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02 15:04:05.999999999",
	time.RFC3339Nano,
	"2006-01-02",
}

// TimeParser parses date/time text that has already had infinity and era
// suffixes handled.
type TimeParser func(s string) (time.Time, error)

// DefaultTimeParser parses the ISO output styles of PostgreSQL dates and
// timestamps. A leading '-' negates the year. Text without a zone offset is
// interpreted as UTC.
func DefaultTimeParser(s string) (time.Time, error) {
	negative := strings.HasPrefix(s, "-")
	if negative {
		s = s[1:]
	}

	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if negative {
			t = time.Date(-t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
		}
		return t, nil
	}

	return time.Time{}, fmt.Errorf("unrecognized date/time format")
}

// Timestamp represents the PostgreSQL timestamp, timestamptz and date types.
type Timestamp struct {
	Time             time.Time
	InfinityModifier InfinityModifier
	Valid            bool
}

type TimestampCodec struct {
	// Parse is the base parser. If nil DefaultTimeParser is used.
	Parse TimeParser
}

// Decode handles the signed infinity literals and the " BC" era suffix before
// delegating to the base parser. Decoded input is returned unchanged.
func (c TimestampCodec) Decode(in Input[Timestamp]) (Timestamp, error) {
	switch in.Kind() {
	case InputNull:
		return Timestamp{}, nil
	case InputTyped:
		ts, _ := in.Value()
		return ts, nil
	}

	s, _ := in.Text()
	switch {
	case s == "infinity":
		return Timestamp{InfinityModifier: Infinity, Valid: true}, nil
	case s == "-infinity":
		return Timestamp{InfinityModifier: NegativeInfinity, Valid: true}, nil
	case strings.HasSuffix(s, " BC"):
		return c.parse(s, "-"+strings.TrimSuffix(s, " BC"))
	default:
		return c.parse(s, s)
	}
}

func (c TimestampCodec) parse(orig, s string) (Timestamp, error) {
	parse := c.Parse
	if parse == nil {
		parse = DefaultTimeParser
	}

	t, err := parse(s)
	if err != nil {
		return Timestamp{}, newParseError("timestamp", orig, err)
	}
	return Timestamp{Time: t, Valid: true}, nil
}

// AppendText appends the text form of ts. Non-positive years are written
// with the " BC" suffix so that Decode restores the same year.
func (TimestampCodec) AppendText(buf []byte, ts Timestamp) []byte {
	if !ts.Valid {
		return nil
	}

	switch ts.InfinityModifier {
	case Infinity:
		return append(buf, "infinity"...)
	case NegativeInfinity:
		return append(buf, "-infinity"...)
	}

	t := ts.Time
	if t.Year() > 0 {
		return t.AppendFormat(buf, pgTimestampFormat)
	}

	t = time.Date(-t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	buf = t.AppendFormat(buf, pgTimestampFormat)
	return append(buf, " BC"...)
}

// Infinite reports the infinity modifier so a Timestamp can be used as a range
// bound.
func (ts Timestamp) Infinite() InfinityModifier {
	return ts.InfinityModifier
}
