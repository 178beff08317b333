// Package numeric decodes and encodes PostgreSQL numeric text as
// github.com/shopspring/decimal values.
package numeric

import (
	"fmt"

	"github.com/pgcast/pgcast"
	"github.com/shopspring/decimal"
)

// Typer converts numeric text to a decimal.Decimal. NaN and infinite values
// cannot be represented and are rejected.
func Typer(s string) (any, error) {
	dec, err := decimal.NewFromString(s)
	if err != nil {
		return nil, &pgcast.ParseError{Type: "numeric", Text: s, Err: err}
	}
	return dec, nil
}

// ElementFormatter writes decimal.Decimal and decimal.NullDecimal as number
// literals and falls back to pgcast.DefaultElementFormatter for other values.
func ElementFormatter(v any) (string, pgcast.ElementFormat, error) {
	switch v := v.(type) {
	case decimal.Decimal:
		return v.String(), pgcast.AsNumberLiteral, nil
	case decimal.NullDecimal:
		if !v.Valid {
			return "", pgcast.AsNull, nil
		}
		return v.Decimal.String(), pgcast.AsNumberLiteral, nil
	}
	return pgcast.DefaultElementFormatter(v)
}

// BoundFormatter formats decimal range bounds.
func BoundFormatter(v any) (string, error) {
	s, format, err := ElementFormatter(v)
	if err != nil {
		return "", err
	}
	if format == pgcast.AsNull {
		return "", fmt.Errorf("range bound cannot be NULL")
	}
	return s, nil
}

// Register replaces the numeric typer of m so numeric and numeric[] values
// decode to decimal.Decimal.
func Register(m *pgcast.Map) {
	m.RegisterType(&pgcast.Type{Name: "numeric", OID: pgcast.NumericOID, Typer: Typer})
}
