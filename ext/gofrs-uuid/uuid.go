// Package uuid decodes and encodes PostgreSQL uuid text as
// github.com/gofrs/uuid values.
package uuid

import (
	"github.com/gofrs/uuid"
	"github.com/pgcast/pgcast"
)

// Typer converts uuid text to a uuid.UUID.
func Typer(s string) (any, error) {
	u, err := uuid.FromString(s)
	if err != nil {
		return nil, &pgcast.ParseError{Type: "uuid", Text: s, Err: err}
	}
	return u, nil
}

// ElementFormatter writes uuid.UUID and uuid.NullUUID as quoted text and
// falls back to pgcast.DefaultElementFormatter for other values.
func ElementFormatter(v any) (string, pgcast.ElementFormat, error) {
	switch v := v.(type) {
	case uuid.UUID:
		return v.String(), pgcast.AsQuotedText, nil
	case uuid.NullUUID:
		if !v.Valid {
			return "", pgcast.AsNull, nil
		}
		return v.UUID.String(), pgcast.AsQuotedText, nil
	}
	return pgcast.DefaultElementFormatter(v)
}

// Register adds uuid and uuid[] to m.
func Register(m *pgcast.Map) {
	m.RegisterType(&pgcast.Type{Name: "uuid", OID: pgcast.UUIDOID, Typer: Typer})
	m.RegisterType(&pgcast.Type{Name: "_uuid", OID: pgcast.UUIDArrayOID, ElementOID: pgcast.UUIDOID})
}
