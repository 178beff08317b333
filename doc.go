// Package pgcast converts between PostgreSQL's text representation of extended types and Go values.
/*
Each supported type has a codec in its own file. Codecs are plain values with no shared state and are safe for
concurrent use.

Decoding

Decoders take an Input[T]. An Input is either raw text as received from the server, an already decoded value, or
absent (SQL NULL). Raw text is parsed, decoded values are returned unchanged and absent input yields an absent result:

	ts, err := pgcast.TimestampCodec{}.Decode(pgcast.Raw[pgcast.Timestamp]("2020-01-01 BC"))

Encoding

Encoders follow the append convention used throughout this package: they append the text form of a value to a buffer
and return the extended buffer. A nil result buffer means SQL NULL.

Arrays

ArrayCodec encodes nested slices with a caller supplied ElementFormatter and decodes array text with a caller supplied
ElementTyper. Map provides typers for the built-in types keyed by OID.

Hstore

Hstore is an ordered list of pairs. Keys are unique; setting an existing key overwrites its value in place.

Ranges

Ranges are encode only. ParseUntypedTextRange splits range text into raw bounds for callers that need the other
direction.
*/
package pgcast
