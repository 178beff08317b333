package pgcast

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"strings"

	"github.com/jackc/pgio"
)

// ParseBitString converts hexadecimal shorthand ("0x" prefix, any case) to
// binary digits. The result has no leading zero padding. Text without the
// prefix is already in bit notation and is returned unchanged.
func ParseBitString(s string) (string, error) {
	if len(s) < 2 || !strings.EqualFold(s[:2], "0x") {
		return s, nil
	}

	digits := s[2:]
	if digits == "" {
		return "0", nil
	}
	if digits[0] == '+' || digits[0] == '-' {
		return "", newParseError("bit", s, ErrInvalidHex)
	}

	n, ok := new(big.Int).SetString(digits, 16)
	if !ok {
		return "", newParseError("bit", s, ErrInvalidHex)
	}
	return n.Text(2), nil
}

// FormatBitStringHex returns the hexadecimal shorthand for a bit string. Only
// the numeric value survives: leading zero bits are dropped.
func FormatBitStringHex(bits string) (string, error) {
	if err := validateBits(bits); err != nil {
		return "", &EncodeError{Type: "bit", Value: bits, Err: err}
	}

	n, _ := new(big.Int).SetString(bits, 2)
	return "0x" + n.Text(16), nil
}

func validateBits(bits string) error {
	if bits == "" {
		return fmt.Errorf("empty bit string")
	}
	for i := 0; i < len(bits); i++ {
		if bits[i] != '0' && bits[i] != '1' {
			return fmt.Errorf("invalid bit %q at position %d", bits[i], i)
		}
	}
	return nil
}

// Varbit is a packed bit string. Bits are stored most significant first.
type Varbit struct {
	Bytes []byte
	Len   int32 // Number of bits
	Valid bool
}

// String returns the bits as '0' and '1' characters.
func (v Varbit) String() string {
	var sb strings.Builder
	sb.Grow(int(v.Len))
	for i := int32(0); i < v.Len; i++ {
		if v.Bytes[i/8]&(0x80>>(i%8)) != 0 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

func packBits(bits string) Varbit {
	buf := make([]byte, (len(bits)+7)/8)
	for i := 0; i < len(bits); i++ {
		if bits[i] == '1' {
			buf[i/8] |= 0x80 >> (i % 8)
		}
	}
	return Varbit{Bytes: buf, Len: int32(len(bits)), Valid: true}
}

type VarbitCodec struct{}

// Decode accepts bit notation or hexadecimal shorthand.
func (VarbitCodec) Decode(in Input[Varbit]) (Varbit, error) {
	switch in.Kind() {
	case InputNull:
		return Varbit{}, nil
	case InputTyped:
		v, _ := in.Value()
		return v, nil
	}

	s, _ := in.Text()
	bits, err := ParseBitString(s)
	if err != nil {
		return Varbit{}, err
	}
	if bits == "" {
		return Varbit{Bytes: []byte{}, Valid: true}, nil
	}
	if err := validateBits(bits); err != nil {
		return Varbit{}, newParseError("varbit", s, err)
	}

	return packBits(bits), nil
}

func (VarbitCodec) AppendText(buf []byte, v Varbit) []byte {
	if !v.Valid {
		return nil
	}
	return append(buf, v.String()...)
}

// AppendBinary appends the binary wire form: bit count then packed bytes.
func (VarbitCodec) AppendBinary(buf []byte, v Varbit) []byte {
	if !v.Valid {
		return nil
	}
	buf = pgio.AppendInt32(buf, v.Len)
	return append(buf, v.Bytes...)
}

func (VarbitCodec) DecodeBinary(src []byte) (Varbit, error) {
	if src == nil {
		return Varbit{}, nil
	}

	if len(src) < 4 {
		return Varbit{}, fmt.Errorf("invalid length for varbit: %v", len(src))
	}

	bitLen := int32(binary.BigEndian.Uint32(src))
	if bitLen < 0 || int(bitLen+7)/8 != len(src)-4 {
		return Varbit{}, fmt.Errorf("invalid bit length %d for %d bytes", bitLen, len(src)-4)
	}

	buf := make([]byte, len(src)-4)
	copy(buf, src[4:])

	return Varbit{Bytes: buf, Len: bitLen, Valid: true}, nil
}
