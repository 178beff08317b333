package pgcast_test

import (
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/pgcast/pgcast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBitString(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"0x1F", "11111"},
		{"0X0a", "1010"},
		{"0xff00", "1111111100000000"},
		{"0x0", "0"},
		{"0x", "0"},
		{"1010", "1010"},
		{"", ""},
	}

	for _, tt := range tests {
		got, err := pgcast.ParseBitString(tt.src)
		require.NoErrorf(t, err, "%s", tt.src)
		assert.Equalf(t, tt.want, got, "%s", tt.src)
	}
}

func TestParseBitStringInvalidHex(t *testing.T) {
	for _, src := range []string{"0xzz", "0x-1", "0x1g"} {
		_, err := pgcast.ParseBitString(src)
		require.Errorf(t, err, "%s", src)
		assert.Truef(t, errors.Is(err, pgcast.ErrInvalidHex), "%s: %v", src, err)
	}
}

func TestBitStringHexRoundTrip(t *testing.T) {
	for _, n := range []int64{1, 2, 7, 255, 256, 0xdeadbeef, 1<<62 + 3} {
		bits := big.NewInt(n).Text(2)

		hex, err := pgcast.FormatBitStringHex(bits)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(hex, "0x"))

		got, err := pgcast.ParseBitString(hex)
		require.NoError(t, err)
		assert.Equal(t, bits, got)
	}
}

func TestFormatBitStringHexInvalid(t *testing.T) {
	for _, bits := range []string{"", "102", "0x1"} {
		_, err := pgcast.FormatBitStringHex(bits)
		var ee *pgcast.EncodeError
		require.Truef(t, errors.As(err, &ee), "%s", bits)
	}
}

func TestVarbitCodecDecode(t *testing.T) {
	codec := pgcast.VarbitCodec{}

	v, err := codec.Decode(pgcast.Raw[pgcast.Varbit]("101"))
	require.NoError(t, err)
	assert.Equal(t, pgcast.Varbit{Bytes: []byte{0xa0}, Len: 3, Valid: true}, v)
	assert.Equal(t, "101", v.String())

	v, err = codec.Decode(pgcast.Raw[pgcast.Varbit]("0x1F"))
	require.NoError(t, err)
	assert.Equal(t, "11111", v.String())
	assert.Equal(t, "11111", string(codec.AppendText(nil, v)))

	v, err = codec.Decode(pgcast.Raw[pgcast.Varbit](""))
	require.NoError(t, err)
	assert.True(t, v.Valid)
	assert.EqualValues(t, 0, v.Len)

	v, err = codec.Decode(pgcast.NullInput[pgcast.Varbit]())
	require.NoError(t, err)
	assert.False(t, v.Valid)

	_, err = codec.Decode(pgcast.Raw[pgcast.Varbit]("10a1"))
	var pe *pgcast.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "varbit", pe.Type)
}

func TestVarbitCodecBinary(t *testing.T) {
	codec := pgcast.VarbitCodec{}
	v, err := codec.Decode(pgcast.Raw[pgcast.Varbit]("1111111101"))
	require.NoError(t, err)

	buf := codec.AppendBinary(nil, v)
	assert.Equal(t, []byte{0, 0, 0, 10, 0xff, 0x40}, buf)

	got, err := codec.DecodeBinary(buf)
	require.NoError(t, err)
	assert.Equal(t, v, got)

	_, err = codec.DecodeBinary([]byte{0, 0, 0, 10, 0xff})
	require.Error(t, err)
}
