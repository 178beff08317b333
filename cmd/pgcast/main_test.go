package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func runCommand(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(context.Background(), args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pgcast.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRunDecodeJSON(t *testing.T) {
	tests := []struct {
		typ  string
		text string
		want string
	}{
		{"point", "(1,2)", `{"x":1,"y":2}`},
		{"int4[]", "{1,2,NULL}", `[1,2,null]`},
		{"_text", `{"a\\b","NULL"}`, `["a\\b","NULL"]`},
		{"float8", "-Infinity", `"-Infinity"`},
		{"timestamptz", "infinity", `"infinity"`},
		{"date", "2021-03-04", `"2021-03-04T00:00:00Z"`},
		{"varbit", "0x1F", `"11111"`},
		{"inet", "10.1.2.3/8", `"10.0.0.0/8"`},
		{"jsonb", `{"a":[1,"x"]}`, `{"a":[1,"x"]}`},
		{"numeric", "1.50", `"1.50"`},
		{"uuid", "6ba7b810-9dad-11d1-80b4-00c04fd430c8", `"6ba7b810-9dad-11d1-80b4-00c04fd430c8"`},
		{"hstore", `a=>b, "c"=>NULL`, `{"a":"b","c":null}`},
	}

	for _, tt := range tests {
		code, stdout, stderr := runCommand(t, "decode", tt.typ, tt.text)
		require.Equalf(t, 0, code, "%s %s: %s", tt.typ, tt.text, stderr)
		assert.Equalf(t, tt.want+"\n", stdout, "%s %s", tt.typ, tt.text)
	}
}

func TestRunDecodeYAML(t *testing.T) {
	code, stdout, stderr := runCommand(t, "-format", "yaml", "decode", "hstore", "a=>b, c=>NULL")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "a: b\nc: null\n", stdout)
}

func TestRunDecodeMsgpack(t *testing.T) {
	code, stdout, stderr := runCommand(t, "-format", "msgpack", "decode", "inet", "192.168.1.7/24")
	require.Equal(t, 0, code, stderr)

	var s string
	require.NoError(t, msgpack.Unmarshal([]byte(stdout), &s))
	assert.Equal(t, "192.168.1.0/24", s)
}

func TestRunDecodeCBOR(t *testing.T) {
	code, stdout, stderr := runCommand(t, "-format", "cbor", "decode", "int8[]", "{{1,2},{3,4}}")
	require.Equal(t, 0, code, stderr)

	var v [][]int64
	require.NoError(t, cbor.Unmarshal([]byte(stdout), &v))
	assert.Equal(t, [][]int64{{1, 2}, {3, 4}}, v)
}

func TestRunDecodeInvalidInetLogsAtDebug(t *testing.T) {
	code, stdout, stderr := runCommand(t, "-log-level", "debug", "decode", "inet", "garbage")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "null\n", stdout)
	assert.Contains(t, stderr, "invalid network address decoded as NULL")
	assert.Contains(t, stderr, `"module":"pgcast"`)

	code, _, stderr = runCommand(t, "decode", "inet", "garbage")
	require.Equal(t, 0, code)
	assert.Empty(t, stderr)
}

func TestRunDecodeErrors(t *testing.T) {
	for _, args := range [][]string{
		{"decode", "int4range", "[1,2)"},
		{"decode", "int4", "x"},
		{"decode", "nosuchtype", "x"},
		{"decode", "hstore", "a=>"},
	} {
		code, _, stderr := runCommand(t, args...)
		assert.Equalf(t, 1, code, "%v", args)
		assert.Containsf(t, stderr, "pgcast: ", "%v", args)
	}
}

func TestRunEncode(t *testing.T) {
	tests := []struct {
		typ  string
		json string
		want string
	}{
		{"int4[]", `[1,null,3]`, `{1,NULL,3}`},
		{"int4[]", `[[1,2],[3,4]]`, `{{1,2},{3,4}}`},
		{"text[]", `["a\\b","NULL"]`, `{"a\\b","NULL"}`},
		{"bool[]", `[true,false]`, `{"t","f"}`},
		{"point", `{"x":1,"y":2.5}`, `(1,2.5)`},
		{"point[]", `["(1,2)",{"x":3,"y":4}]`, `{"(1,2)","(3,4)"}`},
		{"hstore", `{"b":"2","a":null}`, `"a"=>NULL,"b"=>"2"`},
		{"json", `{"a":[1,2]}`, `{"a":[1,2]}`},
		{"json", `"str"`, `"str"`},
		{"jsonb[]", `[{"k":1}]`, `{"{\"k\":1}"}`},
		{"varbit", `"0x1F"`, `11111`},
		{"inet", `"10.1.2.3/8"`, `10.0.0.0/8`},
		{"numeric[]", `[1.50,"2"]`, `{1.50,2}`},
		{"timestamptz", `"infinity"`, `infinity`},
		{"int4range", `{"lower":1,"upper":null,"exclude_upper":true}`, `[1,)`},
		{"int4range", `{"lower":1,"upper":5}`, `[1,5]`},
		{"tstzrange", `{"lower":"2020-01-01 00:00:00+00","upper":"infinity"}`, `[2020-01-01 00:00:00+00:00,]`},
	}

	for _, tt := range tests {
		code, stdout, stderr := runCommand(t, "encode", tt.typ, tt.json)
		require.Equalf(t, 0, code, "%s %s: %s", tt.typ, tt.json, stderr)
		assert.Equalf(t, tt.want+"\n", stdout, "%s %s", tt.typ, tt.json)
	}
}

func TestRunEncodeErrors(t *testing.T) {
	for _, args := range [][]string{
		{"encode", "inet", `"bogus"`},
		{"encode", "int4", `"x"`},
		{"encode", "int4[]", `{"a":1}`},
		{"encode", "int4", `null`},
		{"encode", "int4", `1 2`},
		{"encode", "int4", `1]`},
		{"encode", "int2", `70000`},
		{"encode", "int4", `3000000000`},
		{"encode", "hstore", `{"a":1}`},
		{"encode", "int4range", `[1,2]`},
		{"encode", "nosuchtype", `1`},
	} {
		code, _, stderr := runCommand(t, args...)
		assert.Equalf(t, 1, code, "%v", args)
		assert.Containsf(t, stderr, "pgcast: ", "%v", args)
	}
}

func TestRunWithConfigFile(t *testing.T) {
	path := writeConfig(t, "numeric: decimal\narray_escaping: double\nformat: yaml\n")

	code, stdout, stderr := runCommand(t, "-config", path, "encode", "numrange", `{"lower":"1.50","upper":2}`)
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "[1.5,2]\n", stdout)

	code, stdout, stderr = runCommand(t, "-config", path, "encode", "text[]", `["a\\b"]`)
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, `{"a\\\\b"}`+"\n", stdout)

	code, stdout, stderr = runCommand(t, "-config", path, "decode", "numeric[]", "{1.50,NULL}")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "- \"1.5\"\n- null\n", stdout)

	code, stdout, stderr = runCommand(t, "-config", path, "-format", "json", "decode", "int2[]", "{7}")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "[7]\n", stdout)
}

func TestRunJSONUseNumber(t *testing.T) {
	path := writeConfig(t, "json_use_number: true\n")

	code, stdout, stderr := runCommand(t, "-config", path, "decode", "json", `{"n":1.10}`)
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, `{"n":1.10}`+"\n", stdout)
}

func TestRunInvalidConfig(t *testing.T) {
	code, _, stderr := runCommand(t, "-format", "xml", "decode", "int4", "1")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Format must be one of [json yaml msgpack cbor]")

	path := writeConfig(t, "colour: blue\n")
	code, _, stderr = runCommand(t, "-config", path, "decode", "int4", "1")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "parse config")

	code, _, _ = runCommand(t, "-config", filepath.Join(t.TempDir(), "missing.yaml"), "decode", "int4", "1")
	assert.Equal(t, 1, code)
}

func TestRunUsage(t *testing.T) {
	code, _, stderr := runCommand(t)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "usage: pgcast")

	code, _, _ = runCommand(t, "convert", "int4", "1")
	assert.Equal(t, 2, code)

	code, _, _ = runCommand(t, "-bogus")
	assert.Equal(t, 2, code)
}
