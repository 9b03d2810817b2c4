package resp

import (
	"bufio"
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, v Value) Value {
	var buf bytes.Buffer
	require.NoError(t, NewEncoder(&buf).Encode(v))
	got, err := NewDecoder(bufio.NewReader(&buf)).Decode()
	require.NoError(t, err)
	return got
}

func TestRoundTrip(t *testing.T) {
	vals := []Value{
		SimpleStr("OK"),
		Err("bad command"),
		Int(0),
		Int(-1234),
		Int(9223372036854775807),
		BulkStr(""),
		BulkStr("hello world"),
		NullBulk(),
		Arr(),
		Arr(BulkStr("a"), BulkStr("b"), Int(3)),
		Arr(Arr(BulkStr("nested")), NullBulk()),
		NullArray(),
	}
	for _, v := range vals {
		got := roundTrip(t, v)
		assert.Equal(t, v, got)
	}
}

func TestDecodeCommand(t *testing.T) {
	raw := "*3\r\n$7\r\npublish\r\n$3\r\nfoo\r\n$5\r\nhello\r\n"
	v, err := NewDecoder(bufio.NewReader(bytes.NewBufferString(raw))).Decode()
	require.NoError(t, err)
	require.Equal(t, Array, v.Kind)
	require.Len(t, v.Elems, 3)
	assert.Equal(t, "publish", string(v.Elems[0].Bulk))
	assert.Equal(t, "foo", string(v.Elems[1].Bulk))
	assert.Equal(t, "hello", string(v.Elems[2].Bulk))
}

func TestDecodeInvalidFrame(t *testing.T) {
	cases := []string{
		"$abc\r\nfoo\r\n",
		"$5\r\nhi\r\n",
		"*2\r\n$1\r\na\r\n",
		"!unknown\r\n",
	}
	for _, raw := range cases {
		_, err := NewDecoder(bufio.NewReader(bytes.NewBufferString(raw))).Decode()
		assert.Error(t, err)
	}
}

func TestDecodeUnexpectedEOF(t *testing.T) {
	raw := "$5\r\nhel"
	_, err := NewDecoder(bufio.NewReader(bytes.NewBufferString(raw))).Decode()
	assert.Equal(t, io.ErrUnexpectedEOF, err)
}

func TestDecodeStreaming(t *testing.T) {
	// Two full frames back to back; the Decoder should read exactly one
	// per Decode call, leaving the second untouched for the next.
	raw := "+first\r\n+second\r\n"
	d := NewDecoder(bufio.NewReader(bytes.NewBufferString(raw)))

	v1, err := d.Decode()
	require.NoError(t, err)
	assert.Equal(t, "first", v1.Str)

	v2, err := d.Decode()
	require.NoError(t, err)
	assert.Equal(t, "second", v2.Str)
}
