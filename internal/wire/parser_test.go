package wire_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/disiqueira/httpserver/internal/wire"
)

func TestParseSimpleGet(t *testing.T) {
	raw := "GET / HTTP/1.1\r\nHost: localhost:8080\r\n\r\n"
	out := wire.Parse([]byte(raw), 8192)
	require.Nil(t, out.Err)
	require.NotNil(t, out.Request)
	assert.Equal(t, "GET", out.Request.Method)
	assert.Equal(t, "/", out.Request.Target)
	assert.Equal(t, "HTTP/1.1", out.Request.Version)
	host, ok := out.Request.Header("Host")
	assert.True(t, ok)
	assert.Equal(t, "localhost:8080", host)
	assert.Equal(t, len(raw), out.Consumed)
}

func TestParseUppercasesMethod(t *testing.T) {
	raw := "get / HTTP/1.1\r\nHost: x\r\n\r\n"
	out := wire.Parse([]byte(raw), 8192)
	require.Nil(t, out.Err)
	assert.Equal(t, "GET", out.Request.Method)
}

func TestParseDuplicateHeaderLastWins(t *testing.T) {
	raw := "GET / HTTP/1.1\r\nHost: first\r\nHost: second\r\n\r\n"
	out := wire.Parse([]byte(raw), 8192)
	require.Nil(t, out.Err)
	host, _ := out.Request.Header("Host")
	assert.Equal(t, "second", host)
}

func TestParseBodyWithContentLength(t *testing.T) {
	body := `{"test":"data"}`
	raw := "POST /upload HTTP/1.1\r\nHost: localhost:8080\r\nContent-Type: application/json\r\nContent-Length: " +
		"15\r\n\r\n" + body
	out := wire.Parse([]byte(raw), 8192)
	require.Nil(t, out.Err)
	assert.Equal(t, body, string(out.Request.Body))
	assert.Equal(t, len(raw), out.Consumed)
}

func TestParseIncompleteAwaitsMoreBytes(t *testing.T) {
	raw := "GET / HTTP/1.1\r\nHost: x"
	out := wire.Parse([]byte(raw), 8192)
	require.NotNil(t, out.Err)
	assert.Equal(t, wire.Incomplete, out.Err.Kind)
}

func TestParseIncompleteBodyAwaitsMoreBytes(t *testing.T) {
	raw := "POST / HTTP/1.1\r\nHost: x\r\nContent-Length: 10\r\n\r\nabc"
	out := wire.Parse([]byte(raw), 8192)
	require.NotNil(t, out.Err)
	assert.Equal(t, wire.Incomplete, out.Err.Kind)
}

func TestParseMalformedNoTerminatorAtCap(t *testing.T) {
	raw := strings.Repeat("a", 20)
	out := wire.Parse([]byte(raw), 20)
	require.NotNil(t, out.Err)
	assert.Equal(t, wire.Malformed, out.Err.Kind)
}

func TestParseMalformedRequestLine(t *testing.T) {
	raw := "GET /\r\nHost: x\r\n\r\n"
	out := wire.Parse([]byte(raw), 8192)
	require.NotNil(t, out.Err)
	assert.Equal(t, wire.Malformed, out.Err.Kind)
}

func TestParseUnsupportedVersion(t *testing.T) {
	raw := "GET / HTTP/2.0\r\nHost: x\r\n\r\n"
	out := wire.Parse([]byte(raw), 8192)
	require.NotNil(t, out.Err)
	assert.Equal(t, wire.UnsupportedVersion, out.Err.Kind)
}

func TestParseChunkedRejected(t *testing.T) {
	raw := "POST / HTTP/1.1\r\nHost: x\r\nTransfer-Encoding: chunked\r\n\r\n"
	out := wire.Parse([]byte(raw), 8192)
	require.NotNil(t, out.Err)
	assert.Equal(t, wire.Malformed, out.Err.Kind)
}

func TestParseBadContentLength(t *testing.T) {
	raw := "POST / HTTP/1.1\r\nHost: x\r\nContent-Length: -5\r\n\r\n"
	out := wire.Parse([]byte(raw), 8192)
	require.NotNil(t, out.Err)
	assert.Equal(t, wire.Malformed, out.Err.Kind)
}

func TestParseTooLarge(t *testing.T) {
	raw := "POST / HTTP/1.1\r\nHost: x\r\nContent-Length: 9000\r\n\r\n"
	out := wire.Parse([]byte(raw), 8192)
	require.NotNil(t, out.Err)
	assert.Equal(t, wire.TooLarge, out.Err.Kind)
}

func TestParsePipelinedLeavesTrailingBytes(t *testing.T) {
	first := "GET / HTTP/1.1\r\nHost: x\r\n\r\n"
	second := "GET /again HTTP/1.1\r\nHost: x\r\n\r\n"
	out := wire.Parse([]byte(first+second), 8192)
	require.Nil(t, out.Err)
	assert.Equal(t, len(first), out.Consumed)
}
