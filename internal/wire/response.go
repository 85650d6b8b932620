package wire

import (
	"bytes"
	"fmt"
	"strconv"
)

// ServerHeaderValue is the Server header every response carries.
const ServerHeaderValue = "Multi-threaded HTTP Server"

var statusText = map[int]string{
	200: "OK",
	201: "Created",
	400: "Bad Request",
	403: "Forbidden",
	404: "Not Found",
	405: "Method Not Allowed",
	413: "Request Entity Too Large",
	415: "Unsupported Media Type",
	500: "Internal Server Error",
}

// StatusText returns the reason phrase for a status code known to this
// server, falling back to a generic phrase for anything else.
func StatusText(code int) string {
	if t, ok := statusText[code]; ok {
		return t
	}
	return "Status " + strconv.Itoa(code)
}

// Response is a status line + headers + body produced by a handler and
// consumed once by Encode.
type Response struct {
	Status  int
	Headers *Header
	Body    []byte
}

// NewResponse builds a Response with an empty header set.
func NewResponse(status int, body []byte) *Response {
	return &Response{Status: status, Headers: NewHeader(), Body: body}
}

// Encode serializes r to the wire form: a status line that always
// advertises HTTP/1.1 regardless of the request's version, then headers in
// insertion order, a blank line, then the body verbatim. date and
// connection are supplied by the caller (the connection driver owns the
// keep-alive decision and the clock).
func Encode(r *Response, date, connection string) []byte {
	r.Headers.SetIfAbsent("Date", date)
	r.Headers.SetIfAbsent("Server", ServerHeaderValue)
	r.Headers.SetIfAbsent("Content-Length", strconv.Itoa(len(r.Body)))
	r.Headers.SetIfAbsent("Connection", connection)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "HTTP/1.1 %d %s\r\n", r.Status, StatusText(r.Status))
	for _, key := range r.Headers.Keys() {
		value, _ := r.Headers.Get(key)
		fmt.Fprintf(&buf, "%s: %s\r\n", key, value)
	}
	buf.WriteString("\r\n")
	buf.Write(r.Body)
	return buf.Bytes()
}
