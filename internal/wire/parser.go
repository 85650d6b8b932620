package wire

import (
	"strconv"
	"strings"
)

const headTerminator = "\r\n\r\n"

// Outcome is the result of one Parse attempt.
type Outcome struct {
	Request *Request
	// Consumed is the number of bytes of the input buffer this request
	// used, including the head terminator and the body. Any trailing
	// bytes belong to the next pipelined request.
	Consumed int
	Err      *ParseError
}

// Parse tries to decode one HTTP request from the front of buf. maxBytes is
// a firm cap on head+body: requests that would exceed it are rejected
// outright rather than silently truncated. Callers that read from a socket
// in multiple chunks should keep appending to buf and calling Parse again
// whenever it returns an Incomplete error; any other error or a non-nil
// Request is final for this buffer position.
func Parse(buf []byte, maxBytes int) Outcome {
	idx := strings.Index(string(buf), headTerminator)
	if idx == -1 {
		if len(buf) >= maxBytes {
			return Outcome{Err: &ParseError{Kind: Malformed}}
		}
		return Outcome{Err: &ParseError{Kind: Incomplete}}
	}

	head := string(buf[:idx])
	lines := strings.Split(head, "\r\n")
	if len(lines) < 1 || lines[0] == "" {
		return Outcome{Err: &ParseError{Kind: Malformed}}
	}

	method, target, version, ok := parseRequestLine(lines[0])
	if !ok {
		return Outcome{Err: &ParseError{Kind: Malformed}}
	}
	if version != "HTTP/1.0" && version != "HTTP/1.1" {
		return Outcome{Err: &ParseError{Kind: UnsupportedVersion}}
	}

	headers := NewHeader()
	for _, line := range lines[1:] {
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		headers.Set(strings.ToLower(strings.TrimSpace(key)), strings.TrimSpace(value))
	}

	if te, ok := headers.Get("transfer-encoding"); ok && strings.Contains(strings.ToLower(te), "chunked") {
		return Outcome{Err: &ParseError{Kind: Malformed}}
	}

	contentLength := 0
	if cl, ok := headers.Get("content-length"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(cl))
		if err != nil || n < 0 {
			return Outcome{Err: &ParseError{Kind: Malformed}}
		}
		contentLength = n
	}

	headEnd := idx + len(headTerminator)
	total := headEnd + contentLength
	if total > maxBytes {
		return Outcome{Err: &ParseError{Kind: TooLarge}}
	}
	if len(buf) < total {
		return Outcome{Err: &ParseError{Kind: Incomplete}}
	}

	body := make([]byte, contentLength)
	copy(body, buf[headEnd:total])

	return Outcome{
		Request: &Request{
			Method:  strings.ToUpper(method),
			Target:  target,
			Version: version,
			Headers: headers,
			Body:    body,
		},
		Consumed: total,
	}
}

// parseRequestLine splits "METHOD SP TARGET SP VERSION" into exactly three
// space-delimited tokens.
func parseRequestLine(line string) (method, target, version string, ok bool) {
	parts := strings.Split(line, " ")
	if len(parts) != 3 {
		return "", "", "", false
	}
	for _, p := range parts {
		if p == "" {
			return "", "", "", false
		}
	}
	return parts[0], parts[1], parts[2], true
}
