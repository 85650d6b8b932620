package httpserver

import (
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/disiqueira/httpserver/internal/clock"
	"github.com/disiqueira/httpserver/internal/config"
	"github.com/disiqueira/httpserver/internal/hostguard"
	"github.com/disiqueira/httpserver/internal/metrics"
	"github.com/disiqueira/httpserver/internal/wire"
)

// readChunkSize is how many bytes each individual socket Read pulls while
// assembling a request; the overall request is still capped at
// cfg.MaxRequestBytes.
const readChunkSize = 4096

// serveConnection drives one connection through its full lifecycle: read a
// request, dispatch it, write the response, and either read the next
// request or close, repeating until the connection is done. It owns the
// socket for its whole lifetime and releases it on every exit path.
func serveConnection(item HandoffItem, cfg *config.ServerConfig, authority hostguard.Authority, log *slog.Logger, collectors *metrics.Collectors) {
	conn := item.Conn
	defer conn.Close()

	log.Info("connection opened", "event", "open", "peer", item.Peer)

	served := 0
	var buf []byte

	for {
		start := time.Now()
		status, bodyLen, shouldClose := handleOneRequest(conn, &buf, cfg, authority, log, item.Peer, served+1)
		if collectors != nil && status != 0 {
			collectors.ObserveStatus(status, time.Since(start))
		}
		_ = bodyLen

		if status == 0 {
			// No response was sent (timeout, reset, or clean EOF): close
			// silently.
			break
		}
		served++
		if shouldClose {
			break
		}
	}

	log.Info("connection closed", "event", "close", "peer", item.Peer, "requests", served)
}

// handleOneRequest assembles, guards, dispatches, and answers exactly one
// request, returning the status written (0 if none was sent), the body
// length written, and whether the connection must now close.
func handleOneRequest(conn net.Conn, buf *[]byte, cfg *config.ServerConfig, authority hostguard.Authority, log *slog.Logger, peer string, requestCount int) (status int, bodyLen int, mustClose bool) {
	req, parseErr, sent := assembleRequest(conn, buf, cfg, log, peer)
	if !sent {
		return 0, 0, true
	}
	if parseErr != nil {
		status = statusForParseError(parseErr)
		n, _ := writeAndLog(conn, wireErrorFor(parseErr), cfg, log, peer, status, "close")
		return status, n, true
	}

	log.Info("request line", "event", "request", "peer", peer, "method", req.Method, "target", req.Target, "version", req.Version)

	hostHeader, present := req.Header("Host")
	outcome, observed := hostguard.Check(hostHeader, present, authority)
	switch outcome {
	case hostguard.Missing:
		log.Warn("security event", "event", "Missing Host header", "peer", peer)
		n, _ := writeAndLog(conn, errorResponse(400), cfg, log, peer, 400, "close")
		return 400, n, true
	case hostguard.Mismatch:
		log.Warn("security event", "event", "Host mismatch - "+observed, "peer", peer)
		n, _ := writeAndLog(conn, errorResponse(403), cfg, log, peer, 403, "close")
		return 403, n, true
	}
	log.Info("host validated", "event", "host_validation", "peer", peer, "host", observed)

	resp := dispatch(req, cfg, log)

	keepAlive := decideKeepAlive(req, requestCount, cfg) && resp.Status != 500
	connectionValue := "close"
	if keepAlive {
		connectionValue = "keep-alive"
		resp.Headers.SetIfAbsent("Keep-Alive", "timeout="+strconv.Itoa(int(cfg.IdleTimeout.Seconds()))+", max="+strconv.Itoa(cfg.MaxRequestsPerConn))
	}
	resp.Headers.Set("Connection", connectionValue)

	n, ok := writeAndLog(conn, resp, cfg, log, peer, resp.Status, connectionValue)
	return resp.Status, n, !keepAlive || !ok
}

// assembleRequest reads from conn until a full request is available in buf
// or a terminal condition (timeout/EOF/error/parse failure) is reached.
func assembleRequest(conn net.Conn, buf *[]byte, cfg *config.ServerConfig, log *slog.Logger, peer string) (req *wire.Request, parseErr *wire.ParseError, sent bool) {
	if err := conn.SetReadDeadline(time.Now().Add(cfg.IdleTimeout)); err != nil {
		return nil, nil, false
	}

	chunk := make([]byte, readChunkSize)
	for {
		outcome := wire.Parse(*buf, cfg.MaxRequestBytes)
		if outcome.Err == nil {
			*buf = (*buf)[outcome.Consumed:]
			return outcome.Request, nil, true
		}
		if outcome.Err.Kind != wire.Incomplete {
			*buf = nil
			return nil, outcome.Err, true
		}

		n, err := conn.Read(chunk)
		if n > 0 {
			*buf = append(*buf, chunk[:n]...)
			continue
		}
		if err != nil {
			logReadTermination(log, peer, err)
			return nil, nil, false
		}
	}
}

func logReadTermination(log *slog.Logger, peer string, err error) {
	var netErr net.Error
	switch {
	case errors.As(err, &netErr) && netErr.Timeout():
		log.Info("connection idle timeout", "event", "timeout", "peer", peer)
	case errors.Is(err, io.EOF):
		log.Info("connection eof", "event", "eof", "peer", peer)
	case isConnReset(err):
		log.Info("connection reset by peer", "event", "reset", "peer", peer)
	default:
		log.Warn("read error", "event", "read_error", "peer", peer, "error", err)
	}
}

func isConnReset(err error) bool {
	return errors.Is(err, syscall.ECONNRESET) || errors.Is(err, os.ErrClosed)
}

func statusForParseError(err *wire.ParseError) int {
	switch err.Kind {
	case wire.TooLarge:
		return 413
	default:
		return 400
	}
}

func wireErrorFor(err *wire.ParseError) *wire.Response {
	return errorResponse(statusForParseError(err))
}

func dispatch(req *wire.Request, cfg *config.ServerConfig, log *slog.Logger) *wire.Response {
	switch req.Method {
	case "GET":
		return handleGET(req, cfg, log)
	case "POST":
		return handlePOST(req, cfg, log)
	default:
		resp := errorResponse(405)
		resp.Headers.Set("Allow", "GET, POST")
		return resp
	}
}

// decideKeepAlive applies the version-dependent default keep-alive policy
// (HTTP/1.0 closes unless asked to stay open, HTTP/1.1 stays open unless
// asked to close) and forces a close once the per-connection request cap is
// reached.
func decideKeepAlive(req *wire.Request, requestCount int, cfg *config.ServerConfig) bool {
	if requestCount >= cfg.MaxRequestsPerConn {
		return false
	}
	connHeader, _ := req.Header("Connection")
	connHeader = strings.ToLower(strings.TrimSpace(connHeader))

	if req.Version == "HTTP/1.0" {
		return connHeader == "keep-alive"
	}
	return connHeader != "close"
}

// writeAndLog encodes and writes resp, reporting whether the write
// succeeded. A failed write means the peer never received a response, so
// the caller must treat the connection as closed regardless of the
// keep-alive decision.
func writeAndLog(conn net.Conn, resp *wire.Response, cfg *config.ServerConfig, log *slog.Logger, peer string, status int, connectionValue string) (bodyLen int, ok bool) {
	date := clock.HTTPDate(time.Now())
	out := wire.Encode(resp, date, connectionValue)
	if _, err := conn.Write(out); err != nil {
		log.Warn("write error", "event", "write_error", "peer", peer, "error", err)
		return len(resp.Body), false
	}
	log.Info("response sent", "event", "response", "peer", peer, "status", status, "bytes", len(resp.Body))
	return len(resp.Body), true
}
