package httpserver

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// acceptLoop owns the listen socket: it accepts connections, hands them to
// the pool, reports saturation, and stops cleanly when ctx is cancelled.
func (s *Server) acceptLoop(ctx context.Context) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 5 * time.Millisecond
	bo.MaxInterval = time.Second
	bo.MaxElapsedTime = 0

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return // shutdown in progress, expected Accept error on closed listener
			}
			var netErr net.Error
			if errors.As(err, &netErr) && (netErr.Timeout() || netErr.Temporary()) { //nolint:staticcheck // Temporary is deprecated but still the only signal for conditions like EMFILE
				s.log.Warn("accept temporary error, backing off", "error", err)
				time.Sleep(bo.NextBackOff())
				continue
			}
			s.log.Error("accept error, stopping acceptor", "error", err)
			return
		}
		bo.Reset()

		if s.pool.Saturated() {
			s.log.Warn("pool saturated, queuing connection", "event", "saturation", "active", s.pool.Active(), "total", s.pool.Size())
			if s.metrics != nil {
				s.metrics.SaturationEvents.Inc()
			}
		}

		if s.metrics != nil {
			s.metrics.ConnectionsTotal.Inc()
		}

		item := HandoffItem{Conn: conn, Peer: conn.RemoteAddr().String(), Accepted: time.Now()}
		s.pool.Submit(item)
	}
}
