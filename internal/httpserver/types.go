package httpserver

import (
	"net"
	"time"
)

// HandoffItem is a transfer of ownership of one accepted connection from the
// acceptor to a worker.
type HandoffItem struct {
	Conn     net.Conn
	Peer     string
	Accepted time.Time
}
