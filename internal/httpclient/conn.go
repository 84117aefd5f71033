package httpclient

import (
	"net"
	"time"
)

// deadlineConn pushes the read or write deadline forward before every
// Read and Write, so the timeouts bound inactivity rather than the whole
// exchange.
type deadlineConn struct {
	net.Conn
	readTimeout  time.Duration
	writeTimeout time.Duration
}

func newDeadlineConn(conn net.Conn, read, write time.Duration) net.Conn {
	return &deadlineConn{Conn: conn, readTimeout: read, writeTimeout: write}
}

func (c *deadlineConn) Read(b []byte) (int, error) {
	if c.readTimeout > 0 {
		if err := c.Conn.SetReadDeadline(time.Now().Add(c.readTimeout)); err != nil {
			return 0, err
		}
	}
	return c.Conn.Read(b)
}

func (c *deadlineConn) Write(b []byte) (int, error) {
	if c.writeTimeout > 0 {
		if err := c.Conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
			return 0, err
		}
	}
	return c.Conn.Write(b)
}
