package upstream

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"time"
)

// deadlineConn arms a fresh deadline before every read and write, so the
// timeouts bound each socket operation rather than the whole exchange. A
// response that keeps trickling in never times out; a stalled one does.
//
// The deadlines belong to the connection, so the transport must never
// multiplex requests on it: see newTransport.
type deadlineConn struct {
	net.Conn
	readTimeout  time.Duration
	writeTimeout time.Duration
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
	if c.readTimeout > 0 {
		// The transport's reader is already parked on this conn waiting for
		// the response; restart its clock now that a request goes out.
		if err := c.Conn.SetReadDeadline(time.Now().Add(c.readTimeout)); err != nil {
			return 0, err
		}
	}
	return c.Conn.Write(b)
}

// newTransport builds the transport shared by every upstream call.
//
// HTTP/2 is disabled. On a multiplexed connection frames of other streams
// would re-arm the deadlines of a stalled request, and one stream's timeout
// would tear down every request sharing the connection. Over HTTP/1.1 each
// connection carries one request at a time.
func newTransport(cfg ClientConfig) *http.Transport {
	dialer := &net.Dialer{
		Timeout:   cfg.ConnectTimeout,
		KeepAlive: 30 * time.Second,
	}

	// Idle connections must be retired before an idle read deadline fires.
	idle := 90 * time.Second
	if cfg.ReadTimeout > 0 && cfg.ReadTimeout/2 < idle {
		idle = cfg.ReadTimeout / 2
	}

	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			return &deadlineConn{
				Conn:         conn,
				readTimeout:  cfg.ReadTimeout,
				writeTimeout: cfg.WriteTimeout,
			}, nil
		},
		TLSHandshakeTimeout: cfg.ConnectTimeout,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     idle,
		ForceAttemptHTTP2:   false,
		TLSNextProto:        map[string]func(string, *tls.Conn) http.RoundTripper{},
	}
}
