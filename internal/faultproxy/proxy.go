// Package faultproxy is an in-process TCP proxy that injects network faults
// between a client and a real server: latency with jitter, bandwidth limits
// down to a complete cut, and connection resets. Toxics can be added and
// removed while connections are open and apply to the next chunk copied.
package faultproxy

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net"
	"sync"
	"time"
)

// Direction selects which half of a connection a toxic applies to.
type Direction int

const (
	// Downstream is data flowing from the server back to the client.
	Downstream Direction = iota
	// Upstream is data flowing from the client to the server.
	Upstream
)

func (d Direction) String() string {
	if d == Upstream {
		return "upstream"
	}
	return "downstream"
}

const chunkSize = 32 * 1024

type toxicKind int

const (
	kindLatency toxicKind = iota
	kindBandwidth
	kindReset
)

type toxic struct {
	kind      toxicKind
	direction Direction
	latency   time.Duration
	jitter    time.Duration
	rate      int64
}

// Proxy forwards every accepted connection to a fixed target address.
type Proxy struct {
	listener net.Listener
	target   string
	logger   *slog.Logger

	mu      sync.Mutex
	toxics  map[string]toxic
	changed chan struct{}
	links   map[*link]struct{}
	closed  bool

	done chan struct{}
	wg   sync.WaitGroup
}

// New starts a proxy on a random loopback port in front of target
// ("host:port").
func New(target string) (*Proxy, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("faultproxy: failed to listen: %w", err)
	}

	p := &Proxy{
		listener: ln,
		target:   target,
		logger:   slog.Default().With("component", "faultproxy", "target", target),
		toxics:   make(map[string]toxic),
		changed:  make(chan struct{}),
		links:    make(map[*link]struct{}),
		done:     make(chan struct{}),
	}

	p.wg.Add(1)
	go p.accept()

	return p, nil
}

// Addr returns the proxy's listen address.
func (p *Proxy) Addr() string {
	return p.listener.Addr().String()
}

// URL returns "http://" + Addr().
func (p *Proxy) URL() string {
	return "http://" + p.Addr()
}

// AddLatency delays every chunk flowing in direction by latency plus a
// uniformly distributed offset in [-jitter, +jitter].
func (p *Proxy) AddLatency(name string, direction Direction, latency, jitter time.Duration) {
	p.set(name, toxic{kind: kindLatency, direction: direction, latency: latency, jitter: jitter})
}

// AddBandwidth limits direction to bytesPerSecond. Zero stops the flow
// entirely until the toxic is removed.
func (p *Proxy) AddBandwidth(name string, direction Direction, bytesPerSecond int64) {
	p.set(name, toxic{kind: kindBandwidth, direction: direction, rate: bytesPerSecond})
}

// AddReset closes connections with a TCP reset: new connections right after
// they are accepted, open ones at their next chunk in direction.
func (p *Proxy) AddReset(name string, direction Direction) {
	p.set(name, toxic{kind: kindReset, direction: direction})
}

// Remove deletes the named toxic. Removing an unknown name is a no-op.
func (p *Proxy) Remove(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.toxics[name]; !ok {
		return
	}
	delete(p.toxics, name)
	p.broadcastLocked()
}

// RemoveAll deletes every toxic.
func (p *Proxy) RemoveAll() {
	p.mu.Lock()
	defer p.mu.Unlock()

	clear(p.toxics)
	p.broadcastLocked()
}

// Toxics returns the names of the active toxics.
func (p *Proxy) Toxics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	names := make([]string, 0, len(p.toxics))
	for name := range p.toxics {
		names = append(names, name)
	}
	return names
}

// Close stops accepting, drops every open connection and waits for the
// copy goroutines to exit.
func (p *Proxy) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.done)
	links := make([]*link, 0, len(p.links))
	for l := range p.links {
		links = append(links, l)
	}
	p.mu.Unlock()

	err := p.listener.Close()
	for _, l := range links {
		l.close()
	}
	p.wg.Wait()
	return err
}

func (p *Proxy) set(name string, t toxic) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.toxics[name] = t
	p.broadcastLocked()
}

// broadcastLocked wakes every copier waiting for a toxic change.
func (p *Proxy) broadcastLocked() {
	close(p.changed)
	p.changed = make(chan struct{})
}

// snapshot returns the toxics for direction and a channel closed on the
// next change.
func (p *Proxy) snapshot(direction Direction) ([]toxic, <-chan struct{}) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var active []toxic
	for _, t := range p.toxics {
		if t.direction == direction {
			active = append(active, t)
		}
	}
	return active, p.changed
}

func (p *Proxy) resetActive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, t := range p.toxics {
		if t.kind == kindReset {
			return true
		}
	}
	return false
}

func (p *Proxy) accept() {
	defer p.wg.Done()

	for {
		client, err := p.listener.Accept()
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				p.logger.Error("accept failed", "error", err)
			}
			return
		}

		if p.resetActive() {
			abort(client)
			continue
		}

		server, err := net.DialTimeout("tcp", p.target, 5*time.Second)
		if err != nil {
			p.logger.Warn("dial target failed", "error", err)
			abort(client)
			continue
		}

		l := &link{client: client, server: server}
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			l.close()
			return
		}
		p.links[l] = struct{}{}
		p.mu.Unlock()

		p.wg.Add(1)
		go p.serve(l)
	}
}

func (p *Proxy) serve(l *link) {
	defer p.wg.Done()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		p.pipe(l, l.server, l.client, Upstream)
	}()
	go func() {
		defer wg.Done()
		p.pipe(l, l.client, l.server, Downstream)
	}()
	wg.Wait()

	l.close()
	p.mu.Lock()
	delete(p.links, l)
	p.mu.Unlock()
}

// pipe copies src to dst chunk by chunk, applying the toxics of direction
// to every chunk before it is written.
func (p *Proxy) pipe(l *link, dst, src net.Conn, direction Direction) {
	buf := make([]byte, chunkSize)
	for {
		n, err := src.Read(buf)
		if n > 0 {
			if !p.apply(l, direction, n) {
				return
			}
			if _, werr := dst.Write(buf[:n]); werr != nil {
				l.close()
				return
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				closeWrite(dst)
				return
			}
			l.close()
			return
		}
	}
}

// apply runs the toxics for one chunk of n bytes. It returns false when the
// link was reset or the proxy closed.
func (p *Proxy) apply(l *link, direction Direction, n int) bool {
	for {
		active, changed := p.snapshot(direction)

		var delay time.Duration
		cut := false
		for _, t := range active {
			switch t.kind {
			case kindReset:
				l.abort()
				return false
			case kindLatency:
				delay += t.latency
				if t.jitter > 0 {
					delay += time.Duration(rand.Int64N(int64(2*t.jitter)+1)) - t.jitter
				}
			case kindBandwidth:
				if t.rate <= 0 {
					cut = true
				} else {
					delay += time.Duration(int64(n) * int64(time.Second) / t.rate)
				}
			}
		}

		if cut {
			select {
			case <-changed:
				continue
			case <-l.closing():
				return false
			case <-p.done:
				return false
			}
		}

		if delay <= 0 {
			return true
		}
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
			return true
		case <-l.closing():
			timer.Stop()
			return false
		case <-p.done:
			timer.Stop()
			return false
		}
	}
}

// link is one proxied connection pair.
type link struct {
	client net.Conn
	server net.Conn

	once sync.Once
	mu   sync.Mutex
	done chan struct{}
}

func (l *link) closing() <-chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.done == nil {
		l.done = make(chan struct{})
	}
	return l.done
}

func (l *link) close() {
	l.once.Do(func() {
		l.mu.Lock()
		if l.done == nil {
			l.done = make(chan struct{})
		}
		close(l.done)
		l.mu.Unlock()

		l.client.Close()
		l.server.Close()
	})
}

func (l *link) abort() {
	setLingerZero(l.client)
	setLingerZero(l.server)
	l.close()
}

// abort closes conn with a TCP reset instead of a FIN.
func abort(conn net.Conn) {
	setLingerZero(conn)
	conn.Close()
}

func setLingerZero(conn net.Conn) {
	if tcp, ok := conn.(*net.TCPConn); ok {
		_ = tcp.SetLinger(0)
	}
}

func closeWrite(conn net.Conn) {
	if tcp, ok := conn.(*net.TCPConn); ok {
		_ = tcp.CloseWrite()
		return
	}
	conn.Close()
}
