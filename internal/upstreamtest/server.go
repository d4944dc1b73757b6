// Package upstreamtest provides a fake upstream service and a recording
// token provider for tests of the BFF.
package upstreamtest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// Server is a fake upstream. It answers configured routes and records
// every request it receives, including the Authorization header.
type Server struct {
	server    *httptest.Server
	responses map[string]Response
	requests  []Request
	mu        sync.Mutex
}

// Response defines the answer for one route.
type Response struct {
	StatusCode int
	Body       any
	Delay      time.Duration
	Headers    map[string]string

	// Chunks are written one by one with ChunkDelay between them, so a slow
	// but steady body can be told apart from a stalled one.
	Chunks     []string
	ChunkDelay time.Duration
}

// Request is one recorded request.
type Request struct {
	Method        string
	Path          string
	Authorization string
	RequestID     string
	ContentType   string
	TraceParent   string
	Body          []byte
}

// NewServer starts a fake upstream.
func NewServer() *Server {
	s := &Server{
		responses: make(map[string]Response),
	}
	s.server = httptest.NewServer(http.HandlerFunc(s.handler))
	return s
}

// URL returns the base URL, without a trailing slash.
func (s *Server) URL() string {
	return s.server.URL
}

// Close shuts the server down.
func (s *Server) Close() {
	s.server.CloseClientConnections()
	s.server.Close()
}

// Handle sets the response for method and path. An empty method matches
// every method.
func (s *Server) Handle(method, path string, response Response) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.responses[method+" "+path] = response
}

// Requests returns a copy of the recorded requests.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Request(nil), s.requests...)
}

// RequestCount returns the number of requests received.
func (s *Server) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.requests)
}

// Reset clears the recorded requests.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = nil
}

func (s *Server) handler(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method:        r.Method,
		Path:          r.URL.Path,
		Authorization: r.Header.Get("Authorization"),
		RequestID:     r.Header.Get("X-Request-ID"),
		ContentType:   r.Header.Get("Content-Type"),
		TraceParent:   r.Header.Get("traceparent"),
		Body:          body,
	})
	response, ok := s.responses[r.Method+" "+r.URL.Path]
	if !ok {
		response, ok = s.responses[" "+r.URL.Path]
	}
	s.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}

	if response.Delay > 0 {
		select {
		case <-time.After(response.Delay):
		case <-r.Context().Done():
			return
		}
	}

	for key, value := range response.Headers {
		w.Header().Set(key, value)
	}

	status := response.StatusCode
	if status == 0 {
		status = http.StatusOK
	}

	if len(response.Chunks) > 0 {
		s.writeChunks(w, r, status, response)
		return
	}

	w.WriteHeader(status)

	switch v := response.Body.(type) {
	case nil:
	case string:
		_, _ = w.Write([]byte(v))
	case []byte:
		_, _ = w.Write(v)
	default:
		_ = json.NewEncoder(w).Encode(v)
	}
}

func (s *Server) writeChunks(w http.ResponseWriter, r *http.Request, status int, response Response) {
	flusher, _ := w.(http.Flusher)

	w.WriteHeader(status)
	for i, chunk := range response.Chunks {
		if i > 0 && response.ChunkDelay > 0 {
			select {
			case <-time.After(response.ChunkDelay):
			case <-r.Context().Done():
				return
			}
		}
		_, _ = io.WriteString(w, chunk)
		if flusher != nil {
			flusher.Flush()
		}
	}
}
