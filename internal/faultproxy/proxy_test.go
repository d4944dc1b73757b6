package faultproxy

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "pong")
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newProxy(t *testing.T, backend *httptest.Server) *Proxy {
	t.Helper()
	p, err := New(strings.TrimPrefix(backend.URL, "http://"))
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })
	return p
}

func client(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: &http.Transport{DisableKeepAlives: true},
	}
}

func fetch(c *http.Client, url string) (string, error) {
	resp, err := c.Get(url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	return string(body), err
}

func TestProxy_Passthrough(t *testing.T) {
	p := newProxy(t, newBackend(t))

	body, err := fetch(client(2*time.Second), p.URL())
	require.NoError(t, err)
	assert.Equal(t, "pong", body)
}

func TestProxy_Latency(t *testing.T) {
	p := newProxy(t, newBackend(t))
	p.AddLatency("slow", Downstream, 300*time.Millisecond, 50*time.Millisecond)

	start := time.Now()
	body, err := fetch(client(5*time.Second), p.URL())
	require.NoError(t, err)
	assert.Equal(t, "pong", body)
	assert.GreaterOrEqual(t, time.Since(start), 250*time.Millisecond)

	p.Remove("slow")
	start = time.Now()
	_, err = fetch(client(5*time.Second), p.URL())
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 250*time.Millisecond)
}

func TestProxy_BandwidthCutAndRestore(t *testing.T) {
	p := newProxy(t, newBackend(t))
	p.AddBandwidth("cut-down", Downstream, 0)
	p.AddBandwidth("cut-up", Upstream, 0)

	start := time.Now()
	_, err := fetch(client(300*time.Millisecond), p.URL())
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)

	p.Remove("cut-down")
	p.Remove("cut-up")
	assert.Empty(t, p.Toxics())

	body, err := fetch(client(2*time.Second), p.URL())
	require.NoError(t, err)
	assert.Equal(t, "pong", body)
}

func TestProxy_CutReleasedForOpenConnection(t *testing.T) {
	p := newProxy(t, newBackend(t))
	p.AddBandwidth("cut", Downstream, 0)

	done := make(chan string, 1)
	go func() {
		body, _ := fetch(client(5*time.Second), p.URL())
		done <- body
	}()

	time.Sleep(100 * time.Millisecond)
	p.RemoveAll()

	select {
	case body := <-done:
		assert.Equal(t, "pong", body)
	case <-time.After(3 * time.Second):
		t.Fatal("request not released after the cut was removed")
	}
}

func TestProxy_Reset(t *testing.T) {
	p := newProxy(t, newBackend(t))
	p.AddReset("reset", Downstream)

	_, err := fetch(client(2*time.Second), p.URL())
	require.Error(t, err)

	p.Remove("reset")
	body, err := fetch(client(2*time.Second), p.URL())
	require.NoError(t, err)
	assert.Equal(t, "pong", body)
}

func TestProxy_RemoveUnknown(t *testing.T) {
	p := newProxy(t, newBackend(t))
	p.Remove("missing")
	assert.Empty(t, p.Toxics())
}

func TestProxy_Close(t *testing.T) {
	p := newProxy(t, newBackend(t))
	p.AddBandwidth("cut", Upstream, 0)

	go fetch(client(5*time.Second), p.URL())
	time.Sleep(50 * time.Millisecond)

	closed := make(chan struct{})
	go func() {
		p.Close()
		close(closed)
	}()

	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("Close blocked on a cut connection")
	}

	assert.NoError(t, p.Close())
	_, err := fetch(client(time.Second), p.URL())
	assert.Error(t, err)
}

func TestDirection_String(t *testing.T) {
	assert.Equal(t, "upstream", Upstream.String())
	assert.Equal(t, "downstream", Downstream.String())
}
