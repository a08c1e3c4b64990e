package registry

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func proxyStub(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return New(server.URL, server.URL)
}

func TestInfo(t *testing.T) {
	client := proxyStub(t, func(w http.ResponseWriter, r *http.Request) {
		// Upper case letters in module paths arrive bang-escaped.
		assert.Equal(t, "/github.com/!acme/demo/@v/v1.2.3.info", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintln(w, `{"Version":"v1.2.3","Time":"2026-08-27T10:00:00Z"}`)
	})

	info, err := client.Info(context.Background(), "github.com/Acme/demo", "v1.2.3")
	require.NoError(t, err)

	assert.Equal(t, "v1.2.3", info.Version)
	assert.Equal(t, time.Date(2026, 8, 27, 10, 0, 0, 0, time.UTC), info.Time)
}

func TestInfoNotRegistered(t *testing.T) {
	client := proxyStub(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})

	_, err := client.Info(context.Background(), "example.com/demo", "v9.9.9")
	assert.ErrorIs(t, err, ErrNotRegistered)
}

func TestInfoRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32

	client := proxyStub(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "boom", http.StatusBadGateway)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintln(w, `{"Version":"v1.0.0","Time":"2026-01-01T00:00:00Z"}`)
	})

	info, err := client.Info(context.Background(), "example.com/demo", "v1.0.0")
	require.NoError(t, err)
	assert.Equal(t, "v1.0.0", info.Version)
	assert.Equal(t, int32(3), calls.Load())
}

func TestList(t *testing.T) {
	client := proxyStub(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/example.com/demo/@v/list", r.URL.Path)
		fmt.Fprint(w, "v1.0.0\nv1.1.0\nv1.2.3\n")
	})

	versions, err := client.List(context.Background(), "example.com/demo")
	require.NoError(t, err)
	assert.Equal(t, []string{"v1.0.0", "v1.1.0", "v1.2.3"}, versions)
}

func TestListUnknownModule(t *testing.T) {
	client := proxyStub(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusGone)
	})

	versions, err := client.List(context.Background(), "example.com/unknown")
	require.NoError(t, err)
	assert.Empty(t, versions)
}

func TestChecksum(t *testing.T) {
	client := proxyStub(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/lookup/example.com/demo@v1.2.3", r.URL.Path)
		fmt.Fprint(w, "12345\nexample.com/demo v1.2.3 h1:abc=\nexample.com/demo v1.2.3/go.mod h1:def=\n")
	})

	lines, err := client.Checksum(context.Background(), "example.com/demo", "v1.2.3")
	require.NoError(t, err)
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "h1:abc=")
}

func TestWaitRegistered(t *testing.T) {
	var calls atomic.Int32

	client := proxyStub(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 2 {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintln(w, `{"Version":"v1.2.3","Time":"2026-01-01T00:00:00Z"}`)
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	info, err := client.WaitRegistered(ctx, "example.com/demo", "v1.2.3")
	require.NoError(t, err)
	assert.Equal(t, "v1.2.3", info.Version)
	assert.GreaterOrEqual(t, calls.Load(), int32(2))
}

func TestWaitRegisteredGivesUp(t *testing.T) {
	client := proxyStub(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := client.WaitRegistered(ctx, "example.com/demo", "v1.2.3")
	assert.ErrorIs(t, err, ErrNotRegistered)
}

func TestDocURL(t *testing.T) {
	assert.Equal(t,
		"https://pkg.go.dev/example.com/demo@v1.2.3",
		DocURL("example.com/demo", "v1.2.3"))
}
