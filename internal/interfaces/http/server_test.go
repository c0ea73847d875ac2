package http

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/perm-tracker/internal/config"
	"github.com/turtacn/perm-tracker/internal/testutil"
)

func TestNewServer(t *testing.T) {
	t.Parallel()
	mux := http.NewServeMux()
	srv := NewServer(config.ServerConfig{Host: "127.0.0.1", Port: 8080, ReadTimeout: time.Second}, mux, nil)

	assert.Equal(t, "127.0.0.1:8080", srv.Addr())
	assert.Equal(t, mux, srv.Handler())
	assert.Equal(t, time.Second, srv.srv.ReadTimeout)
}

func TestServer_StartStop(t *testing.T) {
	t.Parallel()
	// Reserve a free port, then release it for the server.
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := lis.Addr().(*net.TCPAddr).Port
	require.NoError(t, lis.Close())

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	log := testutil.NewMockLogger()
	srv := NewServer(config.ServerConfig{Host: "127.0.0.1", Port: port, ShutdownTimeout: time.Second}, mux, log)

	done := make(chan error, 1)
	go func() { done <- srv.Start() }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + srv.Addr() + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	require.NoError(t, srv.Stop(context.Background()))
	assert.NoError(t, <-done)
	assert.True(t, log.HasMessage("info", "http: HTTP server stopped"))
}

func TestServer_StartFailsOnBusyPort(t *testing.T) {
	t.Parallel()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer lis.Close()
	port := lis.Addr().(*net.TCPAddr).Port

	srv := NewServer(config.ServerConfig{Host: "127.0.0.1", Port: port}, http.NewServeMux(), nil)
	assert.Error(t, srv.Start())
}
