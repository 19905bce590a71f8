package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerConfig_Defaults(t *testing.T) {
	config := ServerConfig{Port: 8080}.withDefaults()
	assert.Equal(t, 8080, config.Port)
	assert.Equal(t, 10*time.Second, config.ShutdownTimeout)
	assert.Equal(t, 30*time.Second, config.MetricsInterval)

	config = ServerConfig{ShutdownTimeout: time.Second, MetricsInterval: time.Minute}.withDefaults()
	assert.Equal(t, time.Second, config.ShutdownTimeout)
	assert.Equal(t, time.Minute, config.MetricsInterval)
}

func TestServer_ServeAndShutdown(t *testing.T) {
	ts := setupTestServer(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- ts.server.Serve(ctx, ln)
	}()

	resp, err := http.Get(fmt.Sprintf("http://%s/health", ln.Addr().String()))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestStartServer_ListenError(t *testing.T) {
	ts := setupTestServer(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	port := ln.Addr().(*net.TCPAddr).Port
	err = StartServer(context.Background(), ts.records, ServerConfig{Bind: "127.0.0.1", Port: port}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to listen")
}

func TestServerFactory(t *testing.T) {
	factory := NewServerFactory()
	starter := factory.CreateServerStarter()
	assert.IsType(t, &DefaultServerStarter{}, starter)
}
