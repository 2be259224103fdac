package server

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlibekovAA/inference-auth/internal/common/logger"
)

func TestShutdown_RunsHooksAfterServerStops(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "test", "debug")

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	server := NewServer(DefaultServerConfig("0"), http.NotFoundHandler(), log)
	served := make(chan error, 1)
	go func() { served <- server.Serve(ln) }()

	var order []string
	hooks := []ShutdownHook{
		func(context.Context) error {
			order = append(order, "first")
			return errors.New("close failed")
		},
		func(context.Context) error {
			order = append(order, "second")
			return nil
		},
	}

	Shutdown(server, log, "auth", hooks)

	assert.ErrorIs(t, <-served, http.ErrServerClosed)
	assert.Equal(t, []string{"first", "second"}, order)
	assert.Contains(t, buf.String(), "shutdown hook 0 failed")
	assert.Contains(t, buf.String(), "stopped gracefully")
}

func TestDefaultServerConfig(t *testing.T) {
	cfg := DefaultServerConfig("8081")

	assert.Equal(t, ":8081", cfg.Addr)
	assert.Positive(t, cfg.ReadHeaderTimeout)
	assert.Positive(t, cfg.IdleTimeout)
}

func TestNewServer_RoutesErrorLogToLogger(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "test", "debug")

	server := NewServer(DefaultServerConfig("8081"), http.NotFoundHandler(), log)
	require.NotNil(t, server.ErrorLog)

	server.ErrorLog.Printf("http: TLS handshake error from 10.0.0.1:5000: EOF")

	assert.Contains(t, buf.String(), "action=http_server_error")
	assert.Contains(t, buf.String(), "TLS handshake error")
}
