package server

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/AlibekovAA/inference-auth/internal/common/constants"
	"github.com/AlibekovAA/inference-auth/internal/common/logger"
)

type ServerConfig struct {
	Addr              string
	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
}

func DefaultServerConfig(port string) ServerConfig {
	return ServerConfig{
		Addr:              ":" + port,
		ReadHeaderTimeout: constants.ServerReadHeaderTimeout,
		ReadTimeout:       constants.ServerReadTimeout,
		WriteTimeout:      constants.ServerWriteTimeout,
		IdleTimeout:       constants.ServerIdleTimeout,
		MaxHeaderBytes:    constants.ServerMaxHeaderBytes,
	}
}

// NewServer builds the HTTP server. When log is set, net/http's own errors
// (bad handshakes, malformed requests) go to it at warning level.
func NewServer(cfg ServerConfig, handler http.Handler, log *logger.Logger) *http.Server {
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}
	if log != nil {
		server.ErrorLog = stdLogAdapter(log)
	}
	return server
}

type errorLogWriter struct {
	log *logger.Logger
}

func (w errorLogWriter) Write(p []byte) (int, error) {
	w.log.WithFields(context.Background(), logger.Fields{"action": "http_server_error"}).Warn(strings.TrimSpace(string(p)))
	return len(p), nil
}

func stdLogAdapter(l *logger.Logger) *log.Logger {
	return log.New(errorLogWriter{log: l}, "", 0)
}
