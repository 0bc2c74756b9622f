// Command tokenrelay runs the local development token relay.
//
// Usage:
//
//	tokenrelay
//
// RELAY_HOST and RELAY_PORT control the listen address; the default is
// 127.0.0.1:8765. Tokens expire five minutes after being stored.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mgoto/recipelog/internal/relay"
	"github.com/mgoto/recipelog/internal/transport/middleware"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	host := os.Getenv("RELAY_HOST")
	if host == "" {
		host = "127.0.0.1"
	}
	port := os.Getenv("RELAY_PORT")
	if port == "" {
		port = "8765"
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	handler := relay.NewHandler(relay.NewStore(relay.DefaultTTL), logger)
	routes := middleware.Chain(
		middleware.Recovery(logger),
		middleware.Logger(logger),
	)(handler.Routes())

	server := &http.Server{
		Addr:         net.JoinHostPort(host, port),
		Handler:      routes,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("token relay listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("serve failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("tokenrelay: shutdown: %v", err)
	}
}
