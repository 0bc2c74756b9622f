// Command server runs the recipe log API.
//
// Usage:
//
//	server
//
// Configuration comes from CONFIG_PATH and environment variables; see
// internal/config. AUTH_JWT_SECRET is required.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/mgoto/recipelog/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		log.Fatalf("server: %v", err)
	}
}
