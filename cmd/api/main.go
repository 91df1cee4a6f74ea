package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/ahmad8929/bloom-tales-frontend-sub000/internal/app/api"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := api.Run(ctx); err != nil {
		log.Fatalf("orders api: %v", err)
	}
}
