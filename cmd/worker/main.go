package main

import (
	"context"
	"log"

	"github.com/ahmad8929/bloom-tales-frontend-sub000/internal/app/worker"
)

func main() {
	if err := worker.Run(context.Background()); err != nil {
		log.Fatalf("orders worker: %v", err)
	}
}
