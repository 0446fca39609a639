package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/Apurer/go-gin-shop-server/internal/app/api"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := api.Run(ctx); err != nil {
		log.Fatalf("shop api: %v", err)
	}
}
