package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ecoisla/market/config"
	"github.com/ecoisla/market/storefront"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.LoadStorefront()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := storefront.NewRootCommand(cfg).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
