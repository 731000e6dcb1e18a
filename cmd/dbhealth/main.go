package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/aoperat/centumbob/internal/app"
	"github.com/aoperat/centumbob/internal/common"
)

func main() {
	cfg, err := common.LoadConfig()
	if err != nil {
		log.Println("ERROR: loading config:", err)
		log.Println("  set DB_URL to a postgres:// URL or a SQLite file, e.g. DB_URL=file:centumbob.db")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// opening also applies the schema
	a, err := app.New(ctx, cfg, common.NewLogger(cfg.Log, os.Stderr))
	if err != nil {
		log.Fatalf("opening DB: %v", err)
	}
	defer a.Close()

	if err := a.Ping(ctx); err != nil {
		log.Fatalf("DB health: FAIL (%v)", err)
	}
	log.Printf("DB health: OK (dialect %s)", a.DB.Dialect())

	restaurants, err := a.Restaurants.List(ctx, false)
	if err != nil {
		log.Fatalf("listing restaurants: %v", err)
	}
	menus, err := a.Menus.List(ctx)
	if err != nil {
		log.Fatalf("listing menus: %v", err)
	}
	log.Printf("restaurants: %d, menu records: %d", len(restaurants), len(menus))
	for _, r := range restaurants {
		log.Printf("- [%d] %s (active=%t)", r.ID, r.Name, r.IsActive)
	}
}
