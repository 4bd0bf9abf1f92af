package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Windi-Fikriyansyah/workit/internal/config"
	"github.com/Windi-Fikriyansyah/workit/internal/handlers"
	"github.com/Windi-Fikriyansyah/workit/internal/realtime"
	"github.com/Windi-Fikriyansyah/workit/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := storage.Open(ctx, cfg.Storage(), log.Default())

	rdb := realtime.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password)
	if rdb != nil {
		defer rdb.Close()
	}

	hub := realtime.NewHub()
	go hub.Run(ctx)

	if err := os.MkdirAll(cfg.UploadDir, 0755); err != nil {
		log.Fatal(err)
	}

	app := handlers.NewApp(handlers.Deps{
		Store:         store,
		Hub:           hub,
		Notifier:      realtime.NewNotifier(hub, rdb),
		JWTSecret:     cfg.JWTSecret,
		JWTExpiresMin: cfg.JWTExpiresMin,
		UploadDir:     cfg.UploadDir,
		AllowOrigins:  cfg.AllowOrigins(),
	})

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("listening on :%s (storage: %s)", cfg.AppPort, store.Backend())
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Printf("server stopped: %v", err)
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Close(closeCtx); err != nil {
		log.Printf("close storage: %v", err)
	}
}
