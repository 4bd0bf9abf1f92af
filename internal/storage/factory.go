package storage

import (
	"context"
	"io"
	"log"
	"time"
)

// Config selects and parameterises the backend.
type Config struct {
	DatabaseURL string
	UseMongoDB  bool
	Mongo       MongoConfig
}

// Open picks the backend once: PostgreSQL when a database URL is set,
// otherwise MongoDB when enabled, otherwise memory. A backend that cannot be
// reached is replaced by memory. Open never fails.
func Open(ctx context.Context, cfg Config, logger *log.Logger) Storage {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	switch {
	case cfg.DatabaseURL != "":
		pctx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		pg, err := NewPostgresStorage(pctx, cfg.DatabaseURL, logger)
		if err != nil {
			logger.Printf("[storage] postgres unavailable, falling back to memory: %v", err)
			return NewMemStorage()
		}
		logger.Printf("[storage] using postgres backend")
		return pg

	case cfg.UseMongoDB:
		m := NewMongoStorage(cfg.Mongo, logger)
		if err := m.Connect(ctx); err != nil {
			logger.Printf("[storage] mongodb unavailable, falling back to memory: %v", err)
			return NewMemStorage()
		}
		logger.Printf("[storage] using mongodb backend")
		return m
	}

	logger.Printf("[storage] using in-memory backend")
	return NewMemStorage()
}
