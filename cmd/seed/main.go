// Command seed creates or refreshes the admin account.
package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"storefront/internal/db"
	"storefront/internal/domain/users"
)

func envOrDefault(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func main() {
	zl, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("failed to initialise logger: %v", err)
	}
	logger := zl.Sugar()
	defer logger.Sync()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Fatalw("error loading .env file", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.New(ctx, db.Config{
		Addr:        os.Getenv("DB_ADDR"),
		MaxConns:    2,
		MaxIdleTime: time.Minute,
		AppName:     "storefront-seed",
	})
	if err != nil {
		logger.Fatalw("database connection failed", "error", err)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool, logger); err != nil {
		logger.Fatalw("migrations failed", "error", err)
	}

	admin := &users.User{
		Name:  envOrDefault("ADMIN_NAME", "Super Admin"),
		Email: envOrDefault("ADMIN_EMAIL", "admin@example.com"),
	}
	if err := admin.Password.Set(envOrDefault("ADMIN_PASSWORD", "password123")); err != nil {
		logger.Fatalw("hash password", "error", err)
	}

	if err := users.NewRepository(pool).Upsert(ctx, admin); err != nil {
		logger.Fatalw("seed admin user", "email", admin.Email, "error", err)
	}

	logger.Infow("admin user seeded", "id", admin.ID, "email", admin.Email)
}
