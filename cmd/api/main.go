package main

import (
	"context"
	"errors"
	"expvar"
	"io/fs"
	"log"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"storefront/internal/auth"
	"storefront/internal/cache"
	"storefront/internal/db"
	"storefront/internal/domain/storage"
	"storefront/internal/filestore"
	"storefront/internal/images"
	"storefront/internal/mailer"
	"storefront/internal/ratelimiter"
	"storefront/internal/slug"
)

// LoadRateLimiterConfig retrieves rate limiter settings from environment variables
func LoadRateLimiterConfig(logger *zap.SugaredLogger) ratelimiter.Config {
	return ratelimiter.Config{
		RequestsPerTimeFrame: envInt(logger, "RATELIMITER_REQUESTS_COUNT", 20),
		TimeFrame:            envDuration(logger, "RATELIMITER_TIMEFRAME", time.Minute),
		Enabled:              envBool(logger, "RATE_LIMITER_ENABLED", true),
	}
}

// NewLogger creates a new zap logger with color.
func NewLogger() (*zap.SugaredLogger, error) {
	// Configure the encoder to be a console encoder with color
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder // This adds color to log levels (INFO, WARN, ERROR)

	// Create a console encoder with the custom configuration
	consoleEncoder := zapcore.NewConsoleEncoder(encoderCfg)

	level := zapcore.InfoLevel

	// Use zapcore.NewCore to write logs to standard output (stdout) with color
	core := zapcore.NewCore(consoleEncoder, zapcore.NewMultiWriteSyncer(zapcore.AddSync(os.Stdout)), level)

	logger := zap.New(core)

	return logger.Sugar(), nil
}

func envOrDefault(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func envInt(logger *zap.SugaredLogger, key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logger.Warnw("invalid integer in environment, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return n
}

func envBool(logger *zap.SugaredLogger, key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		logger.Warnw("invalid boolean in environment, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return b
}

func envDuration(logger *zap.SugaredLogger, key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logger.Warnw("invalid duration in environment, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return d
}

func loadConfig(logger *zap.SugaredLogger) config {
	return config{
		addr:   envOrDefault("ADDR", ":8080"),
		env:    envOrDefault("ENV", "development"),
		apiURL: envOrDefault("EXTERNAL_URL", "localhost:8080"),
		db: dbConfig{
			addr:        os.Getenv("DB_ADDR"),
			maxConns:    envInt(logger, "DB_MAX_OPEN_CONNS", 30),
			maxIdleTime: envDuration(logger, "DB_MAX_IDLE_TIME", 15*time.Minute),
			migrate:     envBool(logger, "DB_MIGRATE", true),
		},
		mail: mailConfig{
			smtp: mailer.SMTPConfig{
				Host:      os.Getenv("MAIL_HOST"),
				Port:      envInt(logger, "MAIL_PORT", 587),
				Username:  os.Getenv("MAIL_USERNAME"),
				Password:  os.Getenv("MAIL_PASSWORD"),
				FromEmail: os.Getenv("MAIL_FROM_ADDRESS"),
			},
			adminTo: os.Getenv("MAIL_ADMIN_ADDRESS"),
		},
		auth: authConfig{
			basic: basicConfig{
				user: os.Getenv("AUTH_BASIC_USER"),
				pass: os.Getenv("AUTH_BASIC_PASS"),
			},
			token: tokenConfig{
				secret: os.Getenv("AUTH_TOKEN_SECRET"),
				exp:    envDuration(logger, "AUTH_TOKEN_EXP", time.Hour*24*3), // 3 days
				iss:    "storefront",
				aud:    "storefront",
			},
		},
		storage: filestore.Config{
			Driver:        envOrDefault("FILESYSTEM_DRIVER", "local"),
			LocalRoot:     envOrDefault("FILESYSTEM_ROOT", "storage/public"),
			PublicURL:     envOrDefault("FILESYSTEM_URL", "http://localhost:8080/storage"),
			S3Bucket:      os.Getenv("AWS_BUCKET"),
			S3Region:      envOrDefault("AWS_DEFAULT_REGION", "us-east-1"),
			S3Key:         os.Getenv("AWS_ACCESS_KEY_ID"),
			S3Secret:      os.Getenv("AWS_SECRET_ACCESS_KEY"),
			S3Endpoint:    os.Getenv("AWS_ENDPOINT"),
			CloudinaryURL: os.Getenv("CLOUDINARY_URL"),
		},
		redis: redisConfig{
			addr:     os.Getenv("REDIS_ADDR"),
			password: os.Getenv("REDIS_PASSWORD"),
			db:       envInt(logger, "REDIS_DB", 0),
		},
		rateLimiter: LoadRateLimiterConfig(logger),
	}
}

var version = "1.0.0"

//	@title			Storefront API
//	@description	Catalog and site content API: categories, products, blogs, team, distributors and contact messages.

//	@contact.name	API Support

//	@BasePath					/v1
//	@securityDefinitions.apikey	ApiKeyAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token returned by POST /login
//	@securityDefinitions.basic	BasicAuth

func main() {
	// Logger
	logger, err := NewLogger()
	if err != nil {
		log.Fatalf("failed to initialise logger: %v", err)
	}
	defer logger.Sync()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Fatalw("error loading .env file", "error", err)
	}

	cfg := loadConfig(logger)
	if cfg.auth.token.secret == "" {
		logger.Fatal("AUTH_TOKEN_SECRET is required")
	}

	ctx := context.Background()

	// Database
	pool, err := db.New(ctx, db.Config{
		Addr:        cfg.db.addr,
		MaxConns:    int32(cfg.db.maxConns),
		MaxIdleTime: cfg.db.maxIdleTime,
		AppName:     "storefront-api",
	})
	if err != nil {
		logger.Fatalw("database connection failed", "error", err)
	}
	defer pool.Close()
	logger.Info("database connection pool established")

	if cfg.db.migrate {
		if err := db.Migrate(ctx, pool, logger); err != nil {
			logger.Fatalw("migrations failed", "error", err)
		}
	}

	// Image storage
	disk, err := filestore.Open(ctx, cfg.storage)
	if err != nil {
		logger.Fatalw("file storage init failed", "driver", cfg.storage.Driver, "error", err)
	}
	logger.Infow("file storage ready", "driver", cfg.storage.Driver)

	// Response cache
	var responseCache cache.Cache = cache.Noop{}
	if cfg.redis.addr != "" {
		rdb, err := cache.NewRedis(ctx, cfg.redis.addr, cfg.redis.password, cfg.redis.db, "storefront:")
		if err != nil {
			logger.Warnw("redis unavailable, response cache disabled", "addr", cfg.redis.addr, "error", err)
		} else {
			defer rdb.Close()
			responseCache = rdb
		}
	}

	// Mailer
	var mail mailer.Client = mailer.Discard{Logger: logger}
	if cfg.mail.smtp.Host != "" {
		smtp, err := mailer.NewSMTP(cfg.mail.smtp)
		if err != nil {
			logger.Fatalw("mailer init failed", "error", err)
		}
		mail = smtp
	}

	jwtAuthenticator := auth.NewJWTAuthenticator(
		cfg.auth.token.secret,
		cfg.auth.token.aud,
		cfg.auth.token.iss,
		cfg.auth.token.exp,
	)

	rateLimiter := ratelimiter.NewFixedWindowLimiter(
		cfg.rateLimiter.RequestsPerTimeFrame,
		cfg.rateLimiter.TimeFrame,
	)

	app := &application{
		config:        cfg,
		store:         storage.NewContainer(pool),
		logger:        logger,
		disk:          disk,
		images:        images.New(disk, logger),
		slugs:         slug.Generator{},
		cache:         responseCache,
		mailer:        mail,
		authenticator: jwtAuthenticator,
		rateLimiter:   rateLimiter,
	}

	// Metrics collected
	expvar.NewString("version").Set(version)
	expvar.Publish("database", expvar.Func(func() any {
		return pool.Stat().TotalConns()
	}))
	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.mount()

	logger.Fatal(app.run(mux))
}
