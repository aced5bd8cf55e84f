package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// QueryTimeoutDuration bounds a single handler's database work.
const QueryTimeoutDuration = 5 * time.Second

const defaultConnectTimeout = 30 * time.Second

// Config describes the connection pool. Zero values keep the pgx defaults.
type Config struct {
	Addr        string
	MaxConns    int32
	MaxIdleTime time.Duration
	// ConnectTimeout bounds pool start-up and the first ping.
	ConnectTimeout time.Duration
	// AppName is reported to Postgres as application_name.
	AppName string
}

func (c Config) poolConfig() (*pgxpool.Config, error) {
	if c.Addr == "" {
		return nil, errors.New("database address is empty")
	}
	config, err := pgxpool.ParseConfig(c.Addr)
	if err != nil {
		return nil, fmt.Errorf("parse database address: %w", err)
	}
	if c.MaxConns > 0 {
		config.MaxConns = c.MaxConns
	}
	if c.MaxIdleTime > 0 {
		config.MaxConnIdleTime = c.MaxIdleTime
	}
	if c.AppName != "" {
		config.ConnConfig.RuntimeParams["application_name"] = c.AppName
	}
	return config, nil
}

// New opens a pgx pool and pings it before handing it out.
func New(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	config, err := cfg.poolConfig()
	if err != nil {
		return nil, err
	}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("open database pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}
