package db

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned by delete operations when no row matched.
var ErrNotFound = errors.New("not found")

// Database holds the database connection pool.
type Database struct {
	Pool *pgxpool.Pool
}

// Scope is the authorization filter evaluated once per request and passed
// into queries: admins see everything, everyone else only their own rows.
type Scope struct {
	UserID string
	Admin  bool
}

// NewDatabase creates a new database connection with retry logic for
// serverless databases.
func NewDatabase() (*Database, error) {
	return NewDatabaseWithRetry(5, time.Second)
}

// NewDatabaseWithRetry creates a new database connection with configurable retry logic.
func NewDatabaseWithRetry(maxRetries int, initialDelay time.Duration) (*Database, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		// Compose from discrete envs if provided
		host := getEnv("DB_HOST", "localhost")
		user := getEnv("DB_USER", "postgres")
		name := getEnv("DB_NAME", "postgres")
		pwd := getEnv("DB_PASSWORD", "")
		ssl := getEnv("DB_SSLMODE", "prefer")
		port := getEnv("DB_PORT", "5432")
		if _, err := strconv.Atoi(port); err != nil {
			log.Printf("Invalid DB_PORT value: %s, using default 5432", port)
			port = "5432"
		}
		dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", user, url.QueryEscape(pwd), host, port, name, ssl)
	}

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid database configuration: %w", err)
	}

	poolConfig.MaxConns = 30
	poolConfig.MinConns = 0
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	// Prefer simple protocol (no prepared statements) to be pooler friendly.
	// Text-format results also let date columns scan into plain strings.
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	var pool *pgxpool.Pool
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		log.Printf("[DB] Connection attempt %d/%d to %s@%s:%d",
			attempt, maxRetries, poolConfig.ConnConfig.User, poolConfig.ConnConfig.Host, poolConfig.ConnConfig.Port)

		pool, err = pgxpool.NewWithConfig(context.Background(), poolConfig)
		if err != nil {
			lastErr = fmt.Errorf("failed to create connection pool: %w", err)
			log.Printf("[DB] Failed to create pool (attempt %d): %v", attempt, err)
			if attempt < maxRetries {
				time.Sleep(initialDelay * time.Duration(1<<(attempt-1)))
			}
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = pool.Ping(ctx)
		cancel()

		if err == nil {
			log.Printf("[DB] Connected on attempt %d", attempt)
			break
		}

		lastErr = fmt.Errorf("failed to ping database: %w", err)
		log.Printf("[DB] Connection failed (attempt %d): %v", attempt, err)
		pool.Close()
		pool = nil

		if attempt < maxRetries {
			// Exponential backoff: 1s, 2s, 4s, 8s, 16s
			delay := initialDelay * time.Duration(1<<(attempt-1))
			log.Printf("[DB] Retrying in %v...", delay)
			time.Sleep(delay)
		}
	}

	if pool == nil {
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, lastErr)
	}

	return &Database{Pool: pool}, nil
}

// Close closes the database connection pool.
func (db *Database) Close() {
	if db.Pool != nil {
		db.Pool.Close()
		log.Println("Database connection pool closed")
	}
}

// Health checks if the database is reachable.
func (db *Database) Health(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

// getEnv gets an environment variable with a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
