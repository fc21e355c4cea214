// Package mongodb implements the store contract on the official MongoDB
// driver.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/NomadCrew/cats-backend/config"
	"github.com/NomadCrew/cats-backend/internal/retry"
	"github.com/NomadCrew/cats-backend/logger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const connectBackoff = 500 * time.Millisecond

// Client owns the process-wide connection pool. It is created once at
// startup and handed to every repository.
type Client struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect opens the pool and pings the primary, retrying with backoff up to
// cfg.ConnectAttempts times.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*Client, error) {
	log := logger.GetLogger()

	clientOpts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout()).
		SetServerSelectionTimeout(cfg.ConnectTimeout())
	if cfg.MaxPoolSize > 0 {
		clientOpts.SetMaxPoolSize(cfg.MaxPoolSize)
	}
	if cfg.MinPoolSize > 0 {
		clientOpts.SetMinPoolSize(cfg.MinPoolSize)
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	err = retry.WithBackoff(ctx, cfg.ConnectAttempts, connectBackoff, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout())
		defer cancel()
		if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
			log.Warnw("MongoDB ping failed", "uri", logger.MaskConnectionString(cfg.URI), "error", err)
			return err
		}
		return nil
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	log.Infow("Connected to MongoDB",
		"uri", logger.MaskConnectionString(cfg.URI),
		"database", cfg.Name)

	return NewClient(client, cfg.Name), nil
}

// NewClient wraps an already connected driver client.
func NewClient(client *mongo.Client, database string) *Client {
	return &Client{client: client, db: client.Database(database)}
}

// Database returns the handle repositories are built on.
func (c *Client) Database() *mongo.Database {
	return c.db
}

// Ping checks that the primary is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

// Close drains the pool.
func (c *Client) Close(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	if err := c.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from mongodb: %w", err)
	}
	logger.GetLogger().Info("MongoDB connection closed")
	return nil
}
