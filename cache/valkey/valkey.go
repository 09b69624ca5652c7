// Package valkey provides a Valkey-backed implementation of the
// discovery cache for multi-instance deployments, where every instance
// should reuse endpoints another instance already discovered.
package valkey

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	valkeygo "github.com/valkey-io/valkey-go"

	"github.com/indienet/indieauth"
)

const (
	// DefaultKeyPrefix is the default prefix for all cache keys.
	DefaultKeyPrefix = "indieauth:discovery:"

	// connectionVerifyTimeout is the timeout for the initial connection
	// verification ping.
	connectionVerifyTimeout = 5 * time.Second
)

// Config holds configuration for the Valkey cache backend.
type Config struct {
	// Address is the Valkey server address (required), e.g. "localhost:6379".
	Address string

	// Password is the optional password for authentication.
	Password string

	// DB is the optional database number (default 0).
	DB int

	// KeyPrefix is the prefix for all keys (default "indieauth:discovery:").
	KeyPrefix string

	// TLS is the optional TLS configuration for encrypted connections.
	TLS *tls.Config

	// Logger is the optional structured logger (default: slog.Default()).
	Logger *slog.Logger
}

// Cache is a Valkey-backed discovery cache. Entries are stored as JSON
// with a server-side TTL, so expiry needs no sweeping on our side.
type Cache struct {
	client valkeygo.Client
	prefix string
	logger *slog.Logger
}

// Compile-time interface check.
var _ indieauth.Cache = (*Cache)(nil)

// New creates a Valkey-backed cache and verifies the connection.
func New(cfg Config) (*Cache, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("valkey address is required")
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	opts := valkeygo.ClientOption{
		InitAddress: []string{cfg.Address},
		SelectDB:    cfg.DB,
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	if cfg.TLS != nil {
		opts.TLSConfig = cfg.TLS
	}

	client, err := valkeygo.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create valkey client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectionVerifyTimeout)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to valkey: %w", err)
	}

	logger.Info("Connected to Valkey discovery cache",
		"address", cfg.Address,
		"db", cfg.DB,
		"prefix", prefix)

	return &Cache{
		client: client,
		prefix: prefix,
		logger: logger,
	}, nil
}

// Close closes the Valkey client connection.
func (c *Cache) Close() {
	c.client.Close()
	c.logger.Info("Valkey discovery cache connection closed")
}

// Get returns the cached result for a profile URL. Expired entries are
// handled by Valkey's own TTL and simply come back absent.
func (c *Cache) Get(ctx context.Context, profileURL string) (*indieauth.DiscoveryResult, bool, error) {
	key := c.key(profileURL)

	data, err := c.client.Do(ctx, c.client.B().Get().Key(key).Build()).ToString()
	if err != nil {
		if valkeygo.IsValkeyNil(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read cache entry: %w", err)
	}

	var result indieauth.DiscoveryResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		// A corrupt entry is dropped rather than surfaced; the caller
		// just re-discovers.
		c.logger.Warn("Dropping corrupt discovery cache entry", "key", key, "error", err)
		_ = c.client.Do(ctx, c.client.B().Del().Key(key).Build()).Error()
		return nil, false, nil
	}

	return &result, true, nil
}

// Set stores a result under the profile URL with the given TTL.
func (c *Cache) Set(ctx context.Context, profileURL string, result *indieauth.DiscoveryResult, ttl time.Duration) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to serialize discovery result: %w", err)
	}

	key := c.key(profileURL)
	cmd := c.client.B().Set().Key(key).Value(string(data)).Ex(ttl).Build()
	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}

	c.logger.Debug("Discovery result cached", "key", key, "ttl", ttl)
	return nil
}

// Delete removes the entry for a profile URL.
func (c *Cache) Delete(ctx context.Context, profileURL string) error {
	if err := c.client.Do(ctx, c.client.B().Del().Key(c.key(profileURL)).Build()).Error(); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Clear removes all entries under this cache's key prefix.
func (c *Cache) Clear(ctx context.Context) error {
	var cursor uint64
	for {
		resp := c.client.Do(ctx, c.client.B().Scan().Cursor(cursor).Match(c.prefix+"*").Count(100).Build())
		scan, err := resp.AsScanEntry()
		if err != nil {
			return fmt.Errorf("failed to scan cache keys: %w", err)
		}

		if len(scan.Elements) > 0 {
			if err := c.client.Do(ctx, c.client.B().Del().Key(scan.Elements...).Build()).Error(); err != nil {
				return fmt.Errorf("failed to delete cache keys: %w", err)
			}
		}

		cursor = scan.Cursor
		if cursor == 0 {
			return nil
		}
	}
}

func (c *Cache) key(profileURL string) string {
	return c.prefix + indieauth.CacheKey(profileURL)
}
