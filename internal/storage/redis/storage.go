package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/bluetrace-go/internal/model"
	"github.com/mcoot/bluetrace-go/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) LookupPassword(ctx context.Context, username string) (string, error) {
	password, err := s.client.HGet(ctx, credentialsKey(), username).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", model.ErrUserNotFound
		}
		return "", err
	}
	return password, nil
}

func (s *Storage) SaveCredential(ctx context.Context, username, password string) error {
	return s.client.HSet(ctx, credentialsKey(), username, password).Err()
}

// AppendTempID pushes the record onto the journal list. RPUSH is atomic, so
// concurrent issuers cannot interleave half-written records.
func (s *Storage) AppendTempID(ctx context.Context, record model.TempIDRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.client.RPush(ctx, tempIDJournalKey(), data).Err()
}

func (s *Storage) ScanTempIDs(ctx context.Context) ([]model.TempIDRecord, error) {
	entries, err := s.client.LRange(ctx, tempIDJournalKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	records := make([]model.TempIDRecord, 0, len(entries))
	for _, entry := range entries {
		var record model.TempIDRecord
		if err := json.Unmarshal([]byte(entry), &record); err != nil {
			return nil, fmt.Errorf("%w: journal entry %q", model.ErrMalformedRecord, entry)
		}
		records = append(records, record)
	}
	return records, nil
}
