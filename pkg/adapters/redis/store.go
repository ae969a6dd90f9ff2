package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/recipient/pkg/domain"
	"github.com/aretw0/recipient/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

const (
	defaultPrefix = "recipient:"

	// Far enough in the future to mean "never expires" in the index.
	noExpiryScore = 4102444800
)

// Record hash fields.
const (
	fieldID            = "id"
	fieldFirstName     = "first_name"
	fieldMiddleName    = "middle_name"
	fieldLastName      = "last_name"
	fieldAccountNumber = "account_number"
)

// Store implements ports.RecipientStore with one Redis hash per record
// and a sorted set indexing the stored ids by expiry.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// Option configures the Store.
type Option func(*Store)

// WithTTL sets the expiration of records.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix of records.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: defaultPrefix,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Client exposes the underlying client, e.g. to share it with a Locker.
func (s *Store) Client() *backend.Client {
	return s.client
}

func (s *Store) key(recipientID string) string {
	return s.prefix + "record:" + recipientID
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Save replaces the record hash and refreshes its index entry.
func (s *Store) Save(ctx context.Context, record *ports.Record) error {
	if record == nil || record.ID == "" {
		return errors.New("redis store: record id is required")
	}

	fields := map[string]any{
		fieldID:            record.ID,
		fieldFirstName:     record.FirstName,
		fieldLastName:      record.LastName,
		fieldAccountNumber: record.AccountNumber,
	}
	if record.MiddleName != "" {
		fields[fieldMiddleName] = record.MiddleName
	}

	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = noExpiryScore
	}

	key := s.key(record.ID)
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, fields)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  score,
		Member: record.ID,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load reads the record hash.
func (s *Store) Load(ctx context.Context, recipientID string) (*ports.Record, error) {
	values, err := s.client.HGetAll(ctx, s.key(recipientID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}
	if len(values) == 0 {
		return nil, domain.ErrRecipientNotFound
	}

	return &ports.Record{
		ID:            values[fieldID],
		FirstName:     values[fieldFirstName],
		MiddleName:    values[fieldMiddleName],
		LastName:      values[fieldLastName],
		AccountNumber: values[fieldAccountNumber],
	}, nil
}

// Delete removes the record and its index entry.
func (s *Store) Delete(ctx context.Context, recipientID string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(recipientID))
	pipe.ZRem(ctx, s.indexKey(), recipientID)

	_, err := pipe.Exec(ctx)
	return err
}

// List prunes expired ids from the index, then returns the remaining ones.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())

	err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired records: %w", err)
	}

	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return ids, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
