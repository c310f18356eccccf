package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/aretw0/arrayschema/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key the store writes.
const DefaultPrefix = "arrayschema:schema:"

// farFuture is the index score of documents without a TTL (2100-01-01).
const farFuture = 4102444800

// Store implements ports.SchemaStore using Redis.
// Documents live under prefix+name; a sorted set at prefix+"_index" scores
// each name by its expiry so List can drop expired names lazily.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

type Option func(*Store)

// WithTTL sets the expiration for stored schemas. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithClock overrides the clock used to score the index.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
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
		prefix: DefaultPrefix,
		now:    time.Now,
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

func (s *Store) key(name string) string {
	return s.prefix + name
}

// Names cannot start with "_", so the index never collides with a document.
func (s *Store) indexKey() string {
	return s.prefix + "_index"
}

// Save stores the document and records it in the index.
func (s *Store) Save(ctx context.Context, name string, doc ports.Document) error {
	if err := ports.ValidateName(name); err != nil {
		return err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal schema document: %w", err)
	}

	score := float64(farFuture)
	if s.ttl > 0 {
		score = float64(s.now().Add(s.ttl).Unix())
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(name), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: score, Member: name})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save schema to redis: %w", err)
	}
	return nil
}

// Load retrieves the document.
func (s *Store) Load(ctx context.Context, name string) (ports.Document, error) {
	if err := ports.ValidateName(name); err != nil {
		return ports.Document{}, err
	}

	data, err := s.client.Get(ctx, s.key(name)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return ports.Document{}, ports.ErrSchemaNotFound
		}
		return ports.Document{}, fmt.Errorf("failed to load schema from redis: %w", err)
	}

	var doc ports.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return ports.Document{}, fmt.Errorf("failed to unmarshal schema document %s: %w", name, err)
	}
	return doc, nil
}

// Delete removes the document and its index entry.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := ports.ValidateName(name); err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(name))
	pipe.ZRem(ctx, s.indexKey(), name)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete schema from redis: %w", err)
	}
	return nil
}

// List returns the live schema names, sorted. Expired entries are pruned
// from the index first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := strconv.FormatInt(s.now().Unix(), 10)
	if err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", "("+now).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune schema index: %w", err)
	}

	// ZRANGEBYLEX needs equal scores, so sort client side.
	names, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list schemas: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// Close closes the Redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
