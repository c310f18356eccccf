package arrayschema

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/aretw0/arrayschema/pkg/adapters/file"
	"github.com/aretw0/arrayschema/pkg/adapters/memory"
	"github.com/aretw0/arrayschema/pkg/adapters/redis"
	"github.com/aretw0/arrayschema/pkg/ports"
	"github.com/aretw0/arrayschema/pkg/registry"
)

// Supported store backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
	ErrDirEmpty       = errors.New("file backend needs a directory")
	ErrRedisAddrEmpty = errors.New("redis backend needs an address")
)

// RedisConfig holds the redis backend parameters.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr" yaml:"addr"`
	Password string        `mapstructure:"password" yaml:"password"`
	DB       int           `mapstructure:"db" yaml:"db"`
	Prefix   string        `mapstructure:"prefix" yaml:"prefix"`
	TTL      time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

// StoreConfig selects and configures the schema store.
type StoreConfig struct {
	Backend string      `mapstructure:"backend" yaml:"backend"`
	Dir     string      `mapstructure:"dir" yaml:"dir"`
	Redis   RedisConfig `mapstructure:"redis" yaml:"redis"`
}

// Validate checks that the config names a known backend with its parameters.
func (c StoreConfig) Validate() error {
	switch c.Backend {
	case "":
		return ErrBackendEmpty
	case BackendMemory:
		return nil
	case BackendFile:
		if c.Dir == "" {
			return ErrDirEmpty
		}
		return nil
	case BackendRedis:
		if c.Redis.Addr == "" {
			return ErrRedisAddrEmpty
		}
		return nil
	}
	return fmt.Errorf("%w: %q", ErrBackendUnknown, c.Backend)
}

// Store bundles a SchemaStore with the Locker matching its backend.
type Store struct {
	Schemas ports.SchemaStore
	Locker  ports.Locker
	close   func() error
}

// Close releases backend connections.
func (s *Store) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// OpenStore builds the store described by cfg.
func OpenStore(cfg StoreConfig) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case BackendFile:
		return &Store{
			Schemas: file.New(cfg.Dir),
			Locker:  file.NewLocker(filepath.Join(cfg.Dir, ".locks")),
		}, nil
	case BackendRedis:
		var opts []redis.Option
		if cfg.Redis.Prefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Redis.Prefix))
		}
		if cfg.Redis.TTL > 0 {
			opts = append(opts, redis.WithTTL(cfg.Redis.TTL))
		}
		store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...)
		prefix := cfg.Redis.Prefix
		if prefix == "" {
			prefix = redis.DefaultPrefix
		}
		return &Store{
			Schemas: store,
			Locker:  redis.NewLocker(store.Client(), prefix),
			close:   store.Close,
		}, nil
	}
	return &Store{
		Schemas: memory.NewStore(),
		Locker:  memory.NewLocker(),
	}, nil
}

// Open builds a registry over the store described by cfg. The returned
// Store must be closed by the caller.
func Open(cfg StoreConfig, opts ...registry.Option) (*registry.Registry, *Store, error) {
	store, err := OpenStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	opts = append([]registry.Option{registry.WithLocker(store.Locker)}, opts...)
	return registry.New(store.Schemas, opts...), store, nil
}
