package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/arrayschema/internal/logging"
	"github.com/aretw0/arrayschema/pkg/labeled"
	"github.com/aretw0/arrayschema/pkg/observability"
	"github.com/aretw0/arrayschema/pkg/ports"
	"github.com/aretw0/arrayschema/pkg/schema"
)

// ErrSchemaExists is returned by Create when the name is taken.
var ErrSchemaExists = errors.New("schema already exists")

// lockTTL bounds how long a crashed writer can block a name.
const lockTTL = 10 * time.Second

// Registry manages named schema documents kept in a SchemaStore and
// validates containers against them. Decoded schemas are cached until the
// name is written or deleted through the registry.
type Registry struct {
	store  ports.SchemaStore
	locker ports.Locker
	logger *slog.Logger
	hooks  observability.Hooks

	mu    sync.RWMutex
	cache map[string]schema.Validator

	// generations counts writes per name. Compile only caches a schema if
	// no write happened while it was loading.
	generations map[string]uint64
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithHooks sets the validation lifecycle hooks.
func WithHooks(hooks observability.Hooks) Option {
	return func(r *Registry) {
		r.hooks = hooks
	}
}

// WithLocker serializes writes to the same name through locker.
func WithLocker(locker ports.Locker) Option {
	return func(r *Registry) {
		r.locker = locker
	}
}

// New creates a registry over store.
func New(store ports.SchemaStore, opts ...Option) *Registry {
	r := &Registry{
		store:       store,
		logger:      logging.NewNop(),
		cache:       make(map[string]schema.Validator),
		generations: make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) lock(ctx context.Context, name string) (ports.UnlockFunc, error) {
	if r.locker == nil {
		return func(context.Context) error { return nil }, nil
	}
	unlock, err := r.locker.Lock(ctx, name, lockTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to lock schema %s: %w", name, err)
	}
	return unlock, nil
}

func (r *Registry) forget(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cache, name)
	r.generations[name]++
}

// Put parses a JSON or YAML schema document, checks it and stores it under
// name, replacing any previous document.
func (r *Registry) Put(ctx context.Context, name string, data []byte) (ports.Document, error) {
	doc, err := ParseDocument(data)
	if err != nil {
		return ports.Document{}, err
	}
	return doc, r.save(ctx, name, doc, false)
}

// Create is Put that fails with ErrSchemaExists when name is taken.
func (r *Registry) Create(ctx context.Context, name string, data []byte) (ports.Document, error) {
	doc, err := ParseDocument(data)
	if err != nil {
		return ports.Document{}, err
	}
	return doc, r.save(ctx, name, doc, true)
}

// PutSchema stores an already built schema under name.
func (r *Registry) PutSchema(ctx context.Context, name string, v schema.Validator) error {
	doc, err := ports.NewDocument(v)
	if err != nil {
		return err
	}
	return r.save(ctx, name, doc, false)
}

func (r *Registry) save(ctx context.Context, name string, doc ports.Document, exclusive bool) error {
	if err := ports.ValidateName(name); err != nil {
		return err
	}
	if _, err := doc.Decode(); err != nil {
		return err
	}

	unlock, err := r.lock(ctx, name)
	if err != nil {
		return err
	}
	defer func() { _ = unlock(ctx) }()

	if exclusive {
		_, err := r.store.Load(ctx, name)
		switch {
		case err == nil:
			return fmt.Errorf("%w: %s", ErrSchemaExists, name)
		case !errors.Is(err, ports.ErrSchemaNotFound):
			return err
		}
	}

	if err := r.store.Save(ctx, name, doc); err != nil {
		return err
	}
	r.forget(name)
	r.logger.Info("schema stored", "schema", name, "kind", doc.Kind)
	return nil
}

// Get returns the stored document.
func (r *Registry) Get(ctx context.Context, name string) (ports.Document, error) {
	return r.store.Load(ctx, name)
}

// Delete removes a stored schema.
func (r *Registry) Delete(ctx context.Context, name string) error {
	unlock, err := r.lock(ctx, name)
	if err != nil {
		return err
	}
	defer func() { _ = unlock(ctx) }()

	if err := r.store.Delete(ctx, name); err != nil {
		return err
	}
	r.forget(name)
	r.logger.Info("schema deleted", "schema", name)
	return nil
}

// List returns the stored schema names, sorted.
func (r *Registry) List(ctx context.Context) ([]string, error) {
	return r.store.List(ctx)
}

// Compile loads and decodes the named schema.
func (r *Registry) Compile(ctx context.Context, name string) (schema.Validator, error) {
	r.mu.RLock()
	v, ok := r.cache[name]
	gen := r.generations[name]
	r.mu.RUnlock()
	if ok {
		return v, nil
	}

	doc, err := r.store.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	v, err = doc.Decode()
	if err != nil {
		return nil, fmt.Errorf("stored schema %s: %w", name, err)
	}

	r.mu.Lock()
	if r.generations[name] == gen {
		r.cache[name] = v
	}
	r.mu.Unlock()
	return v, nil
}

// Validate validates container against the named schema. Validation
// failures are returned as *schema.SchemaError; check errors unmodified.
func (r *Registry) Validate(ctx context.Context, name string, container any) error {
	event := &observability.ValidationEvent{
		Timestamp: time.Now(),
		Schema:    name,
	}
	r.hooks.Start(ctx, event)

	err := r.validate(ctx, name, container, event)
	event.Duration = time.Since(event.Timestamp)
	event.Classify(err)
	r.hooks.Done(ctx, event)

	switch event.Result {
	case observability.ResultValid:
		r.logger.Debug("container valid", "schema", name, "duration", event.Duration)
	case observability.ResultInvalid:
		r.logger.Info("container invalid", "schema", name, "facet", event.Facet, "error", err)
	default:
		r.logger.Warn("validation failed", "schema", name, "error", err)
	}
	return err
}

func (r *Registry) validate(ctx context.Context, name string, container any, event *observability.ValidationEvent) error {
	v, err := r.Compile(ctx, name)
	if err != nil {
		return err
	}
	event.Kind = string(v.DocKind())
	return v.Validate(container)
}

// ValidateDocument parses a JSON or YAML container document and validates it.
func (r *Registry) ValidateDocument(ctx context.Context, name string, data []byte) error {
	container, err := labeled.ParseDocument(data)
	if err != nil {
		return err
	}
	return r.Validate(ctx, name, container)
}
