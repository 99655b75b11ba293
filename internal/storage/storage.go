// Package storage provides the durable key-value stores that back carts and sessions.
//
// Every backend satisfies Store. Values are opaque strings; callers own their encoding.
// Concurrent writers to the same key are not coordinated: the last write wins.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rshade/stockdesk/internal/logging"
)

// Common storage errors.
var (
	ErrInvalidKey     = errors.New("storage key cannot be empty")
	ErrClosed         = errors.New("store is closed")
	ErrUnknownBackend = errors.New("unknown storage backend")
)

// Store is a string key-value store.
type Store interface {
	// Get returns the value for key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendSQL    = "sql"
)

// Config selects and configures a backend.
type Config struct {
	Backend       string
	Dir           string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SQLDriver     string
	SQLDSN        string
	Namespace     string
}

// Open builds the backend described by cfg. A non-empty Namespace prefixes every key.
func Open(ctx context.Context, cfg Config) (Store, error) {
	log := logging.FromContext(ctx)

	var (
		store Store
		err   error
	)
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	switch backend {
	case "", BackendMemory:
		backend = BackendMemory
		store = NewMemory()
	case BackendFile:
		store, err = NewFile(cfg.Dir)
	case BackendRedis:
		store, err = OpenRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	case BackendSQL:
		store, err = OpenSQL(ctx, cfg.SQLDriver, cfg.SQLDSN)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
	if err != nil {
		log.Error().Ctx(ctx).
			Str("component", "storage").
			Str("backend", backend).
			Err(err).
			Msg("failed to open storage backend")
		return nil, err
	}

	log.Debug().Ctx(ctx).
		Str("component", "storage").
		Str("backend", backend).
		Str("namespace", cfg.Namespace).
		Msg("storage backend opened")

	if cfg.Namespace != "" {
		store = WithNamespace(store, cfg.Namespace)
	}
	return store, nil
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	return nil
}

// namespaced prefixes keys of an underlying store.
type namespaced struct {
	Store
	prefix string
}

// WithNamespace returns a Store that stores every key as "<ns>:<key>" in s.
func WithNamespace(s Store, ns string) Store {
	return &namespaced{Store: s, prefix: ns + ":"}
}

func (n *namespaced) Get(ctx context.Context, key string) (string, bool, error) {
	if err := validateKey(key); err != nil {
		return "", false, err
	}
	return n.Store.Get(ctx, n.prefix+key)
}

func (n *namespaced) Set(ctx context.Context, key, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	return n.Store.Set(ctx, n.prefix+key, value)
}

func (n *namespaced) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	return n.Store.Delete(ctx, n.prefix+key)
}

func traceOp(ctx context.Context, backend, op, key string) *zerolog.Event {
	return logging.FromContext(ctx).Trace().Ctx(ctx).
		Str("component", "storage").
		Str("backend", backend).
		Str("operation", op).
		Str("key", key)
}
