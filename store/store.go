// Package store provides the durable key/value storage of the shop state.
//
// A Store maps string keys to string values with last-write-wins semantics.
// Backends are selected by name with Open: an in-memory map, a directory of
// files, Redis or PostgreSQL.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

var (
	// ErrUnknownBackend is returned by Open for an unsupported backend name.
	ErrUnknownBackend = errors.New("unknown storage backend")
	// ErrInvalidConfiguration reports missing or malformed backend options.
	ErrInvalidConfiguration = errors.New("invalid storage configuration")
	// ErrInvalidKey reports a key that the backend cannot address.
	ErrInvalidKey = errors.New("invalid storage key")
)

// Store is a durable key/value storage.
type Store interface {
	// Load returns the value of key, ok is false when the key was never
	// saved or was deleted.
	Load(ctx context.Context, key string) (value string, ok bool, err error)
	// Save writes all the values. Backends that support it write them
	// atomically.
	Save(ctx context.Context, values map[string]string) error
	// Delete removes the keys. Unknown keys are ignored.
	Delete(ctx context.Context, keys ...string) error
	// Close releases the resources held by the store.
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Options selects and configures a backend.
type Options struct {
	Backend     string
	Path        string // directory of the file backend
	Prefix      string // namespace prepended to every key
	RedisURL    string
	PostgresDSN string
	Logger      *zap.Logger
}

// Open creates the store described by opts.
func Open(ctx context.Context, opts Options) (Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	var (
		s   Store
		err error
	)
	switch strings.ToLower(opts.Backend) {
	case BackendMemory:
		s = NewMemory()
	case BackendFile, "":
		if opts.Path == "" {
			return nil, fmt.Errorf("%w: file backend needs a path", ErrInvalidConfiguration)
		}
		s, err = NewDir(opts.Path)
	case BackendRedis:
		if opts.RedisURL == "" {
			return nil, fmt.Errorf("%w: redis backend needs a url", ErrInvalidConfiguration)
		}
		s, err = DialRedis(ctx, opts.RedisURL)
	case BackendPostgres:
		if opts.PostgresDSN == "" {
			return nil, fmt.Errorf("%w: postgres backend needs a dsn", ErrInvalidConfiguration)
		}
		s, err = OpenPostgres(ctx, opts.PostgresDSN)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
	if err != nil {
		return nil, err
	}
	logger.Debug("storage opened", zap.String("backend", opts.Backend), zap.String("prefix", opts.Prefix))
	if opts.Prefix != "" {
		s = WithPrefix(s, opts.Prefix)
	}
	return s, nil
}

// WithPrefix returns a Store that prepends prefix to every key of s.
func WithPrefix(s Store, prefix string) Store {
	return &prefixed{Store: s, prefix: prefix}
}

type prefixed struct {
	Store
	prefix string
}

func (p *prefixed) Load(ctx context.Context, key string) (string, bool, error) {
	return p.Store.Load(ctx, p.prefix+key)
}

func (p *prefixed) Save(ctx context.Context, values map[string]string) error {
	m := make(map[string]string, len(values))
	for k, v := range values {
		m[p.prefix+k] = v
	}
	return p.Store.Save(ctx, m)
}

func (p *prefixed) Delete(ctx context.Context, keys ...string) error {
	ks := make([]string, len(keys))
	for i, k := range keys {
		ks[i] = p.prefix + k
	}
	return p.Store.Delete(ctx, ks...)
}
