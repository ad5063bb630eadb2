// Package cache provides the cache backend selected by MEMCACHED_LOCATION:
// memcached when it is set, an in-process LRU otherwise.
package cache

import (
	"time"

	"go.uber.org/zap"

	"msgvis/config"
)

// Cache stores short-lived string values.
type Cache interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Delete(key string)
	Backend() string
}

// Options tune the backends. Zero values use the defaults.
type Options struct {
	LocalSize int           // entries kept by the local backend
	TTL       time.Duration // expiry of memcached entries
	KeyPrefix string
}

const (
	defaultLocalSize = 4096
	defaultTTL       = 5 * time.Minute
)

// New returns the backend the settings select.
func New(s *config.Settings, opts Options, log *zap.Logger) (Cache, error) {
	if opts.LocalSize <= 0 {
		opts.LocalSize = defaultLocalSize
	}
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}

	if hp, ok := s.Memcached.Get(); ok {
		log.Info("using memcached cache", zap.String("location", hp.String()))
		return NewMemcached(hp.String(), opts, log), nil
	}

	log.Info("using local cache", zap.Int("size", opts.LocalSize))
	return NewLocal(opts.LocalSize)
}
