package cache

import (
	"errors"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"go.uber.org/zap"
)

// Memcached is a cache on a memcached server. Failures degrade to misses.
type Memcached struct {
	client *memcache.Client
	ttl    int32
	prefix string
	log    *zap.Logger
}

func NewMemcached(location string, opts Options, log *zap.Logger) *Memcached {
	client := memcache.New(location)
	client.Timeout = 250 * time.Millisecond
	return &Memcached{
		client: client,
		ttl:    int32(opts.TTL / time.Second),
		prefix: opts.KeyPrefix,
		log:    log,
	}
}

func (m *Memcached) Get(key string) (string, bool) {
	item, err := m.client.Get(m.prefix + key)
	if err != nil {
		if !errors.Is(err, memcache.ErrCacheMiss) {
			m.log.Debug("memcached get failed", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	return string(item.Value), true
}

func (m *Memcached) Set(key, value string) {
	err := m.client.Set(&memcache.Item{
		Key:        m.prefix + key,
		Value:      []byte(value),
		Expiration: m.ttl,
	})
	if err != nil {
		m.log.Debug("memcached set failed", zap.String("key", key), zap.Error(err))
	}
}

func (m *Memcached) Delete(key string) {
	if err := m.client.Delete(m.prefix + key); err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
		m.log.Debug("memcached delete failed", zap.String("key", key), zap.Error(err))
	}
}

func (m *Memcached) Backend() string { return "memcached" }
