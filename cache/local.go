package cache

import lru "github.com/hashicorp/golang-lru"

// Local is an in-process LRU cache.
type Local struct {
	lru *lru.Cache
}

func NewLocal(size int) (*Local, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &Local{lru: c}, nil
}

func (l *Local) Get(key string) (string, bool) {
	v, ok := l.lru.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		l.lru.Remove(key) // type mismatch, evict
		return "", false
	}
	return s, true
}

func (l *Local) Set(key, value string) { l.lru.Add(key, value) }

func (l *Local) Delete(key string) { l.lru.Remove(key) }

func (l *Local) Backend() string { return "local" }
