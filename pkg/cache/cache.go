package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache: miss")

type Cache interface {
	Get(ctx context.Context, key string, value any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
}

type noopCache struct{}

// NewNoop returns a Cache that stores nothing. Every Get is a miss.
func NewNoop() Cache {
	return noopCache{}
}

func (noopCache) Get(context.Context, string, any) error {
	return ErrMiss
}

func (noopCache) Set(context.Context, string, any, time.Duration) error {
	return nil
}

func (noopCache) Delete(context.Context, ...string) error {
	return nil
}

func (noopCache) Ping(context.Context) error {
	return nil
}
