package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when nothing is stored under the key.
var ErrNotFound = errors.New("storage: key not found")

// Repository is a durable key/value store for client state such as the
// serialized cart. Set overwrites; the last writer wins.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Pinger is implemented by backends that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

type scoped struct {
	repo      Repository
	namespace string
}

// Scoped returns a view of repo whose keys live under namespace.
func Scoped(repo Repository, namespace string) Repository {
	return &scoped{repo: repo, namespace: namespace}
}

func (s *scoped) Get(ctx context.Context, key string) ([]byte, error) {
	return s.repo.Get(ctx, s.namespace+"/"+key)
}

func (s *scoped) Set(ctx context.Context, key string, value []byte) error {
	return s.repo.Set(ctx, s.namespace+"/"+key, value)
}

// splitKey separates a scoped key into namespace and key.
func splitKey(full string) (namespace, key string) {
	for i := len(full) - 1; i >= 0; i-- {
		if full[i] == '/' {
			return full[:i], full[i+1:]
		}
	}
	return "", full
}
