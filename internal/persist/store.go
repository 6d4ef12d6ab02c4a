// Package persist is the durable boundary for console state that must survive
// restarts. Values are JSON documents keyed by store name and sealed at rest.
package persist

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
)

var ErrCorrupt = errors.New("persist: stored value cannot be opened")

// Persister is what stores depend on.
type Persister interface {
	Load(ctx context.Context, key string, v any) (bool, error)
	Save(ctx context.Context, key string, v any) error
	Delete(ctx context.Context, key string) error
}

// Backend stores opaque bytes.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, key string) error
}

type Store struct {
	backend   Backend
	sealer    *Sealer
	namespace string
}

func New(b Backend, sealer *Sealer, namespace string) *Store {
	return &Store{backend: b, sealer: sealer, namespace: namespace}
}

func (s *Store) key(k string) string {
	if s.namespace == "" {
		return k
	}
	return s.namespace + ":" + k
}

func (s *Store) Load(ctx context.Context, key string, v any) (bool, error) {
	raw, ok, err := s.backend.Get(ctx, s.key(key))
	if err != nil || !ok {
		return false, errors.Wrapf(err, "persist: load %s", key)
	}
	if s.sealer != nil {
		if raw, err = s.sealer.Open(raw); err != nil {
			return false, errors.Wrapf(ErrCorrupt, "persist: load %s", key)
		}
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, errors.Wrapf(err, "persist: decode %s", key)
	}
	return true, nil
}

func (s *Store) Save(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "persist: encode %s", key)
	}
	if s.sealer != nil {
		if raw, err = s.sealer.Seal(raw); err != nil {
			return errors.Wrapf(err, "persist: seal %s", key)
		}
	}
	return errors.Wrapf(s.backend.Put(ctx, s.key(key), raw), "persist: save %s", key)
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return errors.Wrapf(s.backend.Del(ctx, s.key(key)), "persist: delete %s", key)
}
