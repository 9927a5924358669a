package library

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"snippit/internal/domain"
	"snippit/internal/storage"
)

// Registry opens one Library per user on first use and keeps it for the
// life of the process.
type Registry struct {
	store storage.Repository
	log   logrus.FieldLogger
	opts  Options

	mu   sync.Mutex
	libs map[string]*Library
}

// NewRegistry creates a registry whose libraries share store and opts.
func NewRegistry(store storage.Repository, logger logrus.FieldLogger, opts Options) *Registry {
	return &Registry{
		store: store,
		log:   logger,
		opts:  opts,
		libs:  make(map[string]*Library),
	}
}

// Get returns the library of userID, opening it if needed.
func (r *Registry) Get(ctx context.Context, userID string) (*Library, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.libs[userID]; ok {
		return l, nil
	}
	l, err := Open(ctx, userID, r.store, r.log, r.opts)
	if err != nil {
		return nil, err
	}
	r.libs[userID] = l
	return l, nil
}

// Snapshot returns the current documents of userID without opening a
// library. Nothing is seeded or kept for users seen only by readers.
func (r *Registry) Snapshot(ctx context.Context, userID string) (domain.Snapshot, error) {
	r.mu.Lock()
	l, ok := r.libs[userID]
	r.mu.Unlock()
	if ok {
		return l.Snapshot(), nil
	}
	return r.store.Snapshot(ctx, userID)
}

// Close detaches every open library from the store.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, l := range r.libs {
		l.Close()
		delete(r.libs, id)
	}
}
