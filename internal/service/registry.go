package service

import (
	"context"
	"log/slog"

	"travelchat/internal/vectorstore"
)

// Handle names a collection and, when it loaded, holds it.
type Handle struct {
	Name       string
	Collection vectorstore.Collection
	// Err is why the collection is unavailable; nil when loaded.
	Err error
}

// Available reports whether the collection loaded.
func (h Handle) Available() bool { return h.Collection != nil }

// Registry is the fixed, ordered set of collections of one session.
// Handles are created once and never retried.
type Registry struct {
	handles []Handle
}

// NewRegistry opens every name in order. Failures are logged and recorded,
// never returned.
func NewRegistry(ctx context.Context, store vectorstore.Store, names []string, logger *slog.Logger) *Registry {
	r := &Registry{handles: make([]Handle, 0, len(names))}
	for _, name := range names {
		r.handles = append(r.handles, register(ctx, store, name, logger))
	}
	return r
}

func register(ctx context.Context, store vectorstore.Store, name string, logger *slog.Logger) Handle {
	logger.Info("loading collection", "collection", name)
	c, err := store.Open(ctx, name)
	if err != nil {
		logger.Error("collection unavailable", "collection", name, "error", err)
		return Handle{Name: name, Err: err}
	}
	logger.Info("collection loaded", "collection", name)
	return Handle{Name: name, Collection: c}
}

// Available returns the names of loaded collections in registration order.
func (r *Registry) Available() []string {
	names := make([]string, 0, len(r.handles))
	for _, h := range r.handles {
		if h.Available() {
			names = append(names, h.Name)
		}
	}
	return names
}

// Handles returns every handle, loaded or not, in registration order.
func (r *Registry) Handles() []Handle {
	out := make([]Handle, len(r.handles))
	copy(out, r.handles)
	return out
}

func (r *Registry) loaded() []Handle {
	out := make([]Handle, 0, len(r.handles))
	for _, h := range r.handles {
		if h.Available() {
			out = append(out, h)
		}
	}
	return out
}
