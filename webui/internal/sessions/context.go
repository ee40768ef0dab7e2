package sessions

import (
	"context"

	"github.com/krancour/taskdash/internal/session"
)

type storeContextKey struct{}

type storageContextKey struct{}

// ContextWithStore returns a copy of ctx carrying the session Store of the
// browser that issued the request.
func ContextWithStore(ctx context.Context, store *session.Store) context.Context {
	return context.WithValue(ctx, storeContextKey{}, store)
}

// StoreFromContext returns the session Store carried by ctx.
func StoreFromContext(ctx context.Context) *session.Store {
	return ctx.Value(storeContextKey{}).(*session.Store)
}

func contextWithStorage(
	ctx context.Context,
	storage session.Storage,
) context.Context {
	return context.WithValue(ctx, storageContextKey{}, storage)
}

func storageFromContext(ctx context.Context) session.Storage {
	return ctx.Value(storageContextKey{}).(session.Storage)
}
