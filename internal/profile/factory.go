package profile

import "context"

// NewStore picks PostgreSQL when a database URL is configured, otherwise the
// in-process store.
func NewStore(ctx context.Context, databaseURL string) (Store, error) {
	if databaseURL == "" {
		return NewInMemoryStore(), nil
	}
	return NewPostgresStore(ctx, databaseURL)
}
