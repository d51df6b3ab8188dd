package pagekit

import "context"

// CursorStorage keeps positions server side under opaque names, so clients
// only ever see the name.
type CursorStorage interface {
	// Store saves position under a fresh name. Names never repeat, even for
	// equal positions.
	Store(ctx context.Context, position Position) (string, error)
	// Retrieve loads a position. ok is false for unknown, expired or
	// unreadable entries.
	Retrieve(ctx context.Context, name string) (position Position, ok bool, err error)
	Delete(ctx context.Context, name string) error
	// Clear drops every position this storage issued.
	Clear(ctx context.Context) error
	// Count returns the number of positions this storage holds.
	Count(ctx context.Context) (int, error)
}
