package pagekit

import "context"

// NoLimit disables LIMIT on a query.
const NoLimit = -1

// Query is the query engine a paginator drives. Implementations are mutable
// builders: paginators Clone them before changing limits, offsets or keysets,
// so the caller's query is never modified.
type Query[T any] interface {
	// SetOrder appends an ordering column. A column already present is moved
	// to the end with the new direction.
	SetOrder(column string, direction Direction)
	// ResetOrder drops every ordering column.
	ResetOrder()
	// Orders returns the active ordering.
	Orders() Orderings
	// SetLimit limits the number of returned rows, NoLimit removes the limit.
	SetLimit(n int)
	// SetOffset skips the first n rows.
	SetOffset(n int)
	// SetKeyset restricts the rows to the ones matching the keyset condition.
	SetKeyset(keyset Keyset)
	// Execute runs the query.
	Execute(ctx context.Context) ([]T, error)
	// Count returns the number of rows the query matches regardless of order,
	// limit, offset and keyset.
	Count(ctx context.Context) (int64, error)
	// Clone returns an independent copy.
	Clone() Query[T]
}

// applyOrderBy implements the SetOrder deduplication rule on an Orderings
// slice.
func applyOrderBy(sort Orderings, orderBy OrderBy) Orderings {
	ret := make(Orderings, 0, len(sort)+1)
	for _, processed := range sort {
		if processed.Column != orderBy.Column {
			ret = append(ret, processed)
		}
	}

	return append(ret, orderBy)
}
