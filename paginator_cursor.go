package pagekit

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"
)

const (
	// DirectionKey is the reserved position key marking the page direction in
	// a cursor token. It never reaches keyset conditions.
	DirectionKey = "_dir"
	// DirectionPrevious is the DirectionKey value of backward tokens.
	DirectionPrevious = "prev"
)

// CursorPaginator pages through a query by keyset. Orderings must end with a
// unique column, otherwise rows sharing a key are skipped.
type CursorPaginator[T any] struct {
	cfg     Config
	opts    options
	getters Getters[T]
}

// NewCursorPaginator validates cfg and returns a paginator reading positions
// from rows with getters.
func NewCursorPaginator[T any](cfg Config, getters Getters[T], opts ...Option) (*CursorPaginator[T], error) {
	o, err := newOptions(cfg, opts)
	if err != nil {
		return nil, err
	}

	if len(getters) == 0 {
		return nil, fmt.Errorf("%w: cursor paginator needs getters", ErrMissingGetter)
	}

	return &CursorPaginator[T]{cfg: cfg, opts: o, getters: getters}, nil
}

func (p *CursorPaginator[T]) Config() Config {
	return p.cfg
}

// Encoder returns the token encoder.
func (p *CursorPaginator[T]) Encoder() Encoder {
	return p.opts.encoder
}

// CreateRequest decodes the cursor token of an HTTP request. A missing token
// is the first page.
func (p *CursorPaginator[T]) CreateRequest(r RequestReader) (CursorRequest, error) {
	perPage, err := perPageParam(r, p.cfg)
	if err != nil {
		return CursorRequest{}, err
	}

	token := strings.TrimSpace(r.QueryParams().Get(p.cfg.CursorParam))
	if token == "" {
		return NewCursorRequest(perPage, nil, Forward)
	}

	position, err := p.opts.encoder.Decode(token)
	if err != nil {
		return CursorRequest{}, err
	}

	direction := Forward
	if marker, ok := position.Get(DirectionKey); ok {
		if marker != DirectionPrevious {
			return CursorRequest{}, fmt.Errorf("%w: unknown direction marker %v", ErrMalformedCursor, marker)
		}
		direction = Backward
		position = position.Without(DirectionKey)
	}

	if position.IsEmpty() {
		return CursorRequest{}, fmt.Errorf("%w: cursor carries no position", ErrMalformedCursor)
	}

	req, err := NewCursorRequest(perPage, position, direction)
	if err != nil {
		return CursorRequest{}, err
	}

	return req.withToken(token), nil
}

// Paginate fetches the page after the request position, or before it for
// backward requests. One lookahead row tells whether rows exist further in the
// walking direction. For forward pages with a position, a second one-row lookbehind query
// in reverse order tells whether rows exist before the first row.
func (p *CursorPaginator[T]) Paginate(ctx context.Context, q Query[T], req CursorRequest) (*CursorPagination[T], error) {
	if req.perPage < 1 {
		return nil, fmt.Errorf("%w: zero cursor request", ErrInvalidArgument)
	}

	orders := q.Orders()
	if err := orders.validate(); err != nil {
		return nil, err
	}

	perPage := min(req.perPage, p.cfg.SpanLimit())

	p.opts.logger.Debug("paginating by cursor",
		zap.Stringer("direction", req.direction),
		zap.Int("per_page", perPage),
		zap.Strings("columns", req.position.Columns()),
	)

	var (
		next, previous Position
		rows           []T
		err            error
	)
	if req.direction == Backward && req.position != nil {
		rows, next, previous, err = p.backward(ctx, q, orders, req.position, perPage)
	} else {
		rows, next, previous, err = p.forward(ctx, q, orders, req.position, perPage)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot paginate: %w", err)
	}

	total, err := resolveTotal(ctx, q.Clone(), p.opts.totalMode)
	if err != nil {
		return nil, fmt.Errorf("cannot paginate: %w", err)
	}

	page, err := NewCursorPagination(rows, perPage, next, previous, WithTotal(total))
	if err != nil {
		return nil, err
	}

	return page.WithCursorName(req.token), nil
}

func (p *CursorPaginator[T]) forward(ctx context.Context, q Query[T], orders Orderings, position Position, perPage int) (rows []T, next, previous Position, err error) {
	rows, hasMore, err := p.fetch(ctx, q, orders, position, perPage)
	if err != nil {
		return nil, nil, nil, err
	}

	if hasMore {
		if next, err = PositionOf(rows[len(rows)-1], orders, p.getters); err != nil {
			return nil, nil, nil, err
		}
	}

	switch {
	case position == nil:
	case len(rows) == 0:
		// Nothing left after position, go back from it.
		previous = position.Clone()
	default:
		first, err := PositionOf(rows[0], orders, p.getters)
		if err != nil {
			return nil, nil, nil, err
		}

		before, _, err := p.fetch(ctx, q, orders.Reversed(), first, 0)
		if err != nil {
			return nil, nil, nil, err
		}
		if len(before) > 0 {
			previous = first
		}
	}

	return rows, next, previous, nil
}

func (p *CursorPaginator[T]) backward(ctx context.Context, q Query[T], orders Orderings, position Position, perPage int) (rows []T, next, previous Position, err error) {
	rows, hasMore, err := p.fetch(ctx, q, orders.Reversed(), position, perPage)
	if err != nil {
		return nil, nil, nil, err
	}
	slices.Reverse(rows)

	if len(rows) == 0 {
		return rows, nil, nil, nil
	}

	if hasMore {
		if previous, err = PositionOf(rows[0], orders, p.getters); err != nil {
			return nil, nil, nil, err
		}
	}

	if next, err = PositionOf(rows[len(rows)-1], orders, p.getters); err != nil {
		return nil, nil, nil, err
	}

	return rows, next, previous, nil
}

// fetch runs q in orders after position. perPage 0 is a one-row existence
// check.
func (p *CursorPaginator[T]) fetch(ctx context.Context, q Query[T], orders Orderings, position Position, perPage int) ([]T, bool, error) {
	keyset, err := KeysetAfter(position, orders, false)
	if err != nil {
		return nil, false, err
	}

	pageQuery := q.Clone()
	pageQuery.ResetOrder()
	for _, orderBy := range orders {
		pageQuery.SetOrder(orderBy.Column, orderBy.Direction)
	}
	pageQuery.SetOffset(0)
	pageQuery.SetKeyset(keyset)
	pageQuery.SetLimit(lookaheadLimit(perPage))

	rows, err := pageQuery.Execute(ctx)
	if err != nil {
		return nil, false, err
	}

	if perPage == 0 {
		return rows, len(rows) > 0, nil
	}

	rows, hasMore := trimLookahead(rows, perPage)

	return rows, hasMore, nil
}

// URIBuilder returns a builder writing this paginator's tokens.
func (p *CursorPaginator[T]) URIBuilder() *CursorURIBuilder {
	return NewCursorURIBuilder(p.cfg, p.opts.encoder)
}

// Bind ties the paginator to a query.
func (p *CursorPaginator[T]) Bind(q Query[T]) *BoundCursorPaginator[T] {
	return &BoundCursorPaginator[T]{CursorPaginator: p, query: q}
}

// BoundCursorPaginator is a CursorPaginator tied to one query.
type BoundCursorPaginator[T any] struct {
	*CursorPaginator[T]
	query Query[T]
}

func (b *BoundCursorPaginator[T]) Paginate(ctx context.Context, req CursorRequest) (*CursorPagination[T], error) {
	return b.CursorPaginator.Paginate(ctx, b.query, req)
}

// PaginateHTTP parses r and fetches the page.
func (b *BoundCursorPaginator[T]) PaginateHTTP(ctx context.Context, r RequestReader) (*CursorPagination[T], error) {
	req, err := b.CreateRequest(r)
	if err != nil {
		return nil, err
	}

	return b.Paginate(ctx, req)
}
