package pagekit

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// OffsetPaginator pages through a query by page number.
type OffsetPaginator[T any] struct {
	cfg  Config
	opts options
}

// NewOffsetPaginator validates cfg and returns a paginator.
func NewOffsetPaginator[T any](cfg Config, opts ...Option) (*OffsetPaginator[T], error) {
	o, err := newOptions(cfg, opts)
	if err != nil {
		return nil, err
	}

	return &OffsetPaginator[T]{cfg: cfg, opts: o}, nil
}

func (p *OffsetPaginator[T]) Config() Config {
	return p.cfg
}

// CreateRequest parses the page number and page size of an HTTP request. A
// page below 1 is raised to 1.
func (p *OffsetPaginator[T]) CreateRequest(r RequestReader) (OffsetRequest, error) {
	page, ok, err := intParam(r, p.cfg.PageParam)
	if err != nil {
		return OffsetRequest{}, err
	}
	if !ok {
		page = 1
	}

	perPage, err := perPageParam(r, p.cfg)
	if err != nil {
		return OffsetRequest{}, err
	}

	page = max(page, 1)
	if offsetOverflows(page, perPage) {
		return OffsetRequest{}, fmt.Errorf("%w: page %d is out of range", ErrMalformedRequest, page)
	}

	return NewOffsetRequest(page, perPage)
}

// Paginate fetches the requested page. One extra row is requested to learn
// whether a next page exists; it is never part of the result.
func (p *OffsetPaginator[T]) Paginate(ctx context.Context, q Query[T], req OffsetRequest) (*OffsetPagination[T], error) {
	if req.perPage < 1 || req.page < 1 {
		return nil, fmt.Errorf("%w: zero offset request", ErrInvalidArgument)
	}

	perPage := min(req.perPage, p.cfg.SpanLimit())
	offset := (req.page - 1) * perPage

	pageQuery := q.Clone()
	pageQuery.SetOffset(offset)
	pageQuery.SetLimit(lookaheadLimit(perPage))

	p.opts.logger.Debug("paginating by offset",
		zap.Int("page", req.page),
		zap.Int("per_page", perPage),
		zap.Int("offset", offset),
	)

	rows, err := pageQuery.Execute(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot paginate: %w", err)
	}
	rows, hasMore := trimLookahead(rows, perPage)

	total, err := resolveTotal(ctx, q.Clone(), p.opts.totalMode)
	if err != nil {
		return nil, fmt.Errorf("cannot paginate: %w", err)
	}

	return NewOffsetPagination(rows, req.page, perPage, WithTotal(total), WithHasMore(hasMore))
}

// URIBuilder returns a builder writing this paginator's parameters.
func (p *OffsetPaginator[T]) URIBuilder() *OffsetURIBuilder {
	return NewOffsetURIBuilder(p.cfg)
}

// Bind ties the paginator to a query.
func (p *OffsetPaginator[T]) Bind(q Query[T]) *BoundOffsetPaginator[T] {
	return &BoundOffsetPaginator[T]{OffsetPaginator: p, query: q}
}

// BoundOffsetPaginator is an OffsetPaginator tied to one query.
type BoundOffsetPaginator[T any] struct {
	*OffsetPaginator[T]
	query Query[T]
}

func (b *BoundOffsetPaginator[T]) Paginate(ctx context.Context, req OffsetRequest) (*OffsetPagination[T], error) {
	return b.OffsetPaginator.Paginate(ctx, b.query, req)
}

// PaginateHTTP parses r and fetches the page.
func (b *BoundOffsetPaginator[T]) PaginateHTTP(ctx context.Context, r RequestReader) (*OffsetPagination[T], error) {
	req, err := b.CreateRequest(r)
	if err != nil {
		return nil, err
	}

	return b.Paginate(ctx, req)
}
