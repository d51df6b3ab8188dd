package pagekit

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// RangeHeader is the request header carrying an RFC 7233 style range.
const RangeHeader = "Range"

// RangePaginator pages through a query by 0-based inclusive row ranges.
type RangePaginator[T any] struct {
	cfg  Config
	opts options
}

// NewRangePaginator validates cfg and returns a paginator.
func NewRangePaginator[T any](cfg Config, opts ...Option) (*RangePaginator[T], error) {
	o, err := newOptions(cfg, opts)
	if err != nil {
		return nil, err
	}

	return &RangePaginator[T]{cfg: cfg, opts: o}, nil
}

func (p *RangePaginator[T]) Config() Config {
	return p.cfg
}

// CreateRequest reads, in order of precedence:
//
//   - ?range=start-end
//   - ?offset=&limit=
//   - Range: <unit>=start-end
//
// and falls back to the first DefaultPerPage rows. A header with another unit
// is ignored. Spans wider than the configured limit are truncated, never
// rejected.
func (p *RangePaginator[T]) CreateRequest(r RequestReader) (RangeRequest, error) {
	req, err := p.parse(r)
	if err != nil {
		return RangeRequest{}, err
	}

	return req.truncate(p.cfg.SpanLimit()), nil
}

func (p *RangePaginator[T]) parse(r RequestReader) (RangeRequest, error) {
	query := r.QueryParams()

	if raw := strings.TrimSpace(query.Get(p.cfg.RangeParam)); raw != "" {
		return p.parseSpan(raw)
	}

	if query.Has(p.cfg.OffsetParam) || query.Has(p.cfg.LimitParam) {
		offset, ok, err := intParam(r, p.cfg.OffsetParam)
		if err != nil {
			return RangeRequest{}, err
		}
		if !ok {
			offset = 0
		}

		limit, ok, err := intParam(r, p.cfg.LimitParam)
		if err != nil {
			return RangeRequest{}, err
		}
		if !ok {
			limit = p.cfg.DefaultPerPage
		}

		if offset < 0 || limit < 1 {
			return RangeRequest{}, fmt.Errorf("%w: offset %d / limit %d out of bounds", ErrMalformedRequest, offset, limit)
		}

		return NewRangeRequestFromOffset(offset, limit)
	}

	if header := strings.TrimSpace(r.HeaderLine(RangeHeader)); header != "" {
		unit, ranges, found := strings.Cut(header, "=")
		if found && strings.EqualFold(strings.TrimSpace(unit), p.cfg.RangeUnit) {
			if strings.Contains(ranges, ",") {
				return RangeRequest{}, fmt.Errorf("%w: multiple ranges are not supported", ErrMalformedRequest)
			}

			return p.parseSpan(strings.TrimSpace(ranges))
		}
	}

	return NewRangeRequestFromOffset(0, p.cfg.DefaultPerPage)
}

// parseSpan parses "start-end" or the open form "start-".
func (p *RangePaginator[T]) parseSpan(raw string) (RangeRequest, error) {
	startRaw, endRaw, found := strings.Cut(raw, "-")
	if !found {
		return RangeRequest{}, fmt.Errorf("%w: range '%s' is not start-end", ErrMalformedRequest, raw)
	}

	start, err := strconv.Atoi(strings.TrimSpace(startRaw))
	if err != nil || start < 0 {
		return RangeRequest{}, fmt.Errorf("%w: invalid range start in '%s'", ErrMalformedRequest, raw)
	}

	endRaw = strings.TrimSpace(endRaw)
	if endRaw == "" {
		return NewRangeRequestFromOffset(start, p.cfg.DefaultPerPage)
	}

	end, err := strconv.Atoi(endRaw)
	if err != nil || end < start {
		return RangeRequest{}, fmt.Errorf("%w: invalid range end in '%s'", ErrMalformedRequest, raw)
	}

	return NewRangeRequest(start, end)
}

// Paginate fetches rows start..end plus one lookahead row.
func (p *RangePaginator[T]) Paginate(ctx context.Context, q Query[T], req RangeRequest) (*RangePagination[T], error) {
	if req.end < req.start || req.start < 0 {
		return nil, fmt.Errorf("%w: invalid range request %d-%d", ErrInvalidArgument, req.start, req.end)
	}

	req = req.truncate(p.cfg.SpanLimit())
	perPage := req.PerPage()

	pageQuery := q.Clone()
	pageQuery.SetOffset(req.start)
	pageQuery.SetLimit(lookaheadLimit(perPage))

	p.opts.logger.Debug("paginating by range",
		zap.Int("start", req.start),
		zap.Int("end", req.end),
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

	return NewRangePagination(rows, req.start, req.end, WithTotal(total), WithHasMore(hasMore))
}

// URIBuilder returns a builder writing this paginator's parameters.
func (p *RangePaginator[T]) URIBuilder() *RangeURIBuilder {
	return NewRangeURIBuilder(p.cfg)
}

// Bind ties the paginator to a query.
func (p *RangePaginator[T]) Bind(q Query[T]) *BoundRangePaginator[T] {
	return &BoundRangePaginator[T]{RangePaginator: p, query: q}
}

// BoundRangePaginator is a RangePaginator tied to one query.
type BoundRangePaginator[T any] struct {
	*RangePaginator[T]
	query Query[T]
}

func (b *BoundRangePaginator[T]) Paginate(ctx context.Context, req RangeRequest) (*RangePagination[T], error) {
	return b.RangePaginator.Paginate(ctx, b.query, req)
}

// PaginateHTTP parses r and fetches the range.
func (b *BoundRangePaginator[T]) PaginateHTTP(ctx context.Context, r RequestReader) (*RangePagination[T], error) {
	req, err := b.CreateRequest(r)
	if err != nil {
		return nil, err
	}

	return b.Paginate(ctx, req)
}
