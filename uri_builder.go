package pagekit

import (
	"fmt"
	"net/url"
	"strconv"
)

// URIBuilder renders a request into a copy of base, replacing pagination
// parameters and keeping every other query parameter.
type URIBuilder interface {
	Build(base *url.URL, req Request) (*url.URL, error)
}

func withQuery(base *url.URL, apply func(q url.Values) error) (*url.URL, error) {
	if base == nil {
		return nil, fmt.Errorf("%w: nil base uri", ErrInvalidArgument)
	}

	u := *base
	if base.User != nil {
		user := *base.User
		u.User = &user
	}

	q := u.Query()
	if err := apply(q); err != nil {
		return nil, err
	}
	u.RawQuery = q.Encode()

	return &u, nil
}

// OffsetURIBuilder writes page and per page parameters.
type OffsetURIBuilder struct {
	pageParam    string
	perPageParam string
}

func NewOffsetURIBuilder(cfg Config) *OffsetURIBuilder {
	return &OffsetURIBuilder{pageParam: cfg.PageParam, perPageParam: cfg.PerPageParam}
}

func (b *OffsetURIBuilder) Build(base *url.URL, req Request) (*url.URL, error) {
	offsetReq, ok := req.(OffsetRequest)
	if !ok {
		return nil, requestMismatch("offset uri builder", StrategyOffset, req)
	}

	return withQuery(base, func(q url.Values) error {
		q.Set(b.pageParam, strconv.Itoa(offsetReq.Page()))
		q.Set(b.perPageParam, strconv.Itoa(offsetReq.PerPage()))

		return nil
	})
}

// CursorURIBuilder writes the encoded cursor token and the per page
// parameter. A request without position has no cursor parameter at all.
type CursorURIBuilder struct {
	cursorParam  string
	perPageParam string
	encoder      Encoder
}

// NewCursorURIBuilder returns a builder encoding tokens with encoder,
// PlainEncoder when nil.
func NewCursorURIBuilder(cfg Config, encoder Encoder) *CursorURIBuilder {
	if encoder == nil {
		encoder = PlainEncoder{}
	}

	return &CursorURIBuilder{cursorParam: cfg.CursorParam, perPageParam: cfg.PerPageParam, encoder: encoder}
}

func (b *CursorURIBuilder) Build(base *url.URL, req Request) (*url.URL, error) {
	cursorReq, ok := req.(CursorRequest)
	if !ok {
		return nil, requestMismatch("cursor uri builder", StrategyCursor, req)
	}

	return withQuery(base, func(q url.Values) error {
		q.Set(b.perPageParam, strconv.Itoa(cursorReq.PerPage()))

		position := cursorReq.Position()
		if position == nil {
			q.Del(b.cursorParam)
			return nil
		}

		if cursorReq.Direction() == Backward {
			position = position.With(DirectionKey, DirectionPrevious)
		}

		token, err := b.encoder.Encode(position)
		if err != nil {
			return fmt.Errorf("cannot build cursor uri: %w", err)
		}
		q.Set(b.cursorParam, token)

		return nil
	})
}

// RangeURIBuilder writes the range parameter and drops offset and limit.
type RangeURIBuilder struct {
	rangeParam  string
	offsetParam string
	limitParam  string
}

func NewRangeURIBuilder(cfg Config) *RangeURIBuilder {
	return &RangeURIBuilder{rangeParam: cfg.RangeParam, offsetParam: cfg.OffsetParam, limitParam: cfg.LimitParam}
}

func (b *RangeURIBuilder) Build(base *url.URL, req Request) (*url.URL, error) {
	rangeReq, ok := req.(RangeRequest)
	if !ok {
		return nil, requestMismatch("range uri builder", StrategyRange, req)
	}

	return withQuery(base, func(q url.Values) error {
		q.Del(b.offsetParam)
		q.Del(b.limitParam)
		q.Set(b.rangeParam, fmt.Sprintf("%d-%d", rangeReq.Start(), rangeReq.End()))

		return nil
	})
}

var (
	_ URIBuilder = (*OffsetURIBuilder)(nil)
	_ URIBuilder = (*CursorURIBuilder)(nil)
	_ URIBuilder = (*RangeURIBuilder)(nil)
)
