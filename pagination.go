package pagekit

import (
	"fmt"
	"iter"
	"net/http"
	"slices"
	"strconv"
	"sync"
)

// Pagination is a page of rows plus the metadata shared by every strategy.
type Pagination[T any] interface {
	// Items returns the rows of the page. The slice is materialized once and
	// the same slice is returned on every call.
	Items() []T
	// Count returns the number of rows on the page.
	Count() int
	// IsEmpty returns true if the page holds no rows.
	IsEmpty() bool
	// PerPage returns the requested page size, the last page may be shorter.
	PerPage() int
	// Total returns the number of rows in the whole dataset; ok is false when
	// it was not computed.
	Total() (total int64, ok bool, err error)
}

type page[T any] struct {
	once    sync.Once
	seq     iter.Seq[T]
	items   []T
	perPage int
	total   *Total
}

func newPage[T any](items []T, perPage int, o pageOptions) (*page[T], error) {
	if perPage <= 0 {
		return nil, fmt.Errorf("%w: per page must be positive, got %d", ErrInvalidArgument, perPage)
	}

	p := &page[T]{perPage: perPage, total: o.total}
	if o.seq == nil {
		p.items = slices.Clip(items)
		if p.items == nil {
			p.items = make([]T, 0)
		}
		p.once.Do(func() {})

		return p, nil
	}

	seq, ok := o.seq.(iter.Seq[T])
	if !ok {
		return nil, fmt.Errorf("%w: items sequence of type %T does not match the page", ErrInvalidArgument, o.seq)
	}
	p.seq = seq

	return p, nil
}

func (p *page[T]) Items() []T {
	p.once.Do(func() {
		p.items = slices.Collect(p.seq)
		if p.items == nil {
			p.items = make([]T, 0)
		}
		p.seq = nil
	})

	return p.items
}

func (p *page[T]) Count() int {
	return len(p.Items())
}

func (p *page[T]) IsEmpty() bool {
	return p.Count() == 0
}

func (p *page[T]) PerPage() int {
	return p.perPage
}

func (p *page[T]) Total() (int64, bool, error) {
	return p.total.Resolve()
}

// PageOption customizes a pagination value object.
type PageOption func(*pageOptions)

type pageOptions struct {
	total   *Total
	hasMore *bool
	seq     any
}

// WithTotal attaches a total, see KnownTotal and LazyTotal.
func WithTotal(total *Total) PageOption {
	return func(o *pageOptions) {
		o.total = total
	}
}

// WithHasMore overrides the "is there a next page" flag instead of deriving
// it from the total.
func WithHasMore(hasMore bool) PageOption {
	return func(o *pageOptions) {
		o.hasMore = &hasMore
	}
}

// WithItemsSeq replaces the items with a lazily evaluated sequence, consumed
// once on the first Items call.
func WithItemsSeq[T any](seq iter.Seq[T]) PageOption {
	return func(o *pageOptions) {
		o.seq = seq
	}
}

func collectPageOptions(opts []PageOption) pageOptions {
	var o pageOptions
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// OffsetPagination is a page addressed by number.
type OffsetPagination[T any] struct {
	*page[T]
	currentPage int
	hasMore     *bool
}

// NewOffsetPagination builds an offset page. Without WithHasMore, HasMore is
// derived from the total.
func NewOffsetPagination[T any](items []T, currentPage, perPage int, opts ...PageOption) (*OffsetPagination[T], error) {
	if currentPage < 1 {
		return nil, fmt.Errorf("%w: current page must be at least 1, got %d", ErrInvalidArgument, currentPage)
	}

	o := collectPageOptions(opts)
	p, err := newPage(items, perPage, o)
	if err != nil {
		return nil, err
	}

	return &OffsetPagination[T]{page: p, currentPage: currentPage, hasMore: o.hasMore}, nil
}

// CurrentPage returns the 1-based page number.
func (p *OffsetPagination[T]) CurrentPage() int {
	return p.currentPage
}

// Offset returns the number of rows before this page.
func (p *OffsetPagination[T]) Offset() int {
	return (p.currentPage - 1) * p.perPage
}

// HasMore reports whether a following page exists. An explicit flag wins,
// otherwise the total decides; an unknown total means no known next page.
func (p *OffsetPagination[T]) HasMore() (bool, error) {
	if p.hasMore != nil {
		return *p.hasMore, nil
	}

	total, ok, err := p.Total()
	if err != nil || !ok {
		return false, err
	}

	return int64(p.currentPage)*int64(p.perPage) < total, nil
}

// HasPrevious reports whether the page is not the first one.
func (p *OffsetPagination[T]) HasPrevious() bool {
	return p.currentPage > 1
}

// TotalPages returns ceil(total / perPage); ok is false when the total is
// unknown.
func (p *OffsetPagination[T]) TotalPages() (int, bool, error) {
	total, ok, err := p.Total()
	if err != nil || !ok {
		return 0, false, err
	}

	return int((total + int64(p.perPage) - 1) / int64(p.perPage)), true, nil
}

// CursorPagination is a keyset page.
type CursorPagination[T any] struct {
	*page[T]
	next       Position
	previous   Position
	cursorName string
}

// NewCursorPagination builds a cursor page. next and previous are nil when
// there is no page in that direction.
func NewCursorPagination[T any](items []T, perPage int, next, previous Position, opts ...PageOption) (*CursorPagination[T], error) {
	o := collectPageOptions(opts)
	p, err := newPage(items, perPage, o)
	if err != nil {
		return nil, err
	}

	return &CursorPagination[T]{page: p, next: next.Clone(), previous: previous.Clone()}, nil
}

// WithCursorName returns the page tagged with the opaque server-side cursor
// identifier it was loaded with.
func (p *CursorPagination[T]) WithCursorName(name string) *CursorPagination[T] {
	p.cursorName = name

	return p
}

// NextPosition returns the position after the last row, nil on the last page.
func (p *CursorPagination[T]) NextPosition() Position {
	return p.next.Clone()
}

// PreviousPosition returns the position of the first row when rows exist
// before it, nil otherwise.
func (p *CursorPagination[T]) PreviousPosition() Position {
	return p.previous.Clone()
}

// CursorName returns the opaque cursor identifier the page was loaded with.
func (p *CursorPagination[T]) CursorName() string {
	return p.cursorName
}

func (p *CursorPagination[T]) HasNext() bool {
	return p.next != nil
}

func (p *CursorPagination[T]) HasPrevious() bool {
	return p.previous != nil
}

// RangePagination is a page addressed by 0-based inclusive bounds.
type RangePagination[T any] struct {
	*page[T]
	start   int
	end     int
	hasMore *bool
}

// NewRangePagination builds a range page. The page size is end-start+1.
func NewRangePagination[T any](items []T, start, end int, opts ...PageOption) (*RangePagination[T], error) {
	if start < 0 {
		return nil, fmt.Errorf("%w: range start must not be negative, got %d", ErrInvalidArgument, start)
	}
	if end < start {
		return nil, fmt.Errorf("%w: range end %d is before start %d", ErrInvalidArgument, end, start)
	}

	o := collectPageOptions(opts)
	p, err := newPage(items, end-start+1, o)
	if err != nil {
		return nil, err
	}

	return &RangePagination[T]{page: p, start: start, end: end, hasMore: o.hasMore}, nil
}

func (p *RangePagination[T]) Start() int {
	return p.start
}

func (p *RangePagination[T]) End() int {
	return p.end
}

func (p *RangePagination[T]) HasPrevious() bool {
	return p.start > 0
}

// HasMore reports whether rows exist after End. An explicit flag wins,
// otherwise the total decides.
func (p *RangePagination[T]) HasMore() (bool, error) {
	if p.hasMore != nil {
		return *p.hasMore, nil
	}

	total, ok, err := p.Total()
	if err != nil || !ok {
		return false, err
	}

	return int64(p.end)+1 < total, nil
}

// ContentRange renders the Content-Range value of the page:
//
//	items 0-19/100
//	items 0-19/*
//	items */100 (empty page)
func (p *RangePagination[T]) ContentRange(unit string) (string, error) {
	total, ok, err := p.Total()
	if err != nil {
		return "", err
	}

	totalStr := "*"
	if ok {
		totalStr = strconv.FormatInt(total, 10)
	}

	if p.IsEmpty() {
		return fmt.Sprintf("%s */%s", unit, totalStr), nil
	}

	last := min(p.end, p.start+p.Count()-1)

	return fmt.Sprintf("%s %d-%d/%s", unit, p.start, last, totalStr), nil
}

// StatusCode returns 200 when the page holds the complete, known collection
// and 206 Partial Content otherwise.
func (p *RangePagination[T]) StatusCode() (int, error) {
	total, ok, err := p.Total()
	if err != nil {
		return 0, err
	}

	if ok && p.start == 0 && int64(p.Count()) == total {
		return http.StatusOK, nil
	}

	return http.StatusPartialContent, nil
}

var (
	_ Pagination[struct{}] = (*OffsetPagination[struct{}])(nil)
	_ Pagination[struct{}] = (*CursorPagination[struct{}])(nil)
	_ Pagination[struct{}] = (*RangePagination[struct{}])(nil)
)
