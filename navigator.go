package pagekit

import "fmt"

// Navigator computes the requests of neighbouring pages from a fetched page.
// It never queries the data source. ok is false when a page is unavailable.
type Navigator interface {
	First() (req Request, ok bool)
	Last() (req Request, ok bool)
	Previous() (req Request, ok bool)
	Next() (req Request, ok bool)
	Current() (req Request, ok bool)
}

// OffsetNavigator navigates page numbers.
type OffsetNavigator struct {
	page       int
	perPage    int
	hasMore    bool
	totalPages int
	totalKnown bool
}

// NewOffsetNavigator resolves the total and the next page flag of p.
func NewOffsetNavigator[T any](p *OffsetPagination[T]) (*OffsetNavigator, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil offset pagination", ErrInvalidArgument)
	}

	hasMore, err := p.HasMore()
	if err != nil {
		return nil, err
	}

	totalPages, known, err := p.TotalPages()
	if err != nil {
		return nil, err
	}

	return &OffsetNavigator{
		page:       p.CurrentPage(),
		perPage:    p.PerPage(),
		hasMore:    hasMore,
		totalPages: totalPages,
		totalKnown: known,
	}, nil
}

func (n *OffsetNavigator) request(page int) (Request, bool) {
	req, err := NewOffsetRequest(page, n.perPage)
	if err != nil {
		return nil, false
	}

	return req, true
}

func (n *OffsetNavigator) First() (Request, bool) {
	return n.request(1)
}

// Last is unavailable while the total is unknown.
func (n *OffsetNavigator) Last() (Request, bool) {
	if !n.totalKnown {
		return nil, false
	}

	return n.request(max(n.totalPages, 1))
}

func (n *OffsetNavigator) Previous() (Request, bool) {
	if n.page <= 1 {
		return nil, false
	}

	return n.request(n.page - 1)
}

func (n *OffsetNavigator) Next() (Request, bool) {
	if !n.hasMore {
		return nil, false
	}

	return n.request(n.page + 1)
}

func (n *OffsetNavigator) Current() (Request, bool) {
	return n.request(n.page)
}

// RangeNavigator navigates windows of the current page's width.
type RangeNavigator struct {
	start   int
	end     int
	hasMore bool
	total   int64
	known   bool
}

// NewRangeNavigator resolves the total and the next window flag of p.
func NewRangeNavigator[T any](p *RangePagination[T]) (*RangeNavigator, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil range pagination", ErrInvalidArgument)
	}

	hasMore, err := p.HasMore()
	if err != nil {
		return nil, err
	}

	total, known, err := p.Total()
	if err != nil {
		return nil, err
	}

	return &RangeNavigator{
		start:   p.Start(),
		end:     p.End(),
		hasMore: hasMore,
		total:   total,
		known:   known,
	}, nil
}

func (n *RangeNavigator) perPage() int {
	return n.end - n.start + 1
}

// window builds start..end, clamping end to the last row when the total is
// known.
func (n *RangeNavigator) window(start, end int) (Request, bool) {
	if n.known {
		if int64(start) >= n.total {
			return nil, false
		}
		end = int(min(int64(end), n.total-1))
	}

	req, err := NewRangeRequest(start, end)
	if err != nil {
		return nil, false
	}

	return req, true
}

func (n *RangeNavigator) First() (Request, bool) {
	return n.window(0, n.perPage()-1)
}

// Last is [max(0, total-perPage), total-1], unavailable while the total is
// unknown or zero.
func (n *RangeNavigator) Last() (Request, bool) {
	if !n.known || n.total == 0 {
		return nil, false
	}

	start := max(n.total-int64(n.perPage()), 0)

	return n.window(int(start), int(n.total-1))
}

// Previous is the window ending right before the current one, clamped to 0.
func (n *RangeNavigator) Previous() (Request, bool) {
	if n.start == 0 {
		return nil, false
	}

	return n.window(max(n.start-n.perPage(), 0), n.start-1)
}

func (n *RangeNavigator) Next() (Request, bool) {
	if !n.hasMore {
		return nil, false
	}

	return n.window(n.end+1, n.end+n.perPage())
}

func (n *RangeNavigator) Current() (Request, bool) {
	req, err := NewRangeRequest(n.start, n.end)
	if err != nil {
		return nil, false
	}

	return req, true
}

// CursorNavigator navigates keyset pages. Last and Current are always
// unavailable: a cursor has no absolute position.
type CursorNavigator struct {
	perPage  int
	next     Position
	previous Position
}

func NewCursorNavigator[T any](p *CursorPagination[T]) (*CursorNavigator, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil cursor pagination", ErrInvalidArgument)
	}

	return &CursorNavigator{
		perPage:  p.PerPage(),
		next:     p.NextPosition(),
		previous: p.PreviousPosition(),
	}, nil
}

func (n *CursorNavigator) request(position Position, direction CursorDirection) (Request, bool) {
	req, err := NewCursorRequest(n.perPage, position, direction)
	if err != nil {
		return nil, false
	}

	return req, true
}

func (n *CursorNavigator) First() (Request, bool) {
	return n.request(nil, Forward)
}

func (n *CursorNavigator) Last() (Request, bool) {
	return nil, false
}

func (n *CursorNavigator) Previous() (Request, bool) {
	if n.previous == nil {
		return nil, false
	}

	return n.request(n.previous, Backward)
}

func (n *CursorNavigator) Next() (Request, bool) {
	if n.next == nil {
		return nil, false
	}

	return n.request(n.next, Forward)
}

func (n *CursorNavigator) Current() (Request, bool) {
	return nil, false
}

var (
	_ Navigator = (*OffsetNavigator)(nil)
	_ Navigator = (*RangeNavigator)(nil)
	_ Navigator = (*CursorNavigator)(nil)
)
