package pagekit

import (
	"fmt"
	"math"
)

// Strategy names a pagination strategy.
type Strategy string

const (
	StrategyOffset Strategy = "offset"
	StrategyCursor Strategy = "cursor"
	StrategyRange  Strategy = "range"
)

// Request is a parsed, validated page request.
type Request interface {
	PerPage() int
	Strategy() Strategy
}

// OffsetRequest asks for a page by number.
type OffsetRequest struct {
	page    int
	perPage int
}

func NewOffsetRequest(page, perPage int) (OffsetRequest, error) {
	if page < 1 {
		return OffsetRequest{}, fmt.Errorf("%w: page must be at least 1, got %d", ErrInvalidArgument, page)
	}
	if perPage < 1 {
		return OffsetRequest{}, fmt.Errorf("%w: per page must be at least 1, got %d", ErrInvalidArgument, perPage)
	}
	if offsetOverflows(page, perPage) {
		return OffsetRequest{}, fmt.Errorf("%w: page %d with per page %d is out of range", ErrInvalidArgument, page, perPage)
	}

	return OffsetRequest{page: page, perPage: perPage}, nil
}

func (r OffsetRequest) Page() int          { return r.page }
func (r OffsetRequest) PerPage() int       { return r.perPage }
func (r OffsetRequest) Strategy() Strategy { return StrategyOffset }

// offsetOverflows reports whether (page-1)*perPage does not fit an int.
func offsetOverflows(page, perPage int) bool {
	return page-1 > math.MaxInt/perPage
}

// Offset returns (page-1)*perPage.
func (r OffsetRequest) Offset() int {
	return (r.page - 1) * r.perPage
}

// Limit returns the page size.
func (r OffsetRequest) Limit() int {
	return r.perPage
}

// CursorDirection tells on which side of the position a cursor page lies.
type CursorDirection int

const (
	Forward CursorDirection = iota
	Backward
)

func (d CursorDirection) String() string {
	if d == Backward {
		return "backward"
	}

	return "forward"
}

// CursorRequest asks for the page after (or before) a position. A nil position
// is the first page.
type CursorRequest struct {
	perPage   int
	position  Position
	direction CursorDirection
	token     string
}

func NewCursorRequest(perPage int, position Position, direction CursorDirection) (CursorRequest, error) {
	if perPage < 1 {
		return CursorRequest{}, fmt.Errorf("%w: per page must be at least 1, got %d", ErrInvalidArgument, perPage)
	}
	if direction != Forward && direction != Backward {
		return CursorRequest{}, fmt.Errorf("%w: unknown cursor direction %d", ErrInvalidArgument, direction)
	}
	if position.IsEmpty() {
		position = nil
	}

	return CursorRequest{perPage: perPage, position: position.Clone(), direction: direction}, nil
}

func (r CursorRequest) PerPage() int               { return r.perPage }
func (r CursorRequest) Strategy() Strategy         { return StrategyCursor }
func (r CursorRequest) Position() Position         { return r.position.Clone() }
func (r CursorRequest) Direction() CursorDirection { return r.direction }

// Token returns the raw cursor token the request was parsed from, empty for
// requests built in code.
func (r CursorRequest) Token() string { return r.token }

// IsFirstPage returns true if the request carries no position.
func (r CursorRequest) IsFirstPage() bool {
	return r.position == nil
}

func (r CursorRequest) withToken(token string) CursorRequest {
	r.token = token

	return r
}

// RangeRequest asks for rows start..end, both 0-based and inclusive.
type RangeRequest struct {
	start int
	end   int
}

func NewRangeRequest(start, end int) (RangeRequest, error) {
	if start < 0 {
		return RangeRequest{}, fmt.Errorf("%w: range start must not be negative, got %d", ErrInvalidArgument, start)
	}
	if end < start {
		return RangeRequest{}, fmt.Errorf("%w: range end %d is before start %d", ErrInvalidArgument, end, start)
	}

	return RangeRequest{start: start, end: end}, nil
}

// NewRangeRequestFromOffset converts an offset/limit pair.
func NewRangeRequestFromOffset(offset, limit int) (RangeRequest, error) {
	if limit < 1 {
		return RangeRequest{}, fmt.Errorf("%w: limit must be at least 1, got %d", ErrInvalidArgument, limit)
	}

	if offset < 0 {
		return NewRangeRequest(offset, offset)
	}

	end := math.MaxInt
	if limit-1 <= math.MaxInt-offset {
		end = offset + limit - 1
	}

	return NewRangeRequest(offset, end)
}

func (r RangeRequest) Start() int         { return r.start }
func (r RangeRequest) End() int           { return r.end }
func (r RangeRequest) Strategy() Strategy { return StrategyRange }
func (r RangeRequest) Offset() int        { return r.start }
func (r RangeRequest) Limit() int         { return r.PerPage() }

// PerPage returns end-start+1, saturated at math.MaxInt.
func (r RangeRequest) PerPage() int {
	if r.end-r.start == math.MaxInt {
		return math.MaxInt
	}

	return r.end - r.start + 1
}

// truncate caps the span at limit rows. end-start cannot overflow since
// 0 <= start <= end, and start+limit-1 fits when the span is wider than limit.
func (r RangeRequest) truncate(limit int) RangeRequest {
	if r.end-r.start >= limit {
		r.end = r.start + limit - 1
	}

	return r
}

// requestMismatch reports a request of the wrong strategy.
func requestMismatch(component string, want Strategy, got Request) error {
	gotName := "nil"
	if got != nil {
		gotName = fmt.Sprintf("%s (%T)", got.Strategy(), got)
	}

	return fmt.Errorf("%w: %s expects a %s request, got %s", ErrRequestMismatch, component, want, gotName)
}

var (
	_ Request = OffsetRequest{}
	_ Request = CursorRequest{}
	_ Request = RangeRequest{}
)
