package pagekit

import "net/url"

// View is a read-only snapshot of a page for templates and JSON envelopes.
type View struct {
	Strategy    Strategy `json:"strategy"`
	Links       Links    `json:"links"`
	PerPage     int      `json:"per_page"`
	Count       int      `json:"count"`
	Total       *int64   `json:"total,omitempty"`
	CurrentPage int      `json:"current_page,omitempty"`
	TotalPages  *int     `json:"total_pages,omitempty"`
	Start       *int     `json:"start,omitempty"`
	End         *int     `json:"end,omitempty"`
	HasPrevious bool     `json:"has_previous"`
	HasNext     bool     `json:"has_next"`
}

// TotalKnown returns true if the view carries the dataset size.
func (v View) TotalKnown() bool {
	return v.Total != nil
}

func newView[T any](strategy Strategy, p Pagination[T], nav Navigator, builder URIBuilder, base *url.URL) (View, error) {
	links, err := BuildLinks(nav, builder, base)
	if err != nil {
		return View{}, err
	}

	view := View{
		Strategy: strategy,
		Links:    links,
		PerPage:  p.PerPage(),
		Count:    p.Count(),
	}

	total, ok, err := p.Total()
	if err != nil {
		return View{}, err
	}
	if ok {
		view.Total = &total
	}

	_, view.HasPrevious = nav.Previous()
	_, view.HasNext = nav.Next()

	return view, nil
}

func NewOffsetView[T any](p *OffsetPagination[T], builder URIBuilder, base *url.URL) (View, error) {
	nav, err := NewOffsetNavigator(p)
	if err != nil {
		return View{}, err
	}

	view, err := newView[T](StrategyOffset, p, nav, builder, base)
	if err != nil {
		return View{}, err
	}

	view.CurrentPage = p.CurrentPage()
	if pages, ok, _ := p.TotalPages(); ok {
		view.TotalPages = &pages
	}

	return view, nil
}

func NewCursorView[T any](p *CursorPagination[T], builder URIBuilder, base *url.URL) (View, error) {
	nav, err := NewCursorNavigator(p)
	if err != nil {
		return View{}, err
	}

	return newView[T](StrategyCursor, p, nav, builder, base)
}

// NewRangeView reports Start and End of the rows actually returned, which
// differ from the requested window on the last page.
func NewRangeView[T any](p *RangePagination[T], builder URIBuilder, base *url.URL) (View, error) {
	nav, err := NewRangeNavigator(p)
	if err != nil {
		return View{}, err
	}

	view, err := newView[T](StrategyRange, p, nav, builder, base)
	if err != nil {
		return View{}, err
	}

	if !p.IsEmpty() {
		start := p.Start()
		end := p.Start() + p.Count() - 1
		view.Start, view.End = &start, &end
	}

	return view, nil
}
