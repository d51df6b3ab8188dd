package pagekit

import (
	"net/http"
	"net/url"
	"strconv"
)

// Response header names.
const (
	HeaderLink         = "Link"
	HeaderTotalCount   = "X-Total-Count"
	HeaderContentRange = "Content-Range"
	HeaderAcceptRanges = "Accept-Ranges"
)

// ResponseHeaders is the status and headers describing a page.
type ResponseHeaders struct {
	Status int
	Header http.Header
}

// WriteHeaders copies the headers to w and writes the status line. The body
// must be written afterwards.
func (h ResponseHeaders) WriteHeaders(w http.ResponseWriter) {
	for name, values := range h.Header {
		for _, v := range values {
			w.Header().Add(name, v)
		}
	}

	w.WriteHeader(h.Status)
}

func baseHeaders(links Links, total int64, known bool) http.Header {
	header := http.Header{}
	if !links.IsEmpty() {
		header.Set(HeaderLink, links.Header())
	}
	if known {
		header.Set(HeaderTotalCount, strconv.FormatInt(total, 10))
	}

	return header
}

// OffsetHeaders renders Link and X-Total-Count with status 200.
func OffsetHeaders[T any](p *OffsetPagination[T], builder URIBuilder, base *url.URL) (ResponseHeaders, error) {
	view, err := NewOffsetView(p, builder, base)
	if err != nil {
		return ResponseHeaders{}, err
	}

	return viewHeaders(view), nil
}

// CursorHeaders renders Link and X-Total-Count with status 200.
func CursorHeaders[T any](p *CursorPagination[T], builder URIBuilder, base *url.URL) (ResponseHeaders, error) {
	view, err := NewCursorView(p, builder, base)
	if err != nil {
		return ResponseHeaders{}, err
	}

	return viewHeaders(view), nil
}

func viewHeaders(view View) ResponseHeaders {
	var total int64
	if view.Total != nil {
		total = *view.Total
	}

	return ResponseHeaders{
		Status: http.StatusOK,
		Header: baseHeaders(view.Links, total, view.TotalKnown()),
	}
}

// RangeHeaders renders Link, Content-Range and Accept-Ranges with status 206,
// or 200 when the page is the whole known collection.
func RangeHeaders[T any](p *RangePagination[T], unit string, builder URIBuilder, base *url.URL) (ResponseHeaders, error) {
	view, err := NewRangeView(p, builder, base)
	if err != nil {
		return ResponseHeaders{}, err
	}

	contentRange, err := p.ContentRange(unit)
	if err != nil {
		return ResponseHeaders{}, err
	}

	status, err := p.StatusCode()
	if err != nil {
		return ResponseHeaders{}, err
	}

	headers := viewHeaders(view)
	headers.Status = status
	headers.Header.Set(HeaderContentRange, contentRange)
	headers.Header.Set(HeaderAcceptRanges, unit)

	return headers, nil
}
