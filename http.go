package pagekit

import (
	"net/http"
	"net/url"
	"strings"
)

// RequestReader is the part of an HTTP request pagination reads.
type RequestReader interface {
	QueryParams() url.Values
	// HeaderLine returns the comma-joined values of a header, empty when
	// missing.
	HeaderLine(name string) string
}

type httpRequest struct {
	r *http.Request
}

// FromHTTPRequest adapts a *http.Request.
func FromHTTPRequest(r *http.Request) RequestReader {
	return httpRequest{r: r}
}

func (h httpRequest) QueryParams() url.Values {
	if h.r == nil || h.r.URL == nil {
		return url.Values{}
	}

	return h.r.URL.Query()
}

func (h httpRequest) HeaderLine(name string) string {
	if h.r == nil {
		return ""
	}

	return headerLine(h.r.Header, name)
}

// Values is a RequestReader over plain query values and headers, useful when
// the request does not come from net/http.
type Values struct {
	Query  url.Values
	Header http.Header
}

func (v Values) QueryParams() url.Values {
	if v.Query == nil {
		return url.Values{}
	}

	return v.Query
}

func (v Values) HeaderLine(name string) string {
	return headerLine(v.Header, name)
}

func headerLine(h http.Header, name string) string {
	return strings.Join(h.Values(name), ", ")
}

var (
	_ RequestReader = httpRequest{}
	_ RequestReader = Values{}
)
