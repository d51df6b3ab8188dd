// Package ginpager adapts pagekit to gin handlers.
package ginpager

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/Alp4ka/pagekit"
)

type contextReader struct {
	c *gin.Context
}

// FromContext reads pagination parameters from a gin request.
func FromContext(c *gin.Context) pagekit.RequestReader {
	return contextReader{c: c}
}

func (r contextReader) QueryParams() url.Values {
	if r.c == nil || r.c.Request == nil {
		return url.Values{}
	}

	return r.c.Request.URL.Query()
}

func (r contextReader) HeaderLine(name string) string {
	if r.c == nil || r.c.Request == nil {
		return ""
	}

	return pagekit.FromHTTPRequest(r.c.Request).HeaderLine(name)
}

// BaseURL returns the request URL links are built from. Without a request it
// is the empty relative URL.
func BaseURL(c *gin.Context) *url.URL {
	if c == nil || c.Request == nil {
		return &url.URL{}
	}

	var u url.URL
	if c.Request.URL != nil {
		u = *c.Request.URL
	}
	if u.Host == "" {
		u.Host = c.Request.Host
	}
	if u.Scheme == "" {
		u.Scheme = "http"
		if c.Request.TLS != nil {
			u.Scheme = "https"
		}
	}

	return &u
}

// WriteHeaders sets the pagination headers and status on c.
func WriteHeaders(c *gin.Context, headers pagekit.ResponseHeaders) {
	for name, values := range headers.Header {
		for _, v := range values {
			c.Writer.Header().Add(name, v)
		}
	}

	c.Status(headers.Status)
}

// StatusFor maps pagination errors to HTTP statuses: client mistakes are 400,
// everything else 500.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, pagekit.ErrMalformedRequest),
		errors.Is(err, pagekit.ErrMalformedCursor),
		errors.Is(err, pagekit.ErrTamperedCursor):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// AbortWithError aborts c with the status of err and a JSON error body.
func AbortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(StatusFor(err), gin.H{"error": err.Error()})
}
