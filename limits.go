package pagekit

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	DefaultPerPage = 10
	// MaxPerPageLocked disables client control over the page size: the
	// configured default is always used and the request value is ignored.
	MaxPerPageLocked = 0
)

// ClampPerPage bounds limit to [1, maxPerPage].
func ClampPerPage(limit int, maxPerPage int) int {
	return min(max(limit, 1), maxPerPage)
}

// ResolvePerPage applies the page size policy to a raw request value.
//
//   - maxPerPage == MaxPerPageLocked: defaultPerPage is returned, raw is ignored.
//   - raw is empty: defaultPerPage.
//   - otherwise raw must be an integer and is clamped to [1, maxPerPage].
func ResolvePerPage(raw string, defaultPerPage, maxPerPage int) (int, error) {
	if maxPerPage == MaxPerPageLocked {
		return defaultPerPage, nil
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return defaultPerPage, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: per page value '%s' is not an integer", ErrMalformedRequest, raw)
	}

	return ClampPerPage(limit, maxPerPage), nil
}

// SpanLimit returns the widest window a single request may ask for.
func SpanLimit(defaultPerPage, maxPerPage int) int {
	if maxPerPage == MaxPerPageLocked {
		return defaultPerPage
	}

	return maxPerPage
}

// lookaheadLimit is the dataset limit that detects a following page.
func lookaheadLimit(perPage int) int {
	return perPage + 1
}

// trimLookahead drops the extra row fetched by lookaheadLimit and reports
// whether it was there.
func trimLookahead[T any](rows []T, perPage int) ([]T, bool) {
	if len(rows) > perPage {
		return rows[:perPage], true
	}

	return rows, false
}
