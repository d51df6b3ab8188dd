package pagekit

import (
	"fmt"
	"net/url"
	"strings"
)

// Link relation names.
const (
	RelFirst    = "first"
	RelPrevious = "prev"
	RelNext     = "next"
	RelLast     = "last"
)

// Links holds the URIs of neighbouring pages. An empty field means the page is
// unavailable.
type Links struct {
	First    string `json:"first,omitempty"`
	Previous string `json:"prev,omitempty"`
	Next     string `json:"next,omitempty"`
	Last     string `json:"last,omitempty"`
}

// BuildLinks renders every available navigator page with builder.
func BuildLinks(nav Navigator, builder URIBuilder, base *url.URL) (Links, error) {
	if nav == nil || builder == nil {
		return Links{}, fmt.Errorf("%w: navigator and uri builder are required", ErrInvalidArgument)
	}

	var links Links
	targets := []struct {
		get func() (Request, bool)
		dst *string
	}{
		{nav.First, &links.First},
		{nav.Previous, &links.Previous},
		{nav.Next, &links.Next},
		{nav.Last, &links.Last},
	}

	for _, target := range targets {
		req, ok := target.get()
		if !ok {
			continue
		}

		u, err := builder.Build(base, req)
		if err != nil {
			return Links{}, err
		}
		*target.dst = u.String()
	}

	return links, nil
}

// Header renders an RFC 8288 Link header value:
//
//	<https://api/items?page=1>; rel="first", <https://api/items?page=3>; rel="next"
func (l Links) Header() string {
	parts := make([]string, 0, 4)
	for _, link := range []struct{ uri, rel string }{
		{l.First, RelFirst},
		{l.Previous, RelPrevious},
		{l.Next, RelNext},
		{l.Last, RelLast},
	} {
		if link.uri != "" {
			parts = append(parts, fmt.Sprintf(`<%s>; rel="%s"`, link.uri, link.rel))
		}
	}

	return strings.Join(parts, ", ")
}

// IsEmpty returns true if no page is linked.
func (l Links) IsEmpty() bool {
	return l == Links{}
}
