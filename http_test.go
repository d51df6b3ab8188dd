package pagekit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_FromHTTPRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/users?page=2&per_page=5", nil)
	r.Header.Add("Range", "items=0-9")
	r.Header.Add("X-Tag", "a")
	r.Header.Add("X-Tag", "b")

	reader := FromHTTPRequest(r)
	assert.Equal(t, "2", reader.QueryParams().Get("page"))
	assert.Equal(t, "items=0-9", reader.HeaderLine("range"))
	assert.Equal(t, "a, b", reader.HeaderLine("X-Tag"))
	assert.Equal(t, "", reader.HeaderLine("X-Missing"))

	empty := FromHTTPRequest(nil)
	assert.Empty(t, empty.QueryParams())
	assert.Equal(t, "", empty.HeaderLine("Range"))
}

func Test_Values(t *testing.T) {
	var v Values
	assert.NotNil(t, v.QueryParams())
	assert.Equal(t, "", v.HeaderLine("Range"))

	v = query("page=4")
	v.Header = http.Header{"Range": {"items=1-2", "items=3-4"}}
	assert.Equal(t, "4", v.QueryParams().Get("page"))
	assert.Equal(t, "items=1-2, items=3-4", v.HeaderLine("Range"))
}
