package pagekit

import (
	"context"
	"net/url"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func testConfig(maxPerPage int) Config {
	cfg := DefaultConfig()
	cfg.MaxPerPage = maxPerPage

	return cfg
}

func query(values string) Values {
	q, err := url.ParseQuery(values)
	if err != nil {
		panic(err)
	}

	return Values{Query: q}
}

func Test_OffsetPaginator_CreateRequest(t *testing.T) {
	tests := []struct {
		name        string
		cfg         Config
		query       string
		wantPage    int
		wantPerPage int
		wantErr     error
	}{
		{"defaults", testConfig(100), "", 1, 10, nil},
		{"explicit", testConfig(100), "page=3&per_page=25", 3, 25, nil},
		{"page below one is raised", testConfig(100), "page=0", 1, 10, nil},
		{"negative page is raised", testConfig(100), "page=-4", 1, 10, nil},
		{"per page clamped", testConfig(100), "per_page=1000", 1, 100, nil},
		{"locked per page", testConfig(MaxPerPageLocked), "per_page=50", 1, 10, nil},
		{"page not an integer", testConfig(100), "page=two", 0, 0, ErrMalformedRequest},
		{"offset past max int", testConfig(100), "page=9223372036854775807&per_page=20", 0, 0, ErrMalformedRequest},
		{"last page before overflow", testConfig(100), "page=922337203685477581&per_page=10", 922337203685477581, 10, nil},
		{"per page not an integer", testConfig(100), "per_page=lots", 0, 0, ErrMalformedRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewOffsetPaginator[tUser](tt.cfg)
			require.NoError(t, err)

			req, err := p.CreateRequest(query(tt.query))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantPage, req.Page())
			assert.Equal(t, tt.wantPerPage, req.PerPage())
		})
	}
}

func Test_NewOffsetPaginator_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DefaultPerPage = 0

	_, err := NewOffsetPaginator[tUser](cfg)
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewOffsetPaginator[tUser](DefaultConfig(), WithTotalMode(TotalMode(42)))
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func Test_OffsetPaginator_Paginate(t *testing.T) {
	tests := []struct {
		name      string
		page      int
		wantIDs   []int64
		wantMore  bool
		wantPrev  bool
		wantPages int
	}{
		{"first page", 1, []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, true, false, 3},
		{"second page", 2, []int64{11, 12, 13, 14, 15, 16, 17, 18, 19, 20}, true, true, 3},
		{"last page is short", 3, []int64{21, 22, 23, 24, 25}, false, true, 3},
		{"past the end", 4, []int64{}, false, true, 3},
	}

	p, err := NewOffsetPaginator[tUser](testConfig(100), WithTotalMode(TotalEager))
	require.NoError(t, err)
	q := NewMemoryQuery(newUsers(25), tUserGetters, OrderBy{Column: "id", Direction: DirectionASC})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := NewOffsetRequest(tt.page, 10)
			require.NoError(t, err)

			page, err := p.Paginate(context.Background(), q, req)
			require.NoError(t, err)

			assert.Equal(t, tt.wantIDs, userIDs(page.Items()))
			assert.Equal(t, 10, page.PerPage())

			more, err := page.HasMore()
			require.NoError(t, err)
			assert.Equal(t, tt.wantMore, more)
			assert.Equal(t, tt.wantPrev, page.HasPrevious())

			pages, ok, err := page.TotalPages()
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, tt.wantPages, pages)
		})
	}
}

func Test_OffsetPaginator_OverFetchWithoutTotal(t *testing.T) {
	p, err := NewOffsetPaginator[tUser](testConfig(100))
	require.NoError(t, err)

	// Exactly one full page: the lookahead row is missing, so no next page.
	q := NewMemoryQuery(newUsers(10), tUserGetters, OrderBy{Column: "id", Direction: DirectionASC})
	req, _ := NewOffsetRequest(1, 10)

	page, err := p.Paginate(context.Background(), q, req)
	require.NoError(t, err)
	assert.Equal(t, 10, page.Count())
	more, err := page.HasMore()
	require.NoError(t, err)
	assert.False(t, more)

	_, known, err := page.Total()
	require.NoError(t, err)
	assert.False(t, known, "no count query without a total mode")

	// One more row: it proves a next page but is never exposed.
	q = NewMemoryQuery(newUsers(11), tUserGetters, OrderBy{Column: "id", Direction: DirectionASC})
	page, err = p.Paginate(context.Background(), q, req)
	require.NoError(t, err)
	assert.Equal(t, 10, page.Count())
	assert.NotContains(t, userIDs(page.Items()), int64(11))
	more, err = page.HasMore()
	require.NoError(t, err)
	assert.True(t, more)
}

func Test_OffsetPaginator_CapsPerPage(t *testing.T) {
	p, err := NewOffsetPaginator[tUser](testConfig(20))
	require.NoError(t, err)

	req, _ := NewOffsetRequest(2, 500)
	page, err := p.Paginate(context.Background(), NewMemoryQuery(newUsers(100), tUserGetters, OrderBy{Column: "id", Direction: DirectionASC}), req)
	require.NoError(t, err)
	assert.Equal(t, 20, page.PerPage())
	assert.Equal(t, int64(21), page.Items()[0].ID)
}

func Test_OffsetPaginator_LazyTotal(t *testing.T) {
	p, err := NewOffsetPaginator[tUser](testConfig(100), WithTotalMode(TotalLazy))
	require.NoError(t, err)

	_, db, dbMock, err := newGORMMySQLMock()
	require.NoError(t, err)

	dbMock.ExpectQuery("^SELECT \\* FROM `users` ORDER BY id ASC LIMIT 11 OFFSET 10$").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(11, "k"))

	q := NewGormQuery[tUser](db.Table("users"), OrderBy{Column: "id", Direction: DirectionASC})
	req, _ := NewOffsetRequest(2, 10)

	page, err := p.Paginate(context.Background(), q, req)
	require.NoError(t, err)
	require.NoError(t, dbMock.ExpectationsWereMet(), "count is deferred")

	dbMock.ExpectQuery("^SELECT count\\(\\*\\) FROM `users`$").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

	for range 2 {
		total, ok, err := page.Total()
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, int64(11), total)
	}
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func Test_BoundOffsetPaginator_PaginateHTTP(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	p, err := NewOffsetPaginator[tUser](testConfig(100), WithLogger(zap.New(core)))
	require.NoError(t, err)

	bound := p.Bind(NewMemoryQuery(newUsers(25), tUserGetters, OrderBy{Column: "id", Direction: DirectionASC}))

	page, err := bound.PaginateHTTP(context.Background(), query("page=2&per_page=5"))
	require.NoError(t, err)
	assert.Equal(t, []int64{6, 7, 8, 9, 10}, userIDs(page.Items()))

	entries := logs.FilterMessage("paginating by offset").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(5), entries[0].ContextMap()["offset"])

	_, err = bound.PaginateHTTP(context.Background(), query("page=x"))
	require.ErrorIs(t, err, ErrMalformedRequest)
}
