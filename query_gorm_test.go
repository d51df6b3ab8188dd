package pagekit

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var _sqlMockFnList = []func() (string, *gorm.DB, sqlmock.Sqlmock, error){
	newGORMMySQLMock,
	newGORMPostgresMock,
}

func Test_GormQuery_Execute(t *testing.T) {
	tests := []struct {
		name          string
		orderings     Orderings
		keyset        Keyset
		limit         int
		offset        int
		rowValues     bool
		expectedQuery string
		expectedArgs  []driver.Value
	}{
		{
			name:          "limit and offset",
			orderings:     Orderings{{Column: "id", Direction: DirectionASC}},
			limit:         4,
			offset:        5,
			expectedQuery: "^SELECT \\* FROM [`'\"]users[`'\"] WHERE name = 'lol' ORDER BY id ASC LIMIT 4 OFFSET 5$",
		},
		{
			name:          "no limit",
			orderings:     Orderings{{Column: "id", Direction: DirectionASC}},
			limit:         NoLimit,
			expectedQuery: "^SELECT \\* FROM [`'\"]users[`'\"] WHERE name = 'lol' ORDER BY id ASC$",
		},
		{
			name:          "single column keyset",
			orderings:     Orderings{{Column: "id", Direction: DirectionASC}},
			keyset:        Keyset{{Column: "id", Value: 5, Operator: OperatorGT}},
			limit:         4,
			expectedQuery: "^SELECT \\* FROM [`'\"]users[`'\"] WHERE name = 'lol' AND id > (?:\\$\\d|\\?) ORDER BY id ASC LIMIT 4$",
			expectedArgs:  []driver.Value{5},
		},
		{
			name: "multi column keyset",
			orderings: Orderings{
				{Column: "id", Direction: DirectionASC},
				{Column: "created_at", Direction: DirectionASC},
			},
			keyset: Keyset{
				{Column: "id", Value: 10, Operator: OperatorGT},
				{Column: "created_at", Value: "2023-01-01", Operator: OperatorGT},
			},
			limit:         6,
			expectedQuery: "^SELECT \\* FROM [`'\"]users[`'\"] WHERE name = 'lol' AND \\(id > (?:\\$\\d|\\?) OR \\(id = (?:\\$\\d|\\?) AND created_at > (?:\\$\\d|\\?)\\)\\) ORDER BY id ASC, created_at ASC LIMIT 6$",
			expectedArgs:  []driver.Value{10, 10, "2023-01-01"},
		},
		{
			name:          "reversed keyset",
			orderings:     Orderings{{Column: "id", Direction: DirectionDESC}},
			keyset:        Keyset{{Column: "id", Value: 5, Operator: OperatorLT}},
			limit:         4,
			expectedQuery: "^SELECT \\* FROM [`'\"]users[`'\"] WHERE name = 'lol' AND id < (?:\\$\\d|\\?) ORDER BY id DESC LIMIT 4$",
			expectedArgs:  []driver.Value{5},
		},
		{
			name: "row values",
			orderings: Orderings{
				{Column: "name", Direction: DirectionASC},
				{Column: "id", Direction: DirectionASC},
			},
			keyset: Keyset{
				{Column: "name", Value: "bob", Operator: OperatorGT},
				{Column: "id", Value: 3, Operator: OperatorGT},
			},
			limit:         4,
			rowValues:     true,
			expectedQuery: "^SELECT \\* FROM [`'\"]users[`'\"] WHERE name = 'lol' AND \\(name, id\\) > \\((?:\\$\\d|\\?), (?:\\$\\d|\\?)\\) ORDER BY name ASC, id ASC LIMIT 4$",
			expectedArgs:  []driver.Value{"bob", 3},
		},
		{
			name: "row values fall back for mixed directions",
			orderings: Orderings{
				{Column: "name", Direction: DirectionDESC},
				{Column: "id", Direction: DirectionASC},
			},
			keyset: Keyset{
				{Column: "name", Value: "bob", Operator: OperatorLT},
				{Column: "id", Value: 3, Operator: OperatorGT},
			},
			limit:         4,
			rowValues:     true,
			expectedQuery: "^SELECT \\* FROM [`'\"]users[`'\"] WHERE name = 'lol' AND \\(name < (?:\\$\\d|\\?) OR \\(name = (?:\\$\\d|\\?) AND id > (?:\\$\\d|\\?)\\)\\) ORDER BY name DESC, id ASC LIMIT 4$",
			expectedArgs:  []driver.Value{"bob", "bob", 3},
		},
	}

	for _, sqlMockFn := range _sqlMockFnList {
		for _, tt := range tests {
			dialect, db, dbMock, err := sqlMockFn()
			t.Run(fmt.Sprintf("%s %s", dialect, tt.name), func(t *testing.T) {
				require.NoError(t, err)

				expectation := dbMock.ExpectQuery(tt.expectedQuery)
				if len(tt.expectedArgs) > 0 {
					expectation = expectation.WithArgs(tt.expectedArgs...)
				}
				expectation.WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(6, "John Doe"))

				q := NewGormQuery[tUser](db.Table("users").Where("name = 'lol'"), tt.orderings...)
				if tt.rowValues {
					q = q.WithRowValues()
				}
				q.SetKeyset(tt.keyset)
				q.SetLimit(tt.limit)
				q.SetOffset(tt.offset)

				rows, err := q.Execute(context.Background())
				require.NoError(t, err)
				assert.Equal(t, []tUser{{ID: 6, Name: "John Doe"}}, rows)

				assert.NoError(t, dbMock.ExpectationsWereMet())
			})
		}
	}
}

func Test_GormQuery_Count(t *testing.T) {
	for _, sqlMockFn := range _sqlMockFnList {
		dialect, db, dbMock, err := sqlMockFn()
		t.Run(dialect, func(t *testing.T) {
			require.NoError(t, err)

			dbMock.ExpectQuery("^SELECT count\\(\\*\\) FROM [`'\"]users[`'\"] WHERE name = 'lol'$").
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))

			q := NewGormQuery[tUser](db.Table("users").Where("name = 'lol'"),
				OrderBy{Column: "id", Direction: DirectionASC},
			)
			q.SetLimit(11)
			q.SetOffset(10)

			total, err := q.Count(context.Background())
			require.NoError(t, err)
			assert.Equal(t, int64(25), total)

			assert.NoError(t, dbMock.ExpectationsWereMet())
		})
	}
}

func Test_GormQuery_StatementIsReusable(t *testing.T) {
	_, db, dbMock, err := newGORMMySQLMock()
	require.NoError(t, err)

	dbMock.ExpectQuery("^SELECT \\* FROM `users` WHERE name = 'lol' ORDER BY id ASC LIMIT 2$").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))
	dbMock.ExpectQuery("^SELECT \\* FROM `users` WHERE name = 'lol' AND id > \\? ORDER BY id ASC LIMIT 3$").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	q := NewGormQuery[tUser](db.Table("users").Where("name = 'lol'"), OrderBy{Column: "id", Direction: DirectionASC})

	first := q.Clone()
	first.SetLimit(2)
	_, err = first.Execute(context.Background())
	require.NoError(t, err)

	second := q.Clone()
	second.SetLimit(3)
	second.SetKeyset(Keyset{{Column: "id", Value: 1, Operator: OperatorGT}})
	_, err = second.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, NoLimit, q.limit, "clones never touch the original")
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func Test_GormQuery_InvalidKeyset(t *testing.T) {
	_, db, dbMock, err := newGORMMySQLMock()
	require.NoError(t, err)

	q := NewGormQuery[tUser](db.Table("users"), OrderBy{Column: "id", Direction: DirectionASC})
	q.SetKeyset(Keyset{{Column: "name", Value: "x", Operator: OperatorGT}})

	_, err = q.Execute(context.Background())
	require.Error(t, err)
	assert.NoError(t, dbMock.ExpectationsWereMet(), "nothing is sent to the database")
}

func Test_GormQuery_ExecuteError(t *testing.T) {
	_, db, dbMock, err := newGORMMySQLMock()
	require.NoError(t, err)

	boom := errors.New("connection reset")
	dbMock.ExpectQuery("^SELECT").WillReturnError(boom)

	q := NewGormQuery[tUser](db.Table("users"), OrderBy{Column: "id", Direction: DirectionASC})
	_, err = q.Execute(context.Background())
	require.ErrorIs(t, err, boom)
}

func Test_GormQuery_SetOrderMovesColumnToEnd(t *testing.T) {
	_, db, _, err := newGORMMySQLMock()
	require.NoError(t, err)

	q := NewGormQuery[tUser](db.Table("users"),
		OrderBy{Column: "id", Direction: DirectionASC},
		OrderBy{Column: "name", Direction: DirectionASC},
	)
	q.SetOrder("id", DirectionDESC)

	assert.Equal(t, Orderings{
		{Column: "name", Direction: DirectionASC},
		{Column: "id", Direction: DirectionDESC},
	}, q.Orders())

	q.ResetOrder()
	assert.Empty(t, q.Orders())
}
