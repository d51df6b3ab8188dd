package pagekit

import (
	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type tUser struct {
	ID   int64
	Name string
}

var tUserGetters = Getters[tUser]{
	"id":   func(u tUser) any { return u.ID },
	"name": func(u tUser) any { return u.Name },
}

// newUsers returns users with ids 1..n.
func newUsers(n int) []tUser {
	ret := make([]tUser, 0, n)
	for i := 1; i <= n; i++ {
		ret = append(ret, tUser{ID: int64(i), Name: string(rune('a' + (i-1)%26))})
	}

	return ret
}

func userIDs(users []tUser) []int64 {
	ret := make([]int64, 0, len(users))
	for _, u := range users {
		ret = append(ret, u.ID)
	}

	return ret
}

func newGORMMySQLMock() (string, *gorm.DB, sqlmock.Sqlmock, error) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		return "", nil, nil, err
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      mockDB,
		SkipInitializeWithVersion: true,
	})

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Discard})
	if err != nil {
		return "", nil, nil, err
	}

	return "mysql", db, mock, nil
}

func newGORMPostgresMock() (string, *gorm.DB, sqlmock.Sqlmock, error) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		return "", nil, nil, err
	}

	dialector := postgres.New(postgres.Config{
		Conn: mockDB,
	})

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Discard})
	if err != nil {
		return "", nil, nil, err
	}

	return "postgres", db, mock, nil
}
