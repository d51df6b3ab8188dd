package pagekit

import (
	"context"
	"fmt"
	"slices"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormQuery adapts a *gorm.DB to Query. The wrapped statement keeps its
// filters, joins and selects; GormQuery owns ORDER BY, LIMIT, OFFSET and the
// keyset condition.
type GormQuery[T any] struct {
	db        *gorm.DB
	sort      Orderings
	limit     int
	offset    int
	keyset    Keyset
	rowValues bool
}

// NewGormQuery wraps db. The statement is moved into its own session so that it
// can be executed several times (page, count and lookbehind queries).
//
// Usage:
//
//	q := pagekit.NewGormQuery[User](db.Model(&User{}).Where("active"),
//		pagekit.OrderBy{Column: "created_at", Direction: pagekit.DirectionDESC},
//		pagekit.OrderBy{Column: "id", Direction: pagekit.DirectionDESC},
//	)
func NewGormQuery[T any](db *gorm.DB, orderBy ...OrderBy) *GormQuery[T] {
	q := &GormQuery[T]{
		db:    db.Session(&gorm.Session{}),
		limit: NoLimit,
	}

	for _, o := range orderBy {
		q.SetOrder(o.Column, o.Direction)
	}

	return q
}

// WithRowValues renders keysets as native row-value comparisons
// "(c1, c2) > (?, ?)" when every ordering column shares one direction. Mixed
// directions still fall back to the OR/AND expansion.
func (q *GormQuery[T]) WithRowValues() *GormQuery[T] {
	q.rowValues = true

	return q
}

func (q *GormQuery[T]) SetOrder(column string, direction Direction) {
	q.sort = applyOrderBy(q.sort, OrderBy{Column: column, Direction: direction})
}

func (q *GormQuery[T]) ResetOrder() {
	q.sort = nil
}

func (q *GormQuery[T]) Orders() Orderings {
	return slices.Clone(q.sort)
}

func (q *GormQuery[T]) SetLimit(n int) {
	q.limit = n
}

func (q *GormQuery[T]) SetOffset(n int) {
	q.offset = n
}

func (q *GormQuery[T]) SetKeyset(keyset Keyset) {
	q.keyset = keyset
}

// Statement returns the gorm statement with ordering, keyset, limit and offset
// applied, ready for Find or Scan.
func (q *GormQuery[T]) Statement(ctx context.Context) (*gorm.DB, error) {
	if len(q.sort) > 0 {
		if err := q.sort.validate(); err != nil {
			return nil, fmt.Errorf("cannot build query: %w", err)
		}
	}

	if err := q.keyset.validate(q.sort); err != nil {
		return nil, fmt.Errorf("cannot build query: %w", err)
	}

	db := q.db.WithContext(ctx)
	if exp := q.keysetExpression(); exp != nil {
		db = db.Clauses(exp)
	}

	db = q.sort.Apply(db)
	if q.limit != NoLimit {
		db = db.Limit(q.limit)
	}
	if q.offset > 0 {
		db = db.Offset(q.offset)
	}

	return db, nil
}

func (q *GormQuery[T]) keysetExpression() clause.Expression {
	if q.keyset.IsEmpty() {
		return nil
	}

	if q.rowValues {
		if exp, ok := rowValueExpression(q.keyset); ok {
			return exp
		}
	}

	return q.keyset.toDNF().expression()
}

func (q *GormQuery[T]) Execute(ctx context.Context) ([]T, error) {
	db, err := q.Statement(ctx)
	if err != nil {
		return nil, err
	}

	var rows []T
	if err = db.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("cannot fetch page: %w", err)
	}

	return rows, nil
}

func (q *GormQuery[T]) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := q.db.WithContext(ctx).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("cannot count rows: %w", err)
	}

	return total, nil
}

func (q *GormQuery[T]) Clone() Query[T] {
	return &GormQuery[T]{
		db:        q.db,
		sort:      slices.Clone(q.sort),
		limit:     q.limit,
		offset:    q.offset,
		keyset:    slices.Clone(q.keyset),
		rowValues: q.rowValues,
	}
}

var _ Query[struct{}] = (*GormQuery[struct{}])(nil)
