package pagekit

import (
	"cmp"
	"context"
	"fmt"
	"reflect"
	"slices"
	"time"
)

// MemoryQuery is a Query over rows already held in memory. Column values are
// read with Getters, so every ordering and keyset column needs a getter.
type MemoryQuery[T any] struct {
	rows    []T
	getters Getters[T]
	sort    Orderings
	limit   int
	offset  int
	keyset  Keyset
}

// NewMemoryQuery returns a query over rows. The slice is not modified.
func NewMemoryQuery[T any](rows []T, getters Getters[T], orderBy ...OrderBy) *MemoryQuery[T] {
	q := &MemoryQuery[T]{
		rows:    rows,
		getters: getters,
		limit:   NoLimit,
	}

	for _, o := range orderBy {
		q.SetOrder(o.Column, o.Direction)
	}

	return q
}

func (q *MemoryQuery[T]) SetOrder(column string, direction Direction) {
	q.sort = applyOrderBy(q.sort, OrderBy{Column: column, Direction: direction})
}

func (q *MemoryQuery[T]) ResetOrder() {
	q.sort = nil
}

func (q *MemoryQuery[T]) Orders() Orderings {
	return slices.Clone(q.sort)
}

func (q *MemoryQuery[T]) SetLimit(n int) {
	q.limit = n
}

func (q *MemoryQuery[T]) SetOffset(n int) {
	q.offset = n
}

func (q *MemoryQuery[T]) SetKeyset(keyset Keyset) {
	q.keyset = keyset
}

func (q *MemoryQuery[T]) Execute(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := q.keyset.validate(q.sort); err != nil {
		return nil, fmt.Errorf("cannot build query: %w", err)
	}

	rows := make([]T, 0, len(q.rows))
	for _, row := range q.rows {
		ok, err := q.matches(row)
		if err != nil {
			return nil, err
		}
		if ok {
			rows = append(rows, row)
		}
	}

	var sortErr error
	slices.SortStableFunc(rows, func(a, b T) int {
		for _, orderBy := range q.sort {
			c, err := q.compareColumn(a, b, orderBy.Column)
			if err != nil {
				sortErr = err
				return 0
			}
			if c != 0 {
				return c * q.sign(orderBy.Direction)
			}
		}

		return 0
	})
	if sortErr != nil {
		return nil, sortErr
	}

	rows = rows[min(max(q.offset, 0), len(rows)):]
	if q.limit != NoLimit {
		rows = rows[:min(max(q.limit, 0), len(rows))]
	}

	return rows, nil
}

func (q *MemoryQuery[T]) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	return int64(len(q.rows)), nil
}

func (q *MemoryQuery[T]) Clone() Query[T] {
	return &MemoryQuery[T]{
		rows:    q.rows,
		getters: q.getters,
		sort:    slices.Clone(q.sort),
		limit:   q.limit,
		offset:  q.offset,
		keyset:  slices.Clone(q.keyset),
	}
}

func (q *MemoryQuery[T]) sign(direction Direction) int {
	if direction == DirectionDESC {
		return -1
	}

	return 1
}

func (q *MemoryQuery[T]) value(row T, column string) (any, error) {
	getter, ok := q.getters[column]
	if !ok {
		return nil, fmt.Errorf("%w: no getter for column '%s'", ErrMissingGetter, column)
	}

	return getter(row), nil
}

func (q *MemoryQuery[T]) compareColumn(a, b T, column string) (int, error) {
	av, err := q.value(a, column)
	if err != nil {
		return 0, err
	}
	bv, err := q.value(b, column)
	if err != nil {
		return 0, err
	}

	return compareValues(av, bv)
}

// matches evaluates the expanded keyset condition against row.
func (q *MemoryQuery[T]) matches(row T) (bool, error) {
	if q.keyset.IsEmpty() {
		return true, nil
	}

	for _, element := range q.keyset {
		v, err := q.value(row, element.Column)
		if err != nil {
			return false, err
		}

		c, err := compareValues(v, element.Value)
		if err != nil {
			return false, err
		}

		if (element.Operator == OperatorGT && c > 0) || (element.Operator == OperatorLT && c < 0) {
			return true, nil
		}
		if c != 0 {
			return false, nil
		}
		// Equal on this column, the next one decides.
	}

	return false, nil
}

// compareValues orders two scalar column values. Textual timestamps compare
// with time.Time values, since positions carry times as RFC 3339 strings.
func compareValues(a, b any) (int, error) {
	if at, bt, ok := asTimes(a, b); ok {
		return at.Compare(bt), nil
	}

	if ai, aok := asInt64(a); aok {
		if bi, bok := asInt64(b); bok {
			return cmp.Compare(ai, bi), nil
		}
	}

	if af, aok := asFloat64(a); aok {
		if bf, bok := asFloat64(b); bok {
			return cmp.Compare(af, bf), nil
		}
	}

	switch at := a.(type) {
	case string:
		if bt, ok := b.(string); ok {
			return cmp.Compare(at, bt), nil
		}
	case bool:
		if bt, ok := b.(bool); ok {
			switch {
			case at == bt:
				return 0, nil
			case !at:
				return -1, nil
			default:
				return 1, nil
			}
		}
	}

	return 0, fmt.Errorf("cannot compare %T with %T", a, b)
}

func asTimes(a, b any) (time.Time, time.Time, bool) {
	at, aIsTime := a.(time.Time)
	bt, bIsTime := b.(time.Time)
	if !aIsTime && !bIsTime {
		return time.Time{}, time.Time{}, false
	}

	if !aIsTime {
		parsed, ok := sqlValue(a).(time.Time)
		if !ok {
			return time.Time{}, time.Time{}, false
		}
		at = parsed
	}
	if !bIsTime {
		parsed, ok := sqlValue(b).(time.Time)
		if !ok {
			return time.Time{}, time.Time{}, false
		}
		bt = parsed
	}

	return at, bt, true
}

func asInt64(v any) (int64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > 1<<63-1 {
			return 0, false
		}

		return int64(u), true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		if i, ok := asInt64(v); ok {
			return float64(i), true
		}

		return 0, false
	}
}

var _ Query[struct{}] = (*MemoryQuery[struct{}])(nil)
