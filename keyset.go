package pagekit

import (
	"database/sql/driver"
	"fmt"

	"github.com/samber/lo"
)

// KeysetElement is a triple (c, v, o): column c compared with value v by
// operator o.
type KeysetElement struct {
	Column   string
	Value    any
	Operator Operator
}

func (e KeysetElement) equality() conjunct {
	return conjunct{
		Column:   e.Column,
		Value:    e.Value,
		Operator: operatorEq,
	}
}

// Keyset is the compressed form of a keyset condition
//
//	[(C1, O1, V1), (C2, O2, V2)... (Cn, On, Vn)]
//
// which expands into
//
//	(C1 O1 V1) OR (C1 = V1 AND C2 O2 V2) OR ...
//
// The last column of the ordering must be unique, otherwise rows sharing the
// same key are skipped.
type Keyset []KeysetElement

// KeysetAfter builds the condition selecting rows strictly after position in
// the given ordering, or strictly before it when backward is set.
func KeysetAfter(position Position, orderings Orderings, backward bool) (Keyset, error) {
	if position.IsEmpty() {
		return nil, nil
	}

	if err := orderings.validate(); err != nil {
		return nil, err
	}

	ret := make(Keyset, 0, len(orderings))
	for _, orderBy := range orderings {
		value, ok := position.Get(orderBy.Column)
		if !ok {
			return nil, fmt.Errorf("%w: position has no value for ordering column '%s'", ErrMalformedCursor, orderBy.Column)
		}

		op := orderBy.Direction.ForOperator()
		ret = append(ret, KeysetElement{
			Column:   orderBy.Column,
			Value:    value,
			Operator: lo.Ternary(backward, op.Reverse(), op),
		})
	}

	if len(ret) != position.Len() {
		return nil, fmt.Errorf("%w: position columns %v do not match ordering %v", ErrMalformedCursor, position.Columns(), orderings.Columns())
	}

	return ret, nil
}

// IsEmpty returns true if the keyset filters nothing.
func (k Keyset) IsEmpty() bool {
	return len(k) == 0
}

// ToSQL returns the condition as an SQL fragment with "?" placeholders.
//
// Usage:
//
//	where, args := keyset.ToSQL()
//	query := fmt.Sprintf("SELECT * FROM table WHERE %s", where)
func (k Keyset) ToSQL() (string, []driver.Value) {
	if k.IsEmpty() {
		return "TRUE", nil
	}

	return k.toDNF().sql()
}

func (k Keyset) toDNF() dnf {
	if k.IsEmpty() {
		return nil
	}

	ret := make(dnf, 0, len(k))
	for i := range k {
		dj := make(disjunct, 0, i+1)
		dj = append(dj, lo.Map(k[:i], func(item KeysetElement, _ int) conjunct {
			return item.equality()
		})...)
		dj = append(dj, conjunct(k[i]))

		ret = append(ret, dj)
	}

	return ret
}

// validate checks the keyset follows orderings column by column, reversed or
// not as a whole.
func (k Keyset) validate(orderings Orderings) error {
	if k.IsEmpty() {
		return nil
	}

	if len(k) != len(orderings) {
		return fmt.Errorf("keyset column number mismatch")
	}

	for i := range k {
		cond := k[i]
		orderBy := orderings[i]

		if cond.Column != orderBy.Column {
			return fmt.Errorf("unexpected keyset column '%s'", cond.Column)
		}

		if !cond.Operator.Valid() {
			return fmt.Errorf("invalid keyset operator '%s'", cond.Operator)
		}
	}

	forward := k[0].Operator.ForOrdering() == orderings[0].Direction
	for i := range k {
		matches := k[i].Operator.ForOrdering() == orderings[i].Direction
		if matches != forward {
			return fmt.Errorf("unexpected keyset operator '%s'", k[i].Operator)
		}
	}

	return nil
}

// Getters maps ordering columns to functions reading them from a row:
//
//	pagekit.Getters[User]{
//		"id":         func(u User) any { return u.ID },
//		"created_at": func(u User) any { return u.CreatedAt },
//	}
type Getters[T any] map[string]func(T) any

// PositionOf extracts the position of row in orderings.
func PositionOf[T any](row T, orderings Orderings, getters Getters[T]) (Position, error) {
	ret := make(Position, 0, len(orderings))
	for _, orderBy := range orderings {
		getter, ok := getters[orderBy.Column]
		if !ok {
			return nil, fmt.Errorf("%w: no getter for column '%s' met in ordering", ErrMissingGetter, orderBy.Column)
		}

		ret = append(ret, Field{Column: orderBy.Column, Value: getter(row)})
	}

	return ret, nil
}
