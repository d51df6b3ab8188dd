package pagekit

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"gorm.io/gorm/clause"
)

type (
	conjunct struct {
		Column   string
		Value    any
		Operator Operator
	}

	disjunct []conjunct

	// dnf is the disjunctive normal form of a keyset condition. Disjuncts are
	// joined by OR, conjuncts inside a disjunct by AND:
	//
	//	(c1 > v1) OR (c1 = v1 AND c2 > v2) OR (c1 = v1 AND c2 = v2 AND c3 > v3)
	//
	// Most engines lack row-value comparison with mixed directions, so this
	// expansion is the portable form of (c1, c2, c3) > (v1, v2, v3).
	dnf []disjunct
)

// expression renders "Column Operator ?" as a gorm expression.
func (c conjunct) expression() clause.Expression {
	sqlClause, arg := c.sql()

	return clause.Expr{
		SQL:  sqlClause,
		Vars: []any{arg},
	}
}

// sql renders "Column Operator ?" and the placeholder value.
func (c conjunct) sql() (string, driver.Value) {
	return fmt.Sprintf("%s %s ?", c.Column, c.Operator), sqlValue(c.Value)
}

// sqlValue turns textual timestamps back into time.Time. Positions travel as
// JSON, so a time column comes back from a cursor token as an RFC 3339 string.
func sqlValue(v any) any {
	parseTime := func(vBytes []byte) any {
		dst := time.Time{}
		if err := dst.UnmarshalText(vBytes); err == nil {
			return dst
		}

		return v
	}

	switch vt := v.(type) {
	case string:
		return parseTime([]byte(vt))
	case []byte:
		return parseTime(vt)
	default:
		return v
	}
}

// expression joins the conjuncts with AND.
func (d disjunct) expression() clause.Expression {
	andExpressions := lo.Map(d, func(c conjunct, _ int) clause.Expression { return c.expression() })

	switch len(andExpressions) {
	case 0:
		return nil
	case 1:
		return andExpressions[0]
	default:
		return clause.And(andExpressions...)
	}
}

// sql renders "(K1 AND K2 AND K3)" with the placeholder values.
func (d disjunct) sql() (string, []driver.Value) {
	if len(d) == 0 {
		return "", nil
	}

	andClauses := make([]string, 0, len(d))
	andValues := make([]driver.Value, 0, len(d))
	for _, c := range d {
		andClause, andValue := c.sql()
		andClauses = append(andClauses, andClause)
		andValues = append(andValues, andValue)
	}

	return fmt.Sprintf("(%s)", strings.Join(andClauses, " AND ")), andValues
}

// expression joins the disjuncts with OR.
func (d dnf) expression() clause.Expression {
	orExpressions := make([]clause.Expression, 0, len(d))
	for _, dj := range d {
		if exp := dj.expression(); exp != nil {
			orExpressions = append(orExpressions, exp)
		}
	}

	switch len(orExpressions) {
	case 0:
		return nil
	case 1:
		return orExpressions[0]
	default:
		return clause.Or(orExpressions...)
	}
}

// sql renders the whole condition, "TRUE" when there is nothing to filter.
func (d dnf) sql() (string, []driver.Value) {
	orClauses := make([]string, 0, len(d))
	values := make([]driver.Value, 0, len(d))

	for _, dj := range d {
		orClause, orValues := dj.sql()
		if orClause == "" {
			continue
		}

		orClauses = append(orClauses, orClause)
		values = append(values, orValues...)
	}

	if len(orClauses) == 0 {
		return "TRUE", nil
	}

	return fmt.Sprintf("(%s)", strings.Join(orClauses, " OR ")), values
}

// rowValueExpression renders (c1, c2) > (?, ?). Only valid when every element
// shares one operator.
func rowValueExpression(elements Keyset) (clause.Expression, bool) {
	if len(elements) == 0 {
		return nil, false
	}

	op := elements[0].Operator
	if !lo.EveryBy(elements, func(e KeysetElement) bool { return e.Operator == op }) {
		return nil, false
	}

	columns := lo.Map(elements, func(e KeysetElement, _ int) string { return e.Column })
	placeholders := lo.Map(elements, func(_ KeysetElement, _ int) string { return "?" })
	vars := lo.Map(elements, func(e KeysetElement, _ int) any { return sqlValue(e.Value) })

	return clause.Expr{
		SQL:  fmt.Sprintf("(%s) %s (%s)", strings.Join(columns, ", "), op, strings.Join(placeholders, ", ")),
		Vars: vars,
	}, true
}
