package pagekit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Field is a single column/value pair of a Position.
type Field struct {
	Column string
	Value  any
}

// Position identifies a row inside the active ordering: an ordered mapping from
// ordering column to the value that row holds. It serializes to a JSON object
// with the key order preserved.
//
// A nil Position means "no position", i.e. the start of the dataset.
type Position []Field

// NewPosition builds a Position from alternating column/value arguments:
//
//	NewPosition("created_at", ts, "id", 42)
//
// It panics on an odd number of arguments or a non-string column, which is a
// programming error.
func NewPosition(columnValues ...any) Position {
	if len(columnValues)%2 != 0 {
		panic(fmt.Errorf("NewPosition: odd number of arguments %d", len(columnValues)))
	}

	ret := make(Position, 0, len(columnValues)/2)
	for i := 0; i < len(columnValues); i += 2 {
		column, ok := columnValues[i].(string)
		if !ok {
			panic(fmt.Errorf("NewPosition: column at %d is %T, not string", i, columnValues[i]))
		}

		ret = ret.With(column, columnValues[i+1])
	}

	return ret
}

// Len returns the number of fields.
func (p Position) Len() int {
	return len(p)
}

// IsEmpty returns true if the position holds no fields.
func (p Position) IsEmpty() bool {
	return len(p) == 0
}

// Columns returns the column names in order.
func (p Position) Columns() []string {
	return lo.Map(p, func(f Field, _ int) string { return f.Column })
}

// Get returns the value stored for column.
func (p Position) Get(column string) (any, bool) {
	idx := p.index(column)
	if idx == -1 {
		return nil, false
	}

	return p[idx].Value, true
}

// With returns a copy of the position with column set to value. An existing
// column keeps its place, a new one is appended.
func (p Position) With(column string, value any) Position {
	ret := p.Clone()
	if ret == nil {
		ret = make(Position, 0, 1)
	}

	idx := ret.index(column)
	if idx != -1 {
		ret[idx].Value = value
		return ret
	}

	return append(ret, Field{Column: column, Value: value})
}

// Without returns a copy of the position without column.
func (p Position) Without(column string) Position {
	idx := p.index(column)
	if idx == -1 {
		return p.Clone()
	}

	ret := p.Clone()

	return slices.Delete(ret, idx, idx+1)
}

// Clone returns a shallow copy. Nil stays nil.
func (p Position) Clone() Position {
	if p == nil {
		return nil
	}

	return slices.Clone(p)
}

// Equal reports whether both positions hold the same columns in the same order
// with deeply equal values.
func (p Position) Equal(other Position) bool {
	if len(p) != len(other) {
		return false
	}

	for i := range p {
		if p[i].Column != other[i].Column || !reflect.DeepEqual(p[i].Value, other[i].Value) {
			return false
		}
	}

	return true
}

func (p Position) index(column string) int {
	return slices.IndexFunc(p, func(f Field) bool { return f.Column == column })
}

// MarshalJSON implements json.Marshaler. Key order is preserved.
func (p Position) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("null"), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range p {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(f.Column)
		if err != nil {
			return nil, err
		}
		value, err := marshalValue(f.Value)
		if err != nil {
			return nil, fmt.Errorf("cannot marshal position column '%s': %w", f.Column, err)
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// marshalValue encodes v like json.Marshal, except that floats always carry a
// fraction or an exponent, so they decode back as floats.
func marshalValue(v any) ([]byte, error) {
	switch vt := v.(type) {
	case float64:
		return marshalFloat(vt)
	case float32:
		return marshalFloat(float64(vt))
	case []any:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, item := range vt {
			if i > 0 {
				buf.WriteByte(',')
			}

			data, err := marshalValue(item)
			if err != nil {
				return nil, err
			}
			buf.Write(data)
		}
		buf.WriteByte(']')

		return buf.Bytes(), nil
	default:
		return json.Marshal(v)
	}
}

func marshalFloat(f float64) ([]byte, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}

	if !bytes.ContainsAny(data, ".eE") {
		data = append(data, '.', '0')
	}

	return data, nil
}

// UnmarshalJSON implements json.Unmarshaler. The payload must be a JSON object.
// Numbers with a fraction or an exponent decode to float64, integral numbers
// to int64, or uint64 above math.MaxInt64.
func (p *Position) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}

	if tok == nil {
		*p = nil
		return nil
	}

	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("position must be a JSON object, got %v", tok)
	}

	ret := make(Position, 0)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}

		column, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("unexpected position key %v", keyTok)
		}
		if ret.index(column) != -1 {
			return fmt.Errorf("duplicate position column '%s'", column)
		}

		var value any
		if err = dec.Decode(&value); err != nil {
			return err
		}

		ret = append(ret, Field{Column: column, Value: normalizeJSONValue(value)})
	}

	// Closing brace.
	if _, err = dec.Token(); err != nil {
		return err
	}

	if dec.More() {
		return fmt.Errorf("trailing data after position object")
	}

	*p = ret

	return nil
}

func normalizeJSONValue(v any) any {
	switch vt := v.(type) {
	case json.Number:
		raw := vt.String()
		if !strings.ContainsAny(raw, ".eE") {
			if i, err := vt.Int64(); err == nil {
				return i
			}
			if u, err := strconv.ParseUint(raw, 10, 64); err == nil {
				return u
			}
		}
		if f, err := vt.Float64(); err == nil {
			return f
		}

		return raw
	case []any:
		for i := range vt {
			vt[i] = normalizeJSONValue(vt[i])
		}

		return vt
	case map[string]any:
		for k := range vt {
			vt[k] = normalizeJSONValue(vt[k])
		}

		return vt
	default:
		return v
	}
}
