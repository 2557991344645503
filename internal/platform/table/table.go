// Package table turns loosely structured JSON records into column-typed tables.
//
// Columns are declared up front by a Schema. A declared column is present when
// at least one record carries the field; absent columns still answer reads with
// the type's default so callers never branch on shape. Values that cannot be
// coerced to the declared type read as null (or false/"" for bools and text).
package table

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Separator joins nested object keys when records are flattened.
const Separator = "."

type Kind int

const (
	KindString Kind = iota
	KindBool
	KindInt
	KindFloat
	// KindID holds identifiers that may arrive as numbers or strings.
	KindID
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindID:
		return "id"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

type Field struct {
	Name string
	Kind Kind
}

type Schema struct {
	fields []Field
	index  map[string]int
}

func NewSchema(fields ...Field) Schema {
	s := Schema{
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if _, dup := s.index[f.Name]; dup || f.Name == "" {
			continue
		}
		s.index[f.Name] = len(s.fields)
		s.fields = append(s.fields, f)
	}
	return s
}

func (s Schema) Fields() []Field {
	return append([]Field(nil), s.fields...)
}

// Table is an immutable column store produced by Flatten.
type Table struct {
	schema  Schema
	rows    int
	present map[string]bool
	columns map[string][]any
}

// Flatten builds a table from records according to schema. Non-object records
// become rows without fields.
func Flatten(records []any, schema Schema) *Table {
	flat := make([]map[string]any, 0, len(records))
	observed := make(map[string]bool)
	for _, record := range records {
		row := make(map[string]any)
		if obj, ok := record.(map[string]any); ok {
			flattenInto(row, "", obj)
		}
		for key := range row {
			observed[key] = true
		}
		flat = append(flat, row)
	}

	t := &Table{
		schema:  schema,
		rows:    len(flat),
		present: make(map[string]bool, len(schema.fields)),
		columns: make(map[string][]any, len(schema.fields)),
	}
	for _, field := range schema.fields {
		if !observed[field.Name] {
			continue
		}
		t.present[field.Name] = true
		values := make([]any, len(flat))
		for i, row := range flat {
			values[i] = coerce(field.Kind, row[field.Name])
		}
		t.columns[field.Name] = values
	}
	return t
}

func flattenInto(dst map[string]any, prefix string, src map[string]any) {
	for key, value := range src {
		name := key
		if prefix != "" {
			name = prefix + Separator + key
		}
		if nested, ok := value.(map[string]any); ok && len(nested) > 0 {
			flattenInto(dst, name, nested)
			continue
		}
		dst[name] = value
	}
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return t.rows
}

// Has reports whether name is declared and was observed in at least one record.
func (t *Table) Has(name string) bool {
	return t != nil && t.present[name]
}

// Columns lists present columns in schema order.
func (t *Table) Columns() []string {
	if t == nil {
		return nil
	}
	out := make([]string, 0, len(t.present))
	for _, f := range t.schema.fields {
		if t.present[f.Name] {
			out = append(out, f.Name)
		}
	}
	return out
}

// Resolve returns the first alias that is a present column.
func (t *Table) Resolve(aliases ...string) (string, bool) {
	for _, alias := range aliases {
		if t.Has(alias) {
			return alias, true
		}
	}
	return "", false
}

func (t *Table) cell(name string, row int) any {
	if t == nil || row < 0 || row >= t.rows {
		return nil
	}
	values, ok := t.columns[name]
	if !ok {
		return nil
	}
	return values[row]
}

func (t *Table) String(name string, row int) string {
	v, _ := t.cell(name, row).(string)
	return v
}

func (t *Table) Bool(name string, row int) bool {
	v, _ := t.cell(name, row).(bool)
	return v
}

func (t *Table) Int(name string, row int) (int64, bool) {
	v, ok := t.cell(name, row).(int64)
	return v, ok
}

func (t *Table) Float(name string, row int) (float64, bool) {
	v, ok := t.cell(name, row).(float64)
	return v, ok
}

func (t *Table) ID(name string, row int) (string, bool) {
	v, ok := t.cell(name, row).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Observed returns every flattened field name seen in records, sorted. Used for drift diagnostics.
func Observed(records []any) []string {
	seen := make(map[string]bool)
	for _, record := range records {
		obj, ok := record.(map[string]any)
		if !ok {
			continue
		}
		row := make(map[string]any)
		flattenInto(row, "", obj)
		for key := range row {
			seen[key] = true
		}
	}
	out := make([]string, 0, len(seen))
	for key := range seen {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

func coerce(kind Kind, raw any) any {
	switch kind {
	case KindBool:
		return ToBool(raw)
	case KindInt:
		if v, ok := ToInt(raw); ok {
			return v
		}
		return nil
	case KindFloat:
		if v, ok := ToFloat(raw); ok {
			return v
		}
		return nil
	case KindID:
		return ToID(raw)
	default:
		return ToString(raw)
	}
}

// ToFloat parses raw as a number. Booleans count as 1/0.
func ToFloat(raw any) (float64, bool) {
	var out float64
	switch v := raw.(type) {
	case nil:
		return 0, false
	case float64:
		out = v
	case float32:
		out = float64(v)
	case int:
		out = float64(v)
	case int64:
		out = float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		out = f
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		out = f
	default:
		return 0, false
	}
	if math.IsNaN(out) || math.IsInf(out, 0) {
		return 0, false
	}
	return out, true
}

// ToInt parses raw as an integer, truncating fractional values.
func ToInt(raw any) (int64, bool) {
	switch v := raw.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, true
		}
	case string:
		if i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return i, true
		}
	}
	f, ok := ToFloat(raw)
	if !ok || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

func ToBool(raw any) bool {
	switch v := raw.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "t", "yes", "y", "1":
			return true
		default:
			return false
		}
	default:
		f, ok := ToFloat(raw)
		return ok && f != 0
	}
}

func ToString(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

// ToID renders identifiers canonically: integral numbers without fraction, strings trimmed.
func ToID(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case bool:
		return ""
	}
	if i, ok := ToInt(raw); ok {
		if f, fok := ToFloat(raw); fok && f == float64(i) {
			return strconv.FormatInt(i, 10)
		}
	}
	return strings.TrimSpace(ToString(raw))
}
