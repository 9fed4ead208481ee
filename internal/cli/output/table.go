package output

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
)

// TableFormatter prints data as a borderless table.
//
// Accepted shapes: *Table or Table, a struct (one FIELD/VALUE row per
// field), a slice of structs (one row per element), a slice of scalars
// and a map (KEY/VALUE rows sorted by key). Anything else is printed as
// indented JSON.
type TableFormatter struct{}

// Format writes data to w.
func (f *TableFormatter) Format(w io.Writer, data any) error {
	switch t := data.(type) {
	case nil:
		return nil
	case *Table:
		return t.Render(w)
	case Table:
		return t.Render(w)
	}

	table, ok := tableOf(reflect.ValueOf(data))
	if !ok {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}
	return table.Render(w)
}

func tableOf(v reflect.Value) (*Table, bool) {
	v = deref(v)
	switch v.Kind() {
	case reflect.Struct:
		table := &Table{Headers: []string{"FIELD", "VALUE"}}
		for _, f := range fieldsOf(v.Type()) {
			table.AddRow(f.name, formatValue(v.Field(f.index)))
		}
		return table, true

	case reflect.Slice, reflect.Array:
		table := &Table{}
		if v.Len() == 0 {
			return table, true
		}
		if first := deref(v.Index(0)); first.Kind() == reflect.Struct {
			fields := fieldsOf(first.Type())
			for _, f := range fields {
				table.Headers = append(table.Headers, strings.ToUpper(f.name))
			}
			for i := 0; i < v.Len(); i++ {
				elem := deref(v.Index(i))
				row := make([]string, len(fields))
				for j, f := range fields {
					row[j] = formatValue(elem.Field(f.index))
				}
				table.AddRow(row...)
			}
			return table, true
		}
		table.Headers = []string{"VALUE"}
		for i := 0; i < v.Len(); i++ {
			table.AddRow(formatValue(v.Index(i)))
		}
		return table, true

	case reflect.Map:
		table := &Table{Headers: []string{"KEY", "VALUE"}}
		iter := v.MapRange()
		for iter.Next() {
			table.AddRow(formatValue(iter.Key()), formatValue(iter.Value()))
		}
		sort.Slice(table.Rows, func(i, j int) bool { return table.Rows[i][0] < table.Rows[j][0] })
		return table, true
	}
	return nil, false
}

type field struct {
	name  string
	index int
}

// fieldsOf lists the exported fields of t that are not tagged table:"-".
// Names come from the json tag, or the snake_case field name.
func fieldsOf(t reflect.Type) []field {
	var fields []field
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() || sf.Tag.Get("table") == "-" {
			continue
		}
		name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			name = toSnakeCase(sf.Name)
		}
		fields = append(fields, field{name: name, index: i})
	}
	return fields
}

func deref(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

var (
	timeType     = reflect.TypeOf(time.Time{})
	durationType = reflect.TypeOf(time.Duration(0))
)

// formatValue renders one cell. Empty strings and zero times print as "-",
// nil as empty. Composite values print as compact JSON since stored
// values are JSON documents.
func formatValue(v reflect.Value) string {
	v = deref(v)
	if !v.IsValid() {
		return ""
	}

	switch v.Type() {
	case timeType:
		t := v.Interface().(time.Time)
		if t.IsZero() {
			return "-"
		}
		return t.Format("2006-01-02 15:04:05")
	case durationType:
		return v.Interface().(time.Duration).String()
	}

	switch v.Kind() {
	case reflect.String:
		if v.Len() == 0 {
			return "-"
		}
		return v.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'g', -1, 64)
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	case reflect.Slice, reflect.Array, reflect.Map, reflect.Struct:
		if data, err := json.Marshal(v.Interface()); err == nil {
			return string(data)
		}
	}
	return fmt.Sprintf("%v", v.Interface())
}

func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Table is preformatted tabular data.
type Table struct {
	Headers []string
	Rows    [][]string
}

// AddRow appends a row.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// SetHeaders replaces the headers.
func (t *Table) SetHeaders(headers ...string) {
	t.Headers = headers
}

// Render writes the table to w. A table with neither headers nor rows
// prints nothing.
func (t *Table) Render(w io.Writer) error {
	if len(t.Rows) == 0 && len(t.Headers) == 0 {
		return nil
	}

	tw := tablewriter.NewWriter(w)
	tw.SetAutoWrapText(false)
	tw.SetAutoFormatHeaders(false)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	tw.SetBorder(false)
	tw.SetHeaderLine(false)
	tw.SetRowSeparator("")
	tw.SetColumnSeparator("")
	tw.SetCenterSeparator("")

	if len(t.Headers) > 0 {
		tw.SetHeader(t.Headers)
	}
	tw.AppendBulk(t.Rows)
	tw.Render()
	return nil
}
