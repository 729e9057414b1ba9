package core

// Row is one result row with its column names.
type Row struct {
	Columns []string
	Values  []any
}

// Get returns the value of the named column.
func (r *Row) Get(column string) (any, bool) {
	if r == nil {
		return nil, false
	}
	for i, c := range r.Columns {
		if c == column && i < len(r.Values) {
			return r.Values[i], true
		}
	}
	return nil, false
}

// Map returns the row as a column to value map.
func (r *Row) Map() map[string]any {
	m := make(map[string]any, len(r.Columns))
	for i, c := range r.Columns {
		if i < len(r.Values) {
			m[c] = r.Values[i]
		}
	}
	return m
}
