package dataset

// Value is a single cell: string, int32, int64, float64, bool, or nil for a missing value.
type Value = any

type Row map[string]Value

// Frame is a row-oriented table. Columns keeps the order in which keys were first seen.
type Frame struct {
	Columns []string
	Rows    []Row
}

func NewFrame() *Frame {
	return &Frame{Columns: []string{}, Rows: []Row{}}
}

// AppendRecord adds one record whose fields arrive in document order.
func (f *Frame) AppendRecord(keys []string, values []Value) {
	row := make(Row, len(keys))
	for i, key := range keys {
		if !f.HasColumn(key) {
			f.Columns = append(f.Columns, key)
		}
		row[key] = values[i]
	}
	f.Rows = append(f.Rows, row)
}

func (f *Frame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Rows)
}

func (f *Frame) IsEmpty() bool {
	return f.Len() == 0
}

func (f *Frame) HasColumn(name string) bool {
	for _, c := range f.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// DropColumn removes the column and its cells. It reports whether the column existed.
func (f *Frame) DropColumn(name string) bool {
	idx := -1
	for i, c := range f.Columns {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	f.Columns = append(f.Columns[:idx:idx], f.Columns[idx+1:]...)
	for _, row := range f.Rows {
		delete(row, name)
	}
	return true
}

// ReplaceSentinel turns every cell equal to the sentinel string into a missing value.
func (f *Frame) ReplaceSentinel(sentinel string) int {
	replaced := 0
	for _, row := range f.Rows {
		for key, v := range row {
			if s, ok := v.(string); ok && s == sentinel {
				row[key] = nil
				replaced++
			}
		}
	}
	return replaced
}

// Cell returns the value at the given row and column; absent keys read as missing.
func (f *Frame) Cell(row int, column string) Value {
	return f.Rows[row][column]
}

// Subset returns a frame over the given row indices sharing the same columns.
func (f *Frame) Subset(indices []int) *Frame {
	out := &Frame{
		Columns: append([]string(nil), f.Columns...),
		Rows:    make([]Row, 0, len(indices)),
	}
	for _, i := range indices {
		out.Rows = append(out.Rows, f.Rows[i])
	}
	return out
}
