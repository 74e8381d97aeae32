package schools

// Row is one postsecondary institution with its normalized fields.
type Row struct {
	Name      string  `yaml:"name" json:"name"`
	City      string  `yaml:"city" json:"city"`
	Region    string  `yaml:"region" json:"region"`
	Latitude  float64 `yaml:"latitude" json:"latitude"`
	Longitude float64 `yaml:"longitude" json:"longitude"`
}

// Table is the reference table for one year. Rows keep their load order and
// Lookup always returns the first row carrying a name.
type Table struct {
	Year  int
	rows  []Row
	index map[string]int
}

// NewTable builds a table over rows, indexing the first occurrence of each name.
func NewTable(year int, rows []Row) *Table {
	t := &Table{
		Year:  year,
		rows:  rows,
		index: make(map[string]int, len(rows)),
	}
	for i, r := range rows {
		if _, exists := t.index[r.Name]; !exists {
			t.index[r.Name] = i
		}
	}
	return t
}

// Lookup returns the first row whose name equals name exactly.
func (t *Table) Lookup(name string) (Row, bool) {
	i, ok := t.index[name]
	if !ok {
		return Row{}, false
	}
	return t.rows[i], true
}

// Len returns the number of rows, duplicates included.
func (t *Table) Len() int {
	return len(t.rows)
}

// Rows returns a copy of the rows in table order.
func (t *Table) Rows() []Row {
	out := make([]Row, len(t.rows))
	copy(out, t.rows)
	return out
}

// Augment returns a new table with extra appended after t's rows. The input
// table is not modified; augmenting twice appends the rows twice.
func Augment(t *Table, extra []Row) *Table {
	rows := make([]Row, 0, len(t.rows)+len(extra))
	rows = append(rows, t.rows...)
	rows = append(rows, extra...)
	return NewTable(t.Year, rows)
}
