// Package table implements the columnar record table passed between
// pipeline stages.
//
// A Table is immutable: every operation returns a new Table. Column data
// returned by accessors must be treated as read-only.
package table

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/autoprice/pkg/errors"
)

// Kind is the storage kind of a column.
type Kind int

const (
	Numeric Kind = iota
	Categorical
)

func (k Kind) String() string {
	if k == Categorical {
		return "categorical"
	}
	return "numeric"
}

// Column is one named column. Exactly one of Num or Cat is set, according to Kind.
// Missing numeric cells are NaN.
type Column struct {
	Name string
	Kind Kind
	Num  []float64
	Cat  []string
}

// NumericColumn builds a numeric column.
func NumericColumn(name string, values []float64) Column {
	return Column{Name: name, Kind: Numeric, Num: values}
}

// CategoricalColumn builds a categorical column.
func CategoricalColumn(name string, values []string) Column {
	return Column{Name: name, Kind: Categorical, Cat: values}
}

// Len returns the number of cells.
func (c Column) Len() int {
	if c.Kind == Categorical {
		return len(c.Cat)
	}
	return len(c.Num)
}

func (c Column) take(idx []int) Column {
	out := Column{Name: c.Name, Kind: c.Kind}
	if c.Kind == Categorical {
		out.Cat = make([]string, len(idx))
		for i, r := range idx {
			out.Cat[i] = c.Cat[r]
		}
		return out
	}
	out.Num = make([]float64, len(idx))
	for i, r := range idx {
		out.Num[i] = c.Num[r]
	}
	return out
}

// Table is an ordered set of equal-length named columns.
type Table struct {
	cols  []Column
	index map[string]int
	nrows int
}

// New builds a table. Column names must be unique and all columns equally long.
func New(cols ...Column) (*Table, error) {
	t := &Table{
		cols:  make([]Column, 0, len(cols)),
		index: make(map[string]int, len(cols)),
	}
	for i, c := range cols {
		if _, dup := t.index[c.Name]; dup {
			return nil, errors.NewValueError("table.New", "duplicate column '"+c.Name+"'")
		}
		if i == 0 {
			t.nrows = c.Len()
		} else if c.Len() != t.nrows {
			return nil, errors.NewDimensionError("table.New", t.nrows, c.Len(), 0)
		}
		t.index[c.Name] = len(t.cols)
		t.cols = append(t.cols, c)
	}
	return t, nil
}

// NRows returns the number of rows.
func (t *Table) NRows() int { return t.nrows }

// NCols returns the number of columns.
func (t *Table) NCols() int { return len(t.cols) }

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

// Has reports whether the table has a column named name.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the named column.
func (t *Table) Column(name string) (Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return Column{}, false
	}
	return t.cols[i], true
}

// Numeric returns the values of a numeric column.
func (t *Table) Numeric(name string) ([]float64, error) {
	c, ok := t.Column(name)
	if !ok {
		return nil, errors.NewDataError("table", name, "no such column")
	}
	if c.Kind != Numeric {
		return nil, errors.NewDataError("table", name, "column is categorical")
	}
	return c.Num, nil
}

// Categorical returns the values of a categorical column.
func (t *Table) Categorical(name string) ([]string, error) {
	c, ok := t.Column(name)
	if !ok {
		return nil, errors.NewDataError("table", name, "no such column")
	}
	if c.Kind != Categorical {
		return nil, errors.NewDataError("table", name, "column is numeric")
	}
	return c.Cat, nil
}

// Select projects the table onto names, in the given order.
func (t *Table) Select(names ...string) (*Table, error) {
	cols := make([]Column, 0, len(names))
	for _, n := range names {
		c, ok := t.Column(n)
		if !ok {
			return nil, errors.NewDataError("table", n, "no such column")
		}
		cols = append(cols, c)
	}
	out, err := New(cols...)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		out.nrows = t.nrows
	}
	return out, nil
}

// Take returns the rows at idx, in idx order.
func (t *Table) Take(idx []int) *Table {
	out := &Table{
		cols:  make([]Column, len(t.cols)),
		index: t.index,
		nrows: len(idx),
	}
	for i, c := range t.cols {
		out.cols[i] = c.take(idx)
	}
	return out
}

// Filter keeps the rows for which keep returns true. Survivors keep their order.
func (t *Table) Filter(keep func(row int) bool) *Table {
	idx := make([]int, 0, t.nrows)
	for r := 0; r < t.nrows; r++ {
		if keep(r) {
			idx = append(idx, r)
		}
	}
	return t.Take(idx)
}

// WithColumn returns a table where c replaces the column of the same name
// in place, or is appended when no such column exists.
func (t *Table) WithColumn(c Column) (*Table, error) {
	if len(t.cols) > 0 && c.Len() != t.nrows {
		return nil, errors.NewDimensionError("table.WithColumn", t.nrows, c.Len(), 0)
	}
	cols := slices.Clone(t.cols)
	if i, ok := t.index[c.Name]; ok {
		cols[i] = c
	} else {
		cols = append(cols, c)
	}
	return New(cols...)
}

// WithNumeric is WithColumn for a numeric column.
func (t *Table) WithNumeric(name string, values []float64) (*Table, error) {
	return t.WithColumn(NumericColumn(name, values))
}

// Matrix copies the named numeric columns into a rows x len(names) matrix.
func (t *Table) Matrix(names ...string) (*mat.Dense, error) {
	if t.nrows == 0 || len(names) == 0 {
		return nil, errors.NewDataError("table", "", "cannot build an empty matrix")
	}
	m := mat.NewDense(t.nrows, len(names), nil)
	for j, n := range names {
		v, err := t.Numeric(n)
		if err != nil {
			return nil, err
		}
		for i, x := range v {
			m.Set(i, j, x)
		}
	}
	return m, nil
}

// Vector copies a numeric column into a vector.
func (t *Table) Vector(name string) (*mat.VecDense, error) {
	v, err := t.Numeric(name)
	if err != nil {
		return nil, err
	}
	if len(v) == 0 {
		return nil, errors.NewDataError("table", name, "cannot build an empty vector")
	}
	return mat.NewVecDense(len(v), slices.Clone(v)), nil
}

// CountMissing counts NaN cells of a numeric column.
func (t *Table) CountMissing(name string) (int, error) {
	v, err := t.Numeric(name)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, x := range v {
		if math.IsNaN(x) {
			n++
		}
	}
	return n, nil
}
