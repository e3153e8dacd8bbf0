package record

// Column is one named, typed and semantically tagged vector of row values.
// Position i of the vector is logical row i of the request it belongs to.
type Column struct {
	name     string
	semantic SemanticType
	datatype DataType
	values   Values

	// nil means no nulls. When set, len(nullMask) == values.Len().
	nullMask []bool
}

// NewColumn builds a column after checking the name, the enum tags, that
// values is the variant for datatype, and the null mask length.
// The null mask is copied.
func NewColumn(name string, semantic SemanticType, datatype DataType, values Values, nullMask []bool) (*Column, error) {
	if name == "" {
		return nil, schemaErr(EmptyColumnName, "", "column name must not be empty")
	}
	if !semantic.Valid() {
		return nil, schemaErr(UnknownSemanticType, name, "semantic type %d", uint8(semantic))
	}
	if !datatype.Valid() {
		return nil, schemaErr(UnknownDataType, name, "datatype %d", uint8(datatype))
	}
	if err := checkVariant(name, datatype, values); err != nil {
		return nil, err
	}
	if nullMask != nil && len(nullMask) != values.Len() {
		return nil, schemaErr(NullMaskLength, name, "null mask has %d entries, values have %d", len(nullMask), values.Len())
	}

	c := &Column{
		name:     name,
		semantic: semantic,
		datatype: datatype,
		values:   values,
	}
	if nullMask != nil {
		c.nullMask = append(make([]bool, 0, len(nullMask)), nullMask...)
	}
	return c, nil
}

// NewTagColumn builds a Tag column whose datatype is taken from values.
func NewTagColumn(name string, values Values, nullMask []bool) (*Column, error) {
	return newInferred(name, Tag, values, nullMask)
}

// NewFieldColumn builds a Field column whose datatype is taken from values.
func NewFieldColumn(name string, values Values, nullMask []bool) (*Column, error) {
	return newInferred(name, Field, values, nullMask)
}

// NewTimestampColumn builds the time index column. It never carries nulls.
func NewTimestampColumn(name string, values Values) (*Column, error) {
	return newInferred(name, Timestamp, values, nil)
}

func newInferred(name string, semantic SemanticType, values Values, nullMask []bool) (*Column, error) {
	if values == nil {
		return nil, schemaErr(TypeMismatch, name, "no values populated")
	}
	return NewColumn(name, semantic, values.DataType(), values, nullMask)
}

func checkVariant(name string, datatype DataType, values Values) *SchemaError {
	if values == nil {
		return schemaErr(TypeMismatch, name, "declared %s but no values populated", datatype)
	}
	if values.DataType() != datatype {
		return schemaErr(TypeMismatch, name, "declared %s but populated %s values", datatype, values.DataType())
	}
	return nil
}

func (c *Column) Name() string               { return c.name }
func (c *Column) SemanticType() SemanticType { return c.semantic }
func (c *Column) DataType() DataType         { return c.datatype }
func (c *Column) Values() Values             { return c.values }

// LogicalLength is the number of positions in the column, nulls included.
func (c *Column) LogicalLength() int {
	if c.values == nil {
		return 0
	}
	return c.values.Len()
}

// HasNulls reports whether a null mask is present.
func (c *Column) HasNulls() bool { return c.nullMask != nil }

// NullMask returns a copy of the null mask, or nil when absent.
func (c *Column) NullMask() []bool {
	if c.nullMask == nil {
		return nil
	}
	return append([]bool(nil), c.nullMask...)
}

// IsNull reports whether position i is marked null.
func (c *Column) IsNull(i int) (bool, error) {
	if i < 0 || i >= c.LogicalLength() {
		return false, &IndexError{Column: c.name, Index: i, Length: c.LogicalLength()}
	}
	return c.nullMask != nil && c.nullMask[i], nil
}

// Value returns the value at position i, or nil when it is null.
func (c *Column) Value(i int) (any, error) {
	null, err := c.IsNull(i)
	if err != nil {
		return nil, err
	}
	if null {
		return nil, nil
	}
	return c.values.At(i), nil
}
