package record

// Values is the populated value vector of a column. It is a closed set: every
// implementation lives in this file and maps to exactly one DataType, so a
// column can never carry two populated variants at once.
type Values interface {
	DataType() DataType
	Len() int
	// At returns the value at position i boxed in its Go storage type.
	At(i int) any

	isValues()
}

type (
	BoolValues    []bool
	Int8Values    []int8
	Int16Values   []int16
	Int32Values   []int32
	Int64Values   []int64
	UInt8Values   []uint8
	UInt16Values  []uint16
	UInt32Values  []uint32
	UInt64Values  []uint64
	Float32Values []float32
	Float64Values []float64
	BinaryValues  [][]byte
	StringValues  []string

	DateValues     []int32
	DateTimeValues []int64

	TimestampSecondValues      []int64
	TimestampMillisecondValues []int64
	TimestampMicrosecondValues []int64
	TimestampNanosecondValues  []int64
)

func (BoolValues) DataType() DataType                 { return Boolean }
func (Int8Values) DataType() DataType                 { return Int8 }
func (Int16Values) DataType() DataType                { return Int16 }
func (Int32Values) DataType() DataType                { return Int32 }
func (Int64Values) DataType() DataType                { return Int64 }
func (UInt8Values) DataType() DataType                { return UInt8 }
func (UInt16Values) DataType() DataType               { return UInt16 }
func (UInt32Values) DataType() DataType               { return UInt32 }
func (UInt64Values) DataType() DataType               { return UInt64 }
func (Float32Values) DataType() DataType              { return Float32 }
func (Float64Values) DataType() DataType              { return Float64 }
func (BinaryValues) DataType() DataType               { return Binary }
func (StringValues) DataType() DataType               { return String }
func (DateValues) DataType() DataType                 { return Date }
func (DateTimeValues) DataType() DataType             { return DateTime }
func (TimestampSecondValues) DataType() DataType      { return TimestampSecond }
func (TimestampMillisecondValues) DataType() DataType { return TimestampMillisecond }
func (TimestampMicrosecondValues) DataType() DataType { return TimestampMicrosecond }
func (TimestampNanosecondValues) DataType() DataType  { return TimestampNanosecond }

func (v BoolValues) Len() int                 { return len(v) }
func (v Int8Values) Len() int                 { return len(v) }
func (v Int16Values) Len() int                { return len(v) }
func (v Int32Values) Len() int                { return len(v) }
func (v Int64Values) Len() int                { return len(v) }
func (v UInt8Values) Len() int                { return len(v) }
func (v UInt16Values) Len() int               { return len(v) }
func (v UInt32Values) Len() int               { return len(v) }
func (v UInt64Values) Len() int               { return len(v) }
func (v Float32Values) Len() int              { return len(v) }
func (v Float64Values) Len() int              { return len(v) }
func (v BinaryValues) Len() int               { return len(v) }
func (v StringValues) Len() int               { return len(v) }
func (v DateValues) Len() int                 { return len(v) }
func (v DateTimeValues) Len() int             { return len(v) }
func (v TimestampSecondValues) Len() int      { return len(v) }
func (v TimestampMillisecondValues) Len() int { return len(v) }
func (v TimestampMicrosecondValues) Len() int { return len(v) }
func (v TimestampNanosecondValues) Len() int  { return len(v) }

func (v BoolValues) At(i int) any                 { return v[i] }
func (v Int8Values) At(i int) any                 { return v[i] }
func (v Int16Values) At(i int) any                { return v[i] }
func (v Int32Values) At(i int) any                { return v[i] }
func (v Int64Values) At(i int) any                { return v[i] }
func (v UInt8Values) At(i int) any                { return v[i] }
func (v UInt16Values) At(i int) any               { return v[i] }
func (v UInt32Values) At(i int) any               { return v[i] }
func (v UInt64Values) At(i int) any               { return v[i] }
func (v Float32Values) At(i int) any              { return v[i] }
func (v Float64Values) At(i int) any              { return v[i] }
func (v BinaryValues) At(i int) any               { return v[i] }
func (v StringValues) At(i int) any               { return v[i] }
func (v DateValues) At(i int) any                 { return v[i] }
func (v DateTimeValues) At(i int) any             { return v[i] }
func (v TimestampSecondValues) At(i int) any      { return v[i] }
func (v TimestampMillisecondValues) At(i int) any { return v[i] }
func (v TimestampMicrosecondValues) At(i int) any { return v[i] }
func (v TimestampNanosecondValues) At(i int) any  { return v[i] }

func (BoolValues) isValues()                 {}
func (Int8Values) isValues()                 {}
func (Int16Values) isValues()                {}
func (Int32Values) isValues()                {}
func (Int64Values) isValues()                {}
func (UInt8Values) isValues()                {}
func (UInt16Values) isValues()               {}
func (UInt32Values) isValues()               {}
func (UInt64Values) isValues()               {}
func (Float32Values) isValues()              {}
func (Float64Values) isValues()              {}
func (BinaryValues) isValues()               {}
func (StringValues) isValues()               {}
func (DateValues) isValues()                 {}
func (DateTimeValues) isValues()             {}
func (TimestampSecondValues) isValues()      {}
func (TimestampMillisecondValues) isValues() {}
func (TimestampMicrosecondValues) isValues() {}
func (TimestampNanosecondValues) isValues()  {}

// NewValues allocates a zero-filled vector of n values for dt.
// It returns nil for an unknown datatype.
func NewValues(dt DataType, n int) Values {
	switch dt {
	case Boolean:
		return make(BoolValues, n)
	case Int8:
		return make(Int8Values, n)
	case Int16:
		return make(Int16Values, n)
	case Int32:
		return make(Int32Values, n)
	case Int64:
		return make(Int64Values, n)
	case UInt8:
		return make(UInt8Values, n)
	case UInt16:
		return make(UInt16Values, n)
	case UInt32:
		return make(UInt32Values, n)
	case UInt64:
		return make(UInt64Values, n)
	case Float32:
		return make(Float32Values, n)
	case Float64:
		return make(Float64Values, n)
	case Binary:
		return make(BinaryValues, n)
	case String:
		return make(StringValues, n)
	case Date:
		return make(DateValues, n)
	case DateTime:
		return make(DateTimeValues, n)
	case TimestampSecond:
		return make(TimestampSecondValues, n)
	case TimestampMillisecond:
		return make(TimestampMillisecondValues, n)
	case TimestampMicrosecond:
		return make(TimestampMicrosecondValues, n)
	case TimestampNanosecond:
		return make(TimestampNanosecondValues, n)
	}
	return nil
}
