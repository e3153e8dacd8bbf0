package record

import "fmt"

// DataType is the physical storage type of a column. The numeric values are
// the wire tags shared with the server and must never be renumbered.
type DataType uint8

const (
	Boolean DataType = iota
	Int8
	Int16
	Int32
	Int64
	UInt8
	UInt16
	UInt32
	UInt64
	Float32
	Float64
	Binary
	String
	Date     // days since unix epoch
	DateTime // milliseconds since unix epoch
	TimestampSecond
	TimestampMillisecond
	TimestampMicrosecond
	TimestampNanosecond

	numDataTypes
)

var dataTypeNames = [numDataTypes]string{
	"Boolean", "Int8", "Int16", "Int32", "Int64",
	"UInt8", "UInt16", "UInt32", "UInt64",
	"Float32", "Float64", "Binary", "String", "Date", "DateTime",
	"TimestampSecond", "TimestampMillisecond", "TimestampMicrosecond", "TimestampNanosecond",
}

func (d DataType) Valid() bool { return d < numDataTypes }

func (d DataType) String() string {
	if !d.Valid() {
		return fmt.Sprintf("DataType(%d)", uint8(d))
	}
	return dataTypeNames[d]
}

// IsTimestamp reports whether d is one of the Timestamp* units.
func (d DataType) IsTimestamp() bool {
	return d >= TimestampSecond && d <= TimestampNanosecond
}

// FixedWidth returns the encoded size of one value. Variable length types
// (String, Binary) return false.
func (d DataType) FixedWidth() (int, bool) {
	switch d {
	case Boolean, Int8, UInt8:
		return 1, true
	case Int16, UInt16:
		return 2, true
	case Int32, UInt32, Float32, Date:
		return 4, true
	case Int64, UInt64, Float64, DateTime,
		TimestampSecond, TimestampMillisecond, TimestampMicrosecond, TimestampNanosecond:
		return 8, true
	}
	return 0, false
}

// SemanticType is the role a column plays in the row model.
type SemanticType uint8

const (
	Tag SemanticType = iota
	Field
	Timestamp

	numSemanticTypes
)

func (s SemanticType) Valid() bool { return s < numSemanticTypes }

func (s SemanticType) String() string {
	switch s {
	case Tag:
		return "Tag"
	case Field:
		return "Field"
	case Timestamp:
		return "Timestamp"
	}
	return fmt.Sprintf("SemanticType(%d)", uint8(s))
}
