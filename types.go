// Package novaingest is the top-level facade for building and submitting
// columnar insert requests.
package novaingest

import (
	"context"

	"github.com/tuannm99/novaingest/client"
	"github.com/tuannm99/novaingest/internal/record"
)

type (
	DataType     = record.DataType
	SemanticType = record.SemanticType
	Values       = record.Values

	Column        = record.Column
	InsertRequest = record.InsertRequest
	Inserter      = record.Inserter
	State         = record.State

	SchemaError     = record.SchemaError
	SchemaErrorKind = record.SchemaErrorKind
	IndexError      = record.IndexError

	Database       = client.Database
	Config         = client.Config
	TransportError = client.TransportError
	ServerError    = client.ServerError
)

type (
	BoolValues                 = record.BoolValues
	Int8Values                 = record.Int8Values
	Int16Values                = record.Int16Values
	Int32Values                = record.Int32Values
	Int64Values                = record.Int64Values
	UInt8Values                = record.UInt8Values
	UInt16Values               = record.UInt16Values
	UInt32Values               = record.UInt32Values
	UInt64Values               = record.UInt64Values
	Float32Values              = record.Float32Values
	Float64Values              = record.Float64Values
	BinaryValues               = record.BinaryValues
	StringValues               = record.StringValues
	DateValues                 = record.DateValues
	DateTimeValues             = record.DateTimeValues
	TimestampSecondValues      = record.TimestampSecondValues
	TimestampMillisecondValues = record.TimestampMillisecondValues
	TimestampMicrosecondValues = record.TimestampMicrosecondValues
	TimestampNanosecondValues  = record.TimestampNanosecondValues
)

const (
	Boolean              = record.Boolean
	Int8                 = record.Int8
	Int16                = record.Int16
	Int32                = record.Int32
	Int64                = record.Int64
	UInt8                = record.UInt8
	UInt16               = record.UInt16
	UInt32               = record.UInt32
	UInt64               = record.UInt64
	Float32              = record.Float32
	Float64              = record.Float64
	Binary               = record.Binary
	String               = record.String
	Date                 = record.Date
	DateTime             = record.DateTime
	TimestampSecond      = record.TimestampSecond
	TimestampMillisecond = record.TimestampMillisecond
	TimestampMicrosecond = record.TimestampMicrosecond
	TimestampNanosecond  = record.TimestampNanosecond

	Tag       = record.Tag
	Field     = record.Field
	Timestamp = record.Timestamp

	StateBuilding  = record.StateBuilding
	StateValidated = record.StateValidated
	StateSubmitted = record.StateSubmitted

	DefaultEndpoint = client.DefaultEndpoint
	DefaultDatabase = client.DefaultDatabase
)

var (
	ErrEmptyTableName           = record.ErrEmptyTableName
	ErrEmptyColumnName          = record.ErrEmptyColumnName
	ErrUnknownSemanticType      = record.ErrUnknownSemanticType
	ErrUnknownDataType          = record.ErrUnknownDataType
	ErrNullMaskLength           = record.ErrNullMaskLength
	ErrDuplicateColumnName      = record.ErrDuplicateColumnName
	ErrMissingTimestampColumn   = record.ErrMissingTimestampColumn
	ErrMultipleTimestampColumns = record.ErrMultipleTimestampColumns
	ErrRowCountMismatch         = record.ErrRowCountMismatch
	ErrTypeMismatch             = record.ErrTypeMismatch
	ErrIndexOutOfRange          = record.ErrIndexOutOfRange
	ErrRequestSubmitted         = record.ErrRequestSubmitted
)

func NewColumn(name string, semantic SemanticType, datatype DataType, values Values, nullMask []bool) (*Column, error) {
	return record.NewColumn(name, semantic, datatype, values, nullMask)
}

func NewTagColumn(name string, values Values, nullMask []bool) (*Column, error) {
	return record.NewTagColumn(name, values, nullMask)
}

func NewFieldColumn(name string, values Values, nullMask []bool) (*Column, error) {
	return record.NewFieldColumn(name, values, nullMask)
}

func NewTimestampColumn(name string, values Values) (*Column, error) {
	return record.NewTimestampColumn(name, values)
}

func NewInsertRequest(tableName string, rowCount uint32, columns ...*Column) (*InsertRequest, error) {
	return record.NewInsertRequest(tableName, rowCount, columns...)
}

func NewInsertRequestBuilder(tableName string, rowCount uint32) (*InsertRequest, error) {
	return record.NewInsertRequestBuilder(tableName, rowCount)
}

// Dial connects a Database client.
func Dial(ctx context.Context, cfg Config) (*Database, error) {
	return client.Dial(ctx, cfg)
}

// SubmitAll validates reqs and sends them to ins as one batch.
func SubmitAll(ctx context.Context, ins Inserter, reqs ...*InsertRequest) (uint32, error) {
	return record.SubmitAll(ctx, ins, reqs...)
}
