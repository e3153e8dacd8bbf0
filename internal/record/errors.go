package record

import (
	"errors"
	"fmt"
	"strings"
)

// SchemaErrorKind identifies which rule a request or column violated.
type SchemaErrorKind uint8

const (
	EmptyTableName SchemaErrorKind = iota + 1
	EmptyColumnName
	UnknownSemanticType
	UnknownDataType
	NullMaskLength
	DuplicateColumnName
	MissingTimestampColumn
	MultipleTimestampColumns
	RowCountMismatch
	TypeMismatch
)

var (
	ErrEmptyTableName           = errors.New("record: empty table name")
	ErrEmptyColumnName          = errors.New("record: empty column name")
	ErrUnknownSemanticType      = errors.New("record: unknown semantic type")
	ErrUnknownDataType          = errors.New("record: unknown datatype")
	ErrNullMaskLength           = errors.New("record: null mask length differs from values length")
	ErrDuplicateColumnName      = errors.New("record: duplicate column name")
	ErrMissingTimestampColumn   = errors.New("record: missing timestamp column")
	ErrMultipleTimestampColumns = errors.New("record: multiple timestamp columns")
	ErrRowCountMismatch         = errors.New("record: row count mismatch")
	ErrTypeMismatch             = errors.New("record: values do not match datatype")

	ErrIndexOutOfRange  = errors.New("record: index out of range")
	ErrRequestSubmitted = errors.New("record: request already submitted")
)

var kindSentinels = map[SchemaErrorKind]error{
	EmptyTableName:           ErrEmptyTableName,
	EmptyColumnName:          ErrEmptyColumnName,
	UnknownSemanticType:      ErrUnknownSemanticType,
	UnknownDataType:          ErrUnknownDataType,
	NullMaskLength:           ErrNullMaskLength,
	DuplicateColumnName:      ErrDuplicateColumnName,
	MissingTimestampColumn:   ErrMissingTimestampColumn,
	MultipleTimestampColumns: ErrMultipleTimestampColumns,
	RowCountMismatch:         ErrRowCountMismatch,
	TypeMismatch:             ErrTypeMismatch,
}

func (k SchemaErrorKind) String() string {
	switch k {
	case EmptyTableName:
		return "EmptyTableName"
	case EmptyColumnName:
		return "EmptyColumnName"
	case UnknownSemanticType:
		return "UnknownSemanticType"
	case UnknownDataType:
		return "UnknownDataType"
	case NullMaskLength:
		return "NullMaskLength"
	case DuplicateColumnName:
		return "DuplicateColumnName"
	case MissingTimestampColumn:
		return "MissingTimestampColumn"
	case MultipleTimestampColumns:
		return "MultipleTimestampColumns"
	case RowCountMismatch:
		return "RowCountMismatch"
	case TypeMismatch:
		return "TypeMismatch"
	}
	return fmt.Sprintf("SchemaErrorKind(%d)", uint8(k))
}

// SchemaError is a local, non-retryable validation failure. Table and Column
// are filled in whenever the failure can be pinned to them.
type SchemaError struct {
	Kind   SchemaErrorKind
	Table  string
	Column string
	Detail string
}

func (e *SchemaError) Error() string {
	var b strings.Builder
	b.WriteString("record: ")
	b.WriteString(e.Kind.String())
	if e.Table != "" {
		fmt.Fprintf(&b, " table=%q", e.Table)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, " column=%q", e.Column)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

// Unwrap exposes the sentinel of the kind so callers can use errors.Is.
func (e *SchemaError) Unwrap() error { return kindSentinels[e.Kind] }

func schemaErr(kind SchemaErrorKind, column, format string, args ...any) *SchemaError {
	return &SchemaError{Kind: kind, Column: column, Detail: fmt.Sprintf(format, args...)}
}

// IndexError reports access past a column's logical length.
type IndexError struct {
	Column string
	Index  int
	Length int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("record: index %d out of range for column %q (len=%d)", e.Index, e.Column, e.Length)
}

func (e *IndexError) Unwrap() error { return ErrIndexOutOfRange }
