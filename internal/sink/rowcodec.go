package sink

import (
	"errors"
	"math"

	"github.com/tuannm99/novaingest/internal/alias/bx"
	"github.com/tuannm99/novaingest/internal/record"
)

type ColumnSchema struct {
	Name     string              `json:"name"`
	Semantic record.SemanticType `json:"semantic"`
	DataType record.DataType     `json:"datatype"`
}

type TableSchema struct {
	Cols []ColumnSchema `json:"cols"`
}

func (s TableSchema) NumCols() int { return len(s.Cols) }

func (s TableSchema) Names() []string {
	out := make([]string, len(s.Cols))
	for i, c := range s.Cols {
		out[i] = c.Name
	}
	return out
}

func schemaOf(r *record.InsertRequest) TableSchema {
	cols := r.Columns()
	s := TableSchema{Cols: make([]ColumnSchema, len(cols))}
	for i, c := range cols {
		s.Cols[i] = ColumnSchema{Name: c.Name(), Semantic: c.SemanticType(), DataType: c.DataType()}
	}
	return s
}

var (
	ErrSchemaMismatch  = errors.New("rowcodec: schema/values mismatch")
	ErrBadBuffer       = errors.New("rowcodec: buffer underflow/overflow")
	ErrVarTooLong      = errors.New("rowcodec: variable length exceeds u32")
	ErrUnsupportedType = errors.New("rowcodec: unsupported type")
)

// EncodeRow packs one stored row: a null bitmap of ceil(N/8) bytes (bit set
// means NULL) followed by the non-null values in column order. values hold
// the Go storage type of each column's datatype, so Date is int32 and every
// timestamp unit is int64. String and Binary carry a u32 LE length prefix.
func EncodeRow(s TableSchema, values []any) ([]byte, error) {
	nc := s.NumCols()
	if len(values) != nc {
		return nil, ErrSchemaMismatch
	}

	nbBytes := (nc + 7) / 8
	out := make([]byte, nbBytes)

	for i, col := range s.Cols {
		v := values[i]
		if v == nil {
			out[i/8] |= 1 << (uint(i) & 7)
			continue
		}
		var err error
		if out, err = appendValue(out, col.DataType, v); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func appendValue(out []byte, dt record.DataType, v any) ([]byte, error) {
	ok := true
	switch dt {
	case record.Boolean:
		var x bool
		if x, ok = v.(bool); ok {
			if x {
				out = append(out, 1)
			} else {
				out = append(out, 0)
			}
		}
	case record.Int8:
		var x int8
		if x, ok = v.(int8); ok {
			out = append(out, uint8(x))
		}
	case record.UInt8:
		var x uint8
		if x, ok = v.(uint8); ok {
			out = append(out, x)
		}
	case record.Int16:
		var x int16
		if x, ok = v.(int16); ok {
			out = bx.AppendU16(out, uint16(x))
		}
	case record.UInt16:
		var x uint16
		if x, ok = v.(uint16); ok {
			out = bx.AppendU16(out, x)
		}
	case record.Int32, record.Date:
		var x int32
		if x, ok = v.(int32); ok {
			out = bx.AppendU32(out, uint32(x))
		}
	case record.UInt32:
		var x uint32
		if x, ok = v.(uint32); ok {
			out = bx.AppendU32(out, x)
		}
	case record.Int64, record.DateTime,
		record.TimestampSecond, record.TimestampMillisecond,
		record.TimestampMicrosecond, record.TimestampNanosecond:
		var x int64
		if x, ok = v.(int64); ok {
			out = bx.AppendU64(out, uint64(x))
		}
	case record.UInt64:
		var x uint64
		if x, ok = v.(uint64); ok {
			out = bx.AppendU64(out, x)
		}
	case record.Float32:
		var x float32
		if x, ok = v.(float32); ok {
			out = bx.AppendF32(out, x)
		}
	case record.Float64:
		var x float64
		if x, ok = v.(float64); ok {
			out = bx.AppendF64(out, x)
		}
	case record.String:
		var x string
		if x, ok = v.(string); ok {
			return appendVar(out, []byte(x))
		}
	case record.Binary:
		var x []byte
		if x, ok = v.([]byte); ok {
			return appendVar(out, x)
		}
	default:
		return nil, ErrUnsupportedType
	}
	if !ok {
		return nil, ErrSchemaMismatch
	}
	return out, nil
}

func appendVar(out, b []byte) ([]byte, error) {
	if uint64(len(b)) > math.MaxUint32 {
		return nil, ErrVarTooLong
	}
	out = bx.AppendU32(out, uint32(len(b)))
	return append(out, b...), nil
}

// DecodeRow reverses EncodeRow. Null columns come back as nil.
func DecodeRow(s TableSchema, buf []byte) ([]any, error) {
	nc := s.NumCols()
	nbBytes := (nc + 7) / 8
	if len(buf) < nbBytes {
		return nil, ErrBadBuffer
	}
	nullmap := buf[:nbBytes]
	rd := bx.NewReader(buf[nbBytes:])

	out := make([]any, nc)
	for colIdx, col := range s.Cols {
		if (nullmap[colIdx/8]>>(uint(colIdx)&7))&1 == 1 {
			continue
		}

		switch col.DataType {
		case record.Boolean:
			out[colIdx] = rd.U8() != 0
		case record.Int8:
			out[colIdx] = int8(rd.U8())
		case record.UInt8:
			out[colIdx] = rd.U8()
		case record.Int16:
			out[colIdx] = rd.I16()
		case record.UInt16:
			out[colIdx] = rd.U16()
		case record.Int32, record.Date:
			out[colIdx] = rd.I32()
		case record.UInt32:
			out[colIdx] = rd.U32()
		case record.Int64, record.DateTime,
			record.TimestampSecond, record.TimestampMillisecond,
			record.TimestampMicrosecond, record.TimestampNanosecond:
			out[colIdx] = rd.I64()
		case record.UInt64:
			out[colIdx] = rd.U64()
		case record.Float32:
			out[colIdx] = rd.F32()
		case record.Float64:
			out[colIdx] = rd.F64()
		case record.String:
			out[colIdx] = string(rd.Next(int(rd.U32())))
		case record.Binary:
			// make a copy to avoid aliasing the value buffer
			b := rd.Next(int(rd.U32()))
			out[colIdx] = append([]byte{}, b...)
		default:
			return nil, ErrUnsupportedType
		}
		if rd.Err() {
			return nil, ErrBadBuffer
		}
	}
	return out, nil
}
