package record

import (
	"errors"
	"fmt"
	"math"

	"github.com/tuannm99/novaingest/internal/alias/bx"
)

// WireVersion is bumped whenever a DataType, SemanticType or the layout
// below changes.
const WireVersion uint8 = 1

const flagNullMask = 1 << 0

var (
	ErrBadBuffer          = errors.New("record: buffer underflow/overflow")
	ErrUnsupportedVersion = errors.New("record: unsupported wire version")
	ErrValueTooLong       = errors.New("record: value length exceeds limit")
)

// EncodeRequest serialises a request after re-checking its invariants.
// Format (little-endian):
//
//	[version u8] [table str16] [row_count u32] [ncols u16] [column]...
//
// See EncodeColumn for the column layout.
func EncodeRequest(r *InsertRequest) ([]byte, error) {
	if err := r.Check(); err != nil {
		return nil, err
	}
	if len(r.columns) > math.MaxUint16 {
		return nil, fmt.Errorf("%w: %d columns", ErrValueTooLong, len(r.columns))
	}

	out := []byte{WireVersion}
	out, err := appendStr16(out, r.tableName)
	if err != nil {
		return nil, err
	}
	out = bx.AppendU32(out, r.rowCount)
	out = bx.AppendU16(out, uint16(len(r.columns)))
	for _, c := range r.columns {
		if out, err = appendColumn(out, c); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// DecodeRequest rebuilds a request and checks its invariants. The result is
// in StateValidated.
func DecodeRequest(buf []byte) (*InsertRequest, error) {
	rd := bx.NewReader(buf)
	version := rd.U8()
	if rd.Err() {
		return nil, ErrBadBuffer
	}
	if version != WireVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}

	table := readStr16(rd)
	rowCount := rd.U32()
	ncols := int(rd.U16())
	if rd.Err() {
		return nil, ErrBadBuffer
	}

	r := &InsertRequest{tableName: table, rowCount: rowCount, columns: make([]*Column, 0, ncols)}
	for i := 0; i < ncols; i++ {
		c, err := readColumn(rd)
		if err != nil {
			if se, ok := err.(*SchemaError); ok {
				return nil, r.withTable(se)
			}
			return nil, err
		}
		r.columns = append(r.columns, c)
	}
	if rd.Remaining() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrBadBuffer, rd.Remaining())
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// EncodeColumn serialises a single column:
//
//	[name str16] [semantic u8] [datatype u8] [flags u8] [n u32]
//	[nullmap: ceil(n/8) bytes, bit=1 => NULL, only if flags&1]
//	[values: n * width | n * (u32 len + bytes) for String/Binary]
func EncodeColumn(c *Column) ([]byte, error) {
	return appendColumn(nil, c)
}

// DecodeColumn is the inverse of EncodeColumn.
func DecodeColumn(buf []byte) (*Column, error) {
	rd := bx.NewReader(buf)
	c, err := readColumn(rd)
	if err != nil {
		return nil, err
	}
	if rd.Remaining() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrBadBuffer, rd.Remaining())
	}
	return c, nil
}

func appendColumn(out []byte, c *Column) ([]byte, error) {
	if err := checkVariant(c.name, c.datatype, c.values); err != nil {
		return nil, err
	}
	n := c.values.Len()
	if uint64(n) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: column %q has %d values", ErrValueTooLong, c.name, n)
	}

	out, err := appendStr16(out, c.name)
	if err != nil {
		return nil, err
	}
	var flags uint8
	if c.nullMask != nil {
		flags |= flagNullMask
	}
	out = append(out, uint8(c.semantic), uint8(c.datatype), flags)
	out = bx.AppendU32(out, uint32(n))

	if c.nullMask != nil {
		nullmap := make([]byte, (n+7)/8)
		for i, null := range c.nullMask {
			if null {
				nullmap[i/8] |= 1 << (uint(i) & 7)
			}
		}
		out = append(out, nullmap...)
	}

	return appendValues(out, c.values)
}

func appendValues(out []byte, values Values) ([]byte, error) {
	switch v := values.(type) {
	case BoolValues:
		for _, x := range v {
			if x {
				out = append(out, 1)
			} else {
				out = append(out, 0)
			}
		}
	case Int8Values:
		for _, x := range v {
			out = append(out, uint8(x))
		}
	case UInt8Values:
		out = append(out, v...)
	case Int16Values:
		for _, x := range v {
			out = bx.AppendU16(out, uint16(x))
		}
	case UInt16Values:
		for _, x := range v {
			out = bx.AppendU16(out, x)
		}
	case Int32Values:
		out = appendI32s(out, v)
	case DateValues:
		out = appendI32s(out, v)
	case UInt32Values:
		for _, x := range v {
			out = bx.AppendU32(out, x)
		}
	case Int64Values:
		out = appendI64s(out, v)
	case DateTimeValues:
		out = appendI64s(out, v)
	case TimestampSecondValues:
		out = appendI64s(out, v)
	case TimestampMillisecondValues:
		out = appendI64s(out, v)
	case TimestampMicrosecondValues:
		out = appendI64s(out, v)
	case TimestampNanosecondValues:
		out = appendI64s(out, v)
	case UInt64Values:
		for _, x := range v {
			out = bx.AppendU64(out, x)
		}
	case Float32Values:
		for _, x := range v {
			out = bx.AppendF32(out, x)
		}
	case Float64Values:
		for _, x := range v {
			out = bx.AppendF64(out, x)
		}
	case StringValues:
		for _, x := range v {
			var err error
			if out, err = appendBytes32(out, []byte(x)); err != nil {
				return nil, err
			}
		}
	case BinaryValues:
		for _, x := range v {
			var err error
			if out, err = appendBytes32(out, x); err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("%w: %T", ErrTypeMismatch, values)
	}
	return out, nil
}

func appendI32s[T ~[]int32](out []byte, v T) []byte {
	for _, x := range v {
		out = bx.AppendU32(out, uint32(x))
	}
	return out
}

func appendI64s[T ~[]int64](out []byte, v T) []byte {
	for _, x := range v {
		out = bx.AppendU64(out, uint64(x))
	}
	return out
}

func readColumn(rd *bx.Reader) (*Column, error) {
	name := readStr16(rd)
	semantic := SemanticType(rd.U8())
	datatype := DataType(rd.U8())
	flags := rd.U8()
	n := int(rd.U32())
	if rd.Err() {
		return nil, ErrBadBuffer
	}
	if !semantic.Valid() {
		return nil, schemaErr(UnknownSemanticType, name, "semantic tag %d", uint8(semantic))
	}
	if !datatype.Valid() {
		return nil, schemaErr(UnknownDataType, name, "datatype tag %d", uint8(datatype))
	}

	// Reject impossible lengths before allocating anything of size n.
	minSize := 4
	if w, ok := datatype.FixedWidth(); ok {
		minSize = w
	}
	if n > rd.Remaining()/minSize {
		return nil, fmt.Errorf("%w: column %q claims %d values", ErrBadBuffer, name, n)
	}

	var nullMask []bool
	if flags&flagNullMask != 0 {
		nullmap := rd.Next((n + 7) / 8)
		if rd.Err() {
			return nil, ErrBadBuffer
		}
		nullMask = make([]bool, n)
		for i := range nullMask {
			nullMask[i] = (nullmap[i/8]>>(uint(i)&7))&1 == 1
		}
	}

	values, err := readValues(rd, datatype, n)
	if err != nil {
		return nil, err
	}
	return NewColumn(name, semantic, datatype, values, nullMask)
}

func readValues(rd *bx.Reader, dt DataType, n int) (Values, error) {
	values := NewValues(dt, n)
	switch v := values.(type) {
	case BoolValues:
		for i := range v {
			v[i] = rd.U8() != 0
		}
	case Int8Values:
		for i := range v {
			v[i] = int8(rd.U8())
		}
	case UInt8Values:
		copy(v, rd.Next(n))
	case Int16Values:
		for i := range v {
			v[i] = rd.I16()
		}
	case UInt16Values:
		for i := range v {
			v[i] = rd.U16()
		}
	case Int32Values:
		readI32s(rd, v)
	case DateValues:
		readI32s(rd, v)
	case UInt32Values:
		for i := range v {
			v[i] = rd.U32()
		}
	case Int64Values:
		readI64s(rd, v)
	case DateTimeValues:
		readI64s(rd, v)
	case TimestampSecondValues:
		readI64s(rd, v)
	case TimestampMillisecondValues:
		readI64s(rd, v)
	case TimestampMicrosecondValues:
		readI64s(rd, v)
	case TimestampNanosecondValues:
		readI64s(rd, v)
	case UInt64Values:
		for i := range v {
			v[i] = rd.U64()
		}
	case Float32Values:
		for i := range v {
			v[i] = rd.F32()
		}
	case Float64Values:
		for i := range v {
			v[i] = rd.F64()
		}
	case StringValues:
		for i := range v {
			v[i] = string(readBytes32(rd))
		}
	case BinaryValues:
		for i := range v {
			// copy so the column does not alias the frame buffer
			if b := readBytes32(rd); b != nil {
				v[i] = append([]byte{}, b...)
			}
		}
	default:
		return nil, schemaErr(UnknownDataType, "", "datatype tag %d", uint8(dt))
	}
	if rd.Err() {
		return nil, ErrBadBuffer
	}
	return values, nil
}

func readI32s[T ~[]int32](rd *bx.Reader, v T) {
	for i := range v {
		v[i] = rd.I32()
	}
}

func readI64s[T ~[]int64](rd *bx.Reader, v T) {
	for i := range v {
		v[i] = rd.I64()
	}
}

func appendStr16(out []byte, s string) ([]byte, error) {
	if len(s) > math.MaxUint16 {
		return nil, fmt.Errorf("%w: name of %d bytes", ErrValueTooLong, len(s))
	}
	out = bx.AppendU16(out, uint16(len(s)))
	return append(out, s...), nil
}

func readStr16(rd *bx.Reader) string {
	l := int(rd.U16())
	return string(rd.Next(l))
}

func appendBytes32(out []byte, b []byte) ([]byte, error) {
	if uint64(len(b)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: value of %d bytes", ErrValueTooLong, len(b))
	}
	out = bx.AppendU32(out, uint32(len(b)))
	return append(out, b...), nil
}

func readBytes32(rd *bx.Reader) []byte {
	l := int(rd.U32())
	return rd.Next(l)
}
