// stand for bytes helper
package bx

import (
	"encoding/binary"
	"math"
)

var (
	LE = binary.LittleEndian
	BE = binary.BigEndian
)

// --- LE: read ---
func U16(b []byte) uint16 { return LE.Uint16(b) }
func U32(b []byte) uint32 { return LE.Uint32(b) }
func U64(b []byte) uint64 { return LE.Uint64(b) }
func I16(b []byte) int16  { return int16(U16(b)) }
func I32(b []byte) int32  { return int32(U32(b)) }
func I64(b []byte) int64  { return int64(U64(b)) }

func F32(b []byte) float32 { return math.Float32frombits(U32(b)) }
func F64(b []byte) float64 { return math.Float64frombits(U64(b)) }

// --- LE: append (codecs grow a single output buffer) ---
func AppendU16(b []byte, v uint16) []byte  { return LE.AppendUint16(b, v) }
func AppendU32(b []byte, v uint32) []byte  { return LE.AppendUint32(b, v) }
func AppendU64(b []byte, v uint64) []byte  { return LE.AppendUint64(b, v) }
func AppendF32(b []byte, v float32) []byte { return AppendU32(b, math.Float32bits(v)) }
func AppendF64(b []byte, v float64) []byte { return AppendU64(b, math.Float64bits(v)) }

// --- BE (used for sortable keys) ---
func AppendU64BE(b []byte, v uint64) []byte { return BE.AppendUint64(b, v) }

// AppendI64Sortable writes v big-endian with the sign bit flipped so that
// byte order matches numeric order for negative values too.
func AppendI64Sortable(b []byte, v int64) []byte {
	return AppendU64BE(b, uint64(v)^(1<<63))
}

// Reader walks a buffer front to back. Once a read runs past the end every
// later read returns zero values and Err reports the underflow.
type Reader struct {
	buf []byte
	off int
	bad bool
}

func NewReader(b []byte) *Reader { return &Reader{buf: b} }

func (r *Reader) Err() bool      { return r.bad }
func (r *Reader) Remaining() int { return len(r.buf) - r.off }

// Next returns the next n bytes without copying.
func (r *Reader) Next(n int) []byte {
	if r.bad || n < 0 || r.off+n > len(r.buf) {
		r.bad = true
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

func (r *Reader) U8() uint8 {
	b := r.Next(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *Reader) U16() uint16 {
	b := r.Next(2)
	if b == nil {
		return 0
	}
	return U16(b)
}

func (r *Reader) U32() uint32 {
	b := r.Next(4)
	if b == nil {
		return 0
	}
	return U32(b)
}

func (r *Reader) U64() uint64 {
	b := r.Next(8)
	if b == nil {
		return 0
	}
	return U64(b)
}

func (r *Reader) I16() int16 {
	b := r.Next(2)
	if b == nil {
		return 0
	}
	return I16(b)
}

func (r *Reader) I32() int32 {
	b := r.Next(4)
	if b == nil {
		return 0
	}
	return I32(b)
}

func (r *Reader) I64() int64 {
	b := r.Next(8)
	if b == nil {
		return 0
	}
	return I64(b)
}

func (r *Reader) F32() float32 {
	b := r.Next(4)
	if b == nil {
		return 0
	}
	return F32(b)
}

func (r *Reader) F64() float64 {
	b := r.Next(8)
	if b == nil {
		return 0
	}
	return F64(b)
}
