package ingestwire

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

const (
	// MaxFrameSize limits memory usage on malformed/hostile input. It applies
	// to the frame on the wire and to the payload after decompression.
	MaxFrameSize = 8 << 20 // 8 MiB

	flagZstd = 1 << 0
)

// EncodeAll/DecodeAll are safe for concurrent use, so one pair serves every
// connection.
var (
	zenc, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	zdec, _ = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(MaxFrameSize), zstd.WithDecoderConcurrency(0))
)

// ReadFrame decodes the next frame from r into v, inflating it when the
// zstd flag is set.
// Layout: [len u32 BE][flags u8][payload], len counts flags + payload.
func ReadFrame(r io.Reader, v any) error {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return err
	}
	n := binary.BigEndian.Uint32(hdr[:])
	if n < 2 {
		return fmt.Errorf("ingestwire: empty frame")
	}
	if n > MaxFrameSize {
		return fmt.Errorf("ingestwire: frame too large: %d > %d", n, MaxFrameSize)
	}

	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return err
	}

	flags, payload := buf[0], buf[1:]
	if flags&flagZstd != 0 {
		var err error
		payload, err = zdec.DecodeAll(payload, nil)
		if err != nil {
			return fmt.Errorf("ingestwire: zstd: %w", err)
		}
		if len(payload) > MaxFrameSize {
			return fmt.Errorf("ingestwire: payload too large: %d > %d", len(payload), MaxFrameSize)
		}
	}

	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("ingestwire: bad json: %w", err)
	}
	return nil
}

// WriteFrame writes v as a length-prefixed JSON frame, zstd-compressing the
// payload when compress is set.
func WriteFrame(w io.Writer, v any, compress bool) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("ingestwire: marshal: %w", err)
	}
	if len(b) == 0 {
		return fmt.Errorf("ingestwire: empty json")
	}
	if len(b) > MaxFrameSize {
		return fmt.Errorf("ingestwire: json too large: %d > %d", len(b), MaxFrameSize)
	}

	var flags byte
	if compress {
		b = zenc.EncodeAll(b, make([]byte, 0, len(b)/2))
		flags |= flagZstd
	}
	if len(b)+1 > MaxFrameSize {
		return fmt.Errorf("ingestwire: frame too large: %d > %d", len(b)+1, MaxFrameSize)
	}

	// single write so a frame is never interleaved on a shared conn
	out := make([]byte, 5, 5+len(b))
	binary.BigEndian.PutUint32(out[:4], uint32(len(b)+1))
	out[4] = flags
	out = append(out, b...)

	_, err = w.Write(out)
	return err
}
