// Package protocol implements the wire layer: the packet buffer, the
// length-prefixed (optionally zlib-compressed) frame transport, and the
// four-state handshake/login/configuration/play state machine.
package protocol

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/google/uuid"

	"github.com/StoreStation/vibebot/pkg/varint"
)

// ErrBufferUnderrun is returned when a read would consume past the end of
// the buffer. Per the error handling design, this fails only the packet
// handler that triggered it.
var ErrBufferUnderrun = fmt.Errorf("protocol: read past end of packet buffer")

// Reader decodes primitives from a single packet's payload, big-endian,
// with a varint-length-prefixed string form and canonical UUID rendering.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps payload for sequential decoding.
func NewReader(payload []byte) *Reader {
	return &Reader{buf: payload}
}

// Remaining reports how many bytes are left to read.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.pos
}

// Skip advances the cursor by n bytes.
func (r *Reader) Skip(n int) error {
	if n < 0 || r.Remaining() < n {
		return ErrBufferUnderrun
	}
	r.pos += n
	return nil
}

func (r *Reader) take(n int) ([]byte, error) {
	if r.Remaining() < n {
		return nil, ErrBufferUnderrun
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// Bytes returns the next n raw bytes.
func (r *Reader) Bytes(n int) ([]byte, error) {
	return r.take(n)
}

// RestBytes returns every byte from the cursor to the end.
func (r *Reader) RestBytes() []byte {
	b := r.buf[r.pos:]
	r.pos = len(r.buf)
	return b
}

// Bool reads a single boolean byte.
func (r *Reader) Bool() (bool, error) {
	b, err := r.take(1)
	if err != nil {
		return false, err
	}
	return b[0] != 0, nil
}

// I8 reads a signed byte.
func (r *Reader) I8() (int8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return int8(b[0]), nil
}

// U8 reads an unsigned byte.
func (r *Reader) U8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// I16 reads a big-endian signed 16-bit integer.
func (r *Reader) I16() (int16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return int16(binary.BigEndian.Uint16(b)), nil
}

// U16 reads a big-endian unsigned 16-bit integer.
func (r *Reader) U16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// I32 reads a big-endian signed 32-bit integer.
func (r *Reader) I32() (int32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(b)), nil
}

// I64 reads a big-endian signed 64-bit integer.
func (r *Reader) I64() (int64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(b)), nil
}

// F32 reads a big-endian IEEE-754 float.
func (r *Reader) F32() (float32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.BigEndian.Uint32(b)), nil
}

// F64 reads a big-endian IEEE-754 double.
func (r *Reader) F64() (float64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
}

// VarInt reads a varint-encoded 32-bit integer.
func (r *Reader) VarInt() (int32, error) {
	v, n, err := varint.ReadInt32(bytes.NewReader(r.buf[r.pos:]))
	if err != nil {
		return 0, err
	}
	r.pos += n
	return v, nil
}

// VarLong reads a varint-encoded 64-bit integer.
func (r *Reader) VarLong() (int64, error) {
	v, n, err := varint.ReadInt64(bytes.NewReader(r.buf[r.pos:]))
	if err != nil {
		return 0, err
	}
	r.pos += n
	return v, nil
}

// String reads a varint-length-prefixed UTF-8 string.
func (r *Reader) String() (string, error) {
	n, err := r.VarInt()
	if err != nil {
		return "", err
	}
	if n < 0 || int(n) > r.Remaining() {
		return "", ErrBufferUnderrun
	}
	b, err := r.take(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// UUID reads 16 raw bytes and renders them as a canonical hyphenated UUID.
func (r *Reader) UUID() (uuid.UUID, error) {
	b, err := r.take(16)
	if err != nil {
		return uuid.UUID{}, err
	}
	var u uuid.UUID
	copy(u[:], b)
	return u, nil
}

// Writer builds a single packet's payload, big-endian, growing a byte
// buffer. It never fails: the underlying bytes.Buffer only fails on OOM.
type Writer struct {
	buf bytes.Buffer
}

// NewWriter returns an empty packet payload builder.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the accumulated payload.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Raw appends b verbatim.
func (w *Writer) Raw(b []byte) {
	w.buf.Write(b)
}

// Bool writes a single boolean byte.
func (w *Writer) Bool(v bool) {
	if v {
		w.buf.WriteByte(1)
	} else {
		w.buf.WriteByte(0)
	}
}

// I8 writes a signed byte.
func (w *Writer) I8(v int8) {
	w.buf.WriteByte(byte(v))
}

// U8 writes an unsigned byte.
func (w *Writer) U8(v uint8) {
	w.buf.WriteByte(v)
}

// U16 writes a big-endian unsigned 16-bit integer.
func (w *Writer) U16(v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	w.buf.Write(b[:])
}

// I32 writes a big-endian signed 32-bit integer.
func (w *Writer) I32(v int32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v))
	w.buf.Write(b[:])
}

// I64 writes a big-endian signed 64-bit integer.
func (w *Writer) I64(v int64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	w.buf.Write(b[:])
}

// F32 writes a big-endian IEEE-754 float.
func (w *Writer) F32(v float32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], math.Float32bits(v))
	w.buf.Write(b[:])
}

// F64 writes a big-endian IEEE-754 double.
func (w *Writer) F64(v float64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], math.Float64bits(v))
	w.buf.Write(b[:])
}

// VarInt writes a varint-encoded 32-bit integer.
func (w *Writer) VarInt(v int32) {
	varint.WriteInt32(&w.buf, v)
}

// VarLong writes a varint-encoded 64-bit integer.
func (w *Writer) VarLong(v int64) {
	varint.WriteInt64(&w.buf, v)
}

// String writes a varint-length-prefixed UTF-8 string.
func (w *Writer) String(s string) {
	b := []byte(s)
	w.VarInt(int32(len(b)))
	w.buf.Write(b)
}

// UUID writes the 16 raw bytes of u.
func (w *Writer) UUID(u uuid.UUID) {
	w.buf.Write(u[:])
}

// Reader reopens the accumulated bytes for reading, useful in tests.
func (w *Writer) Reader() io.Reader {
	return bytes.NewReader(w.buf.Bytes())
}
