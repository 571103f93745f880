// Package varint implements the variable-length integer codec used to frame
// every packet on the wire: little-endian base-128, 7 payload bits per byte
// plus one continuation flag.
package varint

import (
	"errors"
	"io"
)

// MaxInt32Bytes and MaxInt64Bytes bound how many bytes a well-formed VarInt
// or VarLong may occupy.
const (
	MaxInt32Bytes = 5
	MaxInt64Bytes = 10
)

// ErrTooBig is returned when a VarInt/VarLong exceeds its maximum byte length
// without terminating — the framing equivalent of a corrupted stream.
var ErrTooBig = errors.New("varint: value too big")

// ReadInt32 reads a signed 32-bit VarInt from r, returning the decoded value
// and the number of bytes consumed.
func ReadInt32(r io.Reader) (int32, int, error) {
	var result uint32
	var numRead int
	var buf [1]byte
	for {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, numRead, err
		}
		b := buf[0]
		result |= uint32(b&0x7F) << (7 * numRead)
		numRead++
		if numRead > MaxInt32Bytes {
			return 0, numRead, ErrTooBig
		}
		if b&0x80 == 0 {
			break
		}
	}
	return int32(result), numRead, nil
}

// PutInt32 encodes value into buf (which must be at least MaxInt32Bytes long)
// and returns the number of bytes written.
func PutInt32(buf []byte, value int32) int {
	uval := uint32(value)
	n := 0
	for {
		if uval&^uint32(0x7F) == 0 {
			buf[n] = byte(uval)
			return n + 1
		}
		buf[n] = byte(uval&0x7F) | 0x80
		n++
		uval >>= 7
	}
}

// WriteInt32 writes value to w as a VarInt.
func WriteInt32(w io.Writer, value int32) (int, error) {
	var buf [MaxInt32Bytes]byte
	n := PutInt32(buf[:], value)
	return w.Write(buf[:n])
}

// SizeInt32 returns the number of bytes PutInt32 would write for value.
func SizeInt32(value int32) int {
	uval := uint32(value)
	size := 1
	for uval&^uint32(0x7F) != 0 {
		uval >>= 7
		size++
	}
	return size
}

// ReadInt64 reads a signed 64-bit VarLong from r.
func ReadInt64(r io.Reader) (int64, int, error) {
	var result uint64
	var numRead int
	var buf [1]byte
	for {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, numRead, err
		}
		b := buf[0]
		result |= uint64(b&0x7F) << (7 * numRead)
		numRead++
		if numRead > MaxInt64Bytes {
			return 0, numRead, ErrTooBig
		}
		if b&0x80 == 0 {
			break
		}
	}
	return int64(result), numRead, nil
}

// PutInt64 encodes value into buf (at least MaxInt64Bytes long).
func PutInt64(buf []byte, value int64) int {
	uval := uint64(value)
	n := 0
	for {
		if uval&^uint64(0x7F) == 0 {
			buf[n] = byte(uval)
			return n + 1
		}
		buf[n] = byte(uval&0x7F) | 0x80
		n++
		uval >>= 7
	}
}

// WriteInt64 writes value to w as a VarLong.
func WriteInt64(w io.Writer, value int64) (int, error) {
	var buf [MaxInt64Bytes]byte
	n := PutInt64(buf[:], value)
	return w.Write(buf[:n])
}

// SizeInt64 returns the number of bytes PutInt64 would write for value.
func SizeInt64(value int64) int {
	uval := uint64(value)
	size := 1
	for uval&^uint64(0x7F) != 0 {
		uval >>= 7
		size++
	}
	return size
}
