package nbt

import (
	"bytes"
	"testing"
)

// buildNamedCompound builds a minimal well-formed named root compound:
// one TagString field "a" -> "hi", terminated.
func buildNamedCompound(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteByte(TagCompound)
	buf.Write([]byte{0x00, 0x04, 'r', 'o', 'o', 't'}) // root name "root"

	buf.WriteByte(TagString)
	buf.Write([]byte{0x00, 0x01, 'a'}) // field name "a"
	buf.Write([]byte{0x00, 0x02, 'h', 'i'})

	buf.WriteByte(TagEnd)
	return buf.Bytes()
}

func buildNamelessCompoundWithList(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteByte(TagCompound)

	buf.WriteByte(TagList)
	buf.Write([]byte{0x00, 0x05, 'n', 'u', 'm', 's', '!'})
	buf.WriteByte(TagInt)
	buf.Write([]byte{0x00, 0x00, 0x00, 0x02}) // 2 elements
	buf.Write([]byte{0x00, 0x00, 0x00, 0x01})
	buf.Write([]byte{0x00, 0x00, 0x00, 0x02})

	buf.WriteByte(TagCompound)
	buf.Write([]byte{0x00, 0x04, 'n', 'e', 's', 't'})
	buf.WriteByte(TagByte)
	buf.Write([]byte{0x00, 0x01, 'x'})
	buf.WriteByte(0x07)
	buf.WriteByte(TagEnd) // end nested compound

	buf.WriteByte(TagEnd) // end root
	return buf.Bytes()
}

func TestSkipRootNamedConsumesExactLength(t *testing.T) {
	data := buildNamedCompound(t)
	// Append trailing bytes that must NOT be consumed.
	trailer := []byte{0xAA, 0xBB, 0xCC}
	full := append(append([]byte{}, data...), trailer...)

	n, err := SkipRoot(bytes.NewReader(full), true)
	if err != nil {
		t.Fatalf("SkipRoot error: %v", err)
	}
	if n != int64(len(data)) {
		t.Errorf("consumed %d, want %d", n, len(data))
	}
}

func TestSkipRootNamelessWithListAndNestedCompound(t *testing.T) {
	data := buildNamelessCompoundWithList(t)
	n, err := SkipRoot(bytes.NewReader(data), false)
	if err != nil {
		t.Fatalf("SkipRoot error: %v", err)
	}
	if n != int64(len(data)) {
		t.Errorf("consumed %d, want %d", n, len(data))
	}
}

func TestSkipRootCorruptedPrefixFails(t *testing.T) {
	data := buildNamedCompound(t)
	// Truncate mid-payload: cut off inside the length prefix of the string "hi".
	truncated := data[:len(data)-4]

	_, err := SkipRoot(bytes.NewReader(truncated), true)
	if err == nil {
		t.Fatal("expected error on truncated tree")
	}
}

func TestSkipRootWrongRootTagFails(t *testing.T) {
	data := []byte{TagInt, 0x00, 0x00, 0x00, 0x01}
	_, err := SkipRoot(bytes.NewReader(data), false)
	if err != ErrMalformed {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestSkipRootAllScalarTags(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(TagCompound)

	write := func(tag byte, name string, payload []byte) {
		buf.WriteByte(tag)
		buf.WriteByte(0x00)
		buf.WriteByte(byte(len(name)))
		buf.WriteString(name)
		buf.Write(payload)
	}
	write(TagByte, "a", []byte{0x01})
	write(TagShort, "b", []byte{0x00, 0x02})
	write(TagInt, "c", []byte{0, 0, 0, 3})
	write(TagLong, "d", make([]byte, 8))
	write(TagFloat, "e", []byte{0, 0, 0, 0})
	write(TagDouble, "f", make([]byte, 8))
	write(TagByteArray, "g", append([]byte{0, 0, 0, 2}, 1, 2))
	write(TagIntArray, "h", append([]byte{0, 0, 0, 1}, 0, 0, 0, 9))
	write(TagLongArray, "i", append([]byte{0, 0, 0, 1}, make([]byte, 8)...))

	buf.WriteByte(TagEnd)

	n, err := SkipRoot(bytes.NewReader(buf.Bytes()), false)
	if err != nil {
		t.Fatalf("SkipRoot error: %v", err)
	}
	if n != int64(buf.Len()) {
		t.Errorf("consumed %d, want %d", n, buf.Len())
	}
}
