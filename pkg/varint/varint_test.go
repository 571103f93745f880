package varint

import (
	"bytes"
	"testing"
)

func TestInt32RoundTrip(t *testing.T) {
	tests := []struct {
		value    int32
		expected []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7F}},
		{128, []byte{0x80, 0x01}},
		{255, []byte{0xFF, 0x01}},
		{25565, []byte{0xDD, 0xC7, 0x01}},
		{2097151, []byte{0xFF, 0xFF, 0x7F}},
		{2147483647, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x07}},
		{-1, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x0F}},
		{-2147483648, []byte{0x80, 0x80, 0x80, 0x80, 0x08}},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		if _, err := WriteInt32(&buf, tt.value); err != nil {
			t.Fatalf("WriteInt32(%d) error: %v", tt.value, err)
		}
		if !bytes.Equal(buf.Bytes(), tt.expected) {
			t.Errorf("WriteInt32(%d) = %v, want %v", tt.value, buf.Bytes(), tt.expected)
		}
		if got := SizeInt32(tt.value); got != len(tt.expected) {
			t.Errorf("SizeInt32(%d) = %d, want %d", tt.value, got, len(tt.expected))
		}

		val, n, err := ReadInt32(bytes.NewReader(tt.expected))
		if err != nil {
			t.Fatalf("ReadInt32(%d) error: %v", tt.value, err)
		}
		if val != tt.value {
			t.Errorf("ReadInt32 = %d, want %d", val, tt.value)
		}
		if n != len(tt.expected) {
			t.Errorf("ReadInt32 bytesConsumed = %d, want %d", n, len(tt.expected))
		}
	}
}

func TestInt32RoundTripSamples(t *testing.T) {
	samples := []int32{0, 1, -1, 42, -42, 1 << 20, -(1 << 20), 1<<31 - 1, -(1 << 31)}
	for _, v := range samples {
		var buf bytes.Buffer
		WriteInt32(&buf, v)
		got, _, err := ReadInt32(bytes.NewReader(buf.Bytes()))
		if err != nil {
			t.Fatalf("round trip %d: %v", v, err)
		}
		if got != v {
			t.Errorf("round trip %d: got %d", v, got)
		}
	}
}

func TestInt32TooBig(t *testing.T) {
	// Six continuation bytes with no terminator.
	data := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
	_, _, err := ReadInt32(bytes.NewReader(data))
	if err != ErrTooBig {
		t.Fatalf("expected ErrTooBig, got %v", err)
	}
}

func TestInt32Truncated(t *testing.T) {
	data := []byte{0x80} // continuation flag set, nothing follows
	_, _, err := ReadInt32(bytes.NewReader(data))
	if err == nil {
		t.Fatal("expected error on truncated varint")
	}
}

func TestInt64RoundTrip(t *testing.T) {
	samples := []int64{0, 1, -1, 1 << 40, -(1 << 40), 1<<63 - 1, -(1 << 63)}
	for _, v := range samples {
		var buf bytes.Buffer
		WriteInt64(&buf, v)
		if got := SizeInt64(v); got != buf.Len() {
			t.Errorf("SizeInt64(%d) = %d, want %d", v, got, buf.Len())
		}
		got, n, err := ReadInt64(bytes.NewReader(buf.Bytes()))
		if err != nil {
			t.Fatalf("round trip %d: %v", v, err)
		}
		if got != v {
			t.Errorf("round trip %d: got %d", v, got)
		}
		if n != buf.Len() {
			t.Errorf("bytesConsumed = %d, want %d", n, buf.Len())
		}
	}
}

func TestInt64TooBig(t *testing.T) {
	data := make([]byte, 11)
	for i := range data {
		data[i] = 0xFF
	}
	_, _, err := ReadInt64(bytes.NewReader(data))
	if err != ErrTooBig {
		t.Fatalf("expected ErrTooBig, got %v", err)
	}
}
