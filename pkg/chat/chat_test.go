package chat

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestFlattenConcatenatesExtra(t *testing.T) {
	msg := Message{
		Text:  "Kicked: ",
		Extra: []Message{{Text: "spam protection", Color: "red"}},
	}
	if got := msg.Flatten(); got != "Kicked: spam protection" {
		t.Errorf("Flatten() = %q", got)
	}
}

func TestDecodeReasonPlainJSON(t *testing.T) {
	got := DecodeReason([]byte(`{"text":"Server restarting"}`), false)
	if got != "Server restarting" {
		t.Errorf("DecodeReason(json) = %q", got)
	}
}

func TestDecodeReasonInvalidJSONFallsBackToRaw(t *testing.T) {
	raw := []byte("not json at all")
	if got := DecodeReason(raw, false); got != string(raw) {
		t.Errorf("DecodeReason(invalid json) = %q, want raw passthrough", got)
	}
}

// nbtStringCompound builds a named root compound with a single TagString
// field, matching SkipRoot(r, named=true)'s expected shape.
func nbtStringCompound(fieldName, value string) []byte {
	var b bytes.Buffer
	b.WriteByte(0x0A) // TagCompound
	writeU16Name(&b, "") // root name: empty string

	b.WriteByte(0x08) // TagString
	writeU16Name(&b, fieldName)
	writeU16String(&b, value)

	b.WriteByte(0x00) // TagEnd
	return b.Bytes()
}

func writeU16Name(b *bytes.Buffer, s string) {
	var lenBuf [2]byte
	binary.BigEndian.PutUint16(lenBuf[:], uint16(len(s)))
	b.Write(lenBuf[:])
	b.WriteString(s)
}

func writeU16String(b *bytes.Buffer, s string) {
	writeU16Name(b, s)
}

func TestDecodeReasonNBTEncodedRecoversText(t *testing.T) {
	raw := nbtStringCompound("text", "Connection lost")
	raw = append(raw, 0xFF, 0xFF, 0xFF) // trailing garbage past the root's span

	got := DecodeReason(raw, true)
	if got != "text Connection lost" && got != "Connection lost" {
		t.Errorf("DecodeReason(nbt) = %q, want it to contain the string payload", got)
	}
}

func TestDecodeReasonMalformedNBTFallsBackToWholeBuffer(t *testing.T) {
	raw := []byte{0x01, 'h', 'i', 0x00}
	// Not a valid compound tree (tag 0x01 is TagByte, not TagCompound), so
	// SkipRoot fails and the whole buffer is scanned for printable runs.
	got := DecodeReason(raw, true)
	if got != "hi" {
		t.Errorf("DecodeReason(malformed) = %q, want %q", got, "hi")
	}
}
