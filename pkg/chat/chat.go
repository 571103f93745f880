package chat

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode"

	"github.com/StoreStation/vibebot/pkg/nbt"
)

// Message represents a Minecraft JSON chat message.
type Message struct {
	Text          string    `json:"text"`
	Bold          bool      `json:"bold,omitempty"`
	Italic        bool      `json:"italic,omitempty"`
	Underlined    bool      `json:"underlined,omitempty"`
	Strikethrough bool      `json:"strikethrough,omitempty"`
	Obfuscated    bool      `json:"obfuscated,omitempty"`
	Color         string    `json:"color,omitempty"`
	Extra         []Message `json:"extra,omitempty"`
}

// Flatten concatenates a message and its Extra children into one plain
// string, discarding all formatting.
func (m Message) Flatten() string {
	var b strings.Builder
	b.WriteString(m.Text)
	for _, e := range m.Extra {
		b.WriteString(e.Flatten())
	}
	return b.String()
}

// DecodeReason renders a disconnect reason as a best-effort UTF-8 string.
// Login and configuration carry it as a plain JSON-chat string; play
// carries it as a network-NBT compound with no JSON structure to parse.
// Rather than fully decode the tree, the tag bytes are skipped to find its
// length and the printable runs within that span are kept, which is
// enough to recover the human-readable text a disconnect reason carries.
func DecodeReason(raw []byte, nbtEncoded bool) string {
	if !nbtEncoded {
		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			return string(raw)
		}
		return msg.Flatten()
	}

	n, err := nbt.SkipRoot(bytes.NewReader(raw), true)
	if err != nil || n <= 0 {
		n = int64(len(raw))
	}
	return printableRuns(raw[:min64(n, int64(len(raw)))])
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

// printableRuns keeps maximal runs of printable runes at least two
// characters long, which in practice recovers a chat message's words
// while dropping the surrounding tag/length bytes of its NBT envelope.
func printableRuns(b []byte) string {
	var out strings.Builder
	var run []rune
	flush := func() {
		if len(run) >= 2 {
			out.WriteString(string(run))
			out.WriteByte(' ')
		}
		run = run[:0]
	}
	for _, r := range string(b) {
		if unicode.IsPrint(r) && r < unicode.MaxASCII {
			run = append(run, r)
			continue
		}
		flush()
	}
	flush()
	return strings.TrimSpace(out.String())
}
