package protocol

import (
	"crypto/md5"

	"github.com/google/uuid"
)

// OfflineUUID derives the version-3 name-based UUID a vanilla-compatible
// server assigns an offline-mode player: MD5 over "OfflinePlayer:<username>",
// with the version nibble forced to 3 and the variant bits to IETF form.
//
// uuid.NewMD5 hashes a namespace UUID together with the name, which is not
// what offline-mode derivation does (no namespace is mixed in), so the sum
// is computed directly and only the resulting bytes are handed to uuid.UUID.
func OfflineUUID(username string) uuid.UUID {
	sum := md5.Sum([]byte("OfflinePlayer:" + username))
	sum[6] = (sum[6] & 0x0F) | 0x30
	sum[8] = (sum[8] & 0x3F) | 0x80
	var u uuid.UUID
	copy(u[:], sum[:])
	return u
}
