package utils // package utils provides helper functions for token creation and hashing

import (
	"crypto/rand"  // secure random number generation
	"encoding/hex" // hex encoding of random bytes
)

// RandomHex returns a hex‑encoded string generated from n bytes of
// cryptographically secure random data.  Auth, refresh, reset and play
// session tokens are all produced this way: the resulting string carries
// no information and is only meaningful as a database lookup key.
func RandomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
