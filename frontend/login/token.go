package login

import (
	"crypto/rand"
	"encoding/hex"
)

// newSessionToken returns 32 random bytes hex-encoded. The token doubles as
// the session primary key, so collisions must be negligible.
func newSessionToken() string {
	buf := make([]byte, 32)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
