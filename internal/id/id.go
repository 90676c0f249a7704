package id

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateID creates a unique 24-character hex ID, the same shape as the
// _id values the web client already has stored.
func GenerateID() string {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand failed: " + err.Error())
	}
	return hex.EncodeToString(b)
}
