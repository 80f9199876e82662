package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// Prefix is prepended to the hex digest in the x-hub-signature-256 header
const Prefix = "sha256="

// Sign returns "sha256=<hex hmac>" of payload under secret
func Sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return Prefix + hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether header carries the sha256 HMAC of rawBody under secret.
// An empty header never verifies. Callers that have no secret configured skip
// verification instead of calling Verify.
func Verify(rawBody []byte, header string, secret string) bool {
	if header == "" {
		return false
	}

	expected := Sign(secret, rawBody)
	if len(expected) != len(header) {
		return false
	}

	return hmac.Equal([]byte(expected), []byte(header))
}

// EqualToken compares two opaque tokens in constant time
func EqualToken(got, want string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
