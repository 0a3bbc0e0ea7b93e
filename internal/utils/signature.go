package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignBody computes the hex-encoded HMAC-SHA256 of body under secret.
// The signature is computed over the exact bytes received, never over a
// re-serialized form.
func SignBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether provided is a valid hex HMAC-SHA256 of
// body under secret. The comparison runs in constant time. Hex case is
// ignored; malformed hex never verifies.
func VerifySignature(secret string, body []byte, provided string) bool {
	got, err := hex.DecodeString(provided)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	want := mac.Sum(nil)

	return hmac.Equal(want, got)
}
