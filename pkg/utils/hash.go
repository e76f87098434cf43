package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// PhoneFingerprint returns a short SHA-256 prefix of a phone number so logs
// can correlate a user without carrying the number itself. The leading "+"
// is ignored, so "+1555" and "1555" fingerprint the same.
func PhoneFingerprint(phone string) string {
	sum := sha256.Sum256([]byte(strings.TrimPrefix(strings.TrimSpace(phone), "+")))
	return hex.EncodeToString(sum[:])[:12]
}
