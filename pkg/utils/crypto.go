package utils

import (
	"crypto/hmac"
	"crypto/md5" //nolint:gosec // exposed as a checksum helper, not for security
	"crypto/sha1" //nolint:gosec // exposed as a checksum helper, not for security
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// CreateWebhookSignature returns the hex-encoded HMAC-SHA256 of payload keyed by secret.
func CreateWebhookSignature(payload, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyWebhookSignature recomputes the signature of payload and compares it
// with signature in constant time. The comparison is on the hex text, so an
// upper-case signature does not match.
func VerifyWebhookSignature(payload, signature, secret string) bool {
	expected := CreateWebhookSignature(payload, secret)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}

// SHA256 returns the hex-encoded SHA-256 digest of data.
func SHA256(data string) string {
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

// SHA1 returns the hex-encoded SHA-1 digest of data.
func SHA1(data string) string {
	sum := sha1.Sum([]byte(data)) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

// MD5 returns the hex-encoded MD5 digest of data.
func MD5(data string) string {
	sum := md5.Sum([]byte(data)) //nolint:gosec
	return hex.EncodeToString(sum[:])
}
