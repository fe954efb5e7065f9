package utils

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
	"strings"
)

// RandomHex returns n random bytes hex-encoded.
func RandomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// RandomDigits returns a numeric code of length n.
func RandomDigits(n int) (string, error) {
	var sb strings.Builder
	ten := big.NewInt(10)
	for i := 0; i < n; i++ {
		d, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		sb.WriteByte(byte('0' + d.Int64()))
	}
	return sb.String(), nil
}

// GenerateOrderReference returns "ORD-" followed by ten lowercase hex
// characters.
func GenerateOrderReference() (string, error) {
	suffix, err := RandomHex(5)
	if err != nil {
		return "", err
	}
	return "ORD-" + suffix, nil
}
