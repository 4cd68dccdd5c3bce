package cryptox

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// PairingCodeLength is the length of the short human-entered pairing code.
const PairingCodeLength = 6

// pairingCodeCharset deliberately excludes lowercase letters; codes are
// normalized to upper case on input so users never have to care about case.
const pairingCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GeneratePairingCode returns a random 6-character code drawn from A-Z0-9.
func GeneratePairingCode() (string, error) {
	var sb strings.Builder
	sb.Grow(PairingCodeLength)
	max := big.NewInt(int64(len(pairingCodeCharset)))
	for range PairingCodeLength {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate pairing code: %w", err)
		}
		sb.WriteByte(pairingCodeCharset[n.Int64()])
	}
	return sb.String(), nil
}

// NormalizePairingCode upper-cases and trims a user-entered code. It returns
// false if the result is not exactly PairingCodeLength characters from the
// code charset.
func NormalizePairingCode(code string) (string, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != PairingCodeLength {
		return "", false
	}
	for i := range len(code) {
		if !strings.ContainsRune(pairingCodeCharset, rune(code[i])) {
			return "", false
		}
	}
	return code, true
}
