// Package id generates the prefixed public identifiers exposed to the payment
// gateway and API clients (for example "inv_4fQk2ZpR9mXa").
package id

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// Base62 alphabet: 0-9, A-Z, a-z
const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

const DefaultLength = 12

const (
	PrefixInvoice = "inv"
	PrefixRefund  = "rfd"
)

// Generate creates a cryptographically random Base62 string.
func Generate(length int) (string, error) {
	if length <= 0 {
		length = DefaultLength
	}

	result := make([]byte, length)
	max := big.NewInt(int64(len(alphabet)))
	for i := range result {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}
		result[i] = alphabet[n.Int64()]
	}
	return string(result), nil
}

func GenerateWithPrefix(prefix string) (string, error) {
	s, err := Generate(DefaultLength)
	if err != nil {
		return "", err
	}
	return prefix + "_" + s, nil
}

func NewInvoiceSID() (string, error) {
	return GenerateWithPrefix(PrefixInvoice)
}

func NewRefundSID() (string, error) {
	return GenerateWithPrefix(PrefixRefund)
}

// HasPrefix reports whether sid is a well-formed identifier with the given prefix.
func HasPrefix(sid, prefix string) bool {
	p, rest, ok := strings.Cut(sid, "_")
	if !ok || p != prefix || len(rest) != DefaultLength {
		return false
	}
	for i := 0; i < len(rest); i++ {
		if !strings.ContainsRune(alphabet, rune(rest[i])) {
			return false
		}
	}
	return true
}
