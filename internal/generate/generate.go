// Package generate produces random strings for session keys and test fixtures.
package generate

import (
	"crypto/rand"
	"fmt"
	mathrand "math/rand"
	"sync"
	"time"
)

const (
	CharsetAlphaNumeric = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	CharsetNumbers      = "0123456789"
)

// CryptoRandom returns a string of n characters chosen uniformly from charset
// using crypto/rand. charset must contain between 1 and 256 bytes.
func CryptoRandom(n int, charset string) (string, error) {
	if n <= 0 {
		return "", nil
	}
	if len(charset) == 0 || len(charset) > 256 {
		return "", fmt.Errorf("charset must contain between 1 and 256 characters, got %d", len(charset))
	}

	// bytes at or above limit are discarded so every character is equally likely
	limit := 256 - (256 % len(charset))

	result := make([]byte, 0, n)
	buf := make([]byte, n*2)
	for len(result) < n {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("couldn't generate random string of len %d: %w", n, err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			result = append(result, charset[int(b)%len(charset)])
			if len(result) == n {
				break
			}
		}
	}

	return string(result), nil
}

var (
	mathSource   = mathrand.New(mathrand.NewSource(time.Now().UnixNano())) //nolint:gosec
	mathSourceMu sync.Mutex
)

// MathRandom generates a random string that does not need to be cryptographically secure.
func MathRandom(n int, charset string) string {
	if n <= 0 {
		return ""
	}

	mathSourceMu.Lock()
	defer mathSourceMu.Unlock()

	result := make([]byte, n)
	for i := range result {
		result[i] = charset[mathSource.Intn(len(charset))]
	}
	return string(result)
}
