package utils

import (
	"crypto/rand"
	"fmt"
	"time"
)

// accountNumberAlphabet leaves out characters clerks misread over the phone (0/O, 1/I).
const accountNumberAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

// GenerateAccountNumber returns a human-readable credit account number such as
// "CR-202603-7KQ2XM". Uniqueness is enforced by the store; callers retry on a clash.
func GenerateAccountNumber(now time.Time, suffixLen int) (string, error) {
	if suffixLen <= 0 {
		return "", fmt.Errorf("suffixLen must be positive")
	}
	b := make([]byte, suffixLen)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	for i := range b {
		b[i] = accountNumberAlphabet[int(b[i])%len(accountNumberAlphabet)]
	}
	return fmt.Sprintf("CR-%s-%s", now.UTC().Format("200601"), b), nil
}
