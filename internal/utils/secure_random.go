package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// GenerateSecureRandomString generates a cryptographically secure random string of the specified byte length,
// then hex encodes it. For example, lengthInBytes=32 will result in a 64-character hex string.
func GenerateSecureRandomString(lengthInBytes int) (string, error) {
	if lengthInBytes <= 0 {
		return "", fmt.Errorf("lengthInBytes must be positive")
	}
	b := make([]byte, lengthInBytes)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

const (
	transactionNumberPrefix = "TXN"
	accountNumberPrefix     = "C"
)

// randomSuffix returns a 4-character uppercase hex suffix for human-facing numbers.
func randomSuffix() (string, error) {
	s, err := GenerateSecureRandomString(2)
	if err != nil {
		return "", err
	}
	return strings.ToUpper(s), nil
}

// GenerateTransactionNumber builds a human-facing number of the form
// TXN-<yyyymmdd>-<RAND4>. Uniqueness is enforced by the database; callers
// retry on duplicates.
func GenerateTransactionNumber(now time.Time) (string, error) {
	suffix, err := randomSuffix()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%s", transactionNumberPrefix, now.Format("20060102"), suffix), nil
}

// GenerateAccountNumber builds a human-facing number of the form
// C-<yyyymmdd>-<RAND4>, unique under the same database constraint discipline.
func GenerateAccountNumber(now time.Time) (string, error) {
	suffix, err := randomSuffix()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%s", accountNumberPrefix, now.Format("20060102"), suffix), nil
}
