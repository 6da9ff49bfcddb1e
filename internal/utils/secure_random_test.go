package utils_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamila-bank/backoffice-api/internal/utils"
)

func TestGenerateTransactionNumber(t *testing.T) {
	now := time.Date(2025, time.March, 15, 10, 30, 0, 0, time.UTC)

	number, err := utils.GenerateTransactionNumber(now)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^TXN-20250315-[0-9A-F]{4}$`), number)
}

func TestGenerateAccountNumber(t *testing.T) {
	now := time.Date(2025, time.March, 15, 10, 30, 0, 0, time.UTC)

	number, err := utils.GenerateAccountNumber(now)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^C-20250315-[0-9A-F]{4}$`), number)
}

func TestGenerateSecureRandomString(t *testing.T) {
	s, err := utils.GenerateSecureRandomString(16)
	require.NoError(t, err)
	assert.Len(t, s, 32)

	_, err = utils.GenerateSecureRandomString(0)
	assert.Error(t, err)
}
