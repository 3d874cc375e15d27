package economy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whatsbot/models"
	"whatsbot/service"
)

func TestParseAmount(t *testing.T) {
	t.Run("plain number", func(t *testing.T) {
		n, all, err := parseAmount([]string{"250"}, false)
		require.NoError(t, err)
		assert.False(t, all)
		assert.Equal(t, int64(250), n)
	})

	t.Run("number with separators", func(t *testing.T) {
		n, _, err := parseAmount([]string{"1,500"}, false)
		require.NoError(t, err)
		assert.Equal(t, int64(1500), n)
	})

	t.Run("skips mention and finds amount", func(t *testing.T) {
		n, _, err := parseAmount([]string{"@491701234567", "500"}, false)
		require.NoError(t, err)
		assert.Equal(t, int64(500), n)
	})

	t.Run("skips bare phone number", func(t *testing.T) {
		n, _, err := parseAmount([]string{"491701234567", "500"}, false)
		require.NoError(t, err)
		assert.Equal(t, int64(500), n)
	})

	t.Run("all keyword", func(t *testing.T) {
		_, all, err := parseAmount([]string{"ALL"}, true)
		require.NoError(t, err)
		assert.True(t, all)
	})

	t.Run("all rejected where not allowed", func(t *testing.T) {
		_, _, err := parseAmount([]string{"all"}, false)
		var validationErr *service.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})

	t.Run("zero rejected", func(t *testing.T) {
		_, _, err := parseAmount([]string{"0"}, false)
		var validationErr *service.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})

	t.Run("missing amount", func(t *testing.T) {
		_, _, err := parseAmount([]string{"hello"}, false)
		var validationErr *service.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})
}

func TestDescribeTransaction(t *testing.T) {
	cases := []struct {
		txn  *models.Transaction
		want string
	}{
		{&models.Transaction{Type: models.TransactionTypeWork, Details: map[string]any{"job": "barista"}}, "worked as barista"},
		{&models.Transaction{Type: models.TransactionTypeDaily}, "daily reward"},
		{&models.Transaction{Type: models.TransactionTypeTransferOut, Details: map[string]any{"to": "111@s.whatsapp.net"}}, "sent to @111"},
		{&models.Transaction{Type: models.TransactionTypeRobbed, Details: map[string]any{"by": "222@s.whatsapp.net"}}, "robbed by @222"},
		{&models.Transaction{Type: models.TransactionTypeGambleLoss}, "gamble lost"},
		{&models.Transaction{Type: models.TransactionTypeAdminAdd}, "admin adjustment"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, describeTransaction(tc.txn))
	}
}
