package testutil

import (
	"steward/models"
)

// CreateTestAccount creates a test platform account for a user
func CreateTestAccount(platform models.Platform, platformID, username string, userID int64) *models.Account {
	return &models.Account{
		Platform:   platform,
		PlatformID: platformID,
		Username:   username,
		UserID:     userID,
	}
}

// CreateTestBadge creates a test badge with default values
func CreateTestBadge(name string) *models.Badge {
	return &models.Badge{
		Name:        name,
		Description: "A badge for testing",
	}
}

// CreateTestLedgerEntry creates a test ledger entry
func CreateTestLedgerEntry(userID int64, amount, balanceAfter int64, reason models.LedgerReason) *models.LedgerEntry {
	return &models.LedgerEntry{
		UserID:       userID,
		Amount:       amount,
		BalanceAfter: balanceAfter,
		Reason:       reason,
		Metadata: map[string]any{
			"test": true,
		},
	}
}
