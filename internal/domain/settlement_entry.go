package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SettlementEntry is the immutable record of one settled transfer request.
// At most one entry ever exists per request.
type SettlementEntry struct {
	ID            string
	RequestID     string
	FromAccountID string
	ToAccountID   string
	Amount        decimal.Decimal
	DateSettled   time.Time
}
