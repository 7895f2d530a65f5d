package domain

import "github.com/shopspring/decimal"

// RankedID is one row of a top-N ranking.
type RankedID struct {
	ID    string          `json:"id"`
	Value decimal.Decimal `json:"value"`
}

// Customer pairs a bank customer with the account it owns.
type Customer struct {
	OwnerID   string `json:"owner_id"`
	AccountID string `json:"account_id"`
}

// LoyalCustomer is the buyer who spent most with a seller.
type LoyalCustomer struct {
	BuyerID string          `json:"buyer_id"`
	Total   decimal.Decimal `json:"total"`
}
