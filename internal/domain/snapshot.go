package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrUnsupportedSnapshot indicates a snapshot written with an unknown schema version.
	ErrUnsupportedSnapshot = errors.New("unsupported snapshot version")
	// ErrSnapshotNotFound indicates that the store holds no snapshot yet.
	ErrSnapshotNotFound = errors.New("snapshot not found")
)

// SnapshotVersion is the schema version written by this build.
const SnapshotVersion = 1

// AccountRecord is the persisted form of an account.
type AccountRecord struct {
	AccountID string          `yaml:"account_id"`
	OwnerID   string          `yaml:"owner_id"`
	Balance   decimal.Decimal `yaml:"balance"`
}

// EntryRecord is the persisted form of a journal entry.
type EntryRecord struct {
	AccountID     string          `yaml:"account_id"`
	Seq           int             `yaml:"seq"`
	TransactionID string          `yaml:"transaction_id"`
	Timestamp     time.Time       `yaml:"timestamp"`
	Amount        decimal.Decimal `yaml:"amount"`
	Kind          EntryKind       `yaml:"kind"`
}

// TransactionRecord is the persisted form of a market transaction.
//
// The timestamp is split into epoch seconds and the nanoseconds within that
// second, so a restored transaction keeps its order against journal entries.
type TransactionRecord struct {
	TransactionID         string          `yaml:"transaction_id"`
	ItemID                string          `yaml:"item_id"`
	BuyerID               string          `yaml:"buyer_id"`
	SellerID              string          `yaml:"seller_id"`
	Amount                decimal.Decimal `yaml:"amount"`
	Quantity              int32           `yaml:"quantity"`
	TimestampEpochSeconds int64           `yaml:"timestamp"`
	TimestampNanos        int32           `yaml:"timestamp_nanos"`
	StatusCode            int             `yaml:"status"`
}

// UserRecord is the persisted form of a user. Order ids are rebuilt from transactions.
type UserRecord struct {
	UserID    string    `yaml:"user_id"`
	Username  string    `yaml:"username"`
	Role      Role      `yaml:"role"`
	CreatedAt time.Time `yaml:"created_at"`
}

// Snapshot is the versioned export consumed by persistence stores.
type Snapshot struct {
	Version      int                 `yaml:"version"`
	TakenAt      time.Time           `yaml:"taken_at"`
	Users        []UserRecord        `yaml:"users"`
	Items        []Item              `yaml:"items"`
	Accounts     []AccountRecord     `yaml:"accounts"`
	Entries      []EntryRecord       `yaml:"entries"`
	Transactions []TransactionRecord `yaml:"transactions"`
}

// NewTransactionRecord converts a transaction into its persisted form.
func NewTransactionRecord(t MarketTransaction) TransactionRecord {
	return TransactionRecord{
		TransactionID:         t.ID,
		ItemID:                t.ItemID,
		BuyerID:               t.BuyerID,
		SellerID:              t.SellerID,
		Amount:                t.Amount,
		Quantity:              t.Quantity,
		TimestampEpochSeconds: t.Timestamp.Unix(),
		TimestampNanos:        int32(t.Timestamp.Nanosecond()),
		StatusCode:            int(t.Status),
	}
}

// Transaction converts the record back into a transaction.
func (r TransactionRecord) Transaction() (MarketTransaction, error) {
	status := TransactionStatus(r.StatusCode)
	if !status.Valid() {
		return MarketTransaction{}, ErrInvalidStatus
	}

	if r.TimestampNanos < 0 || r.TimestampNanos >= int32(time.Second) {
		return MarketTransaction{}, ErrCorruptSnapshot
	}

	return MarketTransaction{
		ID:        r.TransactionID,
		ItemID:    r.ItemID,
		BuyerID:   r.BuyerID,
		SellerID:  r.SellerID,
		Amount:    r.Amount,
		Quantity:  r.Quantity,
		Timestamp: time.Unix(r.TimestampEpochSeconds, int64(r.TimestampNanos)).UTC(),
		Status:    status,
	}, nil
}
