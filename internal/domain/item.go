package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrItemNotFound indicates that the item is not found.
	ErrItemNotFound = errors.New("item not found")
	// ErrInsufficientStock indicates that the item stock does not cover the quantity.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Item holds a seller's stock of one product.
type Item struct {
	ID       string          `json:"id" yaml:"id"`
	SellerID string          `json:"seller_id" yaml:"seller_id"`
	Name     string          `json:"name" yaml:"name"`
	Price    decimal.Decimal `json:"price" yaml:"price"`
	Stock    int32           `json:"stock" yaml:"stock"`
}

// CreateItemParams is the input data to register an item.
type CreateItemParams struct {
	SellerID string
	Name     string
	Price    decimal.Decimal
	Stock    int32
}
