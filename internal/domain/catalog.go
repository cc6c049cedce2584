package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CatalogProduct is a storefront product as seen by pricing and cost reconciliation.
// Percentage fields are nullable; a NULL value means "use the store default".
type CatalogProduct struct {
	ID            int64               `json:"id" db:"id"`
	Name          string              `json:"name" db:"name"`
	Cost          decimal.Decimal     `json:"cost" db:"cost"`
	ExternalCode  string              `json:"external_code" db:"external_code"`
	MarginPercent decimal.NullDecimal `json:"margin_percent" db:"margin_percent"`
	Interest6     decimal.NullDecimal `json:"interest_6" db:"interest_6"`
	Interest12    decimal.NullDecimal `json:"interest_12" db:"interest_12"`
	Interest15    decimal.NullDecimal `json:"interest_15" db:"interest_15"`
	Interest18    decimal.NullDecimal `json:"interest_18" db:"interest_18"`
	Stock         int                 `json:"stock" db:"stock"`
	Category      string              `json:"category" db:"category"`
	Location      string              `json:"location" db:"location"`
	CreatedAt     time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at" db:"updated_at"`
}

// ProductUpdate carries the two fields a cost-list import may change.
// A nil ExternalCode leaves the stored code untouched.
type ProductUpdate struct {
	Cost         decimal.Decimal
	ExternalCode *string
}

// NewProduct is the insert payload for products created from a cost list.
type NewProduct struct {
	Name          string
	Cost          decimal.Decimal
	ExternalCode  string
	Stock         int
	Category      string
	Location      string
	MarginPercent decimal.Decimal
	Interest6     decimal.Decimal
	Interest12    decimal.Decimal
	Interest15    decimal.Decimal
	Interest18    decimal.Decimal
}
