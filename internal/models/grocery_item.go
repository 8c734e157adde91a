package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type GroceryItem struct {
	ID         int64           `json:"id" db:"id"`
	Name       string          `json:"name" db:"name"`
	Unit       string          `json:"unit" db:"unit"`
	CalPerUnit string          `json:"calPerUnit" db:"cal_per_unit"`
	Image      *string         `json:"image" db:"image"`
	Price      decimal.Decimal `json:"price" db:"price"`
	CreatedAt  time.Time       `json:"createdAt" db:"created_at"`
}
