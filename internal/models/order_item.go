package models

import (
	"github.com/shopspring/decimal"
)

// OrderItem is a line of an order. Exactly one of FoodID and GroceryItemID is
// set. Price is the unit price snapshotted at order time.
type OrderItem struct {
	ID            int64           `json:"id" db:"id"`
	OrderID       int64           `json:"orderId" db:"order_id"`
	FoodID        *int64          `json:"foodId" db:"food_id"`
	GroceryItemID *int64          `json:"groceryItemId" db:"grocery_item_id"`
	Quantity      int             `json:"quantity" db:"quantity"`
	Price         decimal.Decimal `json:"price" db:"price"`

	Food        *Food        `json:"food,omitempty"`
	GroceryItem *GroceryItem `json:"groceryItem,omitempty"`
}

// Subtotal is the line total, unit price times quantity.
func (i *OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
