package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MealType groups foods into breakfast/lunch/dinner style buckets.
type MealType struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Cuisine is an optional food classification.
type Cuisine struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

type Food struct {
	ID         int64           `json:"id" db:"id"`
	Name       string          `json:"name" db:"name"`
	Calories   string          `json:"calories" db:"calories"`
	Image      string          `json:"image" db:"image"`
	Price      decimal.Decimal `json:"price" db:"price"`
	MealTypeID int64           `json:"mealTypeId" db:"meal_type_id"`
	CuisineID  *int64          `json:"cuisineId" db:"cuisine_id"`
	CreatedAt  time.Time       `json:"createdAt" db:"created_at"`

	MealType *MealType `json:"mealType,omitempty"`
	Cuisine  *Cuisine  `json:"cuisine,omitempty"`
}
