package repositories

import (
	"context"

	"mealmart/internal/models"
)

type GroceryRepository interface {
	Create(ctx context.Context, item *models.GroceryItem) error
	GetByID(ctx context.Context, id int64) (*models.GroceryItem, error)
	List(ctx context.Context) ([]*models.GroceryItem, error)
	SetImage(ctx context.Context, id int64, imageURL string) (bool, error)
}

type groceryRepo struct {
	db DB
}

func NewGroceryRepo(db DB) GroceryRepository {
	return &groceryRepo{db: db}
}

func (r *groceryRepo) Create(ctx context.Context, item *models.GroceryItem) error {
	query := `
		INSERT INTO grocery_items (name, unit, cal_per_unit, image, price, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`
	return r.db.QueryRow(ctx, query, item.Name, item.Unit, item.CalPerUnit, item.Image, item.Price).
		Scan(&item.ID, &item.CreatedAt)
}

func (r *groceryRepo) GetByID(ctx context.Context, id int64) (*models.GroceryItem, error) {
	item := &models.GroceryItem{}
	query := `SELECT id, name, unit, cal_per_unit, image, price, created_at FROM grocery_items WHERE id = $1`
	err := r.db.QueryRow(ctx, query, id).
		Scan(&item.ID, &item.Name, &item.Unit, &item.CalPerUnit, &item.Image, &item.Price, &item.CreatedAt)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *groceryRepo) List(ctx context.Context) ([]*models.GroceryItem, error) {
	query := `SELECT id, name, unit, cal_per_unit, image, price, created_at FROM grocery_items ORDER BY id`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.GroceryItem
	for rows.Next() {
		item := &models.GroceryItem{}
		if err := rows.Scan(&item.ID, &item.Name, &item.Unit, &item.CalPerUnit, &item.Image, &item.Price, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *groceryRepo) SetImage(ctx context.Context, id int64, imageURL string) (bool, error) {
	tag, err := r.db.Exec(ctx, `UPDATE grocery_items SET image = $2 WHERE id = $1`, id, imageURL)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
