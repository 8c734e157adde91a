package repositories

import (
	"context"

	"mealmart/internal/models"
)

// FoodFilter narrows the catalog listing. Empty fields match everything.
type FoodFilter struct {
	MealType string
	Cuisine  string
}

type FoodRepository interface {
	Create(ctx context.Context, food *models.Food) error
	GetByID(ctx context.Context, id int64) (*models.Food, error)
	ListFiltered(ctx context.Context, filter FoodFilter) ([]*models.Food, error)
	GetMealTypeByName(ctx context.Context, name string) (*models.MealType, error)
	GetCuisineByName(ctx context.Context, name string) (*models.Cuisine, error)
	ListMealTypes(ctx context.Context) ([]*models.MealType, error)
	ListCuisines(ctx context.Context) ([]*models.Cuisine, error)
	UpsertMealType(ctx context.Context, name string) (*models.MealType, error)
	UpsertCuisine(ctx context.Context, name string) (*models.Cuisine, error)
	SetImage(ctx context.Context, id int64, imageURL string) (bool, error)
}

type foodRepo struct {
	db DB
}

func NewFoodRepo(db DB) FoodRepository {
	return &foodRepo{db: db}
}

func (r *foodRepo) Create(ctx context.Context, food *models.Food) error {
	query := `
		INSERT INTO foods (name, calories, image, price, meal_type_id, cuisine_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, created_at
	`
	return r.db.QueryRow(ctx, query, food.Name, food.Calories, food.Image, food.Price, food.MealTypeID, food.CuisineID).
		Scan(&food.ID, &food.CreatedAt)
}

const foodSelect = `
	SELECT f.id, f.name, f.calories, f.image, f.price, f.meal_type_id, f.cuisine_id, f.created_at,
	       m.id, m.name
	FROM foods f
	JOIN meal_types m ON m.id = f.meal_type_id
`

func scanFood(row interface{ Scan(dest ...any) error }) (*models.Food, error) {
	food := &models.Food{MealType: &models.MealType{}}
	err := row.Scan(
		&food.ID, &food.Name, &food.Calories, &food.Image, &food.Price, &food.MealTypeID, &food.CuisineID, &food.CreatedAt,
		&food.MealType.ID, &food.MealType.Name,
	)
	if err != nil {
		return nil, err
	}
	return food, nil
}

func (r *foodRepo) GetByID(ctx context.Context, id int64) (*models.Food, error) {
	return scanFood(r.db.QueryRow(ctx, foodSelect+` WHERE f.id = $1`, id))
}

func (r *foodRepo) ListFiltered(ctx context.Context, filter FoodFilter) ([]*models.Food, error) {
	query := foodSelect + ` WHERE 1=1`
	var args []any
	if filter.MealType != "" {
		args = append(args, filter.MealType)
		query += ` AND m.name = $1`
	}
	if filter.Cuisine != "" {
		args = append(args, filter.Cuisine)
		if len(args) == 1 {
			query += ` AND f.cuisine_id = (SELECT id FROM cuisines WHERE name = $1)`
		} else {
			query += ` AND f.cuisine_id = (SELECT id FROM cuisines WHERE name = $2)`
		}
	}
	query += ` ORDER BY f.id`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var foods []*models.Food
	for rows.Next() {
		food, err := scanFood(rows)
		if err != nil {
			return nil, err
		}
		foods = append(foods, food)
	}
	return foods, rows.Err()
}

func (r *foodRepo) GetMealTypeByName(ctx context.Context, name string) (*models.MealType, error) {
	mt := &models.MealType{}
	err := r.db.QueryRow(ctx, `SELECT id, name FROM meal_types WHERE name = $1`, name).Scan(&mt.ID, &mt.Name)
	if err != nil {
		return nil, err
	}
	return mt, nil
}

func (r *foodRepo) GetCuisineByName(ctx context.Context, name string) (*models.Cuisine, error) {
	c := &models.Cuisine{}
	err := r.db.QueryRow(ctx, `SELECT id, name FROM cuisines WHERE name = $1`, name).Scan(&c.ID, &c.Name)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *foodRepo) ListMealTypes(ctx context.Context) ([]*models.MealType, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM meal_types ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var mealTypes []*models.MealType
	for rows.Next() {
		mt := &models.MealType{}
		if err := rows.Scan(&mt.ID, &mt.Name); err != nil {
			return nil, err
		}
		mealTypes = append(mealTypes, mt)
	}
	return mealTypes, rows.Err()
}

func (r *foodRepo) ListCuisines(ctx context.Context) ([]*models.Cuisine, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM cuisines ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cuisines []*models.Cuisine
	for rows.Next() {
		c := &models.Cuisine{}
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		cuisines = append(cuisines, c)
	}
	return cuisines, rows.Err()
}

func (r *foodRepo) UpsertMealType(ctx context.Context, name string) (*models.MealType, error) {
	query := `
		INSERT INTO meal_types (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name
	`
	mt := &models.MealType{}
	if err := r.db.QueryRow(ctx, query, name).Scan(&mt.ID, &mt.Name); err != nil {
		return nil, err
	}
	return mt, nil
}

func (r *foodRepo) UpsertCuisine(ctx context.Context, name string) (*models.Cuisine, error) {
	query := `
		INSERT INTO cuisines (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name
	`
	c := &models.Cuisine{}
	if err := r.db.QueryRow(ctx, query, name).Scan(&c.ID, &c.Name); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *foodRepo) SetImage(ctx context.Context, id int64, imageURL string) (bool, error) {
	tag, err := r.db.Exec(ctx, `UPDATE foods SET image = $2 WHERE id = $1`, id, imageURL)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
