package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"mealmart/internal/common"
	"mealmart/internal/models"
)

type OrderRepository interface {
	// CreateWithItems inserts the order and its items in one transaction.
	// The store assigns the id; the order struct is updated in place.
	CreateWithItems(ctx context.Context, order *models.Order, items []*models.OrderItem) error
	// GetJoined loads an order with its user and items (foods and grocery
	// items included).
	GetJoined(ctx context.Context, id int64) (*models.Order, error)
	// ListJoined loads all orders, newest first, fully joined.
	ListJoined(ctx context.Context) ([]*models.Order, error)
	// UpdateStatus persists a status change and reports whether the order
	// existed.
	UpdateStatus(ctx context.Context, id int64, status models.OrderStatus) (bool, error)
	// Delete hard-deletes the order and its items, reporting whether the
	// order existed.
	Delete(ctx context.Context, id int64) (bool, error)
}

type orderRepo struct {
	db DB
}

func NewOrderRepo(db DB) OrderRepository {
	return &orderRepo{db: db}
}

func (r *orderRepo) CreateWithItems(ctx context.Context, order *models.Order, items []*models.OrderItem) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	insertOrder := `
		INSERT INTO orders (user_id, status, delivery_type, delivery_address, total_price, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`
	err = tx.QueryRow(ctx, insertOrder, order.UserID, order.Status, order.DeliveryType, order.DeliveryAddress, order.TotalPrice).
		Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		return err
	}

	insertItem := `
		INSERT INTO order_items (order_id, food_id, grocery_item_id, quantity, price)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	for _, item := range items {
		item.OrderID = order.ID
		if err := tx.QueryRow(ctx, insertItem, item.OrderID, item.FoodID, item.GroceryItemID, item.Quantity, item.Price).Scan(&item.ID); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	order.Items = items
	return nil
}

const orderSelect = `
	SELECT o.id, o.user_id, o.status, o.delivery_type, o.delivery_address, o.total_price, o.created_at,
	       u.id, u.email, u.name, u.is_admin, u.points, u.streak, u.last_login_date, u.streak_start_date, u.created_at
	FROM orders o
	JOIN users u ON u.id = o.user_id
`

func scanOrderWithUser(row interface{ Scan(dest ...any) error }) (*models.Order, error) {
	order := &models.Order{User: &models.User{}}
	u := order.User
	err := row.Scan(
		&order.ID, &order.UserID, &order.Status, &order.DeliveryType, &order.DeliveryAddress, &order.TotalPrice, &order.CreatedAt,
		&u.ID, &u.Email, &u.Name, &u.IsAdmin, &u.Points, &u.Streak, &u.LastLoginDate, &u.StreakStartDate, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepo) GetJoined(ctx context.Context, id int64) (*models.Order, error) {
	order, err := scanOrderWithUser(r.db.QueryRow(ctx, orderSelect+` WHERE o.id = $1`, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, []*models.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepo) ListJoined(ctx context.Context) ([]*models.Order, error) {
	rows, err := r.db.Query(ctx, orderSelect+` ORDER BY o.created_at DESC, o.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order, err := scanOrderWithUser(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// loadItems attaches items (with food/grocery joins) to the given orders in a
// single query.
func (r *orderRepo) loadItems(ctx context.Context, orders []*models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	byID := make(map[int64]*models.Order, len(orders))
	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
		ids = append(ids, o.ID)
		if o.Items == nil {
			o.Items = []*models.OrderItem{}
		}
	}

	query := `
		SELECT i.id, i.order_id, i.food_id, i.grocery_item_id, i.quantity, i.price,
		       f.id, f.name, f.calories, f.image, f.price, f.meal_type_id, f.cuisine_id, f.created_at,
		       g.id, g.name, g.unit, g.cal_per_unit, g.image, g.price, g.created_at
		FROM order_items i
		LEFT JOIN foods f ON f.id = i.food_id
		LEFT JOIN grocery_items g ON g.id = i.grocery_item_id
		WHERE i.order_id = ANY($1)
		ORDER BY i.id
	`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		item := &models.OrderItem{}
		// The food/grocery sides of the join are nullable; scan through
		// pointers and attach only the side the item references.
		var (
			fID, fMealTypeID, gID      *int64
			fCuisineID                 *int64
			fName, fCalories, fImage   *string
			gName, gUnit, gCalPerUnit  *string
			gImage                     *string
			fPrice, gPrice             decimal.NullDecimal
			fCreatedAt, gCreatedAt     *time.Time
		)
		err := rows.Scan(
			&item.ID, &item.OrderID, &item.FoodID, &item.GroceryItemID, &item.Quantity, &item.Price,
			&fID, &fName, &fCalories, &fImage, &fPrice, &fMealTypeID, &fCuisineID, &fCreatedAt,
			&gID, &gName, &gUnit, &gCalPerUnit, &gImage, &gPrice, &gCreatedAt,
		)
		if err != nil {
			return err
		}
		if fID != nil {
			item.Food = &models.Food{
				ID:         *fID,
				Name:       common.SafeString(fName),
				Calories:   common.SafeString(fCalories),
				Image:      common.SafeString(fImage),
				Price:      fPrice.Decimal,
				MealTypeID: *fMealTypeID,
				CuisineID:  fCuisineID,
			}
			if fCreatedAt != nil {
				item.Food.CreatedAt = *fCreatedAt
			}
		}
		if gID != nil {
			item.GroceryItem = &models.GroceryItem{
				ID:         *gID,
				Name:       common.SafeString(gName),
				Unit:       common.SafeString(gUnit),
				CalPerUnit: common.SafeString(gCalPerUnit),
				Image:      gImage,
				Price:      gPrice.Decimal,
			}
			if gCreatedAt != nil {
				item.GroceryItem.CreatedAt = *gCreatedAt
			}
		}
		order, ok := byID[item.OrderID]
		if !ok {
			continue
		}
		order.Items = append(order.Items, item)
	}
	return rows.Err()
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id int64, status models.OrderStatus) (bool, error) {
	tag, err := r.db.Exec(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *orderRepo) Delete(ctx context.Context, id int64) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, id); err != nil {
		return false, err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
