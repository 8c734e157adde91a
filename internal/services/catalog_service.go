package services

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"mealmart/internal/common"
	"mealmart/internal/models"
	"mealmart/internal/repositories"
)

// CreateFoodInput is the admin catalog-entry form.
type CreateFoodInput struct {
	Name     string          `json:"name"`
	Calories string          `json:"calories"`
	Image    string          `json:"image"`
	Price    decimal.Decimal `json:"price"`
	MealType string          `json:"mealType"`
	Cuisine  string          `json:"cuisine"`
}

type CreateGroceryInput struct {
	Name       string          `json:"name"`
	Unit       string          `json:"unit"`
	CalPerUnit string          `json:"calPerUnit"`
	Image      *string         `json:"image"`
	Price      decimal.Decimal `json:"price"`
}

type CatalogServiceInterface interface {
	CreateFood(ctx context.Context, actor *models.User, input CreateFoodInput) (*models.Food, error)
	GetFood(ctx context.Context, id int64) (*models.Food, error)
	ListFoods(ctx context.Context, mealType, cuisine string) ([]*models.Food, error)
	ListMealTypes(ctx context.Context) ([]string, error)
	AddMealType(ctx context.Context, actor *models.User, name string) (*models.MealType, error)
	ListCuisines(ctx context.Context) ([]string, error)
	AddCuisine(ctx context.Context, actor *models.User, name string) (*models.Cuisine, error)
	CreateGrocery(ctx context.Context, actor *models.User, input CreateGroceryInput) (*models.GroceryItem, error)
	GetGrocery(ctx context.Context, id int64) (*models.GroceryItem, error)
	ListGroceries(ctx context.Context) ([]*models.GroceryItem, error)
}

type catalogService struct {
	foodRepo    repositories.FoodRepository
	groceryRepo repositories.GroceryRepository
}

func NewCatalogService(foodRepo repositories.FoodRepository, groceryRepo repositories.GroceryRepository) CatalogServiceInterface {
	return &catalogService{foodRepo: foodRepo, groceryRepo: groceryRepo}
}

func (s *catalogService) CreateFood(ctx context.Context, actor *models.User, input CreateFoodInput) (*models.Food, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if input.Name == "" || input.MealType == "" {
		return nil, common.ValidationError("name and mealType are required")
	}
	if input.Price.IsNegative() {
		return nil, common.ValidationError("price must not be negative")
	}

	mealType, err := s.foodRepo.GetMealTypeByName(ctx, input.MealType)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ValidationError("unknown meal type %q", input.MealType)
		}
		return nil, common.StoreError("look up meal type", err)
	}

	food := &models.Food{
		Name:       input.Name,
		Calories:   input.Calories,
		Image:      input.Image,
		Price:      input.Price,
		MealTypeID: mealType.ID,
		MealType:   mealType,
	}
	if input.Cuisine != "" {
		cuisine, err := s.foodRepo.GetCuisineByName(ctx, input.Cuisine)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, common.ValidationError("unknown cuisine %q", input.Cuisine)
			}
			return nil, common.StoreError("look up cuisine", err)
		}
		food.CuisineID = &cuisine.ID
		food.Cuisine = cuisine
	}

	if err := s.foodRepo.Create(ctx, food); err != nil {
		return nil, common.StoreError("create food", err)
	}
	return food, nil
}

func (s *catalogService) GetFood(ctx context.Context, id int64) (*models.Food, error) {
	food, err := s.foodRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFoundError("food")
		}
		return nil, common.StoreError("load food", err)
	}
	return food, nil
}

func (s *catalogService) ListFoods(ctx context.Context, mealType, cuisine string) ([]*models.Food, error) {
	foods, err := s.foodRepo.ListFiltered(ctx, repositories.FoodFilter{MealType: mealType, Cuisine: cuisine})
	if err != nil {
		return nil, common.StoreError("list foods", err)
	}
	return foods, nil
}

// ListMealTypes returns the known meal type names for catalog pickers.
func (s *catalogService) ListMealTypes(ctx context.Context) ([]string, error) {
	mealTypes, err := s.foodRepo.ListMealTypes(ctx)
	if err != nil {
		return nil, common.StoreError("list meal types", err)
	}
	names := make([]string, 0, len(mealTypes))
	for _, mt := range mealTypes {
		names = append(names, mt.Name)
	}
	return names, nil
}

func (s *catalogService) AddMealType(ctx context.Context, actor *models.User, name string) (*models.MealType, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.ValidationError("meal type name is required")
	}
	mt, err := s.foodRepo.UpsertMealType(ctx, name)
	if err != nil {
		return nil, common.StoreError("create meal type", err)
	}
	return mt, nil
}

// ListCuisines returns the known cuisine names for catalog pickers.
func (s *catalogService) ListCuisines(ctx context.Context) ([]string, error) {
	cuisines, err := s.foodRepo.ListCuisines(ctx)
	if err != nil {
		return nil, common.StoreError("list cuisines", err)
	}
	names := make([]string, 0, len(cuisines))
	for _, c := range cuisines {
		names = append(names, c.Name)
	}
	return names, nil
}

func (s *catalogService) AddCuisine(ctx context.Context, actor *models.User, name string) (*models.Cuisine, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.ValidationError("cuisine name is required")
	}
	c, err := s.foodRepo.UpsertCuisine(ctx, name)
	if err != nil {
		return nil, common.StoreError("create cuisine", err)
	}
	return c, nil
}

func (s *catalogService) CreateGrocery(ctx context.Context, actor *models.User, input CreateGroceryInput) (*models.GroceryItem, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if input.Name == "" || input.Unit == "" {
		return nil, common.ValidationError("name and unit are required")
	}
	if input.Price.IsNegative() {
		return nil, common.ValidationError("price must not be negative")
	}

	item := &models.GroceryItem{
		Name:       input.Name,
		Unit:       input.Unit,
		CalPerUnit: input.CalPerUnit,
		Image:      input.Image,
		Price:      input.Price,
	}
	if err := s.groceryRepo.Create(ctx, item); err != nil {
		return nil, common.StoreError("create grocery item", err)
	}
	return item, nil
}

func (s *catalogService) GetGrocery(ctx context.Context, id int64) (*models.GroceryItem, error) {
	item, err := s.groceryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFoundError("grocery item")
		}
		return nil, common.StoreError("load grocery item", err)
	}
	return item, nil
}

func (s *catalogService) ListGroceries(ctx context.Context) ([]*models.GroceryItem, error) {
	items, err := s.groceryRepo.List(ctx)
	if err != nil {
		return nil, common.StoreError("list grocery items", err)
	}
	return items, nil
}
