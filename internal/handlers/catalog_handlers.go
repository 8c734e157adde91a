package handlers

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"mealmart/internal/common"
	"mealmart/internal/models"
	"mealmart/internal/services"
)

// CatalogHandlers serves the food and grocery catalogs.
type CatalogHandlers struct {
	catalogService services.CatalogServiceInterface
	imageService   services.ImageServiceInterface
}

func NewCatalogHandlers(catalogService services.CatalogServiceInterface, imageService services.ImageServiceInterface) *CatalogHandlers {
	return &CatalogHandlers{catalogService: catalogService, imageService: imageService}
}

// ListFoods handles GET /foods with optional mealType and cuisine filters.
func (h *CatalogHandlers) ListFoods(c echo.Context) error {
	foods, err := h.catalogService.ListFoods(c.Request().Context(), c.QueryParam("mealType"), c.QueryParam("cuisine"))
	if err != nil {
		return common.SendError(c, err)
	}
	if foods == nil {
		foods = []*models.Food{}
	}
	return c.JSON(http.StatusOK, foods)
}

// GetFood handles GET /foods/:id.
func (h *CatalogHandlers) GetFood(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return common.SendError(c, common.ValidationError("invalid food id"))
	}
	food, err := h.catalogService.GetFood(c.Request().Context(), id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, food)
}

// CreateFood handles POST /foods. Admin only.
func (h *CatalogHandlers) CreateFood(c echo.Context) error {
	ctx := c.Request().Context()
	actor, _ := common.GetUserFromContext(ctx)

	var req services.CreateFoodInput
	if err := c.Bind(&req); err != nil {
		return common.SendError(c, common.ValidationError("invalid request body"))
	}
	food, err := h.catalogService.CreateFood(ctx, actor, req)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, food)
}

// UploadFoodImage handles POST /foods/:id/image as a multipart form with an
// "image" file field. Admin only.
func (h *CatalogHandlers) UploadFoodImage(c echo.Context) error {
	return h.uploadImage(c, h.imageService.UploadFoodImage)
}

// ListMealTypes handles GET /mealtypes, returning the names only.
func (h *CatalogHandlers) ListMealTypes(c echo.Context) error {
	names, err := h.catalogService.ListMealTypes(c.Request().Context())
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, names)
}

type lookupNameRequest struct {
	Name string `json:"name"`
}

// CreateMealType handles POST /mealtypes. Admin only; creating an existing
// name returns the existing row.
func (h *CatalogHandlers) CreateMealType(c echo.Context) error {
	ctx := c.Request().Context()
	actor, _ := common.GetUserFromContext(ctx)

	var req lookupNameRequest
	if err := c.Bind(&req); err != nil {
		return common.SendError(c, common.ValidationError("invalid request body"))
	}
	mealType, err := h.catalogService.AddMealType(ctx, actor, req.Name)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, mealType)
}

// ListCuisines handles GET /cuisines, returning the names only.
func (h *CatalogHandlers) ListCuisines(c echo.Context) error {
	names, err := h.catalogService.ListCuisines(c.Request().Context())
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, names)
}

// CreateCuisine handles POST /cuisines. Admin only.
func (h *CatalogHandlers) CreateCuisine(c echo.Context) error {
	ctx := c.Request().Context()
	actor, _ := common.GetUserFromContext(ctx)

	var req lookupNameRequest
	if err := c.Bind(&req); err != nil {
		return common.SendError(c, common.ValidationError("invalid request body"))
	}
	cuisine, err := h.catalogService.AddCuisine(ctx, actor, req.Name)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, cuisine)
}

// ListGroceries handles GET /grocery.
func (h *CatalogHandlers) ListGroceries(c echo.Context) error {
	items, err := h.catalogService.ListGroceries(c.Request().Context())
	if err != nil {
		return common.SendError(c, err)
	}
	if items == nil {
		items = []*models.GroceryItem{}
	}
	return c.JSON(http.StatusOK, items)
}

// GetGrocery handles GET /grocery/:id.
func (h *CatalogHandlers) GetGrocery(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return common.SendError(c, common.ValidationError("invalid grocery item id"))
	}
	item, err := h.catalogService.GetGrocery(c.Request().Context(), id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

// CreateGrocery handles POST /grocery. Admin only.
func (h *CatalogHandlers) CreateGrocery(c echo.Context) error {
	ctx := c.Request().Context()
	actor, _ := common.GetUserFromContext(ctx)

	var req services.CreateGroceryInput
	if err := c.Bind(&req); err != nil {
		return common.SendError(c, common.ValidationError("invalid request body"))
	}
	item, err := h.catalogService.CreateGrocery(ctx, actor, req)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, item)
}

// UploadGroceryImage handles POST /grocery/:id/image. Admin only.
func (h *CatalogHandlers) UploadGroceryImage(c echo.Context) error {
	return h.uploadImage(c, h.imageService.UploadGroceryImage)
}

func (h *CatalogHandlers) uploadImage(c echo.Context, upload func(ctx context.Context, id int64, filename, contentType string, reader io.Reader, size int64) (string, error)) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return common.SendError(c, common.ValidationError("invalid id"))
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return common.SendError(c, common.ValidationError("image file is required"))
	}
	file, err := fileHeader.Open()
	if err != nil {
		return common.SendError(c, common.StoreError("read uploaded image", err))
	}
	defer file.Close()

	url, err := upload(c.Request().Context(), id, fileHeader.Filename, fileHeader.Header.Get("Content-Type"), file, fileHeader.Size)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"image": url})
}
