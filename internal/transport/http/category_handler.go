package http

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/foodieland/foodieland-api/internal/domain"
	"github.com/foodieland/foodieland-api/internal/service"
	"github.com/foodieland/foodieland-api/internal/util"
)

type categoryUseCases interface {
	List(ctx context.Context) ([]domain.Category, error)
	Recipes(ctx context.Context, slug string, page int) (*domain.Category, *service.Page[domain.Recipe], error)
	Create(ctx context.Context, actor *domain.User, input service.CategoryInput) (*domain.Category, error)
	Update(ctx context.Context, actor *domain.User, id uuid.UUID, input service.CategoryInput) (*domain.Category, error)
	Delete(ctx context.Context, actor *domain.User, id uuid.UUID) error
}

type CategoryHandler struct {
	categories categoryUseCases
	logger     *zap.Logger
}

func RegisterCategories(api *echo.Group, auth Authenticator, categories categoryUseCases, logger *zap.Logger) {
	h := &CategoryHandler{categories: categories, logger: orNop(logger)}

	api.GET("/categories", h.list)
	api.GET("/categories/:slug/recipes", h.recipes)

	admin := api.Group("/admin/categories", RequireAuth(auth), RequireAdmin())
	admin.POST("", h.create)
	admin.PUT("/:id", h.update)
	admin.DELETE("/:id", h.delete)
}

func (h *CategoryHandler) list(c echo.Context) error {
	categories, err := h.categories.List(c.Request().Context())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if categories == nil {
		categories = []domain.Category{}
	}
	return c.JSON(http.StatusOK, util.Success("").With("data", categories))
}

func (h *CategoryHandler) recipes(c echo.Context) error {
	page, _ := parsePage(c)
	category, recipes, err := h.categories.Recipes(c.Request().Context(), c.Param("slug"), page)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, paginated(recipes).With("category", category))
}

func (h *CategoryHandler) create(c echo.Context) error {
	user, _ := CurrentUser(c)
	var req CategoryRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	category, err := h.categories.Create(c.Request().Context(), user, service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, util.Success("Category created successfully.").With("data", category))
}

func (h *CategoryHandler) update(c echo.Context) error {
	user, _ := CurrentUser(c)
	id, err := uuidParam(c, "id")
	if err != nil {
		return badParam(c, "category")
	}
	var req CategoryRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	category, err := h.categories.Update(c.Request().Context(), user, id, service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, util.Success("Category updated successfully.").With("data", category))
}

func (h *CategoryHandler) delete(c echo.Context) error {
	user, _ := CurrentUser(c)
	id, err := uuidParam(c, "id")
	if err != nil {
		return badParam(c, "category")
	}
	if err := h.categories.Delete(c.Request().Context(), user, id); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, util.Success("Category deleted successfully."))
}
