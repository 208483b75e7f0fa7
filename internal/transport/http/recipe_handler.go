package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/foodieland/foodieland-api/internal/domain"
	"github.com/foodieland/foodieland-api/internal/service"
	"github.com/foodieland/foodieland-api/internal/util"
)

type recipeUseCases interface {
	List(ctx context.Context, query service.RecipeQuery) (*service.Page[domain.Recipe], error)
	Get(ctx context.Context, slug string, viewer *domain.User) (*domain.Recipe, error)
	Create(ctx context.Context, actor *domain.User, input service.RecipeInput) (*domain.Recipe, error)
	Update(ctx context.Context, actor *domain.User, slug string, input service.RecipeInput) (*domain.Recipe, error)
	Delete(ctx context.Context, actor *domain.User, slug string) error
}

type favoriteUseCases interface {
	Toggle(ctx context.Context, actor *domain.User, slug string) (bool, error)
}

type RecipeHandler struct {
	recipes   recipeUseCases
	favorites favoriteUseCases
	logger    *zap.Logger
}

// recipePayload is the JSON form of a recipe write.
type recipePayload struct {
	Title          *string         `json:"title"`
	Description    *string         `json:"description"`
	PrepTime       *int            `json:"prep_time"`
	CookTime       *int            `json:"cook_time"`
	Difficulty     *string         `json:"difficulty"`
	Ingredients    []string        `json:"ingredients"`
	Instructions   []string        `json:"instructions"`
	NutritionFacts json.RawMessage `json:"nutrition_facts"`
	CategoryIDs    []string        `json:"category_ids"`
	Tags           []string        `json:"tags"`
}

func RegisterRecipes(api *echo.Group, auth Authenticator, recipes recipeUseCases, favorites favoriteUseCases, logger *zap.Logger) {
	h := &RecipeHandler{recipes: recipes, favorites: favorites, logger: orNop(logger)}

	api.GET("/recipes", h.list)
	api.GET("/recipes/:slug", h.show, OptionalAuth(auth))

	protected := api.Group("/recipes", RequireAuth(auth))
	protected.POST("", h.create)
	protected.PUT("/:slug", h.update)
	protected.POST("/:slug", h.update)
	protected.DELETE("/:slug", h.delete)
	protected.POST("/:slug/favorite", h.toggleFavorite)
}

func (h *RecipeHandler) list(c echo.Context) error {
	page, perPage := parsePage(c)
	result, err := h.recipes.List(c.Request().Context(), service.RecipeQuery{
		Search:   strings.TrimSpace(c.QueryParam("search")),
		Category: strings.TrimSpace(c.QueryParam("category")),
		Page:     page,
		PerPage:  perPage,
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, paginated(result))
}

func (h *RecipeHandler) show(c echo.Context) error {
	viewer, _ := CurrentUser(c)
	recipe, err := h.recipes.Get(c.Request().Context(), c.Param("slug"), viewer)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, util.Success("").With("data", recipe))
}

func (h *RecipeHandler) create(c echo.Context) error {
	user, _ := CurrentUser(c)
	input, closeUpload, err := recipeInputFromRequest(c)
	defer closeUpload()
	if err != nil {
		return respondError(c, h.logger, err)
	}

	recipe, err := h.recipes.Create(c.Request().Context(), user, input)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, util.Success("Recipe created successfully.").With("data", recipe))
}

func (h *RecipeHandler) update(c echo.Context) error {
	user, _ := CurrentUser(c)
	input, closeUpload, err := recipeInputFromRequest(c)
	defer closeUpload()
	if err != nil {
		return respondError(c, h.logger, err)
	}

	recipe, err := h.recipes.Update(c.Request().Context(), user, c.Param("slug"), input)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, util.Success("Recipe updated successfully.").With("data", recipe))
}

func (h *RecipeHandler) delete(c echo.Context) error {
	user, _ := CurrentUser(c)
	if err := h.recipes.Delete(c.Request().Context(), user, c.Param("slug")); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, util.Success("Recipe deleted successfully."))
}

func (h *RecipeHandler) toggleFavorite(c echo.Context) error {
	user, _ := CurrentUser(c)
	favorited, err := h.favorites.Toggle(c.Request().Context(), user, c.Param("slug"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, util.Success("").With("is_favorited", favorited))
}

// recipeInputFromRequest accepts either a JSON body or a multipart form with
// an optional "image" file.
func recipeInputFromRequest(c echo.Context) (service.RecipeInput, func(), error) {
	noop := func() {}
	if !isMultipart(c) {
		var payload recipePayload
		if err := c.Bind(&payload); err != nil {
			return service.RecipeInput{}, noop, invalidBody()
		}
		categoryIDs, err := parseUUIDs("category_ids", payload.CategoryIDs)
		if err != nil {
			return service.RecipeInput{}, noop, err
		}
		return service.RecipeInput{
			Title:          payload.Title,
			Description:    payload.Description,
			PrepTime:       payload.PrepTime,
			CookTime:       payload.CookTime,
			Difficulty:     payload.Difficulty,
			Ingredients:    payload.Ingredients,
			Instructions:   payload.Instructions,
			NutritionFacts: jsonDocument(payload.NutritionFacts),
			CategoryIDs:    categoryIDs,
			Tags:           payload.Tags,
		}, noop, nil
	}

	if err := c.Request().ParseMultipartForm(maxMultipartMemory); err != nil {
		return service.RecipeInput{}, noop, invalidBody()
	}
	form := c.Request().MultipartForm

	input := service.RecipeInput{
		Title:       formString(form, "title"),
		Description: formString(form, "description"),
		Difficulty:  formString(form, "difficulty"),
	}
	var err error
	if input.PrepTime, err = formInt(form, "prep_time"); err != nil {
		return input, noop, err
	}
	if input.CookTime, err = formInt(form, "cook_time"); err != nil {
		return input, noop, err
	}
	if input.Ingredients, err = formList(form, "ingredients"); err != nil {
		return input, noop, err
	}
	if input.Instructions, err = formList(form, "instructions"); err != nil {
		return input, noop, err
	}
	if input.Tags, err = formList(form, "tags"); err != nil {
		return input, noop, err
	}
	rawIDs, err := formList(form, "category_ids")
	if err != nil {
		return input, noop, err
	}
	if input.CategoryIDs, err = parseUUIDs("category_ids", rawIDs); err != nil {
		return input, noop, err
	}
	if facts := formString(form, "nutrition_facts"); facts != nil {
		input.NutritionFacts = jsonDocument([]byte(*facts))
	}

	image, closeImage, err := formImage(c, "image")
	if err != nil {
		return input, noop, err
	}
	input.Image = image
	return input, closeImage, nil
}

func jsonDocument(raw []byte) domain.JSONDocument {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil
	}
	return domain.JSONDocument(trimmed)
}
