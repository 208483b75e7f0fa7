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

type userUseCases interface {
	Me(ctx context.Context, user *domain.User) (*service.Profile, error)
	UpdateProfile(ctx context.Context, actor *domain.User, input service.ProfileInput) (*domain.User, error)
	Author(ctx context.Context, id uuid.UUID) (*service.AuthorProfile, error)
}

type authorRecipes interface {
	ListByAuthor(ctx context.Context, authorID uuid.UUID, page int) (*service.Page[domain.Recipe], error)
}

type authorPosts interface {
	ListByAuthor(ctx context.Context, authorID uuid.UUID, page int) (*service.Page[domain.BlogPost], error)
}

type UserHandler struct {
	users   userUseCases
	recipes authorRecipes
	posts   authorPosts
	logger  *zap.Logger
}

type profilePayload struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Bio   *string `json:"bio"`
}

func RegisterUsers(api *echo.Group, auth Authenticator, users userUseCases, recipes authorRecipes, posts authorPosts, logger *zap.Logger) {
	h := &UserHandler{users: users, recipes: recipes, posts: posts, logger: orNop(logger)}

	requireAuth := RequireAuth(auth)
	api.GET("/user", h.me, requireAuth)
	api.POST("/user/profile", h.updateProfile, requireAuth)

	api.GET("/authors/:id", h.author)
	api.GET("/authors/:id/recipes", h.authorRecipes)
	api.GET("/authors/:id/blogs", h.authorBlogs)
}

func (h *UserHandler) me(c echo.Context) error {
	user, _ := CurrentUser(c)
	profile, err := h.users.Me(c.Request().Context(), user)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, util.Success("").With("data", profile))
}

func (h *UserHandler) updateProfile(c echo.Context) error {
	user, _ := CurrentUser(c)

	var input service.ProfileInput
	if isMultipart(c) {
		if err := c.Request().ParseMultipartForm(maxMultipartMemory); err != nil {
			return c.JSON(http.StatusBadRequest, util.Error("invalid multipart payload"))
		}
		form := c.Request().MultipartForm
		input.Name = formString(form, "name")
		input.Email = formString(form, "email")
		input.Bio = formString(form, "bio")

		image, closeImage, err := formImage(c, "profile_image")
		defer closeImage()
		if err != nil {
			return respondError(c, h.logger, err)
		}
		input.Image = image
	} else {
		var payload profilePayload
		if err := c.Bind(&payload); err != nil {
			return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
		}
		input.Name, input.Email, input.Bio = payload.Name, payload.Email, payload.Bio
	}

	updated, err := h.users.UpdateProfile(c.Request().Context(), user, input)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, util.Success("Profile updated successfully.").With("data", updated))
}

func (h *UserHandler) author(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return badParam(c, "author")
	}
	author, err := h.users.Author(c.Request().Context(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, util.Success("").With("data", author))
}

func (h *UserHandler) authorRecipes(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return badParam(c, "author")
	}
	if _, err := h.users.Author(c.Request().Context(), id); err != nil {
		return respondError(c, h.logger, err)
	}
	page, _ := parsePage(c)
	result, err := h.recipes.ListByAuthor(c.Request().Context(), id, page)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, paginated(result))
}

func (h *UserHandler) authorBlogs(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return badParam(c, "author")
	}
	if _, err := h.users.Author(c.Request().Context(), id); err != nil {
		return respondError(c, h.logger, err)
	}
	page, _ := parsePage(c)
	result, err := h.posts.ListByAuthor(c.Request().Context(), id, page)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, paginated(result))
}
