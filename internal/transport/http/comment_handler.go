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

type commentUseCases interface {
	List(ctx context.Context, target domain.CommentTarget, slug string, page int) (*service.Page[domain.Comment], error)
	Create(ctx context.Context, actor *domain.User, target domain.CommentTarget, slug, body string) (*domain.Comment, error)
	Update(ctx context.Context, actor *domain.User, id uuid.UUID, body string) (*domain.Comment, error)
	Delete(ctx context.Context, actor *domain.User, id uuid.UUID) error
}

type CommentHandler struct {
	comments commentUseCases
	logger   *zap.Logger
}

func RegisterComments(api *echo.Group, auth Authenticator, comments commentUseCases, logger *zap.Logger) {
	h := &CommentHandler{comments: comments, logger: orNop(logger)}

	api.GET("/recipes/:slug/comments", h.listFor(domain.CommentTargetRecipe))
	api.GET("/blog/:slug/comments", h.listFor(domain.CommentTargetBlog))

	requireAuth := RequireAuth(auth)
	api.POST("/recipes/:slug/comments", h.createFor(domain.CommentTargetRecipe), requireAuth)
	api.POST("/blog/:slug/comments", h.createFor(domain.CommentTargetBlog), requireAuth)
	api.PUT("/comments/:id", h.update, requireAuth)
	api.DELETE("/comments/:id", h.delete, requireAuth)
}

func (h *CommentHandler) listFor(target domain.CommentTarget) echo.HandlerFunc {
	return func(c echo.Context) error {
		page, _ := parsePage(c)
		result, err := h.comments.List(c.Request().Context(), target, c.Param("slug"), page)
		if err != nil {
			return respondError(c, h.logger, err)
		}
		return c.JSON(http.StatusOK, paginated(result))
	}
}

func (h *CommentHandler) createFor(target domain.CommentTarget) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, _ := CurrentUser(c)
		var req CommentRequest
		if ok, err := bindAndValidate(c, &req); !ok {
			return err
		}

		comment, err := h.comments.Create(c.Request().Context(), user, target, c.Param("slug"), req.Body)
		if err != nil {
			return respondError(c, h.logger, err)
		}
		return c.JSON(http.StatusCreated, util.Success("Comment added successfully.").With("data", comment))
	}
}

func (h *CommentHandler) update(c echo.Context) error {
	user, _ := CurrentUser(c)
	id, err := uuidParam(c, "id")
	if err != nil {
		return badParam(c, "comment")
	}
	var req CommentRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	comment, err := h.comments.Update(c.Request().Context(), user, id, req.Body)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, util.Success("Comment updated successfully.").With("data", comment))
}

func (h *CommentHandler) delete(c echo.Context) error {
	user, _ := CurrentUser(c)
	id, err := uuidParam(c, "id")
	if err != nil {
		return badParam(c, "comment")
	}
	if err := h.comments.Delete(c.Request().Context(), user, id); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, util.Success("Comment deleted successfully."))
}
