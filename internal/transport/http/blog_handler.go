package http

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/foodieland/foodieland-api/internal/domain"
	"github.com/foodieland/foodieland-api/internal/service"
	"github.com/foodieland/foodieland-api/internal/util"
)

type blogUseCases interface {
	List(ctx context.Context, page int) (*service.Page[domain.BlogPost], error)
	Get(ctx context.Context, slug string) (*domain.BlogPost, error)
	Create(ctx context.Context, actor *domain.User, input service.BlogPostInput) (*domain.BlogPost, error)
	Update(ctx context.Context, actor *domain.User, slug string, input service.BlogPostInput) (*domain.BlogPost, error)
	Delete(ctx context.Context, actor *domain.User, slug string) error
}

type BlogHandler struct {
	posts  blogUseCases
	logger *zap.Logger
}

type blogPayload struct {
	Title       *string  `json:"title"`
	Excerpt     *string  `json:"excerpt"`
	Content     *string  `json:"content"`
	CategoryIDs []string `json:"category_ids"`
	Tags        []string `json:"tags"`
}

func RegisterBlog(api *echo.Group, auth Authenticator, posts blogUseCases, logger *zap.Logger) {
	h := &BlogHandler{posts: posts, logger: orNop(logger)}

	api.GET("/blog", h.list)
	api.GET("/blog/:slug", h.show)

	protected := api.Group("/blog", RequireAuth(auth))
	protected.POST("", h.create)
	protected.POST("/:slug", h.update)
	protected.PUT("/:slug", h.update)
	protected.DELETE("/:slug", h.delete)
}

func (h *BlogHandler) list(c echo.Context) error {
	page, _ := parsePage(c)
	result, err := h.posts.List(c.Request().Context(), page)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, paginated(result))
}

func (h *BlogHandler) show(c echo.Context) error {
	post, err := h.posts.Get(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, util.Success("").With("data", post))
}

func (h *BlogHandler) create(c echo.Context) error {
	user, _ := CurrentUser(c)
	input, closeUpload, err := blogInputFromRequest(c)
	defer closeUpload()
	if err != nil {
		return respondError(c, h.logger, err)
	}

	post, err := h.posts.Create(c.Request().Context(), user, input)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, util.Success("Blog post created successfully.").With("data", post))
}

func (h *BlogHandler) update(c echo.Context) error {
	user, _ := CurrentUser(c)
	input, closeUpload, err := blogInputFromRequest(c)
	defer closeUpload()
	if err != nil {
		return respondError(c, h.logger, err)
	}

	post, err := h.posts.Update(c.Request().Context(), user, c.Param("slug"), input)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, util.Success("Blog post updated successfully.").With("data", post))
}

func (h *BlogHandler) delete(c echo.Context) error {
	user, _ := CurrentUser(c)
	if err := h.posts.Delete(c.Request().Context(), user, c.Param("slug")); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func blogInputFromRequest(c echo.Context) (service.BlogPostInput, func(), error) {
	noop := func() {}
	if !isMultipart(c) {
		var payload blogPayload
		if err := c.Bind(&payload); err != nil {
			return service.BlogPostInput{}, noop, invalidBody()
		}
		categoryIDs, err := parseUUIDs("category_ids", payload.CategoryIDs)
		if err != nil {
			return service.BlogPostInput{}, noop, err
		}
		return service.BlogPostInput{
			Title:       payload.Title,
			Excerpt:     payload.Excerpt,
			Content:     payload.Content,
			CategoryIDs: categoryIDs,
			Tags:        payload.Tags,
		}, noop, nil
	}

	if err := c.Request().ParseMultipartForm(maxMultipartMemory); err != nil {
		return service.BlogPostInput{}, noop, invalidBody()
	}
	form := c.Request().MultipartForm

	input := service.BlogPostInput{
		Title:   formString(form, "title"),
		Excerpt: formString(form, "excerpt"),
		Content: formString(form, "content"),
	}
	var err error
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

	image, closeImage, err := formImage(c, "image")
	if err != nil {
		return input, noop, err
	}
	input.Image = image
	return input, closeImage, nil
}
