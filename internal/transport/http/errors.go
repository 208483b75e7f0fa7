package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/foodieland/foodieland-api/internal/service"
	"github.com/foodieland/foodieland-api/internal/util"
)

const genericFailure = "Something went wrong. Please try again."

var errBadRequest = errors.New("invalid request body")

func invalidBody() error {
	return errBadRequest
}

var notFoundErrors = []error{
	service.ErrRecipeNotFound,
	service.ErrBlogPostNotFound,
	service.ErrCategoryNotFound,
	service.ErrCommentNotFound,
	service.ErrSettingNotFound,
	service.ErrAuthorNotFound,
	service.ErrUserNotFound,
}

// respondError maps the sentinels shared by the content services. Anything it
// does not recognise is logged and answered with a generic 500.
func respondError(c echo.Context, logger *zap.Logger, err error) error {
	switch {
	case errors.Is(err, errBadRequest):
		return c.JSON(http.StatusBadRequest, util.Error(errBadRequest.Error()))
	case errors.Is(err, service.ErrValidation):
		return c.JSON(http.StatusUnprocessableEntity, util.Error(validationMessage(err)))
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, util.Error(service.ErrForbidden.Error()))
	case errors.Is(err, service.ErrEmailTaken):
		return c.JSON(http.StatusUnprocessableEntity, util.Error(service.ErrEmailTaken.Error()))
	case errors.Is(err, service.ErrCategoryExists):
		return c.JSON(http.StatusUnprocessableEntity, util.Error(service.ErrCategoryExists.Error()))
	case errors.Is(err, service.ErrSlugConflict):
		return c.JSON(http.StatusConflict, util.Error(service.ErrSlugConflict.Error()))
	case errors.Is(err, service.ErrCategoryInUse):
		return c.JSON(http.StatusBadRequest, util.Error(service.ErrCategoryInUse.Error()))
	}
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return c.JSON(http.StatusNotFound, util.Error(target.Error()))
		}
	}
	return internalError(c, logger, err)
}

func internalError(c echo.Context, logger *zap.Logger, err error) error {
	if logger != nil {
		logger.Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("route", c.Path()),
			zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			zap.Error(err),
		)
	}
	return c.JSON(http.StatusInternalServerError, util.Error(genericFailure))
}

// validationMessage strips the sentinel prefix so clients see only the field
// detail.
func validationMessage(err error) string {
	msg := strings.TrimPrefix(err.Error(), service.ErrValidation.Error()+": ")
	if msg == "" {
		return service.ErrValidation.Error()
	}
	return msg
}

func orNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
