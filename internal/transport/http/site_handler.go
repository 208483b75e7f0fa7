package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/foodieland/foodieland-api/internal/domain"
	"github.com/foodieland/foodieland-api/internal/service"
	"github.com/foodieland/foodieland-api/internal/util"
)

type contactUseCases interface {
	Submit(ctx context.Context, input service.ContactInput) (*domain.ContactMessage, error)
}

type settingUseCases interface {
	Get(ctx context.Context, key string) (*domain.Setting, error)
	Put(ctx context.Context, actor *domain.User, key string, value domain.JSONDocument) (*domain.Setting, error)
}

// SiteHandler serves the contact form and site settings.
type SiteHandler struct {
	contact  contactUseCases
	settings settingUseCases
	logger   *zap.Logger
}

func RegisterSite(api *echo.Group, auth Authenticator, contact contactUseCases, settings settingUseCases, logger *zap.Logger) {
	h := &SiteHandler{contact: contact, settings: settings, logger: orNop(logger)}

	api.POST("/contact", h.submitContact)
	api.GET("/settings/:key", h.getSetting)
	api.POST("/settings/:key", h.putSetting, RequireAuth(auth), RequireAdmin())
}

func (h *SiteHandler) submitContact(c echo.Context) error {
	var req ContactRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	message, err := h.contact.Submit(c.Request().Context(), service.ContactInput{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			return respondError(c, h.logger, err)
		}
		h.logger.Error("save contact message", zap.String("email", req.Email), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, util.Error("Failed to send your message. Please try again later."))
	}
	return c.JSON(http.StatusCreated, util.Success("Your message has been sent successfully!").With("data", message))
}

func (h *SiteHandler) getSetting(c echo.Context) error {
	key := c.Param("key")
	setting, err := h.settings.Get(c.Request().Context(), key)
	if err != nil {
		if errors.Is(err, service.ErrSettingNotFound) {
			return c.JSON(http.StatusNotFound, util.Error(fmt.Sprintf("Setting with key '%s' not found.", key)))
		}
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, util.Success("").With("data", setting.Value))
}

func (h *SiteHandler) putSetting(c echo.Context) error {
	user, _ := CurrentUser(c)
	var req struct {
		Value json.RawMessage `json:"value"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	if _, err := h.settings.Put(c.Request().Context(), user, c.Param("key"), domain.JSONDocument(req.Value)); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, util.Success("Setting updated successfully."))
}
