package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/foodieland/foodieland-api/internal/media"
	"github.com/foodieland/foodieland-api/internal/service"
	"github.com/foodieland/foodieland-api/internal/util"
)

const maxMultipartMemory = 8 << 20

// parsePage reads ?page and ?limit (alias per_page). Invalid values fall back
// to zero and the service applies its defaults.
func parsePage(c echo.Context) (page, perPage int) {
	page, _ = strconv.Atoi(strings.TrimSpace(c.QueryParam("page")))
	raw := strings.TrimSpace(c.QueryParam("limit"))
	if raw == "" {
		raw = strings.TrimSpace(c.QueryParam("per_page"))
	}
	perPage, _ = strconv.Atoi(raw)
	return page, perPage
}

func paginated[T any](page *service.Page[T]) util.Envelope {
	items := page.Items
	if items == nil {
		items = []T{}
	}
	return util.Success("").
		With("data", items).
		With("meta", util.Envelope{
			"current_page": page.Page,
			"last_page":    page.LastPage(),
			"per_page":     page.PerPage,
			"total":        page.Total,
		})
}

func uuidParam(c echo.Context, name string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(c.Param(name)))
}

func badParam(c echo.Context, name string) error {
	return c.JSON(http.StatusNotFound, util.Error(fmt.Sprintf("%s not found", name)))
}

func isMultipart(c echo.Context) bool {
	return strings.HasPrefix(strings.ToLower(c.Request().Header.Get(echo.HeaderContentType)), echo.MIMEMultipartForm)
}

// formImage opens an optional file part. The returned closer is never nil.
func formImage(c echo.Context, field string) (*media.Upload, func(), error) {
	noop := func() {}
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, noop, nil
		}
		return nil, noop, fmt.Errorf("%w: %s must be a file", service.ErrValidation, field)
	}
	return openUpload(fh)
}

func openUpload(fh *multipart.FileHeader) (*media.Upload, func(), error) {
	file, err := fh.Open()
	if err != nil {
		return nil, func() {}, fmt.Errorf("open upload: %w", err)
	}
	return &media.Upload{
		Reader:      file,
		Size:        fh.Size,
		FileName:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
	}, func() { _ = file.Close() }, nil
}

// formString returns nil when the field is absent so updates can tell "not
// sent" from "sent empty".
func formString(form *multipart.Form, field string) *string {
	if form == nil {
		return nil
	}
	values, ok := form.Value[field]
	if !ok || len(values) == 0 {
		return nil
	}
	value := values[0]
	return &value
}

func formInt(form *multipart.Form, field string) (*int, error) {
	raw := formString(form, field)
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(*raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be an integer", service.ErrValidation, field)
	}
	return &n, nil
}

// formList accepts "field[]" repeated values, repeated "field" values, or a
// single JSON array string.
func formList(form *multipart.Form, field string) ([]string, error) {
	if form == nil {
		return nil, nil
	}
	values, ok := form.Value[field+"[]"]
	if !ok {
		values, ok = form.Value[field]
	}
	if !ok {
		return nil, nil
	}
	if len(values) == 1 && strings.HasPrefix(strings.TrimSpace(values[0]), "[") {
		var decoded []string
		if err := json.Unmarshal([]byte(values[0]), &decoded); err != nil {
			return nil, fmt.Errorf("%w: %s must be an array", service.ErrValidation, field)
		}
		return nonNilStrings(decoded), nil
	}
	return nonNilStrings(values), nil
}

func parseUUIDs(field string, values []string) ([]uuid.UUID, error) {
	if values == nil {
		return nil, nil
	}
	ids := make([]uuid.UUID, 0, len(values))
	for _, raw := range values {
		id, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("%w: the selected %s is invalid", service.ErrValidation, field)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
