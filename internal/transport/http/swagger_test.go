package http

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwaggerDocConvertsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swagger.yaml")
	require.NoError(t, os.WriteFile(path, []byte("openapi: 3.0.3\ninfo:\n  title: Foodieland API\n"), 0o600))
	e := echo.New()
	RegisterSwagger(e, path, nil)

	rec := serve(e, http.MethodGet, "/swagger/doc.json")

	require.Equal(t, http.StatusOK, rec.Code)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "3.0.3", doc["openapi"])
	assert.Equal(t, "Foodieland API", doc["info"].(map[string]any)["title"])
}

func TestSwaggerDocMissingFile(t *testing.T) {
	e := echo.New()
	RegisterSwagger(e, filepath.Join(t.TempDir(), "absent.yaml"), nil)

	rec := serve(e, http.MethodGet, "/swagger/doc.json")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "unable to load swagger spec")
}
