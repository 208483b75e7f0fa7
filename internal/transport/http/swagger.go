package http

import (
	"net/http"
	"os"

	"github.com/ghodss/yaml"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"github.com/foodieland/foodieland-api/internal/util"
)

// RegisterSwagger serves the YAML document at specPath as JSON on
// /swagger/doc.json and the UI under /swagger.
func RegisterSwagger(e *echo.Echo, specPath string, logger *zap.Logger) {
	logger = orNop(logger)
	e.GET("/swagger/doc.json", func(c echo.Context) error {
		data, err := os.ReadFile(specPath)
		if err != nil {
			logger.Error("load swagger spec", zap.String("path", specPath), zap.Error(err))
			return c.JSON(http.StatusInternalServerError, util.Error("unable to load swagger spec"))
		}
		doc, err := yaml.YAMLToJSON(data)
		if err != nil {
			logger.Error("convert swagger spec", zap.String("path", specPath), zap.Error(err))
			return c.JSON(http.StatusInternalServerError, util.Error("unable to parse swagger spec"))
		}
		return c.Blob(http.StatusOK, echo.MIMEApplicationJSONCharsetUTF8, doc)
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)
}
