package http

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	requestBodyLogKey  = "http.request.body.summary"
	responseBodyLogKey = "http.response.body.summary"
	maxLoggedBody      = 2048

	redacted = "redacted"
	binary   = "binary"
)

// sensitiveKeys are matched as substrings of lower-cased field names, so
// "password_confirmation" and "access_token" are covered.
var sensitiveKeys = []string{"password", "otp", "token"}

func registerLogging(e *echo.Echo, logger *zap.Logger) {
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRequestID: true,
		LogRemoteIP:  true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			userID := "anonymous"
			if user, ok := CurrentUser(c); ok {
				userID = user.ID.String()
			}

			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Int64("latency_ms", v.Latency.Milliseconds()),
				zap.String("user_id", userID),
				zap.String("request_id", v.RequestID),
				zap.String("remote_ip", v.RemoteIP),
			}
			if summary := c.Get(requestBodyLogKey); summary != nil {
				fields = append(fields, zap.Any("request_body", summary))
			}
			if summary := c.Get(responseBodyLogKey); summary != nil {
				fields = append(fields, zap.Any("response_body", summary))
			}

			level := zapcore.InfoLevel
			switch {
			case v.Status >= 500:
				level = zapcore.ErrorLevel
			case v.Status >= 400:
				level = zapcore.WarnLevel
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			if ce := logger.Check(level, "http request"); ce != nil {
				ce.Write(fields...)
			}
			return nil
		},
	}))

	e.Use(middleware.BodyDump(func(c echo.Context, reqBody, resBody []byte) {
		if summary := summarizeBody(reqBody, c.Request().Header.Get(echo.HeaderContentType)); summary != nil {
			c.Set(requestBodyLogKey, summary)
		}
		if summary := summarizeBody(resBody, c.Response().Header().Get(echo.HeaderContentType)); summary != nil {
			c.Set(responseBodyLogKey, summary)
		}
	}))
}

// summarizeBody returns a log-safe rendition of a request or response body.
func summarizeBody(body []byte, contentType string) any {
	if len(body) == 0 {
		return nil
	}
	mediaType, params, _ := mime.ParseMediaType(strings.TrimSpace(contentType))

	switch {
	case strings.HasPrefix(mediaType, "multipart/"):
		return summarizeMultipart(body, params["boundary"])
	case mediaType == echo.MIMEApplicationForm:
		values, err := url.ParseQuery(string(body))
		if err != nil {
			return binary
		}
		fields := make(map[string]any, len(values))
		for key, vals := range values {
			for _, val := range vals {
				addFormField(fields, key, redactString(strings.ToLower(key), val))
			}
		}
		return clampJSON(fields)
	}

	var data any
	if err := json.Unmarshal(body, &data); err == nil {
		return clampJSON(redactJSON(data, ""))
	}
	if containsBinaryBytes(body) {
		return binary
	}
	if isSensitive(strings.ToLower(string(body))) {
		return redacted
	}
	return clampString(string(body))
}

func summarizeMultipart(body []byte, boundary string) any {
	if boundary == "" {
		return binary
	}
	reader := multipart.NewReader(bytes.NewReader(body), boundary)
	fields := make(map[string]any)
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return binary
		}
		name := part.FormName()
		switch {
		case name == "":
		case part.FileName() != "":
			addFormField(fields, name, binary)
		default:
			data, err := io.ReadAll(io.LimitReader(part, maxLoggedBody+1))
			if err != nil {
				addFormField(fields, name, binary)
			} else {
				addFormField(fields, name, redactString(strings.ToLower(name), string(data)))
			}
		}
		_ = part.Close()
	}
	if len(fields) == 0 {
		return binary
	}
	return clampJSON(fields)
}

func redactJSON(value any, key string) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			lower := strings.ToLower(k)
			if isSensitive(lower) {
				out[k] = redacted
				continue
			}
			out[k] = redactJSON(item, lower)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = redactJSON(item, key)
		}
		return out
	case string:
		return redactString(key, v)
	default:
		return v
	}
}

func redactString(key, value string) string {
	if isSensitive(key) {
		return redacted
	}
	if containsBinaryBytes([]byte(value)) {
		return binary
	}
	return clampString(value)
}

func isSensitive(key string) bool {
	for _, s := range sensitiveKeys {
		if strings.Contains(key, s) {
			return true
		}
	}
	return false
}

// clampJSON keeps small documents structured and flattens large ones to a
// truncated string.
func clampJSON(value any) any {
	buf, err := json.Marshal(value)
	if err != nil || len(buf) <= maxLoggedBody {
		return value
	}
	return clampString(string(buf))
}

func containsBinaryBytes(data []byte) bool {
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			return true
		}
		if !unicode.IsPrint(r) && !unicode.IsSpace(r) {
			return true
		}
		data = data[size:]
	}
	return false
}

func clampString(value string) string {
	if len(value) <= maxLoggedBody {
		return value
	}
	truncated := value[:maxLoggedBody]
	for !utf8.ValidString(truncated) && len(truncated) > 0 {
		truncated = truncated[:len(truncated)-1]
	}
	return truncated + "...(truncated)"
}

func addFormField(fields map[string]any, key string, value any) {
	existing, ok := fields[key]
	if !ok {
		fields[key] = value
		return
	}
	if items, ok := existing.([]any); ok {
		fields[key] = append(items, value)
		return
	}
	fields[key] = []any{existing, value}
}
