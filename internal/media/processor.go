package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/webp"
)

const DefaultMaxBytes = int64(2 * 1024 * 1024)

var (
	ErrEmptyImage       = errors.New("media: empty image")
	ErrImageTooLarge    = errors.New("media: image too large")
	ErrUnsupportedImage = errors.New("media: unsupported image format")
)

type Upload struct {
	Reader      io.Reader
	Size        int64
	FileName    string
	ContentType string
}

type Result struct {
	Bytes       []byte
	ContentType string
	Extension   string
	Width       int
	Height      int
}

type Processor interface {
	Process(ctx context.Context, upload Upload) (*Result, error)
}

var formats = map[string]struct {
	contentType string
	extension   string
}{
	"jpeg": {"image/jpeg", ".jpg"},
	"png":  {"image/png", ".png"},
	"gif":  {"image/gif", ".gif"},
	"webp": {"image/webp", ".webp"},
}

// DecodeProcessor accepts an upload only when its bytes decode as one of the
// supported formats. The declared content type is ignored in favor of the
// sniffed format.
type DecodeProcessor struct {
	maxBytes int64
}

func NewDecodeProcessor(maxBytes int64) *DecodeProcessor {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &DecodeProcessor{maxBytes: maxBytes}
}

func (p *DecodeProcessor) MaxBytes() int64 {
	return p.maxBytes
}

func (p *DecodeProcessor) Process(ctx context.Context, upload Upload) (*Result, error) {
	if upload.Reader == nil {
		return nil, ErrEmptyImage
	}
	if upload.Size > p.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrImageTooLarge, upload.Size, p.maxBytes)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(upload.Reader, p.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("media: read image: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	if int64(len(data)) > p.maxBytes {
		return nil, fmt.Errorf("%w: exceeds %d bytes", ErrImageTooLarge, p.maxBytes)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	f, ok := formats[format]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, format)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: invalid dimensions %dx%d", ErrUnsupportedImage, cfg.Width, cfg.Height)
	}

	return &Result{
		Bytes:       data,
		ContentType: f.contentType,
		Extension:   f.extension,
		Width:       cfg.Width,
		Height:      cfg.Height,
	}, nil
}

// BaseName returns a slug-safe stem of the client file name.
func BaseName(fileName string) string {
	stem := strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
	var b strings.Builder
	for _, r := range strings.ToLower(stem) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == ' ' || r == '.':
			b.WriteByte('-')
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" || out == "." {
		return "image"
	}
	return out
}
