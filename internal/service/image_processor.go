package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/foodieland/foodieland-api/internal/media"
	"github.com/foodieland/foodieland-api/internal/repository/ports"
)

// imageUploader validates an upload and stores it under a prefixed,
// timestamped object key in one bucket.
type imageUploader struct {
	storage   ports.ObjectStorage
	processor media.Processor
	bucket    string
	now       func() time.Time
}

func newImageUploader(storage ports.ObjectStorage, processor media.Processor, bucket string) *imageUploader {
	if processor == nil {
		processor = media.NewDecodeProcessor(0)
	}
	return &imageUploader{storage: storage, processor: processor, bucket: bucket, now: time.Now}
}

type storedImage struct {
	URL       string
	ObjectKey string
}

// upload returns the public URL and object key of the stored image.
func (u *imageUploader) upload(ctx context.Context, prefix string, upload media.Upload) (*storedImage, error) {
	result, err := u.processor.Process(ctx, upload)
	if err != nil {
		if errors.Is(err, media.ErrEmptyImage) || errors.Is(err, media.ErrImageTooLarge) || errors.Is(err, media.ErrUnsupportedImage) {
			return nil, fmt.Errorf("%w: image: %v", ErrValidation, err)
		}
		return nil, err
	}
	objectKey := path.Join(prefix, fmt.Sprintf("%d-%s%s", u.now().UnixNano(), media.BaseName(upload.FileName), result.Extension))
	url, err := u.storage.Upload(ctx, u.bucket, objectKey, result.ContentType, bytes.NewReader(result.Bytes), int64(len(result.Bytes)))
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}
	return &storedImage{URL: url, ObjectKey: objectKey}, nil
}

// discard removes an image whose record could not be saved.
func (u *imageUploader) discard(ctx context.Context, image *storedImage) {
	if image == nil {
		return
	}
	_ = u.storage.Remove(ctx, u.bucket, image.ObjectKey)
}
