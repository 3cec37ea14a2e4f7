package qrexport

import (
	"context"
	"io"

	"cloud.google.com/go/storage"

	"github.com/Codeveil-Studio/QResolve-app/pkg/helpers"
)

// GCSUploader writes QR images to a Cloud Storage bucket.
type GCSUploader struct {
	Client *storage.Client
	Bucket string
}

func (u GCSUploader) Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error) {
	return helpers.UploadObject(ctx, u.Client, u.Bucket, objectPath, contentType, r)
}

func (u GCSUploader) Remove(ctx context.Context, objectPath string) error {
	return helpers.DeleteObject(ctx, u.Client, u.Bucket, objectPath)
}
