// Package qrexport renders asset report links as QR images and publishes them.
package qrexport

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/url"
	"path"

	"github.com/skip2/go-qrcode"

	"github.com/Codeveil-Studio/QResolve-app/internal/domain/entity"
)

const DefaultSize = 256

var ErrStorageDisabled = errors.New("qr storage not configured")

// ReportURL is the public link encoded in an asset's QR code. The query
// parameters are display hints only.
func ReportURL(base string, a *entity.Asset) string {
	q := url.Values{}
	if a.Location != nil {
		q.Set("location", *a.Location)
	} else {
		q.Set("location", "")
	}
	q.Set("name", a.Name)
	q.Set("orgId", a.OrgID)
	return base + "/report/" + url.PathEscape(a.ID) + "?" + q.Encode()
}

// PNG encodes content with medium error recovery.
func PNG(content string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultSize
	}
	return qrcode.Encode(content, qrcode.Medium, size)
}

// Uploader stores objects and returns their public URL.
type Uploader interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
	Remove(ctx context.Context, objectPath string) error
}

// ObjectPath is where an asset's QR image is stored.
func ObjectPath(a *entity.Asset) string {
	return path.Join("qr", a.OrgID, a.ID+".png")
}

// Exporter renders and uploads QR images for assets.
type Exporter struct {
	BaseURL  string
	Size     int
	Uploader Uploader
}

func (e *Exporter) Render(a *entity.Asset) ([]byte, error) {
	return PNG(ReportURL(e.BaseURL, a), e.Size)
}

func (e *Exporter) Publish(ctx context.Context, a *entity.Asset) (string, error) {
	if e.Uploader == nil {
		return "", ErrStorageDisabled
	}
	png, err := e.Render(a)
	if err != nil {
		return "", err
	}
	return e.Uploader.Upload(ctx, ObjectPath(a), "image/png", bytes.NewReader(png))
}

// Unpublish removes a stored QR image. Without storage there is nothing to remove.
func (e *Exporter) Unpublish(ctx context.Context, a *entity.Asset) error {
	if e.Uploader == nil {
		return nil
	}
	return e.Uploader.Remove(ctx, ObjectPath(a))
}
