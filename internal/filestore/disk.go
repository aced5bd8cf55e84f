// Package filestore is the blob storage capability used for uploaded images.
//
// Refs are storage-relative paths such as "product_images/3f1c.jpg". Drivers
// turn a ref into a public URL; the database only ever holds refs.
//
// Drivers:
//   - "local"      local filesystem served under a public base URL (default)
//   - "s3"         S3-compatible object storage (AWS S3, MinIO, R2)
//   - "cloudinary" Cloudinary media library
//   - "memory"     process memory, for tests and throwaway dev servers
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
)

var ErrNotConfigured = errors.New("filestore: driver is not configured")

// Disk is the blob storage driver interface.
type Disk interface {
	// Put writes r to path, replacing any existing object.
	Put(ctx context.Context, path string, r io.Reader) error

	// Exists reports whether an object is stored at path.
	Exists(ctx context.Context, path string) (bool, error)

	// Delete removes the object at path. Deleting a missing object is not an error.
	Delete(ctx context.Context, path string) error

	// URL returns the public URL for path.
	URL(path string) string
}

type Config struct {
	Driver string

	LocalRoot string
	PublicURL string

	S3Bucket   string
	S3Region   string
	S3Key      string
	S3Secret   string
	S3Endpoint string

	CloudinaryURL string
}

// Open returns the driver named by cfg.Driver.
func Open(ctx context.Context, cfg Config) (Disk, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", "local":
		return NewLocal(cfg.LocalRoot, cfg.PublicURL)
	case "s3":
		return NewS3(ctx, cfg)
	case "cloudinary":
		return NewCloudinary(cfg.CloudinaryURL)
	case "memory":
		return NewMemory(cfg.PublicURL), nil
	default:
		return nil, fmt.Errorf("filestore: unknown driver %q", cfg.Driver)
	}
}

// PublicPath returns the URL path under which disk serves refs, e.g. "/storage/".
func PublicPath(d Disk) string {
	u, err := url.Parse(d.URL(""))
	if err != nil || u.Path == "" {
		return "/"
	}
	if !strings.HasSuffix(u.Path, "/") {
		return u.Path + "/"
	}
	return u.Path
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
