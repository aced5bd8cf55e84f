package filestore

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/admin"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// Cloudinary stores images in a Cloudinary media library. A ref such as
// "blogs/ab12.jpg" maps to public ID "blogs/ab12"; the extension picks the
// delivery format.
type Cloudinary struct {
	cld     *cloudinary.Cloudinary
	baseURL string
}

func NewCloudinary(cloudinaryURL string) (*Cloudinary, error) {
	if cloudinaryURL == "" {
		return nil, fmt.Errorf("filestore/cloudinary: url: %w", ErrNotConfigured)
	}
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("filestore/cloudinary: %w", err)
	}
	return &Cloudinary{
		cld:     cld,
		baseURL: fmt.Sprintf("https://res.cloudinary.com/%s/image/upload", cld.Config.Cloud.CloudName),
	}, nil
}

func publicID(ref string) string {
	return strings.TrimSuffix(ref, path.Ext(ref))
}

func (d *Cloudinary) Put(ctx context.Context, ref string, r io.Reader) error {
	resp, err := d.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		PublicID:  publicID(ref),
		Overwrite: api.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("filestore/cloudinary: upload %s: %w", ref, err)
	}
	if resp.Error.Message != "" {
		return fmt.Errorf("filestore/cloudinary: upload %s: %s", ref, resp.Error.Message)
	}
	return nil
}

func (d *Cloudinary) Exists(ctx context.Context, ref string) (bool, error) {
	resp, err := d.cld.Admin.Asset(ctx, admin.AssetParams{PublicID: publicID(ref)})
	if err != nil {
		return false, fmt.Errorf("filestore/cloudinary: asset %s: %w", ref, err)
	}
	return resp.Error.Message == "" && resp.PublicID != "", nil
}

func (d *Cloudinary) Delete(ctx context.Context, ref string) error {
	resp, err := d.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID(ref)})
	if err != nil {
		return fmt.Errorf("filestore/cloudinary: destroy %s: %w", ref, err)
	}
	if resp.Error.Message != "" {
		return fmt.Errorf("filestore/cloudinary: destroy %s: %s", ref, resp.Error.Message)
	}
	return nil
}

func (d *Cloudinary) URL(ref string) string { return joinURL(d.baseURL, ref) }
