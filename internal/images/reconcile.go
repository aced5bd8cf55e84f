// Package images keeps an entity's stored image refs in step with the blob store.
//
// Refs are written to the database first and files are purged afterwards. A
// failed delete leaves an orphaned file behind rather than losing the record
// update, so file cleanup is at-least-once best effort, never exactly-once.
package images

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront/internal/filestore"
	"storefront/internal/metrics"
)

// Upload is a file received from a client, not yet stored.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// Result is the outcome of Reconcile.
type Result struct {
	// Final is the ref set to persist: kept refs in their original order, then new refs in upload order.
	Final []string
	// ToDelete are refs removed from the set; purge them after the record is saved.
	ToDelete []string
	// Stored are the refs written during this call; discard them if the record write fails.
	Stored []string
}

type Reconciler struct {
	Disk   filestore.Disk
	Logger *zap.SugaredLogger
}

func New(disk filestore.Disk, logger *zap.SugaredLogger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Reconciler{Disk: disk, Logger: logger}
}

// Reconcile computes the new ref set for an entity. Removals may be bare refs,
// "/storage/..." paths or full URLs; removals not present in current are ignored.
func (r *Reconciler) Reconcile(ctx context.Context, current, removals []string, uploads []Upload, prefix string) Result {
	removed := make(map[string]struct{}, len(removals))
	for _, rm := range removals {
		if ref := r.Normalize(rm); ref != "" {
			removed[ref] = struct{}{}
		}
	}

	kept := make([]string, 0, len(current))
	for _, ref := range current {
		if _, ok := removed[ref]; !ok {
			kept = append(kept, ref)
		}
	}

	stored := r.storeAll(ctx, uploads, prefix)
	final := dedup(append(kept, stored...))

	inFinal := make(map[string]struct{}, len(final))
	for _, ref := range final {
		inFinal[ref] = struct{}{}
	}

	var toDelete []string
	seen := map[string]struct{}{}
	for _, ref := range current {
		if _, ok := removed[ref]; !ok {
			continue
		}
		if _, ok := inFinal[ref]; ok {
			continue
		}
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		toDelete = append(toDelete, ref)
	}

	return Result{Final: final, ToDelete: toDelete, Stored: stored}
}

// Replace handles single-image entities. With no upload the old ref is kept.
// Otherwise the upload is stored and old is returned for deletion. A failed
// store keeps the old ref.
func (r *Reconciler) Replace(ctx context.Context, old *string, upload *Upload, prefix string) (ref *string, toDelete []string, stored []string) {
	if upload == nil {
		return old, nil, nil
	}
	stored = r.storeAll(ctx, []Upload{*upload}, prefix)
	if len(stored) == 0 {
		return old, nil, nil
	}
	if old != nil && *old != "" && *old != stored[0] {
		toDelete = []string{*old}
	}
	return &stored[0], toDelete, stored
}

// Store writes a single upload under prefix and returns its ref.
func (r *Reconciler) Store(ctx context.Context, u Upload, prefix string) (string, error) {
	ref := path.Join(prefix, uuid.NewString()+extension(u))
	if err := r.Disk.Put(ctx, ref, u.Body); err != nil {
		return "", fmt.Errorf("store %s: %w", u.Filename, err)
	}
	return ref, nil
}

// Purge deletes refs from the blob store. Failures are logged and counted; the
// remaining refs are still attempted.
func (r *Reconciler) Purge(ctx context.Context, refs []string) {
	for _, ref := range refs {
		if ref == "" {
			continue
		}
		if err := r.Disk.Delete(ctx, ref); err != nil {
			metrics.StorageFailures.WithLabelValues("delete").Inc()
			r.Logger.Warnw("image delete failed", "ref", ref, "error", err)
		}
	}
}

// Discard removes uploads stored by a call whose record write then failed.
func (r *Reconciler) Discard(ctx context.Context, stored []string) {
	r.Purge(ctx, stored)
}

// URL maps a ref to its public URL.
func (r *Reconciler) URL(ref string) string {
	if ref == "" {
		return ""
	}
	return r.Disk.URL(ref)
}

// URLs maps refs to public URLs, preserving order.
func (r *Reconciler) URLs(refs []string) []string {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		out = append(out, r.URL(ref))
	}
	return out
}

// Normalize turns a URL or public path into a storage-relative ref.
func (r *Reconciler) Normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if u, err := url.Parse(s); err == nil && u.Scheme != "" && u.Host != "" {
		s = u.Path
	}
	if public := filestore.PublicPath(r.Disk); public != "/" {
		s = strings.TrimPrefix(s, public)
		s = strings.TrimPrefix(s, strings.TrimLeft(public, "/"))
	}
	return strings.TrimLeft(s, "/")
}

func (r *Reconciler) storeAll(ctx context.Context, uploads []Upload, prefix string) []string {
	var stored []string
	for _, u := range uploads {
		ref, err := r.Store(ctx, u, prefix)
		if err != nil {
			metrics.StorageFailures.WithLabelValues("put").Inc()
			r.Logger.Warnw("image store failed", "prefix", prefix, "error", err)
			continue
		}
		stored = append(stored, ref)
	}
	return stored
}

var extByType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

func extension(u Upload) string {
	if ext, ok := extByType[u.ContentType]; ok {
		return ext
	}
	ext := strings.ToLower(path.Ext(u.Filename))
	if ext == ".jpeg" {
		return ".jpg"
	}
	return ext
}

func dedup(refs []string) []string {
	seen := make(map[string]struct{}, len(refs))
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		out = append(out, ref)
	}
	return out
}
