package main

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"storefront/internal/images"
	"storefront/internal/validation"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

var allowedImageExts = []string{"jpeg", "png", "jpg", "webp", "gif"}

// uploadPolicy describes the files an endpoint accepts under one form field.
type uploadPolicy struct {
	field    string
	prefix   string
	maxBytes int64
	maxFiles int
}

var (
	productImagesPolicy = uploadPolicy{field: "images", prefix: "product_images", maxBytes: 5 << 20, maxFiles: 10}
	blogImagePolicy     = uploadPolicy{field: "image", prefix: "blogs", maxBytes: 5 << 20, maxFiles: 1}
	teamImagePolicy     = uploadPolicy{field: "image", prefix: "teams", maxBytes: 2 << 20, maxFiles: 1}
)

func (p uploadPolicy) bodyLimit() int64 {
	return p.maxBytes*int64(p.maxFiles) + 1<<20
}

// helper: sniff first 512 bytes and reset reader
func sniffMIME(file multipart.File) (string, error) {
	buf := make([]byte, 512)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read: %w", err)
	}
	mime := http.DetectContentType(buf[:n])

	// reset so later reads start from byte 0
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("seek reset: %w", err)
	}
	return mime, nil
}

// parseForm parses a multipart body capped at limit bytes. Bodies that are not
// multipart are parsed as url-encoded forms and carry no files.
func parseForm(w http.ResponseWriter, r *http.Request, limit int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	err := r.ParseMultipartForm(32 << 20)
	if errors.Is(err, http.ErrNotMultipart) {
		return r.ParseForm()
	}
	return err
}

func cleanupForm(r *http.Request) {
	if r.MultipartForm != nil {
		_ = r.MultipartForm.RemoveAll()
	}
}

// formReader reads typed values from a parsed form and records conversion
// failures as field errors.
type formReader struct {
	r    *http.Request
	errs validation.Errors
}

func newFormReader(r *http.Request) *formReader {
	return &formReader{r: r, errs: validation.Errors{}}
}

func (f *formReader) values(key string) []string {
	if vs, ok := f.r.PostForm[key]; ok {
		return vs
	}
	return f.r.PostForm[key+"[]"]
}

// string returns the trimmed first value of key, or "" when absent.
func (f *formReader) string(key string) string {
	vs := f.values(key)
	if len(vs) == 0 {
		return ""
	}
	return strings.TrimSpace(vs[0])
}

// cleared reports whether key was sent with a blank value. Sparse updates
// use it to null out optional columns.
func (f *formReader) cleared(key string) bool {
	vs := f.values(key)
	return len(vs) > 0 && strings.TrimSpace(vs[0]) == ""
}

// optString returns nil when key is absent or blank.
func (f *formReader) optString(key string) *string {
	s := f.string(key)
	if s == "" {
		return nil
	}
	return &s
}

// optInt returns nil when key is absent or blank.
func (f *formReader) optInt(key string) *int64 {
	s := f.string(key)
	if s == "" {
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		f.errs.Add(key, fmt.Sprintf("The %s must be an integer.", validation.Label(key)))
		return nil
	}
	return &n
}

// list returns every non-blank value of key and key[].
func (f *formReader) list(key string) []string {
	var out []string
	for _, k := range []string{key, key + "[]"} {
		for _, v := range f.r.PostForm[k] {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

// uploads opens and checks the files sent under p.field (and p.field+"[]").
// Violations are recorded in f.errs; the returned closer releases open files.
func (f *formReader) uploads(p uploadPolicy) ([]images.Upload, func()) {
	var headers []*multipart.FileHeader
	if f.r.MultipartForm != nil {
		headers = append(headers, f.r.MultipartForm.File[p.field]...)
		headers = append(headers, f.r.MultipartForm.File[p.field+"[]"]...)
	}

	var opened []multipart.File
	closeAll := func() {
		for _, file := range opened {
			_ = file.Close()
		}
	}

	if len(headers) > p.maxFiles {
		f.errs.Add(p.field, fmt.Sprintf("The %s may not have more than %d items.", validation.Label(p.field), p.maxFiles))
		return nil, closeAll
	}

	var out []images.Upload
	for i, fh := range headers {
		key := p.field
		if p.maxFiles > 1 {
			key = fmt.Sprintf("%s.%d", p.field, i)
		}

		if fh.Size > p.maxBytes {
			f.errs.Add(key, validation.MaxKilobytes(key, p.maxBytes>>10))
			continue
		}

		file, err := fh.Open()
		if err != nil {
			f.errs.Add(key, fmt.Sprintf("The %s failed to upload.", validation.Label(key)))
			continue
		}
		opened = append(opened, file)

		mime, err := sniffMIME(file)
		if err != nil || !allowedImageTypes[mime] {
			f.errs.Add(key, validation.Mimes(key, allowedImageExts))
			continue
		}

		out = append(out, images.Upload{Filename: fh.Filename, ContentType: mime, Body: file})
	}
	return out, closeAll
}
