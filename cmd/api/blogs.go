package main

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"storefront/internal/cache"
	"storefront/internal/db"
	"storefront/internal/domain/blogs"
	"storefront/internal/params"
	"storefront/internal/validation"
)

type CreateBlogPayload struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"required"`
}

type UpdateBlogPayload struct {
	Title       *string `json:"title" validate:"omitempty,max=255"`
	Description *string `json:"description"`
}

type blogView struct {
	*blogs.Blog
	ImageURL *string `json:"image_url"`
}

func (app *application) blogView(b *blogs.Blog) blogView {
	v := blogView{Blog: b}
	if b.Image != nil && *b.Image != "" {
		url := app.images.URL(*b.Image)
		v.ImageURL = &url
	}
	return v
}

// listBlogsHandler godoc
//
//	@Summary	List blogs
//	@Tags		blogs
//	@Produce	json
//	@Success	200	{array}	blogView
//	@Router		/blogs [get]
func (app *application) listBlogsHandler(w http.ResponseWriter, r *http.Request) {
	app.cachedResponse(w, r, cache.ListKey(resBlogs), func(ctx context.Context) (any, error) {
		list, err := app.store.Blogs.List(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]blogView, 0, len(list))
		for _, b := range list {
			out = append(out, app.blogView(b))
		}
		return out, nil
	})
}

// getBlogHandler godoc
//
//	@Summary	Get a blog
//	@Tags		blogs
//	@Produce	json
//	@Param		id	path		int	true	"Blog ID"
//	@Success	200	{object}	blogView
//	@Failure	404	{object}	ErrorEnvelope
//	@Router		/blogs/{id} [get]
func (app *application) getBlogHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := params.ParseID(chi.URLParam(r, "id"))
	if !ok {
		app.notFoundResponse(w, r, db.ErrNotFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), db.QueryTimeoutDuration)
	defer cancel()

	b, err := app.store.Blogs.GetByID(ctx, id)
	if err != nil {
		app.storeError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, app.blogView(b)); err != nil {
		app.internalServerError(w, r, err)
	}
}

// createBlogHandler godoc
//
//	@Summary		Create a blog
//	@Description	blog_by is taken from the authenticated user: name, else email, else "Unknown".
//	@Tags			blogs
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			title		formData	string	true	"Title"
//	@Param			description	formData	string	true	"Body"
//	@Param			image		formData	file	true	"Image (jpeg, png, webp, gif; max 5MB)"
//	@Success		201			{object}	blogView
//	@Failure		422			{object}	ErrorEnvelope
//	@Security		ApiKeyAuth
//	@Router			/blogs [post]
func (app *application) createBlogHandler(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r, blogImagePolicy.bodyLimit()); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	defer cleanupForm(r)

	f := newFormReader(r)
	payload := CreateBlogPayload{
		Title:       f.string("title"),
		Description: f.string("description"),
	}
	uploads, closeUploads := f.uploads(blogImagePolicy)
	defer closeUploads()

	errs := f.errs
	errs.Merge(validation.Struct(payload))
	if len(uploads) == 0 && !errs.Has("image") {
		errs.Add("image", validation.Required("image"))
	}
	if len(errs) > 0 {
		app.failedValidationResponse(w, r, errs)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), db.QueryTimeoutDuration)
	defer cancel()

	image, _, stored := app.images.Replace(ctx, nil, &uploads[0], blogImagePolicy.prefix)

	b := &blogs.Blog{
		Title:       payload.Title,
		Description: payload.Description,
		Image:       image,
		BlogBy:      getUserFromContext(r).Label(),
	}
	if err := app.store.Blogs.Create(ctx, b); err != nil {
		app.images.Discard(context.WithoutCancel(ctx), stored)
		app.storeError(w, r, err)
		return
	}

	app.forget(ctx, resBlogs)

	if err := app.jsonResponse(w, http.StatusCreated, app.blogView(b)); err != nil {
		app.internalServerError(w, r, err)
	}
}

// updateBlogHandler godoc
//
//	@Summary		Update a blog
//	@Description	Sparse update; a new image replaces the old one. blog_by never changes.
//	@Tags			blogs
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			id			path		int		true	"Blog ID"
//	@Param			title		formData	string	false	"Title"
//	@Param			description	formData	string	false	"Body"
//	@Param			image		formData	file	false	"Replacement image"
//	@Success		200			{object}	blogView
//	@Failure		404			{object}	ErrorEnvelope
//	@Failure		422			{object}	ErrorEnvelope
//	@Security		ApiKeyAuth
//	@Router			/blogs/{id} [put]
func (app *application) updateBlogHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := params.ParseID(chi.URLParam(r, "id"))
	if !ok {
		app.notFoundResponse(w, r, db.ErrNotFound)
		return
	}

	if err := parseForm(w, r, blogImagePolicy.bodyLimit()); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	defer cleanupForm(r)

	f := newFormReader(r)
	payload := UpdateBlogPayload{
		Title:       f.optString("title"),
		Description: f.optString("description"),
	}
	uploads, closeUploads := f.uploads(blogImagePolicy)
	defer closeUploads()

	ctx, cancel := context.WithTimeout(r.Context(), db.QueryTimeoutDuration)
	defer cancel()

	current, err := app.store.Blogs.GetByID(ctx, id)
	if err != nil {
		app.storeError(w, r, err)
		return
	}

	errs := f.errs
	errs.Merge(validation.Struct(payload))
	if len(errs) > 0 {
		app.failedValidationResponse(w, r, errs)
		return
	}

	u := blogs.Update{Title: payload.Title, Description: payload.Description}
	var toDelete, stored []string
	if len(uploads) > 0 {
		u.Image, toDelete, stored = app.images.Replace(ctx, current.Image, &uploads[0], blogImagePolicy.prefix)
	}

	updated, err := app.store.Blogs.Update(ctx, id, u)
	cleanupCtx := context.WithoutCancel(ctx)
	if err != nil {
		app.images.Discard(cleanupCtx, stored)
		app.storeError(w, r, err)
		return
	}
	app.images.Purge(cleanupCtx, toDelete)

	app.forget(ctx, resBlogs)

	if err := app.jsonResponse(w, http.StatusOK, app.blogView(updated)); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deleteBlogHandler godoc
//
//	@Summary	Delete a blog
//	@Tags		blogs
//	@Produce	json
//	@Param		id	path		int	true	"Blog ID"
//	@Success	200	{object}	map[string]string
//	@Failure	404	{object}	ErrorEnvelope
//	@Security	ApiKeyAuth
//	@Router		/blogs/{id} [delete]
func (app *application) deleteBlogHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := params.ParseID(chi.URLParam(r, "id"))
	if !ok {
		app.notFoundResponse(w, r, db.ErrNotFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), db.QueryTimeoutDuration)
	defer cancel()

	deleted, err := app.store.Blogs.Delete(ctx, id)
	if err != nil {
		app.storeError(w, r, err)
		return
	}
	if deleted.Image != nil {
		app.images.Purge(context.WithoutCancel(ctx), []string{*deleted.Image})
	}

	app.forget(ctx, resBlogs)

	if err := app.messageResponse(w, http.StatusOK, "Blog deleted successfully.", nil); err != nil {
		app.internalServerError(w, r, err)
	}
}
