package main

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"storefront/internal/cache"
	"storefront/internal/db"
	"storefront/internal/domain/products"
	"storefront/internal/images"
	"storefront/internal/params"
	"storefront/internal/slug"
	"storefront/internal/validation"
)

// CreateProductPayload is decoded from multipart/form-data; images are sent as
// files under images[].
type CreateProductPayload struct {
	CategoryID  *int64  `json:"category_id" validate:"required,gt=0"`
	Name        string  `json:"name" validate:"required,max=255"`
	OldPrice    *int64  `json:"old_price" validate:"omitempty,gte=0"`
	Price       *int64  `json:"price" validate:"required,gte=0"`
	Description *string `json:"description"`
}

// UpdateProductPayload is a sparse multipart update. remove_images[] lists
// refs or URLs to drop; new files under images[] are appended.
type UpdateProductPayload struct {
	CategoryID   *int64   `json:"category_id" validate:"omitempty,gt=0"`
	Name         *string  `json:"name" validate:"omitempty,max=255"`
	OldPrice     *int64   `json:"old_price" validate:"omitempty,gte=0"`
	Price        *int64   `json:"price" validate:"omitempty,gte=0"`
	Description  *string  `json:"description"`
	RemoveImages []string `json:"remove_images"`
}

// productView is a product as clients see it: image refs become URLs.
type productView struct {
	*products.Product
	Images []string `json:"images"`
}

func (app *application) productView(p *products.Product) productView {
	return productView{Product: p, Images: app.images.URLs(p.Images)}
}

func (app *application) findProduct(ctx context.Context, key string) (*products.Product, error) {
	k, ok := params.ParseKey(key)
	if !ok {
		return nil, db.ErrNotFound
	}
	if k.IsID() {
		return app.store.Products.GetByID(ctx, k.ID)
	}
	return app.store.Products.GetBySlug(ctx, k.Slug)
}

func (app *application) productNameTaken(excludeID *int64) func(context.Context, string) (bool, error) {
	return func(ctx context.Context, name string) (bool, error) {
		return app.store.Products.NameTaken(ctx, name, excludeID)
	}
}

// checkCategoryExists records "The selected category id is invalid." for unknown ids.
func (app *application) checkCategoryExists(ctx context.Context, errs validation.Errors, id *int64) error {
	if id == nil || errs.Has("category_id") {
		return nil
	}
	if _, err := app.store.Categories.GetByID(ctx, *id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			errs.Add("category_id", "The selected category id is invalid.")
			return nil
		}
		return err
	}
	return nil
}

// listProductsHandler godoc
//
//	@Summary		List products
//	@Description	Image refs are resolved to public URLs; each product includes its category.
//	@Tags			products
//	@Produce		json
//	@Success		200	{array}	productView
//	@Router			/products [get]
func (app *application) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	app.cachedResponse(w, r, cache.ListKey(resProducts), func(ctx context.Context) (any, error) {
		list, err := app.store.Products.List(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]productView, 0, len(list))
		for _, p := range list {
			out = append(out, app.productView(p))
		}
		return out, nil
	})
}

// getProductHandler godoc
//
//	@Summary	Get a product by id or slug
//	@Tags		products
//	@Produce	json
//	@Param		key	path		string	true	"Product ID or slug"
//	@Success	200	{object}	productView
//	@Failure	404	{object}	ErrorEnvelope
//	@Router		/products/{key} [get]
func (app *application) getProductHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), db.QueryTimeoutDuration)
	defer cancel()

	p, err := app.findProduct(ctx, chi.URLParam(r, "key"))
	if err != nil {
		app.storeError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, app.productView(p)); err != nil {
		app.internalServerError(w, r, err)
	}
}

// createProductHandler godoc
//
//	@Summary		Create a product
//	@Description	multipart/form-data with at least one image under images[].
//	@Tags			products
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			category_id	formData	int		true	"Category ID"
//	@Param			name		formData	string	true	"Name"
//	@Param			old_price	formData	int		false	"Old price"
//	@Param			price		formData	int		true	"Price"
//	@Param			description	formData	string	false	"Description"
//	@Param			images[]	formData	file	true	"Images (jpeg, png, webp, gif; max 5MB each)"
//	@Success		201			{object}	productView
//	@Failure		422			{object}	ErrorEnvelope
//	@Security		ApiKeyAuth
//	@Router			/products [post]
func (app *application) createProductHandler(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r, productImagesPolicy.bodyLimit()); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	defer cleanupForm(r)

	f := newFormReader(r)
	payload := CreateProductPayload{
		CategoryID:  f.optInt("category_id"),
		Name:        f.string("name"),
		OldPrice:    f.optInt("old_price"),
		Price:       f.optInt("price"),
		Description: f.optString("description"),
	}
	uploads, closeUploads := f.uploads(productImagesPolicy)
	defer closeUploads()

	errs := f.errs
	errs.Merge(validation.Struct(payload))
	if len(uploads) == 0 && !errs.Has("images") && !hasIndexedErrors(errs, "images") {
		errs.Add("images", validation.Required("images"))
	}

	ctx, cancel := context.WithTimeout(r.Context(), db.QueryTimeoutDuration)
	defer cancel()

	if err := app.checkCategoryExists(ctx, errs, payload.CategoryID); err != nil {
		app.internalServerError(w, r, err)
		return
	}
	errs, err := validation.CheckUnique(ctx, errs,
		validation.Unique{Field: "name", Value: payload.Name, Taken: app.productNameTaken(nil)})
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if errs != nil {
		app.failedValidationResponse(w, r, errs)
		return
	}

	res := app.images.Reconcile(ctx, nil, nil, uploads, productImagesPolicy.prefix)

	p := &products.Product{
		CategoryID:  *payload.CategoryID,
		Name:        payload.Name,
		OldPrice:    payload.OldPrice,
		Price:       *payload.Price,
		Description: payload.Description,
		Images:      res.Final,
	}
	err = slug.Assign(ctx, app.slugs, app.store.Products, p.Name, nil, func(s string) error {
		p.Slug = s
		return app.store.Products.Create(ctx, p)
	})
	if err != nil {
		app.images.Discard(context.WithoutCancel(ctx), res.Stored)
		app.storeError(w, r, err)
		return
	}

	app.forget(ctx, resProducts)

	created, err := app.store.Products.GetByID(ctx, p.ID)
	if err != nil {
		created = p
	}

	if err := app.jsonResponse(w, http.StatusCreated, app.productView(created)); err != nil {
		app.internalServerError(w, r, err)
	}
}

// updateProductHandler godoc
//
//	@Summary		Update a product
//	@Description	Sparse multipart update. remove_images[] drops refs or URLs; images[] appends files.
//	@Description	The slug is re-derived only when the name changes.
//	@Tags			products
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			key				path		string	true	"Product ID or slug"
//	@Param			category_id		formData	int		false	"Category ID"
//	@Param			name			formData	string	false	"Name"
//	@Param			old_price		formData	int		false	"Old price, blank clears it"
//	@Param			price			formData	int		false	"Price"
//	@Param			description		formData	string	false	"Description, blank clears it"
//	@Param			remove_images[]	formData	string	false	"Refs or URLs to remove"
//	@Param			images[]		formData	file	false	"Images to add"
//	@Success		200				{object}	productView
//	@Failure		404				{object}	ErrorEnvelope
//	@Failure		422				{object}	ErrorEnvelope
//	@Security		ApiKeyAuth
//	@Router			/products/{key} [put]
func (app *application) updateProductHandler(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r, productImagesPolicy.bodyLimit()); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	defer cleanupForm(r)

	f := newFormReader(r)
	payload := UpdateProductPayload{
		CategoryID:   f.optInt("category_id"),
		Name:         f.optString("name"),
		OldPrice:     f.optInt("old_price"),
		Price:        f.optInt("price"),
		Description:  f.optString("description"),
		RemoveImages: f.list("remove_images"),
	}
	uploads, closeUploads := f.uploads(productImagesPolicy)
	defer closeUploads()

	ctx, cancel := context.WithTimeout(r.Context(), db.QueryTimeoutDuration)
	defer cancel()

	current, err := app.findProduct(ctx, chi.URLParam(r, "key"))
	if err != nil {
		app.storeError(w, r, err)
		return
	}

	errs := f.errs
	errs.Merge(validation.Struct(payload))
	if err := app.checkCategoryExists(ctx, errs, payload.CategoryID); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	renamed := payload.Name != nil && *payload.Name != current.Name
	var rules []validation.Unique
	if renamed {
		rules = append(rules, validation.Unique{Field: "name", Value: *payload.Name, Taken: app.productNameTaken(&current.ID)})
	}
	errs, err = validation.CheckUnique(ctx, errs, rules...)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if errs != nil {
		app.failedValidationResponse(w, r, errs)
		return
	}

	u := products.Update{
		CategoryID:       payload.CategoryID,
		OldPrice:         payload.OldPrice,
		Price:            payload.Price,
		Description:      payload.Description,
		ClearOldPrice:    f.cleared("old_price"),
		ClearDescription: f.cleared("description"),
	}

	var res images.Result
	if len(payload.RemoveImages) > 0 || len(uploads) > 0 {
		res = app.images.Reconcile(ctx, current.Images, payload.RemoveImages, uploads, productImagesPolicy.prefix)
		u.Images = &res.Final
	}

	var updated *products.Product
	if renamed {
		u.Name = payload.Name
		err = slug.Assign(ctx, app.slugs, app.store.Products, *payload.Name, &current.ID, func(s string) error {
			u.Slug = &s
			updated, err = app.store.Products.Update(ctx, current.ID, u)
			return err
		})
	} else {
		updated, err = app.store.Products.Update(ctx, current.ID, u)
	}

	cleanupCtx := context.WithoutCancel(ctx)
	if err != nil {
		app.images.Discard(cleanupCtx, res.Stored)
		app.storeError(w, r, err)
		return
	}
	app.images.Purge(cleanupCtx, res.ToDelete)

	app.forget(ctx, resProducts)

	if withCategory, err := app.store.Products.GetByID(ctx, updated.ID); err == nil {
		updated = withCategory
	}

	if err := app.jsonResponse(w, http.StatusOK, app.productView(updated)); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deleteProductHandler godoc
//
//	@Summary		Delete a product
//	@Description	Removes the row, then its image files (best effort).
//	@Tags			products
//	@Produce		json
//	@Param			key	path		string	true	"Product ID or slug"
//	@Success		200	{object}	map[string]string
//	@Failure		404	{object}	ErrorEnvelope
//	@Security		ApiKeyAuth
//	@Router			/products/{key} [delete]
func (app *application) deleteProductHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), db.QueryTimeoutDuration)
	defer cancel()

	p, err := app.findProduct(ctx, chi.URLParam(r, "key"))
	if err != nil {
		app.storeError(w, r, err)
		return
	}

	deleted, err := app.store.Products.Delete(ctx, p.ID)
	if err != nil {
		app.storeError(w, r, err)
		return
	}
	app.images.Purge(context.WithoutCancel(ctx), deleted.Images)

	app.forget(ctx, resProducts)

	if err := app.messageResponse(w, http.StatusOK, "Product deleted successfully.", nil); err != nil {
		app.internalServerError(w, r, err)
	}
}

func hasIndexedErrors(errs validation.Errors, field string) bool {
	for k := range errs {
		if strings.HasPrefix(k, field+".") {
			return true
		}
	}
	return false
}
