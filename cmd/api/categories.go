package main

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"storefront/internal/cache"
	"storefront/internal/db"
	"storefront/internal/domain/categories"
	"storefront/internal/params"
	"storefront/internal/slug"
	"storefront/internal/validation"
)

type CreateCategoryPayload struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
}

type UpdateCategoryPayload struct {
	Name        *string `json:"name" validate:"omitempty,max=255"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
}

// findCategory resolves an id-or-slug route key.
func (app *application) findCategory(ctx context.Context, key string) (*categories.Category, error) {
	k, ok := params.ParseKey(key)
	if !ok {
		return nil, db.ErrNotFound
	}
	if k.IsID() {
		return app.store.Categories.GetByID(ctx, k.ID)
	}
	return app.store.Categories.GetBySlug(ctx, k.Slug)
}

func (app *application) categoryNameTaken(excludeID *int64) func(context.Context, string) (bool, error) {
	return func(ctx context.Context, name string) (bool, error) {
		return app.store.Categories.NameTaken(ctx, name, excludeID)
	}
}

// listCategoriesHandler godoc
//
//	@Summary	List categories
//	@Tags		categories
//	@Produce	json
//	@Success	200	{array}	categories.Category
//	@Router		/categories [get]
func (app *application) listCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	app.cachedResponse(w, r, cache.ListKey(resCategories), func(ctx context.Context) (any, error) {
		list, err := app.store.Categories.List(ctx)
		if err != nil {
			return nil, err
		}
		if list == nil {
			list = []*categories.Category{}
		}
		return list, nil
	})
}

// getCategoryHandler godoc
//
//	@Summary	Get a category by id or slug
//	@Tags		categories
//	@Produce	json
//	@Param		key	path		string	true	"Category ID or slug"
//	@Success	200	{object}	categories.Category
//	@Failure	404	{object}	ErrorEnvelope
//	@Router		/categories/{key} [get]
func (app *application) getCategoryHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), db.QueryTimeoutDuration)
	defer cancel()

	c, err := app.findCategory(ctx, chi.URLParam(r, "key"))
	if err != nil {
		app.storeError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, c); err != nil {
		app.internalServerError(w, r, err)
	}
}

// createCategoryHandler godoc
//
//	@Summary		Create a category
//	@Description	The slug is derived from the name.
//	@Tags			categories
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreateCategoryPayload	true	"Category"
//	@Success		201		{object}	categories.Category
//	@Failure		422		{object}	ErrorEnvelope
//	@Failure		409		{object}	ErrorEnvelope
//	@Security		ApiKeyAuth
//	@Router			/categories [post]
func (app *application) createCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var payload CreateCategoryPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	payload.Name = strings.TrimSpace(payload.Name)

	ctx, cancel := context.WithTimeout(r.Context(), db.QueryTimeoutDuration)
	defer cancel()

	errs, err := validation.CheckUnique(ctx, validation.Struct(payload),
		validation.Unique{Field: "name", Value: payload.Name, Taken: app.categoryNameTaken(nil)})
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if errs != nil {
		app.failedValidationResponse(w, r, errs)
		return
	}

	c := &categories.Category{Name: payload.Name, Description: payload.Description}
	err = slug.Assign(ctx, app.slugs, app.store.Categories, c.Name, nil, func(s string) error {
		c.Slug = s
		return app.store.Categories.Create(ctx, c)
	})
	if err != nil {
		app.storeError(w, r, err)
		return
	}

	app.forget(ctx, resCategories)

	if err := app.jsonResponse(w, http.StatusCreated, c); err != nil {
		app.internalServerError(w, r, err)
	}
}

// updateCategoryHandler godoc
//
//	@Summary		Update a category
//	@Description	Sparse update. The slug is re-derived only when the name changes.
//	@Tags			categories
//	@Accept			json
//	@Produce		json
//	@Param			key		path		string					true	"Category ID or slug"
//	@Param			payload	body		UpdateCategoryPayload	true	"Fields to change"
//	@Success		200		{object}	categories.Category
//	@Failure		404		{object}	ErrorEnvelope
//	@Failure		422		{object}	ErrorEnvelope
//	@Security		ApiKeyAuth
//	@Router			/categories/{key} [put]
func (app *application) updateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var payload UpdateCategoryPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	payload.Name = trimmedOrNil(payload.Name)

	ctx, cancel := context.WithTimeout(r.Context(), db.QueryTimeoutDuration)
	defer cancel()

	c, err := app.findCategory(ctx, chi.URLParam(r, "key"))
	if err != nil {
		app.storeError(w, r, err)
		return
	}

	renamed := payload.Name != nil && *payload.Name != c.Name
	var rules []validation.Unique
	if renamed {
		rules = append(rules, validation.Unique{Field: "name", Value: *payload.Name, Taken: app.categoryNameTaken(&c.ID)})
	}
	errs, err := validation.CheckUnique(ctx, validation.Struct(payload), rules...)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if errs != nil {
		app.failedValidationResponse(w, r, errs)
		return
	}

	u := categories.Update{Description: payload.Description}
	var updated *categories.Category
	if renamed {
		u.Name = payload.Name
		err = slug.Assign(ctx, app.slugs, app.store.Categories, *payload.Name, &c.ID, func(s string) error {
			u.Slug = &s
			updated, err = app.store.Categories.Update(ctx, c.ID, u)
			return err
		})
	} else {
		updated, err = app.store.Categories.Update(ctx, c.ID, u)
	}
	if err != nil {
		app.storeError(w, r, err)
		return
	}

	// products embed their category
	app.forget(ctx, resCategories, resProducts)

	if err := app.jsonResponse(w, http.StatusOK, updated); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deleteCategoryHandler godoc
//
//	@Summary		Delete a category
//	@Description	Fails with 409 while products still reference the category.
//	@Tags			categories
//	@Produce		json
//	@Param			key	path		string	true	"Category ID or slug"
//	@Success		200	{object}	map[string]string
//	@Failure		404	{object}	ErrorEnvelope
//	@Failure		409	{object}	ErrorEnvelope
//	@Security		ApiKeyAuth
//	@Router			/categories/{key} [delete]
func (app *application) deleteCategoryHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), db.QueryTimeoutDuration)
	defer cancel()

	c, err := app.findCategory(ctx, chi.URLParam(r, "key"))
	if err != nil {
		app.storeError(w, r, err)
		return
	}

	if err := app.store.Categories.Delete(ctx, c.ID); err != nil {
		app.storeError(w, r, err)
		return
	}

	app.forget(ctx, resCategories, resProducts)

	if err := app.messageResponse(w, http.StatusOK, "Category deleted successfully.", nil); err != nil {
		app.internalServerError(w, r, err)
	}
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
