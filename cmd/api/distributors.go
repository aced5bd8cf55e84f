package main

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"storefront/internal/cache"
	"storefront/internal/db"
	"storefront/internal/domain/distributors"
	"storefront/internal/params"
	"storefront/internal/validation"
)

type CreateDistributorPayload struct {
	Name     string `json:"name" validate:"required,max=255"`
	Location string `json:"location" validate:"required,max=255"`
	Phone    string `json:"phone" validate:"required,npphone"`
	Email    string `json:"email" validate:"required,email,max=255"`
}

type UpdateDistributorPayload struct {
	Name     *string `json:"name" validate:"omitempty,max=255"`
	Location *string `json:"location" validate:"omitempty,max=255"`
	Phone    *string `json:"phone" validate:"omitempty,npphone"`
	Email    *string `json:"email" validate:"omitempty,email,max=255"`
}

func (app *application) distributorRules(name, email *string, excludeID *int64) []validation.Unique {
	nameRule := validation.Unique{Field: "name", Taken: func(ctx context.Context, v string) (bool, error) {
		return app.store.Distributors.NameTaken(ctx, v, excludeID)
	}}
	if name != nil {
		nameRule.Value = *name
	}
	return []validation.Unique{
		nameRule,
		emailRule(email, func(ctx context.Context, v string) (bool, error) {
			return app.store.Distributors.EmailTaken(ctx, v, excludeID)
		}),
	}
}

// listDistributorsHandler godoc
//
//	@Summary	List distributors
//	@Tags		distributors
//	@Produce	json
//	@Success	200	{array}	distributors.Distributor
//	@Router		/distributors [get]
func (app *application) listDistributorsHandler(w http.ResponseWriter, r *http.Request) {
	app.cachedResponse(w, r, cache.ListKey(resDistributors), func(ctx context.Context) (any, error) {
		list, err := app.store.Distributors.List(ctx)
		if err != nil {
			return nil, err
		}
		if list == nil {
			list = []*distributors.Distributor{}
		}
		return list, nil
	})
}

// getDistributorHandler godoc
//
//	@Summary	Get a distributor
//	@Tags		distributors
//	@Produce	json
//	@Param		id	path		int	true	"Distributor ID"
//	@Success	200	{object}	distributors.Distributor
//	@Failure	404	{object}	ErrorEnvelope
//	@Router		/distributors/{id} [get]
func (app *application) getDistributorHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := params.ParseID(chi.URLParam(r, "id"))
	if !ok {
		app.notFoundResponse(w, r, db.ErrNotFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), db.QueryTimeoutDuration)
	defer cancel()

	d, err := app.store.Distributors.GetByID(ctx, id)
	if err != nil {
		app.storeError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, d); err != nil {
		app.internalServerError(w, r, err)
	}
}

// createDistributorHandler godoc
//
//	@Summary	Create a distributor
//	@Tags		distributors
//	@Accept		json
//	@Produce	json
//	@Param		payload	body		CreateDistributorPayload	true	"Distributor"
//	@Success	201		{object}	distributors.Distributor
//	@Failure	422		{object}	ErrorEnvelope
//	@Security	ApiKeyAuth
//	@Router		/distributors [post]
func (app *application) createDistributorHandler(w http.ResponseWriter, r *http.Request) {
	var payload CreateDistributorPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	payload.Name = strings.TrimSpace(payload.Name)
	payload.Location = strings.TrimSpace(payload.Location)
	payload.Phone = strings.TrimSpace(payload.Phone)
	payload.Email = strings.TrimSpace(payload.Email)

	ctx, cancel := context.WithTimeout(r.Context(), db.QueryTimeoutDuration)
	defer cancel()

	errs, err := validation.CheckUnique(ctx, validation.Struct(payload),
		app.distributorRules(&payload.Name, &payload.Email, nil)...)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if errs != nil {
		app.failedValidationResponse(w, r, errs)
		return
	}

	d := &distributors.Distributor{
		Name:     payload.Name,
		Location: payload.Location,
		Phone:    payload.Phone,
		Email:    payload.Email,
	}
	if err := app.store.Distributors.Create(ctx, d); err != nil {
		app.storeError(w, r, err)
		return
	}

	app.forget(ctx, resDistributors)

	if err := app.jsonResponse(w, http.StatusCreated, d); err != nil {
		app.internalServerError(w, r, err)
	}
}

// updateDistributorHandler godoc
//
//	@Summary	Update a distributor
//	@Tags		distributors
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int							true	"Distributor ID"
//	@Param		payload	body		UpdateDistributorPayload	true	"Fields to change"
//	@Success	200		{object}	distributors.Distributor
//	@Failure	404		{object}	ErrorEnvelope
//	@Failure	422		{object}	ErrorEnvelope
//	@Security	ApiKeyAuth
//	@Router		/distributors/{id} [put]
func (app *application) updateDistributorHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := params.ParseID(chi.URLParam(r, "id"))
	if !ok {
		app.notFoundResponse(w, r, db.ErrNotFound)
		return
	}

	var payload UpdateDistributorPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	payload.Name = trimmedOrNil(payload.Name)
	payload.Location = trimmedOrNil(payload.Location)
	payload.Phone = trimmedOrNil(payload.Phone)
	payload.Email = trimmedOrNil(payload.Email)

	ctx, cancel := context.WithTimeout(r.Context(), db.QueryTimeoutDuration)
	defer cancel()

	if _, err := app.store.Distributors.GetByID(ctx, id); err != nil {
		app.storeError(w, r, err)
		return
	}

	errs, err := validation.CheckUnique(ctx, validation.Struct(payload),
		app.distributorRules(payload.Name, payload.Email, &id)...)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if errs != nil {
		app.failedValidationResponse(w, r, errs)
		return
	}

	updated, err := app.store.Distributors.Update(ctx, id, distributors.Update{
		Name:     payload.Name,
		Location: payload.Location,
		Phone:    payload.Phone,
		Email:    payload.Email,
	})
	if err != nil {
		app.storeError(w, r, err)
		return
	}

	app.forget(ctx, resDistributors)

	if err := app.jsonResponse(w, http.StatusOK, updated); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deleteDistributorHandler godoc
//
//	@Summary	Delete a distributor
//	@Tags		distributors
//	@Produce	json
//	@Param		id	path		int	true	"Distributor ID"
//	@Success	200	{object}	map[string]string
//	@Failure	404	{object}	ErrorEnvelope
//	@Security	ApiKeyAuth
//	@Router		/distributors/{id} [delete]
func (app *application) deleteDistributorHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := params.ParseID(chi.URLParam(r, "id"))
	if !ok {
		app.notFoundResponse(w, r, db.ErrNotFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), db.QueryTimeoutDuration)
	defer cancel()

	if err := app.store.Distributors.Delete(ctx, id); err != nil {
		app.storeError(w, r, err)
		return
	}

	app.forget(ctx, resDistributors)

	if err := app.messageResponse(w, http.StatusOK, "Distributor deleted successfully.", nil); err != nil {
		app.internalServerError(w, r, err)
	}
}
