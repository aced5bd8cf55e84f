package main

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"storefront/internal/cache"
	"storefront/internal/db"
	"storefront/internal/domain/ourteams"
	"storefront/internal/params"
	"storefront/internal/validation"
)

type CreateMemberPayload struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Position    string  `json:"position" validate:"required,max=255"`
	Phone       *string `json:"phone" validate:"omitempty,npphone"`
	Email       *string `json:"email" validate:"omitempty,email,max=255"`
	Description *string `json:"description"`
}

type UpdateMemberPayload struct {
	Name        *string `json:"name" validate:"omitempty,max=255"`
	Position    *string `json:"position" validate:"omitempty,max=255"`
	Phone       *string `json:"phone" validate:"omitempty,npphone"`
	Email       *string `json:"email" validate:"omitempty,email,max=255"`
	Description *string `json:"description"`
}

type memberView struct {
	*ourteams.Member
	ImageURL *string `json:"image_url"`
}

func (app *application) memberView(m *ourteams.Member) memberView {
	v := memberView{Member: m}
	if m.Image != nil && *m.Image != "" {
		url := app.images.URL(*m.Image)
		v.ImageURL = &url
	}
	return v
}

func (app *application) memberEmailTaken(excludeID *int64) func(context.Context, string) (bool, error) {
	return func(ctx context.Context, email string) (bool, error) {
		return app.store.OurTeams.EmailTaken(ctx, email, excludeID)
	}
}

func emailRule(email *string, taken func(context.Context, string) (bool, error)) validation.Unique {
	rule := validation.Unique{Field: "email", Taken: taken}
	if email != nil {
		rule.Value = *email
	}
	return rule
}

// listMembersHandler godoc
//
//	@Summary	List team members
//	@Tags		ourteams
//	@Produce	json
//	@Success	200	{array}	memberView
//	@Router		/ourteams [get]
func (app *application) listMembersHandler(w http.ResponseWriter, r *http.Request) {
	app.cachedResponse(w, r, cache.ListKey(resOurTeams), func(ctx context.Context) (any, error) {
		list, err := app.store.OurTeams.List(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]memberView, 0, len(list))
		for _, m := range list {
			out = append(out, app.memberView(m))
		}
		return out, nil
	})
}

// getMemberHandler godoc
//
//	@Summary	Get a team member
//	@Tags		ourteams
//	@Produce	json
//	@Param		id	path		int	true	"Member ID"
//	@Success	200	{object}	memberView
//	@Failure	404	{object}	ErrorEnvelope
//	@Router		/ourteams/{id} [get]
func (app *application) getMemberHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := params.ParseID(chi.URLParam(r, "id"))
	if !ok {
		app.notFoundResponse(w, r, db.ErrNotFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), db.QueryTimeoutDuration)
	defer cancel()

	m, err := app.store.OurTeams.GetByID(ctx, id)
	if err != nil {
		app.storeError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, app.memberView(m)); err != nil {
		app.internalServerError(w, r, err)
	}
}

// createMemberHandler godoc
//
//	@Summary	Add a team member
//	@Tags		ourteams
//	@Accept		multipart/form-data
//	@Produce	json
//	@Param		name		formData	string	true	"Name"
//	@Param		position	formData	string	true	"Position"
//	@Param		phone		formData	string	false	"Phone (97/98 followed by 8 digits)"
//	@Param		email		formData	string	false	"Email"
//	@Param		description	formData	string	false	"Description"
//	@Param		image		formData	file	false	"Photo (max 2MB)"
//	@Success	201			{object}	memberView
//	@Failure	422			{object}	ErrorEnvelope
//	@Security	ApiKeyAuth
//	@Router		/ourteams [post]
func (app *application) createMemberHandler(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r, teamImagePolicy.bodyLimit()); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	defer cleanupForm(r)

	f := newFormReader(r)
	payload := CreateMemberPayload{
		Name:        f.string("name"),
		Position:    f.string("position"),
		Phone:       f.optString("phone"),
		Email:       f.optString("email"),
		Description: f.optString("description"),
	}
	uploads, closeUploads := f.uploads(teamImagePolicy)
	defer closeUploads()

	ctx, cancel := context.WithTimeout(r.Context(), db.QueryTimeoutDuration)
	defer cancel()

	errs := f.errs
	errs.Merge(validation.Struct(payload))
	errs, err := validation.CheckUnique(ctx, errs, emailRule(payload.Email, app.memberEmailTaken(nil)))
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if errs != nil {
		app.failedValidationResponse(w, r, errs)
		return
	}

	m := &ourteams.Member{
		Name:        payload.Name,
		Position:    payload.Position,
		Phone:       payload.Phone,
		Email:       payload.Email,
		Description: payload.Description,
	}
	var stored []string
	if len(uploads) > 0 {
		m.Image, _, stored = app.images.Replace(ctx, nil, &uploads[0], teamImagePolicy.prefix)
	}

	if err := app.store.OurTeams.Create(ctx, m); err != nil {
		app.images.Discard(context.WithoutCancel(ctx), stored)
		app.storeError(w, r, err)
		return
	}

	app.forget(ctx, resOurTeams)

	if err := app.jsonResponse(w, http.StatusCreated, app.memberView(m)); err != nil {
		app.internalServerError(w, r, err)
	}
}

// updateMemberHandler godoc
//
//	@Summary		Update a team member
//	@Description	Sparse update; a new image replaces the old one.
//	@Tags			ourteams
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			id			path		int		true	"Member ID"
//	@Param			name		formData	string	false	"Name"
//	@Param			position	formData	string	false	"Position"
//	@Param			phone		formData	string	false	"Phone"
//	@Param			email		formData	string	false	"Email"
//	@Param			description	formData	string	false	"Description"
//	@Param			image		formData	file	false	"Replacement photo"
//	@Success		200			{object}	memberView
//	@Failure		404			{object}	ErrorEnvelope
//	@Failure		422			{object}	ErrorEnvelope
//	@Security		ApiKeyAuth
//	@Router			/ourteams/{id} [put]
func (app *application) updateMemberHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := params.ParseID(chi.URLParam(r, "id"))
	if !ok {
		app.notFoundResponse(w, r, db.ErrNotFound)
		return
	}

	if err := parseForm(w, r, teamImagePolicy.bodyLimit()); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	defer cleanupForm(r)

	f := newFormReader(r)
	payload := UpdateMemberPayload{
		Name:        f.optString("name"),
		Position:    f.optString("position"),
		Phone:       f.optString("phone"),
		Email:       f.optString("email"),
		Description: f.optString("description"),
	}
	uploads, closeUploads := f.uploads(teamImagePolicy)
	defer closeUploads()

	ctx, cancel := context.WithTimeout(r.Context(), db.QueryTimeoutDuration)
	defer cancel()

	current, err := app.store.OurTeams.GetByID(ctx, id)
	if err != nil {
		app.storeError(w, r, err)
		return
	}

	errs := f.errs
	errs.Merge(validation.Struct(payload))
	errs, err = validation.CheckUnique(ctx, errs, emailRule(payload.Email, app.memberEmailTaken(&current.ID)))
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if errs != nil {
		app.failedValidationResponse(w, r, errs)
		return
	}

	u := ourteams.Update{
		Name:             payload.Name,
		Position:         payload.Position,
		Phone:            payload.Phone,
		Email:            payload.Email,
		Description:      payload.Description,
		ClearPhone:       f.cleared("phone"),
		ClearEmail:       f.cleared("email"),
		ClearDescription: f.cleared("description"),
	}
	var toDelete, stored []string
	if len(uploads) > 0 {
		u.Image, toDelete, stored = app.images.Replace(ctx, current.Image, &uploads[0], teamImagePolicy.prefix)
	}

	updated, err := app.store.OurTeams.Update(ctx, id, u)
	cleanupCtx := context.WithoutCancel(ctx)
	if err != nil {
		app.images.Discard(cleanupCtx, stored)
		app.storeError(w, r, err)
		return
	}
	app.images.Purge(cleanupCtx, toDelete)

	app.forget(ctx, resOurTeams)

	if err := app.jsonResponse(w, http.StatusOK, app.memberView(updated)); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deleteMemberHandler godoc
//
//	@Summary	Remove a team member
//	@Tags		ourteams
//	@Produce	json
//	@Param		id	path		int	true	"Member ID"
//	@Success	200	{object}	map[string]string
//	@Failure	404	{object}	ErrorEnvelope
//	@Security	ApiKeyAuth
//	@Router		/ourteams/{id} [delete]
func (app *application) deleteMemberHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := params.ParseID(chi.URLParam(r, "id"))
	if !ok {
		app.notFoundResponse(w, r, db.ErrNotFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), db.QueryTimeoutDuration)
	defer cancel()

	deleted, err := app.store.OurTeams.Delete(ctx, id)
	if err != nil {
		app.storeError(w, r, err)
		return
	}
	if deleted.Image != nil {
		app.images.Purge(context.WithoutCancel(ctx), []string{*deleted.Image})
	}

	app.forget(ctx, resOurTeams)

	if err := app.messageResponse(w, http.StatusOK, "Team member deleted successfully.", nil); err != nil {
		app.internalServerError(w, r, err)
	}
}
