package main

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"storefront/internal/db"
	"storefront/internal/domain/users"
	"storefront/internal/params"
)

type userKey string

const (
	userCtx  userKey = "user"
	tokenCtx userKey = "token"
)

func getUserFromContext(r *http.Request) *users.User {
	if user, ok := r.Context().Value(userCtx).(*users.User); ok {
		return user
	}
	return nil
}

func getTokenHashFromContext(r *http.Request) string {
	hash, _ := r.Context().Value(tokenCtx).(string)
	return hash
}

// getCurrentUserHandler godoc
//
//	@Summary		Current user
//	@Description	Returns the user that owns the bearer token.
//	@Tags			users
//	@Produce		json
//	@Success		200	{object}	users.User
//	@Failure		401	{object}	ErrorEnvelope
//	@Security		ApiKeyAuth
//	@Router			/user [get]
func (app *application) getCurrentUserHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.jsonResponse(w, http.StatusOK, getUserFromContext(r)); err != nil {
		app.internalServerError(w, r, err)
	}
}

type userPage struct {
	Users      []*users.User     `json:"users"`
	Pagination params.Pagination `json:"pagination"`
}

// listUsersHandler godoc
//
//	@Summary		List users
//	@Tags			users
//	@Produce		json
//	@Param			page		query		int	false	"Page number"
//	@Param			per_page	query		int	false	"Items per page (max 100)"
//	@Success		200			{object}	userPage
//	@Failure		401			{object}	ErrorEnvelope
//	@Security		ApiKeyAuth
//	@Router			/users [get]
func (app *application) listUsersHandler(w http.ResponseWriter, r *http.Request) {
	p := params.ParsePagination(r.URL.Query())

	ctx, cancel := context.WithTimeout(r.Context(), db.QueryTimeoutDuration)
	defer cancel()

	list, total, err := app.store.Users.List(ctx, p.PerPage, p.Offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if list == nil {
		list = []*users.User{}
	}
	p.ComputeMeta(total)

	if err := app.jsonResponse(w, http.StatusOK, userPage{Users: list, Pagination: p}); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getUserHandler godoc
//
//	@Summary	Get a user
//	@Tags		users
//	@Produce	json
//	@Param		id	path		int	true	"User ID"
//	@Success	200	{object}	users.User
//	@Failure	404	{object}	ErrorEnvelope
//	@Security	ApiKeyAuth
//	@Router		/users/{id} [get]
func (app *application) getUserHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := params.ParseID(chi.URLParam(r, "id"))
	if !ok {
		app.notFoundResponse(w, r, db.ErrNotFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), db.QueryTimeoutDuration)
	defer cancel()

	user, err := app.store.Users.GetByID(ctx, id)
	if err != nil {
		app.storeError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, user); err != nil {
		app.internalServerError(w, r, err)
	}
}
