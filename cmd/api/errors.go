package main

import (
	"errors"
	"net/http"

	"storefront/internal/db"
	"storefront/internal/slug"
	"storefront/internal/validation"
)

func (app *application) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Errorw("internal error", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusInternalServerError, "the server encountered a problem")
}

func (app *application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("bad request", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusBadRequest, err.Error())
}

func (app *application) notFoundResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("not found error", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusNotFound, "resource not found")
}

func (app *application) conflictResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Errorw("conflict response", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusConflict, err.Error())
}

func (app *application) unauthorizedErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("unauthorized error", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusUnauthorized, "unauthorized")
}

func (app *application) unauthorizedBasicErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("unauthorized basic error", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	w.Header().Set("WWW-Authenticate", `Basic realm="restricted", charset="UTF-8"`)

	writeJSONError(w, http.StatusUnauthorized, "unauthorized")
}

func (app *application) failedValidationResponse(w http.ResponseWriter, r *http.Request, errs validation.Errors) {
	app.logger.Infow("validation failed", "method", r.Method, "path", r.URL.Path, "fields", len(errs))

	writeJSONValidationError(w, errs)
}

func (app *application) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request, retryAfter string) {
	app.logger.Warnw("rate limit exceeded", "method", r.Method, "path", r.URL.Path)

	w.Header().Set("Retry-After", retryAfter)

	writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded, retry after: "+retryAfter)
}

// storeError maps repository errors onto responses. Anything it does not
// recognise is a 500.
func (app *application) storeError(w http.ResponseWriter, r *http.Request, err error) {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		app.failedValidationResponse(w, r, verrs)
	case errors.Is(err, db.ErrNotFound):
		app.notFoundResponse(w, r, err)
	case errors.Is(err, db.ErrDuplicateName):
		app.failedValidationResponse(w, r, validation.Errors{"name": {validation.Taken("name")}})
	case errors.Is(err, db.ErrDuplicateEmail):
		app.failedValidationResponse(w, r, validation.Errors{"email": {validation.Taken("email")}})
	case errors.Is(err, db.ErrInvalidRef):
		app.failedValidationResponse(w, r, validation.Errors{"category_id": {"The selected category id is invalid."}})
	case errors.Is(err, slug.ErrSlugTaken):
		app.conflictResponse(w, r, errors.New("could not allocate a unique slug, please retry"))
	case errors.Is(err, db.ErrHasDependents):
		app.conflictResponse(w, r, errors.New("resource is still referenced by other records"))
	default:
		app.internalServerError(w, r, err)
	}
}
