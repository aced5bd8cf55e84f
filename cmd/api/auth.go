package main

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"storefront/internal/auth"
	"storefront/internal/db"
	"storefront/internal/domain/users"
	"storefront/internal/validation"
)

type LoginPayload struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=3,max=72"`
}

type LoginResponse struct {
	Token     string      `json:"token"`
	TokenType string      `json:"token_type"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *users.User `json:"user"`
}

// loginHandler godoc
//
//	@Summary		Login
//	@Description	Verifies credentials and issues a bearer token.
//	@Tags			authentication
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		LoginPayload	true	"User credentials"
//	@Success		200		{object}	LoginResponse
//	@Failure		422		{object}	ErrorEnvelope
//	@Failure		500		{object}	ErrorEnvelope
//	@Router			/login [post]
func (app *application) loginHandler(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	payload.Email = strings.TrimSpace(payload.Email)

	if errs := validation.Struct(payload); errs != nil {
		app.failedValidationResponse(w, r, errs)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), db.QueryTimeoutDuration)
	defer cancel()

	user, err := app.store.Users.GetByEmail(ctx, payload.Email)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			app.invalidCredentialsResponse(w, r)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	if err := user.Password.Compare(payload.Password); err != nil {
		app.invalidCredentialsResponse(w, r)
		return
	}

	jti := uuid.NewString()
	token, err := app.authenticator.GenerateToken(user.ID, jti)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	record := &users.Token{
		UserID:    user.ID,
		Name:      "api",
		ExpiresAt: time.Now().Add(app.config.auth.token.exp),
	}
	if err := app.store.Tokens.Create(ctx, record, auth.TokenHash(jti)); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.logger.Infow("user logged in", "user_id", user.ID)

	res := LoginResponse{Token: token, TokenType: "Bearer", ExpiresAt: record.ExpiresAt, User: user}
	if err := app.jsonResponse(w, http.StatusOK, res); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) invalidCredentialsResponse(w http.ResponseWriter, r *http.Request) {
	app.logger.Warnw("invalid credentials", "path", r.URL.Path)
	writeJSONError(w, http.StatusUnprocessableEntity, "Invalid credentials.")
}

// logoutHandler godoc
//
//	@Summary		Logout
//	@Description	Revokes the bearer token used for this request.
//	@Tags			authentication
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Failure		401	{object}	ErrorEnvelope
//	@Security		ApiKeyAuth
//	@Router			/logout [post]
func (app *application) logoutHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), db.QueryTimeoutDuration)
	defer cancel()

	if err := app.store.Tokens.Revoke(ctx, getTokenHashFromContext(r)); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.messageResponse(w, http.StatusOK, "Logged out successfully.", nil); err != nil {
		app.internalServerError(w, r, err)
	}
}
