package main

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/ratelimiter"
)

func TestLogin(t *testing.T) {
	e := newTestEnv(t)
	e.seedUser(t, "Super Admin", "admin@example.com", "password123")

	t.Run("valid credentials issue a working token", func(t *testing.T) {
		rec := e.json(t, http.MethodPost, "/v1/login", map[string]string{
			"email": "admin@example.com", "password": "password123",
		}, "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var res struct {
			Token     string `json:"token"`
			TokenType string `json:"token_type"`
			User      struct {
				Email string `json:"email"`
			} `json:"user"`
		}
		decodeData(t, rec, &res)
		assert.Equal(t, "Bearer", res.TokenType)
		assert.Equal(t, "admin@example.com", res.User.Email)
		assert.NotContains(t, rec.Body.String(), "password")

		rec = e.get("/v1/user", res.Token)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("wrong password is a 422", func(t *testing.T) {
		before := e.stores.tokens.count()
		rec := e.json(t, http.MethodPost, "/v1/login", map[string]string{
			"email": "admin@example.com", "password": "not-it",
		}, "")
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, "Invalid credentials.", decodeError(t, rec).Message)
		assert.Equal(t, before, e.stores.tokens.count())
	})

	t.Run("unknown email is a 422", func(t *testing.T) {
		rec := e.json(t, http.MethodPost, "/v1/login", map[string]string{
			"email": "nobody@example.com", "password": "password123",
		}, "")
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, "Invalid credentials.", decodeError(t, rec).Message)
	})

	t.Run("missing fields are field errors", func(t *testing.T) {
		rec := e.json(t, http.MethodPost, "/v1/login", map[string]string{}, "")
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		body := decodeError(t, rec)
		assert.Contains(t, body.Errors, "email")
		assert.Contains(t, body.Errors, "password")
	})

	t.Run("unknown json fields are rejected", func(t *testing.T) {
		rec := e.json(t, http.MethodPost, "/v1/login", map[string]string{
			"email": "admin@example.com", "password": "password123", "remember": "yes",
		}, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestLoginRateLimited(t *testing.T) {
	e := newTestEnv(t)
	e.app.config.rateLimiter.Enabled = true
	e.app.rateLimiter = ratelimiter.NewFixedWindowLimiter(1, time.Minute)

	body := map[string]string{"email": "a@example.com", "password": "whatever"}
	first := e.json(t, http.MethodPost, "/v1/login", body, "")
	assert.Equal(t, http.StatusUnprocessableEntity, first.Code)

	second := e.json(t, http.MethodPost, "/v1/login", body, "")
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	e := newTestEnv(t)

	cases := []struct {
		name  string
		token string
	}{
		{"missing", ""},
		{"garbage", "not-a-jwt"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := e.json(t, http.MethodPost, "/v1/categories", map[string]string{"name": "Solar"}, tc.token)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)

			n, _ := e.stores.categories.Count(testContext(t))
			assert.Zero(t, n)
		})
	}

	t.Run("malformed header", func(t *testing.T) {
		req := newRequest(http.MethodGet, "/v1/user")
		req.Header.Set("Authorization", "Token abc")
		rec := e.serve(req, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestLogoutRevokesToken(t *testing.T) {
	e := newTestEnv(t)
	token := e.adminToken(t)

	rec := e.serve(newRequest(http.MethodPost, "/v1/logout"), token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.get("/v1/user", token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = e.json(t, http.MethodPost, "/v1/categories", map[string]string{"name": "Solar"}, token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	n, _ := e.stores.categories.Count(testContext(t))
	assert.Zero(t, n)
}

func TestTokenOfDeletedUserRejected(t *testing.T) {
	e := newTestEnv(t)
	u := e.seedUser(t, "Temp", "temp@example.com", "password123")
	token := e.tokenFor(t, u)

	delete(e.stores.users.rows, u.ID)

	rec := e.get("/v1/user", token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCurrentUserAndListUsers(t *testing.T) {
	e := newTestEnv(t)
	token := e.adminToken(t)
	e.seedUser(t, "Editor", "editor@example.com", "password123")
	e.seedUser(t, "", "writer@example.com", "password123")

	rec := e.get("/v1/user", token)
	require.Equal(t, http.StatusOK, rec.Code)
	var me struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	decodeData(t, rec, &me)
	assert.Equal(t, "Super Admin", me.Name)

	rec = e.get("/v1/users?per_page=2&page=2", token)
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Users []struct {
			Email string `json:"email"`
		} `json:"users"`
		Pagination struct {
			PerPage  int  `json:"per_page"`
			Page     int  `json:"current_page"`
			Total    int  `json:"total"`
			LastPage int  `json:"last_page"`
			HasNext  bool `json:"has_next"`
			HasPrev  bool `json:"has_prev"`
		} `json:"pagination"`
	}
	decodeData(t, rec, &page)
	require.Len(t, page.Users, 1)
	assert.Equal(t, "writer@example.com", page.Users[0].Email)
	assert.Equal(t, 3, page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.LastPage)
	assert.False(t, page.Pagination.HasNext)
	assert.True(t, page.Pagination.HasPrev)

	rec = e.get("/v1/users/999", token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
