package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain/distributors"
	"storefront/internal/mailer"
	"storefront/internal/validation"
)

type imageBody struct {
	ID       int64   `json:"id"`
	Image    *string `json:"image"`
	ImageURL *string `json:"image_url"`
	BlogBy   string  `json:"blog_by"`
	Title    string  `json:"title"`
	Name     string  `json:"name"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email"`
	Desc     *string `json:"description"`
}

func TestCreateBlog(t *testing.T) {
	e := newTestEnv(t)
	token := e.adminToken(t)

	rec := e.form(t, http.MethodPost, "/v1/blogs", url.Values{
		"title":       {"Net metering explained"},
		"description": {"How export credits work."},
	}, pngFiles("image", 1), token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var b imageBody
	decodeData(t, rec, &b)
	assert.Equal(t, "Super Admin", b.BlogBy)
	require.NotNil(t, b.Image)
	require.NotNil(t, b.ImageURL)
	assert.Equal(t, e.disk.URL(*b.Image), *b.ImageURL)
	assert.Equal(t, []string{*b.Image}, e.disk.Paths())

	t.Run("image required", func(t *testing.T) {
		rec := e.form(t, http.MethodPost, "/v1/blogs", url.Values{
			"title": {"No picture"}, "description": {"Body"},
		}, nil, token)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, []string{validation.Required("image")}, decodeError(t, rec).Errors["image"])
	})

	t.Run("title required", func(t *testing.T) {
		rec := e.form(t, http.MethodPost, "/v1/blogs", url.Values{"description": {"Body"}}, pngFiles("image", 1), token)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, decodeError(t, rec).Errors, "title")
		assert.Len(t, e.disk.Paths(), 1)
	})
}

func TestBlogAuthorFallsBackToEmail(t *testing.T) {
	e := newTestEnv(t)
	token := e.tokenFor(t, e.seedUser(t, "", "writer@example.com", "password123"))

	rec := e.form(t, http.MethodPost, "/v1/blogs", url.Values{
		"title": {"Title"}, "description": {"Body"},
	}, pngFiles("image", 1), token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var b imageBody
	decodeData(t, rec, &b)
	assert.Equal(t, "writer@example.com", b.BlogBy)
}

func TestUpdateBlogReplacesImage(t *testing.T) {
	e := newTestEnv(t)
	token := e.adminToken(t)

	rec := e.form(t, http.MethodPost, "/v1/blogs", url.Values{
		"title": {"Title"}, "description": {"Body"},
	}, pngFiles("image", 1), token)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created imageBody
	decodeData(t, rec, &created)
	old := *created.Image

	t.Run("text only keeps the image", func(t *testing.T) {
		rec := e.form(t, http.MethodPut, "/v1/blogs/1", url.Values{"title": {"New title"}}, nil, token)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var b imageBody
		decodeData(t, rec, &b)
		assert.Equal(t, "New title", b.Title)
		assert.Equal(t, old, *b.Image)
		assert.Zero(t, e.disk.DeleteCount(old))
	})

	t.Run("new image replaces the old one", func(t *testing.T) {
		rec := e.form(t, http.MethodPost, "/v1/blogs/1", nil, pngFiles("image", 1), token)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var b imageBody
		decodeData(t, rec, &b)
		assert.NotEqual(t, old, *b.Image)
		assert.Equal(t, "Super Admin", b.BlogBy)
		assert.Equal(t, 1, e.disk.DeleteCount(old))
		assert.Equal(t, []string{*b.Image}, e.disk.Paths())
	})

	t.Run("delete purges the image", func(t *testing.T) {
		rec := e.del("/v1/blogs/1", token)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, e.disk.Paths())

		rec = e.get("/v1/blogs/1", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestOurTeam(t *testing.T) {
	e := newTestEnv(t)
	token := e.adminToken(t)

	rec := e.form(t, http.MethodPost, "/v1/ourteams", url.Values{
		"name": {"Asha"}, "position": {"Engineer"}, "phone": {"9812345678"}, "email": {"asha@example.com"},
	}, nil, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var m imageBody
	decodeData(t, rec, &m)
	assert.Nil(t, m.Image)
	assert.Nil(t, m.ImageURL)

	t.Run("phone pattern", func(t *testing.T) {
		for _, phone := range []string{"9612345678", "981234567", "98123456789", "98-1234567"} {
			rec := e.form(t, http.MethodPost, "/v1/ourteams", url.Values{
				"name": {"Bikash"}, "position": {"Sales"}, "phone": {phone},
			}, nil, token)
			require.Equal(t, http.StatusUnprocessableEntity, rec.Code, phone)
			assert.Equal(t, []string{"The phone format is invalid."}, decodeError(t, rec).Errors["phone"], phone)
		}
	})

	t.Run("email unique", func(t *testing.T) {
		rec := e.form(t, http.MethodPost, "/v1/ourteams", url.Values{
			"name": {"Bikash"}, "position": {"Sales"}, "email": {"asha@example.com"},
		}, nil, token)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, []string{validation.Taken("email")}, decodeError(t, rec).Errors["email"])
	})

	t.Run("own email on update", func(t *testing.T) {
		rec := e.form(t, http.MethodPut, "/v1/ourteams/1", url.Values{
			"email": {"asha@example.com"}, "position": {"Lead Engineer"},
		}, pngFiles("image", 1), token)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got imageBody
		decodeData(t, rec, &got)
		require.NotNil(t, got.ImageURL)
	})

	t.Run("blank optional fields are cleared", func(t *testing.T) {
		rec := e.form(t, http.MethodPut, "/v1/ourteams/1", url.Values{"description": {"Site surveys"}}, nil, token)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec = e.form(t, http.MethodPut, "/v1/ourteams/1", url.Values{
			"phone": {""}, "email": {""}, "description": {""}, "position": {""},
		}, nil, token)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got imageBody
		decodeData(t, rec, &got)
		assert.Nil(t, got.Phone)
		assert.Nil(t, got.Email)
		assert.Nil(t, got.Desc)
		assert.NotNil(t, got.ImageURL)

		rec = e.get("/v1/ourteams/1", "")
		var position struct {
			Position string `json:"position"`
		}
		decodeData(t, rec, &position)
		assert.Equal(t, "Lead Engineer", position.Position)
	})

	t.Run("image too large", func(t *testing.T) {
		big := append(append([]byte{}, pngBytes...), bytes.Repeat([]byte{0}, 2<<20)...)
		rec := e.form(t, http.MethodPut, "/v1/ourteams/1", nil, []formFile{{field: "image", name: "big.png", data: big}}, token)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
		assert.Equal(t, []string{validation.MaxKilobytes("image", 2048)}, decodeError(t, rec).Errors["image"])
	})

	t.Run("list and total", func(t *testing.T) {
		rec := e.get("/v1/ourteams", "")
		var list []imageBody
		decodeData(t, rec, &list)
		require.Len(t, list, 1)

		rec = e.get("/v1/totalourteams", "")
		assert.JSONEq(t, `{"data":{"total":1}}`, rec.Body.String())
	})

	t.Run("delete purges the image", func(t *testing.T) {
		require.Len(t, e.disk.Paths(), 1)
		rec := e.del("/v1/ourteams/1", token)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, e.disk.Paths())
	})
}

func TestDistributors(t *testing.T) {
	e := newTestEnv(t)
	token := e.adminToken(t)

	valid := map[string]string{
		"name": "Kathmandu Solar", "location": "Kathmandu", "phone": "9801234567", "email": "ktm@example.com",
	}
	rec := e.json(t, http.MethodPost, "/v1/distributors", valid, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	t.Run("all fields required", func(t *testing.T) {
		rec := e.json(t, http.MethodPost, "/v1/distributors", map[string]string{}, token)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		errs := decodeError(t, rec).Errors
		for _, f := range []string{"name", "location", "phone", "email"} {
			assert.Equal(t, []string{validation.Required(f)}, errs[f], f)
		}
	})

	t.Run("name and email unique", func(t *testing.T) {
		rec := e.json(t, http.MethodPost, "/v1/distributors", valid, token)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		errs := decodeError(t, rec).Errors
		assert.Equal(t, []string{validation.Taken("name")}, errs["name"])
		assert.Equal(t, []string{validation.Taken("email")}, errs["email"])
	})

	t.Run("update keeps own name", func(t *testing.T) {
		rec := e.json(t, http.MethodPut, "/v1/distributors/1", map[string]string{
			"name": "Kathmandu Solar", "location": "Lalitpur",
		}, token)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var d distributors.Distributor
		decodeData(t, rec, &d)
		assert.Equal(t, "Lalitpur", d.Location)
		assert.Equal(t, "9801234567", d.Phone)
	})

	t.Run("bad phone on update", func(t *testing.T) {
		rec := e.json(t, http.MethodPut, "/v1/distributors/1", map[string]string{"phone": "12345"}, token)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, decodeError(t, rec).Errors, "phone")
	})

	t.Run("delete", func(t *testing.T) {
		rec := e.del("/v1/distributors/1", token)
		require.Equal(t, http.StatusOK, rec.Code)
		rec = e.del("/v1/distributors/1", token)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestStoreContact(t *testing.T) {
	e := newTestEnv(t)

	rec := e.json(t, http.MethodPost, "/v1/storecontact", map[string]string{
		"name": "Ram", "email": "ram@example.com", "phone": "9712345678", "message": "Do you install in Pokhara?",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Your message has been received successfully!", body.Message)

	require.Len(t, e.mail.sent, 1)
	sent := e.mail.sent[0]
	assert.Equal(t, mailer.ContactSubmissionTemplate, sent.template)
	assert.Equal(t, "admin@example.com", sent.to)
	assert.Equal(t, mailer.ContactSubmission{
		Name: "Ram", Email: "ram@example.com", Phone: "9712345678", Message: "Do you install in Pokhara?",
	}, sent.data)

	t.Run("phone pattern", func(t *testing.T) {
		rec := e.json(t, http.MethodPost, "/v1/storecontact", map[string]string{
			"name": "Ram", "email": "ram@example.com", "phone": "0123456789", "message": "Hi",
		}, "")
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, []string{"The phone format is invalid."}, decodeError(t, rec).Errors["phone"])
		assert.Len(t, e.mail.sent, 1)
	})

	t.Run("phone optional", func(t *testing.T) {
		rec := e.json(t, http.MethodPost, "/v1/storecontact", map[string]string{
			"name": "Sita", "email": "sita@example.com", "message": "Hello",
		}, "")
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	})

	t.Run("mail failure does not fail the request", func(t *testing.T) {
		e.mail.err = errors.New("smtp down")
		rec := e.json(t, http.MethodPost, "/v1/storecontact", map[string]string{
			"name": "Hari", "email": "hari@example.com", "message": "Hello",
		}, "")
		require.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("admin views and deletes", func(t *testing.T) {
		rec := e.get("/v1/viewcontact", "")
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		token := e.adminToken(t)
		rec = e.get("/v1/viewcontact", token)
		require.Equal(t, http.StatusOK, rec.Code)
		var list []struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
		}
		decodeData(t, rec, &list)
		require.Len(t, list, 3)
		assert.Equal(t, "Hari", list[0].Name)

		rec = e.del("/v1/contacts/1", token)
		require.Equal(t, http.StatusOK, rec.Code)
		rec = e.del("/v1/contacts/1", token)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
