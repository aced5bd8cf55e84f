package main

import (
	"context"
	"encoding/json"
	"net/http"

	"storefront/internal/cache"
	"storefront/internal/db"
)

// Resource names used as cache key prefixes.
const (
	resCategories   = "categories"
	resProducts     = "products"
	resBlogs        = "blogs"
	resOurTeams     = "ourteams"
	resDistributors = "distributors"
)

// cachedResponse serves key from the cache, or runs load and caches its result.
func (app *application) cachedResponse(w http.ResponseWriter, r *http.Request, key string, load func(ctx context.Context) (any, error)) {
	var raw json.RawMessage
	if app.cache.Get(r.Context(), key, &raw) {
		if err := app.jsonResponse(w, http.StatusOK, raw); err != nil {
			app.internalServerError(w, r, err)
		}
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), db.QueryTimeoutDuration)
	defer cancel()

	data, err := load(ctx)
	if err != nil {
		app.storeError(w, r, err)
		return
	}

	if err := app.cache.Set(ctx, key, data, cache.DefaultTTL); err != nil {
		app.logger.Warnw("cache set failed", "key", key, "error", err)
	}

	if err := app.jsonResponse(w, http.StatusOK, data); err != nil {
		app.internalServerError(w, r, err)
	}
}

// forget drops cached responses after a write. Failures only cost freshness
// until the TTL runs out, so they are logged.
func (app *application) forget(ctx context.Context, resources ...string) {
	if err := cache.Forget(ctx, app.cache, resources...); err != nil {
		app.logger.Warnw("cache invalidation failed", "resources", resources, "error", err)
	}
}

type totalResponse struct {
	Total int `json:"total"`
}

func (app *application) totalHandler(resource string, count func(ctx context.Context) (int, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		app.cachedResponse(w, r, cache.TotalKey(resource), func(ctx context.Context) (any, error) {
			n, err := count(ctx)
			if err != nil {
				return nil, err
			}
			return totalResponse{Total: n}, nil
		})
	}
}

// totalProductsHandler godoc
//
//	@Summary	Count products
//	@Tags		totals
//	@Produce	json
//	@Success	200	{object}	totalResponse
//	@Router		/totalproducts [get]
func (app *application) totalProductsHandler(w http.ResponseWriter, r *http.Request) {
	app.totalHandler(resProducts, app.store.Products.Count)(w, r)
}

// totalCategoriesHandler godoc
//
//	@Summary	Count categories
//	@Tags		totals
//	@Produce	json
//	@Success	200	{object}	totalResponse
//	@Router		/totalcategories [get]
func (app *application) totalCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	app.totalHandler(resCategories, app.store.Categories.Count)(w, r)
}

// totalBlogsHandler godoc
//
//	@Summary	Count blogs
//	@Tags		totals
//	@Produce	json
//	@Success	200	{object}	totalResponse
//	@Router		/totalblogs [get]
func (app *application) totalBlogsHandler(w http.ResponseWriter, r *http.Request) {
	app.totalHandler(resBlogs, app.store.Blogs.Count)(w, r)
}

// totalOurTeamsHandler godoc
//
//	@Summary	Count team members
//	@Tags		totals
//	@Produce	json
//	@Success	200	{object}	totalResponse
//	@Router		/totalourteams [get]
func (app *application) totalOurTeamsHandler(w http.ResponseWriter, r *http.Request) {
	app.totalHandler(resOurTeams, app.store.OurTeams.Count)(w, r)
}

// totalDistributorsHandler godoc
//
//	@Summary	Count distributors
//	@Tags		totals
//	@Produce	json
//	@Success	200	{object}	totalResponse
//	@Router		/totaldistributors [get]
func (app *application) totalDistributorsHandler(w http.ResponseWriter, r *http.Request) {
	app.totalHandler(resDistributors, app.store.Distributors.Count)(w, r)
}
