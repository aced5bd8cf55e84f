package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"storefront/docs" //this is required to generate swagger docs
	"storefront/internal/auth"
	"storefront/internal/cache"
	"storefront/internal/domain/storage"
	"storefront/internal/filestore"
	"storefront/internal/images"
	"storefront/internal/mailer"
	"storefront/internal/metrics"
	"storefront/internal/ratelimiter"
	"storefront/internal/slug"
)

type application struct {
	config        config
	store         *storage.Container
	logger        *zap.SugaredLogger
	disk          filestore.Disk
	images        *images.Reconciler
	slugs         slug.Generator
	cache         cache.Cache
	mailer        mailer.Client
	authenticator auth.Authenticator
	rateLimiter   ratelimiter.Limiter
}

type config struct {
	addr        string
	env         string
	apiURL      string
	db          dbConfig
	mail        mailConfig
	auth        authConfig
	storage     filestore.Config
	redis       redisConfig
	rateLimiter ratelimiter.Config
}

type authConfig struct {
	basic basicConfig
	token tokenConfig
}

type tokenConfig struct {
	secret string
	exp    time.Duration
	iss    string
	aud    string
}

type basicConfig struct {
	user string
	pass string
}

type mailConfig struct {
	smtp    mailer.SMTPConfig
	adminTo string
}

type redisConfig struct {
	addr     string
	password string
	db       int
}

type dbConfig struct {
	addr        string
	maxConns    int
	maxIdleTime time.Duration
	migrate     bool
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	//Set a timeout value on the request context (ctx), that will signal through ctx.Done() that the request has timed out and further processing should be stopped
	r.Use(middleware.Timeout(60 * time.Second))

	// the local driver serves its own files
	if local, ok := app.disk.(*filestore.Local); ok {
		prefix := filestore.PublicPath(local)
		r.Handle(prefix+"*", http.StripPrefix(prefix, http.FileServer(http.Dir(local.Root()))))
	}

	r.Route("/v1", func(r chi.Router) {
		r.With(app.BasicAuthMiddleware()).Get("/health", app.healthCheckHandler)
		docsURL := fmt.Sprintf("%s/swagger/doc.json", app.config.apiURL)
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(docsURL)))

		r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)
		r.With(app.BasicAuthMiddleware()).Get("/metrics", metrics.Handler().ServeHTTP)

		// Public routes
		r.With(app.RateLimiterMiddleware).Post("/login", app.loginHandler)
		r.With(app.RateLimiterMiddleware).Post("/storecontact", app.storeContactHandler)

		r.Get("/categories", app.listCategoriesHandler)
		r.Get("/categories/{key}", app.getCategoryHandler)
		r.Get("/products", app.listProductsHandler)
		r.Get("/products/{key}", app.getProductHandler)
		r.Get("/blogs", app.listBlogsHandler)
		r.Get("/blogs/{id}", app.getBlogHandler)
		r.Get("/distributors", app.listDistributorsHandler)
		r.Get("/distributors/{id}", app.getDistributorHandler)
		r.Get("/ourteams", app.listMembersHandler)
		r.Get("/ourteams/{id}", app.getMemberHandler)

		r.Get("/totalproducts", app.totalProductsHandler)
		r.Get("/totalcategories", app.totalCategoriesHandler)
		r.Get("/totalblogs", app.totalBlogsHandler)
		r.Get("/totalourteams", app.totalOurTeamsHandler)
		r.Get("/totaldistributors", app.totalDistributorsHandler)

		r.Group(func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)

			r.Post("/logout", app.logoutHandler)
			r.Get("/user", app.getCurrentUserHandler)
			r.Get("/users", app.listUsersHandler)
			r.Get("/users/{id}", app.getUserHandler)

			r.Get("/viewcontact", app.viewContactsHandler)
			r.Delete("/contacts/{id}", app.deleteContactHandler)

			r.Post("/categories", app.createCategoryHandler)
			r.Put("/categories/{key}", app.updateCategoryHandler)
			r.Delete("/categories/{key}", app.deleteCategoryHandler)

			// POST is accepted for updates so clients can send multipart bodies
			r.Post("/products", app.createProductHandler)
			r.Put("/products/{key}", app.updateProductHandler)
			r.Post("/products/{key}", app.updateProductHandler)
			r.Delete("/products/{key}", app.deleteProductHandler)

			r.Post("/blogs", app.createBlogHandler)
			r.Put("/blogs/{id}", app.updateBlogHandler)
			r.Post("/blogs/{id}", app.updateBlogHandler)
			r.Delete("/blogs/{id}", app.deleteBlogHandler)

			r.Post("/distributors", app.createDistributorHandler)
			r.Put("/distributors/{id}", app.updateDistributorHandler)
			r.Delete("/distributors/{id}", app.deleteDistributorHandler)

			r.Post("/ourteams", app.createMemberHandler)
			r.Put("/ourteams/{id}", app.updateMemberHandler)
			r.Post("/ourteams/{id}", app.updateMemberHandler)
			r.Delete("/ourteams/{id}", app.deleteMemberHandler)
		})
	})
	return r
}

func (app *application) run(mux http.Handler) error {
	// Docs
	docs.SwaggerInfo.Version = version
	docs.SwaggerInfo.Host = app.config.apiURL
	docs.SwaggerInfo.BasePath = "/v1"

	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	// Implementing graceful shutdown
	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", app.config.addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}
