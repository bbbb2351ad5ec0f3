package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/nexustechhub/mdts/internal/http/auth"
	"github.com/nexustechhub/mdts/internal/http/location"
	"github.com/nexustechhub/mdts/internal/http/product"
	"github.com/nexustechhub/mdts/internal/http/respond"
	"github.com/nexustechhub/mdts/internal/http/transfer"
)

type Options struct {
	JWTSecret      string
	AllowedOrigins []string
}

func New(
	opts Options,
	transfersV1 *transfer.Handler,
	productsV1 *product.Handler,
	locationsV1 *location.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respond.Error(w, http.StatusNotFound, "route not found")
	})

	router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respond.Error(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respond.JSON(w, http.StatusOK, "ok", nil)
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware(opts.JWTSecret))

		r.Route("/inventory-transfers", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			transfersV1.Routes(r)
		})

		r.Route("/products", productsV1.Routes)

		r.Route("/locations", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			locationsV1.Routes(r)
		})
	})

	return router
}
