package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/magicspin/laundry-api/internal/api"
	apiMiddleware "github.com/magicspin/laundry-api/internal/api/middleware"
	"github.com/magicspin/laundry-api/internal/api/shared"
	"github.com/magicspin/laundry-api/internal/domain"
)

// requestTimeout bounds a single request handler.
const requestTimeout = 30 * time.Second

// routes is everything the router needs.
type routes struct {
	auth     *api.AuthHandler
	orders   *api.OrderHandler
	payments *api.PaymentHandler
	users    *api.UserHandler
	catalog  *api.CatalogHandler
	health   *api.HealthHandler

	authMiddleware *apiMiddleware.AuthMiddleware
	rateLimiter    *apiMiddleware.RateLimiter
	allowedOrigin  string
	logger         *slog.Logger
}

// newRouter creates the application router with all routes and middleware.
func newRouter(rt routes) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.TraceMiddleware(rt.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(securityHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{rt.allowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Trace-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(rt.rateLimiter.Middleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithError(w, r, http.StatusNotFound, "Route not found")
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", rt.health.Health)
		r.Get("/services", rt.catalog.ListServices)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", rt.auth.Register)
			r.Post("/login", rt.auth.Login)
			r.Post("/verify-email", rt.auth.VerifyEmail)
			r.Post("/forgot-password", rt.auth.ForgotPassword)
			r.Post("/reset-password", rt.auth.ResetPassword)

			r.Group(func(r chi.Router) {
				r.Use(rt.authMiddleware.Authenticate)
				r.Get("/profile", rt.auth.GetProfile)
				r.Put("/profile", rt.auth.UpdateProfile)
			})
		})

		// The webhook authenticates by signature, not bearer token.
		r.Post("/payments/webhook", rt.payments.Webhook)

		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", rt.orders.CreateOrder)
				r.Get("/", rt.orders.ListOrders)
				r.Get("/{id}", rt.orders.GetOrder)
				r.With(apiMiddleware.RequireRole(domain.RoleAdmin)).
					Patch("/{id}/status", rt.orders.UpdateOrderStatus)
			})

			r.Route("/payments", func(r chi.Router) {
				r.Post("/create-intent", rt.payments.CreatePaymentIntent)
				r.Post("/confirm", rt.payments.ConfirmPayment)
				r.Get("/", rt.payments.ListPayments)
			})

			r.Route("/users", func(r chi.Router) {
				r.Use(apiMiddleware.RequireRole(domain.RoleAdmin))
				r.Get("/{id}", rt.users.GetUser)
				r.Put("/{id}", rt.users.UpdateUser)
				r.Delete("/{id}", rt.users.DeleteUser)
			})
		})
	})

	return r
}

// securityHeaders sets conservative browser security headers on every
// response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Strict-Transport-Security", "max-age=15552000; includeSubDomains")
		next.ServeHTTP(w, r)
	})
}
