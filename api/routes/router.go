package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mateovidal/tradewind-backend/api/controllers"
	webhookcontrollers "github.com/mateovidal/tradewind-backend/api/controllers/webhooks"
	"github.com/mateovidal/tradewind-backend/api/middleware"
	authsvc "github.com/mateovidal/tradewind-backend/internal/auth"
	listingsvc "github.com/mateovidal/tradewind-backend/internal/listings"
	messagesvc "github.com/mateovidal/tradewind-backend/internal/messages"
	ordersvc "github.com/mateovidal/tradewind-backend/internal/orders"
	paymentsvc "github.com/mateovidal/tradewind-backend/internal/payments"
	reviewsvc "github.com/mateovidal/tradewind-backend/internal/reviews"
	stripewebhook "github.com/mateovidal/tradewind-backend/internal/webhooks/stripe"
	wishlistsvc "github.com/mateovidal/tradewind-backend/internal/wishlist"
	"github.com/mateovidal/tradewind-backend/pkg/config"
	"github.com/mateovidal/tradewind-backend/pkg/logger"
)

// Deps gathers everything the router wires into handlers.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	Registry *prometheus.Registry

	DBPinger    controllers.Pinger
	RedisPinger controllers.Pinger

	Users     middleware.UserLoader
	RateStore middleware.RateLimiterStore

	Auth     authsvc.Service
	Listings listingsvc.Service
	Reviews  reviewsvc.Service
	Orders   ordersvc.Service
	Messages messagesvc.Service
	Wishlist wishlistsvc.Service
	Payments paymentsvc.Service

	StripeWebhookService *stripewebhook.Service
	StripeWebhookDedup   *stripewebhook.EventDedup
	StripeSigning        webhookcontrollers.SigningSecretProvider
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.Origins),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"database": deps.DBPinger,
			"redis":    deps.RedisPinger,
		}))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/webhook/stripe", webhookcontrollers.StripeWebhook(deps.StripeWebhookService, deps.StripeSigning, deps.StripeWebhookDedup, logg))

		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(registerPolicy, deps.RateStore, logg)).Post("/register", controllers.AuthRegister(deps.Auth, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, deps.RateStore, logg)).Post("/login", controllers.AuthLogin(deps.Auth, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(cfg.JWT, deps.Users, logg))
				r.Get("/me", controllers.AuthMe(deps.Auth, logg))
				r.Put("/me/avatar", controllers.AuthUpdateAvatar(deps.Auth, logg))
			})
		})

		r.Route("/listings", func(r chi.Router) {
			r.Get("/", controllers.ListingList(deps.Listings, logg))
			r.Get("/{listingID}", controllers.ListingGet(deps.Listings, logg))
			r.Get("/{listingID}/reviews", controllers.ReviewList(deps.Reviews, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(cfg.JWT, deps.Users, logg))
				r.Post("/", controllers.ListingCreate(deps.Listings, logg))
				r.Put("/{listingID}", controllers.ListingUpdate(deps.Listings, logg))
				r.Delete("/{listingID}", controllers.ListingDelete(deps.Listings, logg))
				r.Post("/{listingID}/reviews", controllers.ReviewCreate(deps.Reviews, logg))
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.Users, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", controllers.OrderCreate(deps.Orders, logg))
				r.Get("/", controllers.OrderList(deps.Orders, logg))
				r.Get("/{orderID}", controllers.OrderGet(deps.Orders, logg))
			})

			r.Route("/messages", func(r chi.Router) {
				r.Post("/", controllers.MessageSend(deps.Messages, logg))
				r.Get("/threads", controllers.MessageThreads(deps.Messages, logg))
				r.Get("/conversation/{userID}", controllers.MessageConversation(deps.Messages, logg))
			})

			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", controllers.WishlistList(deps.Wishlist, logg))
				r.Post("/{listingID}", controllers.WishlistAdd(deps.Wishlist, logg))
				r.Delete("/{listingID}", controllers.WishlistRemove(deps.Wishlist, logg))
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Post("/orders/{orderID}/session", controllers.CheckoutCreateSession(deps.Payments, logg))
				r.Get("/sessions/{sessionID}", controllers.CheckoutStatus(deps.Payments, logg))
			})
		})
	})

	return r
}
