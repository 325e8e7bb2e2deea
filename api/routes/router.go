package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/veloramarket/cartsync-backend/api/controllers"
	cartcontrollers "github.com/veloramarket/cartsync-backend/api/controllers/cart"
	"github.com/veloramarket/cartsync-backend/api/middleware"
	"github.com/veloramarket/cartsync-backend/internal/cart"
	"github.com/veloramarket/cartsync-backend/pkg/auth/session"
	"github.com/veloramarket/cartsync-backend/pkg/config"
	"github.com/veloramarket/cartsync-backend/pkg/db"
	"github.com/veloramarket/cartsync-backend/pkg/logger"
	"github.com/veloramarket/cartsync-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessionVerifier session.AccessSessionChecker,
	cartService cart.Service,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	var redisP redis.Pinger
	if redisClient != nil {
		redisP = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	var idemStore redis.IdempotencyStore
	if redisClient != nil {
		idemStore = redisClient
	}

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(
			middleware.GuestSession(logg),
			middleware.OptionalAuth(cfg.JWT, sessionVerifier, logg),
		)
		if redisClient != nil {
			r.Use(middleware.SyncRateLimit(redisClient, cfg.Sync.RateLimit, cfg.Sync.RateWindow, logg))
		}
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Get("/guest", cartcontrollers.GuestCartFetch(cartService, logg))
		r.Post("/sync", cartcontrollers.CartSync(cartService, logg))
		r.Delete("/", cartcontrollers.CartClear(cartService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessionVerifier, logg))
			r.Post("/migrate", cartcontrollers.CartMigrate(cartService, logg))
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(
			middleware.GuestSession(logg),
			middleware.Auth(cfg.JWT, sessionVerifier, logg),
		)
		r.Get("/api/v1/ping", controllers.PrivatePing())
	})

	return r
}
