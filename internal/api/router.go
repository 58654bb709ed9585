package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/ikarus-labs/recommender/internal/analytics"
	"github.com/ikarus-labs/recommender/internal/api/handlers"
	"github.com/ikarus-labs/recommender/internal/api/middleware"
	"github.com/ikarus-labs/recommender/internal/config"
	"github.com/ikarus-labs/recommender/internal/metrics"
	"github.com/ikarus-labs/recommender/internal/recommend"
	"github.com/ikarus-labs/recommender/internal/vectorstore"
)

// Router assembles the HTTP surface. pipeline and index are nil when
// startup initialization failed; the handlers then degrade to 503.
type Router struct {
	mux      *chi.Mux
	cfg      *config.Config
	pipeline recommend.Pipeline
	index    vectorstore.ProductIndex
	reader   *analytics.Reader
	redis    *redis.Client
}

func NewRouter(cfg *config.Config, pipeline recommend.Pipeline, index vectorstore.ProductIndex, reader *analytics.Reader, rdb *redis.Client) *Router {
	return &Router{
		mux:      chi.NewRouter(),
		cfg:      cfg,
		pipeline: pipeline,
		index:    index,
		reader:   reader,
		redis:    rdb,
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(metrics.Middleware())
	r.Use(middleware.CORS(rt.cfg.CORS.AllowedOrigins))

	if rt.redis != nil {
		rl := middleware.NewRedisRateLimiter(rt.redis, rt.cfg.RateLimit.RPS, rt.cfg.RateLimit.Burst)
		r.Use(rl.Limit)
	} else {
		rl := middleware.NewRateLimiter(rt.cfg.RateLimit.RPS, rt.cfg.RateLimit.Burst)
		r.Use(rl.Limit)
	}

	r.Get("/", handlers.Root)

	health := handlers.NewHealthHandler(rt.index, rt.pipeline != nil)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	r.Handle("/metrics", promhttp.Handler())

	recommendH := handlers.NewRecommendHandler(rt.pipeline)
	r.Post("/rag-recommend", recommendH.Recommend)

	analyticsH := handlers.NewAnalyticsHandler(rt.reader)
	r.Get("/analytics", analyticsH.Snapshot)

	return r
}
