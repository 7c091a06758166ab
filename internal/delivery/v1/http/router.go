package http

import (
	"net/http"

	_ "github.com/DRSN-tech/product-intelligence/docs" // Регистрация swagger-спецификации
	"github.com/DRSN-tech/product-intelligence/internal/usecase"
	"github.com/DRSN-tech/product-intelligence/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type Router struct {
	router *chi.Mux
	logger logger.Logger
}

func NewRouter(router *chi.Mux, logger logger.Logger) *Router {
	return &Router{router: router, logger: logger}
}

// Init регистрирует маршруты; metrics может быть nil.
func (r *Router) Init(recUC usecase.RecommendationUC, clsUC usecase.ClassificationUC, engineUC usecase.EngineUC, metrics http.Handler) {
	r.router.Use(middleware.RequestID, middleware.Recoverer)

	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	if metrics != nil {
		r.router.Method(http.MethodGet, "/metrics", metrics)
	}

	r.router.Route("/api/v1", func(v1 chi.Router) {
		registerRecommendationRoutes(v1, NewRecommendationHandler(recUC, r.logger))
		registerClassificationRoutes(v1, NewClassificationHandler(clsUC, r.logger))
		registerEngineRoutes(v1, NewEngineHandler(engineUC, r.logger))
	})
}

func registerRecommendationRoutes(router chi.Router, h *RecommendationHandler) {
	router.Route("/recommendations", func(rr chi.Router) {
		rr.Post("/products", h.recommend)
		rr.Get("/trending", h.trending)
		rr.Get("/new-arrivals", h.newArrivals)
		rr.Post("/personalized", h.personalized)
	})
}

func registerClassificationRoutes(router chi.Router, h *ClassificationHandler) {
	router.Route("/classification", func(cr chi.Router) {
		cr.Post("/product", h.classify)
		cr.Post("/auto-tag", h.autoTag)
		cr.Post("/bulk-classify", h.bulkClassify)
		cr.Get("/categories", h.categories)
	})
}

func registerEngineRoutes(router chi.Router, h *EngineHandler) {
	router.Route("/engine", func(er chi.Router) {
		er.Post("/rebuild", h.rebuild)
		er.Get("/status", h.status)
	})
}
