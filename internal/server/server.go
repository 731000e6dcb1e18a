// Package server exposes the menu, directory and ticketing services over HTTP.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/aoperat/centumbob/internal/entity"
	"github.com/aoperat/centumbob/internal/ingest"
	"github.com/aoperat/centumbob/internal/ratelimit"
	menusvc "github.com/aoperat/centumbob/internal/services/menu"
	"github.com/aoperat/centumbob/internal/viewer"
)

type Extractor interface {
	ExtractWithQuality(ctx context.Context, image []byte, mimeType string) (entity.ExtractionResult, entity.Quality, error)
}

type MenuService interface {
	Save(ctx context.Context, req entity.MenuSaveRequest, img *menusvc.Upload) (*entity.MenuRecord, error)
	Load(ctx context.Context, restaurant, dateRange string) (*entity.MenuRecord, error)
	List(ctx context.Context) ([]entity.MenuSummary, error)
	Delete(ctx context.Context, restaurant, dateRange string) error
}

// ImageResolver maps a stored relative image path to a file on disk.
type ImageResolver interface {
	Resolve(rel string) (string, error)
}

type Publisher interface {
	Publish(ctx context.Context) (viewer.PublishResult, error)
	LoadPublished() ([]byte, error)
}

type Exporter interface {
	ExportMenusXLSX(ctx context.Context, restaurant string) ([]byte, error)
}

type RestaurantService interface {
	List(ctx context.Context, activeOnly bool) ([]entity.Restaurant, error)
	Create(ctx context.Context, in entity.RestaurantInput) (*entity.Restaurant, error)
	Update(ctx context.Context, id int64, patch entity.RestaurantPatch) (*entity.Restaurant, error)
	Delete(ctx context.Context, id int64) error
	Reorder(ctx context.Context, orders []entity.SortOrder) error
}

type ComplaintService interface {
	Create(ctx context.Context, in entity.ComplaintInput) (*entity.Complaint, error)
	List(ctx context.Context, filter entity.ComplaintFilter) ([]entity.Complaint, error)
	Get(ctx context.Context, id string) (*entity.Complaint, error)
	Update(ctx context.Context, id string, upd entity.ComplaintUpdate) (*entity.Complaint, error)
}

type ImageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (ingest.FetchedImage, error)
}

// Deps are the collaborators behind the routes. A nil AnalyzeLimiter disables rate limiting.
type Deps struct {
	Extractor      Extractor
	Menus          MenuService
	Images         ImageResolver
	Publisher      Publisher
	Exporter       Exporter
	Restaurants    RestaurantService
	Complaints     ComplaintService
	Fetcher        ImageFetcher
	Ping           func(ctx context.Context) error
	AnalyzeLimiter *ratelimit.KeyedRateLimiter
	CORSOrigins    []string
}

type Server struct {
	deps   Deps
	router *chi.Mux
	logger *slog.Logger
}

func New(deps Deps, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{deps: deps, router: chi.NewRouter(), logger: logger}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupMiddleware() {
	origins := s.deps.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.With(s.rateLimit(s.deps.AnalyzeLimiter)).Post("/analyze", s.handleAnalyze)
		r.Post("/save", s.handleSave)
		r.Get("/load", s.handleLoad)
		r.Delete("/menus", s.handleDeleteMenu)
		r.Get("/images/path/*", s.handleImage)

		r.Post("/publish", s.handlePublish)
		r.Get("/data", s.handleData)
		r.Get("/export.xlsx", s.handleExport)

		r.Route("/restaurants", func(r chi.Router) {
			r.Get("/", s.handleListRestaurants)
			r.Post("/", s.handleCreateRestaurant)
			r.Put("/reorder", s.handleReorderRestaurants)
			r.Put("/{id}", s.handleUpdateRestaurant)
			r.Delete("/{id}", s.handleDeleteRestaurant)
		})

		r.Route("/complaints", func(r chi.Router) {
			r.Post("/", s.handleCreateComplaint)
			r.Get("/", s.handleListComplaints)
			r.Get("/{id}", s.handleGetComplaint)
			r.Put("/{id}", s.handleUpdateComplaint)
		})

		r.Post("/webhook/fetch-image", s.handleFetchImage)
	})
}
