package wire

import (
	"net/http"

	"coffee-shop-api/internal/adaptor"
	"coffee-shop-api/internal/data/repository"
	"coffee-shop-api/internal/usecase"
	"coffee-shop-api/pkg/middleware"
	"coffee-shop-api/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// App holds the routed HTTP surface.
type App struct {
	Router *chi.Mux
}

// Wiring builds handlers over the services and mounts every route.
func Wiring(
	repo *repository.Repository,
	service *usecase.Service,
	tokens middleware.TokenVerifier,
	config *utils.Config,
	logger *zap.Logger,
) *App {
	handler := adaptor.NewHandler(service, logger)

	return &App{
		Router: setupRouter(handler, repo, tokens, config, logger),
	}
}

func setupRouter(
	handler *adaptor.Handler,
	repo *repository.Repository,
	tokens middleware.TokenVerifier,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS(config.App.CORSOrigins))

	wireAuth(r, handler.Auth, tokens, logger)
	wireUser(r, handler.User, repo, tokens, logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
