package apiserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hypertune/hypertune/internal/artifacts"
	"github.com/hypertune/hypertune/internal/capability"
	"github.com/hypertune/hypertune/internal/config"
	handlers "github.com/hypertune/hypertune/internal/handlers/v1alpha1"
	"github.com/hypertune/hypertune/internal/service"
	"github.com/hypertune/hypertune/internal/store"
	"github.com/hypertune/hypertune/pkg/metrics"
	"github.com/hypertune/hypertune/pkg/middleware"
)

const (
	gracefulShutdownTimeout = 5 * time.Second
)

type Server struct {
	cfg       *config.Config
	store     store.Store
	artifacts *artifacts.Store
	listener  net.Listener
}

// New returns a new instance of the admin API server.
func New(
	cfg *config.Config,
	store store.Store,
	artifacts *artifacts.Store,
	listener net.Listener,
) *Server {
	return &Server{
		cfg:       cfg,
		store:     store,
		artifacts: artifacts,
		listener:  listener,
	}
}

func (s *Server) Run(ctx context.Context) error {
	zap.S().Named("api_server").Info("Initializing API server")

	router := chi.NewRouter()

	metricMiddleware := metrics.NewMiddleware("api_server")
	metricMiddleware.MustRegisterDefault()

	router.Use(
		metricMiddleware.Handler,
		cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "PUT", "POST", "DELETE", "HEAD", "OPTIONS"},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: false,
			MaxAge:           300,
		}),
		middleware.RequestID,
		middleware.Logger(),
		chiMiddleware.Recoverer,
	)

	registry := capability.Default()

	h := handlers.NewHandler(
		service.NewDatasetService(s.store, s.artifacts),
		service.NewTunedModelService(s.store, registry),
		service.NewTrainJobService(s.store),
		service.NewTrialService(s.store),
		service.NewWorkerService(s.store),
	)
	h.Register(router)

	srv := http.Server{Addr: s.cfg.Service.Address, Handler: router}

	go func() {
		<-ctx.Done()
		zap.S().Named("api_server").Infof("Shutdown signal received: %s", ctx.Err())
		ctxTimeout, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
		defer cancel()

		srv.SetKeepAlivesEnabled(false)
		_ = srv.Shutdown(ctxTimeout)
		zap.S().Named("api_server").Info("api server terminated")
	}()

	zap.S().Named("api_server").Infof("Listening on %s...", s.listener.Addr().String())
	if err := srv.Serve(s.listener); err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}

	return nil
}
