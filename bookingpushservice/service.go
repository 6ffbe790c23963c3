package bookingpushservice

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/tinywideclouds/go-microservice-base/pkg/microservice"
	"github.com/tinywideclouds/go-microservice-base/pkg/middleware"

	"github.com/tinywideclouds/go-booking-push-service/bookingpushservice/config"
	"github.com/tinywideclouds/go-booking-push-service/internal/api"
	"github.com/tinywideclouds/go-booking-push-service/pkg/dispatch"
)

type Wrapper struct {
	*microservice.BaseServer
	logger *slog.Logger
}

// Dependencies are the collaborators the booking push route needs.
// Events may be nil.
type Dependencies struct {
	Verifier   dispatch.IdentityVerifier
	Store      dispatch.RecipientStore
	Dispatcher dispatch.Dispatcher
	Events     dispatch.EventPublisher
}

// New assembles the service and registers the booking push route.
func New(cfg *config.Config, deps Dependencies, logger *slog.Logger) *Wrapper {
	baseServer := microservice.NewBaseServer(logger, cfg.ListenAddr)

	pushAPI := api.NewBookingPushAPI(deps.Verifier, deps.Store, deps.Dispatcher, deps.Events, logger)

	mux := baseServer.Mux()

	// The route takes every method so the handler can answer 405 in JSON.
	var handler http.Handler = http.HandlerFunc(pushAPI.SendBookingPush)
	if cfg.CorsEnabled() {
		corsMiddleware := middleware.NewCorsMiddleware(cfg.CorsConfig, logger)
		mux.Handle("OPTIONS "+cfg.RoutePath, corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})))
		handler = corsMiddleware(handler)
		logger.Info("CORS enabled for booking push route", "origins", cfg.CorsConfig.AllowedOrigins)
	}
	mux.Handle(cfg.RoutePath, handler)

	logger.Info("Booking push route registered", "path", cfg.RoutePath, "events", deps.Events != nil)

	return &Wrapper{
		BaseServer: baseServer,
		logger:     logger,
	}
}

func (w *Wrapper) Start(ctx context.Context) error {
	w.SetReady(true)
	w.logger.Info("Service is now ready.")
	return w.BaseServer.Start()
}

func (w *Wrapper) Shutdown(ctx context.Context) error {
	w.logger.Info("Shutting down service components...")
	if err := w.BaseServer.Shutdown(ctx); err != nil {
		w.logger.Error("HTTP server shutdown failed.", "err", err)
		return err
	}
	w.logger.Info("Service shutdown complete.")
	return nil
}
