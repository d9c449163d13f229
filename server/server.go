package server

import (
	"context"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	v1 "github.com/yudhap/shape-gallery/api/v1"
	"github.com/yudhap/shape-gallery/store"
)

type Opts struct {
	Config Config
}

func New(opts Opts) Server {
	s := Server{
		opts: opts,
	}
	return s
}

type Server struct {
	opts Opts
}

// Run reconciles the image store against the public directory, then serves
// HTTP until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	log.Info().Msg("starting server")

	cfg := s.opts.Config
	serviceName := "shape-gallery"

	prometheusExporter := NewPrometheusExporter(ctx)
	shutdownFns := []ShutdownFn{InitMeterProvider(ctx, serviceName, prometheusExporter)}
	if cfg.OTLPEndpoint != "" {
		traceExporter := NewOTLPTraceExporter(ctx, cfg.OTLPEndpoint)
		shutdownFns = append(shutdownFns, InitTraceProvider(ctx, serviceName, traceExporter))
	}

	gallery := store.New(cfg.PublicDir)

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: s.newHTTPHandler(gallery, cfg),
		// ReadTimeout is the maximum duration for reading the entire request,
		// including the body. Submissions carry whole base64 images, so this
		// is more generous than the header timeout.
		ReadTimeout: 30 * time.Second,
		// WriteTimeout bounds slow readers; gallery responses can carry many
		// base64 payloads.
		WriteTimeout: 30 * time.Second,
		// ReadHeaderTimeout is necessary here to prevent slowloris attacks.
		// https://www.cloudflare.com/learning/ddos/ddos-attack-tools/slowloris/
		ReadHeaderTimeout: 5 * time.Second,
		// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled.
		IdleTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Msgf("Starting http server on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msgf("listen:%+s\n", err)
		}
	}()

	<-ctx.Done()

	gracefulShutdownPeriod := 30 * time.Second
	log.Warn().Msg("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), gracefulShutdownPeriod)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to shutdown http server gracefully")
	}
	log.Warn().Msg("http server gracefully stopped")

	for _, fn := range shutdownFns {
		if err := fn(ctx); err != nil {
			log.Error().Err(err).Msg("failed to shutdown telemetry provider")
		}
	}
	return nil
}

func (s *Server) newHTTPHandler(gallery *store.Store, cfg Config) http.Handler {
	mux := mux.NewRouter()
	mux.Use(
		otelhttp.NewMiddleware("shape-gallery"),
		LogInterceptor)
	mux.Handle("/metrics", promhttp.Handler())

	ctrl := v1.NewController(gallery)
	apiRouter := mux.PathPrefix("/api").Subrouter()
	apiV1Router := apiRouter.PathPrefix("/v1").Subrouter()
	apiV1Router.Handle("/shapes", otelhttp.WithRouteTag("/api/v1/shapes", ctrl.ListShapes())).Methods(http.MethodGet)
	apiV1Router.Handle("/shapes", otelhttp.WithRouteTag("/api/v1/shapes", ctrl.SubmitShape())).Methods(http.MethodPost)
	apiV1Router.Handle("/shapes", otelhttp.WithRouteTag("/api/v1/shapes", ctrl.DeleteShape())).Methods(http.MethodDelete)

	// Stored images are addressed by their web-relative path, so the shapes
	// tree is served as-is.
	shapesDir := http.Dir(filepath.Join(cfg.PublicDir, "shapes"))
	mux.PathPrefix("/shapes/").Handler(http.StripPrefix("/shapes/", http.FileServer(shapesDir)))
	mux.Handle("/", otelhttp.WithRouteTag("/", http.HandlerFunc(v1.Web()))).Methods(http.MethodGet)

	return otelhttp.NewHandler(mux, "/")
}
