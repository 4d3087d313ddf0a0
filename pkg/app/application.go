package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"liora/pkg/cache"
	"liora/pkg/config"
	"liora/pkg/middleware"

	"github.com/julienschmidt/httprouter"
)

const (
	idempotencyCachePrefix = "idempotency:"
	authRoutePrefix        = "/api/v1/auth/"
	webhookRoutePrefix     = "/api/v1/payments/"
)

type Handler interface {
	RegisterRoutes(*httprouter.Router)
}

// Worker is a long-running background consumer stopped on shutdown.
type Worker interface {
	Start(ctx context.Context) error
	Close() error
}

type Options struct {
	Health   Handler
	API      []Handler
	Realtime Handler
	Workers  []Worker
	// Closers run after the server stops, in order.
	Closers []func() error
}

type Application struct {
	cfg              *config.Config
	server           *http.Server
	handler          http.Handler
	idempotencyStore middleware.IdempotencyStore
	rateLimiter      *middleware.RateLimiter
	workers          []Worker
	closers          []func() error
	stopWorkers      context.CancelFunc
	workersDone      sync.WaitGroup
}

func NewApplication(cfg *config.Config) *Application {
	return &Application{cfg: cfg}
}

func (a *Application) SetApp(opts Options) {
	mux := http.NewServeMux()

	if opts.Health != nil {
		health := a.minimalStack(opts.Health)
		mux.Handle("/health", health)
		mux.Handle("/ready", health)
	}
	if opts.Realtime != nil {
		mux.Handle("/ws/", a.minimalStack(opts.Realtime))
		a.cfg.Log.Info("Realtime endpoints configured outside the request timeout stack")
	}
	if a.cfg.UploadDir != "" {
		files := httprouter.New()
		files.ServeFiles("/uploads/*filepath", http.Dir(a.cfg.UploadDir))
		var filesHandler http.Handler = files
		filesHandler = middleware.RequestLogging(a.cfg.Log)(filesHandler)
		filesHandler = middleware.Recovery(a.cfg.Log)(filesHandler)
		mux.Handle("/uploads/", filesHandler)
	}
	mux.Handle("/", a.apiStack(opts.API))

	a.handler = mux
	a.workers = opts.Workers
	a.closers = opts.Closers
	a.setAppServer()
}

// Handler exposes the assembled mux, mainly for tests.
func (a *Application) Handler() http.Handler {
	return a.handler
}

func (a *Application) minimalStack(h Handler) http.Handler {
	router := httprouter.New()
	h.RegisterRoutes(router)

	var handler http.Handler = router
	handler = middleware.RequestLogging(a.cfg.Log)(handler)
	handler = middleware.Recovery(a.cfg.Log)(handler)
	return handler
}

func (a *Application) apiStack(handlers []Handler) http.Handler {
	router := httprouter.New()
	for _, h := range handlers {
		h.RegisterRoutes(router)
	}

	if a.cfg.Client != nil && a.cfg.Client.Redis != nil {
		a.idempotencyStore = middleware.NewCacheIdempotencyStore(
			cache.NewRedis(a.cfg.Client.Redis, idempotencyCachePrefix),
			a.cfg.IdempotencyTTL,
			a.cfg.Log,
		)
		a.cfg.Log.Info("Idempotency store backed by Redis")
	} else {
		a.idempotencyStore = middleware.NewInMemoryIdempotencyStore(a.cfg.IdempotencyTTL)
	}
	a.rateLimiter = middleware.NewRateLimiter(
		a.cfg.RateLimitRequests,
		a.cfg.RateLimitWindow,
		middleware.PathPrefixIP(authRoutePrefix),
		a.cfg.Log,
	)

	var handler http.Handler = router
	handler = middleware.Idempotency(a.idempotencyStore, middleware.DefaultIdempotencyHeader, authRoutePrefix)(handler)
	handler = middleware.RequestTimeout(a.cfg.RequestTimeout)(handler)
	handler = middleware.RateLimit(a.rateLimiter)(handler)
	handler = middleware.ContentTypeValidation(a.cfg.Log, webhookRoutePrefix)(handler)
	handler = middleware.MaxRequestSize(int64(a.cfg.MaxRequestSize))(handler)
	handler = middleware.CORS(a.cfg.CORSAllowedOrigins)(handler)
	handler = middleware.RequestLogging(a.cfg.Log)(handler)
	handler = middleware.Recovery(a.cfg.Log)(handler)
	a.cfg.Log.Info("Application endpoints configured with full middleware stack")
	return handler
}

func (a *Application) setAppServer() {
	a.server = &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      a.handler,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
		IdleTimeout:  a.cfg.IdleTimeout,
	}

	a.cfg.Log.Info("HTTP server configured", "port", a.cfg.Port)
}

func (a *Application) startWorkers() {
	ctx, cancel := context.WithCancel(context.Background())
	a.stopWorkers = cancel

	for _, w := range a.workers {
		a.workersDone.Add(1)
		go func(w Worker) {
			defer a.workersDone.Done()
			if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				a.cfg.Log.Error("Background worker stopped", "error", err)
			}
		}(w)
	}
	if len(a.workers) > 0 {
		a.cfg.Log.Info("Background workers started", "count", len(a.workers))
	}
}

func (a *Application) Run() {
	a.startWorkers()
	serverErrors := make(chan error, 1)

	go func() {
		a.cfg.Log.Info("Starting HTTP server", "address", a.server.Addr)
		serverErrors <- a.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		a.cfg.Log.Fatal("HTTP server failed", "error", err)

	case sig := <-shutdown:
		a.cfg.Log.Info("Shutdown signal received", "signal", sig)
		a.gracefulShutdown()
	}
}

func (a *Application) gracefulShutdown() {
	a.cfg.Log.Info("Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.cfg.Log.Error("Server shutdown failed", "error", err)
		if err := a.server.Close(); err != nil {
			a.cfg.Log.Fatal("Could not stop server gracefully", "error", err)
		}
	}

	a.cfg.Log.Info("Stopping background workers...")
	if a.stopWorkers != nil {
		a.stopWorkers()
	}
	a.workersDone.Wait()
	for _, w := range a.workers {
		if err := w.Close(); err != nil {
			a.cfg.Log.Error("Failed to close worker", "error", err)
		}
	}
	a.idempotencyStore.Stop()
	a.rateLimiter.Stop()
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			a.cfg.Log.Error("Failed to release resource", "error", err)
		}
	}
	a.cfg.Log.Info("Background workers stopped")

	a.cfg.Log.Info("Server stopped gracefully")
}
