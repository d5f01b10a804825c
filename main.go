package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/jackc/pgx/v5/stdlib"

	"alert-reporting/internal/audit"
	"alert-reporting/internal/auth"
	"alert-reporting/internal/observability/metrics"
	"alert-reporting/internal/report/application"
	"alert-reporting/internal/report/domain"
	"alert-reporting/internal/report/infrastructure/monitorapi"
	reporthttp "alert-reporting/internal/report/interfaces/http"
	"alert-reporting/internal/report/render"
)

func main() {
	_ = godotenv.Load()

	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	metrics.Init()

	var auditRepo audit.Logger
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("db open error: %v", err)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			logger.Fatalf("db ping error: %v", err)
		}
		auditRepo = audit.NewRepository(db)
	}

	options, err := application.LoadOptions()
	if err != nil {
		logger.Fatalf("report options error: %v", err)
	}
	loc, err := options.Location()
	if err != nil {
		logger.Fatalf("report timezone error: %v", err)
	}

	client, err := monitorapi.NewClient(cfg.MonitorBaseURL, monitorapi.WithTimeout(cfg.UpstreamTimeout))
	if err != nil {
		logger.Fatalf("monitor client error: %v", err)
	}

	clock := domain.SystemClock{}
	builder, err := application.NewBuilder(loc, clock,
		application.WithTitle(options.Title),
		application.WithSensorTypeLabels(options.SensorTypeLabels),
	)
	if err != nil {
		logger.Fatalf("report builder error: %v", err)
	}

	renderers := map[string]render.Renderer{
		"pdf":  render.NewPDF(options.FilenameStem),
		"xlsx": render.NewXLSX(options.FilenameStem),
	}
	sessions := application.SessionFactoryFunc(func(token string) application.Session {
		return client.Session(token)
	})
	pipeline, err := application.NewPipeline(sessions, builder, renderers, clock, options.Padding, logger)
	if err != nil {
		logger.Fatalf("report pipeline error: %v", err)
	}

	handler, err := reporthttp.NewHandler(pipeline, auditRepo, logger)
	if err != nil {
		logger.Fatalf("report handler error: %v", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	handler.RegisterRoutes(r)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	policy := auth.NewPolicy([]string{"/healthz", "/metrics"})
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      loggingMiddleware(authMiddleware.Wrap(r), logger),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 10*time.Second,
		IdleTimeout:  30 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	ln, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		logger.Fatalf("listen error: %v", err)
	}
	logger.Printf("http listening on %s", ln.Addr())
	if err := serveUntilShutdown(server, ln, shutdown); err != nil {
		logger.Fatalf("server error: %v", err)
	}
}

// serveUntilShutdown serves until a shutdown signal arrives, then drains
// in-flight requests before returning.
func serveUntilShutdown(server *http.Server, ln net.Listener, shutdown <-chan os.Signal) error {
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		<-shutdown
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}()

	if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-drained
	return nil
}

type config struct {
	HTTPAddr        string
	MonitorBaseURL  string
	UpstreamTimeout time.Duration
	RequestTimeout  time.Duration
	JWTSecret       string
	DatabaseURL     string
}

func loadConfig() config {
	cfg := config{
		HTTPAddr:        getenvDefault("HTTP_ADDR", ":8100"),
		MonitorBaseURL:  getenvDefault("MONITOR_API_BASE_URL", ""),
		UpstreamTimeout: getenvDuration("UPSTREAM_TIMEOUT", 10*time.Second),
		RequestTimeout:  getenvDuration("REQUEST_TIMEOUT", 30*time.Second),
		JWTSecret:       getenvDefault("AUTH_JWT_SECRET", ""),
		DatabaseURL:     getenvDefault("DATABASE_URL", ""),
	}
	if cfg.MonitorBaseURL == "" {
		log.Fatal("MONITOR_API_BASE_URL is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
