package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/hitoshi/contactsman/internal/metrics"
	"github.com/hitoshi/contactsman/internal/middleware"
	"github.com/hitoshi/contactsman/internal/repository"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	StatusRecorder    middleware.HTTPStatusRecorder
	RequestTimeout    time.Duration

	// 運用
	HealthChecker   repository.HealthChecker
	MetricsGatherer prometheus.Gatherer
	// TracerProvider が nil の場合はグローバルのプロバイダーを使う。
	TracerProvider trace.TracerProvider

	// 人物・国
	PersonService  PersonServiceInterface
	CountryService CountryServiceInterface
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → RealIP → Recovery → Logging → StatusMetrics → SecurityHeaders → CORS
//
// /api 配下にはさらにTracing、TimeoutとRateLimit(General)を適用し、
// エクスポートにはRateLimit(Export)を追加する。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewRecoveryMiddleware(logger))
	r.Use(middleware.NewLoggingMiddleware(logger))
	if deps.StatusRecorder != nil {
		r.Use(middleware.NewStatusMetricsMiddleware(deps.StatusRecorder))
	}
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	// --- 運用エンドポイント ---
	r.Get("/health", NewHealthHandler(deps.HealthChecker))
	if deps.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	personHandler := NewPersonHandler(deps.PersonService)
	countryHandler := NewCountryHandler(deps.CountryService)

	// --- API ---
	r.Route("/api", func(r chi.Router) {
		r.Use(newTracingMiddleware(deps.TracerProvider))
		if deps.RequestTimeout > 0 {
			r.Use(chimiddleware.Timeout(deps.RequestTimeout))
		}
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Route("/persons", func(r chi.Router) {
			r.Get("/", personHandler.ListPersons)
			r.With(deps.RateLimiter.ExportMiddleware()).Get("/export", personHandler.ExportPersons)
			r.Get("/{id}", personHandler.GetPerson)
		})

		r.Route("/countries", func(r chi.Router) {
			r.Get("/", countryHandler.ListCountries)
			r.Get("/{id}", countryHandler.GetCountry)
		})
	})

	return r
}

// newTracingMiddleware はリクエストごとにサーバースパンを開始するミドルウェアを返す。
func newTracingMiddleware(tp trace.TracerProvider) func(http.Handler) http.Handler {
	opts := []otelhttp.Option{
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	}
	if tp != nil {
		opts = append(opts, otelhttp.WithTracerProvider(tp))
	}
	return otelhttp.NewMiddleware("contactsman-api", opts...)
}
