package router

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"policyscraper/internal/api/v1/handler"
	"policyscraper/internal/api/v1/middleware"
	"policyscraper/internal/log"
	"policyscraper/pkg/response"
)

const (
	appName    = "policyscraper"
	apiVersion = "v1"
	BasePath   = "/" + appName + "/api/" + apiVersion
)

type Options struct {
	RateLimitRPS   float64
	RateLimitBurst int
	BasicAuthUser  string
	BasicAuthPass  string
}

func New(h *handler.Handler, opts Options) http.Handler {
	mux := http.NewServeMux()

	register := func(path string, fn http.HandlerFunc) {
		mux.HandleFunc(BasePath+path, fn)
	}

	register("/health", h.HealthCheck)
	register("/sections", h.Sections)
	register("/scrape", h.Scrape)
	register("/scrape/single", h.ScrapeSingle)

	var api http.Handler = mux
	if opts.BasicAuthUser != "" {
		api = middleware.BasicAuth(opts.BasicAuthUser, opts.BasicAuthPass)(api)
	}
	if opts.RateLimitRPS > 0 {
		api = middleware.RateLimit(opts.RateLimitRPS, opts.RateLimitBurst)(api)
	}

	return middleware.RecoverPanic(
		log.Logger,
		func(w http.ResponseWriter, r *http.Request, err error) {
			response.Error(w, http.StatusInternalServerError, "Internal Server Error")
		},
		middleware.SecureHeaders(
			middleware.Logging(
				middleware.Metrics(
					middleware.CORS(api),
				),
			),
		),
	)
}

func NewMetricsRouter() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}
