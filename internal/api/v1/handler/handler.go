package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"policyscraper/internal/cache"
	"policyscraper/internal/model"
	"policyscraper/internal/service"
	"policyscraper/internal/util"
	"policyscraper/pkg/response"
)

// DefaultBatchDeadline keeps a full batch under the limit of a hosted
// function invocation.
const DefaultBatchDeadline = 230 * time.Second

type Handler struct {
	scraper   *service.Scraper
	publisher *service.Publisher
	cache     *cache.ReportCache
	deadline  time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

// New returns the API handlers. publisher may be nil when storage is not
// configured and reports may be nil to disable caching.
func New(scraper *service.Scraper, publisher *service.Publisher, reports *cache.ReportCache, deadline time.Duration, logger *zap.Logger) *Handler {
	if deadline <= 0 {
		deadline = DefaultBatchDeadline
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		scraper:   scraper,
		publisher: publisher,
		cache:     reports,
		deadline:  deadline,
		now:       time.Now,
		logger:    logger,
	}
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.Success(w, map[string]string{"status": "ok"}, "")
}

type sectionsResponse struct {
	MainPage *model.Target  `json:"main_page,omitempty"`
	Sections []model.Target `json:"sections"`
	Total    int            `json:"total"`
}

// Sections lists the registry.
func (h *Handler) Sections(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	reg := h.scraper.Registry()
	resp := sectionsResponse{Sections: reg.Sections(), Total: reg.Len()}
	if main, ok := reg.Main(); ok {
		resp.MainPage = &main
	}
	response.Success(w, resp, "")
}

// Scrape runs a batch over the requested sections.
//
// Query parameters: sections (comma separated, default all), include_main
// (default true), format (json, summary or markdown), store and refresh.
func (h *Handler) Scrape(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()

	format, err := model.ParseFormat(strings.ToLower(strings.TrimSpace(q.Get("format"))))
	if err != nil {
		h.writeError(w, err)
		return
	}

	includeMain, err := boolParam(q.Get("include_main"), true)
	if err != nil {
		response.ErrorCode(w, http.StatusBadRequest, model.EINVALID, "invalid 'include_main' value", nil)
		return
	}
	store, err := boolParam(q.Get("store"), false)
	if err != nil {
		response.ErrorCode(w, http.StatusBadRequest, model.EINVALID, "invalid 'store' value", nil)
		return
	}
	refresh, err := boolParam(q.Get("refresh"), false)
	if err != nil {
		response.ErrorCode(w, http.StatusBadRequest, model.EINVALID, "invalid 'refresh' value", nil)
		return
	}

	targets, err := h.scraper.Select(util.SplitList(q.Get("sections")))
	if err != nil {
		h.writeError(w, err)
		return
	}

	names := make([]string, len(targets))
	for i, t := range targets {
		names[i] = t.Name
	}
	key := cache.Key(names, includeMain)

	var (
		report *model.SessionReport
		cached bool
	)
	if !refresh {
		report, cached = h.cache.Get(key)
	}
	if !cached {
		ctx, cancel := context.WithTimeout(r.Context(), h.deadline)
		defer cancel()

		report, err = h.scraper.Run(ctx, targets, includeMain)
		if err != nil {
			h.writeError(w, err)
			return
		}
		h.cache.Set(key, report)
	}

	var (
		urls    *model.StorageURLs
		warning string
	)
	if store {
		urls, warning = h.publish(r.Context(), report)
	}

	proj, err := service.Project(report, format)
	if err != nil {
		h.writeError(w, err)
		return
	}

	switch p := proj.(type) {
	case model.MarkdownReport:
		response.Text(w, http.StatusOK, "text/markdown; charset=utf-8", p.Text)
	case model.FullReport:
		p.StorageURLs, p.StorageWarning = urls, warning
		response.Raw(w, http.StatusOK, p)
	case model.SummaryReport:
		p.StorageURLs, p.StorageWarning = urls, warning
		response.Raw(w, http.StatusOK, p)
	default:
		response.Raw(w, http.StatusOK, p)
	}
}

// publish stores report and reports any failure as a warning; a storage
// problem never fails the request.
func (h *Handler) publish(ctx context.Context, report *model.SessionReport) (*model.StorageURLs, string) {
	if h.publisher == nil {
		return nil, model.Errorf(model.ESTORAGE, "storage is not configured").Error()
	}

	urls, err := h.publisher.Publish(ctx, report)
	if err == nil {
		return urls, ""
	}
	if urls != nil && urls.Summary == "" && len(urls.Targets) == 0 {
		urls = nil
	}
	return urls, err.Error()
}

// ScrapeSingle scrapes one section, optionally from an overriding url.
func (h *Handler) ScrapeSingle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	section := strings.TrimSpace(q.Get("section"))
	targetURL := strings.TrimSpace(q.Get("url"))

	if section == "" && targetURL == "" {
		response.ErrorCode(w, http.StatusBadRequest, model.EINVALID, "missing 'section' query parameter", nil)
		return
	}
	if targetURL != "" && !util.IsValidURL(targetURL) {
		response.ErrorCode(w, http.StatusBadRequest, model.EINVALID, "invalid 'url' format", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.deadline)
	defer cancel()

	result, err := h.scraper.ScrapeOne(ctx, section, targetURL)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Raw(w, http.StatusOK, service.SingleProjection(result, h.now()))
}

type notFoundData struct {
	AvailableSections []string `json:"available_sections"`
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var e *model.Error
	if !errors.As(err, &e) {
		h.logger.Error("request failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	switch e.Code {
	case model.ETARGETNOTFOUND:
		response.ErrorCode(w, http.StatusBadRequest, e.Code, e.Message,
			notFoundData{AvailableSections: h.scraper.Registry().Names()})
	case model.EINVALID:
		response.ErrorCode(w, http.StatusBadRequest, e.Code, e.Message, nil)
	default:
		h.logger.Error("request failed", zap.Error(err))
		response.ErrorCode(w, http.StatusInternalServerError, e.Code, e.Message, nil)
	}
}

func boolParam(value string, def bool) (bool, error) {
	if value == "" {
		return def, nil
	}
	return strconv.ParseBool(value)
}
