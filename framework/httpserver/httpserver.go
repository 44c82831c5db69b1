package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/a-h/templ"
	"github.com/sirupsen/logrus"
	"github.com/starfederation/datastar-go/datastar"
	"patientdesk/framework"
	"patientdesk/framework/engine"
	"patientdesk/framework/router"
)

const defaultHTMLCachePolicy = "no-store"
const defaultStaticCachePolicy = "public, max-age=3600"
const defaultHealthPath = "/healthz"
const defaultHealthBody = "ok"
const defaultMetricsPath = "/metrics"
const defaultStaticPrefix = "/static/"
const defaultContentSecurityPolicy = "default-src 'self'; object-src 'none'; base-uri 'self'; frame-ancestors 'none'"

type StaticMount struct {
	URLPrefix string
	Dir       string
}

// Asset is a generated file served from memory, such as a stylesheet built
// at startup.
type Asset struct {
	Path        string
	ContentType string
	Body        []byte
}

type CachePolicies struct {
	HTML   string
	Static string
	Health string
	Error  string
}

// DefaultCachePolicies keeps rendered pages out of shared caches; they carry
// patient data.
func DefaultCachePolicies() CachePolicies {
	return CachePolicies{
		HTML:   defaultHTMLCachePolicy,
		Static: defaultStaticCachePolicy,
		Health: defaultHTMLCachePolicy,
		Error:  defaultHTMLCachePolicy,
	}
}

type Config[C interface{}] struct {
	AppContext C
	Routes     *router.Table[framework.RouteHandler[C]]

	Static StaticMount
	Assets []Asset

	// ContentSecurityPolicy must allow every script and stylesheet origin
	// the layout references.
	ContentSecurityPolicy string

	CachePolicies CachePolicies

	IsNotFoundError func(err error) bool
	NotFoundPage    func(notFoundContext framework.NotFoundContext) templ.Component
	Logger          logrus.FieldLogger
	Metrics         *Metrics

	HealthPath  string
	HealthBody  string
	MetricsPath string
}

type server[C interface{}] struct {
	cachePolicies CachePolicies
	notFoundPage  func(notFoundContext framework.NotFoundContext) templ.Component
	logger        logrus.FieldLogger
	healthPath    string
	healthBody    string
	staticPrefix  string
	assetPaths    []string
	metricsPath   string

	routeEngine *engine.Engine[C]
}

func New[C interface{}](cfg Config[C]) (http.Handler, error) {
	cachePolicies := withDefaultPolicies(cfg.CachePolicies)
	healthPath := normalizePath(cfg.HealthPath, defaultHealthPath)
	healthBody := strings.TrimSpace(cfg.HealthBody)
	if healthBody == "" {
		healthBody = defaultHealthBody
	}

	srv := &server[C]{
		cachePolicies: cachePolicies,
		notFoundPage:  cfg.NotFoundPage,
		logger:        cfg.Logger,
		healthPath:    healthPath,
		healthBody:    healthBody,
	}

	routeEngine, err := engine.New(engine.Config[C]{
		AppContext:        cfg.AppContext,
		Routes:            cfg.Routes,
		RenderPage:        srv.renderPage,
		PatchLive:         srv.patchLive,
		IsNotFoundError:   cfg.IsNotFoundError,
		HandleNotFound:    srv.handleNotFound,
		HandleBadRequest:  srv.handleBadRequest,
		HandleServerError: srv.handleServerError,
	})
	if err != nil {
		return nil, fmt.Errorf("create route engine: %w", err)
	}
	srv.routeEngine = routeEngine

	mux := http.NewServeMux()
	if strings.TrimSpace(cfg.Static.Dir) != "" {
		prefix := normalizeStaticPrefix(cfg.Static.URLPrefix)
		fs := http.FileServer(http.Dir(cfg.Static.Dir))
		mux.Handle(prefix, withCachePolicy(cachePolicies.Static, http.StripPrefix(prefix, fs)))
		srv.staticPrefix = prefix
	}
	for _, asset := range cfg.Assets {
		path := normalizePath(asset.Path, "")
		if path == "" {
			return nil, errors.New("asset path is required")
		}
		mux.Handle(path, withCachePolicy(cachePolicies.Static, serveAsset(asset)))
		srv.assetPaths = append(srv.assetPaths, path)
	}
	if cfg.Metrics != nil {
		srv.metricsPath = normalizePath(cfg.MetricsPath, defaultMetricsPath)
		mux.Handle(srv.metricsPath, cfg.Metrics.Handler())
	}

	mux.HandleFunc("/", srv.handleRoute)

	handler := withInstrumentation(cfg.Logger, cfg.Metrics, srv.routeLabel, mux)
	csp := strings.TrimSpace(cfg.ContentSecurityPolicy)
	if csp == "" {
		csp = defaultContentSecurityPolicy
	}
	handler = withSecurityHeaders(csp, handler)
	return withRequestID(handler), nil
}

func (s *server[C]) handleRoute(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == s.healthPath {
		s.handleHealth(w)
		return
	}

	if s.routeEngine.ServeRoute(w, r) {
		return
	}

	s.handleNotFound(w, r, framework.NotFoundContext{
		RequestPath: r.URL.Path,
		Source:      framework.NotFoundSourceUnmatchedRoute,
	})
}

func (s *server[C]) routeLabel(r *http.Request) string {
	switch {
	case r.URL.Path == s.healthPath:
		return s.healthPath
	case s.metricsPath != "" && r.URL.Path == s.metricsPath:
		return s.metricsPath
	case slices.Contains(s.assetPaths, r.URL.Path):
		return r.URL.Path
	case s.staticPrefix != "" && strings.HasPrefix(r.URL.Path, s.staticPrefix):
		return s.staticPrefix
	}

	pattern, ok := s.routeEngine.MatchPattern(r)
	if !ok {
		return ""
	}
	return pattern
}

func (s *server[C]) renderPage(
	r *http.Request,
	w http.ResponseWriter,
	component templ.Component,
	statusCode int,
) error {
	return s.renderPageWithStatus(r, w, component, statusCode, s.cachePolicies.HTML)
}

func (s *server[C]) renderPageWithStatus(
	r *http.Request,
	w http.ResponseWriter,
	component templ.Component,
	statusCode int,
	cachePolicy string,
) error {
	setCachePolicy(w, cachePolicy)
	w.Header().Add("Vary", engine.DatastarRequestHeader)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if statusCode > 0 {
		w.WriteHeader(statusCode)
	}
	if r.Method == http.MethodHead {
		return nil
	}
	return component.Render(r.Context(), w)
}

func (s *server[C]) patchLive(
	w http.ResponseWriter,
	r *http.Request,
	selectorID string,
	component templ.Component,
) error {
	sse := datastar.NewSSE(w, r)
	setCachePolicy(w, s.cachePolicies.HTML)
	return sse.PatchElementTempl(component, datastar.WithSelectorID(selectorID))
}

func (s *server[C]) handleNotFound(
	w http.ResponseWriter,
	r *http.Request,
	notFoundContext framework.NotFoundContext,
) {
	if s.notFoundPage == nil {
		setCachePolicy(w, s.cachePolicies.Error)
		http.NotFound(w, r)
		return
	}

	component := s.notFoundPage(notFoundContext)
	if component == nil {
		setCachePolicy(w, s.cachePolicies.Error)
		http.NotFound(w, r)
		return
	}
	if err := s.renderPageWithStatus(r, w, component, http.StatusNotFound, s.cachePolicies.Error); err != nil {
		s.logServerError(fmt.Errorf("render not found page: %w", err))
	}
}

func (s *server[C]) handleBadRequest(w http.ResponseWriter, message string) {
	setCachePolicy(w, s.cachePolicies.Error)
	http.Error(w, message, http.StatusBadRequest)
}

func (s *server[C]) handleServerError(w http.ResponseWriter, err error) {
	setCachePolicy(w, s.cachePolicies.Error)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	s.logServerError(err)
}

func (s *server[C]) logServerError(err error) {
	if s.logger == nil {
		logrus.WithError(err).Error("framework server error")
		return
	}

	s.logger.WithError(err).Error("framework server error")
}

func (s *server[C]) handleHealth(w http.ResponseWriter) {
	setCachePolicy(w, s.cachePolicies.Health)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(s.healthBody))
}

func serveAsset(asset Asset) http.Handler {
	contentType := strings.TrimSpace(asset.ContentType)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", contentType)
		if r.Method == http.MethodHead {
			return
		}
		_, _ = w.Write(asset.Body)
	})
}

func normalizeStaticPrefix(prefix string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return defaultStaticPrefix
	}
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix
}

func normalizePath(path string, fallback string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return fallback
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

func withDefaultPolicies(policies CachePolicies) CachePolicies {
	defaults := DefaultCachePolicies()
	if strings.TrimSpace(policies.HTML) == "" {
		policies.HTML = defaults.HTML
	}
	if strings.TrimSpace(policies.Static) == "" {
		policies.Static = defaults.Static
	}
	if strings.TrimSpace(policies.Health) == "" {
		policies.Health = defaults.Health
	}
	if strings.TrimSpace(policies.Error) == "" {
		policies.Error = defaults.Error
	}
	return policies
}

func setCachePolicy(w http.ResponseWriter, policy string) {
	policy = strings.TrimSpace(policy)
	if policy == "" {
		return
	}
	w.Header().Set("Cache-Control", policy)
}

func withCachePolicy(policy string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setCachePolicy(w, policy)
		next.ServeHTTP(w, r)
	})
}
