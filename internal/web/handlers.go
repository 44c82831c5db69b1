package web

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
	"patientdesk/framework/httpserver"
	"patientdesk/internal/config"
	"patientdesk/internal/markdown"
	"patientdesk/internal/patients"
	"patientdesk/internal/web/appcore"
	"patientdesk/internal/web/views"
)

const staticURLPrefix = "/static/"

// NewHandler wires the patient pages, static assets, health and metrics
// endpoints into one http.Handler.
func NewHandler(
	cfg config.Config,
	service *patients.Service,
	logger logrus.FieldLogger,
	metrics *httpserver.Metrics,
) (http.Handler, error) {
	assets := views.Assets{
		CodeStylesheet: views.CodeStylesheetPath,
		DatastarScript: cfg.DatastarScript,
	}
	if assets.DatastarScript == "" {
		assets.DatastarScript = views.DefaultDatastarScript
	}

	csp, err := contentSecurityPolicy(assets.DatastarScript)
	if err != nil {
		return nil, err
	}

	routes, err := NewRouteTable(assets)
	if err != nil {
		return nil, fmt.Errorf("build route table: %w", err)
	}

	handler, err := httpserver.New(httpserver.Config[*appcore.Context]{
		AppContext:      appcore.NewContext(service, cfg.NotesExcerpt),
		Routes:          routes,
		IsNotFoundError: appcore.IsNotFoundError,
		NotFoundPage:    NotFoundPage(assets),
		Static: httpserver.StaticMount{
			URLPrefix: staticURLPrefix,
			Dir:       cfg.StaticDir,
		},
		Assets: []httpserver.Asset{{
			Path:        views.CodeStylesheetPath,
			ContentType: "text/css; charset=utf-8",
			Body:        []byte(markdown.CodeCSS()),
		}},
		ContentSecurityPolicy: csp,
		CachePolicies:         cachePolicies(cfg),
		Logger:                logger,
		Metrics:               metrics,
		MetricsPath:           cfg.MetricsPath,
	})
	if err != nil {
		return nil, fmt.Errorf("create http handler: %w", err)
	}

	return handler, nil
}

// contentSecurityPolicy allows same-origin styles only and the datastar
// bundle as the one script. Datastar compiles data-* expressions at runtime,
// which needs 'unsafe-eval'.
func contentSecurityPolicy(datastarScript string) (string, error) {
	parsed, err := url.Parse(datastarScript)
	if err != nil {
		return "", fmt.Errorf("parse datastar script url: %w", err)
	}

	scriptSource := "'self'"
	if parsed.Host != "" {
		if parsed.Scheme != "https" && parsed.Scheme != "http" {
			return "", fmt.Errorf("datastar script url %q: unsupported scheme", datastarScript)
		}
		scriptSource += " " + parsed.Scheme + "://" + parsed.Host
	}

	return strings.Join([]string{
		"default-src 'self'",
		"script-src " + scriptSource + " 'unsafe-eval'",
		"style-src 'self'",
		"img-src 'self' data:",
		"object-src 'none'",
		"base-uri 'self'",
		"form-action 'self'",
		"frame-ancestors 'none'",
	}, "; "), nil
}
