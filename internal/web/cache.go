package web

import (
	"strings"

	"patientdesk/framework/httpserver"
	"patientdesk/internal/config"
)

// cachePolicies starts from the framework defaults; only the HTML policy is
// configurable because static assets and error pages never carry patient data.
func cachePolicies(cfg config.Config) httpserver.CachePolicies {
	policies := httpserver.DefaultCachePolicies()
	if html := strings.TrimSpace(cfg.CacheHTML); html != "" {
		policies.HTML = html
	}
	return policies
}
