package web

import (
	"testing"

	"patientdesk/framework/httpserver"
	"patientdesk/internal/config"
)

func TestCachePolicies_Defaults(t *testing.T) {
	got := cachePolicies(config.Config{})
	if got != httpserver.DefaultCachePolicies() {
		t.Fatalf("expected default policies, got %+v", got)
	}
	if got.HTML != "no-store" {
		t.Fatalf("expected html pages to be no-store, got %q", got.HTML)
	}
}

func TestCachePolicies_HTMLOverride(t *testing.T) {
	got := cachePolicies(config.Config{CacheHTML: " private, max-age=60 "})
	if got.HTML != "private, max-age=60" {
		t.Fatalf("expected html override, got %q", got.HTML)
	}
	if got.Static != httpserver.DefaultCachePolicies().Static {
		t.Fatalf("expected static policy untouched, got %q", got.Static)
	}
}
