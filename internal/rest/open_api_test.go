package rest_test

import (
	"net/http"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/ghodss/yaml"
)

func TestRegisterOpenAPI(t *testing.T) {
	srv := newServer(t)

	resp := doRequest(t, srv, http.MethodGet, "/openapi3.json", "", nil)
	if resp.status != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.status)
	}

	doc, err := openapi3.NewLoader().LoadFromData(resp.body)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	for _, path := range []string{"/api/tasks", "/api/tasks/{id}", "/api/tasks/reorder", "/api/auth/login"} {
		if doc.Paths[path] == nil {
			t.Fatalf("missing path %s", path)
		}
	}

	resp = doRequest(t, srv, http.MethodGet, "/openapi3.yaml", "", nil)
	if resp.status != http.StatusOK || resp.header.Get("Content-Type") != "application/x-yaml" {
		t.Fatalf("unexpected yaml response %d %s", resp.status, resp.header.Get("Content-Type"))
	}

	var out map[string]interface{}
	if err := yaml.Unmarshal(resp.body, &out); err != nil {
		t.Fatalf("unmarshal yaml: %v", err)
	}

	if out["openapi"] != "3.0.0" {
		t.Fatalf("unexpected version %v", out["openapi"])
	}
}

func TestRegisterHealth(t *testing.T) {
	srv := newServer(t)

	resp := doRequest(t, srv, http.MethodGet, "/api/health", "", nil)
	if resp.status != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.status)
	}
}
