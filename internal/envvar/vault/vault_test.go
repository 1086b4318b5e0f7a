package vault_test

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/sanLimbu/taskboard-api/internal/envvar/vault"
)

func TestProvider_Get(t *testing.T) {
	var reads int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/secret/data/taskboard/database" {
			http.NotFound(w, r)
			return
		}

		if r.Header.Get("X-Vault-Token") != "token" {
			w.WriteHeader(http.StatusForbidden)
			return
		}

		atomic.AddInt32(&reads, 1)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"data":{"password":"s3cret"}}}`))
	}))
	t.Cleanup(srv.Close)

	provider, err := vault.New("token", srv.URL, "secret/data/taskboard")
	if err != nil {
		t.Fatalf("expected no error, got %s", err)
	}

	for i := 0; i < 2; i++ {
		val, err := provider.Get("database:password")
		if err != nil {
			t.Fatalf("expected no error, got %s", err)
		}

		if val != "s3cret" {
			t.Fatalf("expected s3cret, got %q", val)
		}
	}

	if got := atomic.LoadInt32(&reads); got != 1 {
		t.Fatalf("expected one read, got %d", got)
	}

	if _, err := provider.Get("database:username"); err == nil {
		t.Fatalf("expected error for missing field")
	}

	if _, err := provider.Get("database"); err == nil {
		t.Fatalf("expected error for invalid reference")
	}
}
