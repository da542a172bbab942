package datasource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/yourusername/choice-sim/internal/config"
)

func TestCSVSourceFetchObservations(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "observations.csv")
	content := "X1,X2,Cost\n2,1,1200\n1,5,\"1,500\"\n3,3,900\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	source := NewCSVSource(config.CSVSourceConfig{Name: "local", Path: path})
	if source.Name() != "local" {
		t.Errorf("expected source name local, got %s", source.Name())
	}

	table, err := source.FetchObservations(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(table) != 3 {
		t.Fatalf("expected 3 variables, got %d", len(table))
	}
	if got := table["X1"]; len(got) != 3 || got[0] != 2 || got[1] != 1 || got[2] != 3 {
		t.Errorf("unexpected X1 values: %v", got)
	}
	// Thousands separator tolerated
	if got := table["Cost"]; got[1] != 1500 {
		t.Errorf("expected comma-separated 1,500 parsed as 1500, got %v", got[1])
	}
}

func TestCSVSourceRejectsBadCell(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.csv")
	if err := os.WriteFile(path, []byte("X1\nnot-a-number\n"), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	source := NewCSVSource(config.CSVSourceConfig{Name: "bad", Path: path})
	if _, err := source.FetchObservations(context.Background()); err == nil {
		t.Error("expected error for non-numeric cell")
	}
}

func TestCSVSourceMissingFile(t *testing.T) {
	source := NewCSVSource(config.CSVSourceConfig{Name: "gone", Path: "/nonexistent/observations.csv"})
	if _, err := source.FetchObservations(context.Background()); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestHTTPSourceFetchObservations(t *testing.T) {
	var gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-Key")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"variables": {"X1": [1, 2], "X2": [3, 4]}}`))
	}))
	defer server.Close()

	cfg := config.HTTPSourceConfig{Name: "remote", URL: server.URL, APIKey: "secret"}
	client := NewRateLimitedHTTPClient(ClientConfigFromSource(cfg), nil)
	source := NewHTTPSource(cfg, client)

	table, err := source.FetchObservations(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotKey != "secret" {
		t.Errorf("expected X-API-Key header to be sent, got %q", gotKey)
	}
	if len(table["X1"]) != 2 || table["X1"][1] != 2 {
		t.Errorf("unexpected X1 values: %v", table["X1"])
	}
}

func TestHTTPSourceRejectsEmptyPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"variables": {}}`))
	}))
	defer server.Close()

	cfg := config.HTTPSourceConfig{Name: "empty", URL: server.URL}
	client := NewRateLimitedHTTPClient(ClientConfigFromSource(cfg), nil)
	source := NewHTTPSource(cfg, client)

	if _, err := source.FetchObservations(context.Background()); err == nil {
		t.Error("expected error for payload without variables")
	}
}

func TestRegistryLookup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "obs.csv")
	if err := os.WriteFile(path, []byte("X1\n1\n"), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	registry := NewRegistry(config.DataSourcesConfig{
		CSV: []config.CSVSourceConfig{{Name: "local", Path: path}},
	}, nil)

	src, err := registry.Get("local")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.Name() != "local" {
		t.Errorf("expected local source, got %s", src.Name())
	}

	if _, err := registry.Get("missing"); err == nil {
		t.Error("expected error for unknown source")
	}

	names := registry.Names()
	if len(names) != 1 || names[0] != "local" {
		t.Errorf("unexpected registry names: %v", names)
	}
}
