package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/hyperjump/ragscope/internal/config"
	"github.com/hyperjump/ragscope/internal/models"
	"github.com/hyperjump/ragscope/internal/ragapi"
	"github.com/xuri/excelize/v2"
)

func TestArgsReorder(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "flags after question are moved first",
			args:     []string{"what is parsing", "--mode", "bm25"},
			expected: []string{"--mode", "bm25", "what is parsing"},
		},
		{
			name:     "flags first returns unchanged",
			args:     []string{"--top-k", "3", "what is parsing"},
			expected: []string{"--top-k", "3", "what is parsing"},
		},
		{
			name:     "question only returns unchanged",
			args:     []string{"what", "is", "parsing"},
			expected: []string{"what", "is", "parsing"},
		},
		{
			name:     "empty args returns unchanged",
			args:     []string{},
			expected: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := argsReorder(tt.args); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("argsReorder() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestJoinArgs(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"what", "is", "parsing?"}, "what is parsing?"},
		{[]string{"what is parsing?"}, "what is parsing?"},
		{[]string{"  ", " "}, ""},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := joinArgs(tt.args); got != tt.want {
			t.Errorf("joinArgs(%v) = %q, want %q", tt.args, got, tt.want)
		}
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(orig) })
}

func TestLoadConfig_prefersCwdConfigWhenDefaultPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
debug: true
api:
  base_url: "http://rag.internal:9000"
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	chdir(t, dir)

	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	// On macOS the cwd can be /private/var/... while t.TempDir() is /var/...; compare canonical paths.
	resolvedCanon, _ := filepath.EvalSymlinks(resolved)
	configPathCanon, _ := filepath.EvalSymlinks(configPath)
	if resolvedCanon != configPathCanon {
		t.Errorf("resolved path = %s, want %s", resolved, configPath)
	}
	if !cfg.Debug || cfg.API.BaseURL != "http://rag.internal:9000" {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestLoadConfig_defaultsWithoutFile(t *testing.T) {
	chdir(t, t.TempDir())
	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, statErr := os.Stat(defaultConfigPath); statErr == nil {
		t.Skip("a system config exists at the default path")
	}
	if resolved != "" {
		t.Errorf("resolved = %q, want empty for built-in defaults", resolved)
	}
	if cfg.API.BaseURL != config.DefaultBaseURL || cfg.Server.Port != 3000 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoadConfig_explicitPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "ragscope.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != configPath || cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("got %s %+v", resolved, cfg.Server)
	}

	if _, _, err := loadConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("explicit missing path should be an error")
	}
}

// fakeBackend records query bodies and serves fixed responses.
type fakeBackend struct {
	mu      sync.Mutex
	queries []models.QueryRequest
	uploads int
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case ragapi.PathOverview:
		io.WriteString(w, `{"num_documents":3,"num_chunks":120,"num_questions":10,"grounded_ratio":0.7,"mode_counts":{"hybrid":10},"questions_over_time":[]}`)
	case ragapi.PathLogs:
		io.WriteString(w, `{"logs":[{"log_id":"l1","timestamp":"2025-03-01T10:00:00Z","question":"What is parsing?","mode":"hybrid","top_k":5,"rerank":true,"used_docs":["week1.pdf"],"grounded":true,"answerability":"HIGH","refused":false,"total_ms":10}]}`)
	case ragapi.PathQuery:
		var req models.QueryRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.queries = append(f.queries, req)
		io.WriteString(w, `{"answer":"Parsing builds structure.","answerability":"HIGH","refused":false,"citations":[],"retrieval_graph":{"nodes":[],"edges":[]},"timings_ms":{"retrieval":1,"generation":2,"total":3}}`)
	case ragapi.PathDocs:
		if r.Method == http.MethodPost {
			f.uploads++
		}
		io.WriteString(w, `{"documents":[]}`)
	default:
		http.NotFound(w, r)
	}
}

func startBackend(t *testing.T) (*fakeBackend, string) {
	t.Helper()
	f := &fakeBackend{}
	ts := httptest.NewServer(f)
	t.Cleanup(ts.Close)
	chdir(t, t.TempDir())
	return f, ts.URL
}

func TestRun_overviewJSON(t *testing.T) {
	_, url := startBackend(t)
	var out bytes.Buffer
	if err := run(context.Background(), []string{"overview", "--api", url, "--output", "json"}, &out); err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Stats  models.OverviewStats `json:"stats"`
		Recent []models.LogEntry    `json:"recent"`
	}
	if err := json.Unmarshal(out.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out.String())
	}
	if decoded.Stats.NumChunks != 120 || len(decoded.Recent) != 1 {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestRun_askClampsTopKAndKeepsConfigDefaults(t *testing.T) {
	f, url := startBackend(t)
	var out bytes.Buffer
	err := run(context.Background(), []string{"ask", "what", "is", "parsing?", "--api", url, "--top-k", "99"}, &out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Parsing builds structure.") {
		t.Errorf("output = %s", out.String())
	}
	want := models.QueryRequest{Question: "what is parsing?", Mode: models.ModeHybrid, TopK: models.MaxTopK, Rerank: true}
	if len(f.queries) != 1 || f.queries[0] != want {
		t.Errorf("queries = %+v, want %+v", f.queries, want)
	}
}

func TestRun_askRejectsUnknownMode(t *testing.T) {
	f, url := startBackend(t)
	err := run(context.Background(), []string{"ask", "--api", url, "--mode", "magic", "q"}, io.Discard)
	if !errors.Is(err, models.ErrUnknownMode) {
		t.Errorf("err = %v, want ErrUnknownMode", err)
	}
	if len(f.queries) != 0 {
		t.Error("invalid mode reached the backend")
	}
}

func TestRun_uploadRejectsNonPDF(t *testing.T) {
	f, url := startBackend(t)
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("hello"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := run(context.Background(), []string{"upload", "--api", url, path}, io.Discard); err == nil {
		t.Error("expected preflight error")
	}
	if f.uploads != 0 {
		t.Error("non-PDF reached the backend")
	}
}

func TestRun_logsExport(t *testing.T) {
	_, url := startBackend(t)
	path := filepath.Join(t.TempDir(), "logs.xlsx")
	var out bytes.Buffer
	if err := run(context.Background(), []string{"logs", "--api", url, "--export", path}, &out); err != nil {
		t.Fatal(err)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := f.GetRows("Logs")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[1][0] != "l1" {
		t.Errorf("rows = %v", rows)
	}
}

func TestRun_usageErrors(t *testing.T) {
	tests := [][]string{
		nil,
		{"frobnicate"},
		{"ask"},
		{"upload"},
		{"overview", "--output", "yaml"},
	}
	for _, args := range tests {
		if err := run(context.Background(), args, io.Discard); err == nil {
			t.Errorf("run(%v) should fail", args)
		}
	}
}

func TestRun_version(t *testing.T) {
	var out bytes.Buffer
	if err := run(context.Background(), []string{"version"}, &out); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), "ragscope version ") {
		t.Errorf("version output = %q", out.String())
	}
}
