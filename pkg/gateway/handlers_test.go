package gateway

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"railguard-io/railguard/pkg/guardrails"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newHolder(t *testing.T, manifests ...string) *guardrails.Holder {
	t.Helper()
	root := t.TempDir()
	for i, manifest := range manifests {
		dir := filepath.Join(root, string(rune('a'+i)))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("creating guardrail dir: %v", err)
		}
		if err := os.WriteFile(filepath.Join(dir, "guardrail.yaml"), []byte(manifest), 0o644); err != nil {
			t.Fatalf("writing manifest: %v", err)
		}
	}
	holder := guardrails.NewHolder(testLogger())
	holder.Reload(guardrails.BuildOptions{Enabled: true, Enforce: true, Root: root})
	return holder
}

const blockSSNManifest = `name: pii-ssn
severity: block
rules:
  - name: ssn
    kind: regex
    pattern: '\b\d{3}-\d{2}-\d{4}\b'
    action: block
`

const redactCardManifest = `name: pii-card
severity: warn
rules:
  - name: card-number
    kind: regex
    pattern: '\b\d{4}-\d{4}-\d{4}-\d{4}\b'
    action: redact
    replacement: '[REDACTED]'
`

func postScan(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/messages", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestScanCleanText(t *testing.T) {
	handler := NewScanHandler(newHolder(t, blockSSNManifest), nil, nil, testLogger())

	rec := postScan(t, handler, `{"text": "nothing sensitive here"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp ScanResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Text != "nothing sensitive here" {
		t.Errorf("Text = %q, want unchanged", resp.Text)
	}
	if resp.Blocked || len(resp.Violations) != 0 {
		t.Errorf("clean text flagged: %+v", resp)
	}
}

func TestScanRedactsAndReportsViolations(t *testing.T) {
	handler := NewScanHandler(newHolder(t, redactCardManifest), nil, nil, testLogger())

	rec := postScan(t, handler, `{"text": "card 4111-1111-1111-1111 please"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp ScanResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if strings.Contains(resp.Text, "4111") {
		t.Errorf("card number survived redaction: %q", resp.Text)
	}
	if !strings.Contains(resp.Text, "[REDACTED]") {
		t.Errorf("replacement missing: %q", resp.Text)
	}
	if len(resp.Violations) != 1 {
		t.Fatalf("got %d violations, want 1", len(resp.Violations))
	}
	if resp.Violations[0].Rule != "card-number" || resp.Violations[0].Action != "redact" {
		t.Errorf("violation = %+v", resp.Violations[0])
	}
	if strings.Contains(resp.Violations[0].Matched, "4111") {
		t.Errorf("masked match leaked raw text: %q", resp.Violations[0].Matched)
	}
}

func TestScanBlockedReturns422(t *testing.T) {
	handler := NewScanHandler(newHolder(t, blockSSNManifest), nil, nil, testLogger())

	rec := postScan(t, handler, `{"text": "ssn 123-45-6789"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var resp BlockedResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Rules) != 1 || resp.Rules[0] != "ssn" {
		t.Errorf("Rules = %v, want [ssn]", resp.Rules)
	}
	if strings.Contains(rec.Body.String(), "123-45-6789") {
		t.Errorf("blocked response leaked matched text: %q", rec.Body.String())
	}
}

func TestScanRejectsBadBody(t *testing.T) {
	handler := NewScanHandler(newHolder(t), nil, nil, testLogger())

	rec := postScan(t, handler, "not json")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestScanRejectsGet(t *testing.T) {
	handler := NewScanHandler(newHolder(t), nil, nil, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/messages", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestHealthHandler(t *testing.T) {
	handler := NewHealthHandler()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestStatusHandlerReportsSnapshot(t *testing.T) {
	handler := NewStatusHandler(newHolder(t, blockSSNManifest, redactCardManifest))

	req := httptest.NewRequest(http.MethodGet, "/v1/guardrails", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Generation uint64   `json:"generation"`
		Guardrails []string `json:"guardrails"`
		Filters    int      `json:"filters"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Generation == 0 {
		t.Error("Generation = 0, want post-reload generation")
	}
	if len(resp.Guardrails) != 2 {
		t.Errorf("Guardrails = %v, want 2 entries", resp.Guardrails)
	}
	if resp.Filters != 2 {
		t.Errorf("Filters = %d, want 2", resp.Filters)
	}
}
