package gateway

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"railguard-io/railguard/pkg/audit"
	"railguard-io/railguard/pkg/guardrails"
	"railguard-io/railguard/pkg/telemetry/metrics"
)

// scanSurface identifies the gateway in audit records and metrics.
const scanSurface = "gateway"

// maxRequestBytes bounds the scan request body.
const maxRequestBytes = 1 << 20

// ScanRequest is the body of a POST /v1/messages request.
type ScanRequest struct {
	Text string `json:"text"`
}

// ScanViolation is one triggered filter in a scan response.
type ScanViolation struct {
	Rule    string `json:"rule"`
	Action  string `json:"action"`
	Matched string `json:"matched"`
}

// ScanResponse is the body of a successful scan.
type ScanResponse struct {
	Text       string          `json:"text"`
	Blocked    bool            `json:"blocked"`
	Violations []ScanViolation `json:"violations,omitempty"`
	Generation uint64          `json:"generation"`
}

// BlockedResponse is the 422 body when a blocking filter matched.
type BlockedResponse struct {
	Error string   `json:"error"`
	Rules []string `json:"rules"`
}

// ScanHandler scans message text through the current guardrail engine.
type ScanHandler struct {
	holder   *guardrails.Holder
	recorder *audit.Recorder
	metrics  *metrics.ScanMetrics
	logger   *slog.Logger
}

// NewScanHandler creates a scan handler. Recorder and metrics may be
// nil.
func NewScanHandler(holder *guardrails.Holder, recorder *audit.Recorder, m *metrics.ScanMetrics, logger *slog.Logger) *ScanHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScanHandler{
		holder:   holder,
		recorder: recorder,
		metrics:  m,
		logger:   logger.With("component", "gateway.scan"),
	}
}

// ServeHTTP implements http.Handler.
func (h *ScanHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ScanRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := decoder.Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	snapshot := h.holder.Current()
	start := time.Now()
	result := snapshot.Engine.Scan(req.Text)

	if h.metrics != nil {
		h.metrics.RecordScan(scanSurface, result, time.Since(start))
	}
	if h.recorder != nil {
		h.recorder.RecordScan(scanSurface, snapshot.Generation, result)
	}
	for _, v := range result.Violations {
		h.logger.Warn("guardrail violation",
			"rule", v.Rule,
			"action", v.Action,
			"matched", v.Matched,
		)
	}

	w.Header().Set("Content-Type", "application/json")
	if result.Blocked() {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(BlockedResponse{
			Error: "input blocked by guardrails",
			Rules: result.BlockedRules(),
		})
		return
	}

	resp := ScanResponse{
		Text:       result.Text,
		Blocked:    false,
		Generation: snapshot.Generation,
	}
	for _, v := range result.Violations {
		resp.Violations = append(resp.Violations, ScanViolation{
			Rule:    v.Rule,
			Action:  string(v.Action),
			Matched: v.Matched,
		})
	}
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// HealthHandler handles liveness probes.
type HealthHandler struct{}

// NewHealthHandler creates a health check handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// ServeHTTP implements http.Handler.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// StatusHandler reports the current guardrail snapshot.
type StatusHandler struct {
	holder *guardrails.Holder
}

// NewStatusHandler creates a guardrail status handler.
func NewStatusHandler(holder *guardrails.Holder) *StatusHandler {
	return &StatusHandler{holder: holder}
}

// ServeHTTP implements http.Handler.
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snapshot := h.holder.Current()
	guardrailNames := make([]string, 0, len(snapshot.Catalog))
	for _, g := range snapshot.Catalog {
		guardrailNames = append(guardrailNames, g.Name)
	}

	response := map[string]interface{}{
		"generation": snapshot.Generation,
		"built_at":   snapshot.BuiltAt.Unix(),
		"guardrails": guardrailNames,
		"filters":    snapshot.Engine.FilterCount(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}
