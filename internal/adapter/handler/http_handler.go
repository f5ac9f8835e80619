package handler

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/smartor/case-ledger/internal/core/domain"
	"github.com/smartor/case-ledger/internal/core/service"
	"github.com/smartor/case-ledger/internal/port"
)

type HTTPHandler struct {
	ledger     *service.LedgerService
	aggregator *service.CaseAggregator
	reports    *service.ReportService
}

func NewHTTPHandler(ledger *service.LedgerService, aggregator *service.CaseAggregator, reports *service.ReportService) *HTTPHandler {
	return &HTTPHandler{ledger: ledger, aggregator: aggregator, reports: reports}
}

type RecordUsageHTTPRequest struct {
	RequestID string `json:"request_id"`
	CaseID    string `json:"case_id"`
	Text      string `json:"text"`
	AudioB64  string `json:"audio_b64"`
	AudioMIME string `json:"audio_mime"`
}

type UsageLineHTTP struct {
	Item   string `json:"item"`
	Qty    string `json:"qty"`
	Unit   string `json:"unit,omitempty"`
	Cost   string `json:"cost"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type RecordUsageHTTPResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Lines   []UsageLineHTTP `json:"lines,omitempty"`
}

func (h *HTTPHandler) RecordUsage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req RecordUsageHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, RecordUsageHTTPResponse{Success: false, Message: "invalid request body"})
		return
	}

	if req.RequestID == "" || req.CaseID == "" || (req.Text == "" && req.AudioB64 == "") {
		writeJSON(w, http.StatusBadRequest, RecordUsageHTTPResponse{Success: false, Message: "missing required fields"})
		return
	}

	u := port.Utterance{Text: req.Text, AudioMIME: req.AudioMIME}
	if req.AudioB64 != "" {
		audio, err := base64.StdEncoding.DecodeString(req.AudioB64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, RecordUsageHTTPResponse{Success: false, Message: "invalid audio payload"})
			return
		}
		u.Audio = audio
	}

	lines, err := h.ledger.RecordUsage(r.Context(), req.RequestID, req.CaseID, u)
	if err != nil {
		status, message := actionErrorStatus(err)
		writeJSON(w, status, RecordUsageHTTPResponse{Success: false, Message: message})
		return
	}

	writeJSON(w, http.StatusOK, RecordUsageHTTPResponse{Success: true, Lines: usageLinesHTTP(lines)})
}

type StampHTTPRequest struct {
	RequestID string `json:"request_id"`
	CaseID    string `json:"case_id"`
	Stage     string `json:"stage"`
}

type StatusHTTPResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func (h *HTTPHandler) RecordStamp(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req StampHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, StatusHTTPResponse{Success: false, Message: "invalid request body"})
		return
	}
	if req.RequestID == "" || req.CaseID == "" || req.Stage == "" {
		writeJSON(w, http.StatusBadRequest, StatusHTTPResponse{Success: false, Message: "missing required fields"})
		return
	}

	err := h.ledger.RecordStamp(r.Context(), req.RequestID, req.CaseID, domain.WorkflowStage(req.Stage))
	if err != nil {
		status, message := actionErrorStatus(err)
		writeJSON(w, status, StatusHTTPResponse{Success: false, Message: message})
		return
	}

	writeJSON(w, http.StatusOK, StatusHTTPResponse{Success: true})
}

type SafetyCountHTTPRequest struct {
	RequestID string `json:"request_id"`
	CaseID    string `json:"case_id"`
	Phase     string `json:"phase"`
	Correct   bool   `json:"correct"`
}

func (h *HTTPHandler) RecordSafetyCount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req SafetyCountHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, StatusHTTPResponse{Success: false, Message: "invalid request body"})
		return
	}
	if req.RequestID == "" || req.CaseID == "" || req.Phase == "" {
		writeJSON(w, http.StatusBadRequest, StatusHTTPResponse{Success: false, Message: "missing required fields"})
		return
	}

	err := h.ledger.RecordSafetyCount(r.Context(), req.RequestID, req.CaseID, domain.CountPhase(req.Phase), req.Correct)
	if err != nil {
		status, message := actionErrorStatus(err)
		writeJSON(w, status, StatusHTTPResponse{Success: false, Message: message})
		return
	}

	writeJSON(w, http.StatusOK, StatusHTTPResponse{Success: true})
}

type CaseSummaryHTTPResponse struct {
	CaseID         string            `json:"case_id"`
	State          string            `json:"state"`
	EntryCount     int               `json:"entry_count"`
	TotalCost      string            `json:"total_cost"`
	CostByCategory map[string]string `json:"cost_by_category"`
}

func (h *HTTPHandler) CaseSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	caseID := r.URL.Query().Get("case_id")
	if caseID == "" {
		writeJSON(w, http.StatusBadRequest, StatusHTTPResponse{Success: false, Message: "case_id is required"})
		return
	}

	totals, err := h.aggregator.Totals(r.Context(), caseID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, StatusHTTPResponse{Success: false, Message: "internal error"})
		return
	}
	state, err := h.aggregator.State(r.Context(), caseID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, StatusHTTPResponse{Success: false, Message: "internal error"})
		return
	}

	byCategory := make(map[string]string, len(totals.CostByCategory))
	for category, cost := range totals.CostByCategory {
		byCategory[category] = cost.StringFixed(2)
	}
	writeJSON(w, http.StatusOK, CaseSummaryHTTPResponse{
		CaseID:         totals.CaseID,
		State:          string(state),
		EntryCount:     totals.EntryCount,
		TotalCost:      totals.TotalCost.StringFixed(2),
		CostByCategory: byCategory,
	})
}

type LedgerEntryHTTP struct {
	Timestamp string `json:"ts"`
	Item      string `json:"item"`
	Qty       string `json:"qty"`
	Unit      string `json:"unit"`
	Category  string `json:"category"`
	Cost      string `json:"cost"`
	Source    string `json:"source"`
}

func (h *HTTPHandler) CaseEntries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	caseID := r.URL.Query().Get("case_id")
	if caseID == "" {
		writeJSON(w, http.StatusBadRequest, StatusHTTPResponse{Success: false, Message: "case_id is required"})
		return
	}

	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, StatusHTTPResponse{Success: false, Message: "invalid limit"})
			return
		}
		limit = n
	}

	entries, err := h.aggregator.RecentEntries(r.Context(), caseID, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, StatusHTTPResponse{Success: false, Message: "internal error"})
		return
	}

	out := make([]LedgerEntryHTTP, 0, len(entries))
	for _, e := range entries {
		out = append(out, LedgerEntryHTTP{
			Timestamp: e.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
			Item:      e.Item,
			Qty:       e.Qty.String(),
			Unit:      e.Unit,
			Category:  e.Category,
			Cost:      e.Cost.StringFixed(2),
			Source:    string(e.Source),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type CaseReportHTTPRequest struct {
	CaseID    string `json:"case_id"`
	Surgeon   string `json:"surgeon"`
	Procedure string `json:"procedure"`
}

type ProseHTTPResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Report  string `json:"report,omitempty"`
}

func (h *HTTPHandler) CaseReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req CaseReportHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ProseHTTPResponse{Success: false, Message: "invalid request body"})
		return
	}
	if req.CaseID == "" || req.Procedure == "" {
		writeJSON(w, http.StatusBadRequest, ProseHTTPResponse{Success: false, Message: "missing required fields"})
		return
	}

	report, err := h.reports.CaseReport(r.Context(), req.CaseID, req.Surgeon, req.Procedure)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, ProseHTTPResponse{Success: false, Message: "report generation failed"})
		return
	}
	writeJSON(w, http.StatusOK, ProseHTTPResponse{Success: true, Report: report})
}

type PickListHTTPRequest struct {
	Surgeon   string `json:"surgeon"`
	Procedure string `json:"procedure"`
}

func (h *HTTPHandler) PickList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req PickListHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ProseHTTPResponse{Success: false, Message: "invalid request body"})
		return
	}
	if req.Procedure == "" {
		writeJSON(w, http.StatusBadRequest, ProseHTTPResponse{Success: false, Message: "procedure is required"})
		return
	}

	suggestion, err := h.reports.PickList(r.Context(), req.Surgeon, req.Procedure)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, ProseHTTPResponse{Success: false, Message: "suggestion failed"})
		return
	}
	writeJSON(w, http.StatusOK, ProseHTTPResponse{Success: true, Report: suggestion})
}

type CatalogItemHTTP struct {
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Unit      string `json:"unit"`
	Category  string `json:"category"`
	OnHand    string `json:"on_hand"`
}

func (h *HTTPHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snap := h.ledger.Snapshot()
	if snap == nil {
		writeJSON(w, http.StatusServiceUnavailable, StatusHTTPResponse{Success: false, Message: "catalog not loaded"})
		return
	}

	items := snap.Items()
	out := make([]CatalogItemHTTP, 0, len(items))
	for _, item := range items {
		out = append(out, CatalogItemHTTP{
			Name:      item.Name,
			UnitPrice: item.UnitPrice.StringFixed(2),
			Unit:      item.Unit,
			Category:  item.Category,
			OnHand:    item.OnHand.String(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func usageLinesHTTP(lines []service.UsageLine) []UsageLineHTTP {
	out := make([]UsageLineHTTP, 0, len(lines))
	for _, l := range lines {
		cost := decimal.Zero
		if l.Status == service.LineRecorded {
			cost = l.Cost
		}
		out = append(out, UsageLineHTTP{
			Item:   l.Item,
			Qty:    l.Qty.String(),
			Unit:   l.Unit,
			Cost:   cost.StringFixed(2),
			Status: string(l.Status),
			Error:  l.Error,
		})
	}
	return out
}

func actionErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrDuplicateRequest):
		return http.StatusConflict, "duplicate request"
	case errors.Is(err, service.ErrNoCatalog):
		return http.StatusServiceUnavailable, "catalog not loaded"
	case errors.Is(err, service.ErrCaseClosed):
		return http.StatusConflict, "case is closed"
	case errors.Is(err, domain.ErrBadTransition):
		return http.StatusConflict, "workflow stamp out of order"
	default:
		return http.StatusBadGateway, "action failed"
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
