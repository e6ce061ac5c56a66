package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"fund-dashboard-go/internal/dispatch"
	"fund-dashboard-go/internal/history"
	"fund-dashboard-go/internal/portfolio"
	"fund-dashboard-go/internal/upstream"
	"go.uber.org/zap"
)

// dashboardResolver produces the read-path view.
type dashboardResolver interface {
	Resolve(ctx context.Context) (portfolio.DashboardView, error)
}

// APIHandler holds dependencies for the API endpoints.
type APIHandler struct {
	log        *zap.Logger
	resolver   dashboardResolver
	dispatcher dispatch.ClientInterface
	history    *history.Store
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(log *zap.Logger, resolver dashboardResolver, dispatcher dispatch.ClientInterface, store *history.Store) *APIHandler {
	return &APIHandler{log: log, resolver: resolver, dispatcher: dispatcher, history: store}
}

// FundHandler multiplexes the fund endpoint by method: GET reads the
// dashboard, POST triggers the recompute workflow.
func (h *APIHandler) FundHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.dashboard(w, r)
	case http.MethodPost:
		h.trigger(w, r)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

// dashboard serves the profit/loss view. The read path never surfaces a
// hard failure: a degraded (holdings-only or zero) view still answers 200.
func (h *APIHandler) dashboard(w http.ResponseWriter, r *http.Request) {
	view, err := h.resolver.Resolve(r.Context())
	degraded := err != nil
	if degraded {
		h.log.Warn("Serving degraded dashboard view", zap.Error(err))
	}

	h.history.RecordView(portfolio.DateKey(time.Now()), view, degraded)
	writeJSON(w, http.StatusOK, view)
}

type triggerRequest struct {
	Mode string `json:"mode"`
}

type triggerResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Mode      string `json:"mode"`
	Timestamp string `json:"timestamp"`
}

// trigger validates the mode and fires the remote workflow. Upstream
// failures forward the upstream status code and body verbatim.
func (h *APIHandler) trigger(w http.ResponseWriter, r *http.Request) {
	req := triggerRequest{Mode: dispatch.ModeProfit}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to read request body"})
		return
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
	}
	if req.Mode == "" {
		req.Mode = dispatch.ModeProfit
	}

	if !dispatch.IsAllowedMode(req.Mode) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("unsupported mode: %s", req.Mode)})
		return
	}

	if err := h.dispatcher.Dispatch(r.Context(), req.Mode); err != nil {
		h.log.Error("Workflow dispatch failed", zap.String("mode", req.Mode), zap.Error(err))

		var upErr *upstream.Error
		if errors.As(err, &upErr) {
			h.history.RecordDispatch(req.Mode, false, upErr.StatusCode, upErr.Body)
			writeJSON(w, upErr.StatusCode, map[string]string{"error": upErr.Body})
			return
		}
		h.history.RecordDispatch(req.Mode, false, 0, err.Error())
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	h.history.RecordDispatch(req.Mode, true, http.StatusNoContent, "")
	writeJSON(w, http.StatusOK, triggerResponse{
		Success:   true,
		Message:   "workflow dispatched",
		Mode:      req.Mode,
		Timestamp: portfolio.FormatUpdateTime(time.Now()),
	})
}

// HistoryHandler returns the most recent locally recorded dashboard views.
func (h *APIHandler) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	records, err := h.history.RecentViews(30)
	if err != nil {
		h.log.Error("Failed to load recorded views", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load history"})
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
