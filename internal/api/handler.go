package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mtlprog/balances/internal/claimable"
	"github.com/mtlprog/balances/internal/domain"
	"github.com/mtlprog/balances/internal/export"
	"github.com/mtlprog/balances/internal/overview"
)

// writeWorkbook renders export tables as an .xlsx workbook.
var writeWorkbook = export.WriteWorkbook

// CacheStats reports how many asset classifications are cached.
type CacheStats interface {
	Cached() int
}

// Handler provides HTTP endpoints for the balances API.
type Handler struct {
	overview  *overview.Service
	claimable *claimable.Service
	tracker   *overview.Tracker
	watched   map[string]bool
	cache     CacheStats // optional
}

// NewHandler creates a new API handler. Only accounts in watched can be
// read from or refreshed through the tracker.
func NewHandler(ov *overview.Service, cb *claimable.Service, tracker *overview.Tracker, watched []string, cache CacheStats) *Handler {
	w := make(map[string]bool, len(watched))
	for _, id := range watched {
		w[id] = true
	}
	return &Handler{overview: ov, claimable: cb, tracker: tracker, watched: w, cache: cache}
}

// watchedResponse is a tracker state plus whether any derivation has been published yet.
type watchedResponse struct {
	overview.State
	Published bool `json:"published"`
}

// GetBalances handles GET /api/v1/accounts/{id}/balances.
func (h *Handler) GetBalances(w http.ResponseWriter, r *http.Request) {
	id, ok := accountParam(w, r)
	if !ok {
		return
	}
	records, err := h.overview.Balances(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, "failed to derive balances", id, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// GetBalancesXLSX handles GET /api/v1/accounts/{id}/balances.xlsx.
func (h *Handler) GetBalancesXLSX(w http.ResponseWriter, r *http.Request) {
	id, ok := accountParam(w, r)
	if !ok {
		return
	}
	ov, err := h.overview.Overview(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, "failed to derive balances", id, err)
		return
	}

	state := overview.State{AccountID: id, Records: ov.Balances, Summary: ov.Summary, UpdatedAt: time.Now()}
	var buf bytes.Buffer
	if err := writeWorkbook(&buf, export.BuildSheets([]overview.State{state}, state.UpdatedAt)); err != nil {
		slog.Error("failed to build workbook", "account", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build workbook")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.xlsx"`, id))
	if _, err := buf.WriteTo(w); err != nil {
		slog.Warn("failed to write workbook", "account", id, "error", err)
	}
}

// GetOverview handles GET /api/v1/accounts/{id}.
func (h *Handler) GetOverview(w http.ResponseWriter, r *http.Request) {
	id, ok := accountParam(w, r)
	if !ok {
		return
	}
	ov, err := h.overview.Overview(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, "failed to build account overview", id, err)
		return
	}
	writeJSON(w, http.StatusOK, ov)
}

// GetClaimableBalances handles GET /api/v1/accounts/{id}/claimable-balances.
func (h *Handler) GetClaimableBalances(w http.ResponseWriter, r *http.Request) {
	id, ok := accountParam(w, r)
	if !ok {
		return
	}
	records, err := h.claimable.List(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, "failed to list claimable balances", id, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// GetWatched handles GET /api/v1/watched/{id}.
func (h *Handler) GetWatched(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !h.watched[id] {
		writeError(w, http.StatusNotFound, "account is not watched")
		return
	}
	state, published := h.tracker.State(id)
	if state.AccountID == "" {
		state.AccountID = id
	}
	if state.Records == nil {
		state.Records = []domain.AccountBalanceRecord{}
	}
	writeJSON(w, http.StatusOK, watchedResponse{State: state, Published: published})
}

// RefreshWatched handles POST /api/v1/watched/{id}/refresh.
func (h *Handler) RefreshWatched(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !h.watched[id] {
		writeError(w, http.StatusNotFound, "account is not watched")
		return
	}
	state, err := h.tracker.Refresh(r.Context(), id)
	if err != nil {
		if errors.Is(err, overview.ErrSuperseded) {
			writeError(w, http.StatusConflict, "superseded by a newer refresh")
			return
		}
		writeServiceError(w, r, "failed to refresh account", id, err)
		return
	}
	writeJSON(w, http.StatusOK, watchedResponse{State: state, Published: true})
}

// Health handles GET /healthz.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	resp := map[string]any{"status": "ok", "watched": len(h.watched)}
	if h.cache != nil {
		resp["cachedClassifications"] = h.cache.Cached()
	}
	writeJSON(w, http.StatusOK, resp)
}

// accountParam extracts and validates the {id} path value, writing a 400 when invalid.
func accountParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("id")
	if !validAccountID(id) {
		writeError(w, http.StatusBadRequest, "invalid account id")
		return "", false
	}
	return id, true
}

// validAccountID checks the shape of a Stellar public key: 56 base32 characters starting with G.
func validAccountID(id string) bool {
	if len(id) != 56 || id[0] != 'G' {
		return false
	}
	for _, c := range id {
		if (c < 'A' || c > 'Z') && (c < '2' || c > '7') {
			return false
		}
	}
	return true
}

// writeServiceError maps a derivation failure to 422 and anything else to 502.
func writeServiceError(w http.ResponseWriter, r *http.Request, msg, accountID string, err error) {
	var derr *domain.DerivationError
	switch {
	case errors.As(err, &derr):
		slog.Warn(msg, "account", accountID, "error", err)
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, context.Canceled) && r.Context().Err() != nil:
		slog.Debug("client went away", "account", accountID)
	default:
		slog.Error(msg, "account", accountID, "error", err)
		writeError(w, http.StatusBadGateway, "ledger data unavailable")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		slog.Warn("failed to write HTTP response body", "error", err)
		return
	}
	_, _ = w.Write([]byte("\n"))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
