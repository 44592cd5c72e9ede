package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"kopilka/internal/core"
	"kopilka/internal/log"
)

type transactionRequest struct {
	Type       string      `json:"type"`
	Amount     json.Number `json:"amount"`
	CategoryID string      `json:"categoryId"`
	Date       string      `json:"date"`
	Note       string      `json:"note"`
}

type transactionPatchRequest struct {
	Type       *string      `json:"type"`
	Amount     *json.Number `json:"amount"`
	CategoryID *string      `json:"categoryId"`
	Date       *string      `json:"date"`
	Note       *string      `json:"note"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("view") == "filtered" {
		writeJSON(w, http.StatusOK, s.svc.FilteredTransactions())
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Transactions())
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	amount, err := core.ParseAmount(req.Amount.String())
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}

	tx, err := s.svc.AddTransaction(r.Context(), core.TransactionDraft{
		Type:       core.TxType(req.Type),
		Amount:     amount,
		CategoryID: req.CategoryID,
		Date:       req.Date,
		Note:       req.Note,
	})
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	slog.InfoContext(r.Context(), "Transaction created",
		log.FieldTxID, tx.ID,
		log.FieldCategoryID, tx.CategoryID,
		log.FieldAmountCents, tx.Amount.Cents)
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req transactionPatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var patch core.TransactionPatch
	if req.Type != nil {
		t := core.TxType(*req.Type)
		patch.Type = &t
	}
	if req.Amount != nil {
		amount, err := core.ParseAmount(req.Amount.String())
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid amount")
			return
		}
		patch.Amount = &amount
	}
	patch.CategoryID = req.CategoryID
	patch.Date = req.Date
	patch.Note = req.Note

	if err := s.svc.UpdateTransaction(r.Context(), id, patch); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveTransaction(w http.ResponseWriter, r *http.Request) {
	// Unknown ids are silent no-ops, so removal always succeeds.
	s.svc.RemoveTransaction(r.Context(), r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearTransactions(w http.ResponseWriter, r *http.Request) {
	s.svc.ClearTransactions(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

type categoryRequest struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Categories())
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cat, err := s.svc.AddCategory(r.Context(), core.CategoryDraft{
		Name:  req.Name,
		Type:  core.TxType(req.Type),
		Icon:  req.Icon,
		Color: req.Color,
	})
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, cat)
}

func (s *Server) handleRemoveCategory(w http.ResponseWriter, r *http.Request) {
	// Built-in and unknown ids are silent no-ops.
	s.svc.RemoveCategory(r.Context(), r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Budgets())
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Settings())
}

func (s *Server) handleSetCurrency(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Currency string `json:"currency"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.svc.SetCurrency(r.Context(), core.Currency(req.Currency)); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid currency")
		return
	}

	slog.InfoContext(r.Context(), "Currency changed", log.FieldCurrency, req.Currency)
	writeJSON(w, http.StatusOK, s.svc.Settings())
}

type filtersRequest struct {
	Type       string       `json:"type"`
	CategoryID string       `json:"categoryId"`
	Period     *core.Period `json:"period"`
}

func (s *Server) handleGetFilters(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.ActiveFilters())
}

func (s *Server) handleSetFilters(w http.ResponseWriter, r *http.Request) {
	var req filtersRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Type != "" && !core.TxType(req.Type).Valid() {
		writeError(w, http.StatusUnprocessableEntity, "invalid type")
		return
	}
	if req.Period != nil && !validPeriod(req.Period) {
		writeError(w, http.StatusUnprocessableEntity, "invalid period")
		return
	}

	s.svc.SetFilters(core.FilterOptions{
		Type:       core.TxType(req.Type),
		CategoryID: req.CategoryID,
		Period:     req.Period,
	})
	writeJSON(w, http.StatusOK, s.svc.ActiveFilters())
}

func (s *Server) handleClearFilters(w http.ResponseWriter, r *http.Request) {
	s.svc.ClearFilters()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetTypeFilter(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type string `json:"type"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Type != "" && !core.TxType(req.Type).Valid() {
		writeError(w, http.StatusUnprocessableEntity, "invalid type")
		return
	}

	s.svc.SetTypeFilter(core.TxType(req.Type))
	writeJSON(w, http.StatusOK, s.svc.ActiveFilters())
}

func (s *Server) handleSetCategoryFilter(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CategoryID string `json:"categoryId"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.svc.SetCategoryFilter(req.CategoryID)
	writeJSON(w, http.StatusOK, s.svc.ActiveFilters())
}

func (s *Server) handleSetPeriodFilter(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Period *core.Period `json:"period"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Period != nil && !validPeriod(req.Period) {
		writeError(w, http.StatusUnprocessableEntity, "invalid period")
		return
	}

	s.svc.SetPeriodFilter(req.Period)
	writeJSON(w, http.StatusOK, s.svc.ActiveFilters())
}

func validPeriod(p *core.Period) bool {
	if p.From != "" && !core.ValidDate(p.From) {
		return false
	}
	if p.To != "" && !core.ValidDate(p.To) {
		return false
	}
	return true
}

func (s *Server) handleTotals(w http.ResponseWriter, r *http.Request) {
	period, err := periodFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Totals(period))
}

func (s *Server) handleCategoryBreakdown(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	writeJSON(w, http.StatusOK, s.svc.CategoryBreakdown(limit))
}

func (s *Server) handleDailySeries(w http.ResponseWriter, r *http.Request) {
	trailing := 0
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid days")
			return
		}
		trailing = n
	}
	writeJSON(w, http.StatusOK, s.svc.DailySeries(trailing))
}

func (s *Server) handleExportCount(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int{"count": s.svc.Count()})
}
