package http

import (
	"encoding/json"
	"net/http"

	"budget/internal/commands"
	"budget/internal/render"
)

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleDashboard returns the reconciled render model, rolling the period
// forward first if the calendar moved while the app was idle.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	model := s.app.Refresh(r.Context())
	writeJSON(w, http.StatusOK, model)
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Value json.RawMessage `json:"value"`
	}
	if !readJSON(w, r, &body) {
		return
	}

	model := s.app.SetBudget(r.Context(), numberString(body.Value))
	writeModel(w, model, http.StatusOK)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Amount      json.RawMessage `json:"amount"`
		Category    string          `json:"category"`
		Description string          `json:"description"`
		Date        string          `json:"date"`
	}
	if !readJSON(w, r, &body) {
		return
	}

	model := s.app.AddExpense(r.Context(), commands.AddExpenseInput{
		Amount:      numberString(body.Amount),
		Category:    sanitizeInput(body.Category),
		Description: sanitizeInput(body.Description),
		Date:        sanitizeInput(body.Date),
	})
	if model.FormError == "" {
		w.Header().Add(triggerHeader, TriggerExpenseCreated)
		w.Header().Add(triggerHeader, TriggerFormReset)
	}
	writeModel(w, model, http.StatusCreated)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	model := s.app.DeleteExpense(r.Context(), r.PathValue("id"))
	writeModel(w, model, http.StatusOK)
}

// handleClearExpenses drops every expense. The confirmation flag attests
// that the presentation layer already asked the user.
func (s *Server) handleClearExpenses(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Confirmed bool `json:"confirmed"`
	}
	if !readJSON(w, r, &body) {
		return
	}

	model := s.app.ClearAll(r.Context(), body.Confirmed)
	writeModel(w, model, http.StatusOK)
}

func (s *Server) handleChangeFilter(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Category string `json:"category"`
	}
	if !readJSON(w, r, &body) {
		return
	}

	model := s.app.ChangeFilter(r.Context(), sanitizeInput(body.Category))
	writeModel(w, model, http.StatusOK)
}

func (s *Server) handleDismissWarning(w http.ResponseWriter, r *http.Request) {
	model := s.app.DismissWarning(r.Context())
	writeModel(w, model, http.StatusOK)
}

// handleClock serves the live-clock display. Pure presentation; it never
// reads or writes application state.
func (s *Server) handleClock(w http.ResponseWriter, r *http.Request) {
	now := s.clock.Now()
	writeJSON(w, http.StatusOK, map[string]string{
		"clockText": now.Format("Monday, January 2, 2006 3:04:05 PM"),
	})
}

// writeModel sends the render model, downgrading the status to 422 when
// the command was rejected with a form error.
func writeModel(w http.ResponseWriter, model render.Model, okStatus int) {
	status := okStatus
	if model.FormError != "" {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, model)
}
