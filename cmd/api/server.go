package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/mcclellann/fredMortgage/pkg/models"
	"github.com/mcclellann/fredMortgage/pkg/observability"
	"github.com/mcclellann/fredMortgage/pkg/planner"
	"github.com/mcclellann/fredMortgage/pkg/store"
)

// Server holds the planner instance.
type Server struct {
	planner *planner.Planner
	storage store.Storage // Keep a reference to the storage to close it
	logger  *slog.Logger
}

func NewServer(s store.Storage, logger *slog.Logger, opts ...planner.Option) *Server {
	opts = append([]planner.Option{planner.WithLogger(logger)}, opts...)
	return &Server{
		planner: planner.NewPlanner(s, opts...),
		storage: s,
		logger:  logger,
	}
}

// routes builds the router with every endpoint and the request middleware.
func (s *Server) routes() *mux.Router {
	router := mux.NewRouter()
	router.Use(observability.HTTPMiddleware(s.logger))

	router.HandleFunc("/mortgages", s.listMortgagesHandler).Methods("GET")
	router.HandleFunc("/mortgages", s.createMortgageHandler).Methods("POST")
	router.HandleFunc("/mortgages/{id}", s.getMortgageHandler).Methods("GET")
	router.HandleFunc("/mortgages/{id}", s.updateMortgageHandler).Methods("PUT")
	router.HandleFunc("/mortgages/{id}", s.deleteMortgageHandler).Methods("DELETE")
	router.HandleFunc("/mortgages/{id}/schedule", s.scheduleHandler).Methods("GET")

	router.HandleFunc("/mortgages/{id}/extra-payments", s.listExtraPaymentsHandler).Methods("GET")
	router.HandleFunc("/mortgages/{id}/extra-payments", s.setExtraPaymentsHandler).Methods("PUT")
	router.HandleFunc("/mortgages/{id}/extra-payments", s.addExtraPaymentsHandler).Methods("POST")
	router.HandleFunc("/mortgages/{id}/extra-payments", s.clearExtraPaymentsHandler).Methods("DELETE")
	router.HandleFunc("/mortgages/{id}/extra-payments/remove", s.removeExtraPaymentsHandler).Methods("POST")
	router.HandleFunc("/mortgages/{id}/extra-payments/definitions", s.applyDefinitionHandler).Methods("POST")

	router.HandleFunc("/quote", s.quoteHandler).Methods("POST")
	router.Handle("/metrics", observability.MetricsHandler()).Methods("GET")

	return router
}

func (s *Server) createMortgageHandler(w http.ResponseWriter, r *http.Request) {
	var req planner.MortgageInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	m, err := s.planner.CreateMortgage(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) getMortgageHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := mortgageID(w, r)
	if !ok {
		return
	}

	m, err := s.planner.GetMortgage(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, m)
}

func (s *Server) listMortgagesHandler(w http.ResponseWriter, r *http.Request) {
	mortgages, err := s.planner.GetAllMortgages(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if mortgages == nil {
		mortgages = []*models.Mortgage{}
	}

	writeJSON(w, http.StatusOK, mortgages)
}

func (s *Server) updateMortgageHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := mortgageID(w, r)
	if !ok {
		return
	}

	var req planner.MortgageInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	m, err := s.planner.UpdateMortgage(r.Context(), id, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, m)
}

func (s *Server) deleteMortgageHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := mortgageID(w, r)
	if !ok {
		return
	}

	if err := s.planner.DeleteMortgage(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) scheduleHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := mortgageID(w, r)
	if !ok {
		return
	}

	schedule, err := s.planner.Schedule(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, schedule)
}

func (s *Server) listExtraPaymentsHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := mortgageID(w, r)
	if !ok {
		return
	}

	payments, err := s.planner.GetExtraPayments(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writePayments(w, payments)
}

type extraPaymentsRequest struct {
	Payments []models.ExtraPayment `json:"payments"`
}

func (s *Server) setExtraPaymentsHandler(w http.ResponseWriter, r *http.Request) {
	s.mergeExtraPayments(w, r, s.planner.SetExtraPayments)
}

func (s *Server) addExtraPaymentsHandler(w http.ResponseWriter, r *http.Request) {
	s.mergeExtraPayments(w, r, s.planner.AddExtraPayments)
}

func (s *Server) mergeExtraPayments(w http.ResponseWriter, r *http.Request, merge func(context.Context, uuid.UUID, []models.ExtraPayment) ([]*models.ExtraPayment, error)) {
	id, ok := mortgageID(w, r)
	if !ok {
		return
	}

	var req extraPaymentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	payments, err := merge(r.Context(), id, req.Payments)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writePayments(w, payments)
}

func (s *Server) clearExtraPaymentsHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := mortgageID(w, r)
	if !ok {
		return
	}

	if err := s.planner.ClearExtraPayments(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) removeExtraPaymentsHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := mortgageID(w, r)
	if !ok {
		return
	}

	var req struct {
		Dates []models.Date `json:"dates"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	dates := make([]time.Time, 0, len(req.Dates))
	for _, d := range req.Dates {
		dates = append(dates, d.Time)
	}

	payments, err := s.planner.RemoveExtraPayments(r.Context(), id, dates)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writePayments(w, payments)
}

func (s *Server) applyDefinitionHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := mortgageID(w, r)
	if !ok {
		return
	}

	var req struct {
		planner.DefinitionInput
		Mode string `json:"mode"` // "set" (default) or "add"
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var add bool
	switch req.Mode {
	case "", "set":
	case "add":
		add = true
	default:
		http.Error(w, "mode must be \"set\" or \"add\"", http.StatusBadRequest)
		return
	}

	payments, err := s.planner.ApplyDefinition(r.Context(), id, req.DefinitionInput, add)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writePayments(w, payments)
}

func (s *Server) quoteHandler(w http.ResponseWriter, r *http.Request) {
	var req planner.MortgageInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	quote, err := s.planner.Quote(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, quote)
}

// statusFor maps planner error kinds onto HTTP status codes.
func statusFor(err error) int {
	switch planner.Kind(err) {
	case "not_found":
		return http.StatusNotFound
	case "invalid_parameter":
		return http.StatusBadRequest
	case "incompatible_period", "unknown_date":
		return http.StatusUnprocessableEntity
	case "empty_operation":
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	http.Error(w, err.Error(), status)
}

func mortgageID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid mortgage ID", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func writePayments(w http.ResponseWriter, payments []*models.ExtraPayment) {
	if payments == nil {
		payments = []*models.ExtraPayment{}
	}
	writeJSON(w, http.StatusOK, payments)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
