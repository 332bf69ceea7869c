package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/mcclellann/fredMortgage/pkg/cache"
	"github.com/mcclellann/fredMortgage/pkg/models"
	"github.com/mcclellann/fredMortgage/pkg/observability"
	"github.com/mcclellann/fredMortgage/pkg/period"
	"github.com/mcclellann/fredMortgage/pkg/planner"
	"github.com/mcclellann/fredMortgage/pkg/store"
)

func setupTestServer(t *testing.T) *mux.Router {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test_api.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	server := NewServer(s, observability.Discard(), planner.WithCache(cache.NewMemoryCache(), 0))
	return server.routes()
}

func do(t *testing.T, router *mux.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func createMortgage(t *testing.T, router *mux.Router) models.Mortgage {
	t.Helper()
	mortgageReq := map[string]any{
		"name":          "twenty year",
		"variant":       "us",
		"period":        "monthly",
		"loan_amount":   150000,
		"interest_rate": 4.25,
		"term_months":   240,
		"start_date":    "2024-01-01",
	}
	rr := do(t, router, "POST", "/mortgages", mortgageReq)
	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d. Body: %s", rr.Code, rr.Body.String())
	}

	var created models.Mortgage
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("Failed to decode mortgage: %v", err)
	}
	return created
}

func TestAPI_CreateAndGetMortgage(t *testing.T) {
	router := setupTestServer(t)
	created := createMortgage(t, router)

	if created.Period != period.Monthly {
		t.Errorf("Expected period MONTHLY, got %s", created.Period)
	}
	if created.StartDate.String() != "2024-01-01" {
		t.Errorf("Expected start date 2024-01-01, got %s", created.StartDate)
	}

	rr := do(t, router, "GET", "/mortgages/"+created.ID.String(), nil)
	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}
	var fetched models.Mortgage
	json.Unmarshal(rr.Body.Bytes(), &fetched)
	if fetched.ID != created.ID {
		t.Errorf("Expected ID %s, got %s", created.ID, fetched.ID)
	}

	rr = do(t, router, "GET", "/mortgages", nil)
	var all []models.Mortgage
	json.Unmarshal(rr.Body.Bytes(), &all)
	if len(all) != 1 {
		t.Errorf("Expected 1 mortgage, got %d", len(all))
	}
}

func TestAPI_Schedule(t *testing.T) {
	router := setupTestServer(t)
	created := createMortgage(t, router)

	rr := do(t, router, "GET", "/mortgages/"+created.ID.String()+"/schedule", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Body: %s", rr.Code, rr.Body.String())
	}

	var schedule models.Schedule
	if err := json.Unmarshal(rr.Body.Bytes(), &schedule); err != nil {
		t.Fatalf("Failed to decode schedule: %v", err)
	}
	if len(schedule.Entries) != 240 {
		t.Errorf("Expected 240 entries, got %d", len(schedule.Entries))
	}
	if !schedule.Payment.Equal(decimal.RequireFromString("928.85")) {
		t.Errorf("Expected payment 928.85, got %s", schedule.Payment)
	}
	if !schedule.TotalInterest.Equal(decimal.RequireFromString("72924.41")) {
		t.Errorf("Expected total interest 72924.41, got %s", schedule.TotalInterest)
	}
	if !strings.Contains(rr.Body.String(), `"due_date":"2024-02-01"`) {
		t.Errorf("Expected first due date 2024-02-01 in body")
	}
}

func TestAPI_ExtraPayments(t *testing.T) {
	router := setupTestServer(t)
	created := createMortgage(t, router)
	base := "/mortgages/" + created.ID.String() + "/extra-payments"

	rr := do(t, router, "PUT", base, map[string]any{
		"payments": []map[string]any{
			{"due_date": "2024-03-01", "amount": 1000},
			{"due_date": "2024-05-01", "amount": "250.10"},
		},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Body: %s", rr.Code, rr.Body.String())
	}

	rr = do(t, router, "POST", base, map[string]any{
		"payments": []map[string]any{{"due_date": "2024-05-01", "amount": 100}},
	})
	var payments []models.ExtraPayment
	json.Unmarshal(rr.Body.Bytes(), &payments)
	if len(payments) != 2 || !payments[1].Amount.Equal(decimal.RequireFromString("350.1")) {
		t.Errorf("Expected 350.1 on 2024-05-01, got %v", payments)
	}

	rr = do(t, router, "POST", base, map[string]any{
		"payments": []map[string]any{{"due_date": "2024-03-02", "amount": 100}},
	})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected status 422 for a date off the calendar, got %d", rr.Code)
	}

	rr = do(t, router, "POST", base+"/remove", map[string]any{"dates": []string{"2024-03-01"}})
	json.Unmarshal(rr.Body.Bytes(), &payments)
	if rr.Code != http.StatusOK || len(payments) != 1 {
		t.Errorf("Expected one payment left, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = do(t, router, "POST", base+"/definitions", map[string]any{
		"period": "weekly", "first_date": "2024-02-01", "count": 4, "amount": 50,
	})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected status 422 for an incompatible period, got %d", rr.Code)
	}

	rr = do(t, router, "POST", base+"/definitions", map[string]any{
		"period": "yearly", "first_date": "2025-02-01", "count": 5, "amount": 5000, "mode": "add",
	})
	json.Unmarshal(rr.Body.Bytes(), &payments)
	if rr.Code != http.StatusOK || len(payments) != 6 {
		t.Errorf("Expected 6 payments after the yearly definition, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = do(t, router, "DELETE", base, nil)
	if rr.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rr.Code)
	}
	rr = do(t, router, "DELETE", base, nil)
	if rr.Code != http.StatusConflict {
		t.Errorf("Expected status 409 clearing an empty set, got %d", rr.Code)
	}

	rr = do(t, router, "GET", base, nil)
	if rr.Code != http.StatusOK || strings.TrimSpace(rr.Body.String()) != "[]" {
		t.Errorf("Expected empty list, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestAPI_Errors(t *testing.T) {
	router := setupTestServer(t)
	created := createMortgage(t, router)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"bad id", "GET", "/mortgages/not-a-uuid", nil, http.StatusBadRequest},
		{"unknown id", "GET", "/mortgages/00000000-0000-0000-0000-000000000001", nil, http.StatusNotFound},
		{"unknown period", "POST", "/mortgages", map[string]any{"period": "daily"}, http.StatusBadRequest},
		{"invalid terms", "POST", "/mortgages", map[string]any{"variant": "us", "period": "yearly", "loan_amount": 1, "term_months": 1, "start_date": "2024-01-01"}, http.StatusBadRequest},
		{"bad date", "PUT", "/mortgages/" + created.ID.String() + "/extra-payments", map[string]any{"payments": []map[string]any{{"due_date": "03/01/2024", "amount": 1}}}, http.StatusBadRequest},
		{"remove from empty", "POST", "/mortgages/" + created.ID.String() + "/extra-payments/remove", map[string]any{"dates": []string{"2024-03-01"}}, http.StatusConflict},
		{"bad definition mode", "POST", "/mortgages/" + created.ID.String() + "/extra-payments/definitions", map[string]any{"mode": "merge"}, http.StatusBadRequest},
		{"delete unknown", "DELETE", "/mortgages/00000000-0000-0000-0000-000000000001", nil, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, router, tt.method, tt.path, tt.body)
			if rr.Code != tt.want {
				t.Errorf("Expected status %d, got %d. Body: %s", tt.want, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestAPI_UpdateAndDelete(t *testing.T) {
	router := setupTestServer(t)
	created := createMortgage(t, router)
	path := "/mortgages/" + created.ID.String()

	rr := do(t, router, "PUT", path, map[string]any{
		"name": "canadian", "variant": "canadian", "period": "rapid_biweekly",
		"loan_amount": 150000, "interest_rate": 5.5, "term_months": 240, "start_date": "2024-01-01",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Body: %s", rr.Code, rr.Body.String())
	}

	rr = do(t, router, "GET", path+"/schedule", nil)
	var schedule models.Schedule
	json.Unmarshal(rr.Body.Bytes(), &schedule)
	if !schedule.Payment.Equal(decimal.RequireFromString("513.29")) {
		t.Errorf("Expected payment 513.29, got %s", schedule.Payment)
	}
	if !schedule.PaidOff {
		t.Errorf("Expected schedule to pay off")
	}

	rr = do(t, router, "DELETE", path, nil)
	if rr.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rr.Code)
	}
	rr = do(t, router, "GET", path, nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rr.Code)
	}
}

func TestAPI_QuoteAndMetrics(t *testing.T) {
	router := setupTestServer(t)

	rr := do(t, router, "POST", "/quote", map[string]any{
		"variant": "us", "period": "biweekly", "loan_amount": 200000, "interest_rate": 4.5, "term_months": 360,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Body: %s", rr.Code, rr.Body.String())
	}
	var quote models.Quote
	json.Unmarshal(rr.Body.Bytes(), &quote)
	if !quote.Payment.Equal(decimal.RequireFromString("467.71")) {
		t.Errorf("Expected payment 467.71, got %s", quote.Payment)
	}

	rr = do(t, router, "GET", "/metrics", nil)
	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "fredmortgage_http_requests_total") {
		t.Errorf("Expected request counter in metrics output")
	}
}
