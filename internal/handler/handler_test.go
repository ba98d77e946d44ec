package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andresmejia/loantrack/internal/config"
	"github.com/andresmejia/loantrack/internal/middleware"
	"github.com/andresmejia/loantrack/internal/repository"
	"github.com/andresmejia/loantrack/internal/service"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

func newTestRouter() *mux.Router {
	store := repository.NewMemStore()
	log := logrus.New()
	log.SetOutput(io.Discard)
	cfg := &config.Config{JWTSecret: "test-secret"}
	h := NewHandler(service.NewService(store, nil, log, cfg))

	r := mux.NewRouter()
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")

	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg))
	authRouter.HandleFunc("/clients", h.CreateClient).Methods("POST")
	authRouter.HandleFunc("/clients", h.ListClients).Methods("GET")
	authRouter.HandleFunc("/clients/{id}", h.GetClient).Methods("GET")
	authRouter.HandleFunc("/clients/{id}", h.UpdateClient).Methods("PUT")
	authRouter.HandleFunc("/clients/{id}", h.DeactivateClient).Methods("DELETE")
	authRouter.HandleFunc("/loans", h.CreateLoan).Methods("POST")
	authRouter.HandleFunc("/loans/{id}", h.GetLoan).Methods("GET")
	authRouter.HandleFunc("/loans/{id}/schedule", h.GetSchedule).Methods("GET")
	authRouter.HandleFunc("/loans/{id}/statement", h.GetStatement).Methods("GET")
	authRouter.HandleFunc("/loans/{id}/close", h.CloseLoan).Methods("POST")
	authRouter.HandleFunc("/loans/{id}/payments", h.CreatePayment).Methods("POST")
	authRouter.HandleFunc("/summary", h.GetSummary).Methods("GET")
	return r
}

func doJSON(router *mux.Router, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func registerAndLogin(t *testing.T, router *mux.Router) string {
	t.Helper()
	rec := doJSON(router, "POST", "/register", "", map[string]string{
		"full_name": "Andres Mejia",
		"email":     "andres@example.com",
		"password":  "secret123",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(router, "POST", "/login", "", map[string]string{
		"email":    "andres@example.com",
		"password": "secret123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding login response: %v", err)
	}
	if resp["token"] == "" {
		t.Fatal("expected a token")
	}
	return resp["token"]
}

func createClientAndLoan(t *testing.T, router *mux.Router, token string) (clientID, loanID int64) {
	t.Helper()
	rec := doJSON(router, "POST", "/clients", token, map[string]string{
		"first_name":      "Maria",
		"last_name":       "Gomez",
		"document_type":   "cedula",
		"document_number": "001-1234567-8",
		"phone_primary":   "555-0200",
		"address_line":    "Calle Duarte 12",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create client status = %d, body %s", rec.Code, rec.Body.String())
	}
	var client struct {
		ID int64 `json:"id"`
	}
	json.Unmarshal(rec.Body.Bytes(), &client)

	start := time.Now().UTC().Truncate(24 * time.Hour)
	rec = doJSON(router, "POST", "/loans", token, map[string]interface{}{
		"client_id":        client.ID,
		"principal_amount": 10000,
		"interest_rate":    5,
		"late_fee_type":    "percentage",
		"late_fee_value":   2,
		"start_date":       start,
		"due_date":         start.AddDate(0, 10, 0),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create loan status = %d, body %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Loan struct {
			ID int64 `json:"id"`
		} `json:"loan"`
		Schedule []struct {
			Number int `json:"installment_number"`
		} `json:"schedule"`
	}
	json.Unmarshal(rec.Body.Bytes(), &created)
	if len(created.Schedule) != 10 {
		t.Fatalf("schedule preview has %d installments, want 10", len(created.Schedule))
	}
	return client.ID, created.Loan.ID
}

func TestRegisterHidesCredentialHashes(t *testing.T) {
	router := newTestRouter()
	rec := doJSON(router, "POST", "/register", "", map[string]string{
		"full_name": "Andres Mejia",
		"email":     "andres@example.com",
		"password":  "secret123",
		"pin":       "1234",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if strings.Contains(body, "password_hash") || strings.Contains(body, "secret123") {
		t.Errorf("response leaks credentials: %s", body)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	router := newTestRouter()
	registerAndLogin(t, router)

	rec := doJSON(router, "POST", "/login", "", map[string]string{
		"email":    "andres@example.com",
		"password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(router, "GET", "/clients", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", rec.Code)
	}

	rec = doJSON(router, "GET", "/clients", "not-a-jwt", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("garbage token: status = %d, want 401", rec.Code)
	}
}

func TestClientLoanPaymentFlow(t *testing.T) {
	router := newTestRouter()
	token := registerAndLogin(t, router)
	clientID, loanID := createClientAndLoan(t, router, token)

	rec := doJSON(router, "POST", fmt.Sprintf("/loans/%d/payments", loanID), token, map[string]interface{}{
		"amount":           3000,
		"capital_portion":  2500,
		"interest_portion": 500,
		"payment_method":   "cash",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("payment status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(router, "GET", fmt.Sprintf("/loans/%d", loanID), token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get loan status = %d, body %s", rec.Code, rec.Body.String())
	}
	var detail struct {
		Loan struct {
			TotalPaid float64 `json:"total_paid"`
		} `json:"loan"`
		Standing struct {
			PendingDebt float64 `json:"pending_debt"`
			Status      string  `json:"status"`
		} `json:"standing"`
	}
	json.Unmarshal(rec.Body.Bytes(), &detail)
	if detail.Loan.TotalPaid != 3000 {
		t.Errorf("total paid = %f, want 3000", detail.Loan.TotalPaid)
	}
	if detail.Standing.PendingDebt != 7000 {
		t.Errorf("pending debt = %f, want 7000", detail.Standing.PendingDebt)
	}

	rec = doJSON(router, "GET", fmt.Sprintf("/clients/%d", clientID), token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get client status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(router, "GET", "/summary", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("summary status = %d, body %s", rec.Code, rec.Body.String())
	}
	var summary struct {
		TotalCollected float64 `json:"total_collected"`
		ActiveLoans    int     `json:"active_loans"`
	}
	json.Unmarshal(rec.Body.Bytes(), &summary)
	if summary.TotalCollected != 3000 {
		t.Errorf("total collected = %f, want 3000", summary.TotalCollected)
	}
	if summary.ActiveLoans != 1 {
		t.Errorf("active loans = %d, want 1", summary.ActiveLoans)
	}
}

func TestScheduleAndStatementEndpoints(t *testing.T) {
	router := newTestRouter()
	token := registerAndLogin(t, router)
	_, loanID := createClientAndLoan(t, router, token)

	rec := doJSON(router, "GET", fmt.Sprintf("/loans/%d/schedule", loanID), token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("schedule status = %d, body %s", rec.Code, rec.Body.String())
	}
	var schedule []struct {
		Number          int     `json:"installment_number"`
		ScheduledAmount float64 `json:"scheduled_amount"`
	}
	json.Unmarshal(rec.Body.Bytes(), &schedule)
	if len(schedule) != 10 {
		t.Errorf("schedule has %d installments, want 10", len(schedule))
	}

	rec = doJSON(router, "GET", fmt.Sprintf("/loans/%d/statement", loanID), token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("statement status = %d, body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/xml" {
		t.Errorf("content type = %q, want application/xml", ct)
	}
	if !strings.Contains(rec.Body.String(), "loan_statement") {
		t.Errorf("statement body missing root element: %s", rec.Body.String())
	}
}

func TestCloseLoanAndDeactivateClient(t *testing.T) {
	router := newTestRouter()
	token := registerAndLogin(t, router)
	clientID, loanID := createClientAndLoan(t, router, token)

	rec := doJSON(router, "DELETE", fmt.Sprintf("/clients/%d", clientID), token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("deactivate with active loan: status = %d, want 400", rec.Code)
	}

	rec = doJSON(router, "POST", fmt.Sprintf("/loans/%d/close", loanID), token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("close status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(router, "POST", fmt.Sprintf("/loans/%d/close", loanID), token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("double close: status = %d, want 400", rec.Code)
	}

	rec = doJSON(router, "DELETE", fmt.Sprintf("/clients/%d", clientID), token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("deactivate status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestResourceOwnershipAndMissingIDs(t *testing.T) {
	router := newTestRouter()
	token := registerAndLogin(t, router)

	rec := doJSON(router, "GET", "/loans/999", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing loan: status = %d, want 404", rec.Code)
	}

	rec = doJSON(router, "GET", "/clients/999", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing client: status = %d, want 404", rec.Code)
	}

	// A second user must not see the first user's resources
	clientID, loanID := createClientAndLoan(t, router, token)

	rec = doJSON(router, "POST", "/register", "", map[string]string{
		"full_name": "Other User",
		"email":     "other@example.com",
		"password":  "secret123",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("second register status = %d", rec.Code)
	}
	rec = doJSON(router, "POST", "/login", "", map[string]string{
		"email":    "other@example.com",
		"password": "secret123",
	})
	var resp map[string]string
	json.Unmarshal(rec.Body.Bytes(), &resp)
	otherToken := resp["token"]

	rec = doJSON(router, "GET", fmt.Sprintf("/loans/%d", loanID), otherToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("foreign loan: status = %d, want 403", rec.Code)
	}
	rec = doJSON(router, "GET", fmt.Sprintf("/clients/%d", clientID), otherToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("foreign client: status = %d, want 403", rec.Code)
	}
}
