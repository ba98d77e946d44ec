package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/andresmejia/loantrack/internal/middleware"
	"github.com/andresmejia/loantrack/internal/models"
	"github.com/andresmejia/loantrack/internal/service"
	"github.com/gorilla/mux"
)

type Handler struct {
	svc *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

type registerRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Pin      string `json:"pin"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateClientRequest struct {
	PhonePrimary string `json:"phone_primary"`
	AddressLine  string `json:"address_line"`
}

// Register handles user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.svc.Register(req.FullName, req.Email, req.Phone, req.Password, req.Pin)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.svc.Login(req.Email, req.Password)
	if err != nil {
		respondError(w, http.StatusUnauthorized, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"token": token})
}

// CreateClient handles client registration
func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	userID, ok := authUserID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "user ID not found in context")
		return
	}

	var client models.Client
	if err := json.NewDecoder(r.Body).Decode(&client); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	client.UserID = userID

	created, err := h.svc.CreateClient(&client)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// ListClients returns the user's clients with evaluated debt standings
func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	userID, ok := authUserID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "user ID not found in context")
		return
	}

	overviews, err := h.svc.ListClients(userID, time.Now())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, overviews)
}

// GetClient returns a client with its rollup standing and loans
func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	userID, ok := authUserID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "user ID not found in context")
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid client ID")
		return
	}

	detail, err := h.svc.GetClient(id, userID, time.Now())
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, detail)
}

// UpdateClient updates a client's contact fields
func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	userID, ok := authUserID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "user ID not found in context")
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid client ID")
		return
	}

	var req updateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.svc.UpdateClientContact(id, userID, req.PhonePrimary, req.AddressLine); err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// DeactivateClient soft-deletes a client
func (h *Handler) DeactivateClient(w http.ResponseWriter, r *http.Request) {
	userID, ok := authUserID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "user ID not found in context")
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid client ID")
		return
	}

	if err := h.svc.DeactivateClient(id, userID); err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

// CreateLoan handles loan creation and returns the schedule preview
func (h *Handler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	userID, ok := authUserID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "user ID not found in context")
		return
	}

	var loan models.Loan
	if err := json.NewDecoder(r.Body).Decode(&loan); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	loan.UserID = userID

	created, schedule, err := h.svc.CreateLoan(&loan)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"loan":     created,
		"schedule": schedule,
	})
}

// GetLoan returns a loan with its standing and payment history
func (h *Handler) GetLoan(w http.ResponseWriter, r *http.Request) {
	userID, ok := authUserID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "user ID not found in context")
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid loan ID")
		return
	}

	detail, err := h.svc.GetLoan(id, userID, time.Now())
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, detail)
}

// GetSchedule returns the amortization schedule for a loan
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	userID, ok := authUserID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "user ID not found in context")
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid loan ID")
		return
	}

	schedule, err := h.svc.Schedule(id, userID)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, schedule)
}

// GetStatement returns the XML statement for a loan
func (h *Handler) GetStatement(w http.ResponseWriter, r *http.Request) {
	userID, ok := authUserID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "user ID not found in context")
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid loan ID")
		return
	}

	statement, err := h.svc.Statement(id, userID, time.Now())
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	w.Write(statement)
}

// CloseLoan transitions a loan to closed
func (h *Handler) CloseLoan(w http.ResponseWriter, r *http.Request) {
	userID, ok := authUserID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "user ID not found in context")
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid loan ID")
		return
	}

	if err := h.svc.CloseLoan(id, userID); err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "closed"})
}

// CreatePayment records an abono against a loan
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	userID, ok := authUserID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "user ID not found in context")
		return
	}
	loanID, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid loan ID")
		return
	}

	var payment models.Payment
	if err := json.NewDecoder(r.Body).Decode(&payment); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	payment.LoanID = loanID
	payment.UserID = userID

	created, err := h.svc.RecordPayment(&payment)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// GetSummary returns the portfolio dashboard aggregates
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := authUserID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "user ID not found in context")
		return
	}

	summary, err := h.svc.Summary(userID, time.Now())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func authUserID(r *http.Request) (int64, bool) {
	idStr, ok := middleware.UserID(r.Context())
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

func statusFor(err error) int {
	if strings.Contains(err.Error(), "not found") {
		return http.StatusNotFound
	}
	if strings.Contains(err.Error(), "does not belong") {
		return http.StatusForbidden
	}
	return http.StatusBadRequest
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
