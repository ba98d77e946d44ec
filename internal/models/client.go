package models

import "time"

// Client represents a borrower in a user's portfolio
type Client struct {
	ID     int64 `json:"id"`
	UserID int64 `json:"user_id"`

	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	DocumentType   string `json:"document_type"`
	DocumentNumber string `json:"document_number"`

	BirthDate string `json:"birth_date,omitempty"`
	Gender    string `json:"gender,omitempty"`

	PhonePrimary   string `json:"phone_primary"`
	PhoneSecondary string `json:"phone_secondary,omitempty"`
	Email          string `json:"email,omitempty"`

	AddressLine string `json:"address_line"`
	City        string `json:"city,omitempty"`
	Province    string `json:"province,omitempty"`
	Country     string `json:"country,omitempty"`

	Occupation    string  `json:"occupation,omitempty"`
	Workplace     string  `json:"workplace,omitempty"`
	MonthlyIncome float64 `json:"monthly_income,omitempty"`

	ReferenceName  string `json:"reference_name,omitempty"`
	ReferencePhone string `json:"reference_phone,omitempty"`

	CreditLimit float64 `json:"credit_limit"`
	Notes       string  `json:"notes,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	IsActive  bool       `json:"is_active"`
}
