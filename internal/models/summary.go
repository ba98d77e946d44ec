package models

// PortfolioSummary represents dashboard aggregates over a user's portfolio
type PortfolioSummary struct {
	TotalDebt      float64 `json:"total_debt"`
	TotalCollected float64 `json:"total_collected"`
	TotalPending   float64 `json:"total_pending"`

	ActiveLoans        int `json:"active_loans"`
	ClientsEnMora      int `json:"clients_en_mora"`
	ClientsProximoMora int `json:"clients_proximo_mora"`

	InterestEarnings float64 `json:"interest_earnings"`
	LateFeeEarnings  float64 `json:"late_fee_earnings"`
}
