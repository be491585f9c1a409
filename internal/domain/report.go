package domain

import "time"

// ReportCounts is the admin dashboard snapshot.
type ReportCounts struct {
	TotalUsers             int64     `json:"total_users"`
	ActiveAccounts         int64     `json:"active_accounts"`
	PendingAccounts        int64     `json:"pending_accounts"`
	ActiveCards            int64     `json:"active_cards"`
	PendingCards           int64     `json:"pending_cards"`
	TotalConsultations     int64     `json:"total_consultations"`
	CompletedConsultations int64     `json:"completed_consultations"`
	TotalTransactions      int64     `json:"total_transactions"`
	TotalActiveBalance     float64   `json:"total_active_balance"`
	GeneratedAt            time.Time `json:"generated_at"`
}
