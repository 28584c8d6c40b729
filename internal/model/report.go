package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProfessionEarnings is one aggregation row: total paid job volume earned by
// contractors of a profession within a reporting window.
type ProfessionEarnings struct {
	Profession string          `json:"profession"`
	Total      decimal.Decimal `json:"total"`
}

// ClientEarnings is one aggregation row: total amount a client paid within a
// reporting window.
type ClientEarnings struct {
	ID       int64           `json:"id"`
	FullName string          `json:"fullName"`
	Paid     decimal.Decimal `json:"paid"`
}

// EarningsReport feeds the xlsx export.
type EarningsReport struct {
	PeriodStart time.Time
	PeriodEnd   time.Time
	Rows        []ProfessionEarnings
}

// PaymentReceipt feeds the pdf receipt for a paid job.
type PaymentReceipt struct {
	Job        Job
	Contract   Contract
	Client     Profile
	Contractor Profile
}
