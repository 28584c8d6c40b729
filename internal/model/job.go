package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Job is a billable unit of work under a contract, paid at most once.
// Paid is nullable in the store; NULL and false both mean unpaid.
type Job struct {
	ID          int64           `json:"id"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Paid        *bool           `json:"paid"`
	PaymentDate *time.Time      `json:"paymentDate"`
	ContractID  int64           `json:"contractId"`
}

func (j Job) IsPaid() bool {
	return j.Paid != nil && *j.Paid
}
