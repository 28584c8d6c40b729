package model

import "github.com/shopspring/decimal"

type ProfileType string

const (
	ProfileTypeClient     ProfileType = "client"
	ProfileTypeContractor ProfileType = "contractor"
)

// Profile is a client or contractor account. Balance is mutated only inside
// payment and deposit transactions and never goes below zero.
type Profile struct {
	ID         int64           `json:"id"`
	FirstName  string          `json:"firstName"`
	LastName   string          `json:"lastName"`
	Profession string          `json:"profession"`
	Balance    decimal.Decimal `json:"balance"`
	Type       ProfileType     `json:"type"`
}

func (p Profile) FullName() string {
	return p.FirstName + " " + p.LastName
}
