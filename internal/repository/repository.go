package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nurpe/contracts-billing/internal/model"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// Store captures the ledger reads and the transactional entry point used by
// the services.
type Store interface {
	ProfileByID(ctx context.Context, id int64) (*model.Profile, error)
	ContractForParty(ctx context.Context, contractID, partyID int64) (*model.Contract, error)
	ActiveContracts(ctx context.Context, partyID int64) ([]model.Contract, error)
	UnpaidJobs(ctx context.Context, partyID int64) ([]model.Job, error)
	JobByID(ctx context.Context, id int64) (*model.Job, error)
	ProfessionEarnings(ctx context.Context, start, end time.Time) ([]model.ProfessionEarnings, error)
	TopClients(ctx context.Context, start, end time.Time, limit int) ([]model.ClientEarnings, error)

	// Transact runs fn inside a single database transaction. fn returning an
	// error rolls everything back; otherwise the transaction commits.
	Transact(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the view of the store inside a transaction. The ForUpdate reads take
// row locks so concurrent payments and deposits on the same rows serialize.
type Tx interface {
	JobForUpdate(jobID int64) (*model.Job, error)
	ContractByID(contractID int64) (*model.Contract, error)
	ProfileForUpdate(profileID int64) (*model.Profile, error)
	MarkJobPaid(jobID int64, paidAt time.Time) error
	SetBalance(profileID int64, balance decimal.Decimal) error
	UnpaidTotalForClient(clientID int64) (decimal.Decimal, error)
}
