package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nurpe/contracts-billing/internal/model"
)

type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

var _ Store = (*LedgerRepository)(nil)

func (r *LedgerRepository) ProfileByID(ctx context.Context, id int64) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, first_name, last_name, profession, balance, type
		FROM profiles
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&profile).Error
	if err != nil {
		return nil, err
	}
	if profile.ID == 0 {
		return nil, ErrNotFound
	}
	return &profile, nil
}

func (r *LedgerRepository) ContractForParty(ctx context.Context, contractID, partyID int64) (*model.Contract, error) {
	var contract model.Contract
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, terms, status, client_id, contractor_id
		FROM contracts
		WHERE id = ?
			AND (client_id = ? OR contractor_id = ?)
		LIMIT 1
	`, contractID, partyID, partyID).Scan(&contract).Error
	if err != nil {
		return nil, err
	}
	if contract.ID == 0 {
		return nil, ErrNotFound
	}
	return &contract, nil
}

func (r *LedgerRepository) ActiveContracts(ctx context.Context, partyID int64) ([]model.Contract, error) {
	var contracts []model.Contract
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, terms, status, client_id, contractor_id
		FROM contracts
		WHERE status <> 'terminated'
			AND (client_id = ? OR contractor_id = ?)
		ORDER BY id ASC
	`, partyID, partyID).Scan(&contracts).Error
	if err != nil {
		return nil, err
	}
	return contracts, nil
}

func (r *LedgerRepository) UnpaidJobs(ctx context.Context, partyID int64) ([]model.Job, error) {
	var jobs []model.Job
	err := r.db.WithContext(ctx).Raw(`
		SELECT j.id, j.description, j.price, j.paid, j.payment_date, j.contract_id
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		WHERE (j.paid IS NULL OR j.paid = FALSE)
			AND c.status <> 'terminated'
			AND (c.client_id = ? OR c.contractor_id = ?)
		ORDER BY j.id ASC
	`, partyID, partyID).Scan(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *LedgerRepository) JobByID(ctx context.Context, id int64) (*model.Job, error) {
	var job model.Job
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, description, price, paid, payment_date, contract_id
		FROM jobs
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&job).Error
	if err != nil {
		return nil, err
	}
	if job.ID == 0 {
		return nil, ErrNotFound
	}
	return &job, nil
}

// ProfessionEarnings aggregates paid job volume per contractor profession
// within the inclusive window, highest total first, ties broken by name.
func (r *LedgerRepository) ProfessionEarnings(ctx context.Context, start, end time.Time) ([]model.ProfessionEarnings, error) {
	var rows []model.ProfessionEarnings
	err := r.db.WithContext(ctx).Raw(`
		SELECT p.profession, SUM(j.price) AS total
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		JOIN profiles p ON p.id = c.contractor_id
		WHERE j.paid = TRUE
			AND j.payment_date >= ?
			AND j.payment_date <= ?
		GROUP BY p.profession
		ORDER BY total DESC, p.profession ASC
	`, start, end).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *LedgerRepository) TopClients(ctx context.Context, start, end time.Time, limit int) ([]model.ClientEarnings, error) {
	var rows []model.ClientEarnings
	err := r.db.WithContext(ctx).Raw(`
		SELECT p.id, p.first_name || ' ' || p.last_name AS full_name, SUM(j.price) AS paid
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		JOIN profiles p ON p.id = c.client_id
		WHERE j.paid = TRUE
			AND j.payment_date >= ?
			AND j.payment_date <= ?
		GROUP BY p.id, full_name
		ORDER BY paid DESC, p.id ASC
		LIMIT ?
	`, start, end, limit).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *LedgerRepository) Transact(ctx context.Context, fn func(tx Tx) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ledgerTx{db: tx})
	})
}

type ledgerTx struct {
	db *gorm.DB
}

var _ Tx = (*ledgerTx)(nil)

func (t *ledgerTx) JobForUpdate(jobID int64) (*model.Job, error) {
	var job model.Job
	err := t.db.Raw(`
		SELECT id, description, price, paid, payment_date, contract_id
		FROM jobs
		WHERE id = ?
		LIMIT 1
		FOR UPDATE
	`, jobID).Scan(&job).Error
	if err != nil {
		return nil, err
	}
	if job.ID == 0 {
		return nil, ErrNotFound
	}
	return &job, nil
}

func (t *ledgerTx) ContractByID(contractID int64) (*model.Contract, error) {
	var contract model.Contract
	err := t.db.Raw(`
		SELECT id, terms, status, client_id, contractor_id
		FROM contracts
		WHERE id = ?
		LIMIT 1
	`, contractID).Scan(&contract).Error
	if err != nil {
		return nil, err
	}
	if contract.ID == 0 {
		return nil, ErrNotFound
	}
	return &contract, nil
}

func (t *ledgerTx) ProfileForUpdate(profileID int64) (*model.Profile, error) {
	var profile model.Profile
	err := t.db.Raw(`
		SELECT id, first_name, last_name, profession, balance, type
		FROM profiles
		WHERE id = ?
		LIMIT 1
		FOR UPDATE
	`, profileID).Scan(&profile).Error
	if err != nil {
		return nil, err
	}
	if profile.ID == 0 {
		return nil, ErrNotFound
	}
	return &profile, nil
}

func (t *ledgerTx) MarkJobPaid(jobID int64, paidAt time.Time) error {
	return t.db.Exec(`
		UPDATE jobs
		SET paid = TRUE, payment_date = ?
		WHERE id = ?
	`, paidAt, jobID).Error
}

func (t *ledgerTx) SetBalance(profileID int64, balance decimal.Decimal) error {
	return t.db.Exec(`
		UPDATE profiles
		SET balance = ?
		WHERE id = ?
	`, balance, profileID).Error
}

// UnpaidTotalForClient sums unpaid job prices for the client across contracts
// of any status. Terminated contracts still count toward the deposit limit.
func (t *ledgerTx) UnpaidTotalForClient(clientID int64) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	err := t.db.Raw(`
		SELECT COALESCE(SUM(j.price), 0) AS total
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		WHERE c.client_id = ?
			AND (j.paid IS NULL OR j.paid = FALSE)
	`, clientID).Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}
