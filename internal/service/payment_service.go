package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/nurpe/contracts-billing/internal/config"
	"github.com/nurpe/contracts-billing/internal/model"
	"github.com/nurpe/contracts-billing/internal/repository"
)

// PaymentService owns the two mutating transactions: paying for a job and
// depositing funds. All validation runs inside the store transaction against
// row-locked state, so checks always see the values that will be committed.
type PaymentService struct {
	store             repository.Store
	depositLimitRatio decimal.Decimal
	log               zerolog.Logger
	now               func() time.Time
}

func NewPaymentService(store repository.Store, cfg *config.Config, log zerolog.Logger) *PaymentService {
	return &PaymentService{
		store:             store,
		depositLimitRatio: decimal.NewFromFloat(cfg.Billing.DepositLimitRatio),
		log:               log,
		now:               time.Now,
	}
}

// PayForJob transfers the job price from the contract's client to its
// contractor and marks the job paid, all in one transaction. Concurrent
// attempts on the same job serialize on the job row lock; exactly one wins
// and the rest observe the job as already paid.
func (s *PaymentService) PayForJob(ctx context.Context, jobID, callerID int64) error {
	err := s.store.Transact(ctx, func(tx repository.Tx) error {
		job, err := tx.JobForUpdate(jobID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrJobNotFound(jobID)
		}
		if err != nil {
			return err
		}

		contract, err := tx.ContractByID(job.ContractID)
		if err != nil {
			return err
		}

		client, contractor, err := lockParties(tx, contract.ClientID, contract.ContractorID)
		if err != nil {
			return err
		}

		if callerID != contract.ClientID {
			return ErrAccessDenied()
		}
		if job.IsPaid() {
			return ErrJobAlreadyPaid()
		}
		if contract.Status == model.ContractStatusTerminated {
			return ErrTerminatedContract()
		}
		if client.Balance.LessThan(job.Price) {
			return ErrNotEnoughBalance()
		}

		if err := tx.MarkJobPaid(job.ID, s.now()); err != nil {
			return err
		}
		if err := tx.SetBalance(client.ID, client.Balance.Sub(job.Price)); err != nil {
			return err
		}
		return tx.SetBalance(contractor.ID, contractor.Balance.Add(job.Price))
	})
	return normalizeError(s.log, "pay for job", err)
}

// Deposit adds funds to a client balance, bounded by the configured ratio of
// the client's unpaid job total. No authorization ties the caller to the
// client; the operation is administrative.
func (s *PaymentService) Deposit(ctx context.Context, clientID int64, rawAmount string) error {
	amount, err := decimal.NewFromString(strings.TrimSpace(rawAmount))
	if err != nil || !amount.IsPositive() {
		return ErrInvalidAmount()
	}

	err = s.store.Transact(ctx, func(tx repository.Tx) error {
		profile, err := tx.ProfileForUpdate(clientID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrClientNotFound(clientID)
		}
		if err != nil {
			return err
		}

		unpaid, err := tx.UnpaidTotalForClient(clientID)
		if err != nil {
			return err
		}

		limit := unpaid.Mul(s.depositLimitRatio)
		if amount.GreaterThan(limit) {
			return ErrDepositLimitExceeded(limit)
		}

		return tx.SetBalance(profile.ID, profile.Balance.Add(amount))
	})
	return normalizeError(s.log, "deposit", err)
}

// lockParties takes both profile row locks in ascending id order so that
// concurrent payments touching the same pair cannot deadlock.
func lockParties(tx repository.Tx, clientID, contractorID int64) (*model.Profile, *model.Profile, error) {
	if clientID == contractorID {
		p, err := tx.ProfileForUpdate(clientID)
		if err != nil {
			return nil, nil, err
		}
		return p, p, nil
	}

	firstID, secondID := clientID, contractorID
	if secondID < firstID {
		firstID, secondID = secondID, firstID
	}
	first, err := tx.ProfileForUpdate(firstID)
	if err != nil {
		return nil, nil, err
	}
	second, err := tx.ProfileForUpdate(secondID)
	if err != nil {
		return nil, nil, err
	}

	if first.ID == clientID {
		return first, second, nil
	}
	return second, first, nil
}
