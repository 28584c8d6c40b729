package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/nurpe/contracts-billing/internal/model"
	"github.com/nurpe/contracts-billing/internal/repository"
)

// ContractService serves the read-only contract and job lookups, all scoped
// to the calling profile.
type ContractService struct {
	store repository.Store
	log   zerolog.Logger
}

func NewContractService(store repository.Store, log zerolog.Logger) *ContractService {
	return &ContractService{store: store, log: log}
}

// GetContractByID returns the contract only if the caller is one of its
// parties. A contract owned by somebody else is indistinguishable from an
// absent one.
func (s *ContractService) GetContractByID(ctx context.Context, contractID, callerID int64) (*model.Contract, error) {
	contract, err := s.store.ContractForParty(ctx, contractID, callerID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrContractNotFound(contractID)
	}
	if err != nil {
		return nil, normalizeError(s.log, "get contract", err)
	}
	return contract, nil
}

// GetActiveContracts returns the caller's non-terminated contracts.
func (s *ContractService) GetActiveContracts(ctx context.Context, callerID int64) ([]model.Contract, error) {
	contracts, err := s.store.ActiveContracts(ctx, callerID)
	if err != nil {
		return nil, normalizeError(s.log, "list active contracts", err)
	}
	return contracts, nil
}

// GetUnpaidJobs returns unpaid jobs under the caller's non-terminated
// contracts, ordered by job id ascending.
func (s *ContractService) GetUnpaidJobs(ctx context.Context, callerID int64) ([]model.Job, error) {
	jobs, err := s.store.UnpaidJobs(ctx, callerID)
	if err != nil {
		return nil, normalizeError(s.log, "list unpaid jobs", err)
	}
	return jobs, nil
}
