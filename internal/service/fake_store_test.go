package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nurpe/contracts-billing/internal/model"
	"github.com/nurpe/contracts-billing/internal/repository"
)

// fakeStore is an in-memory repository.Store. Transact serializes on a
// mutex, standing in for the database row locks, and restores a snapshot
// when the callback fails so rollbacks behave like the real store.
type fakeStore struct {
	mu        sync.Mutex
	profiles  map[int64]model.Profile
	contracts map[int64]model.Contract
	jobs      map[int64]model.Job
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		profiles:  make(map[int64]model.Profile),
		contracts: make(map[int64]model.Contract),
		jobs:      make(map[int64]model.Job),
	}
}

func (f *fakeStore) addProfile(p model.Profile) {
	f.profiles[p.ID] = p
}

func (f *fakeStore) addContract(c model.Contract) {
	f.contracts[c.ID] = c
}

func (f *fakeStore) addJob(j model.Job) {
	f.jobs[j.ID] = j
}

func (f *fakeStore) balance(id int64) decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.profiles[id].Balance
}

func (f *fakeStore) job(id int64) model.Job {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.jobs[id]
}

func (f *fakeStore) ProfileByID(_ context.Context, id int64) (*model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (f *fakeStore) ContractForParty(_ context.Context, contractID, partyID int64) (*model.Contract, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contracts[contractID]
	if !ok || !c.OwnedBy(partyID) {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (f *fakeStore) ActiveContracts(_ context.Context, partyID int64) ([]model.Contract, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var contracts []model.Contract
	for _, c := range f.contracts {
		if c.OwnedBy(partyID) && c.Status != model.ContractStatusTerminated {
			contracts = append(contracts, c)
		}
	}
	sort.Slice(contracts, func(i, j int) bool { return contracts[i].ID < contracts[j].ID })
	return contracts, nil
}

func (f *fakeStore) UnpaidJobs(_ context.Context, partyID int64) ([]model.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var jobs []model.Job
	for _, j := range f.jobs {
		if j.IsPaid() {
			continue
		}
		c, ok := f.contracts[j.ContractID]
		if !ok || !c.OwnedBy(partyID) || c.Status == model.ContractStatusTerminated {
			continue
		}
		jobs = append(jobs, j)
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].ID < jobs[j].ID })
	return jobs, nil
}

func (f *fakeStore) JobByID(_ context.Context, id int64) (*model.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.jobs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &j, nil
}

func (f *fakeStore) ProfessionEarnings(_ context.Context, start, end time.Time) ([]model.ProfessionEarnings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	totals := make(map[string]decimal.Decimal)
	for _, j := range f.jobs {
		if !j.IsPaid() || j.PaymentDate == nil || j.PaymentDate.Before(start) || j.PaymentDate.After(end) {
			continue
		}
		contractor := f.profiles[f.contracts[j.ContractID].ContractorID]
		totals[contractor.Profession] = totals[contractor.Profession].Add(j.Price)
	}

	rows := make([]model.ProfessionEarnings, 0, len(totals))
	for profession, total := range totals {
		rows = append(rows, model.ProfessionEarnings{Profession: profession, Total: total})
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Total.Equal(rows[j].Total) {
			return rows[i].Total.GreaterThan(rows[j].Total)
		}
		return rows[i].Profession < rows[j].Profession
	})
	return rows, nil
}

func (f *fakeStore) TopClients(_ context.Context, start, end time.Time, limit int) ([]model.ClientEarnings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	totals := make(map[int64]decimal.Decimal)
	for _, j := range f.jobs {
		if !j.IsPaid() || j.PaymentDate == nil || j.PaymentDate.Before(start) || j.PaymentDate.After(end) {
			continue
		}
		clientID := f.contracts[j.ContractID].ClientID
		totals[clientID] = totals[clientID].Add(j.Price)
	}

	rows := make([]model.ClientEarnings, 0, len(totals))
	for id, paid := range totals {
		client := f.profiles[id]
		rows = append(rows, model.ClientEarnings{ID: id, FullName: client.FullName(), Paid: paid})
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Paid.Equal(rows[j].Paid) {
			return rows[i].Paid.GreaterThan(rows[j].Paid)
		}
		return rows[i].ID < rows[j].ID
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (f *fakeStore) Transact(_ context.Context, fn func(tx repository.Tx) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	profiles := cloneMap(f.profiles)
	contracts := cloneMap(f.contracts)
	jobs := cloneMap(f.jobs)

	if err := fn(&fakeTx{store: f}); err != nil {
		f.profiles = profiles
		f.contracts = contracts
		f.jobs = jobs
		return err
	}
	return nil
}

func cloneMap[K comparable, V any](src map[K]V) map[K]V {
	dst := make(map[K]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

type fakeTx struct {
	store *fakeStore
}

func (t *fakeTx) JobForUpdate(jobID int64) (*model.Job, error) {
	j, ok := t.store.jobs[jobID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &j, nil
}

func (t *fakeTx) ContractByID(contractID int64) (*model.Contract, error) {
	c, ok := t.store.contracts[contractID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (t *fakeTx) ProfileForUpdate(profileID int64) (*model.Profile, error) {
	p, ok := t.store.profiles[profileID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (t *fakeTx) MarkJobPaid(jobID int64, paidAt time.Time) error {
	j := t.store.jobs[jobID]
	paid := true
	j.Paid = &paid
	j.PaymentDate = &paidAt
	t.store.jobs[jobID] = j
	return nil
}

func (t *fakeTx) SetBalance(profileID int64, balance decimal.Decimal) error {
	p := t.store.profiles[profileID]
	p.Balance = balance
	t.store.profiles[profileID] = p
	return nil
}

func (t *fakeTx) UnpaidTotalForClient(clientID int64) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, j := range t.store.jobs {
		if j.IsPaid() {
			continue
		}
		if t.store.contracts[j.ContractID].ClientID == clientID {
			total = total.Add(j.Price)
		}
	}
	return total, nil
}
