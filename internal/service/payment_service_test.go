package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/contracts-billing/internal/config"
	"github.com/nurpe/contracts-billing/internal/model"
	"github.com/nurpe/contracts-billing/internal/repository"
)

var fixedNow = time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// newLedgerFixture builds the scenario the payment tests share: client 1
// owes jobs under one active and one terminated contract, client 4 is almost
// broke, and job 7 is already paid.
func newLedgerFixture() *fakeStore {
	store := newFakeStore()

	store.addProfile(model.Profile{ID: 1, FirstName: "Harry", LastName: "Potter", Profession: "Wizard", Balance: money("1350"), Type: model.ProfileTypeClient})
	store.addProfile(model.Profile{ID: 2, FirstName: "Mr", LastName: "Robot", Profession: "Hacker", Balance: money("231.11"), Type: model.ProfileTypeClient})
	store.addProfile(model.Profile{ID: 4, FirstName: "Ash", LastName: "Ketchum", Profession: "Pokemon master", Balance: money("1.3"), Type: model.ProfileTypeClient})
	store.addProfile(model.Profile{ID: 5, FirstName: "John", LastName: "Lenon", Profession: "Musician", Balance: money("64"), Type: model.ProfileTypeContractor})
	store.addProfile(model.Profile{ID: 6, FirstName: "Linus", LastName: "Torvalds", Profession: "Programmer", Balance: money("1214"), Type: model.ProfileTypeContractor})

	store.addContract(model.Contract{ID: 1, Terms: "bla bla bla", Status: model.ContractStatusTerminated, ClientID: 1, ContractorID: 5})
	store.addContract(model.Contract{ID: 2, Terms: "bla bla bla", Status: model.ContractStatusInProgress, ClientID: 1, ContractorID: 6})
	store.addContract(model.Contract{ID: 3, Terms: "bla bla bla", Status: model.ContractStatusInProgress, ClientID: 2, ContractorID: 6})
	store.addContract(model.Contract{ID: 4, Terms: "bla bla bla", Status: model.ContractStatusInProgress, ClientID: 4, ContractorID: 5})

	paid := true
	paidAt := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	store.addJob(model.Job{ID: 1, Description: "work", Price: money("200"), ContractID: 1})
	store.addJob(model.Job{ID: 2, Description: "work", Price: money("201"), ContractID: 2})
	store.addJob(model.Job{ID: 3, Description: "work", Price: money("202"), ContractID: 3})
	store.addJob(model.Job{ID: 5, Description: "work", Price: money("200"), ContractID: 4})
	store.addJob(model.Job{ID: 7, Description: "work", Price: money("200"), Paid: &paid, PaymentDate: &paidAt, ContractID: 2})

	return store
}

func newPaymentService(store repository.Store) *PaymentService {
	cfg := &config.Config{Billing: config.BillingConfig{DepositLimitRatio: 1.25}}
	svc := NewPaymentService(store, cfg, zerolog.Nop())
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestPayForJobJobNotFound(t *testing.T) {
	store := newLedgerFixture()
	svc := newPaymentService(store)

	err := svc.PayForJob(context.Background(), 999, 1)
	require.ErrorIs(t, err, ErrJobNotFound(999))
}

func TestPayForJobAccessDeniedForNonClient(t *testing.T) {
	store := newLedgerFixture()
	svc := newPaymentService(store)

	// Job 2 belongs to client 1; client 2 must not be able to pay it, and
	// neither must the contract's own contractor.
	require.ErrorIs(t, svc.PayForJob(context.Background(), 2, 2), ErrAccessDenied())
	require.ErrorIs(t, svc.PayForJob(context.Background(), 2, 6), ErrAccessDenied())
}

func TestPayForJobAlreadyPaid(t *testing.T) {
	store := newLedgerFixture()
	svc := newPaymentService(store)

	err := svc.PayForJob(context.Background(), 7, 1)
	require.ErrorIs(t, err, ErrJobAlreadyPaid())
}

func TestPayForJobTerminatedContract(t *testing.T) {
	store := newLedgerFixture()
	svc := newPaymentService(store)

	err := svc.PayForJob(context.Background(), 1, 1)
	require.ErrorIs(t, err, ErrTerminatedContract())
	require.False(t, store.job(1).IsPaid())
}

func TestPayForJobNotEnoughBalance(t *testing.T) {
	store := newLedgerFixture()
	svc := newPaymentService(store)

	err := svc.PayForJob(context.Background(), 5, 4)
	require.ErrorIs(t, err, ErrNotEnoughBalance())
	require.Equal(t, "1.3", store.balance(4).String())
	require.False(t, store.job(5).IsPaid())
}

func TestPayForJobSuccess(t *testing.T) {
	store := newLedgerFixture()
	svc := newPaymentService(store)

	sumBefore := store.balance(1).Add(store.balance(6))

	require.NoError(t, svc.PayForJob(context.Background(), 2, 1))

	job := store.job(2)
	require.True(t, job.IsPaid())
	require.NotNil(t, job.PaymentDate)
	require.True(t, job.PaymentDate.Equal(fixedNow))

	require.Equal(t, "1149", store.balance(1).String())
	require.Equal(t, "1415", store.balance(6).String())

	// The payment moves exactly the price; the pair's total is conserved.
	sumAfter := store.balance(1).Add(store.balance(6))
	require.True(t, sumBefore.Equal(sumAfter))
}

func TestPayForJobConcurrentDoublePay(t *testing.T) {
	store := newLedgerFixture()
	svc := newPaymentService(store)

	const attempts = 4
	results := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- svc.PayForJob(context.Background(), 2, 1)
		}()
	}
	wg.Wait()
	close(results)

	var successes, alreadyPaid int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrJobAlreadyPaid()):
			alreadyPaid++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, successes)
	require.Equal(t, attempts-1, alreadyPaid)

	// One transfer happened, not four.
	require.Equal(t, "1149", store.balance(1).String())
	require.Equal(t, "1415", store.balance(6).String())
}

// flakyStore fails balance writes after a threshold so the rollback path can
// be exercised.
type flakyStore struct {
	*fakeStore
	allowedWrites int
}

func (s *flakyStore) Transact(ctx context.Context, fn func(tx repository.Tx) error) error {
	return s.fakeStore.Transact(ctx, func(tx repository.Tx) error {
		return fn(&flakyTx{Tx: tx, allowed: s.allowedWrites})
	})
}

type flakyTx struct {
	repository.Tx
	allowed int
	writes  int
}

func (t *flakyTx) SetBalance(profileID int64, balance decimal.Decimal) error {
	t.writes++
	if t.writes > t.allowed {
		return errors.New("connection reset")
	}
	return t.Tx.SetBalance(profileID, balance)
}

func TestPayForJobStoreFailureRollsBackAndHidesDetail(t *testing.T) {
	base := newLedgerFixture()
	svc := newPaymentService(&flakyStore{fakeStore: base, allowedWrites: 1})

	err := svc.PayForJob(context.Background(), 2, 1)
	require.ErrorIs(t, err, ErrInternal())

	// Nothing committed: job unpaid, both balances untouched.
	require.False(t, base.job(2).IsPaid())
	require.Equal(t, "1350", base.balance(1).String())
	require.Equal(t, "1214", base.balance(6).String())
}

func TestDepositInvalidAmounts(t *testing.T) {
	store := newLedgerFixture()
	svc := newPaymentService(store)

	for _, raw := range []string{"abc", "", "NaN", "0", "-50"} {
		err := svc.Deposit(context.Background(), 1, raw)
		require.ErrorIs(t, err, ErrInvalidAmount(), "amount %q", raw)
	}
	require.Equal(t, "1350", store.balance(1).String())
}

func TestDepositClientNotFound(t *testing.T) {
	store := newLedgerFixture()
	svc := newPaymentService(store)

	err := svc.Deposit(context.Background(), 999, "10")
	require.ErrorIs(t, err, ErrClientNotFound(999))
}

func TestDepositLimitExceeded(t *testing.T) {
	store := newLedgerFixture()
	svc := newPaymentService(store)

	// Client 4 owes 200 unpaid, so the cap is 250.
	err := svc.Deposit(context.Background(), 4, "250.01")
	require.ErrorIs(t, err, ErrDepositLimitExceeded(money("250")))
	require.Equal(t, "1.3", store.balance(4).String())
}

func TestDepositAtLimitSucceeds(t *testing.T) {
	store := newLedgerFixture()
	svc := newPaymentService(store)

	require.NoError(t, svc.Deposit(context.Background(), 4, "250"))
	require.Equal(t, "251.3", store.balance(4).String())
}

func TestDepositLimitCountsTerminatedContracts(t *testing.T) {
	store := newLedgerFixture()
	svc := newPaymentService(store)

	// Client 1 owes 201 under the active contract and 200 under the
	// terminated one. The deposit cap counts both: 401 * 1.25 = 501.25.
	// 450 would exceed a cap computed from active contracts alone.
	require.NoError(t, svc.Deposit(context.Background(), 1, "450"))
	require.Equal(t, "1800", store.balance(1).String())

	err := svc.Deposit(context.Background(), 1, "501.26")
	require.ErrorIs(t, err, ErrDepositLimitExceeded(money("501.25")))
}
