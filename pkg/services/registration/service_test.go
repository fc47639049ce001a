package registration

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atkhates/BANK-LOMITA/internal/types"
	"github.com/atkhates/BANK-LOMITA/pkg/entities"
	accountRepo "github.com/atkhates/BANK-LOMITA/pkg/repositories/account"
	configRepo "github.com/atkhates/BANK-LOMITA/pkg/repositories/scopeconfig"
	"github.com/atkhates/BANK-LOMITA/pkg/services/approval"
	"github.com/atkhates/BANK-LOMITA/pkg/services/mirror"
	configSvc "github.com/atkhates/BANK-LOMITA/pkg/services/scopeconfig"
)

const testScope = "guild-1"

func validFields() Fields {
	return Fields{
		DisplayName:   "Jane Doe",
		Country:       "Lomita",
		Age:           21,
		BirthDate:     "2004-01-31",
		MonthlyIncome: 2500,
	}
}

func newTestService(t *testing.T, override *configRepo.ScopeOverride) (*Service, accountRepo.Repository) {
	t.Helper()

	repo := accountRepo.NewMemoryRepository()
	store := configRepo.NewMemoryStore()
	if override != nil {
		require.NoError(t, store.Save(context.Background(), testScope, override))
	}
	return NewService(repo, configSvc.NewResolver(store), nil, mirror.NopSink{}), repo
}

func submit(t *testing.T, svc *Service, holderID string, category entities.AccountCategory) *entities.Account {
	t.Helper()

	_, err := svc.StartDraft(context.Background(), testScope, holderID, validFields())
	require.NoError(t, err)
	_, err = svc.SetCategory(context.Background(), testScope, holderID, category, "")
	require.NoError(t, err)
	acct, err := svc.Commit(context.Background(), testScope, holderID)
	require.NoError(t, err)
	return acct
}

func TestFullRegistrationFlow(t *testing.T) {
	svc, repo := newTestService(t, nil)

	acct := submit(t, svc, "alice", entities.CategoryCivilian)

	assert.Equal(t, entities.StatusPending, acct.Status)
	assert.Equal(t, "Jane Doe", acct.DisplayName)
	assert.Equal(t, entities.CategoryCivilian, acct.Category)
	assert.Equal(t, "Bronze", acct.Rank, "new accounts start on the first rung")
	assert.Zero(t, acct.Balance)

	stored, err := repo.GetAccount(context.Background(), testScope, "alice")
	require.NoError(t, err)
	assert.Equal(t, entities.StatusPending, stored.Status)

	// The draft is gone once committed
	_, exists := svc.Draft(testScope, "alice")
	assert.False(t, exists)
}

func TestStartDraftFieldValidation(t *testing.T) {
	svc, _ := newTestService(t, nil)

	cases := []struct {
		name   string
		mutate func(*Fields)
		field  string
	}{
		{"empty name", func(f *Fields) { f.DisplayName = "  " }, "displayName"},
		{"empty country", func(f *Fields) { f.Country = "" }, "country"},
		{"too young", func(f *Fields) { f.Age = 15 }, "age"},
		{"too old", func(f *Fields) { f.Age = 66 }, "age"},
		{"bad birth date", func(f *Fields) { f.BirthDate = "31-01-2004" }, "birthDate"},
		{"zero income", func(f *Fields) { f.MonthlyIncome = 0 }, "monthlyIncome"},
		{"negative income", func(f *Fields) { f.MonthlyIncome = -5 }, "monthlyIncome"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fields := validFields()
			tc.mutate(&fields)

			_, err := svc.StartDraft(context.Background(), testScope, "alice", fields)

			var bankErr *types.BankError
			require.True(t, types.As(err, &bankErr))
			assert.Equal(t, types.ErrValidation, bankErr.Code)
			assert.Equal(t, tc.field, bankErr.Field)
		})
	}
}

func TestStartDraftEnforcesMinimumIncome(t *testing.T) {
	minIncome := int64(3000)
	svc, _ := newTestService(t, &configRepo.ScopeOverride{MinimumIncome: &minIncome})

	fields := validFields() // income 2500 < 3000
	_, err := svc.StartDraft(context.Background(), testScope, "alice", fields)
	assert.True(t, types.IsBankError(err, types.ErrValidation))

	fields.MonthlyIncome = 3000
	_, err = svc.StartDraft(context.Background(), testScope, "alice", fields)
	assert.NoError(t, err)
}

func TestBoundaryAgesAccepted(t *testing.T) {
	svc, _ := newTestService(t, nil)

	for _, age := range []int{16, 65} {
		fields := validFields()
		fields.Age = age
		_, err := svc.StartDraft(context.Background(), testScope, "alice", fields)
		assert.NoError(t, err, "age %d is within the accepted range", age)
	}
}

func TestDuplicateApplicationPerStatus(t *testing.T) {
	cases := []struct {
		status  entities.AccountStatus
		allowed bool
	}{
		{entities.StatusPending, false},
		{entities.StatusApproved, false},
		{entities.StatusBlacklisted, false},
		{entities.StatusRejected, true},
	}

	for _, tc := range cases {
		t.Run(string(tc.status), func(t *testing.T) {
			svc, repo := newTestService(t, nil)
			require.NoError(t, repo.SaveAccount(context.Background(), &entities.Account{
				HolderID: "alice",
				ScopeID:  testScope,
				Status:   tc.status,
			}))

			_, err := svc.StartDraft(context.Background(), testScope, "alice", validFields())

			if tc.allowed {
				assert.NoError(t, err)
				return
			}
			var bankErr *types.BankError
			require.True(t, types.As(err, &bankErr))
			assert.Equal(t, types.ErrDuplicateApplication, bankErr.Code)
			assert.Equal(t, string(tc.status), bankErr.Field, "the error carries the existing status")
		})
	}
}

func TestReapplicationPreservesRankAndBalance(t *testing.T) {
	svc, repo := newTestService(t, nil)

	created := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SaveAccount(context.Background(), &entities.Account{
		HolderID:  "alice",
		ScopeID:   testScope,
		Status:    entities.StatusRejected,
		Rank:      "Gold",
		Balance:   750,
		CreatedAt: created,
	}))

	acct := submit(t, svc, "alice", entities.CategoryGang)

	assert.Equal(t, entities.StatusPending, acct.Status)
	assert.Equal(t, "Gold", acct.Rank, "rank survives re-application")
	assert.Equal(t, int64(750), acct.Balance, "balance survives re-application")
	assert.Equal(t, created, acct.CreatedAt)
	assert.Equal(t, entities.CategoryGang, acct.Category)
}

func TestSetCategoryValidation(t *testing.T) {
	svc, _ := newTestService(t, nil)
	_, err := svc.StartDraft(context.Background(), testScope, "alice", validFields())
	require.NoError(t, err)

	_, err = svc.SetCategory(context.Background(), testScope, "alice", "pirate", "")
	assert.True(t, types.IsBankError(err, types.ErrValidation))
}

func TestFactionCategory(t *testing.T) {
	svc, _ := newTestService(t, &configRepo.ScopeOverride{Factions: []string{"Ballas", "Vagos"}})
	_, err := svc.StartDraft(context.Background(), testScope, "alice", validFields())
	require.NoError(t, err)

	_, err = svc.SetCategory(context.Background(), testScope, "alice", entities.CategoryFaction, "Families")
	assert.True(t, types.IsBankError(err, types.ErrValidation), "unknown faction rejected")

	draft, err := svc.SetCategory(context.Background(), testScope, "alice", entities.CategoryFaction, "Ballas")
	require.NoError(t, err)
	assert.Equal(t, "Ballas", draft.FactionName)

	acct, err := svc.Commit(context.Background(), testScope, "alice")
	require.NoError(t, err)
	assert.Equal(t, entities.CategoryFaction, acct.Category)
	assert.Equal(t, "Ballas", acct.FactionName)
}

func TestNonFactionCategoryDropsFactionName(t *testing.T) {
	svc, _ := newTestService(t, nil)
	_, err := svc.StartDraft(context.Background(), testScope, "alice", validFields())
	require.NoError(t, err)

	draft, err := svc.SetCategory(context.Background(), testScope, "alice", entities.CategoryCivilian, "Ballas")
	require.NoError(t, err)
	assert.Empty(t, draft.FactionName)
}

func TestCommitWithoutCategoryFails(t *testing.T) {
	svc, _ := newTestService(t, nil)
	_, err := svc.StartDraft(context.Background(), testScope, "alice", validFields())
	require.NoError(t, err)

	_, err = svc.Commit(context.Background(), testScope, "alice")
	assert.True(t, types.IsBankError(err, types.ErrValidation))
}

func TestCommitWithoutDraftFails(t *testing.T) {
	svc, _ := newTestService(t, nil)

	_, err := svc.Commit(context.Background(), testScope, "alice")
	assert.True(t, types.IsBankError(err, types.ErrNotFound))
}

func TestAbandonDiscardsDraft(t *testing.T) {
	svc, repo := newTestService(t, nil)
	_, err := svc.StartDraft(context.Background(), testScope, "alice", validFields())
	require.NoError(t, err)

	svc.Abandon(testScope, "alice")

	_, exists := svc.Draft(testScope, "alice")
	assert.False(t, exists)

	// Nothing was persisted
	_, err = repo.GetAccount(context.Background(), testScope, "alice")
	assert.ErrorIs(t, err, accountRepo.ErrAccountNotFound)
}

func TestExpireStaleDrafts(t *testing.T) {
	svc, _ := newTestService(t, nil)

	_, err := svc.StartDraft(context.Background(), testScope, "alice", validFields())
	require.NoError(t, err)
	_, err = svc.StartDraft(context.Background(), testScope, "bob", validFields())
	require.NoError(t, err)

	// Age alice's draft past the cutoff
	draft, exists := svc.Draft(testScope, "alice")
	require.True(t, exists)
	draft.StartedAt = time.Now().Add(-2 * time.Hour)

	expired := svc.ExpireStale(time.Hour)

	assert.Equal(t, 1, expired)
	_, exists = svc.Draft(testScope, "alice")
	assert.False(t, exists)
	_, exists = svc.Draft(testScope, "bob")
	assert.True(t, exists)
}

// pendingGateRepo blocks the first pending-status save until released,
// holding the commit mid-cycle so a concurrent lifecycle write can try to
// slip in between its read and its save.
type pendingGateRepo struct {
	accountRepo.Repository
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (r *pendingGateRepo) SaveAccount(ctx context.Context, acct *entities.Account) error {
	if acct.Status == entities.StatusPending {
		r.once.Do(func() {
			close(r.entered)
			<-r.release
		})
	}
	return r.Repository.SaveAccount(ctx, acct)
}

type allowAll struct{}

func (allowAll) CanPerform(actorID, scopeID, action string) bool { return true }

func TestCommitCannotOverwriteConcurrentBlacklist(t *testing.T) {
	mem := accountRepo.NewMemoryRepository()
	repo := &pendingGateRepo{Repository: mem, entered: make(chan struct{}), release: make(chan struct{})}
	resolver := configSvc.NewResolver(configRepo.NewMemoryStore())

	locks := accountRepo.NewLockTable()
	svc := NewService(repo, resolver, nil, mirror.NopSink{})
	svc.SetLockTable(locks)
	approvalSvc := approval.NewService(repo, resolver, allowAll{}, nil, mirror.NopSink{})
	approvalSvc.SetLockTable(locks)

	// A rejected holder re-applies
	require.NoError(t, mem.SaveAccount(context.Background(), &entities.Account{
		HolderID: "alice",
		ScopeID:  testScope,
		Status:   entities.StatusRejected,
		Rank:     "Bronze",
	}))
	_, err := svc.StartDraft(context.Background(), testScope, "alice", validFields())
	require.NoError(t, err)
	_, err = svc.SetCategory(context.Background(), testScope, "alice", entities.CategoryCivilian, "")
	require.NoError(t, err)

	commitDone := make(chan error, 1)
	go func() {
		_, err := svc.Commit(context.Background(), testScope, "alice")
		commitDone <- err
	}()
	<-repo.entered

	// The commit is stalled mid-save. A blacklist landing now must wait, or
	// the stalled save would later overwrite the blacklist with a fresh
	// pending application.
	blacklistDone := make(chan error, 1)
	go func() {
		_, err := approvalSvc.Blacklist(context.Background(), "admin", testScope, "alice")
		blacklistDone <- err
	}()

	select {
	case <-blacklistDone:
		t.Fatal("blacklist completed while a registration commit was still in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(repo.release)
	require.NoError(t, <-commitDone)
	require.NoError(t, <-blacklistDone)

	acct, err := mem.GetAccount(context.Background(), testScope, "alice")
	require.NoError(t, err)
	assert.Equal(t, entities.StatusBlacklisted, acct.Status, "the commit must not overwrite the blacklist")
	assert.True(t, acct.Frozen)
}

func TestDraftsAreScopedPerHolder(t *testing.T) {
	svc, _ := newTestService(t, nil)

	_, err := svc.StartDraft(context.Background(), testScope, "alice", validFields())
	require.NoError(t, err)

	_, exists := svc.Draft(testScope, "bob")
	assert.False(t, exists, "another holder must not see alice's draft")
	_, exists = svc.Draft("guild-2", "alice")
	assert.False(t, exists, "another scope must not see the draft")
}
