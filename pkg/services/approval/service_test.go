package approval

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/atkhates/BANK-LOMITA/internal/types"
	"github.com/atkhates/BANK-LOMITA/pkg/entities"
	accountRepo "github.com/atkhates/BANK-LOMITA/pkg/repositories/account"
	mock_account "github.com/atkhates/BANK-LOMITA/pkg/repositories/account/mock"
	configRepo "github.com/atkhates/BANK-LOMITA/pkg/repositories/scopeconfig"
	"github.com/atkhates/BANK-LOMITA/pkg/services/ledger"
	"github.com/atkhates/BANK-LOMITA/pkg/services/mirror"
	configSvc "github.com/atkhates/BANK-LOMITA/pkg/services/scopeconfig"
)

const testScope = "guild-1"

type allowAll struct{}

func (allowAll) CanPerform(actorID, scopeID, action string) bool { return true }

type denyAll struct{}

func (denyAll) CanPerform(actorID, scopeID, action string) bool { return false }

func newTestService(t *testing.T) (*Service, accountRepo.Repository) {
	t.Helper()
	repo := accountRepo.NewMemoryRepository()
	svc := NewService(repo, configSvc.NewResolver(configRepo.NewMemoryStore()), allowAll{}, nil, mirror.NopSink{})
	return svc, repo
}

func seedAccount(t *testing.T, repo accountRepo.Repository, holderID string, status entities.AccountStatus) {
	t.Helper()
	require.NoError(t, repo.SaveAccount(context.Background(), &entities.Account{
		HolderID: holderID,
		ScopeID:  testScope,
		Status:   status,
		Balance:  250,
		Rank:     "Bronze",
	}))
}

func TestApprovePendingAccount(t *testing.T) {
	svc, repo := newTestService(t)
	seedAccount(t, repo, "alice", entities.StatusPending)

	acct, err := svc.Approve(context.Background(), "admin", testScope, "alice")

	require.NoError(t, err)
	assert.Equal(t, entities.StatusApproved, acct.Status)
	assert.Equal(t, int64(250), acct.Balance, "approval must not touch the balance")
}

func TestApproveTwiceFailsWithInvalidState(t *testing.T) {
	svc, repo := newTestService(t)
	seedAccount(t, repo, "alice", entities.StatusPending)

	_, err := svc.Approve(context.Background(), "admin", testScope, "alice")
	require.NoError(t, err)

	// The double-click case: the account is no longer pending
	_, err = svc.Approve(context.Background(), "admin", testScope, "alice")
	assert.True(t, types.IsBankError(err, types.ErrInvalidState))
}

func TestRejectPendingAccount(t *testing.T) {
	svc, repo := newTestService(t)
	seedAccount(t, repo, "alice", entities.StatusPending)

	acct, err := svc.Reject(context.Background(), "admin", testScope, "alice")

	require.NoError(t, err)
	assert.Equal(t, entities.StatusRejected, acct.Status)
}

func TestResolveRequiresPendingStatus(t *testing.T) {
	svc, repo := newTestService(t)

	for _, status := range []entities.AccountStatus{
		entities.StatusApproved,
		entities.StatusRejected,
		entities.StatusBlacklisted,
	} {
		seedAccount(t, repo, "holder-"+string(status), status)

		_, err := svc.Approve(context.Background(), "admin", testScope, "holder-"+string(status))
		assert.True(t, types.IsBankError(err, types.ErrInvalidState), "status %s should not be approvable", status)

		_, err = svc.Reject(context.Background(), "admin", testScope, "holder-"+string(status))
		assert.True(t, types.IsBankError(err, types.ErrInvalidState), "status %s should not be rejectable", status)
	}
}

func TestBlacklistFreezesAccount(t *testing.T) {
	svc, repo := newTestService(t)
	seedAccount(t, repo, "alice", entities.StatusApproved)

	acct, err := svc.Blacklist(context.Background(), "admin", testScope, "alice")

	require.NoError(t, err)
	assert.Equal(t, entities.StatusBlacklisted, acct.Status)
	assert.True(t, acct.Frozen, "blacklisting implies freezing")
}

func TestBlacklistIsIdempotentError(t *testing.T) {
	svc, repo := newTestService(t)
	seedAccount(t, repo, "alice", entities.StatusBlacklisted)

	_, err := svc.Blacklist(context.Background(), "admin", testScope, "alice")
	assert.True(t, types.IsBankError(err, types.ErrInvalidState))
}

func TestBlacklistedAccountCannotBeUnfrozen(t *testing.T) {
	svc, repo := newTestService(t)
	seedAccount(t, repo, "alice", entities.StatusApproved)

	_, err := svc.Blacklist(context.Background(), "admin", testScope, "alice")
	require.NoError(t, err)

	_, err = svc.SetFrozen(context.Background(), "admin", testScope, "alice", false)
	assert.True(t, types.IsBankError(err, types.ErrInvalidState))
}

func TestFreezeAndUnfreeze(t *testing.T) {
	svc, repo := newTestService(t)
	seedAccount(t, repo, "alice", entities.StatusApproved)

	acct, err := svc.SetFrozen(context.Background(), "admin", testScope, "alice", true)
	require.NoError(t, err)
	assert.True(t, acct.Frozen)

	acct, err = svc.SetFrozen(context.Background(), "admin", testScope, "alice", false)
	require.NoError(t, err)
	assert.False(t, acct.Frozen)
}

func TestFreezePendingAccountAllowed(t *testing.T) {
	svc, repo := newTestService(t)
	seedAccount(t, repo, "alice", entities.StatusPending)

	acct, err := svc.SetFrozen(context.Background(), "admin", testScope, "alice", true)
	require.NoError(t, err)
	assert.True(t, acct.Frozen)
	assert.Equal(t, entities.StatusPending, acct.Status)
}

func TestSetRankValidatesLadder(t *testing.T) {
	svc, repo := newTestService(t)
	seedAccount(t, repo, "alice", entities.StatusApproved)

	acct, err := svc.SetRank(context.Background(), "admin", testScope, "alice", "Gold")
	require.NoError(t, err)
	assert.Equal(t, "Gold", acct.Rank)

	_, err = svc.SetRank(context.Background(), "admin", testScope, "alice", "Diamond")
	assert.True(t, types.IsBankError(err, types.ErrValidation))
}

func TestUnauthorizedActorDenied(t *testing.T) {
	repo := accountRepo.NewMemoryRepository()
	svc := NewService(repo, configSvc.NewResolver(configRepo.NewMemoryStore()), denyAll{}, nil, mirror.NopSink{})
	seedAccount(t, repo, "alice", entities.StatusPending)

	_, err := svc.Approve(context.Background(), "random-user", testScope, "alice")
	assert.True(t, types.IsBankError(err, types.ErrPermissionDenied))

	_, err = svc.Blacklist(context.Background(), "random-user", testScope, "alice")
	assert.True(t, types.IsBankError(err, types.ErrPermissionDenied))
}

func TestApproveUnknownAccount(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Approve(context.Background(), "admin", testScope, "nobody")
	assert.True(t, types.IsBankError(err, types.ErrNotFound))
}

// gatedRepo blocks the first rank-carrying save until released, holding the
// writer mid-cycle so a concurrent operation can try to slip in between its
// read and its save.
type gatedRepo struct {
	accountRepo.Repository
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (r *gatedRepo) SaveAccount(ctx context.Context, acct *entities.Account) error {
	if acct.Rank == "Gold" {
		r.once.Do(func() {
			close(r.entered)
			<-r.release
		})
	}
	return r.Repository.SaveAccount(ctx, acct)
}

func TestSetRankCannotResurrectSpentFunds(t *testing.T) {
	mem := accountRepo.NewMemoryRepository()
	repo := &gatedRepo{Repository: mem, entered: make(chan struct{}), release: make(chan struct{})}
	resolver := configSvc.NewResolver(configRepo.NewMemoryStore())

	locks := accountRepo.NewLockTable()
	approvalSvc := NewService(repo, resolver, allowAll{}, nil, mirror.NopSink{})
	approvalSvc.SetLockTable(locks)
	ledgerSvc := ledger.NewService(repo, resolver, allowAll{}, mirror.NopSink{})
	ledgerSvc.SetLockTable(locks)

	seedAccount(t, repo, "alice", entities.StatusApproved)

	rankDone := make(chan error, 1)
	go func() {
		_, err := approvalSvc.SetRank(context.Background(), "admin", testScope, "alice", "Gold")
		rankDone <- err
	}()
	<-repo.entered

	// The rank write has read balance 250 and is stalled mid-save. A
	// withdrawal landing now must wait, or the stalled save would later
	// overwrite the debited balance with the stale one.
	withdrawDone := make(chan error, 1)
	go func() {
		_, _, err := ledgerSvc.Withdraw(context.Background(), testScope, "alice", 100)
		withdrawDone <- err
	}()

	select {
	case <-withdrawDone:
		t.Fatal("withdrawal completed while a lifecycle write was still in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(repo.release)
	require.NoError(t, <-rankDone)
	require.NoError(t, <-withdrawDone)

	acct, err := mem.GetAccount(context.Background(), testScope, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(150), acct.Balance, "the rank write must not restore the withdrawn funds")
	assert.Equal(t, "Gold", acct.Rank)
}

func TestApproveWrapsRepositoryFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock_account.NewMockRepository(ctrl)
	repo.EXPECT().
		GetAccount(gomock.Any(), testScope, "alice").
		Return(nil, errors.New("disk on fire"))

	svc := NewService(repo, configSvc.NewResolver(configRepo.NewMemoryStore()), allowAll{}, nil, mirror.NopSink{})

	_, err := svc.Approve(context.Background(), "admin", testScope, "alice")
	assert.True(t, types.IsBankError(err, types.ErrDatabaseError))
}
