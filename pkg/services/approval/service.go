package approval

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/atkhates/BANK-LOMITA/internal/types"
	"github.com/atkhates/BANK-LOMITA/pkg/entities"
	accountRepo "github.com/atkhates/BANK-LOMITA/pkg/repositories/account"
	configSvc "github.com/atkhates/BANK-LOMITA/pkg/services/scopeconfig"
	"github.com/atkhates/BANK-LOMITA/pkg/services/mirror"
)

// Action keys checked against the authorization service
const (
	ActionApprove   = "approve"
	ActionReject    = "reject"
	ActionBlacklist = "blacklist"
	ActionFreeze    = "freeze"
	ActionPromote   = "promote"
)

//go:generate mockgen -source=$GOFILE -destination=mock/mock.go -package=mock_approval
// Authorizer answers whether an actor may perform an administrative action.
// Role and permission storage live with the chat platform, not here.
type Authorizer interface {
	CanPerform(actorID, scopeID, action string) bool
}

// Notifier receives status-changed events for the review surface
type Notifier interface {
	StatusChanged(scopeID string, account *entities.Account, actorID string)
}

// Service transitions accounts through their lifecycle. Every transition is a
// get-then-save of the whole account record, so it runs under the holder's
// lock; the table is shared with the ledger so a status or rank write can
// never overwrite a balance a concurrent operation just moved.
type Service struct {
	repo     accountRepo.Repository
	resolver *configSvc.Resolver
	auth     Authorizer
	notifier Notifier
	mirror   mirror.Sink
	locks    *accountRepo.LockTable
}

// NewService creates a new approval engine
func NewService(repo accountRepo.Repository, resolver *configSvc.Resolver, auth Authorizer, notifier Notifier, sink mirror.Sink) *Service {
	if sink == nil {
		sink = mirror.NopSink{}
	}
	return &Service{
		repo:     repo,
		resolver: resolver,
		auth:     auth,
		notifier: notifier,
		mirror:   sink,
		locks:    accountRepo.NewLockTable(),
	}
}

// SetLockTable replaces the per-holder lock table with one shared across
// every service writing to the same account store.
func (s *Service) SetLockTable(locks *accountRepo.LockTable) {
	s.locks = locks
}

// SetAuthorizer installs the authorization check. A nil authorizer allows
// every action; only tests should run that way.
func (s *Service) SetAuthorizer(a Authorizer) {
	s.auth = a
}

// SetNotifier installs the review-surface notifier
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

func (s *Service) authorize(actorID, scopeID, action string) error {
	if s.auth != nil && !s.auth.CanPerform(actorID, scopeID, action) {
		return types.NewBankError(types.ErrPermissionDenied,
			fmt.Sprintf("actor is not allowed to %s", action))
	}
	return nil
}

func (s *Service) getAccount(ctx context.Context, scopeID, holderID string) (*entities.Account, error) {
	acct, err := s.repo.GetAccount(ctx, scopeID, holderID)
	if err != nil {
		if errors.Is(err, accountRepo.ErrAccountNotFound) {
			return nil, types.NewBankError(types.ErrNotFound, "no account record for this holder")
		}
		return nil, types.WrapError(types.ErrDatabaseError, "error loading account", err)
	}
	return acct, nil
}

func (s *Service) save(ctx context.Context, account *entities.Account, actorID string) error {
	if err := s.repo.SaveAccount(ctx, account); err != nil {
		return types.WrapError(types.ErrDatabaseError, "error saving account", err)
	}

	s.mirror.OnAccountChanged(account)

	if s.notifier != nil {
		snapshot := account.Clone()
		go s.notifier.StatusChanged(account.ScopeID, snapshot, actorID)
	}
	return nil
}

// resolvePending transitions a pending account to the given status. A second
// call on an already-resolved account fails with INVALID_STATE so callers can
// detect double-clicks.
func (s *Service) resolvePending(ctx context.Context, actorID, scopeID, holderID string, action string, to entities.AccountStatus) (*entities.Account, error) {
	if err := s.authorize(actorID, scopeID, action); err != nil {
		return nil, err
	}

	release := s.locks.Acquire(accountRepo.LockKey(scopeID, holderID))
	defer release()

	acct, err := s.getAccount(ctx, scopeID, holderID)
	if err != nil {
		return nil, err
	}
	if acct.Status != entities.StatusPending {
		return nil, types.NewBankError(types.ErrInvalidState,
			fmt.Sprintf("cannot %s an account with status %q", action, acct.Status))
	}

	acct.Status = to
	if err := s.save(ctx, acct, actorID); err != nil {
		return nil, err
	}

	log.Printf("[APPROVAL] %s %s account %s/%s", actorID, action, scopeID, holderID)
	return acct, nil
}

// Approve transitions a pending account to approved
func (s *Service) Approve(ctx context.Context, actorID, scopeID, holderID string) (*entities.Account, error) {
	return s.resolvePending(ctx, actorID, scopeID, holderID, ActionApprove, entities.StatusApproved)
}

// Reject transitions a pending account to rejected
func (s *Service) Reject(ctx context.Context, actorID, scopeID, holderID string) (*entities.Account, error) {
	return s.resolvePending(ctx, actorID, scopeID, holderID, ActionReject, entities.StatusRejected)
}

// Blacklist places an account on the blacklist from any non-blacklisted
// status. Blacklisting implies freezing and is irreversible here.
func (s *Service) Blacklist(ctx context.Context, actorID, scopeID, holderID string) (*entities.Account, error) {
	if err := s.authorize(actorID, scopeID, ActionBlacklist); err != nil {
		return nil, err
	}

	release := s.locks.Acquire(accountRepo.LockKey(scopeID, holderID))
	defer release()

	acct, err := s.getAccount(ctx, scopeID, holderID)
	if err != nil {
		return nil, err
	}
	if acct.Status == entities.StatusBlacklisted {
		return nil, types.NewBankError(types.ErrInvalidState, "account is already blacklisted")
	}

	acct.Status = entities.StatusBlacklisted
	acct.Frozen = true
	if err := s.save(ctx, acct, actorID); err != nil {
		return nil, err
	}

	log.Printf("[APPROVAL] %s blacklisted account %s/%s", actorID, scopeID, holderID)
	return acct, nil
}

// SetFrozen toggles the frozen flag. Freezing an unapproved account is a
// valid guard for future approval; a blacklisted account's frozen flag
// cannot be cleared.
func (s *Service) SetFrozen(ctx context.Context, actorID, scopeID, holderID string, frozen bool) (*entities.Account, error) {
	if err := s.authorize(actorID, scopeID, ActionFreeze); err != nil {
		return nil, err
	}

	release := s.locks.Acquire(accountRepo.LockKey(scopeID, holderID))
	defer release()

	acct, err := s.getAccount(ctx, scopeID, holderID)
	if err != nil {
		return nil, err
	}
	if acct.Status == entities.StatusBlacklisted && !frozen {
		return nil, types.NewBankError(types.ErrInvalidState, "a blacklisted account cannot be unfrozen")
	}

	acct.Frozen = frozen
	if err := s.save(ctx, acct, actorID); err != nil {
		return nil, err
	}
	return acct, nil
}

// SetRank assigns a rank from the scope's ladder
func (s *Service) SetRank(ctx context.Context, actorID, scopeID, holderID, rank string) (*entities.Account, error) {
	if err := s.authorize(actorID, scopeID, ActionPromote); err != nil {
		return nil, err
	}

	cfg := s.resolver.Resolve(ctx, scopeID)
	if !cfg.HasRank(rank) {
		return nil, types.NewValidationError("rank", "rank is not part of the scope's ladder")
	}

	release := s.locks.Acquire(accountRepo.LockKey(scopeID, holderID))
	defer release()

	acct, err := s.getAccount(ctx, scopeID, holderID)
	if err != nil {
		return nil, err
	}

	acct.Rank = rank
	if err := s.save(ctx, acct, actorID); err != nil {
		return nil, err
	}

	log.Printf("[APPROVAL] %s set rank of %s/%s to %s", actorID, scopeID, holderID, rank)
	return acct, nil
}
