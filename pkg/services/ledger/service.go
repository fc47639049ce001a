package ledger

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/atkhates/BANK-LOMITA/internal/types"
	"github.com/atkhates/BANK-LOMITA/pkg/entities"
	accountRepo "github.com/atkhates/BANK-LOMITA/pkg/repositories/account"
	configSvc "github.com/atkhates/BANK-LOMITA/pkg/services/scopeconfig"
	"github.com/atkhates/BANK-LOMITA/pkg/services/mirror"
)

// ActionAdjust is the authorization key for admin-initiated balance changes
const ActionAdjust = "addBalance"

// AdjustDirection tells AdminAdjust which way the balance moves
type AdjustDirection string

const (
	AdjustCredit AdjustDirection = "credit"
	AdjustDebit  AdjustDirection = "debit"
)

//go:generate mockgen -source=$GOFILE -destination=mock/mock.go -package=mock_ledger
// Authorizer answers whether an actor may perform an administrative action
type Authorizer interface {
	CanPerform(actorID, scopeID, action string) bool
}

// Service implements the balance-mutation operations: deposits, withdrawals,
// transfers and administrative adjustments. Every read-modify-write cycle on
// an account runs under that holder's lock; a transfer holds both holders'
// locks for its whole duration.
type Service struct {
	repo     accountRepo.Repository
	resolver *configSvc.Resolver
	auth     Authorizer
	mirror   mirror.Sink
	locks    *accountRepo.LockTable

	// isSystem flags identities that may never receive transfers (bots,
	// the application itself). Set by the platform adapter.
	isSystem func(holderID string) bool

	now func() time.Time
}

// NewService creates a new ledger engine
func NewService(repo accountRepo.Repository, resolver *configSvc.Resolver, auth Authorizer, sink mirror.Sink) *Service {
	if sink == nil {
		sink = mirror.NopSink{}
	}
	return &Service{
		repo:     repo,
		resolver: resolver,
		auth:     auth,
		mirror:   sink,
		locks:    accountRepo.NewLockTable(),
		now:      time.Now,
	}
}

// SetLockTable replaces the per-holder lock table. Every service that writes
// whole account records to the same store must share one table, or a
// lifecycle write can overwrite a balance a concurrent operation just moved.
func (s *Service) SetLockTable(locks *accountRepo.LockTable) {
	s.locks = locks
}

// SetSystemIdentityCheck installs the predicate flagging identities that can
// never hold or receive funds.
func (s *Service) SetSystemIdentityCheck(fn func(holderID string) bool) {
	s.isSystem = fn
}

// SetAuthorizer installs the authorization check guarding admin operations
func (s *Service) SetAuthorizer(a Authorizer) {
	s.auth = a
}

func fee(amount, pct int64) int64 {
	return amount * pct / 100
}

func validateAmount(amount int64) error {
	if amount <= 0 {
		return types.NewValidationError("amount", "amount must be an integer greater than zero")
	}
	return nil
}

// eligibility reports exactly which gate blocks the account, so the caller
// can tell a frozen account apart from an unapproved one.
func eligibility(acct *entities.Account) error {
	if acct.Status != entities.StatusApproved {
		return types.NewBankError(types.ErrAccountNotEligible,
			fmt.Sprintf("account status is %q, not approved", acct.Status))
	}
	if acct.Frozen {
		return types.NewBankError(types.ErrAccountNotEligible, "account is frozen")
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

// checkDailyLimit enforces the scope's cap on cumulative outgoing spend
func (s *Service) checkDailyLimit(cfg *entities.ScopeConfig, acct *entities.Account, total int64, day string) error {
	if cfg.DailyWithdrawLimit <= 0 {
		return nil
	}
	if acct.SpentToday(day)+total > cfg.DailyWithdrawLimit {
		return types.NewBankError(types.ErrDailyLimitExceeded,
			fmt.Sprintf("daily outgoing limit of %d %s exceeded", cfg.DailyWithdrawLimit, cfg.CurrencySymbol))
	}
	return nil
}

// record persists the transaction and hands the results to the mirror
func (s *Service) record(ctx context.Context, rec *entities.TransactionRecord, touched ...*entities.Account) error {
	if err := s.repo.AddTransaction(ctx, rec); err != nil {
		return types.WrapError(types.ErrDatabaseError, "error recording transaction", err)
	}
	for _, acct := range touched {
		s.mirror.OnAccountChanged(acct)
	}
	s.mirror.OnTransaction(rec)
	return nil
}

// restore writes pre-mutation snapshots back after a failed commit. Balance
// deltas must never stay durable without their transaction record; a failure
// here leaves exactly that state, so it is logged loudly.
func (s *Service) restore(ctx context.Context, snapshots ...*entities.Account) {
	for _, snap := range snapshots {
		if err := s.repo.SaveAccount(ctx, snap); err != nil {
			log.Printf("[LEDGER] CRITICAL: failed to roll back %s/%s after a failed commit: %v",
				snap.ScopeID, snap.HolderID, err)
		}
	}
}

// Deposit credits the full amount to the holder's balance. The fee is
// computed and recorded for accounting but not subtracted from the credit:
// admin-initiated deposits add the whole amount.
func (s *Service) Deposit(ctx context.Context, actorID, scopeID, holderID string, amount int64) (*entities.Account, *entities.TransactionRecord, error) {
	if s.auth != nil && !s.auth.CanPerform(actorID, scopeID, ActionAdjust) {
		return nil, nil, types.NewBankError(types.ErrPermissionDenied, "actor is not allowed to deposit")
	}
	if err := validateAmount(amount); err != nil {
		return nil, nil, err
	}

	release := s.locks.Acquire(accountRepo.LockKey(scopeID, holderID))
	defer release()

	acct, err := s.getAccount(ctx, scopeID, holderID)
	if err != nil {
		return nil, nil, err
	}
	if err := eligibility(acct); err != nil {
		return nil, nil, err
	}

	cfg := s.resolver.Resolve(ctx, scopeID)
	depositFee := fee(amount, cfg.Fees.DepositPct)

	prior := acct.Clone()
	acct.Balance += amount
	if err := s.repo.SaveAccount(ctx, acct); err != nil {
		return nil, nil, types.WrapError(types.ErrDatabaseError, "error saving account", err)
	}

	rec := &entities.TransactionRecord{
		ScopeID:   scopeID,
		Type:      entities.TransactionTypeDeposit,
		To:        holderID,
		Amount:    amount,
		Fee:       depositFee,
		Timestamp: s.now(),
	}
	if err := s.record(ctx, rec, acct); err != nil {
		s.restore(ctx, prior)
		return nil, nil, err
	}

	log.Printf("[LEDGER] %s deposited %d to %s/%s (fee %d, balance %d)",
		actorID, amount, scopeID, holderID, depositFee, acct.Balance)
	return acct, rec, nil
}

// Withdraw debits amount plus fee from the holder's balance, subject to the
// scope's daily outgoing limit.
func (s *Service) Withdraw(ctx context.Context, scopeID, holderID string, amount int64) (*entities.Account, *entities.TransactionRecord, error) {
	if err := validateAmount(amount); err != nil {
		return nil, nil, err
	}

	release := s.locks.Acquire(accountRepo.LockKey(scopeID, holderID))
	defer release()

	acct, err := s.getAccount(ctx, scopeID, holderID)
	if err != nil {
		return nil, nil, err
	}
	if err := eligibility(acct); err != nil {
		return nil, nil, err
	}

	cfg := s.resolver.Resolve(ctx, scopeID)
	withdrawFee := fee(amount, cfg.Fees.WithdrawPct)
	total := amount + withdrawFee

	if acct.Balance < total {
		return nil, nil, types.NewBankError(types.ErrInsufficientFunds,
			fmt.Sprintf("balance %d is less than amount plus fee (%d)", acct.Balance, total))
	}

	day := entities.DayKey(s.now())
	if err := s.checkDailyLimit(cfg, acct, total, day); err != nil {
		return nil, nil, err
	}

	prior := acct.Clone()
	acct.Balance -= total
	acct.AddDailySpend(day, total)
	if err := s.repo.SaveAccount(ctx, acct); err != nil {
		return nil, nil, types.WrapError(types.ErrDatabaseError, "error saving account", err)
	}

	rec := &entities.TransactionRecord{
		ScopeID:   scopeID,
		Type:      entities.TransactionTypeWithdraw,
		From:      holderID,
		Amount:    amount,
		Fee:       withdrawFee,
		Timestamp: s.now(),
	}
	if err := s.record(ctx, rec, acct); err != nil {
		s.restore(ctx, prior)
		return nil, nil, err
	}

	log.Printf("[LEDGER] %s/%s withdrew %d (fee %d, balance %d)",
		scopeID, holderID, amount, withdrawFee, acct.Balance)
	return acct, rec, nil
}

// Transfer debits amount plus fee from the sender and credits exactly amount
// to the recipient; the fee is destroyed. Both holders stay locked until the
// transfer fully commits, so no other operation can observe the sender
// debited without the recipient credited.
func (s *Service) Transfer(ctx context.Context, scopeID, fromID, toID string, amount int64) (*entities.TransactionRecord, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	if fromID == toID {
		return nil, types.NewValidationError("to", "cannot transfer to yourself")
	}
	if s.isSystem != nil {
		if s.isSystem(fromID) {
			return nil, types.NewValidationError("from", "a system identity cannot send transfers")
		}
		if s.isSystem(toID) {
			return nil, types.NewValidationError("to", "cannot transfer to a system identity")
		}
	}

	release := s.locks.Acquire(accountRepo.LockKey(scopeID, fromID), accountRepo.LockKey(scopeID, toID))
	defer release()

	sender, err := s.getAccount(ctx, scopeID, fromID)
	if err != nil {
		return nil, err
	}
	recipient, err := s.getAccount(ctx, scopeID, toID)
	if err != nil {
		return nil, err
	}
	if err := eligibility(sender); err != nil {
		return nil, err
	}
	if err := eligibility(recipient); err != nil {
		return nil, err
	}

	cfg := s.resolver.Resolve(ctx, scopeID)
	transferFee := fee(amount, cfg.Fees.TransferPct)
	total := amount + transferFee

	if sender.Balance < total {
		return nil, types.NewBankError(types.ErrInsufficientFunds,
			fmt.Sprintf("balance %d is less than amount plus fee (%d)", sender.Balance, total))
	}

	day := entities.DayKey(s.now())
	if err := s.checkDailyLimit(cfg, sender, total, day); err != nil {
		return nil, err
	}

	priorSender := sender.Clone()
	priorRecipient := recipient.Clone()

	sender.Balance -= total
	sender.AddDailySpend(day, total)
	if err := s.repo.SaveAccount(ctx, sender); err != nil {
		return nil, types.WrapError(types.ErrDatabaseError, "error saving sender account", err)
	}

	recipient.Balance += amount
	if err := s.repo.SaveAccount(ctx, recipient); err != nil {
		// Roll the debit back so the failed credit is never durably visible
		s.restore(ctx, priorSender)
		return nil, types.WrapError(types.ErrDatabaseError, "error saving recipient account", err)
	}

	rec := &entities.TransactionRecord{
		ScopeID:   scopeID,
		Type:      entities.TransactionTypeTransfer,
		From:      fromID,
		To:        toID,
		Amount:    amount,
		Fee:       transferFee,
		Timestamp: s.now(),
	}
	if err := s.record(ctx, rec, sender, recipient); err != nil {
		s.restore(ctx, priorSender, priorRecipient)
		return nil, err
	}

	log.Printf("[LEDGER] %s transferred %d to %s in scope %s (fee %d)",
		fromID, amount, toID, scopeID, transferFee)
	return rec, nil
}

// AdminAdjust moves a holder's balance without fees or daily limits. The
// account must still be eligible and the resulting balance non-negative.
func (s *Service) AdminAdjust(ctx context.Context, actorID, scopeID, holderID string, amount int64, direction AdjustDirection) (*entities.Account, *entities.TransactionRecord, error) {
	if s.auth != nil && !s.auth.CanPerform(actorID, scopeID, ActionAdjust) {
		return nil, nil, types.NewBankError(types.ErrPermissionDenied, "actor is not allowed to adjust balances")
	}
	if err := validateAmount(amount); err != nil {
		return nil, nil, err
	}
	if direction != AdjustCredit && direction != AdjustDebit {
		return nil, nil, types.NewValidationError("direction", "direction must be credit or debit")
	}

	release := s.locks.Acquire(accountRepo.LockKey(scopeID, holderID))
	defer release()

	acct, err := s.getAccount(ctx, scopeID, holderID)
	if err != nil {
		return nil, nil, err
	}
	if err := eligibility(acct); err != nil {
		return nil, nil, err
	}

	prior := acct.Clone()
	if direction == AdjustDebit {
		if acct.Balance < amount {
			return nil, nil, types.NewBankError(types.ErrInsufficientFunds,
				fmt.Sprintf("balance %d is less than the debit amount %d", acct.Balance, amount))
		}
		acct.Balance -= amount
	} else {
		acct.Balance += amount
	}

	if err := s.repo.SaveAccount(ctx, acct); err != nil {
		return nil, nil, types.WrapError(types.ErrDatabaseError, "error saving account", err)
	}

	rec := &entities.TransactionRecord{
		ScopeID:   scopeID,
		Type:      entities.TransactionTypeAdminAdjust,
		Amount:    amount,
		Timestamp: s.now(),
	}
	if direction == AdjustDebit {
		rec.From = holderID
	} else {
		rec.To = holderID
	}
	if err := s.record(ctx, rec, acct); err != nil {
		s.restore(ctx, prior)
		return nil, nil, err
	}

	log.Printf("[LEDGER] %s adjusted %s/%s by %d (%s, balance %d)",
		actorID, scopeID, holderID, amount, direction, acct.Balance)
	return acct, rec, nil
}

// RecentTransactions returns the latest records touching a holder
func (s *Service) RecentTransactions(ctx context.Context, scopeID, holderID string, limit int) ([]*entities.TransactionRecord, error) {
	return s.repo.GetTransactions(ctx, scopeID, holderID, limit)
}
