package registration

import (
	"context"
	"errors"
	"log"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/atkhates/BANK-LOMITA/internal/types"
	"github.com/atkhates/BANK-LOMITA/pkg/entities"
	accountRepo "github.com/atkhates/BANK-LOMITA/pkg/repositories/account"
	configSvc "github.com/atkhates/BANK-LOMITA/pkg/services/scopeconfig"
	"github.com/atkhates/BANK-LOMITA/pkg/services/mirror"
)

var birthDatePattern = regexp.MustCompile(`^[0-9]{4}-[0-9]{2}-[0-9]{2}$`)

// Notifier receives registration-submitted events for the review surface.
// Delivery is fire-and-forget from the workflow's perspective.
type Notifier interface {
	RegistrationSubmitted(scopeID string, account *entities.Account)
}

// Fields is the raw registration form input
type Fields struct {
	DisplayName   string
	Country       string
	Age           int
	BirthDate     string
	MonthlyIncome int64
}

// Service manages registration drafts and commits them as pending accounts.
// Drafts never leak across holders: each is keyed by scope and holder ID.
type Service struct {
	repo     accountRepo.Repository
	resolver *configSvc.Resolver
	notifier Notifier
	mirror   mirror.Sink
	locks    *accountRepo.LockTable

	mu     sync.Mutex
	drafts map[string]*entities.RegistrationDraft
}

// NewService creates a new registration workflow
func NewService(repo accountRepo.Repository, resolver *configSvc.Resolver, notifier Notifier, sink mirror.Sink) *Service {
	if sink == nil {
		sink = mirror.NopSink{}
	}
	return &Service{
		repo:     repo,
		resolver: resolver,
		notifier: notifier,
		mirror:   sink,
		locks:    accountRepo.NewLockTable(),
		drafts:   make(map[string]*entities.RegistrationDraft),
	}
}

// SetLockTable replaces the per-holder lock table with one shared across
// every service writing to the same account store.
func (s *Service) SetLockTable(locks *accountRepo.LockTable) {
	s.locks = locks
}

// SetNotifier installs the review-surface notifier. The platform adapter
// calls this once its session exists; until then submissions go unannounced.
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

func draftKey(scopeID, holderID string) string {
	return scopeID + "|" + holderID
}

// checkDuplicate enforces one-active-application-per-holder. Re-application
// is permitted only from rejected.
func (s *Service) checkDuplicate(ctx context.Context, scopeID, holderID string) (*entities.Account, error) {
	existing, err := s.repo.GetAccount(ctx, scopeID, holderID)
	if err != nil {
		if errors.Is(err, accountRepo.ErrAccountNotFound) {
			return nil, nil
		}
		return nil, types.WrapError(types.ErrDatabaseError, "error looking up existing account", err)
	}
	if existing.Status != entities.StatusRejected {
		return nil, types.NewDuplicateApplicationError(string(existing.Status))
	}
	return existing, nil
}

// StartDraft validates the form fields and stages a new draft
func (s *Service) StartDraft(ctx context.Context, scopeID, holderID string, fields Fields) (*entities.RegistrationDraft, error) {
	cfg := s.resolver.Resolve(ctx, scopeID)

	if strings.TrimSpace(fields.DisplayName) == "" {
		return nil, types.NewValidationError("displayName", "display name must not be empty")
	}
	if strings.TrimSpace(fields.Country) == "" {
		return nil, types.NewValidationError("country", "country must not be empty")
	}
	if fields.Age < 16 || fields.Age > 65 {
		return nil, types.NewValidationError("age", "age must be between 16 and 65")
	}
	if !birthDatePattern.MatchString(fields.BirthDate) {
		return nil, types.NewValidationError("birthDate", "birth date must match YYYY-MM-DD")
	}
	if fields.MonthlyIncome <= 0 {
		return nil, types.NewValidationError("monthlyIncome", "monthly income must be greater than zero")
	}
	if fields.MonthlyIncome < cfg.MinimumIncome {
		return nil, types.NewValidationError("monthlyIncome", "monthly income is below the scope minimum")
	}

	if _, err := s.checkDuplicate(ctx, scopeID, holderID); err != nil {
		return nil, err
	}

	draft := &entities.RegistrationDraft{
		HolderID:      holderID,
		ScopeID:       scopeID,
		DisplayName:   strings.TrimSpace(fields.DisplayName),
		Country:       strings.TrimSpace(fields.Country),
		Age:           fields.Age,
		BirthDate:     fields.BirthDate,
		MonthlyIncome: fields.MonthlyIncome,
		Stage:         entities.DraftCollectingFields,
		StartedAt:     time.Now(),
	}

	s.mu.Lock()
	s.drafts[draftKey(scopeID, holderID)] = draft
	s.mu.Unlock()

	return draft, nil
}

// SetCategory attaches the category (and faction, when applicable) to the draft
func (s *Service) SetCategory(ctx context.Context, scopeID, holderID string, category entities.AccountCategory, factionName string) (*entities.RegistrationDraft, error) {
	switch category {
	case entities.CategoryCivilian, entities.CategoryGang, entities.CategoryFaction:
	default:
		return nil, types.NewValidationError("category", "unknown category")
	}

	if category == entities.CategoryFaction {
		cfg := s.resolver.Resolve(ctx, scopeID)
		if !cfg.HasFaction(factionName) {
			return nil, types.NewValidationError("factionName", "faction is not known to this scope")
		}
	} else {
		factionName = ""
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	draft, exists := s.drafts[draftKey(scopeID, holderID)]
	if !exists {
		return nil, types.NewBankError(types.ErrNotFound, "no registration draft in progress")
	}

	draft.Category = category
	draft.FactionName = factionName
	draft.Stage = entities.DraftCategorySelected
	return draft, nil
}

// Commit converts the draft into a pending account and destroys the draft.
// On re-application from rejected, the prior rank and balance carry over;
// only status, category, and the submitted fields are refreshed.
func (s *Service) Commit(ctx context.Context, scopeID, holderID string) (*entities.Account, error) {
	s.mu.Lock()
	draft, exists := s.drafts[draftKey(scopeID, holderID)]
	s.mu.Unlock()

	if !exists {
		return nil, types.NewBankError(types.ErrNotFound, "no registration draft in progress")
	}
	if draft.Stage != entities.DraftCategorySelected {
		return nil, types.NewValidationError("category", "category must be selected before submitting")
	}

	// The duplicate re-check and the save form one get-then-save cycle on the
	// account record; holding the holder's lock keeps a concurrent lifecycle
	// or ledger write from landing in between.
	release := s.locks.Acquire(accountRepo.LockKey(scopeID, holderID))
	defer release()

	// Re-check under current store state; the draft may have outlived an
	// approval that happened in between.
	existing, err := s.checkDuplicate(ctx, scopeID, holderID)
	if err != nil {
		return nil, err
	}

	cfg := s.resolver.Resolve(ctx, scopeID)

	account := &entities.Account{
		HolderID:      holderID,
		ScopeID:       scopeID,
		DisplayName:   draft.DisplayName,
		Country:       draft.Country,
		Age:           draft.Age,
		BirthDate:     draft.BirthDate,
		MonthlyIncome: draft.MonthlyIncome,
		Rank:          cfg.InitialRank(),
		Balance:       0,
		Status:        entities.StatusPending,
		Category:      draft.Category,
		FactionName:   draft.FactionName,
	}

	if existing != nil {
		account.Rank = existing.Rank
		account.Balance = existing.Balance
		account.CreatedAt = existing.CreatedAt
		account.DailySpend = existing.DailySpend
	}

	if err := s.repo.SaveAccount(ctx, account); err != nil {
		return nil, types.WrapError(types.ErrDatabaseError, "error saving pending account", err)
	}

	s.mu.Lock()
	delete(s.drafts, draftKey(scopeID, holderID))
	s.mu.Unlock()

	log.Printf("[REGISTRATION] Submitted application for %s in scope %s (category=%s)",
		holderID, scopeID, account.Category)

	s.mirror.OnAccountChanged(account)

	// Fire-and-forget: the review surface renders the card on its own time
	if s.notifier != nil {
		snapshot := account.Clone()
		go s.notifier.RegistrationSubmitted(scopeID, snapshot)
	}

	return account, nil
}

// Draft returns the in-progress draft for a holder, if any
func (s *Service) Draft(scopeID, holderID string) (*entities.RegistrationDraft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	draft, exists := s.drafts[draftKey(scopeID, holderID)]
	return draft, exists
}

// Abandon silently discards the draft with no persisted trace
func (s *Service) Abandon(scopeID, holderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, draftKey(scopeID, holderID))
}

// ExpireStale drops drafts older than maxAge and reports how many were
// removed. Run periodically so abandoned forms don't pile up.
func (s *Service) ExpireStale(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	s.mu.Lock()
	defer s.mu.Unlock()

	expired := 0
	for key, draft := range s.drafts {
		if draft.StartedAt.Before(cutoff) {
			delete(s.drafts, key)
			expired++
		}
	}
	if expired > 0 {
		log.Printf("[REGISTRATION] Expired %d stale drafts", expired)
	}
	return expired
}
