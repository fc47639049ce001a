package scopeconfig

import (
	"context"
	"errors"
	"log"

	"github.com/atkhates/BANK-LOMITA/pkg/entities"
	configRepo "github.com/atkhates/BANK-LOMITA/pkg/repositories/scopeconfig"
)

// Defaults returns the immutable global defaults every scope inherits from.
func Defaults() entities.ScopeConfig {
	return entities.ScopeConfig{
		CurrencySymbol: "$",
		MinimumIncome:  0,
		RankLadder:     []string{"Bronze", "Silver", "Gold"},
		Fees: entities.FeeSchedule{
			DepositPct:  0,
			TransferPct: 0,
			WithdrawPct: 0,
		},
		DailyWithdrawLimit: 0, // unlimited
	}
}

// Resolver resolves the effective configuration for a scope by merging its
// stored override over the global defaults.
type Resolver struct {
	store    configRepo.Store
	defaults entities.ScopeConfig
}

// NewResolver creates a new config resolver
func NewResolver(store configRepo.Store) *Resolver {
	return &Resolver{
		store:    store,
		defaults: Defaults(),
	}
}

// Resolve returns the effective config for a scope. Resolution never fails:
// if the override store is unavailable the pure defaults are returned, so
// configuration lookup can never block a core operation.
func (r *Resolver) Resolve(ctx context.Context, scopeID string) *entities.ScopeConfig {
	cfg := r.defaults
	cfg.RankLadder = append([]string(nil), r.defaults.RankLadder...)

	override, err := r.store.Get(ctx, scopeID)
	if err != nil {
		if !errors.Is(err, configRepo.ErrOverrideNotFound) {
			log.Printf("[CONFIG] Falling back to defaults for scope %s: %v", scopeID, err)
		}
		return &cfg
	}

	applyOverride(&cfg, override)
	return &cfg
}

// SetOverride is the single authoritative write path for scope configuration.
// It loads the current override, applies the mutation, persists it, and
// returns the newly effective config.
func (r *Resolver) SetOverride(ctx context.Context, scopeID string, mutate func(*configRepo.ScopeOverride)) (*entities.ScopeConfig, error) {
	override, err := r.store.Get(ctx, scopeID)
	if err != nil {
		if !errors.Is(err, configRepo.ErrOverrideNotFound) {
			return nil, err
		}
		override = &configRepo.ScopeOverride{}
	}

	mutate(override)
	if err := r.store.Save(ctx, scopeID, override); err != nil {
		return nil, err
	}

	return r.Resolve(ctx, scopeID), nil
}

func applyOverride(cfg *entities.ScopeConfig, o *configRepo.ScopeOverride) {
	if o.CurrencySymbol != "" {
		cfg.CurrencySymbol = o.CurrencySymbol
	}
	if o.MinimumIncome != nil {
		cfg.MinimumIncome = *o.MinimumIncome
	}
	if len(o.RankLadder) > 0 {
		cfg.RankLadder = append([]string(nil), o.RankLadder...)
	}
	if o.Fees != nil {
		cfg.Fees = *o.Fees
	}
	if o.DailyWithdrawLimit != nil {
		cfg.DailyWithdrawLimit = *o.DailyWithdrawLimit
	}
	if len(o.Factions) > 0 {
		cfg.Factions = append([]string(nil), o.Factions...)
	}
	if o.RegisterChannelID != "" {
		cfg.RegisterChannelID = o.RegisterChannelID
	}
	if o.ReviewChannelID != "" {
		cfg.ReviewChannelID = o.ReviewChannelID
	}
	if o.RegListChannelID != "" {
		cfg.RegListChannelID = o.RegListChannelID
	}
	if o.LogChannelID != "" {
		cfg.LogChannelID = o.LogChannelID
	}
	if o.TxLogChannelID != "" {
		cfg.TxLogChannelID = o.TxLogChannelID
	}
	if o.AdminRoleID != "" {
		cfg.AdminRoleID = o.AdminRoleID
	}
}
