package scopeconfig

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atkhates/BANK-LOMITA/pkg/entities"
	configRepo "github.com/atkhates/BANK-LOMITA/pkg/repositories/scopeconfig"
)

// failingStore errors on every call
type failingStore struct{}

func (failingStore) Get(ctx context.Context, scopeID string) (*configRepo.ScopeOverride, error) {
	return nil, errors.New("store unavailable")
}

func (failingStore) Save(ctx context.Context, scopeID string, override *configRepo.ScopeOverride) error {
	return errors.New("store unavailable")
}

func (failingStore) Close() error { return nil }

func TestResolveDefaultsWhenNoOverride(t *testing.T) {
	resolver := NewResolver(configRepo.NewMemoryStore())

	cfg := resolver.Resolve(context.Background(), "guild-1")

	assert.Equal(t, "$", cfg.CurrencySymbol)
	assert.Equal(t, []string{"Bronze", "Silver", "Gold"}, cfg.RankLadder)
	assert.Zero(t, cfg.MinimumIncome)
	assert.Zero(t, cfg.Fees.WithdrawPct)
	assert.Zero(t, cfg.DailyWithdrawLimit)
}

func TestResolveMergesOverrideOverDefaults(t *testing.T) {
	store := configRepo.NewMemoryStore()
	minIncome := int64(1500)
	require.NoError(t, store.Save(context.Background(), "guild-1", &configRepo.ScopeOverride{
		CurrencySymbol: "€",
		MinimumIncome:  &minIncome,
		Fees:           &entities.FeeSchedule{WithdrawPct: 5},
	}))
	resolver := NewResolver(store)

	cfg := resolver.Resolve(context.Background(), "guild-1")

	assert.Equal(t, "€", cfg.CurrencySymbol)
	assert.Equal(t, int64(1500), cfg.MinimumIncome)
	assert.Equal(t, int64(5), cfg.Fees.WithdrawPct)
	// Untouched fields keep their defaults
	assert.Equal(t, []string{"Bronze", "Silver", "Gold"}, cfg.RankLadder)
}

func TestResolveIsolatesScopes(t *testing.T) {
	store := configRepo.NewMemoryStore()
	require.NoError(t, store.Save(context.Background(), "guild-1", &configRepo.ScopeOverride{
		CurrencySymbol: "€",
	}))
	resolver := NewResolver(store)

	assert.Equal(t, "€", resolver.Resolve(context.Background(), "guild-1").CurrencySymbol)
	assert.Equal(t, "$", resolver.Resolve(context.Background(), "guild-2").CurrencySymbol)
}

func TestResolveFallsBackOnStoreFailure(t *testing.T) {
	resolver := NewResolver(failingStore{})

	cfg := resolver.Resolve(context.Background(), "guild-1")

	require.NotNil(t, cfg, "resolution must never fail")
	assert.Equal(t, "$", cfg.CurrencySymbol)
}

func TestSetOverrideRoundTrip(t *testing.T) {
	resolver := NewResolver(configRepo.NewMemoryStore())

	cfg, err := resolver.SetOverride(context.Background(), "guild-1", func(o *configRepo.ScopeOverride) {
		o.RankLadder = []string{"Rookie", "Veteran"}
		o.AdminRoleID = "role-9"
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Rookie", "Veteran"}, cfg.RankLadder)
	assert.Equal(t, "role-9", cfg.AdminRoleID)

	// A later partial update keeps previously set fields
	cfg, err = resolver.SetOverride(context.Background(), "guild-1", func(o *configRepo.ScopeOverride) {
		o.CurrencySymbol = "£"
	})
	require.NoError(t, err)
	assert.Equal(t, "£", cfg.CurrencySymbol)
	assert.Equal(t, []string{"Rookie", "Veteran"}, cfg.RankLadder)
	assert.Equal(t, "role-9", cfg.AdminRoleID)
}

func TestSetOverridePropagatesStoreErrors(t *testing.T) {
	resolver := NewResolver(failingStore{})

	_, err := resolver.SetOverride(context.Background(), "guild-1", func(o *configRepo.ScopeOverride) {
		o.CurrencySymbol = "£"
	})
	assert.Error(t, err)
}

func TestResolveCopiesAreIndependent(t *testing.T) {
	resolver := NewResolver(configRepo.NewMemoryStore())

	first := resolver.Resolve(context.Background(), "guild-1")
	first.RankLadder[0] = "Mutated"

	second := resolver.Resolve(context.Background(), "guild-1")
	assert.Equal(t, "Bronze", second.RankLadder[0], "callers must not share ladder slices")
}
