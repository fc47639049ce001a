package scopeconfig

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atkhates/BANK-LOMITA/pkg/entities"
)

func TestJSONStoreRoundTrip(t *testing.T) {
	store, err := NewJSONStore(filepath.Join(t.TempDir(), "guildConfigs.json"))
	require.NoError(t, err)
	ctx := context.Background()

	minIncome := int64(2000)
	require.NoError(t, store.Save(ctx, "guild-1", &ScopeOverride{
		CurrencySymbol: "€",
		MinimumIncome:  &minIncome,
		Fees:           &entities.FeeSchedule{DepositPct: 1, TransferPct: 2, WithdrawPct: 3},
	}))

	got, err := store.Get(ctx, "guild-1")
	require.NoError(t, err)
	assert.Equal(t, "€", got.CurrencySymbol)
	require.NotNil(t, got.MinimumIncome)
	assert.Equal(t, int64(2000), *got.MinimumIncome)
	require.NotNil(t, got.Fees)
	assert.Equal(t, int64(3), got.Fees.WithdrawPct)
}

func TestJSONStoreMissingScope(t *testing.T) {
	store, err := NewJSONStore(filepath.Join(t.TempDir(), "guildConfigs.json"))
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "guild-1")
	assert.ErrorIs(t, err, ErrOverrideNotFound)
}

func TestJSONStoreReadsLegacyKeys(t *testing.T) {
	// Files written by the original deployment use these exact keys
	path := filepath.Join(t.TempDir(), "guildConfigs.json")
	legacy := `{
	  "guild-1": {
	    "CURRENCY_SYMBOL": "LM$",
	    "MIN_DEPOSIT": 500,
	    "ranks": ["Rookie", "Boss"],
	    "fees": {"DEPOSIT_FEE": 0, "TRANSFER_FEE": 2, "WITHDRAW_FEE": 5}
	  }
	}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0644))

	store, err := NewJSONStore(path)
	require.NoError(t, err)

	got, err := store.Get(context.Background(), "guild-1")
	require.NoError(t, err)
	assert.Equal(t, "LM$", got.CurrencySymbol)
	require.NotNil(t, got.MinimumIncome)
	assert.Equal(t, int64(500), *got.MinimumIncome)
	assert.Equal(t, []string{"Rookie", "Boss"}, got.RankLadder)
	require.NotNil(t, got.Fees)
	assert.Equal(t, int64(2), got.Fees.TransferPct)
}

func TestJSONStoreMultipleScopes(t *testing.T) {
	store, err := NewJSONStore(filepath.Join(t.TempDir(), "guildConfigs.json"))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "guild-1", &ScopeOverride{CurrencySymbol: "€"}))
	require.NoError(t, store.Save(ctx, "guild-2", &ScopeOverride{CurrencySymbol: "£"}))

	one, err := store.Get(ctx, "guild-1")
	require.NoError(t, err)
	two, err := store.Get(ctx, "guild-2")
	require.NoError(t, err)
	assert.Equal(t, "€", one.CurrencySymbol)
	assert.Equal(t, "£", two.CurrencySymbol)
}
