package discord

import (
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atkhates/BANK-LOMITA/internal/types"
	"github.com/atkhates/BANK-LOMITA/pkg/entities"
	configSvc "github.com/atkhates/BANK-LOMITA/pkg/services/scopeconfig"
)

func testConfig() *entities.ScopeConfig {
	cfg := configSvc.Defaults()
	return &cfg
}

func TestErrorMessageMapping(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		contains string
	}{
		{"validation", types.NewValidationError("age", "age must be between 16 and 65"), "Invalid input"},
		{"pending duplicate", types.NewDuplicateApplicationError("pending"), "waiting for review"},
		{"approved duplicate", types.NewDuplicateApplicationError("approved"), "already have an account"},
		{"blacklisted duplicate", types.NewDuplicateApplicationError("blacklisted"), "blacklisted"},
		{"insufficient funds", types.NewBankError(types.ErrInsufficientFunds, "balance too low"), "Insufficient funds"},
		{"daily limit", types.NewBankError(types.ErrDailyLimitExceeded, "limit hit"), "Daily limit"},
		{"permission", types.NewBankError(types.ErrPermissionDenied, "nope"), "not allowed"},
		{"not found", types.NewBankError(types.ErrNotFound, "missing"), "/register"},
		{"unknown error", errors.New("boom"), "Something went wrong"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Contains(t, errorMessage(tc.err), tc.contains)
		})
	}
}

func TestErrorMessageHidesInternals(t *testing.T) {
	err := types.WrapError(types.ErrDatabaseError, "error saving account", errors.New("sqlite: disk I/O error"))

	msg := errorMessage(err)
	assert.NotContains(t, msg, "sqlite", "internal detail must not reach users")
}

func TestAdminPanelComponentsPerStatus(t *testing.T) {
	pending := &entities.Account{HolderID: "u1", Status: entities.StatusPending}
	rows := adminPanelComponents(pending)
	ids := collectCustomIDs(rows)
	assert.Contains(t, ids, prefixApprove+"u1")
	assert.Contains(t, ids, prefixReject+"u1")
	assert.Contains(t, ids, prefixFreeze+"u1")

	approved := &entities.Account{HolderID: "u1", Status: entities.StatusApproved}
	ids = collectCustomIDs(adminPanelComponents(approved))
	assert.NotContains(t, ids, prefixApprove+"u1", "approve only offered on pending accounts")
	assert.Contains(t, ids, prefixBlacklist+"u1")
	assert.Contains(t, ids, prefixAddBalance+"u1")

	frozen := &entities.Account{HolderID: "u1", Status: entities.StatusApproved, Frozen: true}
	ids = collectCustomIDs(adminPanelComponents(frozen))
	assert.Contains(t, ids, prefixUnfreeze+"u1")
	assert.NotContains(t, ids, prefixFreeze+"u1")

	blacklisted := &entities.Account{HolderID: "u1", Status: entities.StatusBlacklisted, Frozen: true}
	ids = collectCustomIDs(adminPanelComponents(blacklisted))
	assert.NotContains(t, ids, prefixBlacklist+"u1", "already blacklisted")
	assert.NotContains(t, ids, prefixUnfreeze+"u1", "blacklisted accounts stay frozen")
	assert.Contains(t, ids, prefixPromote+"u1", "rank can still be managed")
}

func collectCustomIDs(rows []discordgo.MessageComponent) []string {
	var ids []string
	for _, row := range rows {
		actionsRow, ok := row.(discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, comp := range actionsRow.Components {
			if btn, ok := comp.(discordgo.Button); ok {
				ids = append(ids, btn.CustomID)
			}
		}
	}
	return ids
}

func TestRegListEmbedGroupsByStatus(t *testing.T) {
	accounts := []*entities.Account{
		{HolderID: "u1", DisplayName: "One", Status: entities.StatusPending},
		{HolderID: "u2", DisplayName: "Two", Status: entities.StatusPending},
		{HolderID: "u3", DisplayName: "Three", Status: entities.StatusApproved},
	}

	embed := regListEmbed(accounts, testConfig())

	require.Len(t, embed.Fields, 2)
	assert.Equal(t, "Pending (2)", embed.Fields[0].Name)
	assert.Contains(t, embed.Fields[0].Value, "<@u1>")
	assert.Equal(t, "Approved (1)", embed.Fields[1].Name)
}

func TestRegListEmbedEmpty(t *testing.T) {
	embed := regListEmbed(nil, testConfig())

	assert.Empty(t, embed.Fields)
	assert.Equal(t, "No registrations yet.", embed.Description)
}

func TestReviewEmbedCarriesApplicationFields(t *testing.T) {
	acct := &entities.Account{
		HolderID:      "u1",
		DisplayName:   "Jane Doe",
		Country:       "Lomita",
		Age:           21,
		BirthDate:     "2004-01-31",
		MonthlyIncome: 2500,
		Status:        entities.StatusPending,
		Category:      entities.CategoryFaction,
		FactionName:   "Ballas",
	}

	embed := reviewEmbed(acct, testConfig())

	assert.Contains(t, embed.Description, "<@u1>")
	values := map[string]string{}
	for _, f := range embed.Fields {
		values[f.Name] = f.Value
	}
	assert.Equal(t, "Jane Doe", values["Name"])
	assert.Equal(t, "2004-01-31", values["Birth date"])
	assert.Equal(t, "faction (Ballas)", values["Category"])
}

func TestAccountEmbedShowsRecentActivity(t *testing.T) {
	acct := &entities.Account{
		HolderID:    "u1",
		DisplayName: "Jane Doe",
		Country:     "Lomita",
		Status:      entities.StatusApproved,
		Balance:     750,
		Rank:        "Silver",
	}
	recent := []*entities.TransactionRecord{
		{Type: entities.TransactionTypeWithdraw, Amount: 100, Fee: 5},
	}

	embed := accountEmbed(acct, testConfig(), recent)

	last := embed.Fields[len(embed.Fields)-1]
	assert.Equal(t, "Recent activity", last.Name)
	assert.Contains(t, last.Value, "WITHDRAW")
	assert.Contains(t, last.Value, "fee 5 $")
}
