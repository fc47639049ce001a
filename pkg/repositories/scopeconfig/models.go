package scopeconfig

import "github.com/atkhates/BANK-LOMITA/pkg/entities"

// ScopeOverride holds the fields a scope has explicitly set. Nil or empty
// fields inherit the global defaults at resolve time. The JSON keys match the
// original deployment's per-guild config file so existing files keep working.
type ScopeOverride struct {
	CurrencySymbol     string                `json:"CURRENCY_SYMBOL,omitempty"`
	MinimumIncome      *int64                `json:"MIN_DEPOSIT,omitempty"`
	RankLadder         []string              `json:"ranks,omitempty"`
	Fees               *entities.FeeSchedule `json:"fees,omitempty"`
	DailyWithdrawLimit *int64                `json:"DAILY_WITHDRAW_LIMIT,omitempty"`
	Factions           []string              `json:"factions,omitempty"`

	RegisterChannelID string `json:"REGISTER_CHANNEL_ID,omitempty"`
	ReviewChannelID   string `json:"ADMIN_CHANNEL_ID,omitempty"`
	RegListChannelID  string `json:"REGLIST_CHANNEL_ID,omitempty"`
	LogChannelID      string `json:"ADMIN_LOG_CHANNEL_ID,omitempty"`
	TxLogChannelID    string `json:"TRANSACTION_LOG_CHANNEL_ID,omitempty"`
	AdminRoleID       string `json:"ADMIN_ROLE_ID,omitempty"`
}

// Clone returns a deep copy of the override
func (o *ScopeOverride) Clone() *ScopeOverride {
	cp := *o
	if o.MinimumIncome != nil {
		v := *o.MinimumIncome
		cp.MinimumIncome = &v
	}
	if o.DailyWithdrawLimit != nil {
		v := *o.DailyWithdrawLimit
		cp.DailyWithdrawLimit = &v
	}
	if o.Fees != nil {
		f := *o.Fees
		cp.Fees = &f
	}
	cp.RankLadder = append([]string(nil), o.RankLadder...)
	cp.Factions = append([]string(nil), o.Factions...)
	return &cp
}
