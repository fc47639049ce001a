package entities

// FeeSchedule holds the percentage fees charged on ledger operations.
// Each value is a whole percentage in [0,100].
type FeeSchedule struct {
	DepositPct  int64 `json:"DEPOSIT_FEE"`
	TransferPct int64 `json:"TRANSFER_FEE"`
	WithdrawPct int64 `json:"WITHDRAW_FEE"`
}

// ScopeConfig is the effective configuration for one administrative scope
// (a guild). Values are immutable once resolved; updates go through the
// scope-config store's single write path.
type ScopeConfig struct {
	CurrencySymbol     string      `json:"CURRENCY_SYMBOL"`
	MinimumIncome      int64       `json:"MIN_DEPOSIT"`
	RankLadder         []string    `json:"ranks"`
	Fees               FeeSchedule `json:"fees"`
	DailyWithdrawLimit int64       `json:"DAILY_WITHDRAW_LIMIT"` // 0 = unlimited
	Factions           []string    `json:"factions,omitempty"`

	// Adapter wiring set through /setup; empty until configured.
	RegisterChannelID string `json:"REGISTER_CHANNEL_ID"`
	ReviewChannelID   string `json:"ADMIN_CHANNEL_ID"`
	RegListChannelID  string `json:"REGLIST_CHANNEL_ID"`
	LogChannelID      string `json:"ADMIN_LOG_CHANNEL_ID"`
	TxLogChannelID    string `json:"TRANSACTION_LOG_CHANNEL_ID"`
	AdminRoleID       string `json:"ADMIN_ROLE_ID"`
}

// HasRank reports whether the given rank is a member of the scope's ladder.
func (c *ScopeConfig) HasRank(rank string) bool {
	for _, r := range c.RankLadder {
		if r == rank {
			return true
		}
	}
	return false
}

// InitialRank returns the first rung of the ladder.
func (c *ScopeConfig) InitialRank() string {
	if len(c.RankLadder) == 0 {
		return ""
	}
	return c.RankLadder[0]
}

// HasFaction reports whether the faction is known to the scope. A scope that
// does not enumerate factions accepts any non-empty name.
func (c *ScopeConfig) HasFaction(name string) bool {
	if len(c.Factions) == 0 {
		return name != ""
	}
	for _, f := range c.Factions {
		if f == name {
			return true
		}
	}
	return false
}
