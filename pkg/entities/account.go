package entities

import "time"

// AccountStatus represents where an account sits in its lifecycle
type AccountStatus string

const (
	StatusPending     AccountStatus = "pending"
	StatusApproved    AccountStatus = "approved"
	StatusRejected    AccountStatus = "rejected"
	StatusBlacklisted AccountStatus = "blacklisted"
)

// AccountCategory represents the role-play category chosen at registration
type AccountCategory string

const (
	CategoryCivilian AccountCategory = "civilian"
	CategoryGang     AccountCategory = "gang"
	CategoryFaction  AccountCategory = "faction"
)

// Account represents a bank account keyed by the holder's Discord user ID,
// unique per scope (guild).
type Account struct {
	HolderID      string            `json:"holder_id"`
	ScopeID       string            `json:"scope_id"`
	DisplayName   string            `json:"name"`
	Country       string            `json:"country"`
	Age           int               `json:"age"`
	BirthDate     string            `json:"birth"` // YYYY-MM-DD
	MonthlyIncome int64             `json:"income"`
	Rank          string            `json:"rank"`
	Balance       int64             `json:"balance"`
	Status        AccountStatus     `json:"status"`
	Frozen        bool              `json:"frozen"`
	Category      AccountCategory   `json:"kind"`
	FactionName   string            `json:"faction,omitempty"`
	DailySpend    map[string]int64  `json:"daily,omitempty"` // "YYYY-MM-DD" -> outgoing total
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// DayKey returns the UTC calendar-date key used for daily spend tracking.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// SpentToday returns the outgoing total already recorded under the given day
// key. A missing key means zero spend, never an error.
func (a *Account) SpentToday(day string) int64 {
	if a.DailySpend == nil {
		return 0
	}
	return a.DailySpend[day]
}

// AddDailySpend records outgoing spend under the given day key and lazily
// drops stale keys so the map never grows beyond the current day.
func (a *Account) AddDailySpend(day string, amount int64) {
	if a.DailySpend == nil {
		a.DailySpend = make(map[string]int64)
	}
	for k := range a.DailySpend {
		if k != day {
			delete(a.DailySpend, k)
		}
	}
	a.DailySpend[day] += amount
}

// Eligible reports whether the account may participate in ledger operations.
func (a *Account) Eligible() bool {
	return a.Status == StatusApproved && !a.Frozen
}

// Clone returns a deep copy so callers can mutate without sharing state.
func (a *Account) Clone() *Account {
	cp := *a
	if a.DailySpend != nil {
		cp.DailySpend = make(map[string]int64, len(a.DailySpend))
		for k, v := range a.DailySpend {
			cp.DailySpend[k] = v
		}
	}
	return &cp
}
