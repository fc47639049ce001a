package entities

import "time"

// DraftStage tracks how far a registration draft has progressed
type DraftStage string

const (
	DraftCollectingFields DraftStage = "collecting-fields"
	DraftCategorySelected DraftStage = "category-selected"
)

// RegistrationDraft holds a partially collected registration form while the
// holder picks a category. Drafts are ephemeral: they live in memory only and
// are destroyed on commit or abandonment.
type RegistrationDraft struct {
	HolderID      string
	ScopeID       string
	DisplayName   string
	Country       string
	Age           int
	BirthDate     string
	MonthlyIncome int64
	Category      AccountCategory
	FactionName   string
	Stage         DraftStage
	StartedAt     time.Time
}
