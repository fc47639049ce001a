package discord

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/atkhates/BANK-LOMITA/internal/logging"
	"github.com/atkhates/BANK-LOMITA/internal/types"
	"github.com/atkhates/BANK-LOMITA/pkg/entities"
)

// Embed colors per account status
const (
	colorPending     = 0xF1C40F
	colorApproved    = 0x2ECC71
	colorRejected    = 0xE74C3C
	colorBlacklisted = 0x2C3E50
	colorNeutral     = 0x3498DB
)

func statusColor(status entities.AccountStatus) int {
	switch status {
	case entities.StatusApproved:
		return colorApproved
	case entities.StatusRejected:
		return colorRejected
	case entities.StatusBlacklisted:
		return colorBlacklisted
	default:
		return colorPending
	}
}

func money(amount int64, cfg *entities.ScopeConfig) string {
	return fmt.Sprintf("%d %s", amount, cfg.CurrencySymbol)
}

func respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		logging.Default.Error("Error responding to interaction: %v", err)
	}
}

func respondEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, ephemeral bool) {
	data := &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{embed},
	}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	respondComplex(s, i, data)
}

func respondComplex(s *discordgo.Session, i *discordgo.InteractionCreate, data *discordgo.InteractionResponseData) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		logging.Default.Error("Error responding to interaction: %v", err)
	}
}

// respondError turns an error into a user-facing ephemeral message. Known
// bank errors get a friendly rendering; everything else is kept generic and
// logged server-side.
func respondError(s *discordgo.Session, i *discordgo.InteractionCreate, err error) {
	respondEphemeral(s, i, errorMessage(err))
}

func errorMessage(err error) string {
	var bankErr *types.BankError
	if !types.As(err, &bankErr) {
		logging.Default.LogError(err)
		return "Something went wrong. Please try again later."
	}

	switch bankErr.Code {
	case types.ErrValidation:
		return "Invalid input: " + bankErr.Message
	case types.ErrDuplicateApplication:
		switch entities.AccountStatus(bankErr.Field) {
		case entities.StatusPending:
			return "You already have an application waiting for review."
		case entities.StatusBlacklisted:
			return "You are blacklisted and cannot apply for an account."
		default:
			return "You already have an account."
		}
	case types.ErrAccountNotEligible:
		return "Your account cannot do that right now: " + bankErr.Message
	case types.ErrNotFound:
		return "No account found. Use /register to apply."
	case types.ErrInsufficientFunds:
		return "Insufficient funds: " + bankErr.Message
	case types.ErrDailyLimitExceeded:
		return "Daily limit reached: " + bankErr.Message
	case types.ErrInvalidState:
		return "That action is not possible: " + bankErr.Message
	case types.ErrPermissionDenied:
		return "You are not allowed to do that."
	default:
		logging.Default.LogError(err)
		return "Something went wrong. Please try again later."
	}
}

// accountEmbed renders the holder's own account view
func accountEmbed(acct *entities.Account, cfg *entities.ScopeConfig, recent []*entities.TransactionRecord) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "🏦 " + acct.DisplayName,
		Color: statusColor(acct.Status),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Balance", Value: money(acct.Balance, cfg), Inline: true},
			{Name: "Rank", Value: orDash(acct.Rank), Inline: true},
			{Name: "Status", Value: statusLine(acct), Inline: true},
			{Name: "Category", Value: categoryLine(acct), Inline: true},
			{Name: "Country", Value: acct.Country, Inline: true},
			{Name: "Monthly income", Value: money(acct.MonthlyIncome, cfg), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Member since " + acct.CreatedAt.Format("2006-01-02"),
		},
	}

	if len(recent) > 0 {
		var lines []string
		for _, rec := range recent {
			line := fmt.Sprintf("`%s` %s", rec.Type, money(rec.Amount, cfg))
			if rec.Fee > 0 {
				line += fmt.Sprintf(" (fee %s)", money(rec.Fee, cfg))
			}
			lines = append(lines, line)
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Recent activity",
			Value: strings.Join(lines, "\n"),
		})
	}

	return embed
}

// reviewEmbed renders the application card posted to the review channel
func reviewEmbed(acct *entities.Account, cfg *entities.ScopeConfig) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "New bank application",
		Description: fmt.Sprintf("<@%s>", acct.HolderID),
		Color:       colorPending,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Name", Value: acct.DisplayName, Inline: true},
			{Name: "Country", Value: acct.Country, Inline: true},
			{Name: "Age", Value: fmt.Sprintf("%d", acct.Age), Inline: true},
			{Name: "Birth date", Value: acct.BirthDate, Inline: true},
			{Name: "Monthly income", Value: money(acct.MonthlyIncome, cfg), Inline: true},
			{Name: "Category", Value: categoryLine(acct), Inline: true},
		},
	}
}

// adminPanelEmbed renders the per-account management view
func adminPanelEmbed(acct *entities.Account, cfg *entities.ScopeConfig) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Account management",
		Description: fmt.Sprintf("<@%s>", acct.HolderID),
		Color:       statusColor(acct.Status),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Status", Value: statusLine(acct), Inline: true},
			{Name: "Balance", Value: money(acct.Balance, cfg), Inline: true},
			{Name: "Rank", Value: orDash(acct.Rank), Inline: true},
		},
	}
}

// adminPanelComponents builds the button rows for the admin panel. Buttons
// that cannot apply to the account's current state are left out entirely.
func adminPanelComponents(acct *entities.Account) []discordgo.MessageComponent {
	var lifecycle []discordgo.MessageComponent

	if acct.Status == entities.StatusPending {
		lifecycle = append(lifecycle,
			discordgo.Button{Label: "Approve", Style: discordgo.SuccessButton, CustomID: prefixApprove + acct.HolderID},
			discordgo.Button{Label: "Reject", Style: discordgo.DangerButton, CustomID: prefixReject + acct.HolderID},
		)
	}
	if acct.Status != entities.StatusBlacklisted {
		lifecycle = append(lifecycle,
			discordgo.Button{Label: "Blacklist", Style: discordgo.DangerButton, CustomID: prefixBlacklist + acct.HolderID},
		)
		if acct.Frozen {
			lifecycle = append(lifecycle,
				discordgo.Button{Label: "Unfreeze", Style: discordgo.SecondaryButton, CustomID: prefixUnfreeze + acct.HolderID})
		} else {
			lifecycle = append(lifecycle,
				discordgo.Button{Label: "Freeze", Style: discordgo.SecondaryButton, CustomID: prefixFreeze + acct.HolderID})
		}
	}

	rows := []discordgo.MessageComponent{}
	if len(lifecycle) > 0 {
		rows = append(rows, discordgo.ActionsRow{Components: lifecycle})
	}
	rows = append(rows, discordgo.ActionsRow{Components: []discordgo.MessageComponent{
		discordgo.Button{Label: "Set rank", Style: discordgo.PrimaryButton, CustomID: prefixPromote + acct.HolderID},
		discordgo.Button{Label: "Add balance", Style: discordgo.PrimaryButton, CustomID: prefixAddBalance + acct.HolderID},
	}})
	return rows
}

// feesEmbed renders the scope's current fee schedule
func feesEmbed(cfg *entities.ScopeConfig) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "Fee schedule",
		Color: colorNeutral,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Deposit", Value: fmt.Sprintf("%d%%", cfg.Fees.DepositPct), Inline: true},
			{Name: "Transfer", Value: fmt.Sprintf("%d%%", cfg.Fees.TransferPct), Inline: true},
			{Name: "Withdraw", Value: fmt.Sprintf("%d%%", cfg.Fees.WithdrawPct), Inline: true},
		},
	}
}

// regListEmbed groups every registration by lifecycle status
func regListEmbed(accounts []*entities.Account, cfg *entities.ScopeConfig) *discordgo.MessageEmbed {
	groups := map[entities.AccountStatus][]*entities.Account{}
	for _, acct := range accounts {
		groups[acct.Status] = append(groups[acct.Status], acct)
	}

	embed := &discordgo.MessageEmbed{
		Title: "Registrations",
		Color: colorNeutral,
	}

	order := []entities.AccountStatus{
		entities.StatusPending,
		entities.StatusApproved,
		entities.StatusRejected,
		entities.StatusBlacklisted,
	}
	for _, status := range order {
		members := groups[status]
		if len(members) == 0 {
			continue
		}
		sort.Slice(members, func(a, b int) bool {
			return members[a].CreatedAt.Before(members[b].CreatedAt)
		})
		var lines []string
		for _, acct := range members {
			lines = append(lines, fmt.Sprintf("<@%s> — %s", acct.HolderID, acct.DisplayName))
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("%s (%d)", titleCase(string(status)), len(members)),
			Value: strings.Join(lines, "\n"),
		})
	}

	if len(embed.Fields) == 0 {
		embed.Description = "No registrations yet."
	}
	return embed
}

func statusLine(acct *entities.Account) string {
	line := string(acct.Status)
	if acct.Frozen {
		line += " ❄️"
	}
	return line
}

func categoryLine(acct *entities.Account) string {
	if acct.Category == entities.CategoryFaction && acct.FactionName != "" {
		return fmt.Sprintf("%s (%s)", acct.Category, acct.FactionName)
	}
	return string(acct.Category)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
