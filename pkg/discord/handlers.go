package discord

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/atkhates/BANK-LOMITA/internal/types"
	"github.com/atkhates/BANK-LOMITA/pkg/entities"
	"github.com/atkhates/BANK-LOMITA/pkg/repositories/scopeconfig"
	"github.com/atkhates/BANK-LOMITA/pkg/services/ledger"
	"github.com/atkhates/BANK-LOMITA/pkg/services/registration"
)

// Custom ID prefixes for message components and modals. The holder ID rides
// after the underscore.
const (
	registerModalID   = "registerModal"
	categorySelectID  = "categorySelect"
	factionSelectID   = "factionSelect"
	prefixApprove     = "approve_"
	prefixReject      = "reject_"
	prefixBlacklist   = "blacklist_"
	prefixFreeze      = "freeze_"
	prefixUnfreeze    = "unfreeze_"
	prefixPromote     = "promote_"
	prefixSetRank     = "setrank_"
	prefixAddBalance  = "addBalance_"
	prefixBalanceForm = "addBalanceModal_"
	feesButtonID      = "fees"
	feesModalID       = "feesModal"
)

func (b *Bot) handleInteractions(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.GuildID == "" {
		respondEphemeral(s, i, "This bot only works inside a server.")
		return
	}

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.handleCommand(s, i)
	case discordgo.InteractionModalSubmit:
		b.handleModalSubmit(s, i)
	case discordgo.InteractionMessageComponent:
		b.handleComponent(s, i)
	}
}

func (b *Bot) handleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	b.logger.Debug("Command /%s from %s in guild %s", data.Name, interactionUserID(i), i.GuildID)

	switch data.Name {
	case "register":
		b.handleRegisterCommand(s, i)
	case "account":
		b.handleAccountCommand(s, i)
	case "withdraw":
		b.handleWithdrawCommand(s, i, data)
	case "transfer":
		b.handleTransferCommand(s, i, data)
	case "admin":
		b.handleAdminCommand(s, i, data)
	case "rank":
		b.handleRankCommand(s, i, data)
	case "reglist":
		b.handleRegListCommand(s, i)
	case "setup":
		b.handleSetupCommand(s, i, data)
	default:
		respondEphemeral(s, i, "Unknown command.")
	}
}

// handleRegisterCommand opens the registration modal. Duplicate applications
// are caught early here so the user is not sent through the form for nothing.
func (b *Bot) handleRegisterCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	userID := interactionUserID(i)

	cfg := b.services.Resolver.Resolve(ctx, i.GuildID)
	if cfg.RegisterChannelID != "" && i.ChannelID != cfg.RegisterChannelID {
		respondEphemeral(s, i, fmt.Sprintf("Please register in <#%s>.", cfg.RegisterChannelID))
		return
	}

	if acct, err := b.services.Accounts.GetAccount(ctx, i.GuildID, userID); err == nil {
		if acct.Status != entities.StatusRejected {
			respondError(s, i, types.NewDuplicateApplicationError(string(acct.Status)))
			return
		}
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: registerModalID,
			Title:    "Bank Registration",
			Components: []discordgo.MessageComponent{
				modalRow("name", "Full name", "Jane Doe", true),
				modalRow("country", "Country", "Lomita", true),
				modalRow("age", "Age (16-65)", "21", true),
				modalRow("birth", "Birth date (YYYY-MM-DD)", "2004-01-31", true),
				modalRow("income", "Monthly income", "2500", true),
			},
		},
	})
	if err != nil {
		b.logger.Error("Error opening registration modal: %v", err)
	}
}

func (b *Bot) handleAccountCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	userID := interactionUserID(i)

	acct, err := b.services.Accounts.GetAccount(ctx, i.GuildID, userID)
	if err != nil {
		respondEphemeral(s, i, "You don't have an account yet. Use /register to apply.")
		return
	}

	cfg := b.services.Resolver.Resolve(ctx, i.GuildID)
	recent, err := b.services.Ledger.RecentTransactions(ctx, i.GuildID, userID, 5)
	if err != nil {
		b.logger.Error("Error loading transactions for %s: %v", userID, err)
	}

	respondEmbed(s, i, accountEmbed(acct, cfg, recent), true)
}

func (b *Bot) handleWithdrawCommand(s *discordgo.Session, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	ctx := context.Background()
	userID := interactionUserID(i)
	amount := optionInt(data.Options, "amount")

	acct, rec, err := b.services.Ledger.Withdraw(ctx, i.GuildID, userID, amount)
	if err != nil {
		respondError(s, i, err)
		return
	}

	cfg := b.services.Resolver.Resolve(ctx, i.GuildID)
	respondEphemeral(s, i, fmt.Sprintf("Withdrew %s (fee %s). New balance: %s.",
		money(rec.Amount, cfg), money(rec.Fee, cfg), money(acct.Balance, cfg)))
	go b.notifier.TransactionLogged(i.GuildID, rec)
}

func (b *Bot) handleTransferCommand(s *discordgo.Session, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	ctx := context.Background()
	userID := interactionUserID(i)
	amount := optionInt(data.Options, "amount")

	target := optionUser(s, data.Options, "user")
	if target == nil {
		respondEphemeral(s, i, "Could not resolve the recipient.")
		return
	}
	if target.Bot {
		respondError(s, i, types.NewValidationError("to", "cannot transfer to a bot"))
		return
	}

	rec, err := b.services.Ledger.Transfer(ctx, i.GuildID, userID, target.ID, amount)
	if err != nil {
		respondError(s, i, err)
		return
	}

	cfg := b.services.Resolver.Resolve(ctx, i.GuildID)
	respondEphemeral(s, i, fmt.Sprintf("Transferred %s to %s (fee %s).",
		money(rec.Amount, cfg), target.Mention(), money(rec.Fee, cfg)))
	go b.notifier.TransactionLogged(i.GuildID, rec)
}

// handleAdminCommand renders the per-account admin panel, or the fee
// configuration panel when no target is given.
func (b *Bot) handleAdminCommand(s *discordgo.Session, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	ctx := context.Background()
	actorID := interactionUserID(i)

	if !b.authorizer.CanPerform(actorID, i.GuildID, ledger.ActionAdjust) {
		respondError(s, i, types.NewBankError(types.ErrPermissionDenied, "admin access required"))
		return
	}

	cfg := b.services.Resolver.Resolve(ctx, i.GuildID)

	target := optionUser(s, data.Options, "target")
	if target == nil {
		respondComplex(s, i, &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{feesEmbed(cfg)},
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.Button{Label: "Edit fees", Style: discordgo.PrimaryButton, CustomID: feesButtonID},
				}},
			},
			Flags: discordgo.MessageFlagsEphemeral,
		})
		return
	}

	acct, err := b.services.Accounts.GetAccount(ctx, i.GuildID, target.ID)
	if err != nil {
		respondEphemeral(s, i, fmt.Sprintf("%s has no account.", target.Mention()))
		return
	}

	respondComplex(s, i, &discordgo.InteractionResponseData{
		Embeds:     []*discordgo.MessageEmbed{adminPanelEmbed(acct, cfg)},
		Components: adminPanelComponents(acct),
		Flags:      discordgo.MessageFlagsEphemeral,
	})
}

func (b *Bot) handleRankCommand(s *discordgo.Session, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	ctx := context.Background()
	actorID := interactionUserID(i)

	target := optionUser(s, data.Options, "user")
	rank := optionString(data.Options, "rank")
	if target == nil {
		respondEphemeral(s, i, "Could not resolve the target user.")
		return
	}

	acct, err := b.services.Approval.SetRank(ctx, actorID, i.GuildID, target.ID, rank)
	if err != nil {
		respondError(s, i, err)
		return
	}
	respondEphemeral(s, i, fmt.Sprintf("%s is now rank **%s**.", target.Mention(), acct.Rank))
}

func (b *Bot) handleRegListCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	actorID := interactionUserID(i)

	if !b.authorizer.CanPerform(actorID, i.GuildID, "approve") {
		respondError(s, i, types.NewBankError(types.ErrPermissionDenied, "admin access required"))
		return
	}

	accounts, err := b.services.Accounts.ListAccounts(ctx, i.GuildID)
	if err != nil {
		respondError(s, i, types.WrapError(types.ErrDatabaseError, "error listing accounts", err))
		return
	}

	cfg := b.services.Resolver.Resolve(ctx, i.GuildID)
	respondEmbed(s, i, regListEmbed(accounts, cfg), true)
}

func (b *Bot) handleSetupCommand(s *discordgo.Session, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	ctx := context.Background()

	var registerCh, reviewCh, logCh, txLogCh, adminRole string
	for _, opt := range data.Options {
		switch opt.Name {
		case "register_channel":
			registerCh = opt.ChannelValue(nil).ID
		case "review_channel":
			reviewCh = opt.ChannelValue(nil).ID
		case "log_channel":
			logCh = opt.ChannelValue(nil).ID
		case "tx_log_channel":
			txLogCh = opt.ChannelValue(nil).ID
		case "admin_role":
			adminRole = opt.RoleValue(nil, "").ID
		}
	}

	cfg, err := b.services.Resolver.SetOverride(ctx, i.GuildID, func(o *scopeconfig.ScopeOverride) {
		o.RegisterChannelID = registerCh
		o.ReviewChannelID = reviewCh
		if logCh != "" {
			o.LogChannelID = logCh
		}
		if txLogCh != "" {
			o.TxLogChannelID = txLogCh
		}
		if adminRole != "" {
			o.AdminRoleID = adminRole
		}
	})
	if err != nil {
		respondError(s, i, types.WrapError(types.ErrDatabaseError, "error saving server configuration", err))
		return
	}

	msg := fmt.Sprintf("Setup complete. Registrations in <#%s>, reviews in <#%s>.",
		cfg.RegisterChannelID, cfg.ReviewChannelID)
	if cfg.LogChannelID != "" {
		msg += fmt.Sprintf(" Logging to <#%s>.", cfg.LogChannelID)
	}
	respondEphemeral(s, i, msg)
}

func (b *Bot) handleModalSubmit(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ModalSubmitData()

	switch {
	case data.CustomID == registerModalID:
		b.handleRegisterModal(s, i, data)
	case strings.HasPrefix(data.CustomID, prefixBalanceForm):
		b.handleAddBalanceModal(s, i, data)
	case data.CustomID == feesModalID:
		b.handleFeesModal(s, i, data)
	}
}

func (b *Bot) handleRegisterModal(s *discordgo.Session, i *discordgo.InteractionCreate, data discordgo.ModalSubmitInteractionData) {
	ctx := context.Background()
	userID := interactionUserID(i)

	values := modalValues(data)
	age, err := strconv.Atoi(strings.TrimSpace(values["age"]))
	if err != nil {
		respondError(s, i, types.NewValidationError("age", "age must be a number"))
		return
	}
	income, err := strconv.ParseInt(strings.TrimSpace(values["income"]), 10, 64)
	if err != nil {
		respondError(s, i, types.NewValidationError("monthlyIncome", "monthly income must be a number"))
		return
	}

	_, err = b.services.Registration.StartDraft(ctx, i.GuildID, userID, registration.Fields{
		DisplayName:   values["name"],
		Country:       values["country"],
		Age:           age,
		BirthDate:     strings.TrimSpace(values["birth"]),
		MonthlyIncome: income,
	})
	if err != nil {
		respondError(s, i, err)
		return
	}

	// Next step: category select
	respondComplex(s, i, &discordgo.InteractionResponseData{
		Content: "Almost done. Pick your account category:",
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					CustomID:    categorySelectID,
					Placeholder: "Account category",
					Options: []discordgo.SelectMenuOption{
						{Label: "Civilian", Value: string(entities.CategoryCivilian), Emoji: &discordgo.ComponentEmoji{Name: "🏠"}},
						{Label: "Gang", Value: string(entities.CategoryGang), Emoji: &discordgo.ComponentEmoji{Name: "🔫"}},
						{Label: "Faction", Value: string(entities.CategoryFaction), Emoji: &discordgo.ComponentEmoji{Name: "🏛️"}},
					},
				},
			}},
		},
		Flags: discordgo.MessageFlagsEphemeral,
	})
}

func (b *Bot) handleAddBalanceModal(s *discordgo.Session, i *discordgo.InteractionCreate, data discordgo.ModalSubmitInteractionData) {
	ctx := context.Background()
	actorID := interactionUserID(i)
	holderID := strings.TrimPrefix(data.CustomID, prefixBalanceForm)

	values := modalValues(data)
	amount, err := strconv.ParseInt(strings.TrimSpace(values["amount"]), 10, 64)
	if err != nil {
		respondError(s, i, types.NewValidationError("amount", "amount must be a number"))
		return
	}

	// A negative amount is an administrative debit; positive is a deposit
	var acct *entities.Account
	var rec *entities.TransactionRecord
	if amount < 0 {
		acct, rec, err = b.services.Ledger.AdminAdjust(ctx, actorID, i.GuildID, holderID, -amount, ledger.AdjustDebit)
	} else {
		acct, rec, err = b.services.Ledger.Deposit(ctx, actorID, i.GuildID, holderID, amount)
	}
	if err != nil {
		respondError(s, i, err)
		return
	}

	cfg := b.services.Resolver.Resolve(ctx, i.GuildID)
	verb := "Deposited"
	if amount < 0 {
		verb = "Removed"
	}
	respondEphemeral(s, i, fmt.Sprintf("%s %s for <@%s>. New balance: %s.",
		verb, money(rec.Amount, cfg), holderID, money(acct.Balance, cfg)))
	go b.notifier.TransactionLogged(i.GuildID, rec)
}

func (b *Bot) handleFeesModal(s *discordgo.Session, i *discordgo.InteractionCreate, data discordgo.ModalSubmitInteractionData) {
	ctx := context.Background()
	actorID := interactionUserID(i)

	if !b.authorizer.CanPerform(actorID, i.GuildID, ledger.ActionAdjust) {
		respondError(s, i, types.NewBankError(types.ErrPermissionDenied, "admin access required"))
		return
	}

	values := modalValues(data)
	fees := entities.FeeSchedule{}
	for field, dst := range map[string]*int64{
		"deposit_fee":  &fees.DepositPct,
		"transfer_fee": &fees.TransferPct,
		"withdraw_fee": &fees.WithdrawPct,
	} {
		pct, err := strconv.ParseInt(strings.TrimSpace(values[field]), 10, 64)
		if err != nil || pct < 0 || pct > 100 {
			respondError(s, i, types.NewValidationError(field, "fee must be a percentage between 0 and 100"))
			return
		}
		*dst = pct
	}

	cfg, err := b.services.Resolver.SetOverride(ctx, i.GuildID, func(o *scopeconfig.ScopeOverride) {
		o.Fees = &fees
	})
	if err != nil {
		respondError(s, i, types.WrapError(types.ErrDatabaseError, "error saving fees", err))
		return
	}

	respondEphemeral(s, i, fmt.Sprintf("Fees updated: deposit %d%%, transfer %d%%, withdraw %d%%.",
		cfg.Fees.DepositPct, cfg.Fees.TransferPct, cfg.Fees.WithdrawPct))
}

func (b *Bot) handleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	customID := i.MessageComponentData().CustomID

	switch {
	case customID == categorySelectID:
		b.handleCategorySelect(s, i)
	case customID == factionSelectID:
		b.handleFactionSelect(s, i)
	case customID == feesButtonID:
		b.handleFeesButton(s, i)
	case strings.HasPrefix(customID, prefixApprove):
		b.handleResolveButton(s, i, prefixApprove)
	case strings.HasPrefix(customID, prefixReject):
		b.handleResolveButton(s, i, prefixReject)
	case strings.HasPrefix(customID, prefixBlacklist):
		b.handleBlacklistButton(s, i)
	case strings.HasPrefix(customID, prefixFreeze):
		b.handleFreezeButton(s, i, true)
	case strings.HasPrefix(customID, prefixUnfreeze):
		b.handleFreezeButton(s, i, false)
	case strings.HasPrefix(customID, prefixPromote):
		b.handlePromoteButton(s, i)
	case strings.HasPrefix(customID, prefixSetRank):
		b.handleSetRankSelect(s, i)
	case strings.HasPrefix(customID, prefixAddBalance):
		b.handleAddBalanceButton(s, i)
	}
}

func (b *Bot) handleCategorySelect(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	userID := interactionUserID(i)
	category := entities.AccountCategory(i.MessageComponentData().Values[0])

	if category == entities.CategoryFaction {
		cfg := b.services.Resolver.Resolve(ctx, i.GuildID)
		if len(cfg.Factions) == 0 {
			respondEphemeral(s, i, "No factions are configured on this server. Pick another category.")
			return
		}
		options := make([]discordgo.SelectMenuOption, 0, len(cfg.Factions))
		for _, f := range cfg.Factions {
			options = append(options, discordgo.SelectMenuOption{Label: f, Value: f})
		}
		respondComplex(s, i, &discordgo.InteractionResponseData{
			Content: "Which faction?",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.SelectMenu{CustomID: factionSelectID, Placeholder: "Faction", Options: options},
				}},
			},
			Flags: discordgo.MessageFlagsEphemeral,
		})
		return
	}

	if _, err := b.services.Registration.SetCategory(ctx, i.GuildID, userID, category, ""); err != nil {
		respondError(s, i, err)
		return
	}
	b.commitRegistration(s, i)
}

func (b *Bot) handleFactionSelect(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	userID := interactionUserID(i)
	faction := i.MessageComponentData().Values[0]

	if _, err := b.services.Registration.SetCategory(ctx, i.GuildID, userID, entities.CategoryFaction, faction); err != nil {
		respondError(s, i, err)
		return
	}
	b.commitRegistration(s, i)
}

func (b *Bot) commitRegistration(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	userID := interactionUserID(i)

	acct, err := b.services.Registration.Commit(ctx, i.GuildID, userID)
	if err != nil {
		respondError(s, i, err)
		return
	}

	respondEphemeral(s, i, fmt.Sprintf(
		"Application submitted, %s. An administrator will review it shortly.", acct.DisplayName))
}

func (b *Bot) handleFeesButton(s *discordgo.Session, i *discordgo.InteractionCreate) {
	cfg := b.services.Resolver.Resolve(context.Background(), i.GuildID)

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: feesModalID,
			Title:    "Fee Percentages",
			Components: []discordgo.MessageComponent{
				modalRow("deposit_fee", "Deposit fee (%)", strconv.FormatInt(cfg.Fees.DepositPct, 10), true),
				modalRow("transfer_fee", "Transfer fee (%)", strconv.FormatInt(cfg.Fees.TransferPct, 10), true),
				modalRow("withdraw_fee", "Withdraw fee (%)", strconv.FormatInt(cfg.Fees.WithdrawPct, 10), true),
			},
		},
	})
	if err != nil {
		b.logger.Error("Error opening fees modal: %v", err)
	}
}

// handleResolveButton handles the approve/reject buttons on review cards
func (b *Bot) handleResolveButton(s *discordgo.Session, i *discordgo.InteractionCreate, prefix string) {
	ctx := context.Background()
	actorID := interactionUserID(i)
	holderID := strings.TrimPrefix(i.MessageComponentData().CustomID, prefix)

	var acct *entities.Account
	var err error
	if prefix == prefixApprove {
		acct, err = b.services.Approval.Approve(ctx, actorID, i.GuildID, holderID)
	} else {
		acct, err = b.services.Approval.Reject(ctx, actorID, i.GuildID, holderID)
	}
	if err != nil {
		respondError(s, i, err)
		return
	}

	// Retire the buttons so a second click has nothing to press
	b.disableReviewCard(s, i, acct)
	respondEphemeral(s, i, fmt.Sprintf("Account of <@%s> is now **%s**.", holderID, acct.Status))
}

// disableReviewCard strips the components off the card the button lives on
func (b *Bot) disableReviewCard(s *discordgo.Session, i *discordgo.InteractionCreate, acct *entities.Account) {
	if i.Message == nil {
		return
	}
	embeds := i.Message.Embeds
	if len(embeds) > 0 {
		embeds[0].Footer = &discordgo.MessageEmbedFooter{Text: "Resolved: " + string(acct.Status)}
	}
	_, err := s.ChannelMessageEditComplex(&discordgo.MessageEdit{
		ID:         i.Message.ID,
		Channel:    i.Message.ChannelID,
		Embeds:     &embeds,
		Components: &[]discordgo.MessageComponent{},
	})
	if err != nil {
		b.logger.Warn("Error retiring review card: %v", err)
	}
}

func (b *Bot) handleBlacklistButton(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	actorID := interactionUserID(i)
	holderID := strings.TrimPrefix(i.MessageComponentData().CustomID, prefixBlacklist)

	acct, err := b.services.Approval.Blacklist(ctx, actorID, i.GuildID, holderID)
	if err != nil {
		respondError(s, i, err)
		return
	}
	respondEphemeral(s, i, fmt.Sprintf("<@%s> is blacklisted and frozen.", acct.HolderID))
}

func (b *Bot) handleFreezeButton(s *discordgo.Session, i *discordgo.InteractionCreate, frozen bool) {
	ctx := context.Background()
	actorID := interactionUserID(i)
	prefix := prefixFreeze
	if !frozen {
		prefix = prefixUnfreeze
	}
	holderID := strings.TrimPrefix(i.MessageComponentData().CustomID, prefix)

	acct, err := b.services.Approval.SetFrozen(ctx, actorID, i.GuildID, holderID, frozen)
	if err != nil {
		respondError(s, i, err)
		return
	}

	state := "unfrozen"
	if acct.Frozen {
		state = "frozen"
	}
	respondEphemeral(s, i, fmt.Sprintf("Account of <@%s> is now %s.", acct.HolderID, state))
}

// handlePromoteButton offers the rank ladder as a select menu
func (b *Bot) handlePromoteButton(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	holderID := strings.TrimPrefix(i.MessageComponentData().CustomID, prefixPromote)

	cfg := b.services.Resolver.Resolve(ctx, i.GuildID)
	options := make([]discordgo.SelectMenuOption, 0, len(cfg.RankLadder))
	for _, rank := range cfg.RankLadder {
		options = append(options, discordgo.SelectMenuOption{Label: rank, Value: rank})
	}

	respondComplex(s, i, &discordgo.InteractionResponseData{
		Content: fmt.Sprintf("Pick a rank for <@%s>:", holderID),
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{CustomID: prefixSetRank + holderID, Placeholder: "Rank", Options: options},
			}},
		},
		Flags: discordgo.MessageFlagsEphemeral,
	})
}

func (b *Bot) handleSetRankSelect(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	actorID := interactionUserID(i)
	holderID := strings.TrimPrefix(i.MessageComponentData().CustomID, prefixSetRank)
	rank := i.MessageComponentData().Values[0]

	acct, err := b.services.Approval.SetRank(ctx, actorID, i.GuildID, holderID, rank)
	if err != nil {
		respondError(s, i, err)
		return
	}
	respondEphemeral(s, i, fmt.Sprintf("<@%s> is now rank **%s**.", acct.HolderID, acct.Rank))
}

func (b *Bot) handleAddBalanceButton(s *discordgo.Session, i *discordgo.InteractionCreate) {
	holderID := strings.TrimPrefix(i.MessageComponentData().CustomID, prefixAddBalance)

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: prefixBalanceForm + holderID,
			Title:    "Adjust Balance",
			Components: []discordgo.MessageComponent{
				modalRow("amount", "Amount (negative removes)", "1000", true),
			},
		},
	})
	if err != nil {
		b.logger.Error("Error opening add-balance modal: %v", err)
	}
}

// interactionUserID works for both guild (Member) and DM (User) payloads
func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func modalValues(data discordgo.ModalSubmitInteractionData) map[string]string {
	values := make(map[string]string)
	for _, row := range data.Components {
		actionsRow, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, comp := range actionsRow.Components {
			if input, ok := comp.(*discordgo.TextInput); ok {
				values[input.CustomID] = input.Value
			}
		}
	}
	return values
}

func modalRow(id, label, placeholder string, required bool) discordgo.MessageComponent {
	return discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.TextInput{
				CustomID:    id,
				Label:       label,
				Style:       discordgo.TextInputShort,
				Placeholder: placeholder,
				Required:    required,
			},
		},
	}
}

func optionInt(options []*discordgo.ApplicationCommandInteractionDataOption, name string) int64 {
	for _, opt := range options {
		if opt.Name == name {
			return opt.IntValue()
		}
	}
	return 0
}

func optionString(options []*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	for _, opt := range options {
		if opt.Name == name {
			return opt.StringValue()
		}
	}
	return ""
}

func optionUser(s *discordgo.Session, options []*discordgo.ApplicationCommandInteractionDataOption, name string) *discordgo.User {
	for _, opt := range options {
		if opt.Name == name {
			return opt.UserValue(s)
		}
	}
	return nil
}
