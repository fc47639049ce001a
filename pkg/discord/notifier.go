package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/atkhates/BANK-LOMITA/internal/logging"
	"github.com/atkhates/BANK-LOMITA/pkg/entities"
	configSvc "github.com/atkhates/BANK-LOMITA/pkg/services/scopeconfig"
)

// ReviewNotifier renders core events onto the configured guild channels: the
// review card for new applications, the admin log line for status changes,
// and the transaction log. All sends are best-effort.
type ReviewNotifier struct {
	session  *discordgo.Session
	resolver *configSvc.Resolver
	logger   *logging.Logger
}

// NewReviewNotifier creates a notifier posting through the given session
func NewReviewNotifier(session *discordgo.Session, resolver *configSvc.Resolver) *ReviewNotifier {
	return &ReviewNotifier{
		session:  session,
		resolver: resolver,
		logger:   logging.Default,
	}
}

// RegistrationSubmitted posts the review card with approve/reject buttons
func (n *ReviewNotifier) RegistrationSubmitted(scopeID string, account *entities.Account) {
	cfg := n.resolver.Resolve(context.Background(), scopeID)
	if cfg.ReviewChannelID == "" {
		n.logger.Warn("No review channel configured for scope %s; run /setup", scopeID)
		return
	}

	embed := reviewEmbed(account, cfg)
	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Approve",
					Style:    discordgo.SuccessButton,
					CustomID: "approve_" + account.HolderID,
				},
				discordgo.Button{
					Label:    "Reject",
					Style:    discordgo.DangerButton,
					CustomID: "reject_" + account.HolderID,
				},
			},
		},
	}

	_, err := n.session.ChannelMessageSendComplex(cfg.ReviewChannelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: components,
	})
	if err != nil {
		n.logger.Error("Error posting review card for %s: %v", account.HolderID, err)
	}
}

// StatusChanged pushes a line to the admin log channel
func (n *ReviewNotifier) StatusChanged(scopeID string, account *entities.Account, actorID string) {
	cfg := n.resolver.Resolve(context.Background(), scopeID)
	if cfg.LogChannelID == "" {
		return
	}

	msg := fmt.Sprintf("Account <@%s> is now **%s** (by <@%s>)",
		account.HolderID, account.Status, actorID)
	if account.Frozen {
		msg += " [frozen]"
	}

	if _, err := n.session.ChannelMessageSend(cfg.LogChannelID, msg); err != nil {
		n.logger.Error("Error pushing status log for %s: %v", account.HolderID, err)
	}
}

// TransactionLogged pushes a line to the transaction log channel
func (n *ReviewNotifier) TransactionLogged(scopeID string, rec *entities.TransactionRecord) {
	cfg := n.resolver.Resolve(context.Background(), scopeID)
	channelID := cfg.TxLogChannelID
	if channelID == "" {
		channelID = cfg.LogChannelID
	}
	if channelID == "" {
		return
	}

	msg := fmt.Sprintf("`%s` %d %s", rec.Type, rec.Amount, cfg.CurrencySymbol)
	if rec.From != "" {
		msg += fmt.Sprintf(" from <@%s>", rec.From)
	}
	if rec.To != "" {
		msg += fmt.Sprintf(" to <@%s>", rec.To)
	}
	if rec.Fee > 0 {
		msg += fmt.Sprintf(" (fee %d)", rec.Fee)
	}

	if _, err := n.session.ChannelMessageSend(channelID, msg); err != nil {
		n.logger.Error("Error pushing transaction log %s: %v", rec.ID, err)
	}
}
