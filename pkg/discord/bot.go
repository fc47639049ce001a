package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/atkhates/BANK-LOMITA/internal/logging"
	accountRepo "github.com/atkhates/BANK-LOMITA/pkg/repositories/account"
	"github.com/atkhates/BANK-LOMITA/pkg/services/approval"
	"github.com/atkhates/BANK-LOMITA/pkg/services/ledger"
	"github.com/atkhates/BANK-LOMITA/pkg/services/registration"
	configSvc "github.com/atkhates/BANK-LOMITA/pkg/services/scopeconfig"
)

// Services bundles the fixed set of capabilities the bot needs. It is built
// once at startup and injected whole, so every handler sees the same wiring.
type Services struct {
	Accounts     accountRepo.Repository
	Resolver     *configSvc.Resolver
	Registration *registration.Service
	Approval     *approval.Service
	Ledger       *ledger.Service
}

// Bot represents the Discord bot instance
type Bot struct {
	session    *discordgo.Session
	token      string
	services   Services
	authorizer *RoleAuthorizer
	notifier   *ReviewNotifier
	logger     *logging.Logger
}

// NewBot creates a new instance of the bot
func NewBot(token string, services Services) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}

	bot := &Bot{
		session:    session,
		token:      token,
		services:   services,
		authorizer: NewRoleAuthorizer(session, services.Resolver),
		notifier:   NewReviewNotifier(session, services.Resolver),
		logger:     logging.Default,
	}

	// Register handlers
	session.AddHandler(bot.handleReady)
	session.AddHandler(bot.handleInteractions)

	// Identify the intents we need
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	return bot, nil
}

// Session exposes the underlying session for collaborators (notifier, authorizer)
func (b *Bot) Session() *discordgo.Session {
	return b.session
}

// Authorizer returns the role-based authorization check backed by this
// bot's session. Inject it into the approval and ledger engines.
func (b *Bot) Authorizer() *RoleAuthorizer {
	return b.authorizer
}

// Notifier returns the review-surface notifier backed by this bot's session
func (b *Bot) Notifier() *ReviewNotifier {
	return b.notifier
}

// IsSystemIdentity reports whether the ID belongs to the bot itself. The
// ledger refuses transfers involving system identities; other bot recipients
// are filtered in the transfer handler where the user object is at hand.
func (b *Bot) IsSystemIdentity(holderID string) bool {
	return b.session.State.User != nil && b.session.State.User.ID == holderID
}

// Start initializes the bot and connects to Discord
func (b *Bot) Start() error {
	// Open websocket connection
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}

	// Register slash commands
	for _, cmd := range commandDefinitions() {
		_, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, "", cmd)
		if err != nil {
			return fmt.Errorf("error creating command %s: %w", cmd.Name, err)
		}
	}

	return nil
}

// Stop gracefully shuts down the bot and closes the Discord connection
func (b *Bot) Stop() error {
	if err := b.services.Accounts.Close(); err != nil {
		return fmt.Errorf("error closing repository: %w", err)
	}

	if err := b.session.Close(); err != nil {
		return fmt.Errorf("error closing connection: %w", err)
	}

	return nil
}

func (b *Bot) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	b.logger.Info("Bot is ready as %s", r.User.Username)
}
