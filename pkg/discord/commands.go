package discord

import "github.com/bwmarrin/discordgo"

// commandDefinitions lists every slash command the bot registers on startup
func commandDefinitions() []*discordgo.ApplicationCommand {
	adminPerm := int64(discordgo.PermissionAdministrator)

	return []*discordgo.ApplicationCommand{
		{
			Name:        "register",
			Description: "Open a bank account (registration form)",
		},
		{
			Name:        "account",
			Description: "Show your bank account",
		},
		{
			Name:        "withdraw",
			Description: "Withdraw balance from your account",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "amount",
					Description: "Amount to withdraw",
					Required:    true,
				},
			},
		},
		{
			Name:        "transfer",
			Description: "Transfer balance to another user",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "Recipient user",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "amount",
					Description: "Amount to transfer",
					Required:    true,
				},
			},
		},
		{
			Name:        "admin",
			Description: "Admin panel for managing user accounts",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "target",
					Description: "User to manage",
					Required:    false,
				},
			},
		},
		{
			Name:        "rank",
			Description: "Assign a user's rank (admin)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "Target user",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "rank",
					Description: "New rank",
					Required:    true,
				},
			},
		},
		{
			Name:        "reglist",
			Description: "Show registrations grouped by status",
		},
		{
			Name:                     "setup",
			Description:              "Configure the bot's channels and role for this server",
			DefaultMemberPermissions: &adminPerm,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionChannel,
					Name:        "register_channel",
					Description: "Registration channel",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionChannel,
					Name:        "review_channel",
					Description: "Application review channel",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionChannel,
					Name:        "log_channel",
					Description: "Admin log channel (optional)",
					Required:    false,
				},
				{
					Type:        discordgo.ApplicationCommandOptionChannel,
					Name:        "tx_log_channel",
					Description: "Transaction log channel (optional)",
					Required:    false,
				},
				{
					Type:        discordgo.ApplicationCommandOptionRole,
					Name:        "admin_role",
					Description: "Admin role (optional)",
					Required:    false,
				},
			},
		},
	}
}
