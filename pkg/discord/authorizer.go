package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/atkhates/BANK-LOMITA/internal/logging"
	configSvc "github.com/atkhates/BANK-LOMITA/pkg/services/scopeconfig"
)

// RoleAuthorizer answers authorization checks from guild roles: the guild
// owner, members holding the Administrator permission, and members holding
// the scope's configured admin role may perform admin actions.
type RoleAuthorizer struct {
	session  *discordgo.Session
	resolver *configSvc.Resolver
	logger   *logging.Logger
}

// NewRoleAuthorizer creates an authorizer reading from the given session
func NewRoleAuthorizer(session *discordgo.Session, resolver *configSvc.Resolver) *RoleAuthorizer {
	return &RoleAuthorizer{
		session:  session,
		resolver: resolver,
		logger:   logging.Default,
	}
}

// CanPerform implements the authorization check consumed by the approval and
// ledger engines. Unknown members are denied.
func (a *RoleAuthorizer) CanPerform(actorID, scopeID, action string) bool {
	guild, err := a.session.State.Guild(scopeID)
	if err != nil {
		if guild, err = a.session.Guild(scopeID); err != nil {
			a.logger.Warn("Authorizer: error fetching guild %s: %v", scopeID, err)
			return false
		}
	}

	if guild.OwnerID == actorID {
		return true
	}

	member, err := a.session.State.Member(scopeID, actorID)
	if err != nil {
		if member, err = a.session.GuildMember(scopeID, actorID); err != nil {
			a.logger.Warn("Authorizer: error fetching member %s in %s: %v", actorID, scopeID, err)
			return false
		}
	}

	cfg := a.resolver.Resolve(context.Background(), scopeID)

	for _, roleID := range member.Roles {
		if cfg.AdminRoleID != "" && roleID == cfg.AdminRoleID {
			return true
		}
		for _, role := range guild.Roles {
			if role.ID == roleID && role.Permissions&discordgo.PermissionAdministrator != 0 {
				return true
			}
		}
	}

	return false
}
