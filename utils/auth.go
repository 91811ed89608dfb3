package utils

import (
	"slices"

	"news-forum-bot/models"

	"github.com/bwmarrin/discordgo"
	"github.com/spf13/viper"
)

// Auth provides methods for authorization checks.
type Auth struct {
	config models.CommandsConfig
}

// NewAuth creates a new Auth instance with the loaded configuration.
func NewAuth() (*Auth, error) {
	var commandsConfig models.CommandsConfig
	if err := viper.UnmarshalKey("commands", &commandsConfig); err != nil {
		return nil, err
	}
	return &Auth{config: commandsConfig}, nil
}

// NewAuthWithConfig creates an Auth from an already decoded configuration.
func NewAuthWithConfig(cfg models.CommandsConfig) *Auth {
	return &Auth{config: cfg}
}

// IsDeveloper checks if a user is a developer.
func (a *Auth) IsDeveloper(userID string) bool {
	return slices.Contains(a.config.Auth.Developers, userID)
}

// IsAdmin checks if a member has an admin role or the Administrator permission.
func (a *Auth) IsAdmin(member *discordgo.Member) bool {
	if member == nil {
		return false
	}
	if member.Permissions&discordgo.PermissionAdministrator != 0 {
		return true
	}
	for _, adminRoleID := range a.config.Auth.AdminsRoles {
		if slices.Contains(member.Roles, adminRoleID) {
			return true
		}
	}
	return false
}

// IsGuest checks if a user is a guest.
// In this configuration, "0" might signify a public or guest user.
func (a *Auth) IsGuest(userID string) bool {
	for _, guestID := range a.config.Auth.Guest {
		if guestID == "0" { // Special case for public access
			return true
		}
		if userID == guestID {
			return true
		}
	}
	return false
}

// CheckPermission checks if the interaction's user has the required permission level.
func (a *Auth) CheckPermission(i *discordgo.InteractionCreate, requiredLevel string) bool {
	member := i.Member
	var userID string
	switch {
	case member != nil && member.User != nil:
		userID = member.User.ID
	case i.User != nil:
		userID = i.User.ID
	}

	switch requiredLevel {
	case "developer":
		return a.IsDeveloper(userID)
	case "admin":
		return a.IsDeveloper(userID) || a.IsAdmin(member)
	case "guest":
		return true // Guests are allowed
	default:
		return false
	}
}
