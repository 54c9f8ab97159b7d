package entities

import (
	"strings"

	"eventplanner/internal/domain"
)

// UserDetails is what the user directory knows about a person.
type UserDetails struct {
	Key       UserKey
	FirstName string
	Nickname  string
	LastName  string
	Email     string
	DiscordID string
	Locale    string
}

// DisplayName prefers the nickname over the first name.
func (u UserDetails) DisplayName() string {
	first := u.FirstName
	if strings.TrimSpace(u.Nickname) != "" {
		first = u.Nickname
	}
	return strings.TrimSpace(first + " " + u.LastName)
}

// SignedInUser is the caller of an operation. The zero value is an anonymous
// caller without permissions.
type SignedInUser struct {
	Key         UserKey
	Roles       []domain.Role
	Permissions []domain.Permission
}

// NewSignedInUser resolves the permissions granted by roles.
func NewSignedInUser(key UserKey, roles ...domain.Role) SignedInUser {
	return SignedInUser{
		Key:         key,
		Roles:       roles,
		Permissions: domain.PermissionsOf(roles...),
	}
}

func (u SignedInUser) IsAnonymous() bool {
	return u.Key == ""
}

func (u SignedInUser) HasPermission(p domain.Permission) bool {
	for _, have := range u.Permissions {
		if have == p {
			return true
		}
	}
	return false
}

func (u SignedInUser) HasAnyPermission(ps ...domain.Permission) bool {
	for _, p := range ps {
		if u.HasPermission(p) {
			return true
		}
	}
	return false
}

// AssertHasPermission fails with ErrUnauthorized for anonymous callers and
// ErrMissingPermission otherwise.
func (u SignedInUser) AssertHasPermission(p domain.Permission) error {
	return u.AssertHasAnyPermission(p)
}

func (u SignedInUser) AssertHasAnyPermission(ps ...domain.Permission) error {
	if u.HasAnyPermission(ps...) {
		return nil
	}
	if u.IsAnonymous() {
		return domain.ErrUnauthorized
	}
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = string(p)
	}
	return domain.New(domain.CodeMissingPermission, "missing permission "+strings.Join(names, " or "))
}
