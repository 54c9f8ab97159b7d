package domain

// Permission names one capability a signed-in user may hold.
type Permission string

const (
	PermissionReadEvents            Permission = "events:read"
	PermissionCreateEvents          Permission = "events:create"
	PermissionDeleteEvents          Permission = "events:delete"
	PermissionWriteEventDetails     Permission = "event-details:write"
	PermissionWriteEventSlots       Permission = "event-slots:write"
	PermissionWriteRegistrations    Permission = "event-registrations:write"
	PermissionWriteOwnRegistrations Permission = "user-event-registrations:write"
)

// Role groups permissions. Roles double as broadcast recipients for
// notifications addressed to a whole team rather than one user.
type Role string

const (
	RoleAdmin        Role = "ADMIN"
	RoleEventPlanner Role = "EVENT_PLANNER"
	RoleTeamPlanner  Role = "TEAM_PLANNER"
	RoleTeamMember   Role = "TEAM_MEMBER"
)

var rolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermissionReadEvents,
		PermissionCreateEvents,
		PermissionDeleteEvents,
		PermissionWriteEventDetails,
		PermissionWriteEventSlots,
		PermissionWriteRegistrations,
		PermissionWriteOwnRegistrations,
	},
	RoleEventPlanner: {
		PermissionReadEvents,
		PermissionCreateEvents,
		PermissionDeleteEvents,
		PermissionWriteEventDetails,
	},
	RoleTeamPlanner: {
		PermissionReadEvents,
		PermissionWriteEventSlots,
		PermissionWriteRegistrations,
	},
	RoleTeamMember: {
		PermissionReadEvents,
		PermissionWriteOwnRegistrations,
	},
}

// PermissionsOf returns the union of the permissions granted by roles.
// Unknown roles grant nothing.
func PermissionsOf(roles ...Role) []Permission {
	seen := make(map[Permission]bool)
	var out []Permission
	for _, r := range roles {
		for _, p := range rolePermissions[r] {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	return out
}
