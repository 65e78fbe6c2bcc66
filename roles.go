package photostream

// Role is a user's global role
type Role string

const (
	// RoleUser is the default role assigned at registration
	RoleUser Role = "user"
	// RoleModerator can curate content (i.e. remove photos, comments)
	RoleModerator Role = "moderator"
	// RoleAdmin manages users and content. The first account ever
	// registered is promoted to admin.
	RoleAdmin Role = "admin"
)

// IsValid checks if the role is one of the predefined valid roles
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	default:
		return false
	}
}

// Is reports an exact role match. Role checks on protected operations
// are exact: an admin does not pass a moderator check.
func (r Role) Is(other Role) bool {
	return r == other
}

// AtLeast checks if this role meets the minimum required level. Only
// content moderation opts into the hierarchy; everything else uses
// exact matching via Is.
func (r Role) AtLeast(minRole Role) bool {
	currentLevel, exists := roleHierarchy[r]
	if !exists {
		return false
	}

	minLevel, exists := roleHierarchy[minRole]
	if !exists {
		return false
	}

	return currentLevel >= minLevel
}

var roleHierarchy = map[Role]int{
	RoleUser:      0,
	RoleModerator: 1,
	RoleAdmin:     2,
}

// GetAllRoles returns all predefined roles in hierarchical order
func GetAllRoles() []Role {
	return []Role{
		RoleUser,
		RoleModerator,
		RoleAdmin,
	}
}

// ParseRole safely parses a string into a Role
func ParseRole(roleStr string) (Role, bool) {
	role := Role(roleStr)
	return role, role.IsValid()
}
