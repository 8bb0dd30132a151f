package rbac

import "time"

// Role is a position in the per-organization hierarchy. Each level
// implies every level below it.
type Role string

const (
	RoleClient     Role = "client"
	RoleTechnician Role = "technician"
	RoleStaff      Role = "staff"
	RoleAdmin      Role = "admin"
)

var roleRank = map[Role]int{
	RoleClient:     0,
	RoleTechnician: 1,
	RoleStaff:      2,
	RoleAdmin:      3,
}

// Valid reports whether the role is one of the known levels.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r meets or exceeds required in the hierarchy.
func (r Role) AtLeast(required Role) bool {
	rank, ok := roleRank[r]
	if !ok {
		return false
	}
	req, ok := roleRank[required]
	if !ok {
		return false
	}
	return rank >= req
}

// Membership ties a user to an organization with a role.
type Membership struct {
	UserID    int64
	OrgID     int64
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}
