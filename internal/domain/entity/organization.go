package entity

import "time"

type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember:
		return true
	}
	return false
}

// CanManageOrganization reports whether the role may edit tenant settings.
func (r Role) CanManageOrganization() bool {
	return r == RoleOwner || r == RoleAdmin
}

// Organization is the tenant boundary for all asset and issue data.
type Organization struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Membership binds one identity to one organization.
type Membership struct {
	ID        string    `json:"id"`
	OrgID     string    `json:"org_id"`
	UserID    string    `json:"user_id"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Tenant is the unit written by organization bootstrap.
type Tenant struct {
	Organization *Organization `json:"organization"`
	Membership   *Membership   `json:"membership"`
	Subscription *Subscription `json:"subscription"`
}
