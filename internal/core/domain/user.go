package domain

import "time"

// Role is the capability tier of an identity.
type Role string

const (
	RoleNone   Role = ""
	RoleUser   Role = "user"
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// User models a resident, applicant or staff identity. Email is the natural key.
type User struct {
	ID        string    `json:"_id,omitempty"`
	Name      string    `json:"name,omitempty"`
	Email     string    `json:"email"`
	PhotoURL  string    `json:"photoURL,omitempty"`
	Role      Role      `json:"role,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// HasRole reports whether the user's stored role is exactly r. A nil user has no role.
func (u *User) HasRole(r Role) bool {
	return u != nil && r != RoleNone && u.Role == r
}

// RoleChange is an audit record of a role mutation.
type RoleChange struct {
	UserID      string
	Email       string
	Role        Role
	Reason      string
	AgreementID string
	Actor       string
	At          time.Time
}

const (
	RoleChangeAgreementApproved = "agreement_approved"
	RoleChangeMemberRemoved     = "member_removed"
)
