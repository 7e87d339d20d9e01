package models

// Role is the kind of account a token or request is bound to.
type Role string

const (
	RoleUser   Role = "user"
	RoleDoctor Role = "doctor"
)

// ParseRole maps a free-form role string onto the closed role set.
// An empty string resolves to RoleUser.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case "", RoleUser:
		return RoleUser, true
	case RoleDoctor:
		return RoleDoctor, true
	default:
		return "", false
	}
}

// Account is implemented by *User and *Doctor. Ids are only unique within
// one role, so (AccountRole, AccountID) is the identity.
type Account interface {
	AccountID() int64
	AccountRole() Role
	AccountEmail() string
	AccountPasswordHash() string
	AccountTokenVersion() int
	// View is the JSON representation returned to clients.
	View() any
}
