// Package policy decides what a caller may reach based on the account behind it.
package policy

import "coffee-shop-api/internal/data/entity"

// Level orders caller capabilities; a higher level includes the lower ones.
type Level int

const (
	Anonymous Level = iota
	Self
	Admin
)

func (l Level) String() string {
	switch l {
	case Self:
		return "self"
	case Admin:
		return "admin"
	default:
		return "anonymous"
	}
}

// IsAdmin is the single admin-capability predicate: role admin OR staff flag.
func IsAdmin(user *entity.User) bool {
	return user != nil && (user.Role == entity.RoleAdmin || user.IsStaff)
}

// Classify maps an authenticated account (nil for none) to its level.
func Classify(user *entity.User) Level {
	switch {
	case user == nil:
		return Anonymous
	case IsAdmin(user):
		return Admin
	default:
		return Self
	}
}

// Allows reports whether the caller reaches the required level.
func Allows(user *entity.User, required Level) bool {
	return Classify(user) >= required
}
