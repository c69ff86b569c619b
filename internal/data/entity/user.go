package entity

import "time"

type UserRole string

const (
	RoleRegular UserRole = "regular"
	RoleAdmin   UserRole = "admin"
)

func (r UserRole) Valid() bool {
	return r == RoleRegular || r == RoleAdmin
}

type User struct {
	Base
	Email                 string     `db:"email"`
	PasswordHash          string     `db:"password"`
	FirstName             string     `db:"first_name"`
	LastName              string     `db:"last_name"`
	Role                  UserRole   `db:"role"`
	IsStaff               bool       `db:"is_staff"`
	IsVerified            bool       `db:"is_verified"`
	VerificationCode      *string    `db:"verification_code"`
	VerificationExpiresAt *time.Time `db:"verification_expires_at"`
}

// SetVerification stores a pending code together with its expiry.
func (u *User) SetVerification(code string, expiresAt time.Time) {
	u.VerificationCode = &code
	u.VerificationExpiresAt = &expiresAt
}

// MarkVerified flags the account verified and drops any pending code.
func (u *User) MarkVerified() {
	u.IsVerified = true
	u.VerificationCode = nil
	u.VerificationExpiresAt = nil
}

// HasPendingCode reports whether both code and expiry are present.
func (u *User) HasPendingCode() bool {
	return u.VerificationCode != nil && u.VerificationExpiresAt != nil
}

// UserPatch names the columns an admin edit touches; nil fields keep their stored value.
type UserPatch struct {
	Email      *string
	FirstName  *string
	LastName   *string
	Role       *UserRole
	IsStaff    *bool
	IsVerified *bool
	UpdatedAt  time.Time
}

// Apply writes the set fields onto u. Verifying clears any pending code.
func (p UserPatch) Apply(u *User) {
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.IsStaff != nil {
		u.IsStaff = *p.IsStaff
	}
	if p.IsVerified != nil {
		if *p.IsVerified {
			u.MarkVerified()
		} else {
			u.IsVerified = false
		}
	}
	u.UpdatedAt = p.UpdatedAt
}
