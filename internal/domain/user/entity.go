// internal/domain/user/entity.go
package user

import (
	"time"
)

// User is the identity the backend reports for the current session.
// The password never travels back from the server.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// MemberSince formats the registration date for the account tab
func (u *User) MemberSince() string {
	if u == nil || u.CreatedAt.IsZero() {
		return ""
	}
	return u.CreatedAt.Local().Format("January 2, 2006")
}
