package models

import "time"

const (
	RoleCustomer = "customer"
	RoleWorker   = "worker"
)

type User struct {
	ID       int64
	Email    string
	Name     string
	Role     string
	PassHash string

	// ResetTokenHash is empty when no reset is pending.
	ResetTokenHash   string
	ResetTokenExpiry time.Time
}

// UserView is the only shape of a user that leaves the service.
type UserView struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (u User) View() UserView {
	return UserView{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
	}
}

// Session is keyed by the SHA-256 hex of the bearer token, never the token itself.
type Session struct {
	ID        string
	UserID    int64
	ExpiresAt time.Time
}

// IsExpired reports whether the session is no longer valid at now.
func (s Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
