package users

import "time"

// User is a signed-in account. ID is the session subject ("google:<sub>").
type User struct {
	ID          string    `json:"userId"`
	Email       string    `json:"email,omitempty"`
	Name        string    `json:"name,omitempty"`
	Picture     string    `json:"picture,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	LastLoginAt time.Time `json:"lastLoginAt"`
}
