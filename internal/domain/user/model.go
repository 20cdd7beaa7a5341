package user

import "time"

// Account is a record in the external user directory. It is the anchor the
// registration and appointment steps hang off.
type Account struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}
