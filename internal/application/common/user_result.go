package common

import (
	"time"
)

// UserResult is the outbound account representation. It never carries the
// password hash or reset code.
type UserResult struct {
	Id        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
