package postgres

import (
	"time"
)

// UserModel is the relational row for an account. Ids are uuid strings so the
// same schema runs on postgres and sqlite.
type UserModel struct {
	Id         string `gorm:"type:varchar(36);primaryKey"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Name       string `gorm:"not null"`
	Email      string `gorm:"uniqueIndex;not null"`
	Password   string `gorm:"not null"`
	OTP        *int
	OTPExpires *time.Time
}

func (UserModel) TableName() string {
	return "users"
}
