package entities

import (
	"errors"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// OTPState is derived from the otp/otpExpires pair; it is never stored.
type OTPState int

const (
	NoPendingReset OTPState = iota
	PendingReset
	ExpiredReset
)

type User struct {
	Id         string
	Name       string
	Email      string
	Password   string
	OTP        *int
	OTPExpires *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func NewUser(name, email, password string) *User {
	now := time.Now()
	return &User{
		CreatedAt: now,
		UpdatedAt: now,
		Name:      name,
		Email:     email,
		Password:  password,
	}
}

func (u *User) validate() error {
	if u.Name == "" {
		return errors.New("name must not be empty")
	}
	if u.Email == "" {
		return errors.New("email must not be empty")
	}
	if u.Password == "" {
		return errors.New("password must not be empty")
	}
	if u.CreatedAt.After(u.UpdatedAt) {
		return errors.New("created_at must be before updated_at")
	}
	return nil
}

// HashPassword replaces the plaintext Password with its bcrypt hash.
func (u *User) HashPassword() error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
}

// ChangePassword hashes and stores a new password.
func (u *User) ChangePassword(password string) error {
	u.Password = password
	if err := u.HashPassword(); err != nil {
		return err
	}
	u.UpdatedAt = time.Now()
	return nil
}

// UpdateProfile applies the non-nil fields only.
func (u *User) UpdateProfile(name, email *string) {
	if name != nil {
		u.Name = *name
	}
	if email != nil {
		u.Email = *email
	}
	u.UpdatedAt = time.Now()
}

// IssueOTP sets both reset fields, overwriting any pending code.
func (u *User) IssueOTP(code int, expires time.Time) {
	u.OTP = &code
	u.OTPExpires = &expires
	u.UpdatedAt = time.Now()
}

// ClearOTP removes both reset fields together.
func (u *User) ClearOTP() {
	u.OTP = nil
	u.OTPExpires = nil
	u.UpdatedAt = time.Now()
}

// OTPExpired is true only when an expiry is stored and lies before now. A user
// without a pending code is not considered expired.
func (u *User) OTPExpired(now time.Time) bool {
	return u.OTPExpires != nil && u.OTPExpires.Before(now)
}

// OTPMatches compares a submitted code with the stored one.
func (u *User) OTPMatches(submitted string) bool {
	if u.OTP == nil {
		return false
	}
	return strconv.Itoa(*u.OTP) == submitted
}

func (u *User) OTPState(now time.Time) OTPState {
	switch {
	case u.OTP == nil:
		return NoPendingReset
	case u.OTPExpired(now):
		return ExpiredReset
	default:
		return PendingReset
	}
}
