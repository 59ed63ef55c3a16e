package infrastructure

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	otpMin = 100000
	otpMax = 999999
)

// Message is a plain-text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers a single message. Implementations must honour ctx where the
// underlying client allows it.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type OTPService struct {
	mailer Mailer
}

func NewOTPService(mailer Mailer) *OTPService {
	return &OTPService{mailer: mailer}
}

// GenerateOTP draws a code uniformly from [100000, 999999].
func (o *OTPService) GenerateOTP() (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		return 0, err
	}
	return otpMin + int(n.Int64()), nil
}

func (o *OTPService) SendOTP(ctx context.Context, recipientEmail string, otp int) error {
	return o.mailer.Send(ctx, Message{
		To:      recipientEmail,
		Subject: "Forgot Password OTP",
		Body:    fmt.Sprintf("Your OTP for resetting password is: %d", otp),
	})
}
