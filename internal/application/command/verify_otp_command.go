package command

type VerifyOTPCommand struct {
	Email string `json:"email" form:"email"`
	OTP   string `json:"otp" form:"otp"`
}
