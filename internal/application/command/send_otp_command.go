package command

type SendOTPCommand struct {
	Email string `json:"email" form:"email"`
}

// MessageResult is the body of operations that only report an outcome.
type MessageResult struct {
	Message string `json:"message"`
}
