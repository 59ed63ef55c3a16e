package command

type ChangePasswordCommand struct {
	Email           string `json:"email" form:"email"`
	NewPassword     string `json:"newPassword" form:"newPassword"`
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword"`
}
