package command

import "account-service/internal/application/common"

type CreateUserCommand struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type CreateUserCommandResult struct {
	Message string             `json:"message"`
	User    *common.UserResult `json:"user"`
}
