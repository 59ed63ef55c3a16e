package interfaces

import (
	"context"
	"io"

	"account-service/internal/application/command"
	"account-service/internal/application/query"
)

type UserService interface {
	CreateUser(ctx context.Context, createCommand *command.CreateUserCommand) (*command.CreateUserCommandResult, error)
	LoginUser(ctx context.Context, loginCommand *command.LoginUserCommand) (*command.LoginUserCommandResult, error)
	ListUsers(ctx context.Context) (*query.UserQueryListResult, error)
	FindUserById(ctx context.Context, id string) (*query.UserQueryResult, error)
	UpdateUser(ctx context.Context, updateCommand *command.UpdateUserCommand) (*query.UserQueryResult, error)
	DeleteUser(ctx context.Context, id string) (*command.MessageResult, error)
	SendOTP(ctx context.Context, sendOTPCommand *command.SendOTPCommand) (*command.MessageResult, error)
	VerifyOTP(ctx context.Context, verifyOTPCommand *command.VerifyOTPCommand) (*command.MessageResult, error)
	ChangePassword(ctx context.Context, changeCommand *command.ChangePasswordCommand) (*command.MessageResult, error)
	Ping(ctx context.Context) error
}

type UploadService interface {
	Upload(ctx context.Context, originalName string, src io.Reader, size int64, contentType string) (*command.MessageResult, error)
}
