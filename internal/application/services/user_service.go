package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"account-service/internal/application/command"
	"account-service/internal/application/mapper"
	"account-service/internal/application/query"
	"account-service/internal/domain"
	"account-service/internal/domain/entities"
	"account-service/internal/domain/repositories"
	"account-service/internal/infrastructure"
	"account-service/internal/messaging"
)

const defaultOTPExpiry = time.Hour

type UserService struct {
	userRepo     repositories.UserRepository
	jwtService   *infrastructure.JWTService
	otpService   *infrastructure.OTPService
	publisher    messaging.EventPublisher
	logger       *slog.Logger
	now          func() time.Time
	otpExpiry    time.Duration
	enforceMatch bool
}

type Option func(*UserService)

func WithLogger(logger *slog.Logger) Option {
	return func(s *UserService) { s.logger = logger }
}

func WithPublisher(publisher messaging.EventPublisher) Option {
	return func(s *UserService) { s.publisher = publisher }
}

func WithClock(now func() time.Time) Option {
	return func(s *UserService) { s.now = now }
}

func WithOTPExpiry(expiry time.Duration) Option {
	return func(s *UserService) { s.otpExpiry = expiry }
}

// WithOTPMatch makes VerifyOTP compare the submitted code with the stored one.
// Without it only the expiry is checked.
func WithOTPMatch(enforce bool) Option {
	return func(s *UserService) { s.enforceMatch = enforce }
}

func NewUserService(
	userRepo repositories.UserRepository,
	jwtService *infrastructure.JWTService,
	otpService *infrastructure.OTPService,
	opts ...Option,
) *UserService {
	s := &UserService{
		userRepo:   userRepo,
		jwtService: jwtService,
		otpService: otpService,
		publisher:  messaging.NopPublisher{},
		logger:     slog.Default(),
		now:        time.Now,
		otpExpiry:  defaultOTPExpiry,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *UserService) CreateUser(ctx context.Context, createCommand *command.CreateUserCommand) (*command.CreateUserCommandResult, error) {
	if createCommand.Name == "" || createCommand.Email == "" || createCommand.Password == "" {
		return nil, domain.NewValidationError("Name, email, and password are required")
	}

	newUser := entities.NewUser(createCommand.Name, createCommand.Email, createCommand.Password)
	validatedUser, err := entities.NewValidatedUser(newUser)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	if err := newUser.HashPassword(); err != nil {
		return nil, s.serverError("create user", err)
	}

	createdUser, err := s.userRepo.Create(ctx, validatedUser)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return nil, domain.NewValidationError(err.Error())
		}
		return nil, s.serverError("create user", err)
	}

	s.publish(ctx, messaging.SubjectUserCreated, createdUser)

	return &command.CreateUserCommandResult{
		Message: "User created successfully",
		User:    mapper.NewUserResultFromEntity(createdUser),
	}, nil
}

// LoginUser answers unknown email and wrong password identically.
func (s *UserService) LoginUser(ctx context.Context, loginCommand *command.LoginUserCommand) (*command.LoginUserCommandResult, error) {
	if loginCommand.Email == "" || loginCommand.Password == "" {
		return nil, domain.NewValidationError("Email and password are required")
	}

	user, err := s.userRepo.FindByEmail(ctx, loginCommand.Email)
	if err != nil {
		return nil, s.serverError("login", err)
	}
	if user == nil {
		return nil, domain.NewAuthError("Invalid credentials")
	}
	if err := user.CheckPassword(loginCommand.Password); err != nil {
		return nil, domain.NewAuthError("Invalid credentials")
	}

	token, err := s.jwtService.GenerateToken(user.Id)
	if err != nil {
		return nil, s.serverError("login", err)
	}

	return &command.LoginUserCommandResult{
		Message: "User logged in successfully",
		Token:   token,
		UserId:  user.Id,
		Email:   user.Email,
	}, nil
}

func (s *UserService) ListUsers(ctx context.Context) (*query.UserQueryListResult, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, s.serverError("list users", err)
	}

	return &query.UserQueryListResult{
		Result: mapper.NewUserResultsFromEntities(users),
	}, nil
}

func (s *UserService) FindUserById(ctx context.Context, id string) (*query.UserQueryResult, error) {
	user, err := s.userRepo.FindById(ctx, id)
	if err != nil {
		return nil, s.serverError("find user", err)
	}
	if user == nil {
		return nil, domain.NewNotFoundError("User not found")
	}

	return &query.UserQueryResult{
		Result: mapper.NewUserResultFromEntity(user),
	}, nil
}

func (s *UserService) UpdateUser(ctx context.Context, updateCommand *command.UpdateUserCommand) (*query.UserQueryResult, error) {
	user, err := s.userRepo.UpdateProfile(ctx, updateCommand.Id, updateCommand.Name, updateCommand.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return nil, domain.NewValidationError(err.Error())
		}
		return nil, s.serverError("update user", err)
	}
	if user == nil {
		return nil, domain.NewNotFoundError("User not found")
	}

	return &query.UserQueryResult{
		Result: mapper.NewUserResultFromEntity(user),
	}, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id string) (*command.MessageResult, error) {
	deleted, err := s.userRepo.Delete(ctx, id)
	if err != nil {
		return nil, s.serverError("delete user", err)
	}
	if deleted == nil {
		return nil, domain.NewNotFoundError("User not found")
	}

	s.publish(ctx, messaging.SubjectUserDeleted, deleted)

	return &command.MessageResult{Message: "User deleted successfully"}, nil
}

// SendOTP persists a fresh code before mailing it. A mail failure is reported
// to the caller but the stored code stays valid.
func (s *UserService) SendOTP(ctx context.Context, sendOTPCommand *command.SendOTPCommand) (*command.MessageResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, sendOTPCommand.Email)
	if err != nil {
		return nil, s.serverError("send otp", err)
	}
	if user == nil {
		return nil, domain.NewNotFoundError("User not found")
	}

	otp, err := s.otpService.GenerateOTP()
	if err != nil {
		return nil, s.serverError("send otp", err)
	}
	user.IssueOTP(otp, s.now().Add(s.otpExpiry))

	saved, err := s.userRepo.Update(ctx, user)
	if err != nil {
		return nil, s.serverError("send otp", err)
	}
	if saved == nil {
		return nil, domain.NewNotFoundError("User not found")
	}

	if err := s.otpService.SendOTP(ctx, user.Email, otp); err != nil {
		s.logger.Error("failed to send otp email", "email", user.Email, "error", err)
		return nil, domain.NewMailError("Failed to send OTP via email", err)
	}

	s.logger.Info("otp sent", "email", user.Email)
	return &command.MessageResult{Message: "OTP sent successfully"}, nil
}

// VerifyOTP clears a pending code unless it has expired. A user with no
// pending code verifies successfully.
func (s *UserService) VerifyOTP(ctx context.Context, verifyOTPCommand *command.VerifyOTPCommand) (*command.MessageResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, verifyOTPCommand.Email)
	if err != nil {
		return nil, s.serverError("verify otp", err)
	}
	if user == nil {
		return nil, domain.NewValidationError("Invalid OTP or email")
	}

	if user.OTPExpired(s.now()) {
		return nil, domain.NewValidationError("OTP has expired")
	}
	if s.enforceMatch && !user.OTPMatches(verifyOTPCommand.OTP) {
		return nil, domain.NewValidationError("Invalid OTP or email")
	}

	user.ClearOTP()
	saved, err := s.userRepo.Update(ctx, user)
	if err != nil {
		return nil, s.serverError("verify otp", err)
	}
	if saved == nil {
		return nil, domain.NewValidationError("Invalid OTP or email")
	}

	return &command.MessageResult{Message: "OTP verified successfully"}, nil
}

// ChangePassword is not gated on a verified OTP.
func (s *UserService) ChangePassword(ctx context.Context, changeCommand *command.ChangePasswordCommand) (*command.MessageResult, error) {
	if changeCommand.NewPassword == "" || changeCommand.ConfirmPassword == "" || changeCommand.Email == "" {
		return nil, domain.NewValidationError("Email, new password, and confirm password are required")
	}
	if changeCommand.NewPassword != changeCommand.ConfirmPassword {
		return nil, domain.NewValidationError("New password and confirm password do not match")
	}

	user, err := s.userRepo.FindByEmail(ctx, changeCommand.Email)
	if err != nil {
		return nil, s.serverError("change password", err)
	}
	if user == nil {
		return nil, domain.NewNotFoundError("User not found")
	}

	if err := user.ChangePassword(changeCommand.NewPassword); err != nil {
		return nil, s.serverError("change password", err)
	}
	saved, err := s.userRepo.Update(ctx, user)
	if err != nil {
		return nil, s.serverError("change password", err)
	}
	if saved == nil {
		return nil, domain.NewNotFoundError("User not found")
	}

	s.publish(ctx, messaging.SubjectUserPasswordChanged, saved)

	return &command.MessageResult{Message: "Password changed successfully"}, nil
}

func (s *UserService) Ping(ctx context.Context) error {
	return s.userRepo.Ping(ctx)
}

func (s *UserService) publish(ctx context.Context, subject string, user *entities.User) {
	event := messaging.UserEvent{Id: user.Id, Email: user.Email}
	if err := s.publisher.Publish(ctx, subject, event); err != nil {
		s.logger.Warn("failed to publish account event", "subject", subject, "error", err)
	}
}

func (s *UserService) serverError(op string, err error) error {
	return domain.NewServerError(fmt.Errorf("%s: %w", op, err))
}
