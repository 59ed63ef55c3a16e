package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"account-service/internal/application/command"
	"account-service/internal/domain"
	"account-service/internal/infrastructure"
	"account-service/internal/messaging"
)

type testEnv struct {
	repo      *memoryUserRepository
	mailer    *fakeMailer
	publisher *recordingPublisher
	now       time.Time
	svc       *UserService
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()
	env := &testEnv{
		repo:      newMemoryUserRepository(),
		mailer:    &fakeMailer{},
		publisher: &recordingPublisher{},
		now:       time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	base := []Option{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithPublisher(env.publisher),
		WithClock(func() time.Time { return env.now }),
	}
	env.svc = NewUserService(
		env.repo,
		infrastructure.NewJWTService("secret", time.Hour),
		infrastructure.NewOTPService(env.mailer),
		append(base, opts...)...,
	)
	return env
}

func (e *testEnv) register(t *testing.T, name, email, password string) string {
	t.Helper()
	result, err := e.svc.CreateUser(context.Background(), &command.CreateUserCommand{Name: name, Email: email, Password: password})
	require.NoError(t, err)
	return result.User.Id
}

func assertKind(t *testing.T, err error, kind domain.Kind, message string) {
	t.Helper()
	de, ok := domain.AsError(err)
	require.True(t, ok, "expected domain error, got %v", err)
	assert.Equal(t, kind, de.Kind)
	if message != "" {
		assert.Equal(t, message, de.Message)
	}
}

func TestCreateUser(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.svc.CreateUser(context.Background(), &command.CreateUserCommand{Name: "A", Email: "a@x.com", Password: "pw1"})
	require.NoError(t, err)
	assert.Equal(t, "User created successfully", result.Message)
	assert.Equal(t, "A", result.User.Name)

	stored := env.repo.stored("a@x.com")
	assert.NotEqual(t, "pw1", stored.Password)
	assert.NoError(t, stored.CheckPassword("pw1"))
	assert.Equal(t, []string{messaging.SubjectUserCreated}, env.publisher.subjects)
}

func TestCreateUser_MissingFields(t *testing.T) {
	env := newTestEnv(t)
	cases := []command.CreateUserCommand{
		{Email: "a@x.com", Password: "pw"},
		{Name: "A", Password: "pw"},
		{Name: "A", Email: "a@x.com"},
	}
	for i, c := range cases {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			c := c
			_, err := env.svc.CreateUser(context.Background(), &c)
			assertKind(t, err, domain.KindValidation, "Name, email, and password are required")
		})
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "A", "a@x.com", "pw1")

	_, err := env.svc.CreateUser(context.Background(), &command.CreateUserCommand{Name: "B", Email: "a@x.com", Password: "pw2"})
	assertKind(t, err, domain.KindValidation, "email already exists")
}

func TestCreateUser_StoreFailure(t *testing.T) {
	env := newTestEnv(t)
	env.repo.err = errStoreDown

	_, err := env.svc.CreateUser(context.Background(), &command.CreateUserCommand{Name: "A", Email: "a@x.com", Password: "pw1"})
	assertKind(t, err, domain.KindServer, "Server Error")
	assert.ErrorIs(t, err, errStoreDown)
}

func TestLoginUser(t *testing.T) {
	env := newTestEnv(t)
	id := env.register(t, "A", "a@x.com", "pw1")

	result, err := env.svc.LoginUser(context.Background(), &command.LoginUserCommand{Email: "a@x.com", Password: "pw1"})
	require.NoError(t, err)
	assert.Equal(t, "User logged in successfully", result.Message)
	assert.Equal(t, id, result.UserId)

	userID, err := infrastructure.NewJWTService("secret", time.Hour).ParseToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, id, userID)
}

func TestLoginUser_GenericFailure(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "A", "a@x.com", "pw1")

	_, wrongPassword := env.svc.LoginUser(context.Background(), &command.LoginUserCommand{Email: "a@x.com", Password: "nope"})
	_, unknownEmail := env.svc.LoginUser(context.Background(), &command.LoginUserCommand{Email: "b@x.com", Password: "pw1"})

	assertKind(t, wrongPassword, domain.KindAuth, "Invalid credentials")
	assertKind(t, unknownEmail, domain.KindAuth, "Invalid credentials")
}

func TestLoginUser_MissingFields(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.LoginUser(context.Background(), &command.LoginUserCommand{Email: "a@x.com"})
	assertKind(t, err, domain.KindValidation, "Email and password are required")
}

func TestListUsers(t *testing.T) {
	env := newTestEnv(t)

	empty, err := env.svc.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, empty.Result)

	env.register(t, "A", "a@x.com", "pw1")
	env.register(t, "B", "b@x.com", "pw1")

	result, err := env.svc.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, result.Result, 2)
}

func TestProfileCRUD_NotFound(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "A", "a@x.com", "pw1")
	name := "B"

	_, err := env.svc.FindUserById(context.Background(), "missing")
	assertKind(t, err, domain.KindNotFound, "User not found")

	_, err = env.svc.UpdateUser(context.Background(), &command.UpdateUserCommand{Id: "missing", Name: &name})
	assertKind(t, err, domain.KindNotFound, "User not found")

	_, err = env.svc.DeleteUser(context.Background(), "missing")
	assertKind(t, err, domain.KindNotFound, "User not found")

	assert.Equal(t, "A", env.repo.stored("a@x.com").Name)
}

func TestUpdateUser(t *testing.T) {
	env := newTestEnv(t)
	id := env.register(t, "A", "a@x.com", "pw1")
	env.register(t, "B", "b@x.com", "pw1")

	name := "Renamed"
	result, err := env.svc.UpdateUser(context.Background(), &command.UpdateUserCommand{Id: id, Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", result.Result.Name)
	assert.Equal(t, "a@x.com", result.Result.Email)

	taken := "b@x.com"
	_, err = env.svc.UpdateUser(context.Background(), &command.UpdateUserCommand{Id: id, Email: &taken})
	assertKind(t, err, domain.KindValidation, "")
}

func TestDeleteUser(t *testing.T) {
	env := newTestEnv(t)
	id := env.register(t, "A", "a@x.com", "pw1")

	result, err := env.svc.DeleteUser(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "User deleted successfully", result.Message)

	_, err = env.svc.FindUserById(context.Background(), id)
	assertKind(t, err, domain.KindNotFound, "")
	assert.Contains(t, env.publisher.subjects, messaging.SubjectUserDeleted)
}

func TestSendOTP(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "A", "a@x.com", "pw1")

	result, err := env.svc.SendOTP(context.Background(), &command.SendOTPCommand{Email: "a@x.com"})
	require.NoError(t, err)
	assert.Equal(t, "OTP sent successfully", result.Message)

	stored := env.repo.stored("a@x.com")
	require.NotNil(t, stored.OTP)
	require.NotNil(t, stored.OTPExpires)
	assert.GreaterOrEqual(t, *stored.OTP, 100000)
	assert.LessOrEqual(t, *stored.OTP, 999999)
	assert.Equal(t, env.now.Add(time.Hour), *stored.OTPExpires)

	require.Len(t, env.mailer.sent, 1)
	assert.Equal(t, "Forgot Password OTP", env.mailer.sent[0].Subject)
	assert.Contains(t, env.mailer.sent[0].Body, strconv.Itoa(*stored.OTP))
}

func TestSendOTP_UnknownEmail(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.SendOTP(context.Background(), &command.SendOTPCommand{Email: "nobody@x.com"})
	assertKind(t, err, domain.KindNotFound, "User not found")
	assert.Empty(t, env.mailer.sent)
}

func TestSendOTP_MailFailureKeepsCode(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "A", "a@x.com", "pw1")
	env.mailer.err = errors.New("smtp down")

	_, err := env.svc.SendOTP(context.Background(), &command.SendOTPCommand{Email: "a@x.com"})
	assertKind(t, err, domain.KindMail, "Failed to send OTP via email")

	assert.NotNil(t, env.repo.stored("a@x.com").OTP)

	result, err := env.svc.VerifyOTP(context.Background(), &command.VerifyOTPCommand{Email: "a@x.com", OTP: "000000"})
	require.NoError(t, err)
	assert.Equal(t, "OTP verified successfully", result.Message)
}

func TestSendOTP_SecondRequestOverwritesFirst(t *testing.T) {
	env := newTestEnv(t, WithOTPMatch(true))
	env.register(t, "A", "a@x.com", "pw1")

	_, err := env.svc.SendOTP(context.Background(), &command.SendOTPCommand{Email: "a@x.com"})
	require.NoError(t, err)
	first := *env.repo.stored("a@x.com").OTP

	var second int
	for {
		_, err = env.svc.SendOTP(context.Background(), &command.SendOTPCommand{Email: "a@x.com"})
		require.NoError(t, err)
		second = *env.repo.stored("a@x.com").OTP
		if second != first {
			break
		}
	}

	_, err = env.svc.VerifyOTP(context.Background(), &command.VerifyOTPCommand{Email: "a@x.com", OTP: strconv.Itoa(first)})
	assertKind(t, err, domain.KindValidation, "Invalid OTP or email")

	_, err = env.svc.VerifyOTP(context.Background(), &command.VerifyOTPCommand{Email: "a@x.com", OTP: strconv.Itoa(second)})
	assert.NoError(t, err)
}

func TestVerifyOTP_DoesNotCompareCodesByDefault(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "A", "a@x.com", "pw1")
	_, err := env.svc.SendOTP(context.Background(), &command.SendOTPCommand{Email: "a@x.com"})
	require.NoError(t, err)

	_, err = env.svc.VerifyOTP(context.Background(), &command.VerifyOTPCommand{Email: "a@x.com", OTP: "wrong"})
	require.NoError(t, err)

	stored := env.repo.stored("a@x.com")
	assert.Nil(t, stored.OTP)
	assert.Nil(t, stored.OTPExpires)
}

func TestVerifyOTP_Expired(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "A", "a@x.com", "pw1")
	_, err := env.svc.SendOTP(context.Background(), &command.SendOTPCommand{Email: "a@x.com"})
	require.NoError(t, err)
	code := strconv.Itoa(*env.repo.stored("a@x.com").OTP)

	env.now = env.now.Add(2 * time.Hour)

	_, err = env.svc.VerifyOTP(context.Background(), &command.VerifyOTPCommand{Email: "a@x.com", OTP: code})
	assertKind(t, err, domain.KindValidation, "OTP has expired")
	assert.NotNil(t, env.repo.stored("a@x.com").OTP)
}

func TestVerifyOTP_UnknownEmail(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.VerifyOTP(context.Background(), &command.VerifyOTPCommand{Email: "nobody@x.com", OTP: "123456"})
	assertKind(t, err, domain.KindValidation, "Invalid OTP or email")
}

func TestVerifyOTP_NoPendingCodeSucceeds(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "A", "a@x.com", "pw1")

	_, err := env.svc.VerifyOTP(context.Background(), &command.VerifyOTPCommand{Email: "a@x.com", OTP: "123456"})
	assert.NoError(t, err)
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "A", "a@x.com", "pw1")

	result, err := env.svc.ChangePassword(context.Background(), &command.ChangePasswordCommand{
		Email: "a@x.com", NewPassword: "pw2", ConfirmPassword: "pw2",
	})
	require.NoError(t, err)
	assert.Equal(t, "Password changed successfully", result.Message)

	stored := env.repo.stored("a@x.com")
	assert.NoError(t, stored.CheckPassword("pw2"))
	assert.Contains(t, env.publisher.subjects, messaging.SubjectUserPasswordChanged)
}

func TestChangePassword_Validation(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "A", "a@x.com", "pw1")
	before := env.repo.stored("a@x.com").Password

	_, err := env.svc.ChangePassword(context.Background(), &command.ChangePasswordCommand{Email: "a@x.com", NewPassword: "pw2"})
	assertKind(t, err, domain.KindValidation, "Email, new password, and confirm password are required")

	_, err = env.svc.ChangePassword(context.Background(), &command.ChangePasswordCommand{
		Email: "a@x.com", NewPassword: "pw2", ConfirmPassword: "pw3",
	})
	assertKind(t, err, domain.KindValidation, "New password and confirm password do not match")

	_, err = env.svc.ChangePassword(context.Background(), &command.ChangePasswordCommand{
		Email: "nobody@x.com", NewPassword: "pw2", ConfirmPassword: "pw2",
	})
	assertKind(t, err, domain.KindNotFound, "User not found")

	assert.Equal(t, before, env.repo.stored("a@x.com").Password)
}

func TestWritesToDeletedRecordFail(t *testing.T) {
	tests := []struct {
		name    string
		call    func(svc *UserService) error
		kind    domain.Kind
		message string
	}{
		{
			name: "send otp",
			call: func(svc *UserService) error {
				_, err := svc.SendOTP(context.Background(), &command.SendOTPCommand{Email: "a@x.com"})
				return err
			},
			kind:    domain.KindNotFound,
			message: "User not found",
		},
		{
			name: "verify otp",
			call: func(svc *UserService) error {
				_, err := svc.VerifyOTP(context.Background(), &command.VerifyOTPCommand{Email: "a@x.com", OTP: "123456"})
				return err
			},
			kind:    domain.KindValidation,
			message: "Invalid OTP or email",
		},
		{
			name: "change password",
			call: func(svc *UserService) error {
				_, err := svc.ChangePassword(context.Background(), &command.ChangePasswordCommand{
					Email: "a@x.com", NewPassword: "pw2", ConfirmPassword: "pw2",
				})
				return err
			},
			kind:    domain.KindNotFound,
			message: "User not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.register(t, "A", "a@x.com", "pw1")
			env.repo.vanishOnUpdate = true

			err := tt.call(env.svc)
			assertKind(t, err, tt.kind, tt.message)

			assert.Empty(t, env.mailer.sent)
			assert.NotContains(t, env.publisher.subjects, messaging.SubjectUserPasswordChanged)
		})
	}
}

func TestPublishFailureIsNotFatal(t *testing.T) {
	env := newTestEnv(t)
	env.publisher.err = errors.New("nats down")

	_, err := env.svc.CreateUser(context.Background(), &command.CreateUserCommand{Name: "A", Email: "a@x.com", Password: "pw1"})
	assert.NoError(t, err)
}

func TestResetScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "A", "a@x.com", "pw1")

	_, err := env.svc.LoginUser(ctx, &command.LoginUserCommand{Email: "a@x.com", Password: "pw1"})
	require.NoError(t, err)

	_, err = env.svc.SendOTP(ctx, &command.SendOTPCommand{Email: "a@x.com"})
	require.NoError(t, err)
	stored := env.repo.stored("a@x.com")
	require.NotNil(t, stored.OTP)
	assert.Len(t, strconv.Itoa(*stored.OTP), 6)
	assert.True(t, stored.OTPExpires.After(env.now))

	_, err = env.svc.ChangePassword(ctx, &command.ChangePasswordCommand{Email: "a@x.com", NewPassword: "pw2", ConfirmPassword: "pw2"})
	require.NoError(t, err)

	_, err = env.svc.LoginUser(ctx, &command.LoginUserCommand{Email: "a@x.com", Password: "pw1"})
	assertKind(t, err, domain.KindAuth, "Invalid credentials")

	_, err = env.svc.LoginUser(ctx, &command.LoginUserCommand{Email: "a@x.com", Password: "pw2"})
	assert.NoError(t, err)
}
