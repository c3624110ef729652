package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"notevault/internal/auth"
	"notevault/internal/mail"
	"notevault/internal/model"
	"notevault/internal/repository"
)

const bcryptCost = 10

var (
	// ErrInvalidCredentials is returned when email or password is incorrect.
	// Unknown email and wrong password deliberately collapse into this one
	// error so the response cannot distinguish the two.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUserAlreadyExists is returned when trying to register an existing email.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailSend is returned when the reset notification could not be delivered.
	ErrEmailSend = errors.New("email could not be sent")
	// ErrInvalidResetToken is returned when a reset token is invalid, expired,
	// or already consumed.
	ErrInvalidResetToken = errors.New("invalid or expired reset token")
	// ErrWrongOldPassword is returned when the current password does not match.
	ErrWrongOldPassword = errors.New("old password is incorrect")
	// ErrSamePassword is returned when the new password equals the old one.
	ErrSamePassword = errors.New("new password must differ from the old password")
)

// AuthService handles registration, authentication and password lifecycle.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (token string, err error)
	Login(ctx context.Context, email, password string) (token string, err error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, resetToken, newPassword string) error
	ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error
}

type authService struct {
	userRepo     repository.UserRepository
	jwtService   *auth.JWTService
	mailer       mail.Mailer
	resetURLBase string
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService, mailer mail.Mailer, resetURLBase string) AuthService {
	return &authService{
		userRepo:     userRepo,
		jwtService:   jwtService,
		mailer:       mailer,
		resetURLBase: resetURLBase,
	}
}

// Register creates a new user with a hashed password and issues a session token.
func (s *authService) Register(ctx context.Context, name, email, password string) (string, error) {
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return "", ErrUserAlreadyExists
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("check user existence: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.jwtService.GenerateSessionToken(user.ID, user.Name, user.Email)
	if err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return token, nil
}

// Login verifies credentials and issues a session token.
func (s *authService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateSessionToken(user.ID, user.Name, user.Email)
	if err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return token, nil
}

// ForgotPassword issues a short-lived reset token, persists it on the user
// record and mails a reset link. A send failure rolls the stored fields back.
func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}

	resetToken, err := s.jwtService.GenerateResetToken(user.ID)
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}

	expire := time.Now().Add(auth.ResetTokenExpiry)
	user.ResetPasswordToken = resetToken
	user.ResetPasswordExpire = &expire
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	resetURL := fmt.Sprintf("%s/%s", s.resetURLBase, resetToken)
	if err := s.mailer.Send(user.Email, "Password Reset Request", mail.ResetPasswordBody(resetURL)); err != nil {
		user.ResetPasswordToken = ""
		user.ResetPasswordExpire = nil
		if rbErr := s.userRepo.Update(ctx, user); rbErr != nil {
			return fmt.Errorf("rollback reset token: %w", rbErr)
		}
		return ErrEmailSend
	}

	return nil
}

// ResetPassword consumes a reset token and stores a new password hash.
// The token must carry a valid signature and TTL and still match the
// unexpired token stored on the user record.
func (s *authService) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	if _, err := s.jwtService.ValidateResetToken(resetToken); err != nil {
		return ErrInvalidResetToken
	}

	user, err := s.userRepo.FindByResetToken(ctx, resetToken, time.Now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("find user by reset token: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user.PasswordHash = string(hashedPassword)
	user.ResetPasswordToken = ""
	user.ResetPasswordExpire = nil
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	return nil
}

// ChangePassword rotates the password of an authenticated user. The old
// password must match and the new one must differ from it.
func (s *authService) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return ErrWrongOldPassword
	}

	if oldPassword == newPassword {
		return ErrSamePassword
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user.PasswordHash = string(hashedPassword)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	return nil
}
