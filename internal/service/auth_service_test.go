package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"notevault/internal/auth"
	"notevault/internal/model"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByResetToken(ctx context.Context, token string, now time.Time) (*model.User, error) {
	args := m.Called(ctx, token, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockMailer is a mock implementation of mail.Mailer.
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(to, subject, htmlBody string) error {
	args := m.Called(to, subject, htmlBody)
	return args.Error(0)
}

const testResetURLBase = "http://localhost:3000/resetpassword"

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name          string
		userName      string
		email         string
		password      string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:     "successful registration",
			userName: "Test User",
			email:    "test@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:     "user already exists",
			userName: "Existing User",
			email:    "existing@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "existing@example.com").Return(&model.User{Email: "existing@example.com"}, nil)
			},
			expectedError: ErrUserAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			jwtService := auth.NewJWTService("test-secret")
			svc := NewAuthService(mockRepo, jwtService, new(MockMailer), testResetURLBase)

			token, err := svc.Register(context.Background(), tt.userName, tt.email, tt.password)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedError, err)
				assert.Empty(t, token)
			} else {
				assert.NoError(t, err)
				assert.NotEmpty(t, token)

				claims, err := jwtService.ValidateSessionToken(token)
				assert.NoError(t, err)
				assert.Equal(t, tt.email, claims.Email)
				assert.Equal(t, tt.userName, claims.Name)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Register_StoresHashNotPlaintext(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, gorm.ErrRecordNotFound)

	var created *model.User
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Run(func(args mock.Arguments) {
		created = args.Get(1).(*model.User)
	}).Return(nil)

	svc := NewAuthService(mockRepo, auth.NewJWTService("test-secret"), new(MockMailer), testResetURLBase)
	_, err := svc.Register(context.Background(), "Test User", "test@example.com", "password123")
	assert.NoError(t, err)

	assert.NotEmpty(t, created.PasswordHash)
	assert.NotEqual(t, "password123", created.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("password123")))
}

func TestAuthService_Login(t *testing.T) {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), 10)

	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:     "successful login",
			email:    "test@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(&model.User{
					ID:           uuid.New(),
					Name:         "Test User",
					Email:        "test@example.com",
					PasswordHash: string(hashedPassword),
				}, nil)
			},
			expectedError: nil,
		},
		{
			name:     "unknown email",
			email:    "notfound@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "notfound@example.com").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			email:    "test@example.com",
			password: "wrong-password",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(&model.User{
					ID:           uuid.New(),
					Email:        "test@example.com",
					PasswordHash: string(hashedPassword),
				}, nil)
			},
			expectedError: ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			svc := NewAuthService(mockRepo, auth.NewJWTService("test-secret"), new(MockMailer), testResetURLBase)
			token, err := svc.Login(context.Background(), tt.email, tt.password)

			if tt.expectedError != nil {
				assert.Error(t, err)
				// Unknown email and wrong password must be indistinguishable.
				assert.Equal(t, tt.expectedError, err)
				assert.Empty(t, token)
			} else {
				assert.NoError(t, err)
				assert.NotEmpty(t, token)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_ForgotPassword(t *testing.T) {
	user := func() *model.User {
		return &model.User{
			ID:    uuid.New(),
			Name:  "Test User",
			Email: "test@example.com",
		}
	}

	t.Run("stores token and sends email", func(t *testing.T) {
		u := user()
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByEmail", mock.Anything, u.Email).Return(u, nil)
		mockRepo.On("Update", mock.Anything, u).Return(nil)

		mockMailer := new(MockMailer)
		mockMailer.On("Send", u.Email, "Password Reset Request", mock.AnythingOfType("string")).Return(nil)

		svc := NewAuthService(mockRepo, auth.NewJWTService("test-secret"), mockMailer, testResetURLBase)
		err := svc.ForgotPassword(context.Background(), u.Email)

		assert.NoError(t, err)
		assert.NotEmpty(t, u.ResetPasswordToken)
		assert.NotNil(t, u.ResetPasswordExpire)
		assert.True(t, u.ResetPasswordExpire.After(time.Now()))

		mockRepo.AssertExpectations(t)
		mockMailer.AssertExpectations(t)
	})

	t.Run("rolls back stored fields when send fails", func(t *testing.T) {
		u := user()
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByEmail", mock.Anything, u.Email).Return(u, nil)
		mockRepo.On("Update", mock.Anything, u).Return(nil)

		mockMailer := new(MockMailer)
		mockMailer.On("Send", u.Email, "Password Reset Request", mock.AnythingOfType("string")).Return(assert.AnError)

		svc := NewAuthService(mockRepo, auth.NewJWTService("test-secret"), mockMailer, testResetURLBase)
		err := svc.ForgotPassword(context.Background(), u.Email)

		assert.Equal(t, ErrEmailSend, err)
		assert.Empty(t, u.ResetPasswordToken)
		assert.Nil(t, u.ResetPasswordExpire)
		mockRepo.AssertNumberOfCalls(t, "Update", 2)
	})

	t.Run("unknown email", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, gorm.ErrRecordNotFound)

		mockMailer := new(MockMailer)
		svc := NewAuthService(mockRepo, auth.NewJWTService("test-secret"), mockMailer, testResetURLBase)

		err := svc.ForgotPassword(context.Background(), "nobody@example.com")
		assert.Equal(t, ErrUserNotFound, err)
		mockMailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAuthService_ResetPassword(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret")

	t.Run("consumes token and clears reset fields", func(t *testing.T) {
		userID := uuid.New()
		resetToken, err := jwtService.GenerateResetToken(userID)
		assert.NoError(t, err)

		expire := time.Now().Add(10 * time.Minute)
		oldHash, _ := bcrypt.GenerateFromPassword([]byte("old-password"), 10)
		u := &model.User{
			ID:                  userID,
			Email:               "test@example.com",
			PasswordHash:        string(oldHash),
			ResetPasswordToken:  resetToken,
			ResetPasswordExpire: &expire,
		}

		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByResetToken", mock.Anything, resetToken, mock.AnythingOfType("time.Time")).Return(u, nil)
		mockRepo.On("Update", mock.Anything, u).Return(nil)

		svc := NewAuthService(mockRepo, jwtService, new(MockMailer), testResetURLBase)
		err = svc.ResetPassword(context.Background(), resetToken, "new-password")

		assert.NoError(t, err)
		assert.Empty(t, u.ResetPasswordToken)
		assert.Nil(t, u.ResetPasswordExpire)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("new-password")))
		mockRepo.AssertExpectations(t)
	})

	t.Run("consumed or unknown token", func(t *testing.T) {
		resetToken, err := jwtService.GenerateResetToken(uuid.New())
		assert.NoError(t, err)

		// Store-side lookup misses: the token was already consumed.
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByResetToken", mock.Anything, resetToken, mock.AnythingOfType("time.Time")).Return(nil, gorm.ErrRecordNotFound)

		svc := NewAuthService(mockRepo, jwtService, new(MockMailer), testResetURLBase)
		err = svc.ResetPassword(context.Background(), resetToken, "new-password")

		assert.Equal(t, ErrInvalidResetToken, err)
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("bad signature rejected before store lookup", func(t *testing.T) {
		otherIssuer := auth.NewJWTService("other-secret")
		resetToken, err := otherIssuer.GenerateResetToken(uuid.New())
		assert.NoError(t, err)

		mockRepo := new(MockUserRepository)
		svc := NewAuthService(mockRepo, jwtService, new(MockMailer), testResetURLBase)

		err = svc.ResetPassword(context.Background(), resetToken, "new-password")
		assert.Equal(t, ErrInvalidResetToken, err)
		mockRepo.AssertNotCalled(t, "FindByResetToken", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAuthService_ChangePassword(t *testing.T) {
	oldHash, _ := bcrypt.GenerateFromPassword([]byte("old-password"), 10)

	makeUser := func() *model.User {
		return &model.User{
			ID:           uuid.New(),
			Email:        "test@example.com",
			PasswordHash: string(oldHash),
		}
	}

	t.Run("successful change", func(t *testing.T) {
		u := makeUser()
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, u.ID).Return(u, nil)
		mockRepo.On("Update", mock.Anything, u).Return(nil)

		svc := NewAuthService(mockRepo, auth.NewJWTService("test-secret"), new(MockMailer), testResetURLBase)
		err := svc.ChangePassword(context.Background(), u.ID, "old-password", "new-password")

		assert.NoError(t, err)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("new-password")))
		mockRepo.AssertExpectations(t)
	})

	t.Run("wrong old password", func(t *testing.T) {
		u := makeUser()
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, u.ID).Return(u, nil)

		svc := NewAuthService(mockRepo, auth.NewJWTService("test-secret"), new(MockMailer), testResetURLBase)
		err := svc.ChangePassword(context.Background(), u.ID, "wrong-password", "new-password")

		assert.Equal(t, ErrWrongOldPassword, err)
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("new password equals old", func(t *testing.T) {
		u := makeUser()
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, u.ID).Return(u, nil)

		svc := NewAuthService(mockRepo, auth.NewJWTService("test-secret"), new(MockMailer), testResetURLBase)
		err := svc.ChangePassword(context.Background(), u.ID, "old-password", "old-password")

		assert.Equal(t, ErrSamePassword, err)
		assert.Equal(t, string(oldHash), u.PasswordHash)
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("user gone", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		id := uuid.New()
		mockRepo.On("FindByID", mock.Anything, id).Return(nil, gorm.ErrRecordNotFound)

		svc := NewAuthService(mockRepo, auth.NewJWTService("test-secret"), new(MockMailer), testResetURLBase)
		err := svc.ChangePassword(context.Background(), id, "old-password", "new-password")

		assert.Equal(t, ErrUserNotFound, err)
	})
}
