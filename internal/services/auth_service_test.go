package services_test

import (
	"fmt"
	"testing"
	"time"

	"blog/internal/models"
	"blog/internal/repositories"
	"blog/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByUsername(username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(id uint) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func notFound(what string) error {
	return fmt.Errorf("%s: %w", what, repositories.ErrNotFound)
}

const testJWTSecret = "test_jwt_secret"

func TestAuthService_RegisterUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret, time.Hour)

	user := &models.User{
		Username: "testuser",
		Email:    "test@example.com",
		Password: "password123",
	}

	mockRepo.On("GetByUsername", user.Username).Return(nil, notFound("user")).Once()
	mockRepo.On("GetByEmail", user.Email).Return(nil, notFound("user")).Once()
	mockRepo.On("Create", mock.AnythingOfType("*models.User")).Return(nil).Once()

	err := authService.RegisterUser(user)
	require.NoError(t, err)
	assert.NotEqual(t, "password123", user.Password, "password must be stored hashed")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("password123")))
	mockRepo.AssertExpectations(t)
}

func TestAuthService_RegisterUserConflicts(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret, time.Hour)
	newUser := func() *models.User {
		return &models.User{Username: "testuser", Email: "test@example.com", Password: "password123"}
	}

	// Username already taken
	mockRepo.On("GetByUsername", "testuser").Return(&models.User{ID: 1}, nil).Once()
	err := authService.RegisterUser(newUser())
	var conflict *services.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "username", conflict.Field)
	assert.Contains(t, err.Error(), "username 'testuser' already registered")

	// Email already registered
	mockRepo.On("GetByUsername", "testuser").Return(nil, notFound("user")).Once()
	mockRepo.On("GetByEmail", "test@example.com").Return(&models.User{ID: 1}, nil).Once()
	err = authService.RegisterUser(newUser())
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "email", conflict.Field)

	// Unique index fires after the pre-check passed
	mockRepo.On("GetByUsername", "testuser").Return(nil, notFound("user")).Once()
	mockRepo.On("GetByEmail", "test@example.com").Return(nil, notFound("user")).Once()
	mockRepo.On("Create", mock.AnythingOfType("*models.User")).
		Return(fmt.Errorf("insert: %w", repositories.ErrDuplicate)).Once()
	err = authService.RegisterUser(newUser())
	require.ErrorAs(t, err, &conflict)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_RegisterUserStoreFailure(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret, time.Hour)

	mockRepo.On("GetByUsername", "testuser").Return(nil, fmt.Errorf("connection refused")).Once()
	err := authService.RegisterUser(&models.User{Username: "testuser", Email: "t@example.com", Password: "p"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	mockRepo.AssertExpectations(t)
}

func TestAuthService_LoginUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret, time.Hour)

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &models.User{
		ID:       42,
		Username: "testuser",
		Email:    "test@example.com",
		Password: string(hashedPassword),
	}

	// Successful login
	mockRepo.On("GetByEmail", user.Email).Return(user, nil).Once()
	loggedIn, token, err := authService.LoginUser("test@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, user, loggedIn)
	assert.NotEmpty(t, token)

	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, float64(42), claims["user_id"])
	assert.Equal(t, user.Email, claims["email"])

	// Wrong password
	mockRepo.On("GetByEmail", user.Email).Return(user, nil).Once()
	_, _, err = authService.LoginUser("test@example.com", "wrongpassword")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	// Unknown email gets the same error
	mockRepo.On("GetByEmail", "nobody@example.com").Return(nil, notFound("user")).Once()
	_, _, err = authService.LoginUser("nobody@example.com", "password123")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_ValidateToken(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret, time.Hour)

	validTokenString, err := authService.GenerateToken(&models.User{ID: 7, Email: "seven@example.com"})
	require.NoError(t, err)

	claims, err := authService.ValidateToken(validTokenString)
	assert.NoError(t, err)
	assert.Equal(t, float64(7), claims["user_id"])
	assert.Equal(t, "seven@example.com", claims["email"])

	// Garbage token
	_, err = authService.ValidateToken("invalid.token.string")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token")

	// Signed with another secret
	other := services.NewAuthService(mockRepo, "another_secret", time.Hour)
	foreign, err := other.GenerateToken(&models.User{ID: 7})
	require.NoError(t, err)
	_, err = authService.ValidateToken(foreign)
	assert.Error(t, err)

	// Expired token
	expiredToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 7,
		"exp":     jwt.TimeFunc().Add(-time.Hour).Unix(),
	})
	expiredTokenString, _ := expiredToken.SignedString([]byte(testJWTSecret))
	_, err = authService.ValidateToken(expiredTokenString)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token")
}

func TestAuthService_GetUserByID(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret, time.Hour)

	mockRepo.On("GetByID", uint(1)).Return(&models.User{ID: 1, Username: "a"}, nil).Once()
	user, err := authService.GetUserByID(1)
	require.NoError(t, err)
	assert.Equal(t, "a", user.Username)

	mockRepo.On("GetByID", uint(2)).Return(nil, notFound("user")).Once()
	_, err = authService.GetUserByID(2)
	assert.ErrorIs(t, err, services.ErrUserNotFound)
	mockRepo.AssertExpectations(t)
}
