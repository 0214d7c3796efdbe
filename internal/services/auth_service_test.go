package services_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"gerai/internal/models"
	"gerai/internal/services"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func TestAuthService_RegisterUser(t *testing.T) {
	ctx := context.Background()

	t.Run("hashes the password and defaults the role", func(t *testing.T) {
		repo := new(MockUserRepository)
		service := services.NewAuthService(repo, "test_secret")

		repo.On("GetByUsername", ctx, "alice").Return(nil, fmt.Errorf("not found")).Once()
		repo.On("GetByEmail", ctx, "alice@example.com").Return(nil, fmt.Errorf("not found")).Once()
		repo.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(nil).Once()

		user := &models.User{Username: "alice", Email: "alice@example.com", Password: "secret123"}
		require.NoError(t, service.RegisterUser(ctx, user))

		assert.Equal(t, models.RoleCustomer, user.Role)
		assert.NotEqual(t, "secret123", user.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("secret123")))
		repo.AssertExpectations(t)
	})

	t.Run("rejects a taken username", func(t *testing.T) {
		repo := new(MockUserRepository)
		service := services.NewAuthService(repo, "test_secret")

		repo.On("GetByUsername", ctx, "alice").
			Return(&models.User{ID: "u1", Username: "alice"}, nil).Once()

		err := service.RegisterUser(ctx, &models.User{Username: "alice", Email: "new@example.com", Password: "secret123"})
		assert.Error(t, err)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("keeps an explicit role", func(t *testing.T) {
		repo := new(MockUserRepository)
		service := services.NewAuthService(repo, "test_secret")

		repo.On("GetByUsername", ctx, "bob").Return(nil, fmt.Errorf("not found")).Once()
		repo.On("GetByEmail", ctx, "bob@example.com").Return(nil, fmt.Errorf("not found")).Once()
		repo.On("Create", ctx, mock.Anything).Return(nil).Once()

		user := &models.User{Username: "bob", Email: "bob@example.com", Password: "secret123", Role: models.RoleSeller}
		require.NoError(t, service.RegisterUser(ctx, user))
		assert.Equal(t, models.RoleSeller, user.Role)
	})
}

func TestAuthService_LoginUser(t *testing.T) {
	ctx := context.Background()

	hashed, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	stored := &models.User{
		ID:       "u1",
		Username: "alice",
		Password: string(hashed),
		Role:     models.RoleSeller,
	}

	t.Run("returns a token carrying the identity claims", func(t *testing.T) {
		repo := new(MockUserRepository)
		service := services.NewAuthService(repo, "test_secret")
		repo.On("GetByUsername", ctx, "alice").Return(stored, nil).Once()

		tokenString, err := service.LoginUser(ctx, "alice", "secret123")
		require.NoError(t, err)

		claims, err := service.ValidateToken(tokenString)
		require.NoError(t, err)
		assert.Equal(t, "u1", claims["user_id"])
		assert.Equal(t, "alice", claims["username"])
		assert.Equal(t, "seller", claims["role"])
	})

	t.Run("wrong password fails", func(t *testing.T) {
		repo := new(MockUserRepository)
		service := services.NewAuthService(repo, "test_secret")
		repo.On("GetByUsername", ctx, "alice").Return(stored, nil).Once()

		_, err := service.LoginUser(ctx, "alice", "wrong")
		assert.Error(t, err)
	})

	t.Run("unknown user fails without revealing existence", func(t *testing.T) {
		repo := new(MockUserRepository)
		service := services.NewAuthService(repo, "test_secret")
		repo.On("GetByUsername", ctx, "ghost").Return(nil, fmt.Errorf("not found")).Once()

		_, err := service.LoginUser(ctx, "ghost", "secret123")
		require.Error(t, err)
		assert.Equal(t, "invalid credentials", err.Error())
	})
}

func TestAuthService_ValidateToken(t *testing.T) {
	service := services.NewAuthService(new(MockUserRepository), "test_secret")

	t.Run("garbage tokens are rejected", func(t *testing.T) {
		_, err := service.ValidateToken("not.a.token")
		assert.Error(t, err)
	})

	t.Run("tokens signed with another secret are rejected", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": "u1"})
		signed, err := token.SignedString([]byte("other_secret"))
		require.NoError(t, err)

		_, err = service.ValidateToken(signed)
		assert.Error(t, err)
	})
}
