package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/skladhub/admin-backend/internal/models"
	"github.com/skladhub/admin-backend/internal/pkg/apperror"
	"github.com/skladhub/admin-backend/internal/repository"
)

type mockAuthRepo struct {
	mock.Mock
}

func (m *mockAuthRepo) Create(ctx context.Context, admin *models.Admin) error {
	args := m.Called(ctx, admin)
	return args.Error(0)
}

func (m *mockAuthRepo) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Admin), args.Error(1)
}

func (m *mockAuthRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Admin, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Admin), args.Error(1)
}

func (m *mockAuthRepo) UpdateLastLoginAt(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockAuthRepo) CreateSession(ctx context.Context, session *models.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *mockAuthRepo) GetSessionByToken(ctx context.Context, refreshToken string) (*models.Session, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *mockAuthRepo) DeleteSession(ctx context.Context, refreshToken string) error {
	args := m.Called(ctx, refreshToken)
	return args.Error(0)
}

func testTokenManager() *TokenManager {
	return NewTokenManager("test-access-secret", "test-refresh-secret", 15*time.Minute, 720*time.Hour)
}

func testAdmin(t *testing.T, password string) *models.Admin {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	assert.NoError(t, err)

	return &models.Admin{
		ID:           uuid.New(),
		Email:        "operator@skladhub.ru",
		Name:         "Оператор Смирнов",
		PasswordHash: string(hash),
		Role:         models.AdminRoleModerator,
		IsActive:     true,
	}
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, testTokenManager(), stubAuditor{})
	ctx := context.Background()

	repo.On("Create", ctx, mock.MatchedBy(func(a *models.Admin) bool {
		return a.Email == "new@skladhub.ru" && a.Role == models.AdminRoleModerator && a.IsActive
	})).Return(nil)

	admin, err := svc.Register(ctx, RegisterInput{
		Email:    "New@SkladHub.ru",
		Name:     "Новый оператор",
		Password: "secret-password",
		Role:     models.AdminRoleModerator,
	})

	assert.NoError(t, err)
	// Хеш не совпадает с паролем и проходит проверку bcrypt.
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("secret-password")))
	repo.AssertExpectations(t)
}

func TestAuthService_Register_ShortPassword(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, testTokenManager(), stubAuditor{})

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "new@skladhub.ru",
		Name:     "Новый оператор",
		Password: "1234567",
		Role:     models.AdminRoleModerator,
	})

	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	repo.AssertNotCalled(t, "Create")
}

func TestAuthService_Register_UnknownRole(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, testTokenManager(), stubAuditor{})

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "new@skladhub.ru",
		Name:     "Новый оператор",
		Password: "secret-password",
		Role:     "root",
	})

	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	repo.AssertNotCalled(t, "Create")
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, testTokenManager(), stubAuditor{})
	ctx := context.Background()

	admin := testAdmin(t, "secret123")
	// Email приводится к нижнему регистру перед поиском.
	repo.On("GetByEmail", ctx, "operator@skladhub.ru").Return(admin, nil)
	repo.On("UpdateLastLoginAt", ctx, admin.ID).Return(nil)
	repo.On("CreateSession", ctx, mock.MatchedBy(func(s *models.Session) bool {
		return s.AdminID == admin.ID && s.RefreshToken != ""
	})).Return(nil)

	result, err := svc.Login(ctx, LoginInput{
		Email:    "Operator@SkladHub.ru",
		Password: "secret123",
	}, map[string]string{"ip": "10.0.0.1"})

	assert.NoError(t, err)
	assert.Equal(t, admin.ID, result.Admin.ID)
	assert.NotEmpty(t, result.TokenPair.AccessToken)
	assert.NotEmpty(t, result.TokenPair.RefreshToken)
	repo.AssertExpectations(t)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, testTokenManager(), stubAuditor{})
	ctx := context.Background()

	admin := testAdmin(t, "secret123")
	repo.On("GetByEmail", ctx, "operator@skladhub.ru").Return(admin, nil)

	_, err := svc.Login(ctx, LoginInput{
		Email:    "operator@skladhub.ru",
		Password: "wrong-password",
	}, nil)

	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)
	repo.AssertNotCalled(t, "CreateSession")
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, testTokenManager(), stubAuditor{})
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "ghost@skladhub.ru").Return(nil, repository.ErrAdminNotFound)

	_, err := svc.Login(ctx, LoginInput{
		Email:    "ghost@skladhub.ru",
		Password: "secret123",
	}, nil)

	// Несуществующий email неотличим от неверного пароля.
	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)
}

func TestAuthService_Login_InactiveAdmin(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, testTokenManager(), stubAuditor{})
	ctx := context.Background()

	admin := testAdmin(t, "secret123")
	admin.IsActive = false
	repo.On("GetByEmail", ctx, "operator@skladhub.ru").Return(admin, nil)

	_, err := svc.Login(ctx, LoginInput{
		Email:    "operator@skladhub.ru",
		Password: "secret123",
	}, nil)

	var appErr *apperror.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.ErrCodeForbidden, appErr.Code)
	repo.AssertNotCalled(t, "CreateSession")
}

func TestAuthService_Login_InvalidEmail(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, testTokenManager(), stubAuditor{})

	_, err := svc.Login(context.Background(), LoginInput{
		Email:    "не-почта",
		Password: "secret123",
	}, nil)

	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	repo.AssertNotCalled(t, "GetByEmail")
}

func TestAuthService_Refresh_RevokedSession(t *testing.T) {
	repo := new(mockAuthRepo)
	tm := testTokenManager()
	svc := NewAuthService(repo, tm, stubAuditor{})
	ctx := context.Background()

	admin := testAdmin(t, "secret123")
	pair, _, _, err := tm.GeneratePair(admin)
	assert.NoError(t, err)

	// Токен криптографически валиден, но сессия уже удалена.
	repo.On("GetSessionByToken", ctx, pair.RefreshToken).Return(nil, errors.New("сессия не найдена"))

	_, err = svc.Refresh(ctx, pair.RefreshToken, nil)

	var appErr *apperror.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.ErrCodeUnauthorized, appErr.Code)
	repo.AssertNotCalled(t, "CreateSession")
}

func TestAuthService_Refresh_RotatesSession(t *testing.T) {
	repo := new(mockAuthRepo)
	tm := testTokenManager()
	svc := NewAuthService(repo, tm, stubAuditor{})
	ctx := context.Background()

	admin := testAdmin(t, "secret123")
	pair, _, _, err := tm.GeneratePair(admin)
	assert.NoError(t, err)

	repo.On("GetSessionByToken", ctx, pair.RefreshToken).Return(&models.Session{
		AdminID:      admin.ID,
		RefreshToken: pair.RefreshToken,
	}, nil)
	repo.On("GetByID", ctx, admin.ID).Return(admin, nil)
	repo.On("DeleteSession", ctx, pair.RefreshToken).Return(nil)
	repo.On("CreateSession", ctx, mock.MatchedBy(func(s *models.Session) bool {
		return s.AdminID == admin.ID && s.RefreshToken != pair.RefreshToken
	})).Return(nil)

	newPair, err := svc.Refresh(ctx, pair.RefreshToken, nil)

	assert.NoError(t, err)
	assert.NotEmpty(t, newPair.AccessToken)
	repo.AssertExpectations(t)
}

func TestAuthService_Refresh_GarbageToken(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, testTokenManager(), stubAuditor{})

	_, err := svc.Refresh(context.Background(), "не-токен", nil)

	var appErr *apperror.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.ErrCodeUnauthorized, appErr.Code)
	repo.AssertNotCalled(t, "GetSessionByToken")
}

func TestAuthService_Logout_DeletesSession(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, testTokenManager(), stubAuditor{})
	ctx := context.Background()

	repo.On("DeleteSession", ctx, "refresh-token").Return(nil)

	err := svc.Logout(ctx, "refresh-token")

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestAuthService_GetAdmin_NotFound(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, testTokenManager(), stubAuditor{})
	ctx := context.Background()

	id := uuid.New()
	repo.On("GetByID", ctx, id).Return(nil, repository.ErrAdminNotFound)

	_, err := svc.GetAdmin(ctx, id)

	assert.ErrorIs(t, err, apperror.ErrAdminNotFound)
}
