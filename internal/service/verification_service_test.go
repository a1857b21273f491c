package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/skladhub/admin-backend/internal/models"
	"github.com/skladhub/admin-backend/internal/pkg/apperror"
)

type mockVerificationRepo struct {
	mock.Mock
}

func (m *mockVerificationRepo) Create(ctx context.Context, v *models.Verification) error {
	args := m.Called(ctx, v)
	if args.Error(0) == nil {
		v.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockVerificationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Verification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Verification), args.Error(1)
}

func (m *mockVerificationRepo) List(ctx context.Context, status string, limit, offset int) ([]models.Verification, error) {
	args := m.Called(ctx, status, limit, offset)
	return args.Get(0).([]models.Verification), args.Error(1)
}

func (m *mockVerificationRepo) ApproveAtomic(ctx context.Context, id, approvedBy uuid.UUID, notes *string, entry models.TimelineEntry) (*models.Verification, error) {
	args := m.Called(ctx, id, approvedBy, notes, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Verification), args.Error(1)
}

func (m *mockVerificationRepo) RejectAtomic(ctx context.Context, id, rejectedBy uuid.UUID, reason string, entry models.TimelineEntry) (*models.Verification, error) {
	args := m.Called(ctx, id, rejectedBy, reason, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Verification), args.Error(1)
}

func (m *mockVerificationRepo) RequestDocuments(ctx context.Context, id uuid.UUID, docs models.StringList, message string, entry models.TimelineEntry) error {
	args := m.Called(ctx, id, docs, message, entry)
	return args.Error(0)
}

func (m *mockVerificationRepo) Resubmit(ctx context.Context, id uuid.UUID, docs models.DocumentList, entry models.TimelineEntry) error {
	args := m.Called(ctx, id, docs, entry)
	return args.Error(0)
}

func (m *mockVerificationRepo) CountByStatus(ctx context.Context) (map[string]int, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[string]int), args.Error(1)
}

func newVerificationService(repo *mockVerificationRepo) *VerificationService {
	return NewVerificationService(repo, stubNotifier{}, stubAuditor{}, testLogger())
}

func testDocuments() models.DocumentList {
	return models.DocumentList{{
		Kind:       "passport",
		FilePath:   "kyc/user/passport.pdf",
		FileSize:   1024,
		UploadedAt: time.Now().UTC(),
	}}
}

func TestVerificationService_SubmitVerification_Success(t *testing.T) {
	repo := new(mockVerificationRepo)
	svc := newVerificationService(repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*models.Verification")).Return(nil)

	verification, err := svc.SubmitVerification(ctx, SubmitVerificationInput{
		UserID:    uuid.New(),
		Type:      models.VerificationTypeHost,
		Documents: testDocuments(),
	})

	assert.NoError(t, err)
	assert.Equal(t, models.VerificationStatusPending, verification.Status)
	assert.Len(t, verification.Timeline, 1)
	assert.Equal(t, "verification_submitted", verification.Timeline[0].Action)
}

func TestVerificationService_SubmitVerification_NoDocuments(t *testing.T) {
	repo := new(mockVerificationRepo)
	svc := newVerificationService(repo)

	_, err := svc.SubmitVerification(context.Background(), SubmitVerificationInput{
		UserID: uuid.New(),
		Type:   models.VerificationTypeHost,
	})

	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	repo.AssertNotCalled(t, "Create")
}

func TestVerificationService_SubmitVerification_UnknownType(t *testing.T) {
	repo := new(mockVerificationRepo)
	svc := newVerificationService(repo)

	_, err := svc.SubmitVerification(context.Background(), SubmitVerificationInput{
		UserID:    uuid.New(),
		Type:      "vip",
		Documents: testDocuments(),
	})

	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestVerificationService_ApproveVerification_FromRejectedForbidden(t *testing.T) {
	repo := new(mockVerificationRepo)
	svc := newVerificationService(repo)
	ctx := context.Background()

	id := uuid.New()
	repo.On("GetByID", ctx, id).Return(&models.Verification{
		ID:     id,
		Status: models.VerificationStatusRejected,
	}, nil)

	_, err := svc.ApproveVerification(ctx, id, uuid.New(), "Оператор", nil)

	assert.Error(t, err)
	assert.True(t, apperror.IsInvalidTransition(err))
	repo.AssertNotCalled(t, "ApproveAtomic")
}

func TestVerificationService_RejectVerification_RequiresReason(t *testing.T) {
	repo := new(mockVerificationRepo)
	svc := newVerificationService(repo)

	_, err := svc.RejectVerification(context.Background(), uuid.New(), "", uuid.New(), "Оператор")

	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	repo.AssertNotCalled(t, "RejectAtomic")
}

func TestVerificationService_RequestAdditionalDocuments_Success(t *testing.T) {
	repo := new(mockVerificationRepo)
	svc := newVerificationService(repo)
	ctx := context.Background()

	id := uuid.New()
	verification := &models.Verification{ID: id, Status: models.VerificationStatusPending}
	repo.On("GetByID", ctx, id).Return(verification, nil)
	repo.On("RequestDocuments", ctx, id, models.StringList{"устав", "выписка ЕГРЮЛ"},
		"Приложите учредительные документы", mock.AnythingOfType("models.TimelineEntry")).Return(nil)

	_, err := svc.RequestAdditionalDocuments(ctx, id, []string{"устав", "выписка ЕГРЮЛ"},
		"Приложите учредительные документы", uuid.New(), "Оператор")

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestVerificationService_RequestAdditionalDocuments_EmptyList(t *testing.T) {
	repo := new(mockVerificationRepo)
	svc := newVerificationService(repo)

	_, err := svc.RequestAdditionalDocuments(context.Background(), uuid.New(), nil,
		"Приложите документы", uuid.New(), "Оператор")

	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	repo.AssertNotCalled(t, "RequestDocuments")
}

func TestVerificationService_ResubmitDocuments_ReturnsToQueue(t *testing.T) {
	repo := new(mockVerificationRepo)
	svc := newVerificationService(repo)
	ctx := context.Background()

	id := uuid.New()
	verification := &models.Verification{
		ID:     id,
		UserID: uuid.New(),
		Status: models.VerificationStatusAdditionalDocs,
	}
	docs := testDocuments()
	repo.On("GetByID", ctx, id).Return(verification, nil)
	repo.On("Resubmit", ctx, id, docs, mock.AnythingOfType("models.TimelineEntry")).Return(nil)

	_, err := svc.ResubmitDocuments(ctx, id, docs)

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestVerificationService_ResubmitDocuments_FromPendingForbidden(t *testing.T) {
	repo := new(mockVerificationRepo)
	svc := newVerificationService(repo)
	ctx := context.Background()

	id := uuid.New()
	repo.On("GetByID", ctx, id).Return(&models.Verification{
		ID:     id,
		Status: models.VerificationStatusPending,
	}, nil)

	_, err := svc.ResubmitDocuments(ctx, id, testDocuments())

	assert.Error(t, err)
	assert.True(t, apperror.IsInvalidTransition(err))
	repo.AssertNotCalled(t, "Resubmit")
}
