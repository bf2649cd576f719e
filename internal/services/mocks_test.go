package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/immowerk/fiskal-api/internal/models"
)

// MockSubmissionRepository is a mock implementation of SubmissionRepository for testing
type MockSubmissionRepository struct {
	mock.Mock
}

func (m *MockSubmissionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	sub, ok := args.Get(0).(*models.Submission)
	if !ok {
		return nil, args.Error(1)
	}
	return sub, args.Error(1)
}

func (m *MockSubmissionRepository) UpdateValidation(ctx context.Context, id uuid.UUID, status models.SubmissionStatus, confidence float64, errs, warns []models.Finding) error {
	args := m.Called(ctx, id, status, confidence, errs, warns)
	return args.Error(0)
}

func (m *MockSubmissionRepository) UpdateFormData(ctx context.Context, id uuid.UUID, formData models.FormData) error {
	args := m.Called(ctx, id, formData)
	return args.Error(0)
}

func (m *MockSubmissionRepository) ListHistorical(ctx context.Context, buildingID *uuid.UUID, formType models.FormType, excludeID uuid.UUID) ([]models.Submission, error) {
	args := m.Called(ctx, buildingID, formType, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	subs, ok := args.Get(0).([]models.Submission)
	if !ok {
		return nil, args.Error(1)
	}
	return subs, args.Error(1)
}

func (m *MockSubmissionRepository) ListByYears(ctx context.Context, buildingID *uuid.UUID, formType models.FormType, years []int) ([]models.Submission, error) {
	args := m.Called(ctx, buildingID, formType, years)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	subs, ok := args.Get(0).([]models.Submission)
	if !ok {
		return nil, args.Error(1)
	}
	return subs, args.Error(1)
}

// MockAssetRepository is a mock implementation of AssetRepository for testing
type MockAssetRepository struct {
	mock.Mock
}

func (m *MockAssetRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.DepreciableAsset, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	asset, ok := args.Get(0).(*models.DepreciableAsset)
	if !ok {
		return nil, args.Error(1)
	}
	return asset, args.Error(1)
}

func (m *MockAssetRepository) ReplaceSchedule(ctx context.Context, asset *models.DepreciableAsset, entries []models.DepreciationYearEntry) error {
	args := m.Called(ctx, asset, entries)
	return args.Error(0)
}

func (m *MockAssetRepository) ListEntries(ctx context.Context, assetID uuid.UUID) ([]models.DepreciationYearEntry, error) {
	args := m.Called(ctx, assetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	entries, ok := args.Get(0).([]models.DepreciationYearEntry)
	if !ok {
		return nil, args.Error(1)
	}
	return entries, args.Error(1)
}

// MockAuditRepository is a mock implementation of AuditRepository for testing
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) RecordAppliedFixes(ctx context.Context, submissionID uuid.UUID, fixes []models.FixProposal) error {
	args := m.Called(ctx, submissionID, fixes)
	return args.Error(0)
}

// MockValidationService is a mock implementation of ValidationService for testing
type MockValidationService struct {
	mock.Mock
}

func (m *MockValidationService) ValidateSubmission(ctx context.Context, id uuid.UUID) (*ValidationResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	result, ok := args.Get(0).(*ValidationResult)
	if !ok {
		return nil, args.Error(1)
	}
	return result, args.Error(1)
}

func (m *MockValidationService) ValidateBatch(ctx context.Context, ids []string) (*BatchResult, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	result, ok := args.Get(0).(*BatchResult)
	if !ok {
		return nil, args.Error(1)
	}
	return result, args.Error(1)
}
