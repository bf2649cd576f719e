package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/immowerk/fiskal-api/internal/models"
	"github.com/immowerk/fiskal-api/internal/services"
)

// MockValidationService is a mock implementation of services.ValidationService for testing
type MockValidationService struct {
	mock.Mock
}

func (m *MockValidationService) ValidateSubmission(ctx context.Context, id uuid.UUID) (*services.ValidationResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ValidationResult), args.Error(1)
}

func (m *MockValidationService) ValidateBatch(ctx context.Context, ids []string) (*services.BatchResult, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.BatchResult), args.Error(1)
}

// MockAutoFixService is a mock implementation of services.AutoFixService for testing
type MockAutoFixService struct {
	mock.Mock
}

func (m *MockAutoFixService) ProposeFixes(ctx context.Context, id uuid.UUID, autoApply bool) (*services.FixResult, error) {
	args := m.Called(ctx, id, autoApply)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.FixResult), args.Error(1)
}

// MockAnomalyService is a mock implementation of services.AnomalyService for testing
type MockAnomalyService struct {
	mock.Mock
}

func (m *MockAnomalyService) DetectAnomalies(ctx context.Context, id uuid.UUID) (*services.AnomalyResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.AnomalyResult), args.Error(1)
}

// MockRiskService is a mock implementation of services.RiskService for testing
type MockRiskService struct {
	mock.Mock
}

func (m *MockRiskService) ScoreRisk(ctx context.Context, id uuid.UUID) (*models.RiskAssessment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RiskAssessment), args.Error(1)
}

// MockDepreciationService is a mock implementation of services.DepreciationService for testing
type MockDepreciationService struct {
	mock.Mock
}

func (m *MockDepreciationService) PreviewSchedule(asset *models.DepreciableAsset) ([]models.DepreciationYearEntry, error) {
	args := m.Called(asset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DepreciationYearEntry), args.Error(1)
}

func (m *MockDepreciationService) GenerateSchedule(ctx context.Context, assetID uuid.UUID) (*services.ScheduleResult, error) {
	args := m.Called(ctx, assetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ScheduleResult), args.Error(1)
}

func (m *MockDepreciationService) GetSchedule(ctx context.Context, assetID uuid.UUID) (*services.ScheduleResult, error) {
	args := m.Called(ctx, assetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ScheduleResult), args.Error(1)
}

// MockTrendService is a mock implementation of services.TrendService for testing
type MockTrendService struct {
	mock.Mock
}

func (m *MockTrendService) CompareYears(ctx context.Context, buildingID *uuid.UUID, formType models.FormType, years []int) (*services.ComparisonResult, error) {
	args := m.Called(ctx, buildingID, formType, years)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ComparisonResult), args.Error(1)
}
