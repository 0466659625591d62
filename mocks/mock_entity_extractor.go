package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"kycdocs/internal/domain"
	"kycdocs/internal/port"
)

// MockEntityExtractor is a mock implementation of port.EntityExtractor.
type MockEntityExtractor struct {
	mock.Mock
}

func (m *MockEntityExtractor) Extract(ctx context.Context, input port.ExtractInput) ([]domain.Entity, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Entity), args.Error(1)
}

func (m *MockEntityExtractor) Model() string {
	args := m.Called()
	return args.String(0)
}
