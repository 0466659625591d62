package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"kycdocs/internal/domain"
	"kycdocs/internal/port"
)

// MockPageClassifier is a mock implementation of port.PageClassifier.
type MockPageClassifier struct {
	mock.Mock
}

func (m *MockPageClassifier) Classify(ctx context.Context, input port.ClassifyInput) (domain.ClassificationVote, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(domain.ClassificationVote), args.Error(1)
}
