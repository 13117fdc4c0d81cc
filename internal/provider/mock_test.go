package provider

import (
	"context"

	"github.com/stretchr/testify/mock"

	"cryptoquote/internal/rates"
)

type MockFeed struct {
	mock.Mock
}

func (m *MockFeed) FetchRates(ctx context.Context) ([]rates.Entry, error) {
	args := m.Called(ctx)
	entries, _ := args.Get(0).([]rates.Entry)
	return entries, args.Error(1)
}
