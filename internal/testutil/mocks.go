package testutil

import (
	"github.com/stretchr/testify/mock"

	"card-codec/internal/storage"
)

// MockStorage is a mock implementation of the Storage interface for testing
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockStorage) Health() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockStorage) PutCard(card *storage.Card) error {
	args := m.Called(card)
	return args.Error(0)
}

func (m *MockStorage) GetCard(uid string) (*storage.Card, error) {
	args := m.Called(uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Card), args.Error(1)
}

func (m *MockStorage) ListCards(limit, offset int) ([]*storage.Card, int, error) {
	args := m.Called(limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*storage.Card), args.Int(1), args.Error(2)
}

func (m *MockStorage) DeleteCard(uid string) error {
	args := m.Called(uid)
	return args.Error(0)
}

// MockFactory is a mock implementation of StorageFactory
type MockFactory struct {
	mock.Mock
}

func (m *MockFactory) Create(config storage.StorageConfig) (storage.Storage, error) {
	args := m.Called(config)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(storage.Storage), args.Error(1)
}

func (m *MockFactory) GetType() string {
	args := m.Called()
	return args.String(0)
}
