package store

import (
	"github.com/huangsam/timesplit/internal/contract"
	"github.com/huangsam/timesplit/schema"
	"github.com/stretchr/testify/mock"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetIntervalStore implements the StoreManager interface.
func (m *MockStoreManager) GetIntervalStore() contract.IntervalStore {
	ret := m.Called()
	s, _ := ret.Get(0).(contract.IntervalStore)
	return s
}

// MockIntervalStore is a mock implementation of IntervalStore for testing.
type MockIntervalStore struct {
	mock.Mock
}

var _ contract.IntervalStore = &MockIntervalStore{} // Compile-time check

// Record implements the IntervalStore interface.
func (m *MockIntervalStore) Record(repo string, iv schema.Interval) error {
	args := m.Called(repo, iv)
	return args.Error(0)
}

// List implements the IntervalStore interface.
func (m *MockIntervalStore) List(q schema.ListQuery) ([]schema.IntervalRecord, error) {
	args := m.Called(q)
	records, _ := args.Get(0).([]schema.IntervalRecord)
	return records, args.Error(1)
}

// GetStatus implements the IntervalStore interface.
func (m *MockIntervalStore) GetStatus() (schema.StoreStatus, error) {
	args := m.Called()
	status, _ := args.Get(0).(schema.StoreStatus)
	return status, args.Error(1)
}

// Close implements the IntervalStore interface.
func (m *MockIntervalStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
