package testutil

import (
	"github.com/stretchr/testify/mock"
)

// MockWatcher is a mock implementation of watch.Watcher for testing
type MockWatcher struct {
	mock.Mock
}

func (m *MockWatcher) Watch(path string) error {
	args := m.Called(path)
	return args.Error(0)
}

func (m *MockWatcher) Unwatch(path string) error {
	args := m.Called(path)
	return args.Error(0)
}
