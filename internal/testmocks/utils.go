// Package testmocks provides utilities for working with mocks in tests
package testmocks

import (
	"testing"

	"go.uber.org/mock/gomock"
)

// MockController is a convenience wrapper around gomock.Controller
type MockController struct {
	*gomock.Controller
}

// NewMockController creates a new mock controller for the given test
func NewMockController(t *testing.T) *MockController {
	ctrl := gomock.NewController(t)

	// Ensure controller finishes properly
	t.Cleanup(ctrl.Finish)

	return &MockController{Controller: ctrl}
}
