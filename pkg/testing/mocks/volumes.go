// Zaparoo AutoCopy
// Copyright (c) 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Zaparoo AutoCopy.
//
// Zaparoo AutoCopy is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Zaparoo AutoCopy is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Zaparoo AutoCopy.  If not, see <http://www.gnu.org/licenses/>.

package mocks

import (
	"context"
	"fmt"

	"github.com/ZaparooProject/zaparoo-autocopy/pkg/volumes"
	"github.com/stretchr/testify/mock"
)

// MockSource is a mock implementation of volumes.Source using testify/mock
type MockSource struct {
	mock.Mock
}

func (m *MockSource) List(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if err := args.Error(1); err != nil {
		return nil, fmt.Errorf("mock operation failed: %w", err)
	}
	if paths, ok := args.Get(0).([]string); ok {
		return paths, nil
	}
	return nil, nil
}

// MockIdentifier is a mock implementation of volumes.Identifier
type MockIdentifier struct {
	mock.Mock
}

func (m *MockIdentifier) Identify(ctx context.Context, path string) (volumes.Identity, error) {
	args := m.Called(ctx, path)
	if err := args.Error(1); err != nil {
		return "", fmt.Errorf("mock operation failed: %w", err)
	}
	if id, ok := args.Get(0).(volumes.Identity); ok {
		return id, nil
	}
	return "", nil
}

// MockCopier is a mock implementation of the service copy engine
type MockCopier struct {
	mock.Mock
}

func (m *MockCopier) Copy(ctx context.Context, path string, id volumes.Identity) error {
	args := m.Called(ctx, path, id)
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock operation failed: %w", err)
	}
	return nil
}
