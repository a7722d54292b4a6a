package service

import (
	"context"
	"net/url"

	"github.com/stretchr/testify/mock"
)

type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) Get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	args := m.Called(ctx, path, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockAPI) Post(ctx context.Context, path string, body any) ([]byte, error) {
	args := m.Called(ctx, path, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockAPI) Patch(ctx context.Context, path string, body any) ([]byte, error) {
	args := m.Called(ctx, path, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockAPI) PostPublic(ctx context.Context, path string, body any) ([]byte, error) {
	args := m.Called(ctx, path, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
