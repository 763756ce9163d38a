package service

import (
	"context"

	"shop_backend/internal/model"

	"github.com/stretchr/testify/mock"
)

// mockImageStore records image store calls
type mockImageStore struct {
	mock.Mock
}

func (m *mockImageStore) Save(ctx context.Context, upload model.ImageUpload) (string, error) {
	args := m.Called(ctx, upload)
	return args.String(0), args.Error(1)
}

func (m *mockImageStore) Delete(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}
