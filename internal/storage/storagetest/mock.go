// Package storagetest provides a testify mock of storage.Slots.
package storagetest

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// SlotsMock records every slot call.
type SlotsMock struct {
	mock.Mock
}

func (m *SlotsMock) Get(ctx context.Context, key string) ([]byte, bool, error) {
	args := m.Called(ctx, key)
	var data []byte
	if v := args.Get(0); v != nil {
		data = v.([]byte)
	}
	return data, args.Bool(1), args.Error(2)
}

func (m *SlotsMock) Set(ctx context.Context, key string, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *SlotsMock) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
