package main

import (
	"context"
	"testing"

	"github.com/UnendingLoop/ProductWatermark/internal/model"
	"github.com/UnendingLoop/ProductWatermark/internal/repository"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/retry"
)

// остальные методы репо воркеру через этот сервис не нужны
type settingsOnlyRepo struct {
	repository.WatermarkRepo
}

func (settingsOnlyRepo) GetSettings(context.Context) (map[string]string, error) {
	return map[string]string{}, nil
}

func TestReadOnlyQueue(t *testing.T) {
	require.NoError(t, readOnlyQueue{}.SendWithRetry(context.Background(), retry.Strategy{}, []byte("k"), nil))
}

func TestNewJobService(t *testing.T) {
	svc := newJobService(settingsOnlyRepo{}, t.TempDir())

	s, err := svc.GetSettings(context.Background())
	require.NoError(t, err)
	require.Equal(t, model.DefaultOpacity, s.Opacity)
}
