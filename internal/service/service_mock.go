package service

import (
	"context"

	"github.com/UnendingLoop/ProductWatermark/internal/model"
	"github.com/wb-go/wbf/retry"
)

// MOCK RESPOSITORY

type mockRepo struct {
	getSettingsFn    func(ctx context.Context) (map[string]string, error)
	saveSettingsFn   func(ctx context.Context, values map[string]string) error
	listImageTypesFn func(ctx context.Context) ([]model.ImageType, error)
	createJobFn      func(ctx context.Context, j *model.Job) error
	getJobFn         func(ctx context.Context, id string) (*model.Job, error)
	listJobsFn       func(ctx context.Context, req *model.ListRequest) ([]model.Job, error)
	deleteJobFn      func(ctx context.Context, id string) error
	updateStatusFn   func(ctx context.Context, id string, st model.Status) error
	saveResultFn     func(ctx context.Context, id string, st model.Status, errMsg model.StringSlice) error
	fetchOrphansFn   func(ctx context.Context, limit int) ([]string, error)
}

func (m *mockRepo) GetSettings(ctx context.Context) (map[string]string, error) {
	return m.getSettingsFn(ctx)
}

func (m *mockRepo) SaveSettings(ctx context.Context, values map[string]string) error {
	return m.saveSettingsFn(ctx, values)
}

func (m *mockRepo) ListImageTypes(ctx context.Context) ([]model.ImageType, error) {
	return m.listImageTypesFn(ctx)
}

func (m *mockRepo) CreateJob(ctx context.Context, j *model.Job) error {
	return m.createJobFn(ctx, j)
}

func (m *mockRepo) GetJob(ctx context.Context, id string) (*model.Job, error) {
	return m.getJobFn(ctx, id)
}

func (m *mockRepo) ListJobs(ctx context.Context, req *model.ListRequest) ([]model.Job, error) {
	return m.listJobsFn(ctx, req)
}

func (m *mockRepo) DeleteJob(ctx context.Context, id string) error {
	return m.deleteJobFn(ctx, id)
}

func (m *mockRepo) UpdateStatus(ctx context.Context, id string, st model.Status) error {
	return m.updateStatusFn(ctx, id, st)
}

func (m *mockRepo) SaveResult(ctx context.Context, id string, st model.Status, errMsg model.StringSlice) error {
	return m.saveResultFn(ctx, id, st, errMsg)
}

func (m *mockRepo) FetchOrphans(ctx context.Context, limit int) ([]string, error) {
	return m.fetchOrphansFn(ctx, limit)
}

// MOCK PUBLISHER

type mockPublisher struct {
	sendFn func(ctx context.Context, s retry.Strategy, key []byte, v []byte) error
}

func (m *mockPublisher) SendWithRetry(ctx context.Context, s retry.Strategy, key []byte, v []byte) error {
	return m.sendFn(ctx, s, key, v)
}
