package worker

import (
	"context"
	"io"
	"sync"

	"github.com/UnendingLoop/ProductWatermark/internal/model"
	kafkago "github.com/segmentio/kafka-go"
)

type mockJobService struct {
	getFn        func(ctx context.Context, id string) (*model.Job, error)
	updateFn     func(ctx context.Context, id string, st model.Status) error
	saveResultFn func(ctx context.Context, id string, st model.Status, errMsg model.StringSlice) error
	settingsFn   func(ctx context.Context) (model.Settings, error)
	typesFn      func(ctx context.Context) ([]model.ImageType, error)
}

func (m *mockJobService) GetJob(ctx context.Context, id string) (*model.Job, error) {
	return m.getFn(ctx, id)
}

func (m *mockJobService) UpdateStatus(ctx context.Context, id string, st model.Status) error {
	return m.updateFn(ctx, id, st)
}

func (m *mockJobService) SaveResult(ctx context.Context, id string, st model.Status, errMsg model.StringSlice) error {
	return m.saveResultFn(ctx, id, st, errMsg)
}

func (m *mockJobService) GetSettings(ctx context.Context) (model.Settings, error) {
	return m.settingsFn(ctx)
}

func (m *mockJobService) ListImageTypes(ctx context.Context) ([]model.ImageType, error) {
	return m.typesFn(ctx)
}

//----------------------------------

type mockStorage struct {
	getFn func(ctx context.Context, key string) (io.ReadCloser, string, error)
	putFn func(ctx context.Context, key string, size int64, ct string, r io.Reader) error
}

func (m *mockStorage) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	return m.getFn(ctx, key)
}

func (m *mockStorage) Put(ctx context.Context, key string, size int64, ct string, r io.Reader) error {
	return m.putFn(ctx, key, size, ct, r)
}

func (m *mockStorage) Delete(ctx context.Context, key string) error {
	return nil
}

//----------------------------------

type mockCommitter struct {
	mu        sync.Mutex
	committed []string
}

func (m *mockCommitter) Commit(_ context.Context, msg kafkago.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.committed = append(m.committed, string(msg.Key))
	return nil
}

func (m *mockCommitter) keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.committed...)
}
