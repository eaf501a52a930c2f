package transport

import (
	"context"
	"io"

	"github.com/UnendingLoop/ProductWatermark/internal/model"
	"github.com/gin-gonic/gin"
)

type mockWatermarkService struct {
	getSettingsFn      func(ctx context.Context) (model.Settings, error)
	saveSettingsFn     func(ctx context.Context, in *model.SettingsInput) (model.Settings, error)
	listImageTypesFn   func(ctx context.Context) ([]model.ImageType, error)
	uploadWatermarkFn  func(ctx context.Context, shopID int, file io.Reader, filename string, size int64) (string, error)
	watermarkPreviewFn func(ctx context.Context, shopID int) (io.Reader, string, error)
	hookFn             func(ctx context.Context, data *model.HookData) (*model.Job, error)
	regenerateFn       func(ctx context.Context, req *model.RegenerateRequest) (*model.RegenerateResult, error)
	getJobFn           func(ctx context.Context, id string) (*model.Job, error)
	listJobsFn         func(ctx context.Context, req *model.ListRequest) ([]model.Job, error)
	deleteJobFn        func(ctx context.Context, id string) error
	updateAccessFn     func(ctx context.Context) error
	removeAccessFn     func(ctx context.Context) error
}

func (m *mockWatermarkService) GetSettings(ctx context.Context) (model.Settings, error) {
	return m.getSettingsFn(ctx)
}

func (m *mockWatermarkService) SaveSettings(ctx context.Context, in *model.SettingsInput) (model.Settings, error) {
	return m.saveSettingsFn(ctx, in)
}

func (m *mockWatermarkService) ListImageTypes(ctx context.Context) ([]model.ImageType, error) {
	return m.listImageTypesFn(ctx)
}

func (m *mockWatermarkService) UploadWatermark(ctx context.Context, shopID int, file io.Reader, filename string, size int64) (string, error) {
	return m.uploadWatermarkFn(ctx, shopID, file, filename, size)
}

func (m *mockWatermarkService) WatermarkPreview(ctx context.Context, shopID int) (io.Reader, string, error) {
	return m.watermarkPreviewFn(ctx, shopID)
}

func (m *mockWatermarkService) Hook(ctx context.Context, data *model.HookData) (*model.Job, error) {
	return m.hookFn(ctx, data)
}

func (m *mockWatermarkService) Regenerate(ctx context.Context, req *model.RegenerateRequest) (*model.RegenerateResult, error) {
	return m.regenerateFn(ctx, req)
}

func (m *mockWatermarkService) GetJob(ctx context.Context, id string) (*model.Job, error) {
	return m.getJobFn(ctx, id)
}

func (m *mockWatermarkService) ListJobs(ctx context.Context, req *model.ListRequest) ([]model.Job, error) {
	return m.listJobsFn(ctx, req)
}

func (m *mockWatermarkService) DeleteJob(ctx context.Context, id string) error {
	return m.deleteJobFn(ctx, id)
}

func (m *mockWatermarkService) UpdateAccessRules(ctx context.Context) error {
	return m.updateAccessFn(ctx)
}

func (m *mockWatermarkService) RemoveAccessRules(ctx context.Context) error {
	return m.removeAccessFn(ctx)
}

func init() {
	gin.SetMode(gin.TestMode)
}
