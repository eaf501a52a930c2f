package service

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/UnendingLoop/ProductWatermark/internal/model"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/retry"
)

var testTypes = []model.ImageType{
	{ID: 1, Name: "small_default", Width: 98, Height: 98},
	{ID: 2, Name: "large_default", Width: 800, Height: 800},
}

func encoded(t *testing.T, f imaging.Format) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, imaging.New(40, 20, color.NRGBA{R: 200, A: 255}), f))
	return buf.Bytes()
}

func okPublisher(keys *[]string) *mockPublisher {
	return &mockPublisher{
		sendFn: func(ctx context.Context, s retry.Strategy, key []byte, v []byte) error {
			*keys = append(*keys, string(key))
			return nil
		},
	}
}

func intPtr(v int) *int { return &v }

// ENSURE DEFAULTS
func TestWatermarkService_EnsureDefaults(t *testing.T) {
	tests := []struct {
		name     string
		current  map[string]string
		wantSave map[string]string
	}{
		{
			name:    "fresh install",
			current: map[string]string{},
			wantSave: map[string]string{
				model.KeyTransparency: "60",
				model.KeyYAlign:       "bottom",
				model.KeyXAlign:       "right",
				model.KeyHash:         "0123456789",
			},
		},
		{
			name:     "only hash missing",
			current:  map[string]string{model.KeyTransparency: "30", model.KeyYAlign: "top", model.KeyXAlign: "left"},
			wantSave: map[string]string{model.KeyHash: "0123456789"},
		},
		{
			name: "everything set",
			current: map[string]string{
				model.KeyTransparency: "30", model.KeyYAlign: "top", model.KeyXAlign: "left", model.KeyHash: "abc",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var saved map[string]string
			repo := &mockRepo{
				getSettingsFn: func(ctx context.Context) (map[string]string, error) { return tt.current, nil },
				saveSettingsFn: func(ctx context.Context, values map[string]string) error {
					saved = values
					return nil
				},
			}
			svc := NewWatermarkService(repo, nil, Options{})
			svc.newHash = func() string { return "0123456789" }

			require.NoError(t, svc.EnsureDefaults(context.Background()))
			require.Equal(t, tt.wantSave, saved)
		})
	}
}

func TestNewHash(t *testing.T) {
	h := newHash()
	require.Len(t, h, model.HashLength)
	require.NotEqual(t, h, newHash())
}

// SETTINGS
func TestWatermarkService_GetSettings(t *testing.T) {
	repo := &mockRepo{
		getSettingsFn: func(ctx context.Context) (map[string]string, error) {
			return map[string]string{
				model.KeyTransparency: "45",
				model.KeyXAlign:       "middle",
				model.KeyYAlign:       "garbage",
				model.KeyTypes:        "3,1,x",
				model.KeyLogged:       "true",
				model.KeyHash:         "hash",
			}, nil
		},
	}

	s, err := NewWatermarkService(repo, nil, Options{}).GetSettings(context.Background())
	require.NoError(t, err)
	require.Equal(t, model.Settings{
		XAlign:       model.XMiddle,
		YAlign:       model.DefaultYAlign,
		Opacity:      45,
		ImageTypes:   []int{3, 1},
		LoggedBypass: true,
		Hash:         "hash",
	}, s)
}

func TestWatermarkService_SaveSettings_Validation(t *testing.T) {
	repo := &mockRepo{
		listImageTypesFn: func(ctx context.Context) ([]model.ImageType, error) { return testTypes, nil },
		saveSettingsFn: func(ctx context.Context, values map[string]string) error {
			t.Fatal("must not save invalid settings")
			return nil
		},
	}
	svc := NewWatermarkService(repo, nil, Options{})

	tests := []struct {
		name  string
		in    model.SettingsInput
		wants []error
	}{
		{
			name:  "everything missing",
			in:    model.SettingsInput{},
			wants: []error{model.ErrOpacityRequired, model.ErrYAlignRequired, model.ErrXAlignRequired, model.ErrNoImageTypes},
		},
		{
			name:  "out of range",
			in:    model.SettingsInput{Opacity: intPtr(101), YAlign: "center", XAlign: "west", ImageTypes: []int{9}},
			wants: []error{model.ErrOpacityRange, model.ErrYAlignRange, model.ErrXAlignRange, model.ErrUnknownImageType},
		},
		{
			name:  "negative opacity",
			in:    model.SettingsInput{Opacity: intPtr(-5), YAlign: "top", XAlign: "left", ImageTypes: []int{1}},
			wants: []error{model.ErrOpacityRange},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SaveSettings(context.Background(), &tt.in)
			require.Error(t, err)
			for _, want := range tt.wants {
				require.ErrorIs(t, err, want)
			}
		})
	}
}

func TestWatermarkService_SaveSettings_OK(t *testing.T) {
	ht := filepath.Join(t.TempDir(), ".htaccess")

	var saved map[string]string
	repo := &mockRepo{
		listImageTypesFn: func(ctx context.Context) ([]model.ImageType, error) { return testTypes, nil },
		saveSettingsFn: func(ctx context.Context, values map[string]string) error {
			saved = values
			return nil
		},
	}
	svc := NewWatermarkService(repo, nil, Options{HtaccessPath: ht, AdminDir: "/var/www/admin42"})

	in := &model.SettingsInput{Opacity: intPtr(70), YAlign: "top", XAlign: "middle", ImageTypes: []int{2, 1, 2}, LoggedBypass: true}
	s, err := svc.SaveSettings(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2}, s.ImageTypes)
	require.Equal(t, "1,2", saved[model.KeyTypes])
	require.Equal(t, "70", saved[model.KeyTransparency])
	require.Equal(t, "true", saved[model.KeyLogged])

	data, err := os.ReadFile(ht)
	require.NoError(t, err)
	require.Contains(t, string(data), "/admin42/*")

	require.NoError(t, svc.RemoveAccessRules(context.Background()))
	require.ErrorIs(t, svc.RemoveAccessRules(context.Background()), model.ErrNoAccessSection)
}

// WATERMARK FILE
func TestWatermarkService_UploadWatermark(t *testing.T) {
	tests := []struct {
		name     string
		shop     int
		filename string
		data     []byte
		size     int64
		wantErr  error
		wantFile string
	}{
		{name: "png for all shops", filename: "logo.PNG", data: encoded(t, imaging.PNG), wantFile: "watermark.png"},
		{name: "jpeg for shop", shop: 3, filename: "logo.jpeg", data: encoded(t, imaging.JPEG), wantFile: "watermark-3.jpg"},
		{name: "content does not match extension", filename: "logo.png", data: encoded(t, imaging.GIF), wantErr: model.ErrUnsupportedWMFormat},
		{name: "unsupported extension", filename: "logo.bmp", data: encoded(t, imaging.PNG), wantErr: model.ErrUnsupportedWMFormat},
		{name: "empty", filename: "logo.gif", data: nil, size: -1, wantErr: model.ErrEmptyWMark},
		{name: "too large", filename: "logo.gif", data: []byte("x"), size: maxWatermarkSize + 1, wantErr: model.ErrWatermarkTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			// старый файл другого формата должен исчезнуть после загрузки
			stale := filepath.Join(dir, "watermark.gif")
			if tt.shop > 0 {
				stale = filepath.Join(dir, "watermark-3.gif")
			}
			require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))

			svc := NewWatermarkService(&mockRepo{}, nil, Options{WatermarkDir: dir})

			size := tt.size
			if size == 0 {
				size = int64(len(tt.data))
			}

			name, err := svc.UploadWatermark(context.Background(), tt.shop, bytes.NewReader(tt.data), tt.filename, size)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				_, statErr := os.Stat(stale)
				require.NoError(t, statErr, "failed upload keeps previous file")
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.wantFile, name)
			stored, err := os.ReadFile(filepath.Join(dir, name))
			require.NoError(t, err)
			require.Equal(t, tt.data, stored)

			_, statErr := os.Stat(stale)
			require.True(t, os.IsNotExist(statErr))
		})
	}
}

func TestWatermarkService_WatermarkPreview(t *testing.T) {
	dir := t.TempDir()
	svc := NewWatermarkService(&mockRepo{}, nil, Options{WatermarkDir: dir})

	_, _, err := svc.WatermarkPreview(context.Background(), 0)
	require.ErrorIs(t, err, model.ErrWatermarkNotFound)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "watermark.gif"), encoded(t, imaging.GIF), 0o644))
	r, ctype, err := svc.WatermarkPreview(context.Background(), 5)
	require.NoError(t, err)
	require.Equal(t, model.GIF, ctype)

	img, err := imaging.Decode(r)
	require.NoError(t, err)
	require.Equal(t, previewSize, img.Bounds().Dx())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "watermark-6.png"), []byte("broken"), 0o644))
	_, _, err = svc.WatermarkPreview(context.Background(), 6)
	require.ErrorIs(t, err, model.ErrCannotLoadWMark)

	// PNG под видом GIF: превью читает файл так же, как композитор, по расширению
	require.NoError(t, os.WriteFile(filepath.Join(dir, "watermark-7.gif"), encoded(t, imaging.PNG), 0o644))
	_, _, err = svc.WatermarkPreview(context.Background(), 7)
	require.ErrorIs(t, err, model.ErrCannotLoadWMark)
}

// HOOK
func TestWatermarkService_Hook(t *testing.T) {
	t.Run("OK", func(t *testing.T) {
		var created *model.Job
		var keys []string
		repo := &mockRepo{
			createJobFn: func(ctx context.Context, j *model.Job) error {
				created = j
				return nil
			},
		}
		svc := NewWatermarkService(repo, okPublisher(&keys), Options{})

		job, err := svc.Hook(context.Background(), &model.HookData{ImageID: 12, ProductID: 3, ShopID: 1, ImageTypes: []int{2}})
		require.NoError(t, err)
		require.Equal(t, created, job)
		require.Equal(t, model.StatusCreated, job.Status)
		require.Equal(t, []int64{2}, job.ImageTypes)
		require.NotEqual(t, uuid.Nil, job.BatchID)
		require.Equal(t, []string{job.UID.String()}, keys)
	})

	t.Run("bad ids", func(t *testing.T) {
		svc := NewWatermarkService(&mockRepo{}, nil, Options{})
		_, err := svc.Hook(context.Background(), &model.HookData{ImageID: 0, ProductID: 3})
		require.ErrorIs(t, err, model.ErrIncorrectImageID)
	})

	t.Run("db failure", func(t *testing.T) {
		repo := &mockRepo{
			createJobFn: func(ctx context.Context, j *model.Job) error { return errors.New("db down") },
		}
		svc := NewWatermarkService(repo, nil, Options{})
		_, err := svc.Hook(context.Background(), &model.HookData{ImageID: 1, ProductID: 1})
		require.ErrorIs(t, err, model.ErrCommon500)
	})

	t.Run("queue failure", func(t *testing.T) {
		repo := &mockRepo{createJobFn: func(ctx context.Context, j *model.Job) error { return nil }}
		pub := &mockPublisher{
			sendFn: func(ctx context.Context, s retry.Strategy, key []byte, v []byte) error { return errors.New("kafka down") },
		}
		svc := NewWatermarkService(repo, pub, Options{})
		_, err := svc.Hook(context.Background(), &model.HookData{ImageID: 1, ProductID: 1})
		require.ErrorIs(t, err, model.ErrCommon500)
	})
}

// REGENERATE
func TestWatermarkService_Regenerate(t *testing.T) {
	t.Run("one batch for all images", func(t *testing.T) {
		var jobs []*model.Job
		var keys []string
		repo := &mockRepo{
			createJobFn: func(ctx context.Context, j *model.Job) error {
				jobs = append(jobs, j)
				return nil
			},
		}
		svc := NewWatermarkService(repo, okPublisher(&keys), Options{RegenerateRPS: 1000})

		res, err := svc.Regenerate(context.Background(), &model.RegenerateRequest{ShopID: 2, ImageIDs: []int{5, 6, 7}})
		require.NoError(t, err)
		require.Equal(t, 3, res.Queued)
		require.Len(t, keys, 3)
		for _, j := range jobs {
			require.Equal(t, res.BatchID, j.BatchID)
			require.Equal(t, 2, j.ShopID)
		}
	})

	t.Run("invalid ids", func(t *testing.T) {
		svc := NewWatermarkService(&mockRepo{}, nil, Options{})
		_, err := svc.Regenerate(context.Background(), &model.RegenerateRequest{ImageIDs: []int{1, -1}})
		require.ErrorIs(t, err, model.ErrIncorrectImageID)
		_, err = svc.Regenerate(context.Background(), &model.RegenerateRequest{})
		require.ErrorIs(t, err, model.ErrIncorrectImageID)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		svc := NewWatermarkService(&mockRepo{}, nil, Options{RegenerateRPS: 1})
		res, err := svc.Regenerate(ctx, &model.RegenerateRequest{ImageIDs: []int{1}})
		require.ErrorIs(t, err, model.ErrCommon500)
		require.Equal(t, 0, res.Queued)
	})
}

// JOBS
func TestWatermarkService_GetJob(t *testing.T) {
	id := uuid.New().String()

	tests := []struct {
		name    string
		id      string
		repoErr error
		wantErr error
	}{
		{name: "OK", id: id},
		{name: "bad uuid", id: "nope", wantErr: model.ErrIncorrectID},
		{name: "not found", id: id, repoErr: model.ErrJobNotFound, wantErr: model.ErrJobNotFound},
		{name: "db error", id: id, repoErr: errors.New("db down"), wantErr: model.ErrCommon500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockRepo{
				getJobFn: func(ctx context.Context, _ string) (*model.Job, error) {
					if tt.repoErr != nil {
						return nil, tt.repoErr
					}
					return &model.Job{Status: model.StatusDone}, nil
				},
			}

			job, err := NewWatermarkService(repo, nil, Options{}).GetJob(context.Background(), tt.id)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, model.StatusDone, job.Status)
		})
	}
}

func TestWatermarkService_ListJobs(t *testing.T) {
	repo := &mockRepo{
		listJobsFn: func(ctx context.Context, req *model.ListRequest) ([]model.Job, error) {
			require.Equal(t, 1, req.Page)
			require.Equal(t, 30, req.Limit)
			require.Equal(t, "job_uid", req.Sort)
			require.Equal(t, "ASC", req.Order)
			return []model.Job{{}}, nil
		},
	}

	res, err := NewWatermarkService(repo, nil, Options{}).ListJobs(context.Background(), &model.ListRequest{Sort: "UID", Order: "ascend", Limit: 1000})
	require.NoError(t, err)
	require.Len(t, res, 1)
}

func TestWatermarkService_DeleteAndStatus(t *testing.T) {
	id := uuid.New().String()
	repo := &mockRepo{
		deleteJobFn:    func(ctx context.Context, _ string) error { return model.ErrJobNotFound },
		updateStatusFn: func(ctx context.Context, _ string, _ model.Status) error { return errors.New("db down") },
		saveResultFn: func(ctx context.Context, _ string, st model.Status, errMsg model.StringSlice) error {
			require.Equal(t, model.StatusFailed, st)
			require.Equal(t, model.StringSlice{"boom"}, errMsg)
			return nil
		},
	}
	svc := NewWatermarkService(repo, nil, Options{})
	ctx := context.Background()

	require.ErrorIs(t, svc.DeleteJob(ctx, id), model.ErrJobNotFound)
	require.ErrorIs(t, svc.DeleteJob(ctx, "bad"), model.ErrIncorrectID)
	require.ErrorIs(t, svc.UpdateStatus(ctx, id, "weird"), model.ErrIncorrectStatus)
	require.ErrorIs(t, svc.UpdateStatus(ctx, id, model.StatusDone), model.ErrCommon500)
	require.NoError(t, svc.SaveResult(ctx, id, model.StatusFailed, model.StringSlice{"boom"}))
}

func TestWatermarkService_ReviveOrphans(t *testing.T) {
	var keys []string
	repo := &mockRepo{
		fetchOrphansFn: func(ctx context.Context, limit int) ([]string, error) {
			require.Equal(t, 20, limit)
			return []string{"a", "b"}, nil
		},
	}

	NewWatermarkService(repo, okPublisher(&keys), Options{}).ReviveOrphans(context.Background(), 20)
	require.Equal(t, []string{"a", "b"}, keys)
}
