// Package service provides business-logic for the app
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"time"

	"github.com/UnendingLoop/ProductWatermark/internal/htaccess"
	"github.com/UnendingLoop/ProductWatermark/internal/imageproc"
	"github.com/UnendingLoop/ProductWatermark/internal/model"
	"github.com/UnendingLoop/ProductWatermark/internal/mwlogger"
	"github.com/UnendingLoop/ProductWatermark/internal/overlay"
	"github.com/UnendingLoop/ProductWatermark/internal/repository"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/retry"
	"golang.org/x/time/rate"
)

const (
	maxWatermarkSize = 5 << 20
	previewSize      = 150
)

type Options struct {
	WatermarkDir  string
	HtaccessPath  string // пусто - секция доступа не ведется
	AdminDir      string
	RegenerateRPS float64
}

type WatermarkService struct {
	repo      repository.WatermarkRepo
	publisher TaskPublisher
	opts      Options
	limiter   *rate.Limiter
	newHash   func() string
}

func NewWatermarkService(repo repository.WatermarkRepo, pub TaskPublisher, opts Options) *WatermarkService {
	limit := rate.Inf
	if opts.RegenerateRPS > 0 {
		limit = rate.Limit(opts.RegenerateRPS)
	}
	return &WatermarkService{
		repo:      repo,
		publisher: pub,
		opts:      opts,
		limiter:   rate.NewLimiter(limit, 1),
		newHash:   newHash,
	}
}

// TaskPublisher - контракт для работы с очередью
type TaskPublisher interface {
	SendWithRetry(ctx context.Context, strategy retry.Strategy, key []byte, v []byte) error
}

// Стратегия ретрая отправки в очередь
var retryStrategy = retry.Strategy{
	Attempts: 5,
	Delay:    3 * time.Second,
	Backoff:  1.5,
}

// ---------- настройки ----------

// EnsureDefaults writes the first-start values for every setting that is still absent.
func (c WatermarkService) EnsureDefaults(ctx context.Context) error {
	logger := mwlogger.LoggerFromContext(ctx)

	current, err := c.repo.GetSettings(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load settings from DB")
		return model.ErrCommon500
	}

	defaults := map[string]string{
		model.KeyTransparency: fmt.Sprint(model.DefaultOpacity),
		model.KeyYAlign:       string(model.DefaultYAlign),
		model.KeyXAlign:       string(model.DefaultXAlign),
		model.KeyHash:         c.newHash(),
	}
	maps.DeleteFunc(defaults, func(k, _ string) bool {
		_, ok := current[k]
		return ok
	})
	if len(defaults) == 0 {
		return nil
	}

	if err := c.repo.SaveSettings(ctx, defaults); err != nil {
		logger.Error().Err(err).Msg("Failed to save default settings to DB")
		return model.ErrCommon500
	}
	logger.Info().Int("keys", len(defaults)).Msg("Default settings written")
	return nil
}

func (c WatermarkService) GetSettings(ctx context.Context) (model.Settings, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	raw, err := c.repo.GetSettings(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load settings from DB")
		return model.Settings{}, model.ErrCommon500
	}
	return settingsFromMap(raw), nil
}

// SaveSettings validates the form, stores it and refreshes the access-file section.
func (c WatermarkService) SaveSettings(ctx context.Context, in *model.SettingsInput) (model.Settings, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	types, err := c.ListImageTypes(ctx)
	if err != nil {
		return model.Settings{}, err
	}

	settings, err := validateSettings(in, types)
	if err != nil {
		return model.Settings{}, err
	}

	if err := c.repo.SaveSettings(ctx, settingsToMap(settings)); err != nil {
		logger.Error().Err(err).Msg("Failed to save settings to DB")
		return model.Settings{}, model.ErrCommon500
	}

	if err := c.UpdateAccessRules(ctx); err != nil {
		return settings, err
	}
	return settings, nil
}

func (c WatermarkService) ListImageTypes(ctx context.Context) ([]model.ImageType, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	types, err := c.repo.ListImageTypes(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load image types from DB")
		return nil, model.ErrCommon500
	}
	return types, nil
}

// ---------- файл ватермарка ----------

// UploadWatermark stores the file as watermark[-<shop>].<ext> and drops older files of the other formats.
func (c WatermarkService) UploadWatermark(ctx context.Context, shopID int, file io.Reader, filename string, size int64) (string, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	if file == nil || size <= 0 {
		return "", model.ErrEmptyWMark
	}
	if size > maxWatermarkSize {
		return "", model.ErrWatermarkTooLarge
	}

	format, err := imageproc.ParseFormat(filepath.Ext(filename))
	if err != nil {
		return "", model.ErrUnsupportedWMFormat
	}

	data, err := io.ReadAll(io.LimitReader(file, maxWatermarkSize+1))
	if err != nil {
		logger.Error().Err(err).Msg("Failed to read uploaded watermark")
		return "", model.ErrCommon500
	}
	if len(data) == 0 {
		return "", model.ErrEmptyWMark
	}

	// содержимое должно совпадать с расширением, иначе композитор не сможет его прочитать
	sniffed, err := imageproc.SniffFormat(data)
	if err != nil || sniffed != format {
		return "", model.ErrUnsupportedWMFormat
	}
	if _, err := imaging.Decode(bytes.NewReader(data)); err != nil {
		return "", model.ErrEmptyWMark
	}

	name := overlay.FileName(shopID, format)
	if err := writeFileAtomic(filepath.Join(c.opts.WatermarkDir, name), data); err != nil {
		logger.Error().Err(err).Msg("Failed to store watermark file")
		return "", model.ErrCommon500
	}

	for _, f := range imageproc.ProbeOrder {
		if f == format {
			continue
		}
		stale := filepath.Join(c.opts.WatermarkDir, overlay.FileName(shopID, f))
		if err := os.Remove(stale); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warn().Err(err).Str("file", stale).Msg("Failed to remove previous watermark file")
		}
	}

	logger.Info().Str("file", name).Msg("Watermark uploaded")
	return name, nil
}

// WatermarkPreview returns a small square thumbnail of the watermark that would be used for the shop.
func (c WatermarkService) WatermarkPreview(ctx context.Context, shopID int) (io.Reader, string, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	ov, ok := overlay.NewLocator().Find(c.opts.WatermarkDir, shopID)
	if !ok {
		return nil, "", model.ErrWatermarkNotFound
	}

	f, err := os.Open(ov.Path)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to open watermark file")
		return nil, "", model.ErrCommon500
	}
	defer f.Close()

	thumb, _, err := imageproc.Thumbnailer(f, previewSize, previewSize, ov.Format)
	if err != nil {
		logger.Warn().Err(err).Str("file", ov.Path).Msg("Watermark file cannot be decoded")
		return nil, "", model.ErrCannotLoadWMark
	}
	return thumb, model.GetCType[ov.Format], nil
}

// ---------- задания ----------

// Hook queues processing of a freshly uploaded product photo.
func (c WatermarkService) Hook(ctx context.Context, data *model.HookData) (*model.Job, error) {
	if data.ImageID <= 0 || data.ProductID <= 0 {
		return nil, model.ErrIncorrectImageID
	}

	job := newJob(uuid.New(), data.ImageID, data.ProductID, data.ShopID, data.ImageTypes)
	if err := c.createAndPublish(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// Regenerate queues every image of the request under one batch, throttled by the limiter.
func (c WatermarkService) Regenerate(ctx context.Context, req *model.RegenerateRequest) (*model.RegenerateResult, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	if len(req.ImageIDs) == 0 {
		return nil, model.ErrIncorrectImageID
	}
	for _, id := range req.ImageIDs {
		if id <= 0 {
			return nil, model.ErrIncorrectImageID
		}
	}

	res := &model.RegenerateResult{BatchID: uuid.New()}
	for _, id := range req.ImageIDs {
		if err := c.limiter.Wait(ctx); err != nil {
			logger.Warn().Err(err).Int("queued", res.Queued).Msg("Regeneration interrupted")
			return res, model.ErrCommon500
		}

		if err := c.createAndPublish(ctx, newJob(res.BatchID, id, 0, req.ShopID, nil)); err != nil {
			return res, err
		}
		res.Queued++
	}

	logger.Info().Str("batch_id", res.BatchID.String()).Int("queued", res.Queued).Msg("Regeneration queued")
	return res, nil
}

func newJob(batch uuid.UUID, imageID, productID, shopID int, types []int) *model.Job {
	now := time.Now().UTC()
	return &model.Job{
		UID:        uuid.New(),
		BatchID:    batch,
		ImageID:    imageID,
		ProductID:  productID,
		ShopID:     shopID,
		ImageTypes: toInt64s(types),
		Status:     model.StatusCreated,
		CreatedAt:  &now,
	}
}

func (c WatermarkService) createAndPublish(ctx context.Context, job *model.Job) error {
	logger := mwlogger.LoggerFromContext(ctx)

	// шлем в базу
	if err := c.repo.CreateJob(ctx, job); err != nil {
		logger.Error().Err(err).Msg("Failed to create job in DB")
		return model.ErrCommon500
	}

	// кладем в очередь задач(в кафку)
	if err := c.publisher.SendWithRetry(ctx, retryStrategy, []byte(job.UID.String()), nil); err != nil {
		logger.Error().Err(err).Msg(fmt.Sprintf("Failed to publish job %q to task-queue", job.UID))
		return model.ErrCommon500
	}
	return nil
}

func (c WatermarkService) GetJob(ctx context.Context, id string) (*model.Job, error) {
	logger := mwlogger.LoggerFromContext(ctx)
	if err := uuid.Validate(id); err != nil {
		return nil, model.ErrIncorrectID
	}

	res, err := c.repo.GetJob(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrJobNotFound) {
			return nil, err
		}
		logger.Error().Err(err).Msg(fmt.Sprintf("Failed to fetch job %q from DB", id))
		return nil, model.ErrCommon500
	}

	return res, nil
}

func (c WatermarkService) ListJobs(ctx context.Context, req *model.ListRequest) ([]model.Job, error) {
	logger := mwlogger.LoggerFromContext(ctx)
	validateQueryParams(req)

	res, err := c.repo.ListJobs(ctx, req)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to fetch jobs list from DB")
		return nil, model.ErrCommon500
	}

	return res, nil
}

func (c WatermarkService) DeleteJob(ctx context.Context, id string) error {
	logger := mwlogger.LoggerFromContext(ctx)
	if err := uuid.Validate(id); err != nil {
		return model.ErrIncorrectID
	}

	if err := c.repo.DeleteJob(ctx, id); err != nil {
		if errors.Is(err, model.ErrJobNotFound) {
			return err // 404
		}
		logger.Error().Err(err).Msg("Failed to delete job from DB")
		return model.ErrCommon500
	}
	return nil
}

func (c WatermarkService) UpdateStatus(ctx context.Context, id string, newStat model.Status) error {
	if err := uuid.Validate(id); err != nil {
		return model.ErrIncorrectID
	}
	if !model.StatusMap[newStat] {
		return model.ErrIncorrectStatus
	}

	logger := mwlogger.LoggerFromContext(ctx)

	if err := c.repo.UpdateStatus(ctx, id, newStat); err != nil {
		if errors.Is(err, model.ErrJobNotFound) {
			return err // 404
		}
		logger.Error().Err(err).Msg("Failed to update job status in DB")
		return model.ErrCommon500 // 500
	}

	return nil
}

func (c WatermarkService) SaveResult(ctx context.Context, id string, status model.Status, errMsg model.StringSlice) error {
	logger := mwlogger.LoggerFromContext(ctx)

	if err := c.repo.SaveResult(ctx, id, status, errMsg); err != nil {
		if errors.Is(err, model.ErrJobNotFound) {
			return err // 404
		}
		logger.Error().Err(err).Msg("Failed to save job result in DB")
		return model.ErrCommon500 // 500
	}

	return nil
}

// ReviveOrphans republishes jobs stuck in created/in_progress.
func (c WatermarkService) ReviveOrphans(ctx context.Context, limit int) {
	logger := mwlogger.LoggerFromContext(ctx)

	orphans, err := c.repo.FetchOrphans(ctx, limit)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load orphans from DB")
		return
	}

	for _, v := range orphans {
		if err := c.publisher.SendWithRetry(ctx, retryStrategy, []byte(v), nil); err != nil {
			logger.Error().Err(err).Msg("Failed to publish orphan to queue")
		}
	}
}

// ---------- .htaccess ----------

func (c WatermarkService) UpdateAccessRules(ctx context.Context) error {
	if c.opts.HtaccessPath == "" {
		return nil
	}

	logger := mwlogger.LoggerFromContext(ctx)
	if err := htaccess.Rewrite(c.opts.HtaccessPath, htaccess.AdminDirName(c.opts.AdminDir)); err != nil {
		logger.Error().Err(err).Msg("Failed to write watermark section to access file")
		return model.ErrAccessRules
	}
	return nil
}

func (c WatermarkService) RemoveAccessRules(ctx context.Context) error {
	if c.opts.HtaccessPath == "" {
		return nil
	}

	logger := mwlogger.LoggerFromContext(ctx)
	err := htaccess.RemoveSection(c.opts.HtaccessPath)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, htaccess.ErrSectionNotFound):
		return model.ErrNoAccessSection
	default:
		logger.Error().Err(err).Msg("Failed to remove watermark section from access file")
		return model.ErrAccessRules
	}
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
