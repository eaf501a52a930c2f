// Package worker consumes watermark jobs from the queue and renders product photos
package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/UnendingLoop/ProductWatermark/internal/imageproc"
	"github.com/UnendingLoop/ProductWatermark/internal/model"
	"github.com/UnendingLoop/ProductWatermark/internal/mwlogger"
	"github.com/UnendingLoop/ProductWatermark/internal/overlay"
	"github.com/UnendingLoop/ProductWatermark/internal/productimg"
	"github.com/UnendingLoop/ProductWatermark/internal/storage"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

// задание в статусе in_progress дольше этого считается брошенным
const staleAfter = 10 * time.Minute

type JobService interface {
	GetJob(ctx context.Context, id string) (*model.Job, error)
	UpdateStatus(ctx context.Context, id string, newStat model.Status) error
	SaveResult(ctx context.Context, id string, status model.Status, errMsg model.StringSlice) error
	GetSettings(ctx context.Context) (model.Settings, error)
	ListImageTypes(ctx context.Context) ([]model.ImageType, error)
}

// Committer подтверждает обработку сообщения, *wbfkafka.Consumer подходит
type Committer interface {
	Commit(ctx context.Context, msg kafkago.Message) error
}

type Config struct {
	WatermarkDir string
	WorkDir      string // где создаются временные папки заданий
}

type Worker struct {
	storage  storage.ImageStorage
	service  JobService
	imager   productimg.Imager
	queue    <-chan kafkago.Message
	consumer Committer
	cfg      Config

	// кэш поиска ватермарка живет в пределах одного батча
	batch   uuid.UUID
	locator *overlay.Locator
}

func NewWorkerInstance(strg storage.ImageStorage, svc JobService, im productimg.Imager, q <-chan kafkago.Message, cons Committer, cfg Config) *Worker {
	return &Worker{storage: strg, service: svc, imager: im, queue: q, consumer: cons, cfg: cfg}
}

func (w *Worker) StartWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-w.queue:
			if !ok {
				log.Println("Queue channel closed, stopping worker...")
				return
			}
			id := string(msg.Key)
			jobCtx := mwlogger.WithJob(ctx, id)
			if err := w.initProcessor(jobCtx, id); err != nil && !errors.Is(err, model.ErrJobNotFound) {
				logger := mwlogger.LoggerFromContext(jobCtx)
				logger.Error().Err(err).Msg("Job failed")
				continue
			}
			if err := w.consumer.Commit(ctx, msg); err != nil {
				log.Printf("Failed to commit queue-message: %v", err)
			}
		}
	}
}

func (w *Worker) initProcessor(ctx context.Context, id string) error {
	// считать из базы задачу
	job, err := w.service.GetJob(ctx, id)
	if err != nil {
		return fmt.Errorf("worker failed to fetch job %q from DB: %w", id, err)
	}

	// проверить статус
	switch job.Status {
	case model.StatusDone, model.StatusFailed:
		return nil
	case model.StatusInProgress:
		if job.UpdatedAt != nil && time.Since(*job.UpdatedAt) < staleAfter {
			return fmt.Errorf("job %q is already in progress", id)
		}
	}

	// обновить статус
	if err := w.service.UpdateStatus(ctx, id, model.StatusInProgress); err != nil {
		return fmt.Errorf("failed to update status of job %q to `in_progress` in DB: %w", id, err)
	}

	errMsg, pErr := w.processJob(ctx, job)
	status := model.StatusDone
	if pErr != nil {
		status = model.StatusFailed
		errMsg = append(errMsg, pErr.Error())
	} else if len(errMsg) > 0 {
		status = model.StatusFailed
	}

	if err := w.service.SaveResult(ctx, id, status, errMsg); err != nil {
		return fmt.Errorf("failed to save result of job %q in DB: %w", id, err)
	}
	return nil
}

// processJob returns per-file failures separately from a failure that stopped the whole job.
func (w *Worker) processJob(ctx context.Context, job *model.Job) (model.StringSlice, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	settings, err := w.service.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	types, err := w.service.ListImageTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("load image types: %w", err)
	}

	ov, ok := w.locatorFor(job.BatchID).Find(w.cfg.WatermarkDir, job.ShopID)
	if !ok {
		return nil, model.ErrWatermarkNotFound
	}

	scratch, err := os.MkdirTemp(w.cfg.WorkDir, "job-*")
	if err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			logger.Warn().Err(err).Str("dir", scratch).Msg("Failed to clean scratch dir")
		}
	}()

	// достать из storage оригинал
	origName := productimg.OriginalName(job.ImageID)
	if err := w.download(ctx, productimg.StorageKey(job.ImageID, origName), filepath.Join(scratch, origName)); err != nil {
		return nil, fmt.Errorf("fetch original image: %w", err)
	}

	filter := make([]int, len(job.ImageTypes))
	for i, t := range job.ImageTypes {
		filter[i] = int(t)
	}

	res := productimg.Process(w.imager, productimg.Request{
		ImageID:  job.ImageID,
		Dir:      scratch,
		Overlay:  ov.Path,
		Settings: settings,
		Types:    types,
		Filter:   filter,
	})

	var errMsg model.StringSlice
	if res.Failed() {
		if imageproc.IsOverlayDecode(res.Err) {
			errMsg = append(errMsg, model.ErrCannotLoadWMark.Error())
		}
		errMsg = append(errMsg, errorMessages(res.Err)...)
	}

	// положить результаты в сторедж
	for _, name := range res.Files {
		if err := w.upload(ctx, filepath.Join(scratch, name), productimg.StorageKey(job.ImageID, name)); err != nil {
			errMsg = append(errMsg, fmt.Sprintf("upload %q: %v", name, err))
		}
	}

	logger.Info().Int("files", len(res.Files)).Int("errors", len(errMsg)).Msg("Job processed")
	return errMsg, nil
}

func (w *Worker) locatorFor(batch uuid.UUID) *overlay.Locator {
	if w.locator == nil || batch != w.batch {
		w.batch = batch
		w.locator = overlay.NewLocator()
	}
	return w.locator
}

func (w *Worker) download(ctx context.Context, key, dst string) error {
	src, _, err := w.storage.Get(ctx, key)
	if err != nil {
		return err
	}
	defer closeFileFlow(src)

	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (w *Worker) upload(ctx context.Context, path, key string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer closeFileFlow(f)

	st, err := f.Stat()
	if err != nil {
		return err
	}

	return w.storage.Put(ctx, key, st.Size(), model.JPEG, f)
}

// errorMessages раскрывает errors.Join в плоский список
func errorMessages(err error) []string {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		var res []string
		for _, e := range joined.Unwrap() {
			res = append(res, e.Error())
		}
		return res
	}
	return []string{err.Error()}
}

func closeFileFlow(res io.ReadCloser) {
	if res == nil {
		return
	}

	if err := res.Close(); err != nil {
		log.Println("Worker failed to close fileflow:", err)
	}
}
