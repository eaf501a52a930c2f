package main

import (
	"context"

	"github.com/UnendingLoop/ProductWatermark/internal/repository"
	"github.com/UnendingLoop/ProductWatermark/internal/service"
	"github.com/UnendingLoop/ProductWatermark/internal/worker"
	"github.com/wb-go/wbf/retry"
)

// readOnlyQueue стоит на месте паблишера: воркер только читает задания и сам их не ставит,
// из сервиса ему нужны GetJob/UpdateStatus/SaveResult/GetSettings/ListImageTypes
type readOnlyQueue struct{}

var _ service.TaskPublisher = readOnlyQueue{}

func (readOnlyQueue) SendWithRetry(context.Context, retry.Strategy, []byte, []byte) error {
	return nil
}

func newJobService(repo repository.WatermarkRepo, wmDir string) worker.JobService {
	return service.NewWatermarkService(repo, readOnlyQueue{}, service.Options{WatermarkDir: wmDir})
}
