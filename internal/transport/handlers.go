// Package transport provides methods for processing requests from endpoints
package transport

import (
	"context"
	"io"
	"log"
	"strconv"

	"github.com/UnendingLoop/ProductWatermark/internal/model"
	"github.com/wb-go/wbf/ginext"
)

type WatermarkHandler struct {
	service WatermarkService
}

type WatermarkService interface {
	GetSettings(ctx context.Context) (model.Settings, error)
	SaveSettings(ctx context.Context, in *model.SettingsInput) (model.Settings, error)
	ListImageTypes(ctx context.Context) ([]model.ImageType, error)
	UploadWatermark(ctx context.Context, shopID int, file io.Reader, filename string, size int64) (string, error)
	WatermarkPreview(ctx context.Context, shopID int) (io.Reader, string, error)

	Hook(ctx context.Context, data *model.HookData) (*model.Job, error)
	Regenerate(ctx context.Context, req *model.RegenerateRequest) (*model.RegenerateResult, error)
	GetJob(ctx context.Context, id string) (*model.Job, error)
	ListJobs(ctx context.Context, req *model.ListRequest) ([]model.Job, error)
	DeleteJob(ctx context.Context, id string) error

	UpdateAccessRules(ctx context.Context) error
	RemoveAccessRules(ctx context.Context) error
}

func NewWatermarkHandler(svc WatermarkService) *WatermarkHandler {
	return &WatermarkHandler{
		service: svc,
	}
}

func (h WatermarkHandler) SimplePinger(ctx *ginext.Context) {
	ctx.JSON(200, map[string]string{"message": "pong"})
}

// ---------- настройки ----------

func (h WatermarkHandler) GetSettings(ctx *ginext.Context) {
	res, err := h.service.GetSettings(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(200, res)
}

func (h WatermarkHandler) SaveSettings(ctx *ginext.Context) {
	var in model.SettingsInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		ctx.JSON(400, map[string]string{"error": "failed to parse settings body"})
		return
	}

	res, err := h.service.SaveSettings(ctx.Request.Context(), &in)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(200, res)
}

func (h WatermarkHandler) ListImageTypes(ctx *ginext.Context) {
	res, err := h.service.ListImageTypes(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(200, res)
}

func (h WatermarkHandler) UploadWatermark(ctx *ginext.Context) {
	shopID, err := shopFromString(ctx.PostForm("id_shop"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	file, header, err := ctx.Request.FormFile("watermark")
	if err != nil {
		ctx.JSON(400, map[string]string{"error": "watermark file is required"})
		return
	}
	defer closeFileFlow(file)

	name, err := h.service.UploadWatermark(ctx.Request.Context(), shopID, file, header.Filename, header.Size)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(201, map[string]string{"file": name})
}

func (h WatermarkHandler) WatermarkPreview(ctx *ginext.Context) {
	shopID, err := shopFromString(ctx.Query("id_shop"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	res, cType, err := h.service.WatermarkPreview(ctx.Request.Context(), shopID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Writer.Header().Set("Content-Type", cType)
	ctx.Writer.WriteHeader(200)
	if n, err := io.Copy(ctx.Writer, res); err != nil {
		log.Printf("Failed to write watermark preview at byte %d: %v", n, err)
	}
}

// ---------- задания ----------

func (h WatermarkHandler) Hook(ctx *ginext.Context) {
	var data model.HookData
	if err := ctx.ShouldBindJSON(&data); err != nil {
		ctx.JSON(400, map[string]string{"error": "failed to parse hook body"})
		return
	}

	res, err := h.service.Hook(ctx.Request.Context(), &data)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(202, res)
}

func (h WatermarkHandler) Regenerate(ctx *ginext.Context) {
	var req model.RegenerateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(400, map[string]string{"error": "failed to parse regenerate body"})
		return
	}

	res, err := h.service.Regenerate(ctx.Request.Context(), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(202, res)
}

func (h WatermarkHandler) GetAllJobs(ctx *ginext.Context) {
	var req model.ListRequest

	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(400, map[string]string{"error": "failed to parse query-params"})
		return
	}

	res, err := h.service.ListJobs(ctx.Request.Context(), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(200, res)
}

func (h WatermarkHandler) GetJob(ctx *ginext.Context) {
	res, err := h.service.GetJob(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(200, res)
}

func (h WatermarkHandler) DeleteJob(ctx *ginext.Context) {
	if err := h.service.DeleteJob(ctx.Request.Context(), ctx.Param("id")); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Status(204)
}

// ---------- .htaccess ----------

func (h WatermarkHandler) UpdateAccessRules(ctx *ginext.Context) {
	if err := h.service.UpdateAccessRules(ctx.Request.Context()); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Status(204)
}

func (h WatermarkHandler) RemoveAccessRules(ctx *ginext.Context) {
	if err := h.service.RemoveAccessRules(ctx.Request.Context()); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Status(204)
}

// пустое значение - общий для всех магазинов ватермарк
func shopFromString(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id < 0 {
		return 0, model.ErrIncorrectQuery
	}
	return id, nil
}
