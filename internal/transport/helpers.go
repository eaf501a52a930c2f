package transport

import (
	"errors"
	"io"
	"log"

	"github.com/UnendingLoop/ProductWatermark/internal/imageproc"
	"github.com/UnendingLoop/ProductWatermark/internal/model"
	"github.com/wb-go/wbf/ginext"
)

func errorCodeDefiner(err error) int {
	switch {
	case errors.Is(err, model.ErrCommon500),
		errors.Is(err, model.ErrAccessRules):
		return 500
	case errors.Is(err, model.ErrJobNotFound),
		errors.Is(err, model.ErrWatermarkNotFound),
		errors.Is(err, model.ErrNoAccessSection):
		return 404
	case errors.Is(err, model.ErrIncorrectQuery),
		errors.Is(err, model.ErrIncorrectID),
		errors.Is(err, model.ErrIncorrectImageID),
		errors.Is(err, model.ErrIncorrectStatus),
		errors.Is(err, model.ErrOpacityRequired),
		errors.Is(err, model.ErrOpacityRange),
		errors.Is(err, model.ErrYAlignRequired),
		errors.Is(err, model.ErrYAlignRange),
		errors.Is(err, model.ErrXAlignRequired),
		errors.Is(err, model.ErrXAlignRange),
		errors.Is(err, model.ErrNoImageTypes),
		errors.Is(err, model.ErrUnknownImageType),
		errors.Is(err, model.ErrEmptyWMark),
		errors.Is(err, model.ErrWatermarkTooLarge),
		errors.Is(err, model.ErrUnsupportedWMFormat),
		errors.Is(err, model.ErrCannotLoadWMark),
		errors.Is(err, imageproc.ErrUnsupportedFormat),
		imageproc.IsOverlayDecode(err):
		return 400
	default:
		return 500
	}
}

// respondError отдает все ошибки валидации списком, если их несколько
func respondError(ctx *ginext.Context, err error) {
	body := map[string]any{"error": err.Error()}

	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		details := make([]string, 0, len(joined.Unwrap()))
		for _, e := range joined.Unwrap() {
			details = append(details, e.Error())
		}
		body["error"] = details[0]
		body["details"] = details
	}

	ctx.JSON(errorCodeDefiner(err), body)
}

func closeFileFlow(res io.ReadCloser) {
	if res == nil {
		return
	}
	if err := res.Close(); err != nil {
		log.Println("Handler failed to close fileflow:", err)
	}
}
