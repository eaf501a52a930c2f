package service

import (
	"errors"
	"slices"
	"strconv"
	"strings"

	"github.com/UnendingLoop/ProductWatermark/internal/model"
	"github.com/google/uuid"
)

func validateQueryParams(req *model.ListRequest) {
	// Обрабатываем пустые значения, присваиваем дефолты если надо
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 30
	}

	// Валидируем поле типа сортировки
	req.Sort = strings.TrimSpace(strings.ToLower(req.Sort))
	switch {
	case strings.Contains(req.Sort, model.ByUUID):
		req.Sort = "job_uid"
	default:
		req.Sort = "created_at" // по дефолту ставим сортировку по времени создания
	}

	// Валидируем порядок
	req.Order = strings.TrimSpace(strings.ToLower(req.Order))
	switch {
	case strings.Contains(req.Order, model.OrderASC):
		req.Order = "ASC"
	default:
		req.Order = "DESC" // по дефолту ставим сортировку "новое-выше"
	}
}

// validateSettings собирает все ошибки формы, а не только первую
func validateSettings(in *model.SettingsInput, known []model.ImageType) (model.Settings, error) {
	var errs []error

	switch {
	case in.Opacity == nil || *in.Opacity == 0:
		errs = append(errs, model.ErrOpacityRequired)
	case *in.Opacity < 1 || *in.Opacity > 100:
		errs = append(errs, model.ErrOpacityRange)
	}

	yAlign := model.YAlign(strings.TrimSpace(in.YAlign))
	switch {
	case yAlign == "":
		errs = append(errs, model.ErrYAlignRequired)
	case !model.YAlignMap[yAlign]:
		errs = append(errs, model.ErrYAlignRange)
	}

	xAlign := model.XAlign(strings.TrimSpace(in.XAlign))
	switch {
	case xAlign == "":
		errs = append(errs, model.ErrXAlignRequired)
	case !model.XAlignMap[xAlign]:
		errs = append(errs, model.ErrXAlignRange)
	}

	types := make([]int, 0, len(in.ImageTypes))
	for _, id := range in.ImageTypes {
		if !slices.ContainsFunc(known, func(t model.ImageType) bool { return t.ID == id }) {
			errs = append(errs, model.ErrUnknownImageType)
			break
		}
		if !slices.Contains(types, id) {
			types = append(types, id)
		}
	}
	if len(in.ImageTypes) == 0 {
		errs = append(errs, model.ErrNoImageTypes)
	}

	if len(errs) > 0 {
		return model.Settings{}, errors.Join(errs...)
	}

	slices.Sort(types)
	return model.Settings{
		XAlign:       xAlign,
		YAlign:       yAlign,
		Opacity:      *in.Opacity,
		ImageTypes:   types,
		LoggedBypass: in.LoggedBypass,
	}, nil
}

// settingsFromMap - битые или отсутствующие значения заменяются дефолтами
func settingsFromMap(m map[string]string) model.Settings {
	s := model.Settings{
		XAlign:  model.XAlign(m[model.KeyXAlign]),
		YAlign:  model.YAlign(m[model.KeyYAlign]),
		Opacity: model.DefaultOpacity,
		Hash:    m[model.KeyHash],
	}
	if !model.XAlignMap[s.XAlign] {
		s.XAlign = model.DefaultXAlign
	}
	if !model.YAlignMap[s.YAlign] {
		s.YAlign = model.DefaultYAlign
	}
	if v, err := strconv.Atoi(m[model.KeyTransparency]); err == nil && v >= 1 && v <= 100 {
		s.Opacity = v
	}
	s.ImageTypes = parseIDs(m[model.KeyTypes])
	s.LoggedBypass, _ = strconv.ParseBool(m[model.KeyLogged])

	return s
}

func settingsToMap(s model.Settings) map[string]string {
	return map[string]string{
		model.KeyXAlign:       string(s.XAlign),
		model.KeyYAlign:       string(s.YAlign),
		model.KeyTransparency: strconv.Itoa(s.Opacity),
		model.KeyTypes:        joinIDs(s.ImageTypes),
		model.KeyLogged:       strconv.FormatBool(s.LoggedBypass),
	}
}

// parseIDs читает список вида "1,3,5", мусор пропускается
func parseIDs(csv string) []int {
	var ids []int
	for _, part := range strings.Split(csv, ",") {
		if id, err := strconv.Atoi(strings.TrimSpace(part)); err == nil && id > 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

func toInt64s(ids []int) []int64 {
	res := make([]int64, len(ids))
	for i, id := range ids {
		res[i] = int64(id)
	}
	return res
}

func newHash() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:model.HashLength]
}
