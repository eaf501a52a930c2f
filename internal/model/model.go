// Package model provides data-structs for internal app-usage
package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

type (
	Status string
	XAlign string
	YAlign string
)

const (
	StatusCreated    Status = "created"
	StatusInProgress Status = "in_progress"
	StatusFailed     Status = "failed"
	StatusDone       Status = "done"
)

var StatusMap = map[Status]bool{
	StatusCreated:    true,
	StatusInProgress: true,
	StatusFailed:     true,
	StatusDone:       true,
}

const (
	XLeft   XAlign = "left"
	XMiddle XAlign = "middle"
	XRight  XAlign = "right"
)

var XAlignMap = map[XAlign]bool{
	XLeft:   true,
	XMiddle: true,
	XRight:  true,
}

const (
	YTop    YAlign = "top"
	YMiddle YAlign = "middle"
	YBottom YAlign = "bottom"
)

var YAlignMap = map[YAlign]bool{
	YTop:    true,
	YMiddle: true,
	YBottom: true,
}

// ключи хранилища настроек
const (
	KeyTypes        = "WATERMARK_TYPES"
	KeyYAlign       = "WATERMARK_Y_ALIGN"
	KeyXAlign       = "WATERMARK_X_ALIGN"
	KeyTransparency = "WATERMARK_TRANSPARENCY"
	KeyLogged       = "WATERMARK_LOGGED"
	KeyHash         = "WATERMARK_HASH"
)

var SettingsKeys = []string{KeyTypes, KeyYAlign, KeyXAlign, KeyTransparency, KeyLogged, KeyHash}

// дефолты при первом старте
const (
	DefaultOpacity = 60
	DefaultYAlign  = YBottom
	DefaultXAlign  = XRight
	HashLength     = 10
)

//---------------------

// AlignmentSpec - где и с какой силой накладывать ватермарк
type AlignmentSpec struct {
	XAlign  XAlign
	YAlign  YAlign
	XOffset int
	YOffset int
	Opacity int // 1..100, проверяется до вызова композитора
}

// Settings - снимок настроек модуля, передается в каждую операцию целиком и не меняется
type Settings struct {
	XAlign       XAlign `json:"x_align"`
	YAlign       YAlign `json:"y_align"`
	Opacity      int    `json:"opacity"`
	ImageTypes   []int  `json:"image_types"`
	LoggedBypass bool   `json:"logged_bypass"`
	Hash         string `json:"-"`
}

func (s Settings) Alignment() AlignmentSpec {
	return AlignmentSpec{
		XAlign:  s.XAlign,
		YAlign:  s.YAlign,
		Opacity: s.Opacity,
	}
}

// SettingsInput - сырые данные формы настроек
type SettingsInput struct {
	XAlign       string `json:"x_align"`
	YAlign       string `json:"y_align"`
	Opacity      *int   `json:"opacity"`
	ImageTypes   []int  `json:"image_types"`
	LoggedBypass bool   `json:"logged_bypass"`
}

// ImageType - один из размеров товарных картинок магазина
type ImageType struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

//---------------------

type Job struct {
	UID        uuid.UUID   `json:"uid"`
	BatchID    uuid.UUID   `json:"batch_id"`
	ImageID    int         `json:"id_image"`
	ProductID  int         `json:"id_product"`
	ShopID     int         `json:"id_shop"`
	ImageTypes []int64     `json:"image_types,omitempty"`
	Status     Status      `json:"status,omitempty"`
	ErrMsg     StringSlice `json:"error,omitempty"`
	CreatedAt  *time.Time  `json:"created_at,omitempty"`
	UpdatedAt  *time.Time  `json:"updated_at,omitempty"`
}

// HookData - событие загрузки новой товарной картинки
type HookData struct {
	ImageID    int   `json:"id_image"`
	ProductID  int   `json:"id_product"`
	ShopID     int   `json:"id_shop"`
	ImageTypes []int `json:"image_types"`
}

type RegenerateRequest struct {
	ShopID   int   `json:"id_shop"`
	ImageIDs []int `json:"image_ids"`
}

type RegenerateResult struct {
	BatchID uuid.UUID `json:"batch_id"`
	Queued  int       `json:"queued"`
}

//-------------------

type ListRequest struct {
	Page  int    `form:"page"`
	Limit int    `form:"limit"`
	Sort  string `form:"sort"`
	Order string `form:"order"`
}

const (
	ByUUID    = "uid"
	ByCreated = "created"
	OrderASC  = "ascend"
	OrderDESC = "descend"
)

// ------------------

var (
	ErrCommon500           error = errors.New("something went wrong. Try again later")                                // 500
	ErrIncorrectQuery      error = errors.New("incorrect query parameters")                                           // 400
	ErrIncorrectID         error = errors.New("incorrect job UUID")                                                   // 400
	ErrIncorrectImageID    error = errors.New("incorrect product image id")                                           // 400
	ErrJobNotFound         error = errors.New("specified job UUID doesn't exist")                                     // 404
	ErrIncorrectStatus     error = errors.New("incorrect status provided")                                            // 400
	ErrOpacityRequired     error = errors.New("opacity required")                                                     // 400
	ErrOpacityRange        error = errors.New("opacity is not in allowed range")                                      // 400
	ErrYAlignRequired      error = errors.New("Y-Align is required")                                                  // 400
	ErrYAlignRange         error = errors.New("Y-Align is not in allowed range")                                      // 400
	ErrXAlignRequired      error = errors.New("X-Align is required")                                                  // 400
	ErrXAlignRange         error = errors.New("X-Align is not in allowed range")                                      // 400
	ErrNoImageTypes        error = errors.New("at least one image type is required")                                  // 400
	ErrUnknownImageType    error = errors.New("unknown image type")                                                   // 400
	ErrEmptyWMark          error = errors.New("empty/incorrect watermark provided")                                   // 400
	ErrUnsupportedWMFormat error = errors.New("watermark image format is unsupported, allowed: .gif, .jpg, .png") // 400
	ErrWatermarkNotFound   error = errors.New("watermark image must be uploaded for this module to work")            // 404
	ErrAccessRules         error = errors.New("unable to update watermark section of the access file")               // 500
	ErrNoAccessSection     error = errors.New("watermark section not found in the access file")                      // 404
	ErrWatermarkTooLarge   error = errors.New("watermark file is too large")                                          // 400
	ErrCannotLoadWMark     error = errors.New("watermark image cannot be loaded, unsupported format")                 // 400
)

//--------------------

const (
	JPEG = "image/jpeg"
	PNG  = "image/png"
	GIF  = "image/gif"
)

var GetImageFileExt = map[string]string{
	JPEG: ".jpg",
	PNG:  ".png",
	GIF:  ".gif",
}

var GetCType = map[imaging.Format]string{
	imaging.JPEG: JPEG,
	imaging.GIF:  GIF,
	imaging.PNG:  PNG,
}

//--------------------

type StringSlice []string

func (s *StringSlice) Scan(value any) error {
	if value == nil {
		*s = []string{}
		return nil
	}

	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("invalid type for StringSlice")
	}

	if err := json.Unmarshal(b, s); err != nil {
		return fmt.Errorf("failed to unmarshal JSONB to []StringSlice: %w", err)
	}
	return nil
}

func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 || s == nil {
		return []byte(`[]`), nil
	}
	res, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal []StringSlice to JSONB: %w", err)
	}

	return res, nil
}
