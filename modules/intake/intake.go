package intake

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Yash-Yashwant/CosplayAI/modules/common/utils"
)

// Validation failure kinds. Both mark the upload as permanently rejected -
// callers must not retry with the same asset.
var (
	ErrInvalidType = errors.New("file must be an image")
	ErrTooLarge    = errors.New("file exceeds the upload size limit")
)

// DefaultMaxBytes - 업로드 용량 상한 기본값 (10 MiB)
const DefaultMaxBytes = 10 * 1024 * 1024

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// PhotoAsset - 업로드된 원본 사진
type PhotoAsset struct {
	FileName string
	MimeType string
	Data     []byte
}

// Size - 바이트 크기
func (a *PhotoAsset) Size() int64 {
	return int64(len(a.Data))
}

// ValidatedAsset - 검증을 통과한 사진. Fingerprint와 SniffedType은
// 로그/저장용 메타데이터일 뿐 검증 결과에는 영향을 주지 않는다.
type ValidatedAsset struct {
	PhotoAsset
	Fingerprint string
	SniffedType string
}

// Validator - 업로드 검증기
type Validator struct {
	MaxBytes int64
}

// NewValidator - 검증기 생성 (maxBytes <= 0이면 기본값 사용)
func NewValidator(maxBytes int64) *Validator {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Validator{MaxBytes: maxBytes}
}

// Validate - 선언된 MIME 타입과 크기만 검사한다. 공유 상태 변경 없음.
func (v *Validator) Validate(asset *PhotoAsset) (*ValidatedAsset, error) {
	if asset == nil {
		return nil, fmt.Errorf("%w: no file provided", ErrInvalidType)
	}

	if !strings.HasPrefix(asset.MimeType, "image/") {
		return nil, fmt.Errorf("%w: declared type %q", ErrInvalidType, asset.MimeType)
	}

	if asset.FileName != "" {
		ext := strings.ToLower(filepath.Ext(asset.FileName))
		if ext != "" && !allowedExtensions[ext] {
			return nil, fmt.Errorf("%w: extension %q not allowed", ErrInvalidType, ext)
		}
	}

	if asset.Size() > v.MaxBytes {
		return nil, fmt.Errorf("%w: %s (limit %s)", ErrTooLarge,
			utils.FormatFileSize(asset.Size()), utils.FormatFileSize(v.MaxBytes))
	}

	return &ValidatedAsset{
		PhotoAsset:  *asset,
		Fingerprint: utils.FingerprintImage(asset.Data),
		SniffedType: utils.SniffMimeType(asset.Data),
	}, nil
}

// IsValidationError - 업로드 검증 실패 여부 (재시도 불가 에러)
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidType) || errors.Is(err, ErrTooLarge)
}
