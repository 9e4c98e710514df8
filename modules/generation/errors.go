package generation

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidTransition - 상태 머신이 허용하지 않는 전이
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrRequestInFlight - 이전 요청이 아직 터미널 상태가 아님
	ErrRequestInFlight = errors.New("a generation request is already in flight")

	// ErrNoActiveRequest - 취소/조회할 활성 요청이 없음
	ErrNoActiveRequest = errors.New("no active generation request")
)

// ProviderError - provider가 명시적으로 failed 상태를 보고한 경우.
// 터미널이며 요청은 Failed로 끝난다.
type ProviderError struct {
	Reason string
}

func (e *ProviderError) Error() string {
	if e.Reason == "" {
		return "provider reported failure"
	}
	return "provider reported failure: " + e.Reason
}

// TimeoutError - 폴링 예산 내에 터미널 상태를 받지 못한 경우.
// ProviderError와 구분해서 노출한다 (재시도 안내 vs 서비스 상태 안내).
type TimeoutError struct {
	Budget time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("generation timed out after %s", e.Budget)
}

// IsTimeout - 타임아웃 에러 여부
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}
