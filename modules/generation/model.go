package generation

import (
	"fmt"
	"time"

	"github.com/Yash-Yashwant/CosplayAI/modules/intake"
	"github.com/Yash-Yashwant/CosplayAI/modules/prompt"
)

// Status - 한 생성 요청의 클라이언트 가시 상태
type Status string

const (
	StatusIdle       Status = "idle"
	StatusUploading  Status = "uploading"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusTimedOut   Status = "timed_out"
)

// validTransitions - 허용된 전이만 나열. 터미널 상태에서는 reset(Idle)만 가능.
var validTransitions = map[Status][]Status{
	StatusIdle:       {StatusUploading, StatusFailed},
	StatusUploading:  {StatusProcessing, StatusFailed},
	StatusProcessing: {StatusCompleted, StatusFailed, StatusTimedOut},
	StatusCompleted:  {StatusIdle},
	StatusFailed:     {StatusIdle},
	StatusTimedOut:   {StatusIdle},
}

// IsTerminal - 더 이상 자동 전이가 없는 상태인지
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusTimedOut
}

// IsActive - 진행 중 상태인지 (새 submit을 거부해야 하는 구간)
func (s Status) IsActive() bool {
	return s == StatusUploading || s == StatusProcessing
}

// CanTransitionTo - 전이 가능 여부
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// TransitionTo - 전이를 검증하고 다음 상태 반환
func (s Status) TransitionTo(next Status) (Status, error) {
	if !s.CanTransitionTo(next) {
		return s, fmt.Errorf("%w: %s → %s", ErrInvalidTransition, s, next)
	}
	return next, nil
}

// Request - 오케스트레이터가 소유하는 한 건의 생성 요청.
// 필드 변경은 전부 오케스트레이터를 통해서만 일어난다.
type Request struct {
	ID          string // 로컬 요청 ID (uuid, submit 시 발급)
	JobID       string // provider가 발급한 Job ID (accept 전까지 빈 값)
	CharacterID string
	Style       prompt.StyleTag
	Quality     prompt.QualityTag
	Asset       *intake.ValidatedAsset
	Status      Status
	Progress    int // 0-100, 단조 증가
	Result      string
	Err         string
	CreatedAt   time.Time
	LastPollAt  time.Time
}

// Snapshot - 핸들러/이벤트용 요청 상태의 값 복사본
type Snapshot struct {
	RequestID   string            `json:"request_id"`
	JobID       string            `json:"job_id,omitempty"`
	CharacterID string            `json:"character,omitempty"`
	Style       prompt.StyleTag   `json:"style,omitempty"`
	Quality     prompt.QualityTag `json:"quality,omitempty"`
	Status      Status            `json:"status"`
	Progress    int               `json:"progress"`
	Result      string            `json:"result,omitempty"`
	Error       string            `json:"error,omitempty"`
	CreatedAt   time.Time         `json:"created_at,omitempty"`
	LastPollAt  time.Time         `json:"last_poll_at,omitempty"`
}

func (r *Request) snapshot() Snapshot {
	return Snapshot{
		RequestID:   r.ID,
		JobID:       r.JobID,
		CharacterID: r.CharacterID,
		Style:       r.Style,
		Quality:     r.Quality,
		Status:      r.Status,
		Progress:    r.Progress,
		Result:      r.Result,
		Error:       r.Err,
		CreatedAt:   r.CreatedAt,
		LastPollAt:  r.LastPollAt,
	}
}

// EventSink - 상태 변경 수신자 (웹소켓 허브, DB 싱크 등). nil이면 무시.
type EventSink interface {
	PublishGeneration(sessionID string, snap Snapshot)
}
