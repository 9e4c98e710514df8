package generation

import (
	"context"
	"strings"
)

// JobStatus - provider 상태 어휘를 내부 집합으로 정규화한 값.
// provider마다 어휘가 다르므로 열린 집합으로 취급하고 Unknown 폴백을 둔다.
type JobStatus string

const (
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusUnknown    JobStatus = "unknown"
)

// ParseJobStatus - provider가 보낸 상태 문자열 정규화.
// 처음 보는 값은 Unknown으로 돌리고 폴링은 계속된다.
func ParseJobStatus(raw string) JobStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "processing", "pending", "queued", "submitted", "running", "in_progress", "accepted":
		return JobStatusProcessing
	case "completed", "complete", "succeed", "succeeded", "success", "done":
		return JobStatusCompleted
	case "failed", "failure", "error":
		return JobStatusFailed
	default:
		return JobStatusUnknown
	}
}

// SubmitRequest - provider로 보내는 생성 요청
type SubmitRequest struct {
	Prompt      string
	Photo       []byte
	MimeType    string
	CharacterID string
	Style       string
	Quality     string
}

// SubmitResponse - provider의 접수 응답
type SubmitResponse struct {
	JobID  string
	Status JobStatus
}

// PollResponse - provider의 상태 조회 응답.
// 완료 시 ResultRef(조회 가능한 위치) 또는 Image(인라인 바이트) 중 하나가 채워진다.
type PollResponse struct {
	Status    JobStatus
	Reason    string
	ResultRef string
	Image     []byte
	Metadata  map[string]string
}

// Provider - 외부 이미지 생성 서비스와의 전체 경계.
// Submit은 Job ID를 발급받고, Poll은 그 ID로 진행 상태를 조회한다.
type Provider interface {
	Name() string
	Submit(ctx context.Context, req *SubmitRequest) (*SubmitResponse, error)
	Poll(ctx context.Context, jobID string) (*PollResponse, error)
}
