package model

import "time"

// GenerationJob - cosplay_generation_jobs 테이블 구조
type GenerationJob struct {
	JobID        string     `json:"job_id"`
	SessionID    string     `json:"session_id"`
	UserID       *string    `json:"user_id"`
	CharacterID  string     `json:"character_id"`
	Style        string     `json:"style"`
	Quality      string     `json:"quality"`
	UploadID     int        `json:"upload_id"`
	JobStatus    string     `json:"job_status"`
	Progress     int        `json:"progress"`
	ResultPath   *string    `json:"result_path"`
	ErrorMessage *string    `json:"error_message"`
	CreatedAt    time.Time  `json:"created_at"`
	StartedAt    *time.Time `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Upload - cosplay_uploads 테이블 구조 (원본 사진 메타데이터)
type Upload struct {
	UploadID         int64     `json:"upload_id"`
	CreatedAt        time.Time `json:"created_at"`
	UploadedFileName *string   `json:"uploaded_file_name"`
	FilePath         *string   `json:"file_path"`
	FileSize         *int64    `json:"file_size"`
	MimeType         *string   `json:"mime_type"`
	Fingerprint      *string   `json:"fingerprint"`
}

// DB job 상태 값들 - 클라이언트 상태 머신 값에 user_cancelled가 더해진 집합
const (
	StatusPending       = "pending"
	StatusUploading     = "uploading"
	StatusProcessing    = "processing"
	StatusCompleted     = "completed"
	StatusFailed        = "failed"
	StatusTimedOut      = "timed_out"
	StatusUserCancelled = "user_cancelled"
)
