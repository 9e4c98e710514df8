package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/supabase-community/supabase-go"

	"github.com/Yash-Yashwant/CosplayAI/modules/common/config"
	"github.com/Yash-Yashwant/CosplayAI/modules/common/model"
)

type Client struct {
	supabase *supabase.Client
}

// NewClient - Database 클라이언트 생성 (Supabase 미설정 시 nil)
func NewClient() *Client {
	cfg := config.GetConfig()
	if cfg.SupabaseURL == "" || cfg.SupabaseServiceKey == "" {
		return nil
	}

	supabaseClient, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceKey, &supabase.ClientOptions{})
	if err != nil {
		log.Printf("❌ Failed to create Supabase client: %v", err)
		return nil
	}

	return &Client{
		supabase: supabaseClient,
	}
}

// CreateJob - 새 생성 Job 레코드 생성 (pending 상태로 시작)
func (c *Client) CreateJob(ctx context.Context, job *model.GenerationJob) error {
	log.Printf("📝 Creating generation job: %s (character: %s)", job.JobID, job.CharacterID)

	insertData := map[string]interface{}{
		"job_id":       job.JobID,
		"session_id":   job.SessionID,
		"user_id":      job.UserID,
		"character_id": job.CharacterID,
		"style":        job.Style,
		"quality":      job.Quality,
		"upload_id":    job.UploadID,
		"job_status":   model.StatusPending,
		"progress":     0,
	}

	_, _, err := c.supabase.From("cosplay_generation_jobs").
		Insert(insertData, false, "", "", "").
		Execute()

	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}

	return nil
}

// FetchJob - 생성 Job 레코드 조회
func (c *Client) FetchJob(jobID string) (*model.GenerationJob, error) {
	log.Printf("🔍 Fetching generation job: %s", jobID)

	var jobs []model.GenerationJob

	data, _, err := c.supabase.From("cosplay_generation_jobs").
		Select("*", "exact", false).
		Eq("job_id", jobID).
		Execute()

	if err != nil {
		return nil, fmt.Errorf("failed to query cosplay_generation_jobs: %w", err)
	}

	if err := json.Unmarshal(data, &jobs); err != nil {
		return nil, fmt.Errorf("failed to parse job response: %w", err)
	}

	if len(jobs) == 0 {
		return nil, fmt.Errorf("job not found: %s", jobID)
	}

	job := &jobs[0]
	log.Printf("✅ Job fetched: %s (character: %s, status: %s)",
		job.JobID, job.CharacterID, job.JobStatus)

	return job, nil
}

// UpdateJobStatus - Job 상태 업데이트
func (c *Client) UpdateJobStatus(ctx context.Context, jobID string, status string) error {
	log.Printf("📝 Updating job %s status to: %s", jobID, status)

	updateData := map[string]interface{}{
		"job_status": status,
		"updated_at": "now()",
	}

	if status == model.StatusUploading {
		updateData["started_at"] = "now()"
	} else if status == model.StatusCompleted || status == model.StatusFailed ||
		status == model.StatusTimedOut || status == model.StatusUserCancelled {
		updateData["completed_at"] = "now()"
	}

	_, _, err := c.supabase.From("cosplay_generation_jobs").
		Update(updateData, "", "").
		Eq("job_id", jobID).
		Execute()

	if err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}

	return nil
}

// UpdateJobProgress - Job 진행률 업데이트
func (c *Client) UpdateJobProgress(ctx context.Context, jobID string, progress int) error {
	updateData := map[string]interface{}{
		"progress":   progress,
		"updated_at": "now()",
	}

	_, _, err := c.supabase.From("cosplay_generation_jobs").
		Update(updateData, "", "").
		Eq("job_id", jobID).
		Execute()

	if err != nil {
		return fmt.Errorf("failed to update job progress: %w", err)
	}

	return nil
}

// SaveJobResult - 완료된 Job의 결과 경로 저장
func (c *Client) SaveJobResult(ctx context.Context, jobID string, resultPath string) error {
	log.Printf("💾 Saving result for job %s: %s", jobID, resultPath)

	updateData := map[string]interface{}{
		"result_path": resultPath,
		"updated_at":  "now()",
	}

	_, _, err := c.supabase.From("cosplay_generation_jobs").
		Update(updateData, "", "").
		Eq("job_id", jobID).
		Execute()

	if err != nil {
		return fmt.Errorf("failed to save job result: %w", err)
	}

	return nil
}

// SaveJobError - 실패/타임아웃 사유 저장
func (c *Client) SaveJobError(ctx context.Context, jobID string, message string) error {
	updateData := map[string]interface{}{
		"error_message": message,
		"updated_at":    "now()",
	}

	_, _, err := c.supabase.From("cosplay_generation_jobs").
		Update(updateData, "", "").
		Eq("job_id", jobID).
		Execute()

	if err != nil {
		return fmt.Errorf("failed to save job error: %w", err)
	}

	return nil
}

// SaveJobAnalysis - 사진 분석 결과를 Job 메타데이터로 저장
func (c *Client) SaveJobAnalysis(ctx context.Context, jobID string, analysis interface{}) error {
	updateData := map[string]interface{}{
		"photo_analysis": analysis,
		"updated_at":     "now()",
	}

	_, _, err := c.supabase.From("cosplay_generation_jobs").
		Update(updateData, "", "").
		Eq("job_id", jobID).
		Execute()

	if err != nil {
		return fmt.Errorf("failed to save photo analysis: %w", err)
	}

	return nil
}

// FetchUploadInfo - cosplay_uploads 테이블에서 원본 사진 정보 조회
func (c *Client) FetchUploadInfo(uploadID int) (*model.Upload, error) {
	log.Printf("🔍 Fetching upload info: %d", uploadID)

	var uploads []model.Upload

	data, _, err := c.supabase.From("cosplay_uploads").
		Select("*", "exact", false).
		Eq("upload_id", fmt.Sprintf("%d", uploadID)).
		Execute()

	if err != nil {
		return nil, fmt.Errorf("failed to query cosplay_uploads: %w", err)
	}

	if err := json.Unmarshal(data, &uploads); err != nil {
		return nil, fmt.Errorf("failed to parse upload response: %w", err)
	}

	if len(uploads) == 0 {
		return nil, fmt.Errorf("upload not found: %d", uploadID)
	}

	upload := &uploads[0]

	var pathStr string
	if upload.FilePath != nil {
		pathStr = *upload.FilePath
	} else {
		pathStr = "null"
	}
	log.Printf("✅ Upload info fetched: ID=%d, Path=%s", upload.UploadID, pathStr)

	return upload, nil
}
