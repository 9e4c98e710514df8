package nanobanana

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/Yash-Yashwant/CosplayAI/modules/common/config"
	"github.com/Yash-Yashwant/CosplayAI/modules/common/fallback"
	"github.com/Yash-Yashwant/CosplayAI/modules/common/gemini"
	"github.com/Yash-Yashwant/CosplayAI/modules/generation"
)

const (
	taskRetention = 30 * time.Minute
	generateLimit = 5 * time.Minute
)

// Service - Gemini 기반 이미지 생성 provider.
// API 키가 없으면 데모 모드로 동작해 플레이스홀더 이미지를 반환한다.
type Service struct {
	apiKeys  []string
	model    string
	demoMode bool
	tasks    *taskTable
}

func NewService() *Service {
	cfg := config.GetConfig()
	keys := cfg.GeminiKeys()

	demoMode := len(keys) == 0
	if demoMode {
		log.Println("⚠️  [Nanobanana] No Gemini API keys - running in demo mode")
	} else {
		log.Printf("✅ [Nanobanana] Service initialized (%d API keys)", len(keys))
	}

	return &Service{
		apiKeys:  keys,
		model:    cfg.GeminiModel,
		demoMode: demoMode,
		tasks:    newTaskTable(),
	}
}

func (s *Service) Name() string {
	return "nanobanana"
}

// Submit - 생성 작업 등록. 실제 호출은 백그라운드에서 진행된다.
func (s *Service) Submit(ctx context.Context, req *generation.SubmitRequest) (*generation.SubmitResponse, error) {
	if req.Prompt == "" {
		return nil, fmt.Errorf("prompt is required")
	}

	taskID := uuid.New().String()
	s.tasks.put(&task{
		ID:        taskID,
		Status:    generation.JobStatusProcessing,
		CreatedAt: time.Now(),
	})
	s.tasks.sweep(taskRetention)

	log.Printf("🎨 [Nanobanana] Task registered: %s (prompt: %s)", taskID, truncateString(req.Prompt, 50))

	go s.generate(taskID, req)

	return &generation.SubmitResponse{
		JobID:  taskID,
		Status: generation.JobStatusProcessing,
	}, nil
}

// Poll - 작업 상태 조회
func (s *Service) Poll(ctx context.Context, jobID string) (*generation.PollResponse, error) {
	tk, ok := s.tasks.get(jobID)
	if !ok {
		return nil, fmt.Errorf("unknown task: %s", jobID)
	}

	return &generation.PollResponse{
		Status: tk.Status,
		Reason: tk.Reason,
		Image:  tk.Image,
	}, nil
}

func (s *Service) generate(taskID string, req *generation.SubmitRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), generateLimit)
	defer cancel()

	if s.demoMode {
		// 데모 모드: 실제 생성처럼 약간의 지연 후 플레이스홀더 반환
		time.Sleep(2 * time.Second)
		s.tasks.complete(taskID, fallback.PlaceholderBytes())
		log.Printf("✅ [Nanobanana] Demo task complete: %s", taskID)
		return
	}

	parts := []*genai.Part{
		genai.NewPartFromText(req.Prompt),
	}
	if len(req.Photo) > 0 {
		mimeType := req.MimeType
		if mimeType == "" {
			mimeType = "image/jpeg"
		}
		parts = append(parts, genai.NewPartFromBytes(req.Photo, mimeType))
	}

	contents := []*genai.Content{
		{Parts: parts},
	}

	result, err := gemini.GenerateContentWithRetry(ctx, s.apiKeys, s.model, contents, &genai.GenerateContentConfig{
		ImageConfig: &genai.ImageConfig{
			AspectRatio: "1:1",
		},
		Temperature: floatPtr(0.7),
	})
	if err != nil {
		log.Printf("❌ [Nanobanana] Task %s failed: %v", taskID, err)
		s.tasks.fail(taskID, fmt.Sprintf("Gemini API error: %v", err))
		return
	}

	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				log.Printf("✅ [Nanobanana] Task %s complete: %d bytes", taskID, len(part.InlineData.Data))
				s.tasks.complete(taskID, part.InlineData.Data)
				return
			}
		}
	}

	s.tasks.fail(taskID, "No image generated from Gemini")
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

func floatPtr(f float64) *float32 {
	f32 := float32(f)
	return &f32
}
