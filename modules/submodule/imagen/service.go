package imagen

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/Yash-Yashwant/CosplayAI/modules/common/config"
	"github.com/Yash-Yashwant/CosplayAI/modules/common/vertexai"
	"github.com/Yash-Yashwant/CosplayAI/modules/generation"
)

// Service - Vertex AI Imagen provider.
// predictLongRunning으로 접수하고 fetchPredictOperation으로 상태를 조회한다.
type Service struct {
	cfg    *config.Config
	tokens oauth2.TokenSource
	client *http.Client
}

// NewService - Imagen provider 생성 (Vertex 미설정/인증 실패 시 nil)
func NewService(ctx context.Context) *Service {
	cfg := config.GetConfig()
	if cfg.VertexProjectID == "" {
		return nil
	}

	tokens, err := vertexai.NewTokenSource(ctx)
	if err != nil {
		log.Printf("⚠️  [Imagen] Credential setup failed: %v", err)
		return nil
	}

	log.Printf("✅ [Imagen] Provider ready (model: %s, location: %s)", cfg.ImagenModel, cfg.VertexLocation)

	return &Service{
		cfg:    cfg,
		tokens: tokens,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

func (s *Service) Name() string {
	return "imagen"
}

// Submit - 생성 요청 접수. 반환되는 operation name이 폴링용 Job ID가 된다.
func (s *Service) Submit(ctx context.Context, req *generation.SubmitRequest) (*generation.SubmitResponse, error) {
	payload := buildPredictRequest(req)

	var op operationResponse
	if err := s.post(ctx, s.endpoint("predictLongRunning"), payload, &op); err != nil {
		return nil, fmt.Errorf("imagen submit failed: %w", err)
	}

	if op.Name == "" {
		return nil, fmt.Errorf("imagen submit failed: no operation name in response")
	}

	log.Printf("📤 [Imagen] Operation started: %s", op.Name)

	return &generation.SubmitResponse{
		JobID:  op.Name,
		Status: generation.JobStatusProcessing,
	}, nil
}

// buildPredictRequest - 코스프레 변환용 predictLongRunning 페이로드
func buildPredictRequest(req *generation.SubmitRequest) *predictRequest {
	return &predictRequest{
		Instances: []instance{
			{
				Prompt: req.Prompt,
				Image: &inlineImage{
					BytesBase64Encoded: base64.StdEncoding.EncodeToString(req.Photo),
				},
			},
		},
		Parameters: parameters{
			SampleCount:       1,
			AspectRatio:       "1:1",
			SafetyFilterLevel: "block_some",
			PersonGeneration:  "allow_adult",
			OutputOptions: outputOptions{
				MimeType:           "image/png",
				CompressionQuality: "lossless",
			},
			EditConfig: &editConfig{
				EditMode:        "inpainting-replace",
				GuidanceScale:   120,
				OutputImageType: "EDITED_IMAGE",
			},
			StylizationLevel: 100,
		},
	}
}

// Poll - operation 상태 조회
func (s *Service) Poll(ctx context.Context, jobID string) (*generation.PollResponse, error) {
	payload := &fetchOperationRequest{OperationName: jobID}

	var op operationResponse
	if err := s.post(ctx, s.endpoint("fetchPredictOperation"), payload, &op); err != nil {
		return nil, fmt.Errorf("imagen poll failed: %w", err)
	}

	if !op.Done {
		return &generation.PollResponse{Status: generation.JobStatusProcessing}, nil
	}

	if op.Error != nil {
		return &generation.PollResponse{
			Status: generation.JobStatusFailed,
			Reason: fmt.Sprintf("imagen operation error %d: %s", op.Error.Code, op.Error.Message),
		}, nil
	}

	if op.Response == nil || len(op.Response.Predictions) == 0 {
		return &generation.PollResponse{
			Status: generation.JobStatusFailed,
			Reason: "imagen operation finished without predictions",
		}, nil
	}

	imageData, err := base64.StdEncoding.DecodeString(op.Response.Predictions[0].BytesBase64Encoded)
	if err != nil {
		return &generation.PollResponse{
			Status: generation.JobStatusFailed,
			Reason: fmt.Sprintf("invalid prediction payload: %v", err),
		}, nil
	}

	log.Printf("✅ [Imagen] Operation complete: %s (%d bytes)", jobID, len(imageData))

	return &generation.PollResponse{
		Status: generation.JobStatusCompleted,
		Image:  imageData,
		Metadata: map[string]string{
			"mime_type": op.Response.Predictions[0].MimeType,
		},
	}, nil
}

func (s *Service) endpoint(verb string) string {
	return fmt.Sprintf(
		"https://%s-aiplatform.googleapis.com/v1/projects/%s/locations/%s/publishers/google/models/%s:%s",
		s.cfg.VertexLocation, s.cfg.VertexProjectID, s.cfg.VertexLocation, s.cfg.ImagenModel, verb,
	)
}

func (s *Service) post(ctx context.Context, url string, payload interface{}, out interface{}) error {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(reqBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	token, err := s.tokens.Token()
	if err != nil {
		return fmt.Errorf("failed to get access token: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call Vertex AI: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("Vertex AI error %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
