package intake

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const analyzePrompt = `Analyze this photo for a cosplay transformation. Respond with JSON only:
{"face_detected": bool, "hair_color": string, "skin_tone": string, "pose": string, "quality_score": number between 0 and 1}`

// Analysis - 사진 분석 결과. Job 메타데이터 전용이며 프롬프트 생성에는 쓰이지 않는다.
type Analysis struct {
	FaceDetected bool    `json:"face_detected"`
	HairColor    string  `json:"hair_color"`
	SkinTone     string  `json:"skin_tone"`
	Pose         string  `json:"pose"`
	QualityScore float64 `json:"quality_score"`
}

// Analyzer - Gemini Vision 기반 사진 분석기
type Analyzer struct {
	client *genai.Client
	model  string
}

// NewAnalyzer - 분석기 생성 (API 키 미설정 시 nil, 분석 단계 스킵)
func NewAnalyzer(ctx context.Context, apiKey string) *Analyzer {
	if apiKey == "" {
		return nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		log.Printf("❌ [Analyzer] Failed to create Gemini client: %v", err)
		return nil
	}

	log.Println("✅ [Analyzer] Photo analyzer initialized")
	return &Analyzer{
		client: client,
		model:  "gemini-1.5-flash",
	}
}

// Close - 클라이언트 해제
func (a *Analyzer) Close() {
	if a != nil && a.client != nil {
		a.client.Close()
	}
}

// Analyze - 검증된 사진을 분석. 실패해도 생성 파이프라인은 계속 진행된다.
func (a *Analyzer) Analyze(ctx context.Context, asset *ValidatedAsset) (*Analysis, error) {
	format := strings.TrimPrefix(asset.MimeType, "image/")

	model := a.client.GenerativeModel(a.model)
	resp, err := model.GenerateContent(ctx,
		genai.ImageData(format, asset.Data),
		genai.Text(analyzePrompt),
	)
	if err != nil {
		return nil, fmt.Errorf("photo analysis failed: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("photo analysis returned no candidates")
	}

	var raw strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			raw.WriteString(string(text))
		}
	}

	analysis, err := parseAnalysis(raw.String())
	if err != nil {
		return nil, err
	}

	log.Printf("🔍 [Analyzer] face=%v hair=%s quality=%.2f",
		analysis.FaceDetected, analysis.HairColor, analysis.QualityScore)
	return analysis, nil
}

// parseAnalysis - 모델 응답에서 JSON 추출 (코드펜스 등 장식 제거)
func parseAnalysis(text string) (*Analysis, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in analysis response")
	}

	var analysis Analysis
	if err := json.Unmarshal([]byte(text[start:end+1]), &analysis); err != nil {
		return nil, fmt.Errorf("failed to parse analysis response: %w", err)
	}
	return &analysis, nil
}
