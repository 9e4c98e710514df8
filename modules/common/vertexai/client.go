package vertexai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// NewTokenSource - Vertex AI REST 호출용 OAuth2 토큰 소스 생성 (환경 변수 자동 처리)
func NewTokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	// 1. 환경 변수 VERTEXAI_CREDENTIALS_JSON 확인 (Render 배포용)
	if credsJSON := os.Getenv("VERTEXAI_CREDENTIALS_JSON"); credsJSON != "" {
		log.Println("✅ [VertexAI] Using VERTEXAI_CREDENTIALS_JSON from environment")
		creds, err := google.CredentialsFromJSON(ctx, []byte(credsJSON), cloudPlatformScope)
		if err != nil {
			return nil, fmt.Errorf("invalid JSON credentials: %w", err)
		}
		return creds.TokenSource, nil
	}

	// 2. 환경 변수 VERTEXAI_CREDENTIALS_PATH 확인 (로컬 테스트용)
	if credsPath := os.Getenv("VERTEXAI_CREDENTIALS_PATH"); credsPath != "" {
		log.Printf("✅ [VertexAI] Using credentials from file: %s", credsPath)
		credsData, err := os.ReadFile(credsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read credentials file: %w", err)
		}
		// JSON 유효성 검사
		var parsed map[string]interface{}
		if err := json.Unmarshal(credsData, &parsed); err != nil {
			return nil, fmt.Errorf("invalid JSON credentials: %w", err)
		}
		creds, err := google.CredentialsFromJSON(ctx, credsData, cloudPlatformScope)
		if err != nil {
			return nil, fmt.Errorf("failed to build credentials: %w", err)
		}
		return creds.TokenSource, nil
	}

	// 3. Application Default Credentials (ADC) 사용
	log.Println("⚠️  [VertexAI] No explicit credentials found, using Application Default Credentials")
	creds, err := google.FindDefaultCredentials(ctx, cloudPlatformScope)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve default credentials: %w", err)
	}
	return creds.TokenSource, nil
}
