package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"time"

	"github.com/Yash-Yashwant/CosplayAI/modules/common/config"
	"github.com/Yash-Yashwant/CosplayAI/modules/common/model"
	"github.com/Yash-Yashwant/CosplayAI/modules/common/utils"
)

type Client struct {
	httpClient *http.Client
}

// NewClient - Storage 클라이언트 생성 (Supabase Storage 미설정 시 nil)
func NewClient() *Client {
	cfg := config.GetConfig()
	if cfg.SupabaseURL == "" || cfg.SupabaseStorageBaseURL == "" {
		return nil
	}

	return &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// DownloadPhoto - Supabase Storage에서 원본 사진 다운로드
func (c *Client) DownloadPhoto(upload *model.Upload) ([]byte, error) {
	cfg := config.GetConfig()

	if upload.FilePath == nil || *upload.FilePath == "" {
		return nil, fmt.Errorf("no file path found for upload_id: %d", upload.UploadID)
	}
	filePath := *upload.FilePath

	// uploads/ 폴더가 누락된 경우 자동 추가 (upload-로 시작하는 경우)
	if len(filePath) > 0 && filePath[0] != '/' &&
		len(filePath) >= 7 && filePath[:7] == "upload-" {
		filePath = "uploads/" + filePath
	}

	fullURL := cfg.SupabaseStorageBaseURL + filePath
	log.Printf("📥 Downloading photo from: %s", fullURL)

	httpResp, err := c.httpClient.Get(fullURL)
	if err != nil {
		return nil, fmt.Errorf("failed to download photo: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(httpResp.Body)
		return nil, fmt.Errorf("failed to download photo: status %d, body: %s", httpResp.StatusCode, string(body))
	}

	photoData, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read photo data: %w", err)
	}

	log.Printf("✅ Photo downloaded: %d bytes", len(photoData))
	return photoData, nil
}

// StoreResult - 생성 결과 이미지를 WebP로 변환해서 Storage에 업로드, 경로 반환
func (c *Client) StoreResult(ctx context.Context, imageData []byte, ownerID string) (string, error) {
	cfg := config.GetConfig()

	// PNG를 WebP로 변환 (quality: 90)
	webpData, err := utils.ConvertPNGToWebP(imageData, 90.0)
	if err != nil {
		return "", fmt.Errorf("failed to convert PNG to WebP: %w", err)
	}

	// 파일명 생성 (WebP 확장자)
	timestamp := time.Now().UnixNano() / int64(time.Millisecond)
	randomID := rand.Intn(999999)
	fileName := fmt.Sprintf("cosplay_%d_%d.webp", timestamp, randomID)

	filePath := fmt.Sprintf("cosplay-results/session-%s/%s", ownerID, fileName)

	log.Printf("📤 Uploading WebP result to storage: %s", filePath)

	uploadURL := fmt.Sprintf("%s/storage/v1/object/attachments/%s",
		cfg.SupabaseURL, filePath)

	req, err := http.NewRequestWithContext(ctx, "POST", uploadURL, bytes.NewReader(webpData))
	if err != nil {
		return "", fmt.Errorf("failed to create upload request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+cfg.SupabaseServiceKey)
	req.Header.Set("Content-Type", "image/webp")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to upload result: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("upload failed with status %d: %s", resp.StatusCode, string(body))
	}

	log.Printf("✅ WebP result uploaded: %s (%d bytes)", filePath, len(webpData))
	return cfg.SupabaseStorageBaseURL + filePath, nil
}
