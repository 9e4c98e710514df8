package utils

import (
	"bytes"
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	_ "image/jpeg" // JPEG 디코더 등록
	"image/png"
	"log"

	"github.com/gabriel-vasile/mimetype"
	_ "github.com/kolesa-team/go-webp/decoder" // WebP 디코더 등록
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
)

// ConvertImageToBase64 - 이미지 바이너리를 base64로 변환
func ConvertImageToBase64(imageData []byte) string {
	return base64.StdEncoding.EncodeToString(imageData)
}

// FingerprintImage - 이미지 데이터의 md5 해시 (로그/파일명용)
func FingerprintImage(imageData []byte) string {
	sum := md5.Sum(imageData)
	return hex.EncodeToString(sum[:])
}

// SniffMimeType - 실제 바이트 기반 MIME 감지
func SniffMimeType(imageData []byte) string {
	return mimetype.Detect(imageData).String()
}

// FormatFileSize - 사람이 읽을 수 있는 용량 표기
func FormatFileSize(sizeBytes int64) string {
	if sizeBytes == 0 {
		return "0B"
	}

	sizeNames := []string{"B", "KB", "MB", "GB"}
	size := float64(sizeBytes)
	i := 0
	for size >= 1024 && i < len(sizeNames)-1 {
		size /= 1024
		i++
	}

	return fmt.Sprintf("%.1f%s", size, sizeNames[i])
}

// ConvertPNGToWebP - PNG 바이너리를 WebP로 변환
func ConvertPNGToWebP(pngData []byte, quality float32) ([]byte, error) {
	log.Printf("🔄 Converting PNG to WebP (quality: %.1f)", quality)

	// PNG 디코딩
	pngReader := bytes.NewReader(pngData)
	img, err := png.Decode(pngReader)
	if err != nil {
		return nil, fmt.Errorf("failed to decode PNG: %w", err)
	}

	// WebP 인코딩
	options, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, quality)
	if err != nil {
		return nil, fmt.Errorf("failed to create WebP encoder options: %w", err)
	}

	var webpBuffer bytes.Buffer
	err = webp.Encode(&webpBuffer, img, options)
	if err != nil {
		return nil, fmt.Errorf("failed to encode WebP: %w", err)
	}

	webpData := webpBuffer.Bytes()

	log.Printf("✅ PNG converted to WebP: %d bytes → %d bytes (%.1f%% reduction)",
		len(pngData), len(webpData),
		float64(len(pngData)-len(webpData))/float64(len(pngData))*100)

	return webpData, nil
}
