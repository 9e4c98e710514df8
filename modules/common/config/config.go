package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config 구조체 - 모든 환경변수를 담음
type Config struct {
	// Server
	Port string

	// Upload
	MaxUploadBytes int64

	// Character catalog
	CatalogURL string

	// Generation polling
	PollIntervalSeconds int
	PollMaxWaitSeconds  int

	// Redis (queue/cancel flags - 없으면 큐 기능 비활성화)
	RedisHost     string
	RedisPort     string
	RedisUsername string
	RedisPassword string
	RedisUseTLS   bool

	// Supabase (persistence - 없으면 in-memory 모드)
	SupabaseURL            string
	SupabaseServiceKey     string
	SupabaseStorageBaseURL string

	// Gemini API
	GeminiAPIKey  string
	GeminiAPIKeys string
	GeminiModel   string

	// Vertex AI Imagen
	VertexProjectID string
	VertexLocation  string
	ImagenModel     string

	// Credit
	ImagePerPrice int
}

var globalConfig *Config

// LoadConfig - 환경변수 로드
func LoadConfig() (*Config, error) {
	// .env 파일 로드 (있으면)
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env file not found, using environment variables")
	}

	// Redis UseTLS 파싱
	useTLS := true // 기본값
	if tlsStr := os.Getenv("REDIS_USE_TLS"); tlsStr != "" {
		if parsed, err := strconv.ParseBool(tlsStr); err == nil {
			useTLS = parsed
		}
	}

	globalConfig = &Config{
		Port: getEnv("PORT", "8080"),

		MaxUploadBytes: getEnvInt64("MAX_UPLOAD_BYTES", 10*1024*1024),

		CatalogURL: getEnv("CATALOG_URL", ""),

		PollIntervalSeconds: getEnvInt("POLL_INTERVAL_SECONDS", 2),
		PollMaxWaitSeconds:  getEnvInt("POLL_MAX_WAIT_SECONDS", 300),

		RedisHost:     getEnv("REDIS_HOST", ""),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisUsername: getEnv("REDIS_USERNAME", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisUseTLS:   useTLS,

		SupabaseURL:            getEnv("SUPABASE_URL", ""),
		SupabaseServiceKey:     getEnv("SUPABASE_SERVICE_KEY", ""),
		SupabaseStorageBaseURL: getEnv("SUPABASE_STORAGE_BASE_URL", ""),

		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiAPIKeys: getEnv("GEMINI_API_KEYS", ""),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.5-flash-image"),

		VertexProjectID: getEnv("VERTEX_PROJECT_ID", ""),
		VertexLocation:  getEnv("VERTEX_LOCATION", "us-central1"),
		ImagenModel:     getEnv("IMAGEN_MODEL", "imagen-4.0-ultra-generate-001"),

		ImagePerPrice: getEnvInt("IMAGE_PER_PRICE", 5),
	}

	// 필수 환경변수 검증
	if err := globalConfig.validate(); err != nil {
		return nil, err
	}

	log.Println("✅ Configuration loaded successfully")
	log.Printf("   Upload limit: %d bytes", globalConfig.MaxUploadBytes)
	log.Printf("   Polling: every %ds, max wait %ds",
		globalConfig.PollIntervalSeconds, globalConfig.PollMaxWaitSeconds)
	if globalConfig.RedisHost == "" {
		log.Println("⚠️  REDIS_HOST not set - queue worker disabled")
	}
	if globalConfig.SupabaseURL == "" {
		log.Println("⚠️  SUPABASE_URL not set - running without persistence")
	}
	if globalConfig.VertexProjectID == "" {
		log.Println("⚠️  VERTEX_PROJECT_ID not set - Imagen provider disabled")
	}

	return globalConfig, nil
}

// GetConfig - 로드된 설정 가져오기
func GetConfig() *Config {
	if globalConfig == nil {
		log.Fatal("❌ Config not loaded. Call LoadConfig() first.")
	}
	return globalConfig
}

// validate - 설정 값 검증
func (c *Config) validate() error {
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	if c.PollIntervalSeconds <= 0 {
		return fmt.Errorf("POLL_INTERVAL_SECONDS must be positive")
	}
	if c.PollMaxWaitSeconds <= c.PollIntervalSeconds {
		return fmt.Errorf("POLL_MAX_WAIT_SECONDS must be greater than POLL_INTERVAL_SECONDS")
	}
	return nil
}

// getEnv - 환경변수 가져오기 (기본값 지원)
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// GetRedisAddr - Redis 연결 문자열 생성
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

// PollInterval - 폴링 주기
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// PollMaxWait - 폴링 전체 대기 한도
func (c *Config) PollMaxWait() time.Duration {
	return time.Duration(c.PollMaxWaitSeconds) * time.Second
}

// GeminiKeys - 멀티 키 리스트 (GEMINI_API_KEYS 우선, 없으면 단일 키)
func (c *Config) GeminiKeys() []string {
	var keys []string
	for _, key := range strings.Split(c.GeminiAPIKeys, ",") {
		key = strings.TrimSpace(key)
		if key != "" {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 && c.GeminiAPIKey != "" {
		keys = append(keys, c.GeminiAPIKey)
	}
	return keys
}
