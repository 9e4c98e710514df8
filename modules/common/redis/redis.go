package redis

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Yash-Yashwant/CosplayAI/modules/common/config"
)

// GenerationQueue - 생성 Job 큐 키
const GenerationQueue = "jobs:cosplay"

// CancelFlagTTL - 취소 플래그 유지 시간
const CancelFlagTTL = 30 * time.Minute

// Connect - Redis 연결 생성
func Connect(cfg *config.Config) *redis.Client {
	if cfg.RedisHost == "" {
		return nil
	}

	log.Printf("🔌 Connecting to Redis: %s", cfg.GetRedisAddr())

	// TLS 설정 (InsecureSkipVerify 추가)
	var tlsConfig *tls.Config
	if cfg.RedisUseTLS {
		tlsConfig = &tls.Config{
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: true, // Render.com Redis용
		}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.GetRedisAddr(),
		Username:     cfg.RedisUsername,
		Password:     cfg.RedisPassword,
		TLSConfig:    tlsConfig,
		DB:           0,
		DialTimeout:  10 * time.Second,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	// 연결 테스트
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("❌ Redis ping failed: %v", err)
		return nil
	}

	return rdb
}

// Enqueue - Job ID를 생성 큐에 추가, 큐 길이 반환
func Enqueue(ctx context.Context, rdb *redis.Client, jobID string) (int64, error) {
	if _, err := rdb.LPush(ctx, GenerationQueue, jobID).Result(); err != nil {
		return 0, fmt.Errorf("failed to enqueue job %s: %w", jobID, err)
	}
	return rdb.LLen(ctx, GenerationQueue).Result()
}

func cancelKey(jobID string) string {
	return "cancel:cosplay:" + jobID
}

// SetCancelFlag - Job 취소 플래그 설정
func SetCancelFlag(ctx context.Context, rdb *redis.Client, jobID string) error {
	if err := rdb.Set(ctx, cancelKey(jobID), "1", CancelFlagTTL).Err(); err != nil {
		return fmt.Errorf("failed to set cancel flag for %s: %w", jobID, err)
	}
	log.Printf("🛑 Cancel flag set for job %s", jobID)
	return nil
}

// IsJobCancelled - Job 취소 여부 확인 (조회 실패는 false 처리)
func IsJobCancelled(ctx context.Context, rdb *redis.Client, jobID string) bool {
	val, err := rdb.Get(ctx, cancelKey(jobID)).Result()
	if err != nil {
		return false
	}
	return val == "1"
}

// ClearCancelFlag - Job 취소 플래그 제거
func ClearCancelFlag(ctx context.Context, rdb *redis.Client, jobID string) {
	if err := rdb.Del(ctx, cancelKey(jobID)).Err(); err != nil {
		log.Printf("⚠️  Failed to clear cancel flag for %s: %v", jobID, err)
	}
}
