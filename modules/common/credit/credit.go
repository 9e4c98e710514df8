package credit

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/supabase-community/supabase-go"

	"github.com/Yash-Yashwant/CosplayAI/modules/common/config"
)

type Client struct {
	supabase *supabase.Client
}

// NewClient - Credit 클라이언트 생성 (Supabase 미설정 시 nil)
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

// DeductForGeneration - 완료된 생성 Job의 크레딧 차감 및 트랜잭션 기록
func (c *Client) DeductForGeneration(ctx context.Context, userID string, jobID string) error {
	cfg := config.GetConfig()
	creditsPerImage := cfg.ImagePerPrice

	log.Printf("💰 Deducting credits: User=%s, Job=%s, Credits=%d", userID, jobID, creditsPerImage)

	// 1. 현재 크레딧 조회
	var members []struct {
		MemberCredit int `json:"member_credit"`
	}

	data, _, err := c.supabase.From("cosplay_members").
		Select("member_credit", "", false).
		Eq("member_id", userID).
		Execute()

	if err != nil {
		return fmt.Errorf("failed to fetch user credits: %w", err)
	}

	if err := json.Unmarshal(data, &members); err != nil {
		return fmt.Errorf("failed to parse member data: %w", err)
	}

	if len(members) == 0 {
		return fmt.Errorf("user not found: %s", userID)
	}

	currentCredits := members[0].MemberCredit
	newBalance := currentCredits - creditsPerImage

	log.Printf("💰 Credit balance: %d → %d (-%d)", currentCredits, newBalance, creditsPerImage)

	// 2. 크레딧 차감
	_, _, err = c.supabase.From("cosplay_members").
		Update(map[string]interface{}{
			"member_credit": newBalance,
		}, "", "").
		Eq("member_id", userID).
		Execute()

	if err != nil {
		return fmt.Errorf("failed to deduct credits: %w", err)
	}

	// 3. 트랜잭션 기록 (실패해도 Job은 유지)
	transactionData := map[string]interface{}{
		"user_id":          userID,
		"transaction_type": "DEDUCT",
		"amount":           -creditsPerImage,
		"balance_after":    newBalance,
		"description":      "Cosplay image generated",
		"job_id":           jobID,
	}

	_, _, err = c.supabase.From("cosplay_credits").
		Insert(transactionData, false, "", "", "").
		Execute()

	if err != nil {
		log.Printf("⚠️  Failed to record credit transaction for job %s: %v", jobID, err)
	}

	log.Printf("✅ Credits deducted successfully: %d credits from user %s", creditsPerImage, userID)
	return nil
}
