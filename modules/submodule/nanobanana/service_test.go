package nanobanana

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yash-Yashwant/CosplayAI/modules/common/fallback"
	"github.com/Yash-Yashwant/CosplayAI/modules/generation"
)

func newDemoService() *Service {
	return &Service{
		model:    "gemini-2.5-flash-image",
		demoMode: true,
		tasks:    newTaskTable(),
	}
}

func TestSubmitRequiresPrompt(t *testing.T) {
	svc := newDemoService()

	_, err := svc.Submit(context.Background(), &generation.SubmitRequest{})
	require.Error(t, err)
}

func TestDemoModeLifecycle(t *testing.T) {
	svc := newDemoService()

	resp, err := svc.Submit(context.Background(), &generation.SubmitRequest{Prompt: "cosplay portrait"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.JobID)
	assert.Equal(t, generation.JobStatusProcessing, resp.Status)

	poll, err := svc.Poll(context.Background(), resp.JobID)
	require.NoError(t, err)
	assert.Equal(t, generation.JobStatusProcessing, poll.Status)

	require.Eventually(t, func() bool {
		poll, err = svc.Poll(context.Background(), resp.JobID)
		return err == nil && poll.Status == generation.JobStatusCompleted
	}, 5*time.Second, 100*time.Millisecond)

	assert.Equal(t, fallback.PlaceholderBytes(), poll.Image)
}

func TestPollUnknownTask(t *testing.T) {
	svc := newDemoService()

	_, err := svc.Poll(context.Background(), "no-such-task")
	require.Error(t, err)
}

func TestTaskTableSweepKeepsProcessing(t *testing.T) {
	table := newTaskTable()
	table.put(&task{ID: "old-done", Status: generation.JobStatusCompleted, CreatedAt: time.Now().Add(-time.Hour)})
	table.put(&task{ID: "old-active", Status: generation.JobStatusProcessing, CreatedAt: time.Now().Add(-time.Hour)})

	table.sweep(30 * time.Minute)

	_, ok := table.get("old-done")
	assert.False(t, ok)
	_, ok = table.get("old-active")
	assert.True(t, ok)
}
