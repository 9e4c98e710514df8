package generation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pollStep - 스텁 provider가 순서대로 돌려줄 폴 응답
type pollStep struct {
	resp *PollResponse
	err  error
}

// stubProvider - 미리 정의된 폴 응답 시퀀스를 재생하는 테스트용 provider.
// 시퀀스가 소진되면 마지막 step을 반복한다.
type stubProvider struct {
	mu          sync.Mutex
	jobID       string
	submitErr   error
	steps       []pollStep
	submitCalls int
	pollCalls   int
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Submit(ctx context.Context, req *SubmitRequest) (*SubmitResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitCalls++
	if s.submitErr != nil {
		return nil, s.submitErr
	}
	return &SubmitResponse{JobID: s.jobID, Status: JobStatusProcessing}, nil
}

func (s *stubProvider) Poll(ctx context.Context, jobID string) (*PollResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.pollCalls
	s.pollCalls++
	if idx >= len(s.steps) {
		idx = len(s.steps) - 1
	}
	step := s.steps[idx]
	return step.resp, step.err
}

func (s *stubProvider) submitted() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitCalls
}

func (s *stubProvider) polled() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pollCalls
}

func processingSteps(n int) []pollStep {
	steps := make([]pollStep, n)
	for i := range steps {
		steps[i] = pollStep{resp: &PollResponse{Status: JobStatusProcessing}}
	}
	return steps
}

func collectOutcome(t *testing.T, p *Poller, jobID string) chan Outcome {
	t.Helper()
	outcomes := make(chan Outcome, 1)
	p.Start(jobID, func(out Outcome) {
		outcomes <- out
	})
	return outcomes
}

func TestPollerCompletes(t *testing.T) {
	provider := &stubProvider{
		steps: append(processingSteps(4), pollStep{
			resp: &PollResponse{Status: JobStatusCompleted, ResultRef: "img://abc123"},
		}),
	}

	p := NewPoller(provider, 5*time.Millisecond, time.Second)
	outcomes := collectOutcome(t, p, "abc123")

	select {
	case out := <-outcomes:
		assert.Equal(t, OutcomeCompleted, out.Kind)
		assert.Equal(t, "img://abc123", out.ResultRef)
	case <-time.After(time.Second):
		t.Fatal("poller did not report completion")
	}

	assert.GreaterOrEqual(t, provider.polled(), 5)
}

func TestPollerReportsFailure(t *testing.T) {
	provider := &stubProvider{
		steps: append(processingSteps(2), pollStep{
			resp: &PollResponse{Status: JobStatusFailed, Reason: "content policy violation"},
		}),
	}

	p := NewPoller(provider, 5*time.Millisecond, time.Second)
	outcomes := collectOutcome(t, p, "job-1")

	select {
	case out := <-outcomes:
		assert.Equal(t, OutcomeFailed, out.Kind)
		assert.Equal(t, "content policy violation", out.Reason)
	case <-time.After(time.Second):
		t.Fatal("poller did not report failure")
	}
}

func TestPollerTimesOutWhenNeverTerminal(t *testing.T) {
	provider := &stubProvider{steps: processingSteps(1)}

	p := NewPoller(provider, 5*time.Millisecond, 50*time.Millisecond)
	outcomes := collectOutcome(t, p, "job-slow")

	select {
	case out := <-outcomes:
		assert.Equal(t, OutcomeTimedOut, out.Kind)
		assert.Contains(t, out.Reason, "no terminal status")
	case <-time.After(time.Second):
		t.Fatal("poller did not time out")
	}
}

func TestPollerRetriesTransientErrors(t *testing.T) {
	steps := []pollStep{
		{err: errors.New("connection reset")},
		{err: errors.New("502 bad gateway")},
		{resp: &PollResponse{Status: JobStatusProcessing}},
		{resp: &PollResponse{Status: JobStatusCompleted, ResultRef: "img://after-retries"}},
	}
	provider := &stubProvider{steps: steps}

	p := NewPoller(provider, 5*time.Millisecond, time.Second)
	outcomes := collectOutcome(t, p, "job-flaky")

	select {
	case out := <-outcomes:
		assert.Equal(t, OutcomeCompleted, out.Kind)
		assert.Equal(t, "img://after-retries", out.ResultRef)
	case <-time.After(time.Second):
		t.Fatal("transient errors must not stop the poll loop")
	}
}

func TestPollerContinuesOnUnknownStatus(t *testing.T) {
	steps := []pollStep{
		{resp: &PollResponse{Status: JobStatusUnknown}},
		{resp: &PollResponse{Status: JobStatusUnknown}},
		{resp: &PollResponse{Status: JobStatusCompleted, ResultRef: "img://eventually"}},
	}
	provider := &stubProvider{steps: steps}

	p := NewPoller(provider, 5*time.Millisecond, time.Second)
	outcomes := collectOutcome(t, p, "job-vague")

	select {
	case out := <-outcomes:
		assert.Equal(t, OutcomeCompleted, out.Kind)
	case <-time.After(time.Second):
		t.Fatal("unknown status must keep the poll loop running")
	}
}

func TestPollerCancelSuppressesOutcome(t *testing.T) {
	provider := &stubProvider{steps: processingSteps(1)}

	p := NewPoller(provider, 5*time.Millisecond, 100*time.Millisecond)
	outcomes := collectOutcome(t, p, "job-cancelled")

	time.Sleep(20 * time.Millisecond)
	p.Cancel()

	// 취소 후에는 타임아웃 예산이 지나도 아무 결과도 오지 않아야 한다
	select {
	case out := <-outcomes:
		t.Fatalf("cancelled poller must stay silent, got outcome kind %d", out.Kind)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestPollerStartIsSingleUse(t *testing.T) {
	provider := &stubProvider{
		steps: []pollStep{{resp: &PollResponse{Status: JobStatusCompleted, ResultRef: "img://once"}}},
	}

	p := NewPoller(provider, 5*time.Millisecond, time.Second)
	outcomes := make(chan Outcome, 2)
	p.Start("job-a", func(out Outcome) { outcomes <- out })
	p.Start("job-b", func(out Outcome) { outcomes <- out })

	require.Eventually(t, func() bool { return len(outcomes) == 1 }, time.Second, 5*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	assert.Len(t, outcomes, 1, "second Start must be a no-op")
}

func TestPollerDefaultsTiming(t *testing.T) {
	p := NewPoller(&stubProvider{}, 0, 0)
	assert.Equal(t, 2*time.Second, p.interval)
	assert.Equal(t, 300*time.Second, p.maxWait)
}
