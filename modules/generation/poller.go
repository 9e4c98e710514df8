package generation

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// OutcomeKind - 폴링 루프의 터미널 결과 종류
type OutcomeKind int

const (
	OutcomeCompleted OutcomeKind = iota
	OutcomeFailed
	OutcomeTimedOut
)

// Outcome - 폴링 루프가 onTerminal로 전달하는 결과
type Outcome struct {
	Kind      OutcomeKind
	ResultRef string
	Image     []byte
	Reason    string
}

// Poller polls the provider for one job until a terminal status, the overall
// wait budget, or Cancel. Transient poll errors never stop the loop - only
// the budget bounds how long they can continue. A cancelled poller stops
// silently and never invokes onTerminal, even for a response already in
// flight.
type Poller struct {
	provider Provider
	interval time.Duration
	maxWait  time.Duration

	// OnPoll - 터미널이 아닌 폴 응답마다 호출 (옵션, Start 전에 설정)
	OnPoll func(*PollResponse)

	mu      sync.Mutex
	cancel  context.CancelFunc
	started bool
}

// NewPoller - 폴러 생성. interval/maxWait가 0 이하이면 기본값 2s/300s 사용.
func NewPoller(provider Provider, interval, maxWait time.Duration) *Poller {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if maxWait <= 0 {
		maxWait = 300 * time.Second
	}
	return &Poller{
		provider: provider,
		interval: interval,
		maxWait:  maxWait,
	}
}

// Start - jobID에 대한 폴링 루프 시작. 재사용 불가 (폴러 하나당 한 Job).
func (p *Poller) Start(jobID string, onTerminal func(Outcome)) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.mu.Unlock()

	go p.run(ctx, jobID, onTerminal)
}

// Cancel - 폴링 중단. onTerminal은 호출되지 않고 늦게 도착한 응답은 버려진다.
func (p *Poller) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

func (p *Poller) run(ctx context.Context, jobID string, onTerminal func(Outcome)) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	budget := time.NewTimer(p.maxWait)
	defer budget.Stop()

	log.Printf("⏳ [Poller] Watching job %s (every %s, max %s)", jobID, p.interval, p.maxWait)

	for {
		select {
		case <-ctx.Done():
			return

		case <-budget.C:
			log.Printf("⏰ [Poller] Job %s exceeded wait budget of %s", jobID, p.maxWait)
			onTerminal(Outcome{
				Kind:   OutcomeTimedOut,
				Reason: fmt.Sprintf("no terminal status within %s", p.maxWait),
			})
			return

		case <-ticker.C:
			resp, err := p.provider.Poll(ctx, jobID)

			// 취소와 경합한 늦은 응답은 버린다
			if ctx.Err() != nil {
				return
			}

			if err != nil {
				// transient - 다음 tick에서 재시도, 전체 예산만이 한도
				log.Printf("⚠️ [Poller] Job %s poll failed (will retry): %v", jobID, err)
				continue
			}

			switch resp.Status {
			case JobStatusCompleted:
				onTerminal(Outcome{
					Kind:      OutcomeCompleted,
					ResultRef: resp.ResultRef,
					Image:     resp.Image,
				})
				return

			case JobStatusFailed:
				reason := resp.Reason
				if reason == "" {
					reason = "generation failed"
				}
				onTerminal(Outcome{Kind: OutcomeFailed, Reason: reason})
				return

			default:
				// processing 또는 Unknown - 계속 폴링
				if p.OnPoll != nil {
					p.OnPoll(resp)
				}
			}
		}
	}
}
