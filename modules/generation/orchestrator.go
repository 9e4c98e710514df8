package generation

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Yash-Yashwant/CosplayAI/modules/catalog"
	"github.com/Yash-Yashwant/CosplayAI/modules/intake"
	"github.com/Yash-Yashwant/CosplayAI/modules/prompt"
)

const submitTimeout = 120 * time.Second

// ResultStore - 완료된 이미지 바이트를 저장하고 조회 가능한 참조를 돌려준다.
// nil이면 인라인 바이트는 data URL로 노출된다.
type ResultStore interface {
	StoreResult(ctx context.Context, imageData []byte, ownerID string) (string, error)
}

// Orchestrator owns the lifecycle of one generation request per session:
// Idle → Uploading → Processing → Completed/Failed/TimedOut, plus reset.
// It is the sole mutator of request fields; every mutation is serialized
// behind one mutex. Poll outcomes carry a poller generation number so a
// cancelled poller's late outcome is discarded instead of overwriting a
// newer request.
type Orchestrator struct {
	sessionID string
	provider  Provider
	catalog   *catalog.Catalog
	validator *intake.Validator

	store        ResultStore
	sink         EventSink
	pollInterval time.Duration
	maxWait      time.Duration

	mu        sync.Mutex
	req       *Request
	poller    *Poller
	pollerGen int
}

// Option - 오케스트레이터 구성 옵션
type Option func(*Orchestrator)

// WithResultStore - 완료 이미지 저장소 연결
func WithResultStore(store ResultStore) Option {
	return func(o *Orchestrator) { o.store = store }
}

// WithEventSink - 상태 변경 이벤트 수신자 연결
func WithEventSink(sink EventSink) Option {
	return func(o *Orchestrator) { o.sink = sink }
}

// WithPollTiming - 폴링 주기/예산 설정 (테스트에서 시간 압축용으로도 사용)
func WithPollTiming(interval, maxWait time.Duration) Option {
	return func(o *Orchestrator) {
		o.pollInterval = interval
		o.maxWait = maxWait
	}
}

// New - 세션 하나를 담당하는 오케스트레이터 생성
func New(sessionID string, provider Provider, cat *catalog.Catalog, validator *intake.Validator, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		sessionID:    sessionID,
		provider:     provider,
		catalog:      cat,
		validator:    validator,
		pollInterval: 2 * time.Second,
		maxWait:      300 * time.Second,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// SessionID - 이 오케스트레이터가 담당하는 세션
func (o *Orchestrator) SessionID() string {
	return o.sessionID
}

// Submit - 새 생성 요청 시작.
// 이전 요청이 아직 활성이면 ErrRequestInFlight로 거부한다 (덮어쓰기 금지).
// 알 수 없는 캐릭터는 상태를 바꾸지 않고 에러만 반환하고,
// 업로드 검증 실패는 네트워크 호출 없이 바로 Failed로 끝난다.
func (o *Orchestrator) Submit(ctx context.Context, asset *intake.PhotoAsset, characterID string, opts prompt.Options) (Snapshot, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.req != nil && !o.req.Status.IsTerminal() {
		return o.snapshotLocked(), fmt.Errorf("%w (current status: %s)", ErrRequestInFlight, o.req.Status)
	}

	template, err := o.catalog.Resolve(characterID)
	if err != nil {
		// 상태 변경 없음 - 시도 자체가 성립하지 않음
		return o.snapshotLocked(), err
	}

	req := &Request{
		ID:          uuid.NewString(),
		CharacterID: characterID,
		Style:       opts.Style,
		Quality:     opts.Quality,
		Status:      StatusIdle,
		CreatedAt:   time.Now(),
	}

	validated, err := o.validator.Validate(asset)
	if err != nil {
		// Idle → Failed, provider 호출 없음
		req.Status, _ = req.Status.TransitionTo(StatusFailed)
		req.Err = err.Error()
		o.req = req
		log.Printf("❌ [Orchestrator] Session %s: upload rejected: %v", o.sessionID, err)
		o.publishLocked()
		return o.snapshotLocked(), err
	}

	promptText := prompt.Build(template, opts)

	req.Asset = validated
	req.Status, _ = req.Status.TransitionTo(StatusUploading)
	o.req = req

	log.Printf("🎭 [Orchestrator] Session %s: submitting %s as %s (%s/%s, photo %s)",
		o.sessionID, req.ID, characterID, opts.Style, opts.Quality, validated.Fingerprint[:8])

	go o.submitToProvider(req.ID, &SubmitRequest{
		Prompt:      promptText,
		Photo:       validated.Data,
		MimeType:    validated.MimeType,
		CharacterID: req.CharacterID,
		Style:       string(req.Style),
		Quality:     string(req.Quality),
	})

	o.publishLocked()
	return o.snapshotLocked(), nil
}

// submitToProvider - provider 접수 호출 (요청 고루틴 밖에서 실행)
func (o *Orchestrator) submitToProvider(requestID string, submitReq *SubmitRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
	defer cancel()

	resp, err := o.provider.Submit(ctx, submitReq)

	o.mu.Lock()
	defer o.mu.Unlock()

	// reset/cancel과 경합한 늦은 응답은 무시
	if o.req == nil || o.req.ID != requestID || o.req.Status != StatusUploading {
		return
	}

	if err != nil {
		o.failLocked((&ProviderError{Reason: fmt.Sprintf("submit failed: %v", err)}).Error())
		return
	}

	o.req.JobID = resp.JobID
	o.req.Status, _ = o.req.Status.TransitionTo(StatusProcessing)
	log.Printf("🚀 [Orchestrator] Session %s: provider %s accepted job %s",
		o.sessionID, o.provider.Name(), resp.JobID)

	o.startPollerLocked()
	o.publishLocked()
}

// startPollerLocked - 현재 Job에 대한 폴러 시작. mu 보유 상태에서 호출.
func (o *Orchestrator) startPollerLocked() {
	o.pollerGen++
	gen := o.pollerGen
	requestID := o.req.ID
	jobID := o.req.JobID

	p := NewPoller(o.provider, o.pollInterval, o.maxWait)
	p.OnPoll = func(resp *PollResponse) {
		o.notePoll(gen, requestID)
	}
	o.poller = p

	p.Start(jobID, func(out Outcome) {
		o.finish(gen, requestID, out)
	})
}

// notePoll - 터미널이 아닌 폴 응답의 타임스탬프 기록
func (o *Orchestrator) notePoll(gen int, requestID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.pollerGen || o.req == nil || o.req.ID != requestID {
		return
	}
	o.req.LastPollAt = time.Now()
}

// finish - 폴러의 터미널 결과 적용. stale 폴러의 결과는 버린다.
func (o *Orchestrator) finish(gen int, requestID string, out Outcome) {
	// 결과 저장은 락 밖에서 (네트워크 호출)
	if out.Kind == OutcomeCompleted && out.ResultRef == "" && len(out.Image) > 0 {
		if o.store != nil {
			ref, err := o.store.StoreResult(context.Background(), out.Image, o.sessionID)
			if err != nil {
				log.Printf("❌ [Orchestrator] Session %s: failed to store result: %v", o.sessionID, err)
				out = Outcome{Kind: OutcomeFailed, Reason: fmt.Sprintf("failed to store result: %v", err)}
			} else {
				out.ResultRef = ref
			}
		} else {
			out.ResultRef = "data:image/png;base64," + base64.StdEncoding.EncodeToString(out.Image)
		}
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if gen != o.pollerGen || o.req == nil || o.req.ID != requestID || o.req.Status != StatusProcessing {
		log.Printf("🗑️ [Orchestrator] Session %s: discarding stale poll outcome for %s", o.sessionID, requestID)
		return
	}

	o.req.LastPollAt = time.Now()
	o.poller = nil

	switch out.Kind {
	case OutcomeCompleted:
		if out.ResultRef == "" {
			// 결과 없는 completed는 provider 실패로 처리 (Completed는 항상 result를 가진다)
			o.failLocked((&ProviderError{Reason: "completed without a result"}).Error())
			return
		}
		o.req.Status, _ = o.req.Status.TransitionTo(StatusCompleted)
		o.req.Progress = 100
		o.req.Result = out.ResultRef
		o.req.Asset = nil
		log.Printf("✅ [Orchestrator] Session %s: job %s completed", o.sessionID, o.req.JobID)

	case OutcomeFailed:
		o.failLocked((&ProviderError{Reason: out.Reason}).Error())
		return

	case OutcomeTimedOut:
		o.req.Status, _ = o.req.Status.TransitionTo(StatusTimedOut)
		o.req.Err = (&TimeoutError{Budget: o.maxWait}).Error()
		o.req.Asset = nil
		log.Printf("⏰ [Orchestrator] Session %s: job %s timed out", o.sessionID, o.req.JobID)
	}

	o.publishLocked()
}

// failLocked - 활성 상태에서 Failed로 전이. mu 보유 상태에서 호출.
func (o *Orchestrator) failLocked(reason string) {
	next, err := o.req.Status.TransitionTo(StatusFailed)
	if err != nil {
		log.Printf("⚠️ [Orchestrator] Session %s: %v", o.sessionID, err)
		return
	}
	o.req.Status = next
	o.req.Err = reason
	o.req.Asset = nil
	log.Printf("❌ [Orchestrator] Session %s: request %s failed: %s", o.sessionID, o.req.ID, reason)
	o.publishLocked()
}

// Cancel - 활성 요청 중단. 폴러를 먼저 끊고 Failed로 마감한다.
func (o *Orchestrator) Cancel() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.req == nil || !o.req.Status.IsActive() {
		return ErrNoActiveRequest
	}

	o.stopPollerLocked()
	o.failLocked("generation cancelled")
	return nil
}

// Reset - 터미널 상태에서 Idle로 복귀. 요청과 사진 참조를 비운다.
func (o *Orchestrator) Reset() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.req == nil {
		return nil // 이미 Idle
	}
	if !o.req.Status.IsTerminal() {
		return fmt.Errorf("%w: cannot reset while %s", ErrRequestInFlight, o.req.Status)
	}

	o.stopPollerLocked()
	o.req = nil
	log.Printf("🧹 [Orchestrator] Session %s: reset to idle", o.sessionID)
	o.publishLocked()
	return nil
}

// stopPollerLocked - 폴러 취소 + 세대 번호 증가로 늦은 콜백 무효화
func (o *Orchestrator) stopPollerLocked() {
	if o.poller != nil {
		o.poller.Cancel()
		o.poller = nil
	}
	o.pollerGen++
}

// Snapshot - 현재 상태의 값 복사본 (요청 없으면 Idle)
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

func (o *Orchestrator) snapshotLocked() Snapshot {
	if o.req == nil {
		return Snapshot{Status: StatusIdle}
	}
	return o.req.snapshot()
}

func (o *Orchestrator) publishLocked() {
	if o.sink == nil {
		return
	}
	o.sink.PublishGeneration(o.sessionID, o.snapshotLocked())
}
