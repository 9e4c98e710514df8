package generation

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Yash-Yashwant/CosplayAI/modules/catalog"
	"github.com/Yash-Yashwant/CosplayAI/modules/common/config"
	"github.com/Yash-Yashwant/CosplayAI/modules/common/credit"
	"github.com/Yash-Yashwant/CosplayAI/modules/common/database"
	"github.com/Yash-Yashwant/CosplayAI/modules/common/model"
	redisutil "github.com/Yash-Yashwant/CosplayAI/modules/common/redis"
	"github.com/Yash-Yashwant/CosplayAI/modules/common/storage"
	"github.com/Yash-Yashwant/CosplayAI/modules/intake"
	"github.com/Yash-Yashwant/CosplayAI/modules/prompt"
)

// workerDeps - 워커가 쓰는 클라이언트 묶음
type workerDeps struct {
	db       *database.Client
	store    *storage.Client
	credits  *credit.Client
	catalog  *catalog.Catalog
	provider Provider
	analyzer *intake.Analyzer
	sessions *sessionLocks
}

// sessionLocks - 세션당 한 번에 하나의 Job만 처리 (같은 세션의 Job은 직렬화)
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*sync.Mutex)}
}

// acquire blocks until the session is free and returns the release func.
func (s *sessionLocks) acquire(sessionID string) func() {
	s.mu.Lock()
	m, ok := s.locks[sessionID]
	if !ok {
		m = &sync.Mutex{}
		s.locks[sessionID] = m
	}
	s.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// StartWorker - Redis Queue Worker 시작.
// DB에 미리 생성된 Job을 받아 동일한 상태 머신으로 처리하고 전이를 DB에 반영한다.
func StartWorker(cat *catalog.Catalog, provider Provider) {
	log.Println("🔄 Generation queue worker starting...")

	cfg := config.GetConfig()

	rdb := redisutil.Connect(cfg)
	if rdb == nil {
		log.Println("⚠️  Worker disabled: Redis not available")
		return
	}

	db := database.NewClient()
	if db == nil {
		log.Println("⚠️  Worker disabled: Supabase not configured")
		return
	}

	store := storage.NewClient()
	if store == nil {
		log.Println("⚠️  Worker disabled: Supabase Storage not configured")
		return
	}

	deps := &workerDeps{
		db:       db,
		store:    store,
		credits:  credit.NewClient(),
		catalog:  cat,
		provider: provider,
		analyzer: intake.NewAnalyzer(context.Background(), cfg.GeminiAPIKey),
		sessions: newSessionLocks(),
	}

	log.Printf("👀 Watching queue: %s", redisutil.GenerationQueue)

	ctx := context.Background()

	for {
		// Job 받기 (BRPOP - Blocking Right Pop)
		result, err := rdb.BRPop(ctx, 0, redisutil.GenerationQueue).Result()
		if err != nil {
			log.Printf("❌ Redis BRPOP error: %v", err)
			time.Sleep(5 * time.Second)
			continue
		}

		jobID := result[1]
		log.Printf("🎯 Received generation job: %s", jobID)

		go processJob(ctx, deps, rdb, jobID)
	}
}

func processJob(ctx context.Context, deps *workerDeps, rdb *redis.Client, jobID string) {
	cfg := config.GetConfig()

	job, err := deps.db.FetchJob(jobID)
	if err != nil {
		log.Printf("❌ Failed to fetch job %s: %v", jobID, err)
		return
	}

	// 같은 세션의 Job이 처리 중이면 끝날 때까지 대기 (세션당 하나의 활성 요청)
	release := deps.sessions.acquire(job.SessionID)
	defer release()

	// 처리 시작 전 취소 체크
	if redisutil.IsJobCancelled(ctx, rdb, jobID) {
		log.Printf("🛑 Job %s already cancelled, skipping", jobID)
		deps.db.UpdateJobStatus(ctx, jobID, model.StatusUserCancelled)
		redisutil.ClearCancelFlag(ctx, rdb, jobID)
		return
	}

	upload, err := deps.db.FetchUploadInfo(job.UploadID)
	if err != nil {
		failJob(ctx, deps.db, jobID, err)
		return
	}

	photoData, err := deps.store.DownloadPhoto(upload)
	if err != nil {
		failJob(ctx, deps.db, jobID, err)
		return
	}

	mimeType := "image/jpeg"
	if upload.MimeType != nil && *upload.MimeType != "" {
		mimeType = *upload.MimeType
	}
	fileName := ""
	if upload.UploadedFileName != nil {
		fileName = *upload.UploadedFileName
	}

	asset := &intake.PhotoAsset{
		FileName: fileName,
		MimeType: mimeType,
		Data:     photoData,
	}

	validator := intake.NewValidator(cfg.MaxUploadBytes)

	// 사진 분석은 메타데이터 전용 - 실패해도 생성은 계속된다
	if deps.analyzer != nil {
		if validated, err := validator.Validate(asset); err == nil {
			if analysis, err := deps.analyzer.Analyze(ctx, validated); err == nil {
				deps.db.SaveJobAnalysis(ctx, jobID, analysis)
			} else {
				log.Printf("⚠️ Photo analysis skipped for job %s: %v", jobID, err)
			}
		}
	}

	sink := newJobSink(deps.db, jobID)
	orch := New(job.SessionID, deps.provider, deps.catalog, validator,
		WithEventSink(sink),
		WithResultStore(deps.store),
		WithPollTiming(cfg.PollInterval(), cfg.PollMaxWait()),
	)

	opts := prompt.Options{
		Style:   prompt.ParseStyleTag(job.Style),
		Quality: prompt.ParseQualityTag(job.Quality),
	}

	if _, err := orch.Submit(ctx, asset, job.CharacterID, opts); err != nil {
		// 검증 실패는 sink가 이미 Failed로 기록했고, 캐릭터 오류는 여기서 기록
		if errors.Is(err, catalog.ErrUnknownCharacter) {
			failJob(ctx, deps.db, jobID, err)
		}
		log.Printf("❌ Job %s rejected at submit: %v", jobID, err)
		return
	}

	// 진행 중 취소 감시
	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-watchCtx.Done():
				return
			case <-ticker.C:
				if redisutil.IsJobCancelled(watchCtx, rdb, jobID) {
					log.Printf("🛑 Job %s cancelled by user, stopping generation", jobID)
					orch.Cancel()
					return
				}
			}
		}
	}()

	final := <-sink.done
	stopWatch()

	// 취소로 끝났으면 user_cancelled로 덮어쓰기 (completed/failed 유지 안 함)
	if redisutil.IsJobCancelled(ctx, rdb, jobID) {
		deps.db.UpdateJobStatus(ctx, jobID, model.StatusUserCancelled)
		redisutil.ClearCancelFlag(ctx, rdb, jobID)
		return
	}

	if final.Status == StatusCompleted && deps.credits != nil && job.UserID != nil {
		if err := deps.credits.DeductForGeneration(ctx, *job.UserID, jobID); err != nil {
			log.Printf("⚠️ Credit deduction failed for job %s: %v", jobID, err)
		}
	}

	log.Printf("🏁 Job %s finished with status: %s", jobID, final.Status)
}

func failJob(ctx context.Context, db *database.Client, jobID string, cause error) {
	log.Printf("❌ Job %s failed: %v", jobID, cause)
	if err := db.SaveJobError(ctx, jobID, cause.Error()); err != nil {
		log.Printf("⚠️ Failed to save job error: %v", err)
	}
	if err := db.UpdateJobStatus(ctx, jobID, model.StatusFailed); err != nil {
		log.Printf("⚠️ Failed to update job status: %v", err)
	}
}

// jobSink - 오케스트레이터 전이를 Job 레코드에 반영하는 EventSink
type jobSink struct {
	db    *database.Client
	jobID string
	done  chan Snapshot
}

func newJobSink(db *database.Client, jobID string) *jobSink {
	return &jobSink{
		db:    db,
		jobID: jobID,
		done:  make(chan Snapshot, 1),
	}
}

func (s *jobSink) PublishGeneration(sessionID string, snap Snapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	switch snap.Status {
	case StatusUploading:
		s.db.UpdateJobStatus(ctx, s.jobID, model.StatusUploading)

	case StatusProcessing:
		s.db.UpdateJobStatus(ctx, s.jobID, model.StatusProcessing)

	case StatusCompleted:
		s.db.SaveJobResult(ctx, s.jobID, snap.Result)
		s.db.UpdateJobProgress(ctx, s.jobID, snap.Progress)
		s.db.UpdateJobStatus(ctx, s.jobID, model.StatusCompleted)
		s.signal(snap)

	case StatusFailed:
		s.db.SaveJobError(ctx, s.jobID, snap.Error)
		s.db.UpdateJobStatus(ctx, s.jobID, model.StatusFailed)
		s.signal(snap)

	case StatusTimedOut:
		s.db.SaveJobError(ctx, s.jobID, snap.Error)
		s.db.UpdateJobStatus(ctx, s.jobID, model.StatusTimedOut)
		s.signal(snap)
	}
}

func (s *jobSink) signal(snap Snapshot) {
	select {
	case s.done <- snap:
	default:
	}
}
