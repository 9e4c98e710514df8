package generation

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	goredis "github.com/redis/go-redis/v9"

	"github.com/Yash-Yashwant/CosplayAI/modules/catalog"
	"github.com/Yash-Yashwant/CosplayAI/modules/common/database"
	"github.com/Yash-Yashwant/CosplayAI/modules/common/fallback"
	"github.com/Yash-Yashwant/CosplayAI/modules/common/model"
	redisutil "github.com/Yash-Yashwant/CosplayAI/modules/common/redis"
	"github.com/Yash-Yashwant/CosplayAI/modules/intake"
	"github.com/Yash-Yashwant/CosplayAI/modules/prompt"
)

// Handler - 생성 API 핸들러
type Handler struct {
	registry *Registry
	catalog  *catalog.Catalog
	rdb      *goredis.Client  // 없으면 큐/취소 플래그 기능 비활성화
	db       *database.Client // 없으면 enqueue 시 Job 생성 비활성화
	maxBytes int64
}

// GenerateResponse - POST /api/generate 응답
type GenerateResponse struct {
	Success       bool   `json:"success"`
	RequestID     string `json:"request_id,omitempty"`
	Status        Status `json:"status,omitempty"`
	EstimatedTime int    `json:"estimated_time,omitempty"`
	Error         string `json:"error,omitempty"`
}

// EnqueueRequest - POST /api/enqueue 요청
// job_id가 있으면 기존 Job을 큐에 넣고, 없으면 나머지 필드로 Job을 생성 후 큐에 넣음
type EnqueueRequest struct {
	JobID       string  `json:"job_id"`
	SessionID   string  `json:"session_id"`
	UserID      *string `json:"user_id"`
	CharacterID string  `json:"character_id"`
	Style       string  `json:"style"`
	Quality     string  `json:"quality"`
	UploadID    int     `json:"upload_id"`
}

// EnqueueResponse - POST /api/enqueue 응답
type EnqueueResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message,omitempty"`
	Error         string `json:"error,omitempty"`
	JobID         string `json:"job_id,omitempty"`
	Queue         string `json:"queue,omitempty"`
	QueuePosition int64  `json:"queuePosition,omitempty"`
}

// NewHandler - 핸들러 생성
func NewHandler(registry *Registry, cat *catalog.Catalog, rdb *goredis.Client, db *database.Client, maxBytes int64) *Handler {
	return &Handler{
		registry: registry,
		catalog:  cat,
		rdb:      rdb,
		db:       db,
		maxBytes: maxBytes,
	}
}

// RegisterRoutes - 라우트 등록
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/generate", h.HandleGenerate).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/generation/{generationId}", h.HandleStatus).Methods("GET", "OPTIONS")
	r.HandleFunc("/api/generation/{generationId}/reset", h.HandleReset).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/generation/{generationId}/cancel", h.HandleCancel).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/characters", h.HandleCharacters).Methods("GET", "OPTIONS")
	if h.rdb != nil {
		r.HandleFunc("/api/enqueue", h.HandleEnqueue).Methods("POST", "OPTIONS")
	}
	log.Println("✅ Generation routes registered")
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// HandleGenerate - POST /api/generate (multipart: photo + character/style/quality/sessionId)
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	// multipart 파싱 (메모리 상한은 업로드 상한 + 여유분)
	if err := r.ParseMultipartForm(h.maxBytes + 1024*1024); err != nil {
		log.Printf("❌ [Generate] Invalid multipart form: %v", err)
		writeJSON(w, http.StatusBadRequest, GenerateResponse{Success: false, Error: "invalid multipart form"})
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, GenerateResponse{Success: false, Error: "photo file is required"})
		return
	}
	defer file.Close()

	photoData, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, GenerateResponse{Success: false, Error: "failed to read photo"})
		return
	}

	characterID := r.FormValue("character")
	if characterID == "" {
		writeJSON(w, http.StatusBadRequest, GenerateResponse{Success: false, Error: "character is required"})
		return
	}

	sessionID := fallback.SafeString(r.FormValue("sessionId"), "default")
	opts := prompt.Options{
		Style:   prompt.ParseStyleTag(r.FormValue("style")),
		Quality: prompt.ParseQualityTag(r.FormValue("quality")),
	}

	asset := &intake.PhotoAsset{
		FileName: header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Data:     photoData,
	}

	log.Printf("📥 [Generate] Session %s: %s as %s (%s, %d bytes)",
		sessionID, header.Filename, characterID, opts.Style, len(photoData))

	orch := h.registry.Session(sessionID)
	snap, err := orch.Submit(r.Context(), asset, characterID, opts)
	if err != nil {
		switch {
		case errors.Is(err, ErrRequestInFlight):
			writeJSON(w, http.StatusConflict, GenerateResponse{Success: false, Error: err.Error()})
		case errors.Is(err, catalog.ErrUnknownCharacter):
			writeJSON(w, http.StatusBadRequest, GenerateResponse{Success: false, Error: err.Error()})
		case intake.IsValidationError(err):
			// 요청은 Failed로 기록되고 네트워크 호출은 일어나지 않는다
			writeJSON(w, http.StatusBadRequest, GenerateResponse{
				Success:   false,
				RequestID: snap.RequestID,
				Status:    snap.Status,
				Error:     err.Error(),
			})
		default:
			writeJSON(w, http.StatusInternalServerError, GenerateResponse{Success: false, Error: err.Error()})
		}
		return
	}

	writeJSON(w, http.StatusAccepted, GenerateResponse{
		Success:       true,
		RequestID:     snap.RequestID,
		Status:        snap.Status,
		EstimatedTime: EstimateSeconds(characterID, opts.Quality, asset.Size()),
	})
}

// HandleStatus - GET /api/generation/{generationId}
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	requestID := mux.Vars(r)["generationId"]
	orch, ok := h.registry.FindByRequestID(requestID)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "generation not found"})
		return
	}

	writeJSON(w, http.StatusOK, orch.Snapshot())
}

// HandleReset - POST /api/generation/{generationId}/reset
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	requestID := mux.Vars(r)["generationId"]
	orch, ok := h.registry.FindByRequestID(requestID)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "generation not found"})
		return
	}

	if err := orch.Reset(); err != nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, orch.Snapshot())
}

// HandleCancel - POST /api/generation/{generationId}/cancel
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	requestID := mux.Vars(r)["generationId"]
	orch, ok := h.registry.FindByRequestID(requestID)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "generation not found"})
		return
	}

	snap := orch.Snapshot()
	if h.rdb != nil && snap.JobID != "" {
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()
		if err := redisutil.SetCancelFlag(ctx, h.rdb, snap.JobID); err != nil {
			log.Printf("⚠️ [Cancel] Failed to set cancel flag: %v", err)
		}
	}

	if err := orch.Cancel(); err != nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, orch.Snapshot())
}

// HandleCharacters - GET /api/characters (?style=, ?q=)
func (h *Handler) HandleCharacters(w http.ResponseWriter, r *http.Request) {
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	var characters []catalog.CharacterTemplate
	if style := r.URL.Query().Get("style"); style != "" {
		characters = h.catalog.ListByStyle(catalog.Style(style))
	} else if query := r.URL.Query().Get("q"); query != "" {
		characters = h.catalog.Search(query)
	} else {
		characters = h.catalog.List()
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"characters": characters,
		"source":     h.catalog.Source(),
	})
}

// HandleEnqueue - POST /api/enqueue (DB에 미리 생성된 Job을 워커 큐로)
func (h *Handler) HandleEnqueue(w http.ResponseWriter, r *http.Request) {
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	var req EnqueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ [Enqueue] Invalid request: %v", err)
		writeJSON(w, http.StatusBadRequest, EnqueueResponse{Success: false, Error: "Invalid request body"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if req.JobID == "" {
		if h.db == nil || req.CharacterID == "" || req.UploadID == 0 {
			writeJSON(w, http.StatusBadRequest, EnqueueResponse{Success: false, Error: "job_id is required"})
			return
		}

		job := &model.GenerationJob{
			JobID:       uuid.NewString(),
			SessionID:   fallback.SafeString(req.SessionID, "default"),
			UserID:      req.UserID,
			CharacterID: req.CharacterID,
			Style:       req.Style,
			Quality:     req.Quality,
			UploadID:    req.UploadID,
		}

		if err := h.db.CreateJob(ctx, job); err != nil {
			log.Printf("❌ [Enqueue] Failed to create job: %v", err)
			writeJSON(w, http.StatusInternalServerError, EnqueueResponse{Success: false, Error: "Failed to create job"})
			return
		}

		log.Printf("📝 [Enqueue] Job created: %s (character: %s)", job.JobID, job.CharacterID)
		req.JobID = job.JobID
	}

	position, err := redisutil.Enqueue(ctx, h.rdb, req.JobID)
	if err != nil {
		log.Printf("❌ [Enqueue] Redis LPUSH failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, EnqueueResponse{Success: false, Error: err.Error()})
		return
	}

	log.Printf("✅ [Enqueue] Job %s enqueued (position: %d)", req.JobID, position)

	writeJSON(w, http.StatusOK, EnqueueResponse{
		Success:       true,
		Message:       "Job enqueued successfully",
		JobID:         req.JobID,
		Queue:         redisutil.GenerationQueue,
		QueuePosition: position,
	})
}
