package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/Yash-Yashwant/CosplayAI/modules/catalog"
	"github.com/Yash-Yashwant/CosplayAI/modules/common/config"
	"github.com/Yash-Yashwant/CosplayAI/modules/common/database"
	redisutil "github.com/Yash-Yashwant/CosplayAI/modules/common/redis"
	"github.com/Yash-Yashwant/CosplayAI/modules/common/storage"
	"github.com/Yash-Yashwant/CosplayAI/modules/generation"
	"github.com/Yash-Yashwant/CosplayAI/modules/intake"
	"github.com/Yash-Yashwant/CosplayAI/modules/submodule/imagen"
	"github.com/Yash-Yashwant/CosplayAI/modules/submodule/nanobanana"
)

// WebSocket upgrader
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// 개발용 - 모든 origin 허용
		return true
	},
}

// 연결된 클라이언트 정보
type Client struct {
	conn      *websocket.Conn
	sessionId string
	userId    string
	send      chan []byte
}

// 세션 관리
type Session struct {
	id           string
	clients      map[string]*Client
	mutex        sync.RWMutex
	createdAt    time.Time
	lastActivity time.Time
}

// 세션 매니저 - generation.EventSink 구현체이기도 하다
type SessionManager struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
	metrics  *ServerMetrics
	registry *generation.Registry
}

// 서버 메트릭
type ServerMetrics struct {
	TotalSessions    int       `json:"totalSessions"`
	ActiveSessions   int       `json:"activeSessions"`
	TotalConnections int       `json:"totalConnections"`
	StartTime        time.Time `json:"startTime"`
	mutex            sync.RWMutex
}

var sessionManager = &SessionManager{
	sessions: make(map[string]*Session),
	metrics: &ServerMetrics{
		StartTime: time.Now(),
	},
}

// 클라이언트 → 서버 메시지
type Message struct {
	Type      string `json:"type"`
	SessionId string `json:"sessionId,omitempty"`
	UserId    string `json:"userId,omitempty"`
}

// PublishGeneration - 상태 전이를 세션의 모든 클라이언트에게 푸시
func (sm *SessionManager) PublishGeneration(sessionId string, snap generation.Snapshot) {
	sm.mutex.RLock()
	session, exists := sm.sessions[sessionId]
	sm.mutex.RUnlock()

	if !exists {
		// 세션에 연결된 브라우저가 없으면 드롭 (폴링 API로 조회 가능)
		return
	}

	data, err := json.Marshal(map[string]interface{}{
		"type":       "generation_update",
		"sessionId":  sessionId,
		"generation": snap,
	})
	if err != nil {
		log.Printf("❌ Failed to marshal generation update: %v", err)
		return
	}

	session.broadcastToAll(data)
}

// 세션 가져오기 또는 생성
func (sm *SessionManager) getOrCreateSession(sessionId string) *Session {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	session, exists := sm.sessions[sessionId]
	if !exists {
		now := time.Now()
		session = &Session{
			id:           sessionId,
			clients:      make(map[string]*Client),
			createdAt:    now,
			lastActivity: now,
		}
		sm.sessions[sessionId] = session

		sm.metrics.mutex.Lock()
		sm.metrics.TotalSessions++
		sm.metrics.ActiveSessions++
		sm.metrics.mutex.Unlock()

		log.Printf("✅ Created new session: %s (Total: %d, Active: %d)",
			sessionId, sm.metrics.TotalSessions, sm.metrics.ActiveSessions)
	}

	session.lastActivity = time.Now()
	return session
}

// 클라이언트를 세션에 추가
func (s *Session) addClient(client *Client) {
	s.mutex.Lock()
	s.clients[client.userId] = client
	s.lastActivity = time.Now()
	clientCount := len(s.clients)
	s.mutex.Unlock()

	sessionManager.metrics.mutex.Lock()
	sessionManager.metrics.TotalConnections++
	sessionManager.metrics.mutex.Unlock()

	log.Printf("👤 Client %s joined session %s (Clients: %d)", client.userId, s.id, clientCount)
}

// 클라이언트 제거
func (s *Session) removeClient(userId string) {
	s.mutex.Lock()
	if client, exists := s.clients[userId]; exists {
		close(client.send)
		delete(s.clients, userId)
	}
	clientCount := len(s.clients)
	s.mutex.Unlock()

	log.Printf("👋 Client %s left session %s (Clients: %d)", userId, s.id, clientCount)
}

// 세션 내 전체 브로드캐스트
func (s *Session) broadcastToAll(data []byte) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	for userId, client := range s.clients {
		select {
		case client.send <- data:
		default:
			// 버퍼가 가득 찬 느린 클라이언트는 건너뜀
			log.Printf("⚠️ Dropping message for slow client %s in session %s", userId, s.id)
		}
	}
}

// 빈 세션 정리
func (sm *SessionManager) cleanupEmptySessions() {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	removed := 0
	for sessionId, session := range sm.sessions {
		session.mutex.RLock()
		empty := len(session.clients) == 0
		session.mutex.RUnlock()

		if empty && time.Since(session.lastActivity) > 10*time.Minute {
			delete(sm.sessions, sessionId)
			removed++
		}
	}

	if removed > 0 {
		sm.metrics.mutex.Lock()
		sm.metrics.ActiveSessions -= removed
		sm.metrics.mutex.Unlock()
		log.Printf("🧹 Cleaned up %d empty sessions", removed)
	}
}

// 정기적 정리 작업 시작
func (sm *SessionManager) startCleanupRoutine() {
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			sm.cleanupEmptySessions()
		}
	}()

	log.Println("🔄 Started session cleanup routine (every 5min)")
}

// WebSocket 핸들러
func handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	sessionId := r.URL.Query().Get("session")
	userId := r.URL.Query().Get("user")

	if sessionId == "" || userId == "" {
		log.Printf("Missing session or user parameter")
		conn.Close()
		return
	}

	client := &Client{
		conn:      conn,
		sessionId: sessionId,
		userId:    userId,
		send:      make(chan []byte, 256),
	}

	log.Printf("🔍 New WebSocket connection - Session: %s, User: %s", sessionId, userId)

	session := sessionManager.getOrCreateSession(sessionId)
	session.addClient(client)

	go client.writePump()
	go client.readPump(session)
}

// 클라이언트로부터 메시지 읽기
func (c *Client) readPump(session *Session) {
	defer func() {
		session.removeClient(c.userId)
		c.conn.Close()
	}()

	for {
		var message Message
		err := c.conn.ReadJSON(&message)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		switch message.Type {
		case "ping":
			c.sendJSON(map[string]string{"type": "pong"})

		case "request_status":
			// 현재 생성 상태를 요청한 클라이언트에게만 전송
			snap := sessionManager.registry.Session(c.sessionId).Snapshot()
			c.sendJSON(map[string]interface{}{
				"type":       "generation_update",
				"sessionId":  c.sessionId,
				"generation": snap,
			})

		case "user_joined":
			log.Printf("User %s joined session %s", c.userId, c.sessionId)
		}
	}
}

// 클라이언트로 메시지 쓰기
func (c *Client) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("WebSocket write error: %v", err)
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

func (c *Client) sendJSON(body interface{}) {
	data, err := json.Marshal(body)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// CORS 헤더 추가
func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// 헬스 체크 엔드포인트
func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":    "healthy",
		"service":   "cosplay-ai-server",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// 서버 메트릭 조회 엔드포인트
func getMetrics(w http.ResponseWriter, r *http.Request) {
	sessionManager.metrics.mutex.RLock()
	uptime := time.Since(sessionManager.metrics.StartTime)
	totalSessions := sessionManager.metrics.TotalSessions
	totalConnections := sessionManager.metrics.TotalConnections
	sessionManager.metrics.mutex.RUnlock()

	sessionManager.mutex.RLock()
	activeSessions := len(sessionManager.sessions)
	totalClients := 0
	for _, session := range sessionManager.sessions {
		session.mutex.RLock()
		totalClients += len(session.clients)
		session.mutex.RUnlock()
	}
	sessionManager.mutex.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"server": map[string]interface{}{
			"uptime":           uptime.String(),
			"totalSessions":    totalSessions,
			"activeSessions":   activeSessions,
			"totalConnections": totalConnections,
			"currentClients":   totalClients,
		},
	})
}

// selectProvider - Imagen 우선, 없으면 Nanobanana (데모 모드 포함)
func selectProvider(ctx context.Context) generation.Provider {
	if svc := imagen.NewService(ctx); svc != nil {
		log.Println("🎭 Using Imagen provider")
		return svc
	}

	log.Println("🎭 Using Nanobanana provider")
	return nanobanana.NewService()
}

func main() {
	// 환경변수 로드
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	ctx := context.Background()

	// 캐릭터 카탈로그 로드 (원격 실패 시 내장 목록)
	characterCatalog := catalog.New(cfg.CatalogURL)
	log.Printf("🎭 Character catalog ready: %d characters (source: %s)",
		characterCatalog.Len(), characterCatalog.Source())

	// provider 선택
	provider := selectProvider(ctx)

	// 결과 저장소 (Supabase 미설정 시 nil - data URL 폴백)
	resultStore := storage.NewClient()

	// 세션별 오케스트레이터 레지스트리
	validator := intake.NewValidator(cfg.MaxUploadBytes)
	registry := generation.NewRegistry(func(sessionID string) *generation.Orchestrator {
		opts := []generation.Option{
			generation.WithEventSink(sessionManager),
			generation.WithPollTiming(cfg.PollInterval(), cfg.PollMaxWait()),
		}
		if resultStore != nil {
			opts = append(opts, generation.WithResultStore(resultStore))
		}
		return generation.New(sessionID, provider, characterCatalog, validator, opts...)
	})
	sessionManager.registry = registry

	// 정리 루틴 시작
	sessionManager.startCleanupRoutine()

	// Redis Queue Worker 시작 (백그라운드)
	go generation.StartWorker(characterCatalog, provider)

	// 라우터 설정
	r := mux.NewRouter()
	r.Use(enableCORS)

	r.HandleFunc("/", healthCheck).Methods("GET")
	r.HandleFunc("/health", healthCheck).Methods("GET")
	r.HandleFunc("/ws", handleWebSocket)
	r.HandleFunc("/metrics", getMetrics).Methods("GET")

	// 생성 API 라우트
	rdb := redisutil.Connect(cfg)
	db := database.NewClient()
	generationHandler := generation.NewHandler(registry, characterCatalog, rdb, db, cfg.MaxUploadBytes)
	generationHandler.RegisterRoutes(r)

	log.Printf("🚀 Cosplay AI Server starting on port %s", cfg.Port)
	log.Printf("📡 WebSocket endpoint: ws://localhost:%s/ws", cfg.Port)
	log.Printf("❤️  Health check: http://localhost:%s/health", cfg.Port)
	log.Printf("📊 Metrics: http://localhost:%s/metrics", cfg.Port)

	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
