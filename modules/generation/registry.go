package generation

import (
	"sync"
)

// Registry - 세션 ID → 오케스트레이터 매핑.
// 세션당 하나의 오케스트레이터, 오케스트레이터당 하나의 활성 요청.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Orchestrator
	factory  func(sessionID string) *Orchestrator
}

// NewRegistry - factory로 세션별 오케스트레이터를 만드는 레지스트리 생성
func NewRegistry(factory func(sessionID string) *Orchestrator) *Registry {
	return &Registry{
		sessions: make(map[string]*Orchestrator),
		factory:  factory,
	}
}

// Session - 세션의 오케스트레이터 조회 (없으면 생성)
func (r *Registry) Session(sessionID string) *Orchestrator {
	r.mu.Lock()
	defer r.mu.Unlock()

	if orch, ok := r.sessions[sessionID]; ok {
		return orch
	}
	orch := r.factory(sessionID)
	r.sessions[sessionID] = orch
	return orch
}

// FindByRequestID - 요청 ID로 오케스트레이터 역조회
func (r *Registry) FindByRequestID(requestID string) (*Orchestrator, bool) {
	if requestID == "" {
		return nil, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, orch := range r.sessions {
		if orch.Snapshot().RequestID == requestID {
			return orch, true
		}
	}
	return nil, false
}
