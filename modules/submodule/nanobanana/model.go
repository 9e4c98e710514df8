package nanobanana

import (
	"sync"
	"time"

	"github.com/Yash-Yashwant/CosplayAI/modules/generation"
)

// task - 비동기 생성 작업의 메모리 내 상태.
// Gemini API는 동기 호출이므로 여기서 Job ID 기반 폴링 모델로 감싼다.
type task struct {
	ID        string
	Status    generation.JobStatus
	Image     []byte
	Reason    string
	CreatedAt time.Time
}

// taskTable - Job ID → task 매핑 (폴링 조회용)
type taskTable struct {
	mu    sync.RWMutex
	tasks map[string]*task
}

func newTaskTable() *taskTable {
	return &taskTable{
		tasks: make(map[string]*task),
	}
}

func (t *taskTable) put(tk *task) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tasks[tk.ID] = tk
}

func (t *taskTable) get(id string) (*task, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	tk, ok := t.tasks[id]
	if !ok {
		return nil, false
	}
	copied := *tk
	return &copied, true
}

func (t *taskTable) complete(id string, image []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if tk, ok := t.tasks[id]; ok {
		tk.Status = generation.JobStatusCompleted
		tk.Image = image
	}
}

func (t *taskTable) fail(id string, reason string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if tk, ok := t.tasks[id]; ok {
		tk.Status = generation.JobStatusFailed
		tk.Reason = reason
	}
}

// sweep - 오래된 완료 task 제거
func (t *taskTable) sweep(olderThan time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	cutoff := time.Now().Add(-olderThan)
	for id, tk := range t.tasks {
		if tk.Status != generation.JobStatusProcessing && tk.CreatedAt.Before(cutoff) {
			delete(t.tasks, id)
		}
	}
}
