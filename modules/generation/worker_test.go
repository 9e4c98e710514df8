package generation

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionLocksSerializeSameSession(t *testing.T) {
	locks := newSessionLocks()

	release := locks.acquire("session-a")

	acquired := make(chan struct{})
	go func() {
		r := locks.acquire("session-a")
		close(acquired)
		r()
	}()

	select {
	case <-acquired:
		t.Fatal("second job entered the session while the first was still active")
	case <-time.After(50 * time.Millisecond):
	}

	release()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second job never entered the session after release")
	}
}

func TestSessionLocksAllowDifferentSessions(t *testing.T) {
	locks := newSessionLocks()

	releaseA := locks.acquire("session-a")
	defer releaseA()

	done := make(chan struct{})
	go func() {
		releaseB := locks.acquire("session-b")
		releaseB()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job in another session was blocked")
	}
}

func TestSessionLocksOneActivePerSession(t *testing.T) {
	locks := newSessionLocks()

	var mu sync.Mutex
	active, maxActive := 0, 0

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			release := locks.acquire("session-a")
			defer release()

			mu.Lock()
			active++
			if active > maxActive {
				maxActive = active
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxActive)
}
