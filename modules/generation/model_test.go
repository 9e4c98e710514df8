package generation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		to      Status
		allowed bool
	}{
		{"idle to uploading", StatusIdle, StatusUploading, true},
		{"idle to failed on rejected upload", StatusIdle, StatusFailed, true},
		{"uploading to processing", StatusUploading, StatusProcessing, true},
		{"uploading to failed", StatusUploading, StatusFailed, true},
		{"processing to completed", StatusProcessing, StatusCompleted, true},
		{"processing to failed", StatusProcessing, StatusFailed, true},
		{"processing to timed out", StatusProcessing, StatusTimedOut, true},
		{"completed resets to idle", StatusCompleted, StatusIdle, true},
		{"failed resets to idle", StatusFailed, StatusIdle, true},
		{"timed out resets to idle", StatusTimedOut, StatusIdle, true},

		{"idle cannot skip to processing", StatusIdle, StatusProcessing, false},
		{"idle cannot complete", StatusIdle, StatusCompleted, false},
		{"uploading cannot complete directly", StatusUploading, StatusCompleted, false},
		{"uploading cannot time out", StatusUploading, StatusTimedOut, false},
		{"completed cannot go back to processing", StatusCompleted, StatusProcessing, false},
		{"completed cannot fail afterwards", StatusCompleted, StatusFailed, false},
		{"failed cannot complete afterwards", StatusFailed, StatusCompleted, false},
		{"timed out cannot complete afterwards", StatusTimedOut, StatusCompleted, false},
		{"no self transition", StatusProcessing, StatusProcessing, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := tt.from.TransitionTo(tt.to)
			if tt.allowed {
				assert.NoError(t, err)
				assert.Equal(t, tt.to, next)
			} else {
				assert.True(t, errors.Is(err, ErrInvalidTransition))
				assert.Equal(t, tt.from, next, "state must not change on rejected transition")
			}
		})
	}
}

func TestStatusClassification(t *testing.T) {
	assert.False(t, StatusIdle.IsTerminal())
	assert.False(t, StatusUploading.IsTerminal())
	assert.False(t, StatusProcessing.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
	assert.True(t, StatusTimedOut.IsTerminal())

	assert.True(t, StatusUploading.IsActive())
	assert.True(t, StatusProcessing.IsActive())
	assert.False(t, StatusIdle.IsActive())
	assert.False(t, StatusCompleted.IsActive())
}

func TestParseJobStatus(t *testing.T) {
	assert.Equal(t, JobStatusProcessing, ParseJobStatus("processing"))
	assert.Equal(t, JobStatusProcessing, ParseJobStatus("RUNNING"))
	assert.Equal(t, JobStatusProcessing, ParseJobStatus("  queued "))
	assert.Equal(t, JobStatusCompleted, ParseJobStatus("succeed"))
	assert.Equal(t, JobStatusCompleted, ParseJobStatus("done"))
	assert.Equal(t, JobStatusFailed, ParseJobStatus("error"))

	// provider가 새 어휘를 도입해도 폴링은 멈추지 않는다
	assert.Equal(t, JobStatusUnknown, ParseJobStatus("warming_up"))
	assert.Equal(t, JobStatusUnknown, ParseJobStatus(""))
}
