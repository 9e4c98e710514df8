package generation

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yash-Yashwant/CosplayAI/modules/catalog"
	"github.com/Yash-Yashwant/CosplayAI/modules/intake"
)

func newTestHandler(t *testing.T, provider Provider) (*Handler, *Registry) {
	t.Helper()
	registry := NewRegistry(func(sessionID string) *Orchestrator {
		return New(sessionID, provider, catalog.New(""), intake.NewValidator(intake.DefaultMaxBytes),
			WithPollTiming(5*time.Millisecond, time.Second))
	})
	return NewHandler(registry, catalog.New(""), nil, nil, intake.DefaultMaxBytes), registry
}

func multipartGenerateRequest(t *testing.T, photo []byte, fields map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if photo != nil {
		part, err := mw.CreateFormFile("photo", "selfie.jpg")
		require.NoError(t, err)
		_, err = part.Write(photo)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/api/generate", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeGenerateResponse(t *testing.T, rec *httptest.ResponseRecorder) GenerateResponse {
	t.Helper()
	var resp GenerateResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestHandleGenerateAccepted(t *testing.T) {
	provider := &stubProvider{
		jobID: "abc123",
		steps: []pollStep{{resp: &PollResponse{Status: JobStatusCompleted, ResultRef: "img://abc123"}}},
	}
	h, _ := newTestHandler(t, provider)

	req := multipartGenerateRequest(t, validAsset().Data, map[string]string{
		"character": "sailor-moon",
		"style":     "anime",
		"quality":   "high",
		"sessionId": "session-accept",
	})
	rec := httptest.NewRecorder()
	h.HandleGenerate(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	resp := decodeGenerateResponse(t, rec)
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.RequestID)
	assert.Equal(t, StatusUploading, resp.Status)
	assert.Greater(t, resp.EstimatedTime, 0)
}

func TestHandleGenerateConflictWhileActive(t *testing.T) {
	// provider가 terminal 상태를 반환하지 않아 첫 요청이 계속 활성 상태로 남는다
	provider := &stubProvider{jobID: "busy-1", steps: processingSteps(1)}
	h, _ := newTestHandler(t, provider)

	first := multipartGenerateRequest(t, validAsset().Data, map[string]string{
		"character": "sailor-moon",
		"sessionId": "session-busy",
	})
	rec := httptest.NewRecorder()
	h.HandleGenerate(rec, first)
	require.Equal(t, http.StatusAccepted, rec.Code)

	second := multipartGenerateRequest(t, validAsset().Data, map[string]string{
		"character": "zelda",
		"sessionId": "session-busy",
	})
	rec = httptest.NewRecorder()
	h.HandleGenerate(rec, second)

	require.Equal(t, http.StatusConflict, rec.Code)
	resp := decodeGenerateResponse(t, rec)
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)
}

func TestHandleGenerateUnknownCharacter(t *testing.T) {
	provider := &stubProvider{jobID: "x", steps: processingSteps(1)}
	h, _ := newTestHandler(t, provider)

	req := multipartGenerateRequest(t, validAsset().Data, map[string]string{
		"character": "no-such-character",
		"sessionId": "session-unknown",
	})
	rec := httptest.NewRecorder()
	h.HandleGenerate(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeGenerateResponse(t, rec)
	assert.False(t, resp.Success)
	assert.Zero(t, provider.submitted())
}

func TestHandleGenerateValidationFailure(t *testing.T) {
	provider := &stubProvider{jobID: "x", steps: processingSteps(1)}
	h, _ := newTestHandler(t, provider)

	req := multipartGenerateRequest(t, oversizedAsset().Data, map[string]string{
		"character": "sailor-moon",
		"sessionId": "session-oversize",
	})
	rec := httptest.NewRecorder()
	h.HandleGenerate(rec, req)

	// 검증 실패는 Failed 스냅샷과 함께 400으로 내려간다
	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeGenerateResponse(t, rec)
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.RequestID)
	assert.Equal(t, StatusFailed, resp.Status)
	assert.Zero(t, provider.submitted())
}

func TestHandleGenerateMissingFields(t *testing.T) {
	provider := &stubProvider{jobID: "x", steps: processingSteps(1)}
	h, _ := newTestHandler(t, provider)

	t.Run("no photo", func(t *testing.T) {
		req := multipartGenerateRequest(t, nil, map[string]string{"character": "sailor-moon"})
		rec := httptest.NewRecorder()
		h.HandleGenerate(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("no character", func(t *testing.T) {
		req := multipartGenerateRequest(t, validAsset().Data, nil)
		rec := httptest.NewRecorder()
		h.HandleGenerate(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleStatusNotFound(t *testing.T) {
	provider := &stubProvider{jobID: "x", steps: processingSteps(1)}
	h, _ := newTestHandler(t, provider)

	r := mux.NewRouter()
	h.RegisterRoutes(r)

	req := httptest.NewRequest("GET", "/api/generation/no-such-request", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
