package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tutortrack/tutortrack-api/internal/middleware"
	"github.com/tutortrack/tutortrack-api/internal/service"
	"github.com/tutortrack/tutortrack-api/pkg/capture"
	"github.com/tutortrack/tutortrack-api/pkg/response"
)

type stubSource struct{}

func (stubSource) Open(ctx context.Context) (capture.Stream, error) {
	return nil, context.Canceled
}

type stubAnalyzer struct {
	text string
}

func (a stubAnalyzer) AnalyzeImage(ctx context.Context, jpeg []byte, prompt string) (string, error) {
	return a.text, nil
}

func newEnrichmentHandler(t *testing.T) *EnrichmentHandler {
	t.Helper()
	svc := service.NewEnrichmentService(stubSource{}, stubAnalyzer{text: "分析結果"}, 85, nil, zap.NewNop())
	svc.Start(context.Background())
	t.Cleanup(svc.Stop)
	return NewEnrichmentHandler(svc)
}

func enrichmentContext(t *testing.T, method, target string, body *bytes.Buffer, contentType string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	if body == nil {
		body = &bytes.Buffer{}
	}
	c.Request, _ = http.NewRequest(method, target, body)
	if contentType != "" {
		c.Request.Header.Set("Content-Type", contentType)
	}
	c.Set(middleware.ContextUserKey, testClaims("T1"))
	return c, w
}

func multipartImage(t *testing.T) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	part, err := writer.CreateFormFile("image", "exam.png")
	require.NoError(t, err)
	require.NoError(t, png.Encode(part, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	require.NoError(t, writer.Close())
	return buf, writer.FormDataContentType()
}

func statusFromBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope.Data.(map[string]interface{})
}

func TestEnrichmentHandlerStatusStartsIdle(t *testing.T) {
	handler := newEnrichmentHandler(t)

	c, w := enrichmentContext(t, http.MethodGet, "/enrichment/status", nil, "")
	handler.Status(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "IDLE", statusFromBody(t, w)["state"])
}

func TestEnrichmentHandlerCaptureFailureSurfacesDeviceError(t *testing.T) {
	handler := newEnrichmentHandler(t)

	c, w := enrichmentContext(t, http.MethodPost, "/enrichment/capture", nil, "")
	handler.StartCapture(c)

	require.Equal(t, http.StatusConflict, w.Code)
	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "無法開啟相機，請確認權限設定。", envelope.Error.Message)
}

func TestEnrichmentHandlerImportAndAnalyze(t *testing.T) {
	handler := newEnrichmentHandler(t)

	body, contentType := multipartImage(t)
	c, w := enrichmentContext(t, http.MethodPost, "/enrichment/import", body, contentType)
	handler.Import(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "IMAGE_READY", statusFromBody(t, w)["state"])

	payload, _ := json.Marshal(map[string]string{"details": "原始草稿"})
	c, w = enrichmentContext(t, http.MethodPost, "/enrichment/analyze", bytes.NewBuffer(payload), "application/json")
	handler.Analyze(c)
	require.Equal(t, http.StatusAccepted, w.Code)

	require.Eventually(t, func() bool {
		c, w := enrichmentContext(t, http.MethodGet, "/enrichment/status", nil, "")
		handler.Status(c)
		return statusFromBody(t, w)["completed"] == true
	}, 2*time.Second, 5*time.Millisecond)

	c, w = enrichmentContext(t, http.MethodGet, "/enrichment/status", nil, "")
	handler.Status(c)
	status := statusFromBody(t, w)
	assert.Equal(t, "IDLE", status["state"])
	assert.Contains(t, status["details"], "--- 🤖 AI 考卷分析報告 ---")
	assert.Contains(t, status["details"], "分析結果")
}

func TestEnrichmentHandlerAnalyzeWithoutImage(t *testing.T) {
	handler := newEnrichmentHandler(t)

	payload, _ := json.Marshal(map[string]string{"details": ""})
	c, w := enrichmentContext(t, http.MethodPost, "/enrichment/analyze", bytes.NewBuffer(payload), "application/json")
	handler.Analyze(c)

	require.Equal(t, http.StatusConflict, w.Code)
}

func TestEnrichmentHandlerImportRequiresFile(t *testing.T) {
	handler := newEnrichmentHandler(t)

	c, w := enrichmentContext(t, http.MethodPost, "/enrichment/import", nil, "multipart/form-data")
	handler.Import(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEnrichmentHandlerDiscardResets(t *testing.T) {
	handler := newEnrichmentHandler(t)

	body, contentType := multipartImage(t)
	c, w := enrichmentContext(t, http.MethodPost, "/enrichment/import", body, contentType)
	handler.Import(c)
	require.Equal(t, http.StatusOK, w.Code)

	c, w = enrichmentContext(t, http.MethodPost, "/enrichment/discard", nil, "")
	handler.Discard(c)

	require.Equal(t, http.StatusOK, w.Code)
	status := statusFromBody(t, w)
	assert.Equal(t, "IDLE", status["state"])
	assert.Equal(t, false, status["has_image"])
}
