package service

import (
	"context"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tutortrack/tutortrack-api/internal/dto"
	"github.com/tutortrack/tutortrack-api/pkg/capture"
	appErrors "github.com/tutortrack/tutortrack-api/pkg/errors"
	"github.com/tutortrack/tutortrack-api/pkg/jobs"
)

// WorkflowState names a position in the enrichment state machine.
type WorkflowState string

const (
	StateIdle       WorkflowState = "IDLE"
	StateCapturing  WorkflowState = "CAPTURING"
	StateImageReady WorkflowState = "IMAGE_READY"
	StateAnalyzing  WorkflowState = "ANALYZING"
)

// analysisPrompt is the fixed instruction sent alongside every exam photo.
const analysisPrompt = `你是一位資深的私人家教。請分析這張學生考卷照片。
1. 辨識學生在哪些題目出錯了。
2. 歸納學生的主要錯誤模式（例如：計算粗心、公式帶錯、讀題不清）。
3. 指出觀念薄弱的地方。
4. 給予後續輔導的具體建議。

請使用繁體中文，格式清晰，並保持專業與簡潔。`

// analysisHeader separates the tutor's own narrative from the appended
// analysis text.
const analysisHeader = "\n\n--- 🤖 AI 考卷分析報告 ---\n"

const analysisJobType = "exam_analysis"

type imageAnalyzer interface {
	AnalyzeImage(ctx context.Context, jpeg []byte, prompt string) (string, error)
}

// workflow is one caller's enrichment instance. The image payload is owned
// exclusively by the workflow and never reaches the report store; only the
// derived text survives.
type workflow struct {
	mu         sync.Mutex
	state      WorkflowState
	stream     capture.Stream
	image      []byte
	generation uint64
	details    string
	lastError  string
	completed  bool
}

// analysisJob carries one in-flight analysis. The generation pins the job to
// the image it was started for; a discard bumps the generation so a late
// response is ignored.
type analysisJob struct {
	identity   string
	generation uint64
	image      []byte
	details    string
}

// EnrichmentService runs one enrichment workflow per caller identity:
// capture or import an exam image, send it for analysis, and merge the
// returned narrative into the draft details.
type EnrichmentService struct {
	source   capture.Source
	analyzer imageAnalyzer
	metrics  *MetricsService
	logger   *zap.Logger
	quality  int

	queue *jobs.Queue

	mu        sync.Mutex
	workflows map[string]*workflow
}

// NewEnrichmentService constructs the service. Call Start before use and
// Stop on shutdown.
func NewEnrichmentService(source capture.Source, analyzer imageAnalyzer, quality int, metrics *MetricsService, logger *zap.Logger) *EnrichmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if quality <= 0 {
		quality = capture.DefaultJPEGQuality
	}
	s := &EnrichmentService{
		source:    source,
		analyzer:  analyzer,
		metrics:   metrics,
		logger:    logger,
		quality:   quality,
		workflows: make(map[string]*workflow),
	}
	s.queue = jobs.NewQueue("exam-analysis", s.handleAnalysisJob, jobs.QueueConfig{
		Workers:    1,
		BufferSize: 8,
		MaxRetries: 0,
		Logger:     logger,
	})
	return s
}

// Start launches the analysis worker.
func (s *EnrichmentService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the analysis worker.
func (s *EnrichmentService) Stop() {
	s.queue.Stop()
}

func (s *EnrichmentService) workflowFor(identity string) *workflow {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.workflows[identity]
	if !ok {
		w = &workflow{state: StateIdle}
		s.workflows[identity] = w
	}
	return w
}

// StartCapture acquires the capture device. On acquisition failure the
// workflow stays idle and the caller gets a user-facing error; nothing
// retries automatically.
func (s *EnrichmentService) StartCapture(ctx context.Context, identity string) error {
	w := s.workflowFor(identity)
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.state {
	case StateAnalyzing:
		return appErrors.Clone(appErrors.ErrWorkflowBusy, "")
	case StateCapturing:
		return nil
	}

	stream, err := s.source.Open(ctx)
	if err != nil {
		s.logger.Warn("capture device unavailable", zap.String("identity", identity), zap.Error(err))
		return appErrors.Clone(appErrors.ErrDeviceUnavailable, "")
	}

	w.stream = stream
	w.state = StateCapturing
	w.image = nil
	w.completed = false
	w.lastError = ""
	return nil
}

// Snapshot encodes the current frame and releases the device.
func (s *EnrichmentService) Snapshot(ctx context.Context, identity string) error {
	w := s.workflowFor(identity)
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateCapturing {
		return appErrors.Clone(appErrors.ErrConflict, "no capture in progress")
	}

	frame, err := w.stream.Frame()
	if err != nil {
		s.releaseStreamLocked(w)
		w.state = StateIdle
		s.logger.Warn("snapshot failed", zap.String("identity", identity), zap.Error(err))
		return appErrors.Clone(appErrors.ErrDeviceUnavailable, "")
	}

	jpeg, err := capture.EncodeJPEG(frame, s.quality)
	if err != nil {
		s.releaseStreamLocked(w)
		w.state = StateIdle
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode snapshot")
	}

	s.releaseStreamLocked(w)
	w.image = jpeg
	w.state = StateImageReady
	return nil
}

// CancelCapture releases the device without retaining an image.
func (s *EnrichmentService) CancelCapture(identity string) {
	w := s.workflowFor(identity)
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateCapturing {
		return
	}
	s.releaseStreamLocked(w)
	w.state = StateIdle
}

// Import accepts an uploaded exam image, bypassing live capture.
func (s *EnrichmentService) Import(ctx context.Context, identity string, r io.Reader) error {
	w := s.workflowFor(identity)
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.state {
	case StateAnalyzing:
		return appErrors.Clone(appErrors.ErrWorkflowBusy, "")
	case StateCapturing:
		return appErrors.Clone(appErrors.ErrConflict, "capture in progress")
	}

	jpeg, err := capture.ImportJPEG(r, s.quality)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unsupported image payload")
	}

	w.image = jpeg
	w.state = StateImageReady
	w.completed = false
	w.lastError = ""
	return nil
}

// Analyze submits the held image for analysis. The call returns immediately;
// completion is observed through Status. Only one analysis may be in flight
// per workflow.
func (s *EnrichmentService) Analyze(ctx context.Context, identity string, req dto.AnalyzeRequest) error {
	w := s.workflowFor(identity)
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.state {
	case StateAnalyzing:
		return appErrors.Clone(appErrors.ErrWorkflowBusy, "")
	case StateImageReady:
	default:
		return appErrors.Clone(appErrors.ErrNoImage, "")
	}

	job := analysisJob{
		identity:   identity,
		generation: w.generation,
		image:      w.image,
		details:    req.Details,
	}
	if err := s.queue.Enqueue(jobs.Job{Type: analysisJobType, Payload: job}); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue analysis")
	}

	w.state = StateAnalyzing
	w.completed = false
	w.lastError = ""
	return nil
}

// Discard drops the held image and resets the workflow. An analysis still in
// flight keeps running but its result is ignored.
func (s *EnrichmentService) Discard(identity string) {
	w := s.workflowFor(identity)
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state == StateCapturing {
		s.releaseStreamLocked(w)
	}
	w.generation++
	w.image = nil
	w.state = StateIdle
	w.details = ""
	w.lastError = ""
	w.completed = false
}

// Status reports the workflow position and, once an analysis has merged, the
// enriched details text.
func (s *EnrichmentService) Status(identity string) dto.EnrichmentStatusResponse {
	w := s.workflowFor(identity)
	w.mu.Lock()
	defer w.mu.Unlock()

	return dto.EnrichmentStatusResponse{
		State:      string(w.state),
		HasImage:   len(w.image) > 0,
		Details:    w.details,
		LastError:  w.lastError,
		Completed:  w.completed,
		Generation: w.generation,
	}
}

func (s *EnrichmentService) handleAnalysisJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(analysisJob)
	if !ok {
		s.logger.Error("unexpected analysis payload", zap.String("type", job.Type))
		return nil
	}

	start := time.Now()
	text, err := s.analyzer.AnalyzeImage(ctx, payload.image, analysisPrompt)
	duration := time.Since(start)

	w := s.workflowFor(payload.identity)
	w.mu.Lock()
	defer w.mu.Unlock()

	// A discard while the call was in flight bumps the generation; the
	// response is then stale and must not touch the workflow.
	if w.generation != payload.generation || w.state != StateAnalyzing {
		s.logger.Info("stale analysis result ignored", zap.String("identity", payload.identity))
		return nil
	}

	if err != nil || text == "" {
		s.metrics.RecordAnalysis(false, duration)
		w.state = StateImageReady
		w.lastError = appErrors.ErrAnalysisFailed.Message
		s.logger.Warn("exam analysis failed", zap.String("identity", payload.identity), zap.Error(err))
		return nil
	}

	s.metrics.RecordAnalysis(true, duration)
	w.details = payload.details + analysisHeader + text
	w.image = nil
	w.state = StateIdle
	w.completed = true
	s.logger.Info("exam analysis merged",
		zap.String("identity", payload.identity),
		zap.Duration("duration", duration))
	return nil
}

func (s *EnrichmentService) releaseStreamLocked(w *workflow) {
	if w.stream != nil {
		if err := w.stream.Close(); err != nil {
			s.logger.Warn("failed to release capture stream", zap.Error(err))
		}
		w.stream = nil
	}
}
