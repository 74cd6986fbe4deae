// Package pipeline runs one capture through transcription, structuring,
// normalization and the optional side effects, strictly in that order.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/foxseedlab/voicecap/internal/capture"
	"github.com/foxseedlab/voicecap/internal/config"
	"github.com/foxseedlab/voicecap/internal/metrics"
	"github.com/foxseedlab/voicecap/internal/normalize"
	"github.com/foxseedlab/voicecap/internal/repository"
	"github.com/foxseedlab/voicecap/internal/structurer"
	"github.com/foxseedlab/voicecap/internal/temporal"
	"github.com/foxseedlab/voicecap/internal/transcriber"
	"github.com/foxseedlab/voicecap/internal/webhook"
)

const defaultTimeout = 60 * time.Second

type Options struct {
	Timeout  time.Duration
	Language string
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{Timeout: cfg.PipelineTimeout, Language: cfg.DefaultTranscribeLanguage}
}

type Pipeline struct {
	opts       Options
	stt        transcriber.Transcriber
	structurer *structurer.Structurer
	notes      repository.NoteRepository
	webhook    webhook.Sender
	now        func() time.Time
}

func NewPipeline(opts Options, stt transcriber.Transcriber, st *structurer.Structurer, notes repository.NoteRepository, wh webhook.Sender) *Pipeline {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Language == "" {
		opts.Language = config.AutoDetectLanguage
	}
	return &Pipeline{
		opts:       opts,
		stt:        stt,
		structurer: st,
		notes:      notes,
		webhook:    wh,
		now:        time.Now,
	}
}

// Run returns the success response or a *capture.Error. A persistence or
// webhook failure never turns a success into a failure.
func (p *Pipeline) Run(ctx context.Context, requestID string, req capture.Request) (*capture.Response, error) {
	started := p.now()
	resp, err := p.run(ctx, requestID, req)
	result := metrics.OutcomeOK
	if err != nil {
		result = string(capture.CodeOf(err))
	}
	metrics.ObserveCapture(modeLabel(req.Mode), result, started)
	return resp, err
}

func modeLabel(m capture.Mode) string {
	if m == 0 {
		m = capture.DefaultMode
	}
	if !m.Valid() {
		return "invalid"
	}
	return m.String()
}

func (p *Pipeline) run(ctx context.Context, requestID string, req capture.Request) (*capture.Response, error) {
	if err := validate(&req); err != nil {
		return nil, err
	}
	log := slog.With("request_id", requestID, "user_id", req.UserID, "mode", req.Mode.String(), "timezone", req.Timezone)

	ctx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
	defer cancel()

	transcript, err := p.transcribe(ctx, log, req.Audio)
	if err != nil {
		return nil, err
	}

	stageStarted := time.Now()
	tc, err := temporal.Build(req.Timezone, p.now())
	metrics.ObserveStage(metrics.StageTemporal, stageStarted, err)
	if err != nil {
		return nil, capture.NewError(capture.CodeInvalidRequest, "invalid timezone", err)
	}

	result, err := p.structure(ctx, log, req.Mode, transcript, tc)
	if err != nil {
		return nil, err
	}

	resp := &capture.Response{
		OK:            true,
		RawText:       transcript,
		Structured:    result,
		Mode:          req.Mode,
		Timezone:      tc.Timezone,
		NowUTCISO:     tc.NowUTCISO,
		TodayLocalYMD: tc.TodayLocalYMD,
	}
	if req.Mode.PersistsNote() && strings.TrimSpace(result.NoteText()) != "" {
		resp.NoteID = p.persist(ctx, log, req.UserID, result)
	}
	p.notify(ctx, log, requestID, req.UserID, resp)

	log.Info("capture completed", "transcript_chars", len(transcript), "note_saved", resp.NoteID != nil)
	return resp, nil
}

func validate(req *capture.Request) error {
	if strings.TrimSpace(req.UserID) == "" {
		return capture.NewError(capture.CodeInvalidRequest, "userId is required", nil)
	}
	if req.Audio.Size() == 0 {
		return capture.NewError(capture.CodeInvalidRequest, "audio is required", nil)
	}
	if req.Mode == 0 {
		req.Mode = capture.DefaultMode
	}
	if !req.Mode.Valid() {
		return capture.NewError(capture.CodeInvalidRequest, fmt.Sprintf("unsupported mode %d", int(req.Mode)), nil)
	}
	if strings.TrimSpace(req.Timezone) == "" {
		req.Timezone = capture.DefaultTimezone
	}
	return nil
}

func (p *Pipeline) transcribe(ctx context.Context, log *slog.Logger, audio capture.AudioBlob) (string, error) {
	started := time.Now()
	log.Info("transcription started", "audio_bytes", audio.Size(), "mime_type", audio.MimeType)
	raw, err := p.stt.Transcribe(ctx, audio, p.opts.Language)
	metrics.ObserveStage(metrics.StageTranscribe, started, err)
	if err != nil {
		log.Error("transcription failed", "error", err, "elapsed_ms", time.Since(started).Milliseconds())
		return "", stageError(ctx, capture.CodeTranscriptionFailed, "transcription", err)
	}
	text := strings.TrimSpace(raw)
	if text == "" {
		log.Warn("transcription returned no speech", "elapsed_ms", time.Since(started).Milliseconds())
		return "", capture.NewError(capture.CodeTranscriptionEmpty, "no speech detected", nil)
	}
	log.Info("transcription finished", "transcript_chars", len(text), "elapsed_ms", time.Since(started).Milliseconds())
	return text, nil
}

func (p *Pipeline) structure(ctx context.Context, log *slog.Logger, mode capture.Mode, transcript string, tc temporal.Context) (capture.StructuredResult, error) {
	started := time.Now()
	out, err := p.structurer.Structure(ctx, mode, transcript, tc)
	metrics.ObserveStage(metrics.StageStructure, started, err)
	if err != nil {
		log.Error("structuring failed", "error", err, "elapsed_ms", time.Since(started).Milliseconds())
		return nil, stageError(ctx, capture.CodeStructuringFailed, "structuring", err)
	}
	log.Info("structuring finished", "output_chars", len(out), "elapsed_ms", time.Since(started).Milliseconds())

	started = time.Now()
	result, err := normalize.Normalize(mode, out, tc.Location)
	metrics.ObserveStage(metrics.StageNormalize, started, err)
	if err != nil {
		log.Error("model output rejected", "error", err)
		return nil, fmt.Errorf("normalize: %w", err)
	}
	return result, nil
}

func (p *Pipeline) persist(ctx context.Context, log *slog.Logger, userID string, result capture.StructuredResult) *string {
	if p.notes == nil {
		return nil
	}
	started := time.Now()
	input := repository.NoteInputFromCapture(userID, result.NoteText(), result.SummaryText(), result.CategoryText())
	id, err := p.notes.InsertNote(ctx, input)
	metrics.ObserveStage(metrics.StagePersist, started, err)
	if err != nil {
		log.Error("failed to save note", "error", capture.NewError(capture.CodePersistenceFailure, "insert note", err))
		return nil
	}
	log.Info("note saved", "note_id", id)
	return &id
}

func (p *Pipeline) notify(ctx context.Context, log *slog.Logger, requestID, userID string, resp *capture.Response) {
	if p.webhook == nil {
		return
	}
	started := time.Now()
	err := p.webhook.SendCapture(ctx, webhook.CaptureWebhookPayload{
		RequestID:  requestID,
		UserID:     userID,
		Mode:       resp.Mode,
		Timezone:   resp.Timezone,
		RawText:    resp.RawText,
		Structured: resp.Structured,
		NoteID:     resp.NoteID,
		CapturedAt: resp.NowUTCISO,
	})
	metrics.ObserveStage(metrics.StageWebhook, started, err)
	if err != nil {
		log.Error("failed to send capture webhook", "error", err)
	}
}

// stageError reports a deadline hit as Timeout regardless of which stage
// observed it.
func stageError(ctx context.Context, code capture.ErrorCode, stage string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return capture.NewError(capture.CodeTimeout, stage+" exceeded the pipeline deadline", err)
	}
	return capture.NewError(code, stage+" failed", err)
}
