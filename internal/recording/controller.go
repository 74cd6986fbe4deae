// Package recording implements the press-and-hold capture state machine
// that turns one microphone session into one upload.
package recording

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/foxseedlab/voicecap/internal/capture"
)

const (
	// MinAudioBytes is the smallest recording worth uploading.
	MinAudioBytes = 1024
	// MaxRecordingDuration stops a session that was never released.
	MaxRecordingDuration = 120 * time.Second
)

var ErrSessionActive = errors.New("a capture session is in progress")

type State int

const (
	StateIdle State = iota
	StateRequestingAccess
	StateRecording
	StateProcessing
	StateError
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequestingAccess:
		return "requesting_access"
	case StateRecording:
		return "recording"
	case StateProcessing:
		return "processing"
	case StateError:
		return "error"
	case StateCompleted:
		return "completed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// live reports whether a session holds (or is about to hold) the microphone
// or awaits its upload.
func (s State) live() bool {
	return s == StateRequestingAccess || s == StateRecording || s == StateProcessing
}

// Outcome is delivered once per session. Exactly one of Response and Err is
// set; a typed server failure arrives as a Response with OK false.
type Outcome struct {
	Response *capture.Response
	Err      error
}

// Code returns the failure code, or "" on success.
func (o Outcome) Code() capture.ErrorCode {
	if o.Err != nil {
		return capture.CodeOf(o.Err)
	}
	if o.Response != nil && !o.Response.OK {
		return o.Response.Error
	}
	return ""
}

type Host struct {
	Devices     MediaDevices
	NewRecorder RecorderFactory
	Codecs      CodecSupport
	Cancel      CancelSource
	Clock       Clock
	Submitter   Submitter
}

type Options struct {
	UserID      string
	Mode        capture.Mode
	Timezone    string
	MaxDuration time.Duration
	// OnResult receives the outcome of every session that reaches a
	// terminal state.
	OnResult func(Outcome)
}

type Controller struct {
	host Host
	opts Options

	mu         sync.Mutex
	state      State
	deviceID   string
	userChose  bool
	enumerated bool
	devices    []Device
	session    *session
	seq        int
}

type session struct {
	id       int
	mimeType string

	// pending holds a trigger that fired before Recording; guarded by the
	// controller's mutex.
	pending    StopTrigger
	hasPending bool

	// mu guards the acquired resources and released.
	mu          sync.Mutex
	stream      Stream
	recorder    Recorder
	timer       Timer
	unsubscribe func()
	released    bool

	chunkMu sync.Mutex
	chunks  bytes.Buffer

	finish sync.Once
}

// adopt hands a resource acquired by Start to the session. It returns false
// once the session has been released; the caller then frees the resource
// itself.
func (s *session) adopt(set func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return false
	}
	set()
	return true
}

func (s *session) activeRecorder() bool {
	s.mu.Lock()
	rec := s.recorder
	s.mu.Unlock()
	return rec != nil && rec.Active()
}

func (s *session) appendChunk(b []byte) {
	s.chunkMu.Lock()
	defer s.chunkMu.Unlock()
	s.chunks.Write(b)
}

func (s *session) blob() capture.AudioBlob {
	s.chunkMu.Lock()
	defer s.chunkMu.Unlock()
	mimeType := s.mimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return capture.AudioBlob{Bytes: bytes.Clone(s.chunks.Bytes()), MimeType: mimeType}
}

func stopTracks(stream Stream) {
	if stream == nil {
		return
	}
	for _, t := range stream.Tracks() {
		t.Stop()
	}
}

func NewController(host Host, opts Options) *Controller {
	if host.Clock == nil {
		host.Clock = SystemClock
	}
	if opts.MaxDuration <= 0 {
		opts.MaxDuration = MaxRecordingDuration
	}
	if opts.Mode == 0 {
		opts.Mode = capture.DefaultMode
	}
	return &Controller{host: host, opts: opts, deviceID: AutoDevice}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) DeviceID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deviceID
}

// Devices returns the inputs seen on the first successful grant.
func (c *Controller) Devices() []Device {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Device(nil), c.devices...)
}

// SelectDevice pins the input for later sessions. An empty id or AutoDevice
// restores automatic selection.
func (c *Controller) SelectDevice(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.live() {
		return ErrSessionActive
	}
	if id == "" || id == AutoDevice {
		c.deviceID = AutoDevice
		c.userChose = false
		return nil
	}
	c.deviceID = id
	c.userChose = true
	return nil
}

// Start acquires the microphone and begins recording. It is a no-op while a
// session is live and implicitly resets a finished one.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.state.live() {
		c.mu.Unlock()
		return nil
	}
	c.seq++
	s := &session{id: c.seq}
	c.session = s
	deviceID := c.deviceID
	c.setStateLocked(StateRequestingAccess)
	c.mu.Unlock()

	stream, err := c.host.Devices.GetUserMedia(ctx, constraintsFor(deviceID))
	if err != nil {
		cerr := ClassifyMediaError(err)
		slog.Warn("microphone acquisition failed", "session", s.id, "code", string(cerr.Code), "error", err)
		c.fail(s, cerr)
		return cerr
	}
	if !s.adopt(func() { s.stream = stream }) {
		// Reset while the permission prompt was open.
		stopTracks(stream)
		return nil
	}
	if !c.current(s, StateRequestingAccess) {
		c.releaseSession(s)
		return nil
	}
	c.discoverDevices(ctx)

	s.mimeType = NegotiateMimeType(c.host.Codecs)
	rec, err := c.host.NewRecorder(stream, s.mimeType)
	if err != nil {
		cerr := capture.NewError(capture.CodeUnknownMicError, "recorder unavailable", err)
		c.releaseSession(s)
		c.fail(s, cerr)
		return cerr
	}
	rec.OnChunk(s.appendChunk)
	rec.OnStop(func() { c.recorderStopped(s) })
	if !s.adopt(func() { s.recorder = rec }) {
		return nil
	}

	if c.host.Cancel != nil {
		unsubscribe := c.host.Cancel.Listen(func(t StopTrigger) { c.trigger(s, t) })
		if !s.adopt(func() { s.unsubscribe = unsubscribe }) {
			unsubscribe()
			return nil
		}
	}
	timer := c.host.Clock.AfterFunc(c.opts.MaxDuration, func() { c.trigger(s, TriggerTimeout) })
	if !s.adopt(func() { s.timer = timer }) {
		timer.Stop()
		return nil
	}

	if err := rec.Start(); err != nil {
		cerr := ClassifyMediaError(err)
		c.releaseSession(s)
		c.fail(s, cerr)
		return cerr
	}

	c.mu.Lock()
	if c.session != s || c.state != StateRequestingAccess {
		c.mu.Unlock()
		c.releaseSession(s)
		// A concurrent release may have run before the recorder went active.
		rec.Stop()
		return nil
	}
	c.setStateLocked(StateRecording)
	pending, hasPending := s.pending, s.hasPending
	c.mu.Unlock()
	slog.Debug("recording started", "session", s.id, "mime_type", s.mimeType, "device_id", deviceID)

	switch {
	case hasPending:
		c.stopSession(s, pending)
	case !rec.Active():
		// The input ended before the session was marked as recording.
		c.stopSession(s, TriggerEnded)
	}
	return nil
}

// Stop ends the current recording and uploads it.
func (c *Controller) Stop() {
	c.mu.Lock()
	s := c.session
	c.mu.Unlock()
	if s != nil {
		c.trigger(s, TriggerStop)
	}
}

// Reset releases any live session and returns to Idle. A result still in
// flight for the released session is discarded.
func (c *Controller) Reset() {
	c.mu.Lock()
	s := c.session
	c.session = nil
	c.setStateLocked(StateIdle)
	c.mu.Unlock()
	if s != nil {
		c.releaseSession(s)
	}
}

func (c *Controller) discoverDevices(ctx context.Context) {
	c.mu.Lock()
	if c.enumerated {
		c.mu.Unlock()
		return
	}
	c.enumerated = true
	c.mu.Unlock()

	devices, err := c.host.Devices.EnumerateAudioInputs(ctx)
	if err != nil {
		slog.Warn("failed to enumerate audio inputs", "error", err)
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.devices = devices
	if c.userChose {
		return
	}
	if d, ok := ChooseDevice(devices); ok {
		c.deviceID = d.ID
		slog.Debug("audio input chosen", "device_id", d.ID, "label", d.Label)
	}
}

// trigger stops the session, or parks the trigger until the recorder is
// running when the session is still acquiring the microphone.
func (c *Controller) trigger(s *session, t StopTrigger) {
	c.mu.Lock()
	if c.session == s && c.state == StateRequestingAccess {
		if !s.hasPending {
			s.pending, s.hasPending = t, true
		}
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	c.stopSession(s, t)
}

// stopSession is the single exit from Recording for every trigger.
func (c *Controller) stopSession(s *session, trigger StopTrigger) {
	c.mu.Lock()
	if c.session != s || c.state != StateRecording {
		c.mu.Unlock()
		return
	}
	c.setStateLocked(StateProcessing)
	c.mu.Unlock()
	slog.Debug("recording stopped", "session", s.id, "trigger", trigger.String())

	flushed := s.activeRecorder()
	c.releaseSession(s)
	if !flushed {
		c.finalize(s)
	}
}

func (c *Controller) recorderStopped(s *session) {
	c.stopSession(s, TriggerEnded)
	c.finalize(s)
}

// releaseSession stops the recorder and every track, clears the safety
// timer and drops the cancel listener. Resources adopted later are freed by
// Start itself, so each one is released exactly once.
func (c *Controller) releaseSession(s *session) {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return
	}
	s.released = true
	stream, rec, timer, unsubscribe := s.stream, s.recorder, s.timer, s.unsubscribe
	s.mu.Unlock()

	if timer != nil {
		timer.Stop()
	}
	if unsubscribe != nil {
		unsubscribe()
	}
	if rec != nil && rec.Active() {
		rec.Stop()
	}
	stopTracks(stream)
}

func (c *Controller) finalize(s *session) {
	if !c.current(s, StateProcessing) {
		return
	}
	s.finish.Do(func() {
		blob := s.blob()
		if blob.Size() < MinAudioBytes {
			c.fail(s, capture.NewError(capture.CodeRecordingTooShort, fmt.Sprintf("%d bytes recorded", blob.Size()), nil))
			return
		}
		go c.submit(s, blob)
	})
}

func (c *Controller) submit(s *session, blob capture.AudioBlob) {
	started := time.Now()
	resp, err := c.host.Submitter.Submit(context.Background(), capture.Request{
		Audio:    blob,
		UserID:   c.opts.UserID,
		Mode:     c.opts.Mode,
		Timezone: c.opts.Timezone,
	})
	if err != nil {
		slog.Warn("capture upload failed", "session", s.id, "error", err)
		c.fail(s, err)
		return
	}
	next := StateCompleted
	if !resp.OK {
		next = StateError
	}
	if !c.transition(s, StateProcessing, next) {
		return
	}
	slog.Debug("capture upload finished", "session", s.id, "ok", resp.OK, "elapsed_ms", time.Since(started).Milliseconds())
	c.deliver(Outcome{Response: resp})
}

func (c *Controller) fail(s *session, err error) {
	c.mu.Lock()
	if c.session != s {
		c.mu.Unlock()
		return
	}
	c.setStateLocked(StateError)
	c.mu.Unlock()
	c.deliver(Outcome{Err: err})
}

func (c *Controller) current(s *session, want State) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session == s && c.state == want
}

func (c *Controller) transition(s *session, from, to State) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != s || c.state != from {
		return false
	}
	c.setStateLocked(to)
	return true
}

func (c *Controller) setStateLocked(next State) {
	c.state = next
}

func (c *Controller) deliver(o Outcome) {
	if c.opts.OnResult != nil {
		c.opts.OnResult(o)
	}
}
