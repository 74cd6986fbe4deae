package recording

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/foxseedlab/voicecap/internal/recording"
)

const (
	defaultChunkBytes    = 16 << 10
	defaultChunkInterval = 250 * time.Millisecond
)

// FileDevices exposes audio files as microphone inputs. The device id is
// the file path.
type FileDevices struct {
	Paths []string
}

type fileStream struct {
	path string
	file *os.File
	once sync.Once
}

func (s *fileStream) Tracks() []recording.Track { return []recording.Track{s} }

// Stop closes the backing file.
func (s *fileStream) Stop() {
	s.once.Do(func() {
		if err := s.file.Close(); err != nil {
			slog.Warn("failed to close audio input", "path", s.path, "error", err)
		}
	})
}

func (d FileDevices) GetUserMedia(_ context.Context, c recording.Constraints) (recording.Stream, error) {
	path := c.DeviceID
	if path == "" {
		if len(d.Paths) == 0 {
			return nil, &recording.MediaError{Name: "NotFoundError", Message: "no audio input configured"}
		}
		path = d.Paths[0]
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fileMediaError(err)
	}
	return &fileStream{path: path, file: f}, nil
}

func (d FileDevices) EnumerateAudioInputs(_ context.Context) ([]recording.Device, error) {
	out := make([]recording.Device, 0, len(d.Paths))
	for _, p := range d.Paths {
		out = append(out, recording.Device{ID: p, Label: filepath.Base(p)})
	}
	return out, nil
}

func fileMediaError(err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return &recording.MediaError{Name: "NotFoundError", Message: err.Error()}
	case errors.Is(err, fs.ErrPermission):
		return &recording.MediaError{Name: "NotAllowedError", Message: err.Error()}
	default:
		return &recording.MediaError{Name: "NotReadableError", Message: err.Error()}
	}
}

// FileCodecs reports support only for the container of the configured file.
type FileCodecs struct {
	Path string
}

func (c FileCodecs) IsTypeSupported(mimeType string) bool {
	return MimeTypeForPath(c.Path) == mimeType
}

func MimeTypeForPath(path string) string {
	switch ext := filepath.Ext(path); ext {
	case ".webm":
		return "audio/webm"
	case ".m4a", ".mp4":
		return "audio/mp4"
	default:
		if t := mime.TypeByExtension(ext); t != "" {
			return t
		}
		return ""
	}
}

// FileRecorder paces a file out as chunks. Stop flushes the unread rest so
// the upload stays a complete container.
type FileRecorder struct {
	stream     *fileStream
	chunkBytes int
	interval   time.Duration

	mu      sync.Mutex
	active  bool
	done    chan struct{}
	stopped chan struct{}
	onChunk func([]byte)
	onStop  func()
}

type RecorderOptions struct {
	ChunkBytes    int
	ChunkInterval time.Duration
}

func NewRecorderFactory(opts RecorderOptions) recording.RecorderFactory {
	if opts.ChunkBytes <= 0 {
		opts.ChunkBytes = defaultChunkBytes
	}
	if opts.ChunkInterval <= 0 {
		opts.ChunkInterval = defaultChunkInterval
	}
	return func(stream recording.Stream, _ string) (recording.Recorder, error) {
		fileBacked, ok := stream.(*fileStream)
		if !ok {
			return nil, &recording.MediaError{Name: "NotSupportedError", Message: "stream is not file backed"}
		}
		return &FileRecorder{
			stream:     fileBacked,
			chunkBytes: opts.ChunkBytes,
			interval:   opts.ChunkInterval,
			onChunk:    func([]byte) {},
			onStop:     func() {},
		}, nil
	}
}

func (r *FileRecorder) OnChunk(f func([]byte)) { r.onChunk = f }
func (r *FileRecorder) OnStop(f func())        { r.onStop = f }

func (r *FileRecorder) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

func (r *FileRecorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active {
		return nil
	}
	r.active = true
	r.done = make(chan struct{})
	r.stopped = make(chan struct{})
	go r.loop(r.done, r.stopped)
	return nil
}

// Stop waits for the pacing loop, flushes the remaining bytes and fires
// OnStop.
func (r *FileRecorder) Stop() {
	r.mu.Lock()
	if !r.active {
		r.mu.Unlock()
		return
	}
	r.active = false
	close(r.done)
	stopped := r.stopped
	r.mu.Unlock()

	<-stopped
	if rest, err := io.ReadAll(r.stream.file); err == nil && len(rest) > 0 {
		r.onChunk(rest)
	}
	r.onStop()
}

func (r *FileRecorder) loop(done <-chan struct{}, stopped chan<- struct{}) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	buf := make([]byte, r.chunkBytes)
	for {
		select {
		case <-done:
			close(stopped)
			return
		case <-ticker.C:
		}
		n, err := r.stream.file.Read(buf)
		if n > 0 {
			r.onChunk(append([]byte(nil), buf[:n]...))
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				slog.Warn("audio input read failed", "path", r.stream.path, "error", err)
			}
			r.finishFromLoop(stopped)
			return
		}
	}
}

// finishFromLoop ends the recording when the input runs out.
func (r *FileRecorder) finishFromLoop(stopped chan<- struct{}) {
	r.mu.Lock()
	wasActive := r.active
	r.active = false
	r.mu.Unlock()
	close(stopped)
	if wasActive {
		r.onStop()
	}
}
