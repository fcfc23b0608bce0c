// Package uploader runs file uploads through a bounded-concurrency pipeline.
//
// Files are enqueued into a FIFO queue drained by a single worker goroutine
// in batches. Each enqueued file gets its own event stream: zero or more
// Progress events followed by exactly one Complete or Failed event, then the
// channel closes. Cancellation closes the channel without a terminal event.
package uploader

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/mediabucket/mbx/internal/api"
	"github.com/mediabucket/mbx/internal/models"
	"github.com/mediabucket/mbx/internal/shared"
)

const (
	defaultBatchSize        = 8
	defaultProgressInterval = 500 * time.Millisecond
	eventBuffer             = 16
)

// ContentUploader is the transport boundary the pipeline drives. Implemented
// by [api.Client]. Implementations must not invoke progress after
// UploadContent returns; the event stream closes once a result is in.
type ContentUploader interface {
	UploadContent(ctx context.Context, auth models.Auth, file models.FileRef, body io.Reader, progress func(written int64)) (*models.Media, *models.Media, error)
}

// Event is one update on a file's upload stream.
type Event interface {
	isEvent()
}

// Progress reports cumulative transferred bytes and the observed transfer
// rate since the previous report.
type Progress struct {
	UploadedBytes int64
	BytesPerSec   float64
}

// Complete carries the stored media once the upload finished.
type Complete struct {
	Content   *models.Media
	Thumbnail *models.Media
}

// Failed carries the failure that ended the upload.
type Failed struct {
	Failure *models.Failure
}

func (Progress) isEvent() {}
func (Complete) isEvent() {}
func (Failed) isEvent()   {}

type task struct {
	file   models.FileRef
	auth   models.Auth
	cancel <-chan struct{}
	events chan Event
}

// Pipeline uploads queued files with bounded concurrency. Construct one with
// [New]; the zero value is not usable.
type Pipeline struct {
	uploader         ContentUploader
	logger           *log.Logger
	batchSize        int
	progressInterval time.Duration
	timeout          time.Duration
	open             func(path string) (io.ReadCloser, error)

	mu      sync.Mutex
	queue   []*task
	running bool
	reset   chan struct{}
}

// New creates a pipeline over the given transport. Zero config values fall
// back to a batch of 8 and a 500ms progress throttle; a zero timeout disables
// the per-upload deadline.
func New(uploader ContentUploader, config shared.UploadConfig, logger *log.Logger) *Pipeline {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	batchSize := config.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	interval := config.ProgressInterval()
	if interval <= 0 {
		interval = defaultProgressInterval
	}

	return &Pipeline{
		uploader:         uploader,
		logger:           shared.WithLogger(logger, "component", "uploader"),
		batchSize:        batchSize,
		progressInterval: interval,
		timeout:          config.Timeout(),
		open: func(path string) (io.ReadCloser, error) {
			return os.Open(path)
		},
		reset: make(chan struct{}),
	}
}

// Enqueue queues one file for upload and returns its event stream. The
// stream closes after a terminal event, or without one when the upload is
// cancelled through the per-file channel or a pipeline Reset. cancel may be
// nil when per-file cancellation is not needed.
func (p *Pipeline) Enqueue(file models.FileRef, auth models.Auth, cancel <-chan struct{}) <-chan Event {
	t := &task{
		file:   file,
		auth:   auth,
		cancel: cancel,
		events: make(chan Event, eventBuffer),
	}

	p.mu.Lock()
	p.queue = append(p.queue, t)
	if !p.running {
		p.running = true
		go p.drain()
	}
	p.mu.Unlock()

	return t.events
}

// Reset cancels every in-flight upload and drops the queued ones. Streams of
// dropped uploads close without a terminal event. The pipeline stays usable
// for new uploads afterwards.
func (p *Pipeline) Reset() {
	p.mu.Lock()
	close(p.reset)
	p.reset = make(chan struct{})
	dropped := p.queue
	p.queue = nil
	p.mu.Unlock()

	for _, t := range dropped {
		close(t.events)
	}
	p.logger.Debug("pipeline reset", "dropped", len(dropped))
}

// Pending reports how many uploads are queued but not yet started.
func (p *Pipeline) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// drain pulls batches off the queue until it runs empty. Only one drain
// goroutine exists at a time, guarded by the running flag.
func (p *Pipeline) drain() {
	for {
		p.mu.Lock()
		n := len(p.queue)
		if n == 0 {
			p.running = false
			p.mu.Unlock()
			return
		}
		if n > p.batchSize {
			n = p.batchSize
		}
		batch := p.queue[:n]
		p.queue = p.queue[n:]
		reset := p.reset
		p.mu.Unlock()

		var wg sync.WaitGroup
		for _, t := range batch {
			wg.Add(1)
			go func(t *task) {
				defer wg.Done()
				p.run(t, reset)
			}(t)
		}
		wg.Wait()
	}
}

// run performs a single upload and closes its event stream.
func (p *Pipeline) run(t *task, reset <-chan struct{}) {
	defer close(t.events)

	base := context.Background()
	if p.timeout > 0 {
		var cancelTimeout context.CancelFunc
		base, cancelTimeout = context.WithTimeout(base, p.timeout)
		defer cancelTimeout()
	}
	ctx, cancel := context.WithCancel(base)
	defer cancel()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-reset:
			cancel()
		case <-t.cancel:
			cancel()
		case <-stop:
		}
	}()

	cancelled := func() bool {
		select {
		case <-reset:
			return true
		default:
		}
		if t.cancel != nil {
			select {
			case <-t.cancel:
				return true
			default:
			}
		}
		return false
	}

	body, err := p.open(t.file.Path)
	if err != nil {
		p.logger.Error("failed to open file", "file", t.file.Name, "error", err)
		t.events <- Failed{Failure: models.NewFailure(err.Error())}
		return
	}
	defer body.Close()

	// Progress emission is throttled so fast uploads don't flood the
	// stream. Sends never block; a slow consumer just misses intermediate
	// updates, never the terminal event.
	limiter := rate.NewLimiter(rate.Every(p.progressInterval), 1)
	lastTime := time.Now()
	var lastBytes int64
	progress := func(written int64) {
		if !limiter.Allow() {
			return
		}
		now := time.Now()
		var bytesPerSec float64
		if elapsed := now.Sub(lastTime); elapsed > 0 {
			bytesPerSec = float64(written-lastBytes) / elapsed.Seconds()
		}
		lastTime = now
		lastBytes = written

		select {
		case t.events <- Progress{UploadedBytes: written, BytesPerSec: bytesPerSec}:
		default:
		}
	}

	content, thumbnail, err := p.uploader.UploadContent(ctx, t.auth, t.file, body, progress)
	if err != nil {
		if cancelled() {
			p.logger.Debug("upload cancelled", "file", t.file.Name)
			return
		}
		p.logger.Error("upload failed", "file", t.file.Name, "error", err)
		t.events <- Failed{Failure: api.FailureFrom(err)}
		return
	}

	p.logger.Debug("upload complete", "file", t.file.Name, "content", content.ID)
	t.events <- Complete{Content: content, Thumbnail: thumbnail}
}
