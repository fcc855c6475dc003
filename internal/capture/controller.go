package capture

import (
	"bytes"
	"context"
	"fmt"
	"image/jpeg"
	"sync"
	"time"

	"github.com/shenikar/traffic_violation_reporting/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	jpegQuality   = 80
	videoMimeType = "video/webm"
)

type State int

const (
	StateIdle State = iota
	StateRequesting
	StatePreviewing
	StateCapturing
	StateRecording
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequesting:
		return "requesting"
	case StatePreviewing:
		return "previewing"
	case StateCapturing:
		return "capturing"
	case StateRecording:
		return "recording"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Controller управляет камерой и хранит ровно один файл-доказательство.
// Одновременно активен не больше одного потока.
type Controller struct {
	devices Devices
	logger  *logrus.Logger
	maxSize int64
	now     func() time.Time

	mu    sync.Mutex
	state State
	// generation растет при каждом запросе камеры и при отмене
	generation uint64
	stream     Stream
	recorder   Recorder
	evidence   *models.EvidenceFile

	chunksMu sync.Mutex
	chunks   [][]byte
}

func NewController(devices Devices, logger *logrus.Logger) *Controller {
	return &Controller{
		devices: devices,
		logger:  logger,
		maxSize: models.MaxEvidenceSize,
		now:     time.Now,
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Evidence возвращает текущий файл или nil
func (c *Controller) Evidence() *models.EvidenceFile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evidence
}

// StartPhoto открывает превью камеры для снимка
func (c *Controller) StartPhoto(ctx context.Context) error {
	return c.acquire(ctx, Constraints{Video: true, FacingMode: FacingEnvironment}, func(stream Stream) error {
		c.stream = stream
		c.state = StatePreviewing
		c.logger.Debug("Camera preview started")
		return nil
	})
}

// Capture делает снимок текущего кадра и закрывает камеру
func (c *Controller) Capture() (*models.EvidenceFile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StatePreviewing || c.stream == nil {
		return nil, ErrInvalidState
	}

	frame := c.stream.CurrentFrame()
	if frame == nil || frame.Bounds().Dx() == 0 || frame.Bounds().Dy() == 0 {
		return nil, ErrDeviceNotReady
	}

	c.state = StateCapturing
	var buf bytes.Buffer
	err := jpeg.Encode(&buf, frame, &jpeg.Options{Quality: jpegQuality})
	c.releaseLocked()
	if err != nil {
		return nil, fmt.Errorf("capture: failed to encode photo: %w", err)
	}

	file := &models.EvidenceFile{
		Name:        fmt.Sprintf("photo-%d.jpg", c.now().UnixMilli()),
		ContentType: "image/jpeg",
		Data:        buf.Bytes(),
	}
	return c.storeLocked(file)
}

// StartVideo запускает запись видео со звуком
func (c *Controller) StartVideo(ctx context.Context) error {
	return c.acquire(ctx, Constraints{Video: true, Audio: true, FacingMode: FacingEnvironment}, func(stream Stream) error {
		recorder, err := stream.NewRecorder()
		if err != nil {
			stopTracks(stream)
			c.state = StateIdle
			return &DeviceError{Err: err}
		}

		c.resetChunks()
		if err := recorder.Start(c.appendChunk); err != nil {
			stopTracks(stream)
			c.state = StateIdle
			return &DeviceError{Err: err}
		}

		c.stream = stream
		c.recorder = recorder
		c.state = StateRecording
		c.logger.Debug("Video recording started")
		return nil
	})
}

// Stop завершает запись и собирает куски в один файл
func (c *Controller) Stop() (*models.EvidenceFile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateRecording || c.recorder == nil {
		return nil, ErrInvalidState
	}

	err := c.recorder.Stop()
	c.recorder = nil
	c.releaseLocked()
	if err != nil {
		return nil, fmt.Errorf("capture: failed to stop recording: %w", err)
	}

	c.chunksMu.Lock()
	data := bytes.Join(c.chunks, nil)
	c.chunks = nil
	c.chunksMu.Unlock()

	file := &models.EvidenceFile{
		Name:        fmt.Sprintf("video-%d.webm", c.now().UnixMilli()),
		ContentType: videoMimeType,
		Data:        data,
	}
	return c.storeLocked(file)
}

// Cancel закрывает превью или запись без создания файла
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.recorder != nil {
		if err := c.recorder.Stop(); err != nil {
			c.logger.WithError(err).Warn("Failed to stop recorder on cancel")
		}
		c.recorder = nil
	}
	c.resetChunks()
	c.generation++
	c.releaseLocked()
}

// Release останавливает все дорожки. Повторный вызов ничего не делает.
func (c *Controller) Release() {
	c.Cancel()
}

// Reset удаляет текущий файл и освобождает камеру
func (c *Controller) Reset() {
	c.Cancel()

	c.mu.Lock()
	c.evidence = nil
	c.mu.Unlock()
}

// acquire запрашивает поток и передает его в install под c.mu.
// Поток запроса, который успели отменить или обогнать более новым, сразу закрывается.
func (c *Controller) acquire(ctx context.Context, constraints Constraints, install func(Stream) error) error {
	// перед новым запросом закрываем предыдущий поток
	c.Cancel()

	c.mu.Lock()
	c.generation++
	generation := c.generation
	c.state = StateRequesting
	c.mu.Unlock()

	stream, err := c.devices.GetUserMedia(ctx, constraints)

	c.mu.Lock()
	defer c.mu.Unlock()

	stale := generation != c.generation
	if err != nil {
		if !stale {
			c.state = StateIdle
		}
		c.logger.WithError(err).Warn("Error accessing camera")
		return &DeviceError{Err: err}
	}
	if stale {
		stopTracks(stream)
		return ErrRequestAborted
	}
	return install(stream)
}

func (c *Controller) storeLocked(file *models.EvidenceFile) (*models.EvidenceFile, error) {
	if file.Size() > c.maxSize {
		c.logger.WithFields(logrus.Fields{
			"file": file.Name,
			"size": file.Size(),
		}).Warn("Captured file is too large, discarded")
		return nil, ErrFileTooLarge
	}
	c.evidence = file
	return file, nil
}

// releaseLocked вызывается под c.mu
func (c *Controller) releaseLocked() {
	if c.stream != nil {
		stopTracks(c.stream)
		c.stream = nil
	}
	c.state = StateIdle
}

func (c *Controller) appendChunk(chunk []byte) {
	if len(chunk) == 0 {
		return
	}
	c.chunksMu.Lock()
	c.chunks = append(c.chunks, chunk)
	c.chunksMu.Unlock()
}

func (c *Controller) resetChunks() {
	c.chunksMu.Lock()
	c.chunks = nil
	c.chunksMu.Unlock()
}

func stopTracks(stream Stream) {
	for _, track := range stream.Tracks() {
		track.Stop()
		track.SetEnabled(false)
	}
}
