package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sync"
)

// StillImageDevices подменяет камеру файлами на диске: снимок берется из ImagePath,
// запись видео отдает содержимое VideoPath одним куском
type StillImageDevices struct {
	ImagePath string
	VideoPath string
}

func (d StillImageDevices) GetUserMedia(ctx context.Context, constraints Constraints) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !constraints.Video {
		return nil, errors.New("video track is required")
	}

	tracks := []Track{&fileTrack{kind: "video", enabled: true}}
	if constraints.Audio {
		if d.VideoPath == "" {
			return nil, errors.New("no video source configured")
		}
		data, err := os.ReadFile(d.VideoPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read video source: %w", err)
		}
		tracks = append(tracks, &fileTrack{kind: "audio", enabled: true})
		return &fileStream{tracks: tracks, video: data}, nil
	}

	if d.ImagePath == "" {
		return nil, errors.New("no image source configured")
	}
	f, err := os.Open(d.ImagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open image source: %w", err)
	}
	defer f.Close()

	frame, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image source: %w", err)
	}
	return &fileStream{tracks: tracks, frame: frame}, nil
}

type fileTrack struct {
	mu      sync.Mutex
	kind    string
	stopped bool
	enabled bool
}

func (t *fileTrack) Kind() string { return t.kind }

func (t *fileTrack) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
}

func (t *fileTrack) SetEnabled(enabled bool) {
	t.mu.Lock()
	t.enabled = enabled
	t.mu.Unlock()
}

type fileStream struct {
	tracks []Track
	frame  image.Image
	video  []byte
}

func (s *fileStream) Tracks() []Track           { return s.tracks }
func (s *fileStream) CurrentFrame() image.Image { return s.frame }

func (s *fileStream) NewRecorder() (Recorder, error) {
	if s.video == nil {
		return nil, errors.New("stream has no recordable source")
	}
	return &fileRecorder{data: s.video}, nil
}

type fileRecorder struct {
	data    []byte
	onChunk func([]byte)
}

func (r *fileRecorder) Start(onChunk func([]byte)) error {
	if r.onChunk != nil {
		return errors.New("recorder already started")
	}
	r.onChunk = onChunk
	return nil
}

func (r *fileRecorder) Stop() error {
	if r.onChunk == nil {
		return errors.New("recorder not started")
	}
	r.onChunk(r.data)
	r.onChunk = nil
	return nil
}
