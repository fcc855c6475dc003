package capture

import (
	"context"
	"image"
)

// FacingEnvironment - задняя камера мобильного устройства
const FacingEnvironment = "environment"

// Constraints описывает запрашиваемые дорожки потока
type Constraints struct {
	Video      bool
	Audio      bool
	FacingMode string
}

// Devices выдает потоки с камеры и микрофона
type Devices interface {
	GetUserMedia(ctx context.Context, constraints Constraints) (Stream, error)
}

type Track interface {
	Kind() string
	Stop()
	SetEnabled(enabled bool)
}

// Stream - активный поток устройства
type Stream interface {
	Tracks() []Track
	// CurrentFrame возвращает последний кадр или nil, если кадров еще не было
	CurrentFrame() image.Image
	NewRecorder() (Recorder, error)
}

// Recorder кодирует поток кусками. Stop должен отдать все оставшиеся куски до возврата.
type Recorder interface {
	Start(onChunk func(chunk []byte)) error
	Stop() error
}
