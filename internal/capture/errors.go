package capture

import (
	"errors"
	"fmt"
)

var (
	ErrDeviceNotReady = errors.New("capture: camera frame not ready")
	ErrFileTooLarge   = errors.New("capture: file exceeds 10 MiB")
	ErrInvalidState   = errors.New("capture: operation not allowed in current state")
	ErrRequestAborted = errors.New("capture: device request aborted")
)

// Message возвращает текст ошибки для пользователя
func Message(err error) string {
	var deviceErr *DeviceError
	switch {
	case errors.Is(err, ErrDeviceNotReady):
		return "Camera video not ready. Please wait a moment and try again."
	case errors.Is(err, ErrFileTooLarge):
		return "File size must not exceed 10MB. Please capture a smaller photo or video."
	case errors.As(err, &deviceErr):
		return "Unable to access camera. Please check permissions."
	case err == nil:
		return ""
	default:
		return err.Error()
	}
}

// DeviceError - отказ в доступе к устройству или его отсутствие
type DeviceError struct {
	Err error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("capture: could not access camera: %v", e.Err)
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}
