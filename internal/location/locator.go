package location

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/shenikar/traffic_violation_reporting/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	DefaultTimeout = 10 * time.Second
	DefaultMaxAge  = 60 * time.Second

	FallbackCity  = "Location detected"
	FallbackState = "GPS coordinates available"
)

var (
	ErrPermissionDenied    = errors.New("location: permission denied")
	ErrPositionUnavailable = errors.New("location: position unavailable")
	ErrTimeout             = errors.New("location: request timed out")
)

// Message возвращает текст ошибки определения местоположения для пользователя
func Message(err error) string {
	const prefix = "Unable to retrieve your location. "
	switch {
	case errors.Is(err, ErrPermissionDenied):
		return prefix + "Location access denied. Please enable location permission in your browser settings and refresh the page."
	case errors.Is(err, ErrTimeout):
		return prefix + "Location request timed out. Please try again."
	case errors.Is(err, ErrPositionUnavailable):
		return prefix + "Location information unavailable. Please try again."
	case err == nil:
		return ""
	default:
		return prefix + "Please try again."
	}
}

// Position - координаты и момент их получения
type Position struct {
	Latitude  float64
	Longitude float64
	Timestamp time.Time
}

// PositionSource - источник координат устройства
type PositionSource interface {
	CurrentPosition(ctx context.Context) (Position, error)
}

// ReverseGeocoder возвращает поля адреса (city, town, state, ...) для координат
type ReverseGeocoder interface {
	ReverseGeocode(ctx context.Context, latitude, longitude float64) (map[string]string, error)
}

// Locator определяет местоположение с ограниченным ожиданием.
// Позиция не старше maxAge берется из кэша без обращения к источнику.
type Locator struct {
	source   PositionSource
	geocoder ReverseGeocoder
	logger   *logrus.Logger
	timeout  time.Duration
	maxAge   time.Duration
	now      func() time.Time

	mu     sync.Mutex
	cached *Position
}

func NewLocator(source PositionSource, geocoder ReverseGeocoder, logger *logrus.Logger) *Locator {
	return &Locator{
		source:   source,
		geocoder: geocoder,
		logger:   logger,
		timeout:  DefaultTimeout,
		maxAge:   DefaultMaxAge,
		now:      time.Now,
	}
}

// Locate всегда завершается либо позицией, либо ошибкой.
// Ошибка геокодирования не фатальна: город и регион получают заглушки.
func (l *Locator) Locate(ctx context.Context) (models.Location, error) {
	pos, err := l.position(ctx)
	if err != nil {
		return models.Location{}, err
	}

	loc := models.Location{
		City:      FallbackCity,
		State:     FallbackState,
		Latitude:  round6(pos.Latitude),
		Longitude: round6(pos.Longitude),
	}

	address, err := l.geocoder.ReverseGeocode(ctx, pos.Latitude, pos.Longitude)
	if err != nil {
		l.logger.WithError(err).Warn("Geocoding error, falling back to coordinates")
		return loc, nil
	}

	loc.City = CityFromAddress(address)
	loc.State = StateFromAddress(address)
	return loc, nil
}

func (l *Locator) position(ctx context.Context) (Position, error) {
	l.mu.Lock()
	if l.cached != nil && l.now().Sub(l.cached.Timestamp) <= l.maxAge {
		pos := *l.cached
		l.mu.Unlock()
		return pos, nil
	}
	l.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	type result struct {
		pos Position
		err error
	}
	done := make(chan result, 1)
	go func() {
		pos, err := l.source.CurrentPosition(ctx)
		done <- result{pos: pos, err: err}
	}()

	select {
	case <-ctx.Done():
		return Position{}, ErrTimeout
	case res := <-done:
		if res.err != nil {
			return Position{}, classify(res.err)
		}
		if res.pos.Timestamp.IsZero() {
			res.pos.Timestamp = l.now()
		}
		l.mu.Lock()
		l.cached = &res.pos
		l.mu.Unlock()
		return res.pos, nil
	}
}

func classify(err error) error {
	switch {
	case errors.Is(err, ErrPermissionDenied), errors.Is(err, ErrPositionUnavailable), errors.Is(err, ErrTimeout):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return ErrTimeout
	default:
		return ErrPositionUnavailable
	}
}

// CityFromAddress выбирает первое непустое поле в порядке убывания точности
func CityFromAddress(address map[string]string) string {
	return firstNonEmpty(address, FallbackCity,
		"city", "town", "village", "municipality", "hamlet", "suburb", "county", "city_district")
}

func StateFromAddress(address map[string]string) string {
	return firstNonEmpty(address, FallbackState,
		"state", "province", "region", "county", "state_district")
}

func firstNonEmpty(address map[string]string, fallback string, keys ...string) string {
	for _, k := range keys {
		if v := address[k]; v != "" {
			return v
		}
	}
	return fallback
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// StaticSource отдает заранее заданные координаты (флаги CLI)
type StaticSource struct {
	Latitude  float64
	Longitude float64
}

func (s StaticSource) CurrentPosition(ctx context.Context) (Position, error) {
	if err := ctx.Err(); err != nil {
		return Position{}, err
	}
	return Position{Latitude: s.Latitude, Longitude: s.Longitude, Timestamp: time.Now()}, nil
}
