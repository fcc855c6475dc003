package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
)

//go:generate mockgen -source=geocode.go -destination=mocks/mock_geocode.go -package=mocks

// Geocoder проксирует обратное геокодирование во внешний сервис (Nominatim)
type Geocoder interface {
	Reverse(ctx context.Context, latitude, longitude string) ([]byte, error)
}

// UpstreamError - внешний сервис ответил неуспешным статусом
type UpstreamError struct {
	StatusCode int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("Geocoding API error: %d", e.StatusCode)
}

type nominatimGeocoder struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewNominatimGeocoder(baseURL, userAgent string, timeout time.Duration, logger *logrus.Logger) Geocoder {
	return &nominatimGeocoder{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Reverse возвращает сырой JSON ответа сервиса геокодирования
func (g *nominatimGeocoder) Reverse(ctx context.Context, latitude, longitude string) ([]byte, error) {
	log := g.logger.WithFields(logrus.Fields{
		"service":   "geocode",
		"method":    "Reverse",
		"latitude":  latitude,
		"longitude": longitude,
	})

	query := url.Values{}
	query.Set("format", "json")
	query.Set("lat", latitude)
	query.Set("lon", longitude)
	query.Set("addressdetails", "1")
	query.Set("zoom", "18")
	query.Set("namedetails", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("service: could not build geocoding request: %w", err)
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		log.WithError(err).Error("Geocoding request failed")
		return nil, fmt.Errorf("service: geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.WithField("status", resp.StatusCode).Warn("Geocoding upstream returned error status")
		return nil, &UpstreamError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("service: could not read geocoding response: %w", err)
	}
	return body, nil
}
