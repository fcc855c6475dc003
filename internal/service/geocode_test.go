package service

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGeocoder(baseURL string) Geocoder {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах
	return NewNominatimGeocoder(baseURL, "TrafficViolationForm/1.0", time.Second, logger)
}

func TestReverse_Success(t *testing.T) {
	// Подготовка
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "json", q.Get("format"))
		assert.Equal(t, "18.52", q.Get("lat"))
		assert.Equal(t, "73.85", q.Get("lon"))
		assert.Equal(t, "1", q.Get("addressdetails"))
		assert.Equal(t, "18", q.Get("zoom"))
		assert.Equal(t, "TrafficViolationForm/1.0", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"address":{"city":"Pune","state":"Maharashtra"}}`))
	}))
	defer server.Close()

	// Действие
	body, err := newTestGeocoder(server.URL).Reverse(context.Background(), "18.52", "73.85")

	// Проверки
	require.NoError(t, err)
	assert.JSONEq(t, `{"address":{"city":"Pune","state":"Maharashtra"}}`, string(body))
}

func TestReverse_UpstreamStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestGeocoder(server.URL).Reverse(context.Background(), "1", "2")

	require.Error(t, err)
	var upstreamErr *UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, http.StatusTooManyRequests, upstreamErr.StatusCode)
	assert.EqualError(t, err, "Geocoding API error: 429")
}

func TestReverse_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	_, err := newTestGeocoder(server.URL).Reverse(context.Background(), "1", "2")

	require.Error(t, err)
	var upstreamErr *UpstreamError
	assert.False(t, errors.As(err, &upstreamErr))
}
