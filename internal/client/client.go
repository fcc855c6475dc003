package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shenikar/traffic_violation_reporting/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const maxParallelUploads = 4

var (
	ErrBadRequest = errors.New("client: bad request")
	ErrConflict   = errors.New("client: conflict")
	ErrNotFound   = errors.New("client: not found")

	// ErrMalformedResponse - успешный статус без ожидаемых данных
	ErrMalformedResponse = errors.New("client: malformed response")
)

// APIError - неуспешный ответ API. Message берется из поля error тела ответа.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("client: api error %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrBadRequest:
		return e.StatusCode == http.StatusBadRequest
	case ErrConflict:
		return e.StatusCode == http.StatusConflict
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// Client ходит в HTTP API сервиса заявлений
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

func New(baseURL string, timeout time.Duration, logger *logrus.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/") + "/api",
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type incidentIDResponse struct {
	Success    bool   `json:"success"`
	IncidentID string `json:"incidentId"`
}

type uploadResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
	Path    string `json:"path"`
}

type submitFormRequest struct {
	IncidentID  string   `json:"incident_id"`
	Description string   `json:"description"`
	City        string   `json:"city"`
	State       string   `json:"state"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	MediaURLs   []string `json:"media_urls"`
}

type reportResponse struct {
	Success bool           `json:"success"`
	Data    *models.Report `json:"data"`
}

type geocodeResponse struct {
	Address map[string]any `json:"address"`
}

// GenerateIncidentID запрашивает новый уникальный код инцидента
func (c *Client) GenerateIncidentID(ctx context.Context) (string, error) {
	var out incidentIDResponse
	if err := c.doJSON(ctx, http.MethodPost, "/generate-incident-id", nil, &out); err != nil {
		return "", err
	}
	if out.IncidentID == "" {
		return "", fmt.Errorf("client: generate incident id: %w", ErrMalformedResponse)
	}
	return out.IncidentID, nil
}

// UploadMedia отправляет файл multipart-формой с полями file и incidentId
func (c *Client) UploadMedia(ctx context.Context, file *models.EvidenceFile, incidentID string) (*models.UploadResult, error) {
	if file == nil {
		return nil, errors.New("client: file is required")
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, file.Name))
	header.Set("Content-Type", file.ContentType)
	part, err := form.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("client: could not build upload form: %w", err)
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, fmt.Errorf("client: could not build upload form: %w", err)
	}
	if err := form.WriteField("incidentId", incidentID); err != nil {
		return nil, fmt.Errorf("client: could not build upload form: %w", err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("client: could not build upload form: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"file":        file.Name,
		"size":        file.Size(),
		"type":        file.ContentType,
		"incident_id": incidentID,
	}).Debug("Uploading file")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload-media", &body)
	if err != nil {
		return nil, fmt.Errorf("client: could not build request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	var out uploadResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &models.UploadResult{URL: out.URL, Path: out.Path}, nil
}

// UploadMany загружает файлы параллельно и собирает успехи и ошибки раздельно
func (c *Client) UploadMany(ctx context.Context, files []*models.EvidenceFile, incidentID string) *models.UploadBatch {
	results := make([]*models.UploadResult, len(files))
	errs := make([]error, len(files))

	var g errgroup.Group
	g.SetLimit(maxParallelUploads)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			results[i], errs[i] = c.UploadMedia(ctx, file, incidentID)
			return nil
		})
	}
	_ = g.Wait()

	batch := &models.UploadBatch{}
	for i := range files {
		if errs[i] != nil {
			batch.Errors = append(batch.Errors, errs[i])
			continue
		}
		batch.URLs = append(batch.URLs, results[i].URL)
	}
	return batch
}

// SubmitReport сохраняет заявление. Дубликат incident_id возвращается как ошибка с ErrConflict.
func (c *Client) SubmitReport(ctx context.Context, report *models.Report) (*models.Report, error) {
	in := submitFormRequest{
		IncidentID:  report.IncidentID,
		Description: report.Description,
		City:        report.City,
		State:       report.State,
		Latitude:    report.Latitude,
		Longitude:   report.Longitude,
		MediaURLs:   report.MediaURLs,
	}

	var out reportResponse
	if err := c.doJSON(ctx, http.MethodPost, "/submit-form", in, &out); err != nil {
		return nil, err
	}
	if out.Data == nil {
		return nil, fmt.Errorf("client: submit report: %w", ErrMalformedResponse)
	}
	return out.Data, nil
}

func (c *Client) GetReport(ctx context.Context, incidentID string) (*models.Report, error) {
	var out reportResponse
	if err := c.doJSON(ctx, http.MethodGet, "/reports/"+url.PathEscape(incidentID), nil, &out); err != nil {
		return nil, err
	}
	if out.Data == nil {
		return nil, &APIError{StatusCode: http.StatusNotFound, Message: "Report not found"}
	}
	return out.Data, nil
}

// ReverseGeocode возвращает строковые поля адреса из ответа прокси геокодирования
func (c *Client) ReverseGeocode(ctx context.Context, latitude, longitude float64) (map[string]string, error) {
	query := url.Values{}
	query.Set("latitude", strconv.FormatFloat(latitude, 'f', -1, 64))
	query.Set("longitude", strconv.FormatFloat(longitude, 'f', -1, 64))

	var out geocodeResponse
	if err := c.doJSON(ctx, http.MethodGet, "/geocode?"+query.Encode(), nil, &out); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("client: geocoding API error: %d", apiErr.StatusCode)
		}
		return nil, err
	}

	address := make(map[string]string, len(out.Address))
	for k, v := range out.Address {
		if s, ok := v.(string); ok {
			address[k] = s
		}
	}
	return address, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("client: could not encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("client: could not build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	log := c.logger.WithFields(logrus.Fields{"method": req.Method, "path": req.URL.Path})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.WithError(err).Warn("Request failed")
		return fmt.Errorf("client: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("client: could not read response: %w", err)
	}
	log.WithField("status", resp.StatusCode).Debug("Response received")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var e errorResponse
		if json.Unmarshal(raw, &e) == nil && e.Error != "" {
			apiErr.Message = e.Error
			apiErr.Code = e.Code
		} else {
			apiErr.Message = fmt.Sprintf("request failed with status %d", resp.StatusCode)
		}
		return apiErr
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("client: could not decode response: %w", err)
	}
	return nil
}
