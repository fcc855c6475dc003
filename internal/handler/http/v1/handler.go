package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shenikar/traffic_violation_reporting/internal/config"
	"github.com/shenikar/traffic_violation_reporting/internal/models"
	"github.com/shenikar/traffic_violation_reporting/internal/service"
	"github.com/sirupsen/logrus"
)

// multipartOverhead - запас на заголовки формы сверх размера файла
const multipartOverhead = 1 << 20

type Handler struct {
	idGenerator   service.IncidentIDGenerator
	uploadService service.UploadService
	reportService service.ReportService
	geocoder      service.Geocoder
	logger        *logrus.Logger
	validate      *validator.Validate
	cfg           *config.Config
}

func NewHandler(
	idGenerator service.IncidentIDGenerator,
	uploadService service.UploadService,
	reportService service.ReportService,
	geocoder service.Geocoder,
	logger *logrus.Logger,
	cfg *config.Config,
) *Handler {
	validate := validator.New()
	// В сообщениях об ошибках используем имена полей из JSON
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &Handler{
		idGenerator:   idGenerator,
		uploadService: uploadService,
		reportService: reportService,
		geocoder:      geocoder,
		logger:        logger,
		validate:      validate,
		cfg:           cfg,
	}
}

// @Summary Generate incident ID
// @Description Generate a unique human-readable incident code (TR-<time>-<random>)
// @Tags Reports
// @Produce json
// @Success 200 {object} IncidentIDResponse
// @Failure 500 {object} ErrorResponse "Storage failure or no unique ID after 10 attempts"
// @Router /generate-incident-id [post]
func (h *Handler) generateIncidentID(c *gin.Context) {
	log := h.logger.WithField("method", "generateIncidentID")

	incidentID, err := h.idGenerator.Generate(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrExhaustedRetries) {
			log.WithError(err).Error("Exhausted incident ID attempts")
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error: "Failed to generate unique incident ID",
				Code:  "exhausted_retries",
			})
			return
		}
		log.WithError(err).Error("Failed to generate incident ID")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to generate incident ID"})
		return
	}

	c.JSON(http.StatusOK, IncidentIDResponse{Success: true, IncidentID: incidentID})
}

// @Summary Upload evidence file
// @Description Upload one photo or video (max 10MB) to object storage under the incident ID
// @Tags Reports
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Photo or video"
// @Param incidentId formData string true "Incident ID"
// @Success 200 {object} UploadMediaResponse
// @Failure 400 {object} ErrorResponse "Missing file or incident ID, or file too large"
// @Failure 500 {object} ErrorResponse "Storage failure"
// @Router /upload-media [post]
func (h *Handler) uploadMedia(c *gin.Context) {
	log := h.logger.WithField("method", "uploadMedia")
	tooLarge := fmt.Sprintf("File size must not exceed %dMB", h.cfg.MaxUploadBytes/(1024*1024))

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.MaxUploadBytes+multipartOverhead)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			log.WithError(err).Warn("Upload body too large")
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: tooLarge})
			return
		}
		log.WithError(err).Warn("Missing file in upload form")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "File and incident ID are required"})
		return
	}
	incidentID := c.PostForm("incidentId")
	if incidentID == "" {
		log.Warn("Missing incident ID in upload form")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "File and incident ID are required"})
		return
	}
	if fileHeader.Size > h.cfg.MaxUploadBytes {
		log.WithField("file_size", fileHeader.Size).Warn("File too large")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: tooLarge})
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		log.WithError(err).Error("Failed to open uploaded file")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		log.WithError(err).Error("Failed to read uploaded file")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = mimetype.Detect(data).String()
	}

	file := &models.EvidenceFile{Name: fileHeader.Filename, ContentType: contentType, Data: data}
	result, err := h.uploadService.Upload(c.Request.Context(), file, incidentID)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		log.WithError(err).Error("Failed to upload file in service")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to upload file to storage"})
		return
	}

	c.JSON(http.StatusOK, UploadMediaResponse{Success: true, URL: result.URL, Path: result.Path})
}

// @Summary Submit traffic violation report
// @Description Persist the report. Must be called after the evidence file was uploaded.
// @Tags Reports
// @Accept json
// @Produce json
// @Param report body SubmitFormRequest true "Report"
// @Success 200 {object} SubmitFormResponse
// @Failure 400 {object} ErrorResponse "Missing or invalid field"
// @Failure 409 {object} ErrorResponse "Incident ID already exists"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /submit-form [post]
func (h *Handler) submitForm(c *gin.Context) {
	var input SubmitFormRequest
	log := h.logger.WithField("method", "submitForm")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && (typeErr.Field == "latitude" || typeErr.Field == "longitude") {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Latitude and longitude must be numbers"})
			return
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: validationMessage(err)})
		return
	}

	model := DTOToReportModel(input)
	if err := h.reportService.SubmitReport(c.Request.Context(), model); err != nil {
		switch {
		case errors.Is(err, service.ErrDuplicateIncident):
			c.JSON(http.StatusConflict, ErrorResponse{Error: "Incident ID already exists"})
		case errors.Is(err, service.ErrValidation):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		default:
			log.WithError(err).Error("Failed to submit report in service")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to submit report"})
		}
		return
	}

	c.JSON(http.StatusOK, SubmitFormResponse{Success: true, Data: ModelToReportResponse(model)})
}

// @Summary Get report by incident ID
// @Description Get a single report by its incident ID
// @Tags Reports
// @Produce json
// @Param incidentId path string true "Incident ID"
// @Success 200 {object} SubmitFormResponse
// @Failure 404 {object} ErrorResponse "Report not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /reports/{incidentId} [get]
func (h *Handler) getReport(c *gin.Context) {
	incidentID := c.Param("incidentId")
	log := h.logger.WithField("method", "getReport").WithField("incident_id", incidentID)

	report, err := h.reportService.GetReport(c.Request.Context(), incidentID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Report not found"})
			return
		}
		log.WithError(err).Error("Failed to get report from service")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, SubmitFormResponse{Success: true, Data: ModelToReportResponse(report)})
}

// @Summary Reverse geocode coordinates
// @Description Proxy to the reverse geocoding service; returns its JSON as is
// @Tags Location
// @Produce json
// @Param latitude query string true "Latitude"
// @Param longitude query string true "Longitude"
// @Success 200 {object} map[string]interface{} "Upstream geocoding result"
// @Failure 400 {object} ErrorResponse "Missing latitude or longitude"
// @Failure 500 {object} ErrorResponse "Failed to fetch location data"
// @Router /geocode [get]
func (h *Handler) geocode(c *gin.Context) {
	latitude := c.Query("latitude")
	longitude := c.Query("longitude")
	log := h.logger.WithField("method", "geocode")

	if latitude == "" || longitude == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Missing latitude or longitude"})
		return
	}

	body, err := h.geocoder.Reverse(c.Request.Context(), latitude, longitude)
	if err != nil {
		var upstreamErr *service.UpstreamError
		if errors.As(err, &upstreamErr) {
			c.JSON(upstreamErr.StatusCode, ErrorResponse{Error: upstreamErr.Error()})
			return
		}
		log.WithError(err).Error("Proxy geocoding error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch location data"})
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// @Summary Get application health status
// @Description Get health status of the application
// @Tags System
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string "Status OK"
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// validationMessage превращает первую ошибку валидатора в сообщение для пользователя
func validationMessage(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return "Invalid request body"
	}

	fe := validationErrs[0]
	switch fe.Tag() {
	case "required":
		return "Missing required field: " + fe.Field()
	case "max":
		return fmt.Sprintf("Field %s must not exceed %s characters", fe.Field(), fe.Param())
	case "len":
		return "Exactly one media URL is required"
	default:
		return "Invalid value for field: " + fe.Field()
	}
}
