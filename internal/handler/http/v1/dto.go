package v1

import (
	"time"

	"github.com/google/uuid"
)

// SubmitFormRequest DTO для сохранения заявления
// @Description DTO для сохранения заявления о нарушении
type SubmitFormRequest struct {
	IncidentID  string   `json:"incident_id" validate:"required"`
	Description string   `json:"description" validate:"required,max=1000"`
	City        string   `json:"city" validate:"required"`
	State       string   `json:"state" validate:"required"`
	Latitude    *float64 `json:"latitude" validate:"required,latitude"`
	Longitude   *float64 `json:"longitude" validate:"required,longitude"`
	MediaURLs   []string `json:"media_urls" validate:"required,len=1,dive,url"`
}

// ReportResponse DTO для ответа с заявлением
// @Description DTO для ответа с заявлением о нарушении
type ReportResponse struct {
	ID          uuid.UUID `json:"id"`
	IncidentID  string    `json:"incident_id"`
	Description string    `json:"description"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	MediaURLs   []string  `json:"media_urls"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// SubmitFormResponse DTO для ответа на сохранение заявления
// @Description DTO для ответа на сохранение заявления
type SubmitFormResponse struct {
	Success bool            `json:"success"`
	Data    *ReportResponse `json:"data"`
}

// IncidentIDResponse DTO для ответа с новым кодом инцидента
// @Description DTO для ответа с новым кодом инцидента
type IncidentIDResponse struct {
	Success    bool   `json:"success"`
	IncidentID string `json:"incidentId"`
}

// UploadMediaResponse DTO для ответа на загрузку файла
// @Description DTO для ответа на загрузку файла
type UploadMediaResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
	Path    string `json:"path"`
}

// ErrorResponse DTO для ответа с ошибкой
// @Description DTO для ответа с ошибкой
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
