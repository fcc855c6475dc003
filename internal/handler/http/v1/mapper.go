package v1

import "github.com/shenikar/traffic_violation_reporting/internal/models"

// DTOToReportModel преобразует DTO сохранения в доменную модель.
// Вызывается только после валидации, координаты не nil.
func DTOToReportModel(dto SubmitFormRequest) *models.Report {
	return &models.Report{
		IncidentID:  dto.IncidentID,
		Description: dto.Description,
		City:        dto.City,
		State:       dto.State,
		Latitude:    *dto.Latitude,
		Longitude:   *dto.Longitude,
		MediaURLs:   dto.MediaURLs,
	}
}

// ModelToReportResponse преобразует доменную модель в DTO для ответа
func ModelToReportResponse(model *models.Report) *ReportResponse {
	return &ReportResponse{
		ID:          model.ID,
		IncidentID:  model.IncidentID,
		Description: model.Description,
		City:        model.City,
		State:       model.State,
		Latitude:    model.Latitude,
		Longitude:   model.Longitude,
		MediaURLs:   model.MediaURLs,
		Status:      string(model.Status),
		CreatedAt:   model.CreatedAt,
	}
}
