package models

import (
	"time"

	"github.com/google/uuid"
)

// ReportStatus - статус обработки заявления о нарушении
type ReportStatus string

const (
	StatusPending  ReportStatus = "pending"
	StatusReviewed ReportStatus = "reviewed"
	StatusResolved ReportStatus = "resolved"
	StatusRejected ReportStatus = "rejected"
)

// MaxDescriptionLength - максимальная длина описания нарушения в символах
const MaxDescriptionLength = 1000

// Report - заявление о нарушении ПДД, одна строка в traffic_violations
type Report struct {
	ID          uuid.UUID    `json:"id"`
	IncidentID  string       `json:"incident_id"`
	Description string       `json:"description"`
	City        string       `json:"city"`
	State       string       `json:"state"`
	Latitude    float64      `json:"latitude"`
	Longitude   float64      `json:"longitude"`
	MediaURLs   []string     `json:"media_urls"`
	Status      ReportStatus `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
}
