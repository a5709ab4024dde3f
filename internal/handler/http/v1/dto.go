package v1

import (
	"time"
)

// RunPassRequest DTO для запуска прохода уведомлений
// @Description DTO для запуска прохода уведомлений
type RunPassRequest struct {
	Mode string `json:"mode" validate:"required,oneof=scheduled wide"`
}

// FilterStatsResponse DTO со статистикой фильтрации по инциденту
// @Description DTO со статистикой фильтрации по инциденту
type FilterStatsResponse struct {
	UsersInBounds   int            `json:"users_in_bounds"`
	Rejected        map[string]int `json:"rejected"`
	AlreadyNotified int            `json:"already_notified"`
}

// IncidentDetailResponse DTO с итогами обработки одного инцидента
// @Description DTO с итогами обработки одного инцидента
type IncidentDetailResponse struct {
	IncidentID          string              `json:"incident_id"`
	Location            string              `json:"location"`
	Categories          []string            `json:"categories"`
	Skipped             bool                `json:"skipped,omitempty"`
	UsersInArea         int                 `json:"users_in_area"`
	UsersEligible       int                 `json:"users_eligible"`
	NotificationsSent   int                 `json:"notifications_sent"`
	NotificationsFailed int                 `json:"notifications_failed"`
	Duplicates          int                 `json:"duplicates"`
	TokensCleared       int                 `json:"tokens_cleared"`
	Filtering           FilterStatsResponse `json:"filtering"`
	Error               string              `json:"error,omitempty"`
}

// PassResponse DTO для ответа с итогами прохода
// @Description DTO для ответа с итогами прохода
type PassResponse struct {
	Mode                   string                   `json:"mode"`
	StartedAt              time.Time                `json:"started_at"`
	DurationMs             int64                    `json:"duration_ms"`
	IncidentsFound         int                      `json:"incidents_found"`
	IncidentsProcessed     int                      `json:"incidents_processed"`
	AlreadyProcessed       int                      `json:"already_processed"`
	IncidentsNoCoordinates int                      `json:"incidents_without_coordinates"`
	IncidentsFailed        int                      `json:"incidents_failed"`
	UsersScanned           int                      `json:"users_scanned"`
	UsersNotified          int                      `json:"users_notified"`
	Details                []IncidentDetailResponse `json:"details"`
}

// IncidentStatusResponse DTO со статусом обработки инцидента
// @Description DTO со статусом обработки инцидента
type IncidentStatusResponse struct {
	IncidentID    string    `json:"incident_id"`
	Success       bool      `json:"success"`
	Error         string    `json:"error,omitempty"`
	UsersInArea   int       `json:"users_in_area"`
	UsersEligible int       `json:"users_eligible"`
	UsersNotified int       `json:"users_notified"`
	Location      string    `json:"location"`
	Categories    []string  `json:"categories"`
	ProcessedAt   time.Time `json:"processed_at"`
}

// StatusResponse DTO для ответа со сводкой сервиса
// @Description DTO для ответа со сводкой сервиса
type StatusResponse struct {
	RecentIncidents    int                      `json:"recent_incidents"`
	ProcessedIncidents int                      `json:"processed_incidents"`
	PendingIncidents   int                      `json:"pending_incidents"`
	NotificationsSent  int64                    `json:"notifications_sent"`
	LastProcessedAt    *time.Time               `json:"last_processed_at,omitempty"`
	Statuses           []IncidentStatusResponse `json:"statuses"`
}
