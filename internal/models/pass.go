package models

import "time"

// ScanMode - режим прохода уведомлений
type ScanMode string

const (
	// ScanScheduled - плановый проход: эффективный радиус ограничен радиусом поиска
	ScanScheduled ScanMode = "scheduled"
	// ScanWide - проход по запросу: учитывается только радиус пользователя
	ScanWide ScanMode = "wide"
)

// Valid проверяет, что режим известен
func (m ScanMode) Valid() bool {
	return m == ScanScheduled || m == ScanWide
}

// FilterStats - счётчики фильтрации пользователей для одного инцидента
type FilterStats struct {
	UsersInBounds   int            `json:"users_in_bounds"`
	Rejected        map[string]int `json:"rejected"`
	AlreadyNotified int            `json:"already_notified"`
}

// IncidentDetail - итог обработки одного инцидента в рамках прохода
type IncidentDetail struct {
	IncidentID          string      `json:"incident_id"`
	Location            string      `json:"location"`
	Categories          []string    `json:"categories"`
	Skipped             bool        `json:"skipped,omitempty"`
	UsersInArea         int         `json:"users_in_area"`
	UsersEligible       int         `json:"users_eligible"`
	NotificationsSent   int         `json:"notifications_sent"`
	NotificationsFailed int         `json:"notifications_failed"`
	Duplicates          int         `json:"duplicates"`
	TokensCleared       int         `json:"tokens_cleared"`
	Filtering           FilterStats `json:"filtering"`
	Error               string      `json:"error,omitempty"`
}

// PassResult - итог одного прохода уведомлений
type PassResult struct {
	Mode                   ScanMode         `json:"mode"`
	StartedAt              time.Time        `json:"started_at"`
	Duration               time.Duration    `json:"duration"`
	IncidentsFound         int              `json:"incidents_found"`
	IncidentsProcessed     int              `json:"incidents_processed"`
	AlreadyProcessed       int              `json:"already_processed"`
	IncidentsNoCoordinates int              `json:"incidents_without_coordinates"`
	IncidentsFailed        int              `json:"incidents_failed"`
	UsersScanned           int              `json:"users_scanned"`
	UsersNotified          int              `json:"users_notified"`
	Details                []IncidentDetail `json:"details"`
}

// ServiceStatus - сводка для операционного эндпоинта статуса
type ServiceStatus struct {
	RecentIncidents    int                         `json:"recent_incidents"`
	ProcessedIncidents int                         `json:"processed_incidents"`
	PendingIncidents   int                         `json:"pending_incidents"`
	NotificationsSent  int64                       `json:"notifications_sent"`
	LastProcessedAt    *time.Time                  `json:"last_processed_at,omitempty"`
	Statuses           []*IncidentProcessingStatus `json:"statuses"`
}
