package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationOutcome - результат попытки доставки
type NotificationOutcome string

const (
	// OutcomePending - получатель захвачен текущим проходом, отправка ещё не завершена
	OutcomePending NotificationOutcome = "pending"
	OutcomeSent    NotificationOutcome = "sent"
	OutcomeFailed  NotificationOutcome = "failed"
)

// NotificationRecord - запись о попытке уведомить пользователя об инциденте.
// Успешная запись для пары (user, incident) - единственный источник истины для дедупликации.
type NotificationRecord struct {
	ID             uuid.UUID           `json:"id" bson:"_id"`
	UserID         string              `json:"user_id" bson:"user_id"`
	IncidentID     string              `json:"incident_id" bson:"incident_id"`
	Outcome        NotificationOutcome `json:"outcome" bson:"outcome"`
	DistanceMeters float64             `json:"distance_meters" bson:"distance_meters"`
	Error          string              `json:"error,omitempty" bson:"error,omitempty"`
	ErrorCode      string              `json:"error_code,omitempty" bson:"error_code,omitempty"`
	CreatedAt      time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at" bson:"updated_at"`
}

// IncidentProcessingStatus - отметка о том, что инцидент обработан и не должен сканироваться повторно
type IncidentProcessingStatus struct {
	ID            uuid.UUID `json:"id" bson:"_id"`
	IncidentID    string    `json:"incident_id" bson:"incident_id"`
	Processed     bool      `json:"processed" bson:"processed"`
	Success       bool      `json:"success" bson:"success"`
	Error         string    `json:"error,omitempty" bson:"error,omitempty"`
	UsersInArea   int       `json:"users_in_area" bson:"users_in_area"`
	UsersEligible int       `json:"users_eligible" bson:"users_eligible"`
	UsersNotified int       `json:"users_notified" bson:"users_notified"`
	Location      string    `json:"location" bson:"location"`
	Categories    []string  `json:"categories" bson:"categories"`
	ProcessedAt   time.Time `json:"processed_at" bson:"processed_at"`
}
