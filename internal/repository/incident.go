package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/shenikar/incident_notifier/internal/models"
	"github.com/shenikar/incident_notifier/internal/service"
)

type IncidentRepository struct {
	db DB
}

func NewIncidentRepository(db DB) service.IncidentRepository {
	return &IncidentRepository{
		db: db,
	}
}

// ListObservedSince возвращает инциденты, наблюдавшиеся не раньше since, новые первыми
func (r *IncidentRepository) ListObservedSince(ctx context.Context, since time.Time) ([]*models.Incident, error) {
	query := `
		SELECT
			id,
			latitude,
			longitude,
			summary,
			descriptions,
			advice,
			categories,
			observed_at,
			location
		FROM incidents
		WHERE observed_at >= $1
		ORDER BY observed_at DESC;
	`
	rows, err := r.db.Query(ctx, query, since.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("failed to list incidents: %w", err)
	}
	defer rows.Close()

	incidents := make([]*models.Incident, 0)
	for rows.Next() {
		incident, err := scanIncident(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan incident row: %w", err)
		}
		incidents = append(incidents, incident)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return incidents, nil
}

func scanIncident(row pgx.Row) (*models.Incident, error) {
	var (
		incident models.Incident
		lat, lng *float64
	)
	err := row.Scan(
		&incident.ID,
		&lat,
		&lng,
		&incident.Summary,
		&incident.Descriptions,
		&incident.Advice,
		&incident.Categories,
		&incident.ObservedAt,
		&incident.LocationLabel,
	)
	if err != nil {
		return nil, err
	}
	incident.Coordinates = coordinates(lat, lng)
	return &incident, nil
}

// coordinates собирает точку из nullable колонок; отсутствие любой из них - нет координат
func coordinates(lat, lng *float64) *models.Coordinates {
	if lat == nil || lng == nil {
		return nil
	}
	return &models.Coordinates{Lat: *lat, Lng: *lng}
}
