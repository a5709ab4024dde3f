package v1

import "github.com/shenikar/incident_notifier/internal/models"

// ModelToPassResponse преобразует итог прохода в DTO для ответа
func ModelToPassResponse(model *models.PassResult) *PassResponse {
	details := make([]IncidentDetailResponse, len(model.Details))
	for i, d := range model.Details {
		rejected := make(map[string]int, len(d.Filtering.Rejected))
		for reason, count := range d.Filtering.Rejected {
			rejected[reason] = count
		}
		details[i] = IncidentDetailResponse{
			IncidentID:          d.IncidentID,
			Location:            d.Location,
			Categories:          d.Categories,
			Skipped:             d.Skipped,
			UsersInArea:         d.UsersInArea,
			UsersEligible:       d.UsersEligible,
			NotificationsSent:   d.NotificationsSent,
			NotificationsFailed: d.NotificationsFailed,
			Duplicates:          d.Duplicates,
			TokensCleared:       d.TokensCleared,
			Filtering: FilterStatsResponse{
				UsersInBounds:   d.Filtering.UsersInBounds,
				Rejected:        rejected,
				AlreadyNotified: d.Filtering.AlreadyNotified,
			},
			Error: d.Error,
		}
	}

	return &PassResponse{
		Mode:                   string(model.Mode),
		StartedAt:              model.StartedAt,
		DurationMs:             model.Duration.Milliseconds(),
		IncidentsFound:         model.IncidentsFound,
		IncidentsProcessed:     model.IncidentsProcessed,
		AlreadyProcessed:       model.AlreadyProcessed,
		IncidentsNoCoordinates: model.IncidentsNoCoordinates,
		IncidentsFailed:        model.IncidentsFailed,
		UsersScanned:           model.UsersScanned,
		UsersNotified:          model.UsersNotified,
		Details:                details,
	}
}

// ModelToStatusResponse преобразует сводку сервиса в DTO для ответа
func ModelToStatusResponse(model *models.ServiceStatus) *StatusResponse {
	statuses := make([]IncidentStatusResponse, len(model.Statuses))
	for i, st := range model.Statuses {
		statuses[i] = IncidentStatusResponse{
			IncidentID:    st.IncidentID,
			Success:       st.Success,
			Error:         st.Error,
			UsersInArea:   st.UsersInArea,
			UsersEligible: st.UsersEligible,
			UsersNotified: st.UsersNotified,
			Location:      st.Location,
			Categories:    st.Categories,
			ProcessedAt:   st.ProcessedAt,
		}
	}

	return &StatusResponse{
		RecentIncidents:    model.RecentIncidents,
		ProcessedIncidents: model.ProcessedIncidents,
		PendingIncidents:   model.PendingIncidents,
		NotificationsSent:  model.NotificationsSent,
		LastProcessedAt:    model.LastProcessedAt,
		Statuses:           statuses,
	}
}
