// Package eligibility решает, нужно ли уведомлять пользователя об инциденте.
package eligibility

import (
	"math"
	"strings"
	"time"

	"github.com/shenikar/incident_notifier/internal/geo"
	"github.com/shenikar/incident_notifier/internal/models"
)

// Reason - причина отказа в уведомлении
type Reason string

const (
	ReasonNone                  Reason = ""
	ReasonMissingEndpoint       Reason = "missing_endpoint"
	ReasonNotificationsDisabled Reason = "notifications_disabled"
	ReasonQuietHours            Reason = "quiet_hours"
	ReasonCategoryMismatch      Reason = "category_mismatch"
	ReasonOutOfRange            Reason = "out_of_range"
)

// Reasons перечисляет причины отказа в порядке проверки
var Reasons = []Reason{
	ReasonMissingEndpoint,
	ReasonNotificationsDisabled,
	ReasonQuietHours,
	ReasonCategoryMismatch,
	ReasonOutOfRange,
}

// Policy - параметры радиуса для конкретного режима сканирования
type Policy struct {
	SearchRadiusMeters float64
	// CapToSearchRadius ограничивает радиус пользователя радиусом поиска (плановый проход)
	CapToSearchRadius bool
}

// Decision - результат проверки пары (пользователь, инцидент)
type Decision struct {
	Eligible       bool
	Reason         Reason
	DistanceMeters float64
}

// Filter - цепочка проверок с часами и часовым поясом для окна тишины
type Filter struct {
	location        *time.Location
	defaultRadiusKm float64
	now             func() time.Time
}

// NewFilter создает фильтр. now == nil означает time.Now
func NewFilter(location *time.Location, defaultRadiusKm float64, now func() time.Time) *Filter {
	if location == nil {
		location = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Filter{
		location:        location,
		defaultRadiusKm: defaultRadiusKm,
		now:             now,
	}
}

// IsEligible проверяет пользователя на текущий момент времени
func (f *Filter) IsEligible(user *models.UserSubscription, incident *models.Incident, policy Policy) Decision {
	return f.Evaluate(user, incident, policy, f.now())
}

// Evaluate применяет проверки по порядку и останавливается на первой неудачной.
// Результат зависит только от аргументов.
func (f *Filter) Evaluate(user *models.UserSubscription, incident *models.Incident, policy Policy, now time.Time) Decision {
	if !user.HasEndpoint() {
		return Decision{Reason: ReasonMissingEndpoint}
	}
	if !user.NotificationsEnabled {
		return Decision{Reason: ReasonNotificationsDisabled}
	}
	if InQuietHours(user.QuietHours, now.In(f.location)) {
		return Decision{Reason: ReasonQuietHours}
	}
	if !CategoriesMatch(user.Categories, incident.Categories) {
		return Decision{Reason: ReasonCategoryMismatch}
	}
	if !incident.Coordinates.Valid() {
		return Decision{Reason: ReasonOutOfRange, DistanceMeters: math.Inf(1)}
	}

	distance := geo.DistanceMeters(
		incident.Coordinates.Lat, incident.Coordinates.Lng,
		user.Location.Lat, user.Location.Lng,
	)
	if distance > f.EffectiveRadius(user, policy) {
		return Decision{Reason: ReasonOutOfRange, DistanceMeters: distance}
	}
	return Decision{Eligible: true, DistanceMeters: distance}
}

// EffectiveRadius возвращает радиус в метрах, в пределах которого пользователь уведомляется
func (f *Filter) EffectiveRadius(user *models.UserSubscription, policy Policy) float64 {
	radiusKm := user.RadiusKm
	if radiusKm <= 0 {
		radiusKm = f.defaultRadiusKm
	}
	radius := radiusKm * 1000
	if policy.CapToSearchRadius {
		radius = math.Min(radius, policy.SearchRadiusMeters)
	}
	return radius
}

// CategoriesMatch - хотя бы одна категория инцидента совпадает с категорией пользователя без учёта регистра.
// Пустой набор с любой стороны означает несовпадение.
func CategoriesMatch(userCategories, incidentCategories []string) bool {
	if len(userCategories) == 0 || len(incidentCategories) == 0 {
		return false
	}
	for _, ic := range incidentCategories {
		for _, uc := range userCategories {
			if strings.ToLower(ic) == strings.ToLower(uc) {
				return true
			}
		}
	}
	return false
}
