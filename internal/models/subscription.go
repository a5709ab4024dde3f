package models

// QuietHours - окно тишины в формате HH:MM, может переходить через полночь
type QuietHours struct {
	Start string `json:"start" bson:"start"`
	End   string `json:"end" bson:"end"`
}

// UserSubscription - подписка пользователя на уведомления об инцидентах рядом с ним
type UserSubscription struct {
	ID                   string       `json:"id"`
	Location             *Coordinates `json:"location,omitempty"`
	Geohash              string       `json:"geohash"`
	RadiusKm             float64      `json:"radius_km"`
	Categories           []string     `json:"categories"`
	NotificationsEnabled bool         `json:"notifications_enabled"`
	QuietHours           *QuietHours  `json:"quiet_hours,omitempty"`
	DeviceToken          string       `json:"-"`
}

// HasEndpoint - у пользователя есть токен устройства и корректные координаты
func (u *UserSubscription) HasEndpoint() bool {
	return u.DeviceToken != "" && u.Location.Valid()
}
