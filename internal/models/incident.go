package models

import (
	"errors"
	"time"
)

// ErrMissingCoordinates - инцидент не содержит координат и не может участвовать в поиске
var ErrMissingCoordinates = errors.New("missing coordinates")

// Coordinates - точка на поверхности Земли в градусах
type Coordinates struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

// Valid проверяет, что координаты лежат в допустимых диапазонах
func (c *Coordinates) Valid() bool {
	if c == nil {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// Incident - сводный инцидент, созданный внешним процессом суммаризации.
// Для движка уведомлений он неизменяем.
type Incident struct {
	ID            string       `json:"id" bson:"_id"`
	Coordinates   *Coordinates `json:"coordinates,omitempty" bson:"coordinates,omitempty"`
	Summary       string       `json:"summary" bson:"summary"`
	Descriptions  []string     `json:"descriptions,omitempty" bson:"descriptions,omitempty"`
	Advice        string       `json:"advice,omitempty" bson:"advice,omitempty"`
	Categories    []string     `json:"categories" bson:"categories"`
	ObservedAt    int64        `json:"timestamp" bson:"timestamp"` // epoch millis
	LocationLabel string       `json:"location" bson:"location"`
}

// Validate проверяет обязательные поля инцидента
func (i *Incident) Validate() error {
	if i.ID == "" {
		return errors.New("incident id is required")
	}
	if !i.Coordinates.Valid() {
		return ErrMissingCoordinates
	}
	return nil
}

// ObservedTime возвращает время наблюдения инцидента
func (i *Incident) ObservedTime() time.Time {
	return time.UnixMilli(i.ObservedAt)
}

// Description возвращает основной текст инцидента с откатом на summary
func (i *Incident) Description() string {
	for _, d := range i.Descriptions {
		if d != "" {
			return d
		}
	}
	if i.Summary != "" {
		return i.Summary
	}
	return "New incident reported in your area"
}

// Location возвращает подпись места с откатом на значение по умолчанию
func (i *Incident) Location() string {
	if i.LocationLabel == "" {
		return "Unknown location"
	}
	return i.LocationLabel
}
