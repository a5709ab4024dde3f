package service

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shenikar/incident_notifier/internal/models"
	"github.com/shenikar/incident_notifier/internal/push"
)

const (
	maxBodyDescription = 120
	defaultEmoji       = "📍"
	notificationType   = "incident_alert"
)

var categoryEmoji = map[string]string{
	"traffic":        "🚦",
	"emergency":      "🚨",
	"infrastructure": "🏗️",
	"events":         "📅",
	"weather":        "🌦️",
	"safety":         "⚠️",
	"construction":   "🚧",
	"accident":       "🚗",
	"fire":           "🔥",
	"medical":        "🏥",
}

// BuildMessage формирует push-сообщение для получателя на заданном расстоянии
func BuildMessage(incident *models.Incident, distanceMeters float64, link string, now time.Time) *push.Message {
	categories := formatCategories(incident.Categories)
	description := truncate(incident.Description(), maxBodyDescription)
	location := incident.Location()
	distance := int64(math.Round(distanceMeters))

	data := map[string]string{
		"incidentId":  incident.ID,
		"type":        notificationType,
		"timestamp":   strconv.FormatInt(now.UnixMilli(), 10),
		"distance":    strconv.FormatInt(distance, 10),
		"location":    location,
		"categories":  strings.Join(incident.Categories, ","),
		"summary":     incident.Summary,
		"description": incident.Description(),
		"advice":      incident.Advice,
	}
	if link != "" {
		data["link"] = link
		data["url"] = link
	}
	if incident.Coordinates != nil {
		if raw, err := json.Marshal(incident.Coordinates); err == nil {
			data["coordinates"] = string(raw)
		}
	}

	return &push.Message{
		Title: fmt.Sprintf("%s Incident Alert - %s", emojiFor(incident.Categories), categories),
		Body:  fmt.Sprintf("%s\n📍 %s (%dm away)", description, location, distance),
		Link:  link,
		Data:  data,
	}
}

// emojiFor - эмодзи первой известной категории
func emojiFor(categories []string) string {
	for _, c := range categories {
		if emoji, ok := categoryEmoji[strings.ToLower(strings.TrimSpace(c))]; ok {
			return emoji
		}
	}
	return defaultEmoji
}

func formatCategories(categories []string) string {
	formatted := make([]string, 0, len(categories))
	for _, c := range categories {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(c)
		formatted = append(formatted, strings.ToUpper(string(r))+strings.ToLower(c[size:]))
	}
	if len(formatted) == 0 {
		return "General"
	}
	return strings.Join(formatted, ", ")
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "..."
}
