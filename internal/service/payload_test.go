package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildMessage(t *testing.T) {
	incident := testIncident("inc-1")
	incident.Categories = []string{"FIRE", "medical"}
	incident.Advice = "Avoid the area"

	msg := BuildMessage(incident, 585.4, "https://example.org", testNow)

	assert.Equal(t, "🔥 Incident Alert - Fire, Medical", msg.Title)
	assert.Equal(t, "Building fire near MG Road\n📍 MG Road (585m away)", msg.Body)
	assert.Equal(t, "https://example.org", msg.Link)
	assert.Equal(t, "585", msg.Data["distance"])
	assert.Equal(t, "FIRE,medical", msg.Data["categories"])
	assert.Equal(t, "Avoid the area", msg.Data["advice"])
	assert.Equal(t, `{"lat":12.9716,"lng":77.5946}`, msg.Data["coordinates"])
	assert.Equal(t, "https://example.org", msg.Data["url"])
}

func TestBuildMessage_TruncatesLongDescription(t *testing.T) {
	incident := testIncident("inc-1")
	incident.Descriptions = []string{strings.Repeat("д", 200)}

	msg := BuildMessage(incident, 10, "", testNow)

	firstLine := strings.SplitN(msg.Body, "\n", 2)[0]
	assert.Equal(t, strings.Repeat("д", 120)+"...", firstLine)
	assert.Equal(t, strings.Repeat("д", 200), msg.Data["description"])
	assert.NotContains(t, msg.Data, "link")
}

func TestBuildMessage_UnknownCategory(t *testing.T) {
	incident := testIncident("inc-1")
	incident.Categories = []string{"other"}
	incident.LocationLabel = ""

	msg := BuildMessage(incident, 10, "", testNow)

	assert.Equal(t, "📍 Incident Alert - Other", msg.Title)
	assert.Contains(t, msg.Body, "Unknown location")
}

func TestBuildMessage_CategoryEmoji(t *testing.T) {
	tests := []struct {
		categories []string
		title      string
	}{
		{[]string{"traffic"}, "🚦 Incident Alert - Traffic"},
		{[]string{"Emergency"}, "🚨 Incident Alert - Emergency"},
		{[]string{"infrastructure"}, "🏗️ Incident Alert - Infrastructure"},
		{[]string{"events"}, "📅 Incident Alert - Events"},
		{[]string{"weather"}, "🌦️ Incident Alert - Weather"},
		{[]string{"safety"}, "⚠️ Incident Alert - Safety"},
		{[]string{"construction"}, "🚧 Incident Alert - Construction"},
		{[]string{"accident"}, "🚗 Incident Alert - Accident"},
		{[]string{"fire"}, "🔥 Incident Alert - Fire"},
		{[]string{"MEDICAL"}, "🏥 Incident Alert - Medical"},
		// первая известная категория определяет эмодзи
		{[]string{"protest", "weather", "fire"}, "🌦️ Incident Alert - Protest, Weather, Fire"},
		{nil, "📍 Incident Alert - General"},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			incident := testIncident("inc-1")
			incident.Categories = tt.categories

			msg := BuildMessage(incident, 100, "", testNow)

			assert.Equal(t, tt.title, msg.Title)
		})
	}
}
