package eligibility

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/shenikar/incident_notifier/internal/models"
)

func at(hour, minute int) time.Time {
	return time.Date(2025, 7, 20, hour, minute, 0, 0, time.UTC)
}

func TestInQuietHours_WrapsMidnight(t *testing.T) {
	window := &models.QuietHours{Start: "22:00", End: "06:00"}

	assert.True(t, InQuietHours(window, at(23, 30)))
	assert.True(t, InQuietHours(window, at(5, 0)))
	assert.True(t, InQuietHours(window, at(22, 0)))
	assert.False(t, InQuietHours(window, at(6, 0)))
	assert.False(t, InQuietHours(window, at(12, 0)))
}

func TestInQuietHours_SameDay(t *testing.T) {
	window := &models.QuietHours{Start: "09:30", End: "17:00"}

	assert.True(t, InQuietHours(window, at(9, 30)))
	assert.True(t, InQuietHours(window, at(16, 59)))
	assert.False(t, InQuietHours(window, at(17, 0)))
	assert.False(t, InQuietHours(window, at(9, 29)))
}

func TestInQuietHours_MissingOrInvalid(t *testing.T) {
	assert.False(t, InQuietHours(nil, at(23, 0)))
	assert.False(t, InQuietHours(&models.QuietHours{Start: "22:00"}, at(23, 0)))
	assert.False(t, InQuietHours(&models.QuietHours{Start: "late", End: "06:00"}, at(23, 0)))
	assert.False(t, InQuietHours(&models.QuietHours{Start: "25:00", End: "06:00"}, at(23, 0)))
}
