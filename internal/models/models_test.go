package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScanMode_Valid(t *testing.T) {
	assert.True(t, ScanScheduled.Valid())
	assert.True(t, ScanWide.Valid())
	assert.False(t, ScanMode("hourly").Valid())
	assert.False(t, ScanMode("").Valid())
}

func TestIncident_ObservedTime(t *testing.T) {
	observed := time.Date(2025, 3, 14, 11, 30, 0, 0, time.UTC)
	incident := &Incident{ID: "inc-1", ObservedAt: observed.UnixMilli()}

	assert.True(t, observed.Equal(incident.ObservedTime()))
}

func TestIncident_Validate(t *testing.T) {
	assert.Error(t, (&Incident{Coordinates: &Coordinates{}}).Validate())
	assert.ErrorIs(t, (&Incident{ID: "inc-1"}).Validate(), ErrMissingCoordinates)
	assert.ErrorIs(t, (&Incident{ID: "inc-1", Coordinates: &Coordinates{Lat: 91}}).Validate(), ErrMissingCoordinates)
	// (0, 0) - допустимая точка
	assert.NoError(t, (&Incident{ID: "inc-1", Coordinates: &Coordinates{}}).Validate())
}
