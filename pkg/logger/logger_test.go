package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONWithServiceField(t *testing.T) {
	log := New("incident_notifier", "debug", "json")
	var buf bytes.Buffer
	log.SetOutput(&buf)

	log.WithField("incident_id", "inc-1").Debug("processing")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "incident_notifier", entry["service"])
	assert.Equal(t, "inc-1", entry["incident_id"])
	assert.Equal(t, "processing", entry["msg"])
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	log := New("", "verbose", "text")

	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, log.Formatter)
}
