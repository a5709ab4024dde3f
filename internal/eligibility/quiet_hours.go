package eligibility

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shenikar/incident_notifier/internal/models"
)

// parseClock разбирает время в формате HH:MM в минуты от полуночи
func parseClock(value string) (int, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", value)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in %q", value)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in %q", value)
	}
	return hour*60 + minute, nil
}

// InQuietHours сообщает, попадает ли now в окно тишины.
// Если start < end, окно [start, end); иначе окно переходит через полночь.
// Пустое или некорректное окно считается отсутствующим.
func InQuietHours(window *models.QuietHours, now time.Time) bool {
	if window == nil || window.Start == "" || window.End == "" {
		return false
	}
	start, err := parseClock(window.Start)
	if err != nil {
		return false
	}
	end, err := parseClock(window.End)
	if err != nil {
		return false
	}

	current := now.Hour()*60 + now.Minute()
	if start < end {
		return current >= start && current < end
	}
	return current >= start || current < end
}
