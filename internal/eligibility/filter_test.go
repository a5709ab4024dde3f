package eligibility

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shenikar/incident_notifier/internal/models"
)

var noon = time.Date(2025, 7, 20, 12, 0, 0, 0, time.UTC)

func newTestFilter() *Filter {
	return NewFilter(time.UTC, 2, func() time.Time { return noon })
}

func testIncident() *models.Incident {
	return &models.Incident{
		ID:          "incident-1",
		Coordinates: &models.Coordinates{Lat: 12.9716, Lng: 77.5946},
		Categories:  []string{"traffic"},
		ObservedAt:  noon.UnixMilli(),
	}
}

func testUser() *models.UserSubscription {
	return &models.UserSubscription{
		ID:                   "user-1",
		Location:             &models.Coordinates{Lat: 12.9716, Lng: 77.6000},
		RadiusKm:             2,
		Categories:           []string{"traffic"},
		NotificationsEnabled: true,
		DeviceToken:          "token-1",
	}
}

var scheduled = Policy{SearchRadiusMeters: 2000, CapToSearchRadius: true}

func TestIsEligible_NearbyMatchingUser(t *testing.T) {
	decision := newTestFilter().IsEligible(testUser(), testIncident(), scheduled)

	assert.True(t, decision.Eligible)
	assert.Equal(t, ReasonNone, decision.Reason)
	assert.InDelta(t, 585, decision.DistanceMeters, 5)
}

func TestIsEligible_RejectionReasons(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(u *models.UserSubscription)
		want   Reason
	}{
		{"no token", func(u *models.UserSubscription) { u.DeviceToken = "" }, ReasonMissingEndpoint},
		{"no location", func(u *models.UserSubscription) { u.Location = nil }, ReasonMissingEndpoint},
		{"bad location", func(u *models.UserSubscription) { u.Location = &models.Coordinates{Lat: 120, Lng: 0} }, ReasonMissingEndpoint},
		{"disabled", func(u *models.UserSubscription) { u.NotificationsEnabled = false }, ReasonNotificationsDisabled},
		{"quiet hours", func(u *models.UserSubscription) {
			u.QuietHours = &models.QuietHours{Start: "11:00", End: "13:00"}
		}, ReasonQuietHours},
		{"other category", func(u *models.UserSubscription) { u.Categories = []string{"weather"} }, ReasonCategoryMismatch},
		{"no categories", func(u *models.UserSubscription) { u.Categories = nil }, ReasonCategoryMismatch},
		{"15 km away", func(u *models.UserSubscription) { u.Location = &models.Coordinates{Lat: 13.1065, Lng: 77.5946} }, ReasonOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := testUser()
			tt.mutate(user)

			decision := newTestFilter().IsEligible(user, testIncident(), scheduled)

			assert.False(t, decision.Eligible)
			assert.Equal(t, tt.want, decision.Reason)
		})
	}
}

func TestIsEligible_ShortCircuitsInOrder(t *testing.T) {
	user := testUser()
	user.NotificationsEnabled = false
	user.Categories = []string{"weather"}
	user.DeviceToken = ""

	decision := newTestFilter().IsEligible(user, testIncident(), scheduled)

	assert.Equal(t, ReasonMissingEndpoint, decision.Reason)
}

func TestIsEligible_Deterministic(t *testing.T) {
	f := newTestFilter()
	user := testUser()
	user.QuietHours = &models.QuietHours{Start: "22:00", End: "06:00"}

	first := f.IsEligible(user, testIncident(), scheduled)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, f.IsEligible(user, testIncident(), scheduled))
	}
}

func TestIsEligible_EmptyIncidentCategories(t *testing.T) {
	incident := testIncident()
	incident.Categories = nil

	decision := newTestFilter().IsEligible(testUser(), incident, scheduled)

	assert.Equal(t, ReasonCategoryMismatch, decision.Reason)
}

func TestCategoriesMatch_CaseInsensitive(t *testing.T) {
	assert.True(t, CategoriesMatch([]string{"Traffic"}, []string{"TRAFFIC"}))
	assert.True(t, CategoriesMatch([]string{"weather", "fire"}, []string{"Fire"}))
	assert.False(t, CategoriesMatch([]string{"fires"}, []string{"fire"}))
	assert.False(t, CategoriesMatch([]string{}, []string{"fire"}))
}

func TestEffectiveRadius(t *testing.T) {
	f := newTestFilter()
	user := testUser()
	user.RadiusKm = 5

	assert.Equal(t, 2000.0, f.EffectiveRadius(user, scheduled))
	assert.Equal(t, 5000.0, f.EffectiveRadius(user, Policy{SearchRadiusMeters: 10000}))

	user.RadiusKm = 0
	assert.Equal(t, 2000.0, f.EffectiveRadius(user, Policy{SearchRadiusMeters: 10000}))
}

func TestIsEligible_WideScanUsesUserRadius(t *testing.T) {
	user := testUser()
	user.RadiusKm = 5
	// ~4 км к северу
	user.Location = &models.Coordinates{Lat: 13.0076, Lng: 77.5946}

	f := newTestFilter()
	assert.Equal(t, ReasonOutOfRange, f.IsEligible(user, testIncident(), scheduled).Reason)
	assert.True(t, f.IsEligible(user, testIncident(), Policy{SearchRadiusMeters: 10000}).Eligible)
}

func TestIsEligible_QuietHoursUseFilterLocation(t *testing.T) {
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	// 12:00 UTC = 17:30 в Калькутте
	f := NewFilter(kolkata, 2, func() time.Time { return noon })
	user := testUser()
	user.QuietHours = &models.QuietHours{Start: "17:00", End: "18:00"}

	assert.Equal(t, ReasonQuietHours, f.IsEligible(user, testIncident(), scheduled).Reason)
	assert.True(t, newTestFilter().IsEligible(user, testIncident(), scheduled).Eligible)
}
