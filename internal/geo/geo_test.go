package geo

import (
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrecisionForRadius(t *testing.T) {
	assert.Equal(t, uint(4), PrecisionForRadius(10000))
	assert.Equal(t, uint(4), PrecisionForRadius(5001))
	assert.Equal(t, uint(5), PrecisionForRadius(5000))
	assert.Equal(t, uint(5), PrecisionForRadius(2000))
	assert.Equal(t, uint(6), PrecisionForRadius(1000))
	assert.Equal(t, uint(6), PrecisionForRadius(300))
}

func TestCoveringPrefixes_CenterAndNeighbors(t *testing.T) {
	prefixes := CoveringPrefixes(12.9716, 77.5946, 2000)

	require.Len(t, prefixes, 9)
	center := Encode(12.9716, 77.5946)[:5]
	assert.Contains(t, prefixes, center)
	for i, p := range prefixes {
		assert.Len(t, p, 5)
		if i > 0 {
			assert.Less(t, prefixes[i-1], p, "prefixes must be sorted and unique")
		}
	}
}

func TestCoveringPrefixes_NonPositiveRadius(t *testing.T) {
	assert.Empty(t, CoveringPrefixes(12.9716, 77.5946, 0))
	assert.Empty(t, CoveringPrefixes(12.9716, 77.5946, -5))
}

func TestPrefixRange(t *testing.T) {
	start, end := PrefixRange("tdr1w")

	assert.Equal(t, "tdr1w", start)
	assert.True(t, strings.HasPrefix(end, "tdr1w"))

	inside := "tdr1w" + "zzzzzzz"
	assert.True(t, inside >= start && inside < end)
	assert.False(t, "tdr1x" >= start && "tdr1x" < end)
}

// destination возвращает точку на заданном расстоянии и азимуте от исходной
func destination(lat, lng, distance, bearing float64) (float64, float64) {
	delta := distance / EarthRadiusMeters
	theta := toRadians(bearing)
	phi1 := toRadians(lat)
	lambda1 := toRadians(lng)

	phi2 := math.Asin(math.Sin(phi1)*math.Cos(delta) + math.Cos(phi1)*math.Sin(delta)*math.Cos(theta))
	lambda2 := lambda1 + math.Atan2(math.Sin(theta)*math.Sin(delta)*math.Cos(phi1), math.Cos(delta)-math.Sin(phi1)*math.Sin(phi2))

	return phi2 * 180 / math.Pi, lambda2 * 180 / math.Pi
}

func TestCoveringPrefixes_NoFalseNegatives(t *testing.T) {
	centers := [][2]float64{
		{12.9716, 77.5946},
		{48.8566, 2.3522},
		{-33.8688, 151.2093},
	}
	radii := []float64{500, 2000, 10000}
	rnd := rand.New(rand.NewSource(42))

	for _, c := range centers {
		for _, radius := range radii {
			prefixes := CoveringPrefixes(c[0], c[1], radius)
			for i := 0; i < 500; i++ {
				d := rnd.Float64() * radius
				lat, lng := destination(c[0], c[1], d, rnd.Float64()*360)
				require.LessOrEqual(t, DistanceMeters(c[0], c[1], lat, lng), radius+1e-6)

				hash := Encode(lat, lng)
				covered := false
				for _, p := range prefixes {
					start, end := PrefixRange(p)
					if hash >= start && hash < end {
						covered = true
						break
					}
				}
				assert.True(t, covered, "point %.5f,%.5f at %.0fm from %v not covered for radius %.0f", lat, lng, d, c, radius)
			}
		}
	}
}

func TestDistanceMeters(t *testing.T) {
	// ~585 м по долготе на широте Бангалора
	d := DistanceMeters(12.9716, 77.5946, 12.9716, 77.6000)
	assert.InDelta(t, 585, d, 5)

	assert.Zero(t, DistanceMeters(12.9716, 77.5946, 12.9716, 77.5946))

	// Один градус широты ~111.19 км
	assert.InDelta(t, 111195, DistanceMeters(0, 0, 1, 0), 10)
}

func TestDistanceMeters_Symmetric(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	for i := 0; i < 1000; i++ {
		lat1, lng1 := rnd.Float64()*180-90, rnd.Float64()*360-180
		lat2, lng2 := rnd.Float64()*180-90, rnd.Float64()*360-180

		ab := DistanceMeters(lat1, lng1, lat2, lng2)
		ba := DistanceMeters(lat2, lng2, lat1, lng1)
		assert.InDelta(t, ab, ba, 1e-6)
	}
}
