package geo

import "math"

// EarthRadiusMeters - средний радиус Земли
const EarthRadiusMeters = 6371000.0

// DistanceMeters вычисляет расстояние по дуге большого круга (формула Haversine)
func DistanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	phi1 := toRadians(lat1)
	phi2 := toRadians(lat2)
	dPhi := toRadians(lat2 - lat1)
	dLambda := toRadians(lng2 - lng1)

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*
			math.Sin(dLambda/2)*math.Sin(dLambda/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

func toRadians(degrees float64) float64 {
	return degrees * (math.Pi / 180)
}
