// Package geo содержит адаптер геохэш-индекса и расчёт расстояний.
//
// Поиск кандидатов намеренно избыточен: ячейки геохэша покрывают больше,
// чем реальный круг, а точная фильтрация выполняется по Haversine.
package geo

import (
	"sort"

	"github.com/mmcloughlin/geohash"
)

// PrefixRangeEnd - суффикс верхней границы диапазона строкового индекса
const PrefixRangeEnd = "\uf8ff"

// PrecisionForRadius выбирает точность геохэша по радиусу поиска:
// чем больше радиус, тем крупнее ячейка.
func PrecisionForRadius(radiusMeters float64) uint {
	switch {
	case radiusMeters > 5000:
		return 4
	case radiusMeters > 1000:
		return 5
	default:
		return 6
	}
}

// CoveringPrefixes возвращает центральную ячейку и 8 соседей без повторов,
// отсортированные по возрастанию. Для radius <= 0 возвращается пустой набор.
func CoveringPrefixes(lat, lng, radiusMeters float64) []string {
	if radiusMeters <= 0 {
		return nil
	}

	center := geohash.EncodeWithPrecision(lat, lng, PrecisionForRadius(radiusMeters))

	seen := map[string]struct{}{center: {}}
	prefixes := []string{center}
	for _, n := range geohash.Neighbors(center) {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		prefixes = append(prefixes, n)
	}
	sort.Strings(prefixes)
	return prefixes
}

// PrefixRange возвращает полуоткрытый диапазон [start, end) для запроса по префиксу
func PrefixRange(prefix string) (start, end string) {
	return prefix, prefix + PrefixRangeEnd
}

// Encode вычисляет полный (12 символов) геохэш точки
func Encode(lat, lng float64) string {
	return geohash.Encode(lat, lng)
}
