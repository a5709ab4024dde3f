package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/shenikar/incident_notifier/internal/geo"
	"github.com/shenikar/incident_notifier/internal/models"
)

// maxProximityQueries - центральная ячейка и 8 соседей
const maxProximityQueries = 9

// findCandidates возвращает пользователей в ячейках геохэша вокруг точки.
// Набор избыточен и без повторов; вторым значением возвращается число строк до дедупликации.
func (s *notificationService) findCandidates(ctx context.Context, point *models.Coordinates, radiusMeters float64) ([]*models.UserSubscription, int, error) {
	prefixes := geo.CoveringPrefixes(point.Lat, point.Lng, radiusMeters)
	if len(prefixes) == 0 {
		return nil, 0, nil
	}

	var (
		mu    sync.Mutex
		seen  = make(map[string]*models.UserSubscription)
		total int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxProximityQueries)
	for _, prefix := range prefixes {
		g.Go(func() error {
			start, end := geo.PrefixRange(prefix)
			users, err := s.subscriptions.FindByGeohashRange(gctx, start, end)
			if err != nil {
				return fmt.Errorf("service: could not query geohash prefix %s: %w", prefix, err)
			}

			mu.Lock()
			defer mu.Unlock()
			total += len(users)
			for _, u := range users {
				if _, ok := seen[u.ID]; !ok {
					seen[u.ID] = u
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	candidates := make([]*models.UserSubscription, 0, len(seen))
	for _, u := range seen {
		candidates = append(candidates, u)
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].ID < candidates[j].ID
	})
	return candidates, total, nil
}
