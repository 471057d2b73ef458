package tiles

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/woozymasta/geoconvert/internal/geo"
)

type job struct {
	Style Style
	Coord geo.TileCoordinate
}

type result struct {
	Coord geo.TileCoordinate
	Valid bool
}

// Prefetch warms the cache for the given tiles with a pool of workers and
// returns the tiles that are now cached.
func (c *Cache) Prefetch(ctx context.Context, style Style, coords []geo.TileCoordinate, concurrency int) []geo.TileCoordinate {
	if concurrency <= 0 {
		concurrency = 1
	}

	jobs := make(chan job, len(coords))
	results := make(chan result, len(coords))

	go func() {
		defer close(jobs)
		for _, t := range coords {
			select {
			case jobs <- job{Style: style, Coord: t}:
			case <-ctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				if ctx.Err() != nil {
					results <- result{Coord: j.Coord}
					continue
				}

				_, err := c.Get(ctx, j.Style, j.Coord)
				if err != nil && !errors.Is(err, ErrNotFound) {
					log.Trace().
						Err(err).
						Str("tile", j.Coord.String()).
						Str("style", string(j.Style)).
						Msg("Failed to fetch tile")
				}
				results <- result{Coord: j.Coord, Valid: err == nil}
			}
		}()
	}
	wg.Wait()
	close(results)

	var valid []geo.TileCoordinate
	for res := range results {
		if res.Valid {
			valid = append(valid, res.Coord)
		}
	}

	return valid
}
