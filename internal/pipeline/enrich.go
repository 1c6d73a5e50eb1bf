package pipeline

import (
	"context"
	"sync"

	"github.com/couchcryptid/wildfire-risk-etl/internal/domain"
)

// enrichBatch attaches weather and air quality observations to the batch
// using a bounded worker pool. Output order matches input order, and
// per-detection failures leave the optional fields nil without failing the
// batch.
func (p *Pipeline) enrichBatch(ctx context.Context, batch []domain.Detection) []domain.Detection {
	if (p.weather == nil && p.airQuality == nil) || len(batch) == 0 {
		return batch
	}

	out := make([]domain.Detection, len(batch))
	copy(out, batch)

	workers := p.cfg.EnrichConcurrency
	if workers > len(batch) {
		workers = len(batch)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				det := batch[i]
				det, _ = domain.EnrichWithWeather(ctx, det, p.weather, p.logger)
				det, _ = domain.EnrichWithAirQuality(ctx, det, p.airQuality, p.logger)
				out[i] = det
			}
		}()
	}

	for i := range batch {
		select {
		case jobs <- i:
		case <-ctx.Done():
			// Unenriched entries keep their parsed values from the copy.
			close(jobs)
			wg.Wait()
			return out
		}
	}
	close(jobs)
	wg.Wait()
	return out
}
