package service

import (
	"context"
	"math"
	"math/rand"
	"sync"

	"github.com/lyratng/ai-menu/internal/domain"
	"github.com/lyratng/ai-menu/internal/logger"
)

// poolMultiplier is the oversampling factor applied to the requested dish
// count, giving the model enough substitutable options to satisfy the
// diversity constraints downstream.
const poolMultiplier = 10

// CatalogReader is the read-only catalog contract the pipeline consumes.
type CatalogReader interface {
	SampleActive(ctx context.Context, catalog domain.Catalog, tenantID string, limit int) ([]domain.Dish, error)
	FindActiveByName(ctx context.Context, catalog domain.Catalog, tenantID, name string) (*domain.Dish, error)
	CountActive(ctx context.Context, catalog domain.Catalog, tenantID string) (int, error)
}

// PoolSampler builds the shuffled candidate pool a generation call feeds
// into the prompt compiler.
type PoolSampler struct {
	catalogs CatalogReader
}

// NewPoolSampler creates a new PoolSampler.
// Parameters:
//   - catalogs: catalog reader used for the two sampling queries.
//
// Returns:
//   - *PoolSampler: sampler instance.
func NewPoolSampler(catalogs CatalogReader) *PoolSampler {
	return &PoolSampler{catalogs: catalogs}
}

// Sample draws an oversized candidate pool split between the store and
// common catalogs according to the history ratio. Catalogs returning fewer
// rows than requested degrade the pool size silently; only the pre-flight
// history gate blocks a generation before sampling begins.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - tenantID: tenant whose store catalog supplies historical dishes.
//   - historyRatio: target fraction of pool entries from the store catalog, in [0,1].
//   - totalNeeded: dish count the menu needs; the pool is 10x this.
//
// Returns:
//   - []domain.CandidateDish: shuffled pool tagged with sampling provenance.
//   - error: non-nil if either catalog query fails.
func (s *PoolSampler) Sample(ctx context.Context, tenantID string, historyRatio float64, totalNeeded int) ([]domain.CandidateDish, error) {
	poolSize := totalNeeded * poolMultiplier
	historyTarget := int(math.Round(float64(poolSize) * historyRatio))
	commonTarget := poolSize - historyTarget

	// The two catalog reads are independent; issue them concurrently.
	var (
		wg                  sync.WaitGroup
		storeDishes         []domain.Dish
		commonDishes        []domain.Dish
		storeErr, commonErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		storeDishes, storeErr = s.catalogs.SampleActive(ctx, domain.CatalogStore, tenantID, historyTarget)
	}()
	go func() {
		defer wg.Done()
		commonDishes, commonErr = s.catalogs.SampleActive(ctx, domain.CatalogCommon, tenantID, commonTarget)
	}()
	wg.Wait()

	if storeErr != nil {
		return nil, storeErr
	}
	if commonErr != nil {
		return nil, commonErr
	}

	pool := make([]domain.CandidateDish, 0, len(storeDishes)+len(commonDishes))
	for _, d := range storeDishes {
		pool = append(pool, domain.CandidateDish{Dish: d, FromHistory: true})
	}
	for _, d := range commonDishes {
		pool = append(pool, domain.CandidateDish{Dish: d, FromHistory: false})
	}

	// Full shuffle removes positional bias before any downstream truncation.
	rand.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	logger.With(logger.Fields{
		logger.FieldCount: len(pool),
	}).Debug(ctx, "Sampled candidate pool: history=%d/%d, common=%d/%d",
		len(storeDishes), historyTarget, len(commonDishes), commonTarget)

	return pool, nil
}
