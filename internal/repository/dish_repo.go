package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/lyratng/ai-menu/internal/domain"
	"gorm.io/gorm"
)

// DishRepository handles catalog read operations. Store-catalog queries are
// tenant-scoped; common-catalog queries ignore the tenant.
type DishRepository struct {
	db *gorm.DB
}

// NewDishRepository creates a new DishRepository.
// Parameters:
//   - db: GORM database handle used for queries.
//
// Returns:
//   - *DishRepository: repository instance bound to db.
func NewDishRepository(db *gorm.DB) *DishRepository {
	return &DishRepository{db: db}
}

func (r *DishRepository) scoped(ctx context.Context, catalog domain.Catalog, tenantID string) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&domain.Dish{}).
		Where("catalog = ?", catalog).
		Where("active = ?", true)
	if catalog == domain.CatalogStore {
		q = q.Where("tenant_id = ?", tenantID)
	}
	return q
}

// SampleActive draws up to limit active dishes uniformly at random from one
// catalog. Fewer rows than requested is not an error.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - catalog: store or common catalog.
//   - tenantID: tenant scope; ignored for the common catalog.
//   - limit: maximum number of rows to draw.
//
// Returns:
//   - []domain.Dish: sampled rows, at most limit.
//   - error: non-nil if the query fails.
func (r *DishRepository) SampleActive(ctx context.Context, catalog domain.Catalog, tenantID string, limit int) ([]domain.Dish, error) {
	if limit <= 0 {
		return []domain.Dish{}, nil
	}
	var dishes []domain.Dish
	if err := r.scoped(ctx, catalog, tenantID).
		Order("RANDOM()").
		Limit(limit).
		Find(&dishes).Error; err != nil {
		return nil, fmt.Errorf("failed to sample %s catalog: %w", catalog, err)
	}
	return dishes, nil
}

// FindActiveByName looks up an active dish by exact name in one catalog.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - catalog: store or common catalog.
//   - tenantID: tenant scope; ignored for the common catalog.
//   - name: exact dish name.
//
// Returns:
//   - *domain.Dish: matching row, or nil when no active row has that name.
//   - error: non-nil if the query fails.
func (r *DishRepository) FindActiveByName(ctx context.Context, catalog domain.Catalog, tenantID, name string) (*domain.Dish, error) {
	var dish domain.Dish
	err := r.scoped(ctx, catalog, tenantID).
		Where("name = ?", name).
		First(&dish).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up %q in %s catalog: %w", name, catalog, err)
	}
	return &dish, nil
}

// CountActive counts active dishes in one catalog.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - catalog: store or common catalog.
//   - tenantID: tenant scope; ignored for the common catalog.
//
// Returns:
//   - int: number of active rows.
//   - error: non-nil if the query fails.
func (r *DishRepository) CountActive(ctx context.Context, catalog domain.Catalog, tenantID string) (int, error) {
	var count int64
	if err := r.scoped(ctx, catalog, tenantID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count %s catalog: %w", catalog, err)
	}
	return int(count), nil
}

// Create inserts a new dish record.
func (r *DishRepository) Create(ctx context.Context, dish *domain.Dish) error {
	return r.db.WithContext(ctx).Create(dish).Error
}
