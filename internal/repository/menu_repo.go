package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/lyratng/ai-menu/internal/domain"
	"gorm.io/gorm"
)

// MenuRepository handles menu and generation-event persistence.
type MenuRepository struct {
	db *gorm.DB
}

// NewMenuRepository creates a new MenuRepository.
// Parameters:
//   - db: GORM database handle used for queries.
//
// Returns:
//   - *MenuRepository: repository instance bound to db.
func NewMenuRepository(db *gorm.DB) *MenuRepository {
	return &MenuRepository{db: db}
}

// CreateWithEvent persists a menu and its generation event in one
// all-or-nothing transaction keyed by the new menu id.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - menu: menu record to persist.
//   - event: audit event persisted atomically with the menu.
//
// Returns:
//   - error: non-nil if the transaction fails; nothing is written on failure.
func (r *MenuRepository) CreateWithEvent(ctx context.Context, menu *domain.Menu, event *domain.GenerationEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(menu).Error; err != nil {
			return fmt.Errorf("failed to insert menu: %w", err)
		}
		event.MenuID = menu.ID
		if err := tx.Create(event).Error; err != nil {
			return fmt.Errorf("failed to insert generation event: %w", err)
		}
		return nil
	})
}

// GetByID retrieves a tenant's menu by its ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - tenantID: owning tenant.
//   - id: menu ID.
//
// Returns:
//   - *domain.Menu: menu record, or nil when not found.
//   - error: non-nil if the lookup fails.
func (r *MenuRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.Menu, error) {
	var menu domain.Menu
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		First(&menu, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &menu, nil
}

// ListByTenant retrieves a tenant's menus with pagination, newest first.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - tenantID: owning tenant.
//   - limit: maximum number of records to return.
//   - offset: number of records to skip.
//
// Returns:
//   - []domain.Menu: matching menu records.
//   - error: non-nil if the query fails.
func (r *MenuRepository) ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]domain.Menu, error) {
	var menus []domain.Menu
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&menus).Error; err != nil {
		return nil, err
	}
	return menus, nil
}

// SoftDelete marks a tenant's menu as deleted. The record itself is the
// only mutation a menu ever receives after creation.
func (r *MenuRepository) SoftDelete(ctx context.Context, tenantID, id string) error {
	return r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Delete(&domain.Menu{}, "id = ?", id).Error
}

// DistinctUploadedDishNames counts distinct dish names across a tenant's
// uploaded (non-generated) menus. Schedules are stored as JSON documents,
// so the distinct set is computed in process.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - tenantID: owning tenant.
//
// Returns:
//   - int: number of distinct dish names in uploaded menus.
//   - error: non-nil if the query fails.
func (r *MenuRepository) DistinctUploadedDishNames(ctx context.Context, tenantID string) (int, error) {
	var menus []domain.Menu
	if err := r.db.WithContext(ctx).
		Select("schedule").
		Where("tenant_id = ?", tenantID).
		Where("source <> ?", domain.MenuSourceGenerated).
		Find(&menus).Error; err != nil {
		return 0, err
	}

	names := make(map[string]struct{})
	for _, m := range menus {
		for _, day := range m.Schedule.Days {
			for _, dish := range day.Dishes {
				if dish.Name != "" {
					names[dish.Name] = struct{}{}
				}
			}
		}
	}
	return len(names), nil
}

// ListEventsByTenant retrieves a tenant's generation events, newest first.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - tenantID: owning tenant.
//   - limit: maximum number of records to return.
//   - offset: number of records to skip.
//
// Returns:
//   - []domain.GenerationEvent: matching audit records.
//   - error: non-nil if the query fails.
func (r *MenuRepository) ListEventsByTenant(ctx context.Context, tenantID string, limit, offset int) ([]domain.GenerationEvent, error) {
	var events []domain.GenerationEvent
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
