package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/lyratng/ai-menu/internal/domain"
)

// fakeCatalog is an in-memory CatalogReader. SampleActive returns the
// catalog's dishes up to limit in insertion order; lookups are exact-name.
// The sampler queries both catalogs concurrently, so call recording is
// mutex-guarded.
type fakeCatalog struct {
	store  []domain.Dish
	common []domain.Dish

	mu          sync.Mutex
	sampleCalls []sampleCall
	countCalls  int
}

type sampleCall struct {
	catalog domain.Catalog
	limit   int
}

func (f *fakeCatalog) dishes(catalog domain.Catalog) []domain.Dish {
	if catalog == domain.CatalogStore {
		return f.store
	}
	return f.common
}

func (f *fakeCatalog) SampleActive(ctx context.Context, catalog domain.Catalog, tenantID string, limit int) ([]domain.Dish, error) {
	f.mu.Lock()
	f.sampleCalls = append(f.sampleCalls, sampleCall{catalog: catalog, limit: limit})
	f.mu.Unlock()
	dishes := f.dishes(catalog)
	if limit <= 0 {
		return []domain.Dish{}, nil
	}
	if limit > len(dishes) {
		limit = len(dishes)
	}
	out := make([]domain.Dish, limit)
	copy(out, dishes[:limit])
	return out, nil
}

func (f *fakeCatalog) FindActiveByName(ctx context.Context, catalog domain.Catalog, tenantID, name string) (*domain.Dish, error) {
	for _, d := range f.dishes(catalog) {
		if d.Name == name {
			dish := d
			return &dish, nil
		}
	}
	return nil, nil
}

func (f *fakeCatalog) CountActive(ctx context.Context, catalog domain.Catalog, tenantID string) (int, error) {
	f.mu.Lock()
	f.countCalls++
	f.mu.Unlock()
	return len(f.dishes(catalog)), nil
}

// makeDishes builds n dishes named with the given prefix, cycling through
// the lunch categories.
func makeDishes(catalog domain.Catalog, prefix string, n int) []domain.Dish {
	dishes := make([]domain.Dish, n)
	for i := range dishes {
		dishes[i] = domain.Dish{
			ID:       fmt.Sprintf("%s-%d", prefix, i),
			Catalog:  catalog,
			Name:     fmt.Sprintf("%s菜%d", prefix, i),
			Category: domain.LunchCategories[i%len(domain.LunchCategories)],
			Active:   true,
		}
	}
	return dishes
}

// fakeMenuStore records persisted menus and events in memory.
type fakeMenuStore struct {
	menus     []*domain.Menu
	events    []*domain.GenerationEvent
	uploaded  int
	createErr error
}

func (f *fakeMenuStore) CreateWithEvent(ctx context.Context, menu *domain.Menu, event *domain.GenerationEvent) error {
	if f.createErr != nil {
		return f.createErr
	}
	event.MenuID = menu.ID
	f.menus = append(f.menus, menu)
	f.events = append(f.events, event)
	return nil
}

func (f *fakeMenuStore) DistinctUploadedDishNames(ctx context.Context, tenantID string) (int, error) {
	return f.uploaded, nil
}

// fakeCompleter returns a canned response and records the call.
type fakeCompleter struct {
	text   string
	usage  Usage
	err    error
	calls  int
	gotMsg []Message
}

func (f *fakeCompleter) Complete(ctx context.Context, messages []Message, opts CompletionOptions) (*Completion, error) {
	f.calls++
	f.gotMsg = messages
	if f.err != nil {
		return nil, f.err
	}
	return &Completion{Text: f.text, Usage: f.usage}, nil
}

func (f *fakeCompleter) Model() string {
	return "test-model"
}

// validRequest returns a request that passes Validate: 10 dishes per day,
// 8 hot (3 main meat, 3 half meat, 2 vegetable) and 2 cold.
func validRequest() *domain.GenerationRequest {
	return &domain.GenerationRequest{
		TenantID:            "tenant-1",
		Days:                domain.WeekDays,
		MealType:            domain.MealTypeLunch,
		HotPerDay:           8,
		ColdPerDay:          2,
		MainMeatPerDay:      3,
		HalfMeatPerDay:      3,
		VegetablePerDay:     2,
		CookingMethods:      domain.AllCookingMethods,
		SpiceLevel:          domain.SpiceMild,
		IngredientDiversity: domain.DiversityStandard,
		HistoryRatio:        0.4,
	}
}
