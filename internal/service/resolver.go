package service

import (
	"context"
	"strings"

	"github.com/lyratng/ai-menu/internal/domain"
	"github.com/lyratng/ai-menu/internal/prompts"
)

// categoryRule binds a keyword list to the category it implies. Rules are
// evaluated in table order; the first matching rule wins, so cold-dish
// markers must stay ahead of the ingredient token lists.
type categoryRule struct {
	tokens   []string
	category domain.DishCategory
}

var categoryRules = []categoryRule{
	{prompts.ColdDishMarkers, domain.CategoryCold},
	{prompts.MainMeatTokens, domain.CategoryMainMeat},
	{prompts.HalfMeatTokens, domain.CategoryHalfMeat},
	{prompts.VegetableTokens, domain.CategoryVegetable},
}

// inferCategory classifies an unmatched dish name by keyword lookup.
// Deterministic: same name always yields the same category. Names matching
// no rule default to 大荤, the safest over-provisioned slot.
func inferCategory(name string) domain.DishCategory {
	for _, rule := range categoryRules {
		for _, token := range rule.tokens {
			if strings.Contains(name, token) {
				return rule.category
			}
		}
	}
	return domain.CategoryMainMeat
}

// DishResolver maps the dish names a completion returned back onto catalog
// records, store catalog first.
type DishResolver struct {
	catalogs CatalogReader
}

// NewDishResolver creates a new DishResolver.
// Parameters:
//   - catalogs: catalog reader used for exact-name lookups.
//
// Returns:
//   - *DishResolver: resolver instance.
func NewDishResolver(catalogs CatalogReader) *DishResolver {
	return &DishResolver{catalogs: catalogs}
}

// Resolve converts a parsed schedule into the persisted week schedule.
// Every name is looked up in the tenant's store catalog first, then the
// common catalog; names matching neither stay on the menu with an inferred
// category and an empty DishID. Resolution never drops or renames a dish.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - tenantID: tenant whose store catalog takes lookup priority.
//   - parsed: normalized schedule from the completion response.
//
// Returns:
//   - *domain.WeekSchedule: fully resolved five-day schedule.
//   - error: non-nil only on catalog lookup failure.
func (r *DishResolver) Resolve(ctx context.Context, tenantID string, parsed *ParsedSchedule) (*domain.WeekSchedule, error) {
	schedule := &domain.WeekSchedule{Days: make([]domain.DayMenu, len(domain.WeekdayLabels))}
	for i, label := range domain.WeekdayLabels {
		day := domain.DayMenu{Label: label, Dishes: []domain.DishAssignment{}}
		for _, entry := range parsed.Days[i] {
			assignment, err := r.resolveOne(ctx, tenantID, entry)
			if err != nil {
				return nil, err
			}
			day.Dishes = append(day.Dishes, assignment)
		}
		schedule.Days[i] = day
	}
	return schedule, nil
}

func (r *DishResolver) resolveOne(ctx context.Context, tenantID string, entry ParsedDish) (domain.DishAssignment, error) {
	dish, err := r.catalogs.FindActiveByName(ctx, domain.CatalogStore, tenantID, entry.Name)
	if err != nil {
		return domain.DishAssignment{}, err
	}
	fromHistory := dish != nil
	if dish == nil {
		dish, err = r.catalogs.FindActiveByName(ctx, domain.CatalogCommon, tenantID, entry.Name)
		if err != nil {
			return domain.DishAssignment{}, err
		}
	}

	if dish == nil {
		// Unknown to both catalogs: keep the model's choice, classify by
		// keyword so the slot still renders under a sensible heading.
		return domain.DishAssignment{
			Name:              entry.Name,
			Category:          inferCategory(entry.Name),
			Description:       entry.Description,
			CookingMethodText: entry.CookingMethod,
			FromHistory:       false,
		}, nil
	}

	assignment := domain.DishAssignment{
		Name:        dish.Name,
		DishID:      dish.ID,
		Category:    dish.Category,
		Tags:        dish.IngredientTags,
		FromHistory: fromHistory,
	}
	assignment.Description = entry.Description
	if assignment.Description == "" {
		assignment.Description = describeDish(dish)
	}
	assignment.CookingMethodText = entry.CookingMethod
	if assignment.CookingMethodText == "" {
		assignment.CookingMethodText = string(dish.CookingMethod)
	}
	return assignment, nil
}

// describeDish synthesizes a short display description from catalog fields
// when the completion supplied none. Always returns a string, possibly
// empty, never a null downstream.
func describeDish(d *domain.Dish) string {
	var parts []string
	if d.Cuisine != "" {
		parts = append(parts, d.Cuisine)
	}
	if d.Category != "" {
		parts = append(parts, string(d.Category))
	}
	if d.Flavor != "" {
		parts = append(parts, d.Flavor+"口味")
	}
	return strings.Join(parts, "，")
}
