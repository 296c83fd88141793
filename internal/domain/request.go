package domain

import "fmt"

// SpiceLevel controls how much of the generated menu may be spicy.
type SpiceLevel string

const (
	SpiceNone   SpiceLevel = "none"
	SpiceMild   SpiceLevel = "mild"
	SpiceMedium SpiceLevel = "medium"
)

// IsValid reports whether s is a known spice level.
func (s SpiceLevel) IsValid() bool {
	switch s {
	case SpiceNone, SpiceMild, SpiceMedium:
		return true
	}
	return false
}

// DiversityLevel is the ingredient-diversity requirement of a request.
type DiversityLevel string

const (
	DiversityNone     DiversityLevel = "none"
	DiversityBasic    DiversityLevel = "basic"
	DiversityStandard DiversityLevel = "standard"
	DiversityRich     DiversityLevel = "rich"
)

// IsValid reports whether d is a known diversity level.
func (d DiversityLevel) IsValid() bool {
	switch d {
	case DiversityNone, DiversityBasic, DiversityStandard, DiversityRich:
		return true
	}
	return false
}

// MinIngredients returns the minimum distinct raw ingredient count per meal
// implied by the diversity level. Zero means no requirement.
func (d DiversityLevel) MinIngredients() int {
	switch d {
	case DiversityBasic:
		return 8
	case DiversityStandard:
		return 10
	case DiversityRich:
		return 12
	default:
		return 0
	}
}

// GenerationRequest carries every knob of one menu generation call.
// The pipeline itself never re-validates the quota sum; Validate is the
// single ingress check performed by the HTTP handler before calling in.
type GenerationRequest struct {
	TenantID            string          `json:"tenant_id"`
	Days                int             `json:"days"`
	MealType            string          `json:"meal_type"`
	HotPerDay           int             `json:"hot_per_day"`
	ColdPerDay          int             `json:"cold_per_day"`
	MainMeatPerDay      int             `json:"main_meat_per_day"`
	HalfMeatPerDay      int             `json:"half_meat_per_day"`
	VegetablePerDay     int             `json:"vegetable_per_day"`
	StaffTight          bool            `json:"staff_tight"`
	CookingMethods      []CookingMethod `json:"cooking_methods"`
	SpiceLevel          SpiceLevel      `json:"spice_level"`
	FlavorDiversity     bool            `json:"flavor_diversity"`
	IngredientDiversity DiversityLevel  `json:"ingredient_diversity"`
	HistoryRatio        float64         `json:"history_ratio"`
	Model               string          `json:"model,omitempty"`
}

// DishesPerDay returns the total dish count per day (hot + cold).
func (r *GenerationRequest) DishesPerDay() int {
	return r.HotPerDay + r.ColdPerDay
}

// TotalDishes returns the dish count for the whole week.
func (r *GenerationRequest) TotalDishes() int {
	return r.DishesPerDay() * r.Days
}

// Validate checks request shape at the boundary. Enum and range errors are
// rejected here once so internal stages never re-validate.
func (r *GenerationRequest) Validate() error {
	if r.TenantID == "" {
		return fmt.Errorf("tenant_id is required")
	}
	if r.Days != WeekDays {
		return fmt.Errorf("days must be %d, got %d", WeekDays, r.Days)
	}
	if r.MealType != MealTypeLunch {
		return fmt.Errorf("meal_type must be %q, got %q", MealTypeLunch, r.MealType)
	}
	if r.HotPerDay <= 0 || r.ColdPerDay < 0 {
		return fmt.Errorf("invalid dish quotas: hot=%d cold=%d", r.HotPerDay, r.ColdPerDay)
	}
	if r.MainMeatPerDay+r.HalfMeatPerDay+r.VegetablePerDay != r.HotPerDay {
		return fmt.Errorf("hot dish sub-quotas must sum to hot_per_day: %d+%d+%d != %d",
			r.MainMeatPerDay, r.HalfMeatPerDay, r.VegetablePerDay, r.HotPerDay)
	}
	if r.HistoryRatio < 0 || r.HistoryRatio > 1 {
		return fmt.Errorf("history_ratio must be in [0,1], got %v", r.HistoryRatio)
	}
	if !r.SpiceLevel.IsValid() {
		return fmt.Errorf("unknown spice_level %q", r.SpiceLevel)
	}
	if !r.IngredientDiversity.IsValid() {
		return fmt.Errorf("unknown ingredient_diversity %q", r.IngredientDiversity)
	}
	if len(r.CookingMethods) == 0 {
		return fmt.Errorf("at least one cooking method is required")
	}
	for _, m := range r.CookingMethods {
		if !IsValidCookingMethod(m) {
			return fmt.Errorf("unknown cooking method %q", m)
		}
	}
	return nil
}
