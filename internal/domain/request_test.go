package domain

import (
	"strings"
	"testing"
)

// TestGenerationRequestValidate covers the single ingress check every
// request passes through.
func TestGenerationRequestValidate(t *testing.T) {
	valid := func() GenerationRequest {
		return GenerationRequest{
			TenantID:            "tenant-1",
			Days:                WeekDays,
			MealType:            MealTypeLunch,
			HotPerDay:           8,
			ColdPerDay:          2,
			MainMeatPerDay:      3,
			HalfMeatPerDay:      3,
			VegetablePerDay:     2,
			CookingMethods:      AllCookingMethods,
			SpiceLevel:          SpiceMild,
			IngredientDiversity: DiversityStandard,
			HistoryRatio:        0.4,
		}
	}

	testCases := []struct {
		name    string
		mutate  func(*GenerationRequest)
		wantErr string
	}{
		{
			name:   "valid request",
			mutate: func(r *GenerationRequest) {},
		},
		{
			name:    "missing tenant",
			mutate:  func(r *GenerationRequest) { r.TenantID = "" },
			wantErr: "tenant_id",
		},
		{
			name:    "wrong day count",
			mutate:  func(r *GenerationRequest) { r.Days = 7 },
			wantErr: "days",
		},
		{
			name:    "dinner not supported",
			mutate:  func(r *GenerationRequest) { r.MealType = "dinner" },
			wantErr: "meal_type",
		},
		{
			name:    "sub-quotas do not sum",
			mutate:  func(r *GenerationRequest) { r.MainMeatPerDay = 4 },
			wantErr: "sub-quotas",
		},
		{
			name:    "ratio above one",
			mutate:  func(r *GenerationRequest) { r.HistoryRatio = 1.5 },
			wantErr: "history_ratio",
		},
		{
			name:    "negative ratio",
			mutate:  func(r *GenerationRequest) { r.HistoryRatio = -0.1 },
			wantErr: "history_ratio",
		},
		{
			name:    "unknown spice level",
			mutate:  func(r *GenerationRequest) { r.SpiceLevel = "fiery" },
			wantErr: "spice_level",
		},
		{
			name:    "unknown diversity level",
			mutate:  func(r *GenerationRequest) { r.IngredientDiversity = "extreme" },
			wantErr: "ingredient_diversity",
		},
		{
			name:    "empty method list",
			mutate:  func(r *GenerationRequest) { r.CookingMethods = nil },
			wantErr: "cooking method",
		},
		{
			name:    "unknown method",
			mutate:  func(r *GenerationRequest) { r.CookingMethods = []CookingMethod{"微波"} },
			wantErr: "cooking method",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := valid()
			tc.mutate(&req)
			err := req.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("Validate: unexpected error %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("Validate: got %v, want error containing %q", err, tc.wantErr)
			}
		})
	}
}

// TestDiversityMinIngredients pins the diversity thresholds.
func TestDiversityMinIngredients(t *testing.T) {
	testCases := []struct {
		level DiversityLevel
		want  int
	}{
		{DiversityNone, 0},
		{DiversityBasic, 8},
		{DiversityStandard, 10},
		{DiversityRich, 12},
	}
	for _, tc := range testCases {
		if got := tc.level.MinIngredients(); got != tc.want {
			t.Errorf("MinIngredients(%s): got %d, want %d", tc.level, got, tc.want)
		}
	}
}

// TestDishesPerDay verifies the derived counts.
func TestDishesPerDay(t *testing.T) {
	req := GenerationRequest{Days: 5, HotPerDay: 8, ColdPerDay: 2}
	if got := req.DishesPerDay(); got != 10 {
		t.Errorf("DishesPerDay: got %d, want 10", got)
	}
	if got := req.TotalDishes(); got != 50 {
		t.Errorf("TotalDishes: got %d, want 50", got)
	}
}
