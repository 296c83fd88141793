package service

import (
	"fmt"
	"strings"
	"testing"

	"github.com/lyratng/ai-menu/internal/domain"
)

// TestCompileDirectives verifies the request knobs surface as rule lines in
// the system prompt.
func TestCompileDirectives(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*domain.GenerationRequest)
		want    string
		exclude string
	}{
		{
			name:   "no spice",
			mutate: func(r *domain.GenerationRequest) { r.SpiceLevel = domain.SpiceNone },
			want:   "所有菜品均不得辣",
		},
		{
			name:   "medium spice",
			mutate: func(r *domain.GenerationRequest) { r.SpiceLevel = domain.SpiceMedium },
			want:   "约30%的菜品可以中辣",
		},
		{
			name:   "tight staffing",
			mutate: func(r *domain.GenerationRequest) { r.StaffTight = true },
			want:   "不超过10%",
		},
		{
			name:   "normal staffing",
			mutate: func(r *domain.GenerationRequest) { r.StaffTight = false },
			want:   "10%-30%",
		},
		{
			name:   "rich diversity",
			mutate: func(r *domain.GenerationRequest) { r.IngredientDiversity = domain.DiversityRich },
			want:   "至少使用12种",
		},
		{
			name:   "no diversity requirement",
			mutate: func(r *domain.GenerationRequest) { r.IngredientDiversity = domain.DiversityNone },
			want:   "无硬性要求",
		},
		{
			name:   "flavor diversity on",
			mutate: func(r *domain.GenerationRequest) { r.FlavorDiversity = true },
			want:   "口味不重复",
		},
		{
			name:    "flavor diversity off",
			mutate:  func(r *domain.GenerationRequest) { r.FlavorDiversity = false },
			exclude: "口味不重复",
		},
		{
			name: "method whitelist",
			mutate: func(r *domain.GenerationRequest) {
				r.CookingMethods = []domain.CookingMethod{domain.MethodStirFry, domain.MethodSteam}
			},
			want: "允许的烹饪方式：炒、蒸",
		},
	}

	compiler := NewPromptCompiler(false)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(req)
			prompt := compiler.Compile(req, nil)

			if tc.want != "" && !strings.Contains(prompt.System, tc.want) {
				t.Errorf("System prompt missing %q", tc.want)
			}
			if tc.exclude != "" && strings.Contains(prompt.System, tc.exclude) {
				t.Errorf("System prompt should not contain %q", tc.exclude)
			}
		})
	}
}

// TestCompileHistoryDirectiveToggle verifies the per-day ratio guidance is
// gated by the compiler flag.
func TestCompileHistoryDirectiveToggle(t *testing.T) {
	req := validRequest() // 10 per day at ratio 0.4 -> 4 history, 6 common

	on := NewPromptCompiler(true).Compile(req, nil)
	if !strings.Contains(on.System, "约4道选自本店历史菜品，约6道选自通用菜库") {
		t.Errorf("History directive missing when enabled:\n%s", on.System)
	}

	off := NewPromptCompiler(false).Compile(req, nil)
	if strings.Contains(off.System, "选自本店历史菜品") {
		t.Errorf("History directive present when disabled")
	}
}

// TestCompileBucketTruncation verifies the per-category cap and the omitted
// count marker.
func TestCompileBucketTruncation(t *testing.T) {
	pool := make([]domain.CandidateDish, 0, 130)
	for i := 0; i < 130; i++ {
		pool = append(pool, domain.CandidateDish{Dish: domain.Dish{
			Name:     fmt.Sprintf("红烧肉%d", i),
			Category: domain.CategoryMainMeat,
		}})
	}

	prompt := NewPromptCompiler(false).Compile(validRequest(), pool)

	if !strings.Contains(prompt.User, "大荤（100道）") {
		t.Errorf("Bucket header missing truncated count:\n%s", prompt.User)
	}
	if !strings.Contains(prompt.User, "（另有30道未列出）") {
		t.Errorf("Omitted count marker missing")
	}
}

// TestCompileDropsNonLunchCategories verifies soups and other categories
// never reach the candidate list.
func TestCompileDropsNonLunchCategories(t *testing.T) {
	pool := []domain.CandidateDish{
		{Dish: domain.Dish{Name: "紫菜蛋花汤", Category: domain.DishCategory("汤")}},
		{Dish: domain.Dish{Name: "红烧肉", Category: domain.CategoryMainMeat}},
	}

	prompt := NewPromptCompiler(false).Compile(validRequest(), pool)

	if strings.Contains(prompt.User, "紫菜蛋花汤") {
		t.Errorf("Non-lunch category leaked into the prompt")
	}
	if !strings.Contains(prompt.User, "红烧肉") {
		t.Errorf("Lunch dish missing from the prompt")
	}
}

// TestCompileQuotaLine verifies the weekly requirement text carries the
// request quotas.
func TestCompileQuotaLine(t *testing.T) {
	prompt := NewPromptCompiler(false).Compile(validRequest(), nil)
	want := "每天8道热菜（大荤3道、小荤3道、素菜2道）加2道凉菜，共10道。"
	if !strings.Contains(prompt.User, want) {
		t.Errorf("Quota line missing %q in:\n%s", want, prompt.User)
	}
}

// TestRenderDish verifies the candidate line format with partial tag data.
func TestRenderDish(t *testing.T) {
	testCases := []struct {
		name string
		dish domain.Dish
		want string
	}{
		{
			name: "full tags",
			dish: domain.Dish{
				Name:           "鱼香肉丝",
				CookingMethod:  domain.MethodStirFry,
				IngredientTags: domain.StringArray{"猪肉", "木耳"},
				KnifeSkill:     domain.KnifeComplex,
			},
			want: "鱼香肉丝（炒·猪肉/木耳·复杂）",
		},
		{
			name: "method only",
			dish: domain.Dish{Name: "清蒸鲈鱼", CookingMethod: domain.MethodSteam},
			want: "清蒸鲈鱼（蒸）",
		},
		{
			name: "no tags",
			dish: domain.Dish{Name: "家常豆腐"},
			want: "家常豆腐",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := renderDish(&tc.dish); got != tc.want {
				t.Errorf("renderDish: got %q, want %q", got, tc.want)
			}
		})
	}
}
