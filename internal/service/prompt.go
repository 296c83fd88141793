package service

import (
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/lyratng/ai-menu/internal/domain"
	"github.com/lyratng/ai-menu/internal/prompts"
)

// maxPerType caps how many candidates of one category reach the prompt.
// Large catalogs would otherwise blow up prompt size; the per-bucket
// shuffle avoids biasing model attention toward catalog order.
const maxPerType = 100

// CompiledPrompt is the two-part prompt sent to the completion service.
type CompiledPrompt struct {
	System string
	User   string
}

// PromptCompiler renders a generation request and a candidate pool into a
// natural-language prompt. Compilation is deterministic given a
// pre-shuffled pool except for one independent shuffle per category bucket.
type PromptCompiler struct {
	// historyDirective gates the per-day historical-ratio guidance text.
	// The per-day quota numbers are computed either way.
	historyDirective bool
}

// NewPromptCompiler creates a new PromptCompiler.
// Parameters:
//   - historyDirective: whether to embed per-day historical-ratio guidance.
//
// Returns:
//   - *PromptCompiler: compiler instance.
func NewPromptCompiler(historyDirective bool) *PromptCompiler {
	return &PromptCompiler{historyDirective: historyDirective}
}

// spiceDirectives maps each spice level to its prompt directive.
var spiceDirectives = map[domain.SpiceLevel]string{
	domain.SpiceNone:   "所有菜品均不得辣",
	domain.SpiceMild:   "约15%的菜品可以微辣，其余不辣",
	domain.SpiceMedium: "约30%的菜品可以中辣，其余不辣或微辣",
}

// staffingDirective translates the staffing-tightness flag into a
// knife-skill load target.
func staffingDirective(tight bool) string {
	if tight {
		return "人手紧张：刀工复杂的菜品占比不超过10%"
	}
	return "刀工复杂的菜品占比控制在10%-30%之间"
}

// diversityDirective translates the ingredient-diversity threshold.
func diversityDirective(level domain.DiversityLevel) string {
	if n := level.MinIngredients(); n > 0 {
		return fmt.Sprintf("每餐至少使用%d种不同的主要食材", n)
	}
	return "食材多样性无硬性要求"
}

// Compile renders the request and pool into system and user prompts.
// Parameters:
//   - req: generation request carrying quotas and rule knobs.
//   - pool: shuffled candidate pool from the sampler.
//
// Returns:
//   - CompiledPrompt: persona/rules part and data/request part.
func (c *PromptCompiler) Compile(req *domain.GenerationRequest, pool []domain.CandidateDish) CompiledPrompt {
	var rules []string
	rules = append(rules, spiceDirectives[req.SpiceLevel])
	rules = append(rules, staffingDirective(req.StaffTight))
	rules = append(rules, diversityDirective(req.IngredientDiversity))
	if req.FlavorDiversity {
		rules = append(rules, "同一餐内口味不重复，避免同味型菜品扎堆")
	}
	rules = append(rules, "允许的烹饪方式："+joinMethods(req.CookingMethods))

	historyPerDay := int(math.Round(float64(req.DishesPerDay()) * req.HistoryRatio))
	commonPerDay := req.DishesPerDay() - historyPerDay
	if c.historyDirective {
		rules = append(rules, fmt.Sprintf("每日菜品中约%d道选自本店历史菜品，约%d道选自通用菜库", historyPerDay, commonPerDay))
	}

	var system strings.Builder
	system.WriteString(prompts.MenuSystemPrompt)
	system.WriteString("\n\n【本次配餐规则】\n")
	for i, r := range rules {
		system.WriteString(fmt.Sprintf("%d. %s\n", i+1, r))
	}

	var user strings.Builder
	user.WriteString("【候选菜品】\n")
	for _, category := range domain.LunchCategories {
		bucket := bucketByCategory(pool, category)
		// Second independent shuffle inside the bucket before truncation.
		rand.Shuffle(len(bucket), func(i, j int) {
			bucket[i], bucket[j] = bucket[j], bucket[i]
		})
		omitted := 0
		if len(bucket) > maxPerType {
			omitted = len(bucket) - maxPerType
			bucket = bucket[:maxPerType]
		}
		user.WriteString(fmt.Sprintf("%s（%d道）：\n", category, len(bucket)))
		for _, d := range bucket {
			user.WriteString(renderDish(&d.Dish))
			user.WriteString("\n")
		}
		if omitted > 0 {
			user.WriteString(fmt.Sprintf("（另有%d道未列出）\n", omitted))
		}
	}

	user.WriteString("\n【本周要求】\n")
	user.WriteString(fmt.Sprintf("为周一至周五共%d天制定午餐菜单。\n", req.Days))
	user.WriteString(fmt.Sprintf("每天%d道热菜（大荤%d道、小荤%d道、素菜%d道）加%d道凉菜，共%d道。\n",
		req.HotPerDay, req.MainMeatPerDay, req.HalfMeatPerDay, req.VegetablePerDay,
		req.ColdPerDay, req.DishesPerDay()))
	user.WriteString("请按指定的 JSON 格式输出整周菜单。")

	return CompiledPrompt{System: system.String(), User: user.String()}
}

// renderDish formats one candidate line as 菜名（做法·食材·刀工）, omitting
// absent tag fields.
func renderDish(d *domain.Dish) string {
	var tags []string
	if d.CookingMethod != "" {
		tags = append(tags, string(d.CookingMethod))
	}
	if len(d.IngredientTags) > 0 {
		tags = append(tags, strings.Join(d.IngredientTags, "/"))
	}
	if d.KnifeSkill != "" {
		tags = append(tags, string(d.KnifeSkill))
	}
	if len(tags) == 0 {
		return d.Name
	}
	return fmt.Sprintf("%s（%s）", d.Name, strings.Join(tags, "·"))
}

func bucketByCategory(pool []domain.CandidateDish, category domain.DishCategory) []domain.CandidateDish {
	var bucket []domain.CandidateDish
	for _, d := range pool {
		if d.Category == category {
			bucket = append(bucket, d)
		}
	}
	return bucket
}

func joinMethods(methods []domain.CookingMethod) string {
	parts := make([]string, len(methods))
	for i, m := range methods {
		parts[i] = string(m)
	}
	return strings.Join(parts, "、")
}
