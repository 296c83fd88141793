package prompts

// ============================================================================
// 共享词库 (Shared Lexicons)
// ============================================================================

// ColdDishMarkers are name tokens that mark a dish as a cold dish. Checked
// first by category inference because cold-dish prefixes (凉拌、卤) trump
// any ingredient token that follows them.
var ColdDishMarkers = []string{
	"凉拌", "拌", "卤", "泡", "腌", "醉", "呛", "冻", "白切", "口水",
}

// MainMeatTokens are ingredient tokens of primary-protein hot dishes.
var MainMeatTokens = []string{
	"牛", "猪", "羊", "鸡", "鸭", "鹅", "鱼", "虾", "蟹", "鳕",
	"排骨", "肘", "蹄", "里脊", "五花", "大肉",
}

// HalfMeatTokens are tokens of secondary-protein dishes (egg, bean curd,
// small amounts of meat paired with vegetables).
var HalfMeatTokens = []string{
	"蛋", "豆腐", "香干", "豆干", "腐竹", "千张", "肉丝", "肉末", "肉片",
	"火腿", "培根", "肠",
}

// VegetableTokens are tokens of vegetable hot dishes.
var VegetableTokens = []string{
	"菜", "瓜", "菇", "菌", "笋", "茄", "椒", "芹", "薯", "藕",
	"萝卜", "土豆", "豆角", "西兰花", "菠菜", "山药",
}

// ============================================================================
// Menu Generation Prompts (LLM)
// ============================================================================

// MenuSystemPrompt defines the persona and the unconditional rule set for
// weekly lunch menu generation. Request-specific directives (spice level,
// staffing, diversity, method whitelist) are appended by the prompt
// compiler at generation time.
const MenuSystemPrompt = `你是经验丰富的食堂行政总厨兼营养配餐师，负责为企业食堂制定一周五天的午餐菜单。

【硬性规则】
1. 只能从候选菜品列表中选菜，菜名必须与列表中的名称完全一致，一字不差
2. 只能使用允许的烹饪方式清单中的做法
3. 成本控制：同一餐内不得同时出现两道高成本荤菜（牛肉、虾、蟹等）
4. 同一餐内主料不得重复
5. 同一餐内勾芡菜品不超过两道
6. 一周内烹饪方式覆盖不少于八种中的六种

【输出格式】
只输出 JSON，不要使用 markdown 代码块，不要任何解释文字。
五个键固定为：周一、周二、周三、周四、周五。
每个键的值是菜名字符串数组，不要嵌套对象，不要按菜品类别分组。
示例：{"周一":["菜名1","菜名2"],"周二":["菜名3"],"周三":[],"周四":[],"周五":[]}`
