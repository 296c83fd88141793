package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Catalog identifies which dish collection a record belongs to.
// The store catalog is tenant-private and is the source of "historical"
// dishes; the common catalog is shared across all tenants.
type Catalog string

const (
	CatalogStore  Catalog = "store"
	CatalogCommon Catalog = "common"
)

// DishCategory classifies a dish. Only the four lunch categories are used
// by the generation pipeline; other categories (soups, staples, desserts)
// exist in the catalogs but are dropped during prompt compilation.
type DishCategory string

const (
	CategoryMainMeat  DishCategory = "大荤" // primary-protein hot dish
	CategoryHalfMeat  DishCategory = "小荤" // secondary-protein hot dish
	CategoryVegetable DishCategory = "素菜" // vegetable hot dish
	CategoryCold      DishCategory = "凉菜" // cold dish
)

// LunchCategories lists the categories a weekly lunch menu draws from, in
// rendering order.
var LunchCategories = []DishCategory{
	CategoryMainMeat,
	CategoryHalfMeat,
	CategoryVegetable,
	CategoryCold,
}

// IsLunchCategory reports whether c participates in lunch menu generation.
func (c DishCategory) IsLunchCategory() bool {
	switch c {
	case CategoryMainMeat, CategoryHalfMeat, CategoryVegetable, CategoryCold:
		return true
	}
	return false
}

// CookingMethod is the closed 8-value cooking method enum.
type CookingMethod string

const (
	MethodStirFry CookingMethod = "炒"
	MethodBraise  CookingMethod = "烧"
	MethodSteam   CookingMethod = "蒸"
	MethodStew    CookingMethod = "炖"
	MethodDeepFry CookingMethod = "炸"
	MethodRoast   CookingMethod = "烤"
	MethodBoil    CookingMethod = "煮"
	MethodColdMix CookingMethod = "凉拌"
)

// AllCookingMethods lists every valid cooking method.
var AllCookingMethods = []CookingMethod{
	MethodStirFry, MethodBraise, MethodSteam, MethodStew,
	MethodDeepFry, MethodRoast, MethodBoil, MethodColdMix,
}

// IsValidCookingMethod reports whether m is one of the 8 known methods.
func IsValidCookingMethod(m CookingMethod) bool {
	for _, v := range AllCookingMethods {
		if v == m {
			return true
		}
	}
	return false
}

// KnifeSkill grades the prep-work load of a dish.
type KnifeSkill string

const (
	KnifeSimple  KnifeSkill = "简单"
	KnifeMedium  KnifeSkill = "中等"
	KnifeComplex KnifeSkill = "复杂"
)

// StringArray is a custom type for storing string arrays as JSON in the database.
type StringArray []string

// Value implements the driver.Valuer interface for database serialization.
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = StringArray{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan StringArray")
		}
		bytes = []byte(str)
	}
	return json.Unmarshal(bytes, a)
}

// Dish represents a catalog entry. Name is unique within a catalog (per
// tenant for the store catalog) but the same name may legitimately exist in
// both catalogs; catalog membership alone decides historical provenance.
type Dish struct {
	ID              string        `gorm:"type:text;primaryKey" json:"id"`
	Catalog         Catalog       `gorm:"type:text;not null;index:idx_dishes_name,unique" json:"catalog"`
	TenantID        string        `gorm:"type:text;index:idx_dishes_name,unique" json:"tenant_id,omitempty"`
	Name            string        `gorm:"type:text;not null;index:idx_dishes_name,unique" json:"name"`
	Category        DishCategory  `gorm:"type:text;index:idx_dishes_category" json:"category"`
	IngredientTags  StringArray   `gorm:"type:text" json:"ingredient_tags"`
	KnifeSkill      KnifeSkill    `gorm:"type:text" json:"knife_skill,omitempty"`
	Cuisine         string        `gorm:"type:text" json:"cuisine,omitempty"`
	CookingMethod   CookingMethod `gorm:"type:text" json:"cooking_method"`
	Flavor          string        `gorm:"type:text" json:"flavor,omitempty"`
	MainIngredients StringArray   `gorm:"type:text" json:"main_ingredients"`
	SubIngredients  StringArray   `gorm:"type:text" json:"sub_ingredients"`
	Seasons         StringArray   `gorm:"type:text" json:"seasons"`
	Active          bool          `gorm:"default:true;index:idx_dishes_active" json:"active"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// TableName returns the database table name for Dish.
func (Dish) TableName() string {
	return "dishes"
}

// CandidateDish is a sampled pool entry. FromHistory is fixed at sampling
// time from catalog membership and is not updated by later resolution.
type CandidateDish struct {
	Dish
	FromHistory bool `json:"from_history"`
}
