package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

const (
	// WeekDays is the fixed day count of a generated lunch menu.
	WeekDays = 5

	// MealTypeLunch is the only meal type the pipeline generates.
	MealTypeLunch = "lunch"

	// MenuSourceGenerated marks menus produced by the generation pipeline,
	// as opposed to menus parsed from uploaded spreadsheets.
	MenuSourceGenerated = "generated"
)

// WeekdayLabels are the five day-slot labels, in schedule order. They are
// also the JSON keys the completion service is instructed to emit.
var WeekdayLabels = []string{"周一", "周二", "周三", "周四", "周五"}

// DishAssignment is one resolved dish slot in a day menu. DishID is empty
// when the returned name matched neither catalog; Description and
// CookingMethodText are empty strings, never null, for downstream display.
type DishAssignment struct {
	Name              string       `json:"name"`
	DishID            string       `json:"dish_id,omitempty"`
	Category          DishCategory `json:"category"`
	Tags              StringArray  `json:"tags,omitempty"`
	Description       string       `json:"description"`
	CookingMethodText string       `json:"cooking_method"`
	FromHistory       bool         `json:"from_history"`
}

// DayMenu holds one weekday's ordered dish assignments.
type DayMenu struct {
	Label  string           `json:"label"`
	Dishes []DishAssignment `json:"dishes"`
}

// WeekSchedule is the five-day resolved schedule persisted inside a Menu.
type WeekSchedule struct {
	Days []DayMenu `json:"days"`
}

// Value implements driver.Valuer so the schedule is stored as a JSON document.
func (s WeekSchedule) Value() (driver.Value, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for JSON document deserialization.
func (s *WeekSchedule) Scan(value interface{}) error {
	return scanJSON(value, s)
}

// MenuStats summarizes a generated menu. The per-day numbers are the
// requested quotas passed through, not re-measured from the schedule.
type MenuStats struct {
	TotalDishes     int     `json:"total_dishes"`
	HotPerDay       int     `json:"hot_per_day"`
	ColdPerDay      int     `json:"cold_per_day"`
	MainMeatPerDay  int     `json:"main_meat_per_day"`
	HalfMeatPerDay  int     `json:"half_meat_per_day"`
	VegetablePerDay int     `json:"vegetable_per_day"`
	HistoryRatio    float64 `json:"history_ratio"`
}

// Value implements driver.Valuer for JSON document storage.
func (s MenuStats) Value() (driver.Value, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for JSON document deserialization.
func (s *MenuStats) Scan(value interface{}) error {
	return scanJSON(value, s)
}

// RequestDocument stores the originating GenerationRequest as a nested
// JSON document on the persisted menu.
type RequestDocument GenerationRequest

// Value implements driver.Valuer for JSON document storage.
func (d RequestDocument) Value() (driver.Value, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for JSON document deserialization.
func (d *RequestDocument) Scan(value interface{}) error {
	return scanJSON(value, d)
}

// JSONMap stores a free-form metadata blob as JSON.
type JSONMap map[string]interface{}

// Value implements driver.Valuer for JSON document storage.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for JSON document deserialization.
func (m *JSONMap) Scan(value interface{}) error {
	return scanJSON(value, m)
}

func scanJSON(value, dest interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan JSON column")
		}
		bytes = []byte(str)
	}
	return json.Unmarshal(bytes, dest)
}

// Menu is the persisted weekly menu record. Created once per successful
// pipeline run; never mutated afterwards except soft deletion.
type Menu struct {
	ID           string          `gorm:"type:text;primaryKey" json:"id"`
	TenantID     string          `gorm:"type:text;not null;index:idx_menus_tenant" json:"tenant_id"`
	Source       string          `gorm:"type:text;default:generated" json:"source"`
	Days         int             `json:"days"`
	MealType     string          `gorm:"type:text" json:"meal_type"`
	Schedule     WeekSchedule    `gorm:"type:text" json:"schedule"`
	Request      RequestDocument `gorm:"type:text" json:"request"`
	Stats        MenuStats       `gorm:"type:text" json:"stats"`
	HistoryRatio float64         `json:"history_ratio"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	DeletedAt    gorm.DeletedAt  `gorm:"index" json:"-"`
}

// TableName returns the database table name for Menu.
func (Menu) TableName() string {
	return "menus"
}

// GenerationEvent is the audit record written atomically with its Menu in
// the same transaction.
type GenerationEvent struct {
	ID               string    `gorm:"type:text;primaryKey" json:"id"`
	TenantID         string    `gorm:"type:text;not null;index:idx_generation_events_tenant" json:"tenant_id"`
	MenuID           string    `gorm:"type:text;not null;index:idx_generation_events_menu" json:"menu_id"`
	LatencyMs        int64     `json:"latency_ms"`
	Model            string    `gorm:"type:text" json:"model"`
	PromptTokens     int       `json:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens"`
	TotalTokens      int       `json:"total_tokens"`
	Metadata         JSONMap   `gorm:"type:text" json:"metadata"`
	CreatedAt        time.Time `json:"created_at"`
}

// TableName returns the database table name for GenerationEvent.
func (GenerationEvent) TableName() string {
	return "generation_events"
}
