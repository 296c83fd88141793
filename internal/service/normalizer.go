package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lyratng/ai-menu/internal/domain"
)

// ParsedDish is one pre-resolution schedule entry. Bare dish-name strings
// leave Description and CookingMethod empty; object-shaped entries may
// carry overrides for both.
type ParsedDish struct {
	Name          string
	Description   string
	CookingMethod string
}

// ParsedSchedule holds the five recovered day lists, index-aligned with
// domain.WeekdayLabels. Missing days come back as empty lists; dish counts
// are never validated against request quotas here.
type ParsedSchedule struct {
	Days [][]ParsedDish
}

// NormalizeResponse repairs and parses the raw completion text into a
// fixed five-day schedule. It strips a fenced-code wrapper if present,
// falls back to the first balanced JSON object on a failed direct parse,
// and flattens day values the model grouped by sub-category instead of
// emitting flat lists.
// Parameters:
//   - raw: completion payload text.
//
// Returns:
//   - *ParsedSchedule: recovered schedule.
//   - error: domain.ErrFormat when no parsable object can be recovered.
func NormalizeResponse(raw string) (*ParsedSchedule, error) {
	text := stripCodeFence(strings.TrimSpace(raw))

	doc := map[string]json.RawMessage{}
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		span, ok := extractBalancedObject(text)
		if !ok {
			return nil, fmt.Errorf("%w: no JSON object found in response", domain.ErrFormat)
		}
		if err := json.Unmarshal([]byte(span), &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrFormat, err)
		}
	}

	sched := &ParsedSchedule{Days: make([][]ParsedDish, len(domain.WeekdayLabels))}
	for i, label := range domain.WeekdayLabels {
		rawDay, ok := doc[label]
		if !ok {
			sched.Days[i] = []ParsedDish{}
			continue
		}
		entries, err := parseDayValue(rawDay)
		if err != nil {
			return nil, err
		}
		sched.Days[i] = entries
	}
	return sched, nil
}

// stripCodeFence removes a leading/trailing fenced-code wrapper regardless
// of its language tag. A common formatting artifact of completion output.
func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	if idx := strings.Index(text, "\n"); idx != -1 {
		text = text[idx+1:]
	} else {
		text = strings.TrimPrefix(text, "```")
	}
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// extractBalancedObject finds the first balanced {...} span in text.
func extractBalancedObject(text string) (string, bool) {
	start := strings.Index(text, "{")
	if start == -1 {
		return "", false
	}
	braceCount := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			braceCount++
		case '}':
			braceCount--
			if braceCount == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

// parseDayValue accepts either a flat array of entries or an object whose
// array-valued members are flattened in encounter order.
func parseDayValue(raw json.RawMessage) ([]ParsedDish, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []ParsedDish{}, nil
	}
	switch trimmed[0] {
	case '[':
		return parseDishList(trimmed)
	case '{':
		return flattenDayObject(trimmed)
	default:
		return nil, fmt.Errorf("%w: day value is neither array nor object", domain.ErrFormat)
	}
}

func parseDishList(raw []byte) ([]ParsedDish, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFormat, err)
	}
	entries := make([]ParsedDish, 0, len(items))
	for _, item := range items {
		entry, ok, err := parseDishEntry(item)
		if err != nil {
			return nil, err
		}
		if ok {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// parseDishEntry accepts a bare name string or, for backward compatibility,
// an object with optional description/cooking-method overrides. Entries
// with an empty name are dropped.
func parseDishEntry(raw json.RawMessage) (ParsedDish, bool, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return ParsedDish{}, false, nil
	}
	if trimmed[0] == '"' {
		var name string
		if err := json.Unmarshal(trimmed, &name); err != nil {
			return ParsedDish{}, false, fmt.Errorf("%w: %v", domain.ErrFormat, err)
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return ParsedDish{}, false, nil
		}
		return ParsedDish{Name: name}, true, nil
	}
	var obj struct {
		Name          string `json:"name"`
		CNName        string `json:"菜名"`
		Description   string `json:"description"`
		CookingMethod string `json:"cooking_method"`
	}
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return ParsedDish{}, false, fmt.Errorf("%w: %v", domain.ErrFormat, err)
	}
	name := strings.TrimSpace(obj.Name)
	if name == "" {
		name = strings.TrimSpace(obj.CNName)
	}
	if name == "" {
		return ParsedDish{}, false, nil
	}
	return ParsedDish{
		Name:          name,
		Description:   obj.Description,
		CookingMethod: obj.CookingMethod,
	}, true, nil
}

// flattenDayObject handles the degenerate shape where the model grouped a
// day's dishes by sub-category. Array-valued members are flattened into one
// list preserving the relative order of sub-categories as encountered,
// which requires walking the object with a token decoder since map parsing
// would lose key order.
func flattenDayObject(raw []byte) ([]ParsedDish, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil { // opening brace
		return nil, fmt.Errorf("%w: %v", domain.ErrFormat, err)
	}
	var entries []ParsedDish
	for dec.More() {
		if _, err := dec.Token(); err != nil { // member key
			return nil, fmt.Errorf("%w: %v", domain.ErrFormat, err)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrFormat, err)
		}
		trimmed := bytes.TrimSpace(value)
		if len(trimmed) == 0 || trimmed[0] != '[' {
			continue
		}
		sub, err := parseDishList(trimmed)
		if err != nil {
			return nil, err
		}
		entries = append(entries, sub...)
	}
	if entries == nil {
		entries = []ParsedDish{}
	}
	return entries, nil
}
