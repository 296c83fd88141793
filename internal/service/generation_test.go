package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/lyratng/ai-menu/internal/domain"
)

// weekResponse builds a canned completion payload naming count dishes per
// day out of the given catalog names.
func weekResponse(names []string, count int) string {
	var days []string
	for d := 0; d < domain.WeekDays; d++ {
		quoted := make([]string, 0, count)
		for i := 0; i < count; i++ {
			quoted = append(quoted, fmt.Sprintf("%q", names[(d*count+i)%len(names)]))
		}
		days = append(days, fmt.Sprintf("%q:[%s]", domain.WeekdayLabels[d], strings.Join(quoted, ",")))
	}
	return "{" + strings.Join(days, ",") + "}"
}

func dishNames(dishes []domain.Dish) []string {
	names := make([]string, len(dishes))
	for i, d := range dishes {
		names[i] = d.Name
	}
	return names
}

// TestGenerateHistoryGateShortCircuits verifies an ineligible tenant is
// rejected before any sampling or completion work happens.
func TestGenerateHistoryGateShortCircuits(t *testing.T) {
	catalog := &fakeCatalog{
		store:  makeDishes(domain.CatalogStore, "store", 30),
		common: makeDishes(domain.CatalogCommon, "common", 500),
	}
	menus := &fakeMenuStore{uploaded: 10} // 30 + 10 = 40 < 50
	completer := &fakeCompleter{}
	svc := NewGenerationService(catalog, menus, completer, false, nil)

	_, err := svc.Generate(context.Background(), validRequest())

	var historyErr *domain.InsufficientHistoryError
	if !errors.As(err, &historyErr) {
		t.Fatalf("Error kind: got %v, want InsufficientHistoryError", err)
	}
	if historyErr.Actual != 40 || historyErr.Required != 50 {
		t.Errorf("Gate numbers: got %d/%d, want 40/50", historyErr.Actual, historyErr.Required)
	}

	if len(catalog.sampleCalls) != 0 {
		t.Errorf("Sampling ran despite failed preflight")
	}
	if completer.calls != 0 {
		t.Errorf("Completion called despite failed preflight")
	}
}

// TestGenerateEndToEnd runs the whole pipeline against fakes and checks the
// persisted menu, the audit event, and the returned result.
func TestGenerateEndToEnd(t *testing.T) {
	catalog := &fakeCatalog{
		store:  makeDishes(domain.CatalogStore, "store", 60),
		common: makeDishes(domain.CatalogCommon, "common", 500),
	}
	menus := &fakeMenuStore{}
	completer := &fakeCompleter{
		text:  weekResponse(dishNames(catalog.common), 10),
		usage: Usage{PromptTokens: 1200, CompletionTokens: 300, TotalTokens: 1500},
	}
	svc := NewGenerationService(catalog, menus, completer, true, nil)

	req := validRequest()
	result, err := svc.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if result.MenuID == "" {
		t.Errorf("MenuID is empty")
	}
	if len(result.Schedule.Days) != domain.WeekDays {
		t.Fatalf("Schedule days: got %d, want %d", len(result.Schedule.Days), domain.WeekDays)
	}
	for i, day := range result.Schedule.Days {
		if day.Label != domain.WeekdayLabels[i] {
			t.Errorf("Day %d label: got %q, want %q", i, day.Label, domain.WeekdayLabels[i])
		}
		if len(day.Dishes) != req.DishesPerDay() {
			t.Errorf("Day %d dish count: got %d, want %d", i, len(day.Dishes), req.DishesPerDay())
		}
		for _, dish := range day.Dishes {
			if dish.DishID == "" {
				t.Errorf("Day %d dish %q unresolved", i, dish.Name)
			}
		}
	}

	if result.Stats.TotalDishes != req.TotalDishes() {
		t.Errorf("Stats total: got %d, want %d", result.Stats.TotalDishes, req.TotalDishes())
	}

	// System prompt first, user prompt second.
	if len(completer.gotMsg) != 2 || completer.gotMsg[0].Role != "system" || completer.gotMsg[1].Role != "user" {
		t.Errorf("Message shape wrong: %+v", completer.gotMsg)
	}

	if len(menus.menus) != 1 || len(menus.events) != 1 {
		t.Fatalf("Persistence: got %d menus, %d events", len(menus.menus), len(menus.events))
	}
	menu := menus.menus[0]
	if menu.Source != domain.MenuSourceGenerated || menu.TenantID != req.TenantID {
		t.Errorf("Menu record wrong: %+v", menu)
	}

	event := menus.events[0]
	if event.MenuID != menu.ID {
		t.Errorf("Event not linked to menu: %q vs %q", event.MenuID, menu.ID)
	}
	if event.TotalTokens != 1500 || event.PromptTokens != 1200 || event.CompletionTokens != 300 {
		t.Errorf("Token accounting wrong: %+v", event)
	}
	if event.Model != "test-model" {
		t.Errorf("Event model: got %q", event.Model)
	}
	if event.Metadata["pool_size"] != 100 {
		t.Errorf("Pool size metadata: got %v, want 100", event.Metadata["pool_size"])
	}
	storedReq, ok := event.Metadata["request"].(domain.GenerationRequest)
	if !ok {
		t.Fatalf("Request missing from event metadata: got %T", event.Metadata["request"])
	}
	if !reflect.DeepEqual(storedReq, *req) {
		t.Errorf("Event metadata request: got %+v, want %+v", storedReq, *req)
	}
}

// TestGenerateModelOverride verifies a request-level model lands on the
// audit event.
func TestGenerateModelOverride(t *testing.T) {
	catalog := &fakeCatalog{
		store:  makeDishes(domain.CatalogStore, "store", 60),
		common: makeDishes(domain.CatalogCommon, "common", 500),
	}
	menus := &fakeMenuStore{}
	completer := &fakeCompleter{text: weekResponse(dishNames(catalog.common), 10)}
	svc := NewGenerationService(catalog, menus, completer, false, nil)

	req := validRequest()
	req.Model = "special-model"
	if _, err := svc.Generate(context.Background(), req); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if menus.events[0].Model != "special-model" {
		t.Errorf("Event model: got %q, want special-model", menus.events[0].Model)
	}
}

// TestGenerateCompletionErrorPropagates verifies completion failures stop
// the pipeline before persistence.
func TestGenerateCompletionErrorPropagates(t *testing.T) {
	catalog := &fakeCatalog{
		store:  makeDishes(domain.CatalogStore, "store", 60),
		common: makeDishes(domain.CatalogCommon, "common", 500),
	}
	menus := &fakeMenuStore{}
	completer := &fakeCompleter{err: domain.ErrCompletionTimeout}
	svc := NewGenerationService(catalog, menus, completer, false, nil)

	_, err := svc.Generate(context.Background(), validRequest())
	if !errors.Is(err, domain.ErrCompletionTimeout) {
		t.Fatalf("Error kind: got %v, want ErrCompletionTimeout", err)
	}
	if len(menus.menus) != 0 {
		t.Errorf("Menu persisted despite completion failure")
	}
}

// TestGenerateMalformedResponse verifies unparsable completion output
// surfaces the format error kind instead of an empty schedule.
func TestGenerateMalformedResponse(t *testing.T) {
	catalog := &fakeCatalog{
		store:  makeDishes(domain.CatalogStore, "store", 60),
		common: makeDishes(domain.CatalogCommon, "common", 500),
	}
	menus := &fakeMenuStore{}
	completer := &fakeCompleter{text: "很抱歉，候选菜品不足，无法生成菜单。"}
	svc := NewGenerationService(catalog, menus, completer, false, nil)

	_, err := svc.Generate(context.Background(), validRequest())
	if !errors.Is(err, domain.ErrFormat) {
		t.Fatalf("Error kind: got %v, want ErrFormat", err)
	}
	if len(menus.menus) != 0 {
		t.Errorf("Menu persisted despite malformed response")
	}
}

// TestGeneratePersistenceFailure verifies a failed transaction maps onto
// the persistence error kind.
func TestGeneratePersistenceFailure(t *testing.T) {
	catalog := &fakeCatalog{
		store:  makeDishes(domain.CatalogStore, "store", 60),
		common: makeDishes(domain.CatalogCommon, "common", 500),
	}
	menus := &fakeMenuStore{createErr: errors.New("disk full")}
	completer := &fakeCompleter{text: weekResponse(dishNames(catalog.common), 10)}
	svc := NewGenerationService(catalog, menus, completer, false, nil)

	_, err := svc.Generate(context.Background(), validRequest())
	if !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("Error kind: got %v, want ErrPersistence", err)
	}
}

// TestGenerateArchiveFailureIsBestEffort verifies archive errors never fail
// a generation.
func TestGenerateArchiveFailureIsBestEffort(t *testing.T) {
	catalog := &fakeCatalog{
		store:  makeDishes(domain.CatalogStore, "store", 60),
		common: makeDishes(domain.CatalogCommon, "common", 500),
	}
	menus := &fakeMenuStore{}
	completer := &fakeCompleter{text: weekResponse(dishNames(catalog.common), 10)}
	archiver := &fakeArchiver{err: errors.New("bucket unreachable")}
	svc := NewGenerationService(catalog, menus, completer, false, archiver)

	result, err := svc.Generate(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if result.MenuID == "" {
		t.Errorf("MenuID is empty")
	}
	if archiver.calls != 1 {
		t.Errorf("Archiver calls: got %d, want 1", archiver.calls)
	}
}

type fakeArchiver struct {
	err   error
	calls int
}

func (f *fakeArchiver) ArchiveMenu(ctx context.Context, menu *domain.Menu) error {
	f.calls++
	return f.err
}
