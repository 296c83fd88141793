package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lyratng/ai-menu/internal/domain"
	"github.com/lyratng/ai-menu/internal/logger"
)

// historyFloor is the minimum amount of historical material a tenant must
// have before generation is allowed: active store-catalog dishes plus
// distinct dish names across uploaded menus.
const historyFloor = 50

// MenuStore is the persistence contract the generation pipeline consumes.
type MenuStore interface {
	CreateWithEvent(ctx context.Context, menu *domain.Menu, event *domain.GenerationEvent) error
	DistinctUploadedDishNames(ctx context.Context, tenantID string) (int, error)
}

// MenuArchiver uploads a copy of the persisted menu document to external
// object storage. Archival is best effort and never fails a generation.
type MenuArchiver interface {
	ArchiveMenu(ctx context.Context, menu *domain.Menu) error
}

// GenerationResult is what a successful pipeline run hands back to the API.
type GenerationResult struct {
	MenuID   string               `json:"menu_id"`
	Schedule *domain.WeekSchedule `json:"schedule"`
	Stats    *domain.MenuStats    `json:"stats"`
}

// GenerationService orchestrates one menu generation end to end: history
// preflight, pool sampling, prompt compilation, completion call, response
// normalization, dish resolution, and transactional persistence.
type GenerationService struct {
	catalogs  CatalogReader
	menus     MenuStore
	sampler   *PoolSampler
	compiler  *PromptCompiler
	completer Completer
	resolver  *DishResolver
	archiver  MenuArchiver
}

// NewGenerationService creates a new GenerationService.
// Parameters:
//   - catalogs: catalog reader shared with the sampler and resolver.
//   - menus: menu persistence store.
//   - completer: injected completion client.
//   - historyDirective: whether compiled prompts carry historical-ratio guidance.
//   - archiver: optional menu archiver; nil disables archival.
//
// Returns:
//   - *GenerationService: wired pipeline instance.
func NewGenerationService(catalogs CatalogReader, menus MenuStore, completer Completer, historyDirective bool, archiver MenuArchiver) *GenerationService {
	return &GenerationService{
		catalogs:  catalogs,
		menus:     menus,
		sampler:   NewPoolSampler(catalogs),
		compiler:  NewPromptCompiler(historyDirective),
		completer: completer,
		resolver:  NewDishResolver(catalogs),
		archiver:  archiver,
	}
}

// Generate runs the whole pipeline for one validated request. The history
// preflight runs before any sampling or completion work so an ineligible
// tenant costs neither a catalog scan nor a model call.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - req: generation request, already validated at the API boundary.
//
// Returns:
//   - *GenerationResult: persisted menu id, schedule, and stats.
//   - error: a domain error kind, or *domain.InsufficientHistoryError.
func (s *GenerationService) Generate(ctx context.Context, req *domain.GenerationRequest) (*GenerationResult, error) {
	ctx = logger.SetComponent(logger.SetTenantID(ctx, req.TenantID), "generation")

	// A zero history ratio draws nothing from the store catalog, so the
	// gate only applies when historical material is actually requested.
	if req.HistoryRatio > 0 {
		if err := s.preflightHistory(ctx, req.TenantID); err != nil {
			return nil, err
		}
	}

	pool, err := s.sampler.Sample(ctx, req.TenantID, req.HistoryRatio, req.DishesPerDay())
	if err != nil {
		return nil, fmt.Errorf("failed to sample candidate pool: %w", err)
	}

	prompt := s.compiler.Compile(req, pool)
	messages := []Message{
		{Role: "system", Content: prompt.System},
		{Role: "user", Content: prompt.User},
	}

	start := time.Now()
	completion, err := s.completer.Complete(ctx, messages, CompletionOptions{Model: req.Model})
	latency := time.Since(start)
	if err != nil {
		return nil, err
	}

	model := req.Model
	if model == "" {
		model = s.completer.Model()
	}
	logger.With(logger.Fields{
		logger.FieldModel:      model,
		logger.FieldDurationMs: latency.Milliseconds(),
	}).Info(ctx, "Completion returned: %d total tokens", completion.Usage.TotalTokens)

	parsed, err := NormalizeResponse(completion.Text)
	if err != nil {
		return nil, err
	}

	schedule, err := s.resolver.Resolve(ctx, req.TenantID, parsed)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve dishes: %w", err)
	}

	stats := domain.MenuStats{
		TotalDishes:     req.TotalDishes(),
		HotPerDay:       req.HotPerDay,
		ColdPerDay:      req.ColdPerDay,
		MainMeatPerDay:  req.MainMeatPerDay,
		HalfMeatPerDay:  req.HalfMeatPerDay,
		VegetablePerDay: req.VegetablePerDay,
		HistoryRatio:    req.HistoryRatio,
	}

	menu := &domain.Menu{
		ID:           uuid.New().String(),
		TenantID:     req.TenantID,
		Source:       domain.MenuSourceGenerated,
		Days:         req.Days,
		MealType:     req.MealType,
		Schedule:     *schedule,
		Request:      domain.RequestDocument(*req),
		Stats:        stats,
		HistoryRatio: req.HistoryRatio,
	}
	event := &domain.GenerationEvent{
		ID:               uuid.New().String(),
		TenantID:         req.TenantID,
		LatencyMs:        latency.Milliseconds(),
		Model:            model,
		PromptTokens:     completion.Usage.PromptTokens,
		CompletionTokens: completion.Usage.CompletionTokens,
		TotalTokens:      completion.Usage.TotalTokens,
		// The event carries its own copy of the request so the audit trail
		// stays complete even if the menu row is later removed.
		Metadata: domain.JSONMap{
			"request":       *req,
			"pool_size":     len(pool),
			"history_ratio": req.HistoryRatio,
		},
	}

	if err := s.menus.CreateWithEvent(ctx, menu, event); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	ctx = logger.SetMenuID(ctx, menu.ID)
	logger.CtxInfo(ctx, "Menu persisted with generation event")

	if s.archiver != nil {
		if err := s.archiver.ArchiveMenu(ctx, menu); err != nil {
			logger.CtxWarn(ctx, "Menu archive upload failed: %v", err)
		}
	}

	return &GenerationResult{MenuID: menu.ID, Schedule: schedule, Stats: &stats}, nil
}

// preflightHistory enforces the minimum-history gate. Runs two counts:
// active store-catalog dishes and distinct uploaded dish names.
func (s *GenerationService) preflightHistory(ctx context.Context, tenantID string) error {
	storeCount, err := s.catalogs.CountActive(ctx, domain.CatalogStore, tenantID)
	if err != nil {
		return fmt.Errorf("failed to count store catalog: %w", err)
	}
	uploaded, err := s.menus.DistinctUploadedDishNames(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("failed to count uploaded dishes: %w", err)
	}
	total := storeCount + uploaded
	if total < historyFloor {
		return &domain.InsufficientHistoryError{Actual: total, Required: historyFloor}
	}
	return nil
}
