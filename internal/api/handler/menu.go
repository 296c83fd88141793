package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lyratng/ai-menu/internal/domain"
	"github.com/lyratng/ai-menu/internal/logger"
	"github.com/lyratng/ai-menu/internal/repository"
	"github.com/lyratng/ai-menu/internal/service"
)

// ArchiveReader is the read surface of the optional menu archive.
type ArchiveReader interface {
	FetchMenu(ctx context.Context, tenantID, menuID string) (io.ReadCloser, error)
	DocumentURL(tenantID, menuID string) string
}

// MenuHandler handles menu generation and retrieval endpoints.
type MenuHandler struct {
	generation *service.GenerationService
	menus      *repository.MenuRepository
	archive    ArchiveReader
}

// NewMenuHandler creates a new menu handler.
// Parameters:
//   - generation: generation pipeline service.
//   - menus: menu repository for the read and delete paths.
//   - archive: archived-document reader; nil when the archive is disabled.
//
// Returns:
//   - *MenuHandler: initialized handler.
func NewMenuHandler(generation *service.GenerationService, menus *repository.MenuRepository, archive ArchiveReader) *MenuHandler {
	return &MenuHandler{
		generation: generation,
		menus:      menus,
		archive:    archive,
	}
}

// Generate handles POST /api/v1/menus/generate.
// Parameters:
//   - c: Gin request context.
//
// Returns: none (writes JSON response).
func (h *MenuHandler) Generate(c *gin.Context) {
	var req domain.GenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body: " + err.Error(),
		})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	result, err := h.generation.Generate(c.Request.Context(), &req)
	if err != nil {
		h.writeGenerationError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// writeGenerationError maps pipeline error kinds onto HTTP statuses. The
// mapping is the single place a caller-visible status is chosen.
func (h *MenuHandler) writeGenerationError(c *gin.Context, err error) {
	ctx := c.Request.Context()

	var historyErr *domain.InsufficientHistoryError
	if errors.As(err, &historyErr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":    historyErr.Error(),
			"actual":   historyErr.Actual,
			"required": historyErr.Required,
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrCompletionTimeout):
		logger.CtxWarn(ctx, "Generation timed out: %v", err)
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "菜单生成超时，请重试"})
	case errors.Is(err, domain.ErrTransientTransport), errors.Is(err, domain.ErrCompletionProvider):
		logger.CtxError(ctx, "Completion service failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "菜单生成服务暂时不可用，请稍后重试"})
	case errors.Is(err, domain.ErrFormat):
		logger.CtxError(ctx, "Completion response unparsable: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "菜单生成结果异常，请重试"})
	case errors.Is(err, domain.ErrPersistence):
		logger.CtxError(ctx, "Menu persistence failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "菜单保存失败"})
	default:
		logger.CtxError(ctx, "Generation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "菜单生成失败"})
	}
}

// ListMenus handles GET /api/v1/menus.
// Parameters:
//   - c: Gin request context.
//
// Returns: none (writes JSON response).
func (h *MenuHandler) ListMenus(c *gin.Context) {
	tenantID := c.Query("tenant_id")
	if tenantID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tenant_id is required"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	menus, err := h.menus.ListByTenant(c.Request.Context(), tenantID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list menus: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"menus": menus,
		"count": len(menus),
	})
}

// GetMenu handles GET /api/v1/menus/:id.
// Parameters:
//   - c: Gin request context.
//
// Returns: none (writes JSON response).
func (h *MenuHandler) GetMenu(c *gin.Context) {
	tenantID := c.Query("tenant_id")
	if tenantID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tenant_id is required"})
		return
	}

	menu, err := h.menus.GetByID(c.Request.Context(), tenantID, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load menu: " + err.Error(),
		})
		return
	}
	if menu == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Menu not found"})
		return
	}

	c.JSON(http.StatusOK, menu)
}

// DeleteMenu handles DELETE /api/v1/menus/:id.
// Parameters:
//   - c: Gin request context.
//
// Returns: none (writes JSON response).
func (h *MenuHandler) DeleteMenu(c *gin.Context) {
	tenantID := c.Query("tenant_id")
	if tenantID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tenant_id is required"})
		return
	}

	if err := h.menus.SoftDelete(c.Request.Context(), tenantID, c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to delete menu: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// GetMenuDocument handles GET /api/v1/menus/:id/document. It serves the
// archived JSON export of a menu, redirecting to the public URL when one is
// configured and streaming from the bucket otherwise.
// Parameters:
//   - c: Gin request context.
//
// Returns: none (writes JSON response or redirect).
func (h *MenuHandler) GetMenuDocument(c *gin.Context) {
	tenantID := c.Query("tenant_id")
	if tenantID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tenant_id is required"})
		return
	}
	if h.archive == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Menu archive is not enabled"})
		return
	}

	menuID := c.Param("id")
	if url := h.archive.DocumentURL(tenantID, menuID); url != "" {
		c.Redirect(http.StatusFound, url)
		return
	}

	body, err := h.archive.FetchMenu(c.Request.Context(), tenantID, menuID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Archived document not found"})
		return
	}
	defer body.Close()

	c.DataFromReader(http.StatusOK, -1, "application/json", body, nil)
}

// ListEvents handles GET /api/v1/events.
// Parameters:
//   - c: Gin request context.
//
// Returns: none (writes JSON response).
func (h *MenuHandler) ListEvents(c *gin.Context) {
	tenantID := c.Query("tenant_id")
	if tenantID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tenant_id is required"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	events, err := h.menus.ListEventsByTenant(c.Request.Context(), tenantID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list events: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events": events,
		"count":  len(events),
	})
}
