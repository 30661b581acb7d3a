package handlers

import (
	"context"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/denisAlshanov/ytmp3/internal/models"
	"github.com/denisAlshanov/ytmp3/internal/utils"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100

	// maxHistoryPage keeps the store offset (page-1)*limit within int32.
	maxHistoryPage = math.MaxInt32 / maxHistoryLimit
)

type HistoryLister interface {
	ListConversions(ctx context.Context, opts models.PaginationOptions) ([]models.ConversionRecord, int, error)
}

type HistoryHandler struct {
	store HistoryLister
}

// NewHistoryHandler builds the history endpoint. A nil store makes every
// request answer HISTORY_DISABLED.
func NewHistoryHandler(store HistoryLister) *HistoryHandler {
	return &HistoryHandler{
		store: store,
	}
}

// GetList godoc
// @Summary List past conversions
// @Description Get paginated list of download attempts, newest first
// @Tags history
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Param sort query string false "created_at_desc or created_at_asc" default(created_at_desc)
// @Success 200 {object} models.HistoryListResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /api/v1/history [get]
// @Security ApiKeyAuth
func (h *HistoryHandler) GetList(c *gin.Context) {
	ctx := c.Request.Context()

	if h.store == nil {
		errorResponse(c, utils.NewHistoryDisabledError())
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if page > maxHistoryPage {
		page = maxHistoryPage
	}
	if limit < 1 || limit > maxHistoryLimit {
		limit = defaultHistoryLimit
	}

	conversions, total, err := h.store.ListConversions(ctx, models.PaginationOptions{
		Page:  page,
		Limit: limit,
		Sort:  c.Query("sort"),
	})
	if err != nil {
		utils.LogError(ctx, "Failed to list conversions", err)
		errorResponse(c, utils.NewDatabaseError(err))
		return
	}

	c.JSON(http.StatusOK, models.HistoryListResponse{
		Total:       total,
		Page:        page,
		Limit:       limit,
		Conversions: conversions,
	})
}
