package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"recall-backend/application/services"
	"recall-backend/pkg/common"
	"recall-backend/pkg/errors"
)

// RelatedHandler handles retrieval and suggestion requests
type RelatedHandler struct {
	related *services.RelatedItemsService
	links   *services.LinkService
	logger  *zap.Logger
}

// NewRelatedHandler creates a new related-items handler
func NewRelatedHandler(related *services.RelatedItemsService, links *services.LinkService, logger *zap.Logger) *RelatedHandler {
	return &RelatedHandler{
		related: related,
		links:   links,
		logger:  logger,
	}
}

// FindRelated handles GET /items/{itemID}/related
func (h *RelatedHandler) FindRelated(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")
	if itemID == "" {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "Item ID is required")
		return
	}

	opts := services.FindRelatedOptions{}
	if v := r.URL.Query().Get("max_results"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			common.RespondError(w, http.StatusBadRequest, "VALIDATION", "max_results must be a positive integer")
			return
		}
		opts.MaxResults = n
	}
	if v := r.URL.Query().Get("threshold"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 || f >= 1 {
			common.RespondError(w, http.StatusBadRequest, "VALIDATION", "threshold must be in [0, 1)")
			return
		}
		opts.Threshold = f
	}

	results, err := h.related.FindRelated(r.Context(), itemID, opts)
	if err != nil {
		if !errors.IsNotFound(err) {
			h.logger.Error("Failed to find related items",
				zap.String("itemID", itemID),
				zap.Error(err),
			)
		}
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"item_id": itemID,
		"related": results,
		"count":   len(results),
	})
}

// SuggestLinks handles GET /items/{itemID}/link-suggestions
func (h *RelatedHandler) SuggestLinks(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")
	if itemID == "" {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "Item ID is required")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			common.RespondError(w, http.StatusBadRequest, "VALIDATION", "limit must be a positive integer")
			return
		}
		limit = n
	}

	suggestions, err := h.links.AutoSuggestLinks(r.Context(), itemID, limit)
	if err != nil {
		if !errors.IsNotFound(err) {
			h.logger.Error("Failed to suggest links",
				zap.String("itemID", itemID),
				zap.Error(err),
			)
		}
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"item_id":     itemID,
		"suggestions": suggestions,
		"count":       len(suggestions),
	})
}
