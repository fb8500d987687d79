package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"recall-backend/application/services"
	"recall-backend/domain/core/entities"
	"recall-backend/pkg/common"
	"recall-backend/pkg/errors"
	"recall-backend/pkg/utils"
)

// LinkHandler handles relationship graph HTTP requests
type LinkHandler struct {
	links  *services.LinkService
	logger *zap.Logger
}

// NewLinkHandler creates a new link handler
func NewLinkHandler(links *services.LinkService, logger *zap.Logger) *LinkHandler {
	return &LinkHandler{
		links:  links,
		logger: logger,
	}
}

// CreateLinkRequest represents the request body for creating a link
type CreateLinkRequest struct {
	FromID   string                 `json:"from_id" validate:"required"`
	ToID     string                 `json:"to_id" validate:"required"`
	Type     string                 `json:"type,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// DeleteLinkRequest represents the request body for removing a link
type DeleteLinkRequest struct {
	FromID string `json:"from_id" validate:"required"`
	ToID   string `json:"to_id" validate:"required"`
}

// CreateLink handles POST /links
func (h *LinkHandler) CreateLink(w http.ResponseWriter, r *http.Request) {
	var req CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "Validation error: "+err.Error())
		return
	}

	if userID, ok := common.GetUserID(r.Context()); ok {
		if req.Metadata == nil {
			req.Metadata = make(map[string]interface{})
		}
		req.Metadata["created_by"] = userID
	}

	link, err := h.links.LinkItems(r.Context(), req.FromID, req.ToID, entities.ConnectionType(req.Type), req.Metadata)
	if err != nil {
		if !errors.IsValidation(err) {
			h.logger.Error("Failed to create link",
				zap.String("fromID", req.FromID),
				zap.String("toID", req.ToID),
				zap.Error(err),
			)
		}
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, link)
}

// DeleteLink handles DELETE /links
func (h *LinkHandler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	var req DeleteLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "Validation error: "+err.Error())
		return
	}

	if err := h.links.UnlinkItems(r.Context(), req.FromID, req.ToID); err != nil {
		if !errors.IsNotFound(err) {
			h.logger.Error("Failed to delete link",
				zap.String("fromID", req.FromID),
				zap.String("toID", req.ToID),
				zap.Error(err),
			)
		}
		common.RespondAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetConnections handles GET /items/{itemID}/links
func (h *LinkHandler) GetConnections(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")
	if itemID == "" {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "Item ID is required")
		return
	}

	connections := h.links.GetConnections(r.Context(), itemID)

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"item_id": itemID,
		"links":   connections,
		"count":   len(connections),
	})
}

// GetGraph handles GET /graph
func (h *LinkHandler) GetGraph(w http.ResponseWriter, r *http.Request) {
	project := r.URL.Query().Get("project")

	graph, err := h.links.GetConnectionGraph(r.Context(), project)
	if err != nil {
		h.logger.Error("Failed to build connection graph",
			zap.String("project", project),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, graph)
}
