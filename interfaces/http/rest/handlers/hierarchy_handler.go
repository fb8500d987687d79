package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"recall-backend/application/services"
	"recall-backend/pkg/common"
	"recall-backend/pkg/errors"
	"recall-backend/pkg/utils"
)

// HierarchyHandler handles task hierarchy HTTP requests
type HierarchyHandler struct {
	hierarchy *services.HierarchyService
	logger    *zap.Logger
}

// NewHierarchyHandler creates a new hierarchy handler
func NewHierarchyHandler(hierarchy *services.HierarchyService, logger *zap.Logger) *HierarchyHandler {
	return &HierarchyHandler{
		hierarchy: hierarchy,
		logger:    logger,
	}
}

// CreateNodeRequest represents the request body for creating a node
type CreateNodeRequest struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description,omitempty"`
	Project     string   `json:"project,omitempty"`
	ParentID    string   `json:"parent_id,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Complexity  int      `json:"complexity,omitempty" validate:"omitempty,min=1,max=5"`
}

// MoveTaskRequest represents the request body for moving a task
type MoveTaskRequest struct {
	NewParentID string `json:"new_parent_id" validate:"required"`
}

// CreateNode handles POST /hierarchy/nodes
func (h *HierarchyHandler) CreateNode(w http.ResponseWriter, r *http.Request) {
	var req CreateNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "Validation error: "+err.Error())
		return
	}

	node, err := h.hierarchy.CreateNode(r.Context(), services.CreateNodeInput{
		Title:       req.Title,
		Description: req.Description,
		Project:     req.Project,
		ParentID:    req.ParentID,
		Tags:        req.Tags,
		Complexity:  req.Complexity,
	})
	if err != nil {
		if !errors.IsValidation(err) && !errors.IsInvalidHierarchy(err) && !errors.IsNotFound(err) {
			h.logger.Error("Failed to create hierarchy node",
				zap.String("title", req.Title),
				zap.Error(err),
			)
		}
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, node)
}

// MoveTask handles POST /hierarchy/nodes/{taskID}/move
func (h *HierarchyHandler) MoveTask(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	if taskID == "" {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "Task ID is required")
		return
	}

	var req MoveTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "Validation error: "+err.Error())
		return
	}

	node, err := h.hierarchy.MoveTask(r.Context(), taskID, req.NewParentID)
	if err != nil {
		if !errors.IsInvalidHierarchy(err) && !errors.IsNotFound(err) {
			h.logger.Error("Failed to move task",
				zap.String("taskID", taskID),
				zap.String("newParentID", req.NewParentID),
				zap.Error(err),
			)
		}
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, node)
}

// GetNode handles GET /hierarchy/nodes/{taskID}
func (h *HierarchyHandler) GetNode(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	if taskID == "" {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "Task ID is required")
		return
	}

	node, err := h.hierarchy.GetNode(r.Context(), taskID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, node)
}

// GetTree handles GET /hierarchy/tree
func (h *HierarchyHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	rootID := r.URL.Query().Get("root")

	tree, err := h.hierarchy.GetTree(r.Context(), rootID)
	if err != nil {
		if !errors.IsNotFound(err) {
			h.logger.Error("Failed to build hierarchy tree",
				zap.String("rootID", rootID),
				zap.Error(err),
			)
		}
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"roots": tree,
		"count": len(tree),
	})
}
