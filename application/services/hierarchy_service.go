package services

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"recall-backend/application/ports"
	"recall-backend/domain/core/entities"
	pkgerrors "recall-backend/pkg/errors"
)

// HierarchyConfig configures task tree policy
type HierarchyConfig struct {
	// AllowCrossProjectMoves permits re-parenting a node under a
	// different project's subtree. Off by default: project is
	// inherited from the master ancestor and must stay consistent
	// across the whole subtree.
	AllowCrossProjectMoves bool
}

// DefaultHierarchyConfig returns the default hierarchy policy
func DefaultHierarchyConfig() *HierarchyConfig {
	return &HierarchyConfig{AllowCrossProjectMoves: false}
}

// CreateNodeInput describes a node to create. Level is never
// supplied: nodes without a parent are masters, and a child's level
// is derived from its parent's.
type CreateNodeInput struct {
	Title       string
	Description string
	Project     string // required for masters, inherited otherwise
	ParentID    string
	Tags        []string
	Complexity  int
}

// TreeNode is one node of a reconstructed nested tree
type TreeNode struct {
	*entities.HierarchyNode
	Children []*TreeNode `json:"children,omitempty"`
}

// HierarchyService maintains the 4-level task tree with materialized
// paths. Reads may run concurrently; create and move are serialized
// so the cycle check and the mutation it guards cannot interleave.
// Like the relationship index, the node map is committed only after
// the durable store confirms the write.
type HierarchyService struct {
	mu     sync.RWMutex
	store  ports.HierarchyStore
	config *HierarchyConfig
	logger *zap.Logger

	nodes  map[string]*entities.HierarchyNode
	loaded bool
}

// NewHierarchyService creates the task hierarchy service
func NewHierarchyService(store ports.HierarchyStore, config *HierarchyConfig, logger *zap.Logger) *HierarchyService {
	if config == nil {
		config = DefaultHierarchyConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &HierarchyService{
		store:  store,
		config: config,
		logger: logger,
		nodes:  make(map[string]*entities.HierarchyNode),
	}
}

// Load reads the node set from the durable store. Called once at startup.
func (s *HierarchyService) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return nil
	}

	nodes, err := s.store.ReadAll(ctx)
	if err != nil {
		return pkgerrors.NewPersistenceError("load hierarchy", err)
	}

	for _, node := range nodes {
		s.nodes[node.ID] = node
	}
	s.loaded = true

	s.logger.Info("hierarchy loaded", zap.Int("nodes", len(s.nodes)))
	return nil
}

// CreateNode creates a master (no parent) or a child whose level is
// derived from the parent. Attaching under a subtask is rejected.
func (s *HierarchyService) CreateNode(ctx context.Context, input CreateNodeInput) (*entities.HierarchyNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New().String()

	var node *entities.HierarchyNode
	var err error
	if input.ParentID == "" {
		node, err = entities.NewMasterNode(id, input.Title, input.Project)
	} else {
		parent, ok := s.nodes[input.ParentID]
		if !ok {
			return nil, pkgerrors.NewNotFoundError("parent node " + input.ParentID)
		}
		node, err = entities.NewChildNode(id, input.Title, parent)
	}
	if err != nil {
		return nil, err
	}

	node.Description = input.Description
	node.Tags = input.Tags
	node.Complexity = input.Complexity

	next := s.cloneNodes()
	next[node.ID] = node
	if err := s.persist(ctx, next); err != nil {
		return nil, err
	}
	s.nodes = next

	s.logger.Info("hierarchy node created",
		zap.String("id", node.ID),
		zap.String("level", string(node.Level)),
		zap.String("parent", node.ParentID),
	)
	return node, nil
}

// MoveTask re-parents a node. All validation happens before any
// mutation; on success the moved node and every descendant get their
// level and materialized path recomputed.
func (s *HierarchyService) MoveTask(ctx context.Context, taskID, newParentID string) (*entities.HierarchyNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.nodes[taskID]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("node " + taskID)
	}
	parent, ok := s.nodes[newParentID]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("parent node " + newParentID)
	}

	if err := s.validateMove(node, parent); err != nil {
		return nil, err
	}

	// Mutate clones only; the live map is untouched until the
	// durable write succeeds
	next := s.cloneNodes()
	moved := next[taskID]
	if err := moved.SetParent(next[newParentID]); err != nil {
		return nil, err
	}
	if err := s.recomputeDescendants(next, moved); err != nil {
		return nil, err
	}

	if err := s.persist(ctx, next); err != nil {
		return nil, err
	}
	s.nodes = next

	s.logger.Info("hierarchy node moved",
		zap.String("id", taskID),
		zap.String("newParent", newParentID),
		zap.String("path", moved.Path),
	)
	return moved, nil
}

// GetNode returns a single node by id
func (s *HierarchyService) GetNode(ctx context.Context, id string) (*entities.HierarchyNode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	node, ok := s.nodes[id]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("node " + id)
	}
	return node, nil
}

// GetTree reconstructs the nested tree from the flat, path-ordered
// snapshot. Pure over the snapshot: no mutation. An empty rootID
// returns all top-level masters.
func (s *HierarchyService) GetTree(ctx context.Context, rootID string) ([]*TreeNode, error) {
	s.mu.RLock()
	flat := make([]*entities.HierarchyNode, 0, len(s.nodes))
	for _, node := range s.nodes {
		flat = append(flat, node)
	}
	s.mu.RUnlock()

	// Path order guarantees parents precede children and keeps
	// sibling output stable
	sort.Slice(flat, func(i, j int) bool { return flat[i].Path < flat[j].Path })

	byID := make(map[string]*TreeNode, len(flat))
	var roots []*TreeNode
	for _, node := range flat {
		tn := &TreeNode{HierarchyNode: node}
		byID[node.ID] = tn

		if rootID != "" {
			if node.ID == rootID {
				roots = append(roots, tn)
			} else if parent, ok := byID[node.ParentID]; ok {
				parent.Children = append(parent.Children, tn)
			}
			continue
		}

		if parent, ok := byID[node.ParentID]; ok {
			parent.Children = append(parent.Children, tn)
		} else {
			roots = append(roots, tn)
		}
	}

	if rootID != "" {
		if _, ok := byID[rootID]; !ok {
			return nil, pkgerrors.NewNotFoundError("node " + rootID)
		}
	}
	return roots, nil
}

// validateMove runs every move precondition. Nothing is mutated here.
func (s *HierarchyService) validateMove(node, parent *entities.HierarchyNode) error {
	if node.ID == parent.ID {
		return pkgerrors.NewInvalidHierarchyError("cannot move a node under itself")
	}

	// Cycle check: walk up from the new parent to the root. If the
	// moved node appears in that chain it would become its own
	// descendant.
	for ancestor := parent; ancestor != nil; {
		if ancestor.ID == node.ID {
			return pkgerrors.NewInvalidHierarchyError("move would create a cycle: " + node.ID + " is an ancestor of " + parent.ID)
		}
		if ancestor.ParentID == "" {
			break
		}
		next, ok := s.nodes[ancestor.ParentID]
		if !ok {
			return pkgerrors.NewInternalError("broken ancestor chain at node " + ancestor.ID)
		}
		ancestor = next
	}

	if !s.config.AllowCrossProjectMoves && node.Project != parent.Project {
		return pkgerrors.NewInvalidHierarchyError("cross-project moves are not allowed").
			WithDetails(map[string]interface{}{
				"node_project":   node.Project,
				"parent_project": parent.Project,
			})
	}

	// Level feasibility: the node takes parent.Level+1, and its
	// whole subtree shifts with it; nothing may sink below subtask
	childLevel, err := parent.Level.Child()
	if err != nil {
		return err
	}
	newDepth := childLevel.Depth() + s.subtreeHeight(node)
	if newDepth > entities.LevelSubtask.Depth() {
		return pkgerrors.NewInvalidHierarchyError("move would push descendants below the subtask level")
	}

	return nil
}

// subtreeHeight returns the height of the node's subtree (0 for a leaf)
func (s *HierarchyService) subtreeHeight(node *entities.HierarchyNode) int {
	height := 0
	for _, candidate := range s.nodes {
		if candidate.IsDescendantOf(node) {
			depth := candidate.PathDepth() - node.PathDepth()
			if depth > height {
				height = depth
			}
		}
	}
	return height
}

// recomputeDescendants re-derives level, path, and project for every
// descendant of the moved node. Paths are a function of the full
// ancestor chain, so a move invalidates every descendant's path.
func (s *HierarchyService) recomputeDescendants(nodes map[string]*entities.HierarchyNode, root *entities.HierarchyNode) error {
	children := make(map[string][]*entities.HierarchyNode, len(nodes))
	for _, node := range nodes {
		if node.ParentID != "" {
			children[node.ParentID] = append(children[node.ParentID], node)
		}
	}

	queue := append([]*entities.HierarchyNode{}, children[root.ID]...)
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		if err := node.SetParent(nodes[node.ParentID]); err != nil {
			return err
		}
		queue = append(queue, children[node.ID]...)
	}
	return nil
}

func (s *HierarchyService) persist(ctx context.Context, nodes map[string]*entities.HierarchyNode) error {
	flat := make([]*entities.HierarchyNode, 0, len(nodes))
	for _, node := range nodes {
		flat = append(flat, node)
	}
	sort.Slice(flat, func(i, j int) bool { return flat[i].Path < flat[j].Path })

	if err := s.store.WriteAll(ctx, flat); err != nil {
		return pkgerrors.NewPersistenceError("write hierarchy", err)
	}
	return nil
}

// cloneNodes copies the node map and its structs so failed writes
// never leave half-applied mutations behind
func (s *HierarchyService) cloneNodes() map[string]*entities.HierarchyNode {
	next := make(map[string]*entities.HierarchyNode, len(s.nodes)+1)
	for id, node := range s.nodes {
		copied := *node
		next[id] = &copied
	}
	return next
}
