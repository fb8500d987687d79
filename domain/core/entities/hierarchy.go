package entities

import (
	"strings"
	"time"

	pkgerrors "recall-backend/pkg/errors"
)

// HierarchyLevel is one rung of the strict 4-level task ladder
type HierarchyLevel string

const (
	LevelMaster  HierarchyLevel = "master" // project root
	LevelEpic    HierarchyLevel = "epic"   // stage
	LevelTask    HierarchyLevel = "task"
	LevelSubtask HierarchyLevel = "subtask" // leaf, cannot have children
)

var levelDepths = map[HierarchyLevel]int{
	LevelMaster:  0,
	LevelEpic:    1,
	LevelTask:    2,
	LevelSubtask: 3,
}

// Depth returns the 0-based depth of this level (master=0)
func (l HierarchyLevel) Depth() int {
	return levelDepths[l]
}

// IsValid reports whether the level is one of the four ladder rungs
func (l HierarchyLevel) IsValid() bool {
	_, ok := levelDepths[l]
	return ok
}

// Child returns the level one step below, or an error for leaf levels
func (l HierarchyLevel) Child() (HierarchyLevel, error) {
	switch l {
	case LevelMaster:
		return LevelEpic, nil
	case LevelEpic:
		return LevelTask, nil
	case LevelTask:
		return LevelSubtask, nil
	case LevelSubtask:
		return "", pkgerrors.NewInvalidHierarchyError("subtasks are leaves and cannot have children")
	default:
		return "", pkgerrors.NewInvalidHierarchyError("unknown hierarchy level: " + string(l))
	}
}

// HierarchyNode is a task positioned in the 4-level tree. A node's
// level is always exactly one step below its parent's; the path is a
// materialized dot-separated chain of ancestor ids ending in the
// node's own id, recomputed whenever the parent changes.
type HierarchyNode struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Project     string         `json:"project"`
	Level       HierarchyLevel `json:"level"`
	ParentID    string         `json:"parent_id,omitempty"`
	Path        string         `json:"path"`
	Status      ItemStatus     `json:"status"`
	Tags        []string       `json:"tags,omitempty"`
	Complexity  int            `json:"complexity,omitempty"`
	Created     time.Time      `json:"created"`
	Updated     time.Time      `json:"updated"`
}

// NewMasterNode creates a top-level project node. Masters are the only
// level creatable without a parent.
func NewMasterNode(id, title, project string) (*HierarchyNode, error) {
	if id == "" {
		return nil, pkgerrors.NewValidationError("node id cannot be empty")
	}
	if title == "" {
		return nil, pkgerrors.NewValidationError("node title cannot be empty")
	}
	if project == "" {
		return nil, pkgerrors.NewValidationError("master node requires a project")
	}

	now := time.Now()
	return &HierarchyNode{
		ID:      id,
		Title:   title,
		Project: project,
		Level:   LevelMaster,
		Path:    id,
		Status:  StatusTodo,
		Created: now,
		Updated: now,
	}, nil
}

// NewChildNode creates a node under the given parent. The child's
// level is derived from the parent's, never supplied by callers, and
// the project is inherited from the parent's subtree.
func NewChildNode(id, title string, parent *HierarchyNode) (*HierarchyNode, error) {
	if id == "" {
		return nil, pkgerrors.NewValidationError("node id cannot be empty")
	}
	if title == "" {
		return nil, pkgerrors.NewValidationError("node title cannot be empty")
	}
	if parent == nil {
		return nil, pkgerrors.NewValidationError("child node requires a parent")
	}

	childLevel, err := parent.Level.Child()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &HierarchyNode{
		ID:       id,
		Title:    title,
		Project:  parent.Project,
		Level:    childLevel,
		ParentID: parent.ID,
		Path:     parent.Path + "." + id,
		Status:   StatusTodo,
		Created:  now,
		Updated:  now,
	}, nil
}

// PathSegments splits the materialized path into its ancestor chain
func (n *HierarchyNode) PathSegments() []string {
	if n.Path == "" {
		return nil
	}
	return strings.Split(n.Path, ".")
}

// PathDepth returns the 0-based depth implied by the materialized path
func (n *HierarchyNode) PathDepth() int {
	return len(n.PathSegments()) - 1
}

// IsDescendantOf reports whether other appears in this node's ancestor
// chain, judged purely from the materialized path.
func (n *HierarchyNode) IsDescendantOf(other *HierarchyNode) bool {
	return strings.HasPrefix(n.Path, other.Path+".")
}

// SetParent rewires the node under a new parent, re-deriving level and
// path. Callers are responsible for validating the move first.
func (n *HierarchyNode) SetParent(parent *HierarchyNode) error {
	childLevel, err := parent.Level.Child()
	if err != nil {
		return err
	}

	n.ParentID = parent.ID
	n.Level = childLevel
	n.Path = parent.Path + "." + n.ID
	n.Project = parent.Project
	n.Updated = time.Now()
	return nil
}

// Item projects the node onto the shared Item shape used by the
// retrieval stack, so hierarchy tasks can participate in ranking.
func (n *HierarchyNode) Item() *Item {
	return &Item{
		ID:         n.ID,
		Kind:       KindTask,
		Title:      n.Title,
		Content:    n.Description,
		Project:    n.Project,
		Tags:       n.Tags,
		Created:    n.Created,
		Complexity: n.Complexity,
		Status:     n.Status,
	}
}
