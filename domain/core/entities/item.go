package entities

import (
	"strings"
	"time"

	pkgerrors "recall-backend/pkg/errors"
)

// ItemKind distinguishes the two stored item families
type ItemKind string

const (
	KindMemory ItemKind = "memory"
	KindTask   ItemKind = "task"
)

// ItemStatus represents the workflow state of a task item.
// Status is orthogonal to the task hierarchy: it never affects
// a node's position or level in the tree.
type ItemStatus string

const (
	StatusTodo       ItemStatus = "todo"
	StatusInProgress ItemStatus = "in_progress"
	StatusDone       ItemStatus = "done"
	StatusBlocked    ItemStatus = "blocked"
)

// Item is a memory or task as read from the external item store.
// The retrieval core only reads items; mutation of raw item content
// belongs to the storage backend.
type Item struct {
	ID          string     `json:"id"`
	Kind        ItemKind   `json:"kind"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Project     string     `json:"project,omitempty"`
	Category    string     `json:"category,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	Created     time.Time  `json:"created"`
	Complexity  int        `json:"complexity,omitempty"` // 1-4, 0 means unset
	Status      ItemStatus `json:"status,omitempty"`
}

// NewItem creates an item with basic field validation
func NewItem(id string, kind ItemKind, title, content string) (*Item, error) {
	if id == "" {
		return nil, pkgerrors.NewValidationError("item id cannot be empty")
	}
	if kind != KindMemory && kind != KindTask {
		return nil, pkgerrors.NewValidationError("item kind must be memory or task")
	}
	if title == "" && content == "" {
		return nil, pkgerrors.NewValidationError("item must have a title or content")
	}

	return &Item{
		ID:      id,
		Kind:    kind,
		Title:   title,
		Content: content,
		Created: time.Now(),
	}, nil
}

// SearchText returns the text used for term extraction and matching
func (i *Item) SearchText() string {
	if i.Title == "" {
		return i.Content
	}
	if i.Content == "" {
		return i.Title
	}
	return i.Title + " " + i.Content
}

// TagSet returns the item's tags as a normalized set.
// Tag order is irrelevant for matching.
func (i *Item) TagSet() map[string]bool {
	set := make(map[string]bool, len(i.Tags))
	for _, tag := range i.Tags {
		normalized := strings.ToLower(strings.TrimSpace(tag))
		if normalized != "" {
			set[normalized] = true
		}
	}
	return set
}

// HasTag reports whether the item carries the given tag (case-insensitive)
func (i *Item) HasTag(tag string) bool {
	return i.TagSet()[strings.ToLower(strings.TrimSpace(tag))]
}
