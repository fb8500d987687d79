package ports

import (
	"context"

	"recall-backend/domain/core/entities"
)

// ItemFilter narrows corpus listings. Zero value means no filtering.
type ItemFilter struct {
	Project  string
	Category string
	Kind     entities.ItemKind
}

// CorpusReader is the port onto the external item store. The retrieval
// core never writes raw items; it only reads them for matching and
// resolution. Implementations own pagination and caching; callers own
// deadlines via ctx.
type CorpusReader interface {
	// ListItems returns all items matching the filter (nil = all)
	ListItems(ctx context.Context, filter *ItemFilter) ([]*entities.Item, error)

	// GetItem returns a single item, or a NotFound error
	GetItem(ctx context.Context, id string) (*entities.Item, error)
}

// Neighbor is one nearest-neighbor hit from the semantic index
type Neighbor struct {
	ID    string
	Score float64 // 0-1, higher is closer
}

// SemanticIndex is the port onto the external nearest-neighbor
// service. How embeddings are computed is not this core's concern.
type SemanticIndex interface {
	NearestNeighbors(ctx context.Context, item *entities.Item, k int) ([]Neighbor, error)
}

// RelationshipStore persists the relationship edge set with
// whole-collection load/save semantics. No partial-write API is
// required; callers serialize writes.
type RelationshipStore interface {
	ReadAll(ctx context.Context) ([]*entities.Relationship, error)
	WriteAll(ctx context.Context, relationships []*entities.Relationship) error
}

// HierarchyStore persists the task tree with whole-collection
// load/save semantics.
type HierarchyStore interface {
	ReadAll(ctx context.Context) ([]*entities.HierarchyNode, error)
	WriteAll(ctx context.Context, nodes []*entities.HierarchyNode) error
}
